package sqlite

import (
	"context"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/axchat/internal/core/domain"
)

// setupTestStore creates a temporary SQLite index for testing.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(filepath.Join(t.TempDir(), "index.db"))
	require.NoError(t, err)
	require.NotNil(t, store)

	t.Cleanup(func() {
		assert.NoError(t, store.Close())
	})
	return store
}

func testChunk(path, title, source, content string) domain.Chunk {
	return domain.Chunk{
		ID:      path + "#" + title,
		Path:    path,
		Title:   title,
		Anchor:  "anchor",
		Route:   "/api/axchat/file?path=" + path,
		Excerpt: content,
		Source:  source,
		Content: content,
	}
}

func testBuild(docs, chunks int) domain.BuildResult {
	return domain.BuildResult{
		IndexedAt: time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC),
		Documents: docs,
		Chunks:    chunks,
	}
}

func TestStatus_EmptyIndex(t *testing.T) {
	store := setupTestStore(t)

	status, err := store.Status(context.Background())
	require.NoError(t, err)
	assert.False(t, status.OK)
	assert.Empty(t, status.Version)
}

func TestReplaceAndStatus(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	chunks := []domain.Chunk{
		testChunk("export/a.md", "A", "export", "alpha content about billing"),
		testChunk("content/b.md", "B", "content", "beta content about setup"),
	}
	require.NoError(t, store.Replace(ctx, chunks, testBuild(2, 2)))

	status, err := store.Status(ctx)
	require.NoError(t, err)
	assert.True(t, status.OK)
	assert.Equal(t, IndexVersion, status.Version)
	assert.Equal(t, 2, status.Documents)
	assert.Equal(t, 2, status.Chunks)
	assert.Equal(t, testBuild(2, 2).IndexedAt.Format(time.RFC3339), status.IndexedAt)
}

func TestReplace_SwapsWholeIndex(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	first := []domain.Chunk{testChunk("export/old.md", "Old", "export", "obsolete topic")}
	require.NoError(t, store.Replace(ctx, first, testBuild(1, 1)))

	second := []domain.Chunk{testChunk("export/new.md", "New", "export", "fresh topic")}
	require.NoError(t, store.Replace(ctx, second, testBuild(1, 1)))

	refs, err := store.Search(ctx, "obsolete", 4, nil)
	require.NoError(t, err)
	assert.Empty(t, refs)

	refs, err = store.Search(ctx, "fresh", 4, nil)
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, "export/new.md", refs[0].Path)
}

func TestReplace_EmptyCorpus(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Replace(ctx, nil, testBuild(0, 0)))

	status, err := store.Status(ctx)
	require.NoError(t, err)
	assert.True(t, status.OK)
	assert.Zero(t, status.Chunks)
}

func TestSearch_PrefixMatching(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	chunks := []domain.Chunk{
		testChunk("export/pay.md", "Payments", "export", "configure payment providers"),
	}
	require.NoError(t, store.Replace(ctx, chunks, testBuild(1, 1)))

	// Token prefixes match full indexed words.
	refs, err := store.Search(ctx, "paymen configur", 4, nil)
	require.NoError(t, err)
	require.Len(t, refs, 1)

	ref := refs[0]
	assert.Equal(t, "Payments", ref.Title)
	assert.Equal(t, "export/pay.md", ref.Path)
	assert.Equal(t, "/api/axchat/file?path=export/pay.md", ref.Route)
	assert.Equal(t, "anchor", ref.Anchor)
	require.NotNil(t, ref.Score)
}

func TestSearch_EmptyQuery(t *testing.T) {
	store := setupTestStore(t)

	refs, err := store.Search(context.Background(), "  !!! ???  ", 4, nil)
	require.NoError(t, err)
	assert.Nil(t, refs)
}

func TestSearch_SourceFilter(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	chunks := []domain.Chunk{
		testChunk("export/a.md", "A", "export", "shared keyword alpha"),
		testChunk("private/b.md", "B", "private", "shared keyword beta"),
	}
	require.NoError(t, store.Replace(ctx, chunks, testBuild(2, 2)))

	refs, err := store.Search(ctx, "shared", 4, []string{"export"})
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, "export/a.md", refs[0].Path)

	// Blank filter entries are ignored, not matched.
	refs, err = store.Search(ctx, "shared", 4, []string{" ", "private"})
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, "private/b.md", refs[0].Path)

	// No filter returns both.
	refs, err = store.Search(ctx, "shared", 4, nil)
	require.NoError(t, err)
	assert.Len(t, refs, 2)
}

func TestSearch_LimitAndRanking(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	var chunks []domain.Chunk
	chunks = append(chunks, testChunk("export/dense.md", "Dense", "export",
		"kiwi kiwi kiwi kiwi dense mention of kiwi"))
	chunks = append(chunks, testChunk("export/sparse.md", "Sparse", "export",
		"one kiwi among many other words in a much longer passage about unrelated things"))
	chunks = append(chunks, testChunk("export/third.md", "Third", "export",
		"kiwi appears here too with some filler text"))
	require.NoError(t, store.Replace(ctx, chunks, testBuild(3, 3)))

	refs, err := store.Search(ctx, "kiwi", 2, nil)
	require.NoError(t, err)
	require.Len(t, refs, 2)

	// Lowest bm25 score first.
	assert.Equal(t, "export/dense.md", refs[0].Path)
	require.NotNil(t, refs[0].Score)
	require.NotNil(t, refs[1].Score)
	assert.LessOrEqual(t, *refs[0].Score, *refs[1].Score)
}

func TestSearch_ScoreRounding(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	chunks := []domain.Chunk{testChunk("export/a.md", "A", "export", "rounding check text")}
	require.NoError(t, store.Replace(ctx, chunks, testBuild(1, 1)))

	refs, err := store.Search(ctx, "rounding", 4, nil)
	require.NoError(t, err)
	require.Len(t, refs, 1)
	require.NotNil(t, refs[0].Score)

	score := *refs[0].Score
	assert.Equal(t, math.Round(score*1000)/1000, score)
}

func TestSearch_CyrillicTokens(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	chunks := []domain.Chunk{
		testChunk("export/ru.md", "Оплата", "export", "настройка оплаты и возвратов"),
	}
	require.NoError(t, store.Replace(ctx, chunks, testBuild(1, 1)))

	refs, err := store.Search(ctx, "оплат", 4, nil)
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, "export/ru.md", refs[0].Path)
}

func TestNewStore_ReopenKeepsData(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "index.db")
	ctx := context.Background()

	store, err := NewStore(path)
	require.NoError(t, err)
	chunks := []domain.Chunk{testChunk("export/a.md", "A", "export", "persistent content")}
	require.NoError(t, store.Replace(ctx, chunks, testBuild(1, 1)))
	require.NoError(t, store.Close())

	reopened, err := NewStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	status, err := reopened.Status(ctx)
	require.NoError(t, err)
	assert.True(t, status.OK)

	refs, err := reopened.Search(ctx, "persistent", 4, nil)
	require.NoError(t, err)
	assert.Len(t, refs, 1)
}
