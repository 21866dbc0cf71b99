package chunker

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/axchat/internal/core/domain"
)

func TestNew_Defaults(t *testing.T) {
	p := New()
	assert.Equal(t, DefaultChunkSize, p.chunkSize)
	assert.Equal(t, DefaultChunkOverlap, p.overlap)
	assert.Equal(t, "chunker", p.Name())
}

func TestNew_OverlapClamped(t *testing.T) {
	p := New(WithChunkSize(100), WithOverlap(100))
	assert.Equal(t, 25, p.overlap)

	p = New(WithChunkSize(100), WithOverlap(150))
	assert.Equal(t, 25, p.overlap)
}

func TestSplit_ShortTextSingleWindow(t *testing.T) {
	p := New(WithChunkSize(100), WithOverlap(20))
	windows := p.split("short text")
	require.Len(t, windows, 1)
	assert.Equal(t, "short text", windows[0])
}

func TestSplit_OverlappingWindows(t *testing.T) {
	p := New(WithChunkSize(10), WithOverlap(3))
	text := "abcdefghijklmnopqrstuvwxyz"

	windows := p.split(text)
	require.Len(t, windows, 4)
	assert.Equal(t, "abcdefghij", windows[0])
	assert.Equal(t, "hijklmnopq", windows[1])
	assert.Equal(t, "opqrstuvwx", windows[2])
	assert.Equal(t, "vwxyz", windows[3])

	// Each window starts overlap characters before the previous end.
	for i := 1; i < len(windows); i++ {
		assert.True(t, strings.HasPrefix(windows[i], windows[i-1][7:]))
	}
}

func TestSplit_WhitespaceOnly(t *testing.T) {
	p := New(WithChunkSize(10), WithOverlap(3))
	assert.Nil(t, p.split("   \n\t  "))
	assert.Nil(t, p.split(""))
}

func TestSplit_FinalWindowReachesEnd(t *testing.T) {
	p := New(WithChunkSize(10), WithOverlap(3))
	text := strings.Repeat("x", 25)

	windows := p.split(text)
	last := windows[len(windows)-1]
	assert.True(t, strings.HasSuffix(text, last))

	// Reassembling without the overlapping prefixes restores the text.
	rebuilt := windows[0]
	for _, w := range windows[1:] {
		rebuilt += w[3:]
	}
	assert.Equal(t, text, rebuilt)
}

func TestSplit_CyrillicRuneBoundaries(t *testing.T) {
	p := New(WithChunkSize(10), WithOverlap(3))
	text := strings.Repeat("абвгдежзик", 3)

	windows := p.split(text)
	require.Len(t, windows, 4)
	for _, w := range windows {
		assert.True(t, utf8.ValidString(w))
		assert.LessOrEqual(t, utf8.RuneCountInString(w), 10)
	}
	assert.Equal(t, "абвгдежзик", windows[0])
	assert.Equal(t, "зикабвгдеж", windows[1])
}

func TestProcess_CyrillicContentStaysValid(t *testing.T) {
	p := New()

	doc := domain.SourceDocument{Path: "content/faq.md", Title: "Вопросы"}
	section := domain.Section{
		Title:   "Оплата",
		Anchor:  "оплата",
		Content: strings.Repeat("Оплата проходит через личный кабинет после подтверждения заказа. ", 40),
	}

	chunks := p.Process(doc, section)
	require.Greater(t, len(chunks), 1)
	for _, c := range chunks {
		assert.True(t, utf8.ValidString(c.Content))
		assert.True(t, utf8.ValidString(c.Excerpt))
		assert.LessOrEqual(t, utf8.RuneCountInString(c.Content), DefaultChunkSize)
	}
}

func TestProcess_ChunkFields(t *testing.T) {
	p := New(WithChunkSize(50), WithOverlap(10))

	doc := domain.SourceDocument{Path: "export/guide one.md", Title: "Guide"}
	section := domain.Section{
		Title:   "Setup",
		Anchor:  "setup",
		Content: "Install the package and run the configuration step.",
	}

	chunks := p.Process(doc, section)
	require.NotEmpty(t, chunks)

	first := chunks[0]
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, "export/guide one.md", first.Path)
	assert.Equal(t, "Guide · Setup", first.Title)
	assert.Equal(t, "setup", first.Anchor)
	assert.Equal(t, "/api/axchat/file?path=export%2Fguide+one.md", first.Route)
	assert.Equal(t, "export", first.Source)
	assert.NotEmpty(t, first.Excerpt)

	// IDs are unique per chunk.
	seen := map[string]bool{}
	for _, c := range chunks {
		assert.False(t, seen[c.ID])
		seen[c.ID] = true
	}
}

func TestProcess_PreambleSectionKeepsDocTitle(t *testing.T) {
	p := New()

	doc := domain.SourceDocument{Path: "content/faq.md", Title: "FAQ"}
	section := domain.Section{Title: "FAQ", Content: "Intro paragraph."}

	chunks := p.Process(doc, section)
	require.Len(t, chunks, 1)
	assert.Equal(t, "FAQ", chunks[0].Title)
	assert.Empty(t, chunks[0].Anchor)
}

func TestProcess_EmptySection(t *testing.T) {
	p := New()
	doc := domain.SourceDocument{Path: "a.md", Title: "a"}
	assert.Nil(t, p.Process(doc, domain.Section{Title: "x", Content: "  "}))
}

func TestMakeExcerpt(t *testing.T) {
	short := "short excerpt"
	assert.Equal(t, short, makeExcerpt("  "+short+"  "))

	long := strings.Repeat("a", ExcerptLength+50)
	got := makeExcerpt(long)
	assert.Equal(t, strings.Repeat("a", ExcerptLength)+"…", got)
}
