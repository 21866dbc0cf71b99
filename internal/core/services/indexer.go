package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/axchat/internal/core/domain"
	"github.com/custodia-labs/axchat/internal/core/ports/driven"
	"github.com/custodia-labs/axchat/internal/core/ports/driving"
	"github.com/custodia-labs/axchat/internal/logger"
)

// Ensure IndexService implements the interface.
var _ driving.IndexService = (*IndexService)(nil)

// Normaliser turns a raw corpus file into plain-text sections.
type Normaliser interface {
	Normalise(raw []byte, relPath string) domain.SourceDocument
	Sections(doc domain.SourceDocument) []domain.Section
}

// Chunker splits one section into retrieval chunks.
type Chunker interface {
	Process(doc domain.SourceDocument, section domain.Section) []domain.Chunk
}

// IndexService rebuilds the retrieval index from the corpus. Rebuilds
// are whole-corpus replacements; concurrent invocations serialize on an
// internal mutex.
type IndexService struct {
	corpus     driven.Corpus
	index      driven.RetrievalIndex
	normaliser Normaliser
	chunker    Chunker
	zones      domain.ZoneConfig
	watcher    driven.CorpusWatcher

	mu  sync.Mutex
	now func() time.Time
}

// IndexOption configures the index service.
type IndexOption func(*IndexService)

// WithIndexWatcher attaches a corpus watcher that is re-armed after
// every successful rebuild.
func WithIndexWatcher(w driven.CorpusWatcher) IndexOption {
	return func(s *IndexService) {
		s.watcher = w
	}
}

// WithClock replaces the build timestamp source.
func WithClock(now func() time.Time) IndexOption {
	return func(s *IndexService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewIndexService creates the corpus indexer.
func NewIndexService(
	corpus driven.Corpus,
	index driven.RetrievalIndex,
	normaliser Normaliser,
	chunker Chunker,
	zones domain.ZoneConfig,
	opts ...IndexOption,
) *IndexService {
	s := &IndexService{
		corpus:     corpus,
		index:      index,
		normaliser: normaliser,
		chunker:    chunker,
		zones:      zones,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Rebuild walks the union of every tier's zones, chunks each markdown
// file and swaps the whole index in one transaction. Malformed files
// are skipped, never abort the build.
func (s *IndexService) Rebuild(ctx context.Context, scope domain.AccessScope) (*domain.BuildResult, error) {
	if !scope.CanReindex {
		return nil, fmt.Errorf("%w: reindex requires a privileged scope", domain.ErrForbidden)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	zones := s.zones.AllZones()
	files, err := s.corpus.ListFiles(ctx, zones)
	if err != nil {
		return nil, fmt.Errorf("%w: listing corpus files: %v", domain.ErrReindexFailed, err)
	}

	logger.Section("Index Rebuild")
	logger.Info("corpus: %d files across zones %v", len(files), zones)

	var (
		chunks       []domain.Chunk
		sectionCount int
	)
	for _, file := range files {
		raw, err := s.corpus.ReadFile(ctx, file.RelPath)
		if err != nil {
			logger.Warn("skipping unreadable file %q: %v", file.RelPath, err)
			continue
		}

		doc := s.normaliser.Normalise(raw, file.RelPath)
		for _, section := range s.normaliser.Sections(doc) {
			sectionChunks := s.chunker.Process(doc, section)
			if len(sectionChunks) == 0 {
				continue
			}
			chunks = append(chunks, sectionChunks...)
			sectionCount++
		}

		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrReindexFailed, err)
		}
	}

	result := domain.BuildResult{
		IndexedAt: s.now().UTC(),
		Documents: sectionCount,
		Chunks:    len(chunks),
	}
	if err := s.index.Replace(ctx, chunks, result); err != nil {
		return nil, fmt.Errorf("%w: writing index: %v", domain.ErrReindexFailed, err)
	}

	logger.Info("indexed %d sections, %d chunks", result.Documents, result.Chunks)

	if s.watcher != nil {
		if err := s.watcher.Watch(zones); err != nil {
			logger.Warn("re-arming corpus watcher: %v", err)
		}
	}

	return &result, nil
}
