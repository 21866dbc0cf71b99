package driven

import (
	"context"

	"github.com/custodia-labs/axchat/internal/core/domain"
)

// RetrievalIndex is the persistent full-text index over corpus chunks.
// Implementations are explicit handles: multiple indexes (e.g., test
// fixtures) coexist without shared global state.
type RetrievalIndex interface {
	// Replace atomically swaps the entire index contents for the given
	// chunk set and writes build metadata. Readers never observe a
	// half-cleared index.
	Replace(ctx context.Context, chunks []domain.Chunk, build domain.BuildResult) error

	// Search performs a ranked prefix-matching full-text query.
	// An empty or token-free query returns an empty slice, not an error.
	// A non-empty allowedSources set restricts hits to chunks whose
	// source tag is in the set.
	Search(ctx context.Context, query string, limit int, allowedSources []string) ([]domain.Reference, error)

	// Status returns the last build metadata. OK is false when the
	// index is absent or unreadable.
	Status(ctx context.Context) (domain.IndexStatus, error)

	// Close releases resources.
	Close() error
}
