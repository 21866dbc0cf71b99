package driving

import (
	"context"

	"github.com/custodia-labs/axchat/internal/core/domain"
)

// IndexService rebuilds the retrieval index from the corpus.
type IndexService interface {
	// Rebuild performs a whole-corpus wipe-and-rebuild under the
	// caller's scope. Concurrent invocations are serialized.
	Rebuild(ctx context.Context, scope domain.AccessScope) (*domain.BuildResult, error)
}

// FileService fetches raw corpus files for privileged scopes.
type FileService interface {
	// Fetch returns the raw text of a corpus-relative path, rejecting
	// traversal and paths outside the caller's allowed zones.
	Fetch(ctx context.Context, scope domain.AccessScope, relPath string) (string, error)
}
