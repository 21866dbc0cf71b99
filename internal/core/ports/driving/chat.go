package driving

import (
	"context"

	"github.com/custodia-labs/axchat/internal/core/domain"
)

// StatusReport is the composite state exposed by the status operation.
type StatusReport struct {
	Model          ModelReport        `json:"model"`
	Index          domain.IndexStatus `json:"index"`
	Sources        []string           `json:"sources,omitempty"`
	Scope          ScopeReport        `json:"scope"`
	HeartbeatLines []string           `json:"heartbeat_lines,omitempty"`
}

// ModelReport describes the generation service state.
type ModelReport struct {
	Name      string   `json:"name"`
	Host      string   `json:"host"`
	Online    bool     `json:"online"`
	Ready     bool     `json:"ready"`
	Available []string `json:"available,omitempty"`
}

// ScopeReport summarises the caller's resolved scope.
type ScopeReport struct {
	Role        domain.Role `json:"role"`
	RevealPaths bool        `json:"reveal_paths"`
	CanReindex  bool        `json:"can_reindex"`
}

// ChatService turns one incoming message into a canned reply, a search
// result, or a generated answer grounded in retrieved chunks.
type ChatService interface {
	// Query runs the per-message pipeline under the caller's scope.
	Query(ctx context.Context, scope domain.AccessScope, req domain.ChatRequest) (*domain.ChatResponse, error)

	// Search performs a bare scoped retrieval without generation.
	Search(ctx context.Context, scope domain.AccessScope, query string) ([]domain.Reference, error)

	// Status reports model, index and scope state.
	Status(ctx context.Context, scope domain.AccessScope) (*StatusReport, error)

	// Warmup runs a minimal generation round trip and classifies any
	// failure. Returns the round-trip latency in milliseconds.
	Warmup(ctx context.Context, scope domain.AccessScope) (int64, error)
}
