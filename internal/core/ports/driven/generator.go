package driven

import (
	"context"

	"github.com/custodia-labs/axchat/internal/core/domain"
)

// ChatMessage is one turn handed to the generation service.
type ChatMessage struct {
	Role    string
	Content string
}

// GenerateOptions holds generation parameters.
type GenerateOptions struct {
	MaxTokens   int
	Temperature float64
	TopP        float64
}

// Generator produces grounded answers via an external generation service.
type Generator interface {
	// Chat runs one prompt-in/text-out round trip. The context carries
	// the call deadline; on expiry the call is aborted, never left
	// pending.
	Chat(ctx context.Context, messages []ChatMessage, opts GenerateOptions) (string, error)

	// Probe checks service liveness via the model-listing endpoint with
	// a bounded timeout. Network failure yields an offline status, not
	// an error.
	Probe(ctx context.Context) domain.ModelStatus

	// ModelName returns the configured model.
	ModelName() string

	// Host returns the service base URL for diagnostics.
	Host() string

	// Close releases resources.
	Close() error
}
