package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors. The HTTP adapter maps
// each of these to a wire code and status; validation errors are never
// retried, availability errors carry remediation text.
var (
	// ErrInvalidMessage indicates an empty or unusable chat message.
	ErrInvalidMessage = errors.New("invalid message")

	// ErrInvalidQuery indicates an empty or unusable search query.
	ErrInvalidQuery = errors.New("invalid query")

	// ErrInvalidPath indicates a malformed corpus file path.
	ErrInvalidPath = errors.New("invalid path")

	// ErrUnauthorized indicates the caller presented no usable identity.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates the caller's scope does not permit the operation.
	ErrForbidden = errors.New("forbidden")

	// ErrChatDisabled indicates the deploy/feature gate is closed.
	// Nothing behind the gate is reachable until the target is local.
	ErrChatDisabled = errors.New("axchat disabled")

	// ErrGeneratorOffline indicates the generation service is unreachable.
	ErrGeneratorOffline = errors.New("generation service offline")

	// ErrModelOffline indicates the service is reachable and the model is
	// installed, but generation returned nothing.
	ErrModelOffline = errors.New("model offline")

	// ErrModelWarmupFailed indicates a warmup round-trip produced no output.
	ErrModelWarmupFailed = errors.New("model warmup failed")

	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrReindexFailed indicates the whole rebuild operation failed.
	// Per-file failures during indexing are skipped, never surfaced here.
	ErrReindexFailed = errors.New("reindex failed")

	// ErrIndexUnavailable indicates the retrieval index is absent or unreadable.
	ErrIndexUnavailable = errors.New("retrieval index unavailable")
)

// ModelMissingError indicates the generation service is reachable but the
// configured model is not installed. It carries the installed-model list so
// callers can surface actionable remediation.
type ModelMissingError struct {
	Model     string
	Available []string
}

func (e *ModelMissingError) Error() string {
	if len(e.Available) == 0 {
		return fmt.Sprintf("model %q not installed", e.Model)
	}
	return fmt.Sprintf("model %q not installed (available: %s)", e.Model, strings.Join(e.Available, ", "))
}

// Is reports whether target matches this error kind, so
// errors.Is(err, &ModelMissingError{}) works without field comparison.
func (e *ModelMissingError) Is(target error) bool {
	_, ok := target.(*ModelMissingError)
	return ok
}
