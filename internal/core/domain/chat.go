package domain

// Mode selects how a chat message is answered.
type Mode string

// Answer modes. QA grounds a generated answer in retrieved chunks;
// Search returns the references without calling the generator.
const (
	ModeQA     Mode = "qa"
	ModeSearch Mode = "search"
)

// Turn is a caller-supplied history item. History is bounded per request
// and never persisted server-side.
type Turn struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// ChatRequest is one incoming conversational message.
type ChatRequest struct {
	Message string `json:"message"`
	Mode    Mode   `json:"mode,omitempty"`
	History []Turn `json:"history,omitempty"`
}

// ChatNotes carries per-response diagnostics.
type ChatNotes struct {
	LatencyMS      int64  `json:"latency_ms"`
	Model          string `json:"model"`
	Scope          Role   `json:"scope"`
	Mode           Mode   `json:"mode"`
	RetrievalQuery string `json:"retrieval_query,omitempty"`
}

// ChatResponse is the orchestrator's answer to one message.
type ChatResponse struct {
	AnswerMarkdown string      `json:"answer_markdown"`
	Refs           []Reference `json:"refs"`
	Notes          ChatNotes   `json:"notes"`
}

// ModelStatus is the result of probing the generation service.
type ModelStatus struct {
	// Online is false when the service did not answer the model listing
	// within the probe deadline.
	Online bool

	// Available lists installed model names, empty when offline.
	Available []string
}

// Ready reports whether the named model is installed on an online service.
func (s ModelStatus) Ready(model string) bool {
	if !s.Online {
		return false
	}
	for _, name := range s.Available {
		if name == model {
			return true
		}
	}
	return false
}
