package driven

// PromptStore provides access to generation prompt templates.
// Implementations may load prompts from files, embed them in the binary,
// or fetch them from a remote configuration service.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// Returns the prompt content and any error encountered.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	// This is useful when prompts may have been edited on disk.
	Reload()
}

// Well-known prompt names used throughout the application.
// These constants define the contract between prompt consumers and providers.
const (
	// PromptChatSystem is the grounding system prompt for QA answers.
	// This prompt has no format placeholders.
	PromptChatSystem = "chat_system"

	// PromptAnswer frames the retrieved context and the question.
	// The template expects %s (context blocks) and %s (question) placeholders.
	PromptAnswer = "qa_answer"
)
