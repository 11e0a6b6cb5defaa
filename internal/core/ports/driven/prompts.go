package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files, embed them in the binary,
// or fetch them from a remote configuration service.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// Returns an error if the prompt has no override and no default.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	// This is useful when prompts may have been edited on disk.
	Reload()
}

// Well-known prompt names used throughout the application.
// These constants define the contract between prompt consumers and providers.
const (
	// PromptTriageSystem is the system instruction for document disambiguation.
	// It has no format placeholders.
	PromptTriageSystem = "triage_system"

	// PromptTriageUser is the disambiguation prompt. Placeholders, in order:
	// %s question, %s context hint, %s formatted catalog.
	PromptTriageUser = "triage_user"

	// PromptAnswerSystem is the system instruction for answer synthesis.
	// The single %s placeholder receives the language instruction.
	PromptAnswerSystem = "answer_system"

	// PromptAnswerUser is the answering prompt. Placeholders: %s question, %s context.
	PromptAnswerUser = "answer_user"
)

// AllPromptNames returns every well-known prompt name.
func AllPromptNames() []string {
	return []string{PromptTriageSystem, PromptTriageUser, PromptAnswerSystem, PromptAnswerUser}
}
