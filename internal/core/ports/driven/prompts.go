package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// Unknown names return an error; known names without an override on disk
	// return the built-in default.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names. Each research template expects a single %s
// placeholder receiving the rendered subject description.
const (
	// PromptSanctions screens a person or entity against sanctions lists.
	PromptSanctions = "sanctions"

	// PromptPEP classifies political exposure.
	PromptPEP = "pep"

	// PromptAdverseMedia searches for negative news.
	PromptAdverseMedia = "adverse_media"

	// PromptEntityVerification verifies corporate registration and ownership.
	PromptEntityVerification = "entity_verification"

	// PromptJurisdiction assesses country risk.
	PromptJurisdiction = "jurisdiction"

	// PromptSynthesis is the system prompt for the cross-referencing pass.
	// It has no format placeholders.
	PromptSynthesis = "synthesis"

	// PromptReviewAssistant is the system prompt for officer questions.
	// The template expects a %s placeholder for the case context.
	PromptReviewAssistant = "review_assistant"
)
