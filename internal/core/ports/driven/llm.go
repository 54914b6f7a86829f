// Package driven provides interfaces for infrastructure adapters (secondary/outbound ports).
package driven

import "context"

// LLMService is a chat model used for research tasks, synthesis and the
// review assistant. It is optional: when nil, research falls back to offline
// list screening and synthesis escalates for manual review.
//
// Implementations: Anthropic, OpenAI, Ollama.
type LLMService interface {
	// Complete runs one completion and returns the model's reply.
	Complete(ctx context.Context, req Completion) (*CompletionResult, error)

	// ModelName returns the configured model.
	ModelName() string

	// Ping checks connectivity and credentials without running inference.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// Completion is one request to the model.
type Completion struct {
	// System sets the model's instructions.
	System string

	// Messages are the conversation turns, oldest first.
	Messages []ChatMessage

	// MaxTokens caps the reply. Zero uses the adapter default.
	MaxTokens int

	// Temperature is sent as given; research and synthesis use 0.
	Temperature float64

	// JSON asks the model for a single JSON object.
	JSON bool
}

// Role values for ChatMessage.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is one conversation turn.
type ChatMessage struct {
	Role    string
	Content string
}

// CompletionResult is the model's reply.
type CompletionResult struct {
	Text string

	// Truncated is set when the reply stopped at MaxTokens. JSON replies cut
	// short usually fail to parse and fall back to conservative defaults.
	Truncated bool

	InputTokens  int
	OutputTokens int
}

// UserPrompt builds a single-turn completion.
func UserPrompt(system, prompt string, maxTokens int) Completion {
	return Completion{
		System:    system,
		Messages:  []ChatMessage{{Role: RoleUser, Content: prompt}},
		MaxTokens: maxTokens,
	}
}
