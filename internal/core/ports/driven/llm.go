// Package driven provides interfaces for infrastructure adapters (secondary/outbound ports).
package driven

import "context"

// LLMService provides completion for the disambiguation and answering steps.
//
// Implementations may include:
//   - OpenAI-compatible APIs (OpenAI, Groq, Cerebras, OpenRouter)
//   - Anthropic (Claude)
//   - Google Gemini
//   - Ollama (local models)
type LLMService interface {
	// Complete runs one completion. When the request carries tools, the
	// implementation lets the model call them (bounded rounds) and returns
	// the model's final text.
	Complete(ctx context.Context, req CompletionRequest) (string, error)

	// ModelName returns the default model reference used when a request names none.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// CompletionRequest is a single system + user prompt invocation.
type CompletionRequest struct {
	// Model overrides the service's default model. For routed services this
	// is a "provider:model" reference.
	Model string

	// System is the system instruction.
	System string

	// Prompt is the user prompt.
	Prompt string

	// Tools are side-effect-free capabilities the model may call.
	Tools []Tool

	// MaxTokens is the maximum number of tokens to generate (0 = provider default).
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64
}

// Tool is a parameterless capability exposed to the model.
type Tool interface {
	// Name is the function name the model calls.
	Name() string

	// Description tells the model when to call the tool.
	Description() string

	// Call runs the tool and returns its text result.
	Call(ctx context.Context) (string, error)
}

// MaxToolRounds bounds how many times a model may call tools in one completion.
const MaxToolRounds = 4

// FindTool returns the tool with the given name.
func FindTool(tools []Tool, name string) (Tool, bool) {
	for _, t := range tools {
		if t.Name() == name {
			return t, true
		}
	}
	return nil, false
}
