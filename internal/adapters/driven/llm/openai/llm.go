// Package openai provides an LLM service adapter for the OpenAI chat
// completions API and the compatible APIs of Groq, Cerebras and OpenRouter.
package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/custodia-labs/docbot/internal/adapters/driven/llm/llmhttp"
	"github.com/custodia-labs/docbot/internal/core/domain"
	"github.com/custodia-labs/docbot/internal/core/ports/driven"
	"github.com/custodia-labs/docbot/internal/logger"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// Default configuration values.
const (
	DefaultBaseURL    = "https://api.openai.com/v1"
	DefaultLLMModel   = "gpt-4o-mini"
	DefaultLLMTimeout = 120 * time.Second
)

// BaseURLs are the endpoints of the OpenAI-compatible providers.
var BaseURLs = map[domain.AIProvider]string{
	domain.AIProviderOpenAI:     DefaultBaseURL,
	domain.AIProviderGroq:       "https://api.groq.com/openai/v1",
	domain.AIProviderCerebras:   "https://api.cerebras.ai/v1",
	domain.AIProviderOpenRouter: "https://openrouter.ai/api/v1",
}

// LLMConfig holds configuration for an OpenAI-compatible LLM service.
type LLMConfig struct {
	// Provider selects the endpoint preset (default: openai).
	Provider domain.AIProvider

	// APIKey is the provider API key (required).
	APIKey string

	// BaseURL overrides the provider preset.
	BaseURL string

	// Model is the default model (default: gpt-4o-mini).
	Model string

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration

	// RequestsPerMinute paces requests client-side (0 = unlimited).
	RequestsPerMinute int
}

// LLMService provides completions over an OpenAI-compatible API.
type LLMService struct {
	http    *llmhttp.Client
	baseURL string
	model   string
}

// chatCompletionRequest is the /chat/completions request format.
type chatCompletionRequest struct {
	Model       string              `json:"model"`
	Messages    []chatCompletionMsg `json:"messages"`
	Tools       []toolSpec          `json:"tools,omitempty"`
	MaxTokens   int                 `json:"max_tokens,omitempty"`
	Temperature float64             `json:"temperature,omitempty"`
}

// chatCompletionMsg is the chat message format.
type chatCompletionMsg struct {
	Role       string     `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []toolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

// toolSpec declares a callable function.
type toolSpec struct {
	Type     string       `json:"type"`
	Function functionSpec `json:"function"`
}

type functionSpec struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// toolCall is a function invocation requested by the model.
type toolCall struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Function struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
	} `json:"function"`
}

// chatCompletionResponse is the /chat/completions response format.
type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content   *string    `json:"content"`
			ToolCalls []toolCall `json:"tool_calls"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// NewLLMService creates a new OpenAI-compatible LLM service.
func NewLLMService(cfg LLMConfig) (*LLMService, error) {
	if cfg.Provider == "" {
		cfg.Provider = domain.AIProviderOpenAI
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: %s API key is required", domain.ErrConfiguration, cfg.Provider)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = BaseURLs[cfg.Provider]
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedType, cfg.Provider)
	}
	if cfg.Model == "" {
		cfg.Model = DefaultLLMModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultLLMTimeout
	}

	return &LLMService{
		http: llmhttp.NewClient(cfg.Provider.String(), cfg.Timeout, llmhttp.NewLimiter(cfg.RequestsPerMinute),
			map[string]string{"Authorization": "Bearer " + cfg.APIKey}),
		baseURL: cfg.BaseURL,
		model:   cfg.Model,
	}, nil
}

// Complete runs a completion, executing tool calls for up to
// driven.MaxToolRounds rounds before forcing a text answer.
func (s *LLMService) Complete(ctx context.Context, req driven.CompletionRequest) (string, error) {
	model := req.Model
	if model == "" {
		model = s.model
	}

	messages := make([]chatCompletionMsg, 0, 4)
	if req.System != "" {
		messages = append(messages, chatCompletionMsg{Role: "system", Content: req.System})
	}
	messages = append(messages, chatCompletionMsg{Role: "user", Content: req.Prompt})

	for round := 0; ; round++ {
		body := chatCompletionRequest{
			Model:    model,
			Messages: messages,
		}
		if req.MaxTokens > 0 {
			body.MaxTokens = req.MaxTokens
		}
		if req.Temperature > 0 {
			body.Temperature = req.Temperature
		}
		if round < driven.MaxToolRounds {
			body.Tools = toolSpecs(req.Tools)
		}

		var resp chatCompletionResponse
		if err := s.http.PostJSON(ctx, s.baseURL+"/chat/completions", body, &resp); err != nil {
			return "", err
		}
		if resp.Error != nil {
			return "", fmt.Errorf("%s error: %s", s.http.Provider, resp.Error.Message)
		}
		if len(resp.Choices) == 0 {
			return "", fmt.Errorf("%s: no response choices returned", s.http.Provider)
		}

		msg := resp.Choices[0].Message
		if len(msg.ToolCalls) == 0 || len(body.Tools) == 0 {
			if msg.Content == nil {
				return "", nil
			}
			return *msg.Content, nil
		}

		assistant := chatCompletionMsg{Role: "assistant", ToolCalls: msg.ToolCalls}
		if msg.Content != nil {
			assistant.Content = *msg.Content
		}
		messages = append(messages, assistant)
		for _, call := range msg.ToolCalls {
			messages = append(messages, chatCompletionMsg{
				Role:       "tool",
				ToolCallID: call.ID,
				Content:    runTool(ctx, req.Tools, call.Function.Name),
			})
		}
	}
}

// toolSpecs converts parameterless tools to function declarations.
func toolSpecs(tools []driven.Tool) []toolSpec {
	if len(tools) == 0 {
		return nil
	}
	specs := make([]toolSpec, len(tools))
	for i, t := range tools {
		specs[i] = toolSpec{
			Type: "function",
			Function: functionSpec{
				Name:        t.Name(),
				Description: t.Description(),
				Parameters:  map[string]any{"type": "object", "properties": map[string]any{}},
			},
		}
	}
	return specs
}

// runTool executes a requested tool. Failures are reported back to the
// model as text so it can continue.
func runTool(ctx context.Context, tools []driven.Tool, name string) string {
	tool, ok := driven.FindTool(tools, name)
	if !ok {
		return fmt.Sprintf("unknown tool %q", name)
	}
	logger.Debug("Model called tool %s", name)
	out, err := tool.Call(ctx)
	if err != nil {
		data, _ := json.Marshal(map[string]string{"error": err.Error()})
		return string(data)
	}
	return out
}

// ModelName returns the default model.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping validates the service is reachable by checking the /models endpoint.
// This is a lightweight check that validates the API key without running inference.
func (s *LLMService) Ping(ctx context.Context) error {
	if err := s.http.GetJSON(ctx, s.baseURL+"/models", nil); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Close releases resources.
func (s *LLMService) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}
