// Package ollama provides an LLM service adapter using Ollama.
package ollama

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/docbot/internal/adapters/driven/llm/llmhttp"
	"github.com/custodia-labs/docbot/internal/core/ports/driven"
	"github.com/custodia-labs/docbot/internal/logger"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// Default configuration values.
const (
	DefaultBaseURL    = "http://localhost:11434"
	DefaultLLMModel   = "llama3.2"
	DefaultLLMTimeout = 120 * time.Second
)

// LLMConfig holds configuration for the Ollama LLM service.
type LLMConfig struct {
	// BaseURL is the Ollama API base URL (default: http://localhost:11434).
	BaseURL string

	// Model is the default model (default: llama3.2).
	Model string

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration
}

// LLMService provides completions using a local Ollama server.
type LLMService struct {
	http    *llmhttp.Client
	baseURL string
	model   string
}

// options holds generation parameters.
type options struct {
	NumPredict  int     `json:"num_predict,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
}

// chatRequest is the Ollama /api/chat request format.
type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Tools    []toolSpec    `json:"tools,omitempty"`
	Stream   bool          `json:"stream"`
	Options  *options      `json:"options,omitempty"`
}

// chatMessage is the Ollama chat message format.
type chatMessage struct {
	Role      string     `json:"role"`
	Content   string     `json:"content"`
	ToolCalls []toolCall `json:"tool_calls,omitempty"`
	ToolName  string     `json:"tool_name,omitempty"`
}

type toolSpec struct {
	Type     string `json:"type"`
	Function struct {
		Name        string         `json:"name"`
		Description string         `json:"description"`
		Parameters  map[string]any `json:"parameters"`
	} `json:"function"`
}

type toolCall struct {
	Function struct {
		Name      string         `json:"name"`
		Arguments map[string]any `json:"arguments"`
	} `json:"function"`
}

// chatResponse is the Ollama /api/chat response format.
type chatResponse struct {
	Message chatMessage `json:"message"`
	Done    bool        `json:"done"`
	Error   string      `json:"error,omitempty"`
}

// NewLLMService creates a new Ollama LLM service.
func NewLLMService(cfg LLMConfig) *LLMService {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultLLMModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultLLMTimeout
	}

	return &LLMService{
		http:    llmhttp.NewClient("ollama", cfg.Timeout, nil, nil),
		baseURL: cfg.BaseURL,
		model:   cfg.Model,
	}
}

// Complete runs a chat completion with tool support.
func (s *LLMService) Complete(ctx context.Context, req driven.CompletionRequest) (string, error) {
	model := req.Model
	if model == "" {
		model = s.model
	}

	var messages []chatMessage
	if req.System != "" {
		messages = append(messages, chatMessage{Role: "system", Content: req.System})
	}
	messages = append(messages, chatMessage{Role: "user", Content: req.Prompt})

	var opts *options
	if req.MaxTokens > 0 || req.Temperature > 0 {
		opts = &options{NumPredict: req.MaxTokens, Temperature: req.Temperature}
	}

	for round := 0; ; round++ {
		body := chatRequest{
			Model:    model,
			Messages: messages,
			Stream:   false,
			Options:  opts,
		}
		if round < driven.MaxToolRounds {
			body.Tools = toolSpecs(req.Tools)
		}

		var resp chatResponse
		if err := s.http.PostJSON(ctx, s.baseURL+"/api/chat", body, &resp); err != nil {
			return "", err
		}
		if resp.Error != "" {
			return "", fmt.Errorf("ollama error: %s", resp.Error)
		}

		if len(resp.Message.ToolCalls) == 0 || len(body.Tools) == 0 {
			return resp.Message.Content, nil
		}

		messages = append(messages, resp.Message)
		for _, call := range resp.Message.ToolCalls {
			messages = append(messages, chatMessage{
				Role:     "tool",
				ToolName: call.Function.Name,
				Content:  runTool(ctx, req.Tools, call.Function.Name),
			})
		}
	}
}

func toolSpecs(tools []driven.Tool) []toolSpec {
	if len(tools) == 0 {
		return nil
	}
	specs := make([]toolSpec, len(tools))
	for i, t := range tools {
		specs[i].Type = "function"
		specs[i].Function.Name = t.Name()
		specs[i].Function.Description = t.Description()
		specs[i].Function.Parameters = map[string]any{"type": "object", "properties": map[string]any{}}
	}
	return specs
}

func runTool(ctx context.Context, tools []driven.Tool, name string) string {
	tool, ok := driven.FindTool(tools, name)
	if !ok {
		return fmt.Sprintf("unknown tool %q", name)
	}
	logger.Debug("Model called tool %s", name)
	out, err := tool.Call(ctx)
	if err != nil {
		return "error: " + err.Error()
	}
	return out
}

// ModelName returns the default model.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping validates the Ollama server is reachable via the /api/tags endpoint.
func (s *LLMService) Ping(ctx context.Context) error {
	if err := s.http.GetJSON(ctx, s.baseURL+"/api/tags", nil); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Close releases resources.
func (s *LLMService) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}
