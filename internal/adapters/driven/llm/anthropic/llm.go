// Package anthropic provides an LLM service adapter using Anthropic API.
package anthropic

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
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
	DefaultBaseURL   = "https://api.anthropic.com"
	DefaultModel     = "claude-3-5-haiku-latest"
	DefaultTimeout   = 120 * time.Second
	DefaultMaxTokens = 1024

	// AnthropicVersion is the required API version header.
	anthropicVersion = "2023-06-01"
)

// Config holds configuration for the Anthropic LLM service.
type Config struct {
	// APIKey is the Anthropic API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.anthropic.com).
	BaseURL string

	// Model is the default model (default: claude-3-5-haiku-latest).
	Model string

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration

	// RequestsPerMinute paces requests client-side (0 = unlimited).
	RequestsPerMinute int
}

// LLMService provides completions using the Anthropic Messages API.
type LLMService struct {
	http    *llmhttp.Client
	baseURL string
	model   string
}

// messagesRequest is the /v1/messages request format.
type messagesRequest struct {
	Model       string            `json:"model"`
	Messages    []messagesMessage `json:"messages"`
	MaxTokens   int               `json:"max_tokens"`
	System      string            `json:"system,omitempty"`
	Temperature float64           `json:"temperature,omitempty"`
	Tools       []toolSpec        `json:"tools,omitempty"`
}

// messagesMessage carries either a plain string or content blocks.
type messagesMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type toolSpec struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"input_schema"`
}

type toolResult struct {
	Type      string `json:"type"`
	ToolUseID string `json:"tool_use_id"`
	Content   string `json:"content"`
}

// contentBlock is one block of an assistant reply.
type contentBlock struct {
	Type  string          `json:"type"`
	Text  string          `json:"text,omitempty"`
	ID    string          `json:"id,omitempty"`
	Name  string          `json:"name,omitempty"`
	Input json.RawMessage `json:"input,omitempty"`
}

// messagesResponse is the /v1/messages response format.
type messagesResponse struct {
	Content    []contentBlock `json:"content"`
	StopReason string         `json:"stop_reason"`
	Error      *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// NewLLMService creates a new Anthropic LLM service.
func NewLLMService(cfg Config) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: anthropic API key is required", domain.ErrConfiguration)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	headers := map[string]string{
		"x-api-key":         cfg.APIKey,
		"anthropic-version": anthropicVersion,
	}
	return &LLMService{
		http:    llmhttp.NewClient("anthropic", cfg.Timeout, llmhttp.NewLimiter(cfg.RequestsPerMinute), headers),
		baseURL: cfg.BaseURL,
		model:   cfg.Model,
	}, nil
}

// Complete runs a completion, answering tool_use blocks for up to
// driven.MaxToolRounds rounds.
func (s *LLMService) Complete(ctx context.Context, req driven.CompletionRequest) (string, error) {
	model := req.Model
	if model == "" {
		model = s.model
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		// Anthropic requires max_tokens
		maxTokens = DefaultMaxTokens
	}

	messages := []messagesMessage{{Role: "user", Content: req.Prompt}}

	for round := 0; ; round++ {
		body := messagesRequest{
			Model:     model,
			Messages:  messages,
			MaxTokens: maxTokens,
			System:    req.System,
		}
		if req.Temperature > 0 {
			body.Temperature = req.Temperature
		}
		if round < driven.MaxToolRounds {
			body.Tools = toolSpecs(req.Tools)
		}

		var resp messagesResponse
		if err := s.http.PostJSON(ctx, s.baseURL+"/v1/messages", body, &resp); err != nil {
			return "", err
		}
		if resp.Error != nil {
			return "", fmt.Errorf("anthropic error: %s", resp.Error.Message)
		}

		var text strings.Builder
		var results []toolResult
		for _, block := range resp.Content {
			switch block.Type {
			case "text":
				text.WriteString(block.Text)
			case "tool_use":
				results = append(results, toolResult{
					Type:      "tool_result",
					ToolUseID: block.ID,
					Content:   runTool(ctx, req.Tools, block.Name),
				})
			}
		}

		if len(results) == 0 || len(body.Tools) == 0 {
			return text.String(), nil
		}
		messages = append(messages,
			messagesMessage{Role: "assistant", Content: resp.Content},
			messagesMessage{Role: "user", Content: results},
		)
	}
}

func toolSpecs(tools []driven.Tool) []toolSpec {
	if len(tools) == 0 {
		return nil
	}
	specs := make([]toolSpec, len(tools))
	for i, t := range tools {
		specs[i] = toolSpec{
			Name:        t.Name(),
			Description: t.Description(),
			InputSchema: map[string]any{"type": "object", "properties": map[string]any{}},
		}
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

// Ping validates the service is reachable by checking the /v1/models endpoint.
// This is a lightweight check that validates the API key without running inference.
func (s *LLMService) Ping(ctx context.Context) error {
	if err := s.http.GetJSON(ctx, s.baseURL+"/v1/models", nil); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Close releases resources.
func (s *LLMService) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}
