// Package gemini provides an LLM service adapter using the Google GenAI SDK.
package gemini

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/genai"

	"github.com/custodia-labs/docbot/internal/adapters/driven/llm/llmhttp"
	"github.com/custodia-labs/docbot/internal/core/domain"
	"github.com/custodia-labs/docbot/internal/core/ports/driven"
	"github.com/custodia-labs/docbot/internal/logger"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// Default configuration values.
const (
	DefaultModel   = "gemini-2.0-flash"
	DefaultTimeout = 120 * time.Second
)

// Config holds configuration for the Gemini LLM service.
type Config struct {
	// APIKey is the Gemini API key (required).
	APIKey string

	// BaseURL overrides the API endpoint.
	BaseURL string

	// Model is the default model (default: gemini-2.0-flash).
	Model string

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration

	// RequestsPerMinute paces requests client-side (0 = unlimited).
	RequestsPerMinute int
}

// LLMService provides completions using the Gemini API.
type LLMService struct {
	client  *genai.Client
	model   string
	timeout time.Duration
	limiter *llmhttp.Limiter
}

// NewLLMService creates a new Gemini LLM service.
func NewLLMService(ctx context.Context, cfg Config) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key is required", domain.ErrConfiguration)
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &LLMService{
		client:  client,
		model:   cfg.Model,
		timeout: cfg.Timeout,
		limiter: llmhttp.NewLimiter(cfg.RequestsPerMinute),
	}, nil
}

// Complete runs a completion, answering function calls for up to
// driven.MaxToolRounds rounds.
func (s *LLMService) Complete(ctx context.Context, req driven.CompletionRequest) (string, error) {
	model := req.Model
	if model == "" {
		model = s.model
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	contents := []*genai.Content{genai.NewContentFromText(req.Prompt, genai.RoleUser)}

	for round := 0; ; round++ {
		cfg := generationConfig(req)
		if round < driven.MaxToolRounds {
			cfg.Tools = toolDeclarations(req.Tools)
		}

		if err := s.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("gemini: wait for rate limiter: %w", err)
		}
		resp, err := s.client.Models.GenerateContent(ctx, model, contents, cfg)
		if err != nil {
			return "", fmt.Errorf("gemini: %w", err)
		}

		calls := resp.FunctionCalls()
		if len(calls) == 0 || len(cfg.Tools) == 0 {
			return resp.Text(), nil
		}
		if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
			return "", fmt.Errorf("gemini: function call without candidate content")
		}

		contents = append(contents, resp.Candidates[0].Content)
		parts := make([]*genai.Part, 0, len(calls))
		for _, call := range calls {
			parts = append(parts, genai.NewPartFromFunctionResponse(call.Name, runTool(ctx, req.Tools, call.Name)))
		}
		contents = append(contents, genai.NewContentFromParts(parts, genai.RoleUser))
	}
}

func generationConfig(req driven.CompletionRequest) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{}
	if req.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if req.Temperature > 0 {
		cfg.Temperature = genai.Ptr(float32(req.Temperature))
	}
	if req.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(req.MaxTokens) //nolint:gosec // bounded by settings
	}
	return cfg
}

func toolDeclarations(tools []driven.Tool) []*genai.Tool {
	if len(tools) == 0 {
		return nil
	}
	decls := make([]*genai.FunctionDeclaration, len(tools))
	for i, t := range tools {
		decls[i] = &genai.FunctionDeclaration{
			Name:        t.Name(),
			Description: t.Description(),
		}
	}
	return []*genai.Tool{{FunctionDeclarations: decls}}
}

func runTool(ctx context.Context, tools []driven.Tool, name string) map[string]any {
	tool, ok := driven.FindTool(tools, name)
	if !ok {
		return map[string]any{"error": fmt.Sprintf("unknown tool %q", name)}
	}
	logger.Debug("Model called tool %s", name)
	out, err := tool.Call(ctx)
	if err != nil {
		return map[string]any{"error": err.Error()}
	}
	return map[string]any{"output": out}
}

// ModelName returns the default model.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping validates the API key by fetching the default model's metadata.
func (s *LLMService) Ping(ctx context.Context) error {
	if _, err := s.client.Models.Get(ctx, s.model, nil); err != nil {
		return fmt.Errorf("gemini: ping failed: %w", err)
	}
	return nil
}

// Close releases resources.
func (s *LLMService) Close() error {
	return nil
}
