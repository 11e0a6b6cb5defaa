// Package ai provides factory functions for creating AI service adapters.
package ai

import (
	"context"
	"fmt"
	"time"

	geminiembed "github.com/custodia-labs/docbot/internal/adapters/driven/embedding/gemini"
	ollamaembed "github.com/custodia-labs/docbot/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/docbot/internal/adapters/driven/embedding/openai"
	anthropicllm "github.com/custodia-labs/docbot/internal/adapters/driven/llm/anthropic"
	geminillm "github.com/custodia-labs/docbot/internal/adapters/driven/llm/gemini"
	ollamallm "github.com/custodia-labs/docbot/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/docbot/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/docbot/internal/core/domain"
	"github.com/custodia-labs/docbot/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// CreateLLMService creates the LLM adapter for one provider. The adapter's
// default model is model; requests usually override it.
func CreateLLMService(
	ctx context.Context, provider domain.AIProvider, model string, settings *domain.AppSettings,
) (driven.LLMService, error) {
	if settings == nil {
		return nil, fmt.Errorf("%w: settings are required", domain.ErrConfiguration)
	}
	creds := settings.Provider(provider)
	llm := settings.LLM

	switch {
	case provider.IsOpenAICompatible():
		return llmOrNil(openaillm.NewLLMService(openaillm.LLMConfig{
			Provider:          provider,
			APIKey:            creds.APIKey,
			BaseURL:           creds.BaseURL,
			Model:             model,
			Timeout:           llm.Timeout,
			RequestsPerMinute: llm.RequestsPerMinute,
		}))

	case provider == domain.AIProviderAnthropic:
		return llmOrNil(anthropicllm.NewLLMService(anthropicllm.Config{
			APIKey:            creds.APIKey,
			BaseURL:           creds.BaseURL,
			Model:             model,
			Timeout:           llm.Timeout,
			RequestsPerMinute: llm.RequestsPerMinute,
		}))

	case provider == domain.AIProviderGemini:
		return llmOrNil(geminillm.NewLLMService(ctx, geminillm.Config{
			APIKey:            creds.APIKey,
			BaseURL:           creds.BaseURL,
			Model:             model,
			Timeout:           llm.Timeout,
			RequestsPerMinute: llm.RequestsPerMinute,
		}))

	case provider == domain.AIProviderOllama:
		return ollamallm.NewLLMService(ollamallm.LLMConfig{
			BaseURL: creds.BaseURL,
			Model:   model,
			Timeout: llm.Timeout,
		}), nil

	default:
		return nil, fmt.Errorf("%w: unsupported LLM provider %q", domain.ErrConfiguration, provider)
	}
}

// CreateEmbeddingService creates the embedding adapter named by settings.
func CreateEmbeddingService(ctx context.Context, settings *domain.AppSettings) (driven.EmbeddingService, error) {
	if settings == nil {
		return nil, fmt.Errorf("%w: settings are required", domain.ErrConfiguration)
	}
	embed := settings.Embedding
	if !embed.IsConfigured() {
		return nil, fmt.Errorf("%w: %s does not provide embeddings", domain.ErrConfiguration, embed.Provider)
	}
	creds := settings.Provider(embed.Provider)

	switch embed.Provider {
	case domain.AIProviderOllama:
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL: creds.BaseURL,
			Model:   embed.Model,
		}), nil

	case domain.AIProviderOpenAI:
		return embeddingOrNil(openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:  creds.APIKey,
			BaseURL: creds.BaseURL,
			Model:   embed.Model,
		}))

	case domain.AIProviderGemini:
		return embeddingOrNil(geminiembed.NewEmbeddingService(ctx, geminiembed.Config{
			APIKey:  creds.APIKey,
			BaseURL: creds.BaseURL,
			Model:   embed.Model,
		}))

	default:
		return nil, fmt.Errorf("%w: unsupported embedding provider %q", domain.ErrConfiguration, embed.Provider)
	}
}

// llmOrNil keeps a failed constructor from yielding a non-nil interface.
func llmOrNil[T driven.LLMService](svc T, err error) (driven.LLMService, error) {
	if err != nil {
		return nil, err
	}
	return svc, nil
}

func embeddingOrNil[T driven.EmbeddingService](svc T, err error) (driven.EmbeddingService, error) {
	if err != nil {
		return nil, err
	}
	return svc, nil
}

// CreateAndValidateEmbeddingService creates an embedding service and checks connectivity.
func CreateAndValidateEmbeddingService(ctx context.Context, settings *domain.AppSettings) (driven.EmbeddingService, error) {
	svc, err := CreateEmbeddingService(ctx, settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := svc.Ping(pingCtx); err != nil {
		_ = svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w)", domain.ErrEmbeddingUnavailable, err)
	}
	return svc, nil
}

// CheckResult is the outcome of pinging one configured service.
type CheckResult struct {
	// Name describes the service, e.g. "llm groq:llama-3.1-8b-instant".
	Name string

	// Err is nil when the service answered.
	Err error
}

// CheckServices pings the primary model, the fallback model (if any) and
// the embedding service.
func CheckServices(ctx context.Context, settings *domain.AppSettings) []CheckResult {
	refs := []string{settings.LLM.Model}
	if settings.LLM.FallbackModel != "" {
		refs = append(refs, settings.LLM.FallbackModel)
	}

	results := make([]CheckResult, 0, len(refs)+1)
	for _, raw := range refs {
		ref := domain.ParseModelRef(raw)
		results = append(results, CheckResult{
			Name: "llm " + ref.String(),
			Err:  pingLLM(ctx, ref, settings),
		})
	}

	name := fmt.Sprintf("embedding %s:%s", settings.Embedding.Provider, settings.Embedding.Model)
	svc, err := CreateAndValidateEmbeddingService(ctx, settings)
	if err == nil {
		_ = svc.Close()
	}
	return append(results, CheckResult{Name: name, Err: err})
}

func pingLLM(ctx context.Context, ref domain.ModelRef, settings *domain.AppSettings) error {
	if ref.Provider == "" {
		return fmt.Errorf("%w: model reference %q names no provider", domain.ErrConfiguration, ref.Model)
	}
	svc, err := CreateLLMService(ctx, ref.Provider, ref.Model, settings)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrLLMUnavailable, err)
	}
	defer svc.Close()

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := svc.Ping(pingCtx); err != nil {
		return fmt.Errorf("%w: service unreachable (%w)", domain.ErrLLMUnavailable, err)
	}
	return nil
}
