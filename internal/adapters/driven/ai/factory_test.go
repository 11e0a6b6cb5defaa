package ai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	anthropicllm "github.com/custodia-labs/docbot/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/custodia-labs/docbot/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/docbot/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/docbot/internal/core/domain"
)

func settingsWith(providers map[domain.AIProvider]domain.ProviderSettings) *domain.AppSettings {
	s := domain.DefaultAppSettings()
	s.Providers = providers
	return &s
}

func TestCreateLLMService_Providers(t *testing.T) {
	settings := settingsWith(map[domain.AIProvider]domain.ProviderSettings{
		domain.AIProviderGroq:      {APIKey: "gk"},
		domain.AIProviderAnthropic: {APIKey: "ak"},
		domain.AIProviderGemini:    {APIKey: "xk"},
	})
	ctx := context.Background()

	svc, err := CreateLLMService(ctx, domain.AIProviderGroq, "llama-3.1-8b-instant", settings)
	require.NoError(t, err)
	assert.IsType(t, &openaillm.LLMService{}, svc)
	assert.Equal(t, "llama-3.1-8b-instant", svc.ModelName())

	svc, err = CreateLLMService(ctx, domain.AIProviderAnthropic, "", settings)
	require.NoError(t, err)
	assert.IsType(t, &anthropicllm.LLMService{}, svc)

	svc, err = CreateLLMService(ctx, domain.AIProviderOllama, "qwen2.5", settings)
	require.NoError(t, err)
	assert.IsType(t, &ollamallm.LLMService{}, svc)

	svc, err = CreateLLMService(ctx, domain.AIProviderGemini, "", settings)
	require.NoError(t, err)
	assert.NotNil(t, svc)
}

func TestCreateLLMService_MissingKey(t *testing.T) {
	svc, err := CreateLLMService(context.Background(), domain.AIProviderCerebras, "m", settingsWith(nil))

	require.ErrorIs(t, err, domain.ErrConfiguration)
	assert.Nil(t, svc)
}

func TestCreateLLMService_Unsupported(t *testing.T) {
	_, err := CreateLLMService(context.Background(), domain.AIProvider("acme"), "m", settingsWith(nil))
	require.ErrorIs(t, err, domain.ErrConfiguration)

	_, err = CreateLLMService(context.Background(), domain.AIProviderGroq, "m", nil)
	require.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestCreateEmbeddingService(t *testing.T) {
	settings := settingsWith(nil)

	svc, err := CreateEmbeddingService(context.Background(), settings)
	require.NoError(t, err)
	assert.Equal(t, "nomic-embed-text", svc.ModelName())

	settings.Embedding = domain.EmbeddingSettings{Provider: domain.AIProviderOpenAI, Model: "text-embedding-3-small"}
	svc, err = CreateEmbeddingService(context.Background(), settings)
	require.ErrorIs(t, err, domain.ErrConfiguration)
	assert.Nil(t, svc)

	settings.Embedding = domain.EmbeddingSettings{Provider: domain.AIProviderAnthropic}
	_, err = CreateEmbeddingService(context.Background(), settings)
	require.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestCreateAndValidateEmbeddingService_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	settings := settingsWith(map[domain.AIProvider]domain.ProviderSettings{
		domain.AIProviderOllama: {BaseURL: server.URL},
	})

	_, err := CreateAndValidateEmbeddingService(context.Background(), settings)

	require.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
	assert.Contains(t, err.Error(), "unreachable")
}

func TestCheckServices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tags", r.URL.Path)
		_, _ = w.Write([]byte(`{"models":[]}`))
	}))
	defer server.Close()

	settings := settingsWith(map[domain.AIProvider]domain.ProviderSettings{
		domain.AIProviderOllama: {BaseURL: server.URL},
	})
	settings.LLM.Model = "ollama:llama3.2"
	settings.LLM.FallbackModel = "groq:llama-3.1-8b-instant"

	results := CheckServices(context.Background(), settings)

	require.Len(t, results, 3)
	assert.Equal(t, "llm ollama:llama3.2", results[0].Name)
	assert.NoError(t, results[0].Err)
	assert.Equal(t, "llm groq:llama-3.1-8b-instant", results[1].Name)
	assert.ErrorIs(t, results[1].Err, domain.ErrConfiguration)
	assert.Equal(t, "embedding ollama:nomic-embed-text", results[2].Name)
	assert.NoError(t, results[2].Err)
}
