package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docbot/internal/core/domain"
	"github.com/custodia-labs/docbot/internal/core/ports/driven"
)

type staticTool struct {
	calls atomic.Int32
}

func (t *staticTool) Name() string        { return "list_available_documents" }
func (t *staticTool) Description() string { return "list documents" }
func (t *staticTool) Call(context.Context) (string, error) {
	t.calls.Add(1)
	return "Available documents:\n- A_2024_X: A", nil
}

func TestNewLLMService_RequiresKey(t *testing.T) {
	_, err := NewLLMService(LLMConfig{Provider: domain.AIProviderGroq})
	require.ErrorIs(t, err, domain.ErrConfiguration)
	assert.Contains(t, err.Error(), "groq API key is required")
}

func TestNewLLMService_ProviderPreset(t *testing.T) {
	svc, err := NewLLMService(LLMConfig{Provider: domain.AIProviderCerebras, APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, "https://api.cerebras.ai/v1", svc.baseURL)
	assert.Equal(t, DefaultLLMModel, svc.ModelName())
}

func TestComplete_Text(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		var req chatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "llama-3.1-8b-instant", req.Model)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Equal(t, "be brief", req.Messages[0].Content)
		assert.Equal(t, 256, req.MaxTokens)
		assert.Empty(t, req.Tools)
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"hello"},"finish_reason":"stop"}]}`))
	}))
	defer server.Close()

	svc, err := NewLLMService(LLMConfig{APIKey: "k", BaseURL: server.URL})
	require.NoError(t, err)

	out, err := svc.Complete(context.Background(), driven.CompletionRequest{
		Model:     "llama-3.1-8b-instant",
		System:    "be brief",
		Prompt:    "hi",
		MaxTokens: 256,
	})

	require.NoError(t, err)
	assert.Equal(t, "hello", out)
}

func TestComplete_ToolRound(t *testing.T) {
	var round atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if round.Add(1) == 1 {
			require.Len(t, req.Tools, 1)
			assert.Equal(t, "list_available_documents", req.Tools[0].Function.Name)
			_, _ = w.Write([]byte(`{"choices":[{"message":{"content":null,"tool_calls":[` +
				`{"id":"call_1","type":"function","function":{"name":"list_available_documents","arguments":"{}"}}]},` +
				`"finish_reason":"tool_calls"}]}`))
			return
		}
		last := req.Messages[len(req.Messages)-1]
		assert.Equal(t, "tool", last.Role)
		assert.Equal(t, "call_1", last.ToolCallID)
		assert.Contains(t, last.Content, "A_2024_X")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"{\"confidence\":\"low\"}"}}]}`))
	}))
	defer server.Close()

	tool := &staticTool{}
	svc, err := NewLLMService(LLMConfig{APIKey: "k", BaseURL: server.URL})
	require.NoError(t, err)

	out, err := svc.Complete(context.Background(), driven.CompletionRequest{Prompt: "what docs?", Tools: []driven.Tool{tool}})

	require.NoError(t, err)
	assert.Equal(t, `{"confidence":"low"}`, out)
	assert.Equal(t, int32(1), tool.calls.Load())
	assert.Equal(t, int32(2), round.Load())
}

func TestComplete_ToolRoundsAreBounded(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		requests.Add(1)
		if len(req.Tools) == 0 {
			_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"final"}}]}`))
			return
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"tool_calls":[` +
			`{"id":"c","type":"function","function":{"name":"list_available_documents","arguments":"{}"}}]}}]}`))
	}))
	defer server.Close()

	svc, err := NewLLMService(LLMConfig{APIKey: "k", BaseURL: server.URL})
	require.NoError(t, err)

	out, err := svc.Complete(context.Background(), driven.CompletionRequest{Prompt: "p", Tools: []driven.Tool{&staticTool{}}})

	require.NoError(t, err)
	assert.Equal(t, "final", out)
	assert.Equal(t, int32(driven.MaxToolRounds+1), requests.Load())
}

func TestComplete_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"Rate limit reached for model"}}`))
	}))
	defer server.Close()

	svc, err := NewLLMService(LLMConfig{Provider: domain.AIProviderGroq, APIKey: "k", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = svc.Complete(context.Background(), driven.CompletionRequest{Prompt: "p"})

	require.ErrorIs(t, err, domain.ErrRateLimited)
}

func TestPing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models", r.URL.Path)
		assert.Equal(t, "Bearer k", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	defer server.Close()

	svc, err := NewLLMService(LLMConfig{APIKey: "k", BaseURL: server.URL})
	require.NoError(t, err)
	assert.NoError(t, svc.Ping(context.Background()))
}
