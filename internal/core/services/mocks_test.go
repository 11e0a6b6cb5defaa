package services

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/docbot/internal/core/domain"
	"github.com/custodia-labs/docbot/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockLLM implements driven.LLMService with a scripted responder.
type mockLLM struct {
	mu      sync.Mutex
	calls   []driven.CompletionRequest
	respond func(req driven.CompletionRequest) (string, error)
}

func (m *mockLLM) Complete(_ context.Context, req driven.CompletionRequest) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, req)
	m.mu.Unlock()
	if m.respond == nil {
		return "", nil
	}
	return m.respond(req)
}

func (m *mockLLM) ModelName() string { return "mock:model" }

func (m *mockLLM) Ping(_ context.Context) error { return nil }

func (m *mockLLM) Close() error { return nil }

func (m *mockLLM) requests() []driven.CompletionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]driven.CompletionRequest, len(m.calls))
	copy(out, m.calls)
	return out
}

// isTriage reports whether a request is the disambiguation call.
func isTriage(req driven.CompletionRequest) bool {
	return len(req.Tools) > 0
}

// triageJSON renders a classifier reply.
func triageJSON(lang, document, confidence, clarification, query string) string {
	reply := map[string]any{
		"detected_language":  lang,
		"confidence":         confidence,
		"is_listing_request": false,
		"reformulated_query": query,
	}
	if document != "" {
		reply["identified_document"] = document
	} else {
		reply["identified_document"] = nil
	}
	if clarification != "" {
		reply["clarification_question"] = clarification
	} else {
		reply["clarification_question"] = nil
	}
	data, _ := json.Marshal(reply)
	return string(data)
}

// mockIndex implements driven.ChunkIndex for testing.
type mockIndex struct {
	mu       sync.Mutex
	metadata []domain.ChunkMetadata
	hits     []driven.IndexHit
	metaErr  error
	queryErr error

	metaCalls  int
	metaCtxErr error
	queries    []indexQuery
	delay      time.Duration
}

type indexQuery struct {
	text        string
	k           int
	documentKey string
}

func (m *mockIndex) AllMetadata(ctx context.Context, limit int) ([]domain.ChunkMetadata, error) {
	if m.delay > 0 {
		time.Sleep(m.delay)
	}
	m.mu.Lock()
	m.metaCalls++
	m.metaCtxErr = ctx.Err()
	m.mu.Unlock()
	if m.metaErr != nil {
		return nil, m.metaErr
	}
	if limit > 0 && limit < len(m.metadata) {
		return m.metadata[:limit], nil
	}
	return m.metadata, nil
}

func (m *mockIndex) Query(_ context.Context, text string, k int, documentKey string) ([]driven.IndexHit, error) {
	m.mu.Lock()
	m.queries = append(m.queries, indexQuery{text: text, k: k, documentKey: documentKey})
	m.mu.Unlock()
	if m.queryErr != nil {
		return nil, m.queryErr
	}
	var out []driven.IndexHit
	for _, h := range m.hits {
		if documentKey == "" || h.Metadata.MatchesDocument(documentKey) {
			out = append(out, h)
		}
	}
	if k < len(out) {
		out = out[:k]
	}
	return out, nil
}

func (m *mockIndex) Count(_ context.Context) (int, error) {
	return len(m.metadata), nil
}

func (m *mockIndex) Close() error { return nil }

func (m *mockIndex) metadataCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.metaCalls
}

func (m *mockIndex) lastQuery() indexQuery {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.queries) == 0 {
		return indexQuery{}
	}
	return m.queries[len(m.queries)-1]
}

// mockEmbeddingService implements driven.EmbeddingService for testing.
type mockEmbeddingService struct {
	embedErr   error
	batchSizes []int
}

func (m *mockEmbeddingService) Embed(_ context.Context, _ string) ([]float32, error) {
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

func (m *mockEmbeddingService) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	m.batchSizes = append(m.batchSizes, len(texts))
	result := make([][]float32, len(texts))
	for i := range texts {
		result[i] = []float32{0.1, 0.2, 0.3}
	}
	return result, nil
}

func (m *mockEmbeddingService) Dimensions() int { return 3 }

func (m *mockEmbeddingService) ModelName() string { return "mock-embed" }

func (m *mockEmbeddingService) Ping(_ context.Context) error { return nil }

func (m *mockEmbeddingService) Close() error { return nil }

// mockWriter implements driven.ChunkWriter for testing.
type mockWriter struct {
	chunks []domain.Chunk
	resets int
	addErr error
}

func (m *mockWriter) Add(_ context.Context, chunks []domain.Chunk) error {
	if m.addErr != nil {
		return m.addErr
	}
	m.chunks = append(m.chunks, chunks...)
	return nil
}

func (m *mockWriter) Reset(_ context.Context) error {
	m.resets++
	m.chunks = nil
	return nil
}

// paragraphSplitter implements driven.Splitter by blank-line paragraphs.
// Paragraphs starting with "|" are tables.
type paragraphSplitter struct{}

func (paragraphSplitter) Split(content string) []driven.SplitSegment {
	var out []driven.SplitSegment
	for _, p := range splitParagraphs(content) {
		typ := "text"
		if p[0] == '|' {
			typ = chunkTypeTable
		}
		out = append(out, driven.SplitSegment{Text: p, Type: typ})
	}
	return out
}

func splitParagraphs(s string) []string {
	var out []string
	for _, p := range strings.Split(s, "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// mockMetrics implements driven.Metrics for testing.
type mockMetrics struct {
	mu        sync.Mutex
	outcomes  []string
	fallbacks []string
	calls     []string
}

func (m *mockMetrics) ObserveRequest(outcome string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes = append(m.outcomes, outcome)
}

func (m *mockMetrics) ObserveFallback(step string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fallbacks = append(m.fallbacks, step)
}

func (m *mockMetrics) ObserveModelCall(model, step string, _ error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, step+"/"+model)
}

// mockPromptStore implements driven.PromptStore for testing.
type mockPromptStore struct {
	prompts map[string]string
	reloads int
}

func (m *mockPromptStore) Load(name string) (string, error) {
	if p, ok := m.prompts[name]; ok {
		return p, nil
	}
	return "", domain.ErrNotFound
}

func (m *mockPromptStore) Reload() { m.reloads++ }

// mockConfigStore implements driven.ConfigStore for testing.
type mockConfigStore struct {
	mu     sync.RWMutex
	values map[string]any
}

func newMockConfigStore() *mockConfigStore {
	return &mockConfigStore{values: make(map[string]any)}
}

func (s *mockConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

func (s *mockConfigStore) GetString(key string) string {
	v, _ := s.Get(key)
	str, _ := v.(string)
	return str
}

func (s *mockConfigStore) GetInt(key string) int {
	v, _ := s.Get(key)
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	default:
		return 0
	}
}

func (s *mockConfigStore) GetBool(key string) bool {
	v, _ := s.Get(key)
	b, _ := v.(bool)
	return b
}

func (s *mockConfigStore) GetStringSlice(key string) []string {
	v, _ := s.Get(key)
	slice, _ := v.([]string)
	return slice
}

func (s *mockConfigStore) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *mockConfigStore) Save() error { return nil }

func (s *mockConfigStore) Load() error { return nil }

func (s *mockConfigStore) Path() string { return ":memory:" }
