package domain

import (
	"fmt"
	"strings"
	"time"
)

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"

	// AIProviderGroq is Groq's OpenAI-compatible API.
	AIProviderGroq AIProvider = "groq"

	// AIProviderCerebras is Cerebras' OpenAI-compatible API.
	AIProviderCerebras AIProvider = "cerebras"

	// AIProviderOpenRouter is OpenRouter's OpenAI-compatible API.
	AIProviderOpenRouter AIProvider = "openrouter"

	// AIProviderGemini is Google's Gemini API.
	AIProviderGemini AIProvider = "gemini"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic,
		AIProviderGroq, AIProviderCerebras, AIProviderOpenRouter, AIProviderGemini:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p.IsValid() && p != AIProviderOllama
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// IsOpenAICompatible returns true if the provider speaks the OpenAI chat completions API.
func (p AIProvider) IsOpenAICompatible() bool {
	switch p {
	case AIProviderOpenAI, AIProviderGroq, AIProviderCerebras, AIProviderOpenRouter:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	case AIProviderGroq:
		return "Groq (cloud)"
	case AIProviderCerebras:
		return "Cerebras (cloud)"
	case AIProviderOpenRouter:
		return "OpenRouter (cloud)"
	case AIProviderGemini:
		return "Google Gemini (cloud)"
	default:
		return unknownDescription
	}
}

// ModelRef names a model on a provider, written "provider:model".
type ModelRef struct {
	// Provider serves the model.
	Provider AIProvider

	// Model is the provider-specific model name.
	Model string
}

// ParseModelRef parses "provider:model". Model names may contain further
// colons (e.g. ollama:llama3.1:8b). A reference whose prefix is not a known
// provider is returned with an empty provider and the whole string as model.
func ParseModelRef(ref string) ModelRef {
	ref = strings.TrimSpace(ref)
	prefix, rest, ok := strings.Cut(ref, ":")
	if ok && AIProvider(prefix).IsValid() {
		return ModelRef{Provider: AIProvider(prefix), Model: rest}
	}
	return ModelRef{Model: ref}
}

// String returns the "provider:model" form.
func (r ModelRef) String() string {
	if r.Provider == "" {
		return r.Model
	}
	return string(r.Provider) + ":" + r.Model
}

// IsZero returns true for an empty reference.
func (r ModelRef) IsZero() bool {
	return r.Provider == "" && r.Model == ""
}

// ProviderSettings holds credentials and endpoint for one provider.
type ProviderSettings struct {
	// APIKey is the API key (cloud providers).
	APIKey string

	// BaseURL overrides the provider's default endpoint.
	BaseURL string
}

// LLMSettings holds language model configuration.
type LLMSettings struct {
	// Model is the primary model reference ("provider:model").
	Model string

	// FallbackModel is used once when the primary is rate limited. Empty disables fallback.
	FallbackModel string

	// Temperature controls randomness for answer synthesis.
	Temperature float64

	// MaxTokens bounds answer length (0 = provider default).
	MaxTokens int

	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration

	// RequestsPerMinute paces outbound model calls client-side (0 = unlimited).
	RequestsPerMinute int
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	return e.Provider.IsValid() && e.Provider != AIProviderAnthropic &&
		e.Provider != AIProviderGroq && e.Provider != AIProviderCerebras
}

// IndexBackend selects the chunk index implementation.
type IndexBackend string

// Available index backends.
const (
	// IndexBackendSQLite stores chunks and embeddings in a local SQLite file.
	IndexBackendSQLite IndexBackend = "sqlite"

	// IndexBackendChroma talks to a Chroma server over HTTP.
	IndexBackendChroma IndexBackend = "chroma"

	// IndexBackendMemory keeps chunks in process memory.
	IndexBackendMemory IndexBackend = "memory"
)

// IsValid returns true if the backend is recognised.
func (b IndexBackend) IsValid() bool {
	switch b {
	case IndexBackendSQLite, IndexBackendChroma, IndexBackendMemory:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (b IndexBackend) String() string {
	return string(b)
}

// IndexSettings holds chunk index configuration.
type IndexSettings struct {
	// Backend selects the index implementation.
	Backend IndexBackend

	// DataDir is the SQLite data directory (empty = ~/.docbot/data).
	DataDir string

	// URL is the Chroma server URL (e.g. http://localhost:8001).
	URL string

	// Collection is the collection holding document chunks.
	Collection string

	// Tenant is the Chroma tenant.
	Tenant string

	// Database is the Chroma database.
	Database string

	// MetadataLimit caps how many chunk metadata entries catalog discovery reads.
	MetadataLimit int
}

// RetrievalSettings holds similarity search configuration.
type RetrievalSettings struct {
	// TopK is the number of nearest chunks requested from the index.
	TopK int

	// SimilarityThreshold is the minimum similarity a chunk must meet.
	SimilarityThreshold float64
}

// ServerSettings holds HTTP server configuration.
type ServerSettings struct {
	// Addr is the listen address.
	Addr string

	// StreamDelay is the pause between streamed lines.
	StreamDelay time.Duration

	// AllowOrigins lists CORS origins.
	AllowOrigins []string
}

// AppSettings holds all application settings.
type AppSettings struct {
	// LLM holds language model settings.
	LLM LLMSettings

	// Embedding holds embedding provider settings.
	Embedding EmbeddingSettings

	// Providers holds per-provider credentials and endpoints.
	Providers map[AIProvider]ProviderSettings

	// Index holds chunk index settings.
	Index IndexSettings

	// Retrieval holds similarity search settings.
	Retrieval RetrievalSettings

	// Server holds HTTP server settings.
	Server ServerSettings
}

// Provider returns the settings for a provider, or zero settings.
func (s AppSettings) Provider(p AIProvider) ProviderSettings {
	if s.Providers == nil {
		return ProviderSettings{}
	}
	return s.Providers[p]
}

// Validate checks that the configured models and index can be used.
// Failures wrap ErrConfiguration.
func (s AppSettings) Validate() error {
	primary := ParseModelRef(s.LLM.Model)
	if primary.Provider == "" || primary.Model == "" {
		return fmt.Errorf("%w: invalid model reference %q (want provider:model)", ErrConfiguration, s.LLM.Model)
	}
	if err := s.requireKey(primary.Provider); err != nil {
		return err
	}
	if s.LLM.FallbackModel != "" {
		fallback := ParseModelRef(s.LLM.FallbackModel)
		if fallback.Provider == "" || fallback.Model == "" {
			return fmt.Errorf("%w: invalid fallback model reference %q", ErrConfiguration, s.LLM.FallbackModel)
		}
		if err := s.requireKey(fallback.Provider); err != nil {
			return err
		}
	}
	if !s.Index.Backend.IsValid() {
		return fmt.Errorf("%w: unknown index backend %q", ErrConfiguration, s.Index.Backend)
	}
	if s.Index.Backend == IndexBackendChroma && s.Index.URL == "" {
		return fmt.Errorf("%w: chroma index requires a server URL", ErrConfiguration)
	}
	if s.Retrieval.TopK <= 0 {
		return fmt.Errorf("%w: top_k must be positive", ErrConfiguration)
	}
	if s.Retrieval.SimilarityThreshold < 0 || s.Retrieval.SimilarityThreshold > 1 {
		return fmt.Errorf("%w: similarity threshold must be within [0, 1]", ErrConfiguration)
	}
	return nil
}

func (s AppSettings) requireKey(p AIProvider) error {
	if p.RequiresAPIKey() && s.Provider(p).APIKey == "" {
		return fmt.Errorf("%w: %s API key is required", ErrConfiguration, p)
	}
	return nil
}

// DefaultAppSettings returns settings with sensible defaults.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		LLM: LLMSettings{
			Model:       "groq:llama-3.1-8b-instant",
			Temperature: 0.1,
			Timeout:     120 * time.Second,
		},
		Embedding: EmbeddingSettings{
			Provider: AIProviderOllama,
			Model:    "nomic-embed-text",
		},
		Providers: map[AIProvider]ProviderSettings{},
		Index: IndexSettings{
			Backend:       IndexBackendSQLite,
			Collection:    "technical_manuals",
			Tenant:        "default_tenant",
			Database:      "default_database",
			MetadataLimit: 10000,
		},
		Retrieval: RetrievalSettings{
			TopK:                5,
			SimilarityThreshold: 0.3,
		},
		Server: ServerSettings{
			Addr:         ":8000",
			StreamDelay:  40 * time.Millisecond,
			AllowOrigins: []string{"*"},
		},
	}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderGroq,
		AIProviderCerebras,
		AIProviderOpenAI,
		AIProviderOpenRouter,
		AIProviderAnthropic,
		AIProviderGemini,
		AIProviderOllama,
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderGemini,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
		AIProviderGemini: "gemini-embedding-001",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
		// Gemini models
		"gemini-embedding-001": 3072,
		"text-embedding-004":   768,
	}
}
