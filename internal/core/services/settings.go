package services

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/docbot/internal/core/domain"
	"github.com/custodia-labs/docbot/internal/core/ports/driven"
	"github.com/custodia-labs/docbot/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyLLMModel          = "llm.model"
	keyLLMFallbackModel  = "llm.fallback_model"
	keyLLMTemperature    = "llm.temperature"
	keyLLMMaxTokens      = "llm.max_tokens"
	keyLLMTimeout        = "llm.timeout"
	keyLLMRequestsPerMin = "llm.requests_per_minute"
	keyEmbedProvider     = "embedding.provider"
	keyEmbedModel        = "embedding.model"
	keyIndexBackend      = "index.backend"
	keyIndexDataDir      = "index.data_dir"
	keyIndexURL          = "index.url"
	keyIndexCollection   = "index.collection"
	keyIndexTenant       = "index.tenant"
	keyIndexDatabase     = "index.database"
	keyIndexMetaLimit    = "index.metadata_limit"
	keyRetrievalTopK     = "retrieval.top_k"
	keyRetrievalMinSim   = "retrieval.similarity_threshold"
	keyServerAddr        = "server.addr"
	keyServerStreamDelay = "server.stream_delay"
	keyServerOrigins     = "server.allow_origins"

	providerKeyPrefix = "providers."
	keySuffixAPIKey   = ".api_key"
	keySuffixBaseURL  = ".base_url"
)

// valueKind describes how a settable key's string value is parsed.
type valueKind int

const (
	kindString valueKind = iota
	kindInt
	kindFloat
	kindDuration
	kindList
)

var settableKeys = map[string]valueKind{
	keyLLMModel:          kindString,
	keyLLMFallbackModel:  kindString,
	keyLLMTemperature:    kindFloat,
	keyLLMMaxTokens:      kindInt,
	keyLLMTimeout:        kindDuration,
	keyLLMRequestsPerMin: kindInt,
	keyEmbedProvider:     kindString,
	keyEmbedModel:        kindString,
	keyIndexBackend:      kindString,
	keyIndexDataDir:      kindString,
	keyIndexURL:          kindString,
	keyIndexCollection:   kindString,
	keyIndexTenant:       kindString,
	keyIndexDatabase:     kindString,
	keyIndexMetaLimit:    kindInt,
	keyRetrievalTopK:     kindInt,
	keyRetrievalMinSim:   kindFloat,
	keyServerAddr:        kindString,
	keyServerStreamDelay: kindDuration,
	keyServerOrigins:     kindList,
}

func init() {
	for _, p := range domain.AllLLMProviders() {
		settableKeys[providerKeyPrefix+p.String()+keySuffixAPIKey] = kindString
		settableKeys[providerKeyPrefix+p.String()+keySuffixBaseURL] = kindString
	}
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get retrieves current application settings. Missing or invalid values
// fall back to defaults.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	d := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		LLM: domain.LLMSettings{
			Model:             s.getString(keyLLMModel, d.LLM.Model),
			FallbackModel:     s.configStore.GetString(keyLLMFallbackModel), // No default - empty disables fallback
			Temperature:       s.getFloat(keyLLMTemperature, d.LLM.Temperature),
			MaxTokens:         s.getInt(keyLLMMaxTokens, d.LLM.MaxTokens),
			Timeout:           s.getDuration(keyLLMTimeout, d.LLM.Timeout),
			RequestsPerMinute: s.getInt(keyLLMRequestsPerMin, d.LLM.RequestsPerMinute),
		},
		Embedding: domain.EmbeddingSettings{
			Provider: s.getProvider(keyEmbedProvider, d.Embedding.Provider),
			Model:    s.configStore.GetString(keyEmbedModel),
		},
		Providers: make(map[domain.AIProvider]domain.ProviderSettings),
		Index: domain.IndexSettings{
			Backend:       s.getBackend(d.Index.Backend),
			DataDir:       s.configStore.GetString(keyIndexDataDir),
			URL:           s.configStore.GetString(keyIndexURL),
			Collection:    s.getString(keyIndexCollection, d.Index.Collection),
			Tenant:        s.getString(keyIndexTenant, d.Index.Tenant),
			Database:      s.getString(keyIndexDatabase, d.Index.Database),
			MetadataLimit: s.getInt(keyIndexMetaLimit, d.Index.MetadataLimit),
		},
		Retrieval: domain.RetrievalSettings{
			TopK:                s.getInt(keyRetrievalTopK, d.Retrieval.TopK),
			SimilarityThreshold: s.getFloat(keyRetrievalMinSim, d.Retrieval.SimilarityThreshold),
		},
		Server: domain.ServerSettings{
			Addr:         s.getString(keyServerAddr, d.Server.Addr),
			StreamDelay:  s.getDuration(keyServerStreamDelay, d.Server.StreamDelay),
			AllowOrigins: s.getStringSlice(keyServerOrigins, d.Server.AllowOrigins),
		},
	}

	// Embedding model follows the provider unless set explicitly
	if settings.Embedding.Model == "" {
		settings.Embedding.Model = domain.DefaultEmbeddingModels()[settings.Embedding.Provider]
	}

	for _, p := range domain.AllLLMProviders() {
		ps := domain.ProviderSettings{
			APIKey:  s.configStore.GetString(providerKeyPrefix + p.String() + keySuffixAPIKey),
			BaseURL: s.configStore.GetString(providerKeyPrefix + p.String() + keySuffixBaseURL),
		}
		if ps != (domain.ProviderSettings{}) {
			settings.Providers[p] = ps
		}
	}

	return settings, nil
}

// Set parses and stores a single key.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := settableKeys[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	var parsed any
	switch kind {
	case kindInt:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: %s must be an integer", domain.ErrInvalidInput, key)
		}
		parsed = n
	case kindFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("%w: %s must be a number", domain.ErrInvalidInput, key)
		}
		parsed = f
	case kindDuration:
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("%w: %s must be a duration such as 40ms or 2m", domain.ErrInvalidInput, key)
		}
		parsed = value
	case kindList:
		var items []string
		for _, item := range strings.Split(value, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
		parsed = items
	default:
		parsed = value
	}

	switch key {
	case keyEmbedProvider:
		if !domain.AIProvider(value).IsValid() {
			return fmt.Errorf("%w: invalid embedding provider: %s", domain.ErrInvalidInput, value)
		}
	case keyIndexBackend:
		if !domain.IndexBackend(value).IsValid() {
			return fmt.Errorf("%w: invalid index backend: %s", domain.ErrInvalidInput, value)
		}
	}

	if err := s.configStore.Set(key, parsed); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Validate checks the current settings.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return settings.Validate()
}

// Value returns the effective value of a settable key as text.
func (s *SettingsService) Value(key string) (string, error) {
	if _, ok := settableKeys[key]; !ok {
		return "", fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
	settings, err := s.Get()
	if err != nil {
		return "", err
	}

	switch key {
	case keyLLMModel:
		return settings.LLM.Model, nil
	case keyLLMFallbackModel:
		return settings.LLM.FallbackModel, nil
	case keyLLMTemperature:
		return strconv.FormatFloat(settings.LLM.Temperature, 'g', -1, 64), nil
	case keyLLMMaxTokens:
		return strconv.Itoa(settings.LLM.MaxTokens), nil
	case keyLLMTimeout:
		return settings.LLM.Timeout.String(), nil
	case keyLLMRequestsPerMin:
		return strconv.Itoa(settings.LLM.RequestsPerMinute), nil
	case keyEmbedProvider:
		return settings.Embedding.Provider.String(), nil
	case keyEmbedModel:
		return settings.Embedding.Model, nil
	case keyIndexBackend:
		return string(settings.Index.Backend), nil
	case keyIndexDataDir:
		return settings.Index.DataDir, nil
	case keyIndexURL:
		return settings.Index.URL, nil
	case keyIndexCollection:
		return settings.Index.Collection, nil
	case keyIndexTenant:
		return settings.Index.Tenant, nil
	case keyIndexDatabase:
		return settings.Index.Database, nil
	case keyIndexMetaLimit:
		return strconv.Itoa(settings.Index.MetadataLimit), nil
	case keyRetrievalTopK:
		return strconv.Itoa(settings.Retrieval.TopK), nil
	case keyRetrievalMinSim:
		return strconv.FormatFloat(settings.Retrieval.SimilarityThreshold, 'g', -1, 64), nil
	case keyServerAddr:
		return settings.Server.Addr, nil
	case keyServerStreamDelay:
		return settings.Server.StreamDelay.String(), nil
	case keyServerOrigins:
		return strings.Join(settings.Server.AllowOrigins, ","), nil
	}

	// providers.<name>.api_key / providers.<name>.base_url
	rest := strings.TrimPrefix(key, providerKeyPrefix)
	if name, ok := strings.CutSuffix(rest, keySuffixAPIKey); ok {
		return settings.Providers[domain.AIProvider(name)].APIKey, nil
	}
	if name, ok := strings.CutSuffix(rest, keySuffixBaseURL); ok {
		return settings.Providers[domain.AIProvider(name)].BaseURL, nil
	}
	return "", nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// Keys returns the settable keys in sorted order.
func (s *SettingsService) Keys() []string {
	keys := make([]string, 0, len(settableKeys))
	for k := range settableKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

// getFloat accepts any numeric representation; TOML decodes whole
// numbers as integers.
func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	val, ok := s.configStore.Get(key)
	if !ok {
		return defaultVal
	}
	switch v := val.(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}
	return d
}

func (s *SettingsService) getStringSlice(key string, defaultVal []string) []string {
	val := s.configStore.GetStringSlice(key)
	if len(val) == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) getBackend(defaultVal domain.IndexBackend) domain.IndexBackend {
	val := s.configStore.GetString(keyIndexBackend)
	if val == "" {
		return defaultVal
	}
	backend := domain.IndexBackend(val)
	if !backend.IsValid() {
		return defaultVal
	}
	return backend
}
