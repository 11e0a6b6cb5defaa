// Package env overlays environment variables on a persistent ConfigStore.
package env

import (
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/custodia-labs/docbot/internal/core/ports/driven"
)

// Ensure Overlay implements the interface.
var _ driven.ConfigStore = (*Overlay)(nil)

// Prefix is the environment prefix: llm.model is read from DOCBOT_LLM_MODEL.
const Prefix = "DOCBOT"

// aliases are additional environment names accepted for a key.
var aliases = map[string][]string{
	"llm.model":                      {"LLM_MODEL"},
	"llm.fallback_model":             {"LLM_FALLBACK_MODEL"},
	"retrieval.top_k":                {"TOP_K_RESULTS"},
	"retrieval.similarity_threshold": {"SIMILARITY_THRESHOLD"},
	"index.url":                      {"CHROMA_HOST"},
	"providers.groq.api_key":         {"GROQ_API_KEY"},
	"providers.cerebras.api_key":     {"CEREBRAS_API_KEY"},
	"providers.openai.api_key":       {"OPENAI_API_KEY"},
	"providers.openrouter.api_key":   {"OPENROUTER_API_KEY"},
	"providers.anthropic.api_key":    {"ANTHROPIC_API_KEY"},
	"providers.gemini.api_key":       {"GEMINI_API_KEY", "GOOGLE_API_KEY"},
	"providers.ollama.base_url":      {"OLLAMA_HOST"},
}

// Overlay reads a key from the environment when set, else from the base
// store. Writes go to the base store only.
type Overlay struct {
	base driven.ConfigStore
	env  *viper.Viper
}

// NewOverlay wraps base with environment lookups.
func NewOverlay(base driven.ConfigStore) *Overlay {
	v := viper.New()
	v.SetEnvPrefix(Prefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Explicit bindings replace the automatic name, so it is listed first.
	for key, names := range aliases {
		bind := append([]string{key, envName(key)}, names...)
		_ = v.BindEnv(bind...)
	}

	return &Overlay{base: base, env: v}
}

func envName(key string) string {
	return Prefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// Get retrieves a configuration value by key.
func (o *Overlay) Get(key string) (any, bool) {
	if o.env.IsSet(key) {
		return o.env.GetString(key), true
	}
	return o.base.Get(key)
}

// GetString retrieves a string configuration value.
func (o *Overlay) GetString(key string) string {
	if o.env.IsSet(key) {
		return o.env.GetString(key)
	}
	return o.base.GetString(key)
}

// GetInt retrieves an integer configuration value.
func (o *Overlay) GetInt(key string) int {
	if o.env.IsSet(key) {
		return o.env.GetInt(key)
	}
	return o.base.GetInt(key)
}

// GetBool retrieves a boolean configuration value.
func (o *Overlay) GetBool(key string) bool {
	if o.env.IsSet(key) {
		return o.env.GetBool(key)
	}
	return o.base.GetBool(key)
}

// GetStringSlice retrieves a comma-separated list from the environment,
// or a slice from the base store.
func (o *Overlay) GetStringSlice(key string) []string {
	if !o.env.IsSet(key) {
		return o.base.GetStringSlice(key)
	}
	var out []string
	for _, part := range strings.Split(o.env.GetString(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Set stores a value in the base store.
func (o *Overlay) Set(key string, value any) error {
	return o.base.Set(key, value)
}

// Save persists the base store.
func (o *Overlay) Save() error {
	return o.base.Save()
}

// Load reloads the base store.
func (o *Overlay) Load() error {
	return o.base.Load()
}

// Path returns the base store's file path.
func (o *Overlay) Path() string {
	return o.base.Path()
}

// Source reports where key's effective value comes from: the environment
// variable name, "file" or "default".
func (o *Overlay) Source(key string) string {
	if o.env.IsSet(key) {
		for _, name := range append([]string{envName(key)}, aliases[key]...) {
			if v, ok := os.LookupEnv(name); ok && v != "" {
				return name
			}
		}
		return envName(key)
	}
	if _, ok := o.base.Get(key); ok {
		return "file"
	}
	return "default"
}
