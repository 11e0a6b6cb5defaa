package driving

import "github.com/custodia-labs/docbot/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings, defaults applied.
	Get() (*domain.AppSettings, error)

	// Set stores a single dotted key (e.g. "llm.fallback_model").
	Set(key, value string) error

	// Validate checks the current settings.
	Validate() error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings

	// Keys returns the settable keys.
	Keys() []string

	// Value returns the effective value of a settable key as text.
	Value(key string) (string, error)
}
