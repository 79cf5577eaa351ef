package driving

import "github.com/custodia-labs/speakmath/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current settings, falling back to defaults for unset keys.
	// The result is validated.
	Get() (*domain.Settings, error)

	// Save validates and persists settings.
	Save(settings *domain.Settings) error

	// Set updates one setting by its config key, e.g. "cache.capacity".
	Set(key, value string) error

	// Entries returns the current settings as strings in display order.
	Entries() ([]domain.SettingEntry, error)

	// Keys returns the recognised config keys in display order.
	Keys() []string

	// GetDefaults returns default settings.
	GetDefaults() domain.Settings
}
