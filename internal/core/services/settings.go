package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/speakmath/internal/core/domain"
	"github.com/custodia-labs/speakmath/internal/core/ports/driven"
	"github.com/custodia-labs/speakmath/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
const (
	keyCacheCapacity  = "cache.capacity"
	keyMaxPasses      = "engine.max_passes"
	keyMaxDepth       = "engine.max_depth"
	keyTimeoutBase    = "timeout.base_ms"
	keyTimeoutPerRune = "timeout.per_rune_us"
	keyTimeoutMin     = "timeout.min_ms"
	keyTimeoutMax     = "timeout.max_ms"
	keyMinConfidence  = "classifier.min_confidence"
	keyRulePack       = "rules.pack"
)

var settingKeys = []string{
	keyCacheCapacity,
	keyMaxPasses,
	keyMaxDepth,
	keyTimeoutBase,
	keyTimeoutPerRune,
	keyTimeoutMin,
	keyTimeoutMax,
	keyMinConfidence,
	keyRulePack,
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get retrieves current settings. Unset keys take their defaults and the
// combined result is validated.
func (s *SettingsService) Get() (*domain.Settings, error) {
	settings := s.load()
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return &settings, nil
}

func (s *SettingsService) load() domain.Settings {
	defaults := domain.DefaultSettings()

	return domain.Settings{
		Cache: domain.CacheSettings{
			Capacity: s.getInt(keyCacheCapacity, defaults.Cache.Capacity),
		},
		Engine: domain.EngineSettings{
			MaxPasses: s.getInt(keyMaxPasses, defaults.Engine.MaxPasses),
			MaxDepth:  s.getInt(keyMaxDepth, defaults.Engine.MaxDepth),
		},
		Timeout: domain.TimeoutSettings{
			Base:    s.getDuration(keyTimeoutBase, time.Millisecond, defaults.Timeout.Base),
			PerRune: s.getDuration(keyTimeoutPerRune, time.Microsecond, defaults.Timeout.PerRune),
			Min:     s.getDuration(keyTimeoutMin, time.Millisecond, defaults.Timeout.Min),
			Max:     s.getDuration(keyTimeoutMax, time.Millisecond, defaults.Timeout.Max),
		},
		Classifier: domain.ClassifierSettings{
			MinConfidence: s.getFloat(keyMinConfidence, defaults.Classifier.MinConfidence),
		},
		RulePack: s.configStore.GetString(keyRulePack),
	}
}

// Save validates and persists settings.
func (s *SettingsService) Save(settings *domain.Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}

	for _, v := range settingValues(settings) {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}
	return nil
}

// settingValue is one setting in its stored form.
type settingValue struct {
	key   string
	value any
}

// settingValues lists settings in key order, converting durations to the
// units their keys name.
func settingValues(settings *domain.Settings) []settingValue {
	return []settingValue{
		{keyCacheCapacity, settings.Cache.Capacity},
		{keyMaxPasses, settings.Engine.MaxPasses},
		{keyMaxDepth, settings.Engine.MaxDepth},
		{keyTimeoutBase, int(settings.Timeout.Base / time.Millisecond)},
		{keyTimeoutPerRune, int(settings.Timeout.PerRune / time.Microsecond)},
		{keyTimeoutMin, int(settings.Timeout.Min / time.Millisecond)},
		{keyTimeoutMax, int(settings.Timeout.Max / time.Millisecond)},
		{keyMinConfidence, settings.Classifier.MinConfidence},
		{keyRulePack, settings.RulePack},
	}
}

// Entries returns the current settings as key/value strings in display order.
func (s *SettingsService) Entries() ([]domain.SettingEntry, error) {
	settings, err := s.Get()
	if err != nil {
		return nil, err
	}

	values := settingValues(settings)
	entries := make([]domain.SettingEntry, len(values))
	for i, v := range values {
		entries[i] = domain.SettingEntry{Key: v.key, Value: fmt.Sprint(v.value)}
	}
	return entries, nil
}

// Set parses value for key, checks the resulting settings are valid and
// persists the single key.
func (s *SettingsService) Set(key, value string) error {
	settings := s.load()
	value = strings.TrimSpace(value)

	var typed any
	switch key {
	case keyCacheCapacity, keyMaxPasses, keyMaxDepth,
		keyTimeoutBase, keyTimeoutPerRune, keyTimeoutMin, keyTimeoutMax:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: %s must be an integer: %q", domain.ErrInvalidInput, key, value)
		}
		applyInt(&settings, key, n)
		typed = n
	case keyMinConfidence:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("%w: %s must be a number: %q", domain.ErrInvalidInput, key, value)
		}
		settings.Classifier.MinConfidence = f
		typed = f
	case keyRulePack:
		settings.RulePack = value
		typed = value
	default:
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	if err := settings.Validate(); err != nil {
		return err
	}
	if err := s.configStore.Set(key, typed); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

func applyInt(settings *domain.Settings, key string, n int) {
	switch key {
	case keyCacheCapacity:
		settings.Cache.Capacity = n
	case keyMaxPasses:
		settings.Engine.MaxPasses = n
	case keyMaxDepth:
		settings.Engine.MaxDepth = n
	case keyTimeoutBase:
		settings.Timeout.Base = time.Duration(n) * time.Millisecond
	case keyTimeoutPerRune:
		settings.Timeout.PerRune = time.Duration(n) * time.Microsecond
	case keyTimeoutMin:
		settings.Timeout.Min = time.Duration(n) * time.Millisecond
	case keyTimeoutMax:
		settings.Timeout.Max = time.Duration(n) * time.Millisecond
	}
}

// Keys returns the recognised config keys in display order.
func (s *SettingsService) Keys() []string {
	return append([]string(nil), settingKeys...)
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.Settings {
	return domain.DefaultSettings()
}

// Helper methods for reading config with defaults. A key that is present
// wins even when its value is zero, since zero disables the cache.

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getDuration(key string, unit, defaultVal time.Duration) time.Duration {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return time.Duration(s.configStore.GetInt(key)) * unit
}
