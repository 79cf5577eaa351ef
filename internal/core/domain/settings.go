package domain

import (
	"fmt"
	"time"
)

// Default settings values.
const (
	DefaultCacheCapacity  = 1024
	DefaultMaxPasses      = 32
	DefaultMaxDepth       = 64
	DefaultTimeoutBase    = 250 * time.Millisecond
	DefaultTimeoutPerRune = 50 * time.Microsecond
	DefaultTimeoutMin     = 100 * time.Millisecond
	DefaultTimeoutMax     = 5 * time.Second
	DefaultMinConfidence  = 0.25
)

// CacheSettings holds result cache configuration.
type CacheSettings struct {
	// Capacity is the maximum number of entries. Zero disables caching.
	Capacity int
}

// EngineSettings holds rewrite engine limits.
type EngineSettings struct {
	// MaxPasses caps the number of rewrite passes per conversion.
	MaxPasses int

	// MaxDepth caps delimiter and environment nesting.
	MaxDepth int
}

// TimeoutSettings defines the per-conversion time budget:
// clamp(Base + PerRune*len(input), Min, Max).
type TimeoutSettings struct {
	Base    time.Duration
	PerRune time.Duration
	Min     time.Duration
	Max     time.Duration
}

// Budget returns the allowed duration for an input of the given rune length.
// It is monotonically non-decreasing in length.
func (t TimeoutSettings) Budget(length int) time.Duration {
	if length < 0 {
		length = 0
	}
	d := t.Base
	// Saturate instead of overflowing on absurd lengths.
	if t.PerRune > 0 && int64(length) > int64(t.Max/t.PerRune)+1 {
		d = t.Max
	} else {
		d += time.Duration(length) * t.PerRune
	}
	if d < t.Min {
		d = t.Min
	}
	if d > t.Max {
		d = t.Max
	}
	return d
}

// ClassifierSettings holds context classifier configuration.
type ClassifierSettings struct {
	// MinConfidence is the threshold below which the general layer is used.
	MinConfidence float64
}

// Settings is the complete core configuration, supplied at initialisation.
type Settings struct {
	Cache      CacheSettings
	Engine     EngineSettings
	Timeout    TimeoutSettings
	Classifier ClassifierSettings

	// RulePack is an optional path to a YAML rule pack.
	RulePack string
}

// DefaultSettings returns settings with sensible defaults.
func DefaultSettings() Settings {
	return Settings{
		Cache: CacheSettings{Capacity: DefaultCacheCapacity},
		Engine: EngineSettings{
			MaxPasses: DefaultMaxPasses,
			MaxDepth:  DefaultMaxDepth,
		},
		Timeout: TimeoutSettings{
			Base:    DefaultTimeoutBase,
			PerRune: DefaultTimeoutPerRune,
			Min:     DefaultTimeoutMin,
			Max:     DefaultTimeoutMax,
		},
		Classifier: ClassifierSettings{MinConfidence: DefaultMinConfidence},
	}
}

// Validate checks every field and returns the first ConfigurationError.
func (s Settings) Validate() error {
	switch {
	case s.Cache.Capacity < 0:
		return &ConfigurationError{Field: "cache.capacity", Reason: "must not be negative"}
	case s.Engine.MaxPasses < 1:
		return &ConfigurationError{Field: "engine.max_passes", Reason: "must be at least 1"}
	case s.Engine.MaxDepth < 1:
		return &ConfigurationError{Field: "engine.max_depth", Reason: "must be at least 1"}
	case s.Timeout.Base < 0:
		return &ConfigurationError{Field: "timeout.base", Reason: "must not be negative"}
	case s.Timeout.PerRune < 0:
		return &ConfigurationError{Field: "timeout.per_rune", Reason: "must not be negative"}
	case s.Timeout.Min <= 0:
		return &ConfigurationError{Field: "timeout.min", Reason: "must be positive"}
	case s.Timeout.Max < s.Timeout.Min:
		return &ConfigurationError{
			Field:  "timeout.max",
			Reason: fmt.Sprintf("must be at least timeout.min (%s)", s.Timeout.Min),
		}
	case s.Classifier.MinConfidence < 0 || s.Classifier.MinConfidence > 1:
		return &ConfigurationError{Field: "classifier.min_confidence", Reason: "must be within [0,1]"}
	}
	return nil
}

// SettingEntry is one setting rendered for display, keyed by its config key.
type SettingEntry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}
