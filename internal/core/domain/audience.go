package domain

import (
	"fmt"
	"strings"
)

// AudienceLevel selects between terse and expanded phrasings.
// Higher levels get terser phrasing.
type AudienceLevel int

// Available audience levels.
const (
	// AudienceBasic produces the most explicit phrasing.
	AudienceBasic AudienceLevel = iota

	// AudienceIntermediate produces conventional classroom phrasing.
	AudienceIntermediate

	// AudienceAdvanced produces the tersest phrasing.
	AudienceAdvanced
)

var audienceNames = []string{"basic", "intermediate", "advanced"}

// IsValid returns true if the level is recognised.
func (l AudienceLevel) IsValid() bool {
	return l >= AudienceBasic && l <= AudienceAdvanced
}

// String returns the string representation.
func (l AudienceLevel) String() string {
	if !l.IsValid() {
		return fmt.Sprintf("level(%d)", int(l))
	}
	return audienceNames[l]
}

// AllAudienceLevels returns every level from most basic to most advanced.
func AllAudienceLevels() []AudienceLevel {
	return []AudienceLevel{AudienceBasic, AudienceIntermediate, AudienceAdvanced}
}

// ParseAudienceLevel converts a name such as "basic" into a level.
func ParseAudienceLevel(s string) (AudienceLevel, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range audienceNames {
		if n == name {
			return AudienceLevel(i), nil
		}
	}
	return AudienceBasic, fmt.Errorf("%w: unknown audience level %q", ErrInvalidInput, s)
}
