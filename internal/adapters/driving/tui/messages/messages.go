// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/speakmath/internal/core/domain"
)

// ConversionCompleted carries a conversion result back to the model.
type ConversionCompleted struct {
	Result *domain.ProcessingResult
	Err    error
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewMenu is the main navigation menu.
	ViewMenu ViewType = iota
	// ViewConvert is the notation input and result view.
	ViewConvert
	// ViewTokens lists unrecognized tokens.
	ViewTokens
	// ViewHelp is the help/keybindings view.
	ViewHelp
	// ViewSettings is the settings view.
	ViewSettings
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewMenu:
		return "menu"
	case ViewConvert:
		return "convert"
	case ViewTokens:
		return "tokens"
	case ViewHelp:
		return "help"
	case ViewSettings:
		return "settings"
	default:
		return "unknown"
	}
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}

// TokensLoaded carries the unrecognized token log.
type TokensLoaded struct {
	Tokens []domain.TokenRecord
	Err    error
}

// TokensCleared signals the token log was cleared.
type TokensCleared struct {
	Err error
}

// SettingsLoaded carries the application settings in display order.
type SettingsLoaded struct {
	Entries []domain.SettingEntry
	Err     error
}

// SettingsSaved signals one setting was saved.
type SettingsSaved struct {
	Key string
	Err error
}

// OutputCopied signals the clipboard action finished.
type OutputCopied struct {
	Err error
}
