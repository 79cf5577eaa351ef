// Package settings provides the settings configuration view for the TUI.
package settings

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/speakmath/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/speakmath/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/speakmath/internal/core/domain"
	"github.com/custodia-labs/speakmath/internal/core/ports/driving"
)

// ErrNoSettingsService is returned when settings are not configured.
var ErrNoSettingsService = errors.New("settings service not available")

const (
	keyDown  = "down"
	keyEnter = "enter"
	keyEsc   = "esc"
)

// View lists every setting and edits one value at a time.
type View struct {
	styles          *styles.Styles
	settingsService driving.SettingsService

	entries []domain.SettingEntry
	loaded  bool
	err     error
	saved   string

	selected int
	editing  bool
	input    textinput.Model

	width  int
	height int
}

// NewView creates a new settings view. settingsService may be nil.
func NewView(s *styles.Styles, settingsService driving.SettingsService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}

	input := textinput.New()
	input.CharLimit = 512
	input.Prompt = "> "

	return &View{
		styles:          s,
		settingsService: settingsService,
		input:           input,
	}
}

// Init loads the settings.
func (v *View) Init() tea.Cmd {
	v.editing = false
	v.saved = ""
	v.input.Blur()
	return v.loadSettings()
}

func (v *View) loadSettings() tea.Cmd {
	return func() tea.Msg {
		if v.settingsService == nil {
			return messages.SettingsLoaded{Err: ErrNoSettingsService}
		}
		entries, err := v.settingsService.Entries()
		return messages.SettingsLoaded{Entries: entries, Err: err}
	}
}

func (v *View) saveSetting(key, value string) tea.Cmd {
	return func() tea.Msg {
		if v.settingsService == nil {
			return messages.SettingsSaved{Key: key, Err: ErrNoSettingsService}
		}
		return messages.SettingsSaved{Key: key, Err: v.settingsService.Set(key, value)}
	}
}

// Update handles messages for the settings view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.SettingsLoaded:
		v.loaded = true
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.err = nil
		v.entries = msg.Entries
		if v.selected >= len(v.entries) {
			v.selected = max(len(v.entries)-1, 0)
		}
		return v, nil

	case messages.SettingsSaved:
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.err = nil
		v.saved = msg.Key
		return v, v.loadSettings()

	case tea.KeyMsg:
		if v.editing {
			return v.handleEditKeys(msg)
		}
		return v.handleListKeys(msg)
	}

	return v, nil
}

func (v *View) handleListKeys(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case keyEsc:
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	case "up", "k":
		if v.selected > 0 {
			v.selected--
		}
	case keyDown, "j":
		if v.selected < len(v.entries)-1 {
			v.selected++
		}
	case keyEnter, "e":
		entry, ok := v.SelectedEntry()
		if !ok {
			return v, nil
		}
		v.editing = true
		v.saved = ""
		v.input.SetValue(entry.Value)
		v.input.CursorEnd()
		return v, v.input.Focus()
	}
	return v, nil
}

func (v *View) handleEditKeys(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case keyEsc:
		v.stopEditing()
		return v, nil
	case keyEnter:
		entry, ok := v.SelectedEntry()
		v.stopEditing()
		if !ok {
			return v, nil
		}
		return v, v.saveSetting(entry.Key, strings.TrimSpace(v.input.Value()))
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) stopEditing() {
	v.editing = false
	v.input.Blur()
}

// View renders the settings view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Settings"))
	b.WriteString("\n\n")

	if v.err != nil {
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %s", v.err.Error())))
		b.WriteString("\n\n")
	}

	if !v.loaded {
		b.WriteString(v.styles.Muted.Render("Loading settings..."))
		return b.String()
	}

	for i, entry := range v.entries {
		value := entry.Value
		if value == "" {
			value = "(not set)"
		}
		if i == v.selected && v.editing {
			b.WriteString(v.styles.Selected.Render(fmt.Sprintf("> %-28s ", entry.Key)))
			b.WriteString(v.input.View())
		} else if i == v.selected {
			b.WriteString(v.styles.Selected.Render(fmt.Sprintf("> %-28s %s", entry.Key, value)))
		} else {
			b.WriteString(v.styles.Normal.Render(fmt.Sprintf("  %-28s %s", entry.Key, value)))
		}
		b.WriteString("\n")
	}

	if v.saved != "" {
		b.WriteString("\n")
		b.WriteString(v.styles.Success.Render(fmt.Sprintf("Saved %s", v.saved)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if v.editing {
		b.WriteString(v.styles.Help.Render("[enter] save  [esc] cancel"))
	} else {
		b.WriteString(v.styles.Help.Render("[j/k] navigate  [enter] edit  [esc] back"))
	}
	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.input.Width = max(width-34, 10)
}

// SelectedEntry returns the highlighted setting.
func (v *View) SelectedEntry() (domain.SettingEntry, bool) {
	if v.selected < 0 || v.selected >= len(v.entries) {
		return domain.SettingEntry{}, false
	}
	return v.entries[v.selected], true
}

// Editing reports whether a value is being edited.
func (v *View) Editing() bool {
	return v.editing
}

// EditValue returns the text in the edit field.
func (v *View) EditValue() string {
	return v.input.Value()
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
