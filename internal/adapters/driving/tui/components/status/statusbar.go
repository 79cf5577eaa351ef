// Package status provides status bar components for the TUI.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/speakmath/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/speakmath/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/speakmath/internal/core/domain"
)

// State represents the current application state for display.
type State string

const (
	StateReady      State = "ready"
	StateConverting State = "converting"
	StateError      State = "error"
	StateDone       State = "done"
)

// Bar displays the conversion state, active options and keybinding hints.
type Bar struct {
	styles  *styles.Styles
	keymap  *keymap.KeyMap
	state   State
	message string
	result  *domain.ProcessingResult
	options string
	width   int
}

// NewBar creates a new status bar component.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &Bar{
		styles: s,
		keymap: km,
		state:  StateReady,
		width:  80,
	}
}

// View renders the status bar.
func (b *Bar) View() string {
	left := b.renderLeft()
	right := b.renderRight()

	padding := max(b.width-lipgloss.Width(left)-lipgloss.Width(right), 1)

	return b.styles.StatusBar.Width(b.width).Render(
		left + strings.Repeat(" ", padding) + right,
	)
}

func (b *Bar) renderLeft() string {
	var left string
	switch b.state {
	case StateConverting:
		left = b.styles.Muted.Render("Converting...")
	case StateError:
		if b.message != "" {
			left = b.styles.Error.Render("Error: " + b.message)
		} else {
			left = b.styles.Error.Render("Error")
		}
	case StateDone:
		left = b.renderResult()
	default:
		left = b.styles.Muted.Render("Ready")
	}

	if b.options != "" {
		left += b.styles.Muted.Render("  " + b.options)
	}
	if b.message != "" && b.state != StateError {
		left += b.styles.Normal.Render("  " + b.message)
	}
	return left
}

func (b *Bar) renderResult() string {
	r := b.result
	if r == nil {
		return b.styles.Muted.Render("Ready")
	}
	cache := "miss"
	if r.CacheHit {
		cache = "hit"
	}
	return b.styles.ForStatus(r.Status).Render(r.Status.String()) +
		b.styles.Muted.Render(fmt.Sprintf(" %.2fms cache %s", float64(r.Elapsed.Microseconds())/1000, cache))
}

func (b *Bar) renderRight() string {
	var bindings []key.Binding
	if b.state == StateDone {
		bindings = b.keymap.ResultHelp()
	} else {
		bindings = b.keymap.ShortHelp()
	}

	hints := make([]string, 0, len(bindings))
	for _, binding := range bindings {
		h := binding.Help()
		hints = append(hints, fmt.Sprintf("%s: %s", h.Key, h.Desc))
	}
	return b.styles.Muted.Render(strings.Join(hints, " | "))
}

// SetState sets the current state.
func (b *Bar) SetState(state State) {
	b.state = state
}

// State returns the current state.
func (b *Bar) State() State {
	return b.state
}

// SetMessage sets a transient message.
func (b *Bar) SetMessage(message string) {
	b.message = message
}

// Message returns the current message.
func (b *Bar) Message() string {
	return b.message
}

// SetResult records a finished conversion and switches to StateDone.
func (b *Bar) SetResult(result *domain.ProcessingResult) {
	b.result = result
	b.state = StateDone
}

// Result returns the last recorded conversion.
func (b *Bar) Result() *domain.ProcessingResult {
	return b.result
}

// SetOptions sets the summary of active options, e.g. "basic / auto".
func (b *Bar) SetOptions(options string) {
	b.options = options
}

// SetWidth sets the status bar width.
func (b *Bar) SetWidth(width int) {
	b.width = width
}

// Width returns the current width.
func (b *Bar) Width() int {
	return b.width
}

// Clear resets the status bar to its ready state. Options are kept.
func (b *Bar) Clear() {
	b.state = StateReady
	b.message = ""
	b.result = nil
}
