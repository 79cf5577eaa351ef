// Package input provides text input components for the TUI.
package input

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/speakmath/internal/adapters/driving/tui/styles"
)

// charLimit bounds a single notation input.
const charLimit = 4096

// NotationInput wraps a bubbles textinput for entering notation.
type NotationInput struct {
	textinput textinput.Model
	styles    *styles.Styles
	width     int
}

// NewNotationInput creates a new, focused notation input.
func NewNotationInput(s *styles.Styles) *NotationInput {
	if s == nil {
		s = styles.DefaultStyles()
	}

	ti := textinput.New()
	ti.Placeholder = `e.g. \frac{a}{b} or \int_0^1 x^2 \, dx`
	ti.Focus()
	ti.CharLimit = charLimit
	ti.Width = 50

	return &NotationInput{
		textinput: ti,
		styles:    s,
		width:     50,
	}
}

// Init initialises the input.
func (n *NotationInput) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles input messages.
func (n *NotationInput) Update(msg tea.Msg) (*NotationInput, tea.Cmd) {
	var cmd tea.Cmd
	n.textinput, cmd = n.textinput.Update(msg)
	return n, cmd
}

// View renders the input with its label.
func (n *NotationInput) View() string {
	label := n.styles.Title.Render("Notation: ")
	field := n.styles.InputField.Render(n.textinput.View())
	//nolint:misspell // lipgloss.Center is the correct constant from the library
	return lipgloss.JoinHorizontal(lipgloss.Center, label, field)
}

// Value returns the current input value.
func (n *NotationInput) Value() string {
	return n.textinput.Value()
}

// SetValue sets the input value.
func (n *NotationInput) SetValue(value string) {
	n.textinput.SetValue(value)
}

// Focus sets focus on the input.
func (n *NotationInput) Focus() tea.Cmd {
	return n.textinput.Focus()
}

// Blur removes focus from the input.
func (n *NotationInput) Blur() {
	n.textinput.Blur()
}

// Focused returns whether the input is focused.
func (n *NotationInput) Focused() bool {
	return n.textinput.Focused()
}

// SetWidth sets the width of the input, leaving room for the label.
func (n *NotationInput) SetWidth(width int) {
	n.width = width
	n.textinput.Width = max(width-14, 20)
}

// Width returns the current width.
func (n *NotationInput) Width() int {
	return n.width
}

// Reset clears the input.
func (n *NotationInput) Reset() {
	n.textinput.Reset()
}
