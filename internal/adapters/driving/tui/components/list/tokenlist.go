// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/speakmath/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/speakmath/internal/core/domain"
)

// linesPerToken is the rendered height of one entry.
const linesPerToken = 2

// TokenList displays unrecognized tokens in a navigable list.
type TokenList struct {
	tokens   []domain.TokenRecord
	selected int
	styles   *styles.Styles
	width    int
	height   int
}

// NewTokenList creates a new token list component.
func NewTokenList(s *styles.Styles) *TokenList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &TokenList{
		styles: s,
		width:  80,
		height: 10,
	}
}

// Update handles list navigation messages.
func (l *TokenList) Update(msg tea.Msg) (*TokenList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			l.MoveUp()
		case "down", "j":
			l.MoveDown()
		}
	}
	return l, nil
}

// View renders the visible window of the list.
func (l *TokenList) View() string {
	if len(l.tokens) == 0 {
		return l.styles.Muted.Render("No unrecognized tokens")
	}

	lines := make([]string, 0, len(l.tokens)*linesPerToken+2)
	lines = append(lines, l.styles.Subtitle.Render(fmt.Sprintf("Unrecognized (%d)", len(l.tokens))), "")

	start, end := l.window()
	for i := start; i < end; i++ {
		lines = append(lines, l.renderToken(i, &l.tokens[i]))
	}
	return strings.Join(lines, "\n")
}

// window returns the [start, end) range that keeps the selection visible.
func (l *TokenList) window() (int, int) {
	visible := max((l.height-2)/linesPerToken, 1)

	start := 0
	if l.selected >= visible {
		start = l.selected - visible + 1
	}
	return start, min(start+visible, len(l.tokens))
}

func (l *TokenList) renderToken(index int, rec *domain.TokenRecord) string {
	indicator := "  "
	if index == l.selected {
		indicator = "> "
	}

	nameWidth := max(l.width-24, 10)
	name := truncate(rec.Token, nameWidth)
	count := fmt.Sprintf("%5d  %s", rec.Count, rec.Context)

	var head string
	if index == l.selected {
		head = l.styles.Selected.Render(fmt.Sprintf("%s%-*s %s", indicator, nameWidth, name, count))
	} else {
		head = l.styles.Normal.Render(fmt.Sprintf("%s%-*s ", indicator, nameWidth, name)) +
			l.styles.Muted.Render(count)
	}

	sample := l.styles.Muted.Render("    " + truncate(rec.Sample, max(l.width-6, 20)))
	return head + "\n" + sample
}

// truncate shortens s to n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}

// SetTokens replaces the list contents and resets the selection.
func (l *TokenList) SetTokens(tokens []domain.TokenRecord) {
	l.tokens = tokens
	l.selected = 0
}

// Tokens returns the current contents.
func (l *TokenList) Tokens() []domain.TokenRecord {
	return l.tokens
}

// Selected returns the index of the selected token.
func (l *TokenList) Selected() int {
	return l.selected
}

// SelectedToken returns the selected token, or nil if the list is empty.
func (l *TokenList) SelectedToken() *domain.TokenRecord {
	if l.selected < 0 || l.selected >= len(l.tokens) {
		return nil
	}
	return &l.tokens[l.selected]
}

// MoveUp moves selection up.
func (l *TokenList) MoveUp() {
	if l.selected > 0 {
		l.selected--
	}
}

// MoveDown moves selection down.
func (l *TokenList) MoveDown() {
	if l.selected < len(l.tokens)-1 {
		l.selected++
	}
}

// SetDimensions sets the component dimensions.
func (l *TokenList) SetDimensions(width, height int) {
	l.width = width
	l.height = height
}

// Count returns the number of tokens.
func (l *TokenList) Count() int {
	return len(l.tokens)
}
