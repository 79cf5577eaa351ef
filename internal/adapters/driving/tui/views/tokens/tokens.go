// Package tokens provides the unrecognized token view for the TUI.
package tokens

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/speakmath/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/speakmath/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/speakmath/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/speakmath/internal/core/ports/driving"
)

// listLimit caps how many tokens are loaded.
const listLimit = 200

// ErrNoTokenService is returned when the token log is not configured.
var ErrNoTokenService = errors.New("token log not available")

// View lists control words that no rule recognised.
type View struct {
	styles       *styles.Styles
	tokenService driving.TokenService
	list         *list.TokenList
	ctx          context.Context

	confirmClear bool
	loading      bool
	err          error
	width        int
	height       int
}

// NewView creates a new tokens view. tokenService may be nil.
func NewView(s *styles.Styles, tokenService driving.TokenService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles:       s,
		tokenService: tokenService,
		list:         list.NewTokenList(s),
		ctx:          context.Background(),
	}
}

// WithContext sets the context used for service calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init loads the token log.
func (v *View) Init() tea.Cmd {
	v.loading = true
	v.confirmClear = false
	return v.loadTokens()
}

func (v *View) loadTokens() tea.Cmd {
	return func() tea.Msg {
		if v.tokenService == nil {
			return messages.TokensLoaded{Err: ErrNoTokenService}
		}
		records, err := v.tokenService.List(v.ctx, listLimit)
		return messages.TokensLoaded{Tokens: records, Err: err}
	}
}

func (v *View) clearTokens() tea.Cmd {
	return func() tea.Msg {
		if v.tokenService == nil {
			return messages.TokensCleared{Err: ErrNoTokenService}
		}
		return messages.TokensCleared{Err: v.tokenService.Clear(v.ctx)}
	}
}

// Update handles messages for the tokens view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.TokensLoaded:
		v.loading = false
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.err = nil
		v.list.SetTokens(msg.Tokens)
		return v, nil

	case messages.TokensCleared:
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.loading = true
		return v, v.loadTokens()
	}

	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if v.confirmClear {
		v.confirmClear = false
		if msg.String() == "y" {
			return v, v.clearTokens()
		}
		return v, nil
	}

	switch msg.String() {
	case "esc":
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	case "r":
		v.loading = true
		return v, v.loadTokens()
	case "c":
		if v.list.Count() > 0 {
			v.confirmClear = true
		}
		return v, nil
	}

	v.list, _ = v.list.Update(msg)
	return v, nil
}

// View renders the tokens view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Unrecognized tokens"))
	b.WriteString("\n\n")

	switch {
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Loading tokens..."))
	case v.err != nil:
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %s", v.err.Error())))
	default:
		b.WriteString(v.list.View())
	}
	b.WriteString("\n\n")

	if v.confirmClear {
		b.WriteString(v.styles.Warning.Render("Clear the whole token log? [y/N]"))
		return b.String()
	}
	b.WriteString(v.styles.Help.Render("[j/k] navigate  [r] reload  [c] clear  [esc] back"))
	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.list.SetDimensions(width, height-6)
}

// List returns the underlying list component.
func (v *View) List() *list.TokenList {
	return v.list
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
