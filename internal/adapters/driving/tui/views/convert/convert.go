// Package convert provides the interactive conversion view for the TUI.
package convert

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/speakmath/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/speakmath/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/speakmath/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/speakmath/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/speakmath/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/speakmath/internal/core/domain"
	"github.com/custodia-labs/speakmath/internal/core/ports/driving"
)

// autoDomain is the display name for "let the classifier decide".
const autoDomain = "auto"

// View is the conversion view with notation input, result panel and status bar.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.NotationInput
	statusbar *status.Bar

	conversionService driving.ConversionService
	actionService     driving.ResultActionService
	ctx               context.Context

	levels  []domain.AudienceLevel
	level   int
	domains []string
	domain  int

	result     *domain.ProcessingResult
	err        error
	width      int
	height     int
	ready      bool
	focusInput bool
}

// NewView creates a new conversion view. actionService may be nil.
func NewView(
	s *styles.Styles,
	km *keymap.KeyMap,
	conversionService driving.ConversionService,
	actionService driving.ResultActionService,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	domains := []string{""}
	if conversionService != nil {
		domains = append(domains, conversionService.Domains()...)
	}

	v := &View{
		styles:            s,
		keymap:            km,
		input:             input.NewNotationInput(s),
		statusbar:         status.NewBar(s, km),
		conversionService: conversionService,
		actionService:     actionService,
		ctx:               context.Background(),
		levels:            domain.AllAudienceLevels(),
		domains:           domains,
		width:             80,
		height:            24,
		focusInput:        true,
	}
	v.statusbar.SetOptions(v.optionsLabel())
	return v
}

// WithContext sets the context used for conversions.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the conversion view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.ConversionCompleted:
		v.handleConversionCompleted(msg)
		return v, nil

	case messages.OutputCopied:
		if msg.Err != nil {
			v.statusbar.SetMessage("Copy: " + msg.Err.Error())
		} else {
			v.statusbar.SetMessage("Copied to clipboard")
		}
		return v, nil

	case messages.ErrorOccurred:
		v.setError(msg.Err)
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// handleKeyMsg processes keyboard input.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	keyStr := msg.String()

	switch {
	case keymap.Matches(keyStr, v.keymap.Back):
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}

	case keymap.Matches(keyStr, v.keymap.Level):
		v.level = (v.level + 1) % len(v.levels)
		v.statusbar.SetOptions(v.optionsLabel())
		return v, nil

	case keymap.Matches(keyStr, v.keymap.Domain):
		v.domain = (v.domain + 1) % len(v.domains)
		v.statusbar.SetOptions(v.optionsLabel())
		return v, nil
	}

	if v.focusInput {
		if keymap.Matches(keyStr, v.keymap.Convert) {
			text := v.input.Value()
			if strings.TrimSpace(text) == "" {
				return v, nil
			}
			v.statusbar.SetState(status.StateConverting)
			v.statusbar.SetMessage("")
			v.focusInput = false
			v.input.Blur()
			return v, v.performConvert(text)
		}
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return v, cmd
	}

	switch {
	case keymap.Matches(keyStr, v.keymap.Edit):
		v.focusInput = true
		return v, v.input.Focus()

	case keymap.Matches(keyStr, v.keymap.Copy):
		return v, v.copyOutput()

	case keymap.Matches(keyStr, v.keymap.Convert):
		// Re-run with the current options.
		if text := v.input.Value(); strings.TrimSpace(text) != "" {
			v.statusbar.SetState(status.StateConverting)
			return v, v.performConvert(text)
		}
	}
	return v, nil
}

// performConvert returns a command that converts text with the current options.
func (v *View) performConvert(text string) tea.Cmd {
	opts := v.Options()
	return func() tea.Msg {
		if v.conversionService == nil {
			return messages.ErrorOccurred{Err: ErrNoConversionService}
		}
		result, err := v.conversionService.Convert(v.ctx, text, opts)
		return messages.ConversionCompleted{Result: result, Err: err}
	}
}

func (v *View) copyOutput() tea.Cmd {
	if v.result == nil {
		return nil
	}
	if v.actionService == nil {
		v.statusbar.SetMessage("Copy not available")
		return nil
	}
	result := v.result
	return func() tea.Msg {
		return messages.OutputCopied{Err: v.actionService.CopyToClipboard(v.ctx, result)}
	}
}

func (v *View) handleConversionCompleted(msg messages.ConversionCompleted) {
	if msg.Err != nil {
		v.setError(msg.Err)
		return
	}
	v.err = nil
	v.result = msg.Result
	v.statusbar.SetResult(msg.Result)
}

func (v *View) setError(err error) {
	v.err = err
	v.statusbar.SetState(status.StateError)
	v.statusbar.SetMessage(err.Error())
	v.focusInput = true
	v.input.Focus()
}

// View renders the conversion view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 12)
	sections = append(sections, v.styles.Title.Render("speakmath"), "", v.input.View(), "")

	if v.err != nil {
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()), "")
	}

	if v.result != nil {
		sections = append(sections, v.renderResult(), "")
	}

	sections = append(sections, v.statusbar.View())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (v *View) renderResult() string {
	r := v.result
	width := max(v.width-4, 20)

	lines := []string{
		v.styles.Output.Width(width).Render(r.Output),
		"",
		v.field("Status", v.styles.ForStatus(r.Status).Render(r.Status.String())),
		v.field("Context", v.contextLabel(r.Context)),
		v.field("Level", r.Level.String()),
		v.field("Passes", fmt.Sprintf("%d  (grids %d)", r.Passes, r.Grids)),
	}
	if len(r.Unrecognized) > 0 {
		lines = append(lines, v.field("Unrecognized", v.styles.Warning.Render(strings.Join(r.Unrecognized, " "))))
	}
	for _, e := range r.Errors {
		lines = append(lines, v.field("Problem", v.styles.Error.Render(e)))
	}
	return strings.Join(lines, "\n")
}

func (v *View) field(label, value string) string {
	return v.styles.Label.Render(label) + value
}

func (v *View) contextLabel(c domain.Classification) string {
	if c.Hinted {
		return c.Label + " (hint)"
	}
	return fmt.Sprintf("%s (%.0f%%)", c.Label, c.Confidence*100)
}

func (v *View) optionsLabel() string {
	d := v.domains[v.domain]
	if d == "" {
		d = autoDomain
	}
	return v.levels[v.level].String() + " / " + d
}

// Options returns the conversion options currently selected.
func (v *View) Options() domain.ConvertOptions {
	return domain.ConvertOptions{
		Level:      v.levels[v.level],
		DomainHint: v.domains[v.domain],
	}
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.input.SetWidth(width)
	v.statusbar.SetWidth(width)
}

// Notation returns the current input.
func (v *View) Notation() string {
	return v.input.Value()
}

// SetNotation sets the current input.
func (v *View) SetNotation(text string) {
	v.input.SetValue(text)
}

// Result returns the last conversion result.
func (v *View) Result() *domain.ProcessingResult {
	return v.result
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}

// InputFocused returns whether the input has focus.
func (v *View) InputFocused() bool {
	return v.focusInput
}

// Reset returns the view to an empty input. Level and domain are kept.
func (v *View) Reset() {
	v.focusInput = true
	v.input.Focus()
	v.input.SetValue("")
	v.result = nil
	v.err = nil
	v.statusbar.Clear()
}
