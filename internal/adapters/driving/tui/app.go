package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/speakmath/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/speakmath/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/speakmath/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/speakmath/internal/adapters/driving/tui/views/convert"
	"github.com/custodia-labs/speakmath/internal/adapters/driving/tui/views/menu"
	"github.com/custodia-labs/speakmath/internal/adapters/driving/tui/views/settings"
	"github.com/custodia-labs/speakmath/internal/adapters/driving/tui/views/tokens"
	"github.com/custodia-labs/speakmath/internal/core/domain"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx is the context for cancellation.
	ctx context.Context

	styles *styles.Styles

	menuView     *menu.View
	convertView  *convert.View
	tokensView   *tokens.View
	settingsView *settings.View

	// currentView tracks which view is active.
	currentView messages.ViewType

	// err holds the last error that occurred.
	err error

	// width and height are terminal dimensions.
	width  int
	height int

	// ready indicates if the app has initialised.
	ready bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if ports == nil {
		return nil, fmt.Errorf("creating app: %w", ErrInvalidPorts)
	}
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	return &App{
		ports:        ports,
		ctx:          context.Background(),
		styles:       s,
		menuView:     menu.NewView(s),
		convertView:  convert.NewView(s, km, ports.Conversion, ports.ResultAction),
		tokensView:   tokens.NewView(s, ports.Tokens),
		settingsView: settings.NewView(s, ports.Settings),
		currentView:  messages.ViewMenu,
	}, nil
}

// WithContext sets the context for the app and its views.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.convertView.WithContext(ctx)
	a.tokensView.WithContext(ctx)
	return a
}

// Init implements tea.Model.
// It runs initial commands when the program starts.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		tea.SetWindowTitle("speakmath"),
	)
}

// Update implements tea.Model.
// It handles messages and updates the model state.
//
//nolint:gocyclo // central message handler
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		a.menuView.SetDimensions(msg.Width, msg.Height)
		a.convertView.SetDimensions(msg.Width, msg.Height)
		a.tokensView.SetDimensions(msg.Width, msg.Height)
		a.settingsView.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if a.currentView == messages.ViewHelp {
			if msg.Type == tea.KeyEsc || msg.String() == "q" {
				a.currentView = messages.ViewMenu
			}
			return a, nil
		}
		return a, a.forward(msg)

	case messages.ViewChanged:
		a.currentView = msg.View
		switch msg.View {
		case messages.ViewConvert:
			a.convertView.Reset()
			return a, a.convertView.Init()
		case messages.ViewTokens:
			return a, a.tokensView.Init()
		case messages.ViewSettings:
			return a, a.settingsView.Init()
		case messages.ViewMenu, messages.ViewHelp:
		}
		return a, nil

	case messages.ConversionCompleted:
		if msg.Err != nil {
			a.err = msg.Err
		} else {
			a.err = nil
		}
		a.convertView, cmd = a.convertView.Update(msg)
		return a, cmd

	case messages.OutputCopied:
		a.convertView, cmd = a.convertView.Update(msg)
		return a, cmd

	case messages.TokensLoaded, messages.TokensCleared:
		a.tokensView, cmd = a.tokensView.Update(msg)
		return a, cmd

	case messages.SettingsLoaded, messages.SettingsSaved:
		a.settingsView, cmd = a.settingsView.Update(msg)
		return a, cmd

	case messages.ErrorOccurred:
		a.err = msg.Err
		if a.currentView == messages.ViewConvert {
			a.convertView, cmd = a.convertView.Update(msg)
		}
		return a, cmd

	case messages.Quit:
		return a, tea.Quit
	}

	return a, a.forward(msg)
}

// forward passes msg to the active view.
func (a *App) forward(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch a.currentView {
	case messages.ViewMenu:
		a.menuView, cmd = a.menuView.Update(msg)
	case messages.ViewConvert:
		a.convertView, cmd = a.convertView.Update(msg)
		a.err = a.convertView.Err()
	case messages.ViewTokens:
		a.tokensView, cmd = a.tokensView.Update(msg)
	case messages.ViewSettings:
		a.settingsView, cmd = a.settingsView.Update(msg)
	case messages.ViewHelp:
	}
	return cmd
}

// View implements tea.Model.
// It renders the current view as a string.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	switch a.currentView {
	case messages.ViewConvert:
		return a.convertView.View()
	case messages.ViewTokens:
		return a.tokensView.View()
	case messages.ViewSettings:
		return a.settingsView.View()
	case messages.ViewHelp:
		return a.viewHelp()
	default:
		return a.menuView.View()
	}
}

func (a *App) viewHelp() string {
	return a.styles.Title.Render("Help") + `

Navigation:
  esc         Back to Menu
  ctrl+c      Quit

Menu:
  j/k, ↑/↓    Navigate options
  enter       Select option
  ?           This help
  q           Quit

Convert:
  (type)      Enter notation, e.g. \frac{a}{b}
  enter       Convert
  tab         Cycle audience level
  ctrl+d      Cycle domain (auto lets the classifier decide)
  e           Edit notation
  y           Copy spoken output

Unrecognized tokens:
  r           Reload
  c           Clear the log

Settings:
  enter       Edit the selected value
  esc         Cancel edit

` + a.styles.Help.Render("[esc] back to menu")
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// Result returns the last conversion result shown in the convert view.
func (a *App) Result() *domain.ProcessingResult {
	return a.convertView.Result()
}

// Notation returns the notation currently in the convert input.
func (a *App) Notation() string {
	return a.convertView.Notation()
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions (for testing).
func (a *App) SetDimensions(width, height int) {
	a.Update(tea.WindowSizeMsg{Width: width, Height: height})
}
