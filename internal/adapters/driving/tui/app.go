package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/kyc-onboard/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/kyc-onboard/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/kyc-onboard/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/kyc-onboard/internal/adapters/driving/tui/views/ask"
	"github.com/custodia-labs/kyc-onboard/internal/adapters/driving/tui/views/casedetail"
	"github.com/custodia-labs/kyc-onboard/internal/adapters/driving/tui/views/cases"
	"github.com/custodia-labs/kyc-onboard/internal/adapters/driving/tui/views/evidence"
	"github.com/custodia-labs/kyc-onboard/internal/adapters/driving/tui/views/menu"
	"github.com/custodia-labs/kyc-onboard/internal/adapters/driving/tui/views/patterns"
	"github.com/custodia-labs/kyc-onboard/internal/adapters/driving/tui/views/settings"
	"github.com/custodia-labs/kyc-onboard/internal/core/ports/driving"
)

// sessionRefreshed carries a reloaded review session for the open case.
type sessionRefreshed struct {
	rc *driving.ReviewCase
}

// App is the review console following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles
	keys   *keymap.KeyMap

	menuView     *menu.View
	casesView    *cases.View
	caseView     *casedetail.View
	evidenceView *evidence.View
	askView      *ask.View
	patternsView *patterns.View
	settingsView *settings.View

	// initialCase is opened directly on start when set.
	initialCase string

	currentView messages.ViewType
	err         error

	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates the review console. When clientID is set the console opens
// straight into that case.
func NewApp(ports *Ports, clientID string) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	return &App{
		ports:        ports,
		ctx:          context.Background(),
		styles:       s,
		keys:         km,
		menuView:     menu.NewView(s),
		casesView:    cases.NewView(s, ports.Review),
		caseView:     casedetail.NewView(s, ports.Review, ports.Pipeline, ports.Actions),
		evidenceView: evidence.NewView(s, ports.Review),
		askView:      ask.NewView(s, km, ports.Review),
		patternsView: patterns.NewView(s, ports.Intelligence),
		settingsView: settings.NewView(s, ports.Settings),
		initialCase:  clientID,
		currentView:  messages.ViewMenu,
	}, nil
}

// WithContext sets the context for the app.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.askView.WithContext(ctx)
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{tea.EnterAltScreen, tea.SetWindowTitle("kyc - review console")}
	if a.initialCase != "" {
		cmds = append(cmds, a.openCase(a.initialCase))
	} else {
		cmds = append(cmds, a.casesView.Init())
	}
	return tea.Batch(cmds...)
}

func (a *App) openCase(clientID string) tea.Cmd {
	return func() tea.Msg {
		rc, err := a.ports.Review.Open(a.ctx, clientID)
		if err != nil {
			err = fmt.Errorf("opening %s: %w", clientID, err)
		}
		return messages.CaseOpened{Case: rc, Err: err}
	}
}

func (a *App) refreshSession() tea.Cmd {
	id := a.caseView.ClientID()
	if id == "" {
		return nil
	}
	return func() tea.Msg {
		rc, err := a.ports.Review.Open(a.ctx, id)
		if err != nil {
			return messages.ErrorOccurred{Err: err}
		}
		return sessionRefreshed{rc: rc}
	}
}

// Update implements tea.Model.
//
//nolint:gocognit,gocyclo,funlen // central message handler requires complexity
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		return a, a.forwardKey(msg)

	case messages.ViewChanged:
		return a, a.switchView(msg.View)

	case messages.CaseSelected:
		return a, a.openCase(msg.ClientID)

	case messages.CaseOpened:
		if msg.Err != nil {
			a.err = msg.Err
			a.currentView = messages.ViewCases
			return a, a.casesView.Init()
		}
		a.err = nil
		a.caseView.SetCase(msg.Case)
		a.evidenceView.SetCase(msg.Case)
		a.askView.SetCase(msg.Case)
		a.currentView = messages.ViewCase
		return a, nil

	case sessionRefreshed:
		if msg.rc != nil {
			a.caseView.SetSession(msg.rc.Session)
		}
		return a, nil

	case messages.ActionRecorded:
		a.caseView, cmd = a.caseView.Update(msg)
		var evCmd tea.Cmd
		a.evidenceView, evCmd = a.evidenceView.Update(msg)
		return a, tea.Batch(cmd, evCmd)

	case messages.CaseFinalized, messages.ActionCompleted:
		a.caseView, cmd = a.caseView.Update(msg)
		return a, cmd

	case messages.AnswerReceived:
		a.askView, cmd = a.askView.Update(msg)
		return a, cmd

	case messages.CasesLoaded:
		a.menuView, _ = a.menuView.Update(msg)
		a.casesView, cmd = a.casesView.Update(msg)
		return a, cmd

	case messages.PatternsLoaded:
		a.patternsView, cmd = a.patternsView.Update(msg)
		return a, cmd

	case messages.SettingsLoaded, messages.SettingsSaved:
		a.settingsView, cmd = a.settingsView.Update(msg)
		return a, cmd

	case messages.ErrorOccurred:
		a.err = msg.Err
		return a, nil

	case messages.Quit:
		return a, tea.Quit
	}

	return a, nil
}

// forwardKey hands a key press to the active view.
func (a *App) forwardKey(msg tea.KeyMsg) tea.Cmd {
	var cmd tea.Cmd

	switch a.currentView {
	case messages.ViewMenu:
		a.menuView, cmd = a.menuView.Update(msg)
	case messages.ViewCases:
		if msg.Type == tea.KeyEsc {
			return a.switchView(messages.ViewMenu)
		}
		a.casesView, cmd = a.casesView.Update(msg)
	case messages.ViewCase:
		a.caseView, cmd = a.caseView.Update(msg)
	case messages.ViewEvidence:
		a.evidenceView, cmd = a.evidenceView.Update(msg)
	case messages.ViewAsk:
		a.askView, cmd = a.askView.Update(msg)
	case messages.ViewPatterns:
		a.patternsView, cmd = a.patternsView.Update(msg)
	case messages.ViewSettings:
		a.settingsView, cmd = a.settingsView.Update(msg)
	case messages.ViewHelp:
		if msg.Type == tea.KeyEsc {
			a.currentView = messages.ViewMenu
		}
	}
	return cmd
}

// switchView activates a view and runs its initialisation.
func (a *App) switchView(view messages.ViewType) tea.Cmd {
	from := a.currentView
	a.currentView = view

	switch view {
	case messages.ViewCases:
		return a.casesView.Init()
	case messages.ViewCase:
		if from == messages.ViewAsk {
			return a.refreshSession()
		}
	case messages.ViewAsk:
		return a.askView.Init()
	case messages.ViewPatterns:
		return a.patternsView.Init()
	case messages.ViewSettings:
		a.settingsView.Reset()
		return a.settingsView.Init()
	case messages.ViewMenu, messages.ViewEvidence, messages.ViewHelp:
	}
	return nil
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	var body string
	switch a.currentView {
	case messages.ViewCases:
		body = a.casesView.View()
	case messages.ViewCase:
		body = a.caseView.View()
	case messages.ViewEvidence:
		body = a.evidenceView.View()
	case messages.ViewAsk:
		body = a.askView.View()
	case messages.ViewPatterns:
		body = a.patternsView.View()
	case messages.ViewSettings:
		body = a.settingsView.View()
	case messages.ViewHelp:
		body = a.viewHelp()
	default:
		body = a.menuView.View()
	}

	if a.err != nil {
		body = a.styles.Error.Render("Error: "+a.err.Error()) + "\n\n" + body
	}
	return body
}

// viewHelp renders the key bindings grouped as in the keymap.
func (a *App) viewHelp() string {
	var b strings.Builder
	b.WriteString(a.styles.Title.Render("Help"))
	b.WriteString("\n\n")

	headings := []string{"Navigation", "Case review", "Case actions", "General"}
	for i, group := range a.keys.FullHelp() {
		if i < len(headings) {
			b.WriteString(a.styles.Subtitle.Render(headings[i]))
			b.WriteString("\n")
		}
		for _, binding := range group {
			h := binding.Help()
			b.WriteString(fmt.Sprintf("  %-10s %s\n", h.Key, h.Desc))
		}
		b.WriteString("\n")
	}

	b.WriteString(a.styles.Help.Render("[esc] back to menu"))
	return b.String()
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// OpenCaseID returns the id of the case open for review, or empty.
func (a *App) OpenCaseID() string {
	return a.caseView.ClientID()
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions on every view.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.menuView.SetDimensions(width, height)
	a.casesView.SetDimensions(width, height)
	a.caseView.SetDimensions(width, height)
	a.evidenceView.SetDimensions(width, height)
	a.askView.SetDimensions(width, height)
	a.patternsView.SetDimensions(width, height)
	a.settingsView.SetDimensions(width, height)
}
