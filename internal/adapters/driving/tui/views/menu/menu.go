// Package menu is the console's landing view.
package menu

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/kyc-onboard/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/kyc-onboard/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/kyc-onboard/internal/adapters/driving/tui/styles"
)

// Entry is one destination on the menu. An entry with no target quits.
type Entry struct {
	Label  string
	Hint   string
	Target messages.ViewType
	quits  bool
}

var entries = []Entry{
	{Label: "Cases", Hint: "open a paused case for officer review", Target: messages.ViewCases},
	{Label: "Patterns", Hint: "shared addresses, directors and red flags across recent cases", Target: messages.ViewPatterns},
	{Label: "Settings", Hint: "model provider and pipeline defaults", Target: messages.ViewSettings},
	{Label: "Help", Hint: "keybindings", Target: messages.ViewHelp},
	{Label: "Quit", quits: true},
}

// View lists the console's destinations.
type View struct {
	styles *styles.Styles
	keys   *keymap.KeyMap
	cursor int

	// cases is the stored case count, or -1 before the first listing.
	cases int
	sized bool
}

// NewView creates the menu.
func NewView(s *styles.Styles) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{styles: s, keys: keymap.DefaultKeyMap(), cases: -1}
}

// Init implements the view contract.
func (v *View) Init() tea.Cmd { return nil }

// Update moves the cursor and emits navigation.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.sized = true

	case messages.CasesLoaded:
		if msg.Err == nil {
			v.cases = len(msg.ClientIDs)
		}

	case tea.KeyMsg:
		k := msg.String()
		switch {
		case keymap.Matches(k, v.keys.Up):
			v.cursor = max(v.cursor-1, 0)
		case keymap.Matches(k, v.keys.Down):
			v.cursor = min(v.cursor+1, len(entries)-1)
		case keymap.Matches(k, v.keys.Select):
			return v, v.choose(entries[v.cursor])
		case keymap.Matches(k, v.keys.Help):
			return v, v.choose(entries[3])
		case keymap.Matches(k, v.keys.Quit):
			return v, tea.Quit
		}
	}
	return v, nil
}

func (v *View) choose(e Entry) tea.Cmd {
	if e.quits {
		return tea.Quit
	}
	target := e.Target
	return func() tea.Msg { return messages.ViewChanged{View: target} }
}

// View renders the menu.
func (v *View) View() string {
	if !v.sized {
		return "Initialising..."
	}

	var b strings.Builder
	b.WriteString(v.styles.Title.Render("KYC Review"))
	b.WriteString("\n")
	b.WriteString(v.styles.Subtitle.Render(v.subtitle()))
	b.WriteString("\n\n")

	for i, e := range entries {
		if i == v.cursor {
			fmt.Fprintf(&b, "> %s", v.styles.Selected.Render(e.Label))
			if e.Hint != "" {
				b.WriteString("  " + v.styles.Muted.Render(e.Hint))
			}
		} else {
			b.WriteString("  " + v.styles.Normal.Render(e.Label))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(v.styles.Help.Render("[j/k] move  [enter] open  [?] help  [q] quit"))
	return b.String()
}

func (v *View) subtitle() string {
	switch v.cases {
	case -1:
		return "Client onboarding review console"
	case 1:
		return "Client onboarding review console · 1 stored case"
	default:
		return fmt.Sprintf("Client onboarding review console · %d stored cases", v.cases)
	}
}

// SetDimensions marks the view as sized.
func (v *View) SetDimensions(_, _ int) {
	v.sized = true
}

// Selected returns the cursor position.
func (v *View) Selected() int {
	return v.cursor
}
