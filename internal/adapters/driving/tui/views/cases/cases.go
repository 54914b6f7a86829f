// Package cases provides the stored case list view for the TUI.
package cases

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/kyc-onboard/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/kyc-onboard/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/kyc-onboard/internal/core/ports/driving"
)

var errReviewUnavailable = errors.New("review service not available")

// View lists the client ids with a stored case.
type View struct {
	styles *styles.Styles
	review driving.ReviewService

	clientIDs []string
	filter    string
	selected  int
	width     int
	height    int
	ready     bool
	err       error
	loading   bool
}

// NewView creates a new cases view.
func NewView(s *styles.Styles, review driving.ReviewService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles: s,
		review: review,
		width:  80,
		height: 24,
	}
}

// Init loads the case list.
func (v *View) Init() tea.Cmd {
	v.loading = true
	return v.loadCases()
}

func (v *View) loadCases() tea.Cmd {
	return func() tea.Msg {
		if v.review == nil {
			return messages.CasesLoaded{Err: errReviewUnavailable}
		}
		ids, err := v.review.Cases(context.Background())
		return messages.CasesLoaded{ClientIDs: ids, Err: err}
	}
}

// Update handles messages for the cases view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.CasesLoaded:
		v.loading = false
		v.err = msg.Err
		if msg.Err == nil {
			v.clientIDs = msg.ClientIDs
			if v.selected >= len(v.visible()) {
				v.selected = 0
			}
		}
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)
	}

	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	ids := v.visible()

	switch msg.String() {
	case "up", "k":
		if v.selected > 0 {
			v.selected--
		}
	case "down", "j":
		if v.selected < len(ids)-1 {
			v.selected++
		}
	case "enter":
		if v.selected < len(ids) {
			id := ids[v.selected]
			return v, func() tea.Msg {
				return messages.CaseSelected{ClientID: id}
			}
		}
	case "r":
		v.loading = true
		return v, v.loadCases()
	case "backspace":
		if v.filter != "" {
			v.filter = v.filter[:len(v.filter)-1]
			v.selected = 0
		}
	default:
		// Typing narrows the list by client id prefix.
		if msg.Type == tea.KeyRunes && msg.String() != "q" {
			v.filter += string(msg.Runes)
			v.selected = 0
		}
	}

	return v, nil
}

// visible returns the ids matching the current filter.
func (v *View) visible() []string {
	if v.filter == "" {
		return v.clientIDs
	}
	var out []string
	for _, id := range v.clientIDs {
		if strings.Contains(id, v.filter) {
			out = append(out, id)
		}
	}
	return out
}

// View renders the case list.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Cases"))
	b.WriteString("\n\n")

	switch {
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Loading cases..."))
	case v.err != nil:
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %s", v.err.Error())))
	case len(v.clientIDs) == 0:
		b.WriteString(v.styles.Muted.Render("No cases found. Run `kyc run --client FILE` first."))
	default:
		if v.filter != "" {
			b.WriteString(v.styles.Muted.Render("Filter: " + v.filter))
			b.WriteString("\n")
		}
		ids := v.visible()
		if len(ids) == 0 {
			b.WriteString(v.styles.Muted.Render("No matching cases."))
		}
		for i, id := range ids {
			if i == v.selected {
				b.WriteString(v.styles.Selected.Render("> " + id))
			} else {
				b.WriteString(v.styles.Normal.Render("  " + id))
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("\n\n")
	b.WriteString(v.renderHelp())
	return b.String()
}

func (v *View) renderHelp() string {
	return v.styles.Help.Render("[enter] review  [type] filter  [r] reload  [esc] back")
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// ClientIDs returns the loaded case ids.
func (v *View) ClientIDs() []string {
	return v.clientIDs
}

// SelectedIndex returns the selected row.
func (v *View) SelectedIndex() int {
	return v.selected
}

// Err returns the last load error.
func (v *View) Err() error {
	return v.err
}
