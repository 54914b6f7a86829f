// Package patterns shows cross-case batch analytics.
package patterns

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/kyc-onboard/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/kyc-onboard/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/kyc-onboard/internal/core/domain"
	"github.com/custodia-labs/kyc-onboard/internal/core/ports/driving"
)

var errIntelligenceUnavailable = errors.New("review intelligence not available")

// View renders the patterns detected over the rolling case window.
type View struct {
	styles       *styles.Styles
	intelligence driving.ReviewIntelligenceService

	analytics domain.BatchAnalytics
	loading   bool
	err       error
	width     int
	height    int
}

// NewView creates a new patterns view.
func NewView(s *styles.Styles, intelligence driving.ReviewIntelligenceService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles:       s,
		intelligence: intelligence,
		width:        80,
		height:       24,
	}
}

// Init loads the analytics.
func (v *View) Init() tea.Cmd {
	v.loading = true
	return func() tea.Msg {
		if v.intelligence == nil {
			return messages.PatternsLoaded{Err: errIntelligenceUnavailable}
		}
		analytics, err := v.intelligence.Patterns(context.Background())
		return messages.PatternsLoaded{Analytics: analytics, Err: err}
	}
}

// Update handles messages for the patterns view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
	case messages.PatternsLoaded:
		v.loading = false
		v.err = msg.Err
		if msg.Err == nil {
			v.analytics = msg.Analytics
		}
	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return v, func() tea.Msg {
				return messages.ViewChanged{View: messages.ViewMenu}
			}
		case "r":
			return v, v.Init()
		}
	}
	return v, nil
}

// View renders the patterns.
func (v *View) View() string {
	var b strings.Builder
	b.WriteString(v.styles.Title.Render("Batch Patterns"))
	b.WriteString("\n\n")

	switch {
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Analysing case log..."))
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
	default:
		b.WriteString(v.styles.Subtitle.Render("Cases in window: "))
		b.WriteString(v.styles.Normal.Render(fmt.Sprintf("%d", v.analytics.TotalCasesInWindow)))
		b.WriteString("\n\n")
		if len(v.analytics.Patterns) == 0 {
			b.WriteString(v.styles.Muted.Render("No patterns detected."))
		}
		for _, p := range v.analytics.Patterns {
			b.WriteString(v.styles.Warning.Render(fmt.Sprintf("[%s]", p.PatternType)))
			b.WriteString(" ")
			b.WriteString(v.styles.Normal.Render(p.Description))
			b.WriteString("\n")
			if len(p.CaseIDs) > 0 {
				b.WriteString(v.styles.Muted.Render("    cases: " + strings.Join(p.CaseIDs, ", ")))
				b.WriteString("\n")
			}
			if p.Significance != "" {
				b.WriteString(v.styles.Muted.Render("    " + p.Significance))
				b.WriteString("\n")
			}
		}
	}

	b.WriteString("\n\n")
	b.WriteString(v.styles.Help.Render("[r] reload  [esc] back"))
	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
}

// Analytics returns the loaded analytics.
func (v *View) Analytics() domain.BatchAnalytics {
	return v.analytics
}

// Err returns the last load error.
func (v *View) Err() error {
	return v.err
}
