// Package styles provides colour themes and styling for the review console.
package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/kyc-onboard/internal/core/domain"
)

// Theme is the console palette. The four signal colours map onto risk
// levels, finding severities and decisions and must stay distinct.
type Theme struct {
	Primary, Secondary lipgloss.Color
	Foreground, Muted  lipgloss.Color
	Border, StatusBg   lipgloss.Color

	Success, Warning, Error, Critical lipgloss.Color
}

// DefaultTheme returns the dark palette used when none is configured.
func DefaultTheme() *Theme {
	return &Theme{
		Primary:    "#7C3AED",
		Secondary:  "#06B6D4",
		Foreground: "#CDD6F4",
		Muted:      "#6C7086",
		Border:     "#45475A",
		StatusBg:   "#181825",

		Success:  "#A6E3A1",
		Warning:  "#F9E2AF",
		Error:    "#F38BA8",
		Critical: "#FF5F5F",
	}
}

// Styles holds the lipgloss styles every view renders with.
type Styles struct {
	theme *Theme

	Title, Subtitle         lipgloss.Style
	Normal, Muted, Selected lipgloss.Style
	Help                    lipgloss.Style

	Success, Warning, Error, Critical lipgloss.Style

	InputField, Border, StatusBar lipgloss.Style
}

// NewStyles derives styles from theme. A nil theme means DefaultTheme.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}
	fg := func(c lipgloss.Color) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }
	boxed := lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(theme.Border)

	return &Styles{
		theme: theme,

		Title:    fg(theme.Primary).Bold(true),
		Subtitle: fg(theme.Secondary).Bold(true),
		Normal:   fg(theme.Foreground),
		Muted:    fg(theme.Muted),
		Selected: fg(theme.Foreground).Background(theme.Primary).Bold(true),
		Help:     fg(theme.Muted),

		Success:  fg(theme.Success),
		Warning:  fg(theme.Warning),
		Error:    fg(theme.Error),
		Critical: fg(theme.Critical).Bold(true),

		InputField: boxed.Padding(0, 1),
		Border:     boxed,
		StatusBar:  fg(theme.Muted).Background(theme.StatusBg).Padding(0, 1),
	}
}

// DefaultStyles returns styles for the default theme.
func DefaultStyles() *Styles {
	return NewStyles(DefaultTheme())
}

// Theme returns the palette the styles were built from.
func (s *Styles) Theme() *Theme {
	return s.theme
}

// signal picks one of the four signal styles by rank, 0 being the mildest.
// Out of range ranks render muted.
func (s *Styles) signal(rank int, ok bool) lipgloss.Style {
	if !ok {
		return s.Muted
	}
	return [...]lipgloss.Style{s.Success, s.Warning, s.Error, s.Critical}[rank]
}

var (
	riskRank = map[domain.RiskLevel]int{
		domain.RiskLow: 0, domain.RiskMedium: 1, domain.RiskHigh: 2, domain.RiskCritical: 3,
	}
	severityRank = map[domain.Severity]int{
		domain.SeverityMedium: 1, domain.SeverityHigh: 2, domain.SeverityCritical: 3,
	}
	decisionRank = map[domain.Decision]int{
		domain.DecisionApprove: 0, domain.DecisionConditional: 1, domain.DecisionEscalate: 2, domain.DecisionDecline: 3,
	}
)

// Risk returns the style for a risk level.
func (s *Styles) Risk(level domain.RiskLevel) lipgloss.Style {
	rank, ok := riskRank[level]
	return s.signal(rank, ok)
}

// Severity returns the style for a review finding. Advisory findings are
// muted.
func (s *Styles) Severity(sev domain.Severity) lipgloss.Style {
	rank, ok := severityRank[sev]
	return s.signal(rank, ok)
}

// Decision returns the style for an onboarding decision.
func (s *Styles) Decision(d domain.Decision) lipgloss.Style {
	rank, ok := decisionRank[d]
	return s.signal(rank, ok)
}
