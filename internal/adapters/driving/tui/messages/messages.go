// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/kyc-onboard/internal/core/domain"
	"github.com/custodia-labs/kyc-onboard/internal/core/ports/driving"
)

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewMenu is the main navigation menu.
	ViewMenu ViewType = iota
	// ViewCases lists stored cases.
	ViewCases
	// ViewCase shows the review intelligence of one paused case.
	ViewCase
	// ViewEvidence lists the evidence records of the open case.
	ViewEvidence
	// ViewAsk is the question and answer view for the open case.
	ViewAsk
	// ViewPatterns shows cross-case batch patterns.
	ViewPatterns
	// ViewHelp is the help/keybindings view.
	ViewHelp
	// ViewSettings is the settings configuration view.
	ViewSettings
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewMenu:
		return "menu"
	case ViewCases:
		return "cases"
	case ViewCase:
		return "case"
	case ViewEvidence:
		return "evidence"
	case ViewAsk:
		return "ask"
	case ViewPatterns:
		return "patterns"
	case ViewHelp:
		return "help"
	case ViewSettings:
		return "settings"
	default:
		return "unknown"
	}
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}

// CasesLoaded carries the stored case ids.
type CasesLoaded struct {
	ClientIDs []string
	Err       error
}

// CaseSelected asks the app to open a case for review.
type CaseSelected struct {
	ClientID string
}

// CaseOpened carries a loaded paused case.
type CaseOpened struct {
	Case *driving.ReviewCase
	Err  error
}

// ActionRecorded signals that an officer action was stored.
type ActionRecorded struct {
	Action  domain.ReviewAction
	Session *domain.ReviewSession
	Err     error
}

// AnswerReceived carries the assistant's answer to a question.
type AnswerReceived struct {
	Question string
	Answer   string
	Err      error
}

// CaseFinalized carries the final output of a finalized case.
type CaseFinalized struct {
	Output *domain.CaseOutput
	Err    error
}

// ActionCompleted reports the outcome of a desktop action such as copying
// the summary.
type ActionCompleted struct {
	Description string
	Err         error
}

// PatternsLoaded carries batch analytics over the configured window.
type PatternsLoaded struct {
	Analytics domain.BatchAnalytics
	Err       error
}

// SettingsLoaded carries the application settings.
type SettingsLoaded struct {
	Settings *domain.AppSettings
	Err      error
}

// SettingsSaved signals settings were saved.
type SettingsSaved struct {
	Err error
}
