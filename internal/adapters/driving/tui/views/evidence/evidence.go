// Package evidence provides the evidence ledger view of the open case.
package evidence

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/kyc-onboard/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/kyc-onboard/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/kyc-onboard/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/kyc-onboard/internal/core/domain"
	"github.com/custodia-labs/kyc-onboard/internal/core/ports/driving"
)

var errReviewUnavailable = errors.New("review service not available")

// Dispositions offered when approving a record, in display order.
var Dispositions = []domain.Disposition{
	domain.DispositionClear,
	domain.DispositionFalsePositive,
	domain.DispositionPotentialMatch,
	domain.DispositionConfirmedMatch,
	domain.DispositionPendingReview,
}

// View lists evidence records with a detail pane and lets the officer
// approve a disposition.
type View struct {
	styles *styles.Styles
	review driving.ReviewService
	list   *list.EvidenceList

	clientID string
	choosing bool
	choice   int
	status   string
	err      error
	width    int
	height   int
}

// NewView creates a new evidence view.
func NewView(s *styles.Styles, review driving.ReviewService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles: s,
		review: review,
		list:   list.NewEvidenceList(s),
		width:  80,
		height: 24,
	}
}

// SetCase loads the evidence of a case.
func (v *View) SetCase(rc *driving.ReviewCase) {
	v.clientID = ""
	v.choosing = false
	v.status = ""
	v.err = nil
	if rc == nil || rc.Checkpoint == nil {
		v.list.SetRecords(nil)
		return
	}
	v.clientID = rc.Checkpoint.Client.ID()
	v.list.SetRecords(rc.Checkpoint.Evidence)
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return nil
}

// Update handles messages for the evidence view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.ActionRecorded:
		if msg.Action.ActionType != domain.ActionApproveDisposition {
			return v, nil
		}
		v.err = msg.Err
		if msg.Err == nil {
			v.status = fmt.Sprintf("%s approved as %s", msg.Action.EvidenceID, msg.Action.ApprovedDisposition)
		}
		return v, nil

	case tea.KeyMsg:
		if v.choosing {
			return v.handleChoiceKey(msg)
		}
		return v.handleKeyMsg(msg)
	}

	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewCase}
		}
	case "enter":
		rec := v.list.SelectedRecord()
		if rec == nil {
			return v, nil
		}
		v.choosing = true
		v.choice = 0
		v.err = nil
		for i, d := range Dispositions {
			if d == rec.Disposition {
				v.choice = i
			}
		}
		return v, nil
	}

	var cmd tea.Cmd
	v.list, cmd = v.list.Update(msg)
	return v, cmd
}

func (v *View) handleChoiceKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "esc":
		v.choosing = false
	case "up", "k":
		if v.choice > 0 {
			v.choice--
		}
	case "down", "j":
		if v.choice < len(Dispositions)-1 {
			v.choice++
		}
	case "enter":
		v.choosing = false
		rec := v.list.SelectedRecord()
		if rec == nil {
			return v, nil
		}
		action := domain.ReviewAction{
			ActionType:          domain.ActionApproveDisposition,
			EvidenceID:          rec.EvidenceID,
			ApprovedDisposition: Dispositions[v.choice],
			PreviousDisposition: rec.Disposition,
		}
		return v, v.record(action)
	}
	return v, nil
}

func (v *View) record(action domain.ReviewAction) tea.Cmd {
	id := v.clientID
	return func() tea.Msg {
		if v.review == nil {
			return messages.ActionRecorded{Action: action, Err: errReviewUnavailable}
		}
		session, err := v.review.Record(context.Background(), id, action)
		return messages.ActionRecorded{Action: action, Session: session, Err: err}
	}
}

// View renders the list beside the selected record.
func (v *View) View() string {
	var b strings.Builder
	b.WriteString(v.styles.Title.Render("Evidence"))
	b.WriteString("\n\n")

	listWidth := v.width / 2
	v.list.SetDimensions(listWidth, v.height-6)
	left := lipgloss.NewStyle().Width(listWidth).Render(v.list.View())
	right := lipgloss.NewStyle().Width(v.width - listWidth - 2).PaddingLeft(2).Render(v.renderDetail())
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, right))
	b.WriteString("\n\n")

	switch {
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
		b.WriteString("\n")
	case v.status != "":
		b.WriteString(v.styles.Success.Render(v.status))
		b.WriteString("\n")
	}

	b.WriteString(v.renderHelp())
	return b.String()
}

func (v *View) renderDetail() string {
	rec := v.list.SelectedRecord()
	if rec == nil {
		return ""
	}

	var b strings.Builder
	field := func(name, value string) {
		if value == "" {
			return
		}
		b.WriteString(v.styles.Subtitle.Render(name+": ") + v.styles.Normal.Render(value))
		b.WriteString("\n")
	}

	field("ID", rec.EvidenceID)
	field("Source", fmt.Sprintf("%s (%s)", rec.SourceName, rec.SourceKind))
	field("Subject", rec.Subject)
	field("Context", rec.SubjectContext)
	field("Class", string(rec.EvidenceClass))
	field("Confidence", string(rec.Confidence))
	field("Disposition", string(rec.Disposition))
	field("Reasoning", rec.DispositionReasoning)
	b.WriteString("\n")
	b.WriteString(v.styles.Normal.Render(rec.Claim))

	if v.choosing {
		b.WriteString("\n\n")
		b.WriteString(v.styles.Subtitle.Render("Approve disposition"))
		b.WriteString("\n")
		for i, d := range Dispositions {
			if i == v.choice {
				b.WriteString(v.styles.Selected.Render("> " + string(d)))
			} else {
				b.WriteString(v.styles.Normal.Render("  " + string(d)))
			}
			b.WriteString("\n")
		}
	}

	return b.String()
}

func (v *View) renderHelp() string {
	if v.choosing {
		return v.styles.Help.Render("[j/k] choose  [enter] approve  [esc] cancel")
	}
	return v.styles.Help.Render("[j/k] navigate  [enter] approve disposition  [esc] back")
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
}

// Count returns the number of records shown.
func (v *View) Count() int {
	return v.list.Count()
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}

// Status returns the last status message.
func (v *View) Status() string {
	return v.status
}
