// Package casedetail provides the review view of one paused case.
package casedetail

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/kyc-onboard/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/kyc-onboard/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/kyc-onboard/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/kyc-onboard/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/kyc-onboard/internal/core/domain"
	"github.com/custodia-labs/kyc-onboard/internal/core/ports/driving"
)

var (
	errNoCase      = errors.New("no case open")
	errUnavailable = errors.New("service not available")
)

type mode int

const (
	modeBrowse mode = iota
	modeNote
	modeOverride
	modeConfirmFinalize
)

// View shows the review intelligence of one paused case and takes officer
// actions on it.
type View struct {
	styles   *styles.Styles
	keys     *keymap.KeyMap
	review   driving.ReviewService
	pipeline driving.PipelineService
	actions  driving.CaseActionService

	rc     *driving.ReviewCase
	output *domain.CaseOutput
	input  *input.TextInput
	mode   mode
	status string
	err    error
	busy   bool
	offset int
	width  int
	height int
}

// NewView creates a new case view.
func NewView(
	s *styles.Styles,
	review driving.ReviewService,
	pipeline driving.PipelineService,
	actions driving.CaseActionService,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles:   s,
		keys:     keymap.DefaultKeyMap(),
		review:   review,
		pipeline: pipeline,
		actions:  actions,
		input:    input.NewTextInput(s, "Note", ""),
		width:    80,
		height:   24,
	}
}

// SetCase replaces the displayed case and resets view state.
func (v *View) SetCase(rc *driving.ReviewCase) {
	v.rc = rc
	v.output = nil
	v.mode = modeBrowse
	v.status = ""
	v.err = nil
	v.busy = false
	v.offset = 0
	v.input.Reset()
	v.input.Blur()
}

// SetSession refreshes the review session without resetting view state.
func (v *View) SetSession(session *domain.ReviewSession) {
	if v.rc != nil && session != nil {
		v.rc.Session = session
	}
}

// Case returns the displayed case.
func (v *View) Case() *driving.ReviewCase {
	return v.rc
}

// ClientID returns the id of the displayed case, or empty.
func (v *View) ClientID() string {
	if v.rc == nil || v.rc.Checkpoint == nil {
		return ""
	}
	return v.rc.Checkpoint.Client.ID()
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return nil
}

// Update handles messages for the case view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.ActionRecorded:
		v.busy = false
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.err = nil
		if v.rc != nil {
			v.rc.Session = msg.Session
		}
		v.status = fmt.Sprintf("Recorded %s", msg.Action.ActionType)
		return v, nil

	case messages.CaseFinalized:
		v.busy = false
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.err = nil
		v.output = msg.Output
		v.status = "Case finalized"
		return v, nil

	case messages.ActionCompleted:
		v.busy = false
		v.err = msg.Err
		if msg.Err == nil {
			v.status = msg.Description
		}
		return v, nil

	case tea.KeyMsg:
		if v.mode == modeNote || v.mode == modeOverride {
			return v.handleInputKey(msg)
		}
		if v.mode == modeConfirmFinalize {
			v.mode = modeBrowse
			if msg.String() == "y" {
				return v, v.finalize()
			}
			v.status = "Finalize cancelled"
			return v, nil
		}
		return v.handleKeyMsg(msg)
	}

	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	k := msg.String()

	switch {
	case keymap.Matches(k, v.keys.Back):
		return v, changeView(messages.ViewCases)
	case keymap.Matches(k, v.keys.Up):
		if v.offset > 0 {
			v.offset--
		}
	case keymap.Matches(k, v.keys.Down):
		v.offset++
	case v.rc == nil:
		return v, nil
	case keymap.Matches(k, v.keys.Evidence):
		return v, changeView(messages.ViewEvidence)
	case keymap.Matches(k, v.keys.Ask):
		return v, changeView(messages.ViewAsk)
	case keymap.Matches(k, v.keys.Note):
		return v, v.beginInput(modeNote, "Note", "what the officer observed")
	case keymap.Matches(k, v.keys.Override):
		return v, v.beginInput(modeOverride, "Risk", "LOW, MEDIUM, HIGH or CRITICAL")
	case keymap.Matches(k, v.keys.Finalize):
		if v.output != nil {
			v.status = "Case already finalized"
			return v, nil
		}
		v.mode = modeConfirmFinalize
		v.status = "Finalize this case? [y] confirm  [any] cancel"
	case keymap.Matches(k, v.keys.Copy):
		return v, v.runAction("Summary copied to clipboard", func(ctx context.Context, id string) error {
			return v.actions.CopySummary(ctx, id)
		})
	case keymap.Matches(k, v.keys.Open):
		return v, v.runAction("Opened case folder", func(ctx context.Context, id string) error {
			return v.actions.OpenCase(ctx, id)
		})
	}

	return v, nil
}

func (v *View) beginInput(m mode, label, placeholder string) tea.Cmd {
	v.mode = m
	v.err = nil
	v.input.Reset()
	v.input.SetPrompt(label, placeholder)
	v.input.SetWidth(v.width)
	return v.input.Focus()
}

func (v *View) handleInputKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "esc":
		v.mode = modeBrowse
		v.input.Blur()
		return v, nil
	case "enter":
		value := strings.TrimSpace(v.input.Value())
		if value == "" {
			return v, nil
		}
		action := domain.ReviewAction{ActionType: domain.ActionAddNote, OfficerNote: value}
		if v.mode == modeOverride {
			level := domain.RiskLevel(strings.ToUpper(value))
			if !level.IsValid() {
				v.err = fmt.Errorf("%w: unknown risk level %q", domain.ErrInvalidInput, value)
				return v, nil
			}
			action = domain.ReviewAction{ActionType: domain.ActionOverrideRisk, RiskLevel: level}
		}
		v.mode = modeBrowse
		v.input.Blur()
		return v, v.record(action)
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) record(action domain.ReviewAction) tea.Cmd {
	id := v.ClientID()
	v.busy = true
	return func() tea.Msg {
		if v.review == nil {
			return messages.ActionRecorded{Action: action, Err: errUnavailable}
		}
		session, err := v.review.Record(context.Background(), id, action)
		return messages.ActionRecorded{Action: action, Session: session, Err: err}
	}
}

func (v *View) finalize() tea.Cmd {
	id := v.ClientID()
	v.busy = true
	v.status = "Finalizing"
	return func() tea.Msg {
		if v.pipeline == nil {
			return messages.CaseFinalized{Err: errUnavailable}
		}
		out, err := v.pipeline.Finalize(context.Background(), id)
		return messages.CaseFinalized{Output: out, Err: err}
	}
}

func (v *View) runAction(description string, fn func(context.Context, string) error) tea.Cmd {
	id := v.ClientID()
	return func() tea.Msg {
		if v.actions == nil {
			return messages.ActionCompleted{Description: description, Err: errUnavailable}
		}
		return messages.ActionCompleted{Description: description, Err: fn(context.Background(), id)}
	}
}

func changeView(view messages.ViewType) tea.Cmd {
	return func() tea.Msg {
		return messages.ViewChanged{View: view}
	}
}

// View renders the case.
func (v *View) View() string {
	if v.rc == nil || v.rc.Checkpoint == nil {
		return v.styles.Title.Render("Case") + "\n\n" +
			v.styles.Error.Render(errNoCase.Error()) + "\n\n" + v.renderHelp()
	}

	lines := v.bodyLines()
	visible := v.height - 8
	if visible < 5 {
		visible = 5
	}
	if v.offset > len(lines)-1 {
		v.offset = max(len(lines)-1, 0)
	}
	end := min(v.offset+visible, len(lines))

	var b strings.Builder
	cp := v.rc.Checkpoint
	b.WriteString(v.styles.Title.Render(fmt.Sprintf("Case: %s", cp.Client.Name())))
	b.WriteString("\n")
	b.WriteString(v.styles.Muted.Render(fmt.Sprintf("%s  run %s  %s", cp.Client.ID(), cp.RunID, cp.CompletedStage)))
	b.WriteString("\n\n")
	b.WriteString(strings.Join(lines[v.offset:end], "\n"))
	b.WriteString("\n\n")

	switch {
	case v.mode == modeNote || v.mode == modeOverride:
		b.WriteString(v.input.View())
		b.WriteString("\n")
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
		b.WriteString("\n")
	case v.busy:
		b.WriteString(v.styles.Muted.Render("Working..."))
		b.WriteString("\n")
	case v.status != "":
		b.WriteString(v.styles.Success.Render(v.status))
		b.WriteString("\n")
	}

	b.WriteString(v.renderHelp())
	return b.String()
}

func (v *View) bodyLines() []string {
	cp := v.rc.Checkpoint
	var lines []string
	add := func(s string) { lines = append(lines, s) }

	if v.output != nil {
		add(v.styles.Subtitle.Render("Final decision: ") +
			v.styles.Decision(v.output.FinalDecision).Render(string(v.output.FinalDecision)))
		if v.output.DecisionOverridden {
			add(v.styles.Warning.Render("  Officer override applied"))
		}
		add("")
	}

	risk := v.currentRisk()
	if risk != nil {
		level := risk.RiskLevel
		label := fmt.Sprintf("%s (%d)", level, risk.TotalScore)
		if v.rc.Session != nil {
			if over, ok := v.rc.Session.OverriddenRisk(); ok {
				level = over
				label = fmt.Sprintf("%s (overridden from %s)", over, risk.RiskLevel)
			}
		}
		add(v.styles.Subtitle.Render("Risk: ") + v.styles.Risk(level).Render(label))
	}
	if cp.Synthesis != nil {
		d := cp.Synthesis.RecommendedDecision
		add(v.styles.Subtitle.Render("Recommended: ") + v.styles.Decision(d).Render(string(d)))
		if cp.Synthesis.DecisionReasoning != "" {
			add(v.styles.Muted.Render("  " + cp.Synthesis.DecisionReasoning))
		}
	}
	add(v.styles.Subtitle.Render("Evidence: ") + v.styles.Normal.Render(fmt.Sprintf("%d records", len(cp.Evidence))))

	ri := cp.ReviewIntelligence
	if ri != nil {
		grade := fmt.Sprintf("%s  (V %.0f%%  S %.0f%%  I %.0f%%  U %.0f%%)",
			ri.Confidence.Grade, ri.Confidence.VerifiedPct, ri.Confidence.SourcedPct,
			ri.Confidence.InferredPct, ri.Confidence.UnknownPct)
		style := v.styles.Normal
		if ri.Confidence.Degraded {
			style = v.styles.Warning
		}
		add(v.styles.Subtitle.Render("Confidence: ") + style.Render(grade))

		add("")
		add(v.styles.Subtitle.Render(fmt.Sprintf("Discussion points (%d)", len(ri.DiscussionPoints))))
		for _, p := range ri.DiscussionPoints {
			add("  " + v.styles.Severity(p.Severity).Render(fmt.Sprintf("[%s]", p.Severity)) + " " + p.Title)
			if p.RecommendedAction != "" {
				add(v.styles.Muted.Render("      " + p.RecommendedAction))
			}
		}

		if len(ri.Contradictions) > 0 {
			add("")
			add(v.styles.Subtitle.Render(fmt.Sprintf("Contradictions (%d)", len(ri.Contradictions))))
			for _, c := range ri.Contradictions {
				add("  " + v.styles.Severity(c.Severity).Render(fmt.Sprintf("[%s]", c.Severity)) +
					fmt.Sprintf(" %s vs %s", c.FindingA, c.FindingB))
			}
		}

		if n := len(ri.RegulatoryMappings); n > 0 {
			add("")
			add(v.styles.Subtitle.Render("Regulatory mappings: ") + v.styles.Normal.Render(fmt.Sprintf("%d findings", n)))
		}
	}

	if s := v.rc.Session; s != nil && len(s.Actions) > 0 {
		add("")
		add(v.styles.Subtitle.Render(fmt.Sprintf("Review actions (%d)", len(s.Actions))))
		for _, a := range s.Actions {
			add(v.styles.Muted.Render("  " + describe(a)))
		}
	}

	return lines
}

// currentRisk is the revised assessment when synthesis produced one.
func (v *View) currentRisk() *domain.RiskAssessment {
	cp := v.rc.Checkpoint
	if cp.Synthesis != nil && cp.Synthesis.RevisedRiskAssessment != nil {
		return cp.Synthesis.RevisedRiskAssessment
	}
	if cp.Plan != nil {
		return &cp.Plan.PreliminaryRisk
	}
	return nil
}

func describe(a domain.ReviewAction) string {
	ts := a.Timestamp.Format(time.TimeOnly)
	switch a.ActionType {
	case domain.ActionQuery:
		return fmt.Sprintf("%s  asked: %s", ts, a.Query)
	case domain.ActionApproveDisposition:
		return fmt.Sprintf("%s  %s: %s -> %s", ts, a.EvidenceID, a.PreviousDisposition, a.ApprovedDisposition)
	case domain.ActionOverrideRisk:
		return fmt.Sprintf("%s  risk override: %s", ts, a.RiskLevel)
	case domain.ActionAddNote:
		return fmt.Sprintf("%s  note: %s", ts, a.OfficerNote)
	default:
		return fmt.Sprintf("%s  %s", ts, a.ActionType)
	}
}

func (v *View) renderHelp() string {
	return v.styles.Help.Render(keymap.HelpLine(v.keys.CaseHelp()...))
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.input.SetWidth(width)
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}

// Status returns the last status message.
func (v *View) Status() string {
	return v.status
}

// Editing reports whether a text input has focus.
func (v *View) Editing() bool {
	return v.mode == modeNote || v.mode == modeOverride
}
