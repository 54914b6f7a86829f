package casedetail

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/kyc-onboard/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/kyc-onboard/internal/core/domain"
	"github.com/custodia-labs/kyc-onboard/internal/core/ports/driving"
)

type mockReview struct {
	recorded []domain.ReviewAction
	err      error
}

func (m *mockReview) Open(context.Context, string) (*driving.ReviewCase, error) {
	return nil, domain.ErrNotFound
}

func (m *mockReview) Record(_ context.Context, _ string, a domain.ReviewAction) (*domain.ReviewSession, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.recorded = append(m.recorded, a)
	return &domain.ReviewSession{ClientID: "acme_holdings_ltd", Actions: m.recorded}, nil
}

func (m *mockReview) Ask(context.Context, string, string) (string, error) { return "", nil }

func (m *mockReview) Cases(context.Context) ([]string, error) { return nil, nil }

type mockPipeline struct {
	finalized string
}

func (m *mockPipeline) Run(context.Context, domain.Client, driving.RunOptions) (*domain.CaseOutput, error) {
	return nil, nil
}

func (m *mockPipeline) Finalize(_ context.Context, id string) (*domain.CaseOutput, error) {
	m.finalized = id
	return &domain.CaseOutput{ClientID: id, Status: domain.StatusFinalized, FinalDecision: domain.DecisionEscalate}, nil
}

type mockActions struct {
	copied, opened string
	err            error
}

func (m *mockActions) CopySummary(_ context.Context, id string) error {
	m.copied = id
	return m.err
}

func (m *mockActions) OpenCase(_ context.Context, id string) error {
	m.opened = id
	return m.err
}

func reviewCase() *driving.ReviewCase {
	risk := domain.RiskAssessment{TotalScore: 42, RiskLevel: domain.RiskHigh}
	return &driving.ReviewCase{
		Checkpoint: &domain.Checkpoint{
			RunID:          "run-1",
			CompletedStage: domain.PhaseReview,
			Client:         domain.NewBusiness(domain.BusinessClient{LegalName: "Acme Holdings Ltd"}),
			Evidence:       []domain.EvidenceRecord{{EvidenceID: "san_ent_acme"}},
			Synthesis: &domain.SynthesisOutput{
				RevisedRiskAssessment: &risk,
				RecommendedDecision:   domain.DecisionEscalate,
				DecisionReasoning:     "Potential sanctions exposure",
			},
			ReviewIntelligence: &domain.ReviewIntelligence{
				Confidence: domain.ConfidenceAlert{Grade: domain.GradeC, Degraded: true},
				DiscussionPoints: []domain.DiscussionPoint{
					{Title: "Unresolved sanctions hit", Severity: domain.SeverityCritical, RecommendedAction: "Confirm identity"},
				},
				Contradictions: []domain.Contradiction{
					{FindingA: "incorporated 2019", FindingB: "trading since 2010", Severity: domain.SeverityHigh},
				},
			},
		},
		Session: &domain.ReviewSession{ClientID: "acme_holdings_ltd"},
	}
}

func newView() (*View, *mockReview, *mockPipeline, *mockActions) {
	r, p, a := &mockReview{}, &mockPipeline{}, &mockActions{}
	v := NewView(nil, r, p, a)
	v.SetDimensions(120, 60)
	v.SetCase(reviewCase())
	return v, r, p, a
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestView_NoCase(t *testing.T) {
	v := NewView(nil, nil, nil, nil)

	assert.Equal(t, "", v.ClientID())
	assert.Nil(t, v.Init())
	assert.Contains(t, v.View(), errNoCase.Error())

	_, cmd := v.Update(runes("e"))
	assert.Nil(t, cmd)
}

func TestView_Render(t *testing.T) {
	v, _, _, _ := newView()

	out := v.View()
	assert.Contains(t, out, "Case: Acme Holdings Ltd")
	assert.Contains(t, out, "acme_holdings_ltd")
	assert.Contains(t, out, "HIGH (42)")
	assert.Contains(t, out, "ESCALATE")
	assert.Contains(t, out, "Potential sanctions exposure")
	assert.Contains(t, out, "1 records")
	assert.Contains(t, out, "Discussion points (1)")
	assert.Contains(t, out, "[CRITICAL] Unresolved sanctions hit")
	assert.Contains(t, out, "incorporated 2019 vs trading since 2010")
}

func TestView_Navigation(t *testing.T) {
	v, _, _, _ := newView()

	tests := map[string]messages.ViewType{
		"e":   messages.ViewEvidence,
		"a":   messages.ViewAsk,
		"esc": messages.ViewCases,
	}
	for k, want := range tests {
		msg := runes(k)
		if k == "esc" {
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		}
		_, cmd := v.Update(msg)
		require.NotNil(t, cmd, k)
		assert.Equal(t, messages.ViewChanged{View: want}, cmd(), k)
	}
}

func TestView_AddNote(t *testing.T) {
	v, r, _, _ := newView()

	v.Update(runes("n"))
	require.True(t, v.Editing())

	v.Update(runes("Spoke to the director"))
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.False(t, v.Editing())

	v.Update(cmd())
	require.Len(t, r.recorded, 1)
	assert.Equal(t, domain.ActionAddNote, r.recorded[0].ActionType)
	assert.Equal(t, "Spoke to the director", r.recorded[0].OfficerNote)
	assert.Equal(t, "Recorded add_note", v.Status())
	assert.Contains(t, v.View(), "note: Spoke to the director")
}

func TestView_OverrideRisk(t *testing.T) {
	v, r, _, _ := newView()

	v.Update(runes("o"))
	v.Update(runes("extreme"))
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.ErrorIs(t, v.Err(), domain.ErrInvalidInput)
	assert.True(t, v.Editing())

	v.input.SetValue("critical")
	_, cmd = v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	v.Update(cmd())

	require.Len(t, r.recorded, 1)
	assert.Equal(t, domain.RiskCritical, r.recorded[0].RiskLevel)
	assert.Contains(t, v.View(), "CRITICAL (overridden from HIGH)")
}

func TestView_InputCancel(t *testing.T) {
	v, r, _, _ := newView()

	v.Update(runes("n"))
	v.Update(tea.KeyMsg{Type: tea.KeyEsc})

	assert.False(t, v.Editing())
	assert.Empty(t, r.recorded)
}

func TestView_RecordError(t *testing.T) {
	v, r, _, _ := newView()
	r.err = errors.New("locked")

	v.Update(runes("n"))
	v.Update(runes("x"))
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	v.Update(cmd())

	assert.EqualError(t, v.Err(), "locked")
	assert.Contains(t, v.View(), "Error: locked")
}

func TestView_Finalize(t *testing.T) {
	v, _, p, _ := newView()

	_, cmd := v.Update(runes("F"))
	assert.Nil(t, cmd)
	assert.Contains(t, v.Status(), "Finalize this case?")

	_, cmd = v.Update(runes("y"))
	require.NotNil(t, cmd)
	v.Update(cmd())

	assert.Equal(t, "acme_holdings_ltd", p.finalized)
	assert.Equal(t, "Case finalized", v.Status())
	assert.Contains(t, v.View(), "Final decision: ESCALATE")

	v.Update(runes("F"))
	assert.Equal(t, "Case already finalized", v.Status())
}

func TestView_FinalizeCancelled(t *testing.T) {
	v, _, p, _ := newView()

	v.Update(runes("F"))
	_, cmd := v.Update(runes("n"))

	assert.Nil(t, cmd)
	assert.Empty(t, p.finalized)
	assert.Equal(t, "Finalize cancelled", v.Status())
}

func TestView_CopyAndOpen(t *testing.T) {
	v, _, _, a := newView()

	_, cmd := v.Update(runes("c"))
	require.NotNil(t, cmd)
	v.Update(cmd())
	assert.Equal(t, "acme_holdings_ltd", a.copied)
	assert.Equal(t, "Summary copied to clipboard", v.Status())

	_, cmd = v.Update(runes("O"))
	require.NotNil(t, cmd)
	v.Update(cmd())
	assert.Equal(t, "acme_holdings_ltd", a.opened)

	a.err = errors.New("no clipboard")
	_, cmd = v.Update(runes("c"))
	v.Update(cmd())
	assert.EqualError(t, v.Err(), "no clipboard")
}

func TestView_NilServices(t *testing.T) {
	v := NewView(nil, nil, nil, nil)
	v.SetCase(reviewCase())

	_, cmd := v.Update(runes("c"))
	v.Update(cmd())
	assert.ErrorIs(t, v.Err(), errUnavailable)

	v.Update(runes("F"))
	_, cmd = v.Update(runes("y"))
	v.Update(cmd())
	assert.ErrorIs(t, v.Err(), errUnavailable)
}

func TestView_SetSession(t *testing.T) {
	v, _, _, _ := newView()
	v.Update(runes("F"))

	v.SetSession(&domain.ReviewSession{Actions: []domain.ReviewAction{
		{ActionType: domain.ActionQuery, Query: "who is the UBO?"},
	}})
	v.SetSession(nil)

	assert.Contains(t, v.View(), "asked: who is the UBO?")
	assert.Contains(t, v.Status(), "Finalize this case?")
}
