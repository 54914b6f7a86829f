package evidence

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/kyc-onboard/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/kyc-onboard/internal/core/domain"
	"github.com/custodia-labs/kyc-onboard/internal/core/ports/driving"
)

type mockReview struct {
	clientID string
	recorded []domain.ReviewAction
}

func (m *mockReview) Open(context.Context, string) (*driving.ReviewCase, error) {
	return nil, domain.ErrNotFound
}

func (m *mockReview) Record(_ context.Context, id string, a domain.ReviewAction) (*domain.ReviewSession, error) {
	m.clientID = id
	m.recorded = append(m.recorded, a)
	return &domain.ReviewSession{ClientID: id, Actions: m.recorded}, nil
}

func (m *mockReview) Ask(context.Context, string, string) (string, error) { return "", nil }

func (m *mockReview) Cases(context.Context) ([]string, error) { return nil, nil }

func reviewCase() *driving.ReviewCase {
	return &driving.ReviewCase{Checkpoint: &domain.Checkpoint{
		Client: domain.NewIndividual(domain.IndividualClient{FullName: "Jane Doe"}),
		Evidence: []domain.EvidenceRecord{
			{
				EvidenceID:    "san_ind_jane_doe",
				SourceKind:    domain.SourceUtility,
				SourceName:    "OFAC SDN",
				Subject:       "Jane Doe",
				Claim:         "No sanctions match",
				EvidenceClass: domain.EvidenceVerified,
				Disposition:   domain.DispositionClear,
			},
			{
				EvidenceID:           "pep_ind_jane_doe",
				SourceName:           "PEP screening",
				Claim:                "Possible PEP: former deputy minister",
				EvidenceClass:        domain.EvidenceSourced,
				Disposition:          domain.DispositionPotentialMatch,
				DispositionReasoning: "Name and birth year match",
			},
		},
	}}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newView() (*View, *mockReview) {
	m := &mockReview{}
	v := NewView(nil, m)
	v.SetDimensions(160, 40)
	v.SetCase(reviewCase())
	return v, m
}

func TestView_SetCase(t *testing.T) {
	v, _ := newView()
	assert.Equal(t, 2, v.Count())
	assert.Nil(t, v.Init())

	v.SetCase(nil)
	assert.Equal(t, 0, v.Count())
	assert.Contains(t, v.View(), "No evidence recorded")
}

func TestView_RendersDetail(t *testing.T) {
	v, _ := newView()

	out := v.View()
	assert.Contains(t, out, "OFAC SDN (utility)")
	assert.Contains(t, out, "No sanctions match")

	v.Update(runes("j"))
	out = v.View()
	assert.Contains(t, out, "Name and birth year match")
	assert.Contains(t, out, "POTENTIAL_MATCH")
}

func TestView_ApproveDisposition(t *testing.T) {
	v, m := newView()
	v.Update(tea.KeyMsg{Type: tea.KeyDown})

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Contains(t, v.View(), "Approve disposition")
	assert.Contains(t, v.View(), "> POTENTIAL_MATCH")

	v.Update(runes("k"))
	v.Update(runes("k"))
	assert.Contains(t, v.View(), "> CLEAR")
	v.Update(runes("j"))

	_, cmd = v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	msg := cmd()
	v.Update(msg)

	require.Len(t, m.recorded, 1)
	a := m.recorded[0]
	assert.Equal(t, "jane_doe", m.clientID)
	assert.Equal(t, domain.ActionApproveDisposition, a.ActionType)
	assert.Equal(t, "pep_ind_jane_doe", a.EvidenceID)
	assert.Equal(t, domain.DispositionFalsePositive, a.ApprovedDisposition)
	assert.Equal(t, domain.DispositionPotentialMatch, a.PreviousDisposition)
	assert.Equal(t, "pep_ind_jane_doe approved as FALSE_POSITIVE", v.Status())
}

func TestView_ChoiceCancel(t *testing.T) {
	v, m := newView()

	v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEsc})

	assert.Nil(t, cmd)
	assert.Empty(t, m.recorded)
	assert.NotContains(t, v.View(), "Approve disposition")
}

func TestView_Back(t *testing.T) {
	v, _ := newView()

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, messages.ViewChanged{View: messages.ViewCase}, cmd())
}

func TestView_NilReview(t *testing.T) {
	v := NewView(nil, nil)
	v.SetCase(reviewCase())

	v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	v.Update(cmd())

	assert.ErrorIs(t, v.Err(), errReviewUnavailable)
}

func TestView_IgnoresOtherActions(t *testing.T) {
	v, _ := newView()

	v.Update(messages.ActionRecorded{Action: domain.ReviewAction{ActionType: domain.ActionAddNote}})
	assert.Empty(t, v.Status())
}
