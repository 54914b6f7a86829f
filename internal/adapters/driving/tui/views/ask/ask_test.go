package ask

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
	asked  []string
	answer string
	err    error
}

func (m *mockReview) Open(context.Context, string) (*driving.ReviewCase, error) {
	return nil, domain.ErrNotFound
}

func (m *mockReview) Record(context.Context, string, domain.ReviewAction) (*domain.ReviewSession, error) {
	return nil, nil
}

func (m *mockReview) Ask(_ context.Context, id, q string) (string, error) {
	m.asked = append(m.asked, id+": "+q)
	return m.answer, m.err
}

func (m *mockReview) Cases(context.Context) ([]string, error) { return nil, nil }

func newView(m *mockReview) *View {
	v := NewView(nil, nil, m).WithContext(context.Background())
	v.SetDimensions(100, 30)
	v.SetCase(&driving.ReviewCase{Checkpoint: &domain.Checkpoint{
		Client: domain.NewIndividual(domain.IndividualClient{FullName: "Jane Doe"}),
	}})
	v.Init()
	return v
}

func TestView_AskAndAnswer(t *testing.T) {
	m := &mockReview{answer: "The PEP hit relies on a name match only."}
	v := newView(m)

	v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("why the PEP flag?")})
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.True(t, v.Pending())

	_, again := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, again)

	v.Update(cmd())
	assert.False(t, v.Pending())
	assert.Equal(t, []string{"jane_doe: why the PEP flag?"}, m.asked)
	require.Len(t, v.History(), 1)

	out := v.View()
	assert.Contains(t, out, "Ask about jane_doe")
	assert.Contains(t, out, "Q: why the PEP flag?")
	assert.Contains(t, out, "name match only")
}

func TestView_EmptyQuestionIgnored(t *testing.T) {
	v := newView(&mockReview{})

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
	assert.Contains(t, v.View(), "recorded in the review session")
}

func TestView_AskError(t *testing.T) {
	v := newView(&mockReview{err: errors.New("assistant offline")})

	v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("anything?")})
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	v.Update(cmd())

	assert.Empty(t, v.History())
	assert.Contains(t, v.View(), "assistant offline")
}

func TestView_NilReview(t *testing.T) {
	v := NewView(nil, nil, nil)
	v.input.SetValue("hello")

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	msg := cmd().(messages.AnswerReceived)

	assert.ErrorIs(t, msg.Err, errReviewUnavailable)
}

func TestView_Back(t *testing.T) {
	v := newView(&mockReview{})

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, messages.ViewChanged{View: messages.ViewCase}, cmd())
}

func TestView_SetCaseClearsHistory(t *testing.T) {
	v := newView(&mockReview{answer: "ok"})
	v.Update(messages.AnswerReceived{Question: "q", Answer: "a"})
	require.Len(t, v.History(), 1)

	v.SetCase(nil)
	assert.Empty(t, v.History())
}
