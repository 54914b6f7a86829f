package cases

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
	ids []string
	err error
}

func (m *mockReview) Open(context.Context, string) (*driving.ReviewCase, error) {
	return nil, domain.ErrNotFound
}

func (m *mockReview) Record(context.Context, string, domain.ReviewAction) (*domain.ReviewSession, error) {
	return nil, nil
}

func (m *mockReview) Ask(context.Context, string, string) (string, error) {
	return "", nil
}

func (m *mockReview) Cases(context.Context) ([]string, error) {
	return m.ids, m.err
}

func loaded(t *testing.T, v *View) *View {
	t.Helper()
	cmd := v.Init()
	require.NotNil(t, cmd)
	v, _ = v.Update(cmd())
	return v
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestView_LoadsCases(t *testing.T) {
	v := loaded(t, NewView(nil, &mockReview{ids: []string{"acme_holdings_ltd", "jane_doe"}}))

	assert.NoError(t, v.Err())
	assert.Equal(t, []string{"acme_holdings_ltd", "jane_doe"}, v.ClientIDs())
	out := v.View()
	assert.Contains(t, out, "> acme_holdings_ltd")
	assert.Contains(t, out, "jane_doe")
}

func TestView_LoadError(t *testing.T) {
	v := loaded(t, NewView(nil, &mockReview{err: errors.New("disk gone")}))

	assert.Error(t, v.Err())
	assert.Contains(t, v.View(), "Error: disk gone")
}

func TestView_NilService(t *testing.T) {
	v := loaded(t, NewView(nil, nil))

	assert.ErrorIs(t, v.Err(), errReviewUnavailable)
}

func TestView_Empty(t *testing.T) {
	v := loaded(t, NewView(nil, &mockReview{}))

	assert.Contains(t, v.View(), "No cases found")
}

func TestView_EnterSelectsCase(t *testing.T) {
	v := loaded(t, NewView(nil, &mockReview{ids: []string{"a_co", "b_co"}}))

	v.Update(tea.KeyMsg{Type: tea.KeyDown})
	v.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, v.SelectedIndex())

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, messages.CaseSelected{ClientID: "b_co"}, cmd())
}

func TestView_Filter(t *testing.T) {
	v := loaded(t, NewView(nil, &mockReview{ids: []string{"acme_ltd", "globex_inc", "initech_llc"}}))

	v.Update(runes("glo"))
	out := v.View()
	assert.Contains(t, out, "Filter: glo")
	assert.Contains(t, out, "globex_inc")
	assert.NotContains(t, out, "acme_ltd")

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, messages.CaseSelected{ClientID: "globex_inc"}, cmd())

	v.Update(runes("zz"))
	assert.Contains(t, v.View(), "No matching cases")

	for range 5 {
		v.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	}
	assert.Contains(t, v.View(), "acme_ltd")
}

func TestView_Reload(t *testing.T) {
	m := &mockReview{ids: []string{"a_co"}}
	v := loaded(t, NewView(nil, m))

	m.ids = []string{"a_co", "b_co"}
	_, cmd := v.Update(runes("r"))
	require.NotNil(t, cmd)
	assert.Contains(t, v.View(), "Loading cases")

	v.Update(cmd())
	assert.Len(t, v.ClientIDs(), 2)
}
