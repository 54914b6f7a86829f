package patterns

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

type mockIntelligence struct {
	analytics domain.BatchAnalytics
	err       error
}

func (m *mockIntelligence) Analyze(context.Context, driving.ReviewInput) (*domain.ReviewIntelligence, error) {
	return nil, nil
}

func (m *mockIntelligence) Patterns(context.Context) (domain.BatchAnalytics, error) {
	return m.analytics, m.err
}

func load(v *View) {
	cmd := v.Init()
	v.Update(cmd())
}

func TestView_Patterns(t *testing.T) {
	v := NewView(nil, &mockIntelligence{analytics: domain.BatchAnalytics{
		TotalCasesInWindow: 7,
		Patterns: []domain.BatchPattern{{
			PatternType:  domain.PatternJurisdictionCluster,
			Description:  "3 cases involving Cyprus",
			CaseIDs:      []string{"a_co", "b_co", "c_co"},
			Significance: "Possible layering through one jurisdiction",
		}},
	}})

	assert.Contains(t, v.View(), "Batch Patterns")
	load(v)

	require.NoError(t, v.Err())
	out := v.View()
	assert.Contains(t, out, "Cases in window: 7")
	assert.Contains(t, out, "[jurisdiction_cluster] 3 cases involving Cyprus")
	assert.Contains(t, out, "cases: a_co, b_co, c_co")
	assert.Contains(t, out, "layering")
}

func TestView_NoPatterns(t *testing.T) {
	v := NewView(nil, &mockIntelligence{})
	load(v)

	assert.Contains(t, v.View(), "No patterns detected")
}

func TestView_Errors(t *testing.T) {
	v := NewView(nil, &mockIntelligence{err: errors.New("case log unavailable")})
	load(v)
	assert.Contains(t, v.View(), "Error: case log unavailable")

	v = NewView(nil, nil)
	load(v)
	assert.ErrorIs(t, v.Err(), errIntelligenceUnavailable)
}

func TestView_Keys(t *testing.T) {
	v := NewView(nil, &mockIntelligence{})

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, messages.ViewChanged{View: messages.ViewMenu}, cmd())

	_, cmd = v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	require.NotNil(t, cmd)
	assert.IsType(t, messages.PatternsLoaded{}, cmd())
}
