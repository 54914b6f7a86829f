package menu

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/kyc-onboard/internal/adapters/driving/tui/messages"
)

func press(v *View, keys ...string) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		_, cmd = v.Update(msg)
	}
	return cmd
}

func target(t *testing.T, cmd tea.Cmd) messages.ViewType {
	t.Helper()
	require.NotNil(t, cmd)
	changed, ok := cmd().(messages.ViewChanged)
	require.True(t, ok, "expected navigation")
	return changed.View
}

func TestView_CursorStaysInRange(t *testing.T) {
	v := NewView(nil)
	assert.Nil(t, v.Init())

	press(v, "k", "up")
	assert.Equal(t, 0, v.Selected())

	for range len(entries) + 3 {
		press(v, "j")
	}
	assert.Equal(t, len(entries)-1, v.Selected())
}

func TestView_SelectNavigates(t *testing.T) {
	assert.Equal(t, messages.ViewCases, target(t, press(NewView(nil), "enter")))
	assert.Equal(t, messages.ViewPatterns, target(t, press(NewView(nil), "j", "enter")))
	assert.Equal(t, messages.ViewSettings, target(t, press(NewView(nil), "j", "j", "enter")))
	assert.Equal(t, messages.ViewHelp, target(t, press(NewView(nil), "?")))
}

func TestView_QuitEntryAndKey(t *testing.T) {
	v := NewView(nil)
	v.cursor = len(entries) - 1
	cmd := press(v, "enter")
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	cmd = press(NewView(nil), "q")
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestView_RenderShowsHintForCursorOnly(t *testing.T) {
	v := NewView(nil)
	assert.Equal(t, "Initialising...", v.View())

	v.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	out := v.View()

	assert.Contains(t, out, "KYC Review")
	assert.Contains(t, out, "> ")
	assert.Contains(t, out, entries[0].Hint)
	assert.NotContains(t, out, entries[1].Hint)
	for _, e := range entries {
		assert.Contains(t, out, e.Label)
	}
}

func TestView_CaseCount(t *testing.T) {
	v := NewView(nil)
	v.SetDimensions(80, 24)
	assert.NotContains(t, v.View(), "stored case")

	v.Update(messages.CasesLoaded{Err: errors.New("results directory missing")})
	assert.NotContains(t, v.View(), "stored case")

	v.Update(messages.CasesLoaded{ClientIDs: []string{"jane_doe"}})
	assert.Contains(t, v.View(), "1 stored case")

	v.Update(messages.CasesLoaded{ClientIDs: []string{"jane_doe", "acme_holdings", "li_wei"}})
	assert.Contains(t, v.View(), "3 stored cases")
}
