package keymap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultKeyMap(t *testing.T) {
	km := DefaultKeyMap()
	require.NotNil(t, km)

	assert.Contains(t, km.Quit.Keys(), "q")
	assert.Contains(t, km.Quit.Keys(), "ctrl+c")
	assert.Contains(t, km.Back.Keys(), "esc")
	assert.Contains(t, km.Up.Keys(), "k")
	assert.Contains(t, km.Down.Keys(), "j")
}

func TestDefaultKeyMap_CaseActions(t *testing.T) {
	km := DefaultKeyMap()

	tests := []struct {
		name string
		key  string
		keys []string
	}{
		{"evidence", "e", km.Evidence.Keys()},
		{"ask", "a", km.Ask.Keys()},
		{"note", "n", km.Note.Keys()},
		{"override", "o", km.Override.Keys()},
		{"finalize", "F", km.Finalize.Keys()},
		{"copy", "c", km.Copy.Keys()},
		{"open", "O", km.Open.Keys()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, []string{tt.key}, tt.keys)
		})
	}
}

func TestKeyMap_HelpGroups(t *testing.T) {
	km := DefaultKeyMap()

	assert.Len(t, km.ShortHelp(), 3)
	assert.Len(t, km.CaseHelp(), 8)
	assert.Len(t, km.FullHelp(), 4)
}

func TestMatches(t *testing.T) {
	km := DefaultKeyMap()

	assert.True(t, Matches("q", km.Quit))
	assert.True(t, Matches("ctrl+c", km.Quit))
	assert.False(t, Matches("x", km.Quit))
	assert.False(t, Matches("f", km.Finalize))
}

func TestHelpLine(t *testing.T) {
	km := DefaultKeyMap()

	assert.Equal(t, "[e] evidence  [esc] back", HelpLine(km.Evidence, km.Back))
	assert.Empty(t, HelpLine())
	assert.Contains(t, HelpLine(km.CaseHelp()...), "[F] finalize")
}
