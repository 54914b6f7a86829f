// Package keymap defines keybindings for the review console.
package keymap

import (
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

// KeyMap holds every binding the console reacts to. Navigation keys are
// shared by all views; the case keys only act inside an open case.
type KeyMap struct {
	Quit, Help, Back    key.Binding
	Up, Down, Select    key.Binding
	Evidence, Ask, Note key.Binding
	Override, Finalize  key.Binding
	Copy, Open          key.Binding
}

func bind(label, desc string, keys ...string) key.Binding {
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(label, desc))
}

// DefaultKeyMap returns vim-style navigation plus single-letter case actions.
// Finalize and Open are upper case so they are not hit by accident.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Quit:   bind("q", "quit", "q", "ctrl+c"),
		Help:   bind("?", "help", "?"),
		Back:   bind("esc", "back", "esc"),
		Up:     bind("↑/k", "up", "up", "k"),
		Down:   bind("↓/j", "down", "down", "j"),
		Select: bind("enter", "select", "enter"),

		Evidence: bind("e", "evidence", "e"),
		Ask:      bind("a", "ask", "a"),
		Note:     bind("n", "note", "n"),
		Override: bind("o", "override risk", "o"),
		Finalize: bind("F", "finalize", "F"),
		Copy:     bind("c", "copy summary", "c"),
		Open:     bind("O", "open folder", "O"),
	}
}

// ShortHelp is shown in the status bar.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Back, k.Quit, k.Help}
}

// CaseHelp lists the actions available on an open case.
func (k *KeyMap) CaseHelp() []key.Binding {
	return []key.Binding{k.Evidence, k.Ask, k.Note, k.Override, k.Finalize, k.Copy, k.Open, k.Back}
}

// FullHelp groups every binding for the help screen.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Select, k.Back},
		{k.Evidence, k.Ask, k.Note, k.Override},
		{k.Finalize, k.Copy, k.Open},
		{k.Help, k.Quit},
	}
}

// HelpLine renders bindings as "[e] evidence  [a] ask".
func HelpLine(bindings ...key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, "["+h.Key+"] "+h.Desc)
	}
	return strings.Join(parts, "  ")
}

// Matches reports whether keyStr triggers binding.
func Matches(keyStr string, binding key.Binding) bool {
	return slices.Contains(binding.Keys(), keyStr)
}
