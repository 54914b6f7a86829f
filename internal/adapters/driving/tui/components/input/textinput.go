// Package input provides the labelled single-line input used for questions,
// officer notes and risk overrides.
package input

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/kyc-onboard/internal/adapters/driving/tui/styles"
)

const (
	minFieldWidth = 20
	// labelChrome covers the ": " suffix plus the field border and padding.
	labelChrome = 8
)

// TextInput is a bubbles text field with a label. Value, SetValue, Focus,
// Blur, Focused and Reset come from the embedded model.
type TextInput struct {
	textinput.Model

	styles *styles.Styles
	label  string
	width  int
}

// NewTextInput returns a focused input.
func NewTextInput(s *styles.Styles, label, placeholder string) *TextInput {
	if s == nil {
		s = styles.DefaultStyles()
	}
	m := textinput.New()
	m.CharLimit = 1024
	m.Focus()

	in := &TextInput{Model: m, styles: s}
	in.SetPrompt(label, placeholder)
	in.SetWidth(58)
	return in
}

// Init starts the cursor blinking.
func (in *TextInput) Init() tea.Cmd {
	return textinput.Blink
}

// Update forwards msg to the field.
func (in *TextInput) Update(msg tea.Msg) (*TextInput, tea.Cmd) {
	var cmd tea.Cmd
	in.Model, cmd = in.Model.Update(msg)
	return in, cmd
}

// View renders the label beside the boxed field.
func (in *TextInput) View() string {
	//nolint:misspell // lipgloss spells it Center
	return lipgloss.JoinHorizontal(lipgloss.Center,
		in.styles.Title.Render(in.label+": "),
		in.styles.InputField.Render(in.Model.View()))
}

// Label returns the current label.
func (in *TextInput) Label() string {
	return in.label
}

// SetPrompt relabels the input for the next question.
func (in *TextInput) SetPrompt(label, placeholder string) {
	in.label = label
	in.Placeholder = placeholder
}

// SetWidth fits label and field into width columns. The field never
// shrinks below minFieldWidth.
func (in *TextInput) SetWidth(width int) {
	in.width = width
	in.Model.Width = max(minFieldWidth, width-lipgloss.Width(in.label)-labelChrome)
}

// Width returns the width last passed to SetWidth.
func (in *TextInput) Width() int {
	return in.width
}
