// Package status renders the one-line footer shown under interactive views.
package status

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/kyc-onboard/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/kyc-onboard/internal/adapters/driving/tui/styles"
)

// State is what the footer is reporting.
type State int

const (
	StateIdle State = iota
	StateWorking
	StateDone
	StateFailed
)

// Bar shows the latest outcome on the left and key hints on the right.
type Bar struct {
	styles   *styles.Styles
	bindings []key.Binding
	state    State
	text     string
	width    int
}

// NewBar creates a footer showing the given key hints. With no bindings it
// shows the keymap's short help.
func NewBar(s *styles.Styles, bindings ...key.Binding) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if len(bindings) == 0 {
		bindings = keymap.DefaultKeyMap().ShortHelp()
	}
	return &Bar{styles: s, bindings: bindings, width: 80}
}

// Working reports an operation in flight.
func (b *Bar) Working(what string) {
	b.state, b.text = StateWorking, what
}

// Done reports a completed operation.
func (b *Bar) Done(what string) {
	b.state, b.text = StateDone, what
}

// Failed reports an error.
func (b *Bar) Failed(err error) {
	b.state, b.text = StateFailed, err.Error()
}

// Reset returns the footer to idle.
func (b *Bar) Reset() {
	b.state, b.text = StateIdle, ""
}

// State returns what the footer is reporting.
func (b *Bar) State() State {
	return b.state
}

// Text returns the reported text.
func (b *Bar) Text() string {
	return b.text
}

// SetWidth sets the rendered width.
func (b *Bar) SetWidth(width int) {
	b.width = width
}

// View renders the footer padded to its width.
func (b *Bar) View() string {
	left := b.status()
	right := b.hints()
	inner := b.width - b.styles.StatusBar.GetHorizontalFrameSize()
	gap := max(inner-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return b.styles.StatusBar.Width(b.width).Render(left + strings.Repeat(" ", gap) + right)
}

func (b *Bar) status() string {
	switch b.state {
	case StateWorking:
		return b.styles.Muted.Render(b.text + "...")
	case StateDone:
		return b.styles.Success.Render(b.text)
	case StateFailed:
		return b.styles.Error.Render("Error: " + b.text)
	default:
		return b.styles.Muted.Render("Ready")
	}
}

func (b *Bar) hints() string {
	parts := make([]string, 0, len(b.bindings))
	for _, binding := range b.bindings {
		h := binding.Help()
		parts = append(parts, h.Key+": "+h.Desc)
	}
	return b.styles.Muted.Render(strings.Join(parts, " | "))
}
