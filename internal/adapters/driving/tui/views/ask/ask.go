// Package ask provides the question and answer view of the open case.
package ask

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/kyc-onboard/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/kyc-onboard/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/kyc-onboard/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/kyc-onboard/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/kyc-onboard/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/kyc-onboard/internal/core/ports/driving"
)

var errReviewUnavailable = errors.New("review service not available")

var askBinding = key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "ask"))

// Exchange is one question with its answer.
type Exchange struct {
	Question string
	Answer   string
}

// View lets the officer ask free-text questions about the open case.
type View struct {
	styles    *styles.Styles
	input     *input.TextInput
	statusbar *status.Bar
	review    driving.ReviewService
	ctx       context.Context

	clientID string
	history  []Exchange
	pending  bool
	width    int
	height   int
}

// NewView creates a new ask view.
func NewView(s *styles.Styles, km *keymap.KeyMap, review driving.ReviewService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &View{
		styles:    s,
		input:     input.NewTextInput(s, "Ask", "e.g. why is the UBO flagged?"),
		statusbar: status.NewBar(s, askBinding, km.Back),
		review:    review,
		ctx:       context.Background(),
		width:     80,
		height:    24,
	}
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// SetCase switches the view to a case and clears its history.
func (v *View) SetCase(rc *driving.ReviewCase) {
	v.clientID = ""
	v.history = nil
	v.pending = false
	v.input.Reset()
	v.statusbar.Reset()
	if rc != nil && rc.Checkpoint != nil {
		v.clientID = rc.Checkpoint.Client.ID()
	}
}

// Init focuses the input.
func (v *View) Init() tea.Cmd {
	return v.input.Focus()
}

// Update handles messages for the ask view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.AnswerReceived:
		v.pending = false
		if msg.Err != nil {
			v.statusbar.Failed(msg.Err)
			return v, nil
		}
		v.history = append(v.history, Exchange{Question: msg.Question, Answer: msg.Answer})
		v.statusbar.Done("Answer recorded")
		return v, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			v.input.Blur()
			return v, func() tea.Msg {
				return messages.ViewChanged{View: messages.ViewCase}
			}
		case "enter":
			return v, v.submit()
		}
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) submit() tea.Cmd {
	question := strings.TrimSpace(v.input.Value())
	if question == "" || v.pending {
		return nil
	}
	v.input.Reset()
	v.pending = true
	v.statusbar.Working("Asking")

	id, ctx := v.clientID, v.ctx
	return func() tea.Msg {
		if v.review == nil {
			return messages.AnswerReceived{Question: question, Err: errReviewUnavailable}
		}
		answer, err := v.review.Ask(ctx, id, question)
		return messages.AnswerReceived{Question: question, Answer: answer, Err: err}
	}
}

// View renders the history above the input.
func (v *View) View() string {
	var b strings.Builder
	b.WriteString(v.styles.Title.Render("Ask about " + v.clientID))
	b.WriteString("\n\n")

	if len(v.history) == 0 {
		b.WriteString(v.styles.Muted.Render("Questions and answers are recorded in the review session."))
		b.WriteString("\n")
	}
	for _, ex := range v.history {
		b.WriteString(v.styles.Subtitle.Render("Q: " + ex.Question))
		b.WriteString("\n")
		b.WriteString(v.styles.Normal.Render(ex.Answer))
		b.WriteString("\n\n")
	}

	b.WriteString("\n")
	b.WriteString(v.input.View())
	b.WriteString("\n")
	b.WriteString(v.statusbar.View())
	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.input.SetWidth(width)
	v.statusbar.SetWidth(width)
}

// History returns the exchanges asked so far.
func (v *View) History() []Exchange {
	return v.history
}

// Pending reports whether a question is awaiting its answer.
func (v *View) Pending() bool {
	return v.pending
}
