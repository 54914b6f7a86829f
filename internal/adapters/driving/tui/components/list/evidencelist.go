// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/kyc-onboard/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/kyc-onboard/internal/core/domain"
)

// EvidenceList displays evidence records in a navigable list.
type EvidenceList struct {
	records  []domain.EvidenceRecord
	selected int
	styles   *styles.Styles
	width    int
	height   int
}

// NewEvidenceList creates a new evidence list component.
func NewEvidenceList(s *styles.Styles) *EvidenceList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &EvidenceList{
		styles: s,
		width:  80,
		height: 10,
	}
}

// Init initialises the list.
func (r *EvidenceList) Init() tea.Cmd {
	return nil
}

// Update handles list navigation messages.
func (r *EvidenceList) Update(msg tea.Msg) (*EvidenceList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			r.MoveUp()
		case "down", "j":
			r.MoveDown()
		}
	}
	return r, nil
}

// View renders the list.
func (r *EvidenceList) View() string {
	if len(r.records) == 0 {
		return r.styles.Muted.Render("No evidence recorded")
	}

	lines := make([]string, 0, len(r.records)*2+2)
	lines = append(lines, r.styles.Subtitle.Render(fmt.Sprintf("Evidence (%d)", len(r.records))), "")

	// Each record takes two lines.
	visibleCount := (r.height - 4) / 2
	if visibleCount < 1 {
		visibleCount = 1
	}

	start := 0
	if r.selected >= visibleCount {
		start = r.selected - visibleCount + 1
	}
	end := start + visibleCount
	if end > len(r.records) {
		end = len(r.records)
	}

	for i := start; i < end; i++ {
		lines = append(lines, r.renderRecord(i, &r.records[i]))
	}

	return strings.Join(lines, "\n")
}

// renderRecord formats one record: id, class and disposition, then the claim.
func (r *EvidenceList) renderRecord(index int, rec *domain.EvidenceRecord) string {
	indicator := "  "
	if index == r.selected {
		indicator = "> "
	}

	head := fmt.Sprintf("%s[%s] %s", indicator, rec.EvidenceClass, rec.EvidenceID)
	disposition := string(rec.Disposition)

	var headLine string
	if index == r.selected {
		headLine = r.styles.Selected.Render(head + "  " + disposition)
	} else {
		style := r.styles.Muted
		if rec.Disposition.IsMatch() || rec.Disposition == domain.DispositionPendingReview {
			style = r.styles.Warning
		}
		headLine = r.styles.Normal.Render(head+"  ") + style.Render(disposition)
	}

	claim := rec.Claim
	if rec.SubjectContext != "" {
		claim = rec.SubjectContext + ": " + claim
	}
	return headLine + "\n" + r.styles.Muted.Render("    "+truncate(claim, r.width-6))
}

// SetRecords replaces the records and resets the selection.
func (r *EvidenceList) SetRecords(records []domain.EvidenceRecord) {
	r.records = records
	r.selected = 0
}

// Records returns the current records.
func (r *EvidenceList) Records() []domain.EvidenceRecord {
	return r.records
}

// Selected returns the index of the selected record.
func (r *EvidenceList) Selected() int {
	return r.selected
}

// SetSelected sets the selected index.
func (r *EvidenceList) SetSelected(index int) {
	if index >= 0 && index < len(r.records) {
		r.selected = index
	}
}

// SelectedRecord returns the selected record, or nil if none.
func (r *EvidenceList) SelectedRecord() *domain.EvidenceRecord {
	if len(r.records) == 0 || r.selected < 0 || r.selected >= len(r.records) {
		return nil
	}
	return &r.records[r.selected]
}

// MoveUp moves selection up.
func (r *EvidenceList) MoveUp() {
	if r.selected > 0 {
		r.selected--
	}
}

// MoveDown moves selection down.
func (r *EvidenceList) MoveDown() {
	if r.selected < len(r.records)-1 {
		r.selected++
	}
}

// SetDimensions sets the component dimensions.
func (r *EvidenceList) SetDimensions(width, height int) {
	r.width = width
	r.height = height
}

// Count returns the number of records.
func (r *EvidenceList) Count() int {
	return len(r.records)
}

func truncate(s string, n int) string {
	if n < 20 {
		n = 20
	}
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
