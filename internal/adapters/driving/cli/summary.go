package cli

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/kyc-onboard/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/kyc-onboard/internal/core/domain"
)

// styledSummary renders a compact coloured summary for terminals.
func styledSummary(out *domain.CaseOutput) string {
	s := styles.DefaultStyles()
	var b strings.Builder

	b.WriteString(s.Title.Render("KYC Case: "+out.Client.Name()) + "\n")
	b.WriteString(s.Muted.Render(fmt.Sprintf("%s  run %s  %s", out.ClientID, out.RunID, out.Status)) + "\n\n")

	if risk := out.FinalRisk(); risk != nil {
		label := fmt.Sprintf("%s (%d)", risk.RiskLevel, risk.TotalScore)
		b.WriteString("Risk:        " + s.Risk(risk.RiskLevel).Render(label) + "\n")
	}
	if rec := out.Recommendation; rec != nil {
		b.WriteString("Recommended: " + s.Decision(rec.Decision).Render(string(rec.Decision)) + "\n")
		b.WriteString(s.Muted.Render("  "+rec.Reasoning) + "\n")
	}
	if out.FinalDecision != "" {
		b.WriteString("Final:       " + s.Decision(out.FinalDecision).Render(string(out.FinalDecision)) + "\n")
	}
	b.WriteString(fmt.Sprintf("Evidence:    %d records\n", out.EvidenceCount))

	if ri := out.ReviewIntelligence; ri != nil {
		b.WriteString(fmt.Sprintf("Confidence:  %s\n", ri.Confidence.Grade))
		if len(ri.DiscussionPoints) > 0 {
			b.WriteString("\n" + s.Subtitle.Render("Discussion points") + "\n")
			for _, dp := range ri.DiscussionPoints {
				b.WriteString("  " + s.Severity(dp.Severity).Render("["+string(dp.Severity)+"]") + " " + dp.Title + "\n")
			}
		}
	}

	if out.Status == domain.StatusAwaitingReview {
		b.WriteString("\n" + s.Help.Render(fmt.Sprintf("Review with: kyc review %s", out.ClientID)) + "\n")
	}
	return b.String()
}
