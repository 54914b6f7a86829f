package services

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/kyc-onboard/internal/core/domain"
)

// RenderSummary writes a plain markdown summary of a case.
func RenderSummary(out *domain.CaseOutput) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# KYC Case: %s\n\n", out.Client.Name())
	fmt.Fprintf(&b, "- Client ID: %s\n", out.ClientID)
	fmt.Fprintf(&b, "- Client type: %s\n", out.ClientType)
	fmt.Fprintf(&b, "- Run: %s\n", out.RunID)
	fmt.Fprintf(&b, "- Status: %s\n", out.Status)
	fmt.Fprintf(&b, "- Generated: %s\n", out.GeneratedAt.UTC().Format("2006-01-02 15:04:05 MST"))

	if out.FinalDecision != "" {
		fmt.Fprintf(&b, "\n## Decision: %s\n\n", out.FinalDecision)
		if out.DecisionOverridden {
			fmt.Fprintf(&b, "%s. The synthesis recommendation was overridden.\n\n", HardBlockReasoning)
		}
	}
	if rec := out.Recommendation; rec != nil {
		fmt.Fprintf(&b, "Rule-based recommendation: %s (%s)\n", rec.Decision, rec.Reasoning)
		writeList(&b, "Conditions", rec.Conditions)
	}

	if risk := out.FinalRisk(); risk != nil {
		fmt.Fprintf(&b, "\n## Risk: %s (%d points)\n\n", risk.RiskLevel, risk.TotalScore)
		for _, f := range risk.RiskFactors {
			fmt.Fprintf(&b, "- %+d %s [%s]\n", f.Points, f.Factor, f.Category)
		}
	}

	if s := out.Synthesis; s != nil {
		fmt.Fprintf(&b, "\n## Synthesis: %s\n\n%s\n", s.RecommendedDecision, s.DecisionReasoning)
		writeList(&b, "Key findings", s.KeyFindings)
		writeList(&b, "Items requiring review", s.ItemsRequiringReview)
		if s.SeniorManagementApprovalNeeded {
			b.WriteString("\nSenior management approval required.\n")
		}
	}

	if ri := out.ReviewIntelligence; ri != nil {
		fmt.Fprintf(&b, "\n## Review Intelligence\n\nEvidence confidence: %s (%d records)\n", ri.Confidence.Grade, out.EvidenceCount)
		if len(ri.DiscussionPoints) > 0 {
			b.WriteString("\nDiscussion points:\n")
			for _, dp := range ri.DiscussionPoints {
				fmt.Fprintf(&b, "- [%s] %s %s\n", dp.Severity, dp.PointID, dp.Title)
			}
		}
		if len(ri.Contradictions) > 0 {
			b.WriteString("\nContradictions:\n")
			for _, c := range ri.Contradictions {
				fmt.Fprintf(&b, "- [%s] %s: %s / %s\n", c.Severity, c.ContradictionID, c.FindingA, c.FindingB)
			}
		}
		for _, pat := range ri.BatchAnalytics.Patterns {
			fmt.Fprintf(&b, "- Pattern %s: %s\n", pat.PatternType, pat.Description)
		}
	}

	if s := out.ReviewSession; s != nil && len(s.Actions) > 0 {
		b.WriteString("\n## Review Actions\n\n")
		for _, a := range s.Actions {
			fmt.Fprintf(&b, "- %s %s", a.Timestamp.UTC().Format("2006-01-02 15:04"), a.ActionType)
			if note := firstNonEmpty(a.OfficerNote, a.Query, a.ResponseSummary); note != "" {
				fmt.Fprintf(&b, ": %s", note)
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

func writeList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "\n%s:\n", title)
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", item)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
