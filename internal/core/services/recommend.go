package services

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/kyc-onboard/internal/core/domain"
)

// HardBlockReasoning is the reasoning attached to a confirmed sanctions decline.
const HardBlockReasoning = "Confirmed sanctions match: onboarding prohibited"

// IsHardBlocked reports whether any sanctions result, primary or cascade, is a confirmed match.
func IsHardBlocked(inv *domain.InvestigationResults) bool {
	if inv == nil {
		return false
	}
	for _, s := range inv.SanctionsResults() {
		if s.Disposition == domain.DispositionConfirmedMatch {
			return true
		}
	}
	return false
}

// HasConfirmedSanctionsEvidence reports whether a sanctions task recorded a
// confirmed match. The evidence survives even when the structured result it
// came from cannot be read back.
func HasConfirmedSanctionsEvidence(records []domain.EvidenceRecord) bool {
	for _, r := range records {
		if r.SourceKind != domain.SourceTask || r.Disposition != domain.DispositionConfirmedMatch {
			continue
		}
		switch domain.TaskName(r.SourceName) {
		case domain.TaskIndividualSanctions, domain.TaskEntitySanctions:
			return true
		}
	}
	return false
}

// Recommend derives the deterministic onboarding decision from the final
// risk assessment and investigation results. A confirmed sanctions match
// always yields DECLINE.
func Recommend(risk domain.RiskAssessment, inv *domain.InvestigationResults) domain.Recommendation {
	if IsHardBlocked(inv) {
		return domain.Recommendation{Decision: domain.DecisionDecline, Reasoning: HardBlockReasoning, Conditions: []string{}}
	}

	var flags, conditions []string
	if inv != nil {
		for _, s := range []*domain.SanctionsResult{inv.IndividualSanctions, inv.EntitySanctions} {
			if s != nil && s.Disposition == domain.DispositionPotentialMatch {
				flags = append(flags, "Potential sanctions match requires resolution")
			}
		}
		if pep := inv.PEPClassification; pep != nil && pep.DetectedLevel.IsPEP() {
			flags = append(flags, "PEP detected: "+string(pep.DetectedLevel))
			conditions = append(conditions, "Enhanced due diligence measures applied", "Senior management approval required")
		}
		for _, m := range []*domain.AdverseMediaResult{inv.IndividualAdverseMedia, inv.BusinessAdverseMedia} {
			if m != nil && m.OverallLevel.IsMaterial() {
				flags = append(flags, "Adverse media: "+string(m.OverallLevel))
			}
		}
		if inv.EDDRequirements != nil && inv.EDDRequirements.EDDRequired {
			conditions = append(conditions, "Enhanced due diligence documentation required")
		}
	}

	switch risk.RiskLevel {
	case domain.RiskCritical:
		if len(flags) > 0 {
			return domain.Recommendation{
				Decision:   domain.DecisionDecline,
				Reasoning:  fmt.Sprintf("Critical risk with %d additional flag(s): %s", len(flags), strings.Join(flags, "; ")),
				Conditions: []string{},
			}
		}
		return domain.Recommendation{
			Decision:   domain.DecisionEscalate,
			Reasoning:  "Critical risk level requires senior management review",
			Conditions: conditions,
		}

	case domain.RiskHigh:
		for _, f := range flags {
			if strings.Contains(strings.ToLower(f), "sanctions") {
				return domain.Recommendation{
					Decision:   domain.DecisionEscalate,
					Reasoning:  "High risk with sanctions concern: " + strings.Join(flags, "; "),
					Conditions: conditions,
				}
			}
		}
		reasoning := fmt.Sprintf("High risk: conditional approval with %d condition(s)", len(conditions))
		if len(conditions) == 0 {
			conditions = []string{"Enhanced monitoring required", "Source of wealth documentation"}
		}
		return domain.Recommendation{Decision: domain.DecisionConditional, Reasoning: reasoning, Conditions: conditions}

	case domain.RiskMedium:
		if len(flags) > 0 {
			if len(conditions) == 0 {
				conditions = []string{"Standard enhanced monitoring"}
			}
			return domain.Recommendation{
				Decision:   domain.DecisionConditional,
				Reasoning:  fmt.Sprintf("Medium risk with %d flag(s) requiring conditions", len(flags)),
				Conditions: conditions,
			}
		}
		return domain.Recommendation{
			Decision:   domain.DecisionApprove,
			Reasoning:  "Medium risk with no significant flags: standard onboarding",
			Conditions: conditions,
		}

	default:
		if len(flags) > 0 {
			return domain.Recommendation{
				Decision:   domain.DecisionConditional,
				Reasoning:  fmt.Sprintf("Low risk but %d flag(s) identified", len(flags)),
				Conditions: conditions,
			}
		}
		return domain.Recommendation{
			Decision:   domain.DecisionApprove,
			Reasoning:  "Low risk, all screenings clear: standard onboarding approved",
			Conditions: []string{},
		}
	}
}
