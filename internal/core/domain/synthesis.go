package domain

// Decision is an onboarding outcome.
type Decision string

// Onboarding decisions, least to most restrictive.
const (
	DecisionApprove     Decision = "APPROVE"
	DecisionConditional Decision = "CONDITIONAL"
	DecisionEscalate    Decision = "ESCALATE"
	DecisionDecline     Decision = "DECLINE"
)

// IsValid returns true if the decision is recognised.
func (d Decision) IsValid() bool {
	switch d {
	case DecisionApprove, DecisionConditional, DecisionEscalate, DecisionDecline:
		return true
	}
	return false
}

// EvidenceGraph summarises the evidence base as seen by synthesis.
type EvidenceGraph struct {
	TotalEvidenceRecords int                `json:"total_evidence_records"`
	VerifiedCount        int                `json:"verified_count"`
	SourcedCount         int                `json:"sourced_count"`
	InferredCount        int                `json:"inferred_count"`
	UnknownCount         int                `json:"unknown_count"`
	Contradictions       []DeclaredConflict `json:"contradictions,omitempty"`
	Corroborations       []map[string]any   `json:"corroborations,omitempty"`
	UnresolvedItems      []string           `json:"unresolved_items,omitempty"`
}

// CountEvidence builds the class tally for a set of records.
func CountEvidence(records []EvidenceRecord) EvidenceGraph {
	g := EvidenceGraph{TotalEvidenceRecords: len(records)}
	for _, r := range records {
		switch r.EvidenceClass {
		case EvidenceVerified:
			g.VerifiedCount++
		case EvidenceSourced:
			g.SourcedCount++
		case EvidenceInferred:
			g.InferredCount++
		default:
			g.UnknownCount++
		}
	}
	return g
}

// DeclaredConflict is a contradiction asserted by the synthesis collaborator.
type DeclaredConflict struct {
	Finding1   string `json:"finding_1"`
	Finding2   string `json:"finding_2"`
	AgentA     string `json:"agent_a,omitempty"`
	AgentB     string `json:"agent_b,omitempty"`
	Resolution string `json:"resolution,omitempty"`
}

// RiskElevation is a risk factor discovered during synthesis.
type RiskElevation struct {
	Factor     string `json:"factor"`
	Points     int    `json:"points,omitempty"`
	EvidenceID string `json:"evidence_id,omitempty"`
	Reasoning  string `json:"reasoning,omitempty"`
}

// CounterArgument challenges a recommended disposition.
type CounterArgument struct {
	EvidenceID             string   `json:"evidence_id"`
	DispositionChallenged  string   `json:"disposition_challenged"`
	Argument               string   `json:"argument"`
	RiskIfWrong            string   `json:"risk_if_wrong"`
	RecommendedMitigations []string `json:"recommended_mitigations,omitempty"`
}

// DecisionOption is one choice offered to the reviewing officer.
type DecisionOption struct {
	OptionID         string   `json:"option_id"`
	Label            string   `json:"label"`
	Description      string   `json:"description"`
	Consequences     []string `json:"consequences,omitempty"`
	OnboardingImpact string   `json:"onboarding_impact,omitempty"`
	Timeline         string   `json:"timeline,omitempty"`
}

// DecisionPoint is a disposition the officer must confirm.
type DecisionPoint struct {
	DecisionID       string           `json:"decision_id"`
	Title            string           `json:"title"`
	ContextSummary   string           `json:"context_summary"`
	Disposition      string           `json:"disposition"`
	Confidence       float64          `json:"confidence"`
	CounterArgument  CounterArgument  `json:"counter_argument"`
	Options          []DecisionOption `json:"options,omitempty"`
	OfficerSelection string           `json:"officer_selection,omitempty"`
	OfficerNotes     string           `json:"officer_notes,omitempty"`
}

// SynthesisRequest is everything the synthesis collaborator sees.
type SynthesisRequest struct {
	Client        Client                `json:"client"`
	Plan          InvestigationPlan     `json:"plan"`
	Investigation *InvestigationResults `json:"investigation"`
	Evidence      []EvidenceRecord      `json:"evidence"`
	RevisedRisk   RiskAssessment        `json:"revised_risk"`
}

// SynthesisOutput is the structured result of the cross-referencing pass.
type SynthesisOutput struct {
	EvidenceGraph                  EvidenceGraph      `json:"evidence_graph"`
	RevisedRiskAssessment          *RiskAssessment    `json:"revised_risk_assessment,omitempty"`
	KeyFindings                    []string           `json:"key_findings,omitempty"`
	Contradictions                 []DeclaredConflict `json:"contradictions,omitempty"`
	RiskElevations                 []RiskElevation    `json:"risk_elevations,omitempty"`
	RecommendedDecision            Decision           `json:"recommended_decision"`
	DecisionReasoning              string             `json:"decision_reasoning"`
	Conditions                     []string           `json:"conditions,omitempty"`
	ItemsRequiringReview           []string           `json:"items_requiring_review,omitempty"`
	SeniorManagementApprovalNeeded bool               `json:"senior_management_approval_needed"`
	DecisionPoints                 []DecisionPoint    `json:"decision_points,omitempty"`
}

// IsUsable reports whether the output carries a recognised decision.
func (s *SynthesisOutput) IsUsable() bool {
	return s != nil && s.RecommendedDecision.IsValid()
}

// EscalationItem is the review item attached to a fallback escalation.
const EscalationItem = "All findings require manual review"

// EscalateSynthesis is the conservative output used when synthesis fails.
func EscalateSynthesis(reason string, evidence []EvidenceRecord) *SynthesisOutput {
	return &SynthesisOutput{
		EvidenceGraph:                  CountEvidence(evidence),
		RecommendedDecision:            DecisionEscalate,
		DecisionReasoning:              "Synthesis failed: " + reason + ". Escalating for manual review.",
		ItemsRequiringReview:           []string{EscalationItem},
		SeniorManagementApprovalNeeded: true,
	}
}
