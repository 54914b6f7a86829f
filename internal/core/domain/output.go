package domain

import "time"

// RunStatus describes where a run stopped.
type RunStatus string

// Run statuses.
const (
	StatusAwaitingReview RunStatus = "awaiting_review"
	StatusFinalized      RunStatus = "finalized"
)

// Recommendation is the deterministic decision with its reasoning.
type Recommendation struct {
	Decision   Decision `json:"decision"`
	Reasoning  string   `json:"reasoning"`
	Conditions []string `json:"conditions,omitempty"`
}

// CaseOutput is the result object every run produces, even under failure.
type CaseOutput struct {
	RunID              string                `json:"run_id"`
	ClientID           string                `json:"client_id"`
	ClientType         ClientType            `json:"client_type"`
	Client             Client                `json:"client"`
	Status             RunStatus             `json:"status"`
	Plan               *InvestigationPlan    `json:"intake_classification,omitempty"`
	Investigation      *InvestigationResults `json:"investigation_results,omitempty"`
	EvidenceCount      int                   `json:"evidence_count"`
	Synthesis          *SynthesisOutput      `json:"synthesis,omitempty"`
	ReviewIntelligence *ReviewIntelligence   `json:"review_intelligence,omitempty"`
	ReviewSession      *ReviewSession        `json:"review_session,omitempty"`
	Recommendation     *Recommendation       `json:"recommendation,omitempty"`
	FinalDecision      Decision              `json:"final_decision,omitempty"`
	DecisionOverridden bool                  `json:"decision_overridden,omitempty"`
	GeneratedAt        time.Time             `json:"generated_at"`
	DurationSeconds    float64               `json:"duration_seconds"`
}

// FinalRisk returns the revised assessment when present, else the preliminary one.
func (o *CaseOutput) FinalRisk() *RiskAssessment {
	if o.Synthesis != nil && o.Synthesis.RevisedRiskAssessment != nil {
		return o.Synthesis.RevisedRiskAssessment
	}
	if o.Plan != nil {
		return &o.Plan.PreliminaryRisk
	}
	return nil
}
