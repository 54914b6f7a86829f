package driving

import (
	"context"

	"github.com/custodia-labs/kyc-onboard/internal/core/domain"
)

// RunOptions controls a single pipeline run.
type RunOptions struct {
	// Resume reuses stages already recorded in the client's checkpoint.
	Resume bool
}

// PipelineService runs client onboarding cases.
type PipelineService interface {
	// Run executes Intake through Review and pauses awaiting human review.
	// It always returns a CaseOutput unless the client itself is invalid or
	// the checkpoint cannot be written.
	Run(ctx context.Context, client domain.Client, opts RunOptions) (*domain.CaseOutput, error)

	// Finalize completes a paused case and applies the deterministic override.
	Finalize(ctx context.Context, clientID string) (*domain.CaseOutput, error)
}

// RiskScorer converts a client into a point-weighted risk assessment.
type RiskScorer interface {
	// Score computes the preliminary assessment.
	Score(client domain.Client) domain.RiskAssessment

	// Revise folds related-party scores and extra factors into an assessment.
	Revise(pre domain.RiskAssessment, related []domain.PartyScore, extra []domain.RiskFactor) domain.RiskAssessment
}

// Planner decides which tasks and utilities run for a client.
type Planner interface {
	// Plan builds the investigation plan including the preliminary risk.
	Plan(client domain.Client) domain.InvestigationPlan

	// DetectRegulations returns the regimes that apply to a client.
	DetectRegulations(client domain.Client) []domain.Regulation
}
