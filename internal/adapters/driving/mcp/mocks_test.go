package mcp

import (
	"context"
	"time"

	"github.com/custodia-labs/kyc-onboard/internal/core/domain"
	"github.com/custodia-labs/kyc-onboard/internal/core/ports/driving"
	"github.com/custodia-labs/kyc-onboard/internal/core/services"
)

const janeJSON = `{
  "client_type": "individual",
  "full_name": "Jane Doe",
  "citizenship": "Canada",
  "country_of_residence": "Canada",
  "pep_self_declaration": true,
  "pep_details": "Former deputy minister"
}`

const mapleYAML = `client_type: business
legal_name: Northern Maple Trading Ltd.
countries_of_operation:
  - Canada
beneficial_owners:
  - full_name: Ada Obi
    ownership_percentage: 60
    citizenship: Nigeria
`

// mockReviewService is a mock implementation of driving.ReviewService.
type mockReviewService struct {
	cases  []string
	review *driving.ReviewCase
	err    error
}

func (m *mockReviewService) Open(_ context.Context, _ string) (*driving.ReviewCase, error) {
	return m.review, m.err
}

func (m *mockReviewService) Record(_ context.Context, _ string, _ domain.ReviewAction) (*domain.ReviewSession, error) {
	return nil, m.err
}

func (m *mockReviewService) Ask(_ context.Context, _, _ string) (string, error) {
	return "", m.err
}

func (m *mockReviewService) Cases(_ context.Context) ([]string, error) {
	return m.cases, m.err
}

func newTestPorts(review driving.ReviewService) *Ports {
	scorer := services.NewRiskScorer(func() time.Time {
		return time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	})
	return &Ports{
		Scorer:  scorer,
		Planner: services.NewPlanner(scorer),
		Review:  review,
	}
}

func pausedJaneCase() *driving.ReviewCase {
	client := domain.NewIndividual(domain.IndividualClient{FullName: "Jane Doe", Citizenship: "Canada"})
	return &driving.ReviewCase{
		Checkpoint: &domain.Checkpoint{
			RunID:          "run-1",
			CompletedStage: domain.PhaseReview,
			Client:         client,
			Plan: &domain.InvestigationPlan{
				ClientType:      domain.ClientTypeIndividual,
				ClientID:        "jane_doe",
				PreliminaryRisk: domain.NewRiskAssessment([]domain.RiskFactor{{Factor: "PEP", Points: 25, Category: "pep", Source: "intake"}}),
			},
			Evidence: []domain.EvidenceRecord{{EvidenceID: "EV_001"}},
			Synthesis: &domain.SynthesisOutput{
				RecommendedDecision: domain.DecisionEscalate,
				DecisionReasoning:   "PEP requires senior approval",
			},
			ReviewIntelligence: &domain.ReviewIntelligence{
				Confidence: domain.ConfidenceAlert{Grade: domain.GradeB},
				DiscussionPoints: []domain.DiscussionPoint{
					{PointID: "DP_001", Title: "PEP exposure", Severity: domain.SeverityHigh},
				},
			},
		},
		Session: &domain.ReviewSession{SessionID: "s-1", ClientID: "jane_doe"},
	}
}
