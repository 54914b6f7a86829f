package driving

import (
	"context"

	"github.com/custodia-labs/kyc-onboard/internal/core/domain"
)

// ReviewInput is everything the review analysis reads.
type ReviewInput struct {
	Client        domain.Client
	Plan          domain.InvestigationPlan
	Investigation *domain.InvestigationResults
	Evidence      []domain.EvidenceRecord
	Synthesis     *domain.SynthesisOutput
}

// ReviewIntelligenceService runs the deterministic post-synthesis analysis.
type ReviewIntelligenceService interface {
	// Analyze computes all facets and records the case in the cross-case log.
	Analyze(ctx context.Context, in ReviewInput) (*domain.ReviewIntelligence, error)

	// Patterns returns cross-case patterns in the window ending now.
	Patterns(ctx context.Context) (domain.BatchAnalytics, error)
}

// ReviewCase is a paused case as presented to the reviewing officer.
type ReviewCase struct {
	Checkpoint *domain.Checkpoint
	Session    *domain.ReviewSession
}

// ReviewService manages the human review session of a paused case.
type ReviewService interface {
	// Open loads a paused case and its review session.
	Open(ctx context.Context, clientID string) (*ReviewCase, error)

	// Record appends an officer action and persists the session.
	Record(ctx context.Context, clientID string, action domain.ReviewAction) (*domain.ReviewSession, error)

	// Ask answers a free-text question about the case and records it.
	Ask(ctx context.Context, clientID, question string) (string, error)

	// Cases lists the client ids with a stored case.
	Cases(ctx context.Context) ([]string, error)
}
