package driven

import (
	"context"

	"github.com/custodia-labs/kyc-onboard/internal/core/domain"
)

// SynthesisService performs the free-form cross-referencing pass over the
// evidence base. Only its structured output is consumed.
type SynthesisService interface {
	// Synthesize returns the recommended decision and supporting structure.
	// A nil output or one without a recognised decision is treated as a failure.
	Synthesize(ctx context.Context, req domain.SynthesisRequest) (*domain.SynthesisOutput, error)
}

// ReviewAssistant answers an officer's free-text questions about a case.
type ReviewAssistant interface {
	// Answer responds to a question given a rendered case context.
	Answer(ctx context.Context, caseContext, question string) (string, error)
}
