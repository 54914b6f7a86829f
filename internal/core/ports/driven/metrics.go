package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/kyc-onboard/internal/core/domain"
)

// MetricsRecorder collects per-run pipeline metrics.
// It is optional; a nil recorder disables metrics.
type MetricsRecorder interface {
	// ObserveStage records how long a stage took.
	ObserveStage(stage string, d time.Duration)

	// ObserveCall records one collaborator call and whether it failed.
	ObserveCall(kind, name string, d time.Duration, err error)

	// ObserveEvidence records the evidence class distribution.
	ObserveEvidence(records []domain.EvidenceRecord)

	// ObserveDecision records the final or recommended decision.
	ObserveDecision(decision domain.Decision, risk domain.RiskLevel)

	// Flush writes collected metrics for a case.
	Flush(ctx context.Context, clientID string) error
}
