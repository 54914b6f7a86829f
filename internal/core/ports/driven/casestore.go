package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/kyc-onboard/internal/core/domain"
)

// Artifact names a per-stage output file within a case directory.
type Artifact string

// Stage artifacts.
const (
	ArtifactClient             Artifact = "01_intake/client.json"
	ArtifactPlan               Artifact = "01_intake/plan.json"
	ArtifactResults            Artifact = "02_investigation/results.json"
	ArtifactEvidence           Artifact = "02_investigation/evidence_store.json"
	ArtifactSynthesis          Artifact = "03_synthesis/synthesis.json"
	ArtifactReviewIntelligence Artifact = "04_review/review_intelligence.json"
	ArtifactReviewSession      Artifact = "04_review/review_session.json"
	ArtifactFinal              Artifact = "05_output/final.json"
	ArtifactSummary            Artifact = "05_output/summary.md"
)

// CaseStore persists checkpoints and stage artifacts keyed by client id.
type CaseStore interface {
	// LoadCheckpoint reads a checkpoint. Fields that could not be rebuilt are
	// returned as warnings alongside the partially restored checkpoint.
	// Returns domain.ErrNoCheckpoint when none exists.
	LoadCheckpoint(ctx context.Context, clientID string) (*domain.Checkpoint, []error, error)

	// SaveCheckpoint atomically replaces the checkpoint for its client.
	SaveCheckpoint(ctx context.Context, clientID string, cp *domain.Checkpoint) error

	// SaveArtifact writes a JSON artifact.
	SaveArtifact(ctx context.Context, clientID string, name Artifact, v any) error

	// LoadArtifact decodes a JSON artifact into v.
	// Returns domain.ErrNotFound when the artifact is missing.
	LoadArtifact(ctx context.Context, clientID string, name Artifact, v any) error

	// SaveText writes a plain text artifact.
	SaveText(ctx context.Context, clientID string, name Artifact, content string) error

	// ListCases returns client ids that have a checkpoint.
	ListCases(ctx context.Context) ([]string, error)

	// Location returns a human-readable location of the case.
	Location(clientID string) string
}

// EvidenceSink keeps a durable ledger of every evidence record a run produced.
// It is optional; a nil sink disables the ledger.
type EvidenceSink interface {
	// Record stores the records for a run in insertion order.
	Record(ctx context.Context, runID, clientID string, records []domain.EvidenceRecord) error
}

// CaseLog is the append-only cross-case log behind batch analytics.
// It is optional; a nil log yields no batch patterns.
type CaseLog interface {
	// Append adds one case fingerprint.
	Append(ctx context.Context, sig domain.CaseSignature) error

	// Since returns fingerprints recorded at or after the given time, oldest first.
	Since(ctx context.Context, t time.Time) ([]domain.CaseSignature, error)
}
