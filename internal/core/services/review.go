package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/kyc-onboard/internal/core/domain"
	"github.com/custodia-labs/kyc-onboard/internal/core/ports/driven"
	"github.com/custodia-labs/kyc-onboard/internal/core/ports/driving"
	"github.com/custodia-labs/kyc-onboard/internal/logger"
)

// Ensure ReviewService implements the interface.
var _ driving.ReviewService = (*ReviewService)(nil)

// ReviewService records what the officer does with a paused case.
type ReviewService struct {
	store     driven.CaseStore
	assistant driven.ReviewAssistant
	config    domain.PipelineConfig
}

// NewReviewService creates a review service. assistant may be nil, in which
// case Ask returns ErrLLMUnavailable.
func NewReviewService(store driven.CaseStore, assistant driven.ReviewAssistant, config domain.PipelineConfig) *ReviewService {
	return &ReviewService{store: store, assistant: assistant, config: config}
}

// Open loads a case that has reached the review pause.
func (s *ReviewService) Open(ctx context.Context, clientID string) (*driving.ReviewCase, error) {
	cp, warnings, err := s.store.LoadCheckpoint(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("load checkpoint: %w", err)
	}
	for _, w := range warnings {
		logger.Warn("Checkpoint %s: %v", clientID, w)
	}
	if !cp.Reached(domain.PhaseReview) {
		return nil, fmt.Errorf("%w: case %s completed %s", domain.ErrReviewNotReached, clientID, cp.CompletedStage)
	}

	session, err := s.session(ctx, clientID)
	if err != nil {
		return nil, err
	}
	return &driving.ReviewCase{Checkpoint: cp, Session: session}, nil
}

// Record validates an officer action against the case and appends it.
func (s *ReviewService) Record(ctx context.Context, clientID string, action domain.ReviewAction) (*domain.ReviewSession, error) {
	rc, err := s.Open(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if rc.Session.Finalized {
		return nil, fmt.Errorf("%w: case %s is already finalized", domain.ErrInvalidInput, clientID)
	}

	switch action.ActionType {
	case domain.ActionQuery:
		if strings.TrimSpace(action.Query) == "" {
			return nil, fmt.Errorf("%w: query text is required", domain.ErrInvalidInput)
		}
	case domain.ActionAddNote:
		if strings.TrimSpace(action.OfficerNote) == "" {
			return nil, fmt.Errorf("%w: note text is required", domain.ErrInvalidInput)
		}
	case domain.ActionOverrideRisk:
		if !action.RiskLevel.IsValid() {
			return nil, fmt.Errorf("%w: unknown risk level %q", domain.ErrInvalidInput, action.RiskLevel)
		}
	case domain.ActionApproveDisposition:
		if !action.ApprovedDisposition.IsValid() {
			return nil, fmt.Errorf("%w: unknown disposition %q", domain.ErrInvalidInput, action.ApprovedDisposition)
		}
		record, ok := findEvidence(rc.Checkpoint.Evidence, action.EvidenceID)
		if !ok {
			return nil, fmt.Errorf("%w: evidence %q", domain.ErrNotFound, action.EvidenceID)
		}
		action.PreviousDisposition = record.Disposition
	case domain.ActionFinalize:
		return nil, fmt.Errorf("%w: finalize the case through the pipeline", domain.ErrInvalidInput)
	default:
		return nil, fmt.Errorf("%w: unknown action %q", domain.ErrInvalidInput, action.ActionType)
	}

	if action.Timestamp.IsZero() {
		action.Timestamp = s.config.Clock()
	}
	rc.Session.Record(action)
	if err := s.store.SaveArtifact(ctx, clientID, driven.ArtifactReviewSession, rc.Session); err != nil {
		return nil, fmt.Errorf("save review session: %w", err)
	}
	logger.Debug("Recorded %s for %s", action.ActionType, clientID)
	return rc.Session, nil
}

// Ask answers a question with the case summary as context and records the
// exchange as a query action.
func (s *ReviewService) Ask(ctx context.Context, clientID, question string) (string, error) {
	if s.assistant == nil {
		return "", domain.ErrLLMUnavailable
	}
	if strings.TrimSpace(question) == "" {
		return "", fmt.Errorf("%w: question is required", domain.ErrInvalidInput)
	}
	rc, err := s.Open(ctx, clientID)
	if err != nil {
		return "", err
	}

	caseContext := RenderSummary(CaseOutputFrom(rc.Checkpoint, rc.Session, s.config.Clock()))
	answer, err := s.assistant.Answer(ctx, caseContext, question)
	if err != nil {
		return "", fmt.Errorf("review assistant: %w", err)
	}

	if _, err := s.Record(ctx, clientID, domain.ReviewAction{
		ActionType:      domain.ActionQuery,
		Query:           question,
		ResponseSummary: truncate(answer, 200),
	}); err != nil {
		logger.Warn("Failed to record query for %s: %v", clientID, err)
	}
	return answer, nil
}

// Cases lists stored cases.
func (s *ReviewService) Cases(ctx context.Context) ([]string, error) {
	return s.store.ListCases(ctx)
}

func (s *ReviewService) session(ctx context.Context, clientID string) (*domain.ReviewSession, error) {
	var session domain.ReviewSession
	err := s.store.LoadArtifact(ctx, clientID, driven.ArtifactReviewSession, &session)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return &domain.ReviewSession{
			SessionID: uuid.NewString(),
			ClientID:  clientID,
			StartedAt: s.config.Clock(),
			Actions:   []domain.ReviewAction{},
		}, nil
	case err != nil:
		return nil, fmt.Errorf("load review session: %w", err)
	}
	if session.Actions == nil {
		session.Actions = []domain.ReviewAction{}
	}
	return &session, nil
}

func findEvidence(records []domain.EvidenceRecord, id string) (domain.EvidenceRecord, bool) {
	for _, r := range records {
		if r.EvidenceID == id {
			return r, true
		}
	}
	return domain.EvidenceRecord{}, false
}
