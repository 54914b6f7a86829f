package tui

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/kyc-onboard/internal/core/domain"
	"github.com/custodia-labs/kyc-onboard/internal/core/ports/driving"
)

// MockReviewService implements driving.ReviewService for testing.
type MockReviewService struct {
	OpenFunc   func(ctx context.Context, clientID string) (*driving.ReviewCase, error)
	RecordFunc func(ctx context.Context, clientID string, action domain.ReviewAction) (*domain.ReviewSession, error)
	AskFunc    func(ctx context.Context, clientID, question string) (string, error)
	CasesFunc  func(ctx context.Context) ([]string, error)
}

func (m *MockReviewService) Open(ctx context.Context, clientID string) (*driving.ReviewCase, error) {
	if m.OpenFunc != nil {
		return m.OpenFunc(ctx, clientID)
	}
	return nil, domain.ErrNotFound
}

func (m *MockReviewService) Record(
	ctx context.Context, clientID string, action domain.ReviewAction,
) (*domain.ReviewSession, error) {
	if m.RecordFunc != nil {
		return m.RecordFunc(ctx, clientID, action)
	}
	return &domain.ReviewSession{ClientID: clientID, Actions: []domain.ReviewAction{action}}, nil
}

func (m *MockReviewService) Ask(ctx context.Context, clientID, question string) (string, error) {
	if m.AskFunc != nil {
		return m.AskFunc(ctx, clientID, question)
	}
	return "", nil
}

func (m *MockReviewService) Cases(ctx context.Context) ([]string, error) {
	if m.CasesFunc != nil {
		return m.CasesFunc(ctx)
	}
	return nil, nil
}

// MockPipelineService implements driving.PipelineService for testing.
type MockPipelineService struct {
	FinalizeFunc func(ctx context.Context, clientID string) (*domain.CaseOutput, error)
}

func (m *MockPipelineService) Run(context.Context, domain.Client, driving.RunOptions) (*domain.CaseOutput, error) {
	return nil, nil
}

func (m *MockPipelineService) Finalize(ctx context.Context, clientID string) (*domain.CaseOutput, error) {
	if m.FinalizeFunc != nil {
		return m.FinalizeFunc(ctx, clientID)
	}
	return &domain.CaseOutput{ClientID: clientID, Status: domain.StatusFinalized}, nil
}

// MockIntelligenceService implements driving.ReviewIntelligenceService for testing.
type MockIntelligenceService struct {
	Analytics domain.BatchAnalytics
}

func (m *MockIntelligenceService) Analyze(context.Context, driving.ReviewInput) (*domain.ReviewIntelligence, error) {
	return &domain.ReviewIntelligence{}, nil
}

func (m *MockIntelligenceService) Patterns(context.Context) (domain.BatchAnalytics, error) {
	return m.Analytics, nil
}

func TestNewPorts(t *testing.T) {
	review := &MockReviewService{}
	pipeline := &MockPipelineService{}

	ports := NewPorts(review, pipeline)

	require.NotNil(t, ports)
	assert.Equal(t, review, ports.Review)
	assert.Equal(t, pipeline, ports.Pipeline)
	assert.Nil(t, ports.Settings)
	assert.NoError(t, ports.Validate())
}

func TestPorts_Validate(t *testing.T) {
	tests := []struct {
		name  string
		ports *Ports
		want  error
	}{
		{"missing review", &Ports{Pipeline: &MockPipelineService{}}, ErrMissingReviewService},
		{"missing pipeline", &Ports{Review: &MockReviewService{}}, ErrMissingPipelineService},
		{"optional ports may be nil", &Ports{Review: &MockReviewService{}, Pipeline: &MockPipelineService{}}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ports.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
