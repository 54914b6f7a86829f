package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/kyc-onboard/internal/core/domain"
	"github.com/custodia-labs/kyc-onboard/internal/core/ports/driving"
	"github.com/custodia-labs/kyc-onboard/internal/core/services"
)

var testNow = time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)

const janeJSON = `{
  "client_type": "individual",
  "full_name": "Jane Doe",
  "citizenship": "Canada",
  "country_of_residence": "Canada"
}`

// mockPipeline records runs and returns a paused case for the client.
type mockPipeline struct {
	mu        sync.Mutex
	runs      []domain.Client
	opts      []driving.RunOptions
	finalized []string
	err       error
}

func (m *mockPipeline) Run(_ context.Context, client domain.Client, opts driving.RunOptions) (*domain.CaseOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	m.runs = append(m.runs, client)
	m.opts = append(m.opts, opts)
	out := testCase(client)
	return out, nil
}

func (m *mockPipeline) Finalize(_ context.Context, clientID string) (*domain.CaseOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	m.finalized = append(m.finalized, clientID)
	out := testCase(domain.NewIndividual(domain.IndividualClient{FullName: "Jane Doe"}))
	out.Status = domain.StatusFinalized
	out.FinalDecision = domain.DecisionApprove
	out.Recommendation = &domain.Recommendation{Decision: domain.DecisionApprove, Reasoning: "No flags"}
	return out, nil
}

func (m *mockPipeline) runCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.runs)
}

func testCase(client domain.Client) *domain.CaseOutput {
	plan := domain.InvestigationPlan{
		ClientType:      client.Type(),
		ClientID:        client.ID(),
		PreliminaryRisk: domain.NewRiskAssessment([]domain.RiskFactor{{Factor: "Cash intensive", Points: 10, Category: "business", Source: "intake"}}),
	}
	return &domain.CaseOutput{
		RunID:         "run-1",
		ClientID:      client.ID(),
		ClientType:    client.Type(),
		Client:        client,
		Status:        domain.StatusAwaitingReview,
		Plan:          &plan,
		EvidenceCount: 3,
		Synthesis: &domain.SynthesisOutput{
			RecommendedDecision: domain.DecisionApprove,
			DecisionReasoning:   "Low risk",
		},
		GeneratedAt: testNow,
	}
}

// mockReview is a scripted review service.
type mockReview struct {
	cases    []string
	review   *driving.ReviewCase
	recorded []domain.ReviewAction
	asked    []string
	answer   string
	err      error
}

func (m *mockReview) Open(_ context.Context, _ string) (*driving.ReviewCase, error) {
	return m.review, m.err
}

func (m *mockReview) Record(_ context.Context, _ string, action domain.ReviewAction) (*domain.ReviewSession, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.recorded = append(m.recorded, action)
	return &domain.ReviewSession{Actions: m.recorded}, nil
}

func (m *mockReview) Ask(_ context.Context, _, question string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.asked = append(m.asked, question)
	return m.answer, nil
}

func (m *mockReview) Cases(_ context.Context) ([]string, error) {
	return m.cases, m.err
}

type mockIntelligence struct {
	analytics domain.BatchAnalytics
	err       error
}

func (m *mockIntelligence) Analyze(_ context.Context, _ driving.ReviewInput) (*domain.ReviewIntelligence, error) {
	return &domain.ReviewIntelligence{}, m.err
}

func (m *mockIntelligence) Patterns(_ context.Context) (domain.BatchAnalytics, error) {
	return m.analytics, m.err
}

type mockActions struct {
	copied []string
	opened []string
	err    error
}

func (m *mockActions) CopySummary(_ context.Context, clientID string) error {
	m.copied = append(m.copied, clientID)
	return m.err
}

func (m *mockActions) OpenCase(_ context.Context, clientID string) error {
	m.opened = append(m.opened, clientID)
	return m.err
}

type mockScheduler struct {
	mu      sync.Mutex
	started bool
	stopped bool
	run     domain.TaskRun
	history []domain.TaskRun
	err     error
}

func (m *mockScheduler) Start(ctx context.Context) error {
	m.mu.Lock()
	m.started = true
	m.mu.Unlock()
	<-ctx.Done()
	return nil
}

func (m *mockScheduler) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopped = true
	return nil
}

func (m *mockScheduler) RunNow(_ context.Context, _ string) (domain.TaskRun, error) {
	return m.run, m.err
}

func (m *mockScheduler) History(_ context.Context, _ string, limit int) ([]domain.TaskRun, error) {
	if limit > 0 && len(m.history) > limit {
		return m.history[:limit], m.err
	}
	return m.history, m.err
}

// testServices holds the mocks installed by setupTestServices.
type testServices struct {
	pipeline     *mockPipeline
	review       *mockReview
	intelligence *mockIntelligence
	actions      *mockActions
	scheduler    *mockScheduler
}

// setupTestServices installs mocks for every service and returns them with a
// cleanup that restores the previous services and flag values.
func setupTestServices() (*testServices, func()) {
	prev := Services{
		Pipeline:        pipelineService,
		Review:          reviewService,
		Intelligence:    intelligenceService,
		Settings:        settingsService,
		Actions:         actionService,
		Scorer:          riskScorer,
		Planner:         planner,
		Scheduler:       scheduler,
		SchedulerConfig: schedulerConfig,
		Close:           closeServices,
	}
	prevFactory := serviceFactory

	ts := &testServices{
		pipeline:     &mockPipeline{},
		review:       &mockReview{},
		intelligence: &mockIntelligence{},
		actions:      &mockActions{},
		scheduler:    &mockScheduler{},
	}
	scorer := services.NewRiskScorer(func() time.Time { return testNow })
	SetServices(&Services{
		Pipeline:        ts.pipeline,
		Review:          ts.review,
		Intelligence:    ts.intelligence,
		Actions:         ts.actions,
		Scorer:          scorer,
		Planner:         services.NewPlanner(scorer),
		Scheduler:       ts.scheduler,
		SchedulerConfig: domain.SchedulerConfig{},
	})
	serviceFactory = nil

	return ts, func() {
		SetServices(&prev)
		serviceFactory = prevFactory
		resetFlags()
	}
}

// resetFlags restores flag variables that persist between executions.
func resetFlags() {
	runClientFile, runResume, runJSON = "", false, false
	finalizeJSON = false
	reviewNote, reviewApprovals, reviewOverrideRisk, reviewQuestion = "", nil, "", ""
	watchExisting, watchResume = false, false
	patternsJSON = false
	scoreClientFile, scoreJSON = "", false
	tasksLimit = 10
	settingsJSON = false
	mcpPort, mcpHost = 0, "127.0.0.1"
	outputDir, offline, verbose = "", false, false
}

// execute runs the root command with args and returns its output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}

func writeClientFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func indexOf(s, sub string) int {
	return strings.Index(s, sub)
}

func countOf(s, sub string) int {
	return strings.Count(s, sub)
}
