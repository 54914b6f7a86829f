package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/kyc-onboard/internal/core/domain"
	"github.com/custodia-labs/kyc-onboard/internal/core/ports/driven"
	"github.com/custodia-labs/kyc-onboard/internal/core/ports/driving"
	"github.com/custodia-labs/kyc-onboard/internal/logger"
)

// Ensure Pipeline implements the interface.
var _ driving.PipelineService = (*Pipeline)(nil)

// Pipeline orchestrates a case from intake to the human review pause, and
// from there to the final decision.
type Pipeline struct {
	store        driven.CaseStore
	investigator driven.Investigator
	synthesis    driven.SynthesisService
	planner      driving.Planner
	scorer       driving.RiskScorer
	review       driving.ReviewIntelligenceService
	evidenceSink driven.EvidenceSink
	metrics      driven.MetricsRecorder
	config       domain.PipelineConfig
}

// NewPipeline creates the orchestrator.
// synthesis, evidenceSink and metrics are optional. Without synthesis every
// run escalates for manual review.
func NewPipeline(
	store driven.CaseStore,
	investigator driven.Investigator,
	synthesis driven.SynthesisService,
	planner driving.Planner,
	scorer driving.RiskScorer,
	review driving.ReviewIntelligenceService,
	evidenceSink driven.EvidenceSink,
	metrics driven.MetricsRecorder,
	config domain.PipelineConfig,
) *Pipeline {
	return &Pipeline{
		store:        store,
		investigator: investigator,
		synthesis:    synthesis,
		planner:      planner,
		scorer:       scorer,
		review:       review,
		evidenceSink: evidenceSink,
		metrics:      metrics,
		config:       config,
	}
}

// Run executes Intake through Review and pauses for the officer.
//
//nolint:gocyclo // Sequential stage orchestration
func (p *Pipeline) Run(ctx context.Context, client domain.Client, opts driving.RunOptions) (*domain.CaseOutput, error) {
	if err := client.Validate(); err != nil {
		return nil, err
	}
	start := p.config.Clock()
	clientID := client.ID()

	prior := p.resumeCheckpoint(ctx, clientID, opts.Resume)
	cp := &domain.Checkpoint{RunID: uuid.NewString(), Client: client}
	if prior != nil && prior.RunID != "" {
		cp.RunID = prior.RunID
	}

	// Stage 0: intake is always recomputed.
	logger.Section("Stage 0: Intake")
	stageStart := p.config.Clock()
	plan := p.planner.Plan(client)
	cp.Plan = &plan
	logger.Info("Client %s (%s): preliminary risk %s (%d points), %d tasks, %d utilities",
		clientID, plan.ClientType, plan.PreliminaryRisk.RiskLevel, plan.PreliminaryRisk.TotalScore,
		len(plan.Tasks), len(plan.Utilities))
	p.saveArtifact(ctx, clientID, driven.ArtifactClient, client)
	p.saveArtifact(ctx, clientID, driven.ArtifactPlan, plan)
	if err := p.checkpoint(ctx, cp, domain.PhaseIntake, stageStart); err != nil {
		return nil, err
	}

	// Stage 1: investigation.
	fresh := false
	if prior.Reached(domain.PhaseInvestigation) && prior.Investigation != nil {
		logger.Info("Resuming: reusing investigation results (%d evidence records)", len(prior.Evidence))
		cp.Investigation = prior.Investigation
		cp.Evidence = prior.Evidence
	} else {
		fresh = true
		logger.Section("Stage 1: Investigation")
		stageStart = p.config.Clock()
		results, store := p.investigate(ctx, client, plan)
		cp.Investigation = results
		cp.Evidence = store.All()
		p.saveArtifact(ctx, clientID, driven.ArtifactResults, results)
		p.saveArtifact(ctx, clientID, driven.ArtifactEvidence, cp.Evidence)
		p.recordEvidence(ctx, cp.RunID, clientID, cp.Evidence)
		if err := p.checkpoint(ctx, cp, domain.PhaseInvestigation, stageStart); err != nil {
			return nil, err
		}
	}
	if p.metrics != nil {
		p.metrics.ObserveEvidence(cp.Evidence)
	}

	// Stage 2: synthesis.
	if !fresh && prior.Reached(domain.PhaseSynthesis) && prior.Synthesis != nil {
		logger.Info("Resuming: reusing synthesis (%s)", prior.Synthesis.RecommendedDecision)
		cp.Synthesis = prior.Synthesis
	} else {
		fresh = true
		logger.Section("Stage 2: Synthesis")
		stageStart = p.config.Clock()
		cp.Synthesis = p.synthesize(ctx, client, plan, cp.Investigation, cp.Evidence)
		p.saveArtifact(ctx, clientID, driven.ArtifactSynthesis, cp.Synthesis)
		if err := p.checkpoint(ctx, cp, domain.PhaseSynthesis, stageStart); err != nil {
			return nil, err
		}
	}

	// Stage 3: review intelligence, then pause.
	var session *domain.ReviewSession
	if !fresh && prior.Reached(domain.PhaseReview) && prior.ReviewIntelligence != nil {
		logger.Info("Resuming: reusing review intelligence")
		cp.ReviewIntelligence = prior.ReviewIntelligence
		session = p.loadSession(ctx, clientID)
	} else {
		logger.Section("Stage 3: Review")
		stageStart = p.config.Clock()
		cp.ReviewIntelligence = p.analyze(ctx, client, plan, cp)
		p.saveArtifact(ctx, clientID, driven.ArtifactReviewIntelligence, cp.ReviewIntelligence)
		session = p.newSession(clientID)
		if err := p.checkpoint(ctx, cp, domain.PhaseReview, stageStart); err != nil {
			return nil, err
		}
	}
	p.saveArtifact(ctx, clientID, driven.ArtifactReviewSession, session)

	if p.metrics != nil {
		p.metrics.ObserveDecision(cp.Synthesis.RecommendedDecision, finalRisk(cp).RiskLevel)
	}
	p.flushMetrics(ctx, clientID)

	logger.Info("Case %s awaiting review at %s", clientID, p.store.Location(clientID))
	out := CaseOutputFrom(cp, session, p.config.Clock())
	out.Status = domain.StatusAwaitingReview
	out.DurationSeconds = p.config.Clock().Sub(start).Seconds()
	return out, nil
}

// Finalize completes a paused case. A confirmed sanctions match declines the
// case whatever the synthesis recommended, even when only its evidence record
// survives in the checkpoint. Any other unreadable investigation result
// escalates an approval.
func (p *Pipeline) Finalize(ctx context.Context, clientID string) (*domain.CaseOutput, error) {
	start := p.config.Clock()
	cp, warnings, err := p.store.LoadCheckpoint(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("load checkpoint: %w", err)
	}
	lost := lostInvestigationFields(warnings)
	for _, w := range warnings {
		logger.Warn("Checkpoint %s: %v", clientID, w)
	}
	if !cp.Reached(domain.PhaseReview) {
		return nil, fmt.Errorf("%w: case %s completed %s", domain.ErrReviewNotReached, clientID, cp.CompletedStage)
	}

	logger.Section("Finalize")
	if cp.Synthesis == nil {
		logger.Warn("Checkpoint %s has no synthesis, escalating", clientID)
		cp.Synthesis = domain.EscalateSynthesis("synthesis missing from checkpoint", cp.Evidence)
	}

	session := p.loadSession(ctx, clientID)
	risk := finalRisk(cp)
	if level, ok := session.OverriddenRisk(); ok {
		logger.Info("Officer override: risk level %s -> %s", risk.RiskLevel, level)
		risk.RiskLevel = level
	}

	rec := Recommend(risk, cp.Investigation)
	blocked := IsHardBlocked(cp.Investigation) || HasConfirmedSanctionsEvidence(cp.Evidence)
	if blocked {
		rec = domain.Recommendation{Decision: domain.DecisionDecline, Reasoning: HardBlockReasoning, Conditions: []string{}}
	} else if len(lost) > 0 {
		rec = domain.Recommendation{
			Decision:   domain.DecisionEscalate,
			Reasoning:  "Investigation results unreadable: " + strings.Join(lost, ", "),
			Conditions: []string{},
		}
	}

	decision := cp.Synthesis.RecommendedDecision
	overridden := false
	switch {
	case blocked && decision != domain.DecisionDecline:
		logger.Warn("Hard block: overriding %s with %s", decision, domain.DecisionDecline)
		decision = domain.DecisionDecline
		overridden = true
	case !blocked && len(lost) > 0 && decision != domain.DecisionDecline && decision != domain.DecisionEscalate:
		logger.Warn("Checkpoint %s lost %s, escalating instead of %s", clientID, strings.Join(lost, ", "), decision)
		decision = domain.DecisionEscalate
		overridden = true
	case !decision.IsValid():
		decision = rec.Decision
	}

	now := p.config.Clock()
	session.Record(domain.ReviewAction{
		ActionType:      domain.ActionFinalize,
		ResponseSummary: fmt.Sprintf("Final decision %s", decision),
		Timestamp:       now,
	})
	session.Finalized = true
	session.FinalizedAt = &now
	p.saveArtifact(ctx, clientID, driven.ArtifactReviewSession, session)

	out := CaseOutputFrom(cp, session, now)
	out.Status = domain.StatusFinalized
	out.Recommendation = &rec
	out.FinalDecision = decision
	out.DecisionOverridden = overridden
	out.DurationSeconds = p.config.Clock().Sub(start).Seconds()

	if err := p.store.SaveArtifact(ctx, clientID, driven.ArtifactFinal, out); err != nil {
		return nil, fmt.Errorf("save final output: %w", err)
	}
	p.saveText(ctx, clientID, driven.ArtifactSummary, RenderSummary(out))

	if p.metrics != nil {
		p.metrics.ObserveStage("finalize", p.config.Clock().Sub(start))
		p.metrics.ObserveDecision(decision, risk.RiskLevel)
	}
	p.flushMetrics(ctx, clientID)

	logger.Info("Case %s finalized: %s", clientID, decision)
	return out, nil
}

// lostInvestigationFields names the investigation fields a checkpoint
// decode had to reset.
func lostInvestigationFields(warnings []error) []string {
	var lost []string
	for _, w := range warnings {
		var fe *domain.FieldError
		if errors.As(w, &fe) && (fe.Field == "investigation" || strings.HasPrefix(fe.Field, "investigation.")) {
			lost = append(lost, fe.Field)
		}
	}
	return lost
}

// resumeCheckpoint loads the prior checkpoint when resuming. Unreadable
// checkpoints start the run from scratch.
func (p *Pipeline) resumeCheckpoint(ctx context.Context, clientID string, resume bool) *domain.Checkpoint {
	if !resume {
		return nil
	}
	cp, warnings, err := p.store.LoadCheckpoint(ctx, clientID)
	switch {
	case errors.Is(err, domain.ErrNoCheckpoint):
		logger.Info("No checkpoint for %s, starting fresh", clientID)
		return nil
	case err != nil:
		logger.Warn("Checkpoint for %s unreadable, starting fresh: %v", clientID, err)
		return nil
	}
	for _, w := range warnings {
		logger.Warn("Checkpoint %s: %v", clientID, w)
		rollback(cp, w)
	}
	logger.Info("Resuming %s after stage %s", clientID, cp.CompletedStage)
	return cp
}

// rollback lowers the watermark below the stage whose output failed to decode,
// so that stage runs again.
func rollback(cp *domain.Checkpoint, warning error) {
	var fe *domain.FieldError
	if !errors.As(warning, &fe) {
		return
	}
	limit := cp.CompletedStage
	switch {
	case strings.HasPrefix(fe.Field, "investigation"), strings.HasPrefix(fe.Field, "evidence"):
		limit = domain.PhaseIntake
	case strings.HasPrefix(fe.Field, "synthesis"):
		limit = domain.PhaseInvestigation
	case strings.HasPrefix(fe.Field, "review_intelligence"):
		limit = domain.PhaseSynthesis
	}
	if limit < cp.CompletedStage {
		cp.CompletedStage = limit
	}
}

// investigate runs the planned tasks, the cascade and then the utilities.
// A failing task is logged and contributes nothing.
func (p *Pipeline) investigate(ctx context.Context, client domain.Client, plan domain.InvestigationPlan) (*domain.InvestigationResults, *domain.EvidenceStore) {
	results := &domain.InvestigationResults{}
	evidence := domain.NewEvidenceStore()

	for _, name := range plan.Tasks {
		entry, ok := taskTable[name]
		if !ok {
			logger.Warn("Task %s: %v", name, domain.ErrUnsupportedType)
			continue
		}
		logger.Debug("Running task %s", name)
		callStart := p.config.Clock()
		r, err := entry.run(ctx, p.investigator, client)
		p.observeCall("task", string(name), callStart, err)
		if err != nil {
			logger.Warn("Task %s failed: %v", name, err)
			continue
		}
		r.(applier).apply(results)
		p.appendEvidence(evidence, r.Evidence(), "")
	}

	if plan.CascadeNeeded {
		for _, ubo := range client.BeneficialOwners() {
			p.cascade(ctx, ubo, results, evidence)
		}
	}

	now := p.config.Clock()
	for _, name := range plan.Utilities {
		entry, ok := utilityTable[name]
		if !ok {
			logger.Warn("Utility %s: %v", name, domain.ErrUnsupportedType)
			continue
		}
		r, err := runUtility(entry, client, plan, results, now)
		p.observeCall("utility", string(name), now, err)
		if err != nil {
			logger.Warn("Utility %s failed: %v", name, err)
			continue
		}
		p.appendEvidence(evidence, r.Evidence(), "")
	}

	logger.Info("Investigation produced %d evidence records", evidence.Len())
	return results, evidence
}

// cascade screens one beneficial owner with the individual tasks.
func (p *Pipeline) cascade(ctx context.Context, ubo domain.BeneficialOwner, results *domain.InvestigationResults, evidence *domain.EvidenceStore) {
	q := ownerQuery(ubo)
	var screening domain.CascadeScreening
	logger.Debug("Cascade screening %s (%s)", ubo.FullName, q.Context)

	start := p.config.Clock()
	if s, err := p.investigator.IndividualSanctions(ctx, q); err != nil || s == nil {
		p.observeCall("cascade", string(domain.TaskIndividualSanctions), start, err)
		logger.Warn("Cascade sanctions for %s failed: %v", ubo.FullName, err)
	} else {
		p.observeCall("cascade", string(domain.TaskIndividualSanctions), start, nil)
		screening.Sanctions = s
		p.appendEvidence(evidence, s.Evidence(), q.Context)
	}

	start = p.config.Clock()
	if r, err := p.investigator.PEPDetection(ctx, driven.PEPQuery{
		PersonQuery:  q,
		SelfDeclared: ubo.PEPSelfDeclaration,
		Details:      ubo.PEPDetails,
	}); err != nil || r == nil {
		p.observeCall("cascade", string(domain.TaskPEPDetection), start, err)
		logger.Warn("Cascade PEP detection for %s failed: %v", ubo.FullName, err)
	} else {
		p.observeCall("cascade", string(domain.TaskPEPDetection), start, nil)
		screening.PEP = r
		p.appendEvidence(evidence, r.Evidence(), q.Context)
	}

	start = p.config.Clock()
	if m, err := p.investigator.IndividualAdverseMedia(ctx, q); err != nil || m == nil {
		p.observeCall("cascade", string(domain.TaskIndividualAdverseMedia), start, err)
		logger.Warn("Cascade adverse media for %s failed: %v", ubo.FullName, err)
	} else {
		p.observeCall("cascade", string(domain.TaskIndividualAdverseMedia), start, nil)
		screening.AdverseMedia = m
		p.appendEvidence(evidence, m.Evidence(), q.Context)
	}

	results.AddCascade(ubo.FullName, screening)
}

// runUtility isolates a utility so a panic cannot abort the stage.
func runUtility(entry utilityEntry, client domain.Client, plan domain.InvestigationPlan, results *domain.InvestigationResults, now time.Time) (r domain.TaskResult, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("utility panicked: %v", rec)
		}
	}()
	return entry(client, plan, results, now), nil
}

// appendEvidence adds records, tagging them with a subject context when given.
// Malformed records are dropped with a warning.
func (p *Pipeline) appendEvidence(store *domain.EvidenceStore, records []domain.EvidenceRecord, subjectContext string) {
	for _, r := range records {
		if subjectContext != "" {
			r = r.WithContext(subjectContext)
		}
		if err := store.Append(r); err != nil {
			logger.Warn("Dropping evidence record: %v", err)
		}
	}
}

// synthesize revises the risk with related-party scores and asks the
// synthesis collaborator for a decision. Any failure escalates.
func (p *Pipeline) synthesize(ctx context.Context, client domain.Client, plan domain.InvestigationPlan, results *domain.InvestigationResults, evidence []domain.EvidenceRecord) *domain.SynthesisOutput {
	if results == nil {
		results = &domain.InvestigationResults{}
	}
	scores := results.CascadeScores()
	revised := p.scorer.Revise(plan.PreliminaryRisk, scores, nil)
	logger.Info("Revised risk: %s (%d points)", revised.RiskLevel, revised.TotalScore)

	if p.synthesis == nil {
		logger.Warn("Synthesis not configured, escalating for manual review")
		out := domain.EscalateSynthesis("synthesis service not configured", evidence)
		out.RevisedRiskAssessment = &revised
		return out
	}

	start := p.config.Clock()
	out, err := p.synthesis.Synthesize(ctx, domain.SynthesisRequest{
		Client:        client,
		Plan:          plan,
		Investigation: results,
		Evidence:      evidence,
		RevisedRisk:   revised,
	})
	if err == nil && !out.IsUsable() {
		err = domain.ErrEmptySynthesis
	}
	p.observeCall("synthesis", "synthesis", start, err)
	if err != nil {
		logger.Warn("Synthesis failed, escalating: %v", err)
		fallback := domain.EscalateSynthesis(err.Error(), evidence)
		fallback.RevisedRiskAssessment = &revised
		return fallback
	}

	final := p.scorer.Revise(plan.PreliminaryRisk, scores, elevationFactors(out.RiskElevations))
	out.RevisedRiskAssessment = &final

	graph := domain.CountEvidence(evidence)
	graph.Contradictions = out.EvidenceGraph.Contradictions
	graph.Corroborations = out.EvidenceGraph.Corroborations
	graph.UnresolvedItems = out.EvidenceGraph.UnresolvedItems
	out.EvidenceGraph = graph

	logger.Info("Synthesis recommends %s", out.RecommendedDecision)
	return out
}

// elevationFactors turns synthesis risk elevations with points into factors.
func elevationFactors(elevations []domain.RiskElevation) []domain.RiskFactor {
	var out []domain.RiskFactor
	for _, e := range elevations {
		if e.Points <= 0 {
			continue
		}
		out = append(out, domain.RiskFactor{
			Factor:   e.Factor,
			Points:   e.Points,
			Category: "synthesis_elevation",
			Source:   sourceSynthesis,
		})
	}
	return out
}

// analyze runs review intelligence. Failures yield an empty analysis.
func (p *Pipeline) analyze(ctx context.Context, client domain.Client, plan domain.InvestigationPlan, cp *domain.Checkpoint) *domain.ReviewIntelligence {
	ri, err := p.review.Analyze(ctx, driving.ReviewInput{
		Client:        client,
		Plan:          plan,
		Investigation: cp.Investigation,
		Evidence:      cp.Evidence,
		Synthesis:     cp.Synthesis,
	})
	if err != nil || ri == nil {
		logger.Warn("Review intelligence failed: %v", err)
		return &domain.ReviewIntelligence{
			DiscussionPoints:   []domain.DiscussionPoint{},
			Contradictions:     []domain.Contradiction{},
			RegulatoryMappings: []domain.FindingWithRegulations{},
			BatchAnalytics:     domain.BatchAnalytics{Patterns: []domain.BatchPattern{}},
		}
	}
	logger.Info("Review intelligence: %d discussion points, %d contradictions, confidence %s",
		len(ri.DiscussionPoints), len(ri.Contradictions), ri.Confidence.Grade)
	return ri
}

func (p *Pipeline) newSession(clientID string) *domain.ReviewSession {
	return &domain.ReviewSession{
		SessionID: uuid.NewString(),
		ClientID:  clientID,
		StartedAt: p.config.Clock(),
		Actions:   []domain.ReviewAction{},
	}
}

// loadSession returns the stored review session or a new empty one.
func (p *Pipeline) loadSession(ctx context.Context, clientID string) *domain.ReviewSession {
	var session domain.ReviewSession
	if err := p.store.LoadArtifact(ctx, clientID, driven.ArtifactReviewSession, &session); err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			logger.Warn("Review session for %s unreadable: %v", clientID, err)
		}
		return p.newSession(clientID)
	}
	if session.Actions == nil {
		session.Actions = []domain.ReviewAction{}
	}
	return &session
}

// checkpoint advances the watermark and persists the checkpoint.
func (p *Pipeline) checkpoint(ctx context.Context, cp *domain.Checkpoint, phase domain.Phase, stageStart time.Time) error {
	cp.CompletedStage = phase
	cp.UpdatedAt = p.config.Clock()
	if err := p.store.SaveCheckpoint(ctx, cp.Client.ID(), cp); err != nil {
		return fmt.Errorf("save checkpoint after %s: %w", phase, err)
	}
	if p.metrics != nil {
		p.metrics.ObserveStage(phase.String(), p.config.Clock().Sub(stageStart))
	}
	logger.Debug("Checkpoint saved after %s", phase)
	return nil
}

func (p *Pipeline) saveArtifact(ctx context.Context, clientID string, name driven.Artifact, v any) {
	if err := p.store.SaveArtifact(ctx, clientID, name, v); err != nil {
		logger.Warn("Failed to write %s: %v", name, err)
	}
}

func (p *Pipeline) saveText(ctx context.Context, clientID string, name driven.Artifact, content string) {
	if err := p.store.SaveText(ctx, clientID, name, content); err != nil {
		logger.Warn("Failed to write %s: %v", name, err)
	}
}

func (p *Pipeline) recordEvidence(ctx context.Context, runID, clientID string, records []domain.EvidenceRecord) {
	if p.evidenceSink == nil {
		return
	}
	if err := p.evidenceSink.Record(ctx, runID, clientID, records); err != nil {
		logger.Warn("Failed to record evidence ledger: %v", err)
	}
}

func (p *Pipeline) observeCall(kind, name string, start time.Time, err error) {
	if p.metrics != nil {
		p.metrics.ObserveCall(kind, name, p.config.Clock().Sub(start), err)
	}
}

func (p *Pipeline) flushMetrics(ctx context.Context, clientID string) {
	if p.metrics == nil {
		return
	}
	if err := p.metrics.Flush(ctx, clientID); err != nil {
		logger.Warn("Failed to write metrics: %v", err)
	}
}

// finalRisk returns the revised assessment, falling back to the preliminary one.
func finalRisk(cp *domain.Checkpoint) domain.RiskAssessment {
	if cp.Synthesis != nil && cp.Synthesis.RevisedRiskAssessment != nil {
		return *cp.Synthesis.RevisedRiskAssessment
	}
	if cp.Plan != nil {
		return cp.Plan.PreliminaryRisk
	}
	return domain.NewRiskAssessment(nil)
}

// CaseOutputFrom assembles the case view of a checkpoint and its review session.
func CaseOutputFrom(cp *domain.Checkpoint, session *domain.ReviewSession, now time.Time) *domain.CaseOutput {
	return &domain.CaseOutput{
		RunID:              cp.RunID,
		ClientID:           cp.Client.ID(),
		ClientType:         cp.Client.Type(),
		Client:             cp.Client,
		Plan:               cp.Plan,
		Investigation:      cp.Investigation,
		EvidenceCount:      len(cp.Evidence),
		Synthesis:          cp.Synthesis,
		ReviewIntelligence: cp.ReviewIntelligence,
		ReviewSession:      session,
		GeneratedAt:        now,
	}
}
