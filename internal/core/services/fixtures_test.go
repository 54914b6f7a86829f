package services

import (
	"context"
	"strings"
	"time"

	"github.com/custodia-labs/kyc-onboard/internal/core/domain"
	"github.com/custodia-labs/kyc-onboard/internal/core/ports/driven"
)

var testNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func testConfig() domain.PipelineConfig {
	return domain.PipelineConfig{BatchWindow: 7 * 24 * time.Hour, Now: fixedClock}
}

// individualClient returns a low-risk Canadian individual, optionally modified.
func individualClient(mut func(*domain.IndividualClient)) domain.Client {
	c := domain.IndividualClient{
		FullName:           "Jane Doe",
		DateOfBirth:        "1985-04-12",
		Citizenship:        "Canada",
		CountryOfResidence: "Canada",
		CountryOfBirth:     "Canada",
		Address: &domain.Address{
			Street: "1 King St W", City: "Toronto", ProvinceState: "ON",
			PostalCode: "M5H 1A1", Country: "Canada",
		},
		Employment:    &domain.EmploymentInfo{Status: "employed", Employer: "Acme Corp", Occupation: "Software Engineer"},
		AnnualIncome:  120000,
		NetWorth:      600000,
		SourceOfFunds: "employment_income",
		AccountRequests: []domain.AccountRequest{
			{AccountType: "tfsa", InitialDeposit: 20000},
		},
	}
	if mut != nil {
		mut(&c)
	}
	return domain.NewIndividual(c)
}

// businessClient returns an established Ontario manufacturer with two owners.
func businessClient(mut func(*domain.BusinessClient)) domain.Client {
	c := domain.BusinessClient{
		LegalName:                 "Maple Widgets Inc",
		BusinessNumber:            "123456789",
		IncorporationDate:         "2010-06-01",
		IncorporationJurisdiction: "Ontario",
		EntityType:                "corporation",
		Industry:                  "manufacturing",
		NatureOfBusiness:          "Manufacture of industrial widgets",
		Address:                   &domain.Address{City: "Toronto", Country: "Canada"},
		CountriesOfOperation:      []string{"Canada"},
		AnnualRevenue:             5_000_000,
		ExpectedTransactionVolume: 4_000_000,
		BeneficialOwners: []domain.BeneficialOwner{
			{FullName: "Alice Smith", Citizenship: "Canada", CountryOfResidence: "Canada", OwnershipPercentage: 60},
			{FullName: "Bob Jones", Citizenship: "Canada", CountryOfResidence: "Canada", OwnershipPercentage: 40},
		},
		AuthorizedSignatories: []string{"Alice Smith"},
	}
	if mut != nil {
		mut(&c)
	}
	return domain.NewBusiness(c)
}

func riskOf(points int) domain.RiskAssessment {
	return domain.NewRiskAssessment([]domain.RiskFactor{{Factor: "test", Points: points, Category: "test", Source: "test"}})
}

func subjectKey(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), " ", "_")
}

func taskRecord(id string, task domain.TaskName, subject string, disp domain.Disposition) domain.EvidenceRecord {
	return domain.EvidenceRecord{
		EvidenceID:    id,
		SourceKind:    domain.SourceTask,
		SourceName:    string(task),
		Subject:       subject,
		Claim:         string(task) + " result for " + subject + ": " + string(disp),
		EvidenceClass: domain.EvidenceSourced,
		Disposition:   disp,
		Confidence:    domain.ConfidenceHigh,
		Timestamp:     testNow,
	}
}

// pipelineInvestigator returns canned results and records every call.
type pipelineInvestigator struct {
	calls     []string
	failures  map[domain.TaskName]error
	sanctions map[string]domain.Disposition
	pep       map[string]domain.PEPLevel
	media     map[string]domain.AdverseMediaLevel
}

func newPipelineInvestigator() *pipelineInvestigator {
	return &pipelineInvestigator{
		failures:  map[domain.TaskName]error{},
		sanctions: map[string]domain.Disposition{},
		pep:       map[string]domain.PEPLevel{},
		media:     map[string]domain.AdverseMediaLevel{},
	}
}

func (m *pipelineInvestigator) record(task domain.TaskName, subject string) error {
	m.calls = append(m.calls, string(task)+":"+subject)
	return m.failures[task]
}

func (m *pipelineInvestigator) sanctionsFor(task domain.TaskName, name string) (*domain.SanctionsResult, error) {
	if err := m.record(task, name); err != nil {
		return nil, err
	}
	disp := m.sanctions[name]
	if disp == "" {
		disp = domain.DispositionClear
	}
	return &domain.SanctionsResult{
		EntityScreened:  name,
		Disposition:     disp,
		EvidenceRecords: []domain.EvidenceRecord{taskRecord("san_"+subjectKey(name), task, name, disp)},
	}, nil
}

func (m *pipelineInvestigator) mediaFor(task domain.TaskName, name string) (*domain.AdverseMediaResult, error) {
	if err := m.record(task, name); err != nil {
		return nil, err
	}
	level := m.media[name]
	if level == "" {
		level = domain.MediaClear
	}
	disp := domain.DispositionClear
	if level != domain.MediaClear {
		disp = domain.DispositionPendingReview
	}
	return &domain.AdverseMediaResult{
		EntityScreened:  name,
		OverallLevel:    level,
		EvidenceRecords: []domain.EvidenceRecord{taskRecord("media_"+subjectKey(name), task, name, disp)},
	}, nil
}

func (m *pipelineInvestigator) IndividualSanctions(_ context.Context, q driven.PersonQuery) (*domain.SanctionsResult, error) {
	return m.sanctionsFor(domain.TaskIndividualSanctions, q.FullName)
}

func (m *pipelineInvestigator) PEPDetection(_ context.Context, q driven.PEPQuery) (*domain.PEPClassification, error) {
	if err := m.record(domain.TaskPEPDetection, q.FullName); err != nil {
		return nil, err
	}
	level := m.pep[q.FullName]
	if level == "" {
		level = domain.PEPNone
	}
	disp := domain.DispositionClear
	if level.IsPEP() {
		disp = domain.DispositionConfirmedMatch
	}
	return &domain.PEPClassification{
		EntityScreened:  q.FullName,
		SelfDeclared:    q.SelfDeclared,
		DetectedLevel:   level,
		EDDRequired:     level.IsPEP(),
		EvidenceRecords: []domain.EvidenceRecord{taskRecord("pep_"+subjectKey(q.FullName), domain.TaskPEPDetection, q.FullName, disp)},
	}, nil
}

func (m *pipelineInvestigator) IndividualAdverseMedia(_ context.Context, q driven.PersonQuery) (*domain.AdverseMediaResult, error) {
	return m.mediaFor(domain.TaskIndividualAdverseMedia, q.FullName)
}

func (m *pipelineInvestigator) EntityVerification(_ context.Context, q driven.EntityQuery) (*domain.EntityVerification, error) {
	if err := m.record(domain.TaskEntityVerification, q.LegalName); err != nil {
		return nil, err
	}
	return &domain.EntityVerification{
		EntityName:           q.LegalName,
		VerifiedRegistration: true,
		UBOStructureVerified: true,
		EvidenceRecords: []domain.EvidenceRecord{
			taskRecord("entity_"+subjectKey(q.LegalName), domain.TaskEntityVerification, q.LegalName, domain.DispositionClear),
		},
	}, nil
}

func (m *pipelineInvestigator) EntitySanctions(_ context.Context, q driven.EntityQuery) (*domain.SanctionsResult, error) {
	return m.sanctionsFor(domain.TaskEntitySanctions, q.LegalName)
}

func (m *pipelineInvestigator) BusinessAdverseMedia(_ context.Context, q driven.EntityQuery) (*domain.AdverseMediaResult, error) {
	return m.mediaFor(domain.TaskBusinessAdverseMedia, q.LegalName)
}

func (m *pipelineInvestigator) JurisdictionRisk(_ context.Context, jurisdictions []string) (*domain.JurisdictionRiskResult, error) {
	subject := strings.Join(jurisdictions, ",")
	if err := m.record(domain.TaskJurisdictionRisk, subject); err != nil {
		return nil, err
	}
	return &domain.JurisdictionRiskResult{
		JurisdictionsAssessed: jurisdictions,
		OverallRisk:           domain.RiskLow,
		EvidenceRecords: []domain.EvidenceRecord{
			taskRecord("jurisdiction_"+subjectKey(subject), domain.TaskJurisdictionRisk, subject, domain.DispositionClear),
		},
	}, nil
}

// stubSynthesis returns a fixed output and captures requests.
type stubSynthesis struct {
	out      *domain.SynthesisOutput
	err      error
	requests []domain.SynthesisRequest
}

func (s *stubSynthesis) Synthesize(_ context.Context, req domain.SynthesisRequest) (*domain.SynthesisOutput, error) {
	s.requests = append(s.requests, req)
	if s.err != nil || s.out == nil {
		return nil, s.err
	}
	out := *s.out
	return &out, nil
}

// recordingMetrics captures what the pipeline reports.
type recordingMetrics struct {
	stages    []string
	calls     []string
	failures  int
	evidence  int
	decisions []domain.Decision
	flushed   []string
}

func (m *recordingMetrics) ObserveStage(stage string, _ time.Duration) {
	m.stages = append(m.stages, stage)
}

func (m *recordingMetrics) ObserveCall(kind, name string, _ time.Duration, err error) {
	m.calls = append(m.calls, kind+":"+name)
	if err != nil {
		m.failures++
	}
}

func (m *recordingMetrics) ObserveEvidence(records []domain.EvidenceRecord) {
	m.evidence = len(records)
}

func (m *recordingMetrics) ObserveDecision(decision domain.Decision, _ domain.RiskLevel) {
	m.decisions = append(m.decisions, decision)
}

func (m *recordingMetrics) Flush(_ context.Context, clientID string) error {
	m.flushed = append(m.flushed, clientID)
	return nil
}
