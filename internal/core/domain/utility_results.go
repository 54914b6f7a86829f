package domain

// Sub-assessment statuses reported by suitability checks.
const (
	StatusPass       = "pass"
	StatusConcern    = "concern"
	StatusFlag       = "flag"
	StatusIncomplete = "incomplete"
)

// IDMethod is an identity verification method with its requirements.
type IDMethod struct {
	Key          string   `json:"key"`
	Name         string   `json:"name"`
	Requirements []string `json:"requirements,omitempty"`
}

// IDVerificationResult is the outcome of identity verification planning.
type IDVerificationResult struct {
	Method                      string           `json:"method"`
	Requirements                []string         `json:"requirements"`
	Status                      string           `json:"status"`
	Concerns                    []string         `json:"concerns,omitempty"`
	AlternativeMethods          []IDMethod       `json:"alternative_methods,omitempty"`
	NonFaceToFace               bool             `json:"non_face_to_face"`
	UBOVerificationNeeded       bool             `json:"ubo_verification_needed,omitempty"`
	SignatoryVerificationNeeded bool             `json:"signatory_verification_needed,omitempty"`
	EvidenceRecords             []EvidenceRecord `json:"evidence_records,omitempty"`
}

// Evidence implements TaskResult.
func (r *IDVerificationResult) Evidence() []EvidenceRecord { return r.EvidenceRecords }

// SubAssessment is one dimension of a suitability check.
type SubAssessment struct {
	Status string   `json:"status"`
	Notes  []string `json:"notes,omitempty"`
	Ratio  *float64 `json:"ratio,omitempty"`
}

// SuitabilityResult is the outcome of the suitability assessment.
type SuitabilityResult struct {
	Suitable        bool                     `json:"suitable"`
	Concerns        []string                 `json:"concerns,omitempty"`
	Recommendations []string                 `json:"recommendations,omitempty"`
	Details         map[string]SubAssessment `json:"details"`
	EvidenceRecords []EvidenceRecord         `json:"evidence_records,omitempty"`
}

// Evidence implements TaskResult.
func (r *SuitabilityResult) Evidence() []EvidenceRecord { return r.EvidenceRecords }

// FATCAStatus is the FATCA side of a tax-reporting assessment.
type FATCAStatus struct {
	USPerson           bool     `json:"us_person"`
	IndiciaFound       bool     `json:"indicia_found"`
	Indicia            []string `json:"indicia,omitempty"`
	UncheckedIndicia   []string `json:"unchecked_indicia,omitempty"`
	USNexus            bool     `json:"us_nexus,omitempty"`
	USNexusIndicators  []string `json:"us_nexus_indicators,omitempty"`
	W9Required         bool     `json:"w9_required"`
	W8BENRequired      bool     `json:"w8ben_required"`
	ReportingRequired  bool     `json:"reporting_required"`
	ClassificationNote string   `json:"classification_note,omitempty"`
}

// CRSStatus is the CRS side of a tax-reporting assessment.
type CRSStatus struct {
	ReportableJurisdictions   []string `json:"reportable_jurisdictions,omitempty"`
	DeclaredTaxResidencies    []string `json:"declared_tax_residencies,omitempty"`
	USFATCAOnly               bool     `json:"us_fatca_only,omitempty"`
	EntityLevel               []string `json:"entity_level,omitempty"`
	UBOLevel                  []string `json:"ubo_level,omitempty"`
	SelfCertificationRequired bool     `json:"self_certification_required"`
	ReportingRequired         bool     `json:"reporting_required"`
}

// ControllingPerson is a beneficial owner relevant to entity tax reporting.
type ControllingPerson struct {
	Name                string   `json:"name"`
	OwnershipPercentage float64  `json:"ownership_percentage"`
	Role                string   `json:"role,omitempty"`
	USIndicia           []string `json:"us_indicia,omitempty"`
	USPerson            bool     `json:"is_us_person"`
	CRSJurisdictions    []string `json:"crs_jurisdictions,omitempty"`
	Reportable          bool     `json:"crs_reportable"`
	RequiredForms       []string `json:"required_forms,omitempty"`
}

// Entity classifications for FATCA/CRS purposes.
const (
	EntityFinancialInstitution = "financial_institution"
	EntityPassiveNFFE          = "passive_nffe"
	EntityActiveNFFE           = "active_nffe"
	EntityUndetermined         = "undetermined"
)

// FATCACRSResult is the outcome of individual or entity FATCA/CRS classification.
type FATCACRSResult struct {
	EntityClassification string              `json:"entity_classification,omitempty"`
	FATCA                FATCAStatus         `json:"fatca"`
	CRS                  CRSStatus           `json:"crs"`
	RequiredForms        []string            `json:"required_forms,omitempty"`
	ReportingObligations []string            `json:"reporting_obligations,omitempty"`
	ControllingPersons   []ControllingPerson `json:"controlling_persons,omitempty"`
	EvidenceRecords      []EvidenceRecord    `json:"evidence_records,omitempty"`
}

// Evidence implements TaskResult.
func (r *FATCACRSResult) Evidence() []EvidenceRecord { return r.EvidenceRecords }

// EDDResult is the outcome of enhanced due diligence determination.
type EDDResult struct {
	EDDRequired         bool             `json:"edd_required"`
	Triggers            []string         `json:"triggers,omitempty"`
	Measures            []string         `json:"measures,omitempty"`
	ApprovalRequired    string           `json:"approval_required"`
	MonitoringFrequency string           `json:"monitoring_frequency"`
	EvidenceRecords     []EvidenceRecord `json:"evidence_records,omitempty"`
}

// Evidence implements TaskResult.
func (r *EDDResult) Evidence() []EvidenceRecord { return r.EvidenceRecords }

// RegulatoryReport is a filing the case may require.
type RegulatoryReport struct {
	Type           string `json:"type"`
	FullName       string `json:"full_name"`
	Trigger        string `json:"trigger"`
	Timeline       string `json:"timeline"`
	FilingDecision string `json:"filing_decision"`
	Notes          string `json:"notes,omitempty"`
}

// ComplianceDeadline is a dated follow-up obligation.
type ComplianceDeadline struct {
	Action   string `json:"action"`
	Deadline string `json:"deadline"`
	Basis    string `json:"basis,omitempty"`
}

// MonitoringPlan describes post-onboarding monitoring.
type MonitoringPlan struct {
	Level          string `json:"level"`
	ReviewSchedule string `json:"review_schedule"`
}

// ComplianceActionsResult is the outcome of compliance action determination.
type ComplianceActionsResult struct {
	Reports         []RegulatoryReport   `json:"reports,omitempty"`
	Actions         []string             `json:"actions,omitempty"`
	Timelines       []ComplianceDeadline `json:"timelines,omitempty"`
	Escalations     []string             `json:"escalations,omitempty"`
	Monitoring      MonitoringPlan       `json:"monitoring"`
	EvidenceRecords []EvidenceRecord     `json:"evidence_records,omitempty"`
}

// Evidence implements TaskResult.
func (r *ComplianceActionsResult) Evidence() []EvidenceRecord { return r.EvidenceRecords }

// HasReport reports whether a filing of the given type is listed.
func (r *ComplianceActionsResult) HasReport(kind string) bool {
	for _, rep := range r.Reports {
		if rep.Type == kind {
			return true
		}
	}
	return false
}

// RiskAnalysis is one section of the business risk assessment.
type RiskAnalysis struct {
	RiskLevel string         `json:"risk_level"`
	Concerns  []string       `json:"concerns,omitempty"`
	Findings  []string       `json:"findings,omitempty"`
	Metrics   map[string]any `json:"metrics,omitempty"`
}

// Elevate raises the section level, never lowering it.
func (a *RiskAnalysis) Elevate(level string) {
	if analysisRank(level) > analysisRank(a.RiskLevel) {
		a.RiskLevel = level
	}
}

func analysisRank(level string) int {
	switch level {
	case "medium":
		return 1
	case "high":
		return 2
	case "critical":
		return 3
	default:
		return 0
	}
}

// BusinessRiskResult is the outcome of the business-specific risk assessment.
type BusinessRiskResult struct {
	RiskFactors         []RiskFactor     `json:"risk_factors"`
	OwnershipAnalysis   RiskAnalysis     `json:"ownership_analysis"`
	OperationalAnalysis RiskAnalysis     `json:"operational_analysis"`
	TransactionAnalysis RiskAnalysis     `json:"transaction_analysis"`
	Narrative           string           `json:"overall_narrative"`
	EvidenceRecords     []EvidenceRecord `json:"evidence_records,omitempty"`
}

// Evidence implements TaskResult.
func (r *BusinessRiskResult) Evidence() []EvidenceRecord { return r.EvidenceRecords }

// TotalPoints sums the factor points.
func (r *BusinessRiskResult) TotalPoints() int {
	total := 0
	for _, f := range r.RiskFactors {
		total += f.Points
	}
	return total
}

// DocumentRequirement is one item on the consolidated document checklist.
type DocumentRequirement struct {
	Document        string `json:"document"`
	RegulatoryBasis string `json:"regulatory_basis"`
	Status          string `json:"status"`
	Category        string `json:"category"`
	Priority        string `json:"priority"`
}

// DocumentStatusOutstanding marks a document not yet received.
const DocumentStatusOutstanding = "outstanding"

// DocumentRequirementsResult is the consolidated document checklist.
type DocumentRequirementsResult struct {
	Requirements     []DocumentRequirement `json:"requirements"`
	TotalRequired    int                   `json:"total_required"`
	TotalOutstanding int                   `json:"total_outstanding"`
	Categories       []string              `json:"categories,omitempty"`
	EvidenceRecords  []EvidenceRecord      `json:"evidence_records,omitempty"`
}

// Evidence implements TaskResult.
func (r *DocumentRequirementsResult) Evidence() []EvidenceRecord { return r.EvidenceRecords }
