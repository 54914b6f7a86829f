package domain

import "time"

// Severity ranks review findings.
type Severity string

// Severities, most severe first.
const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityMedium   Severity = "MEDIUM"
	SeverityAdvisory Severity = "ADVISORY"
)

// Rank orders severities with CRITICAL at 0.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityHigh:
		return 1
	case SeverityMedium:
		return 2
	default:
		return 3
	}
}

// DiscussionPoint is a finding the reviewing officer must address.
type DiscussionPoint struct {
	PointID           string   `json:"point_id"`
	Title             string   `json:"title"`
	Severity          Severity `json:"severity"`
	Reason            string   `json:"reason"`
	EvidenceIDs       []string `json:"evidence_ids,omitempty"`
	SourceNames       []string `json:"source_names,omitempty"`
	RecommendedAction string   `json:"recommended_action,omitempty"`
}

// Contradiction is a conflict between two findings.
type Contradiction struct {
	ContradictionID    string   `json:"contradiction_id"`
	FindingA           string   `json:"finding_a"`
	FindingB           string   `json:"finding_b"`
	SourceA            string   `json:"source_a"`
	SourceB            string   `json:"source_b"`
	EvidenceIDs        []string `json:"evidence_ids,omitempty"`
	Severity           Severity `json:"severity"`
	ResolutionGuidance string   `json:"resolution_guidance,omitempty"`
}

// Grade is an evidence-quality letter grade.
type Grade string

// Evidence-quality grades.
const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
	GradeF Grade = "F"
)

// IsDegraded reports whether the grade is C or below.
func (g Grade) IsDegraded() bool {
	return g == GradeC || g == GradeD || g == GradeF
}

// ConfidenceAlert describes the strength of the evidence base.
type ConfidenceAlert struct {
	Grade           Grade    `json:"overall_confidence_grade"`
	VerifiedPct     float64  `json:"verified_pct"`
	SourcedPct      float64  `json:"sourced_pct"`
	InferredPct     float64  `json:"inferred_pct"`
	UnknownPct      float64  `json:"unknown_pct"`
	Degraded        bool     `json:"degraded"`
	FollowUpActions []string `json:"follow_up_actions,omitempty"`
}

// RegulatoryTag links a finding to an obligation.
type RegulatoryTag struct {
	Regulation         string `json:"regulation"`
	Obligation         string `json:"obligation"`
	TriggerDescription string `json:"trigger_description,omitempty"`
	EvidenceID         string `json:"evidence_id,omitempty"`
	FilingRequired     bool   `json:"filing_required"`
	Timeline           string `json:"timeline,omitempty"`
}

// FindingWithRegulations is an evidence record with its regulatory tags.
type FindingWithRegulations struct {
	EvidenceID     string          `json:"evidence_id"`
	Claim          string          `json:"claim"`
	SourceName     string          `json:"source_name"`
	RegulatoryTags []RegulatoryTag `json:"regulatory_tags"`
}

// CaseSignature is the compact per-case fingerprint kept in the case log.
type CaseSignature struct {
	ClientID             string     `json:"client_id"`
	Timestamp            time.Time  `json:"timestamp"`
	RiskLevel            RiskLevel  `json:"risk_level"`
	RiskScore            int        `json:"risk_score"`
	Jurisdictions        []string   `json:"jurisdictions,omitempty"`
	Industries           []string   `json:"industries,omitempty"`
	ClientType           ClientType `json:"client_type"`
	RegulationsTriggered []string   `json:"regulations_triggered,omitempty"`
	ConfidenceGrade      Grade      `json:"confidence_grade"`
	ContradictionsCount  int        `json:"contradictions_count"`
}

// Pattern types detected by batch analytics.
const (
	PatternJurisdictionCluster = "jurisdiction_cluster"
	PatternIndustryCluster     = "industry_cluster"
	PatternRegulationSurge     = "regulation_surge"
	PatternRiskTrend           = "risk_trend"
)

// BatchPattern is a cross-case pattern in the rolling window.
type BatchPattern struct {
	PatternType  string   `json:"pattern_type"`
	Description  string   `json:"description"`
	Count        int      `json:"count"`
	CaseIDs      []string `json:"case_ids,omitempty"`
	Significance string   `json:"significance,omitempty"`
}

// BatchAnalytics summarises the rolling window.
type BatchAnalytics struct {
	TotalCasesInWindow int            `json:"total_cases_in_window"`
	Patterns           []BatchPattern `json:"patterns"`
}

// ReviewIntelligence is the deterministic analysis presented to the reviewer.
type ReviewIntelligence struct {
	DiscussionPoints   []DiscussionPoint        `json:"discussion_points"`
	Contradictions     []Contradiction          `json:"contradictions"`
	Confidence         ConfidenceAlert          `json:"confidence"`
	RegulatoryMappings []FindingWithRegulations `json:"regulatory_mappings"`
	BatchAnalytics     BatchAnalytics           `json:"batch_analytics"`
}

// ReviewActionType names an officer action during review.
type ReviewActionType string

// Review actions.
const (
	ActionQuery              ReviewActionType = "query"
	ActionApproveDisposition ReviewActionType = "approve_disposition"
	ActionOverrideRisk       ReviewActionType = "override_risk"
	ActionAddNote            ReviewActionType = "add_note"
	ActionFinalize           ReviewActionType = "finalize"
)

// ReviewAction is one recorded officer action.
type ReviewAction struct {
	ActionType          ReviewActionType `json:"action_type"`
	Query               string           `json:"query,omitempty"`
	ResponseSummary     string           `json:"response_summary,omitempty"`
	EvidenceID          string           `json:"evidence_id,omitempty"`
	ApprovedDisposition Disposition      `json:"approved_disposition,omitempty"`
	PreviousDisposition Disposition      `json:"previous_disposition,omitempty"`
	RiskLevel           RiskLevel        `json:"risk_level,omitempty"`
	OfficerNote         string           `json:"officer_note,omitempty"`
	Timestamp           time.Time        `json:"timestamp"`
}

// ReviewSession is the human checkpoint between synthesis and finalize.
type ReviewSession struct {
	SessionID   string         `json:"session_id"`
	ClientID    string         `json:"client_id"`
	OfficerName string         `json:"officer_name,omitempty"`
	StartedAt   time.Time      `json:"started_at"`
	Actions     []ReviewAction `json:"actions"`
	Finalized   bool           `json:"finalized"`
	FinalizedAt *time.Time     `json:"finalized_at,omitempty"`
}

// Record appends an action to the session.
func (s *ReviewSession) Record(action ReviewAction) {
	if action.Timestamp.IsZero() {
		action.Timestamp = time.Now()
	}
	s.Actions = append(s.Actions, action)
}

// OverriddenRisk returns the last risk-level override recorded, if any.
func (s *ReviewSession) OverriddenRisk() (RiskLevel, bool) {
	for i := len(s.Actions) - 1; i >= 0; i-- {
		a := s.Actions[i]
		if a.ActionType == ActionOverrideRisk && a.RiskLevel.IsValid() {
			return a.RiskLevel, true
		}
	}
	return "", false
}
