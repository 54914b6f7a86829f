package domain

// TaskName identifies an investigative task. The set is closed.
type TaskName string

// Investigative tasks.
const (
	TaskIndividualSanctions    TaskName = "IndividualSanctions"
	TaskPEPDetection           TaskName = "PEPDetection"
	TaskIndividualAdverseMedia TaskName = "IndividualAdverseMedia"
	TaskEntityVerification     TaskName = "EntityVerification"
	TaskEntitySanctions        TaskName = "EntitySanctions"
	TaskBusinessAdverseMedia   TaskName = "BusinessAdverseMedia"
	TaskJurisdictionRisk       TaskName = "JurisdictionRisk"
)

// AllTasks lists every task in dispatch order.
var AllTasks = []TaskName{
	TaskIndividualSanctions, TaskPEPDetection, TaskIndividualAdverseMedia,
	TaskEntityVerification, TaskEntitySanctions, TaskBusinessAdverseMedia,
	TaskJurisdictionRisk,
}

// IsValid returns true if the task is recognised.
func (t TaskName) IsValid() bool {
	for _, known := range AllTasks {
		if t == known {
			return true
		}
	}
	return false
}

// String returns the string representation.
func (t TaskName) String() string { return string(t) }

// CascadeTasks are run for each related party of a business client.
var CascadeTasks = []TaskName{TaskIndividualSanctions, TaskPEPDetection, TaskIndividualAdverseMedia}

// UtilityName identifies a deterministic utility. The set is closed.
type UtilityName string

// Deterministic utilities.
const (
	UtilityIDVerification         UtilityName = "id_verification"
	UtilitySuitability            UtilityName = "suitability"
	UtilityIndividualFATCACRS     UtilityName = "individual_fatca_crs"
	UtilityEntityFATCACRS         UtilityName = "entity_fatca_crs"
	UtilityBusinessRiskAssessment UtilityName = "business_risk_assessment"
	UtilityEDDRequirements        UtilityName = "edd_requirements"
	UtilityComplianceActions      UtilityName = "compliance_actions"
	UtilityDocumentRequirements   UtilityName = "document_requirements"
)

// AllUtilities lists every utility.
var AllUtilities = []UtilityName{
	UtilityIDVerification, UtilitySuitability, UtilityIndividualFATCACRS,
	UtilityEntityFATCACRS, UtilityBusinessRiskAssessment, UtilityEDDRequirements,
	UtilityComplianceActions, UtilityDocumentRequirements,
}

// IsValid returns true if the utility is recognised.
func (u UtilityName) IsValid() bool {
	for _, known := range AllUtilities {
		if u == known {
			return true
		}
	}
	return false
}

// String returns the string representation.
func (u UtilityName) String() string { return string(u) }

// Regulation names a regulatory regime.
type Regulation string

// Regulatory regimes.
const (
	RegulationFINTRAC Regulation = "FINTRAC"
	RegulationCIRO    Regulation = "CIRO"
	RegulationOFAC    Regulation = "OFAC"
	RegulationFATCA   Regulation = "FATCA"
	RegulationCRS     Regulation = "CRS"
	RegulationEDD     Regulation = "EDD"
)

// InvestigationPlan is the Stage 1 decision of what to run for a client.
type InvestigationPlan struct {
	ClientType            ClientType     `json:"client_type"`
	ClientID              string         `json:"client_id"`
	Tasks                 []TaskName     `json:"tasks"`
	Utilities             []UtilityName  `json:"utilities"`
	CascadeNeeded         bool           `json:"cascade_needed"`
	CascadeSubjects       []string       `json:"cascade_subjects"`
	ApplicableRegulations []Regulation   `json:"applicable_regulations"`
	PreliminaryRisk       RiskAssessment `json:"preliminary_risk"`
}

// HasRegulation reports whether a regime applies.
func (p *InvestigationPlan) HasRegulation(reg Regulation) bool {
	for _, r := range p.ApplicableRegulations {
		if r == reg {
			return true
		}
	}
	return false
}

// RegulationNames returns the regimes as strings.
func (p *InvestigationPlan) RegulationNames() []string {
	out := make([]string, len(p.ApplicableRegulations))
	for i, r := range p.ApplicableRegulations {
		out[i] = string(r)
	}
	return out
}
