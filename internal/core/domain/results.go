package domain

// TaskResult is implemented by every investigative task result.
type TaskResult interface {
	// Evidence returns the evidence records the task produced.
	Evidence() []EvidenceRecord
}

// SanctionsMatch is a single hit against a screening list.
type SanctionsMatch struct {
	ListName    string  `json:"list_name"`
	MatchedName string  `json:"matched_name"`
	Score       float64 `json:"score"`
	Details     string  `json:"details,omitempty"`
}

// SanctionsResult is the outcome of individual or entity sanctions screening.
type SanctionsResult struct {
	EntityScreened              string           `json:"entity_screened"`
	ScreeningSources            []string         `json:"screening_sources,omitempty"`
	Matches                     []SanctionsMatch `json:"matches,omitempty"`
	Disposition                 Disposition      `json:"disposition"`
	DispositionReasoning        string           `json:"disposition_reasoning,omitempty"`
	OFAC50PercentRuleApplicable bool             `json:"ofac_50_percent_rule_applicable,omitempty"`
	SearchQueries               []string         `json:"search_queries_executed,omitempty"`
	EvidenceRecords             []EvidenceRecord `json:"evidence_records,omitempty"`
}

// Evidence implements TaskResult.
func (r *SanctionsResult) Evidence() []EvidenceRecord { return r.EvidenceRecords }

// PEPLevel is a politically exposed person classification.
type PEPLevel string

// PEP levels.
const (
	PEPNone      PEPLevel = "NOT_PEP"
	PEPForeign   PEPLevel = "FOREIGN_PEP"
	PEPDomestic  PEPLevel = "DOMESTIC_PEP"
	PEPHIO       PEPLevel = "HIO"
	PEPFamily    PEPLevel = "PEP_FAMILY"
	PEPAssociate PEPLevel = "PEP_ASSOCIATE"
)

// IsPEP reports whether the level is anything other than NOT_PEP.
func (l PEPLevel) IsPEP() bool {
	return l != "" && l != PEPNone
}

// PEPPosition is a public position held by a screened person.
type PEPPosition struct {
	Position     string `json:"position"`
	Organization string `json:"organization,omitempty"`
	Dates        string `json:"dates,omitempty"`
	Source       string `json:"source,omitempty"`
}

// PEPAssociation links a screened person to a PEP.
type PEPAssociation struct {
	Name         string `json:"name"`
	Relationship string `json:"relationship,omitempty"`
	PEPDetails   string `json:"pep_details,omitempty"`
}

// PEPClassification is the outcome of PEP detection.
type PEPClassification struct {
	EntityScreened     string           `json:"entity_screened"`
	SelfDeclared       bool             `json:"self_declared"`
	DetectedLevel      PEPLevel         `json:"detected_level"`
	PositionsFound     []PEPPosition    `json:"positions_found,omitempty"`
	FamilyAssociations []PEPAssociation `json:"family_associations,omitempty"`
	EDDRequired        bool             `json:"edd_required"`
	EDDExpiryDate      string           `json:"edd_expiry_date,omitempty"`
	EDDPermanent       bool             `json:"edd_permanent"`
	SearchQueries      []string         `json:"search_queries_executed,omitempty"`
	EvidenceRecords    []EvidenceRecord `json:"evidence_records,omitempty"`
}

// Evidence implements TaskResult.
func (r *PEPClassification) Evidence() []EvidenceRecord { return r.EvidenceRecords }

// AdverseMediaLevel grades adverse media findings.
type AdverseMediaLevel string

// Adverse media levels.
const (
	MediaClear           AdverseMediaLevel = "CLEAR"
	MediaLowConcern      AdverseMediaLevel = "LOW_CONCERN"
	MediaMaterialConcern AdverseMediaLevel = "MATERIAL_CONCERN"
	MediaHighRisk        AdverseMediaLevel = "HIGH_RISK"
)

// IsMaterial reports whether the level is MATERIAL_CONCERN or HIGH_RISK.
func (l AdverseMediaLevel) IsMaterial() bool {
	return l == MediaMaterialConcern || l == MediaHighRisk
}

// MediaArticle is a single adverse media hit.
type MediaArticle struct {
	Title      string `json:"title"`
	Source     string `json:"source,omitempty"`
	Date       string `json:"date,omitempty"`
	Summary    string `json:"summary,omitempty"`
	Category   string `json:"category,omitempty"`
	SourceTier string `json:"source_tier,omitempty"`
	URL        string `json:"url,omitempty"`
}

// AdverseMediaResult is the outcome of adverse media screening.
type AdverseMediaResult struct {
	EntityScreened  string            `json:"entity_screened"`
	OverallLevel    AdverseMediaLevel `json:"overall_level"`
	ArticlesFound   []MediaArticle    `json:"articles_found,omitempty"`
	Categories      []string          `json:"categories,omitempty"`
	SearchQueries   []string          `json:"search_queries_executed,omitempty"`
	EvidenceRecords []EvidenceRecord  `json:"evidence_records,omitempty"`
}

// Evidence implements TaskResult.
func (r *AdverseMediaResult) Evidence() []EvidenceRecord { return r.EvidenceRecords }

// HasCategory reports whether the media result carries a category.
func (r *AdverseMediaResult) HasCategory(category string) bool {
	for _, c := range r.Categories {
		if c == category {
			return true
		}
	}
	return false
}

// EntityVerification is the outcome of business registry verification.
type EntityVerification struct {
	EntityName           string            `json:"entity_name"`
	VerifiedRegistration bool              `json:"verified_registration"`
	RegistrySources      []string          `json:"registry_sources,omitempty"`
	RegistrationDetails  map[string]string `json:"registration_details,omitempty"`
	UBOStructureVerified bool              `json:"ubo_structure_verified"`
	Discrepancies        []string          `json:"discrepancies,omitempty"`
	SearchQueries        []string          `json:"search_queries_executed,omitempty"`
	EvidenceRecords      []EvidenceRecord  `json:"evidence_records,omitempty"`
}

// Evidence implements TaskResult.
func (r *EntityVerification) Evidence() []EvidenceRecord { return r.EvidenceRecords }

// SanctionsProgram is an active sanctions program affecting a jurisdiction.
type SanctionsProgram struct {
	Country           string `json:"country"`
	Program           string `json:"program"`
	AdministeringBody string `json:"administering_body,omitempty"`
}

// JurisdictionDetail summarises one assessed jurisdiction.
type JurisdictionDetail struct {
	Country       string   `json:"country"`
	FATFStatus    string   `json:"fatf_status"`
	CPIScore      *float64 `json:"cpi_score,omitempty"`
	BaselAMLScore *float64 `json:"basel_aml_score,omitempty"`
}

// FATF status values used in jurisdiction details.
const (
	FATFStatusClean = "clean"
	FATFStatusGrey  = "grey_list"
	FATFStatusBlack = "black_list"
)

// JurisdictionRiskResult is the outcome of jurisdiction risk assessment.
type JurisdictionRiskResult struct {
	JurisdictionsAssessed []string             `json:"jurisdictions_assessed"`
	FATFGreyList          []string             `json:"fatf_grey_list,omitempty"`
	FATFBlackList         []string             `json:"fatf_black_list,omitempty"`
	SanctionsPrograms     []SanctionsProgram   `json:"sanctions_programs,omitempty"`
	FINTRACDirectives     []string             `json:"fintrac_directives,omitempty"`
	OverallRisk           RiskLevel            `json:"overall_jurisdiction_risk"`
	JurisdictionDetails   []JurisdictionDetail `json:"jurisdiction_details,omitempty"`
	SearchQueries         []string             `json:"search_queries_executed,omitempty"`
	EvidenceRecords       []EvidenceRecord     `json:"evidence_records,omitempty"`
}

// Evidence implements TaskResult.
func (r *JurisdictionRiskResult) Evidence() []EvidenceRecord { return r.EvidenceRecords }

// CascadeScreening holds the individual-screening results for one related party.
type CascadeScreening struct {
	Sanctions    *SanctionsResult    `json:"sanctions,omitempty"`
	PEP          *PEPClassification  `json:"pep,omitempty"`
	AdverseMedia *AdverseMediaResult `json:"adverse_media,omitempty"`
}

// Cascade scoring weights applied per related party.
const (
	CascadeSanctionsPoints = 30
	CascadePEPPoints       = 25
	CascadeMediaPoints     = 15
)

// Score derives a related-party score from the screening outcome.
func (c CascadeScreening) Score() int {
	score := 0
	if c.Sanctions != nil && c.Sanctions.Disposition != DispositionClear {
		score += CascadeSanctionsPoints
	}
	if c.PEP != nil && c.PEP.DetectedLevel.IsPEP() {
		score += CascadePEPPoints
	}
	if c.AdverseMedia != nil && c.AdverseMedia.OverallLevel != MediaClear && c.AdverseMedia.OverallLevel != "" {
		score += CascadeMediaPoints
	}
	return score
}

// InvestigationResults aggregates one typed result per dispatched task and utility.
// Cascade results are keyed by subject name; CascadeOrder keeps declaration order.
type InvestigationResults struct {
	IndividualSanctions    *SanctionsResult        `json:"individual_sanctions,omitempty"`
	PEPClassification      *PEPClassification      `json:"pep_classification,omitempty"`
	IndividualAdverseMedia *AdverseMediaResult     `json:"individual_adverse_media,omitempty"`
	EntityVerification     *EntityVerification     `json:"entity_verification,omitempty"`
	EntitySanctions        *SanctionsResult        `json:"entity_sanctions,omitempty"`
	BusinessAdverseMedia   *AdverseMediaResult     `json:"business_adverse_media,omitempty"`
	JurisdictionRisk       *JurisdictionRiskResult `json:"jurisdiction_risk,omitempty"`

	IDVerification         *IDVerificationResult       `json:"id_verification,omitempty"`
	Suitability            *SuitabilityResult          `json:"suitability_assessment,omitempty"`
	FATCACRS               *FATCACRSResult             `json:"fatca_crs,omitempty"`
	EDDRequirements        *EDDResult                  `json:"edd_requirements,omitempty"`
	ComplianceActions      *ComplianceActionsResult    `json:"compliance_actions,omitempty"`
	BusinessRiskAssessment *BusinessRiskResult         `json:"business_risk_assessment,omitempty"`
	DocumentRequirements   *DocumentRequirementsResult `json:"document_requirements,omitempty"`

	Cascade      map[string]CascadeScreening `json:"cascade,omitempty"`
	CascadeOrder []string                    `json:"cascade_order,omitempty"`
}

// PrimarySanctions returns the individual or entity sanctions result.
func (r *InvestigationResults) PrimarySanctions() *SanctionsResult {
	if r.IndividualSanctions != nil {
		return r.IndividualSanctions
	}
	return r.EntitySanctions
}

// PrimaryAdverseMedia returns the individual or business adverse media result.
func (r *InvestigationResults) PrimaryAdverseMedia() *AdverseMediaResult {
	if r.IndividualAdverseMedia != nil {
		return r.IndividualAdverseMedia
	}
	return r.BusinessAdverseMedia
}

// SanctionsResults returns every non-nil sanctions result, primary first then cascade.
func (r *InvestigationResults) SanctionsResults() []*SanctionsResult {
	var out []*SanctionsResult
	for _, s := range []*SanctionsResult{r.IndividualSanctions, r.EntitySanctions} {
		if s != nil {
			out = append(out, s)
		}
	}
	for _, name := range r.CascadeOrder {
		if s := r.Cascade[name].Sanctions; s != nil {
			out = append(out, s)
		}
	}
	return out
}

// AddCascade records a related party's screening, preserving first-seen order.
// A second party with the same name merges into the first, keeping the worse
// result of each screening so a hit on either owner is never lost.
func (r *InvestigationResults) AddCascade(subject string, screening CascadeScreening) {
	if r.Cascade == nil {
		r.Cascade = make(map[string]CascadeScreening)
	}
	prev, ok := r.Cascade[subject]
	if !ok {
		r.CascadeOrder = append(r.CascadeOrder, subject)
		r.Cascade[subject] = screening
		return
	}
	r.Cascade[subject] = CascadeScreening{
		Sanctions:    worse(prev.Sanctions, screening.Sanctions, func(s *SanctionsResult) int { return dispositionRank[s.Disposition] }),
		PEP:          worse(prev.PEP, screening.PEP, func(p *PEPClassification) int { return pepRank(p.DetectedLevel) }),
		AdverseMedia: worse(prev.AdverseMedia, screening.AdverseMedia, func(m *AdverseMediaResult) int { return mediaRank[m.OverallLevel] }),
	}
}

var (
	dispositionRank = map[Disposition]int{
		DispositionFalsePositive:  1,
		DispositionPendingReview:  2,
		DispositionPotentialMatch: 3,
		DispositionConfirmedMatch: 4,
	}
	mediaRank = map[AdverseMediaLevel]int{
		MediaLowConcern:      1,
		MediaMaterialConcern: 2,
		MediaHighRisk:        3,
	}
)

func pepRank(l PEPLevel) int {
	if l.IsPEP() {
		return 1
	}
	return 0
}

// worse returns next when it outranks cur. Ties keep cur.
func worse[T any](cur, next *T, rank func(*T) int) *T {
	if cur == nil {
		return next
	}
	if next != nil && rank(next) > rank(cur) {
		return next
	}
	return cur
}

// CascadeScores returns related-party scores in declaration order.
func (r *InvestigationResults) CascadeScores() []PartyScore {
	scores := make([]PartyScore, 0, len(r.CascadeOrder))
	for _, name := range r.CascadeOrder {
		scores = append(scores, PartyScore{Name: name, Score: r.Cascade[name].Score()})
	}
	return scores
}
