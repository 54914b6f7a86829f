package research

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/kyc-onboard/internal/core/domain"
)

// DefaultSanctionsSources are reported when a response names none.
var DefaultSanctionsSources = []string{"CSL", "OpenSanctions", "Canadian SEMA", "UN SCSL"}

// recorder builds task evidence for one subject.
type recorder struct {
	task    domain.TaskName
	subject string
	now     time.Time
}

func (r recorder) record(id, claim string, class domain.EvidenceClass, disp domain.Disposition, conf domain.Confidence, data ...map[string]any) domain.EvidenceRecord {
	return domain.EvidenceRecord{
		EvidenceID:     id,
		SourceKind:     domain.SourceTask,
		SourceName:     string(r.task),
		Subject:        r.subject,
		Claim:          claim,
		EvidenceClass:  class,
		SupportingData: data,
		Disposition:    disp,
		Confidence:     conf,
		Timestamp:      r.now,
	}
}

// unparsed is the record left when a response had no usable JSON.
func (r recorder) unparsed(prefix, what string) domain.EvidenceRecord {
	return r.record(evidenceID(prefix, r.subject, "unparsed"),
		fmt.Sprintf("%s returned no structured result", what),
		domain.EvidenceUnknown, domain.DispositionPendingReview, domain.ConfidenceLow)
}

type sanctionsMatchWire struct {
	ListName    string  `json:"list_name"`
	MatchedName string  `json:"matched_name"`
	Score       number  `json:"score"`
	Details     flexStr `json:"details"`
}

type sanctionsWire struct {
	EntityScreened       string               `json:"entity_screened"`
	ScreeningSources     []string             `json:"screening_sources"`
	Matches              []sanctionsMatchWire `json:"matches"`
	Disposition          string               `json:"disposition"`
	DispositionReasoning string               `json:"disposition_reasoning"`
	OFAC50Percent        bool                 `json:"ofac_50_percent_rule_applicable"`
	SearchQueries        []string             `json:"search_queries_executed"`
}

// parseSanctions builds a sanctions result. A missing disposition is CLEAR
// only when there are no matches; anything unrecognised is PENDING_REVIEW.
func parseSanctions(text string, rec recorder, prefix string) *domain.SanctionsResult {
	var w sanctionsWire
	if !decode(text, &w) {
		return &domain.SanctionsResult{
			EntityScreened:   rec.subject,
			ScreeningSources: DefaultSanctionsSources,
			Disposition:      domain.DispositionPendingReview,
			EvidenceRecords:  []domain.EvidenceRecord{rec.unparsed(prefix, "Sanctions screening")},
		}
	}

	disposition := domain.Disposition(strings.ToUpper(strings.TrimSpace(w.Disposition)))
	switch {
	case disposition == "" && len(w.Matches) == 0:
		disposition = domain.DispositionClear
	case !disposition.IsValid():
		disposition = domain.DispositionPendingReview
	}

	out := &domain.SanctionsResult{
		EntityScreened:              orDefault(w.EntityScreened, rec.subject),
		ScreeningSources:            w.ScreeningSources,
		Disposition:                 disposition,
		DispositionReasoning:        w.DispositionReasoning,
		OFAC50PercentRuleApplicable: w.OFAC50Percent,
		SearchQueries:               w.SearchQueries,
	}
	if len(out.ScreeningSources) == 0 {
		out.ScreeningSources = DefaultSanctionsSources
	}

	for i, m := range w.Matches {
		match := domain.SanctionsMatch{
			ListName:    orDefault(m.ListName, "unknown"),
			MatchedName: orDefault(m.MatchedName, "unknown"),
			Score:       float64(m.Score),
			Details:     string(m.Details),
		}
		out.Matches = append(out.Matches, match)
		out.EvidenceRecords = append(out.EvidenceRecords, rec.record(
			evidenceID(prefix, rec.subject, strconv.Itoa(i)),
			fmt.Sprintf("Sanctions match: %s on %s", match.MatchedName, match.ListName),
			domain.EvidenceSourced, domain.DispositionPendingReview, domain.ConfidenceMedium,
			map[string]any{"list_name": match.ListName, "matched_name": match.MatchedName, "score": match.Score, "details": match.Details},
		))
	}
	if len(out.EvidenceRecords) == 0 {
		out.EvidenceRecords = append(out.EvidenceRecords, rec.record(
			evidenceID(prefix, rec.subject, "clear"), "No sanctions matches found",
			domain.EvidenceSourced, domain.DispositionClear, domain.ConfidenceHigh,
		))
	}
	return out
}

type pepWire struct {
	EntityScreened     string                  `json:"entity_screened"`
	SelfDeclared       *bool                   `json:"self_declared"`
	DetectedLevel      string                  `json:"detected_level"`
	PositionsFound     []domain.PEPPosition    `json:"positions_found"`
	FamilyAssociations []domain.PEPAssociation `json:"family_associations"`
	EDDRequired        *bool                   `json:"edd_required"`
	SearchQueries      []string                `json:"search_queries_executed"`
}

var pepLevels = []domain.PEPLevel{
	domain.PEPNone, domain.PEPForeign, domain.PEPDomestic, domain.PEPHIO, domain.PEPFamily, domain.PEPAssociate,
}

// parsePEP builds a PEP classification and derives the EDD timeline.
func parsePEP(text string, rec recorder, selfDeclared bool) *domain.PEPClassification {
	var w pepWire
	if !decode(text, &w) {
		return &domain.PEPClassification{
			EntityScreened:  rec.subject,
			SelfDeclared:    selfDeclared,
			DetectedLevel:   domain.PEPNone,
			EvidenceRecords: []domain.EvidenceRecord{rec.unparsed("pep", "PEP screening")},
		}
	}

	level := domain.PEPNone
	for _, l := range pepLevels {
		if strings.EqualFold(strings.TrimSpace(w.DetectedLevel), string(l)) {
			level = l
		}
	}

	out := &domain.PEPClassification{
		EntityScreened:     orDefault(w.EntityScreened, rec.subject),
		SelfDeclared:       selfDeclared,
		DetectedLevel:      level,
		PositionsFound:     w.PositionsFound,
		FamilyAssociations: w.FamilyAssociations,
		EDDRequired:        level.IsPEP(),
		SearchQueries:      w.SearchQueries,
	}
	if w.SelfDeclared != nil {
		out.SelfDeclared = *w.SelfDeclared
	}
	if w.EDDRequired != nil {
		out.EDDRequired = *w.EDDRequired
	}
	out.EDDPermanent, out.EDDExpiryDate = EDDTimeline(level, w.PositionsFound)

	if !level.IsPEP() {
		out.EvidenceRecords = []domain.EvidenceRecord{rec.record(
			evidenceID("pep", rec.subject, "clear"), "No PEP status detected",
			domain.EvidenceSourced, domain.DispositionClear, domain.ConfidenceHigh,
		)}
		return out
	}
	for i, pos := range w.PositionsFound {
		out.EvidenceRecords = append(out.EvidenceRecords, rec.record(
			evidenceID("pep", rec.subject, strconv.Itoa(i)),
			fmt.Sprintf("PEP position: %s at %s", orDefault(pos.Position, "unknown"), orDefault(pos.Organization, "unknown")),
			domain.EvidenceSourced, domain.DispositionPendingReview, domain.ConfidenceMedium,
			map[string]any{"position": pos.Position, "organization": pos.Organization, "dates": pos.Dates, "source": pos.Source},
		))
	}
	if len(out.EvidenceRecords) == 0 {
		out.EvidenceRecords = append(out.EvidenceRecords, rec.record(
			evidenceID("pep", rec.subject, "level"),
			fmt.Sprintf("PEP classification %s without a cited position", level),
			domain.EvidenceInferred, domain.DispositionPendingReview, domain.ConfidenceLow,
		))
	}
	return out
}

var yearPattern = regexp.MustCompile(`20\d{2}`)

// EDDTimeline returns whether enhanced due diligence is permanent and, for
// former domestic PEPs and HIOs, the date it lapses: five years after the
// latest year a position was held.
func EDDTimeline(level domain.PEPLevel, positions []domain.PEPPosition) (bool, string) {
	switch level {
	case domain.PEPForeign, domain.PEPFamily, domain.PEPAssociate:
		return true, ""
	case domain.PEPDomestic, domain.PEPHIO:
	default:
		return false, ""
	}

	latest := 0
	for _, pos := range positions {
		dates := strings.ToLower(pos.Dates)
		if strings.Contains(dates, "present") || strings.Contains(dates, "current") {
			return true, ""
		}
		for _, y := range yearPattern.FindAllString(dates, -1) {
			if n, _ := strconv.Atoi(y); n > latest {
				latest = n
			}
		}
	}
	if latest == 0 {
		return false, ""
	}
	return false, fmt.Sprintf("%d-01-01", latest+5)
}

type mediaWire struct {
	EntityScreened string                `json:"entity_screened"`
	OverallLevel   string                `json:"overall_level"`
	ArticlesFound  []domain.MediaArticle `json:"articles_found"`
	Categories     []string              `json:"categories"`
	SearchQueries  []string              `json:"search_queries_executed"`
}

var mediaLevels = []domain.AdverseMediaLevel{
	domain.MediaClear, domain.MediaLowConcern, domain.MediaMaterialConcern, domain.MediaHighRisk,
}

// parseMedia builds an adverse media result. An unreadable response keeps
// the level CLEAR but leaves an unknown-class record for review.
func parseMedia(text string, rec recorder, prefix, claimPrefix string) *domain.AdverseMediaResult {
	var w mediaWire
	if !decode(text, &w) {
		return &domain.AdverseMediaResult{
			EntityScreened:  rec.subject,
			OverallLevel:    domain.MediaClear,
			EvidenceRecords: []domain.EvidenceRecord{rec.unparsed(prefix, "Adverse media screening")},
		}
	}

	level := domain.MediaClear
	for _, l := range mediaLevels {
		if strings.EqualFold(strings.TrimSpace(w.OverallLevel), string(l)) {
			level = l
		}
	}

	out := &domain.AdverseMediaResult{
		EntityScreened: orDefault(w.EntityScreened, rec.subject),
		OverallLevel:   level,
		ArticlesFound:  w.ArticlesFound,
		Categories:     w.Categories,
		SearchQueries:  w.SearchQueries,
	}
	for i, a := range w.ArticlesFound {
		out.EvidenceRecords = append(out.EvidenceRecords, rec.record(
			evidenceID(prefix, rec.subject, strconv.Itoa(i)),
			fmt.Sprintf("%s: %s", claimPrefix, orDefault(a.Title, "Unknown")),
			domain.EvidenceSourced, domain.DispositionPendingReview, domain.ConfidenceMedium,
			map[string]any{"title": a.Title, "source": a.Source, "date": a.Date, "url": a.URL, "category": a.Category, "source_tier": a.SourceTier},
		))
	}
	if len(out.EvidenceRecords) == 0 {
		out.EvidenceRecords = append(out.EvidenceRecords, rec.record(
			evidenceID(prefix, rec.subject, "clear"), "No adverse media found",
			domain.EvidenceSourced, domain.DispositionClear, domain.ConfidenceHigh,
		))
	}
	return out
}

type entityWire struct {
	EntityName           string            `json:"entity_name"`
	VerifiedRegistration bool              `json:"verified_registration"`
	RegistrySources      []string          `json:"registry_sources"`
	RegistrationDetails  map[string]string `json:"registration_details"`
	UBOStructureVerified bool              `json:"ubo_structure_verified"`
	Discrepancies        []string          `json:"discrepancies"`
	SearchQueries        []string          `json:"search_queries_executed"`
}

// parseEntity builds a registry verification. Unverified is the default.
func parseEntity(text string, rec recorder) *domain.EntityVerification {
	var w entityWire
	if !decode(text, &w) {
		return &domain.EntityVerification{
			EntityName:      rec.subject,
			EvidenceRecords: []domain.EvidenceRecord{rec.unparsed("ev_reg", "Registry verification")},
		}
	}

	out := &domain.EntityVerification{
		EntityName:           orDefault(w.EntityName, rec.subject),
		VerifiedRegistration: w.VerifiedRegistration,
		RegistrySources:      w.RegistrySources,
		RegistrationDetails:  w.RegistrationDetails,
		UBOStructureVerified: w.UBOStructureVerified,
		Discrepancies:        w.Discrepancies,
		SearchQueries:        w.SearchQueries,
	}

	details := make(map[string]any, len(w.RegistrationDetails))
	for k, v := range w.RegistrationDetails {
		details[k] = v
	}
	if w.VerifiedRegistration {
		out.EvidenceRecords = append(out.EvidenceRecords, rec.record(
			evidenceID("ev_reg", rec.subject, "0"), "Entity registration: Verified",
			domain.EvidenceSourced, domain.DispositionClear, domain.ConfidenceHigh, details,
		))
	} else {
		out.EvidenceRecords = append(out.EvidenceRecords, rec.record(
			evidenceID("ev_reg", rec.subject, "0"), "Entity registration: Not verified",
			domain.EvidenceUnknown, domain.DispositionPendingReview, domain.ConfidenceLow, details,
		))
	}
	for i, d := range w.Discrepancies {
		out.EvidenceRecords = append(out.EvidenceRecords, rec.record(
			evidenceID("ev_disc", rec.subject, strconv.Itoa(i)), "Discrepancy: "+d,
			domain.EvidenceSourced, domain.DispositionPendingReview, domain.ConfidenceMedium,
		))
	}
	return out
}

type jurisdictionWire struct {
	JurisdictionsAssessed []string                    `json:"jurisdictions_assessed"`
	FATFGreyList          []string                    `json:"fatf_grey_list"`
	FATFBlackList         []string                    `json:"fatf_black_list"`
	SanctionsPrograms     []domain.SanctionsProgram   `json:"sanctions_programs"`
	FINTRACDirectives     []string                    `json:"fintrac_directives"`
	OverallRisk           string                      `json:"overall_jurisdiction_risk"`
	JurisdictionDetails   []domain.JurisdictionDetail `json:"jurisdiction_details"`
	SearchQueries         []string                    `json:"search_queries_executed"`
}

// parseJurisdiction builds a jurisdiction result. It returns false when the
// response is unusable so the caller can assess from the reference lists.
func parseJurisdiction(text string, countries []string, now time.Time) (*domain.JurisdictionRiskResult, bool) {
	var w jurisdictionWire
	if !decode(text, &w) {
		return nil, false
	}

	level := domain.RiskLow
	for _, l := range []domain.RiskLevel{domain.RiskLow, domain.RiskMedium, domain.RiskHigh, domain.RiskCritical} {
		if strings.EqualFold(strings.TrimSpace(w.OverallRisk), string(l)) {
			level = l
		}
	}

	assessed := w.JurisdictionsAssessed
	if len(assessed) == 0 {
		assessed = countries
	}
	out := &domain.JurisdictionRiskResult{
		JurisdictionsAssessed: assessed,
		FATFGreyList:          w.FATFGreyList,
		FATFBlackList:         w.FATFBlackList,
		SanctionsPrograms:     w.SanctionsPrograms,
		FINTRACDirectives:     w.FINTRACDirectives,
		OverallRisk:           level,
		JurisdictionDetails:   w.JurisdictionDetails,
		SearchQueries:         w.SearchQueries,
	}
	if len(out.JurisdictionDetails) == 0 {
		out.JurisdictionDetails = listedDetails(assessed, w.FATFGreyList, w.FATFBlackList)
	}
	out.EvidenceRecords = jurisdictionEvidence(assessed, w.FATFGreyList, w.FATFBlackList, programCountries(w.SanctionsPrograms), now)
	return out, true
}

func listedDetails(countries, grey, black []string) []domain.JurisdictionDetail {
	details := make([]domain.JurisdictionDetail, 0, len(countries))
	for _, c := range countries {
		status := domain.FATFStatusClean
		switch {
		case containsFold(black, c):
			status = domain.FATFStatusBlack
		case containsFold(grey, c):
			status = domain.FATFStatusGrey
		}
		details = append(details, domain.JurisdictionDetail{Country: c, FATFStatus: status})
	}
	return details
}

func programCountries(programs []domain.SanctionsProgram) []string {
	var out []string
	for _, p := range programs {
		if p.Country != "" && !containsFold(out, p.Country) {
			out = append(out, p.Country)
		}
	}
	return out
}

func jurisdictionEvidence(countries, grey, black, sanctioned []string, now time.Time) []domain.EvidenceRecord {
	rec := recorder{task: domain.TaskJurisdictionRisk, now: now}
	var out []domain.EvidenceRecord
	for _, c := range grey {
		rec.subject = c
		out = append(out, rec.record("jur_grey_"+domain.ClientID(c),
			c+" is on FATF grey list (increased monitoring)",
			domain.EvidenceSourced, domain.DispositionPendingReview, domain.ConfidenceHigh))
	}
	for _, c := range black {
		rec.subject = c
		out = append(out, rec.record("jur_black_"+domain.ClientID(c),
			c+" is on FATF black list (call for action)",
			domain.EvidenceVerified, domain.DispositionPendingReview, domain.ConfidenceHigh))
	}
	for _, c := range sanctioned {
		rec.subject = c
		out = append(out, rec.record("jur_sanctions_"+domain.ClientID(c),
			c+" is subject to an active sanctions program",
			domain.EvidenceSourced, domain.DispositionPendingReview, domain.ConfidenceHigh))
	}
	if len(out) == 0 {
		rec.subject = orDefault(strings.Join(countries, ", "), notProvided)
		out = append(out, rec.record("jur_clear", "All jurisdictions assessed as standard risk",
			domain.EvidenceSourced, domain.DispositionClear, domain.ConfidenceHigh))
	}
	return out
}

func containsFold(list []string, v string) bool {
	for _, s := range list {
		if strings.EqualFold(strings.TrimSpace(s), strings.TrimSpace(v)) {
			return true
		}
	}
	return false
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

// number accepts a JSON number or a numeric string.
type number float64

func (n *number) UnmarshalJSON(data []byte) error {
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*n = number(f)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return nil
	}
	f, _ = strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(s), "%"), 64)
	if f > 1 {
		f /= 100
	}
	*n = number(f)
	return nil
}

// flexStr accepts a JSON string or any other value, kept as compact JSON.
type flexStr string

func (f *flexStr) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexStr(s)
		return nil
	}
	if string(data) == "null" {
		return nil
	}
	*f = flexStr(data)
	return nil
}
