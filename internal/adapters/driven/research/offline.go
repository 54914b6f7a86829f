package research

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/kyc-onboard/internal/adapters/driven/screening/csl"
	"github.com/custodia-labs/kyc-onboard/internal/core/domain"
	"github.com/custodia-labs/kyc-onboard/internal/core/ports/driven"
)

// Ensure Offline implements the interface.
var _ driven.Investigator = (*Offline)(nil)

const (
	offlineHitLimit   = 10
	entityType        = "Entity"
	individualType    = "Individual"
	ofacControlMinPct = 50
)

// Offline screens names against a local screening list and assesses
// countries from the built-in reference lists. Work it cannot do without a
// model is recorded as unknown evidence pending review.
type Offline struct {
	list      driven.ScreeningList
	threshold float64
	clock     func() time.Time
}

// NewOffline creates an offline investigator. A zero threshold uses the
// default match threshold.
func NewOffline(list driven.ScreeningList, threshold float64, clock func() time.Time) *Offline {
	if threshold <= 0 {
		threshold = domain.DefaultMatchThreshold
	}
	if clock == nil {
		clock = time.Now
	}
	return &Offline{list: list, threshold: threshold, clock: clock}
}

// IndividualSanctions screens a person against the list.
func (o *Offline) IndividualSanctions(ctx context.Context, q driven.PersonQuery) (*domain.SanctionsResult, error) {
	rec := recorder{task: domain.TaskIndividualSanctions, subject: q.FullName, now: o.clock()}
	hits, err := o.search(ctx, q.FullName, individualType)
	if err != nil {
		return nil, err
	}
	out := o.sanctionsResult(q.FullName)
	o.addHits(out, rec, "san_ind", hits)
	o.finish(out, rec, "san_ind")
	return out, nil
}

// EntitySanctions screens the business and each declared owner. A potential
// match on an owner holding half or more of the entity flags the OFAC 50
// percent rule.
func (o *Offline) EntitySanctions(ctx context.Context, q driven.EntityQuery) (*domain.SanctionsResult, error) {
	rec := recorder{task: domain.TaskEntitySanctions, subject: q.LegalName, now: o.clock()}
	hits, err := o.search(ctx, q.LegalName, entityType)
	if err != nil {
		return nil, err
	}
	out := o.sanctionsResult(q.LegalName)
	o.addHits(out, rec, "san_ent", hits)

	for _, owner := range q.Owners {
		ownerHits, err := o.search(ctx, owner.FullName, individualType)
		if err != nil {
			return nil, err
		}
		out.SearchQueries = append(out.SearchQueries, owner.FullName)
		ownerRec := rec
		ownerRec.subject = owner.FullName
		o.addHits(out, ownerRec, "san_ent_owner", ownerHits)
		if owner.OwnershipPercentage >= ofacControlMinPct && hasPotentialMatch(ownerHits) {
			out.OFAC50PercentRuleApplicable = true
		}
	}
	o.finish(out, rec, "san_ent")
	return out, nil
}

// PEPDetection relies on the client's own declaration.
func (o *Offline) PEPDetection(_ context.Context, q driven.PEPQuery) (*domain.PEPClassification, error) {
	rec := recorder{task: domain.TaskPEPDetection, subject: q.FullName, now: o.clock()}
	out := &domain.PEPClassification{
		EntityScreened: q.FullName,
		SelfDeclared:   q.SelfDeclared,
		DetectedLevel:  domain.PEPNone,
	}
	if !q.SelfDeclared {
		out.EvidenceRecords = []domain.EvidenceRecord{rec.record(
			evidenceID("pep", q.FullName, "offline"), "PEP status not researched; no self-declaration",
			domain.EvidenceUnknown, domain.DispositionPendingReview, domain.ConfidenceLow,
		)}
		return out, nil
	}

	out.DetectedLevel = declaredLevel(q.Details)
	out.EDDRequired = true
	out.EDDPermanent, out.EDDExpiryDate = EDDTimeline(out.DetectedLevel, nil)
	out.EvidenceRecords = []domain.EvidenceRecord{rec.record(
		evidenceID("pep", q.FullName, "declared"),
		fmt.Sprintf("Self-declared PEP classified as %s", out.DetectedLevel),
		domain.EvidenceInferred, domain.DispositionPendingReview, domain.ConfidenceMedium,
		map[string]any{"declaration": q.Details},
	)}
	return out, nil
}

// declaredLevel maps a self-declaration to a level, checking for heads of
// international organisations before the generic international keyword.
func declaredLevel(details string) domain.PEPLevel {
	d := strings.ToLower(details)
	switch {
	case strings.Contains(d, "head of international") || strings.Contains(d, "hio"):
		return domain.PEPHIO
	case strings.Contains(d, "foreign") || strings.Contains(d, "international"):
		return domain.PEPForeign
	default:
		return domain.PEPDomestic
	}
}

// IndividualAdverseMedia cannot search news offline.
func (o *Offline) IndividualAdverseMedia(_ context.Context, q driven.PersonQuery) (*domain.AdverseMediaResult, error) {
	return o.noMedia(domain.TaskIndividualAdverseMedia, q.FullName, "adv_ind"), nil
}

// BusinessAdverseMedia cannot search news offline.
func (o *Offline) BusinessAdverseMedia(_ context.Context, q driven.EntityQuery) (*domain.AdverseMediaResult, error) {
	return o.noMedia(domain.TaskBusinessAdverseMedia, q.LegalName, "adv_biz"), nil
}

func (o *Offline) noMedia(task domain.TaskName, subject, prefix string) *domain.AdverseMediaResult {
	rec := recorder{task: task, subject: subject, now: o.clock()}
	return &domain.AdverseMediaResult{
		EntityScreened: subject,
		OverallLevel:   domain.MediaClear,
		EvidenceRecords: []domain.EvidenceRecord{rec.record(
			evidenceID(prefix, subject, "offline"), "Adverse media not searched in offline mode",
			domain.EvidenceUnknown, domain.DispositionPendingReview, domain.ConfidenceLow,
		)},
	}
}

// EntityVerification cannot reach registries offline.
func (o *Offline) EntityVerification(_ context.Context, q driven.EntityQuery) (*domain.EntityVerification, error) {
	rec := recorder{task: domain.TaskEntityVerification, subject: q.LegalName, now: o.clock()}
	return &domain.EntityVerification{
		EntityName: q.LegalName,
		EvidenceRecords: []domain.EvidenceRecord{rec.record(
			evidenceID("ev_reg", q.LegalName, "offline"), "Entity registration: Not verified (offline mode)",
			domain.EvidenceUnknown, domain.DispositionPendingReview, domain.ConfidenceLow,
			map[string]any{"jurisdiction": q.Jurisdiction, "business_number": q.BusinessNumber},
		)},
	}, nil
}

// JurisdictionRisk assesses countries from the reference lists.
func (o *Offline) JurisdictionRisk(_ context.Context, jurisdictions []string) (*domain.JurisdictionRiskResult, error) {
	return AssessJurisdictions(jurisdictions, o.clock()), nil
}

// AssessJurisdictions grades countries against the built-in FATF and OFAC
// lists: any black-listed country is CRITICAL, a sanctioned one HIGH and a
// grey-listed one MEDIUM.
func AssessJurisdictions(countries []string, now time.Time) *domain.JurisdictionRiskResult {
	out := &domain.JurisdictionRiskResult{
		JurisdictionsAssessed: countries,
		OverallRisk:           domain.RiskLow,
	}
	var sanctioned []string
	for _, c := range countries {
		switch {
		case domain.IsFATFBlackListed(c):
			out.FATFBlackList = append(out.FATFBlackList, c)
		case domain.IsFATFGreyListed(c):
			out.FATFGreyList = append(out.FATFGreyList, c)
		}
		if domain.IsOFACSanctioned(c) {
			sanctioned = append(sanctioned, c)
			out.SanctionsPrograms = append(out.SanctionsPrograms, domain.SanctionsProgram{
				Country: c, Program: "Country sanctions program", AdministeringBody: "OFAC",
			})
		}
	}

	switch {
	case len(out.FATFBlackList) > 0:
		out.OverallRisk = domain.RiskCritical
	case len(sanctioned) > 0:
		out.OverallRisk = domain.RiskHigh
	case len(out.FATFGreyList) > 0:
		out.OverallRisk = domain.RiskMedium
	}
	out.JurisdictionDetails = listedDetails(countries, out.FATFGreyList, out.FATFBlackList)
	out.EvidenceRecords = jurisdictionEvidence(countries, out.FATFGreyList, out.FATFBlackList, sanctioned, now)
	return out
}

func (o *Offline) search(ctx context.Context, name, kind string) ([]driven.ScreeningHit, error) {
	if o.list == nil {
		return nil, fmt.Errorf("%w: no screening list configured", domain.ErrInvalidInput)
	}
	hits, err := o.list.Search(ctx, name, driven.ScreeningOptions{
		EntityType: kind,
		Threshold:  o.threshold,
		Limit:      offlineHitLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("screen %q: %w", name, err)
	}
	return hits, nil
}

func (o *Offline) sanctionsResult(subject string) *domain.SanctionsResult {
	return &domain.SanctionsResult{
		EntityScreened:   subject,
		ScreeningSources: o.list.Sources(),
		SearchQueries:    []string{subject},
	}
}

// addHits records each hit as a match and an evidence record.
func (o *Offline) addHits(out *domain.SanctionsResult, rec recorder, prefix string, hits []driven.ScreeningHit) {
	for i, h := range hits {
		class := csl.Classify(h.Score, o.threshold)
		out.Matches = append(out.Matches, domain.SanctionsMatch{
			ListName:    h.Source,
			MatchedName: h.MatchedName,
			Score:       h.Score,
			Details:     hitDetails(h, class),
		})
		disposition, confidence := domain.DispositionPendingReview, domain.ConfidenceLow
		if class == csl.ClassPotentialMatch {
			disposition, confidence = domain.DispositionPotentialMatch, domain.ConfidenceMedium
		}
		out.EvidenceRecords = append(out.EvidenceRecords, rec.record(
			evidenceID(prefix, rec.subject, strconv.Itoa(i)),
			fmt.Sprintf("Sanctions match: %s on %s", h.MatchedName, h.Source),
			domain.EvidenceSourced, disposition, confidence,
			map[string]any{
				"matched_name":   h.MatchedName,
				"list_name":      h.Source,
				"score":          h.Score,
				"classification": class,
				"programs":       h.Programs,
				"countries":      h.Countries,
			},
		))
	}
}

// finish sets the overall disposition from the matches found.
func (o *Offline) finish(out *domain.SanctionsResult, rec recorder, prefix string) {
	switch {
	case len(out.Matches) == 0:
		out.Disposition = domain.DispositionClear
		out.DispositionReasoning = fmt.Sprintf("No list entries at or above %.2f similarity", o.threshold)
		out.EvidenceRecords = append(out.EvidenceRecords, rec.record(
			evidenceID(prefix, rec.subject, "clear"), "No sanctions matches found",
			domain.EvidenceSourced, domain.DispositionClear, domain.ConfidenceMedium,
		))
	case anyMatchAbove(out.Matches, csl.PotentialMatchScore):
		out.Disposition = domain.DispositionPotentialMatch
		out.DispositionReasoning = "Name similarity at or above 0.95 requires secondary identifier review"
	default:
		out.Disposition = domain.DispositionPendingReview
		out.DispositionReasoning = "Similar names found; compare date of birth and citizenship"
	}
}

func hasPotentialMatch(hits []driven.ScreeningHit) bool {
	for _, h := range hits {
		if h.Score >= csl.PotentialMatchScore {
			return true
		}
	}
	return false
}

func anyMatchAbove(matches []domain.SanctionsMatch, score float64) bool {
	for _, m := range matches {
		if m.Score >= score {
			return true
		}
	}
	return false
}

func hitDetails(h driven.ScreeningHit, class string) string {
	parts := []string{class}
	if h.EntityType != "" {
		parts = append(parts, h.EntityType)
	}
	if len(h.Programs) > 0 {
		parts = append(parts, "programs: "+strings.Join(h.Programs, ", "))
	}
	if len(h.Countries) > 0 {
		parts = append(parts, "country: "+strings.Join(h.Countries, ", "))
	}
	if h.Remarks != "" {
		parts = append(parts, h.Remarks)
	}
	return strings.Join(parts, "; ")
}
