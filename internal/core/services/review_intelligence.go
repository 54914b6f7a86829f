package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/custodia-labs/kyc-onboard/internal/core/domain"
	"github.com/custodia-labs/kyc-onboard/internal/core/ports/driven"
	"github.com/custodia-labs/kyc-onboard/internal/core/ports/driving"
	"github.com/custodia-labs/kyc-onboard/internal/logger"
)

// Ensure ReviewIntelligence implements the interface.
var _ driving.ReviewIntelligenceService = (*ReviewIntelligence)(nil)

const (
	maxDiscussionPoints      = 15
	decisionConfidenceFloor  = 0.7
	falsePositiveScoreFloor  = 0.85
	jurisdictionClusterMin   = 3
	industryClusterMin       = 3
	regulationSurgeMin       = 5
	riskTrendIncreaseFactor  = 1.25
	synthesisSourceName      = "KYCSynthesis"
	categorySanctionsEvasion = "sanctions_evasion"
)

var (
	politicalKeywords      = []string{"political", "government", "corruption", "bribery"}
	financialCrimeKeywords = []string{"money_laundering", "money laundering", "financial_crime", "fraud", "embezzlement", "tax_evasion"}
	opacityKeywords        = []string{"opaque", "unclear", "unverified", "not verified", "discrepanc"}
)

// ReviewIntelligence runs the deterministic analysis between synthesis and review.
type ReviewIntelligence struct {
	caseLog driven.CaseLog
	config  domain.PipelineConfig
}

// NewReviewIntelligence creates the engine. A nil case log disables batch analytics.
func NewReviewIntelligence(caseLog driven.CaseLog, config domain.PipelineConfig) *ReviewIntelligence {
	if config.BatchWindow <= 0 {
		config.BatchWindow = domain.DefaultPipelineConfig().BatchWindow
	}
	return &ReviewIntelligence{caseLog: caseLog, config: config}
}

// Analyze computes all five facets, then appends this case to the case log.
func (ri *ReviewIntelligence) Analyze(ctx context.Context, in driving.ReviewInput) (*domain.ReviewIntelligence, error) {
	inv := in.Investigation
	if inv == nil {
		inv = &domain.InvestigationResults{}
	}

	out := &domain.ReviewIntelligence{
		DiscussionPoints:   DiscussionPoints(in.Evidence, in.Synthesis),
		Contradictions:     DetectContradictions(in.Synthesis, inv),
		Confidence:         AssessConfidence(in.Evidence),
		RegulatoryMappings: MapRegulations(in.Evidence, inv),
	}

	patterns, err := ri.Patterns(ctx)
	if err != nil {
		logger.Warn("Batch analytics unavailable: %v", err)
		patterns = domain.BatchAnalytics{Patterns: []domain.BatchPattern{}}
	}
	out.BatchAnalytics = patterns

	if ri.caseLog != nil {
		sig := ri.signature(in, out)
		if err := ri.caseLog.Append(ctx, sig); err != nil {
			logger.Warn("Failed to record case signature for %s: %v", sig.ClientID, err)
		} else {
			logger.Debug("Recorded case signature for %s", sig.ClientID)
		}
	}

	return out, nil
}

// Patterns detects cross-case patterns over the configured rolling window.
func (ri *ReviewIntelligence) Patterns(ctx context.Context) (domain.BatchAnalytics, error) {
	empty := domain.BatchAnalytics{Patterns: []domain.BatchPattern{}}
	if ri.caseLog == nil {
		return empty, nil
	}

	now := ri.config.Clock()
	cutoff := now.Add(-ri.config.BatchWindow)
	prevCutoff := cutoff.Add(-ri.config.BatchWindow)

	sigs, err := ri.caseLog.Since(ctx, prevCutoff)
	if err != nil {
		return empty, fmt.Errorf("read case log: %w", err)
	}

	var current, previous []domain.CaseSignature
	for _, s := range sigs {
		if s.Timestamp.Before(cutoff) {
			previous = append(previous, s)
		} else {
			current = append(current, s)
		}
	}
	return BatchPatterns(current, previous), nil
}

func (ri *ReviewIntelligence) signature(in driving.ReviewInput, out *domain.ReviewIntelligence) domain.CaseSignature {
	risk := in.Plan.PreliminaryRisk
	if in.Synthesis != nil && in.Synthesis.RevisedRiskAssessment != nil {
		risk = *in.Synthesis.RevisedRiskAssessment
	}

	sig := domain.CaseSignature{
		ClientID:             in.Plan.ClientID,
		Timestamp:            ri.config.Clock(),
		RiskLevel:            risk.RiskLevel,
		RiskScore:            risk.TotalScore,
		ClientType:           in.Plan.ClientType,
		RegulationsTriggered: in.Plan.RegulationNames(),
		ConfidenceGrade:      out.Confidence.Grade,
		ContradictionsCount:  len(out.Contradictions),
	}
	if in.Investigation != nil && in.Investigation.JurisdictionRisk != nil {
		sig.Jurisdictions = append(sig.Jurisdictions, in.Investigation.JurisdictionRisk.JurisdictionsAssessed...)
	}
	if in.Client.Business != nil && in.Client.Business.Industry != "" {
		sig.Industries = []string{in.Client.Business.Industry}
	}
	return sig
}

// DiscussionPoints flags evidence and synthesis items needing officer attention,
// most severe first, capped at fifteen.
func DiscussionPoints(evidence []domain.EvidenceRecord, synthesis *domain.SynthesisOutput) []domain.DiscussionPoint {
	var points []domain.DiscussionPoint
	add := func(p domain.DiscussionPoint) {
		p.PointID = fmt.Sprintf("CDP-%03d", len(points)+1)
		points = append(points, p)
	}

	for _, er := range evidence {
		claim := truncate(er.Claim, 80)
		ids := []string{er.EvidenceID}
		sources := []string{er.SourceName}

		if er.Disposition.IsMatch() && er.Confidence != domain.ConfidenceHigh {
			add(domain.DiscussionPoint{
				Title:    "Match with low confidence: " + claim,
				Severity: domain.SeverityCritical,
				Reason: fmt.Sprintf("Disposition is %s but confidence is only %s. Requires manual verification before proceeding.",
					er.Disposition, er.Confidence),
				EvidenceIDs:       ids,
				SourceNames:       sources,
				RecommendedAction: "Verify match through primary sources; consider requesting additional documentation",
			})
		}

		if er.EvidenceClass.IsWeak() && er.Disposition != domain.DispositionClear && er.Disposition != domain.DispositionFalsePositive {
			severity := domain.SeverityHigh
			if er.Disposition == domain.DispositionPendingReview {
				severity = domain.SeverityMedium
			}
			add(domain.DiscussionPoint{
				Title:    "Weak evidence for non-clear disposition: " + claim,
				Severity: severity,
				Reason: fmt.Sprintf("Evidence level is [%s] but disposition is %s. Finding lacks strong source support.",
					er.EvidenceClass, er.Disposition),
				EvidenceIDs:       ids,
				SourceNames:       sources,
				RecommendedAction: "Seek corroborating evidence from primary sources",
			})
		}

		if er.Disposition == domain.DispositionClear && er.Confidence == domain.ConfidenceLow {
			add(domain.DiscussionPoint{
				Title:             "Low-confidence clearance: " + claim,
				Severity:          domain.SeverityAdvisory,
				Reason:            "Disposition is CLEAR but confidence is LOW. The clearance might be premature.",
				EvidenceIDs:       ids,
				SourceNames:       sources,
				RecommendedAction: "Review supporting evidence; confirm clearance is warranted",
			})
		}
	}

	if synthesis != nil {
		for _, dp := range synthesis.DecisionPoints {
			if dp.Confidence >= decisionConfidenceFloor {
				continue
			}
			var ids []string
			if dp.CounterArgument.EvidenceID != "" {
				ids = []string{dp.CounterArgument.EvidenceID}
			}
			add(domain.DiscussionPoint{
				Title:    "Low-confidence decision: " + dp.Title,
				Severity: domain.SeverityCritical,
				Reason: fmt.Sprintf("Decision point confidence is %.0f%%, below 70%% threshold. Context: %s",
					dp.Confidence*100, truncate(dp.ContextSummary, 100)),
				EvidenceIDs:       ids,
				RecommendedAction: "Review counter-arguments carefully before selecting disposition",
			})
		}
		for _, item := range synthesis.ItemsRequiringReview {
			add(domain.DiscussionPoint{
				Title:             "Synthesis flagged: " + truncate(item, 60),
				Severity:          domain.SeverityHigh,
				Reason:            "The synthesis pass explicitly flagged this for officer review.",
				SourceNames:       []string{synthesisSourceName},
				RecommendedAction: "Address before finalizing decision",
			})
		}
		for _, el := range synthesis.RiskElevations {
			factor := el.Factor
			if factor == "" {
				factor = "Unknown factor"
			}
			add(domain.DiscussionPoint{
				Title:             "Risk elevation: " + factor,
				Severity:          domain.SeverityHigh,
				Reason:            "Synthesis discovered additional risk: " + el.Reasoning,
				EvidenceIDs:       nonEmpty(el.EvidenceID),
				SourceNames:       []string{synthesisSourceName},
				RecommendedAction: "Evaluate whether risk score adjustment is warranted",
			})
		}
	}

	// Equal severities keep the order they were raised in.
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Severity.Rank() < points[j].Severity.Rank()
	})

	if len(points) > maxDiscussionPoints {
		points = points[:maxDiscussionPoints]
	}
	if points == nil {
		points = []domain.DiscussionPoint{}
	}
	return points
}

// DetectContradictions imports declared conflicts and applies the cross-source rules.
func DetectContradictions(synthesis *domain.SynthesisOutput, inv *domain.InvestigationResults) []domain.Contradiction {
	out := []domain.Contradiction{}
	add := func(c domain.Contradiction) {
		c.ContradictionID = fmt.Sprintf("CTR-%03d", len(out)+1)
		out = append(out, c)
	}

	if synthesis != nil {
		for _, c := range synthesis.Contradictions {
			add(domain.Contradiction{
				FindingA:           orDefault(c.Finding1, "Unknown"),
				FindingB:           orDefault(c.Finding2, "Unknown"),
				SourceA:            orDefault(c.AgentA, "Synthesis"),
				SourceB:            orDefault(c.AgentB, "Synthesis"),
				Severity:           domain.SeverityHigh,
				ResolutionGuidance: orDefault(c.Resolution, "Review both findings"),
			})
		}
	}

	sanctions, sanctionsSource := inv.IndividualSanctions, string(domain.TaskIndividualSanctions)
	if sanctions == nil {
		sanctions, sanctionsSource = inv.EntitySanctions, string(domain.TaskEntitySanctions)
	}
	media, mediaSource := inv.IndividualAdverseMedia, string(domain.TaskIndividualAdverseMedia)
	if media == nil {
		media, mediaSource = inv.BusinessAdverseMedia, string(domain.TaskBusinessAdverseMedia)
	}

	if sanctions != nil && media != nil &&
		sanctions.Disposition == domain.DispositionClear && media.HasCategory(categorySanctionsEvasion) {
		add(domain.Contradiction{
			FindingA:    "Sanctions screening: CLEAR",
			FindingB:    "Adverse media reports sanctions evasion activity",
			SourceA:     sanctionsSource,
			SourceB:     mediaSource,
			EvidenceIDs: evidenceIDs(sanctions.EvidenceRecords, media.EvidenceRecords),
			Severity:    domain.SeverityCritical,
			ResolutionGuidance: "Sanctions evasion media contradicts clear sanctions screening. " +
				"Re-screen against secondary lists and consider STR filing.",
		})
	}

	if sanctions != nil && sanctions.Disposition == domain.DispositionFalsePositive {
		for _, m := range sanctions.Matches {
			if m.Score <= falsePositiveScoreFloor {
				continue
			}
			add(domain.Contradiction{
				FindingA:    fmt.Sprintf("Sanctions match scored %.2f (high similarity)", m.Score),
				FindingB:    "Disposition marked as FALSE_POSITIVE",
				SourceA:     sanctionsSource,
				SourceB:     sanctionsSource,
				EvidenceIDs: evidenceIDs(sanctions.EvidenceRecords),
				Severity:    domain.SeverityHigh,
				ResolutionGuidance: "High match score contradicts FALSE_POSITIVE disposition. " +
					"Residual risk remains. Verify with additional identity documents.",
			})
			break
		}
	}

	if pep := inv.PEPClassification; pep != nil && pep.DetectedLevel == domain.PEPNone && media != nil {
		var political []string
		for _, c := range media.Categories {
			if containsAny(strings.ToLower(c), politicalKeywords...) {
				political = append(political, c)
			}
		}
		if len(political) > 0 {
			add(domain.Contradiction{
				FindingA:    "PEP classification: NOT_PEP",
				FindingB:    "Adverse media references political activity: " + strings.Join(political, ", "),
				SourceA:     string(domain.TaskPEPDetection),
				SourceB:     mediaSource,
				EvidenceIDs: evidenceIDs(pep.EvidenceRecords, media.EvidenceRecords),
				Severity:    domain.SeverityHigh,
				ResolutionGuidance: "Media references to political positions may indicate undisclosed PEP status. " +
					"Re-evaluate PEP classification with additional screening.",
			})
		}
	}

	if ev := inv.EntityVerification; ev != nil {
		for _, d := range ev.Discrepancies {
			add(domain.Contradiction{
				FindingA:           "Entity verification discrepancy: " + truncate(d, 80),
				FindingB:           "Other findings on same entity",
				SourceA:            string(domain.TaskEntityVerification),
				SourceB:            "Multiple",
				Severity:           domain.SeverityMedium,
				ResolutionGuidance: "Verify entity details against primary registry sources.",
			})
		}
	}

	return out
}

// AssessConfidence grades the evidence base by its share of verified and sourced records.
func AssessConfidence(evidence []domain.EvidenceRecord) domain.ConfidenceAlert {
	if len(evidence) == 0 {
		return domain.ConfidenceAlert{
			Grade:           domain.GradeF,
			Degraded:        true,
			FollowUpActions: []string{"No evidence records found: investigation may have failed"},
		}
	}

	g := domain.CountEvidence(evidence)
	total := float64(g.TotalEvidenceRecords)
	pct := func(n int) float64 { return round1(float64(n) / total * 100) }
	strong := float64(g.VerifiedCount+g.SourcedCount) / total * 100

	var grade domain.Grade
	switch {
	case strong >= 70:
		grade = domain.GradeA
	case strong >= 50:
		grade = domain.GradeB
	case strong >= 30:
		grade = domain.GradeC
	case strong >= 15:
		grade = domain.GradeD
	default:
		grade = domain.GradeF
	}

	alert := domain.ConfidenceAlert{
		Grade:           grade,
		VerifiedPct:     pct(g.VerifiedCount),
		SourcedPct:      pct(g.SourcedCount),
		InferredPct:     pct(g.InferredCount),
		UnknownPct:      pct(g.UnknownCount),
		Degraded:        grade.IsDegraded(),
		FollowUpActions: []string{},
	}
	if !alert.Degraded {
		return alert
	}

	type sourceCount struct {
		name  string
		count int
	}
	var weak []sourceCount
	index := map[string]int{}
	for _, er := range evidence {
		if !er.EvidenceClass.IsWeak() {
			continue
		}
		name := orDefault(er.SourceName, "unknown")
		if i, ok := index[name]; ok {
			weak[i].count++
			continue
		}
		index[name] = len(weak)
		weak = append(weak, sourceCount{name: name, count: 1})
	}
	sort.SliceStable(weak, func(i, j int) bool { return weak[i].count > weak[j].count })
	if len(weak) > 3 {
		weak = weak[:3]
	}
	for _, w := range weak {
		alert.FollowUpActions = append(alert.FollowUpActions, fmt.Sprintf(
			"Source '%s' produced %d inferred/unknown records: consider re-running with additional search terms", w.name, w.count))
	}
	if grade == domain.GradeD || grade == domain.GradeF {
		alert.FollowUpActions = append(alert.FollowUpActions, "Request primary documentation from client to verify key claims")
	}
	if grade == domain.GradeF {
		alert.FollowUpActions = append(alert.FollowUpActions, "Consider escalating: evidence base is insufficient for confident decision")
	}
	return alert
}

// MapRegulations tags evidence records with regulatory obligations.
// Records without any tag are omitted.
func MapRegulations(evidence []domain.EvidenceRecord, inv *domain.InvestigationResults) []domain.FindingWithRegulations {
	var fatfBlack, fatfGrey []string
	if jr := inv.JurisdictionRisk; jr != nil {
		fatfBlack, fatfGrey = jr.FATFBlackList, jr.FATFGreyList
	}
	var usNexus, foreignTax bool
	if fc := inv.FATCACRS; fc != nil {
		usNexus = fc.FATCA.USPerson || len(fc.FATCA.Indicia) > 0
		foreignTax = fc.CRS.ReportingRequired
	}
	var pepLevel domain.PEPLevel
	if inv.PEPClassification != nil {
		pepLevel = inv.PEPClassification.DetectedLevel
	}

	out := []domain.FindingWithRegulations{}
	for _, er := range evidence {
		id := er.EvidenceID
		claim := strings.ToLower(er.Claim)
		source := strings.ToLower(er.SourceName)
		var tags []domain.RegulatoryTag
		tag := func(reg, obligation, trigger string, filing bool, timeline string) {
			tags = append(tags, domain.RegulatoryTag{
				Regulation: reg, Obligation: obligation, TriggerDescription: trigger,
				EvidenceID: id, FilingRequired: filing, Timeline: timeline,
			})
		}

		if er.Disposition.IsMatch() && strings.Contains(source, "sanction") {
			tag("FINTRAC PCMLTFA s.11.41", "Suspicious Transaction Report consideration",
				"Sanctions screening match detected", true, "30 days from detection")
		}

		if er.Disposition == domain.DispositionConfirmedMatch && containsAny(claim, "terrorist", "terrorism") {
			tag("FINTRAC PCMLTFA s.11.42", "Terrorist Property Report: IMMEDIATE",
				"Confirmed terrorist financing match", true, "Immediately upon detection")
		}

		if strings.Contains(source, "pep") && er.Disposition != domain.DispositionClear &&
			er.Disposition != domain.DispositionFalsePositive && pepLevel.IsPEP() {
			tag("FINTRAC PCMLTFA Part 1.1", "Enhanced Due Diligence: source of wealth verification",
				"PEP classification: "+string(pepLevel), false, "Before account activation")
			if pepLevel == domain.PEPForeign {
				tag("CIRO 3202", "Senior management approval required",
					"Foreign PEP detected", false, "Before account activation")
			}
		}

		if strings.Contains(source, "adverse") || strings.Contains(source, "media") {
			for _, kw := range financialCrimeKeywords {
				if strings.Contains(claim, kw) {
					tag("FINTRAC PCMLTFA s.11.41", "STR consideration: financial crime media",
						"Adverse media references: "+kw, true, "30 days from detection")
					break
				}
			}
			if usNexus && strings.Contains(claim, "sanction") {
				tag("OFAC SDN / 50% Rule", "OFAC compliance review: US nexus with sanctions evasion media",
					"Sanctions evasion media + US nexus", true, "Immediate review")
			}
		}

		if strings.Contains(source, "jurisdiction") {
			for _, j := range fatfBlack {
				if strings.Contains(claim, strings.ToLower(j)) {
					tag("FINTRAC Ministerial Directive", "Countermeasures required: FATF black list jurisdiction",
						"FATF black list: "+j, false, "Before account activation")
				}
			}
			for _, j := range fatfGrey {
				if strings.Contains(claim, strings.ToLower(j)) {
					tag("FINTRAC PCMLTFA s.9.6", "Enhanced Due Diligence: FATF grey list jurisdiction",
						"FATF grey list: "+j, false, "Before account activation")
				}
			}
		}

		if usNexus && strings.Contains(source, "fatca") {
			tag("FATCA Part XVIII ITA", "US person reporting",
				"US person or US indicia detected", true, "Annual reporting cycle")
		}
		if foreignTax && strings.Contains(source, "crs") {
			tag("CRS Part XIX ITA", "Non-Canadian tax residency reporting",
				"Non-CA tax residency detected", true, "Annual reporting cycle")
		}

		if (strings.Contains(source, "ubo") || strings.Contains(source, "verification")) && containsAny(claim, opacityKeywords...) {
			tag("CIRO 3202(2)(c)", "Suitability: beneficial ownership verification",
				"Ownership structure opacity detected", false, "Before account activation")
		}

		if len(tags) > 0 {
			out = append(out, domain.FindingWithRegulations{
				EvidenceID: id, Claim: er.Claim, SourceName: er.SourceName, RegulatoryTags: tags,
			})
		}
	}
	return out
}

// BatchPatterns detects clusters, surges and a rising risk trend in the
// current window, comparing mean risk against the previous window.
func BatchPatterns(current, previous []domain.CaseSignature) domain.BatchAnalytics {
	out := domain.BatchAnalytics{TotalCasesInWindow: len(current), Patterns: []domain.BatchPattern{}}
	if len(current) == 0 {
		return out
	}

	jurisdictions := newCaseGroups()
	industries := newCaseGroups()
	regulations := newCaseGroups()
	for _, s := range current {
		for _, j := range s.Jurisdictions {
			if !domain.IsDomestic(j) {
				jurisdictions.add(j, s.ClientID)
			}
		}
		for _, ind := range s.Industries {
			industries.add(ind, s.ClientID)
		}
		for _, reg := range s.RegulationsTriggered {
			regulations.add(reg, s.ClientID)
		}
	}

	for _, key := range jurisdictions.order {
		if ids := jurisdictions.ids[key]; len(ids) >= jurisdictionClusterMin {
			out.Patterns = append(out.Patterns, domain.BatchPattern{
				PatternType:  domain.PatternJurisdictionCluster,
				Description:  fmt.Sprintf("%d cases involve jurisdiction: %s", len(ids), key),
				Count:        len(ids),
				CaseIDs:      ids,
				Significance: "Multiple clients from same high-risk jurisdiction may indicate coordinated activity",
			})
		}
	}
	for _, key := range industries.order {
		if ids := industries.ids[key]; len(ids) >= industryClusterMin {
			out.Patterns = append(out.Patterns, domain.BatchPattern{
				PatternType:  domain.PatternIndustryCluster,
				Description:  fmt.Sprintf("%d cases in industry: %s", len(ids), key),
				Count:        len(ids),
				CaseIDs:      ids,
				Significance: "Cluster of clients in same industry may warrant sector-level review",
			})
		}
	}
	for _, key := range regulations.order {
		if ids := regulations.ids[key]; len(ids) >= regulationSurgeMin {
			out.Patterns = append(out.Patterns, domain.BatchPattern{
				PatternType:  domain.PatternRegulationSurge,
				Description:  fmt.Sprintf("%d cases trigger regulation: %s", len(ids), key),
				Count:        len(ids),
				CaseIDs:      ids,
				Significance: "High volume of cases triggering same regulation may indicate systemic exposure",
			})
		}
	}

	if len(previous) > 0 {
		cur, prev := meanScore(current), meanScore(previous)
		if cur > prev*riskTrendIncreaseFactor {
			desc := fmt.Sprintf("Average risk score increased from %.0f to %.0f", prev, cur)
			if prev > 0 {
				desc += fmt.Sprintf(" (%.0f%% increase)", (cur-prev)/prev*100)
			}
			ids := make([]string, len(current))
			for i, s := range current {
				ids[i] = s.ClientID
			}
			out.Patterns = append(out.Patterns, domain.BatchPattern{
				PatternType:  domain.PatternRiskTrend,
				Description:  desc,
				Count:        len(current),
				CaseIDs:      ids,
				Significance: "Rising average risk scores may indicate changing client mix or emerging threats",
			})
		}
	}

	return out
}

// caseGroups collects case ids per key in first-seen key order.
type caseGroups struct {
	order []string
	ids   map[string][]string
}

func newCaseGroups() *caseGroups {
	return &caseGroups{ids: map[string][]string{}}
}

func (g *caseGroups) add(key, caseID string) {
	if _, ok := g.ids[key]; !ok {
		g.order = append(g.order, key)
	}
	g.ids[key] = append(g.ids[key], caseID)
}

func meanScore(sigs []domain.CaseSignature) float64 {
	total := 0
	for _, s := range sigs {
		total += s.RiskScore
	}
	return float64(total) / float64(len(sigs))
}

func evidenceIDs(groups ...[]domain.EvidenceRecord) []string {
	var ids []string
	for _, g := range groups {
		for _, r := range g {
			ids = append(ids, r.EvidenceID)
		}
	}
	return ids
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

func nonEmpty(s string) []string {
	if s == "" {
		return nil
	}
	return []string{s}
}
