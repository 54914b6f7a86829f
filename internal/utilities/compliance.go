package utilities

import (
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/kyc-onboard/internal/core/domain"
)

// Regulatory report types.
const (
	ReportSTR   = "STR"
	ReportTPR   = "TPR"
	ReportFATCA = "FATCA"
	ReportCRS   = "CRS"
	ReportLCTR  = "LCTR"
)

// Filing decisions.
const (
	FilingHumanDecision = "HUMAN DECISION REQUIRED"
	FilingRequired      = "REQUIRED"
)

const (
	lctrThreshold   = 10_000
	craFilingWindow = "Annual: by May 1 (CRA filing deadline)"
	dateLayout      = "2006-01-02"
)

var (
	financialCrimeCategories = []string{
		"fraud", "money_laundering", "terrorist_financing",
		"bribery", "corruption", "tax_evasion",
		"sanctions_evasion", "organized_crime",
	}
	terroristListKeywords = []string{"terrorist", "criminal code", "unscr", "isil", "al-qaida"}
	undocumentedFunds     = []string{"inheritance", "gift", "lottery_gambling", "cryptocurrency", "unknown"}
	trainingCategories    = []string{"pep", "sanctions", "terrorist_financing", "ubo_cascade"}
)

// ComplianceActions lists the filings, actions, deadlines and escalations a
// case requires. STR filings are only ever flagged for a human decision.
func ComplianceActions(client domain.Client, risk domain.RiskAssessment, inv *domain.InvestigationResults, now time.Time) *domain.ComplianceActionsResult {
	reports := complianceReports(client, inv)
	actions := complianceActions(client, risk, inv)
	escalations := complianceEscalations(client, risk, inv)
	result := &domain.ComplianceActionsResult{
		Reports:     reports,
		Actions:     actions,
		Timelines:   complianceTimelines(reports, risk, now),
		Escalations: escalations,
		Monitoring: domain.MonitoringPlan{
			Level:          monitoringLabel(risk.RiskLevel),
			ReviewSchedule: reviewSchedule(risk.RiskLevel),
		},
	}

	subject, context := client.Name(), clientContext(client)
	key := nameKey(subject)
	types := make([]string, 0, len(reports))
	for _, r := range reports {
		types = append(types, r.Type)
	}
	disposition := domain.DispositionClear
	if len(escalations) > 0 {
		disposition = domain.DispositionPendingReview
	}
	result.EvidenceRecords = append(result.EvidenceRecords, record{
		id:      "compliance_" + key,
		source:  domain.UtilityComplianceActions,
		subject: subject,
		context: context,
		claim: fmt.Sprintf("Compliance actions determined: %d report(s), %d action(s), %d escalation(s).",
			len(reports), len(actions), len(escalations)),
		class: domain.EvidenceInferred,
		data: []map[string]any{
			{"reports_count": len(reports)},
			{"report_types": types},
			{"actions_count": len(actions)},
			{"escalations_count": len(escalations)},
		},
		disposition: disposition,
		confidence:  domain.ConfidenceHigh,
	}.build(now))

	for _, r := range reports {
		if r.Type != ReportSTR {
			continue
		}
		result.EvidenceRecords = append(result.EvidenceRecords, record{
			id:      "str_consideration_" + key,
			source:  domain.UtilityComplianceActions,
			subject: subject,
			context: context,
			claim: "HUMAN DECISION REQUIRED: Suspicious Transaction Report (STR) consideration triggered. " +
				"Potential triggers are identified here but STR filing decisions MUST be made by a qualified compliance officer.",
			class: domain.EvidenceInferred,
			data: []map[string]any{
				{"str_triggers": strings.Split(r.Trigger, "; ")},
				{"note": "STR filing is a human decision: never auto-file"},
			},
			disposition: domain.DispositionPendingReview,
			confidence:  domain.ConfidenceHigh,
		}.build(now))
	}
	return result
}

func complianceReports(client domain.Client, inv *domain.InvestigationResults) []domain.RegulatoryReport {
	var reports []domain.RegulatoryReport

	if triggers := strTriggers(client, inv); len(triggers) > 0 {
		reports = append(reports, domain.RegulatoryReport{
			Type:           ReportSTR,
			FullName:       "Suspicious Transaction Report",
			Trigger:        strings.Join(triggers, "; "),
			Timeline:       "30 days from detection",
			FilingDecision: FilingHumanDecision,
			Notes: "Potential STR triggers are identified but no filing decision is made. " +
				"A qualified compliance officer must assess whether reasonable grounds to suspect exist. " +
				"Filing or non-filing must be documented with rationale.",
		})
	}

	if terroristMatch(inv) {
		reports = append(reports, domain.RegulatoryReport{
			Type:           ReportTPR,
			FullName:       "Terrorist Property Report",
			Trigger:        "Confirmed match to terrorist listing",
			Timeline:       "Immediately upon discovery",
			FilingDecision: FilingRequired,
			Notes: "FINTRAC requires immediate filing of a Terrorist Property Report when there is a match to a listed terrorist entity. " +
				"All property must be frozen. Contact RCMP and CSIS as appropriate.",
		})
	}

	if trigger := fatcaTrigger(client); trigger != "" {
		reports = append(reports, domain.RegulatoryReport{
			Type:           ReportFATCA,
			FullName:       "FATCA Report (Part XVIII of Income Tax Act)",
			Trigger:        trigger,
			Timeline:       craFilingWindow,
			FilingDecision: FilingRequired,
			Notes:          "Report US account holder information to CRA, who will exchange with IRS under the Canada-US IGA. Ensure W-9 is obtained.",
		})
	}

	if jurisdictions := crsReportJurisdictions(client); len(jurisdictions) > 0 {
		joined := strings.Join(jurisdictions, ", ")
		reports = append(reports, domain.RegulatoryReport{
			Type:           ReportCRS,
			FullName:       "CRS Report (Part XIX of Income Tax Act)",
			Trigger:        "Non-Canadian tax residency: " + joined,
			Timeline:       craFilingWindow,
			FilingDecision: FilingRequired,
			Notes:          fmt.Sprintf("Report to CRA for automatic exchange of information with participating jurisdictions: %s.", joined),
		})
	}

	var lctr []string
	for _, acct := range accountRequests(client) {
		if acct.InitialDeposit >= lctrThreshold && strings.Contains(strings.ToLower(acct.ExpectedActivity), "cash") {
			lctr = append(lctr, fmt.Sprintf("Initial deposit of %s with cash activity expected", money(acct.InitialDeposit)))
		}
	}
	if len(lctr) > 0 {
		reports = append(reports, domain.RegulatoryReport{
			Type:           ReportLCTR,
			FullName:       "Large Cash Transaction Report",
			Trigger:        strings.Join(lctr, "; "),
			Timeline:       "Within 15 calendar days of the transaction",
			FilingDecision: "REQUIRED (if cash transaction >= $10,000 CAD)",
			Notes: "FINTRAC requires reporting of any single cash transaction of $10,000 CAD or more " +
				"(or multiple transactions within 24 hours totaling $10,000+). Monitor for structuring.",
		})
	}
	return reports
}

func accountRequests(client domain.Client) []domain.AccountRequest {
	switch {
	case client.Individual != nil:
		return client.Individual.AccountRequests
	case client.Business != nil:
		return client.Business.AccountRequests
	}
	return nil
}

func strTriggers(client domain.Client, inv *domain.InvestigationResults) []string {
	var triggers []string
	if inv != nil {
		for _, s := range []*domain.SanctionsResult{inv.IndividualSanctions, inv.EntitySanctions} {
			if s != nil && s.Disposition.IsMatch() {
				triggers = append(triggers, fmt.Sprintf("Sanctions %s: %s", s.Disposition, s.EntityScreened))
			}
		}
		for _, m := range []*domain.AdverseMediaResult{inv.IndividualAdverseMedia, inv.BusinessAdverseMedia} {
			if m == nil || !m.OverallLevel.IsMaterial() {
				continue
			}
			var crimes []string
			for _, c := range m.Categories {
				if oneOf(c, financialCrimeCategories) {
					crimes = append(crimes, c)
				}
			}
			if len(crimes) > 0 {
				triggers = append(triggers, fmt.Sprintf("Adverse media (%s) for '%s': %s",
					m.OverallLevel, m.EntityScreened, strings.Join(crimes, ", ")))
			}
		}
		for _, name := range inv.CascadeOrder {
			if s := inv.Cascade[name].Sanctions; s != nil && s.Disposition.IsMatch() {
				triggers = append(triggers, "UBO sanctions match: "+name)
			}
		}
	}

	if c := client.Individual; c != nil && c.AnnualIncome > 0 && c.NetWorth > 0 && c.NetWorth/c.AnnualIncome > 50 {
		triggers = append(triggers, "Unusual wealth/income ratio may warrant further inquiry")
	}
	if c := client.Business; c != nil && c.AnnualRevenue > 0 && c.ExpectedTransactionVolume/c.AnnualRevenue > 10 {
		triggers = append(triggers, "Transaction volume significantly exceeds revenue: potential pass-through activity")
	}
	return triggers
}

func terroristMatch(inv *domain.InvestigationResults) bool {
	if inv == nil {
		return false
	}
	for _, s := range []*domain.SanctionsResult{inv.IndividualSanctions, inv.EntitySanctions} {
		if s == nil || s.Disposition != domain.DispositionConfirmedMatch {
			continue
		}
		for _, m := range s.Matches {
			if containsAny(strings.ToLower(m.ListName), terroristListKeywords...) {
				return true
			}
		}
	}
	return false
}

func fatcaTrigger(client domain.Client) string {
	if c := client.Individual; c != nil {
		switch {
		case c.USPerson:
			return "Client is US person (self-declared)"
		case domain.IsUnitedStates(c.Citizenship):
			return "US citizenship"
		}
		for _, t := range c.TaxResidencies {
			if domain.IsUnitedStates(t) {
				return "US tax residency"
			}
		}
		return ""
	}
	if c := client.Business; c != nil {
		if c.USNexus {
			return "Entity has US nexus"
		}
		var names []string
		for _, ubo := range c.BeneficialOwners {
			if ubo.USPerson {
				names = append(names, ubo.FullName)
			}
		}
		if len(names) > 0 {
			return "US person beneficial owner(s): " + strings.Join(names, ", ")
		}
	}
	return ""
}

func crsReportJurisdictions(client domain.Client) []string {
	var out orderedSet
	foreign := func(c string) bool {
		return strings.TrimSpace(c) != "" && !domain.IsDomestic(c) && !domain.IsUnitedStates(c)
	}
	if c := client.Individual; c != nil {
		for _, t := range c.TaxResidencies {
			if foreign(t) {
				out = append(out, t)
			}
		}
	}
	if c := client.Business; c != nil {
		for _, country := range c.CountriesOfOperation {
			if foreign(country) {
				out = append(out, country)
			}
		}
		for _, ubo := range c.BeneficialOwners {
			for _, t := range ubo.TaxResidencies {
				if foreign(t) {
					out.add(t)
				}
			}
		}
	}
	return out
}

func complianceActions(client domain.Client, risk domain.RiskAssessment, inv *domain.InvestigationResults) []string {
	actions := []string{
		"Document retention: maintain all KYC records for minimum 5 years from end of business relationship (PCMLTFA requirement)",
		"Assign ongoing monitoring schedule: " + monitoringLabel(risk.RiskLevel),
		"Schedule risk rating review: " + reviewSchedule(risk.RiskLevel),
	}
	switch risk.RiskLevel {
	case domain.RiskCritical:
		actions = append(actions,
			"Obtain senior management approval before establishing relationship",
			"Establish enhanced transaction monitoring with lower thresholds",
			"Document rationale for proceeding with high-risk relationship",
		)
	case domain.RiskHigh:
		actions = append(actions,
			"Obtain compliance officer approval before onboarding",
			"Set enhanced transaction monitoring alerts",
		)
	}

	if c := client.Individual; c != nil {
		if oneOf(strings.ToLower(c.SourceOfFunds), undocumentedFunds) {
			actions = append(actions, fmt.Sprintf("Obtain supporting documentation for source of funds: '%s'", c.SourceOfFunds))
		}
		if risk.RiskLevel.Rank() >= domain.RiskHigh.Rank() {
			actions = append(actions, "Obtain and verify source of wealth documentation")
		}
	}
	if c := client.Business; c != nil {
		actions = append(actions, "Verify and maintain current beneficial ownership information")
		if len(c.BeneficialOwners) == 0 {
			actions = append(actions, "PRIORITY: Determine all beneficial owners (>25% ownership/control)")
		}
		actions = append(actions, "Obtain and retain articles of incorporation or equivalent")
	}
	if c := client.Individual; c != nil && c.PEPSelfDeclaration {
		actions = append(actions,
			"Establish purpose and intended nature of business relationship with PEP client",
			"Determine source of wealth through independent means",
		)
	}

	if inv != nil {
		if inv.PEPClassification != nil && inv.PEPClassification.EDDRequired {
			actions = append(actions, "Implement EDD measures for PEP as per assessment")
		}
		var unusual orderedSet
		for _, f := range risk.RiskFactors {
			for _, cat := range trainingCategories {
				if f.Category == cat {
					unusual.add(cat)
				}
			}
		}
		if len(unusual) > 0 {
			actions = append(actions, fmt.Sprintf("Training notification: ensure staff are trained on %s risk handling procedures",
				strings.Join(unusual, ", ")))
		}
	}
	return actions
}

// nextMayFirst returns the next CRA information-return deadline strictly after today.
func nextMayFirst(now time.Time) time.Time {
	may := time.Date(now.Year(), time.May, 1, 0, 0, 0, 0, now.Location())
	if !now.Before(may) {
		may = may.AddDate(1, 0, 0)
	}
	return may
}

func complianceTimelines(reports []domain.RegulatoryReport, risk domain.RiskAssessment, now time.Time) []domain.ComplianceDeadline {
	var out []domain.ComplianceDeadline
	for _, r := range reports {
		var due time.Time
		switch r.Type {
		case ReportSTR:
			due = now.AddDate(0, 0, 30)
		case ReportTPR:
			due = now
		case ReportFATCA, ReportCRS:
			due = nextMayFirst(now)
		case ReportLCTR:
			due = now.AddDate(0, 0, 15)
		}
		out = append(out, domain.ComplianceDeadline{
			Action:   r.Type,
			Deadline: due.Format(dateLayout),
			Basis:    fmt.Sprintf("%s (%s)", r.Timeline, r.FilingDecision),
		})
	}

	out = append(out, domain.ComplianceDeadline{
		Action:   "initial_review",
		Deadline: now.Format(dateLayout),
		Basis:    "Before onboarding completion: complete all KYC checks and obtain required approvals",
	})
	if risk.RiskLevel.Rank() >= domain.RiskHigh.Rank() {
		out = append(out, domain.ComplianceDeadline{
			Action:   "risk_review",
			Deadline: now.AddDate(0, 0, 365).Format(dateLayout),
			Basis:    "Within 12 months of onboarding: first periodic risk review for high/critical clients",
		})
	} else {
		out = append(out, domain.ComplianceDeadline{
			Action:   "risk_review",
			Deadline: now.AddDate(0, 0, 730).Format(dateLayout),
			Basis:    "Within 24 months of onboarding: first periodic risk review",
		})
	}
	out = append(out, domain.ComplianceDeadline{
		Action:   "document_retention",
		Deadline: "5 years from end of business relationship",
		Basis:    "Minimum retention period per PCMLTFA",
	})
	return out
}

func complianceEscalations(client domain.Client, risk domain.RiskAssessment, inv *domain.InvestigationResults) []string {
	var escalations []string
	if risk.RiskLevel == domain.RiskCritical {
		escalations = append(escalations,
			"CRITICAL risk level: escalate to senior management for relationship approval/decline decision")
	}
	if inv != nil {
		for _, s := range []*domain.SanctionsResult{inv.IndividualSanctions, inv.EntitySanctions} {
			switch {
			case s == nil:
			case s.Disposition == domain.DispositionConfirmedMatch:
				escalations = append(escalations, fmt.Sprintf(
					"CONFIRMED sanctions match for '%s': escalate to Compliance Officer and Legal immediately", s.EntityScreened))
			case s.Disposition == domain.DispositionPotentialMatch:
				escalations = append(escalations, fmt.Sprintf(
					"POTENTIAL sanctions match for '%s': escalate to Compliance Officer for disposition", s.EntityScreened))
			}
		}
		if pep := inv.PEPClassification; pep != nil {
			switch pep.DetectedLevel {
			case domain.PEPForeign:
				escalations = append(escalations, fmt.Sprintf(
					"Foreign PEP detected: %s: escalate to senior management", pep.EntityScreened))
			case domain.PEPDomestic, domain.PEPHIO:
				escalations = append(escalations, fmt.Sprintf(
					"%s detected: %s: escalate to compliance officer", pep.DetectedLevel, pep.EntityScreened))
			}
		}
		for _, m := range []*domain.AdverseMediaResult{inv.IndividualAdverseMedia, inv.BusinessAdverseMedia} {
			if m != nil && m.OverallLevel == domain.MediaHighRisk {
				escalations = append(escalations, fmt.Sprintf(
					"HIGH_RISK adverse media for '%s': escalate for STR consideration", m.EntityScreened))
			}
		}
	}
	switch {
	case client.Individual != nil && client.Individual.ThirdPartyDetermination:
		escalations = append(escalations,
			"Third-party determination: ensure third-party identity verified and documented per FINTRAC requirements")
	case client.Business != nil && client.Business.ThirdPartyDetermination:
		escalations = append(escalations,
			"Third-party determination for business account: verify and document third-party details")
	}
	return escalations
}

func monitoringLabel(level domain.RiskLevel) string {
	switch level {
	case domain.RiskCritical:
		return "monthly monitoring"
	case domain.RiskHigh:
		return "quarterly monitoring"
	case domain.RiskMedium:
		return "semi-annual monitoring"
	default:
		return "annual monitoring"
	}
}

func reviewSchedule(level domain.RiskLevel) string {
	switch level {
	case domain.RiskCritical:
		return "every 6 months"
	case domain.RiskHigh:
		return "every 12 months"
	case domain.RiskMedium:
		return "every 24 months"
	default:
		return "every 36 months"
	}
}
