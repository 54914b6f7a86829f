package utilities

import (
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/kyc-onboard/internal/core/domain"
)

// EDDThreshold is the score at or above which EDD is triggered.
const EDDThreshold = 36

// Approval levels for relationship establishment.
const (
	ApprovalSupervisor                  = "supervisor"
	ApprovalComplianceOfficer           = "compliance_officer"
	ApprovalSeniorManagement            = "senior_management"
	ApprovalSeniorManagementAndCompOffr = "senior_management_and_compliance_officer"
)

// Ongoing monitoring frequencies.
const (
	MonitorMonthly    = "monthly"
	MonitorQuarterly  = "quarterly"
	MonitorSemiAnnual = "semi_annual"
	MonitorAnnual     = "annual"
)

// EDDRequirements decides whether enhanced due diligence applies and which
// measures, approval and monitoring cadence follow from the triggers.
func EDDRequirements(client domain.Client, risk domain.RiskAssessment, inv *domain.InvestigationResults, now time.Time) *domain.EDDResult {
	var triggers []string
	triggers = pepTriggers(client, inv, triggers)
	triggers = fatfTriggers(client, triggers)
	triggers = sanctionsTriggers(inv, triggers)
	triggers = mediaTriggers(inv, triggers)
	if risk.TotalScore >= EDDThreshold {
		triggers = append(triggers, fmt.Sprintf("Risk score %d (%s) exceeds EDD threshold of %d",
			risk.TotalScore, risk.RiskLevel, EDDThreshold))
	}
	triggers = transactionTriggers(client, triggers)
	triggers = ownershipTriggers(client, triggers)

	required := len(triggers) > 0
	var measures []string
	if required {
		measures = eddMeasures(client, risk, triggers)
	}
	result := &domain.EDDResult{
		EDDRequired:         required,
		Triggers:            triggers,
		Measures:            measures,
		ApprovalRequired:    approvalLevel(risk, triggers),
		MonitoringFrequency: monitoringFrequency(risk, required),
	}

	subject, context := client.Name(), clientContext(client)
	key := nameKey(subject)
	if required {
		result.EvidenceRecords = []domain.EvidenceRecord{record{
			id:      "edd_required_" + key,
			source:  domain.UtilityEDDRequirements,
			subject: subject,
			context: context,
			claim: fmt.Sprintf("EDD required: %d trigger(s) identified. %d measures prescribed. Monitoring frequency: %s.",
				len(triggers), len(measures), result.MonitoringFrequency),
			class: domain.EvidenceInferred,
			data: []map[string]any{
				{"triggers": triggers},
				{"measures_count": len(measures)},
				{"approval_required": result.ApprovalRequired},
				{"monitoring_frequency": result.MonitoringFrequency},
			},
			disposition: domain.DispositionPendingReview,
			confidence:  domain.ConfidenceHigh,
		}.build(now)}
		return result
	}
	result.EvidenceRecords = []domain.EvidenceRecord{record{
		id:      "edd_not_required_" + key,
		source:  domain.UtilityEDDRequirements,
		subject: subject,
		context: context,
		claim: fmt.Sprintf("EDD not required based on current assessment. Risk score: %d (%s). Monitoring frequency: %s.",
			risk.TotalScore, risk.RiskLevel, result.MonitoringFrequency),
		class: domain.EvidenceInferred,
		data: []map[string]any{
			{"risk_score": risk.TotalScore},
			{"risk_level": risk.RiskLevel},
			{"monitoring_frequency": result.MonitoringFrequency},
		},
		disposition: domain.DispositionClear,
		confidence:  domain.ConfidenceHigh,
	}.build(now)}
	return result
}

func clientContext(client domain.Client) string {
	switch {
	case client.Individual != nil:
		return "individual client"
	case client.Business != nil:
		return "business client"
	default:
		return "unknown client type"
	}
}

func appendUnique(list []string, item string) []string {
	for _, have := range list {
		if have == item {
			return list
		}
	}
	return append(list, item)
}

func pepTriggers(client domain.Client, inv *domain.InvestigationResults, triggers []string) []string {
	if c := client.Individual; c != nil && c.PEPSelfDeclaration {
		details := strings.ToLower(c.PEPDetails)
		switch {
		case containsAny(details, "foreign", "international"):
			triggers = append(triggers, "Foreign PEP (self-declared): permanent EDD requirement")
		case containsAny(details, "hio"):
			triggers = append(triggers, "Head of International Organization (self-declared): 5-year EDD from leaving office")
		default:
			triggers = append(triggers, "Domestic PEP (self-declared): 5-year EDD from leaving office")
		}
	}

	if inv != nil && inv.PEPClassification != nil {
		switch level := inv.PEPClassification.DetectedLevel; level {
		case domain.PEPForeign:
			triggers = appendUnique(triggers, "Foreign PEP (investigation-detected): permanent EDD requirement")
		case domain.PEPDomestic:
			triggers = appendUnique(triggers, "Domestic PEP (investigation-detected): 5-year EDD")
		case domain.PEPHIO:
			triggers = appendUnique(triggers, "Head of International Organization (detected): 5-year EDD")
		case domain.PEPFamily, domain.PEPAssociate:
			triggers = append(triggers, fmt.Sprintf("PEP family member/close associate (%s): EDD required per FINTRAC", level))
		}
	}

	for _, ubo := range client.BeneficialOwners() {
		if ubo.PEPSelfDeclaration {
			triggers = append(triggers, fmt.Sprintf("Beneficial owner PEP: %s (%s%% owner)", ubo.FullName, ubo.OwnershipLabel()))
		}
	}
	return triggers
}

// exposureCountries lists every country the client is tied to, first-seen order.
func exposureCountries(client domain.Client) []string {
	var countries orderedSet
	add := func(vs ...string) {
		for _, v := range vs {
			if v = strings.TrimSpace(v); v != "" {
				countries.add(v)
			}
		}
	}
	if c := client.Individual; c != nil {
		add(c.Citizenship, c.CountryOfResidence, c.CountryOfBirth)
		add(c.TaxResidencies...)
	}
	if c := client.Business; c != nil {
		add(c.CountriesOfOperation...)
		add(c.IncorporationJurisdiction)
		for _, ubo := range c.BeneficialOwners {
			add(ubo.Citizenship, ubo.CountryOfResidence)
		}
	}
	return countries
}

func fatfTriggers(client domain.Client, triggers []string) []string {
	for _, country := range exposureCountries(client) {
		switch {
		case domain.IsFATFBlackListed(country):
			triggers = append(triggers, fmt.Sprintf("FATF black list country: %s: high-risk jurisdiction", country))
		case domain.IsFATFGreyListed(country):
			triggers = append(triggers, fmt.Sprintf("FATF grey list country: %s: increased monitoring jurisdiction", country))
		}
	}
	return triggers
}

func unresolvedSanctions(d domain.Disposition) bool {
	return d.IsMatch() || d == domain.DispositionPendingReview
}

func sanctionsTriggers(inv *domain.InvestigationResults, triggers []string) []string {
	if inv == nil {
		return triggers
	}
	for _, s := range []*domain.SanctionsResult{inv.IndividualSanctions, inv.EntitySanctions} {
		if s != nil && unresolvedSanctions(s.Disposition) {
			triggers = append(triggers, fmt.Sprintf("Sanctions screening: %s for '%s'", s.Disposition, s.EntityScreened))
		}
	}
	for _, name := range inv.CascadeOrder {
		if s := inv.Cascade[name].Sanctions; s != nil && unresolvedSanctions(s.Disposition) {
			triggers = append(triggers, fmt.Sprintf("UBO sanctions: %s for '%s'", s.Disposition, name))
		}
	}
	return triggers
}

func mediaTriggers(inv *domain.InvestigationResults, triggers []string) []string {
	if inv == nil {
		return triggers
	}
	for _, m := range []*domain.AdverseMediaResult{inv.IndividualAdverseMedia, inv.BusinessAdverseMedia} {
		if m == nil {
			continue
		}
		switch m.OverallLevel {
		case domain.MediaHighRisk:
			triggers = append(triggers, fmt.Sprintf("High-risk adverse media for '%s'", m.EntityScreened))
		case domain.MediaMaterialConcern:
			triggers = append(triggers, fmt.Sprintf("Material adverse media concern for '%s'", m.EntityScreened))
		}
	}
	return triggers
}

func transactionTriggers(client domain.Client, triggers []string) []string {
	if c := client.Individual; c != nil && c.AnnualIncome > 0 {
		for _, acct := range c.AccountRequests {
			if acct.InitialDeposit <= 0 {
				continue
			}
			if ratio := acct.InitialDeposit / c.AnnualIncome; ratio > 10 {
				triggers = append(triggers, fmt.Sprintf("Initial deposit (%s) is %.0fx annual income: unusual relative to profile",
					money(acct.InitialDeposit), ratio))
			}
		}
	}
	if c := client.Business; c != nil && c.AnnualRevenue > 0 && c.ExpectedTransactionVolume > 0 {
		if ratio := c.ExpectedTransactionVolume / c.AnnualRevenue; ratio > 10 {
			triggers = append(triggers, fmt.Sprintf("Expected transaction volume (%s) is %.0fx annual revenue: unusual relative to profile",
				money(c.ExpectedTransactionVolume), ratio))
		}
	}
	return triggers
}

func ownershipTriggers(client domain.Client, triggers []string) []string {
	c := client.Business
	if c == nil {
		return triggers
	}
	n := len(c.BeneficialOwners)
	switch {
	case n > 5:
		triggers = append(triggers, fmt.Sprintf("Complex ownership structure: %d beneficial owners declared", n))
	case n == 0:
		triggers = append(triggers, "No beneficial owners declared: potential opacity in ownership structure")
	}

	var foreign orderedSet
	for _, ubo := range c.BeneficialOwners {
		for _, country := range []string{ubo.Citizenship, ubo.CountryOfResidence} {
			if country != "" && !domain.IsDomestic(country) {
				foreign.add(country)
			}
		}
	}
	if len(foreign) > 3 {
		triggers = append(triggers, fmt.Sprintf(
			"Multi-jurisdictional ownership: beneficial owners across %d non-Canadian jurisdictions", len(foreign)))
	}
	return triggers
}

func anyTrigger(triggers []string, match func(string) bool) bool {
	for _, t := range triggers {
		if match(t) {
			return true
		}
	}
	return false
}

func isPEPTrigger(t string) bool {
	upper := strings.ToUpper(t)
	return strings.Contains(upper, "PEP") || strings.Contains(upper, "HIO")
}

func eddMeasures(client domain.Client, risk domain.RiskAssessment, triggers []string) []string {
	measures := []string{
		"Enhanced source of wealth documentation: obtain detailed explanation and supporting evidence",
		"Corroborate source of funds through independent sources (bank statements, tax returns, financial statements)",
		"Document EDD rationale and findings in client file",
	}
	if anyTrigger(triggers, isPEPTrigger) {
		measures = append(measures,
			"Senior management approval required for relationship establishment",
			"Establish source of wealth independent of client representations",
			"Conduct enhanced ongoing monitoring of transactions",
		)
	}
	if anyTrigger(triggers, func(t string) bool { return strings.Contains(strings.ToLower(t), "sanctions") }) {
		measures = append(measures,
			"URGENT: Escalate sanctions match to Compliance Officer immediately",
			"Do not proceed with transaction until sanctions disposition is resolved",
			"Document sanctions screening results and disposition reasoning",
		)
	}
	if anyTrigger(triggers, func(t string) bool { return strings.Contains(t, "FATF") }) {
		measures = append(measures,
			"Obtain additional information on purpose and intended nature of business relationship",
			"Conduct enhanced monitoring of transactions involving high-risk jurisdictions",
		)
		if anyTrigger(triggers, func(t string) bool { return strings.Contains(t, "FATF") && strings.Contains(t, "black list") }) {
			measures = append(measures, "Apply countermeasures as directed by FINTRAC for FATF black list jurisdictions")
		}
	}
	if anyTrigger(triggers, func(t string) bool { return strings.Contains(strings.ToLower(t), "adverse media") }) {
		measures = append(measures,
			"Review and document all identified adverse media articles",
			"Assess relevance and recency of adverse media to current business relationship",
		)
	}
	if risk.RiskLevel == domain.RiskCritical {
		measures = append(measures,
			"Senior management approval required (CRITICAL risk level)",
			"Consider whether to proceed with or terminate the relationship",
		)
	}
	if client.Business != nil {
		if anyTrigger(triggers, func(t string) bool {
			return containsAny(strings.ToLower(t), "ownership", "beneficial owner")
		}) {
			measures = append(measures,
				"Obtain corporate structure chart showing all ownership layers",
				"Verify beneficial ownership through independent corporate registry searches",
			)
		}
		measures = append(measures, "On-site verification of business premises (if feasible)")
	}
	if anyTrigger(triggers, func(t string) bool {
		return containsAny(strings.ToLower(t), "transaction", "deposit")
	}) {
		measures = append(measures,
			"Obtain detailed explanation of expected transaction patterns",
			"Set transaction monitoring alerts at appropriate thresholds",
		)
	}
	return measures
}

func approvalLevel(risk domain.RiskAssessment, triggers []string) string {
	switch {
	case anyTrigger(triggers, isPEPTrigger), risk.RiskLevel == domain.RiskCritical:
		return ApprovalSeniorManagement
	case anyTrigger(triggers, func(t string) bool { return strings.Contains(t, string(domain.DispositionConfirmedMatch)) }):
		return ApprovalSeniorManagementAndCompOffr
	case risk.RiskLevel == domain.RiskHigh:
		return ApprovalComplianceOfficer
	case len(triggers) > 0:
		return ApprovalSupervisor
	default:
		return ""
	}
}

func monitoringFrequency(risk domain.RiskAssessment, eddRequired bool) string {
	switch {
	case risk.RiskLevel == domain.RiskCritical:
		return MonitorMonthly
	case risk.RiskLevel == domain.RiskHigh:
		return MonitorQuarterly
	case risk.RiskLevel == domain.RiskMedium, eddRequired:
		return MonitorSemiAnnual
	default:
		return MonitorAnnual
	}
}
