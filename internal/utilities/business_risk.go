package utilities

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/custodia-labs/kyc-onboard/internal/core/domain"
)

// Section risk levels used by the business risk analysis.
const (
	levelLow    = "low"
	levelMedium = "medium"
	levelHigh   = "high"
)

// natureKeywords groups high-risk nature-of-business keywords; order is stable.
var natureKeywords = []struct {
	category string
	keywords []string
}{
	{"import_export", []string{"import", "export", "trade", "shipping"}},
	{"cash_intensive", []string{"cash", "atm", "money transfer", "remittance", "currency exchange"}},
	{"virtual_assets", []string{"crypto", "bitcoin", "virtual currency", "digital asset", "blockchain"}},
	{"gambling", []string{"casino", "gambling", "gaming", "lottery", "betting"}},
	{"precious_materials", []string{"gold", "diamond", "precious metal", "gemstone", "jewel"}},
}

type factorList []domain.RiskFactor

func (l *factorList) add(points int, category, format string, args ...any) {
	*l = append(*l, domain.RiskFactor{
		Factor:   fmt.Sprintf(format, args...),
		Points:   points,
		Category: category,
		Source:   string(domain.UtilityBusinessRiskAssessment),
	})
}

func newAnalysis() domain.RiskAnalysis {
	return domain.RiskAnalysis{RiskLevel: levelLow, Metrics: map[string]any{}}
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// BusinessRisk analyses ownership, operations and expected transactions of a
// business client and returns the extra factors with a narrative summary.
func BusinessRisk(client domain.Client, now time.Time) *domain.BusinessRiskResult {
	c := client.Business
	if c == nil {
		return &domain.BusinessRiskResult{RiskFactors: []domain.RiskFactor{}, Narrative: "Not a business client."}
	}

	var factors factorList
	ownership := analyseOwnership(c, &factors)
	operational := analyseOperations(c, now, &factors)
	transaction := analyseTransactions(c, now, &factors)

	result := &domain.BusinessRiskResult{
		RiskFactors:         append([]domain.RiskFactor{}, factors...),
		OwnershipAnalysis:   ownership,
		OperationalAnalysis: operational,
		TransactionAnalysis: transaction,
	}
	result.Narrative = businessNarrative(c, result)

	key := nameKey(c.LegalName)
	result.EvidenceRecords = append(result.EvidenceRecords, record{
		id:      "biz_risk_" + key,
		source:  domain.UtilityBusinessRiskAssessment,
		subject: c.LegalName,
		context: "business client: risk factor assessment",
		claim: fmt.Sprintf("Business risk assessment identified %d risk factor(s). Ownership risk: %s. Operational risk: %s. Transaction risk: %s.",
			len(factors), ownership.RiskLevel, operational.RiskLevel, transaction.RiskLevel),
		class: domain.EvidenceInferred,
		data: []map[string]any{
			{"risk_factors_count": len(factors)},
			{"ownership_risk": ownership.RiskLevel},
			{"operational_risk": operational.RiskLevel},
			{"transaction_risk": transaction.RiskLevel},
			{"total_risk_points": result.TotalPoints()},
		},
		disposition: domain.DispositionPendingReview,
		confidence:  domain.ConfidenceHigh,
	}.build(now))

	var elevated []domain.RiskFactor
	for _, f := range factors {
		if f.Points >= 15 {
			elevated = append(elevated, f)
		}
	}
	if len(elevated) > 0 {
		labels := make([]string, 0, len(elevated))
		data := make([]map[string]any, 0, len(elevated))
		for _, f := range elevated {
			labels = append(labels, f.Factor)
			data = append(data, map[string]any{"factor": f.Factor, "points": f.Points, "category": f.Category})
		}
		result.EvidenceRecords = append(result.EvidenceRecords, record{
			id:          "biz_high_risk_" + key,
			source:      domain.UtilityBusinessRiskAssessment,
			subject:     c.LegalName,
			context:     "business client: elevated risk factors",
			claim:       fmt.Sprintf("%d elevated risk factor(s) identified: %s", len(elevated), strings.Join(labels, "; ")),
			class:       domain.EvidenceInferred,
			data:        data,
			disposition: domain.DispositionPendingReview,
			confidence:  domain.ConfidenceHigh,
		}.build(now))
	}
	return result
}

func analyseOwnership(c *domain.BusinessClient, factors *factorList) domain.RiskAnalysis {
	a := newAnalysis()
	total := 0.0
	for _, ubo := range c.BeneficialOwners {
		total += ubo.OwnershipPercentage
	}
	a.Metrics["total_beneficial_owners"] = len(c.BeneficialOwners)
	a.Metrics["ownership_coverage"] = round(total, 2)

	if len(c.BeneficialOwners) == 0 {
		a.Elevate(levelHigh)
		a.Concerns = append(a.Concerns, "No beneficial owners declared: ownership structure opaque")
		factors.add(15, "ownership_transparency", "No beneficial owners declared")
		return a
	}

	switch {
	case total < 75:
		a.Elevate(levelHigh)
		a.Concerns = append(a.Concerns, fmt.Sprintf("Only %.0f%% of ownership identified: %.0f%% unaccounted for", total, 100-total))
		factors.add(12, "ownership_transparency", "Ownership gap: %.0f%% unidentified", 100-total)
	case total < 100:
		a.Findings = append(a.Findings, fmt.Sprintf("%.0f%% of ownership identified: %.0f%% held by minor shareholders", total, 100-total))
	}

	n := len(c.BeneficialOwners)
	switch {
	case n > 5:
		a.Elevate(levelHigh)
		a.Concerns = append(a.Concerns, fmt.Sprintf("Complex ownership: %d beneficial owners", n))
		factors.add(10, "ownership_complexity", "Complex ownership structure (%d beneficial owners)", n)
	case n > 3:
		a.Elevate(levelMedium)
		a.Findings = append(a.Findings, fmt.Sprintf("Moderately complex ownership: %d beneficial owners", n))
	}

	var countries, foreign []string
	for _, ubo := range c.BeneficialOwners {
		for _, country := range []string{ubo.Citizenship, ubo.CountryOfResidence} {
			if country == "" || slices.Contains(countries, country) {
				continue
			}
			countries = append(countries, country)
			if !domain.IsDomestic(country) {
				foreign = append(foreign, country)
			}
		}
	}
	slices.Sort(countries)
	slices.Sort(foreign)
	if len(foreign) > 3 {
		a.Elevate(levelHigh)
		a.Concerns = append(a.Concerns, fmt.Sprintf("Beneficial owners span %d non-Canadian jurisdictions", len(foreign)))
		factors.add(10, "ownership_complexity", "Multi-jurisdictional ownership: UBOs in %s", strings.Join(foreign, ", "))
	}
	a.Metrics["ubo_jurisdictions"] = countries

	peps := 0
	for _, ubo := range c.BeneficialOwners {
		if ubo.PEPSelfDeclaration {
			peps++
			a.Concerns = append(a.Concerns, fmt.Sprintf("PEP beneficial owner: %s (%s%%)", ubo.FullName, ubo.OwnershipLabel()))
		}
	}
	if peps > 0 {
		a.Elevate(levelHigh)
		factors.add(20, "pep", "PEP beneficial owner(s): %d", peps)
	}

	for _, ubo := range c.BeneficialOwners {
		for _, country := range []string{ubo.Citizenship, ubo.CountryOfResidence} {
			switch {
			case country == "":
			case domain.IsFATFBlackListed(country):
				a.Elevate(levelHigh)
				a.Concerns = append(a.Concerns, fmt.Sprintf("UBO %s linked to FATF black list country: %s", ubo.FullName, country))
				factors.add(20, "ubo_jurisdiction", "UBO %s: FATF black list: %s", ubo.FullName, country)
			case domain.IsFATFGreyListed(country):
				a.Elevate(levelMedium)
				a.Concerns = append(a.Concerns, fmt.Sprintf("UBO %s linked to FATF grey list country: %s", ubo.FullName, country))
				factors.add(10, "ubo_jurisdiction", "UBO %s: FATF grey list: %s", ubo.FullName, country)
			}
		}
	}
	return a
}

// highRiskIndustry matches the normalised industry against the reference list in either direction.
func highRiskIndustry(industry string) bool {
	key := domain.NormaliseKey(industry)
	for _, hr := range domain.HighRiskIndustries {
		if strings.Contains(key, hr) || strings.Contains(hr, key) {
			return true
		}
	}
	return false
}

func analyseOperations(c *domain.BusinessClient, now time.Time, factors *factorList) domain.RiskAnalysis {
	a := newAnalysis()

	switch age, ok := c.AgeYears(now); {
	case strings.TrimSpace(c.IncorporationDate) == "":
		a.Findings = append(a.Findings, "Incorporation date not provided")
	case !ok:
		a.Findings = append(a.Findings, "Incorporation date format not parseable")
	default:
		a.Metrics["entity_age_years"] = round(age, 1)
		switch {
		case age < 1:
			a.Elevate(levelHigh)
			a.Concerns = append(a.Concerns, fmt.Sprintf("Very new entity (%.1f years): shell company risk", age))
			factors.add(15, "entity_age", "Entity age < 1 year (%.1f years)", age)
		case age < 2:
			a.Elevate(levelMedium)
			a.Concerns = append(a.Concerns, fmt.Sprintf("New entity (%.1f years): limited track record", age))
			factors.add(8, "entity_age", "Entity age < 2 years (%.1f years)", age)
		case age < 5:
			a.Findings = append(a.Findings, fmt.Sprintf("Entity age: %.1f years: relatively young", age))
		}
	}

	switch {
	case c.Industry == "":
		a.Findings = append(a.Findings, "Industry not specified")
	case highRiskIndustry(c.Industry):
		a.Elevate(levelHigh)
		a.Concerns = append(a.Concerns, "High-risk industry: "+c.Industry)
		factors.add(15, "industry", "High-risk industry: %s", c.Industry)
	default:
		a.Findings = append(a.Findings, fmt.Sprintf("Industry: %s (not high-risk)", c.Industry))
	}

	if c.NatureOfBusiness != "" {
		nature := strings.ToLower(c.NatureOfBusiness)
		for _, group := range natureKeywords {
			for _, kw := range group.keywords {
				if !strings.Contains(nature, kw) {
					continue
				}
				a.Elevate(levelMedium)
				a.Concerns = append(a.Concerns, fmt.Sprintf("Nature of business includes high-risk keyword: '%s' (category: %s)", kw, group.category))
				factors.add(10, "nature_of_business", "Nature of business: %s: '%s'", group.category, c.NatureOfBusiness)
				break
			}
		}
	}

	if j := c.IncorporationJurisdiction; j != "" {
		switch {
		case domain.IsOffshore(j):
			a.Elevate(levelHigh)
			a.Concerns = append(a.Concerns, "Incorporated in offshore jurisdiction: "+j)
			factors.add(12, "incorporation_jurisdiction", "Offshore incorporation: %s", j)
		case domain.IsFATFBlackListed(j):
			a.Elevate(levelHigh)
			a.Concerns = append(a.Concerns, "Incorporated in FATF black list country: "+j)
			factors.add(25, "incorporation_jurisdiction", "FATF black list incorporation: %s", j)
		case domain.IsFATFGreyListed(j):
			a.Elevate(levelMedium)
			a.Concerns = append(a.Concerns, "Incorporated in FATF grey list country: "+j)
			factors.add(12, "incorporation_jurisdiction", "FATF grey list incorporation: %s", j)
		}
	}

	var highRiskOps []map[string]any
	for _, country := range c.CountriesOfOperation {
		if domain.IsDomestic(country) {
			continue
		}
		var label string
		var points int
		switch {
		case domain.IsFATFBlackListed(country):
			label, points = "FATF black list", 25
		case domain.IsOFACSanctioned(country):
			label, points = "OFAC sanctioned", 15
		case domain.IsFATFGreyListed(country):
			label, points = "FATF grey list", 10
		case domain.IsOffshore(country):
			label, points = "offshore jurisdiction", 8
		default:
			continue
		}
		if points >= 15 {
			a.Elevate(levelHigh)
		} else {
			a.Elevate(levelMedium)
		}
		a.Concerns = append(a.Concerns, fmt.Sprintf("Operations in %s country: %s", label, country))
		factors.add(points, "operational_jurisdiction", "Operations in %s (%s)", country, label)
		highRiskOps = append(highRiskOps, map[string]any{"country": country, "designation": label})
	}
	a.Metrics["countries_of_operation"] = c.CountriesOfOperation
	a.Metrics["high_risk_operations"] = highRiskOps
	return a
}

func analyseTransactions(c *domain.BusinessClient, now time.Time, factors *factorList) domain.RiskAnalysis {
	a := newAnalysis()
	volume, revenue := c.ExpectedTransactionVolume, c.AnnualRevenue

	if volume > 0 && revenue > 0 {
		ratio := volume / revenue
		a.Metrics["volume_revenue_ratio"] = round(ratio, 2)
		switch {
		case ratio > 10:
			a.Elevate(levelHigh)
			a.Concerns = append(a.Concerns, fmt.Sprintf("Transaction volume (%s) is %.0fx annual revenue (%s): significantly disproportionate",
				money(volume), ratio, money(revenue)))
			factors.add(15, "transaction_anomaly", "Transaction volume %.0fx revenue (%s vs %s)", ratio, money(volume), money(revenue))
		case ratio > 5:
			a.Elevate(levelMedium)
			a.Concerns = append(a.Concerns, fmt.Sprintf("Transaction volume is %.1fx revenue: elevated", ratio))
			factors.add(8, "transaction_anomaly", "Elevated transaction volume (%.1fx revenue)", ratio)
		default:
			a.Findings = append(a.Findings, fmt.Sprintf("Transaction volume is %.1fx revenue: within normal range", ratio))
		}
	}

	if volume > 0 {
		a.Metrics["expected_volume"] = volume
		switch {
		case volume > 50_000_000:
			a.Elevate(levelMedium)
			a.Findings = append(a.Findings, "High absolute transaction volume: "+money(volume))
			factors.add(10, "transaction_volume", "High transaction volume: %s", money(volume))
		case volume > 10_000_000:
			a.Findings = append(a.Findings, "Significant transaction volume: "+money(volume))
		}
	}

	if freq := strings.ToLower(c.ExpectedTransactionFreq); containsAny(freq, "daily", "multiple") {
		a.Findings = append(a.Findings, "High-frequency trading expected: "+c.ExpectedTransactionFreq)
		if revenue > 0 && revenue < 1_000_000 {
			a.Concerns = append(a.Concerns, "High-frequency transactions for relatively small entity")
			factors.add(8, "transaction_frequency", "High-frequency transactions for small entity")
		}
	}

	if volume > 5_000_000 {
		if age, ok := c.AgeYears(now); ok && age < 2 {
			a.Elevate(levelHigh)
			a.Concerns = append(a.Concerns, fmt.Sprintf("High transaction volume (%s) for entity less than %.1f years old", money(volume), age))
			factors.add(12, "transaction_entity_age", "High volume for young entity: %s at %.1f years old", money(volume), age)
		}
	}

	for _, acct := range c.AccountRequests {
		if acct.InitialDeposit < 1_000_000 {
			continue
		}
		a.Findings = append(a.Findings, fmt.Sprintf("Large initial deposit: %s for '%s'", money(acct.InitialDeposit), acct.AccountType))
		if revenue > 0 {
			if r := acct.InitialDeposit / revenue; r > 2 {
				a.Concerns = append(a.Concerns, fmt.Sprintf("Initial deposit (%s) exceeds %.1fx annual revenue", money(acct.InitialDeposit), r))
			}
		}
	}
	return a
}

func businessNarrative(c *domain.BusinessClient, r *domain.BusinessRiskResult) string {
	var b strings.Builder
	kind := c.BusinessType
	if kind == "" {
		kind = "business entity"
	}
	fmt.Fprintf(&b, "%s is a %s", c.LegalName, kind)
	if c.OperatingName != "" && c.OperatingName != c.LegalName {
		fmt.Fprintf(&b, " operating as %s", c.OperatingName)
	}
	if c.Industry != "" {
		fmt.Fprintf(&b, " in the %s industry", c.Industry)
	}
	b.WriteString(".")
	parts := []string{b.String()}

	if age, ok := r.OperationalAnalysis.Metrics["entity_age_years"].(float64); ok {
		if age < 2 {
			parts = append(parts, fmt.Sprintf("The entity is relatively new at %.1f years old, which increases risk due to limited operating history.", age))
		} else {
			parts = append(parts, fmt.Sprintf("The entity has been operating for %.1f years.", age))
		}
	}

	n := len(c.BeneficialOwners)
	coverage, _ := r.OwnershipAnalysis.Metrics["ownership_coverage"].(float64)
	switch {
	case n == 0:
		parts = append(parts, "No beneficial owners have been declared, which represents a significant transparency gap.")
	case coverage < 100:
		parts = append(parts, fmt.Sprintf("%d beneficial owner(s) identified covering %.0f%% of ownership.", n, coverage))
	default:
		parts = append(parts, fmt.Sprintf("Ownership structure includes %d identified beneficial owner(s) covering %.0f%% of the entity.", n, coverage))
	}

	if total := r.TotalPoints(); total > 0 {
		var categories []string
		for _, f := range r.RiskFactors {
			if !slices.Contains(categories, f.Category) {
				categories = append(categories, f.Category)
			}
		}
		slices.Sort(categories)
		parts = append(parts, fmt.Sprintf("The assessment identified %d risk factor(s) totaling %d points across categories: %s.",
			len(r.RiskFactors), total, strings.Join(categories, ", ")))
	}

	var concerns []string
	concerns = append(concerns, r.OwnershipAnalysis.Concerns...)
	concerns = append(concerns, r.OperationalAnalysis.Concerns...)
	concerns = append(concerns, r.TransactionAnalysis.Concerns...)
	if len(concerns) == 0 {
		parts = append(parts, "No significant concerns were identified in this assessment.")
	} else {
		summary := "Key concerns: " + strings.Join(concerns[:min(5, len(concerns))], "; ")
		if !strings.HasSuffix(concerns[0], ".") {
			summary += "."
		}
		parts = append(parts, summary)
	}
	return strings.Join(parts, " ")
}
