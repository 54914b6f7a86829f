package services

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/custodia-labs/kyc-onboard/internal/core/domain"
	"github.com/custodia-labs/kyc-onboard/internal/core/ports/driving"
)

// Ensure RiskScorer implements the interface.
var _ driving.RiskScorer = (*RiskScorer)(nil)

// Factor sources.
const (
	sourceIntake    = "client_intake"
	sourceSynthesis = "synthesis"
)

// relatedPartyWeight scales the highest related-party score into the revised assessment.
const relatedPartyWeight = 0.5

// RiskScorer computes point-weighted risk assessments from intake data.
type RiskScorer struct {
	now func() time.Time
}

// NewRiskScorer creates a scorer. A nil clock defaults to time.Now.
func NewRiskScorer(now func() time.Time) *RiskScorer {
	if now == nil {
		now = time.Now
	}
	return &RiskScorer{now: now}
}

// Score computes the preliminary assessment for a client.
func (s *RiskScorer) Score(client domain.Client) domain.RiskAssessment {
	switch {
	case client.Business != nil:
		return domain.NewRiskAssessment(s.businessFactors(client.Business))
	case client.Individual != nil:
		return domain.NewRiskAssessment(s.individualFactors(client.Individual))
	default:
		return domain.NewRiskAssessment(nil)
	}
}

// Revise appends the weighted highest related-party score and any extra factors.
// Ties resolve to the first party in declaration order.
func (s *RiskScorer) Revise(pre domain.RiskAssessment, related []domain.PartyScore, extra []domain.RiskFactor) domain.RiskAssessment {
	var added []domain.RiskFactor

	best := -1
	for i, p := range related {
		if best < 0 || p.Score > related[best].Score {
			best = i
		}
	}
	if best >= 0 && related[best].Score > 0 {
		top := related[best]
		added = append(added, domain.RiskFactor{
			Factor:   fmt.Sprintf("UBO cascade: %s (score %d x 0.5)", top.Name, top.Score),
			Points:   int(float64(top.Score) * relatedPartyWeight),
			Category: "ubo_cascade",
			Source:   sourceSynthesis,
		})
	}
	added = append(added, extra...)

	return pre.WithFactors(domain.StageSynthesisRevision, added...)
}

// hioWord matches the HIO abbreviation but not words like "Ethiopia" or "Ohio".
var hioWord = regexp.MustCompile(`\bhio\b`)

func intakeFactor(label string, points int, category string) domain.RiskFactor {
	return domain.RiskFactor{Factor: label, Points: points, Category: category, Source: sourceIntake}
}

func (s *RiskScorer) individualFactors(c *domain.IndividualClient) []domain.RiskFactor {
	var factors []domain.RiskFactor

	if c.PEPSelfDeclaration {
		details := strings.ToLower(c.PEPDetails)
		switch {
		case strings.Contains(details, "foreign"):
			factors = append(factors, intakeFactor("Foreign PEP (self-declared)", 40, "pep"))
		case strings.Contains(details, "head of international") || hioWord.MatchString(details):
			factors = append(factors, intakeFactor("Head of International Organization", 30, "pep"))
		case strings.Contains(details, "international"):
			factors = append(factors, intakeFactor("Foreign PEP (self-declared)", 40, "pep"))
		default:
			factors = append(factors, intakeFactor("Domestic PEP (self-declared)", 25, "pep"))
		}
	}

	citizenship := strings.TrimSpace(c.Citizenship)
	switch {
	case domain.IsFATFBlackListed(citizenship):
		factors = append(factors, intakeFactor(fmt.Sprintf("Citizenship: %s (FATF black list)", citizenship), 30, "citizenship"))
	case domain.IsFATFGreyListed(citizenship):
		factors = append(factors, intakeFactor(fmt.Sprintf("Citizenship: %s (FATF grey list)", citizenship), 15, "citizenship"))
	case domain.IsOFACSanctioned(citizenship):
		factors = append(factors, intakeFactor(fmt.Sprintf("Citizenship: %s (OFAC sanctioned)", citizenship), 20, "citizenship"))
	}

	if cob := strings.TrimSpace(c.CountryOfBirth); cob != "" && !strings.EqualFold(cob, citizenship) {
		switch {
		case domain.IsFATFBlackListed(cob):
			factors = append(factors, intakeFactor(fmt.Sprintf("Country of birth: %s (FATF black list)", cob), 15, "country_of_birth"))
		case domain.IsFATFGreyListed(cob):
			factors = append(factors, intakeFactor(fmt.Sprintf("Country of birth: %s (FATF grey list)", cob), 8, "country_of_birth"))
		}
	}

	if c.Employment != nil && c.Employment.Occupation != "" {
		if domain.MatchesAnyKey(domain.NormaliseKey(c.Employment.Occupation), domain.HighRiskOccupations) {
			factors = append(factors, intakeFactor("High-risk occupation: "+c.Employment.Occupation, 10, "occupation"))
		}
	}

	if c.SourceOfFunds != "" {
		if pts := domain.SourceOfFundsRisk[domain.NormaliseKey(c.SourceOfFunds)]; pts > 0 {
			factors = append(factors, intakeFactor("Source of funds: "+c.SourceOfFunds, pts, "source_of_funds"))
		}
	}

	if c.NetWorth > 0 && c.AnnualIncome > 0 {
		ratio := c.NetWorth / c.AnnualIncome
		switch {
		case ratio > 50:
			factors = append(factors, intakeFactor(fmt.Sprintf("Wealth/income ratio: %.0fx (very high)", ratio), 15, "wealth_ratio"))
		case ratio > 20:
			factors = append(factors, intakeFactor(fmt.Sprintf("Wealth/income ratio: %.0fx (elevated)", ratio), 8, "wealth_ratio"))
		}
	}

	if c.USPerson {
		factors = append(factors, intakeFactor("US person: FATCA reporting required", 5, "us_nexus"))
	}

	for _, tr := range c.TaxResidencies {
		if domain.IsDomestic(tr) {
			continue
		}
		switch {
		case domain.IsFATFBlackListed(tr):
			factors = append(factors, intakeFactor(fmt.Sprintf("Tax residency: %s (FATF black list)", tr), 20, "tax_residency"))
		case domain.IsFATFGreyListed(tr):
			factors = append(factors, intakeFactor(fmt.Sprintf("Tax residency: %s (FATF grey list)", tr), 10, "tax_residency"))
		case domain.IsOffshore(tr):
			factors = append(factors, intakeFactor(fmt.Sprintf("Tax residency: %s (offshore jurisdiction)", tr), 8, "tax_residency"))
		default:
			factors = append(factors, intakeFactor("Non-Canadian tax residency: "+tr, 3, "tax_residency"))
		}
	}

	if c.ThirdPartyDetermination {
		factors = append(factors, intakeFactor("Third-party account determination", 15, "third_party"))
	}

	return factors
}

func (s *RiskScorer) businessFactors(c *domain.BusinessClient) []domain.RiskFactor {
	var factors []domain.RiskFactor

	if years, ok := c.AgeYears(s.now()); ok {
		switch {
		case years < 1:
			factors = append(factors, intakeFactor("Entity age < 1 year (shell company risk)", 15, "entity_age"))
		case years < 3:
			factors = append(factors, intakeFactor("Entity age < 3 years", 8, "entity_age"))
		}
	}

	if c.Industry != "" && domain.MatchesAnyKey(domain.NormaliseKey(c.Industry), domain.HighRiskIndustries) {
		factors = append(factors, intakeFactor("High-risk industry: "+c.Industry, 15, "industry"))
	}

	for _, country := range c.CountriesOfOperation {
		if domain.IsDomestic(country) {
			continue
		}
		switch {
		case domain.IsFATFBlackListed(country):
			factors = append(factors, intakeFactor(fmt.Sprintf("Operations in %s (FATF black list)", country), 25, "jurisdiction"))
		case domain.IsFATFGreyListed(country):
			factors = append(factors, intakeFactor(fmt.Sprintf("Operations in %s (FATF grey list)", country), 12, "jurisdiction"))
		case domain.IsOFACSanctioned(country):
			factors = append(factors, intakeFactor(fmt.Sprintf("Operations in %s (OFAC sanctioned)", country), 15, "jurisdiction"))
		case domain.IsOffshore(country):
			factors = append(factors, intakeFactor(fmt.Sprintf("Operations in %s (offshore jurisdiction)", country), 8, "jurisdiction"))
		}
	}

	switch {
	case c.ExpectedTransactionVolume > 10_000_000:
		factors = append(factors, intakeFactor("Transaction volume > $10M", 10, "transaction_volume"))
	case c.ExpectedTransactionVolume > 1_000_000:
		factors = append(factors, intakeFactor("Transaction volume > $1M", 5, "transaction_volume"))
	}

	switch n := len(c.BeneficialOwners); {
	case n > 4:
		factors = append(factors, intakeFactor(fmt.Sprintf("Complex ownership (%d beneficial owners)", n), 10, "ownership_complexity"))
	case n == 0:
		factors = append(factors, intakeFactor("No beneficial owners declared", 15, "ownership_complexity"))
	}

	if c.USNexus {
		factors = append(factors, intakeFactor("US nexus: FATCA/OFAC compliance required", 10, "us_nexus"))
	}

	if domain.IsOffshore(c.IncorporationJurisdiction) {
		factors = append(factors, intakeFactor(fmt.Sprintf("Incorporated in %s (offshore)", c.IncorporationJurisdiction), 12, "incorporation"))
	}

	if c.ThirdPartyDetermination {
		factors = append(factors, intakeFactor("Third-party account determination", 15, "third_party"))
	}

	return factors
}

// containsAny reports whether s contains any of the keywords.
func containsAny(s string, keywords ...string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
