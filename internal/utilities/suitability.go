package utilities

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/custodia-labs/kyc-onboard/internal/core/domain"
)

// assessment accumulates one suitability dimension.
type assessment struct {
	status string
	notes  []string
	ratio  *float64
}

func newAssessment() *assessment { return &assessment{status: domain.StatusPass} }

func (a *assessment) note(format string, args ...any) {
	a.notes = append(a.notes, fmt.Sprintf(format, args...))
}

func (a *assessment) result() domain.SubAssessment {
	return domain.SubAssessment{Status: a.status, Notes: a.notes, Ratio: a.ratio}
}

// suitabilityBuilder collects concerns and recommendations across dimensions.
type suitabilityBuilder struct {
	concerns        []string
	recommendations []string
	details         map[string]domain.SubAssessment
}

func (b *suitabilityBuilder) concern(format string, args ...any) {
	b.concerns = append(b.concerns, fmt.Sprintf(format, args...))
}

func (b *suitabilityBuilder) recommend(format string, args ...any) {
	b.recommendations = append(b.recommendations, fmt.Sprintf(format, args...))
}

func (b *suitabilityBuilder) has(status string) bool {
	for _, d := range b.details {
		if d.Status == status {
			return true
		}
	}
	return false
}

func (b *suitabilityBuilder) statuses() map[string]any {
	out := make(map[string]any, len(b.details))
	for k, v := range b.details {
		out[k] = v.Status
	}
	return out
}

func ratioOf(v float64, places int) *float64 {
	p := math.Pow(10, float64(places))
	r := math.Round(v*p) / p
	return &r
}

var (
	aggressiveTolerances   = []string{"high", "aggressive", "speculative"}
	conservativeTolerances = []string{"low", "conservative"}
	inactiveStatuses       = []string{"retired", "student", "unemployed"}
)

func oneOf(v string, options []string) bool {
	for _, o := range options {
		if v == o {
			return true
		}
	}
	return false
}

// Suitability evaluates CIRO Rule 3202 suitability for the requested accounts.
func Suitability(client domain.Client, now time.Time) *domain.SuitabilityResult {
	switch {
	case client.Business != nil:
		return businessSuitability(client.Business, now)
	case client.Individual != nil:
		return individualSuitability(client.Individual, now)
	default:
		return &domain.SuitabilityResult{
			Concerns: []string{"Unable to determine client type"},
			Details:  map[string]domain.SubAssessment{},
		}
	}
}

func individualSuitability(c *domain.IndividualClient, now time.Time) *domain.SuitabilityResult {
	b := &suitabilityBuilder{details: map[string]domain.SubAssessment{}}

	income := newAssessment()
	if c.Employment != nil {
		status := strings.ToLower(c.Employment.Status)
		switch {
		case status == "employed" || status == "self_employed":
			if c.AnnualIncome <= 0 {
				income.status = domain.StatusConcern
				income.note("Client reports employed/self-employed status but zero or negative income")
				b.concern("Income inconsistency: employment status is '%s' but annual income is %s", c.Employment.Status, money(c.AnnualIncome))
			}
		case oneOf(status, inactiveStatuses):
			if c.AnnualIncome > 200_000 {
				income.status = domain.StatusFlag
				income.note("High income (%s) reported with '%s' employment status: verify source", money(c.AnnualIncome), status)
				b.concern("Income/employment mismatch: %s income with '%s' status", money(c.AnnualIncome), status)
				b.recommend("Request documentation supporting income source given '%s' employment status", status)
			}
		}
	} else {
		income.status = domain.StatusIncomplete
		income.note("Employment information not provided")
		b.recommend("Obtain employment information for suitability assessment")
	}

	switch {
	case c.NetWorth > 0 && c.AnnualIncome > 0:
		ratio := c.NetWorth / c.AnnualIncome
		income.ratio = ratioOf(ratio, 1)
		if ratio > 50 {
			income.note("Net worth is %.0fx annual income: unusually high, verify source of wealth", ratio)
			b.concern("Wealth/income ratio of %.0fx is unusually high", ratio)
			b.recommend("Request detailed source of wealth documentation")
		} else if ratio > 20 {
			income.note("Net worth is %.0fx annual income: elevated ratio", ratio)
		}
	case c.NetWorth == 0:
		income.note("Net worth not provided")
		b.recommend("Obtain net worth estimate for suitability assessment")
	}
	b.details["income_assessment"] = income.result()

	risk := newAssessment()
	for _, acct := range c.AccountRequests {
		tolerance := strings.ToLower(acct.RiskTolerance)
		objectives := strings.ToLower(acct.InvestmentObjectives)

		if oneOf(tolerance, aggressiveTolerances) {
			if c.AnnualIncome > 0 && c.AnnualIncome < 50_000 {
				risk.status = domain.StatusConcern
				risk.note("High risk tolerance for '%s' with income of %s", acct.AccountType, money(c.AnnualIncome))
				b.concern("Risk tolerance mismatch: high/aggressive tolerance with relatively low income (%s)", money(c.AnnualIncome))
			}
			if c.NetWorth > 0 && c.NetWorth < 50_000 {
				risk.status = domain.StatusConcern
				risk.note("High risk tolerance with limited net worth (%s)", money(c.NetWorth))
				b.concern("Risk tolerance mismatch: high/aggressive tolerance with limited net worth (%s)", money(c.NetWorth))
			}
		}
		if oneOf(tolerance, conservativeTolerances) && strings.Contains(objectives, "growth") {
			risk.status = domain.StatusFlag
			risk.note("Conservative risk tolerance conflicts with growth objectives for '%s'", acct.AccountType)
			b.concern("Risk/objective conflict: conservative risk tolerance with growth-oriented investment objectives")
			b.recommend("Discuss risk tolerance vs growth objectives with client to ensure alignment")
		}
		if oneOf(tolerance, aggressiveTolerances) && containsAny(objectives, "income", "preservation", "safety") {
			risk.status = domain.StatusFlag
			risk.note("Aggressive risk tolerance conflicts with income/preservation objectives for '%s'", acct.AccountType)
			b.concern("Risk/objective conflict: aggressive risk tolerance with income or preservation objectives")
		}
	}
	if len(c.AccountRequests) == 0 {
		risk.status = domain.StatusIncomplete
		risk.note("No account requests to assess")
	}
	b.details["risk_tolerance_assessment"] = risk.result()

	horizon := newAssessment()
	for _, acct := range c.AccountRequests {
		objectives := strings.ToLower(acct.InvestmentObjectives)
		h := strings.ToLower(acct.TimeHorizon)
		short := strings.Contains(h, "short") || oneOf(h, []string{"< 1 year", "1 year", "less than 1 year"})
		long := containsAny(h, "long", "10", "20")

		if containsAny(objectives, "growth", "aggressive") && short {
			horizon.status = domain.StatusConcern
			horizon.note("Growth/aggressive objectives with short time horizon for '%s'", acct.AccountType)
			b.concern("Objective/horizon mismatch: growth objectives with short-term horizon")
			b.recommend("Clarify time horizon or adjust investment objectives to match")
		}
		if containsAny(objectives, "preservation", "income") && long {
			horizon.status = domain.StatusFlag
			horizon.note("Preservation/income objectives with long time horizon for '%s': may miss growth opportunity", acct.AccountType)
			b.recommend("Discuss whether preservation-only approach is appropriate for long-term horizon")
		}
	}
	b.details["horizon_assessment"] = horizon.result()

	funds := newAssessment()
	if c.SourceOfFunds != "" {
		sof := strings.ToLower(c.SourceOfFunds)
		employment := ""
		if c.Employment != nil {
			employment = strings.ToLower(c.Employment.Status)
		}
		if containsAny(sof, "employment", "salary") && oneOf(employment, inactiveStatuses) {
			funds.status = domain.StatusConcern
			funds.note("Source of funds is '%s' but employment status is '%s'", c.SourceOfFunds, employment)
			b.concern("Source of funds inconsistency: reports '%s' but employment status is '%s'", c.SourceOfFunds, employment)
			b.recommend("Verify source of funds documentation against employment status")
		}
		if containsAny(sof, "inheritance", "gift") {
			funds.note("Source of funds is '%s': may require supporting documentation", c.SourceOfFunds)
			b.recommend("Request documentation supporting '%s' (e.g., estate documents, gift letter)", c.SourceOfFunds)
		}
		if containsAny(sof, "lottery", "gambling", "cryptocurrency") {
			funds.status = domain.StatusFlag
			funds.note("Higher-risk source of funds: '%s'", c.SourceOfFunds)
			b.concern("Higher-risk source of funds: %s", c.SourceOfFunds)
			b.recommend("Obtain detailed documentation for '%s' source of funds", c.SourceOfFunds)
		}
	} else {
		funds.status = domain.StatusIncomplete
		funds.note("Source of funds not provided")
		b.recommend("Obtain source of funds information")
	}
	b.details["source_of_funds_assessment"] = funds.result()

	account := newAssessment()
	for _, acct := range c.AccountRequests {
		kind := strings.ToLower(acct.AccountType)
		if acct.InitialDeposit > 0 && c.AnnualIncome > 0 {
			ratio := acct.InitialDeposit / c.AnnualIncome
			if ratio > 5 {
				account.status = domain.StatusConcern
				account.note("Initial deposit (%s) is %.1fx annual income for '%s'", money(acct.InitialDeposit), ratio, acct.AccountType)
				b.concern("Large initial deposit relative to income: %s vs %s income", money(acct.InitialDeposit), money(c.AnnualIncome))
				b.recommend("Verify source of initial deposit funds")
			} else if ratio > 2 {
				account.note("Initial deposit is %.1fx annual income: elevated but may be reasonable", ratio)
			}
		}
		if containsAny(kind, "margin", "leverage", "options", "futures", "derivatives") && c.NetWorth > 0 && c.NetWorth < 100_000 {
			account.status = domain.StatusConcern
			account.note("Leveraged/derivative account type '%s' with limited net worth (%s)", acct.AccountType, money(c.NetWorth))
			b.concern("Leverage/derivative account may be unsuitable for client with net worth of %s", money(c.NetWorth))
			b.recommend("Assess client knowledge and experience with leveraged products")
		}
	}
	b.details["account_type_assessment"] = account.result()

	hasConcerns := b.has(domain.StatusConcern)
	hasFlags := b.has(domain.StatusFlag)
	hasIncomplete := b.has(domain.StatusIncomplete)
	suitable := !hasConcerns
	switch {
	case hasConcerns:
		b.recommendations = append([]string{"Resolve identified concerns before proceeding with onboarding"}, b.recommendations...)
	case hasFlags || hasIncomplete:
		b.recommendations = append([]string{"Address flagged items and complete missing information"}, b.recommendations...)
	}

	disposition := domain.DispositionPendingReview
	if suitable && !hasFlags {
		disposition = domain.DispositionClear
	}
	return &domain.SuitabilityResult{
		Suitable:        suitable,
		Concerns:        b.concerns,
		Recommendations: b.recommendations,
		Details:         b.details,
		EvidenceRecords: []domain.EvidenceRecord{b.evidence("suit_"+nameKey(c.FullName), c.FullName, "individual client",
			"Suitability assessment", suitable, disposition, hasIncomplete, now)},
	}
}

func businessSuitability(c *domain.BusinessClient, now time.Time) *domain.SuitabilityResult {
	b := &suitabilityBuilder{details: map[string]domain.SubAssessment{}}

	revenue := newAssessment()
	switch {
	case c.AnnualRevenue > 0 && c.ExpectedTransactionVolume > 0:
		ratio := c.ExpectedTransactionVolume / c.AnnualRevenue
		revenue.ratio = ratioOf(ratio, 2)
		if ratio > 5 {
			revenue.status = domain.StatusConcern
			revenue.note("Expected transaction volume (%s) is %.1fx annual revenue (%s)", money(c.ExpectedTransactionVolume), ratio, money(c.AnnualRevenue))
			b.concern("Transaction volume significantly exceeds annual revenue: possible pass-through or flow-through activity")
			b.recommend("Obtain explanation for transaction volume relative to revenue")
		} else if ratio > 2 {
			revenue.note("Transaction volume is %.1fx revenue: elevated but may be normal for trading/import-export businesses", ratio)
		}
	case c.AnnualRevenue == 0:
		revenue.status = domain.StatusIncomplete
		revenue.note("Annual revenue not provided")
		b.recommend("Obtain annual revenue estimate for suitability assessment")
	}
	b.details["revenue_assessment"] = revenue.result()

	accounts := newAssessment()
	for _, acct := range c.AccountRequests {
		kind := strings.ToLower(acct.AccountType)
		if containsAny(kind, "personal", "rrsp", "tfsa", "resp") {
			accounts.status = domain.StatusConcern
			accounts.note("Registered/personal account type '%s' requested by business entity", acct.AccountType)
			b.concern("Account type '%s' is not appropriate for business entities", acct.AccountType)
		}
		if containsAny(kind, "margin", "leverage", "derivatives") && c.AnnualRevenue > 0 && c.AnnualRevenue < 500_000 {
			accounts.status = domain.StatusFlag
			accounts.note("Leveraged account for small business (revenue: %s)", money(c.AnnualRevenue))
			b.recommend("Verify business has appropriate expertise and resources for leveraged products")
		}
	}
	b.details["business_account_assessment"] = accounts.result()

	funds := newAssessment()
	if c.SourceOfFunds != "" {
		if containsAny(strings.ToLower(c.SourceOfFunds), "personal", "salary") {
			funds.status = domain.StatusFlag
			funds.note("Personal funds declared as source for business account")
			b.concern("Source of funds appears personal rather than business-derived")
			b.recommend("Clarify whether business account will be funded from business operations or personal funds")
		}
	} else {
		funds.status = domain.StatusIncomplete
		funds.note("Source of funds not provided")
		b.recommend("Obtain source of funds for business account")
	}
	b.details["source_of_funds_assessment"] = funds.result()

	hasConcerns := b.has(domain.StatusConcern)
	hasIncomplete := b.has(domain.StatusIncomplete)
	suitable := !hasConcerns
	switch {
	case hasConcerns:
		b.recommendations = append([]string{"Resolve identified concerns before proceeding"}, b.recommendations...)
	case hasIncomplete:
		b.recommendations = append([]string{"Complete missing information for full assessment"}, b.recommendations...)
	}

	disposition := domain.DispositionPendingReview
	if suitable {
		disposition = domain.DispositionClear
	}
	return &domain.SuitabilityResult{
		Suitable:        suitable,
		Concerns:        b.concerns,
		Recommendations: b.recommendations,
		Details:         b.details,
		EvidenceRecords: []domain.EvidenceRecord{b.evidence("suit_biz_"+nameKey(c.LegalName), c.LegalName, "business client",
			"Business suitability assessment", suitable, disposition, hasIncomplete, now)},
	}
}

func (b *suitabilityBuilder) evidence(id, subject, context, label string, suitable bool, disposition domain.Disposition, incomplete bool, now time.Time) domain.EvidenceRecord {
	outcome := "concerns identified"
	if suitable {
		outcome = "suitable"
	}
	confidence := domain.ConfidenceHigh
	if incomplete {
		confidence = domain.ConfidenceMedium
	}
	return record{
		id:      id,
		source:  domain.UtilitySuitability,
		subject: subject,
		context: context,
		claim: fmt.Sprintf("%s: %s. %d concerns, %d recommendations.",
			label, outcome, len(b.concerns), len(b.recommendations)),
		class: domain.EvidenceInferred,
		data: []map[string]any{
			{"concerns_count": len(b.concerns)},
			{"recommendations_count": len(b.recommendations)},
			{"sub_assessments": b.statuses()},
		},
		disposition: disposition,
		confidence:  confidence,
	}.build(now)
}
