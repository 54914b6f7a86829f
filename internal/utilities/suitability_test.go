package utilities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/kyc-onboard/internal/core/domain"
)

func TestSuitability_CleanIndividual(t *testing.T) {
	res := Suitability(individual(nil), testNow)

	assert.True(t, res.Suitable)
	assert.Empty(t, res.Concerns)
	assert.Empty(t, res.Recommendations)
	require.Contains(t, res.Details, "income_assessment")
	require.NotNil(t, res.Details["income_assessment"].Ratio)
	assert.InDelta(t, 5.0, *res.Details["income_assessment"].Ratio, 0.001)
	for _, dim := range []string{"risk_tolerance_assessment", "horizon_assessment", "source_of_funds_assessment", "account_type_assessment"} {
		assert.Equal(t, domain.StatusPass, res.Details[dim].Status, dim)
	}

	require.Len(t, res.EvidenceRecords, 1)
	ev := res.EvidenceRecords[0]
	assert.Equal(t, "suit_jane_doe", ev.EvidenceID)
	assert.Equal(t, domain.DispositionClear, ev.Disposition)
	assert.Equal(t, domain.ConfidenceHigh, ev.Confidence)
	requireValidUtilityEvidence(t, res.EvidenceRecords, domain.UtilitySuitability)
}

func TestSuitability_RetiredHighIncomeWithSalaryFunds(t *testing.T) {
	res := Suitability(individual(func(c *domain.IndividualClient) {
		c.Employment = &domain.EmploymentInfo{Status: "Retired"}
		c.AnnualIncome = 250_000
		c.NetWorth = 1_000_000
		c.SourceOfFunds = "salary"
	}), testNow)

	assert.False(t, res.Suitable)
	assert.Equal(t, domain.StatusFlag, res.Details["income_assessment"].Status)
	assert.Equal(t, domain.StatusConcern, res.Details["source_of_funds_assessment"].Status)
	require.NotEmpty(t, res.Recommendations)
	assert.Equal(t, "Resolve identified concerns before proceeding with onboarding", res.Recommendations[0])
	assert.Equal(t, domain.DispositionPendingReview, res.EvidenceRecords[0].Disposition)
}

func TestSuitability_EmployedWithoutIncomeIsConcern(t *testing.T) {
	res := Suitability(individual(func(c *domain.IndividualClient) {
		c.AnnualIncome = 0
	}), testNow)

	assert.False(t, res.Suitable)
	assert.Equal(t, domain.StatusConcern, res.Details["income_assessment"].Status)
	assert.Nil(t, res.Details["income_assessment"].Ratio)
}

func TestSuitability_MissingInformationIsIncomplete(t *testing.T) {
	res := Suitability(individual(func(c *domain.IndividualClient) {
		c.Employment = nil
		c.SourceOfFunds = ""
		c.AccountRequests = nil
	}), testNow)

	assert.True(t, res.Suitable)
	assert.Equal(t, domain.StatusIncomplete, res.Details["income_assessment"].Status)
	assert.Equal(t, domain.StatusIncomplete, res.Details["risk_tolerance_assessment"].Status)
	assert.Equal(t, "Address flagged items and complete missing information", res.Recommendations[0])
	assert.Equal(t, domain.ConfidenceMedium, res.EvidenceRecords[0].Confidence)
}

func TestSuitability_ConservativeGrowthConflict(t *testing.T) {
	res := Suitability(individual(func(c *domain.IndividualClient) {
		c.AccountRequests = []domain.AccountRequest{{AccountType: "rrsp", RiskTolerance: "Conservative", InvestmentObjectives: "growth", TimeHorizon: "short term"}}
	}), testNow)

	assert.Equal(t, domain.StatusFlag, res.Details["risk_tolerance_assessment"].Status)
	assert.Equal(t, domain.StatusConcern, res.Details["horizon_assessment"].Status)
	assert.False(t, res.Suitable)
}

func TestSuitability_Business(t *testing.T) {
	clean := Suitability(business(nil), testNow)
	assert.True(t, clean.Suitable)
	assert.Equal(t, "suit_biz_maple_widgets_inc", clean.EvidenceRecords[0].EvidenceID)
	assert.Equal(t, domain.DispositionClear, clean.EvidenceRecords[0].Disposition)

	res := Suitability(business(func(c *domain.BusinessClient) {
		c.AccountRequests = []domain.AccountRequest{{AccountType: "RRSP"}}
		c.ExpectedTransactionVolume = 40_000_000
	}), testNow)
	assert.False(t, res.Suitable)
	assert.Equal(t, domain.StatusConcern, res.Details["business_account_assessment"].Status)
	assert.Equal(t, domain.StatusConcern, res.Details["revenue_assessment"].Status)
	require.NotNil(t, res.Details["revenue_assessment"].Ratio)
	assert.InDelta(t, 8.0, *res.Details["revenue_assessment"].Ratio, 0.001)
}
