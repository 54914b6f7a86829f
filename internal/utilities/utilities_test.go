package utilities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/kyc-onboard/internal/core/domain"
)

var testNow = time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)

func individual(mut func(*domain.IndividualClient)) domain.Client {
	c := domain.IndividualClient{
		FullName:           "Jane Doe",
		DateOfBirth:        "1980-04-02",
		Citizenship:        "Canada",
		CountryOfResidence: "Canada",
		CountryOfBirth:     "Canada",
		Address:            &domain.Address{Street: "1 King St W", City: "Toronto", Country: "Canada"},
		TaxResidencies:     []string{"Canada"},
		Employment:         &domain.EmploymentInfo{Status: "employed", Occupation: "engineer"},
		AnnualIncome:       120_000,
		NetWorth:           600_000,
		SourceOfFunds:      "employment_income",
		AccountRequests: []domain.AccountRequest{{
			AccountType: "tfsa", RiskTolerance: "medium", InvestmentObjectives: "balanced", TimeHorizon: "5 years", InitialDeposit: 20_000,
		}},
	}
	if mut != nil {
		mut(&c)
	}
	return domain.NewIndividual(c)
}

func business(mut func(*domain.BusinessClient)) domain.Client {
	c := domain.BusinessClient{
		LegalName:                 "Maple Widgets Inc",
		BusinessType:              "corporation",
		IncorporationDate:         "2010-06-01",
		IncorporationJurisdiction: "Ontario",
		Industry:                  "manufacturing",
		NatureOfBusiness:          "industrial widget manufacturing",
		CountriesOfOperation:      []string{"Canada"},
		AnnualRevenue:             5_000_000,
		ExpectedTransactionVolume: 4_000_000,
		SourceOfFunds:             "business revenue",
		BeneficialOwners: []domain.BeneficialOwner{
			{FullName: "Alice Maple", OwnershipPercentage: 60, Citizenship: "Canada", CountryOfResidence: "Canada"},
			{FullName: "Bob Maple", OwnershipPercentage: 40, Citizenship: "Canada", CountryOfResidence: "Canada"},
		},
		AuthorizedSignatories: []string{"Alice Maple"},
		AccountRequests:       []domain.AccountRequest{{AccountType: "corporate cash", InitialDeposit: 100_000}},
	}
	if mut != nil {
		mut(&c)
	}
	return domain.NewBusiness(c)
}

func evidenceIDs(records []domain.EvidenceRecord) []string {
	ids := make([]string, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.EvidenceID)
	}
	return ids
}

func requireValidUtilityEvidence(t *testing.T, records []domain.EvidenceRecord, source domain.UtilityName) {
	t.Helper()
	require.NotEmpty(t, records)
	for _, r := range records {
		assert.NoError(t, r.Validate(), r.EvidenceID)
		assert.Equal(t, domain.SourceUtility, r.SourceKind)
		assert.Equal(t, string(source), r.SourceName)
		assert.Equal(t, domain.EvidenceInferred, r.EvidenceClass)
		assert.Equal(t, testNow, r.Timestamp)
	}
}

func TestNameKey(t *testing.T) {
	assert.Equal(t, "jane_doe", nameKey(" Jane Doe "))
	assert.Equal(t, "acme_co.", nameKey("ACME Co."))
}

func TestMoney(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "$0"},
		{999, "$999"},
		{1000, "$1,000"},
		{1234567.4, "$1,234,567"},
		{-25000, "-$25,000"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, money(tt.in))
	}
}
