package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/kyc-onboard/internal/core/domain"
)

func factorLabels(ra domain.RiskAssessment) []string {
	labels := make([]string, len(ra.RiskFactors))
	for i, f := range ra.RiskFactors {
		labels[i] = f.Factor
	}
	return labels
}

func TestRiskScorer_Score_CleanIndividual(t *testing.T) {
	scorer := NewRiskScorer(fixedClock)

	ra := scorer.Score(individualClient(nil))

	assert.Equal(t, 0, ra.TotalScore)
	assert.Equal(t, domain.RiskLow, ra.RiskLevel)
	assert.True(t, ra.IsPreliminary)
	assert.Empty(t, ra.RiskFactors)
	require.Len(t, ra.ScoreHistory, 1)
	assert.Equal(t, domain.ScoreHistoryEntry{Stage: domain.StageIntake, Score: 0, Level: domain.RiskLow}, ra.ScoreHistory[0])
}

func TestRiskScorer_Score_IndividualPEP(t *testing.T) {
	scorer := NewRiskScorer(fixedClock)

	tests := []struct {
		name    string
		details string
		label   string
		points  int
	}{
		{"foreign", "Former foreign minister of trade", "Foreign PEP (self-declared)", 40},
		{"head of international organisation", "Head of international organization", "Head of International Organization", 30},
		{"domestic", "Member of provincial legislature", "Domestic PEP (self-declared)", 25},
		{"hio abbreviation", "HIO, World Trade Organization", "Head of International Organization", 30},
		{"foreign beats hio substring", "Former foreign minister of Ethiopia", "Foreign PEP (self-declared)", 40},
		{"foreign with head of international", "Foreign head of international bank", "Foreign PEP (self-declared)", 40},
		{"international without head", "Senior international envoy", "Foreign PEP (self-declared)", 40},
		{"hio inside a word", "Mayor of a town in Ohio", "Domestic PEP (self-declared)", 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ra := scorer.Score(individualClient(func(c *domain.IndividualClient) {
				c.PEPSelfDeclaration = true
				c.PEPDetails = tt.details
			}))
			require.Len(t, ra.RiskFactors, 1)
			assert.Equal(t, tt.label, ra.RiskFactors[0].Factor)
			assert.Equal(t, tt.points, ra.TotalScore)
			assert.Equal(t, "pep", ra.RiskFactors[0].Category)
			assert.Equal(t, "client_intake", ra.RiskFactors[0].Source)
		})
	}
}

func TestRiskScorer_Score_HighRiskIndividual(t *testing.T) {
	scorer := NewRiskScorer(fixedClock)

	ra := scorer.Score(individualClient(func(c *domain.IndividualClient) {
		c.PEPSelfDeclaration = true
		c.PEPDetails = "Foreign ambassador"
		c.Citizenship = "Iran"
		c.CountryOfBirth = "Iran"
		c.AnnualIncome = 50_000
		c.NetWorth = 3_000_000
		c.TaxResidencies = []string{"Canada", "Nigeria", "Cayman Islands", "France"}
	}))

	assert.Equal(t, []string{
		"Foreign PEP (self-declared)",
		"Citizenship: Iran (FATF black list)",
		"Wealth/income ratio: 60x (very high)",
		"Tax residency: Nigeria (FATF grey list)",
		"Tax residency: Cayman Islands (offshore jurisdiction)",
		"Non-Canadian tax residency: France",
	}, factorLabels(ra))
	assert.Equal(t, 40+30+15+10+8+3, ra.TotalScore)
	assert.Equal(t, domain.RiskCritical, ra.RiskLevel)
}

func TestRiskScorer_Score_Business(t *testing.T) {
	scorer := NewRiskScorer(fixedClock)

	t.Run("established manufacturer", func(t *testing.T) {
		ra := scorer.Score(businessClient(nil))
		assert.Equal(t, []string{"Transaction volume > $1M"}, factorLabels(ra))
		assert.Equal(t, 5, ra.TotalScore)
		assert.Equal(t, domain.RiskLow, ra.RiskLevel)
	})

	t.Run("shell company profile", func(t *testing.T) {
		ra := scorer.Score(businessClient(func(c *domain.BusinessClient) {
			c.IncorporationDate = "2025-12-01"
			c.IncorporationJurisdiction = "Cayman Islands"
			c.Industry = "Money Services Business"
			c.CountriesOfOperation = []string{"Canada", "Iran", "Panama"}
			c.ExpectedTransactionVolume = 12_000_000
			c.BeneficialOwners = nil
			c.USNexus = true
		}))
		assert.Equal(t, []string{
			"Entity age < 1 year (shell company risk)",
			"High-risk industry: Money Services Business",
			"Operations in Iran (FATF black list)",
			"Operations in Panama (offshore jurisdiction)",
			"Transaction volume > $10M",
			"No beneficial owners declared",
			"US nexus: FATCA/OFAC compliance required",
			"Incorporated in Cayman Islands (offshore)",
		}, factorLabels(ra))
		assert.Equal(t, 15+15+25+8+10+15+10+12, ra.TotalScore)
		assert.Equal(t, domain.RiskCritical, ra.RiskLevel)
	})
}

func TestRiskScorer_Score_LevelFollowsTotal(t *testing.T) {
	scorer := NewRiskScorer(fixedClock)
	clients := []domain.Client{
		individualClient(nil),
		businessClient(nil),
		individualClient(func(c *domain.IndividualClient) { c.Citizenship = "Nigeria"; c.USPerson = true }),
	}
	for _, c := range clients {
		ra := scorer.Score(c)
		sum := 0
		for _, f := range ra.RiskFactors {
			sum += f.Points
		}
		assert.Equal(t, sum, ra.TotalScore)
		assert.Equal(t, domain.LevelForScore(ra.TotalScore), ra.RiskLevel)
	}
}

func TestRiskScorer_Revise(t *testing.T) {
	scorer := NewRiskScorer(fixedClock)
	pre := riskOf(10)

	revised := scorer.Revise(pre, []domain.PartyScore{{Name: "X", Score: 30}}, nil)

	assert.Equal(t, 25, revised.TotalScore)
	assert.Equal(t, domain.RiskMedium, revised.RiskLevel)
	assert.False(t, revised.IsPreliminary)
	require.Len(t, revised.ScoreHistory, len(pre.ScoreHistory)+1)
	assert.Equal(t, domain.StageSynthesisRevision, revised.ScoreHistory[1].Stage)

	last := revised.RiskFactors[len(revised.RiskFactors)-1]
	assert.Equal(t, "UBO cascade: X (score 30 x 0.5)", last.Factor)
	assert.Equal(t, 15, last.Points)
	assert.Equal(t, "ubo_cascade", last.Category)
	assert.Equal(t, "synthesis", last.Source)

	// The preliminary assessment is untouched.
	assert.Equal(t, 10, pre.TotalScore)
	assert.True(t, pre.IsPreliminary)
}

func TestRiskScorer_Revise_TiesAndRounding(t *testing.T) {
	scorer := NewRiskScorer(fixedClock)

	revised := scorer.Revise(riskOf(0), []domain.PartyScore{
		{Name: "Alice", Score: 25},
		{Name: "Bob", Score: 25},
		{Name: "Carol", Score: 15},
	}, nil)

	require.Len(t, revised.RiskFactors, 2)
	assert.Equal(t, "UBO cascade: Alice (score 25 x 0.5)", revised.RiskFactors[1].Factor)
	assert.Equal(t, 12, revised.RiskFactors[1].Points)
}

func TestRiskScorer_Revise_NoRelatedRisk(t *testing.T) {
	scorer := NewRiskScorer(fixedClock)
	extra := domain.RiskFactor{Factor: "Undisclosed directorship", Points: 8, Category: "synthesis_elevation", Source: "synthesis"}

	revised := scorer.Revise(riskOf(20), []domain.PartyScore{{Name: "Alice", Score: 0}}, []domain.RiskFactor{extra})

	assert.Equal(t, 28, revised.TotalScore)
	assert.Equal(t, []string{"test", "Undisclosed directorship"}, factorLabels(revised))
	assert.Len(t, revised.ScoreHistory, 2)
}
