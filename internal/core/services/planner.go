package services

import (
	"github.com/custodia-labs/kyc-onboard/internal/core/domain"
	"github.com/custodia-labs/kyc-onboard/internal/core/ports/driving"
)

// Ensure Planner implements the interface.
var _ driving.Planner = (*Planner)(nil)

var (
	individualTasks = []domain.TaskName{
		domain.TaskIndividualSanctions,
		domain.TaskPEPDetection,
		domain.TaskIndividualAdverseMedia,
		domain.TaskJurisdictionRisk,
	}
	businessTasks = []domain.TaskName{
		domain.TaskEntityVerification,
		domain.TaskEntitySanctions,
		domain.TaskBusinessAdverseMedia,
		domain.TaskJurisdictionRisk,
	}
	individualUtilities = []domain.UtilityName{
		domain.UtilityIDVerification,
		domain.UtilitySuitability,
		domain.UtilityIndividualFATCACRS,
		domain.UtilityEDDRequirements,
		domain.UtilityComplianceActions,
		domain.UtilityDocumentRequirements,
	}
	businessUtilities = []domain.UtilityName{
		domain.UtilityIDVerification,
		domain.UtilitySuitability,
		domain.UtilityEntityFATCACRS,
		domain.UtilityBusinessRiskAssessment,
		domain.UtilityEDDRequirements,
		domain.UtilityComplianceActions,
		domain.UtilityDocumentRequirements,
	}
)

// Planner builds investigation plans.
type Planner struct {
	scorer driving.RiskScorer
}

// NewPlanner creates a planner backed by the given scorer.
func NewPlanner(scorer driving.RiskScorer) *Planner {
	return &Planner{scorer: scorer}
}

// Plan selects tasks and utilities by client variant and flags cascade
// screening for businesses that declare beneficial owners.
func (p *Planner) Plan(client domain.Client) domain.InvestigationPlan {
	plan := domain.InvestigationPlan{
		ClientType:            client.Type(),
		ClientID:              client.ID(),
		CascadeSubjects:       []string{},
		ApplicableRegulations: p.DetectRegulations(client),
		PreliminaryRisk:       p.scorer.Score(client),
	}

	if client.Type() == domain.ClientTypeBusiness {
		plan.Tasks = append([]domain.TaskName(nil), businessTasks...)
		plan.Utilities = append([]domain.UtilityName(nil), businessUtilities...)
		for _, ubo := range client.BeneficialOwners() {
			plan.CascadeSubjects = append(plan.CascadeSubjects, ubo.FullName)
		}
		plan.CascadeNeeded = len(plan.CascadeSubjects) > 0
	} else {
		plan.Tasks = append([]domain.TaskName(nil), individualTasks...)
		plan.Utilities = append([]domain.UtilityName(nil), individualUtilities...)
	}

	return plan
}

// DetectRegulations returns FINTRAC and CIRO plus any regimes triggered by
// US indicia, foreign tax residency or FATF-listed countries.
func (p *Planner) DetectRegulations(client domain.Client) []domain.Regulation {
	regs := &regulationSet{}
	regs.add(domain.RegulationFINTRAC)
	regs.add(domain.RegulationCIRO)

	switch {
	case client.Business != nil:
		b := client.Business
		if b.USNexus {
			regs.add(domain.RegulationOFAC)
			regs.add(domain.RegulationFATCA)
		}
		for _, ubo := range b.BeneficialOwners {
			if ubo.USPerson {
				regs.add(domain.RegulationFATCA)
				regs.add(domain.RegulationOFAC)
			}
		}

		crsCountries := append([]string(nil), b.CountriesOfOperation...)
		for _, ubo := range b.BeneficialOwners {
			crsCountries = append(crsCountries, ubo.TaxResidencies...)
		}
		if anyCRSReportable(crsCountries) {
			regs.add(domain.RegulationCRS)
		}

		eddCountries := append([]string(nil), b.CountriesOfOperation...)
		eddCountries = append(eddCountries, b.IncorporationJurisdiction)
		for _, ubo := range b.BeneficialOwners {
			eddCountries = append(eddCountries, ubo.Citizenship, ubo.CountryOfResidence)
		}
		if anyFATFListed(eddCountries) {
			regs.add(domain.RegulationEDD)
		}

	case client.Individual != nil:
		c := client.Individual
		if c.USPerson {
			regs.add(domain.RegulationOFAC)
			regs.add(domain.RegulationFATCA)
		}
		if hasUSIndicia(c) {
			regs.add(domain.RegulationFATCA)
		}
		if anyCRSReportable(c.TaxResidencies) {
			regs.add(domain.RegulationCRS)
		}
		eddCountries := append([]string{c.Citizenship, c.CountryOfResidence, c.CountryOfBirth}, c.TaxResidencies...)
		if anyFATFListed(eddCountries) {
			regs.add(domain.RegulationEDD)
		}
	}

	return regs.list
}

// hasUSIndicia checks the FATCA indicia available at intake.
func hasUSIndicia(c *domain.IndividualClient) bool {
	if c.USPerson || c.USTIN != "" {
		return true
	}
	if domain.IsUnitedStates(c.Citizenship) || domain.IsUnitedStates(c.CountryOfBirth) {
		return true
	}
	if c.Address != nil && domain.IsUnitedStates(c.Address.Country) {
		return true
	}
	for _, t := range c.TaxResidencies {
		if domain.IsUnitedStates(t) {
			return true
		}
	}
	return false
}

func anyCRSReportable(countries []string) bool {
	for _, c := range countries {
		if c != "" && !domain.IsDomestic(c) && domain.IsCRSParticipating(c) {
			return true
		}
	}
	return false
}

func anyFATFListed(countries []string) bool {
	for _, c := range countries {
		if domain.IsFATFListed(c) {
			return true
		}
	}
	return false
}

// regulationSet keeps insertion order without duplicates.
type regulationSet struct {
	list []domain.Regulation
}

func (s *regulationSet) add(r domain.Regulation) {
	for _, have := range s.list {
		if have == r {
			return
		}
	}
	s.list = append(s.list, r)
}
