package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/kyc-onboard/internal/core/domain"
	"github.com/custodia-labs/kyc-onboard/internal/core/ports/driven"
	"github.com/custodia-labs/kyc-onboard/internal/utilities"
)

// taskEntry couples an investigator call with the slot its result lands in.
type taskEntry struct {
	run func(ctx context.Context, inv driven.Investigator, client domain.Client) (domain.TaskResult, error)
}

// dispatch builds a task entry from a typed investigator method, an argument
// builder and a store function.
func dispatch[Q any, R domain.TaskResult](
	invoke func(driven.Investigator, context.Context, Q) (R, error),
	args func(domain.Client) Q,
	store func(*domain.InvestigationResults, R),
) taskEntry {
	return taskEntry{
		run: func(ctx context.Context, inv driven.Investigator, client domain.Client) (domain.TaskResult, error) {
			r, err := invoke(inv, ctx, args(client))
			if err != nil {
				return nil, err
			}
			var zero R
			if any(r) == any(zero) {
				return nil, fmt.Errorf("%w: task returned no result", domain.ErrInvalidInput)
			}
			return storedResult[R]{r: r, store: store}, nil
		},
	}
}

// storedResult defers writing into the results until the call succeeded.
type storedResult[R domain.TaskResult] struct {
	r     R
	store func(*domain.InvestigationResults, R)
}

func (s storedResult[R]) Evidence() []domain.EvidenceRecord { return s.r.Evidence() }

func (s storedResult[R]) apply(res *domain.InvestigationResults) { s.store(res, s.r) }

// applier is implemented by results that know where they are stored.
type applier interface {
	apply(res *domain.InvestigationResults)
}

// taskTable is the closed dispatch table of investigative tasks.
var taskTable = map[domain.TaskName]taskEntry{
	domain.TaskIndividualSanctions: dispatch(driven.Investigator.IndividualSanctions, personQuery,
		func(res *domain.InvestigationResults, r *domain.SanctionsResult) { res.IndividualSanctions = r }),
	domain.TaskPEPDetection: dispatch(driven.Investigator.PEPDetection, pepQuery,
		func(res *domain.InvestigationResults, r *domain.PEPClassification) { res.PEPClassification = r }),
	domain.TaskIndividualAdverseMedia: dispatch(driven.Investigator.IndividualAdverseMedia, personQuery,
		func(res *domain.InvestigationResults, r *domain.AdverseMediaResult) { res.IndividualAdverseMedia = r }),
	domain.TaskEntityVerification: dispatch(driven.Investigator.EntityVerification, entityQuery,
		func(res *domain.InvestigationResults, r *domain.EntityVerification) { res.EntityVerification = r }),
	domain.TaskEntitySanctions: dispatch(driven.Investigator.EntitySanctions, entityQuery,
		func(res *domain.InvestigationResults, r *domain.SanctionsResult) { res.EntitySanctions = r }),
	domain.TaskBusinessAdverseMedia: dispatch(driven.Investigator.BusinessAdverseMedia, entityQuery,
		func(res *domain.InvestigationResults, r *domain.AdverseMediaResult) { res.BusinessAdverseMedia = r }),
	domain.TaskJurisdictionRisk: dispatch(driven.Investigator.JurisdictionRisk, clientJurisdictions,
		func(res *domain.InvestigationResults, r *domain.JurisdictionRiskResult) { res.JurisdictionRisk = r }),
}

// utilityEntry runs one deterministic utility against the partial results.
type utilityEntry func(client domain.Client, plan domain.InvestigationPlan, res *domain.InvestigationResults, now time.Time) domain.TaskResult

// utilityTable is the closed dispatch table of deterministic utilities.
var utilityTable = map[domain.UtilityName]utilityEntry{
	domain.UtilityIDVerification: func(c domain.Client, _ domain.InvestigationPlan, res *domain.InvestigationResults, now time.Time) domain.TaskResult {
		res.IDVerification = utilities.IDVerification(c, now)
		return res.IDVerification
	},
	domain.UtilitySuitability: func(c domain.Client, _ domain.InvestigationPlan, res *domain.InvestigationResults, now time.Time) domain.TaskResult {
		res.Suitability = utilities.Suitability(c, now)
		return res.Suitability
	},
	domain.UtilityIndividualFATCACRS: func(c domain.Client, _ domain.InvestigationPlan, res *domain.InvestigationResults, now time.Time) domain.TaskResult {
		res.FATCACRS = utilities.IndividualFATCACRS(c, now)
		return res.FATCACRS
	},
	domain.UtilityEntityFATCACRS: func(c domain.Client, _ domain.InvestigationPlan, res *domain.InvestigationResults, now time.Time) domain.TaskResult {
		res.FATCACRS = utilities.EntityFATCACRS(c, now)
		return res.FATCACRS
	},
	domain.UtilityBusinessRiskAssessment: func(c domain.Client, _ domain.InvestigationPlan, res *domain.InvestigationResults, now time.Time) domain.TaskResult {
		res.BusinessRiskAssessment = utilities.BusinessRisk(c, now)
		return res.BusinessRiskAssessment
	},
	domain.UtilityEDDRequirements: func(c domain.Client, plan domain.InvestigationPlan, res *domain.InvestigationResults, now time.Time) domain.TaskResult {
		res.EDDRequirements = utilities.EDDRequirements(c, plan.PreliminaryRisk, res, now)
		return res.EDDRequirements
	},
	domain.UtilityComplianceActions: func(c domain.Client, plan domain.InvestigationPlan, res *domain.InvestigationResults, now time.Time) domain.TaskResult {
		res.ComplianceActions = utilities.ComplianceActions(c, plan.PreliminaryRisk, res, now)
		return res.ComplianceActions
	},
	domain.UtilityDocumentRequirements: func(c domain.Client, _ domain.InvestigationPlan, res *domain.InvestigationResults, now time.Time) domain.TaskResult {
		res.DocumentRequirements = utilities.DocumentRequirements(c, res, now)
		return res.DocumentRequirements
	},
}

func personQuery(client domain.Client) driven.PersonQuery {
	c := client.Individual
	if c == nil {
		return driven.PersonQuery{FullName: client.Name()}
	}
	q := driven.PersonQuery{FullName: c.FullName, DateOfBirth: c.DateOfBirth, Citizenship: c.Citizenship}
	if c.Employment != nil {
		q.Employer = c.Employment.Employer
	}
	return q
}

func pepQuery(client domain.Client) driven.PEPQuery {
	q := driven.PEPQuery{PersonQuery: personQuery(client)}
	if c := client.Individual; c != nil {
		q.SelfDeclared = c.PEPSelfDeclaration
		q.Details = c.PEPDetails
	}
	return q
}

// ownerQuery screens a beneficial owner as a related party.
func ownerQuery(ubo domain.BeneficialOwner) driven.PersonQuery {
	return driven.PersonQuery{
		FullName:    ubo.FullName,
		DateOfBirth: ubo.DateOfBirth,
		Citizenship: ubo.Citizenship,
		Context:     ubo.CascadeContext(),
	}
}

func entityQuery(client domain.Client) driven.EntityQuery {
	b := client.Business
	if b == nil {
		return driven.EntityQuery{LegalName: client.Name()}
	}
	q := driven.EntityQuery{
		LegalName:      b.LegalName,
		Jurisdiction:   b.IncorporationJurisdiction,
		BusinessNumber: b.BusinessNumber,
		Industry:       b.Industry,
		Countries:      append([]string(nil), b.CountriesOfOperation...),
		USNexus:        b.USNexus,
	}
	for _, ubo := range b.BeneficialOwners {
		q.Owners = append(q.Owners, driven.OwnerRef{FullName: ubo.FullName, OwnershipPercentage: ubo.OwnershipPercentage})
	}
	return q
}

// clientJurisdictions lists every country tied to the client, first-seen order.
func clientJurisdictions(client domain.Client) []string {
	var raw []string
	switch {
	case client.Business != nil:
		b := client.Business
		raw = append(raw, b.IncorporationJurisdiction)
		raw = append(raw, b.CountriesOfOperation...)
		for _, ubo := range b.BeneficialOwners {
			raw = append(raw, ubo.Citizenship, ubo.CountryOfResidence)
		}
	case client.Individual != nil:
		c := client.Individual
		raw = append(raw, c.Citizenship, c.CountryOfResidence, c.CountryOfBirth)
		raw = append(raw, c.TaxResidencies...)
	}

	seen := make(map[string]bool, len(raw))
	out := []string{}
	for _, j := range raw {
		j = strings.TrimSpace(j)
		key := strings.ToLower(j)
		if j == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, j)
	}
	return out
}
