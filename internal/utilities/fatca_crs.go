package utilities

import (
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/kyc-onboard/internal/core/domain"
)

const (
	formCRSIndividual  = "CRS Self-Certification Form (individual)"
	annualReportingDue = "annual, by May 1"
)

var (
	financialInstitutionKeywords = []string{
		"bank", "credit union", "trust company", "insurance",
		"investment fund", "mutual fund", "hedge fund", "asset management",
		"brokerage", "securities dealer", "custodian", "depository",
		"pension fund", "venture capital", "private equity",
	}
	passiveIncomeKeywords = []string{
		"holding company", "investment holding", "family office",
		"trust", "estate", "passive investment", "rental income",
		"royalty", "licensing revenue",
	}
	activeBusinessKeywords = []string{
		"manufacturing", "retail", "wholesale", "technology",
		"consulting", "construction", "transportation",
		"healthcare", "agriculture", "mining", "energy",
		"telecommunications", "media", "education",
		"hospitality", "food", "services",
	}
)

// fatcaOnly reports whether a jurisdiction is reported under FATCA rather than CRS.
func fatcaOnly(country string) bool {
	return domain.IsUnitedStates(country) || !domain.IsCRSParticipating(country)
}

// domesticJurisdiction treats Canadian provinces and territories as domestic.
func domesticJurisdiction(j string) bool {
	return domain.IsDomestic(j) || containsAny(strings.ToLower(j), canadianProvinces...)
}

// orderedSet keeps first-seen order without duplicates.
type orderedSet []string

func (s *orderedSet) add(v string) {
	for _, have := range *s {
		if have == v {
			return
		}
	}
	*s = append(*s, v)
}

func yesNo(b bool) string {
	if b {
		return "YES"
	}
	return "NO"
}

func required(b bool) string {
	if b {
		return "required"
	}
	return "not required"
}

// IndividualFATCACRS classifies FATCA US indicia and CRS reportable residencies
// for an individual client.
func IndividualFATCACRS(client domain.Client, now time.Time) *domain.FATCACRSResult {
	c := client.Individual
	if c == nil {
		return &domain.FATCACRSResult{EntityClassification: domain.EntityUndetermined}
	}
	key := nameKey(c.FullName)

	var indicia []string
	usCitizen := domain.IsUnitedStates(c.Citizenship)
	if usCitizen {
		indicia = append(indicia, "US citizenship")
	}
	if c.USPerson && !usCitizen {
		indicia = append(indicia, "US person (self-declared: may be green card holder)")
	}
	if domain.IsUnitedStates(c.CountryOfBirth) {
		indicia = append(indicia, "US birthplace")
	}
	if c.Address != nil && domain.IsUnitedStates(c.Address.Country) {
		indicia = append(indicia, "US residence address")
	}
	if c.Address != nil && containsAny(strings.ToLower(c.Address.Street), "c/o", "in care of", "hold mail") {
		indicia = append(indicia, "'In care of' or 'hold mail' address detected")
	}
	usTaxResident := false
	for _, t := range c.TaxResidencies {
		if domain.IsUnitedStates(t) {
			usTaxResident = true
		}
	}
	if usTaxResident && !usCitizen && !c.USPerson {
		indicia = append(indicia, "US tax residency declared")
	}
	if c.USTIN != "" && len(indicia) == 0 {
		indicia = append(indicia, "US TIN provided without other US indicia declared")
	}

	// Indicia that intake data cannot answer.
	unchecked := []string{"us_telephone", "us_transfer_instructions", "us_poa"}
	usPerson := c.USPerson || usCitizen || usTaxResident
	fatca := domain.FATCAStatus{
		USPerson:          usPerson,
		IndiciaFound:      len(indicia) > 0,
		Indicia:           indicia,
		UncheckedIndicia:  unchecked,
		W9Required:        usPerson,
		W8BENRequired:     len(indicia) > 0 && !usPerson,
		ReportingRequired: usPerson,
	}

	var evidence []domain.EvidenceRecord
	if fatca.IndiciaFound {
		determination := "YES"
		confidence := domain.ConfidenceHigh
		if !usPerson {
			determination = "NO (indicia require curing)"
			confidence = domain.ConfidenceMedium
		}
		evidence = append(evidence, record{
			id:      "fatca_indicia_" + key,
			source:  domain.UtilityIndividualFATCACRS,
			subject: c.FullName,
			context: "individual client: FATCA assessment",
			claim: fmt.Sprintf("FATCA US indicia found: %d indicator(s). US person determination: %s.",
				len(indicia), determination),
			class: domain.EvidenceInferred,
			data: []map[string]any{
				{"indicia": indicia},
				{"us_person": usPerson},
				{"unchecked_indicia_count": len(unchecked)},
			},
			disposition: domain.DispositionPendingReview,
			confidence:  confidence,
		}.build(now))
	} else {
		evidence = append(evidence, record{
			id:      "fatca_clear_" + key,
			source:  domain.UtilityIndividualFATCACRS,
			subject: c.FullName,
			context: "individual client: FATCA assessment",
			claim: fmt.Sprintf("No US indicia identified from available intake data. %d indicia could not be checked from intake alone.",
				len(unchecked)),
			class:       domain.EvidenceInferred,
			data:        []map[string]any{{"indicia": []string{}}, {"unchecked_indicia_count": len(unchecked)}},
			disposition: domain.DispositionClear,
			confidence:  domain.ConfidenceMedium,
		}.build(now))
	}

	var nonDomestic, reportable, usOnly orderedSet
	for _, t := range c.TaxResidencies {
		if domain.IsDomestic(t) {
			continue
		}
		nonDomestic.add(t)
		if fatcaOnly(t) {
			usOnly.add(t)
		} else {
			reportable.add(t)
		}
	}
	if r := strings.TrimSpace(c.CountryOfResidence); r != "" && !domain.IsDomestic(r) && !fatcaOnly(r) {
		reportable.add(r)
	}
	crs := domain.CRSStatus{
		ReportableJurisdictions:   reportable,
		DeclaredTaxResidencies:    c.TaxResidencies,
		USFATCAOnly:               len(usOnly) > 0,
		SelfCertificationRequired: len(reportable) > 0 || len(nonDomestic) > 0,
		ReportingRequired:         len(reportable) > 0,
	}

	if crs.ReportingRequired {
		evidence = append(evidence, record{
			id:      "crs_" + key,
			source:  domain.UtilityIndividualFATCACRS,
			subject: c.FullName,
			context: "individual client: CRS assessment",
			claim: fmt.Sprintf("CRS reporting required for %d jurisdiction(s): %s.",
				len(reportable), strings.Join(reportable, ", ")),
			class:       domain.EvidenceInferred,
			data:        []map[string]any{{"reportable_jurisdictions": []string(reportable)}, {"declared_residencies": c.TaxResidencies}},
			disposition: domain.DispositionPendingReview,
			confidence:  domain.ConfidenceHigh,
		}.build(now))
	} else {
		confidence := domain.ConfidenceHigh
		if len(nonDomestic) > 0 {
			confidence = domain.ConfidenceMedium
		}
		evidence = append(evidence, record{
			id:          "crs_clear_" + key,
			source:      domain.UtilityIndividualFATCACRS,
			subject:     c.FullName,
			context:     "individual client: CRS assessment",
			claim:       "No CRS reportable jurisdictions identified.",
			class:       domain.EvidenceInferred,
			data:        []map[string]any{{"declared_residencies": c.TaxResidencies}},
			disposition: domain.DispositionClear,
			confidence:  confidence,
		}.build(now))
	}

	var forms, obligations []string
	switch {
	case usPerson:
		forms = append(forms, "IRS Form W-9 (Request for Taxpayer Identification Number)")
		if c.USTIN == "" {
			forms = append(forms, "US TIN required: obtain SSN or ITIN from client")
		}
		obligations = append(obligations, "FATCA reporting to CRA (who exchanges with IRS): "+annualReportingDue)
	case fatca.IndiciaFound:
		forms = append(forms, "IRS Form W-8BEN (Certificate of Foreign Status) with reasonable explanation for US indicia, OR Form W-9 if client is actually a US person")
		obligations = append(obligations, "FATCA: resolve US indicia: obtain W-8BEN with curing documentation or W-9 if US person")
	}
	if len(reportable) > 0 {
		forms = append(forms, formCRSIndividual)
		for _, j := range reportable {
			obligations = append(obligations, fmt.Sprintf("CRS reporting for %s tax residency: %s", j, annualReportingDue))
		}
	} else {
		forms = append(forms, formCRSIndividual+": confirm Canadian-only tax residency")
	}

	return &domain.FATCACRSResult{
		FATCA:                fatca,
		CRS:                  crs,
		RequiredForms:        forms,
		ReportingObligations: obligations,
		EvidenceRecords:      evidence,
	}
}

// EntityFATCACRS classifies a business for FATCA/CRS and looks through
// passive entities to their controlling persons.
func EntityFATCACRS(client domain.Client, now time.Time) *domain.FATCACRSResult {
	c := client.Business
	if c == nil {
		return &domain.FATCACRSResult{EntityClassification: domain.EntityUndetermined}
	}
	key := nameKey(c.LegalName)
	class := classifyEntity(c)

	var evidence []domain.EvidenceRecord

	var nexus []string
	if c.USNexus {
		nexus = append(nexus, "Entity self-declared US nexus")
	}
	if c.USTIN != "" {
		nexus = append(nexus, "US TIN provided")
	}
	if domain.IsUnitedStates(c.IncorporationJurisdiction) {
		nexus = append(nexus, "Incorporated in the United States")
	}
	for _, country := range c.CountriesOfOperation {
		if domain.IsUnitedStates(country) {
			nexus = append(nexus, "Operations in: "+country)
			break
		}
	}
	usOwners := 0
	for _, ubo := range c.BeneficialOwners {
		if ubo.USPerson {
			usOwners++
			nexus = append(nexus, fmt.Sprintf("US person beneficial owner: %s (%s%%)", ubo.FullName, ubo.OwnershipLabel()))
		}
	}
	hasNexus := len(nexus) > 0

	fatca := domain.FATCAStatus{USNexus: hasNexus, USNexusIndicators: nexus, ReportingRequired: hasNexus}
	switch class {
	case domain.EntityFinancialInstitution:
		fatca.ReportingRequired = true
		fatca.ClassificationNote = "Financial Institution: reports under own FATCA obligations"
	case domain.EntityActiveNFFE:
		fatca.ClassificationNote = "Active NFFE: FATCA reporting only if US nexus present"
	case domain.EntityPassiveNFFE:
		fatca.ReportingRequired = hasNexus || usOwners > 0
		fatca.ClassificationNote = "Passive NFFE: look-through to controlling persons required"
	default:
		fatca.ClassificationNote = "Entity classification undetermined: conservative FATCA treatment"
	}
	if hasNexus {
		evidence = append(evidence, record{
			id:      "fatca_entity_" + key,
			source:  domain.UtilityEntityFATCACRS,
			subject: c.LegalName,
			context: "business client: FATCA assessment",
			claim: fmt.Sprintf("US nexus identified: %d indicator(s). Entity class: %s. FATCA reporting required.",
				len(nexus), class),
			class:       domain.EvidenceInferred,
			data:        []map[string]any{{"us_nexus_indicators": nexus}, {"us_beneficial_owners_count": usOwners}},
			disposition: domain.DispositionPendingReview,
			confidence:  domain.ConfidenceHigh,
		}.build(now))
	}

	var foreign, entityLevel, uboLevel orderedSet
	for _, country := range c.CountriesOfOperation {
		if !domain.IsDomestic(country) {
			foreign.add(strings.TrimSpace(country))
		}
	}
	if inc := strings.TrimSpace(c.IncorporationJurisdiction); inc != "" && !domesticJurisdiction(inc) {
		foreign.add(inc)
	}
	for _, j := range foreign {
		if !fatcaOnly(j) {
			entityLevel.add(j)
		}
	}
	for _, ubo := range c.BeneficialOwners {
		for _, t := range append(append([]string(nil), ubo.TaxResidencies...), ubo.CountryOfResidence) {
			t = strings.TrimSpace(t)
			if t != "" && !domain.IsDomestic(t) && !fatcaOnly(t) {
				uboLevel.add(t)
			}
		}
	}
	reportable := append(orderedSet(nil), entityLevel...)
	if class == domain.EntityPassiveNFFE {
		for _, j := range uboLevel {
			reportable.add(j)
		}
	}
	crs := domain.CRSStatus{
		ReportableJurisdictions:   reportable,
		EntityLevel:               entityLevel,
		UBOLevel:                  uboLevel,
		ReportingRequired:         len(reportable) > 0,
		SelfCertificationRequired: len(reportable) > 0 || len(foreign) > 0,
	}
	if crs.ReportingRequired {
		evidence = append(evidence, record{
			id:      "crs_entity_" + key,
			source:  domain.UtilityEntityFATCACRS,
			subject: c.LegalName,
			context: "business client: CRS assessment",
			claim: fmt.Sprintf("CRS reporting required for %d jurisdiction(s): %s.",
				len(reportable), strings.Join(reportable, ", ")),
			class:       domain.EvidenceInferred,
			data:        []map[string]any{{"entity_jurisdictions": []string(entityLevel)}, {"ubo_jurisdictions": []string(uboLevel)}},
			disposition: domain.DispositionPendingReview,
			confidence:  domain.ConfidenceHigh,
		}.build(now))
	}

	var persons []domain.ControllingPerson
	if class == domain.EntityPassiveNFFE {
		for _, ubo := range c.BeneficialOwners {
			if ubo.OwnershipPercentage < 25 {
				continue
			}
			p := controllingPerson(ubo)
			persons = append(persons, p)
			if !p.USPerson && !p.Reportable {
				continue
			}
			jurisdictions := "none"
			if len(p.CRSJurisdictions) > 0 {
				jurisdictions = strings.Join(p.CRSJurisdictions, ", ")
			}
			confidence := domain.ConfidenceMedium
			if p.USPerson {
				confidence = domain.ConfidenceHigh
			}
			evidence = append(evidence, record{
				id:      fmt.Sprintf("cp_%s_%s", nameKey(ubo.FullName), key),
				source:  domain.UtilityEntityFATCACRS,
				subject: ubo.FullName,
				context: fmt.Sprintf("Controlling person of %s (%s%% owner)", c.LegalName, ubo.OwnershipLabel()),
				claim: fmt.Sprintf("Controlling person FATCA/CRS flags: US person=%s, CRS jurisdictions=%s.",
					yesNo(p.USPerson), jurisdictions),
				class: domain.EvidenceInferred,
				data: []map[string]any{
					{"us_indicia": p.USIndicia},
					{"crs_jurisdictions": p.CRSJurisdictions},
					{"required_forms": p.RequiredForms},
				},
				disposition: domain.DispositionPendingReview,
				confidence:  confidence,
			}.build(now))
		}
	}

	var forms orderedSet
	switch {
	case class == domain.EntityFinancialInstitution:
		forms.add("FATCA Financial Institution registration confirmation")
	case hasNexus && class == domain.EntityActiveNFFE:
		forms.add("IRS Form W-8BEN-E (Certificate of Status: Active NFFE)")
	case hasNexus:
		forms.add("IRS Form W-8BEN-E (Certificate of Status: Passive NFFE)")
	default:
		forms.add("IRS Form W-8BEN-E (Certificate of Foreign Status of Beneficial Owner)")
	}
	if crs.SelfCertificationRequired {
		forms.add("CRS Entity Self-Certification Form")
	}
	for _, p := range persons {
		for _, f := range p.RequiredForms {
			forms.add(f)
		}
	}

	var obligations []string
	if fatca.ReportingRequired {
		switch class {
		case domain.EntityFinancialInstitution:
			obligations = append(obligations, "FATCA: entity reports under own FI obligations")
		case domain.EntityPassiveNFFE:
			var names []string
			for _, p := range persons {
				if p.USPerson {
					names = append(names, p.Name)
				}
			}
			if len(names) > 0 {
				obligations = append(obligations, fmt.Sprintf("FATCA: report US controlling persons (%s): %s", strings.Join(names, ", "), annualReportingDue))
			}
			if hasNexus {
				obligations = append(obligations, "FATCA: entity-level reporting for US nexus: "+annualReportingDue)
			}
		default:
			obligations = append(obligations, "FATCA: entity reporting for US nexus: "+annualReportingDue)
		}
	}
	for _, j := range reportable {
		obligations = append(obligations, fmt.Sprintf("CRS: report to %s: %s", j, annualReportingDue))
	}
	if len(obligations) == 0 {
		obligations = append(obligations, "No FATCA/CRS reporting obligations identified at this time")
	}

	classification := record{
		id:      "entity_class_" + key,
		source:  domain.UtilityEntityFATCACRS,
		subject: c.LegalName,
		context: "business client: entity classification",
		claim: fmt.Sprintf("Entity classified as: %s. FATCA reporting: %s. CRS reporting: %s.",
			class, required(fatca.ReportingRequired), required(crs.ReportingRequired)),
		class: domain.EvidenceInferred,
		data: []map[string]any{
			{"entity_classification": class},
			{"fatca_reporting": fatca.ReportingRequired},
			{"crs_reporting": crs.ReportingRequired},
			{"controlling_persons_assessed": len(persons)},
		},
		disposition: domain.DispositionPendingReview,
		confidence:  domain.ConfidenceMedium,
	}.build(now)

	return &domain.FATCACRSResult{
		EntityClassification: class,
		FATCA:                fatca,
		CRS:                  crs,
		RequiredForms:        forms,
		ReportingObligations: obligations,
		ControllingPersons:   persons,
		EvidenceRecords:      append([]domain.EvidenceRecord{classification}, evidence...),
	}
}

func classifyEntity(c *domain.BusinessClient) string {
	combined := strings.ToLower(c.Industry + " " + c.NatureOfBusiness + " " + c.BusinessType)
	switch {
	case containsAny(combined, financialInstitutionKeywords...):
		return domain.EntityFinancialInstitution
	case containsAny(combined, passiveIncomeKeywords...):
		return domain.EntityPassiveNFFE
	case c.AnnualRevenue > 0 && containsAny(combined, activeBusinessKeywords...):
		return domain.EntityActiveNFFE
	case c.NatureOfBusiness != "":
		return domain.EntityActiveNFFE
	case c.Industry == "":
		return domain.EntityUndetermined
	default:
		return domain.EntityPassiveNFFE
	}
}

func controllingPerson(ubo domain.BeneficialOwner) domain.ControllingPerson {
	p := domain.ControllingPerson{
		Name:                ubo.FullName,
		OwnershipPercentage: ubo.OwnershipPercentage,
		Role:                ubo.Role,
	}
	if ubo.USPerson {
		p.USIndicia = append(p.USIndicia, "Self-declared US person")
	}
	if domain.IsUnitedStates(ubo.Citizenship) {
		p.USIndicia = append(p.USIndicia, "US citizenship")
	}
	if domain.IsUnitedStates(ubo.CountryOfResidence) {
		p.USIndicia = append(p.USIndicia, "US residence")
	}
	for _, t := range ubo.TaxResidencies {
		if domain.IsUnitedStates(t) {
			p.USIndicia = append(p.USIndicia, "US tax residency")
			break
		}
	}
	p.USPerson = len(p.USIndicia) > 0

	var crs orderedSet
	for _, t := range ubo.TaxResidencies {
		if !domain.IsDomestic(t) && !fatcaOnly(t) {
			crs.add(t)
		}
	}
	if r := strings.TrimSpace(ubo.CountryOfResidence); r != "" && !domain.IsDomestic(r) && !fatcaOnly(r) {
		crs.add(r)
	}
	p.CRSJurisdictions = crs
	p.Reportable = len(crs) > 0

	if p.USPerson {
		p.RequiredForms = append(p.RequiredForms, "IRS Form W-9")
	}
	if p.Reportable {
		p.RequiredForms = append(p.RequiredForms, "CRS Self-Certification (controlling person)")
	}
	return p
}
