package utilities

import (
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/kyc-onboard/internal/core/domain"
)

// Document checklist categories.
const (
	CategoryIdentity    = "identity_verification"
	CategoryTax         = "tax_compliance"
	CategoryEDD         = "enhanced_due_diligence"
	CategoryEntity      = "entity_verification"
	CategoryUBO         = "ubo_verification"
	basisIdentification = "FINTRAC PCMLTFA s.64"
	basisEntity         = "FINTRAC PCMLTFA s.65"
)

var eddDocumentKeywords = []string{
	"documentation", "document", "bank statement", "tax return",
	"financial statement", "corporate structure", "articles of",
	"certificate", "w-9",
}

// DocumentRequirements consolidates identity, tax, EDD and entity documents
// from earlier utility results into one de-duplicated checklist.
func DocumentRequirements(client domain.Client, inv *domain.InvestigationResults, now time.Time) *domain.DocumentRequirementsResult {
	var reqs []domain.DocumentRequirement
	add := func(doc, basis, category, priority string) {
		reqs = append(reqs, domain.DocumentRequirement{
			Document:        doc,
			RegulatoryBasis: basis,
			Status:          domain.DocumentStatusOutstanding,
			Category:        category,
			Priority:        priority,
		})
	}

	if inv != nil && inv.IDVerification != nil {
		for _, r := range inv.IDVerification.Requirements {
			add(r, basisIdentification, CategoryIdentity, "high")
		}
		if len(inv.IDVerification.Requirements) == 0 && inv.IDVerification.Method != "" {
			add(fmt.Sprintf("Government-issued photo ID (%s)", inv.IDVerification.Method), basisIdentification, CategoryIdentity, "high")
		}
	}

	if inv != nil && inv.FATCACRS != nil {
		tax := inv.FATCACRS
		if tax.FATCA.USPerson || tax.FATCA.ReportingRequired {
			add("W-9 (IRS Request for Taxpayer Identification Number)", "Part XVIII ITA (FATCA)", CategoryTax, "high")
		}
		if tax.CRS.ReportingRequired || len(tax.CRS.ReportableJurisdictions) > 0 {
			add("CRS Self-Certification Form", "Part XIX ITA (CRS)", CategoryTax, "high")
		}
		for _, form := range tax.RequiredForms {
			add(form, "Part XVIII/XIX ITA", CategoryTax, "medium")
		}
	}

	if inv != nil && inv.EDDRequirements != nil && inv.EDDRequirements.EDDRequired {
		for _, m := range inv.EDDRequirements.Measures {
			if containsAny(strings.ToLower(m), eddDocumentKeywords...) {
				add(m, "FINTRAC EDD", CategoryEDD, "high")
			}
		}
	}

	if c := client.Business; c != nil {
		add("Articles of Incorporation / Certificate of Incorporation", basisEntity, CategoryEntity, "high")
		add("Certificate of Status / Good Standing", basisEntity, CategoryEntity, "medium")
		add("Beneficial Ownership Declaration (>25% ownership/control)", "FINTRAC PCMLTFA s.11.1", CategoryEntity, "high")
		for _, ubo := range c.BeneficialOwners {
			add(fmt.Sprintf("Government-issued ID for UBO: %s (%s%%)", ubo.FullName, ubo.OwnershipLabel()), basisIdentification, CategoryUBO, "high")
		}
	}

	seen := make(map[string]bool, len(reqs))
	deduped := reqs[:0]
	var categories orderedSet
	outstanding := 0
	for _, r := range reqs {
		key := strings.ToLower(strings.TrimSpace(r.Document))
		if seen[key] {
			continue
		}
		seen[key] = true
		deduped = append(deduped, r)
		categories.add(r.Category)
		if r.Status == domain.DocumentStatusOutstanding {
			outstanding++
		}
	}
	if deduped == nil {
		deduped = []domain.DocumentRequirement{}
	}

	result := &domain.DocumentRequirementsResult{
		Requirements:     deduped,
		TotalRequired:    len(deduped),
		TotalOutstanding: outstanding,
		Categories:       categories,
	}
	disposition := domain.DispositionClear
	if outstanding > 0 {
		disposition = domain.DispositionPendingReview
	}
	subject := client.Name()
	result.EvidenceRecords = []domain.EvidenceRecord{record{
		id:      "doc_requirements_" + nameKey(subject),
		source:  domain.UtilityDocumentRequirements,
		subject: subject,
		context: clientContext(client),
		claim: fmt.Sprintf("Document requirements consolidated: %d required, %d outstanding across %d categories.",
			len(deduped), outstanding, len(categories)),
		class: domain.EvidenceInferred,
		data: []map[string]any{
			{"total_required": len(deduped)},
			{"total_outstanding": outstanding},
			{"categories": []string(categories)},
		},
		disposition: disposition,
		confidence:  domain.ConfidenceHigh,
	}.build(now)}
	return result
}
