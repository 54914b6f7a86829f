package utilities

import (
	"fmt"
	"time"

	"github.com/custodia-labs/kyc-onboard/internal/core/domain"
)

// Identity verification methods.
const (
	MethodCreditFile           = "credit_file"
	MethodGovPhotoID           = "gov_photo_id"
	MethodDualProcess          = "dual_process"
	MethodBusinessVerification = "business_verification"
)

var canadianProvinces = []string{
	"ontario", "quebec", "british columbia", "alberta",
	"manitoba", "saskatchewan", "nova scotia",
	"new brunswick", "newfoundland", "prince edward island",
	"northwest territories", "nunavut", "yukon",
}

// IDVerification determines the FINTRAC identity verification pathway.
func IDVerification(client domain.Client, now time.Time) *domain.IDVerificationResult {
	if client.Business != nil {
		return businessIDVerification(client.Business, now)
	}
	if client.Individual != nil {
		return individualIDVerification(client.Individual, now)
	}
	return &domain.IDVerificationResult{
		Method:       "unknown",
		Requirements: []string{"Unable to determine client type"},
		Status:       domain.StatusIncomplete,
	}
}

func individualIDVerification(c *domain.IndividualClient, now time.Time) *domain.IDVerificationResult {
	var concerns []string

	creditFile := []string{
		"Obtain credit file from Canadian credit bureau (Equifax or TransUnion)",
		"Credit file must have existed for at least 3 years",
		"Verify full name matches client-provided name",
		"Verify date of birth matches client-provided DOB",
		"Verify current address matches client-provided address",
	}
	if c.DateOfBirth == "" {
		creditFile = append(creditFile, "MISSING: Date of birth required for credit file match")
		concerns = append(concerns, "Date of birth not provided: credit file verification may fail")
	}
	if c.Address == nil {
		creditFile = append(creditFile, "MISSING: Address required for credit file match")
		concerns = append(concerns, "Address not provided: credit file verification may fail")
	}

	photoID := []string{
		"Obtain government-issued photo identification document",
		"Acceptable: passport, driver's licence, provincial/territorial ID card",
		"Document must be valid (not expired)",
		"Verify name on ID matches client-provided name",
		"Verify photo matches client (in-person or secure video)",
		"Record document type, number, issuing authority, and expiry date",
	}
	dualProcess := []string{
		"Obtain TWO independent, reliable sources to verify name + one other identifier",
		"Source A: credit file, bank statement, utility bill, or government record",
		"Source B: must be different type from Source A",
		"Each source must confirm client's name",
		"At least one source must confirm date of birth OR address",
		"Neither source may be provided by the client themselves",
	}

	var methods []domain.IDMethod
	if domain.IsDomestic(c.CountryOfResidence) {
		methods = append(methods, domain.IDMethod{Key: MethodCreditFile, Name: "Canadian credit bureau verification (preferred)", Requirements: creditFile})
	}
	methods = append(methods,
		domain.IDMethod{Key: MethodGovPhotoID, Name: "Government-issued photo identification", Requirements: photoID},
		domain.IDMethod{Key: MethodDualProcess, Name: "Dual-process method (two independent sources)", Requirements: dualProcess},
	)

	primary := methods[0]
	nonFaceToFace := c.Address != nil && !domain.IsDomestic(c.Address.CountryOrDefault())
	if nonFaceToFace {
		concerns = append(concerns, "Client address is outside Canada: non-face-to-face verification applies")
		if primary.Key == MethodGovPhotoID {
			primary = methods[len(methods)-1]
		}
		primary.Requirements = append(append([]string(nil), primary.Requirements...),
			"Non-face-to-face: must use credit file or dual-process method")
	}

	var alternatives []domain.IDMethod
	for _, m := range methods {
		if m.Key != primary.Key {
			alternatives = append(alternatives, m)
		}
	}

	key := nameKey(c.FullName)
	evidence := []domain.EvidenceRecord{record{
		id:      "idv_method_" + key,
		source:  domain.UtilityIDVerification,
		subject: c.FullName,
		context: "individual client",
		claim:   "Identity verification method determined: " + primary.Key,
		class:   domain.EvidenceInferred,
		data: []map[string]any{
			details("Method: %s", primary.Key),
			details("Requirements count: %d", len(primary.Requirements)),
			details("Non-face-to-face: %t", nonFaceToFace),
		},
		disposition: domain.DispositionPendingReview,
		confidence:  domain.ConfidenceHigh,
	}.build(now)}
	if len(concerns) > 0 {
		evidence = append(evidence, record{
			id:          "idv_concerns_" + key,
			source:      domain.UtilityIDVerification,
			subject:     c.FullName,
			context:     "individual client",
			claim:       fmt.Sprintf("Identity verification concerns identified: %d", len(concerns)),
			class:       domain.EvidenceInferred,
			data:        listData("concern", concerns),
			disposition: domain.DispositionPendingReview,
			confidence:  domain.ConfidenceMedium,
		}.build(now))
	}

	return &domain.IDVerificationResult{
		Method:             primary.Key,
		Requirements:       primary.Requirements,
		Status:             "pending",
		Concerns:           concerns,
		AlternativeMethods: alternatives,
		NonFaceToFace:      nonFaceToFace,
		EvidenceRecords:    evidence,
	}
}

func businessIDVerification(c *domain.BusinessClient, now time.Time) *domain.IDVerificationResult {
	var concerns []string
	reqs := []string{
		"Obtain articles of incorporation, certificate of incorporation, or equivalent",
		"Obtain certificate of status or certificate of good standing (if available)",
		"Verify registered business address matches client-provided address",
		"Confirm legal name matches official registration records",
		"Verify business number (BN) with Canada Revenue Agency records if Canadian",
	}
	if c.OperatingName != "" && c.OperatingName != c.LegalName {
		reqs = append(reqs, fmt.Sprintf("Verify operating name '%s' is registered as a trade name", c.OperatingName))
	}

	if j := c.IncorporationJurisdiction; j != "" {
		reqs = append(reqs, fmt.Sprintf("Obtain registration confirmation from %s corporate registry", j))
		if !domesticJurisdiction(j) {
			concerns = append(concerns, fmt.Sprintf("Foreign incorporation jurisdiction (%s): may require apostilled or notarized documents", j))
			reqs = append(reqs, "Foreign entity: obtain apostilled or notarized copies of incorporation documents")
		}
	} else {
		concerns = append(concerns, "Incorporation jurisdiction not provided: cannot determine registry")
	}

	if n := len(c.BeneficialOwners); n > 0 {
		reqs = append(reqs, fmt.Sprintf("Verify identity of all %d declared beneficial owners", n))
		for _, ubo := range c.BeneficialOwners {
			reqs = append(reqs, fmt.Sprintf("  - Verify %s (%s%% owner) using individual verification method", ubo.FullName, ubo.OwnershipLabel()))
		}
	} else {
		concerns = append(concerns, "No beneficial owners declared: must determine all persons who own or control 25% or more")
		reqs = append(reqs, "Determine and verify all beneficial owners (25%+ ownership or control)")
	}

	if n := len(c.AuthorizedSignatories); n > 0 {
		reqs = append(reqs, fmt.Sprintf("Verify identity of all %d authorized signatories", n))
	} else {
		reqs = append(reqs, "Obtain and verify authorized signatory list")
	}
	reqs = append(reqs, "Obtain list of directors and senior officers", "Verify at least one director's identity using individual method")

	key := nameKey(c.LegalName)
	evidence := []domain.EvidenceRecord{record{
		id:      "idv_business_" + key,
		source:  domain.UtilityIDVerification,
		subject: c.LegalName,
		context: "business client",
		claim:   fmt.Sprintf("Business identity verification requirements determined: %d items", len(reqs)),
		class:   domain.EvidenceInferred,
		data: []map[string]any{
			details("Requirements count: %d", len(reqs)),
			details("Concerns count: %d", len(concerns)),
			details("Beneficial owners to verify: %d", len(c.BeneficialOwners)),
		},
		disposition: domain.DispositionPendingReview,
		confidence:  domain.ConfidenceHigh,
	}.build(now)}
	if len(concerns) > 0 {
		evidence = append(evidence, record{
			id:          "idv_business_concerns_" + key,
			source:      domain.UtilityIDVerification,
			subject:     c.LegalName,
			context:     "business client",
			claim:       fmt.Sprintf("Business verification concerns: %d", len(concerns)),
			class:       domain.EvidenceInferred,
			data:        listData("concern", concerns),
			disposition: domain.DispositionPendingReview,
			confidence:  domain.ConfidenceMedium,
		}.build(now))
	}

	return &domain.IDVerificationResult{
		Method:                      MethodBusinessVerification,
		Requirements:                reqs,
		Status:                      "pending",
		Concerns:                    concerns,
		UBOVerificationNeeded:       len(c.BeneficialOwners) > 0,
		SignatoryVerificationNeeded: true,
		EvidenceRecords:             evidence,
	}
}
