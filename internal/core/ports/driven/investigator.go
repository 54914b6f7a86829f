package driven

import (
	"context"

	"github.com/custodia-labs/kyc-onboard/internal/core/domain"
)

// Investigator runs the investigative tasks. Each call is a single remote
// round trip; the pipeline never issues two at once.
//
// "Nothing found" is a CLEAR or UNKNOWN result, never an error. An error means
// the task could not run at all and the pipeline skips its contribution.
type Investigator interface {
	// IndividualSanctions screens a person against sanctions lists.
	IndividualSanctions(ctx context.Context, q PersonQuery) (*domain.SanctionsResult, error)

	// PEPDetection classifies a person's political exposure.
	PEPDetection(ctx context.Context, q PEPQuery) (*domain.PEPClassification, error)

	// IndividualAdverseMedia searches news coverage about a person.
	IndividualAdverseMedia(ctx context.Context, q PersonQuery) (*domain.AdverseMediaResult, error)

	// EntityVerification checks a business against corporate registries.
	EntityVerification(ctx context.Context, q EntityQuery) (*domain.EntityVerification, error)

	// EntitySanctions screens a business and its owners against sanctions lists.
	EntitySanctions(ctx context.Context, q EntityQuery) (*domain.SanctionsResult, error)

	// BusinessAdverseMedia searches news coverage about a business.
	BusinessAdverseMedia(ctx context.Context, q EntityQuery) (*domain.AdverseMediaResult, error)

	// JurisdictionRisk assesses the listed countries.
	JurisdictionRisk(ctx context.Context, jurisdictions []string) (*domain.JurisdictionRiskResult, error)
}

// PersonQuery identifies a natural person to screen.
type PersonQuery struct {
	FullName    string
	DateOfBirth string
	Citizenship string
	Employer    string

	// Context describes the person's role when screened as a related party,
	// for example "UBO (40% owner)".
	Context string
}

// PEPQuery identifies a person for PEP classification.
type PEPQuery struct {
	PersonQuery
	SelfDeclared bool
	Details      string
}

// OwnerRef is a declared beneficial owner passed to entity tasks.
type OwnerRef struct {
	FullName            string
	OwnershipPercentage float64
}

// EntityQuery identifies a business to verify or screen.
type EntityQuery struct {
	LegalName      string
	Jurisdiction   string
	BusinessNumber string
	Industry       string
	Countries      []string
	USNexus        bool
	Owners         []OwnerRef
}
