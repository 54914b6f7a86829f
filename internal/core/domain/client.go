package domain

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ClientType discriminates the two client variants.
type ClientType string

// Available client types.
const (
	// ClientTypeIndividual is a natural person.
	ClientTypeIndividual ClientType = "individual"

	// ClientTypeBusiness is a legal entity with beneficial owners.
	ClientTypeBusiness ClientType = "business"
)

// IsValid returns true if the client type is recognised.
func (t ClientType) IsValid() bool {
	return t == ClientTypeIndividual || t == ClientTypeBusiness
}

// String returns the string representation.
func (t ClientType) String() string {
	return string(t)
}

// DomesticCountry is the jurisdiction the firm is regulated in.
const DomesticCountry = "Canada"

// Address is a physical address.
type Address struct {
	Street        string `json:"street,omitempty"`
	City          string `json:"city,omitempty"`
	ProvinceState string `json:"province_state,omitempty"`
	PostalCode    string `json:"postal_code,omitempty"`
	Country       string `json:"country,omitempty"`
}

// CountryOrDefault returns the address country, defaulting to the domestic country.
func (a *Address) CountryOrDefault() string {
	if a == nil || strings.TrimSpace(a.Country) == "" {
		return DomesticCountry
	}
	return a.Country
}

// AccountRequest describes an account the client wants to open.
type AccountRequest struct {
	AccountType          string  `json:"account_type"`
	InvestmentObjectives string  `json:"investment_objectives,omitempty"`
	RiskTolerance        string  `json:"risk_tolerance,omitempty"`
	TimeHorizon          string  `json:"time_horizon,omitempty"`
	InitialDeposit       float64 `json:"initial_deposit,omitempty"`
	ExpectedActivity     string  `json:"expected_activity,omitempty"`
}

// EmploymentInfo holds employment details for individual clients.
type EmploymentInfo struct {
	Status        string `json:"status"`
	Employer      string `json:"employer,omitempty"`
	Occupation    string `json:"occupation,omitempty"`
	Industry      string `json:"industry,omitempty"`
	YearsEmployed int    `json:"years_employed,omitempty"`
}

// BeneficialOwner is an individual who ultimately owns or controls a business.
type BeneficialOwner struct {
	FullName            string   `json:"full_name"`
	DateOfBirth         string   `json:"date_of_birth,omitempty"`
	Citizenship         string   `json:"citizenship,omitempty"`
	CountryOfResidence  string   `json:"country_of_residence,omitempty"`
	CountryOfBirth      string   `json:"country_of_birth,omitempty"`
	OwnershipPercentage float64  `json:"ownership_percentage"`
	Role                string   `json:"role,omitempty"`
	PEPSelfDeclaration  bool     `json:"pep_self_declaration,omitempty"`
	PEPDetails          string   `json:"pep_details,omitempty"`
	USPerson            bool     `json:"us_person,omitempty"`
	TaxResidencies      []string `json:"tax_residencies,omitempty"`
	Address             *Address `json:"address,omitempty"`
}

// OwnershipLabel formats the ownership percentage without trailing zeros.
func (o BeneficialOwner) OwnershipLabel() string {
	return strconv.FormatFloat(o.OwnershipPercentage, 'f', -1, 64)
}

// CascadeContext is the subject context attached to a beneficial owner's screening.
func (o BeneficialOwner) CascadeContext() string {
	return fmt.Sprintf("UBO (%s%% owner)", o.OwnershipLabel())
}

// IndividualClient is the intake record for a natural person.
type IndividualClient struct {
	FullName                string           `json:"full_name"`
	DateOfBirth             string           `json:"date_of_birth,omitempty"`
	Citizenship             string           `json:"citizenship,omitempty"`
	CountryOfResidence      string           `json:"country_of_residence,omitempty"`
	CountryOfBirth          string           `json:"country_of_birth,omitempty"`
	Address                 *Address         `json:"address,omitempty"`
	SINLast4                string           `json:"sin_last4,omitempty"`
	USPerson                bool             `json:"us_person,omitempty"`
	USTIN                   string           `json:"us_tin,omitempty"`
	TaxResidencies          []string         `json:"tax_residencies,omitempty"`
	PEPSelfDeclaration      bool             `json:"pep_self_declaration,omitempty"`
	PEPDetails              string           `json:"pep_details,omitempty"`
	Employment              *EmploymentInfo  `json:"employment,omitempty"`
	AnnualIncome            float64          `json:"annual_income,omitempty"`
	NetWorth                float64          `json:"net_worth,omitempty"`
	SourceOfFunds           string           `json:"source_of_funds,omitempty"`
	SourceOfWealth          string           `json:"source_of_wealth,omitempty"`
	IntendedUse             string           `json:"intended_use,omitempty"`
	AccountRequests         []AccountRequest `json:"account_requests,omitempty"`
	ThirdPartyDetermination bool             `json:"third_party_determination,omitempty"`
	ThirdPartyDetails       string           `json:"third_party_details,omitempty"`
}

// BusinessClient is the intake record for a legal entity.
type BusinessClient struct {
	LegalName                 string            `json:"legal_name"`
	OperatingName             string            `json:"operating_name,omitempty"`
	BusinessNumber            string            `json:"business_number,omitempty"`
	IncorporationDate         string            `json:"incorporation_date,omitempty"`
	IncorporationJurisdiction string            `json:"incorporation_jurisdiction,omitempty"`
	EntityType                string            `json:"entity_type,omitempty"`
	BusinessType              string            `json:"business_type,omitempty"`
	Industry                  string            `json:"industry,omitempty"`
	NAICSCode                 string            `json:"naics_code,omitempty"`
	NatureOfBusiness          string            `json:"nature_of_business,omitempty"`
	Address                   *Address          `json:"address,omitempty"`
	CountriesOfOperation      []string          `json:"countries_of_operation,omitempty"`
	USNexus                   bool              `json:"us_nexus,omitempty"`
	USNexusDetails            string            `json:"us_nexus_details,omitempty"`
	USTIN                     string            `json:"us_tin,omitempty"`
	AnnualRevenue             float64           `json:"annual_revenue,omitempty"`
	ExpectedTransactionVolume float64           `json:"expected_transaction_volume,omitempty"`
	ExpectedTransactionFreq   string            `json:"expected_transaction_frequency,omitempty"`
	SourceOfFunds             string            `json:"source_of_funds,omitempty"`
	IntendedUse               string            `json:"intended_use,omitempty"`
	BeneficialOwners          []BeneficialOwner `json:"beneficial_owners,omitempty"`
	AuthorizedSignatories     []string          `json:"authorized_signatories,omitempty"`
	AccountRequests           []AccountRequest  `json:"account_requests,omitempty"`
	ThirdPartyDetermination   bool              `json:"third_party_determination,omitempty"`
}

// AgeYears returns the fractional years since incorporation.
// The second result is false when the date is missing or not YYYY-MM-DD.
func (c *BusinessClient) AgeYears(now time.Time) (float64, bool) {
	date := strings.TrimSpace(c.IncorporationDate)
	if date == "" {
		return 0, false
	}
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return 0, false
	}
	days := int(now.Sub(t).Hours() / 24)
	return float64(days) / 365.25, true
}

// Client is a tagged variant holding exactly one of Individual or Business.
// It is immutable once loaded for a run.
type Client struct {
	Individual *IndividualClient
	Business   *BusinessClient
}

// NewIndividual wraps an individual intake record.
func NewIndividual(c IndividualClient) Client {
	return Client{Individual: &c}
}

// NewBusiness wraps a business intake record.
func NewBusiness(c BusinessClient) Client {
	return Client{Business: &c}
}

// Type returns the client variant discriminant.
func (c Client) Type() ClientType {
	if c.Business != nil {
		return ClientTypeBusiness
	}
	return ClientTypeIndividual
}

// Name returns the full name or legal name.
func (c Client) Name() string {
	switch {
	case c.Business != nil:
		return c.Business.LegalName
	case c.Individual != nil:
		return c.Individual.FullName
	default:
		return ""
	}
}

// ID returns the filesystem-safe client identifier.
func (c Client) ID() string {
	return ClientID(c.Name())
}

// Validate checks the variant is populated and named.
func (c Client) Validate() error {
	if (c.Individual == nil) == (c.Business == nil) {
		return fmt.Errorf("%w: client must be exactly one of individual or business", ErrInvalidInput)
	}
	if strings.TrimSpace(c.Name()) == "" {
		return fmt.Errorf("%w: client name is required", ErrInvalidInput)
	}
	for i, ubo := range c.BeneficialOwners() {
		if strings.TrimSpace(ubo.FullName) == "" {
			return fmt.Errorf("%w: beneficial owner %d has no name", ErrInvalidInput, i)
		}
		if ubo.OwnershipPercentage < 0 || ubo.OwnershipPercentage > 100 {
			return fmt.Errorf("%w: beneficial owner %q ownership out of range", ErrInvalidInput, ubo.FullName)
		}
	}
	return nil
}

// BeneficialOwners returns the declared owners, nil for individuals.
func (c Client) BeneficialOwners() []BeneficialOwner {
	if c.Business == nil {
		return nil
	}
	return c.Business.BeneficialOwners
}

// MarshalJSON writes the active variant with its client_type discriminant.
func (c Client) MarshalJSON() ([]byte, error) {
	switch {
	case c.Business != nil:
		return json.Marshal(struct {
			ClientType ClientType `json:"client_type"`
			*BusinessClient
		}{ClientTypeBusiness, c.Business})
	case c.Individual != nil:
		return json.Marshal(struct {
			ClientType ClientType `json:"client_type"`
			*IndividualClient
		}{ClientTypeIndividual, c.Individual})
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON reads a client record, dispatching on client_type.
// Records without a discriminant are treated as businesses when they carry a legal_name.
func (c *Client) UnmarshalJSON(data []byte) error {
	var head struct {
		ClientType ClientType `json:"client_type"`
		LegalName  string     `json:"legal_name"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}

	kind := head.ClientType
	if kind == "" {
		kind = ClientTypeIndividual
		if head.LegalName != "" {
			kind = ClientTypeBusiness
		}
	}

	switch kind {
	case ClientTypeIndividual:
		var ind IndividualClient
		if err := json.Unmarshal(data, &ind); err != nil {
			return err
		}
		*c = Client{Individual: &ind}
	case ClientTypeBusiness:
		var biz BusinessClient
		if err := json.Unmarshal(data, &biz); err != nil {
			return err
		}
		*c = Client{Business: &biz}
	default:
		return fmt.Errorf("%w: client_type %q", ErrUnsupportedType, kind)
	}
	return nil
}

var nonIdentifierChars = regexp.MustCompile(`[^a-z0-9]+`)

// ClientID derives a filesystem-safe identifier from a client name.
func ClientID(name string) string {
	id := nonIdentifierChars.ReplaceAllString(strings.ToLower(name), "_")
	return strings.Trim(id, "_")
}
