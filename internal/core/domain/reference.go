package domain

import "strings"

// Reference data used by risk scoring, regulation detection and review intelligence.
// Country names are matched case-insensitively.

// FATFGreyList holds jurisdictions under increased monitoring.
var FATFGreyList = []string{
	"Algeria", "Angola", "Bulgaria", "Burkina Faso", "Cameroon",
	"Côte d'Ivoire", "Croatia", "Democratic Republic of the Congo",
	"Haiti", "Kenya", "Lebanon", "Mali", "Monaco", "Mozambique",
	"Namibia", "Nigeria", "Philippines", "Senegal", "South Africa",
	"South Sudan", "Syria", "Tanzania", "Venezuela", "Vietnam", "Yemen",
}

// FATFBlackList holds high-risk jurisdictions subject to a call for action.
var FATFBlackList = []string{
	"Iran", "Myanmar", "North Korea",
}

// OFACSanctionedCountries holds countries with active OFAC programs.
var OFACSanctionedCountries = []string{
	"Cuba", "Iran", "North Korea", "Syria", "Russia",
	"Belarus", "Venezuela", "Myanmar", "Libya", "Somalia",
	"Sudan", "South Sudan", "Yemen", "Zimbabwe",
	"Central African Republic", "Democratic Republic of the Congo",
	"Iraq", "Lebanon", "Mali", "Nicaragua", "Ethiopia",
}

// FINTRACCountermeasureCountries holds countries under FINTRAC ministerial directives.
var FINTRACCountermeasureCountries = []string{
	"Iran", "North Korea",
}

// HighRiskIndustries holds normalised industry keys.
var HighRiskIndustries = []string{
	"money_services_business",
	"virtual_currency_exchange",
	"casino_gaming",
	"precious_metals_stones",
	"real_estate",
	"import_export",
	"arms_defense",
	"cash_intensive_business",
	"art_antiquities",
	"professional_services_trust",
	"non_profit_charity",
	"tobacco",
	"marijuana_cannabis",
	"construction",
	"offshore_banking",
}

// OffshoreJurisdictions holds tax-haven jurisdictions.
var OffshoreJurisdictions = []string{
	"British Virgin Islands", "Cayman Islands", "Bermuda",
	"Jersey", "Guernsey", "Isle of Man",
	"Panama", "Bahamas", "Seychelles",
	"Mauritius", "Luxembourg", "Liechtenstein",
	"Monaco", "Andorra", "San Marino",
	"Vanuatu", "Samoa", "Marshall Islands",
	"Belize", "Nevis", "Saint Kitts and Nevis",
	"Turks and Caicos", "Gibraltar", "Malta",
	"Cyprus", "Netherlands Antilles", "Curaçao",
	"Aruba", "Sint Maarten",
}

// DomesticPEPPositions lists positions that make a domestic PEP.
var DomesticPEPPositions = []string{
	"member_of_parliament", "senator", "cabinet_minister",
	"premier", "prime_minister", "governor_general",
	"supreme_court_justice", "federal_court_judge",
	"mayor_major_city", "head_of_government_agency",
	"deputy_minister", "ambassador", "high_commissioner",
	"military_general", "central_bank_governor",
	"crown_corporation_head",
}

// ForeignPEPPositions lists positions that make a foreign PEP.
var ForeignPEPPositions = []string{
	"head_of_state", "head_of_government", "cabinet_minister",
	"member_of_parliament", "senator", "supreme_court_justice",
	"ambassador", "high_commissioner", "military_general",
	"central_bank_governor", "state_owned_enterprise_head",
	"senior_political_party_official",
}

// HIOPositions lists heads of international organisations.
var HIOPositions = []string{
	"un_secretary_general", "un_agency_head",
	"world_bank_president", "imf_managing_director",
	"wto_director_general", "nato_secretary_general",
	"eu_commission_president", "eu_council_president",
	"interpol_president", "icj_judge",
	"who_director_general", "iaea_director_general",
}

// SourceOfFundsRisk maps normalised source-of-funds keys to points.
var SourceOfFundsRisk = map[string]int{
	"employment_income":  0,
	"salary":             0,
	"investment_returns": 0,
	"pension":            0,
	"inheritance":        5,
	"gift":               10,
	"business_income":    5,
	"real_estate_sale":   5,
	"legal_settlement":   10,
	"lottery_gambling":   15,
	"cryptocurrency":     15,
	"foreign_transfer":   10,
	"cash_savings":       10,
	"unknown":            20,
}

// HighRiskOccupations holds normalised occupation keys.
var HighRiskOccupations = []string{
	"politician", "government_official", "diplomat",
	"arms_dealer", "casino_operator", "money_service_operator",
	"precious_metals_dealer", "real_estate_developer",
	"lawyer_trust_services", "accountant_offshore",
	"import_export_trader",
}

// CRSNonParticipating holds jurisdictions outside the CRS exchange.
var CRSNonParticipating = []string{
	"United States",
}

// usTerms are the spellings treated as the United States.
var usTerms = []string{"united states", "us", "usa", "u.s.", "u.s.a.", "america"}

func containsFold(list []string, value string) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return false
	}
	for _, item := range list {
		if strings.EqualFold(item, value) {
			return true
		}
	}
	return false
}

// IsFATFBlackListed reports whether a country is on the FATF black list.
func IsFATFBlackListed(country string) bool { return containsFold(FATFBlackList, country) }

// IsFATFGreyListed reports whether a country is on the FATF grey list.
func IsFATFGreyListed(country string) bool { return containsFold(FATFGreyList, country) }

// IsFATFListed reports whether a country is on either FATF list.
func IsFATFListed(country string) bool {
	return IsFATFBlackListed(country) || IsFATFGreyListed(country)
}

// IsOFACSanctioned reports whether a country has an active OFAC program.
func IsOFACSanctioned(country string) bool { return containsFold(OFACSanctionedCountries, country) }

// IsOffshore reports whether a jurisdiction is an offshore centre.
func IsOffshore(country string) bool { return containsFold(OffshoreJurisdictions, country) }

// IsCRSParticipating reports whether a jurisdiction exchanges under CRS.
func IsCRSParticipating(country string) bool { return !containsFold(CRSNonParticipating, country) }

// IsDomestic reports whether a country is the domestic jurisdiction.
func IsDomestic(country string) bool {
	c := strings.ToLower(strings.TrimSpace(country))
	return c == "canada" || c == "ca"
}

// IsUnitedStates reports whether a country refers to the United States.
func IsUnitedStates(country string) bool { return containsFold(usTerms, country) }

// NormaliseKey lower-cases a free-text label and joins words with underscores.
func NormaliseKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer(" ", "_", "/", "_").Replace(s)
}

// MatchesAnyKey reports whether a normalised key equals or contains any listed key.
func MatchesAnyKey(key string, list []string) bool {
	if key == "" {
		return false
	}
	for _, item := range list {
		if strings.Contains(key, item) {
			return true
		}
	}
	return false
}
