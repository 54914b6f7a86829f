package research

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/kyc-onboard/internal/core/domain"
	"github.com/custodia-labs/kyc-onboard/internal/core/ports/driven"
)

const notProvided = "Not provided"

// describePerson renders the subject block for person-level prompts.
func describePerson(q driven.PersonQuery) string {
	var b strings.Builder
	line(&b, "Full name", q.FullName)
	line(&b, "Date of birth", q.DateOfBirth)
	line(&b, "Citizenship", q.Citizenship)
	if q.Employer != "" {
		line(&b, "Employer", q.Employer)
	}
	if q.Context != "" {
		line(&b, "Role", q.Context)
	}
	return strings.TrimRight(b.String(), "\n")
}

func describePEP(q driven.PEPQuery) string {
	var b strings.Builder
	b.WriteString(describePerson(q.PersonQuery))
	b.WriteByte('\n')
	line(&b, "Self-declared PEP", yesNo(q.SelfDeclared))
	if q.Details != "" {
		line(&b, "Declaration details", q.Details)
	}
	return strings.TrimRight(b.String(), "\n")
}

func describeEntity(q driven.EntityQuery) string {
	var b strings.Builder
	line(&b, "Legal name", q.LegalName)
	line(&b, "Jurisdiction", q.Jurisdiction)
	line(&b, "Business number", q.BusinessNumber)
	line(&b, "Industry", q.Industry)
	line(&b, "Countries of operation", strings.Join(q.Countries, ", "))
	line(&b, "US nexus", yesNo(q.USNexus))
	if len(q.Owners) > 0 {
		b.WriteString("Beneficial owners:\n")
		for _, o := range q.Owners {
			fmt.Fprintf(&b, "- %s (%g%%)\n", o.FullName, o.OwnershipPercentage)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func describeJurisdictions(countries []string) string {
	if len(countries) == 0 {
		return "Jurisdictions: " + notProvided
	}
	return "Jurisdictions: " + strings.Join(countries, ", ")
}

func line(b *strings.Builder, label, value string) {
	if strings.TrimSpace(value) == "" {
		value = notProvided
	}
	fmt.Fprintf(b, "%s: %s\n", label, value)
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

// evidenceID joins a prefix, the subject key and a suffix.
func evidenceID(prefix, subject, suffix string) string {
	return prefix + "_" + domain.ClientID(subject) + "_" + suffix
}
