package utilities

import (
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/kyc-onboard/internal/core/domain"
)

// nameKey turns a subject name into the suffix used in evidence ids.
func nameKey(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}

// record builds a utility evidence record.
type record struct {
	id          string
	source      domain.UtilityName
	subject     string
	context     string
	claim       string
	class       domain.EvidenceClass
	data        []map[string]any
	disposition domain.Disposition
	confidence  domain.Confidence
}

func (r record) build(now time.Time) domain.EvidenceRecord {
	return domain.EvidenceRecord{
		EvidenceID:     r.id,
		SourceKind:     domain.SourceUtility,
		SourceName:     string(r.source),
		Subject:        r.subject,
		SubjectContext: r.context,
		Claim:          r.claim,
		EvidenceClass:  r.class,
		SupportingData: r.data,
		Disposition:    r.disposition,
		Confidence:     r.confidence,
		Timestamp:      now,
	}
}

func details(format string, items ...any) map[string]any {
	return map[string]any{"detail": fmt.Sprintf(format, items...)}
}

func listData(key string, values []string) []map[string]any {
	out := make([]map[string]any, 0, len(values))
	for _, v := range values {
		out = append(out, map[string]any{key: v})
	}
	return out
}

func containsAny(s string, keywords ...string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

// money formats an amount as whole dollars with thousands separators.
func money(v float64) string {
	neg := v < 0
	if neg {
		v = -v
	}
	digits := fmt.Sprintf("%.0f", v)
	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}
	if neg {
		return "-$" + b.String()
	}
	return "$" + b.String()
}
