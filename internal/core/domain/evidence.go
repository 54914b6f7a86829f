package domain

import (
	"fmt"
	"strings"
	"time"
)

// SourceKind identifies what produced an evidence record.
type SourceKind string

// Evidence producers.
const (
	SourceTask    SourceKind = "task"
	SourceUtility SourceKind = "utility"
)

// EvidenceClass describes how strongly a claim is sourced.
type EvidenceClass string

// Evidence classes, strongest first.
const (
	// EvidenceVerified has a URL, direct quote and a primary or strong secondary source.
	EvidenceVerified EvidenceClass = "V"
	// EvidenceSourced has a URL and excerpt from a secondary source.
	EvidenceSourced EvidenceClass = "S"
	// EvidenceInferred is derived from signals without direct evidence.
	EvidenceInferred EvidenceClass = "I"
	// EvidenceUnknown was searched for but not found.
	EvidenceUnknown EvidenceClass = "U"
)

// EvidenceClasses lists all classes in grading order.
var EvidenceClasses = []EvidenceClass{EvidenceVerified, EvidenceSourced, EvidenceInferred, EvidenceUnknown}

// IsValid returns true if the class is recognised.
func (c EvidenceClass) IsValid() bool {
	switch c {
	case EvidenceVerified, EvidenceSourced, EvidenceInferred, EvidenceUnknown:
		return true
	}
	return false
}

// IsWeak reports whether the class is inferred or unknown.
func (c EvidenceClass) IsWeak() bool {
	return c == EvidenceInferred || c == EvidenceUnknown
}

// Disposition is the classification outcome of a screening finding.
type Disposition string

// Dispositions.
const (
	DispositionClear          Disposition = "CLEAR"
	DispositionPotentialMatch Disposition = "POTENTIAL_MATCH"
	DispositionConfirmedMatch Disposition = "CONFIRMED_MATCH"
	DispositionFalsePositive  Disposition = "FALSE_POSITIVE"
	DispositionPendingReview  Disposition = "PENDING_REVIEW"
)

// IsValid returns true if the disposition is recognised.
func (d Disposition) IsValid() bool {
	switch d {
	case DispositionClear, DispositionPotentialMatch, DispositionConfirmedMatch,
		DispositionFalsePositive, DispositionPendingReview:
		return true
	}
	return false
}

// IsMatch reports whether the disposition is a potential or confirmed match.
func (d Disposition) IsMatch() bool {
	return d == DispositionPotentialMatch || d == DispositionConfirmedMatch
}

// Confidence is a coarse confidence tag.
type Confidence string

// Confidence tags.
const (
	ConfidenceHigh   Confidence = "HIGH"
	ConfidenceMedium Confidence = "MEDIUM"
	ConfidenceLow    Confidence = "LOW"
)

// IsValid returns true if the confidence is recognised.
func (c Confidence) IsValid() bool {
	return c == ConfidenceHigh || c == ConfidenceMedium || c == ConfidenceLow
}

// EvidenceRecord is an atomic finding contributed by a task or utility.
// Records are created once and never mutated after being appended.
type EvidenceRecord struct {
	EvidenceID           string           `json:"evidence_id"`
	SourceKind           SourceKind       `json:"source_kind"`
	SourceName           string           `json:"source_name"`
	Subject              string           `json:"subject"`
	SubjectContext       string           `json:"subject_context,omitempty"`
	Claim                string           `json:"claim"`
	EvidenceClass        EvidenceClass    `json:"evidence_class"`
	SupportingData       []map[string]any `json:"supporting_data,omitempty"`
	Disposition          Disposition      `json:"disposition"`
	DispositionReasoning string           `json:"disposition_reasoning,omitempty"`
	Confidence           Confidence       `json:"confidence"`
	Timestamp            time.Time        `json:"timestamp"`
}

// Validate checks the record has its identifying fields and closed-enum values.
func (r EvidenceRecord) Validate() error {
	var missing []string
	if strings.TrimSpace(r.EvidenceID) == "" {
		missing = append(missing, "evidence_id")
	}
	if strings.TrimSpace(r.SourceName) == "" {
		missing = append(missing, "source_name")
	}
	if strings.TrimSpace(r.Claim) == "" {
		missing = append(missing, "claim")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidEvidence, strings.Join(missing, ", "))
	}
	if r.SourceKind != SourceTask && r.SourceKind != SourceUtility {
		return fmt.Errorf("%w: %s: source_kind %q", ErrInvalidEvidence, r.EvidenceID, r.SourceKind)
	}
	if !r.EvidenceClass.IsValid() {
		return fmt.Errorf("%w: %s: evidence_class %q", ErrInvalidEvidence, r.EvidenceID, r.EvidenceClass)
	}
	if !r.Disposition.IsValid() {
		return fmt.Errorf("%w: %s: disposition %q", ErrInvalidEvidence, r.EvidenceID, r.Disposition)
	}
	if !r.Confidence.IsValid() {
		return fmt.Errorf("%w: %s: confidence %q", ErrInvalidEvidence, r.EvidenceID, r.Confidence)
	}
	return nil
}

// WithContext returns a copy tagged with a subject context.
func (r EvidenceRecord) WithContext(context string) EvidenceRecord {
	r.SubjectContext = context
	return r
}

// EvidenceStore is the append-only evidence base shared across a run.
// Records keep insertion order and duplicates are retained.
type EvidenceStore struct {
	records []EvidenceRecord
}

// NewEvidenceStore creates a store seeded with previously persisted records.
// Seeded records are trusted as they were validated when first appended.
func NewEvidenceStore(records ...EvidenceRecord) *EvidenceStore {
	s := &EvidenceStore{records: make([]EvidenceRecord, 0, len(records))}
	s.records = append(s.records, records...)
	return s
}

// Append validates and appends a record.
func (s *EvidenceStore) Append(r EvidenceRecord) error {
	if err := r.Validate(); err != nil {
		return err
	}
	s.records = append(s.records, r)
	return nil
}

// All returns a copy of the records in insertion order.
func (s *EvidenceStore) All() []EvidenceRecord {
	out := make([]EvidenceRecord, len(s.records))
	copy(out, s.records)
	return out
}

// Len returns the number of records.
func (s *EvidenceStore) Len() int {
	return len(s.records)
}
