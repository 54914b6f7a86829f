package domain

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"time"
)

// Phase is a pipeline stage watermark.
type Phase int

// Pipeline phases in execution order. Finalize is not checkpointed.
const (
	PhaseIntake Phase = iota
	PhaseInvestigation
	PhaseSynthesis
	PhaseReview
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseIntake:
		return "intake"
	case PhaseInvestigation:
		return "investigation"
	case PhaseSynthesis:
		return "synthesis"
	case PhaseReview:
		return "review"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Checkpoint is the persisted state of a run after its last completed phase.
type Checkpoint struct {
	RunID              string                `json:"run_id"`
	CompletedStage     Phase                 `json:"completed_stage"`
	Client             Client                `json:"client"`
	Plan               *InvestigationPlan    `json:"plan,omitempty"`
	Investigation      *InvestigationResults `json:"investigation,omitempty"`
	Evidence           []EvidenceRecord      `json:"evidence,omitempty"`
	Synthesis          *SynthesisOutput      `json:"synthesis,omitempty"`
	ReviewIntelligence *ReviewIntelligence   `json:"review_intelligence,omitempty"`
	UpdatedAt          time.Time             `json:"updated_at"`
}

// Reached reports whether the checkpoint has completed the given phase.
func (c *Checkpoint) Reached(p Phase) bool {
	return c != nil && c.CompletedStage >= p
}

// FieldError records a checkpoint field that could not be reconstructed.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("checkpoint field %s: %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }

// DecodeCheckpoint reconstructs a checkpoint field by field. A field that
// fails to decode is left at its zero value and reported in the returned
// slice; only a document that is not a JSON object fails outright.
func DecodeCheckpoint(data []byte) (*Checkpoint, []error, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, fmt.Errorf("decode checkpoint: %w", err)
	}

	cp := &Checkpoint{}
	var warnings []error
	decode := func(field string, target any) {
		msg, ok := raw[field]
		if !ok || string(msg) == "null" {
			return
		}
		if err := unmarshalOrReset(msg, target); err != nil {
			warnings = append(warnings, &FieldError{Field: field, Err: err})
		}
	}

	decode("run_id", &cp.RunID)
	decode("completed_stage", &cp.CompletedStage)
	decode("client", &cp.Client)
	decode("updated_at", &cp.UpdatedAt)

	decode("plan", &cp.Plan)

	if msg, ok := raw["investigation"]; ok && string(msg) != "null" {
		inv, errs := decodeInvestigation(msg)
		cp.Investigation = inv
		warnings = append(warnings, errs...)
	}

	if msg, ok := raw["evidence"]; ok && string(msg) != "null" {
		records, errs := decodeEvidence(msg)
		cp.Evidence = records
		warnings = append(warnings, errs...)
	}

	decode("synthesis", &cp.Synthesis)
	decode("review_intelligence", &cp.ReviewIntelligence)

	if cp.CompletedStage < PhaseIntake || cp.CompletedStage > PhaseReview {
		warnings = append(warnings, &FieldError{
			Field: "completed_stage",
			Err:   fmt.Errorf("%w: stage %d out of range", ErrInvalidInput, cp.CompletedStage),
		})
		cp.CompletedStage = PhaseIntake
	}
	return cp, warnings, nil
}

// decodeInvestigation rebuilds results one field at a time.
func decodeInvestigation(data json.RawMessage) (*InvestigationResults, []error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return &InvestigationResults{}, []error{&FieldError{Field: "investigation", Err: err}}
	}

	out := &InvestigationResults{}
	var warnings []error
	fields := []struct {
		name   string
		target any
	}{
		{"individual_sanctions", &out.IndividualSanctions},
		{"pep_classification", &out.PEPClassification},
		{"individual_adverse_media", &out.IndividualAdverseMedia},
		{"entity_verification", &out.EntityVerification},
		{"entity_sanctions", &out.EntitySanctions},
		{"business_adverse_media", &out.BusinessAdverseMedia},
		{"jurisdiction_risk", &out.JurisdictionRisk},
		{"id_verification", &out.IDVerification},
		{"suitability_assessment", &out.Suitability},
		{"fatca_crs", &out.FATCACRS},
		{"edd_requirements", &out.EDDRequirements},
		{"compliance_actions", &out.ComplianceActions},
		{"business_risk_assessment", &out.BusinessRiskAssessment},
		{"document_requirements", &out.DocumentRequirements},
		{"cascade", &out.Cascade},
		{"cascade_order", &out.CascadeOrder},
	}
	for _, f := range fields {
		msg, ok := raw[f.name]
		if !ok || string(msg) == "null" {
			continue
		}
		if err := unmarshalOrReset(msg, f.target); err != nil {
			warnings = append(warnings, &FieldError{Field: "investigation." + f.name, Err: err})
		}
	}

	// A cascade map without its order still replays deterministically.
	if len(out.Cascade) > 0 && len(out.CascadeOrder) != len(out.Cascade) {
		out.CascadeOrder = sortedKeys(out.Cascade)
	}
	return out, warnings
}

// decodeEvidence drops individual records that fail to decode or validate.
func decodeEvidence(data json.RawMessage) ([]EvidenceRecord, []error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, []error{&FieldError{Field: "evidence", Err: err}}
	}
	records := make([]EvidenceRecord, 0, len(raw))
	var warnings []error
	for i, msg := range raw {
		var r EvidenceRecord
		if err := json.Unmarshal(msg, &r); err != nil {
			warnings = append(warnings, &FieldError{Field: fmt.Sprintf("evidence[%d]", i), Err: err})
			continue
		}
		if err := r.Validate(); err != nil {
			warnings = append(warnings, &FieldError{Field: fmt.Sprintf("evidence[%d]", i), Err: err})
			continue
		}
		records = append(records, r)
	}
	return records, warnings
}

func sortedKeys(m map[string]CascadeScreening) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// unmarshalOrReset decodes into target and restores its zero value on failure
// so a half-populated field never leaks into the rebuilt state.
func unmarshalOrReset(msg json.RawMessage, target any) error {
	if err := json.Unmarshal(msg, target); err != nil {
		v := reflect.ValueOf(target).Elem()
		v.Set(reflect.Zero(v.Type()))
		return err
	}
	return nil
}
