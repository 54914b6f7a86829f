package prom

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/kyc-onboard/internal/core/domain"
)

func TestRecorder_FlushWritesTextfile(t *testing.T) {
	root := t.TempDir()
	r := NewRecorder(root)

	r.ObserveStage("investigation", 1500*time.Millisecond)
	r.ObserveCall("task", "IndividualSanctions", 2*time.Second, nil)
	r.ObserveCall("task", "PEPDetection", time.Second, errors.New("timeout"))
	r.ObserveEvidence([]domain.EvidenceRecord{
		{EvidenceClass: domain.EvidenceSourced},
		{EvidenceClass: domain.EvidenceSourced},
		{EvidenceClass: domain.EvidenceUnknown},
	})
	r.ObserveDecision(domain.DecisionEscalate, domain.RiskMedium)
	r.ObserveDecision(domain.DecisionConditional, domain.RiskMedium)

	require.NoError(t, r.Flush(context.Background(), "jane_doe"))

	data, err := os.ReadFile(filepath.Join(root, "jane_doe", FileName))
	require.NoError(t, err)
	text := string(data)

	assert.Contains(t, text, `kyc_stage_duration_seconds{stage="investigation"} 1.5`)
	assert.Contains(t, text, `kyc_collaborator_calls_total{kind="task",name="PEPDetection"} 1`)
	assert.Contains(t, text, `kyc_collaborator_failures_total{kind="task",name="PEPDetection"} 1`)
	assert.NotContains(t, text, `kyc_collaborator_failures_total{kind="task",name="IndividualSanctions"}`)
	assert.Contains(t, text, `kyc_evidence_records{class="S"} 2`)
	assert.Contains(t, text, `kyc_evidence_records{class="V"} 0`)
	assert.Contains(t, text, `kyc_decision{decision="CONDITIONAL",risk_level="MEDIUM"} 1`)
	assert.NotContains(t, text, `decision="ESCALATE"`)
	assert.Contains(t, text, "kyc_metrics_flushed_timestamp_seconds")
}

func TestRecorder_FlushResetsForNextCase(t *testing.T) {
	root := t.TempDir()
	r := NewRecorder(root)

	r.ObserveStage("intake", time.Millisecond)
	require.NoError(t, r.Flush(context.Background(), "first"))
	r.ObserveStage("synthesis", time.Second)
	require.NoError(t, r.Flush(context.Background(), "second"))

	data, err := os.ReadFile(filepath.Join(root, "second", FileName))
	require.NoError(t, err)
	assert.NotContains(t, string(data), `stage="intake"`)
	assert.Contains(t, string(data), `stage="synthesis"`)
}

func TestRecorder_FlushRejectsEmptyID(t *testing.T) {
	err := NewRecorder(t.TempDir()).Flush(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
