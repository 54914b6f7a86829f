package memory

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/kyc-onboard/internal/core/domain"
	"github.com/custodia-labs/kyc-onboard/internal/core/ports/driven"
)

// Ensure CaseLog and EvidenceLedger implement the interfaces.
var (
	_ driven.CaseLog      = (*CaseLog)(nil)
	_ driven.EvidenceSink = (*EvidenceLedger)(nil)
)

// CaseLog is an in-memory append-only case log.
type CaseLog struct {
	mu         sync.RWMutex
	signatures []domain.CaseSignature
}

// NewCaseLog creates an empty case log.
func NewCaseLog() *CaseLog {
	return &CaseLog{}
}

// Append adds a case fingerprint.
func (l *CaseLog) Append(_ context.Context, sig domain.CaseSignature) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.signatures = append(l.signatures, sig)
	return nil
}

// Since returns fingerprints at or after t in append order.
func (l *CaseLog) Since(_ context.Context, t time.Time) ([]domain.CaseSignature, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var out []domain.CaseSignature
	for _, sig := range l.signatures {
		if !sig.Timestamp.Before(t) {
			out = append(out, sig)
		}
	}
	return out, nil
}

// Len returns the number of fingerprints.
func (l *CaseLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.signatures)
}

// EvidenceLedger is an in-memory evidence sink keyed by run id.
type EvidenceLedger struct {
	mu   sync.RWMutex
	runs map[string][]domain.EvidenceRecord
}

// NewEvidenceLedger creates an empty ledger.
func NewEvidenceLedger() *EvidenceLedger {
	return &EvidenceLedger{runs: make(map[string][]domain.EvidenceRecord)}
}

// Record stores the records for a run.
func (l *EvidenceLedger) Record(_ context.Context, runID, _ string, records []domain.EvidenceRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.runs[runID] = append(l.runs[runID], records...)
	return nil
}

// Run returns the records stored for a run.
func (l *EvidenceLedger) Run(runID string) []domain.EvidenceRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]domain.EvidenceRecord(nil), l.runs[runID]...)
}
