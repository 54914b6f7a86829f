package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/kyc-onboard/internal/core/domain"
)

// setupTestStore creates a SQLite store in a temporary directory.
func setupTestStore(t *testing.T) (*Store, func()) {
	t.Helper()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	require.NotNil(t, store)

	return store, func() { assert.NoError(t, store.Close()) }
}

var base = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func signature(id string, offset time.Duration, level domain.RiskLevel, countries ...string) domain.CaseSignature {
	return domain.CaseSignature{
		ClientID:            id,
		Timestamp:           base.Add(offset),
		RiskLevel:           level,
		RiskScore:           20,
		Jurisdictions:       countries,
		ClientType:          domain.ClientTypeIndividual,
		ConfidenceGrade:     domain.Grade("B"),
		ContradictionsCount: 1,
	}
}

func TestNewStore_CreatesDatabase(t *testing.T) {
	dir := t.TempDir()

	store, err := NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, filepath.Join(dir, "kyc.db"), store.Path())
	version, err := store.Version(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, version)
}

func TestNewStore_ReopenIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	first, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, first.CaseLog().Append(ctx, signature("jane_doe", 0, domain.RiskLow)))
	require.NoError(t, first.Close())

	second, err := NewStore(dir)
	require.NoError(t, err)
	defer second.Close()

	sigs, err := second.CaseLog().Since(ctx, time.Time{})
	require.NoError(t, err)
	assert.Len(t, sigs, 1)
}

func TestCaseLog_AppendAndSince(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	log := store.CaseLog()

	require.NoError(t, log.Append(ctx, signature("old", -10*24*time.Hour, domain.RiskLow, "Canada")))
	require.NoError(t, log.Append(ctx, signature("jane_doe", time.Hour, domain.RiskMedium, "Canada", "Iran")))
	require.NoError(t, log.Append(ctx, signature("acme", 0, domain.RiskHigh)))

	sigs, err := log.Since(ctx, base)

	require.NoError(t, err)
	require.Len(t, sigs, 2)
	assert.Equal(t, "acme", sigs[0].ClientID, "oldest first")
	assert.Equal(t, "jane_doe", sigs[1].ClientID)
	assert.Equal(t, []string{"Canada", "Iran"}, sigs[1].Jurisdictions)
	assert.Nil(t, sigs[0].Jurisdictions)
	assert.Equal(t, domain.RiskMedium, sigs[1].RiskLevel)
	assert.Equal(t, domain.Grade("B"), sigs[1].ConfidenceGrade)
	assert.Equal(t, 1, sigs[1].ContradictionsCount)
	assert.True(t, base.Add(time.Hour).Equal(sigs[1].Timestamp))
}

func TestCaseLog_SinceIncludesBoundary(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	log := store.CaseLog()

	require.NoError(t, log.Append(ctx, signature("edge", 0, domain.RiskLow)))
	require.NoError(t, log.Append(ctx, signature("before", -time.Nanosecond, domain.RiskLow)))

	sigs, err := log.Since(ctx, base)

	require.NoError(t, err)
	require.Len(t, sigs, 1)
	assert.Equal(t, "edge", sigs[0].ClientID)
}

func TestEvidenceLedger_RecordAndRun(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	ledger := store.EvidenceLedger()

	records := []domain.EvidenceRecord{
		{
			EvidenceID: "ev_sanc_001", SourceKind: domain.SourceTask, SourceName: "individual_sanctions",
			Subject: "Jane Doe", Claim: "No sanctions match", EvidenceClass: domain.EvidenceVerified,
			Disposition: domain.DispositionClear, Confidence: domain.ConfidenceHigh, Timestamp: base,
		},
		{
			EvidenceID: "ev_pep_001", SourceKind: domain.SourceTask, SourceName: "pep_detection",
			Subject: "Jane Doe", Claim: "Not a PEP", EvidenceClass: domain.EvidenceSourced,
			Disposition: domain.DispositionClear, Confidence: domain.ConfidenceMedium, Timestamp: base,
		},
	}

	require.NoError(t, ledger.Record(ctx, "run-1", "jane_doe", records))
	got, err := ledger.Run(ctx, "run-1")

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "ev_sanc_001", got[0].EvidenceID)
	assert.Equal(t, "ev_pep_001", got[1].EvidenceID)
	assert.Equal(t, domain.EvidenceSourced, got[1].EvidenceClass)

	// Re-recording a run replaces it.
	require.NoError(t, ledger.Record(ctx, "run-1", "jane_doe", records[:1]))
	got, err = ledger.Run(ctx, "run-1")
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestEvidenceLedger_ForClient(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	ledger := store.EvidenceLedger()

	rec := func(id string, at time.Time) domain.EvidenceRecord {
		return domain.EvidenceRecord{EvidenceID: id, SourceName: "x", Subject: "s", Timestamp: at}
	}
	require.NoError(t, ledger.Record(ctx, "run-2", "jane_doe", []domain.EvidenceRecord{rec("second", base.Add(time.Hour))}))
	require.NoError(t, ledger.Record(ctx, "run-1", "jane_doe", []domain.EvidenceRecord{rec("first", base)}))
	require.NoError(t, ledger.Record(ctx, "run-3", "acme", []domain.EvidenceRecord{rec("other", base)}))

	got, err := ledger.ForClient(ctx, "jane_doe")

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "first", got[0].EvidenceID)
	assert.Equal(t, "second", got[1].EvidenceID)
}

func TestEvidenceLedger_EmptyRun(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	got, err := store.EvidenceLedger().Run(context.Background(), "missing")

	require.NoError(t, err)
	assert.Empty(t, got)
}
