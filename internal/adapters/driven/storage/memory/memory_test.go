package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/kyc-onboard/internal/core/domain"
	"github.com/custodia-labs/kyc-onboard/internal/core/ports/driven"
)

func TestConfigStore_TypedGetters(t *testing.T) {
	store := NewConfigStore()
	require.NoError(t, store.Set("llm.provider", "anthropic"))
	require.NoError(t, store.Set("pipeline.batch_window_days", int64(14)))
	require.NoError(t, store.Set("pipeline.requests_per_minute", 30.0))
	require.NoError(t, store.Set("pipeline.match_threshold", 0.9))
	require.NoError(t, store.Set("pipeline.offline", true))
	require.NoError(t, store.Set("pipeline.jurisdictions", []any{"IR", 7, "KP"}))

	assert.Equal(t, "anthropic", store.GetString("llm.provider"))
	assert.Equal(t, 14, store.GetInt("pipeline.batch_window_days"))
	assert.Equal(t, 30, store.GetInt("pipeline.requests_per_minute"))
	assert.InDelta(t, 0.9, store.GetFloat("pipeline.match_threshold"), 1e-9)
	assert.True(t, store.GetBool("pipeline.offline"))
	assert.Equal(t, []string{"IR", "KP"}, store.GetStringSlice("pipeline.jurisdictions"))
}

func TestConfigStore_MissingAndMistyped(t *testing.T) {
	store := NewConfigStore()
	require.NoError(t, store.Set("pipeline.offline", "yes"))

	_, ok := store.Get("llm.model")
	assert.False(t, ok)
	assert.Empty(t, store.GetString("llm.model"))
	assert.Zero(t, store.GetInt("pipeline.offline"))
	assert.Zero(t, store.GetFloat("pipeline.offline"))
	assert.False(t, store.GetBool("pipeline.offline"))
	assert.Nil(t, store.GetStringSlice("pipeline.offline"))

	assert.NoError(t, store.Save())
	assert.NoError(t, store.Load())
	assert.Equal(t, ":memory:", store.Path())
}

func TestConfigStore_ConcurrentAccess(t *testing.T) {
	store := NewConfigStore()
	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			key := fmt.Sprintf("pipeline.key_%d", i%5)
			_ = store.Set(key, i)
			_ = store.GetInt(key)
		}()
	}
	wg.Wait()

	for i := range 5 {
		_, ok := store.Get(fmt.Sprintf("pipeline.key_%d", i))
		assert.True(t, ok)
	}
}

func TestCaseStore_CheckpointRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewCaseStore()

	_, _, err := store.LoadCheckpoint(ctx, "jane_doe")
	require.ErrorIs(t, err, domain.ErrNoCheckpoint)

	cp := &domain.Checkpoint{
		RunID:          "run-1",
		CompletedStage: domain.PhaseInvestigation,
		Client:         domain.NewIndividual(domain.IndividualClient{FullName: "Jane Doe", Citizenship: "Canada"}),
	}
	require.NoError(t, store.SaveCheckpoint(ctx, "jane_doe", cp))

	cp.RunID = "mutated"
	loaded, warnings, err := store.LoadCheckpoint(ctx, "jane_doe")
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, "run-1", loaded.RunID)
	assert.Equal(t, domain.PhaseInvestigation, loaded.CompletedStage)
	assert.Equal(t, "Jane Doe", loaded.Client.Name())
}

func TestCaseStore_Artifacts(t *testing.T) {
	ctx := context.Background()
	store := NewCaseStore()

	plan := domain.InvestigationPlan{ClientID: "jane_doe"}
	require.NoError(t, store.SaveArtifact(ctx, "jane_doe", driven.ArtifactPlan, plan))
	require.NoError(t, store.SaveText(ctx, "jane_doe", driven.ArtifactSummary, "# Jane Doe"))

	var got domain.InvestigationPlan
	require.NoError(t, store.LoadArtifact(ctx, "jane_doe", driven.ArtifactPlan, &got))
	assert.Equal(t, "jane_doe", got.ClientID)

	err := store.LoadArtifact(ctx, "jane_doe", driven.ArtifactFinal, &got)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	text, ok := store.Text("jane_doe", driven.ArtifactSummary)
	assert.True(t, ok)
	assert.Equal(t, "# Jane Doe", text)
	assert.True(t, store.HasArtifact("jane_doe", driven.ArtifactPlan))
	assert.False(t, store.HasArtifact("jane_doe", driven.ArtifactResults))
	assert.Equal(t, "memory://jane_doe", store.Location("jane_doe"))
}

func TestCaseStore_ListCasesSorted(t *testing.T) {
	ctx := context.Background()
	store := NewCaseStore()
	for _, id := range []string{"maple_leaf_inc", "jane_doe"} {
		require.NoError(t, store.SaveCheckpoint(ctx, id, &domain.Checkpoint{RunID: id}))
	}
	require.NoError(t, store.SaveText(ctx, "artifact_only", driven.ArtifactSummary, "x"))

	ids, err := store.ListCases(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"jane_doe", "maple_leaf_inc"}, ids)
}

func TestCaseLog_SinceFiltersByTime(t *testing.T) {
	ctx := context.Background()
	log := NewCaseLog()
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	for i, id := range []string{"a", "b", "c"} {
		require.NoError(t, log.Append(ctx, domain.CaseSignature{
			ClientID:  id,
			Timestamp: base.Add(time.Duration(i) * 24 * time.Hour),
		}))
	}

	sigs, err := log.Since(ctx, base.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, sigs, 2)
	assert.Equal(t, "b", sigs[0].ClientID)
	assert.Equal(t, "c", sigs[1].ClientID)
	assert.Equal(t, 3, log.Len())
}

func TestEvidenceLedger_RecordsPerRun(t *testing.T) {
	ctx := context.Background()
	ledger := NewEvidenceLedger()
	records := []domain.EvidenceRecord{{EvidenceID: "IND-SAN-001"}, {EvidenceID: "IND-PEP-001"}}

	require.NoError(t, ledger.Record(ctx, "run-1", "jane_doe", records))
	records[0].EvidenceID = "mutated"

	got := ledger.Run("run-1")
	require.Len(t, got, 2)
	assert.Equal(t, "IND-SAN-001", got[0].EvidenceID)
	assert.Empty(t, ledger.Run("run-2"))
}
