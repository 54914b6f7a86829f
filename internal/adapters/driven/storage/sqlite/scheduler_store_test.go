package sqlite

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/kyc-onboard/internal/core/domain"
)

func newSchedulerStore(t *testing.T) *SchedulerStore {
	t.Helper()
	store, cleanup := setupTestStore(t)
	t.Cleanup(cleanup)
	sched, ok := store.SchedulerStore().(*SchedulerStore)
	require.True(t, ok)
	return sched
}

func TestSchedulerStore_TaskRoundTrip(t *testing.T) {
	sched := newSchedulerStore(t)
	ctx := t.Context()

	ran := base.Add(-30 * time.Minute)
	task := &domain.ScheduledTask{
		ID:          domain.TaskIDScreeningRefresh,
		Name:        "Screening list refresh",
		Interval:    24 * time.Hour,
		LastRun:     ran,
		NextRun:     ran.Add(24 * time.Hour),
		LastSuccess: ran,
		Enabled:     true,
	}
	require.NoError(t, sched.SaveTask(ctx, task))

	got, err := sched.GetTask(ctx, task.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, *task, *got)

	missing, err := sched.GetTask(ctx, "credit-bureau-sync")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestSchedulerStore_SaveReplacesState(t *testing.T) {
	sched := newSchedulerStore(t)
	ctx := t.Context()

	task := &domain.ScheduledTask{ID: domain.TaskIDBatchPatterns, Name: "Batch patterns", Interval: time.Hour, Enabled: true, LastRun: base}
	require.NoError(t, sched.SaveTask(ctx, task))

	task.Interval = 6 * time.Hour
	task.LastRun = time.Time{}
	task.LastError = "case log unavailable"
	task.Enabled = false
	require.NoError(t, sched.SaveTask(ctx, task))

	got, err := sched.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, 6*time.Hour, got.Interval)
	assert.Equal(t, "case log unavailable", got.LastError)
	assert.False(t, got.Enabled)
	assert.True(t, got.LastRun.IsZero(), "zero times are stored as NULL")
}

func TestSchedulerStore_RejectsNil(t *testing.T) {
	sched := newSchedulerStore(t)

	assert.ErrorIs(t, sched.SaveTask(t.Context(), nil), domain.ErrInvalidInput)
	assert.ErrorIs(t, sched.RecordRun(t.Context(), nil), domain.ErrInvalidInput)
}

func TestSchedulerStore_ListTasksByID(t *testing.T) {
	sched := newSchedulerStore(t)
	ctx := t.Context()

	tasks, err := sched.ListTasks(ctx)
	require.NoError(t, err)
	assert.Empty(t, tasks)

	for _, id := range []string{domain.TaskIDScreeningRefresh, domain.TaskIDBatchPatterns} {
		require.NoError(t, sched.SaveTask(ctx, &domain.ScheduledTask{ID: id, Name: id, Interval: time.Hour}))
	}

	tasks, err = sched.ListTasks(ctx)
	require.NoError(t, err)
	ids := make([]string, len(tasks))
	for i, task := range tasks {
		ids[i] = task.ID
	}
	assert.Equal(t, []string{domain.TaskIDBatchPatterns, domain.TaskIDScreeningRefresh}, ids)
}

func TestSchedulerStore_History(t *testing.T) {
	sched := newSchedulerStore(t)
	ctx := t.Context()

	for i := range 3 {
		started := base.Add(time.Duration(i) * time.Hour)
		run := &domain.TaskRun{
			TaskID:         domain.TaskIDScreeningRefresh,
			StartedAt:      started,
			EndedAt:        started.Add(2 * time.Second),
			Success:        i != 1,
			ItemsProcessed: 250 * i,
		}
		if !run.Success {
			run.Error = "list download timed out"
		}
		require.NoError(t, sched.RecordRun(ctx, run))
	}
	require.NoError(t, sched.RecordRun(ctx, &domain.TaskRun{
		TaskID: domain.TaskIDBatchPatterns, StartedAt: base.Add(5 * time.Hour), EndedAt: base.Add(5 * time.Hour), Success: true,
	}))

	runs, err := sched.History(ctx, domain.TaskIDScreeningRefresh, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	assert.Equal(t, base.Add(2*time.Hour), runs[0].StartedAt, "newest first")
	assert.Equal(t, 500, runs[0].ItemsProcessed)
	assert.True(t, runs[0].Success)
	assert.Empty(t, runs[0].Error)

	assert.False(t, runs[1].Success)
	assert.Equal(t, "list download timed out", runs[1].Error)
	assert.Equal(t, 2*time.Second, runs[1].EndedAt.Sub(runs[1].StartedAt))
}

func TestSchedulerStore_PruneHistoryPerTask(t *testing.T) {
	sched := newSchedulerStore(t)
	ctx := t.Context()

	counts := map[string]int{"screening": 5, "patterns": 1}
	for id, n := range counts {
		for i := range n {
			require.NoError(t, sched.RecordRun(ctx, &domain.TaskRun{
				TaskID: id, StartedAt: base.Add(time.Duration(i) * time.Minute), EndedAt: base, Success: true,
			}))
		}
	}

	require.NoError(t, sched.PruneHistory(ctx, 2))

	kept, err := sched.History(ctx, "screening", 10)
	require.NoError(t, err)
	require.Len(t, kept, 2)
	assert.Equal(t, base.Add(4*time.Minute), kept[0].StartedAt)
	assert.Equal(t, base.Add(3*time.Minute), kept[1].StartedAt)

	untouched, err := sched.History(ctx, "patterns", 10)
	require.NoError(t, err)
	assert.Len(t, untouched, 1)
}
