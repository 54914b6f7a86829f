package cli

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/kyc-onboard/internal/core/domain"
)

func TestTasksCmd_List(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	schedulerConfig = domain.DefaultSchedulerConfig()

	out, err := execute(t, "tasks")

	require.NoError(t, err)
	assert.Contains(t, out, "Scheduler: enabled")
	assert.Contains(t, out, domain.TaskIDBatchPatterns)
	assert.Contains(t, out, domain.TaskIDScreeningRefresh)
	assert.Less(t, indexOf(out, domain.TaskIDBatchPatterns), indexOf(out, domain.TaskIDScreeningRefresh))
}

func TestTasksCmd_ListEmpty(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "tasks")

	require.NoError(t, err)
	assert.Contains(t, out, "No tasks configured.")
}

func TestTasksRunCmd(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.scheduler.run = domain.TaskRun{
		TaskID:         domain.TaskIDScreeningRefresh,
		StartedAt:      testNow,
		EndedAt:        testNow.Add(1500 * time.Millisecond),
		Success:        true,
		ItemsProcessed: 812,
	}

	out, err := execute(t, "tasks", "run", domain.TaskIDScreeningRefresh)

	require.NoError(t, err)
	assert.Contains(t, out, "items=812")
	assert.Contains(t, out, "1.5s")
	assert.Contains(t, out, "ok")
}

func TestTasksRunCmd_Failure(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.scheduler.run = domain.TaskRun{TaskID: domain.TaskIDScreeningRefresh, StartedAt: testNow, EndedAt: testNow, Error: "list unreachable"}
	ts.scheduler.err = errors.New("list unreachable")

	out, err := execute(t, "tasks", "run", domain.TaskIDScreeningRefresh)

	require.Error(t, err)
	assert.Contains(t, out, "FAILED: list unreachable")
}

func TestTasksHistoryCmd(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	for i := range 3 {
		ts.scheduler.history = append(ts.scheduler.history, domain.TaskRun{
			TaskID:    domain.TaskIDBatchPatterns,
			StartedAt: testNow.Add(-time.Duration(i) * time.Hour),
			EndedAt:   testNow.Add(-time.Duration(i) * time.Hour),
			Success:   true,
		})
	}

	out, err := execute(t, "tasks", "history", domain.TaskIDBatchPatterns, "--limit", "2")

	require.NoError(t, err)
	assert.Equal(t, 2, countOf(out, domain.TaskIDBatchPatterns))
}

func TestTasksHistoryCmd_Empty(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "tasks", "history", "batch-patterns")

	require.NoError(t, err)
	assert.Contains(t, out, "No runs recorded for batch-patterns.")
}

func TestTasksRunCmd_NotConfigured(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	scheduler = nil

	_, err := execute(t, "tasks", "run", "batch-patterns")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "scheduler service not configured")
}
