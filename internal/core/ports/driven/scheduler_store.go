package driven

import (
	"context"

	"github.com/custodia-labs/kyc-onboard/internal/core/domain"
)

// SchedulerStore persists scheduled task state and run history.
type SchedulerStore interface {
	// GetTask retrieves a task by ID.
	// Returns nil and no error if the task does not exist.
	GetTask(ctx context.Context, taskID string) (*domain.ScheduledTask, error)

	// ListTasks returns all scheduled tasks.
	ListTasks(ctx context.Context) ([]domain.ScheduledTask, error)

	// SaveTask creates or updates a task by ID.
	SaveTask(ctx context.Context, task *domain.ScheduledTask) error

	// RecordRun logs one execution.
	RecordRun(ctx context.Context, run *domain.TaskRun) error

	// History returns recent runs for a task, most recent first.
	History(ctx context.Context, taskID string, limit int) ([]domain.TaskRun, error)

	// PruneHistory keeps the most recent keep runs per task.
	PruneHistory(ctx context.Context, keep int) error
}
