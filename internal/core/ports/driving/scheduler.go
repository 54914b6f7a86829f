package driving

import (
	"context"

	"github.com/custodia-labs/kyc-onboard/internal/core/domain"
)

// Scheduler runs background upkeep while the inbox is watched: screening
// list refresh and batch pattern scans.
type Scheduler interface {
	// Start runs scheduled tasks until ctx is cancelled or Stop is called.
	Start(ctx context.Context) error

	// Stop waits for running tasks to finish.
	Stop() error

	// RunNow executes one task immediately and records the run.
	RunNow(ctx context.Context, taskID string) (domain.TaskRun, error)

	// History returns the most recent runs of a task, latest first.
	History(ctx context.Context, taskID string, limit int) ([]domain.TaskRun, error)
}
