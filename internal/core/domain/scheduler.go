package domain

import "time"

// ScheduledTask is a recurring background task run while watching an inbox.
type ScheduledTask struct {
	ID          string
	Name        string
	Interval    time.Duration
	LastRun     time.Time
	NextRun     time.Time
	LastError   string
	LastSuccess time.Time
	Enabled     bool
}

// Due reports whether the task should run at now.
func (t ScheduledTask) Due(now time.Time) bool {
	return t.Enabled && !t.NextRun.After(now)
}

// TaskRun is the outcome of one scheduled task execution.
type TaskRun struct {
	TaskID    string
	StartedAt time.Time
	EndedAt   time.Time
	Success   bool
	Error     string

	// ItemsProcessed counts list entries loaded or patterns found.
	ItemsProcessed int
}

// SchedulerConfig holds scheduler configuration.
type SchedulerConfig struct {
	// Enabled is the master switch for the scheduler.
	Enabled bool

	// TaskConfigs holds per-task configuration.
	TaskConfigs map[string]TaskConfig
}

// TaskConfig holds configuration for a single task.
type TaskConfig struct {
	Enabled  bool
	Interval time.Duration
}

// GetTaskConfig returns the configuration for a task, zero if unconfigured.
func (c *SchedulerConfig) GetTaskConfig(taskID string) TaskConfig {
	if c.TaskConfigs == nil {
		return TaskConfig{}
	}
	return c.TaskConfigs[taskID]
}

// Task IDs for built-in tasks.
const (
	// TaskIDScreeningRefresh reloads the consolidated screening list.
	TaskIDScreeningRefresh = "screening-refresh"

	// TaskIDBatchPatterns recomputes cross-case patterns over the batch window.
	TaskIDBatchPatterns = "batch-patterns"
)

// DefaultSchedulerConfig refreshes the list daily, in step with its cache
// lifetime, and scans for batch patterns hourly.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		Enabled: true,
		TaskConfigs: map[string]TaskConfig{
			TaskIDScreeningRefresh: {Enabled: true, Interval: 24 * time.Hour},
			TaskIDBatchPatterns:    {Enabled: true, Interval: time.Hour},
		},
	}
}
