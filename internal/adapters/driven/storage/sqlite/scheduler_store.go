package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/custodia-labs/kyc-onboard/internal/core/domain"
	"github.com/custodia-labs/kyc-onboard/internal/core/ports/driven"
)

// SchedulerStore keeps background task state in scheduled_tasks and one row
// per execution in task_runs.
type SchedulerStore struct {
	db *sql.DB
}

var _ driven.SchedulerStore = (*SchedulerStore)(nil)

const (
	selectTasks = `SELECT id, name, interval_seconds, last_run, next_run, last_error, last_success, enabled
		FROM scheduled_tasks`

	upsertTask = `INSERT INTO scheduled_tasks
			(id, name, interval_seconds, last_run, next_run, last_error, last_success, enabled)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			interval_seconds = excluded.interval_seconds,
			last_run = excluded.last_run,
			next_run = excluded.next_run,
			last_error = excluded.last_error,
			last_success = excluded.last_success,
			enabled = excluded.enabled`

	insertRun = `INSERT INTO task_runs (task_id, started_at, ended_at, success, error, items_processed)
		VALUES (?, ?, ?, ?, ?, ?)`

	selectRuns = `SELECT task_id, started_at, ended_at, success, error, items_processed
		FROM task_runs WHERE task_id = ?
		ORDER BY started_at DESC, id DESC LIMIT ?`

	// pruneRuns ranks each task's runs newest first and drops the tail.
	pruneRuns = `DELETE FROM task_runs WHERE id IN (
		SELECT id FROM (
			SELECT id, ROW_NUMBER() OVER (PARTITION BY task_id ORDER BY started_at DESC, id DESC) AS rank
			FROM task_runs
		) WHERE rank > ?)`
)

// GetTask returns nil without error for an unknown id.
func (s *SchedulerStore) GetTask(ctx context.Context, taskID string) (*domain.ScheduledTask, error) {
	tasks, err := collect(ctx, s.db, scanTask, selectTasks+" WHERE id = ?", taskID)
	if err != nil {
		return nil, fmt.Errorf("reading task %s: %w", taskID, err)
	}
	if len(tasks) == 0 {
		return nil, nil
	}
	return &tasks[0], nil
}

// ListTasks returns every task ordered by id.
func (s *SchedulerStore) ListTasks(ctx context.Context) ([]domain.ScheduledTask, error) {
	tasks, err := collect(ctx, s.db, scanTask, selectTasks+" ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	return tasks, nil
}

// SaveTask inserts the task or replaces the stored state for its id.
func (s *SchedulerStore) SaveTask(ctx context.Context, task *domain.ScheduledTask) error {
	if task == nil {
		return domain.ErrInvalidInput
	}
	_, err := s.db.ExecContext(ctx, upsertTask,
		task.ID, task.Name, int64(task.Interval/time.Second),
		optionalTime(task.LastRun), optionalTime(task.NextRun),
		optionalText(task.LastError), optionalTime(task.LastSuccess), task.Enabled)
	if err != nil {
		return fmt.Errorf("saving task %s: %w", task.ID, err)
	}
	return nil
}

// RecordRun appends one execution.
func (s *SchedulerStore) RecordRun(ctx context.Context, run *domain.TaskRun) error {
	if run == nil {
		return domain.ErrInvalidInput
	}
	_, err := s.db.ExecContext(ctx, insertRun,
		run.TaskID, formatTime(run.StartedAt), formatTime(run.EndedAt),
		run.Success, optionalText(run.Error), run.ItemsProcessed)
	if err != nil {
		return fmt.Errorf("recording %s run: %w", run.TaskID, err)
	}
	return nil
}

// History returns up to limit runs of a task, newest first.
func (s *SchedulerStore) History(ctx context.Context, taskID string, limit int) ([]domain.TaskRun, error) {
	runs, err := collect(ctx, s.db, scanRun, selectRuns, taskID, limit)
	if err != nil {
		return nil, fmt.Errorf("reading %s history: %w", taskID, err)
	}
	return runs, nil
}

// PruneHistory keeps the newest keep runs of each task.
func (s *SchedulerStore) PruneHistory(ctx context.Context, keep int) error {
	if _, err := s.db.ExecContext(ctx, pruneRuns, keep); err != nil {
		return fmt.Errorf("pruning task runs: %w", err)
	}
	return nil
}

func scanTask(row rowScanner) (domain.ScheduledTask, error) {
	var (
		task                          domain.ScheduledTask
		seconds                       int64
		lastRun, nextRun, lastSuccess sql.Null[string]
		lastError                     sql.Null[string]
	)
	err := row.Scan(&task.ID, &task.Name, &seconds, &lastRun, &nextRun, &lastError, &lastSuccess, &task.Enabled)
	if err != nil {
		return task, err
	}
	task.Interval = time.Duration(seconds) * time.Second
	task.LastRun = parseTime(lastRun.V)
	task.NextRun = parseTime(nextRun.V)
	task.LastSuccess = parseTime(lastSuccess.V)
	task.LastError = lastError.V
	return task, nil
}

func scanRun(row rowScanner) (domain.TaskRun, error) {
	var (
		run            domain.TaskRun
		started, ended string
		errText        sql.Null[string]
	)
	if err := row.Scan(&run.TaskID, &started, &ended, &run.Success, &errText, &run.ItemsProcessed); err != nil {
		return run, err
	}
	run.StartedAt = parseTime(started)
	run.EndedAt = parseTime(ended)
	run.Error = errText.V
	return run, nil
}

// optionalTime stores the zero time as NULL.
func optionalTime(t time.Time) sql.Null[string] {
	if t.IsZero() {
		return sql.Null[string]{}
	}
	return sql.Null[string]{V: formatTime(t), Valid: true}
}

// optionalText stores "" as NULL.
func optionalText(s string) sql.Null[string] {
	return sql.Null[string]{V: s, Valid: s != ""}
}
