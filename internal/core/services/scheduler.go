package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/kyc-onboard/internal/core/domain"
	"github.com/custodia-labs/kyc-onboard/internal/core/ports/driven"
	"github.com/custodia-labs/kyc-onboard/internal/core/ports/driving"
	"github.com/custodia-labs/kyc-onboard/internal/logger"
)

// Ensure Scheduler implements the interface.
var _ driving.Scheduler = (*Scheduler)(nil)

const (
	schedulerTick = time.Minute
	historyKeep   = 100
)

// PatternScanner computes cross-case patterns over the batch window.
type PatternScanner interface {
	Patterns(ctx context.Context) (domain.BatchAnalytics, error)
}

// Scheduler runs watch-mode upkeep: it refreshes the screening list and
// rescans the case log for batch patterns on their configured intervals.
type Scheduler struct {
	config    domain.SchedulerConfig
	store     driven.SchedulerStore
	refresher driven.ScreeningRefresher
	scanner   PatternScanner

	now  func() time.Time
	tick time.Duration

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewScheduler creates a scheduler. A nil refresher or scanner makes the
// matching task a no-op.
func NewScheduler(
	config domain.SchedulerConfig,
	store driven.SchedulerStore,
	refresher driven.ScreeningRefresher,
	scanner PatternScanner,
) *Scheduler {
	return &Scheduler{
		config:    config,
		store:     store,
		refresher: refresher,
		scanner:   scanner,
		now:       time.Now,
		tick:      schedulerTick,
	}
}

// Start runs due tasks immediately and then on every tick. It blocks until
// ctx is cancelled or Stop is called.
func (s *Scheduler) Start(ctx context.Context) error {
	if !s.config.Enabled {
		logger.Debug("scheduler disabled")
		return nil
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.stopCh = make(chan struct{})
	stopCh := s.stopCh
	s.mu.Unlock()

	if err := s.initialiseTasks(ctx); err != nil {
		logger.Warn("scheduler: initialise tasks: %v", err)
	}
	return s.run(ctx, stopCh)
}

// Stop ends the loop and waits for running tasks to finish.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()
	return nil
}

// RunNow executes a task synchronously regardless of its schedule and
// records the run.
func (s *Scheduler) RunNow(ctx context.Context, taskID string) (domain.TaskRun, error) {
	task, err := s.store.GetTask(ctx, taskID)
	if err != nil {
		return domain.TaskRun{}, fmt.Errorf("get task %s: %w", taskID, err)
	}
	if task == nil {
		cfg := s.config.GetTaskConfig(taskID)
		task = &domain.ScheduledTask{ID: taskID, Name: taskName(taskID), Interval: cfg.Interval, Enabled: cfg.Enabled}
	}
	run := s.execute(ctx, task)
	if !run.Success {
		return run, errors.New(run.Error)
	}
	return run, nil
}

// History returns recent runs for a task, most recent first.
func (s *Scheduler) History(ctx context.Context, taskID string, limit int) ([]domain.TaskRun, error) {
	return s.store.History(ctx, taskID, limit)
}

func taskName(id string) string {
	switch id {
	case domain.TaskIDScreeningRefresh:
		return "Screening list refresh"
	case domain.TaskIDBatchPatterns:
		return "Batch pattern scan"
	default:
		return id
	}
}

// initialiseTasks ensures every enabled task exists in the store.
func (s *Scheduler) initialiseTasks(ctx context.Context) error {
	var errs []error
	for _, id := range []string{domain.TaskIDScreeningRefresh, domain.TaskIDBatchPatterns} {
		cfg := s.config.GetTaskConfig(id)
		if !cfg.Enabled {
			continue
		}
		if err := s.ensureTask(ctx, id, cfg); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", id, err))
		}
	}
	return errors.Join(errs...)
}

// ensureTask creates a task or updates its interval and enabled flag.
// A new task is due immediately.
func (s *Scheduler) ensureTask(ctx context.Context, id string, cfg domain.TaskConfig) error {
	task, err := s.store.GetTask(ctx, id)
	if err != nil {
		return err
	}

	if task == nil {
		task = &domain.ScheduledTask{
			ID:       id,
			Name:     taskName(id),
			Interval: cfg.Interval,
			Enabled:  cfg.Enabled,
			NextRun:  s.now(),
		}
	} else {
		if task.Interval != cfg.Interval {
			task.Interval = cfg.Interval
			task.NextRun = s.now().Add(cfg.Interval)
		}
		task.Enabled = cfg.Enabled
	}
	return s.store.SaveTask(ctx, task)
}

func (s *Scheduler) run(ctx context.Context, stopCh chan struct{}) error {
	s.runDueTasks(ctx)

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.wg.Wait()
			s.mu.Lock()
			s.running = false
			s.mu.Unlock()
			return ctx.Err()
		case <-stopCh:
			return nil
		case <-ticker.C:
			s.runDueTasks(ctx)
		}
	}
}

// runDueTasks starts every due task in the background.
func (s *Scheduler) runDueTasks(ctx context.Context) {
	tasks, err := s.store.ListTasks(ctx)
	if err != nil {
		logger.Warn("scheduler: list tasks: %v", err)
		return
	}

	now := s.now()
	for i := range tasks {
		task := tasks[i]
		if !task.Due(now) {
			continue
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.execute(ctx, &task)
		}()
	}
}

// execute runs one task, then persists its state and the run record.
func (s *Scheduler) execute(ctx context.Context, task *domain.ScheduledTask) domain.TaskRun {
	run := domain.TaskRun{TaskID: task.ID, StartedAt: s.now()}

	var err error
	switch task.ID {
	case domain.TaskIDScreeningRefresh:
		run.ItemsProcessed, err = s.refreshScreening(ctx)
	case domain.TaskIDBatchPatterns:
		run.ItemsProcessed, err = s.scanPatterns(ctx)
	default:
		err = fmt.Errorf("%w: scheduled task %q", domain.ErrUnsupportedType, task.ID)
	}

	run.EndedAt = s.now()
	if err != nil {
		run.Error = err.Error()
		task.LastError = err.Error()
		logger.Warn("scheduler: %s failed: %v", task.ID, err)
	} else {
		run.Success = true
		task.LastError = ""
		task.LastSuccess = run.EndedAt
		logger.Debug("scheduler: %s done (%d items)", task.ID, run.ItemsProcessed)
	}

	task.LastRun = run.StartedAt
	task.NextRun = run.EndedAt.Add(task.Interval)

	if saveErr := s.store.SaveTask(ctx, task); saveErr != nil {
		logger.Warn("scheduler: save task %s: %v", task.ID, saveErr)
	}
	if recordErr := s.store.RecordRun(ctx, &run); recordErr != nil {
		logger.Warn("scheduler: record run for %s: %v", task.ID, recordErr)
	}
	if pruneErr := s.store.PruneHistory(ctx, historyKeep); pruneErr != nil {
		logger.Warn("scheduler: prune history: %v", pruneErr)
	}
	return run
}

func (s *Scheduler) refreshScreening(ctx context.Context) (int, error) {
	if s.refresher == nil {
		return 0, nil
	}
	n, err := s.refresher.Refresh(ctx)
	if err != nil {
		return 0, fmt.Errorf("refresh screening list: %w", err)
	}
	logger.Info("Screening list refreshed: %d entries", n)
	return n, nil
}

func (s *Scheduler) scanPatterns(ctx context.Context) (int, error) {
	if s.scanner == nil {
		return 0, nil
	}
	analytics, err := s.scanner.Patterns(ctx)
	if err != nil {
		return 0, fmt.Errorf("scan batch patterns: %w", err)
	}
	for _, p := range analytics.Patterns {
		logger.Info("Batch pattern [%s] %s", p.PatternType, p.Description)
	}
	return len(analytics.Patterns), nil
}
