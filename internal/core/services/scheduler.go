package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/adhocore/gronx"

	"github.com/custodia-labs/medibot/internal/core/domain"
	"github.com/custodia-labs/medibot/internal/core/ports/driven"
	"github.com/custodia-labs/medibot/internal/core/ports/driving"
	"github.com/custodia-labs/medibot/internal/logger"
)

// Ensure Scheduler implements the interface.
var _ driving.Scheduler = (*Scheduler)(nil)

// historyKeep is the number of results kept per task.
const historyKeep = 100

// Scheduler re-runs ingestion on a cron schedule.
// It is a pure core service with no external control API.
type Scheduler struct {
	schedule string
	store    driven.SchedulerStore
	ingest   driving.IngestService
	tick     time.Duration
	now      func() time.Time

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// ValidateSchedule reports whether expr is a usable cron expression.
func ValidateSchedule(expr string) error {
	gx := gronx.New()
	if expr == "" || !gx.IsValid(expr) {
		return fmt.Errorf("%w: %q", domain.ErrInvalidSchedule, expr)
	}
	return nil
}

// NextRun returns the first time after ref matching expr.
func NextRun(expr string, ref time.Time) (time.Time, error) {
	if err := ValidateSchedule(expr); err != nil {
		return time.Time{}, err
	}
	next, err := gronx.NextTickAfter(expr, ref, false)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", domain.ErrInvalidSchedule, err)
	}
	return next, nil
}

// NewScheduler creates a scheduler that refreshes the index on schedule.
func NewScheduler(schedule string, store driven.SchedulerStore, ingest driving.IngestService) (*Scheduler, error) {
	if err := ValidateSchedule(schedule); err != nil {
		return nil, err
	}
	return &Scheduler{
		schedule: schedule,
		store:    store,
		ingest:   ingest,
		tick:     time.Minute,
		now:      time.Now,
	}, nil
}

// Start begins the scheduler loop. This method blocks until Stop is called
// or ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.mu.Unlock()

	if err := s.ensureTask(ctx); err != nil {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
		return fmt.Errorf("scheduler: %w", err)
	}

	logger.Info("Scheduled refresh: %s", s.schedule)
	return s.run(ctx)
}

// Stop gracefully shuts down the scheduler and waits for a running refresh.
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

// ensureTask creates the refresh task, or reschedules it when the cron
// expression changed since it was stored.
func (s *Scheduler) ensureTask(ctx context.Context) error {
	task, err := s.store.GetTask(ctx, domain.TaskIDRefresh)
	if err != nil {
		return err
	}

	now := s.now()
	if task == nil {
		task = &domain.ScheduledTask{
			ID:       domain.TaskIDRefresh,
			Name:     "Knowledge base refresh",
			Schedule: s.schedule,
		}
	}
	if task.Schedule != s.schedule || task.NextRun.IsZero() {
		task.Schedule = s.schedule
		next, err := NextRun(s.schedule, now)
		if err != nil {
			return err
		}
		task.NextRun = next
	}
	task.Enabled = true

	return s.store.SaveTask(ctx, task)
}

func (s *Scheduler) run(ctx context.Context) error {
	s.checkAndRunDueTasks(ctx)

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.wg.Wait()
			return ctx.Err()
		case <-s.stopCh:
			return nil
		case <-ticker.C:
			s.checkAndRunDueTasks(ctx)
		}
	}
}

// checkAndRunDueTasks runs the refresh task if it is due.
func (s *Scheduler) checkAndRunDueTasks(ctx context.Context) {
	task, err := s.store.GetTask(ctx, domain.TaskIDRefresh)
	if err != nil {
		logger.Warn("scheduler: loading task: %v", err)
		return
	}
	if task == nil || !task.IsDue(s.now()) {
		return
	}
	s.runTask(ctx, task)
}

// runTask executes the refresh synchronously so runs never overlap.
func (s *Scheduler) runTask(ctx context.Context, task *domain.ScheduledTask) {
	s.wg.Add(1)
	defer s.wg.Done()

	result := domain.TaskResult{
		TaskID:    task.ID,
		StartedAt: s.now(),
	}

	report, err := s.ingest.Ingest(ctx, domain.IngestOptions{})
	if report != nil {
		result.ItemsProcessed = report.TotalDocuments()
	}
	if errors.Is(err, domain.ErrIngestInProgress) {
		logger.Info("scheduler: refresh skipped, ingestion already running")
	}

	result.EndedAt = s.now()
	if err != nil {
		result.Error = err.Error()
		logger.Warn("scheduler: refresh failed: %v", err)
	} else {
		result.Success = true
	}

	next, nextErr := NextRun(task.Schedule, result.EndedAt)
	if nextErr != nil {
		logger.Warn("scheduler: disabling %s: %v", task.ID, nextErr)
	}
	task.Finish(result, next)

	if err := s.store.RecordRun(ctx, task, result, historyKeep); err != nil {
		logger.Warn("scheduler: recording run of %s: %v", task.ID, err)
	}
}
