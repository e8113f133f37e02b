package domain

import "time"

// TaskIDRefresh is the scheduled full re-ingestion task.
const TaskIDRefresh = "ingest_refresh"

// ScheduledTask is a recurring background job with the outcome of its
// latest run. Zero times mean "never".
type ScheduledTask struct {
	ID   string
	Name string

	// Schedule is a cron expression.
	Schedule string
	Enabled  bool

	LastRun     time.Time
	LastSuccess time.Time
	NextRun     time.Time
	LastError   string
}

// IsDue reports whether the task should run at now. An enabled task that
// was never scheduled is due immediately.
func (t *ScheduledTask) IsDue(now time.Time) bool {
	return t.Enabled && !t.NextRun.After(now)
}

// Finish folds a completed run into the task and schedules the next one.
// A zero next disables the task.
func (t *ScheduledTask) Finish(r TaskResult, next time.Time) {
	t.LastRun = r.StartedAt
	if r.Success {
		t.LastSuccess = r.EndedAt
		t.LastError = ""
	} else {
		t.LastError = r.Error
	}
	t.NextRun = next
	if next.IsZero() {
		t.Enabled = false
	}
}

// TaskResult is one run of a scheduled task.
type TaskResult struct {
	TaskID    string
	StartedAt time.Time
	EndedAt   time.Time
	Success   bool
	Error     string

	// ItemsProcessed counts ingested documents.
	ItemsProcessed int
}

// Duration returns how long the run took.
func (r TaskResult) Duration() time.Duration {
	return r.EndedAt.Sub(r.StartedAt)
}

// RefreshStatus describes the scheduled refresh for status output.
type RefreshStatus struct {
	Task   *ScheduledTask
	Recent []TaskResult
}
