package driven

import (
	"context"

	"github.com/custodia-labs/medibot/internal/core/domain"
)

// SchedulerStore keeps scheduled tasks and their run history so the
// refresh schedule survives restarts.
type SchedulerStore interface {
	// GetTask returns nil and no error for an unknown ID.
	GetTask(ctx context.Context, id string) (*domain.ScheduledTask, error)

	// SaveTask creates or replaces a task.
	SaveTask(ctx context.Context, task *domain.ScheduledTask) error

	// RecordRun saves task, appends result to its history and trims the
	// history to the newest keep entries, atomically.
	RecordRun(ctx context.Context, task *domain.ScheduledTask, result domain.TaskResult, keep int) error

	// History returns a task's runs, newest first. limit <= 0 returns all.
	History(ctx context.Context, id string, limit int) ([]domain.TaskResult, error)
}
