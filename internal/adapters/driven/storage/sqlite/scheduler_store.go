package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/custodia-labs/medibot/internal/core/domain"
	"github.com/custodia-labs/medibot/internal/core/ports/driven"
)

var _ driven.SchedulerStore = (*schedulerStore)(nil)

type schedulerStore struct {
	store *Store
}

// execer is the part of *sql.DB and *sql.Tx used for writes.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *schedulerStore) GetTask(ctx context.Context, id string) (*domain.ScheduledTask, error) {
	var (
		task                                  domain.ScheduledTask
		lastRun, lastSuccess, nextRun, errMsg sql.NullString
	)
	err := s.store.db.QueryRowContext(ctx, `
		SELECT id, name, schedule, enabled, last_run, last_success, next_run, last_error
		FROM scheduled_tasks WHERE id = ?`, id).
		Scan(&task.ID, &task.Name, &task.Schedule, &task.Enabled, &lastRun, &lastSuccess, &nextRun, &errMsg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading task %s: %w", id, err)
	}

	task.LastRun = parseNullableTime(lastRun)
	task.LastSuccess = parseNullableTime(lastSuccess)
	task.NextRun = parseNullableTime(nextRun)
	task.LastError = errMsg.String
	return &task, nil
}

func (s *schedulerStore) SaveTask(ctx context.Context, task *domain.ScheduledTask) error {
	return saveTask(ctx, s.store.db, task)
}

func (s *schedulerStore) RecordRun(ctx context.Context, task *domain.ScheduledTask, result domain.TaskResult, keep int) error {
	if result.TaskID == "" && task != nil {
		result.TaskID = task.ID
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if err := saveTask(ctx, tx, task); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO task_results (task_id, started_at, ended_at, success, error, items_processed)
		VALUES (?, ?, ?, ?, ?, ?)`,
		result.TaskID, formatTime(result.StartedAt), formatTime(result.EndedAt),
		result.Success, nullString(result.Error), result.ItemsProcessed); err != nil {
		return fmt.Errorf("recording run of %s: %w", result.TaskID, err)
	}
	if keep > 0 {
		if _, err := tx.ExecContext(ctx, `
			DELETE FROM task_results
			WHERE task_id = ? AND id NOT IN (
				SELECT id FROM task_results WHERE task_id = ?
				ORDER BY started_at DESC, id DESC LIMIT ?
			)`, result.TaskID, result.TaskID, keep); err != nil {
			return fmt.Errorf("trimming history of %s: %w", result.TaskID, err)
		}
	}
	return tx.Commit()
}

func (s *schedulerStore) History(ctx context.Context, id string, limit int) ([]domain.TaskResult, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT started_at, ended_at, success, error, items_processed
		FROM task_results WHERE task_id = ?
		ORDER BY started_at DESC, id DESC LIMIT ?`, id, limit)
	if err != nil {
		return nil, fmt.Errorf("loading history of %s: %w", id, err)
	}
	defer rows.Close()

	var out []domain.TaskResult
	for rows.Next() {
		var (
			r              = domain.TaskResult{TaskID: id}
			started, ended string
			errMsg         sql.NullString
		)
		if err := rows.Scan(&started, &ended, &r.Success, &errMsg, &r.ItemsProcessed); err != nil {
			return nil, err
		}
		r.StartedAt, r.EndedAt, r.Error = parseTime(started), parseTime(ended), errMsg.String
		out = append(out, r)
	}
	return out, rows.Err()
}

func saveTask(ctx context.Context, db execer, task *domain.ScheduledTask) error {
	if task == nil || task.ID == "" {
		return fmt.Errorf("%w: task without id", domain.ErrInvalidInput)
	}
	_, err := db.ExecContext(ctx, `
		INSERT OR REPLACE INTO scheduled_tasks
			(id, name, schedule, enabled, last_run, last_success, next_run, last_error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		task.ID, task.Name, task.Schedule, task.Enabled,
		formatNullableTime(task.LastRun), formatNullableTime(task.LastSuccess),
		formatNullableTime(task.NextRun), nullString(task.LastError))
	if err != nil {
		return fmt.Errorf("saving task %s: %w", task.ID, err)
	}
	return nil
}
