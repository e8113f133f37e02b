package driving

import "context"

// Scheduler re-ingests every source on the configured cron schedule.
// Start blocks until ctx ends or Stop is called; runs never overlap.
type Scheduler interface {
	Start(ctx context.Context) error
	Stop() error
}
