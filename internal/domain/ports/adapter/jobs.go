package adapter

import "context"

// JobQueue schedules fire-and-forget background work.
type JobQueue interface {
	// Enqueue returns the job id, or an error when the job was not accepted.
	Enqueue(name string, fn func(ctx context.Context) error) (string, error)
}
