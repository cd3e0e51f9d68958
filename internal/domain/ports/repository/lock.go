package repository

import (
	"context"
	"time"
)

// Locker is a short-lived named mutex shared between processes.
type Locker interface {
	// TryLock returns a token to pass to Unlock, or domain.ErrLocked.
	TryLock(ctx context.Context, name string, ttl time.Duration) (string, error)
	Unlock(ctx context.Context, name, token string) error
}
