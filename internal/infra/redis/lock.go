// File: internal/infra/redis/lock.go
package redis

import (
	"context"
	"time"

	"github.com/google/uuid"

	"telegram-forum-notifier/internal/domain"
	"telegram-forum-notifier/internal/domain/ports/repository"
)

var _ repository.Locker = (*RedisLocker)(nil)

type RedisLocker struct {
	client RedisClient
	tries  int
	wait   time.Duration
}

func NewLocker(c RedisClient) *RedisLocker {
	return &RedisLocker{client: c, tries: 5, wait: 50 * time.Millisecond}
}

func lockKey(name string) string { return Namespace + ":lock:" + name }

// TryLock returns domain.ErrLocked when the lock is still held after a few tries.
func (l *RedisLocker) TryLock(ctx context.Context, name string, ttl time.Duration) (string, error) {
	token := uuid.NewString()
	for i := 0; i < l.tries; i++ {
		ok, err := l.client.SetNX(ctx, lockKey(name), token, ttl)
		if err == nil && ok {
			return token, nil
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(l.wait):
		}
	}
	return "", domain.ErrLocked
}

func (l *RedisLocker) Unlock(ctx context.Context, name, token string) error {
	_, err := l.client.DelIfEquals(ctx, lockKey(name), token)
	return err
}
