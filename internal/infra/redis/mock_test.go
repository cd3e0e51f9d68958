//go:build !integration

package redis

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// memClient is an in-memory RedisClient; expirations are recorded, not enforced.
type memClient struct {
	mu   sync.Mutex
	data map[string]string
	ttl  map[string]time.Duration
	err  error

	// interleave runs once inside Update, between the read and the write,
	// and may change data as a concurrent writer would.
	interleave func(data map[string]string)
}

func newMemClient() *memClient {
	return &memClient{data: map[string]string{}, ttl: map[string]time.Duration{}}
}

func toString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	default:
		return fmt.Sprint(t)
	}
}

func (m *memClient) Set(ctx context.Context, key string, value interface{}, exp time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.data[key] = toString(value)
	m.ttl[key] = exp
	return nil
}

func (m *memClient) SetNX(ctx context.Context, key string, value interface{}, exp time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	if _, ok := m.data[key]; ok {
		return false, nil
	}
	m.data[key] = toString(value)
	m.ttl[key] = exp
	return true, nil
}

func (m *memClient) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	v, ok := m.data[key]
	if !ok {
		return "", redis.Nil
	}
	return v, nil
}

func (m *memClient) Update(ctx context.Context, key string, fn func(current string, found bool) (string, error)) error {
	for {
		m.mu.Lock()
		if m.err != nil {
			m.mu.Unlock()
			return m.err
		}
		current, found := m.data[key]
		m.mu.Unlock()

		next, err := fn(current, found)
		if err != nil {
			return err
		}

		m.mu.Lock()
		if hook := m.interleave; hook != nil {
			m.interleave = nil
			hook(m.data)
		}
		now, stillFound := m.data[key]
		if now != current || stillFound != found {
			m.mu.Unlock()
			continue
		}
		m.data[key] = next
		m.mu.Unlock()
		return nil
	}
}

func (m *memClient) DelIfEquals(ctx context.Context, key, value string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data[key] != value {
		return false, nil
	}
	delete(m.data, key)
	return true, nil
}

func (m *memClient) Close() error { return nil }
