package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"

	"telegram-forum-notifier/internal/domain"
	"telegram-forum-notifier/internal/domain/model"
	"telegram-forum-notifier/internal/domain/ports/repository"
)

var _ repository.SettingsRepository = (*SettingsRepo)(nil)

const settingsKey = Namespace + ":settings"

// SecretCodec seals the access token and webhook secret at rest.
type SecretCodec interface {
	Seal(plaintext string) (string, error)
	Open(value string) (string, error)
}

// SettingsRepo keeps the runtime Telegram settings as one JSON document.
// Nothing is cached: each Get reads Redis.
type SettingsRepo struct {
	client RedisClient
	codec  SecretCodec
}

func NewSettingsRepo(client RedisClient) *SettingsRepo {
	return &SettingsRepo{client: client}
}

// WithCodec enables sealing of secret fields.
func (r *SettingsRepo) WithCodec(c SecretCodec) *SettingsRepo {
	r.codec = c
	return r
}

// Get returns domain.ErrNotFound before the settings were first saved.
func (r *SettingsRepo) Get(ctx context.Context) (*model.Settings, error) {
	data, err := r.client.Get(ctx, settingsKey)
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return r.decode(data)
}

// Modify runs fn inside a WATCH/MULTI transaction on the settings key.
func (r *SettingsRepo) Modify(ctx context.Context, fn func(s *model.Settings, found bool) error) (*model.Settings, error) {
	var out *model.Settings
	err := r.client.Update(ctx, settingsKey, func(current string, found bool) (string, error) {
		s := &model.Settings{}
		if found {
			var err error
			if s, err = r.decode(current); err != nil {
				return "", err
			}
		}
		if err := fn(s, found); err != nil {
			return "", err
		}
		data, err := r.encode(s)
		if err != nil {
			return "", err
		}
		out = s
		return string(data), nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *SettingsRepo) decode(data string) (*model.Settings, error) {
	var s model.Settings
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		return nil, err
	}
	if r.codec != nil {
		var err error
		if s.AccessToken, err = r.codec.Open(s.AccessToken); err != nil {
			return nil, fmt.Errorf("open access token: %w", err)
		}
		if s.Secret, err = r.codec.Open(s.Secret); err != nil {
			return nil, fmt.Errorf("open webhook secret: %w", err)
		}
	}
	return &s, nil
}

func (r *SettingsRepo) Save(ctx context.Context, s *model.Settings) error {
	data, err := r.encode(s)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, settingsKey, data, 0)
}

func (r *SettingsRepo) SaveIfAbsent(ctx context.Context, s *model.Settings) (bool, error) {
	data, err := r.encode(s)
	if err != nil {
		return false, err
	}
	return r.client.SetNX(ctx, settingsKey, data, 0)
}

func (r *SettingsRepo) encode(s *model.Settings) ([]byte, error) {
	out := *s
	if r.codec != nil {
		var err error
		if out.AccessToken, err = r.codec.Seal(s.AccessToken); err != nil {
			return nil, fmt.Errorf("seal access token: %w", err)
		}
		if out.Secret, err = r.codec.Seal(s.Secret); err != nil {
			return nil, fmt.Errorf("seal webhook secret: %w", err)
		}
	}
	return json.Marshal(&out)
}
