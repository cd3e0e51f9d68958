package repository

import (
	"context"

	"telegram-forum-notifier/internal/domain/model"
)

// SettingsRepository stores the runtime Telegram settings.
type SettingsRepository interface {
	Get(ctx context.Context) (*model.Settings, error)
	Save(ctx context.Context, s *model.Settings) error
	// SaveIfAbsent stores s only when nothing was stored before.
	SaveIfAbsent(ctx context.Context, s *model.Settings) (bool, error)
	// Modify applies fn to the stored settings and saves the result atomically.
	// found is false before the first save; fn then starts from zero values.
	// fn may run more than once when a concurrent write wins.
	Modify(ctx context.Context, fn func(s *model.Settings, found bool) error) (*model.Settings, error)
}
