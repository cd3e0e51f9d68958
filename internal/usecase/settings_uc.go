package usecase

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"telegram-forum-notifier/internal/domain"
	"telegram-forum-notifier/internal/domain/model"
	"telegram-forum-notifier/internal/domain/ports/adapter"
	"telegram-forum-notifier/internal/domain/ports/repository"
	"telegram-forum-notifier/internal/infra/logging"
)

// Compile-time check
var _ SettingsUseCase = (*settingsUC)(nil)

const (
	webhookLock = "setup_telegram_webhook"
	// lockWait bounds how long a setup job queues behind a running one.
	lockWait  = 2 * time.Minute
	lockRetry = 250 * time.Millisecond
)

// SettingsUseCase owns the runtime Telegram settings.
type SettingsUseCase interface {
	// Current returns the stored settings, or the configured defaults before the first save.
	Current(ctx context.Context) (*model.Settings, error)
	// Seed stores the defaults unless settings already exist.
	Seed(ctx context.Context) error
	// Update applies p and schedules a webhook setup when enabled or the token changed.
	Update(ctx context.Context, p model.SettingsPatch) (*model.Settings, string, error)
	// SetupWebhook regenerates the secret and registers the webhook with Telegram.
	SetupWebhook(ctx context.Context) error
}

type settingsUC struct {
	repo     repository.SettingsRepository
	locker   repository.Locker
	jobs     adapter.JobQueue
	defaults model.Settings
	log      *zerolog.Logger

	// bot is set after construction: the bot client reads settings through this use case.
	bot adapter.TelegramBot
}

func NewSettingsUseCase(repo repository.SettingsRepository, locker repository.Locker, jobs adapter.JobQueue, defaults model.Settings, logger *zerolog.Logger) *settingsUC {
	l := logger.With().Str("component", "SettingsUC").Logger()
	return &settingsUC{repo: repo, locker: locker, jobs: jobs, defaults: defaults, log: &l}
}

// SetBot wires the Telegram client used by SetupWebhook.
func (s *settingsUC) SetBot(bot adapter.TelegramBot) { s.bot = bot }

func (s *settingsUC) Current(ctx context.Context) (*model.Settings, error) {
	st, err := s.repo.Get(ctx)
	if errors.Is(err, domain.ErrNotFound) {
		d := s.defaults
		return &d, nil
	}
	return st, err
}

func (s *settingsUC) Seed(ctx context.Context) error {
	d := s.defaults
	created, err := s.repo.SaveIfAbsent(ctx, &d)
	if err != nil {
		return fmt.Errorf("seed telegram settings: %w", err)
	}
	if created {
		s.log.Info().Bool("enabled", d.Enabled).Msg("telegram settings seeded from config")
	}
	return nil
}

func (s *settingsUC) Update(ctx context.Context, p model.SettingsPatch) (*model.Settings, string, error) {
	defer logging.TraceDuration(s.log, "SettingsUC.Update")()

	var webhookChanged bool
	st, err := s.repo.Modify(ctx, func(st *model.Settings, found bool) error {
		if !found {
			*st = s.defaults
		}
		webhookChanged = p.Apply(st)
		return nil
	})
	if err != nil {
		return nil, "", fmt.Errorf("save telegram settings: %w", err)
	}

	var jobID string
	if webhookChanged && st.Enabled {
		jobID, err = s.jobs.Enqueue("setup_telegram_webhook", s.SetupWebhook)
		if err != nil {
			s.log.Error().Err(err).Msg("could not schedule webhook setup")
			return st, "", err
		}
		s.log.Info().Str("job_id", jobID).Msg("webhook setup scheduled")
	}
	return st, jobID, nil
}

func (s *settingsUC) SetupWebhook(ctx context.Context) error {
	defer logging.TraceDuration(s.log, "SettingsUC.SetupWebhook")()
	if s.bot == nil {
		return errors.New("telegram bot is not configured")
	}

	// Setups run one at a time so the last registered secret is the stored one.
	token, err := s.waitLock(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = s.locker.Unlock(context.WithoutCancel(ctx), webhookLock, token) }()

	secret, err := newSecret()
	if err != nil {
		return err
	}
	// Only the secret is written; other fields keep whatever is stored now.
	_, err = s.repo.Modify(ctx, func(st *model.Settings, found bool) error {
		if !found {
			*st = s.defaults
		}
		if !st.Enabled {
			return domain.ErrTelegramDisabled
		}
		st.Secret = secret
		return nil
	})
	if errors.Is(err, domain.ErrTelegramDisabled) {
		return err
	}
	if err != nil {
		return fmt.Errorf("save webhook secret: %w", err)
	}
	if err := s.bot.SetupWebhook(ctx, secret); err != nil {
		return err
	}
	s.log.Info().Msg("telegram webhook registered")
	return nil
}

// waitLock retries the webhook lock until it is free or lockWait elapses.
func (s *settingsUC) waitLock(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, lockWait)
	defer cancel()
	for {
		token, err := s.locker.TryLock(ctx, webhookLock, time.Minute)
		if err == nil {
			return token, nil
		}
		if !errors.Is(err, domain.ErrLocked) && ctx.Err() == nil {
			return "", fmt.Errorf("webhook lock: %w", err)
		}
		select {
		case <-ctx.Done():
			return "", fmt.Errorf("webhook setup still running elsewhere: %w", domain.ErrLocked)
		case <-time.After(lockRetry):
		}
	}
}

// newSecret returns 32 random bytes, hex encoded.
func newSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate webhook secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}
