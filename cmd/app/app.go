package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/rs/zerolog"

	"telegram-forum-notifier/internal/config"
	"telegram-forum-notifier/internal/domain/model"
	"telegram-forum-notifier/internal/domain/ports/adapter"
	"telegram-forum-notifier/internal/domain/ports/repository"
	pg "telegram-forum-notifier/internal/infra/db/postgres"
	"telegram-forum-notifier/internal/infra/i18n"
	"telegram-forum-notifier/internal/infra/logging"
	red "telegram-forum-notifier/internal/infra/redis"
	"telegram-forum-notifier/internal/infra/security"
	"telegram-forum-notifier/internal/infra/telegram"
	"telegram-forum-notifier/internal/infra/worker"
	"telegram-forum-notifier/internal/usecase"
)

// app holds the wired object graph shared by the subcommands.
type app struct {
	cfg   *config.Config
	log   *zerolog.Logger
	pool  *pgxpool.Pool
	redis red.RedisClient
	jobs  *worker.Pool

	users      repository.UserRepository
	topics     repository.TopicRepository
	posts      repository.PostRepository
	settingsUC usecase.SettingsUseCase
	chatLinks  usecase.ChatLinkUseCase
	notifier   usecase.NotifierUseCase
	dispatcher usecase.DispatcherUseCase
}

func buildApp(ctx context.Context, flags *rootFlags) (*app, error) {
	cfg, err := config.LoadConfig(flags.configPath, flags.dev)
	if err != nil {
		return nil, err
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)

	pool, err := pg.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("postgres: %w", err)
	}
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("redis: %w", err)
	}

	// ---- Repositories ----
	userRepo := pg.NewUserRepo(pool)
	bindingRepo := pg.NewChatBindingRepo(pool)
	topicRepo := pg.NewTopicRepo(pool)
	postRepo := pg.NewPostRepo(pool)
	actionRepo := pg.NewPostActionRepo(pool)
	txManager := pg.NewTxManager(pool)
	settingsRepo := red.NewSettingsRepo(redisClient)
	if key := cfg.Security.EncryptionKey; key != "" {
		sealer, err := security.NewEncryptionService(key)
		if err != nil {
			pool.Close()
			_ = redisClient.Close()
			return nil, fmt.Errorf("security.encryption_key: %w", err)
		}
		settingsRepo.WithCodec(sealer)
	}
	linkStore := red.NewMessageLinkStore(redisClient, cfg.Telegram.LinkRetention)
	locker := red.NewLocker(redisClient)

	jobs := worker.NewPool(cfg.Workers.Count, cfg.Workers.Queue, logger)

	// ---- Use cases ----
	settingsUC := usecase.NewSettingsUseCase(settingsRepo, locker, jobs, defaultSettings(cfg.Telegram.Defaults), logger)
	bot := newBot(cfg, settingsUC, logger)
	settingsUC.SetBot(bot)

	tr, err := i18n.NewTranslator(i18n.LocalesFS, cfg.Site.Locale)
	if err != nil {
		pool.Close()
		_ = redisClient.Close()
		return nil, err
	}
	formatter := usecase.NewMessageFormatter(tr, cfg.Site.Title, cfg.Server.BaseURL)
	keyboard := usecase.NewKeyboardBuilder(actionRepo, formatter, cfg.Server.BaseURL)
	chatLinks := usecase.NewChatLinkUseCase(userRepo, bindingRepo, linkStore, logger)
	forum := usecase.NewForumUseCase(userRepo, topicRepo, postRepo, actionRepo, txManager, cfg.Forum, logger)

	return &app{
		cfg:        cfg,
		log:        logger,
		pool:       pool,
		redis:      redisClient,
		jobs:       jobs,
		users:      userRepo,
		topics:     topicRepo,
		posts:      postRepo,
		settingsUC: settingsUC,
		chatLinks:  chatLinks,
		notifier:   usecase.NewNotifierUseCase(settingsUC, chatLinks, forum, keyboard, formatter, bot, jobs, logger),
		dispatcher: usecase.NewDispatcherUseCase(settingsUC, chatLinks, forum, keyboard, formatter, bot, cfg.Server.BaseURL, logger),
	}, nil
}

func (a *app) Close() {
	a.jobs.Stop()
	_ = a.redis.Close()
	a.pool.Close()
}

// newBot returns the Telegram client. In dev mode calls are logged instead
// of sent until an access token is stored.
func newBot(cfg *config.Config, settings usecase.SettingsUseCase, logger *zerolog.Logger) adapter.TelegramBot {
	live := telegram.NewBotClient(cfg, settings, nil, logger)
	if !cfg.Runtime.Dev {
		return live
	}
	logger.Warn().Msg("[DEV MODE] telegram calls are logged while no access token is set")
	return telegram.NewDevBot(settings, live, telegram.NewNoopBot(logger))
}

func defaultSettings(d config.TelegramDefaults) model.Settings {
	return model.Settings{
		Enabled:        d.Enabled,
		AccessToken:    d.AccessToken,
		EnableAllTypes: d.EnableAllTypes,
		EnabledTypes:   strings.Join(d.EnabledTypes, "|"),
	}
}
