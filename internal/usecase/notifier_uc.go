package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"

	"telegram-forum-notifier/internal/domain"
	"telegram-forum-notifier/internal/domain/model"
	"telegram-forum-notifier/internal/domain/ports/adapter"
	"telegram-forum-notifier/internal/infra/logging"
	"telegram-forum-notifier/internal/infra/metrics"
)

// Compile-time check
var _ NotifierUseCase = (*notifierUC)(nil)

// NotifierUseCase relays forum notifications to bound Telegram chats.
// Delivery is best-effort: one attempt, no retry, no de-duplication.
type NotifierUseCase interface {
	// Schedule validates ev and queues Notify on the job queue.
	Schedule(ctx context.Context, ev *model.NotificationEvent) (jobID string, err error)
	Notify(ctx context.Context, ev *model.NotificationEvent) error
}

type notifierUC struct {
	settings SettingsUseCase
	links    ChatLinkUseCase
	forum    ForumUseCase
	keyboard *KeyboardBuilder
	fmt      *MessageFormatter
	bot      adapter.TelegramBot
	jobs     adapter.JobQueue
	log      *zerolog.Logger
}

func NewNotifierUseCase(
	settings SettingsUseCase,
	links ChatLinkUseCase,
	forum ForumUseCase,
	keyboard *KeyboardBuilder,
	f *MessageFormatter,
	bot adapter.TelegramBot,
	jobs adapter.JobQueue,
	logger *zerolog.Logger,
) *notifierUC {
	l := logger.With().Str("component", "NotifierUC").Logger()
	return &notifierUC{
		settings: settings,
		links:    links,
		forum:    forum,
		keyboard: keyboard,
		fmt:      f,
		bot:      bot,
		jobs:     jobs,
		log:      &l,
	}
}

func (n *notifierUC) Schedule(ctx context.Context, ev *model.NotificationEvent) (string, error) {
	if err := ev.Validate(); err != nil {
		return "", err
	}
	// re-checked in Notify
	st, err := n.settings.Current(ctx)
	if err != nil {
		return "", err
	}
	if !st.Enabled {
		metrics.IncNotification(ev.NotificationType.Name(), "disabled")
		return "", domain.ErrTelegramDisabled
	}
	evCopy := *ev
	return n.jobs.Enqueue("send_telegram_notification", func(ctx context.Context) error {
		return n.Notify(ctx, &evCopy)
	})
}

func (n *notifierUC) Notify(ctx context.Context, ev *model.NotificationEvent) error {
	defer logging.TraceDuration(n.log, "NotifierUC.Notify")()
	ctx = logging.WithUserID(ctx, ev.UserID)
	log := logging.With(ctx, n.log).With().Str("type", ev.NotificationType.Name()).Logger()
	typeName := ev.NotificationType.Name()

	st, err := n.settings.Current(ctx)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	if !st.Enabled {
		metrics.IncNotification(typeName, "disabled")
		return nil
	}
	if !st.TypeEnabled(ev.NotificationType) {
		metrics.IncNotification(typeName, "filtered")
		log.Debug().Msg("notification type not enabled")
		return nil
	}

	chatID, ok, err := n.links.ChatFor(ctx, ev.UserID)
	if err != nil {
		return fmt.Errorf("resolve chat: %w", err)
	}
	if !ok {
		metrics.IncNotification(typeName, "unbound")
		return nil
	}
	chat, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		metrics.IncNotification(typeName, "unbound")
		log.Warn().Str("chat_id", chatID).Msg("stored telegram chat id is not numeric")
		return nil
	}

	post, err := n.forum.FindPostByNumber(ctx, ev.TopicID, ev.PostNumber)
	if errors.Is(err, domain.ErrNotFound) {
		metrics.IncNotification(typeName, "no_post")
		log.Warn().Int64("topic_id", ev.TopicID).Int("post_number", ev.PostNumber).Msg("notified post not found")
		return nil
	}
	if err != nil {
		return fmt.Errorf("find post: %w", err)
	}

	kb, err := n.keyboard.Build(ctx, post, ev.UserID)
	if err != nil {
		return err
	}
	if !n.fmt.HasNotificationTemplate(ev.NotificationType) {
		log.Warn().Msg("no message template for notification type, using the custom one")
	}

	msgID, err := n.bot.SendMessage(ctx, adapter.OutboundMessage{
		ChatID:   chat,
		Text:     n.fmt.Notification(ev),
		Keyboard: kb,
	})
	if err != nil {
		metrics.IncNotification(typeName, "failed")
		return fmt.Errorf("send notification: %w", err)
	}
	metrics.IncNotification(typeName, "sent")

	if err := n.links.RecordMessage(ctx, msgID, post.ID); err != nil {
		return fmt.Errorf("record message link: %w", err)
	}
	log.Debug().Int("message_id", msgID).Int64("post_id", post.ID).Msg("notification sent")
	return nil
}
