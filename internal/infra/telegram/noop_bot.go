package telegram

import (
	"context"
	"sync/atomic"

	"github.com/rs/zerolog"

	"telegram-forum-notifier/internal/domain/ports/adapter"
)

var _ adapter.TelegramBot = (*NoopBot)(nil)

// NoopBot implements adapter.TelegramBot for local/dev runs.
// It logs messages instead of calling Telegram.
type NoopBot struct {
	log    *zerolog.Logger
	nextID atomic.Int64
}

func NewNoopBot(logger *zerolog.Logger) *NoopBot {
	l := logger.With().Str("component", "telegram.NoopBot").Logger()
	return &NoopBot{log: &l}
}

// SendMessage logs the message and returns a fake, increasing message id.
func (b *NoopBot) SendMessage(ctx context.Context, msg adapter.OutboundMessage) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	id := int(b.nextID.Add(1))
	b.log.Info().Int64("chat_id", msg.ChatID).Int("message_id", id).Str("text", msg.Text).
		Interface("keyboard", msg.Keyboard).Msg("[noop-telegram] sendMessage")
	return id, nil
}

func (b *NoopBot) AnswerCallback(ctx context.Context, callbackID, text string) error {
	b.log.Info().Str("callback_query_id", callbackID).Str("text", text).Msg("[noop-telegram] answerCallbackQuery")
	return ctx.Err()
}

func (b *NoopBot) EditKeyboard(ctx context.Context, edit adapter.KeyboardEdit) error {
	b.log.Info().Int64("chat_id", edit.ChatID).Int("message_id", edit.MessageID).
		Interface("keyboard", edit.Keyboard).Msg("[noop-telegram] editMessageReplyMarkup")
	return ctx.Err()
}

func (b *NoopBot) SetupWebhook(ctx context.Context, secret string) error {
	b.log.Info().Msg("[noop-telegram] setWebhook")
	return ctx.Err()
}
