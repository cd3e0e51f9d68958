package telegram

import (
	"context"
	"strings"

	"telegram-forum-notifier/internal/domain/ports/adapter"
)

var _ adapter.TelegramBot = (*DevBot)(nil)

// DevBot is the dev-mode client. Each call goes to the no-op bot while no
// access token is stored and to the live client once one is, so a token set
// through the settings API applies without a restart.
type DevBot struct {
	settings SettingsSource
	live     adapter.TelegramBot
	noop     adapter.TelegramBot
}

func NewDevBot(settings SettingsSource, live, noop adapter.TelegramBot) *DevBot {
	return &DevBot{settings: settings, live: live, noop: noop}
}

func (b *DevBot) pick(ctx context.Context) adapter.TelegramBot {
	s, err := b.settings.Current(ctx)
	if err == nil && strings.TrimSpace(s.AccessToken) == "" {
		return b.noop
	}
	// settings errors surface through the live client
	return b.live
}

func (b *DevBot) SendMessage(ctx context.Context, msg adapter.OutboundMessage) (int, error) {
	return b.pick(ctx).SendMessage(ctx, msg)
}

func (b *DevBot) AnswerCallback(ctx context.Context, callbackID, text string) error {
	return b.pick(ctx).AnswerCallback(ctx, callbackID, text)
}

func (b *DevBot) EditKeyboard(ctx context.Context, edit adapter.KeyboardEdit) error {
	return b.pick(ctx).EditKeyboard(ctx, edit)
}

func (b *DevBot) SetupWebhook(ctx context.Context, secret string) error {
	return b.pick(ctx).SetupWebhook(ctx, secret)
}
