// File: internal/domain/ports/adapter/telegram.go
package adapter

import "context"

// InlineButton is a single inline keyboard button. Exactly one of URL or
// Data is meaningful; URL wins when both are set.
type InlineButton struct {
	Text string
	Data string
	URL  string
}

// OutboundMessage is a text message sent to a chat in HTML parse mode with
// link previews disabled.
type OutboundMessage struct {
	ChatID   int64
	Text     string
	Keyboard [][]InlineButton
}

// KeyboardEdit replaces the inline keyboard of a message already sent.
type KeyboardEdit struct {
	ChatID    int64
	MessageID int
	Keyboard  [][]InlineButton
}

// TelegramBot is the outbound port to the Telegram Bot API. Calls are
// best-effort: one attempt, no retry. A non-ok API response is returned as
// an error wrapping domain.ErrTelegramAPI.
type TelegramBot interface {
	// SendMessage returns the Telegram message id of the sent message.
	SendMessage(ctx context.Context, msg OutboundMessage) (int, error)
	AnswerCallback(ctx context.Context, callbackID, text string) error
	EditKeyboard(ctx context.Context, edit KeyboardEdit) error
	// SetupWebhook registers <base_url>/telegram/hook/<secret> with Telegram.
	SetupWebhook(ctx context.Context, secret string) error
}
