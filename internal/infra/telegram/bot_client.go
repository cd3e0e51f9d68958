package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"telegram-forum-notifier/internal/config"
	"telegram-forum-notifier/internal/domain"
	"telegram-forum-notifier/internal/domain/ports/adapter"
	"telegram-forum-notifier/internal/domain/model"
	"telegram-forum-notifier/internal/infra/logging"
	"telegram-forum-notifier/internal/infra/metrics"
)

var _ adapter.TelegramBot = (*BotClient)(nil)

// SettingsSource yields the current runtime settings.
type SettingsSource interface {
	Current(ctx context.Context) (*model.Settings, error)
}

// BotClient calls the Telegram Bot API with tgbotapi. The access token is
// read from the settings source on every call so a rotated token applies to
// the next request.
type BotClient struct {
	settings   SettingsSource
	httpClient *http.Client
	endpoint   string
	baseURL    string
	dev        bool
	log        *zerolog.Logger
}

func NewBotClient(cfg *config.Config, settings SettingsSource, httpClient *http.Client, logger *zerolog.Logger) *BotClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	endpoint := cfg.Telegram.APIEndpoint
	if endpoint == "" {
		endpoint = config.DefaultAPIEndpoint
	}
	l := logger.With().Str("component", "telegram.BotClient").Logger()
	return &BotClient{
		settings:   settings,
		httpClient: httpClient,
		endpoint:   endpoint,
		baseURL:    strings.TrimRight(cfg.Server.BaseURL, "/"),
		dev:        cfg.Runtime.Dev,
		log:        &l,
	}
}

func (c *BotClient) SendMessage(ctx context.Context, msg adapter.OutboundMessage) (int, error) {
	cfg := tgbotapi.NewMessage(msg.ChatID, msg.Text)
	cfg.ParseMode = tgbotapi.ModeHTML
	cfg.DisableWebPagePreview = true
	if kb := toMarkup(msg.Keyboard); kb != nil {
		cfg.ReplyMarkup = *kb
	}

	var sent tgbotapi.Message
	err := c.do(ctx, "sendMessage", func(bot *tgbotapi.BotAPI) error {
		var err error
		sent, err = bot.Send(cfg)
		return err
	}, func(e *zerolog.Event) {
		e.Int64("chat_id", msg.ChatID).Str("text", msg.Text).Int("keyboard_rows", len(msg.Keyboard))
	})
	if err != nil {
		return 0, err
	}
	return sent.MessageID, nil
}

func (c *BotClient) AnswerCallback(ctx context.Context, callbackID, text string) error {
	cb := tgbotapi.NewCallback(callbackID, text)
	return c.do(ctx, "answerCallbackQuery", func(bot *tgbotapi.BotAPI) error {
		_, err := bot.Request(cb)
		return err
	}, func(e *zerolog.Event) {
		e.Str("callback_query_id", callbackID).Str("text", text)
	})
}

func (c *BotClient) EditKeyboard(ctx context.Context, edit adapter.KeyboardEdit) error {
	markup := toMarkup(edit.Keyboard)
	if markup == nil {
		markup = &tgbotapi.InlineKeyboardMarkup{InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{}}
	}
	cfg := tgbotapi.NewEditMessageReplyMarkup(edit.ChatID, edit.MessageID, *markup)
	return c.do(ctx, "editMessageReplyMarkup", func(bot *tgbotapi.BotAPI) error {
		_, err := bot.Request(cfg)
		return err
	}, func(e *zerolog.Event) {
		e.Int64("chat_id", edit.ChatID).Int("message_id", edit.MessageID)
	})
}

func (c *BotClient) SetupWebhook(ctx context.Context, secret string) error {
	if c.baseURL == "" {
		return fmt.Errorf("%w: server.base_url is empty", domain.ErrInvalidArgument)
	}
	hookURL := c.baseURL + "/telegram/hook/" + secret
	wh, err := tgbotapi.NewWebhook(hookURL)
	if err != nil {
		return fmt.Errorf("%w: webhook url: %v", domain.ErrInvalidArgument, err)
	}
	return c.do(ctx, "setWebhook", func(bot *tgbotapi.BotAPI) error {
		_, err := bot.Request(wh)
		return err
	}, func(e *zerolog.Event) {
		e.Str("url", c.baseURL+"/telegram/hook/"+logging.Redact(secret, c.dev))
	})
}

// do builds a BotAPI for the current token and runs call once.
// Failures are logged with the request fields and the API description.
func (c *BotClient) do(ctx context.Context, method string, call func(bot *tgbotapi.BotAPI) error, fields func(e *zerolog.Event)) error {
	log := logging.With(ctx, c.log)
	defer logging.TraceDuration(log, "BotClient."+method)()

	if err := ctx.Err(); err != nil {
		return err
	}
	s, err := c.settings.Current(ctx)
	if err != nil {
		return fmt.Errorf("load telegram settings: %w", err)
	}
	if strings.TrimSpace(s.AccessToken) == "" {
		log.Warn().Str("method", method).Msg("telegram call skipped: no access token")
		return domain.ErrNoAccessToken
	}

	bot := &tgbotapi.BotAPI{
		Token:  s.AccessToken,
		Client: &ctxClient{ctx: ctx, c: c.httpClient},
		Buffer: 100,
	}
	bot.SetAPIEndpoint(c.endpoint)

	start := time.Now()
	err = call(bot)
	metrics.ObserveTelegramCall(method, err == nil, time.Since(start))
	if err == nil {
		return nil
	}

	ev := log.Error().Str("method", method).Str("token", logging.Redact(s.AccessToken, c.dev))
	fields(ev)
	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) {
		ev.Int("code", apiErr.Code).Str("description", apiErr.Message)
	}
	ev.Err(err).Msg("telegram request failed")
	return fmt.Errorf("%w: %s: %v", domain.ErrTelegramAPI, method, err)
}

// toMarkup converts port buttons to a tgbotapi inline keyboard.
// - If btn.URL is set, the button opens a link
// - Else if btn.Data is set, the button sends callback data
// - Else btn.Text is used as callback data
func toMarkup(rows [][]adapter.InlineButton) *tgbotapi.InlineKeyboardMarkup {
	kbRows := make([][]tgbotapi.InlineKeyboardButton, 0, len(rows))
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		r := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, btn := range row {
			label := strings.TrimSpace(btn.Text)
			if label == "" {
				label = "•"
			}
			switch {
			case btn.URL != "":
				r = append(r, tgbotapi.NewInlineKeyboardButtonURL(label, btn.URL))
			case btn.Data != "":
				r = append(r, tgbotapi.NewInlineKeyboardButtonData(label, btn.Data))
			default:
				r = append(r, tgbotapi.NewInlineKeyboardButtonData(label, label))
			}
		}
		kbRows = append(kbRows, r)
	}
	if len(kbRows) == 0 {
		return nil
	}
	markup := tgbotapi.NewInlineKeyboardMarkup(kbRows...)
	return &markup
}

// ctxClient binds outgoing requests to the caller's context.
type ctxClient struct {
	ctx context.Context
	c   *http.Client
}

func (h *ctxClient) Do(req *http.Request) (*http.Response, error) {
	return h.c.Do(req.WithContext(h.ctx))
}
