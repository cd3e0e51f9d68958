package usecase

import (
	"context"
	"crypto/subtle"
	"errors"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"telegram-forum-notifier/internal/domain"
	"telegram-forum-notifier/internal/domain/model"
	"telegram-forum-notifier/internal/domain/ports/adapter"
	"telegram-forum-notifier/internal/infra/logging"
	"telegram-forum-notifier/internal/infra/metrics"
)

// Compile-time check
var _ DispatcherUseCase = (*dispatcherUC)(nil)

// DispatcherUseCase handles inbound webhook updates.
type DispatcherUseCase interface {
	// Authorize returns domain.ErrTelegramDisabled or domain.ErrInvalidAccess
	// when the call must be rejected.
	Authorize(ctx context.Context, key string) error
	// Handle processes one update. Failures are logged, never returned.
	Handle(ctx context.Context, u *tgbotapi.Update) Intent
}

type dispatcherUC struct {
	settings SettingsUseCase
	links    ChatLinkUseCase
	forum    ForumUseCase
	keyboard *KeyboardBuilder
	fmt      *MessageFormatter
	bot      adapter.TelegramBot
	baseURL  string
	log      *zerolog.Logger
}

func NewDispatcherUseCase(
	settings SettingsUseCase,
	links ChatLinkUseCase,
	forum ForumUseCase,
	keyboard *KeyboardBuilder,
	f *MessageFormatter,
	bot adapter.TelegramBot,
	baseURL string,
	logger *zerolog.Logger,
) *dispatcherUC {
	l := logger.With().Str("component", "DispatcherUC").Logger()
	return &dispatcherUC{
		settings: settings,
		links:    links,
		forum:    forum,
		keyboard: keyboard,
		fmt:      f,
		bot:      bot,
		baseURL:  baseURL,
		log:      &l,
	}
}

func (d *dispatcherUC) Authorize(ctx context.Context, key string) error {
	st, err := d.settings.Current(ctx)
	if err != nil {
		return err
	}
	if !st.Enabled {
		return domain.ErrTelegramDisabled
	}
	if st.Secret == "" || subtle.ConstantTimeCompare([]byte(key), []byte(st.Secret)) != 1 {
		return domain.ErrInvalidAccess
	}
	return nil
}

func (d *dispatcherUC) Handle(ctx context.Context, u *tgbotapi.Update) Intent {
	defer logging.TraceDuration(d.log, "DispatcherUC.Handle")()

	var in Intent
	switch {
	case u != nil && u.Message != nil && u.Message.Chat != nil:
		in = d.handleMessage(ctx, u)
	case u != nil && u.CallbackQuery != nil:
		in = d.handleCallback(ctx, u)
	default:
		in = Intent{Kind: IntentIgnored}
	}
	metrics.IncWebhookUpdate(string(in.Kind))
	return in
}

func (d *dispatcherUC) handleMessage(ctx context.Context, u *tgbotapi.Update) Intent {
	chatID := u.Message.Chat.ID
	ctx = logging.WithChatID(ctx, chatID)
	log := logging.With(ctx, d.log)

	userID, bound, err := d.links.ResolveUser(ctx, strconv.FormatInt(chatID, 10))
	if err != nil {
		log.Error().Err(err).Msg("resolve chat binding")
		return Intent{Kind: IntentIgnored, ChatID: chatID}
	}
	in := Classify(u, bound)
	if bound {
		ctx = logging.WithUserID(ctx, userID)
		log = logging.With(ctx, d.log)
	}

	var text string
	switch in.Kind {
	case IntentFirstContact:
		text = d.fmt.InitialContact(chatID)
	case IntentKnownUser:
		user, err := d.forum.FindUser(ctx, userID)
		if err != nil {
			log.Error().Err(err).Msg("load bound user")
			text = d.fmt.Text(MsgInternalError)
			break
		}
		text = d.fmt.KnownUser(user.Username)
	case IntentReplyWithContext:
		text = d.reply(ctx, log, userID, in)
	default:
		return in
	}

	d.send(ctx, log, chatID, text)
	return in
}

// reply creates a forum post answering the post linked to in.ReplyToMessageID
// and returns the status text for the chat.
func (d *dispatcherUC) reply(ctx context.Context, log *zerolog.Logger, userID int64, in Intent) string {
	postID, ok, err := d.links.ResolvePost(ctx, in.ReplyToMessageID)
	if err != nil {
		log.Error().Err(err).Int("reply_to", in.ReplyToMessageID).Msg("resolve message link")
		return d.fmt.Text(MsgInternalError)
	}
	if !ok {
		return d.fmt.Text(MsgReplyError)
	}
	target, err := d.forum.FindPost(ctx, postID)
	if errors.Is(err, domain.ErrNotFound) {
		return d.fmt.Text(MsgReplyError)
	}
	if err != nil {
		log.Error().Err(err).Int64("post_id", postID).Msg("load reply target")
		return d.fmt.Text(MsgInternalError)
	}

	created, err := d.forum.CreateReply(ctx, userID, &model.NewPost{
		Raw:               in.Text,
		TopicID:           target.TopicID,
		ReplyToPostNumber: target.PostNumber,
	})
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		return d.fmt.ReplyFailed(ve.FullMessages())
	case err != nil:
		log.Error().Err(err).Int64("post_id", postID).Msg("create reply")
		return d.fmt.Text(MsgInternalError)
	}
	return d.fmt.ReplySuccess(created.URL(d.baseURL))
}

func (d *dispatcherUC) handleCallback(ctx context.Context, u *tgbotapi.Update) Intent {
	in := Classify(u, true)
	if in.Kind == IntentIgnored {
		return in
	}
	ctx = logging.WithChatID(ctx, in.ChatID)
	log := logging.With(ctx, d.log)

	userID, bound, err := d.links.ResolveUser(ctx, strconv.FormatInt(in.ChatID, 10))
	if err != nil {
		log.Error().Err(err).Msg("resolve chat binding")
		d.answer(ctx, log, in.CallbackID, d.fmt.Text(MsgInternalError))
		return in
	}
	if !bound {
		d.answer(ctx, log, in.CallbackID, d.fmt.Text(MsgUnknownChat))
		return in
	}
	ctx = logging.WithUserID(ctx, userID)
	log = logging.With(ctx, d.log)

	var post *model.Post
	if in.PostID > 0 {
		post, err = d.forum.FindPost(ctx, in.PostID)
		if err != nil {
			if !errors.Is(err, domain.ErrNotFound) {
				log.Error().Err(err).Int64("post_id", in.PostID).Msg("load callback post")
			}
			post = nil
		}
	}

	status := d.fmt.Text(MsgUnknownAction)
	if post != nil {
		switch in.Kind {
		case IntentLike:
			status = d.like(ctx, log, userID, post.ID)
		case IntentUnlike:
			status = d.unlike(ctx, log, userID, post.ID)
		}
	}
	d.answer(ctx, log, in.CallbackID, status)

	if post == nil {
		return in
	}
	kb, err := d.keyboard.Build(ctx, post, userID)
	if err != nil {
		log.Error().Err(err).Msg("build keyboard")
		return in
	}
	if err := d.bot.EditKeyboard(ctx, adapter.KeyboardEdit{ChatID: in.ChatID, MessageID: in.MessageID, Keyboard: kb}); err != nil {
		log.Warn().Err(err).Msg("edit keyboard")
	}
	return in
}

func (d *dispatcherUC) like(ctx context.Context, log *zerolog.Logger, userID, postID int64) string {
	err := d.forum.Like(ctx, userID, postID)
	switch {
	case err == nil:
		return d.fmt.Text(MsgLikeSuccess)
	case errors.Is(err, domain.ErrAlreadyActed):
		return d.fmt.Text(MsgAlreadyLiked)
	case errors.Is(err, domain.ErrInvalidAccess):
		return d.fmt.Text(MsgLikeFail)
	default:
		log.Error().Err(err).Int64("post_id", postID).Msg("like post")
		return d.fmt.Text(MsgLikeFail)
	}
}

func (d *dispatcherUC) unlike(ctx context.Context, log *zerolog.Logger, userID, postID int64) string {
	err := d.forum.Unlike(ctx, userID, postID)
	switch {
	case err == nil:
		return d.fmt.Text(MsgUnlikeSuccess)
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrInvalidAccess):
		return d.fmt.Text(MsgUnlikeFailed)
	default:
		log.Error().Err(err).Int64("post_id", postID).Msg("unlike post")
		return d.fmt.Text(MsgUnlikeFailed)
	}
}

func (d *dispatcherUC) send(ctx context.Context, log *zerolog.Logger, chatID int64, text string) {
	if _, err := d.bot.SendMessage(ctx, adapter.OutboundMessage{ChatID: chatID, Text: text}); err != nil {
		log.Warn().Err(err).Msg("send reply")
	}
}

func (d *dispatcherUC) answer(ctx context.Context, log *zerolog.Logger, callbackID, text string) {
	if err := d.bot.AnswerCallback(ctx, callbackID, text); err != nil {
		log.Warn().Err(err).Msg("answer callback")
	}
}
