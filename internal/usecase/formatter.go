package usecase

import (
	"html"
	"net/url"
	"strconv"
	"strings"

	"telegram-forum-notifier/internal/domain/model"
	"telegram-forum-notifier/internal/infra/i18n"
)

// MessageKind selects a localized message.
type MessageKind string

const (
	MsgKnownUser      MessageKind = "known-user"
	MsgInitialContact MessageKind = "initial-contact"
	MsgUnknownChat    MessageKind = "unknown-chat"
	MsgReplySuccess   MessageKind = "reply-success"
	MsgReplyFailed    MessageKind = "reply-failed"
	MsgReplyError     MessageKind = "reply-error"
	MsgLikeSuccess    MessageKind = "like-success"
	MsgAlreadyLiked   MessageKind = "already-liked"
	MsgLikeFail       MessageKind = "like-fail"
	MsgUnlikeSuccess  MessageKind = "unlike-success"
	MsgUnlikeFailed   MessageKind = "unlike-failed"
	MsgUnknownAction  MessageKind = "error-unknown-action"
	MsgInternalError  MessageKind = "error-internal"
)

const (
	labelViewOnline       = "view_online"
	labelLike             = "like"
	labelUnlike           = "unlike"
	notificationKeyPrefix = "message."
)

// MessageFormatter renders relay messages from the locale catalog. Every
// interpolated value that originates from users or the host is HTML-escaped.
type MessageFormatter struct {
	tr        *i18n.Translator
	siteTitle string
	baseURL   string
}

func NewMessageFormatter(tr *i18n.Translator, siteTitle, baseURL string) *MessageFormatter {
	return &MessageFormatter{tr: tr, siteTitle: siteTitle, baseURL: strings.TrimRight(baseURL, "/")}
}

func esc(s string) string { return html.EscapeString(s) }

// Text renders a message kind that takes no parameters.
func (f *MessageFormatter) Text(kind MessageKind) string {
	return f.tr.Named(string(kind), map[string]string{"site_title": esc(f.siteTitle)})
}

func (f *MessageFormatter) KnownUser(username string) string {
	return f.tr.Named(string(MsgKnownUser), map[string]string{
		"site_title": esc(f.siteTitle),
		"username":   esc(username),
	})
}

func (f *MessageFormatter) InitialContact(chatID int64) string {
	return f.tr.Named(string(MsgInitialContact), map[string]string{
		"site_title": esc(f.siteTitle),
		"chat_id":    strconv.FormatInt(chatID, 10),
	})
}

func (f *MessageFormatter) ReplySuccess(postURL string) string {
	return f.tr.Named(string(MsgReplySuccess), map[string]string{"post_url": esc(postURL)})
}

func (f *MessageFormatter) ReplyFailed(errors string) string {
	return f.tr.Named(string(MsgReplyFailed), map[string]string{"errors": esc(errors)})
}

// Notification renders message.<type name> for a forum notification, or
// message.custom when the catalog has no entry for the type.
func (f *MessageFormatter) Notification(ev *model.NotificationEvent) string {
	key := notificationKeyPrefix + ev.NotificationType.Name()
	if !f.tr.Has(key) {
		key = notificationKeyPrefix + model.NotificationCustom.Name()
	}
	return f.tr.Named(key, map[string]string{
		"site_title":   esc(f.siteTitle),
		"site_url":     esc(f.baseURL),
		"post_url":     esc(f.absolute(ev.PostURL)),
		"post_excerpt": esc(ev.Excerpt),
		"topic":        esc(ev.TopicTitle),
		"username":     esc(ev.Username),
		"user_url":     esc(f.baseURL + "/u/" + url.PathEscape(ev.Username)),
	})
}

// HasNotificationTemplate reports whether t has a message in the catalog.
func (f *MessageFormatter) HasNotificationTemplate(t model.NotificationType) bool {
	return f.tr.Has(notificationKeyPrefix + t.Name())
}

func (f *MessageFormatter) Label(key string) string { return f.tr.Named(key, nil) }

func (f *MessageFormatter) absolute(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if path != "" && !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return f.baseURL + path
}
