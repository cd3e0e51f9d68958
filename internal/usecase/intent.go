package usecase

import (
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// IntentKind is the branch an inbound update takes.
type IntentKind string

const (
	IntentFirstContact     IntentKind = "first_contact"
	IntentKnownUser        IntentKind = "known_user"
	IntentReplyWithContext IntentKind = "reply_with_context"
	IntentLike             IntentKind = "like"
	IntentUnlike           IntentKind = "unlike"
	IntentUnknownAction    IntentKind = "unknown_action"
	IntentIgnored          IntentKind = "ignored"
)

// Intent is the classified form of one Telegram update.
type Intent struct {
	Kind   IntentKind
	ChatID int64
	// Message updates
	Text             string
	ReplyToMessageID int
	// Callback queries
	CallbackID string
	MessageID  int
	Action     string
	PostID     int64
}

func (i Intent) IsCallback() bool { return i.CallbackID != "" }

// Classify maps an update to an Intent without any I/O. bound tells whether
// the chat is linked to a forum user; it only matters for message updates.
func Classify(u *tgbotapi.Update, bound bool) Intent {
	switch {
	case u == nil:
		return Intent{Kind: IntentIgnored}
	case u.Message != nil:
		return classifyMessage(u.Message, bound)
	case u.CallbackQuery != nil:
		return classifyCallback(u.CallbackQuery)
	default:
		return Intent{Kind: IntentIgnored}
	}
}

func classifyMessage(m *tgbotapi.Message, bound bool) Intent {
	if m.Chat == nil {
		return Intent{Kind: IntentIgnored}
	}
	in := Intent{ChatID: m.Chat.ID, Text: m.Text}
	switch {
	case !bound:
		in.Kind = IntentFirstContact
	case m.ReplyToMessage != nil && m.ReplyToMessage.MessageID > 0:
		in.Kind = IntentReplyWithContext
		in.ReplyToMessageID = m.ReplyToMessage.MessageID
	default:
		in.Kind = IntentKnownUser
	}
	return in
}

func classifyCallback(q *tgbotapi.CallbackQuery) Intent {
	if q.Message == nil || q.Message.Chat == nil || q.ID == "" {
		return Intent{Kind: IntentIgnored}
	}
	in := Intent{
		Kind:       IntentUnknownAction,
		ChatID:     q.Message.Chat.ID,
		CallbackID: q.ID,
		MessageID:  q.Message.MessageID,
	}
	action, rawID, ok := strings.Cut(q.Data, ":")
	if !ok {
		return in
	}
	in.Action = action
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil || id <= 0 {
		return in
	}
	in.PostID = id
	switch action {
	case ActionLike:
		in.Kind = IntentLike
	case ActionUnlike:
		in.Kind = IntentUnlike
	}
	return in
}
