package model

import (
	"strings"

	"telegram-forum-notifier/internal/domain"
)

// TelegramChatIDField is the user custom field holding the bound Telegram chat id.
const TelegramChatIDField = "telegram_chat_id"

// User is the part of a forum account the relay needs.
type User struct {
	ID       int64
	Username string
}

func (u *User) IsZero() bool { return u == nil || u.ID == 0 }

// ChatBinding associates a forum user with a Telegram chat.
type ChatBinding struct {
	UserID int64
	ChatID string
}

func NewChatBinding(userID int64, chatID string) (*ChatBinding, error) {
	chatID = strings.TrimSpace(chatID)
	if userID <= 0 || chatID == "" {
		return nil, domain.ErrInvalidArgument
	}
	return &ChatBinding{UserID: userID, ChatID: chatID}, nil
}
