package repository

import (
	"context"
	"telegram-forum-notifier/internal/domain/model"
)

// -----------------------------
// Users
// -----------------------------

type UserRepository interface {
	// Create returns domain.ErrAlreadyExists when the username is taken.
	Create(ctx context.Context, tx Tx, username string) (*model.User, error)
	FindByID(ctx context.Context, tx Tx, id int64) (*model.User, error)
}

// -----------------------------
// Chat bindings (user custom field telegram_chat_id)
// -----------------------------

type ChatBindingRepository interface {
	// Save upserts the binding for b.UserID.
	Save(ctx context.Context, tx Tx, b *model.ChatBinding) error
	// FindByUserID returns domain.ErrNotFound when the user never connected Telegram.
	FindByUserID(ctx context.Context, tx Tx, userID int64) (*model.ChatBinding, error)
	// FindUserIDByChatID returns domain.ErrNotFound for unknown chats.
	FindUserIDByChatID(ctx context.Context, tx Tx, chatID string) (int64, error)
}
