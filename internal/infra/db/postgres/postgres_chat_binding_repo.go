package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"telegram-forum-notifier/internal/domain"
	"telegram-forum-notifier/internal/domain/model"
	"telegram-forum-notifier/internal/domain/ports/repository"
)

var _ repository.ChatBindingRepository = (*chatBindingRepo)(nil)

// chatBindingRepo stores bindings as the telegram_chat_id user custom field.
type chatBindingRepo struct{ pool *pgxpool.Pool }

func NewChatBindingRepo(pool *pgxpool.Pool) *chatBindingRepo {
	return &chatBindingRepo{pool: pool}
}

func (r *chatBindingRepo) Save(ctx context.Context, tx repository.Tx, b *model.ChatBinding) error {
	const q = `
INSERT INTO user_custom_fields (user_id, name, value, updated_at)
VALUES ($1, $2, $3, now())
ON CONFLICT (user_id, name) DO UPDATE SET value = EXCLUDED.value, updated_at = now();`
	if _, err := exec(ctx, r.pool, tx, q, b.UserID, model.TelegramChatIDField, b.ChatID); err != nil {
		if errors.Is(err, domain.ErrInvalidArgument) || errors.Is(err, domain.ErrInvalidExecContext) {
			return err
		}
		return fmt.Errorf("save chat binding: %w", err)
	}
	return nil
}

func (r *chatBindingRepo) FindByUserID(ctx context.Context, tx repository.Tx, userID int64) (*model.ChatBinding, error) {
	const q = `SELECT value FROM user_custom_fields WHERE user_id=$1 AND name=$2;`
	row, err := queryRow(ctx, r.pool, tx, q, userID, model.TelegramChatIDField)
	if err != nil {
		return nil, err
	}
	b := &model.ChatBinding{UserID: userID}
	if err := row.Scan(&b.ChatID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	if b.ChatID == "" {
		return nil, domain.ErrNotFound
	}
	return b, nil
}

// FindUserIDByChatID returns the oldest binding when several users saved the same chat id.
func (r *chatBindingRepo) FindUserIDByChatID(ctx context.Context, tx repository.Tx, chatID string) (int64, error) {
	const q = `SELECT user_id FROM user_custom_fields WHERE name=$1 AND value=$2 ORDER BY id LIMIT 1;`
	row, err := queryRow(ctx, r.pool, tx, q, model.TelegramChatIDField, chatID)
	if err != nil {
		return 0, err
	}
	var userID int64
	if err := row.Scan(&userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrNotFound
		}
		return 0, domain.ErrReadDatabaseRow
	}
	return userID, nil
}
