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

var _ repository.PostActionRepository = (*postActionRepo)(nil)

type postActionRepo struct{ pool *pgxpool.Pool }

func NewPostActionRepo(pool *pgxpool.Pool) *postActionRepo {
	return &postActionRepo{pool: pool}
}

func (r *postActionRepo) CountByUser(ctx context.Context, tx repository.Tx, userID, postID int64, t model.PostActionType) (int, error) {
	const q = `
SELECT COUNT(*) FROM post_actions
 WHERE user_id=$1 AND post_id=$2 AND post_action_type_id=$3 AND deleted_at IS NULL;`
	row, err := queryRow(ctx, r.pool, tx, q, userID, postID, int(t))
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("count post actions: %w", err)
	}
	return n, nil
}

// Create relies on the partial unique index over active actions, so two
// concurrent likes by the same user end with one row and one ErrAlreadyActed.
func (r *postActionRepo) Create(ctx context.Context, tx repository.Tx, a *model.PostAction) error {
	const q = `
INSERT INTO post_actions (post_id, user_id, post_action_type_id)
VALUES ($1, $2, $3)
ON CONFLICT (user_id, post_id, post_action_type_id) WHERE deleted_at IS NULL DO NOTHING
RETURNING id, created_at;`
	row, err := queryRow(ctx, r.pool, tx, q, a.PostID, a.UserID, int(a.ActionType))
	if err != nil {
		return err
	}
	if err := row.Scan(&a.ID, &a.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrAlreadyActed
		}
		return fmt.Errorf("create post action: %w", err)
	}
	return nil
}

func (r *postActionRepo) FindActive(ctx context.Context, tx repository.Tx, userID, postID int64, t model.PostActionType) (*model.PostAction, error) {
	q := `
SELECT id, post_id, user_id, post_action_type_id, created_at, deleted_at FROM post_actions
 WHERE user_id=$1 AND post_id=$2 AND post_action_type_id=$3 AND deleted_at IS NULL`
	row, err := queryRow(ctx, r.pool, tx, lockSuffix(q, tx), userID, postID, int(t))
	if err != nil {
		return nil, err
	}
	var a model.PostAction
	var typ int
	if err := row.Scan(&a.ID, &a.PostID, &a.UserID, &typ, &a.CreatedAt, &a.DeletedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	a.ActionType = model.PostActionType(typ)
	return &a, nil
}

func (r *postActionRepo) Remove(ctx context.Context, tx repository.Tx, id int64) error {
	tag, err := exec(ctx, r.pool, tx, `UPDATE post_actions SET deleted_at = now() WHERE id=$1 AND deleted_at IS NULL;`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
