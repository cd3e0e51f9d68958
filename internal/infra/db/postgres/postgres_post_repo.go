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

var _ repository.PostRepository = (*postRepo)(nil)

type postRepo struct{ pool *pgxpool.Pool }

func NewPostRepo(pool *pgxpool.Pool) *postRepo {
	return &postRepo{pool: pool}
}

const postColumns = `p.id, p.topic_id, t.slug, p.post_number, p.user_id, p.raw, p.like_count, p.created_at`

func scanPost(row pgx.Row) (*model.Post, error) {
	var p model.Post
	if err := row.Scan(&p.ID, &p.TopicID, &p.TopicSlug, &p.PostNumber, &p.UserID, &p.Raw, &p.LikeCount, &p.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return &p, nil
}

func (r *postRepo) FindByID(ctx context.Context, tx repository.Tx, id int64) (*model.Post, error) {
	q := `SELECT ` + postColumns + ` FROM posts p JOIN topics t ON t.id = p.topic_id WHERE p.id=$1;`
	row, err := queryRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	return scanPost(row)
}

func (r *postRepo) FindByTopicAndNumber(ctx context.Context, tx repository.Tx, topicID int64, postNumber int) (*model.Post, error) {
	q := `SELECT ` + postColumns + ` FROM posts p JOIN topics t ON t.id = p.topic_id WHERE p.topic_id=$1 AND p.post_number=$2;`
	row, err := queryRow(ctx, r.pool, tx, q, topicID, postNumber)
	if err != nil {
		return nil, err
	}
	return scanPost(row)
}

// Create bumps topics.highest_post_number and inserts the post with it.
// The UPDATE holds the topic row lock until tx ends.
func (r *postRepo) Create(ctx context.Context, tx repository.Tx, userID int64, np *model.NewPost) (*model.Post, error) {
	ex, err := querierFor(r.pool, tx)
	if err != nil {
		return nil, err
	}

	var number int
	var slug string
	err = ex.QueryRow(ctx,
		`UPDATE topics SET highest_post_number = highest_post_number + 1 WHERE id=$1 RETURNING highest_post_number, slug;`,
		np.TopicID).Scan(&number, &slug)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("next post number: %w", err)
	}

	var replyTo *int
	if np.ReplyToPostNumber > 0 {
		replyTo = &np.ReplyToPostNumber
	}
	p := &model.Post{TopicID: np.TopicID, TopicSlug: slug, PostNumber: number, UserID: userID, Raw: np.Raw}
	err = ex.QueryRow(ctx, `
INSERT INTO posts (topic_id, post_number, user_id, raw, reply_to_post_number)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, like_count, created_at;`,
		np.TopicID, number, userID, np.Raw, replyTo).Scan(&p.ID, &p.LikeCount, &p.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert post: %w", err)
	}
	return p, nil
}

func (r *postRepo) AdjustLikeCount(ctx context.Context, tx repository.Tx, postID int64, delta int) error {
	tag, err := exec(ctx, r.pool, tx, `UPDATE posts SET like_count = GREATEST(like_count + $2, 0) WHERE id=$1;`, postID, delta)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
