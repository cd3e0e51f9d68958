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

var _ repository.TopicRepository = (*topicRepo)(nil)

type topicRepo struct{ pool *pgxpool.Pool }

func NewTopicRepo(pool *pgxpool.Pool) *topicRepo {
	return &topicRepo{pool: pool}
}

func (r *topicRepo) Create(ctx context.Context, tx repository.Tx, title, slug string) (*model.Topic, error) {
	const q = `INSERT INTO topics (title, slug) VALUES ($1, $2) RETURNING id, title, slug, closed;`
	row, err := queryRow(ctx, r.pool, tx, q, title, slug)
	if err != nil {
		return nil, err
	}
	var t model.Topic
	if err := row.Scan(&t.ID, &t.Title, &t.Slug, &t.Closed); err != nil {
		return nil, fmt.Errorf("create topic: %w", err)
	}
	return &t, nil
}

func (r *topicRepo) FindByIDForUpdate(ctx context.Context, tx repository.Tx, id int64) (*model.Topic, error) {
	q := `SELECT id, title, slug, closed FROM topics WHERE id=$1`
	row, err := queryRow(ctx, r.pool, tx, lockSuffix(q, tx), id)
	if err != nil {
		return nil, err
	}
	var t model.Topic
	if err := row.Scan(&t.ID, &t.Title, &t.Slug, &t.Closed); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return &t, nil
}
