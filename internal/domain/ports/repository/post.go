package repository

import (
	"context"
	"telegram-forum-notifier/internal/domain/model"
)

// -----------------------------
// Posts
// -----------------------------

type PostRepository interface {
	FindByID(ctx context.Context, tx Tx, id int64) (*model.Post, error)
	FindByTopicAndNumber(ctx context.Context, tx Tx, topicID int64, postNumber int) (*model.Post, error)
	// Create assigns the next post number in the topic and returns the stored post.
	// The topic row is locked for the duration of tx.
	Create(ctx context.Context, tx Tx, userID int64, p *model.NewPost) (*model.Post, error)
	AdjustLikeCount(ctx context.Context, tx Tx, postID int64, delta int) error
}

type TopicRepository interface {
	Create(ctx context.Context, tx Tx, title, slug string) (*model.Topic, error)
	// FindByIDForUpdate locks the topic row when tx is a transaction.
	FindByIDForUpdate(ctx context.Context, tx Tx, id int64) (*model.Topic, error)
}

// -----------------------------
// Post actions (likes)
// -----------------------------

type PostActionRepository interface {
	CountByUser(ctx context.Context, tx Tx, userID, postID int64, t model.PostActionType) (int, error)
	// Create returns domain.ErrAlreadyActed when an active action of the same type exists.
	Create(ctx context.Context, tx Tx, a *model.PostAction) error
	// FindActive returns domain.ErrNotFound when the user has no active action of type t.
	FindActive(ctx context.Context, tx Tx, userID, postID int64, t model.PostActionType) (*model.PostAction, error)
	// Remove soft-deletes the action; domain.ErrNotFound if it was already removed.
	Remove(ctx context.Context, tx Tx, id int64) error
}
