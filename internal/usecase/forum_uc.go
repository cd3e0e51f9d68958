package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"telegram-forum-notifier/internal/config"
	"telegram-forum-notifier/internal/domain"
	"telegram-forum-notifier/internal/domain/model"
	"telegram-forum-notifier/internal/domain/ports/repository"
	"telegram-forum-notifier/internal/infra/logging"
)

// Compile-time check
var _ ForumUseCase = (*forumUC)(nil)

// ForumUseCase is the forum side of the relay: post lookup, replies and likes.
type ForumUseCase interface {
	FindPost(ctx context.Context, id int64) (*model.Post, error)
	FindPostByNumber(ctx context.Context, topicID int64, postNumber int) (*model.Post, error)
	FindUser(ctx context.Context, id int64) (*model.User, error)
	// CreateReply returns *domain.ValidationError when the post is rejected.
	CreateReply(ctx context.Context, userID int64, np *model.NewPost) (*model.Post, error)
	// Like returns domain.ErrAlreadyActed or domain.ErrInvalidAccess on refusal.
	Like(ctx context.Context, userID, postID int64) error
	// Unlike returns domain.ErrNotFound or domain.ErrInvalidAccess on refusal.
	Unlike(ctx context.Context, userID, postID int64) error
}

type forumUC struct {
	users   repository.UserRepository
	topics  repository.TopicRepository
	posts   repository.PostRepository
	actions repository.PostActionRepository
	tm      repository.TransactionManager
	cfg     config.ForumConfig
	now     func() time.Time
	log     *zerolog.Logger
}

func NewForumUseCase(
	users repository.UserRepository,
	topics repository.TopicRepository,
	posts repository.PostRepository,
	actions repository.PostActionRepository,
	tm repository.TransactionManager,
	cfg config.ForumConfig,
	logger *zerolog.Logger,
) *forumUC {
	return &forumUC{
		users:   users,
		topics:  topics,
		posts:   posts,
		actions: actions,
		tm:      tm,
		cfg:     cfg,
		now:     time.Now,
		log:     logger,
	}
}

func (f *forumUC) FindPost(ctx context.Context, id int64) (*model.Post, error) {
	return f.posts.FindByID(ctx, repository.NoTX, id)
}

func (f *forumUC) FindPostByNumber(ctx context.Context, topicID int64, postNumber int) (*model.Post, error) {
	return f.posts.FindByTopicAndNumber(ctx, repository.NoTX, topicID, postNumber)
}

func (f *forumUC) FindUser(ctx context.Context, id int64) (*model.User, error) {
	return f.users.FindByID(ctx, repository.NoTX, id)
}

func (f *forumUC) CreateReply(ctx context.Context, userID int64, np *model.NewPost) (*model.Post, error) {
	defer logging.TraceDuration(f.log, "ForumUC.CreateReply")()

	var msgs []string
	length := utf8.RuneCountInString(strings.TrimSpace(np.Raw))
	if length < f.cfg.MinPostLength {
		msgs = append(msgs, fmt.Sprintf("Body is too short (minimum is %d characters)", f.cfg.MinPostLength))
	}
	if f.cfg.MaxPostLength > 0 && length > f.cfg.MaxPostLength {
		msgs = append(msgs, fmt.Sprintf("Body is too long (maximum is %d characters)", f.cfg.MaxPostLength))
	}

	var created *model.Post
	err := f.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		topic, err := f.topics.FindByIDForUpdate(ctx, tx, np.TopicID)
		if errors.Is(err, domain.ErrNotFound) {
			msgs = append(msgs, "Topic does not exist")
		} else if err != nil {
			return err
		} else if topic.Closed {
			msgs = append(msgs, "Topic is closed")
		}
		if len(msgs) > 0 {
			return domain.NewValidationError(msgs...)
		}
		p, err := f.posts.Create(ctx, tx, userID, np)
		if err != nil {
			return err
		}
		created = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	f.log.Info().Int64("user_id", userID).Int64("post_id", created.ID).Int64("topic_id", created.TopicID).Msg("reply created")
	return created, nil
}

func (f *forumUC) Like(ctx context.Context, userID, postID int64) error {
	defer logging.TraceDuration(f.log, "ForumUC.Like")()

	return f.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		post, err := f.posts.FindByID(ctx, tx, postID)
		if err != nil {
			return err
		}
		if post.UserID == userID {
			return domain.ErrInvalidAccess
		}
		a := &model.PostAction{PostID: postID, UserID: userID, ActionType: model.PostActionLike}
		if err := f.actions.Create(ctx, tx, a); err != nil {
			return err
		}
		return f.posts.AdjustLikeCount(ctx, tx, postID, 1)
	})
}

func (f *forumUC) Unlike(ctx context.Context, userID, postID int64) error {
	defer logging.TraceDuration(f.log, "ForumUC.Unlike")()

	return f.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		user, err := f.users.FindByID(ctx, tx, userID)
		if err != nil {
			return err
		}
		a, err := f.actions.FindActive(ctx, tx, userID, postID, model.PostActionLike)
		if err != nil {
			return err
		}
		if !a.CanBeRemovedBy(user, f.cfg.UndoActionWindow, f.now()) {
			return domain.ErrInvalidAccess
		}
		if err := f.actions.Remove(ctx, tx, a.ID); err != nil {
			return err
		}
		return f.posts.AdjustLikeCount(ctx, tx, postID, -1)
	})
}
