package usecase

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"telegram-forum-notifier/internal/domain"
	"telegram-forum-notifier/internal/domain/model"
	"telegram-forum-notifier/internal/domain/ports/repository"
	"telegram-forum-notifier/internal/infra/logging"
	"telegram-forum-notifier/internal/infra/metrics"
)

// Compile-time check
var _ ChatLinkUseCase = (*chatLinkUC)(nil)

// ChatLinkUseCase correlates forum users with Telegram chats and sent
// messages with forum posts. Every read goes to the store.
type ChatLinkUseCase interface {
	// BindChat stores chatID for userID, replacing any previous binding.
	BindChat(ctx context.Context, userID int64, chatID string) error
	ResolveUser(ctx context.Context, chatID string) (userID int64, found bool, err error)
	ChatFor(ctx context.Context, userID int64) (chatID string, found bool, err error)
	RecordMessage(ctx context.Context, messageID int, postID int64) error
	ResolvePost(ctx context.Context, messageID int) (postID int64, found bool, err error)
}

type chatLinkUC struct {
	users    repository.UserRepository
	bindings repository.ChatBindingRepository
	links    repository.MessageLinkRepository
	log      *zerolog.Logger
}

func NewChatLinkUseCase(users repository.UserRepository, bindings repository.ChatBindingRepository, links repository.MessageLinkRepository, logger *zerolog.Logger) *chatLinkUC {
	return &chatLinkUC{users: users, bindings: bindings, links: links, log: logger}
}

func (c *chatLinkUC) BindChat(ctx context.Context, userID int64, chatID string) error {
	defer logging.TraceDuration(c.log, "ChatLinkUC.BindChat")()

	b, err := model.NewChatBinding(userID, chatID)
	if err != nil {
		return err
	}
	if _, err := c.users.FindByID(ctx, repository.NoTX, userID); err != nil {
		return err
	}
	if err := c.bindings.Save(ctx, repository.NoTX, b); err != nil {
		return err
	}
	c.log.Info().Int64("user_id", userID).Msg("telegram chat bound")
	return nil
}

func (c *chatLinkUC) ResolveUser(ctx context.Context, chatID string) (int64, bool, error) {
	id, err := c.bindings.FindUserIDByChatID(ctx, repository.NoTX, chatID)
	return id, found("chat", err), ignoreNotFound(err)
}

func (c *chatLinkUC) ChatFor(ctx context.Context, userID int64) (string, bool, error) {
	b, err := c.bindings.FindByUserID(ctx, repository.NoTX, userID)
	if err != nil {
		return "", found("binding", err), ignoreNotFound(err)
	}
	return b.ChatID, found("binding", nil), nil
}

func (c *chatLinkUC) RecordMessage(ctx context.Context, messageID int, postID int64) error {
	return c.links.Save(ctx, messageID, postID)
}

func (c *chatLinkUC) ResolvePost(ctx context.Context, messageID int) (int64, bool, error) {
	id, err := c.links.FindPostID(ctx, messageID)
	return id, found("message", err), ignoreNotFound(err)
}

// found records the lookup result and reports a hit.
func found(kind string, err error) bool {
	switch {
	case err == nil:
		metrics.IncLinkLookup(kind, "hit")
		return true
	case errors.Is(err, domain.ErrNotFound):
		metrics.IncLinkLookup(kind, "miss")
	default:
		metrics.IncLinkLookup(kind, "error")
	}
	return false
}

func ignoreNotFound(err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	return err
}
