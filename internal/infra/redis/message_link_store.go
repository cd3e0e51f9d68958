package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"

	"telegram-forum-notifier/internal/domain"
	"telegram-forum-notifier/internal/domain/ports/repository"
)

// Namespace prefixes every key the relay writes.
const Namespace = "telegram-notifications"

var _ repository.MessageLinkRepository = (*MessageLinkStore)(nil)

// MessageLinkStore maps Telegram message ids to forum post ids.
// A zero retention keeps links forever.
type MessageLinkStore struct {
	client    RedisClient
	retention time.Duration
}

func NewMessageLinkStore(client RedisClient, retention time.Duration) *MessageLinkStore {
	if retention < 0 {
		retention = 0
	}
	return &MessageLinkStore{client: client, retention: retention}
}

func messageKey(messageID int) string {
	return fmt.Sprintf("%s:message_%d", Namespace, messageID)
}

func (s *MessageLinkStore) Save(ctx context.Context, messageID int, postID int64) error {
	if messageID <= 0 || postID <= 0 {
		return domain.ErrInvalidArgument
	}
	return s.client.Set(ctx, messageKey(messageID), strconv.FormatInt(postID, 10), s.retention)
}

func (s *MessageLinkStore) FindPostID(ctx context.Context, messageID int) (int64, error) {
	v, err := s.client.Get(ctx, messageKey(messageID))
	if errors.Is(err, redis.Nil) {
		return 0, domain.ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("message link %d holds %q: %w", messageID, v, domain.ErrNotFound)
	}
	return id, nil
}
