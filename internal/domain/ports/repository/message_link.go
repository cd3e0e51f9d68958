package repository

import "context"

// MessageLinkRepository maps sent Telegram message ids to forum post ids.
type MessageLinkRepository interface {
	Save(ctx context.Context, messageID int, postID int64) error
	// FindPostID returns domain.ErrNotFound when no link exists.
	FindPostID(ctx context.Context, messageID int) (int64, error)
}
