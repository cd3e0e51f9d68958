package usecase

import (
	"context"
	"fmt"

	"telegram-forum-notifier/internal/domain/model"
	"telegram-forum-notifier/internal/domain/ports/adapter"
	"telegram-forum-notifier/internal/domain/ports/repository"
)

const (
	ActionLike   = "like"
	ActionUnlike = "unlike"
)

// KeyboardBuilder renders the inline keyboard attached to post messages:
// one row with "View online" and a Like/Unlike toggle.
type KeyboardBuilder struct {
	actions repository.PostActionRepository
	fmt     *MessageFormatter
	baseURL string
}

func NewKeyboardBuilder(actions repository.PostActionRepository, f *MessageFormatter, baseURL string) *KeyboardBuilder {
	return &KeyboardBuilder{actions: actions, fmt: f, baseURL: baseURL}
}

// Build looks up whether userID currently likes post and renders the keyboard.
func (b *KeyboardBuilder) Build(ctx context.Context, post *model.Post, userID int64) ([][]adapter.InlineButton, error) {
	n, err := b.actions.CountByUser(ctx, repository.NoTX, userID, post.ID, model.PostActionLike)
	if err != nil {
		return nil, fmt.Errorf("like state for post %d: %w", post.ID, err)
	}
	return b.Render(post, n > 0), nil
}

// Render is the pure part of Build.
func (b *KeyboardBuilder) Render(post *model.Post, liked bool) [][]adapter.InlineButton {
	label, action := b.fmt.Label(labelLike), ActionLike
	if liked {
		label, action = b.fmt.Label(labelUnlike), ActionUnlike
	}
	return [][]adapter.InlineButton{{
		{Text: b.fmt.Label(labelViewOnline), URL: post.URL(b.baseURL)},
		{Text: label, Data: CallbackData(action, post.ID)},
	}}
}

// CallbackData encodes "<action>:<post_id>".
func CallbackData(action string, postID int64) string {
	return fmt.Sprintf("%s:%d", action, postID)
}
