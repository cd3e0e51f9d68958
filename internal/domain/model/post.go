package model

import (
	"fmt"
	"strings"
	"time"
)

// Topic is a forum thread.
type Topic struct {
	ID     int64
	Title  string
	Slug   string
	Closed bool
}

// Post is a single forum post within a topic.
type Post struct {
	ID         int64
	TopicID    int64
	TopicSlug  string
	PostNumber int
	UserID     int64
	Raw        string
	LikeCount  int
	CreatedAt  time.Time
}

func (p *Post) IsZero() bool { return p == nil || p.ID == 0 }

// URL returns the absolute link to the post on the forum.
func (p *Post) URL(baseURL string) string {
	slug := p.TopicSlug
	if slug == "" {
		slug = "topic"
	}
	return fmt.Sprintf("%s/t/%s/%d/%d", strings.TrimRight(baseURL, "/"), slug, p.TopicID, p.PostNumber)
}

// NewPost is a reply submitted on behalf of a user.
type NewPost struct {
	Raw               string
	TopicID           int64
	ReplyToPostNumber int
}

// PostActionType enumerates post actions; only likes are relayed.
type PostActionType int

const PostActionLike PostActionType = 2

// PostAction records a user acting on a post.
type PostAction struct {
	ID         int64
	PostID     int64
	UserID     int64
	ActionType PostActionType
	CreatedAt  time.Time
	DeletedAt  *time.Time
}

// CanBeRemovedBy reports whether u may undo the action at now.
// Only the owner may remove it and only inside the undo window.
func (a *PostAction) CanBeRemovedBy(u *User, window time.Duration, now time.Time) bool {
	if a == nil || u.IsZero() || a.DeletedAt != nil {
		return false
	}
	if a.UserID != u.ID {
		return false
	}
	if window > 0 && now.Sub(a.CreatedAt) > window {
		return false
	}
	return true
}
