package model

import (
	"strconv"

	"telegram-forum-notifier/internal/domain"
)

// NotificationType is the forum's numeric notification kind.
type NotificationType int

const (
	NotificationMentioned               NotificationType = 1
	NotificationReplied                 NotificationType = 2
	NotificationQuoted                  NotificationType = 3
	NotificationEdited                  NotificationType = 4
	NotificationLiked                   NotificationType = 5
	NotificationPrivateMessage          NotificationType = 6
	NotificationInvitedToPrivateMessage NotificationType = 7
	NotificationInviteeAccepted         NotificationType = 8
	NotificationPosted                  NotificationType = 9
	NotificationMovedPost               NotificationType = 10
	NotificationLinked                  NotificationType = 11
	NotificationGrantedBadge            NotificationType = 12
	NotificationInvitedToTopic          NotificationType = 13
	NotificationCustom                  NotificationType = 14
	NotificationGroupMentioned          NotificationType = 15
	NotificationGroupMessageSummary     NotificationType = 16
	NotificationWatchingFirstPost       NotificationType = 17
	NotificationTopicReminder           NotificationType = 18
	NotificationLikedConsolidated       NotificationType = 19
	NotificationPostApproved            NotificationType = 20
)

var notificationNames = map[NotificationType]string{
	NotificationMentioned:               "mentioned",
	NotificationReplied:                 "replied",
	NotificationQuoted:                  "quoted",
	NotificationEdited:                  "edited",
	NotificationLiked:                   "liked",
	NotificationPrivateMessage:          "private_message",
	NotificationInvitedToPrivateMessage: "invited_to_private_message",
	NotificationInviteeAccepted:         "invitee_accepted",
	NotificationPosted:                  "posted",
	NotificationMovedPost:               "moved_post",
	NotificationLinked:                  "linked",
	NotificationGrantedBadge:            "granted_badge",
	NotificationInvitedToTopic:          "invited_to_topic",
	NotificationCustom:                  "custom",
	NotificationGroupMentioned:          "group_mentioned",
	NotificationGroupMessageSummary:     "group_message_summary",
	NotificationWatchingFirstPost:       "watching_first_post",
	NotificationTopicReminder:           "topic_reminder",
	NotificationLikedConsolidated:       "liked_consolidated",
	NotificationPostApproved:            "post_approved",
}

// Name returns the identifier used in settings and locale keys.
func (t NotificationType) Name() string {
	if n, ok := notificationNames[t]; ok {
		return n
	}
	return strconv.Itoa(int(t))
}

func (t NotificationType) Known() bool {
	_, ok := notificationNames[t]
	return ok
}

// NotificationEvent is what the forum hands over when it alerts a user.
type NotificationEvent struct {
	UserID           int64            `json:"user_id"`
	NotificationType NotificationType `json:"notification_type"`
	TopicID          int64            `json:"topic_id"`
	TopicTitle       string           `json:"topic_title"`
	PostNumber       int              `json:"post_number"`
	PostURL          string           `json:"post_url"`
	Excerpt          string           `json:"excerpt"`
	Username         string           `json:"username"`
}

func (e *NotificationEvent) Validate() error {
	if e == nil || e.UserID <= 0 || e.TopicID <= 0 || e.PostNumber <= 0 {
		return domain.ErrInvalidArgument
	}
	return nil
}
