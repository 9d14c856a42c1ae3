package models

import "time"

// NotificationKind identifies the interaction that triggered a notification.
type NotificationKind string

const (
	// NotificationComment is sent when someone comments on a post.
	NotificationComment NotificationKind = "comment"
	// NotificationLike is sent when someone likes a post.
	NotificationLike NotificationKind = "like"
	// NotificationFollow is sent when someone follows a user.
	NotificationFollow NotificationKind = "follow"
)

// Notification is a persisted record of an interaction directed at a user.
// It is created when the interaction happens and deleted when the triggering
// entity (comment, like, follow) is deleted, so no orphaned notifications remain.
type Notification struct {
	ID          uint             `gorm:"primaryKey" json:"id"`
	Kind        NotificationKind `gorm:"type:varchar(20);not null;index" json:"kind"`
	RecipientID uint             `gorm:"not null;index" json:"recipient_id"`
	SenderID    uint             `gorm:"not null" json:"sender_id"`
	PostID      *uint            `gorm:"index" json:"post_id,omitempty"`
	CommentID   *uint            `gorm:"index" json:"comment_id,omitempty"`
	// Text carries a snippet of the triggering content (e.g. the comment text).
	Text      string    `json:"text"`
	Seen      bool      `json:"seen"`
	CreatedAt time.Time `json:"created_at"`

	// Relationships
	Sender User `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
}
