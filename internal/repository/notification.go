package repository

import (
	"context"

	"ripple/internal/models"

	"gorm.io/gorm"
)

// NotificationMatch selects notifications by their triggering entity rather
// than by notification ID. Nil pointer fields are not constrained.
type NotificationMatch struct {
	Kind        models.NotificationKind
	RecipientID *uint
	SenderID    *uint
	PostID      *uint
	CommentID   *uint
}

// NotificationRepository defines the interface for notification data operations
type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	DeleteMatching(ctx context.Context, match NotificationMatch) error
	DeleteByPost(ctx context.Context, postID uint) error
	ListByRecipient(ctx context.Context, recipientID uint, limit, offset int) ([]models.Notification, error)
	CountByRecipient(ctx context.Context, recipientID uint) (int64, error)
	MarkAllSeen(ctx context.Context, recipientID uint) error
}

type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	if err := r.db.WithContext(ctx).Create(notification).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// DeleteMatching removes every notification matching the triggering entity.
// Deleting zero rows is a successful no-op, which makes retraction idempotent.
func (r *notificationRepository) DeleteMatching(ctx context.Context, match NotificationMatch) error {
	q := r.db.WithContext(ctx).Where("kind = ?", match.Kind)
	if match.RecipientID != nil {
		q = q.Where("recipient_id = ?", *match.RecipientID)
	}
	if match.SenderID != nil {
		q = q.Where("sender_id = ?", *match.SenderID)
	}
	if match.PostID != nil {
		q = q.Where("post_id = ?", *match.PostID)
	}
	if match.CommentID != nil {
		q = q.Where("comment_id = ?", *match.CommentID)
	}
	if err := q.Delete(&models.Notification{}).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// DeleteByPost removes every notification referencing the post, regardless of
// kind or recipient. Used when a post is deleted.
func (r *notificationRepository) DeleteByPost(ctx context.Context, postID uint) error {
	if err := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Delete(&models.Notification{}).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *notificationRepository) ListByRecipient(ctx context.Context, recipientID uint, limit, offset int) ([]models.Notification, error) {
	var notifications []models.Notification
	if err := r.db.WithContext(ctx).
		Preload("Sender").
		Where("recipient_id = ?", recipientID).
		Order("created_at desc").
		Limit(limit).
		Offset(offset).
		Find(&notifications).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return notifications, nil
}

func (r *notificationRepository) CountByRecipient(ctx context.Context, recipientID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("recipient_id = ?", recipientID).
		Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func (r *notificationRepository) MarkAllSeen(ctx context.Context, recipientID uint) error {
	if err := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("recipient_id = ? AND seen = ?", recipientID, false).
		Update("seen", true).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
