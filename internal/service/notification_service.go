// Package service contains the business logic of the application, sitting
// between the HTTP handlers and the repositories.
package service

import (
	"context"
	"encoding/json"
	"log/slog"

	"ripple/internal/middleware"
	"ripple/internal/models"
	"ripple/internal/pagination"
	"ripple/internal/repository"
)

// Realtime event names pushed to connected clients.
const (
	EventReceivedNotification = "receivedNotification"
	EventNewMessagesCounter   = "newMessagesCounterUpdated"
)

// RealtimePublisher pushes a payload to a single user's realtime channel.
// Implemented by notifications.Notifier; nil-safe at the service level so the
// application runs without Redis.
type RealtimePublisher interface {
	PublishUser(ctx context.Context, userID uint, payload string) error
}

// NotificationService creates and removes notification records as a side
// effect of interactions, and signals realtime delivery to connected clients.
type NotificationService struct {
	notificationRepo repository.NotificationRepository
	userRepo         repository.UserRepository
	publisher        RealtimePublisher
}

// DispatchInput describes a notification to create.
type DispatchInput struct {
	Kind        models.NotificationKind
	RecipientID uint
	SenderID    uint
	PostID      *uint
	CommentID   *uint
	Text        string
}

// NotificationPage is one page of a user's notification listing.
type NotificationPage struct {
	NotificationsCount int64                 `json:"notificationsCount"`
	Notifications      []models.Notification `json:"notifications"`
	IsLastPage         bool                  `json:"isLastPage"`
}

// NewNotificationService returns a new NotificationService. The publisher may
// be nil, in which case realtime delivery is skipped.
func NewNotificationService(
	notificationRepo repository.NotificationRepository,
	userRepo repository.UserRepository,
	publisher RealtimePublisher,
) *NotificationService {
	return &NotificationService{
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
		publisher:        publisher,
	}
}

// Dispatch persists a notification, flags the recipient as having unread
// notifications, and pushes a realtime event. The realtime push is
// fire-and-forget: a delivery failure is logged and never propagated to the
// triggering operation.
func (s *NotificationService) Dispatch(ctx context.Context, in DispatchInput) error {
	notification := &models.Notification{
		Kind:        in.Kind,
		RecipientID: in.RecipientID,
		SenderID:    in.SenderID,
		PostID:      in.PostID,
		CommentID:   in.CommentID,
		Text:        in.Text,
	}
	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		return err
	}
	middleware.NotificationsDispatched.WithLabelValues(string(in.Kind)).Inc()

	if err := s.userRepo.SetUnreadNotification(ctx, in.RecipientID, true); err != nil {
		return err
	}

	s.publishEvent(ctx, in.RecipientID, EventReceivedNotification, map[string]interface{}{
		"kind": in.Kind,
	})
	return nil
}

// Retract deletes the notifications matching a deleted triggering entity.
// Retracting notifications that no longer exist is a no-op, not an error.
func (s *NotificationService) Retract(ctx context.Context, match repository.NotificationMatch) error {
	return s.notificationRepo.DeleteMatching(ctx, match)
}

// RetractByPost removes every notification referencing a deleted post.
func (s *NotificationService) RetractByPost(ctx context.Context, postID uint) error {
	return s.notificationRepo.DeleteByPost(ctx, postID)
}

// List returns one page of the user's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, userID uint, page int) (*NotificationPage, error) {
	count, err := s.notificationRepo.CountByRecipient(ctx, userID)
	if err != nil {
		return nil, err
	}

	cur := pagination.ForPage(page)
	notifications, err := s.notificationRepo.ListByRecipient(ctx, userID, cur.Limit, cur.Skip)
	if err != nil {
		return nil, err
	}

	return &NotificationPage{
		NotificationsCount: count,
		Notifications:      notifications,
		IsLastPage:         pagination.IsLastPage(len(notifications)),
	}, nil
}

// MarkSeen marks all of the user's notifications as seen and clears the
// unread indicator.
func (s *NotificationService) MarkSeen(ctx context.Context, userID uint) error {
	if err := s.notificationRepo.MarkAllSeen(ctx, userID); err != nil {
		return err
	}
	return s.userRepo.SetUnreadNotification(ctx, userID, false)
}

// NotifyNewMessage flags the recipient as having unread messages and pushes
// the unread-messages counter event. No notification record is persisted; the
// message itself carries the unread state.
func (s *NotificationService) NotifyNewMessage(ctx context.Context, recipientID uint) error {
	if err := s.userRepo.SetUnreadMessage(ctx, recipientID, true); err != nil {
		return err
	}
	s.publishEvent(ctx, recipientID, EventNewMessagesCounter, nil)
	return nil
}

func (s *NotificationService) publishEvent(ctx context.Context, userID uint, event string, data map[string]interface{}) {
	if s.publisher == nil {
		return
	}

	payload, err := json.Marshal(map[string]interface{}{
		"event": event,
		"data":  data,
	})
	if err != nil {
		middleware.Logger.ErrorContext(ctx, "failed to marshal realtime event",
			slog.String("event", event), slog.String("error", err.Error()))
		return
	}

	if err := s.publisher.PublishUser(ctx, userID, string(payload)); err != nil {
		middleware.RealtimePublishFailures.Inc()
		middleware.Logger.WarnContext(ctx, "realtime publish failed",
			slog.String("event", event),
			slog.Any("recipient_id", userID),
			slog.String("error", err.Error()))
	}
}
