package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"ripple/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uintPtr(v uint) *uint { return &v }

func TestNotificationRepository_DeleteMatching(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	repo := NewNotificationRepository(db)
	ctx := context.Background()

	postID := uintPtr(10)
	commentID := uintPtr(20)

	seed := []models.Notification{
		{Kind: models.NotificationLike, RecipientID: 1, SenderID: 2, PostID: postID},
		{Kind: models.NotificationLike, RecipientID: 1, SenderID: 3, PostID: postID},
		{Kind: models.NotificationComment, RecipientID: 1, SenderID: 2, PostID: postID, CommentID: commentID},
		{Kind: models.NotificationFollow, RecipientID: 1, SenderID: 2},
	}
	for i := range seed {
		require.NoError(t, repo.Create(ctx, &seed[i]))
	}

	// Matching by kind + sender removes only that sender's like.
	require.NoError(t, repo.DeleteMatching(ctx, NotificationMatch{
		Kind:     models.NotificationLike,
		SenderID: uintPtr(2),
		PostID:   postID,
	}))

	var count int64
	db.Model(&models.Notification{}).Where("kind = ?", models.NotificationLike).Count(&count)
	assert.Equal(t, int64(1), count)

	// Matching by comment id removes the comment notification regardless of recipient.
	require.NoError(t, repo.DeleteMatching(ctx, NotificationMatch{
		Kind:      models.NotificationComment,
		CommentID: commentID,
	}))
	db.Model(&models.Notification{}).Where("kind = ?", models.NotificationComment).Count(&count)
	assert.Zero(t, count)

	// Deleting with no rows matched is not an error.
	require.NoError(t, repo.DeleteMatching(ctx, NotificationMatch{
		Kind:      models.NotificationComment,
		CommentID: commentID,
	}))
}

func TestNotificationRepository_DeleteByPost(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	repo := NewNotificationRepository(db)
	ctx := context.Background()

	postID := uintPtr(7)
	otherPost := uintPtr(8)
	require.NoError(t, repo.Create(ctx, &models.Notification{
		Kind: models.NotificationLike, RecipientID: 1, SenderID: 2, PostID: postID}))
	require.NoError(t, repo.Create(ctx, &models.Notification{
		Kind: models.NotificationComment, RecipientID: 1, SenderID: 3, PostID: postID}))
	require.NoError(t, repo.Create(ctx, &models.Notification{
		Kind: models.NotificationLike, RecipientID: 1, SenderID: 2, PostID: otherPost}))

	require.NoError(t, repo.DeleteByPost(ctx, *postID))

	var remaining []models.Notification
	require.NoError(t, db.Find(&remaining).Error)
	require.Len(t, remaining, 1)
	assert.Equal(t, *otherPost, *remaining[0].PostID)
}

func TestNotificationRepository_ListByRecipient(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	repo := NewNotificationRepository(db)
	ctx := context.Background()

	sender := models.User{Name: "s", Username: "sender", Email: "s@example.com", Password: "x"}
	require.NoError(t, db.Create(&sender).Error)

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 7; i++ {
		require.NoError(t, db.Create(&models.Notification{
			Kind:        models.NotificationFollow,
			RecipientID: 1,
			SenderID:    sender.ID,
			Text:        fmt.Sprintf("n%d", i),
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
		}).Error)
	}

	page, err := repo.ListByRecipient(ctx, 1, 5, 0)
	require.NoError(t, err)
	require.Len(t, page, 5)
	// Newest first.
	assert.Equal(t, "n6", page[0].Text)
	// Sender is preloaded for rendering.
	assert.Equal(t, "sender", page[0].Sender.Username)

	rest, err := repo.ListByRecipient(ctx, 1, 5, 5)
	require.NoError(t, err)
	assert.Len(t, rest, 2)

	count, err := repo.CountByRecipient(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(7), count)
}

func TestNotificationRepository_MarkAllSeen(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	repo := NewNotificationRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.Notification{
		Kind: models.NotificationLike, RecipientID: 1, SenderID: 2}))
	require.NoError(t, repo.Create(ctx, &models.Notification{
		Kind: models.NotificationLike, RecipientID: 2, SenderID: 1}))

	require.NoError(t, repo.MarkAllSeen(ctx, 1))

	var seen, unseen int64
	db.Model(&models.Notification{}).Where("recipient_id = ? AND seen = ?", 1, true).Count(&seen)
	db.Model(&models.Notification{}).Where("recipient_id = ? AND seen = ?", 2, false).Count(&unseen)
	assert.Equal(t, int64(1), seen)
	assert.Equal(t, int64(1), unseen)
}
