package repository

import (
	"context"
	"errors"

	"ripple/internal/models"

	"gorm.io/gorm"
)

// ChatRepository defines the interface for chat and message data operations
type ChatRepository interface {
	Create(ctx context.Context, chat *models.Chat) error
	GetByID(ctx context.Context, id uint) (*models.Chat, error)
	GetByPair(ctx context.Context, userID1, userID2 uint) (*models.Chat, error)
	ListByUser(ctx context.Context, userID uint) ([]models.Chat, error)
	SetStatus(ctx context.Context, chatID uint, status models.ChatStatus, disabledBy *uint) error
	CreateMessage(ctx context.Context, message *models.Message) error
	ListMessages(ctx context.Context, chatID uint, limit, offset int) ([]models.Message, error)
	CountMessages(ctx context.Context, chatID uint) (int64, error)
	MarkMessagesRead(ctx context.Context, chatID, recipientID uint) error
	HasUnreadMessages(ctx context.Context, recipientID uint) (bool, error)
}

type chatRepository struct {
	db *gorm.DB
}

// NewChatRepository creates a new chat repository
func NewChatRepository(db *gorm.DB) ChatRepository {
	return &chatRepository{db: db}
}

func (r *chatRepository) Create(ctx context.Context, chat *models.Chat) error {
	if err := r.db.WithContext(ctx).Create(chat).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *chatRepository) GetByID(ctx context.Context, id uint) (*models.Chat, error) {
	var chat models.Chat
	if err := r.db.WithContext(ctx).
		Preload("Creator").
		Preload("Partner").
		First(&chat, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Chat", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &chat, nil
}

// GetByPair returns the chat linking two users in either direction, or (nil, nil).
func (r *chatRepository) GetByPair(ctx context.Context, userID1, userID2 uint) (*models.Chat, error) {
	var chat models.Chat
	if err := r.db.WithContext(ctx).
		Where("(creator_id = ? AND partner_id = ?) OR (creator_id = ? AND partner_id = ?)",
			userID1, userID2, userID2, userID1).
		Preload("Creator").
		Preload("Partner").
		First(&chat).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &chat, nil
}

func (r *chatRepository) ListByUser(ctx context.Context, userID uint) ([]models.Chat, error) {
	var chats []models.Chat
	if err := r.db.WithContext(ctx).
		Where("creator_id = ? OR partner_id = ?", userID, userID).
		Preload("Creator").
		Preload("Partner").
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("messages.created_at DESC").Limit(1)
		}).
		Order("updated_at desc").
		Find(&chats).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return chats, nil
}

func (r *chatRepository) SetStatus(ctx context.Context, chatID uint, status models.ChatStatus, disabledBy *uint) error {
	updates := map[string]interface{}{
		"status":         status,
		"disabled_by_id": disabledBy,
	}
	if err := r.db.WithContext(ctx).
		Model(&models.Chat{}).
		Where("id = ?", chatID).
		Updates(updates).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *chatRepository) CreateMessage(ctx context.Context, message *models.Message) error {
	if err := r.db.WithContext(ctx).Create(message).Error; err != nil {
		return models.NewInternalError(err)
	}
	// Bump the chat so conversation lists sort by latest activity.
	if err := r.db.WithContext(ctx).
		Model(&models.Chat{}).
		Where("id = ?", message.ChatID).
		Update("updated_at", message.CreatedAt).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *chatRepository) ListMessages(ctx context.Context, chatID uint, limit, offset int) ([]models.Message, error) {
	var messages []models.Message
	if err := r.db.WithContext(ctx).
		Preload("Sender").
		Where("chat_id = ?", chatID).
		Order("created_at desc").
		Limit(limit).
		Offset(offset).
		Find(&messages).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return messages, nil
}

func (r *chatRepository) CountMessages(ctx context.Context, chatID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("chat_id = ?", chatID).
		Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func (r *chatRepository) MarkMessagesRead(ctx context.Context, chatID, recipientID uint) error {
	if err := r.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("chat_id = ? AND recipient_id = ? AND unread = ?", chatID, recipientID, true).
		Update("unread", false).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// HasUnreadMessages reports whether any chat still holds unread messages for
// the user, so the per-user unread indicator can be cleared only when the last
// one is read.
func (r *chatRepository) HasUnreadMessages(ctx context.Context, recipientID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("recipient_id = ? AND unread = ?", recipientID, true).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}
