package repository

import (
	"context"
	"errors"

	"ripple/internal/models"

	"gorm.io/gorm"
)

// BlockRepository defines the interface for user-block data operations
type BlockRepository interface {
	Create(ctx context.Context, block *models.UserBlock) error
	GetByPair(ctx context.Context, blockerID, blockedID uint) (*models.UserBlock, error)
	Delete(ctx context.Context, id uint) error
	HasBlocked(ctx context.Context, blockerID, blockedID uint) (bool, error)
	AnyBetween(ctx context.Context, userID1, userID2 uint) (bool, error)
}

type blockRepository struct {
	db *gorm.DB
}

// NewBlockRepository creates a new block repository
func NewBlockRepository(db *gorm.DB) BlockRepository {
	return &blockRepository{db: db}
}

func (r *blockRepository) Create(ctx context.Context, block *models.UserBlock) error {
	if err := r.db.WithContext(ctx).Create(block).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// GetByPair returns (nil, nil) when no block exists in the blocker -> blocked direction.
func (r *blockRepository) GetByPair(ctx context.Context, blockerID, blockedID uint) (*models.UserBlock, error) {
	var block models.UserBlock
	if err := r.db.WithContext(ctx).
		Where("blocker_id = ? AND blocked_id = ?", blockerID, blockedID).
		First(&block).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &block, nil
}

func (r *blockRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.UserBlock{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// HasBlocked reports whether blockerID has blocked blockedID (directional).
func (r *blockRepository) HasBlocked(ctx context.Context, blockerID, blockedID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.UserBlock{}).
		Where("blocker_id = ? AND blocked_id = ?", blockerID, blockedID).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

// AnyBetween reports whether a block exists in either direction between two users.
func (r *blockRepository) AnyBetween(ctx context.Context, userID1, userID2 uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.UserBlock{}).
		Where("(blocker_id = ? AND blocked_id = ?) OR (blocker_id = ? AND blocked_id = ?)",
			userID1, userID2, userID2, userID1).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}
