package repository

import (
	"context"
	"errors"

	"ripple/internal/models"

	"gorm.io/gorm"
)

// FollowRepository defines the interface for follow-graph data operations
type FollowRepository interface {
	Create(ctx context.Context, follow *models.Follow) error
	GetByPair(ctx context.Context, followerID, followedID uint) (*models.Follow, error)
	Delete(ctx context.Context, id uint) error
	RemoveBetween(ctx context.Context, userID1, userID2 uint) error
	ListFollowers(ctx context.Context, userID uint) ([]models.Follow, error)
	ListFollowing(ctx context.Context, userID uint) ([]models.Follow, error)
}

type followRepository struct {
	db *gorm.DB
}

// NewFollowRepository creates a new follow repository
func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db}
}

func (r *followRepository) Create(ctx context.Context, follow *models.Follow) error {
	if err := r.db.WithContext(ctx).Create(follow).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// GetByPair returns (nil, nil) when no edge exists between the pair.
func (r *followRepository) GetByPair(ctx context.Context, followerID, followedID uint) (*models.Follow, error) {
	var follow models.Follow
	if err := r.db.WithContext(ctx).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		First(&follow).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &follow, nil
}

func (r *followRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Follow{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// RemoveBetween deletes the follow edges in both directions between two users.
// Used when a block is placed: a block severs mutual visibility.
func (r *followRepository) RemoveBetween(ctx context.Context, userID1, userID2 uint) error {
	if err := r.db.WithContext(ctx).
		Where("(follower_id = ? AND followed_id = ?) OR (follower_id = ? AND followed_id = ?)",
			userID1, userID2, userID2, userID1).
		Delete(&models.Follow{}).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *followRepository) ListFollowers(ctx context.Context, userID uint) ([]models.Follow, error) {
	var follows []models.Follow
	if err := r.db.WithContext(ctx).
		Where("followed_id = ?", userID).
		Preload("Follower").
		Order("created_at desc").
		Find(&follows).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return follows, nil
}

func (r *followRepository) ListFollowing(ctx context.Context, userID uint) ([]models.Follow, error) {
	var follows []models.Follow
	if err := r.db.WithContext(ctx).
		Where("follower_id = ?", userID).
		Preload("Followed").
		Order("created_at desc").
		Find(&follows).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return follows, nil
}
