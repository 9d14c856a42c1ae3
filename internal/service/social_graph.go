package service

import (
	"context"

	"ripple/internal/models"
	"ripple/internal/repository"
)

// FollowAction is the action a follow toggle resolved to.
type FollowAction string

const (
	// ActionFollow indicates a new follow edge was created.
	ActionFollow FollowAction = "follow"
	// ActionUnfollow indicates an existing follow edge was removed.
	ActionUnfollow FollowAction = "unfollow"
)

// FollowResult tells the caller which way a toggle resolved and which records
// were touched, so clients can update denormalized counters without a reload.
type FollowResult struct {
	Action   FollowAction `json:"actionType"`
	FollowID uint         `json:"followId"`
	TargetID uint         `json:"following"`
}

// SocialGraphService maintains follow and block relationships between users.
type SocialGraphService struct {
	userRepo      repository.UserRepository
	followRepo    repository.FollowRepository
	blockRepo     repository.BlockRepository
	notifications *NotificationService
}

// NewSocialGraphService returns a new SocialGraphService.
func NewSocialGraphService(
	userRepo repository.UserRepository,
	followRepo repository.FollowRepository,
	blockRepo repository.BlockRepository,
	notifications *NotificationService,
) *SocialGraphService {
	return &SocialGraphService{
		userRepo:      userRepo,
		followRepo:    followRepo,
		blockRepo:     blockRepo,
		notifications: notifications,
	}
}

// ToggleFollow follows the target if not yet followed, and unfollows
// otherwise. A target that has blocked the actor cannot be followed.
// Following dispatches a follow notification; unfollowing retracts it.
func (s *SocialGraphService) ToggleFollow(ctx context.Context, actorID uint, targetUsername string) (*FollowResult, error) {
	target, err := s.userRepo.GetByUsername(ctx, targetUsername)
	if err != nil {
		return nil, err
	}
	if target.ID == actorID {
		return nil, models.NewValidationError("You cannot follow yourself")
	}

	blocked, err := s.blockRepo.HasBlocked(ctx, target.ID, actorID)
	if err != nil {
		return nil, err
	}
	if blocked {
		return nil, models.NewForbiddenError("You're not allowed to follow this user")
	}

	existing, err := s.followRepo.GetByPair(ctx, actorID, target.ID)
	if err != nil {
		return nil, err
	}

	if existing != nil {
		if err := s.followRepo.Delete(ctx, existing.ID); err != nil {
			return nil, err
		}
		if err := s.notifications.Retract(ctx, repository.NotificationMatch{
			Kind:        models.NotificationFollow,
			RecipientID: &target.ID,
			SenderID:    &actorID,
		}); err != nil {
			return nil, err
		}
		return &FollowResult{Action: ActionUnfollow, FollowID: existing.ID, TargetID: target.ID}, nil
	}

	follow := &models.Follow{FollowerID: actorID, FollowedID: target.ID}
	if err := s.followRepo.Create(ctx, follow); err != nil {
		return nil, err
	}
	if err := s.notifications.Dispatch(ctx, DispatchInput{
		Kind:        models.NotificationFollow,
		RecipientID: target.ID,
		SenderID:    actorID,
	}); err != nil {
		return nil, err
	}

	return &FollowResult{Action: ActionFollow, FollowID: follow.ID, TargetID: target.ID}, nil
}

// ListFollowers returns the users following the named user, with embedded
// summaries. Non-active accounts are included; their status lets clients
// render them without a profile link or follow action.
func (s *SocialGraphService) ListFollowers(ctx context.Context, username string) ([]models.Follow, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.followRepo.ListFollowers(ctx, user.ID)
}

// ListFollowing returns the users the named user follows.
func (s *SocialGraphService) ListFollowing(ctx context.Context, username string) ([]models.Follow, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.followRepo.ListFollowing(ctx, user.ID)
}

// BlockUser records a block placed by the actor on the target. Blocking
// severs any follow relationship between the pair in both directions.
func (s *SocialGraphService) BlockUser(ctx context.Context, actorID uint, targetUsername string) (*models.UserBlock, error) {
	target, err := s.userRepo.GetByUsername(ctx, targetUsername)
	if err != nil {
		return nil, err
	}
	if target.ID == actorID {
		return nil, models.NewValidationError("You cannot block yourself")
	}

	existing, err := s.blockRepo.GetByPair(ctx, actorID, target.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewValidationError("User is already blocked")
	}

	block := &models.UserBlock{BlockerID: actorID, BlockedID: target.ID}
	if err := s.blockRepo.Create(ctx, block); err != nil {
		return nil, err
	}

	if err := s.followRepo.RemoveBetween(ctx, actorID, target.ID); err != nil {
		return nil, err
	}

	return block, nil
}

// UnblockUser removes a block previously placed by the actor on the target.
func (s *SocialGraphService) UnblockUser(ctx context.Context, actorID uint, targetUsername string) error {
	target, err := s.userRepo.GetByUsername(ctx, targetUsername)
	if err != nil {
		return err
	}

	block, err := s.blockRepo.GetByPair(ctx, actorID, target.ID)
	if err != nil {
		return err
	}
	if block == nil {
		return models.NewNotFoundError("Block", targetUsername)
	}

	return s.blockRepo.Delete(ctx, block.ID)
}
