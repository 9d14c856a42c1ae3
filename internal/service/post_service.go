package service

import (
	"context"
	"strings"

	"ripple/internal/models"
	"ripple/internal/pagination"
	"ripple/internal/repository"
)

const maxPostLen = 10000

// PostService manages posts and likes. Deleting a post cascades through its
// comments, likes, subscriptions and notifications.
type PostService struct {
	postRepo      repository.PostRepository
	commentRepo   repository.CommentRepository
	likeRepo      repository.LikeRepository
	userRepo      repository.UserRepository
	blockRepo     repository.BlockRepository
	notifications *NotificationService
}

// CreatePostInput carries the parameters for CreatePost.
type CreatePostInput struct {
	UserID   uint
	Content  string
	Location string
	ImageURL string
}

// PostPage is one page of a user's post listing.
type PostPage struct {
	Posts      []*models.Post `json:"posts"`
	IsLastPage bool           `json:"isLastPage"`
}

// LikeResult reports the outcome of a like toggle.
type LikeResult struct {
	Action string `json:"actionType"`
	PostID uint   `json:"postId"`
}

// NewPostService returns a new PostService.
func NewPostService(
	postRepo repository.PostRepository,
	commentRepo repository.CommentRepository,
	likeRepo repository.LikeRepository,
	userRepo repository.UserRepository,
	blockRepo repository.BlockRepository,
	notifications *NotificationService,
) *PostService {
	return &PostService{
		postRepo:      postRepo,
		commentRepo:   commentRepo,
		likeRepo:      likeRepo,
		userRepo:      userRepo,
		blockRepo:     blockRepo,
		notifications: notifications,
	}
}

// CreatePost creates a post for the given user.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" && in.ImageURL == "" {
		return nil, models.NewValidationError("The post cannot be empty")
	}
	if len(content) > maxPostLen {
		return nil, models.NewValidationError("Post too long (max 10000 characters)")
	}

	post := &models.Post{
		Content:  content,
		Location: strings.TrimSpace(in.Location),
		ImageURL: in.ImageURL,
		UserID:   in.UserID,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, post.ID)
}

// GetPost returns a post with its author and counts.
func (s *PostService) GetPost(ctx context.Context, postID uint) (*models.Post, error) {
	return s.postRepo.GetByID(ctx, postID)
}

// ListUserPosts returns one page of a user's posts, newest first.
func (s *PostService) ListUserPosts(ctx context.Context, username string, page int) (*PostPage, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	cur := pagination.ForPage(page)
	posts, err := s.postRepo.GetByUserID(ctx, user.ID, cur.Limit, cur.Skip)
	if err != nil {
		return nil, err
	}

	return &PostPage{
		Posts:      posts,
		IsLastPage: pagination.IsLastPage(len(posts)),
	}, nil
}

// DeletePost removes a post. Only the owner or an admin may delete. The
// post's comments, likes, subscriptions and every notification referencing
// the post are removed with it.
func (s *PostService) DeletePost(ctx context.Context, postID, actorID uint) error {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return err
	}

	if post.UserID != actorID {
		user, err := s.userRepo.GetByID(ctx, actorID)
		if err != nil {
			return err
		}
		if !user.IsAdmin() {
			return models.NewForbiddenError("You're not allowed to perform this task")
		}
	}

	if err := s.commentRepo.DeleteByPost(ctx, postID); err != nil {
		return err
	}
	if err := s.likeRepo.DeleteByPost(ctx, postID); err != nil {
		return err
	}
	if err := s.postRepo.DeleteSubscriptions(ctx, postID); err != nil {
		return err
	}
	if err := s.notifications.RetractByPost(ctx, postID); err != nil {
		return err
	}
	return s.postRepo.Delete(ctx, postID)
}

// ToggleLike likes a post, or removes an existing like by the same user. A
// like notifies the post owner; removing it retracts that notification.
func (s *PostService) ToggleLike(ctx context.Context, postID, userID uint) (*LikeResult, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	blocked, err := s.blockRepo.HasBlocked(ctx, post.UserID, userID)
	if err != nil {
		return nil, err
	}
	if blocked {
		return nil, models.NewForbiddenError("You're not allowed to interact with this post")
	}

	existing, err := s.likeRepo.GetByPair(ctx, userID, postID)
	if err != nil {
		return nil, err
	}

	if existing != nil {
		if err := s.likeRepo.Delete(ctx, existing.ID); err != nil {
			return nil, err
		}
		if err := s.notifications.Retract(ctx, repository.NotificationMatch{
			Kind:        models.NotificationLike,
			RecipientID: &post.UserID,
			SenderID:    &userID,
			PostID:      &postID,
		}); err != nil {
			return nil, err
		}
		return &LikeResult{Action: "unlike", PostID: postID}, nil
	}

	like := &models.Like{UserID: userID, PostID: postID}
	if err := s.likeRepo.Create(ctx, like); err != nil {
		return nil, err
	}

	if post.UserID != userID {
		if err := s.notifications.Dispatch(ctx, DispatchInput{
			Kind:        models.NotificationLike,
			RecipientID: post.UserID,
			SenderID:    userID,
			PostID:      &postID,
		}); err != nil {
			return nil, err
		}
	}

	return &LikeResult{Action: "like", PostID: postID}, nil
}
