package service

import (
	"context"
	"strings"

	"ripple/internal/models"
	"ripple/internal/pagination"
	"ripple/internal/repository"
)

const maxCommentLen = 10000

// CommentService creates, edits, deletes and lists comments, maintaining the
// edit-history log and the notification side effects of each interaction.
type CommentService struct {
	commentRepo   repository.CommentRepository
	postRepo      repository.PostRepository
	userRepo      repository.UserRepository
	blockRepo     repository.BlockRepository
	notifications *NotificationService
}

// CreateCommentInput carries the parameters for CreateComment.
type CreateCommentInput struct {
	AuthorID uint
	PostID   uint
	Text     string
}

// EditCommentInput carries the parameters for EditComment.
type EditCommentInput struct {
	EditorID  uint
	CommentID uint
	Text      string
}

// CommentPage is one page of a post's comment listing.
type CommentPage struct {
	CommentsCount int64             `json:"commentsCount"`
	Comments      []*models.Comment `json:"comments"`
	IsLastPage    bool              `json:"isLastPage"`
}

// NewCommentService returns a new CommentService.
func NewCommentService(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
	blockRepo repository.BlockRepository,
	notifications *NotificationService,
) *CommentService {
	return &CommentService{
		commentRepo:   commentRepo,
		postRepo:      postRepo,
		userRepo:      userRepo,
		blockRepo:     blockRepo,
		notifications: notifications,
	}
}

// CreateComment creates a comment on a post. The author is subscribed to the
// post's future comments (unless they own it), and a new-comment notification
// goes to the post owner and the post's other subscribers, never the author.
func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, models.NewValidationError("The comment cannot be empty")
	}
	if len(text) > maxCommentLen {
		return nil, models.NewValidationError("Comment too long (max 10000 characters)")
	}

	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, err
	}

	blocked, err := s.blockRepo.HasBlocked(ctx, post.UserID, in.AuthorID)
	if err != nil {
		return nil, err
	}
	if blocked {
		return nil, models.NewForbiddenError("You're not allowed to comment on this post")
	}

	comment := &models.Comment{
		Text:        text,
		PostID:      post.ID,
		PostOwnerID: post.UserID,
		AuthorID:    in.AuthorID,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	if err := s.subscribeAuthor(ctx, post, in.AuthorID); err != nil {
		return nil, err
	}
	if err := s.notifyNewComment(ctx, post, comment); err != nil {
		return nil, err
	}

	return s.commentRepo.GetByID(ctx, comment.ID)
}

// subscribeAuthor opts a commenting user into the post's future comment
// notifications, unless they own the post or are already subscribed.
func (s *CommentService) subscribeAuthor(ctx context.Context, post *models.Post, authorID uint) error {
	if authorID == post.UserID {
		return nil
	}
	subscribed, err := s.postRepo.IsSubscribed(ctx, post.ID, authorID)
	if err != nil {
		return err
	}
	if subscribed {
		return nil
	}
	return s.postRepo.Subscribe(ctx, post.ID, authorID)
}

func (s *CommentService) notifyNewComment(ctx context.Context, post *models.Post, comment *models.Comment) error {
	recipients := map[uint]struct{}{}
	if post.UserID != comment.AuthorID {
		recipients[post.UserID] = struct{}{}
	}

	subscriberIDs, err := s.postRepo.ListSubscriberIDs(ctx, post.ID)
	if err != nil {
		return err
	}
	for _, id := range subscriberIDs {
		if id == comment.AuthorID || id == post.UserID {
			continue
		}
		recipients[id] = struct{}{}
	}

	for recipientID := range recipients {
		if err := s.notifications.Dispatch(ctx, DispatchInput{
			Kind:        models.NotificationComment,
			RecipientID: recipientID,
			SenderID:    comment.AuthorID,
			PostID:      &post.ID,
			CommentID:   &comment.ID,
			Text:        comment.Text,
		}); err != nil {
			return err
		}
	}
	return nil
}

// EditComment replaces a comment's text. Only the author or an admin may
// edit. The prior text and its timestamp are appended to the edit history
// before the new text is applied.
func (s *CommentService) EditComment(ctx context.Context, in EditCommentInput) (*models.Comment, error) {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, models.NewValidationError("The comment cannot be empty")
	}
	if len(text) > maxCommentLen {
		return nil, models.NewValidationError("Comment too long (max 10000 characters)")
	}

	comment, err := s.commentRepo.GetByID(ctx, in.CommentID)
	if err != nil {
		return nil, err
	}

	if comment.AuthorID != in.EditorID {
		admin, err := s.isAdmin(ctx, in.EditorID)
		if err != nil {
			return nil, err
		}
		if !admin {
			return nil, models.NewForbiddenError("You're not allowed to perform this task")
		}
	}

	// Snapshot the prior text before the update replaces it.
	edit := &models.CommentEdit{
		CommentID: comment.ID,
		Text:      comment.Text,
		EditedAt:  comment.UpdatedAt,
	}
	if err := s.commentRepo.AppendEdit(ctx, edit); err != nil {
		return nil, err
	}

	comment.Text = text
	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, err
	}

	return s.commentRepo.GetByID(ctx, comment.ID)
}

// DeleteComment removes a comment and retracts its notifications, matched by
// the comment id rather than by notification id. The actor must be the
// comment author, the post owner, or an admin.
func (s *CommentService) DeleteComment(ctx context.Context, commentID, actorID uint) (*models.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}

	if comment.AuthorID != actorID && comment.PostOwnerID != actorID {
		admin, err := s.isAdmin(ctx, actorID)
		if err != nil {
			return nil, err
		}
		if !admin {
			return nil, models.NewForbiddenError("You're not allowed to perform this task")
		}
	}

	if err := s.commentRepo.Delete(ctx, commentID); err != nil {
		return nil, err
	}

	if err := s.notifications.Retract(ctx, repository.NotificationMatch{
		Kind:      models.NotificationComment,
		CommentID: &commentID,
	}); err != nil {
		return nil, err
	}

	return comment, nil
}

// ListComments returns one page of a post's comments, newest first, with the
// total count and the last-page flag.
func (s *CommentService) ListComments(ctx context.Context, postID uint, page int) (*CommentPage, error) {
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return nil, err
	}

	count, err := s.commentRepo.CountByPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	cur := pagination.ForPage(page)
	comments, err := s.commentRepo.ListByPost(ctx, postID, cur.Limit, cur.Skip)
	if err != nil {
		return nil, err
	}

	return &CommentPage{
		CommentsCount: count,
		Comments:      comments,
		IsLastPage:    pagination.IsLastPage(len(comments)),
	}, nil
}

func (s *CommentService) isAdmin(ctx context.Context, userID uint) (bool, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return false, err
	}
	return user.IsAdmin(), nil
}
