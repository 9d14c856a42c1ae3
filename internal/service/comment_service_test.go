package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"ripple/internal/models"
	"ripple/internal/pagination"
	"ripple/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// commentRepoStub is a stub for repository.CommentRepository.
type commentRepoStub struct {
	createFn       func(context.Context, *models.Comment) error
	getByIDFn      func(context.Context, uint) (*models.Comment, error)
	listByPostFn   func(context.Context, uint, int, int) ([]*models.Comment, error)
	countByPostFn  func(context.Context, uint) (int64, error)
	updateFn       func(context.Context, *models.Comment) error
	appendEditFn   func(context.Context, *models.CommentEdit) error
	deleteFn       func(context.Context, uint) error
	deleteByPostFn func(context.Context, uint) error
}

func (s *commentRepoStub) Create(ctx context.Context, comment *models.Comment) error {
	return s.createFn(ctx, comment)
}
func (s *commentRepoStub) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	return s.getByIDFn(ctx, id)
}
func (s *commentRepoStub) ListByPost(ctx context.Context, postID uint, limit, offset int) ([]*models.Comment, error) {
	return s.listByPostFn(ctx, postID, limit, offset)
}
func (s *commentRepoStub) CountByPost(ctx context.Context, postID uint) (int64, error) {
	return s.countByPostFn(ctx, postID)
}
func (s *commentRepoStub) Update(ctx context.Context, comment *models.Comment) error {
	return s.updateFn(ctx, comment)
}
func (s *commentRepoStub) AppendEdit(ctx context.Context, edit *models.CommentEdit) error {
	return s.appendEditFn(ctx, edit)
}
func (s *commentRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *commentRepoStub) DeleteByPost(ctx context.Context, postID uint) error {
	return s.deleteByPostFn(ctx, postID)
}

func noopCommentRepo() *commentRepoStub {
	return &commentRepoStub{
		createFn:  func(_ context.Context, _ *models.Comment) error { return nil },
		getByIDFn: func(_ context.Context, id uint) (*models.Comment, error) { return &models.Comment{ID: id}, nil },
		listByPostFn: func(_ context.Context, _ uint, _, _ int) ([]*models.Comment, error) {
			return nil, nil
		},
		countByPostFn:  func(_ context.Context, _ uint) (int64, error) { return 0, nil },
		updateFn:       func(_ context.Context, _ *models.Comment) error { return nil },
		appendEditFn:   func(_ context.Context, _ *models.CommentEdit) error { return nil },
		deleteFn:       func(_ context.Context, _ uint) error { return nil },
		deleteByPostFn: func(_ context.Context, _ uint) error { return nil },
	}
}

func newCommentService(commentRepo repository.CommentRepository, postRepo repository.PostRepository, userRepo repository.UserRepository, blockRepo repository.BlockRepository) *CommentService {
	return NewCommentService(commentRepo, postRepo, userRepo, blockRepo, noopNotificationService())
}

func TestCommentService_CreateComment_Validation(t *testing.T) {
	t.Parallel()

	svc := newCommentService(noopCommentRepo(), noopPostRepo(), noopUserRepo(), noopBlockRepo())
	ctx := context.Background()

	t.Run("empty text", func(t *testing.T) {
		t.Parallel()
		_, err := svc.CreateComment(ctx, CreateCommentInput{AuthorID: 1, PostID: 1, Text: "   "})
		assertValidationError(t, err)
	})

	t.Run("text too long", func(t *testing.T) {
		t.Parallel()
		_, err := svc.CreateComment(ctx, CreateCommentInput{
			AuthorID: 1,
			PostID:   1,
			Text:     strings.Repeat("x", maxCommentLen+1),
		})
		assertValidationError(t, err)
	})

	t.Run("missing post is not found", func(t *testing.T) {
		t.Parallel()
		postRepo := noopPostRepo()
		postRepo.getByIDFn = func(_ context.Context, id uint) (*models.Post, error) {
			return nil, models.NewNotFoundError("Post", id)
		}
		svc2 := newCommentService(noopCommentRepo(), postRepo, noopUserRepo(), noopBlockRepo())
		_, err := svc2.CreateComment(ctx, CreateCommentInput{AuthorID: 1, PostID: 99, Text: "hi"})
		assertNotFoundError(t, err)
	})

	t.Run("blocked author is forbidden", func(t *testing.T) {
		t.Parallel()
		postRepo := noopPostRepo()
		postRepo.getByIDFn = func(_ context.Context, id uint) (*models.Post, error) {
			return &models.Post{ID: id, UserID: 2}, nil
		}
		blockRepo := noopBlockRepo()
		blockRepo.hasBlockedFn = func(_ context.Context, blockerID, blockedID uint) (bool, error) {
			return blockerID == 2 && blockedID == 1, nil
		}
		svc2 := newCommentService(noopCommentRepo(), postRepo, noopUserRepo(), blockRepo)
		_, err := svc2.CreateComment(ctx, CreateCommentInput{AuthorID: 1, PostID: 1, Text: "hi"})
		assertForbiddenError(t, err)
	})
}

func TestCommentService_CreateComment_SideEffects(t *testing.T) {
	t.Parallel()

	t.Run("denormalizes the post owner and subscribes the author", func(t *testing.T) {
		t.Parallel()
		postRepo := noopPostRepo()
		postRepo.getByIDFn = func(_ context.Context, id uint) (*models.Post, error) {
			return &models.Post{ID: id, UserID: 2}, nil
		}
		var subscribedUser uint
		postRepo.subscribeFn = func(_ context.Context, postID, userID uint) error {
			assert.Equal(t, uint(1), postID)
			subscribedUser = userID
			return nil
		}

		var created *models.Comment
		commentRepo := noopCommentRepo()
		commentRepo.createFn = func(_ context.Context, c *models.Comment) error {
			c.ID = 42
			created = c
			return nil
		}

		svc := newCommentService(commentRepo, postRepo, noopUserRepo(), noopBlockRepo())
		_, err := svc.CreateComment(context.Background(), CreateCommentInput{AuthorID: 3, PostID: 1, Text: "hi"})
		require.NoError(t, err)
		require.NotNil(t, created)
		assert.Equal(t, uint(2), created.PostOwnerID)
		assert.Equal(t, uint(3), subscribedUser)
	})

	t.Run("post owner commenting is not subscribed to their own post", func(t *testing.T) {
		t.Parallel()
		postRepo := noopPostRepo()
		postRepo.getByIDFn = func(_ context.Context, id uint) (*models.Post, error) {
			return &models.Post{ID: id, UserID: 2}, nil
		}
		postRepo.subscribeFn = func(_ context.Context, _, _ uint) error {
			t.Fatal("owner must not be subscribed")
			return nil
		}

		svc := newCommentService(noopCommentRepo(), postRepo, noopUserRepo(), noopBlockRepo())
		_, err := svc.CreateComment(context.Background(), CreateCommentInput{AuthorID: 2, PostID: 1, Text: "hi"})
		require.NoError(t, err)
	})

	t.Run("notifies the owner and subscribers but never the author", func(t *testing.T) {
		t.Parallel()
		postRepo := noopPostRepo()
		postRepo.getByIDFn = func(_ context.Context, id uint) (*models.Post, error) {
			return &models.Post{ID: id, UserID: 2}, nil
		}
		postRepo.listSubscriberIDsFn = func(_ context.Context, _ uint) ([]uint, error) {
			return []uint{2, 3, 4}, nil
		}

		recipients := map[uint]bool{}
		notifRepo := noopNotificationRepo()
		notifRepo.createFn = func(_ context.Context, n *models.Notification) error {
			assert.Equal(t, models.NotificationComment, n.Kind)
			recipients[n.RecipientID] = true
			return nil
		}
		notifications := NewNotificationService(notifRepo, noopUserRepo(), nil)

		svc := NewCommentService(noopCommentRepo(), postRepo, noopUserRepo(), noopBlockRepo(), notifications)
		_, err := svc.CreateComment(context.Background(), CreateCommentInput{AuthorID: 3, PostID: 1, Text: "hi"})
		require.NoError(t, err)
		assert.Equal(t, map[uint]bool{2: true, 4: true}, recipients)
	})
}

func TestCommentService_EditComment(t *testing.T) {
	t.Parallel()

	t.Run("non-author non-admin is forbidden", func(t *testing.T) {
		t.Parallel()
		commentRepo := noopCommentRepo()
		commentRepo.getByIDFn = func(_ context.Context, id uint) (*models.Comment, error) {
			return &models.Comment{ID: id, AuthorID: 10}, nil
		}
		svc := newCommentService(commentRepo, noopPostRepo(), noopUserRepo(), noopBlockRepo())
		_, err := svc.EditComment(context.Background(), EditCommentInput{EditorID: 1, CommentID: 1, Text: "new"})
		assertForbiddenError(t, err)
	})

	t.Run("author edit appends the prior text to the history", func(t *testing.T) {
		t.Parallel()
		editedAt := time.Date(2026, 2, 14, 12, 0, 0, 0, time.UTC)
		storedText := "old"
		commentRepo := noopCommentRepo()
		commentRepo.getByIDFn = func(_ context.Context, id uint) (*models.Comment, error) {
			return &models.Comment{ID: id, AuthorID: 1, Text: storedText, UpdatedAt: editedAt}, nil
		}
		commentRepo.updateFn = func(_ context.Context, c *models.Comment) error {
			storedText = c.Text
			return nil
		}
		var edit *models.CommentEdit
		commentRepo.appendEditFn = func(_ context.Context, e *models.CommentEdit) error {
			edit = e
			return nil
		}

		svc := newCommentService(commentRepo, noopPostRepo(), noopUserRepo(), noopBlockRepo())
		comment, err := svc.EditComment(context.Background(), EditCommentInput{EditorID: 1, CommentID: 1, Text: "new"})
		require.NoError(t, err)
		assert.Equal(t, "new", comment.Text)

		require.NotNil(t, edit)
		assert.Equal(t, uint(1), edit.CommentID)
		assert.Equal(t, "old", edit.Text)
		assert.Equal(t, editedAt, edit.EditedAt)
	})

	t.Run("admin can edit another user's comment", func(t *testing.T) {
		t.Parallel()
		commentRepo := noopCommentRepo()
		commentRepo.getByIDFn = func(_ context.Context, id uint) (*models.Comment, error) {
			return &models.Comment{ID: id, AuthorID: 10, Text: "old"}, nil
		}
		userRepo := noopUserRepo()
		userRepo.getByIDFn = func(_ context.Context, id uint) (*models.User, error) {
			return &models.User{ID: id, Role: models.RoleAdmin}, nil
		}
		svc := newCommentService(commentRepo, noopPostRepo(), userRepo, noopBlockRepo())
		_, err := svc.EditComment(context.Background(), EditCommentInput{EditorID: 1, CommentID: 1, Text: "new"})
		assert.NoError(t, err)
	})
}

func TestCommentService_DeleteComment(t *testing.T) {
	t.Parallel()

	comment := func() *models.Comment {
		return &models.Comment{ID: 5, AuthorID: 1, PostOwnerID: 2, PostID: 3}
	}

	t.Run("author can delete", func(t *testing.T) {
		t.Parallel()
		commentRepo := noopCommentRepo()
		commentRepo.getByIDFn = func(_ context.Context, _ uint) (*models.Comment, error) { return comment(), nil }
		svc := newCommentService(commentRepo, noopPostRepo(), noopUserRepo(), noopBlockRepo())
		got, err := svc.DeleteComment(context.Background(), 5, 1)
		require.NoError(t, err)
		assert.Equal(t, uint(5), got.ID)
	})

	t.Run("post owner can delete", func(t *testing.T) {
		t.Parallel()
		commentRepo := noopCommentRepo()
		commentRepo.getByIDFn = func(_ context.Context, _ uint) (*models.Comment, error) { return comment(), nil }
		svc := newCommentService(commentRepo, noopPostRepo(), noopUserRepo(), noopBlockRepo())
		_, err := svc.DeleteComment(context.Background(), 5, 2)
		assert.NoError(t, err)
	})

	t.Run("unrelated non-admin is forbidden", func(t *testing.T) {
		t.Parallel()
		commentRepo := noopCommentRepo()
		commentRepo.getByIDFn = func(_ context.Context, _ uint) (*models.Comment, error) { return comment(), nil }
		svc := newCommentService(commentRepo, noopPostRepo(), noopUserRepo(), noopBlockRepo())
		_, err := svc.DeleteComment(context.Background(), 5, 9)
		assertForbiddenError(t, err)
	})

	t.Run("deletion retracts notifications by comment id", func(t *testing.T) {
		t.Parallel()
		commentRepo := noopCommentRepo()
		commentRepo.getByIDFn = func(_ context.Context, _ uint) (*models.Comment, error) { return comment(), nil }

		var retracted repository.NotificationMatch
		notifRepo := noopNotificationRepo()
		notifRepo.deleteMatchingFn = func(_ context.Context, match repository.NotificationMatch) error {
			retracted = match
			return nil
		}
		notifications := NewNotificationService(notifRepo, noopUserRepo(), nil)

		svc := NewCommentService(commentRepo, noopPostRepo(), noopUserRepo(), noopBlockRepo(), notifications)
		_, err := svc.DeleteComment(context.Background(), 5, 1)
		require.NoError(t, err)
		assert.Equal(t, models.NotificationComment, retracted.Kind)
		assert.Nil(t, retracted.RecipientID)
		require.NotNil(t, retracted.CommentID)
		assert.Equal(t, uint(5), *retracted.CommentID)
	})
}

func TestCommentService_ListComments(t *testing.T) {
	t.Parallel()

	commentRepo := noopCommentRepo()
	commentRepo.countByPostFn = func(_ context.Context, _ uint) (int64, error) { return 7, nil }
	commentRepo.listByPostFn = func(_ context.Context, _ uint, limit, offset int) ([]*models.Comment, error) {
		assert.Equal(t, pagination.PageSize, limit)
		assert.Equal(t, pagination.PageSize, offset)
		return []*models.Comment{{ID: 6}, {ID: 7}}, nil
	}

	svc := newCommentService(commentRepo, noopPostRepo(), noopUserRepo(), noopBlockRepo())
	page, err := svc.ListComments(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(7), page.CommentsCount)
	assert.Len(t, page.Comments, 2)
	assert.True(t, page.IsLastPage)
}
