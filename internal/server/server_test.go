package server

import (
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"ripple/internal/config"
	"ripple/internal/database"
	"ripple/internal/models"
	"ripple/internal/repository"
	"ripple/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// newTestServer builds a Server backed by an in-memory sqlite database with
// the full repository and service stack wired, but no Redis and no metrics.
func newTestServer(t *testing.T) (*Server, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(database.Models()...); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}

	s := &Server{
		config:           &config.Config{JWTSecret: "test-secret"},
		db:               db,
		userRepo:         repository.NewUserRepository(db),
		followRepo:       repository.NewFollowRepository(db),
		blockRepo:        repository.NewBlockRepository(db),
		postRepo:         repository.NewPostRepository(db),
		commentRepo:      repository.NewCommentRepository(db),
		likeRepo:         repository.NewLikeRepository(db),
		notificationRepo: repository.NewNotificationRepository(db),
		chatRepo:         repository.NewChatRepository(db),
	}

	s.notificationService = service.NewNotificationService(s.notificationRepo, s.userRepo, nil)
	s.socialGraphService = service.NewSocialGraphService(s.userRepo, s.followRepo, s.blockRepo, s.notificationService)
	s.commentService = service.NewCommentService(s.commentRepo, s.postRepo, s.userRepo, s.blockRepo, s.notificationService)
	s.postService = service.NewPostService(s.postRepo, s.commentRepo, s.likeRepo, s.userRepo, s.blockRepo, s.notificationService)
	s.chatService = service.NewChatService(s.chatRepo, s.userRepo, s.blockRepo, s.notificationService)

	return s, db
}

// withRedis attaches a Redis client to a test server.
func withRedis(s *Server, client *redis.Client) {
	s.redis = client
}

// newAuthedApp returns a fiber app whose middleware authenticates every
// request as the given user, mirroring what AuthRequired does after a
// successful token check.
func newAuthedApp(userID uint) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("userID", userID)
		return c.Next()
	})
	return app
}

// createTestUser inserts a user with sensible defaults.
func createTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{
		Name:     username,
		Username: username,
		Email:    username + "@example.com",
		Password: "hashed-password",
		Role:     models.RoleUser,
		Status:   models.UserStatusActive,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return user
}

func createTestPost(t *testing.T, db *gorm.DB, userID uint, content string) *models.Post {
	t.Helper()
	post := &models.Post{Content: content, UserID: userID}
	if err := db.Create(post).Error; err != nil {
		t.Fatalf("create post: %v", err)
	}
	return post
}

// decodeEnvelope reads the response body into the standard API envelope.
func decodeEnvelope(t *testing.T, resp *http.Response) models.APIResponse {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	var envelope models.APIResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		t.Fatalf("decode envelope: %v (body: %s)", err, body)
	}
	return envelope
}
