// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"math/rand"
	"time"

	"ripple/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultPassword is the plaintext password every seeded user receives.
const DefaultPassword = "password123"

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db  *gorm.DB
	rnd *rand.Rand
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{
		db:  db,
		rnd: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// pastTime returns a timestamp up to maxDays in the past, for a realistic
// created_at spread.
func (f *Factory) pastTime(maxDays int) time.Time {
	if maxDays <= 0 {
		maxDays = 90
	}
	back := time.Duration(f.rnd.Intn(maxDays))*24*time.Hour +
		time.Duration(f.rnd.Intn(24))*time.Hour +
		time.Duration(f.rnd.Intn(60))*time.Minute
	return time.Now().Add(-back)
}

// CreateUser constructs and persists a sample user. Optional override
// functions may modify the generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	name := gofakeit.Name()
	user := &models.User{
		Name:     name,
		Username: gofakeit.Username() + fmt.Sprintf("%d", gofakeit.Number(100, 999)),
		Email:    gofakeit.Email(),
		Avatar:   fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID()),
		Role:     models.RoleUser,
		Status:   models.UserStatusActive,
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}
	user.Password = string(hashedPassword)

	for _, override := range overrides {
		override(user)
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreatePost constructs and persists a sample post for the given user.
func (f *Factory) CreatePost(user *models.User, overrides ...func(*models.Post)) (*models.Post, error) {
	post := &models.Post{
		Content:   gofakeit.Paragraph(1, 3, 8, "\n"),
		Location:  gofakeit.City(),
		UserID:    user.ID,
		CreatedAt: f.pastTime(90),
	}
	if f.rnd.Intn(3) == 0 {
		post.ImageURL = fmt.Sprintf("https://picsum.photos/seed/%s/800/800", gofakeit.UUID())
	}

	for _, override := range overrides {
		override(post)
	}

	if err := f.db.Create(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

// CreateComment persists a comment by the author on the post, denormalizing
// the post owner the way the comment service does.
func (f *Factory) CreateComment(post *models.Post, author *models.User) (*models.Comment, error) {
	comment := &models.Comment{
		Text:        gofakeit.Sentence(f.rnd.Intn(12) + 3),
		PostID:      post.ID,
		PostOwnerID: post.UserID,
		AuthorID:    author.ID,
		CreatedAt:   f.pastTime(30),
	}
	if err := f.db.Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// CreateChat persists an active chat between two users.
func (f *Factory) CreateChat(creator, partner *models.User) (*models.Chat, error) {
	chat := &models.Chat{
		CreatorID: creator.ID,
		PartnerID: partner.ID,
		Status:    models.ChatActive,
	}
	if err := f.db.Create(chat).Error; err != nil {
		return nil, err
	}
	return chat, nil
}

// CreateMessage persists a message in the chat from the given sender.
func (f *Factory) CreateMessage(chat *models.Chat, senderID uint) (*models.Message, error) {
	recipientID := chat.CreatorID
	if senderID == chat.CreatorID {
		recipientID = chat.PartnerID
	}
	message := &models.Message{
		ChatID:      chat.ID,
		SenderID:    senderID,
		RecipientID: recipientID,
		Text:        gofakeit.Sentence(f.rnd.Intn(10) + 2),
		Unread:      f.rnd.Intn(2) == 0,
		CreatedAt:   f.pastTime(14),
	}
	if err := f.db.Create(message).Error; err != nil {
		return nil, err
	}
	return message, nil
}
