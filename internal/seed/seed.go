package seed

import (
	"fmt"
	"log"

	"ripple/internal/models"

	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumPosts    int
	ShouldClean bool
}

// Seeder populates the database with a connected social mesh of test data.
type Seeder struct {
	db      *gorm.DB
	factory *Factory
}

// NewSeeder creates a Seeder bound to the provided Gorm DB.
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db, factory: NewFactory(db)}
}

// ClearAll removes all seeded data. Order matters because of foreign keys.
func (s *Seeder) ClearAll() error {
	tables := []interface{}{
		&models.Message{},
		&models.Chat{},
		&models.Notification{},
		&models.CommentEdit{},
		&models.Comment{},
		&models.Like{},
		&models.PostSubscription{},
		&models.Post{},
		&models.Follow{},
		&models.UserBlock{},
		&models.User{},
	}
	for _, table := range tables {
		if err := s.db.Unscoped().Where("1 = 1").Delete(table).Error; err != nil {
			return fmt.Errorf("clear %T: %w", table, err)
		}
	}
	log.Println("existing data cleared")
	return nil
}

// Seed populates the database per the options: users with a follow mesh, then
// posts with comments, likes and chats layered on top.
func (s *Seeder) Seed(opts Options) error {
	if opts.ShouldClean {
		if err := s.ClearAll(); err != nil {
			return err
		}
	}

	users, err := s.SeedSocialMesh(opts.NumUsers)
	if err != nil {
		return fmt.Errorf("seed users: %w", err)
	}
	if err := s.SeedEngagement(users, opts.NumPosts); err != nil {
		return fmt.Errorf("seed engagement: %w", err)
	}
	if err := s.SeedChats(users); err != nil {
		return fmt.Errorf("seed chats: %w", err)
	}
	return nil
}

// SeedSocialMesh creates the users and a follow graph between them. The first
// user is always an admin account with a predictable login.
func (s *Seeder) SeedSocialMesh(numUsers int) ([]*models.User, error) {
	if numUsers < 2 {
		numUsers = 2
	}

	users := make([]*models.User, 0, numUsers)

	admin, err := s.factory.CreateUser(func(u *models.User) {
		u.Name = "Ripple Admin"
		u.Username = "admin"
		u.Email = "admin@ripple.local"
		u.Role = models.RoleAdmin
	})
	if err != nil {
		return nil, err
	}
	users = append(users, admin)

	for i := 1; i < numUsers; i++ {
		user, err := s.factory.CreateUser()
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	log.Printf("%d users created", len(users))

	// Each user follows roughly a third of the others.
	edges := 0
	for _, follower := range users {
		for _, followed := range users {
			if follower.ID == followed.ID || s.factory.rnd.Intn(3) != 0 {
				continue
			}
			err := s.db.Create(&models.Follow{
				FollowerID: follower.ID,
				FollowedID: followed.ID,
			}).Error
			if err != nil {
				return nil, err
			}
			edges++
		}
	}
	log.Printf("%d follow edges created", edges)

	return users, nil
}

// SeedEngagement creates posts spread across the users, then layers comments,
// edit history, likes and the notifications those interactions would produce.
func (s *Seeder) SeedEngagement(users []*models.User, numPosts int) error {
	posts := make([]*models.Post, 0, numPosts)
	for i := 0; i < numPosts; i++ {
		author := users[s.factory.rnd.Intn(len(users))]
		post, err := s.factory.CreatePost(author)
		if err != nil {
			return err
		}
		posts = append(posts, post)
	}
	log.Printf("%d posts created", len(posts))

	comments, likes := 0, 0
	for _, post := range posts {
		for _, user := range users {
			if s.factory.rnd.Intn(6) == 0 && user.ID != post.UserID {
				comment, err := s.factory.CreateComment(post, user)
				if err != nil {
					return err
				}
				comments++

				if err := s.subscribeOnce(post.ID, user.ID); err != nil {
					return err
				}
				commentID := comment.ID
				err = s.db.Create(&models.Notification{
					Kind:        models.NotificationComment,
					RecipientID: post.UserID,
					SenderID:    user.ID,
					PostID:      &post.ID,
					CommentID:   &commentID,
					Text:        comment.Text,
				}).Error
				if err != nil {
					return err
				}
			}
			if s.factory.rnd.Intn(4) == 0 {
				err := s.db.Create(&models.Like{UserID: user.ID, PostID: post.ID}).Error
				if err != nil {
					return err
				}
				likes++
				if user.ID != post.UserID {
					err = s.db.Create(&models.Notification{
						Kind:        models.NotificationLike,
						RecipientID: post.UserID,
						SenderID:    user.ID,
						PostID:      &post.ID,
					}).Error
					if err != nil {
						return err
					}
				}
			}
		}
	}
	log.Printf("%d comments and %d likes created", comments, likes)
	return nil
}

// SeedChats pairs up users into chats with a short message history.
func (s *Seeder) SeedChats(users []*models.User) error {
	chats := 0
	for i := 0; i+1 < len(users); i += 2 {
		chat, err := s.factory.CreateChat(users[i], users[i+1])
		if err != nil {
			return err
		}
		chats++

		messageCount := s.factory.rnd.Intn(10) + 2
		for m := 0; m < messageCount; m++ {
			sender := chat.CreatorID
			if m%2 == 1 {
				sender = chat.PartnerID
			}
			if _, err := s.factory.CreateMessage(chat, sender); err != nil {
				return err
			}
		}
	}
	log.Printf("%d chats created", chats)
	return nil
}

func (s *Seeder) subscribeOnce(postID, userID uint) error {
	var count int64
	err := s.db.Model(&models.PostSubscription{}).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return s.db.Create(&models.PostSubscription{PostID: postID, UserID: userID}).Error
}
