package service

import (
	"context"
	"strings"

	"ripple/internal/models"
	"ripple/internal/pagination"
	"ripple/internal/repository"
)

const maxMessageLen = 5000

// ChatService manages direct-message chats between two users.
type ChatService struct {
	chatRepo      repository.ChatRepository
	userRepo      repository.UserRepository
	blockRepo     repository.BlockRepository
	notifications *NotificationService
}

// MessagePage is one page of a chat's messages.
type MessagePage struct {
	MessagesCount int64            `json:"messagesCount"`
	Messages      []models.Message `json:"messages"`
	IsLastPage    bool             `json:"isLastPage"`
}

// NewChatService returns a new ChatService.
func NewChatService(
	chatRepo repository.ChatRepository,
	userRepo repository.UserRepository,
	blockRepo repository.BlockRepository,
	notifications *NotificationService,
) *ChatService {
	return &ChatService{
		chatRepo:      chatRepo,
		userRepo:      userRepo,
		blockRepo:     blockRepo,
		notifications: notifications,
	}
}

// CreateChat opens a chat between the creator and the named partner. If a
// chat between the pair already exists, in either direction, it is returned
// instead of creating a duplicate.
func (s *ChatService) CreateChat(ctx context.Context, creatorID uint, partnerUsername string) (*models.Chat, error) {
	partner, err := s.userRepo.GetByUsername(ctx, partnerUsername)
	if err != nil {
		return nil, err
	}
	if partner.ID == creatorID {
		return nil, models.NewValidationError("You cannot open a chat with yourself")
	}

	anyBlock, err := s.blockRepo.AnyBetween(ctx, creatorID, partner.ID)
	if err != nil {
		return nil, err
	}
	if anyBlock {
		return nil, models.NewForbiddenError("You're not allowed to chat with this user")
	}

	existing, err := s.chatRepo.GetByPair(ctx, creatorID, partner.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	chat := &models.Chat{
		CreatorID: creatorID,
		PartnerID: partner.ID,
		Status:    models.ChatActive,
	}
	if err := s.chatRepo.Create(ctx, chat); err != nil {
		return nil, err
	}
	return s.chatRepo.GetByID(ctx, chat.ID)
}

// ListChats returns the user's chats, most recently active first.
func (s *ChatService) ListChats(ctx context.Context, userID uint) ([]models.Chat, error) {
	return s.chatRepo.ListByUser(ctx, userID)
}

// SendMessage appends a message to a chat. The sender must be a participant
// and the chat must be active. The recipient's unread-message flag is set and
// their messages counter event is published.
func (s *ChatService) SendMessage(ctx context.Context, chatID, senderID uint, text string) (*models.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, models.NewValidationError("The message cannot be empty")
	}
	if len(text) > maxMessageLen {
		return nil, models.NewValidationError("Message too long (max 5000 characters)")
	}

	chat, err := s.chatRepo.GetByID(ctx, chatID)
	if err != nil {
		return nil, err
	}

	recipientID, err := partnerOf(chat, senderID)
	if err != nil {
		return nil, err
	}
	if chat.Status != models.ChatActive {
		return nil, models.NewValidationError("This chat is disabled")
	}

	msg := &models.Message{
		ChatID:      chat.ID,
		SenderID:    senderID,
		RecipientID: recipientID,
		Text:        text,
	}
	if err := s.chatRepo.CreateMessage(ctx, msg); err != nil {
		return nil, err
	}

	if err := s.notifications.NotifyNewMessage(ctx, recipientID); err != nil {
		return nil, err
	}
	return msg, nil
}

// ListMessages returns one page of a chat's messages, newest first, and marks
// the reader's unread messages in the chat as read.
func (s *ChatService) ListMessages(ctx context.Context, chatID, readerID uint, page int) (*MessagePage, error) {
	chat, err := s.chatRepo.GetByID(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if _, err := partnerOf(chat, readerID); err != nil {
		return nil, err
	}

	count, err := s.chatRepo.CountMessages(ctx, chatID)
	if err != nil {
		return nil, err
	}

	cur := pagination.ForPage(page)
	messages, err := s.chatRepo.ListMessages(ctx, chatID, cur.Limit, cur.Skip)
	if err != nil {
		return nil, err
	}

	if err := s.markRead(ctx, chat, readerID); err != nil {
		return nil, err
	}

	return &MessagePage{
		MessagesCount: count,
		Messages:      messages,
		IsLastPage:    pagination.IsLastPage(len(messages)),
	}, nil
}

// MarkRead clears the actor's unread messages in a chat they participate in.
func (s *ChatService) MarkRead(ctx context.Context, chatID, readerID uint) error {
	chat, err := s.chatRepo.GetByID(ctx, chatID)
	if err != nil {
		return err
	}
	if _, err := partnerOf(chat, readerID); err != nil {
		return err
	}
	return s.markRead(ctx, chat, readerID)
}

// markRead clears the reader's unread messages in the chat and, when no
// unread messages remain anywhere, their unread-message flag.
func (s *ChatService) markRead(ctx context.Context, chat *models.Chat, readerID uint) error {
	if err := s.chatRepo.MarkMessagesRead(ctx, chat.ID, readerID); err != nil {
		return err
	}
	pending, err := s.chatRepo.HasUnreadMessages(ctx, readerID)
	if err != nil {
		return err
	}
	if !pending {
		if err := s.userRepo.SetUnreadMessage(ctx, readerID, false); err != nil {
			return err
		}
	}
	return nil
}

// DisableChat deactivates a chat. Either participant may disable; the chat
// records who did it so only they can re-enable.
func (s *ChatService) DisableChat(ctx context.Context, chatID, actorID uint) (*models.Chat, error) {
	chat, err := s.chatRepo.GetByID(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if _, err := partnerOf(chat, actorID); err != nil {
		return nil, err
	}
	if chat.Status == models.ChatInactive {
		return nil, models.NewValidationError("This chat is already disabled")
	}

	if err := s.chatRepo.SetStatus(ctx, chatID, models.ChatInactive, &actorID); err != nil {
		return nil, err
	}
	return s.chatRepo.GetByID(ctx, chatID)
}

// EnableChat reactivates a disabled chat. Only the participant who disabled
// it may re-enable it.
func (s *ChatService) EnableChat(ctx context.Context, chatID, actorID uint) (*models.Chat, error) {
	chat, err := s.chatRepo.GetByID(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if _, err := partnerOf(chat, actorID); err != nil {
		return nil, err
	}
	if chat.Status == models.ChatActive {
		return nil, models.NewValidationError("This chat is already active")
	}
	if chat.DisabledByID != nil && *chat.DisabledByID != actorID {
		return nil, models.NewForbiddenError("Only the user who disabled the chat can enable it")
	}

	if err := s.chatRepo.SetStatus(ctx, chatID, models.ChatActive, nil); err != nil {
		return nil, err
	}
	return s.chatRepo.GetByID(ctx, chatID)
}

// partnerOf returns the other participant of a chat, or a forbidden error if
// the user is not in the chat.
func partnerOf(chat *models.Chat, userID uint) (uint, error) {
	switch userID {
	case chat.CreatorID:
		return chat.PartnerID, nil
	case chat.PartnerID:
		return chat.CreatorID, nil
	default:
		return 0, models.NewForbiddenError("You're not a participant of this chat")
	}
}
