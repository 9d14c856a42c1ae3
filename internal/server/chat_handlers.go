package server

import (
	"ripple/internal/models"

	"github.com/gofiber/fiber/v2"
)

// CreateChat handles POST /api/chats. Creating a chat with a user you already
// have a chat with returns the existing chat rather than an error.
func (s *Server) CreateChat(c *fiber.Ctx) error {
	var body struct {
		Username string `json:"username"`
	}
	if err := c.BodyParser(&body); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}

	chat, err := s.chatService.CreateChat(c.Context(), currentUserID(c), body.Username)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.RespondWithData(c, fiber.StatusCreated, chat)
}

// GetChats handles GET /api/chats
func (s *Server) GetChats(c *fiber.Ctx) error {
	chats, err := s.chatService.ListChats(c.Context(), currentUserID(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.RespondWithData(c, fiber.StatusOK, fiber.Map{"chats": chats})
}

// GetMessages handles GET /api/chats/:id/messages?page=N. Fetching a page also
// marks the reader's pending messages in the chat as read.
func (s *Server) GetMessages(c *fiber.Ctx) error {
	chatID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	page, err := s.chatService.ListMessages(c.Context(), chatID, currentUserID(c), parsePage(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.RespondWithData(c, fiber.StatusOK, page)
}

// SendMessage handles POST /api/chats/:id/messages
func (s *Server) SendMessage(c *fiber.Ctx) error {
	chatID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var body struct {
		Text string `json:"text"`
	}
	if err := c.BodyParser(&body); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}

	message, err := s.chatService.SendMessage(c.Context(), chatID, currentUserID(c), body.Text)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.RespondWithData(c, fiber.StatusCreated, message)
}

// MarkChatRead handles POST /api/chats/:id/read
func (s *Server) MarkChatRead(c *fiber.Ctx) error {
	chatID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.chatService.MarkRead(c.Context(), chatID, currentUserID(c)); err != nil {
		return models.RespondWithError(c, err)
	}
	return models.RespondWithData(c, fiber.StatusOK, fiber.Map{"read": true})
}

// DisableChat handles POST /api/chats/:id/disable
func (s *Server) DisableChat(c *fiber.Ctx) error {
	chatID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	chat, err := s.chatService.DisableChat(c.Context(), chatID, currentUserID(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.RespondWithData(c, fiber.StatusOK, chat)
}

// EnableChat handles POST /api/chats/:id/enable
func (s *Server) EnableChat(c *fiber.Ctx) error {
	chatID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	chat, err := s.chatService.EnableChat(c.Context(), chatID, currentUserID(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.RespondWithData(c, fiber.StatusOK, chat)
}
