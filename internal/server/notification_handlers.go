package server

import (
	"ripple/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetNotifications handles GET /api/notifications?page=N
func (s *Server) GetNotifications(c *fiber.Ctx) error {
	page, err := s.notificationService.List(c.Context(), currentUserID(c), parsePage(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.RespondWithData(c, fiber.StatusOK, page)
}

// MarkNotificationsSeen handles POST /api/notifications/seen
func (s *Server) MarkNotificationsSeen(c *fiber.Ctx) error {
	if err := s.notificationService.MarkSeen(c.Context(), currentUserID(c)); err != nil {
		return models.RespondWithError(c, err)
	}
	return models.RespondWithData(c, fiber.StatusOK, fiber.Map{"seen": true})
}
