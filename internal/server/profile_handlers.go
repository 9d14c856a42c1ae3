package server

import (
	"ripple/internal/models"

	"github.com/gofiber/fiber/v2"
)

// ToggleFollow handles GET /api/profile/follow/:username. A single endpoint
// toggles the edge: it follows when no edge exists and unfollows otherwise,
// reporting which action was taken.
func (s *Server) ToggleFollow(c *fiber.Ctx) error {
	username := c.Params("username")

	result, err := s.socialGraphService.ToggleFollow(c.Context(), currentUserID(c), username)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.RespondWithData(c, fiber.StatusOK, result)
}

// GetFollowers handles GET /api/profile/followers/:username
func (s *Server) GetFollowers(c *fiber.Ctx) error {
	username := c.Params("username")

	follows, err := s.socialGraphService.ListFollowers(c.Context(), username)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	followers := make([]models.UserSummary, 0, len(follows))
	for _, f := range follows {
		followers = append(followers, f.Follower.Summary())
	}
	return models.RespondWithData(c, fiber.StatusOK, fiber.Map{"followers": followers})
}

// GetFollowing handles GET /api/profile/following/:username
func (s *Server) GetFollowing(c *fiber.Ctx) error {
	username := c.Params("username")

	follows, err := s.socialGraphService.ListFollowing(c.Context(), username)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	following := make([]models.UserSummary, 0, len(follows))
	for _, f := range follows {
		following = append(following, f.Followed.Summary())
	}
	return models.RespondWithData(c, fiber.StatusOK, fiber.Map{"following": following})
}

// BlockUser handles POST /api/profile/block/:username
func (s *Server) BlockUser(c *fiber.Ctx) error {
	username := c.Params("username")

	block, err := s.socialGraphService.BlockUser(c.Context(), currentUserID(c), username)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.RespondWithData(c, fiber.StatusCreated, block)
}

// UnblockUser handles DELETE /api/profile/block/:username
func (s *Server) UnblockUser(c *fiber.Ctx) error {
	username := c.Params("username")

	if err := s.socialGraphService.UnblockUser(c.Context(), currentUserID(c), username); err != nil {
		return models.RespondWithError(c, err)
	}
	return models.RespondWithData(c, fiber.StatusOK, fiber.Map{"unblocked": username})
}
