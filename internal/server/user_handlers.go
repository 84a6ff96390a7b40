package server

import (
	"github.com/gofiber/fiber/v2"

	"rtrove/internal/models"
)

// GetAllUsers handles GET /api/users
func (s *Server) GetAllUsers(c *fiber.Ctx) error {
	return c.JSON(publicUsers(s.store.GetAllUsers()))
}

// GetCreatedUsers handles GET /api/users/created
func (s *Server) GetCreatedUsers(c *fiber.Ctx) error {
	return c.JSON(publicUsers(s.store.GetCreatedUsers()))
}

// GetUser handles GET /api/users/:id
func (s *Server) GetUser(c *fiber.Ctx) error {
	user, err := s.store.GetUser(c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(publicUser(user))
}

// UpdateMyProfile handles PUT /api/users/me
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	var patch models.UserPatch
	if !parseBody(c, &patch) {
		return nil
	}
	userID, _ := actor(c)
	user, err := s.store.UpdateUserProfile(c.UserContext(), userID, patch)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(publicUser(user))
}

// DeleteMyProfile handles DELETE /api/users/me
func (s *Server) DeleteMyProfile(c *fiber.Ctx) error {
	userID, _ := actor(c)
	if err := s.store.DeleteUserProfile(c.UserContext(), userID); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// FollowUser handles POST /api/users/:id/follow
func (s *Server) FollowUser(c *fiber.Ctx) error {
	userID, _ := actor(c)
	if err := s.store.FollowUser(c.UserContext(), userID, c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// UnfollowUser handles DELETE /api/users/:id/follow
func (s *Server) UnfollowUser(c *fiber.Ctx) error {
	userID, _ := actor(c)
	if err := s.store.UnfollowUser(c.UserContext(), userID, c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetFollowers handles GET /api/users/:id/followers
func (s *Server) GetFollowers(c *fiber.Ctx) error {
	users, err := s.store.GetFollowers(c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(publicUsers(users))
}

// GetFollowing handles GET /api/users/:id/following
func (s *Server) GetFollowing(c *fiber.Ctx) error {
	users, err := s.store.GetFollowing(c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(publicUsers(users))
}

// GetUserProjects handles GET /api/users/:id/projects
func (s *Server) GetUserProjects(c *fiber.Ctx) error {
	return c.JSON(s.store.GetUserCreatedProjects(c.Params("id")))
}

// GetJoinedProjects handles GET /api/users/:id/joined
func (s *Server) GetJoinedProjects(c *fiber.Ctx) error {
	return c.JSON(s.store.GetJoinedProjects(c.Params("id")))
}

// GetLikedProjects handles GET /api/users/:id/liked
func (s *Server) GetLikedProjects(c *fiber.Ctx) error {
	return c.JSON(s.store.GetLikedProjects(c.Params("id")))
}

// GetSavedProjects handles GET /api/users/:id/saved
func (s *Server) GetSavedProjects(c *fiber.Ctx) error {
	return c.JSON(s.store.GetSavedProjects(c.Params("id")))
}

// GetUserPosts handles GET /api/users/:id/posts
func (s *Server) GetUserPosts(c *fiber.Ctx) error {
	return c.JSON(s.store.GetUserPosts(c.Params("id")))
}
