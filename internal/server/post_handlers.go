package server

import (
	"github.com/gofiber/fiber/v2"

	"rtrove/internal/models"
)

// ListPosts handles GET /api/posts
func (s *Server) ListPosts(c *fiber.Ctx) error {
	return c.JSON(s.store.ListPosts())
}

// GetPost handles GET /api/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	post, err := s.store.GetPost(c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(post)
}

// CreatePost handles POST /api/posts
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req struct {
		Subject   string `json:"subject"`
		Content   string `json:"content"`
		ProjectID string `json:"projectId"`
	}
	if !parseBody(c, &req) {
		return nil
	}
	userID, _ := actor(c)
	post, err := s.store.AddPost(c.UserContext(), userID, req.Content, req.Subject, req.ProjectID)
	if err != nil {
		return respondError(c, err)
	}
	// The store ignores empty posts; the API reports them.
	if post == nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Content or subject is required"))
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// DeletePost handles DELETE /api/posts/:id
func (s *Server) DeletePost(c *fiber.Ctx) error {
	if err := s.store.DeletePost(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// LikePost handles POST /api/posts/:id/like
func (s *Server) LikePost(c *fiber.Ctx) error {
	userID, _ := actor(c)
	if err := s.store.LikePost(c.UserContext(), c.Params("id"), userID); err != nil {
		return respondError(c, err)
	}
	return s.GetPost(c)
}

// UnlikePost handles DELETE /api/posts/:id/like
func (s *Server) UnlikePost(c *fiber.Ctx) error {
	userID, _ := actor(c)
	if err := s.store.UnlikePost(c.UserContext(), c.Params("id"), userID); err != nil {
		return respondError(c, err)
	}
	return s.GetPost(c)
}

// CreatePostComment handles POST /api/posts/:id/comments
func (s *Server) CreatePostComment(c *fiber.Ctx) error {
	var req struct {
		Content string `json:"content"`
	}
	if !parseBody(c, &req) {
		return nil
	}
	userID, username := actor(c)
	comment, err := s.store.AddUserPostComment(c.UserContext(), c.Params("id"), req.Content, userID, username)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

// DeletePostComment handles DELETE /api/posts/:id/comments/:commentId
func (s *Server) DeletePostComment(c *fiber.Ctx) error {
	if err := s.store.DeleteUserPostComment(c.UserContext(), c.Params("id"), c.Params("commentId")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
