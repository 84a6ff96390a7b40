package server

import (
	"github.com/gofiber/fiber/v2"

	"rtrove/internal/models"
)

// GetForumPosts handles GET /api/projects/:id/forum
func (s *Server) GetForumPosts(c *fiber.Ctx) error {
	return c.JSON(s.store.GetForumPosts(c.Params("id")))
}

// CreateForumPost handles POST /api/projects/:id/forum
func (s *Server) CreateForumPost(c *fiber.Ctx) error {
	var req struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	if !parseBody(c, &req) {
		return nil
	}
	userID, username := actor(c)
	post, err := s.store.AddForumPost(c.UserContext(), c.Params("id"), req.Title, req.Content, userID, username)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// GetForumPost handles GET /api/forum/:id
func (s *Server) GetForumPost(c *fiber.Ctx) error {
	post, err := s.store.GetForumPost(c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(post)
}

// UpdateForumPost handles PATCH /api/forum/:id
func (s *Server) UpdateForumPost(c *fiber.Ctx) error {
	var patch models.ForumPostPatch
	if !parseBody(c, &patch) {
		return nil
	}
	post, err := s.store.UpdateForumPost(c.UserContext(), c.Params("id"), patch)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(post)
}

// DeleteForumPost handles DELETE /api/forum/:id
func (s *Server) DeleteForumPost(c *fiber.Ctx) error {
	if err := s.store.DeleteForumPost(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetForumThread handles GET /api/forum/:id/comments. Comments come back in
// reading order with their reply depth.
func (s *Server) GetForumThread(c *fiber.Ctx) error {
	thread, err := s.store.ForumThread(c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(thread)
}

// CreateForumComment handles POST /api/forum/:id/comments
func (s *Server) CreateForumComment(c *fiber.Ctx) error {
	var req struct {
		Content  string  `json:"content"`
		ParentID *string `json:"parentId"`
	}
	if !parseBody(c, &req) {
		return nil
	}
	post, err := s.store.GetForumPost(c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	userID, username := actor(c)
	comment, err := s.store.AddForumComment(c.UserContext(), post.ProjectID, post.ID, req.Content, userID, username, req.ParentID)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

// UpdateForumComment handles PATCH /api/forum/comments/:commentId
func (s *Server) UpdateForumComment(c *fiber.Ctx) error {
	var req struct {
		Content string `json:"content"`
	}
	if !parseBody(c, &req) {
		return nil
	}
	if err := s.store.UpdateForumComment(c.UserContext(), c.Params("commentId"), req.Content); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// DeleteForumComment handles DELETE /api/forum/comments/:commentId
func (s *Server) DeleteForumComment(c *fiber.Ctx) error {
	if err := s.store.DeleteForumComment(c.UserContext(), c.Params("commentId")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
