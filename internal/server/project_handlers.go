package server

import (
	"github.com/gofiber/fiber/v2"

	"rtrove/internal/models"
)

// ListProjects handles GET /api/projects
func (s *Server) ListProjects(c *fiber.Ctx) error {
	return c.JSON(s.store.ListProjects())
}

// GetProject handles GET /api/projects/:id
func (s *Server) GetProject(c *fiber.Ctx) error {
	project, err := s.store.GetProjectByID(c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(project)
}

// CreateProject handles POST /api/projects
func (s *Server) CreateProject(c *fiber.Ctx) error {
	var req models.NewProject
	if !parseBody(c, &req) {
		return nil
	}
	project, err := s.store.AddProject(c.UserContext(), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(project)
}

// EditProject handles PATCH /api/projects/:id
func (s *Server) EditProject(c *fiber.Ctx) error {
	var patch models.ProjectPatch
	if !parseBody(c, &patch) {
		return nil
	}
	project, err := s.store.EditProject(c.UserContext(), c.Params("id"), patch)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(project)
}

// ReplaceProject handles PUT /api/projects/:id
func (s *Server) ReplaceProject(c *fiber.Ctx) error {
	var project models.Project
	if !parseBody(c, &project) {
		return nil
	}
	project.ID = c.Params("id")
	if err := s.store.UpdateProject(c.UserContext(), project); err != nil {
		return respondError(c, err)
	}
	updated, err := s.store.GetProjectByID(project.ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(updated)
}

// DeleteProject handles DELETE /api/projects/:id
func (s *Server) DeleteProject(c *fiber.Ctx) error {
	if err := s.store.DeleteProject(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetProjectLikes handles GET /api/projects/:id/likes
func (s *Server) GetProjectLikes(c *fiber.Ctx) error {
	return c.JSON(s.store.GetLikes(c.Params("id")))
}

// LikeProject handles POST /api/projects/:id/like
func (s *Server) LikeProject(c *fiber.Ctx) error {
	userID, _ := actor(c)
	if err := s.store.LikeProject(c.UserContext(), userID, c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"likes": s.store.GetLikes(c.Params("id"))})
}

// UnlikeProject handles DELETE /api/projects/:id/like
func (s *Server) UnlikeProject(c *fiber.Ctx) error {
	userID, _ := actor(c)
	if err := s.store.UnlikeProject(c.UserContext(), userID, c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"likes": s.store.GetLikes(c.Params("id"))})
}

// ToggleParticipation handles POST /api/projects/:id/participation
func (s *Server) ToggleParticipation(c *fiber.Ctx) error {
	userID, _ := actor(c)
	project, err := s.store.ToggleProjectParticipation(c.UserContext(), c.Params("id"), userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(project)
}

// SaveProject handles POST /api/projects/:id/save
func (s *Server) SaveProject(c *fiber.Ctx) error {
	userID, _ := actor(c)
	if err := s.store.SaveProject(c.UserContext(), userID, c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(s.store.GetSavedProjects(userID))
}

// UnsaveProject handles DELETE /api/projects/:id/save
func (s *Server) UnsaveProject(c *fiber.Ctx) error {
	userID, _ := actor(c)
	if err := s.store.UnsaveProject(c.UserContext(), userID, c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(s.store.GetSavedProjects(userID))
}

// GetProjectPosts handles GET /api/projects/:id/posts
func (s *Server) GetProjectPosts(c *fiber.Ctx) error {
	return c.JSON(s.store.GetProjectPosts(c.Params("id")))
}

// GetProjectChats handles GET /api/projects/:id/chats
func (s *Server) GetProjectChats(c *fiber.Ctx) error {
	return c.JSON(s.store.GetProjectChats(c.Params("id")))
}

// AddChat handles POST /api/projects/:id/chats
func (s *Server) AddChat(c *fiber.Ctx) error {
	var req struct {
		Content string `json:"content"`
	}
	if !parseBody(c, &req) {
		return nil
	}
	userID, _ := actor(c)
	chat, err := s.store.AddChat(c.UserContext(), c.Params("id"), userID, req.Content)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(chat)
}

// DeleteChat handles DELETE /api/projects/:id/chats/:chatId
func (s *Server) DeleteChat(c *fiber.Ctx) error {
	if err := s.store.DeleteChat(c.UserContext(), c.Params("chatId")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
