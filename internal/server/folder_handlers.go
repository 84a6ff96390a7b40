package server

import (
	"github.com/gofiber/fiber/v2"

	"rtrove/internal/models"
)

// GetFolderViews handles GET /api/folders
func (s *Server) GetFolderViews(c *fiber.Ctx) error {
	return c.JSON(s.store.GetFolderViews())
}

// CreateFolderView handles POST /api/folders
func (s *Server) CreateFolderView(c *fiber.Ctx) error {
	var view models.FolderView
	if !parseBody(c, &view) {
		return nil
	}
	created, err := s.store.CreateFolderView(c.UserContext(), view)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

// UpdateFolderView handles PUT /api/folders/:id
func (s *Server) UpdateFolderView(c *fiber.Ctx) error {
	var view models.FolderView
	if !parseBody(c, &view) {
		return nil
	}
	view.ID = c.Params("id")
	if err := s.store.UpdateFolderView(c.UserContext(), view); err != nil {
		return respondError(c, err)
	}
	return c.JSON(view)
}

// DeleteFolderView handles DELETE /api/folders/:id
func (s *Server) DeleteFolderView(c *fiber.Ctx) error {
	if err := s.store.DeleteFolderView(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetFolderFeed handles GET /api/folders/:id/feed
func (s *Server) GetFolderFeed(c *fiber.Ctx) error {
	items, err := s.store.ApplyFolderView(c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(items)
}

// FilterFeed handles POST /api/folders/feed with ad-hoc filters.
func (s *Server) FilterFeed(c *fiber.Ctx) error {
	var filters models.FolderFilters
	if !parseBody(c, &filters) {
		return nil
	}
	return c.JSON(s.store.FilterFeed(filters))
}
