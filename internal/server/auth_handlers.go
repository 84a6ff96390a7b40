package server

import (
	"github.com/gofiber/fiber/v2"
)

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register handles POST /api/auth/register
func (s *Server) Register(c *fiber.Ctx) error {
	var req credentials
	if !parseBody(c, &req) {
		return nil
	}
	user, err := s.store.Register(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(publicUser(user))
}

// Login handles POST /api/auth/login
func (s *Server) Login(c *fiber.Ctx) error {
	var req credentials
	if !parseBody(c, &req) {
		return nil
	}
	user, err := s.store.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(publicUser(user))
}

// Logout handles POST /api/auth/logout
func (s *Server) Logout(c *fiber.Ctx) error {
	if err := s.store.Logout(c.UserContext()); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Me handles GET /api/auth/me. It answers null while signed out.
func (s *Server) Me(c *fiber.Ctx) error {
	return c.JSON(publicUser(s.store.CurrentUser()))
}
