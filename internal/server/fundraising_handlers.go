package server

import (
	"github.com/gofiber/fiber/v2"
)

// GetFundraisingGoal handles GET /api/projects/:id/goal
func (s *Server) GetFundraisingGoal(c *fiber.Ctx) error {
	if _, err := s.store.GetProjectByID(c.Params("id")); err != nil {
		return respondError(c, err)
	}
	goal, ok := s.store.GetProjectFundraisingGoal(c.Params("id"))
	if !ok {
		return c.JSON(fiber.Map{"goal": nil})
	}
	return c.JSON(fiber.Map{"goal": goal})
}

// SetFundraisingGoal handles PUT /api/projects/:id/goal
func (s *Server) SetFundraisingGoal(c *fiber.Ctx) error {
	var req struct {
		Goal float64 `json:"goal"`
	}
	if !parseBody(c, &req) {
		return nil
	}
	if err := s.store.SetProjectFundraisingGoal(c.UserContext(), c.Params("id"), req.Goal); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"goal": req.Goal})
}

// GetCommitments handles GET /api/projects/:id/commitments
func (s *Server) GetCommitments(c *fiber.Ctx) error {
	return c.JSON(s.store.GetProjectCommitments(c.Params("id")))
}

// AddCommitment handles POST /api/projects/:id/commitments
func (s *Server) AddCommitment(c *fiber.Ctx) error {
	var req struct {
		Amount float64 `json:"amount"`
	}
	if !parseBody(c, &req) {
		return nil
	}
	userID, _ := actor(c)
	commitment, err := s.store.AddUserContribution(c.UserContext(), c.Params("id"), userID, req.Amount)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(commitment)
}

// GetCommitmentSummary handles GET /api/projects/:id/commitments/summary
func (s *Server) GetCommitmentSummary(c *fiber.Ctx) error {
	summary, err := s.store.GetCommitmentSummary(c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(summary)
}
