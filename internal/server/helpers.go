package server

import (
	"github.com/gofiber/fiber/v2"

	"rtrove/internal/models"
	"rtrove/internal/observability"
)

// respondError maps err onto its status code. Unexpected errors are logged.
func respondError(c *fiber.Ctx, err error) error {
	status := models.StatusFor(err)
	if status >= fiber.StatusInternalServerError {
		observability.GlobalLogger.ErrorContext(c.UserContext(), "request error",
			"path", c.Path(),
			"error", err,
		)
	}
	return models.RespondWithError(c, status, err)
}

// parseBody decodes the JSON body into out, writing a 400 on failure.
// Callers should return nil when ok is false.
func parseBody(c *fiber.Ctx, out any) bool {
	if err := c.BodyParser(out); err != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
		return false
	}
	return true
}

// actor returns the id and username stored by AuthRequired.
func actor(c *fiber.Ctx) (string, string) {
	id, _ := c.Locals("userID").(string)
	name, _ := c.Locals("username").(string)
	return id, name
}

func publicUsers(users []models.User) []models.User {
	out := make([]models.User, len(users))
	for i, u := range users {
		out[i] = u.Public()
	}
	return out
}

func publicUser(u *models.User) *models.User {
	if u == nil {
		return nil
	}
	p := u.Public()
	return &p
}
