package server

import (
	"errors"

	"flock/internal/models"
	"flock/internal/pagination"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// parseID extracts a route parameter as a positive uint. On failure it
// writes a 400 response and returns errResponseWritten; callers should
// check: if err != nil { return nil }.
func (s *Server) parseID(c *fiber.Ctx, param, label string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, models.NewValidationError("Invalid "+label))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// currentUserID returns the authenticated user ID set by AuthRequired.
func currentUserID(c *fiber.Ctx) uint {
	return c.Locals("userID").(uint)
}

// parseFeedParams extracts limit and cursor query parameters. A missing or
// non-numeric limit falls back to the engine default; the engine itself caps
// oversized values. A missing cursor means the first page.
func parseFeedParams(c *fiber.Ctx) (limit int, cursor uint) {
	limit = c.QueryInt("limit", pagination.DefaultLimit)

	raw := c.QueryInt("cursor", 0)
	if raw > 0 {
		cursor = uint(raw)
	}
	return limit, cursor
}

// feedResponse writes the paginated envelope. nextCursor is null on the
// final page; clients must stop there.
func feedResponse(c *fiber.Ctx, message string, posts []models.Post, next *uint) error {
	return c.JSON(fiber.Map{
		"success":    true,
		"message":    message,
		"data":       posts,
		"nextCursor": next,
	})
}
