package server

import (
	"flock/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetNotifications handles GET /api/notification. Listing marks the whole
// set read as a side effect: the first read flips unread to read, repeat
// reads are no-ops.
func (s *Server) GetNotifications(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := currentUserID(c)

	notifications, err := s.notifRepo.ListForUser(ctx, userID)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	if len(notifications) == 0 {
		return c.JSON(fiber.Map{
			"success": true,
			"message": "No notifications found",
			"data":    notifications,
		})
	}

	if err := s.notifRepo.MarkAllRead(ctx, userID); err != nil {
		return models.RespondWithError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Notifications fetched successfully",
		"data":    notifications,
	})
}

// DeleteNotifications handles DELETE /api/notification — everything
// addressed to the requester.
func (s *Server) DeleteNotifications(c *fiber.Ctx) error {
	if err := s.notifRepo.DeleteAllForUser(c.UserContext(), currentUserID(c)); err != nil {
		return models.RespondWithError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Notifications deleted successfully",
	})
}

// DeleteOneNotification handles DELETE /api/notification/:id. Only the
// recipient may delete a notification.
func (s *Server) DeleteOneNotification(c *fiber.Ctx) error {
	ctx := c.UserContext()
	id, err := s.parseID(c, "id", "notification ID")
	if err != nil {
		return nil
	}

	notification, err := s.notifRepo.GetByID(ctx, id)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	if notification.ToID != currentUserID(c) {
		return models.RespondWithError(c,
			models.NewForbiddenError("You cannot delete this notification"))
	}

	if err := s.notifRepo.Delete(ctx, id); err != nil {
		return models.RespondWithError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "A notification was deleted successfully",
	})
}
