package server

import (
	"fmt"
	"log/slog"

	"flock/internal/cache"
	"flock/internal/images"
	"flock/internal/models"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

const suggestedUsersSample = 10

// GetUserProfile handles GET /api/user/userProfile/:username
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	username := c.Params("username")

	user, err := s.userRepo.GetByUsername(c.UserContext(), username)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "User fetched",
		"data":    user,
	})
}

// GetSuggestedUsers handles GET /api/user/suggested: a random sample of
// users the requester does not already follow. The sample is cached briefly
// per requester so sidebar reloads do not hammer the store.
func (s *Server) GetSuggestedUsers(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := currentUserID(c)

	var suggested []models.User
	err := cache.Aside(ctx, cache.SuggestedUsersKey(userID), &suggested, cache.SuggestedUsersTTL, func() error {
		me, err := s.userRepo.GetByID(ctx, userID)
		if err != nil {
			return err
		}

		sample, err := s.userRepo.Sample(ctx, userID, suggestedUsersSample)
		if err != nil {
			return err
		}

		suggested = make([]models.User, 0, len(sample))
		for _, u := range sample {
			if !me.Following.Contains(u.ID) {
				suggested = append(suggested, u)
			}
		}
		return nil
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Users fetched",
		"data":    suggested,
	})
}

// FollowUser handles POST /api/user/followUser/:id. The endpoint toggles:
// following when not yet followed, unfollowing otherwise.
func (s *Server) FollowUser(c *fiber.Ctx) error {
	targetID, err := s.parseID(c, "id", "user ID")
	if err != nil {
		return nil
	}

	result, err := s.social.ToggleFollow(c.UserContext(), currentUserID(c), targetID)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	message := fmt.Sprintf("You unfollowed %s", result.Target.FullName)
	if result.Following {
		message = fmt.Sprintf("You followed %s", result.Target.FullName)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": message,
	})
}

// ChangePassword handles PUT /api/user/changePassword. A successful change
// refreshes the session cookie.
func (s *Server) ChangePassword(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := currentUserID(c)

	var req struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}

	if req.CurrentPassword == "" || req.NewPassword == "" {
		return models.RespondWithError(c,
			models.NewValidationError("Please provide your current and new password"))
	}
	if req.CurrentPassword == req.NewPassword {
		return models.RespondWithError(c,
			models.NewValidationError("Your current and new password must not be the same"))
	}
	if len(req.NewPassword) < minPasswordLength {
		return models.RespondWithError(c, models.NewValidationError(
			fmt.Sprintf("Password must be %d or more characters", minPasswordLength)))
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.CurrentPassword)); err != nil {
		return models.RespondWithError(c,
			models.NewValidationError("Current password is incorrect"))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return models.RespondWithError(c, models.NewInternalError(err))
	}
	if err := s.userRepo.UpdatePassword(ctx, userID, string(hash)); err != nil {
		return models.RespondWithError(c, err)
	}

	if err := s.issueSession(c, userID); err != nil {
		return models.RespondWithError(c, models.NewInternalError(err))
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Password changed successfully. Your access token has been refreshed",
	})
}

// UpdateInfo handles POST /api/user/updateInfo. Image fields go through the
// blob host: the previous blob is destroyed best effort (a failure is
// logged, never fatal), but a failed upload of the replacement aborts the
// whole update.
func (s *Server) UpdateInfo(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := currentUserID(c)

	var req struct {
		FullName   string `json:"fullname"`
		Email      string `json:"email"`
		Bio        string `json:"bio"`
		Link       string `json:"link"`
		ProfileImg string `json:"profileImg"`
		CoverImg   string `json:"coverImg"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	if req.Email != "" {
		if req.Email == user.Email {
			return models.RespondWithError(c,
				models.NewValidationError("Email must not be the same as the old one"))
		}
		if other, taken, err := s.userRepo.FindByEmail(ctx, req.Email); err != nil {
			return models.RespondWithError(c, err)
		} else if taken && other.ID != userID {
			return models.RespondWithError(c, models.NewConflictError("Email is already taken"))
		}
		user.Email = req.Email
	}

	if req.ProfileImg != "" {
		url, err := s.replaceImage(c, user.ProfileImg, req.ProfileImg)
		if err != nil {
			return models.RespondWithError(c, models.NewInternalError(err))
		}
		user.ProfileImg = url
	}
	if req.CoverImg != "" {
		url, err := s.replaceImage(c, user.CoverImg, req.CoverImg)
		if err != nil {
			return models.RespondWithError(c, models.NewInternalError(err))
		}
		user.CoverImg = url
	}

	if req.FullName != "" {
		user.FullName = req.FullName
	}
	if req.Bio != "" {
		user.Bio = req.Bio
	}
	if req.Link != "" {
		user.Link = req.Link
	}

	if err := s.userRepo.UpdateProfile(ctx, user); err != nil {
		return models.RespondWithError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Profile updated successfully",
		"data":    user,
	})
}

// replaceImage uploads the new source and destroys the old blob, in that
// order of importance: the upload must succeed, the destroy is best effort.
func (s *Server) replaceImage(c *fiber.Ctx, oldURL, source string) (string, error) {
	ctx := c.UserContext()

	if oldURL != "" {
		if err := s.uploader.Destroy(ctx, images.PublicID(oldURL)); err != nil {
			slog.WarnContext(ctx, "old image destroy failed", "url", oldURL, "error", err)
		}
	}
	return s.uploader.Upload(ctx, source)
}
