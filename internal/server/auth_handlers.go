package server

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"flock/internal/middleware"
	"flock/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	authCookieName = "jwt"
	// Sessions last 15 days; the cookie and the token expire together.
	tokenTTL          = 15 * 24 * time.Hour
	minPasswordLength = 6
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Signup handles POST /api/auth/signup
func (s *Server) Signup(c *fiber.Ctx) error {
	ctx := c.UserContext()

	var req struct {
		Username string `json:"username"`
		FullName string `json:"fullname"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}

	if req.Username == "" || req.FullName == "" || req.Email == "" || req.Password == "" {
		return models.RespondWithError(c, models.NewValidationError("Please fill all required fields"))
	}
	if !emailPattern.MatchString(req.Email) {
		return models.RespondWithError(c, models.NewValidationError("Invalid email format"))
	}
	if len(req.Password) < minPasswordLength {
		return models.RespondWithError(c, models.NewValidationError(
			fmt.Sprintf("Password must be %d or more characters", minPasswordLength)))
	}

	if _, taken, err := s.userRepo.FindByUsername(ctx, req.Username); err != nil {
		return models.RespondWithError(c, err)
	} else if taken {
		return models.RespondWithError(c, models.NewConflictError("Username is already taken"))
	}
	if _, taken, err := s.userRepo.FindByEmail(ctx, req.Email); err != nil {
		return models.RespondWithError(c, err)
	} else if taken {
		return models.RespondWithError(c, models.NewConflictError("Email is already taken"))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.RespondWithError(c, models.NewInternalError(err))
	}

	user := &models.User{
		Username: req.Username,
		FullName: req.FullName,
		Email:    req.Email,
		Password: string(hash),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return models.RespondWithError(c, err)
	}

	if err := s.issueSession(c, user.ID); err != nil {
		return models.RespondWithError(c, models.NewInternalError(err))
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Account created successfully",
		"data":    user,
	})
}

// Login handles POST /api/auth/login
func (s *Server) Login(c *fiber.Ctx) error {
	ctx := c.UserContext()

	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}

	user, found, err := s.userRepo.FindByUsername(ctx, req.Username)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	if !found {
		return models.RespondWithError(c, models.NewUnauthorizedError("Invalid credentials"))
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return models.RespondWithError(c, models.NewUnauthorizedError("Invalid credentials"))
	}

	if err := s.issueSession(c, user.ID); err != nil {
		return models.RespondWithError(c, models.NewInternalError(err))
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Logged in successfully",
		"data":    user,
	})
}

// Logout handles POST /api/auth/logout
func (s *Server) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     authCookieName,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteStrictMode,
		Secure:   s.config.IsProduction(),
	})

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Logged out successfully",
	})
}

// ValidateAccess handles GET /api/auth/validate. It simply echoes the
// authenticated user, confirming the session cookie is still good.
func (s *Server) ValidateAccess(c *fiber.Ctx) error {
	user, err := s.userRepo.GetByID(c.UserContext(), currentUserID(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Token is valid",
		"data":    user,
	})
}

// AuthRequired returns the middleware protecting routes behind the session
// cookie. It verifies the token, checks the account still exists, and
// attaches the user ID to both Fiber locals and the request context.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := c.Cookies(authCookieName)
		if tokenString == "" {
			return models.RespondWithError(c, models.NewUnauthorizedError("Unauthorized: no token detected"))
		}

		token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return []byte(s.config.JWTSecret), nil
		})
		if err != nil || !token.Valid {
			return models.RespondWithError(c, models.NewUnauthorizedError("Unauthorized: invalid or expired token"))
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return models.RespondWithError(c, models.NewUnauthorizedError("Unauthorized: invalid token claims"))
		}
		sub, ok := claims["sub"].(string)
		if !ok {
			return models.RespondWithError(c, models.NewUnauthorizedError("Unauthorized: invalid token subject"))
		}
		userID, err := strconv.ParseUint(sub, 10, 32)
		if err != nil {
			return models.RespondWithError(c, models.NewUnauthorizedError("Unauthorized: invalid token subject"))
		}

		if _, err := s.userRepo.GetByID(c.UserContext(), uint(userID)); err != nil {
			return models.RespondWithError(c, models.NewUnauthorizedError("Unauthorized: account no longer exists"))
		}

		c.Locals("userID", uint(userID))
		c.SetUserContext(context.WithValue(c.UserContext(), middleware.UserIDKey, uint(userID)))
		return c.Next()
	}
}

// issueSession generates a token for userID and sets it as the session
// cookie: http-only and same-site strict, secure outside development.
func (s *Server) issueSession(c *fiber.Ctx, userID uint) error {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": strconv.FormatUint(uint64(userID), 10),
		"iss": "flock-api",
		"exp": now.Add(tokenTTL).Unix(),
		"iat": now.Unix(),
		"nbf": now.Unix(),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return err
	}

	c.Cookie(&fiber.Cookie{
		Name:     authCookieName,
		Value:    token,
		Expires:  now.Add(tokenTTL),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteStrictMode,
		Secure:   s.config.IsProduction(),
	})
	return nil
}
