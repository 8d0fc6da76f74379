// Package server contains the HTTP handlers and route wiring for the API.
package server

import (
	"fmt"
	"time"

	"flock/internal/cache"
	"flock/internal/config"
	"flock/internal/database"
	"flock/internal/images"
	"flock/internal/middleware"
	"flock/internal/repository"
	"flock/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers.
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	promMiddleware *fiberprometheus.FiberPrometheus
	userRepo       repository.UserRepository
	postRepo       repository.PostRepository
	notifRepo      repository.NotificationRepository
	social         *service.SocialService
	uploader       images.Uploader
}

// NewServer creates a server instance, establishing database and Redis
// connections from config.
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)

	return NewServerWithDeps(cfg, db, cache.GetClient()), nil
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Tests use this with an in-memory database and miniredis.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) *Server {
	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	notifRepo := repository.NewNotificationRepository(db)

	return &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: fiberprometheus.New("flock-api"),
		userRepo:       userRepo,
		postRepo:       postRepo,
		notifRepo:      notifRepo,
		social:         service.NewSocialService(userRepo, postRepo, notifRepo),
		uploader:       images.NewClient(cfg.MediaBaseURL, cfg.MediaAPIKey),
	}
}

// SetupMiddleware configures the middleware chain for the Fiber app.
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(s.promMiddleware.Middleware)
	}

	app.Use(middleware.StructuredLogger())

	// Cookie auth means credentialed CORS: explicit origins, never "*".
	app.Use(cors.New(cors.Config{
		AllowOrigins:     s.config.CORSOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept",
		AllowMethods:     "GET, POST, PUT, DELETE",
		AllowCredentials: true,
	}))
}

// SetupRoutes configures all routes for the application.
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	api.Get("/", s.HealthCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/signup", middleware.RateLimit(
		s.config, s.redis, 3, 10*time.Minute, "signup"), s.Signup)
	auth.Post("/login", middleware.RateLimit(
		s.config, s.redis, 10, 5*time.Minute, "login"), s.Login)
	auth.Post("/logout", s.Logout)
	auth.Get("/validate", s.AuthRequired(), s.ValidateAccess)

	// All remaining routes require the session cookie.
	protected := api.Group("", s.AuthRequired())

	// Post routes. Specific paths before parameterized ones.
	posts := protected.Group("/post")
	posts.Get("/", s.GetAllPosts)
	posts.Get("/following/posts", s.GetFollowingPosts)
	posts.Get("/foryou/posts", s.GetPostsForYou)
	posts.Get("/user/likes", s.GetLikedPosts)
	posts.Get("/user/likes/:id", s.GetLikedPosts)
	posts.Post("/create", s.CreatePost)
	posts.Post("/likes/:postId", s.LikePost)
	posts.Post("/comments/:postId", s.CreateComment)
	posts.Delete("/delete/:postId", s.DeletePost)

	// User routes
	users := protected.Group("/user")
	users.Get("/userProfile/:username", s.GetUserProfile)
	users.Get("/suggested", s.GetSuggestedUsers)
	users.Post("/followUser/:id", s.FollowUser)
	users.Put("/changePassword", s.ChangePassword)
	users.Post("/updateInfo", s.UpdateInfo)

	// Notification routes
	notifications := protected.Group("/notification")
	notifications.Get("/", s.GetNotifications)
	notifications.Delete("/", s.DeleteNotifications)
	notifications.Delete("/:id", s.DeleteOneNotification)
}

// HealthCheck handles GET /api/
func (s *Server) HealthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success": true,
		"message": "flock api is up",
	})
}
