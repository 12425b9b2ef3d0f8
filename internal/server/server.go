// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"context"
	"strings"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"mikromatter/internal/ai"
	"mikromatter/internal/cache"
	"mikromatter/internal/config"
	"mikromatter/internal/database"
	"mikromatter/internal/middleware"
	"mikromatter/internal/models"
	"mikromatter/internal/notifications"
	"mikromatter/internal/objectstore"
	"mikromatter/internal/repository"
	"mikromatter/internal/service"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc

	userRepo     repository.UserRepository
	postRepo     repository.PostRepository
	commentRepo  repository.CommentRepository
	hashtagRepo  repository.HashtagRepository
	followRepo   repository.FollowRepository
	bookclubRepo repository.BookclubRepository

	postService     *service.PostService
	userService     *service.UserService
	hashtagService  *service.HashtagService
	bookclubService *service.BookclubService

	notifier *notifications.Notifier
	hub      *notifications.Hub

	assistant   ai.Client
	objectStore objectstore.Service
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		return nil, err
	}

	redisClient := cache.InitRedis(cfg.RedisURL)

	return NewServerWithDeps(cfg, db, redisClient)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("mikromatter-api"),
		userRepo:       repository.NewUserRepository(db),
		postRepo:       repository.NewPostRepository(db),
		commentRepo:    repository.NewCommentRepository(db),
		hashtagRepo:    repository.NewHashtagRepository(db),
		followRepo:     repository.NewFollowRepository(db),
		bookclubRepo:   repository.NewBookclubRepository(db),
		assistant:      ai.NewClient(cfg.AIBaseURL, cfg.AIAPIKey, cfg.AIModel),
		objectStore:    objectstore.NewService(cfg.ObjectStoreURL, cfg.ObjectStoreToken),
		hub:            notifications.NewHub(),
	}

	if redisClient != nil {
		server.notifier = notifications.NewNotifier(redisClient)
	}

	server.hashtagService = service.NewHashtagService(server.hashtagRepo, server.postRepo)
	server.postService = service.NewPostService(server.postRepo, server.commentRepo, server.hashtagService, server.broadcastNewPost)
	server.userService = service.NewUserService(server.userRepo, server.followRepo)
	server.bookclubService = service.NewBookclubService(server.bookclubRepo)

	return server, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Context middleware to propagate request ID and user ID
	app.Use(middleware.ContextMiddleware())

	// Prometheus metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New())

	// Structured logging (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS before middlewares that can short-circuit so browser clients
	// still receive CORS headers on error responses.
	app.Use(cors.New(cors.Config{
		AllowOrigins:     s.config.CORSOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Global rate limiting (200 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        200,
		Expiration: 1 * time.Minute,
		// Never rate-limit preflight requests; they are handled by CORS.
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	// Public browse routes; viewer flags are filled when a valid token is present
	api.Get("/posts", s.GetPosts)
	api.Get("/posts/:id/comments", s.GetComments)
	api.Get("/posts/:id", s.GetPost)
	api.Get("/hashtags/trending", s.GetTrendingHashtags)
	api.Get("/hashtags/:name/posts", s.GetHashtagPosts)
	api.Get("/search/users", middleware.RateLimit(s.redis, 30, time.Minute, "search"), s.SearchUsers)
	api.Get("/search/posts", middleware.RateLimit(s.redis, 30, time.Minute, "search"), s.SearchPosts)
	api.Get("/bookclubs", s.GetBookclubs)
	api.Get("/bookclubs/:id/members", s.GetBookclubMembers)
	api.Get("/bookclubs/:id", s.GetBookclub)
	api.Get("/users/:id/posts", s.GetUserPosts)
	api.Get("/users/:id/bookclubs", s.GetUserBookclubs)
	api.Get("/users/:id", s.GetUserProfile)

	// Protected routes
	protected := api.Group("", s.AuthRequired())

	protected.Get("/auth/user", s.GetAuthUser)

	protected.Post("/posts", middleware.RateLimit(
		s.redis, s.config.WriteRateLimit, s.config.WriteRateWindow, "create_post"), s.CreatePost)
	protected.Post("/posts/image/upload-url", s.PostImageUploadURL)
	protected.Post("/posts/image/finalize", s.PostImageFinalize)
	protected.Post("/posts/:id/like", s.LikePost)
	protected.Delete("/posts/:id/like", s.UnlikePost)
	protected.Post("/posts/:id/repost", s.RepostPost)
	protected.Delete("/posts/:id/repost", s.UnrepostPost)
	protected.Post("/posts/:id/comments", middleware.RateLimit(
		s.redis, s.config.WriteRateLimit, s.config.WriteRateWindow, "create_comment"), s.CreateComment)
	protected.Delete("/posts/:id/comments/:commentId", s.DeleteComment)
	protected.Delete("/posts/:id", s.DeletePost)

	protected.Post("/users/:id/follow", s.FollowUser)
	protected.Delete("/users/:id/follow", s.UnfollowUser)

	protected.Post("/bookclubs", s.CreateBookclub)
	protected.Put("/bookclubs/:id", s.UpdateBookclub)
	protected.Delete("/bookclubs/:id", s.DeleteBookclub)
	protected.Post("/bookclubs/:id/join", s.JoinBookclub)
	protected.Delete("/bookclubs/:id/join", s.LeaveBookclub)

	protected.Post("/avatar/upload-url", s.AvatarUploadURL)
	protected.Put("/avatar", s.UpdateAvatar)

	protected.Post("/ai/generate-ideas", middleware.RateLimit(
		s.redis, 10, time.Minute, "ai"), s.GenerateIdeas)
	protected.Post("/ai/proofread", middleware.RateLimit(
		s.redis, 10, time.Minute, "ai"), s.Proofread)

	// WebSocket ticket issuance, then the upgrade itself (ticket auth)
	protected.Post("/ws/ticket", s.IssueWSTicket)
	api.Get("/ws", s.AuthRequired(), s.WebsocketHandler())
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" || redisStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// AuthRequired returns the authentication middleware
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		path := c.Path()
		isWSPath := strings.HasPrefix(path, "/api/ws")

		// 1. Try WebSocket ticket first (short-lived, single-use)
		ticket := c.Query("ticket")
		if ticket != "" && s.redis != nil {
			key := cache.WSTicketKey(ticket)
			userID, err := s.redis.Get(c.Context(), key).Result()
			if err == nil && userID != "" {
				// Delete ticket immediately (single-use)
				s.redis.Del(c.Context(), key)

				setAuthenticatedUser(c, userID)
				return c.Next()
			}
			// A provided but invalid ticket fails hard on WS paths
			if isWSPath {
				return models.RespondWithError(c, fiber.StatusUnauthorized,
					models.NewUnauthorizedError("Invalid or expired WebSocket ticket"))
			}
		}

		// 2. Fall back to a Bearer JWT
		tokenString := bearerToken(c)
		if tokenString == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization required"))
		}

		userID, claims, ok := s.validateToken(tokenString)
		if !ok {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid or expired token"))
		}

		setAuthenticatedUser(c, userID)
		// Profile claims are used by /auth/user to keep the row current
		c.Locals("claims", claims)
		return c.Next()
	}
}

// validateToken parses and validates a JWT, returning the subject user ID
// and the full claim set.
func (s *Server) validateToken(tokenString string) (string, jwt.MapClaims, bool) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
		}
		return []byte(s.config.JWTSecret), nil
	},
		jwt.WithIssuer(s.config.JWTIssuer),
		jwt.WithAudience(s.config.JWTAudience),
	)
	if err != nil || !token.Valid {
		return "", nil, false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", nil, false
	}
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", nil, false
	}
	return sub, claims, true
}

// setAuthenticatedUser stores the user ID in Fiber locals and the request
// context so logging and downstream services can pick it up.
func setAuthenticatedUser(c *fiber.Ctx, userID string) {
	c.Locals("userID", userID)
	ctx := context.WithValue(c.UserContext(), middleware.UserIDKey, userID)
	c.SetUserContext(ctx)
}

func bearerToken(c *fiber.Ctx) string {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}

// optionalUserID extracts the user ID from the Authorization header on
// public routes without enforcing authentication.
func (s *Server) optionalUserID(c *fiber.Ctx) string {
	tokenString := bearerToken(c)
	if tokenString == "" {
		return ""
	}
	userID, _, ok := s.validateToken(tokenString)
	if !ok {
		return ""
	}
	return userID
}

// Start starts the server
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	app := fiber.New(fiber.Config{
		AppName: "Mikromatter API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", "error", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	// Wire the feed hub to the Redis subscriber if available
	if s.notifier != nil {
		go func() {
			if err := s.hub.StartWiring(s.shutdownCtx, s.notifier); err != nil {
				middleware.Logger.Error("failed to start feed hub wiring", "error", err)
			}
		}()
	}

	middleware.Logger.Info("server starting", "port", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", "error", err)
		}
	}

	if s.hub != nil {
		if err := s.hub.Shutdown(ctx); err != nil {
			middleware.Logger.Error("error shutting down feed hub", "error", err)
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("error closing sql DB", "error", cerr)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", "error", rerr)
		}
	}

	middleware.Logger.Info("server shutdown complete")
	return nil
}
