// Package server contains the HTTP handlers for the marketplace API.
package server

import (
	"context"
	"log"
	"strconv"
	"strings"
	"time"

	"carmarket/internal/bootstrap"
	"carmarket/internal/config"
	"carmarket/internal/featureflags"
	"carmarket/internal/middleware"
	"carmarket/internal/models"
	"carmarket/internal/repository"
	"carmarket/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	tokenIssuer   = "carmarket-api"
	tokenAudience = "carmarket-client"
	tokenCookie   = "token"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	flags          *featureflags.Manager
	userRepo       repository.UserRepository
	brandRepo      repository.BrandRepository
	carModelRepo   repository.CarModelRepository
	listingRepo    repository.ListingRepository
	commentRepo    repository.CommentRepository
	listingService *service.ListingService
	commentService *service.CommentService
	userService    *service.UserService
	catalogService *service.CatalogService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, redisClient, err := bootstrap.InitRuntime(cfg)
	if err != nil {
		return nil, err
	}

	return NewServerWithDeps(cfg, db, redisClient)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis first.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	userRepo := repository.NewUserRepository(db)
	brandRepo := repository.NewBrandRepository(db)
	carModelRepo := repository.NewCarModelRepository(db)
	listingRepo := repository.NewListingRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	prom := middleware.InitMetrics("carmarket-api")

	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: prom,
		flags:          featureflags.NewManager(cfg.FeatureFlags),
		userRepo:       userRepo,
		brandRepo:      brandRepo,
		carModelRepo:   carModelRepo,
		listingRepo:    listingRepo,
		commentRepo:    commentRepo,
	}
	server.listingService = service.NewListingService(listingRepo, carModelRepo)
	server.commentService = service.NewCommentService(commentRepo, listingRepo)
	server.userService = service.NewUserService(userRepo)
	server.catalogService = service.NewCatalogService(brandRepo, carModelRepo)

	return server, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Context Middleware to propagate Request ID and User ID
	app.Use(middleware.ContextMiddleware())

	// OpenTelemetry server spans
	app.Use(middleware.Tracing())

	// Prometheus Metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New())

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS must run before middlewares that can short-circuit (e.g. limiter)
	// so browser clients still receive CORS headers on error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		// Never rate-limit preflight requests; they should be handled by CORS.
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
	if s.flags.Enabled("ops_dashboard", 0) {
		api.Get("/metrics/dashboard", monitor.New(monitor.Config{
			Title: "Carmarket Backend Metrics Dashboard",
		}))
	}

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/register", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "register"), s.Register)
	auth.Post("/login", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "login"), s.Login)
	auth.Post("/logout", s.Logout)
	auth.Get("/me", s.AuthRequired(), s.Me)
	api.Patch("/profile", s.AuthRequired(), s.UpdateProfile)
	api.Put("/profile/password", s.AuthRequired(), s.UpdatePassword)

	// Public catalog routes
	brands := api.Group("/brands")
	brands.Get("/", s.GetBrands)
	brands.Get("/:id/car-models", s.GetBrandCarModels)
	brands.Get("/:id", s.GetBrand)

	carModels := api.Group("/car-models")
	carModels.Get("/", s.GetCarModels)
	carModels.Get("/:id/listings", s.GetCarModelListings)
	carModels.Get("/:id", s.GetCarModel)

	// Public listing routes (visibility is scoped per requester)
	listings := api.Group("/listings")
	listings.Get("/", s.GetListings)
	listings.Get("/:id/comments", s.GetComments)
	listings.Get("/:id", s.GetListing)

	// Public comment routes
	api.Get("/comments", s.GetAllComments)
	api.Get("/comments/:id", s.GetComment)

	// Protected routes. Each gate is scoped to its own prefix so unmatched
	// paths fall through to 404 and the user is resolved once per request.
	myListings := api.Group("/listings", s.AuthRequired())
	myListings.Post("/", middleware.RateLimit(
		s.redis, 5, 5*time.Minute, "create_listing"), s.CreateListing)
	myListings.Post("/:id/comments", middleware.RateLimit(
		s.redis, 10, time.Minute, "create_comment"), s.CreateComment)
	myListings.Put("/:id", s.UpdateListing)
	myListings.Delete("/:id", s.DeleteListing)

	comments := api.Group("/comments", s.AuthRequired())
	comments.Post("/", middleware.RateLimit(
		s.redis, 10, time.Minute, "create_comment"), s.CreateComment)
	comments.Put("/:id", s.UpdateComment)
	comments.Delete("/:id", s.DeleteComment)

	users := api.Group("/users", s.AuthRequired())
	users.Get("/me/listings", s.GetMyListings)

	// Moderation transitions live on the listing itself. The myListings gate
	// already authenticated, so only the role check is added here.
	moderation := myListings.Group("", s.AdminRequired())
	moderation.Patch("/:id/approve", s.ApproveListing)
	moderation.Patch("/:id/reject", s.RejectListing)

	// Admin-gated catalog writes
	adminBrands := api.Group("/brands", s.AuthRequired(), s.AdminRequired())
	adminBrands.Post("/", s.CreateBrand)
	adminBrands.Put("/:id", s.UpdateBrand)
	adminBrands.Delete("/:id", s.DeleteBrand)

	adminCarModels := api.Group("/car-models", s.AuthRequired(), s.AdminRequired())
	adminCarModels.Post("/", s.CreateCarModel)
	adminCarModels.Put("/:id", s.UpdateCarModel)
	adminCarModels.Delete("/:id", s.DeleteCarModel)

	// Admin routes
	admin := api.Group("/admin", s.AuthRequired(), s.AdminRequired())
	admin.Get("/dashboard", s.GetDashboard)
	admin.Get("/listings", s.GetModerationQueue)
	admin.Delete("/listings/:id", s.AdminDeleteListing)
	admin.Delete("/comments/:id", s.AdminDeleteComment)
	admin.Get("/users", s.GetUsers)
	admin.Patch("/users/:id/block", s.BlockUser)
	admin.Patch("/users/:id/unblock", s.UnblockUser)
	admin.Get("/feature-flags", s.GetFeatureFlags)
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
		// The API stays functional without Redis, just slower and without
		// token revocation, so this only degrades readiness.
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

// AuthRequired returns the authentication middleware. Every authenticated
// request re-resolves the account so a block or deletion takes effect
// immediately, not at token expiry.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := s.userIDFromRequest(c)
		if err != nil {
			middleware.AuthRejections.WithLabelValues("token").Inc()
			return models.RespondWithError(c, fiber.StatusUnauthorized, err)
		}

		user, dbErr := s.userRepo.GetByID(c.Context(), userID)
		if dbErr != nil {
			middleware.AuthRejections.WithLabelValues("unknown_user").Inc()
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Account no longer exists"))
		}
		if user.IsBlocked {
			middleware.AuthRejections.WithLabelValues("blocked").Inc()
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewForbiddenError("Your account has been blocked"))
		}

		c.Locals("userID", user.ID)
		c.Locals("user", user)
		// Sync to UserContext for logging and downstream services
		ctx := context.WithValue(c.UserContext(), middleware.UserIDKey, user.ID)
		c.SetUserContext(ctx)

		return c.Next()
	}
}

// AdminRequired returns middleware that rejects non-admin users with 403.
// Must be placed after AuthRequired so the user is available in locals.
func (s *Server) AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := currentUser(c)
		if user == nil || !user.IsAdmin() {
			middleware.AuthRejections.WithLabelValues("not_admin").Inc()
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewForbiddenError("Admin access required"))
		}
		return c.Next()
	}
}

// userIDFromRequest extracts and validates the JWT from the Authorization
// header or the auth cookie, returning the subject user ID.
func (s *Server) userIDFromRequest(c *fiber.Ctx) (uint, *models.AppError) {
	tokenString := bearerToken(c)
	if tokenString == "" {
		tokenString = c.Cookies(tokenCookie)
	}
	if tokenString == "" {
		return 0, models.NewUnauthorizedError("Authorization required")
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
		}
		return []byte(s.config.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return 0, models.NewUnauthorizedError("Invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, models.NewUnauthorizedError("Invalid token claims")
	}

	if issuer, issuerOk := claims["iss"].(string); !issuerOk || issuer != tokenIssuer {
		return 0, models.NewUnauthorizedError("Invalid token issuer")
	}
	if audience, audienceOk := claims["aud"].(string); !audienceOk || audience != tokenAudience {
		return 0, models.NewUnauthorizedError("Invalid token audience")
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return 0, models.NewUnauthorizedError("Invalid subject claim")
	}
	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil {
		return 0, models.NewUnauthorizedError("Invalid user ID in token")
	}

	// Check JTI for revocation
	if jti, exists := claims["jti"].(string); exists && jti != "" && s.redis != nil {
		isBlacklisted, err := s.redis.Exists(c.Context(), "blacklist:"+jti).Result()
		if err == nil && isBlacklisted > 0 {
			return 0, models.NewUnauthorizedError("Token has been revoked")
		}
	}

	return uint(userID), nil
}

// bearerToken extracts the token from the Authorization header, if present.
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

// optionalUser resolves the requester on public routes. Invalid or missing
// credentials simply mean a guest; blocked accounts also browse as guests so
// the catalog stays readable.
func (s *Server) optionalUser(c *fiber.Ctx) *models.User {
	userID, appErr := s.userIDFromRequest(c)
	if appErr != nil {
		return nil
	}
	user, err := s.userRepo.GetByID(c.Context(), userID)
	if err != nil || user.IsBlocked {
		return nil
	}
	return user
}

// Start starts the server
func (s *Server) Start() error {
	app := fiber.New(fiber.Config{
		AppName: "Carmarket API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	log.Printf("Server starting on port %s...", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			log.Printf("error shutting down HTTP server: %v", err)
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Printf("error closing sql DB: %v", cerr)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			log.Printf("error closing redis: %v", rerr)
		}
	}

	log.Println("Server shutdown complete")
	return nil
}
