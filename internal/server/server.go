// Package server contains the HTTP handlers for the governance engine's API.
package server

import (
	"context"
	"time"

	_ "github.com/PluraGate/SyriaHub-sub004/docs" // swagger docs
	"github.com/PluraGate/SyriaHub-sub004/internal/classify"
	"github.com/PluraGate/SyriaHub-sub004/internal/config"
	"github.com/PluraGate/SyriaHub-sub004/internal/middleware"
	"github.com/PluraGate/SyriaHub-sub004/internal/models"
	"github.com/PluraGate/SyriaHub-sub004/internal/originality"
	"github.com/PluraGate/SyriaHub-sub004/internal/repository"
	"github.com/PluraGate/SyriaHub-sub004/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	promMiddleware *fiberprometheus.FiberPrometheus

	userRepo      repository.UserRepository
	contentRepo   repository.ContentRepository
	appealRepo    repository.AppealRepository
	delibRepo     repository.DeliberationRepository
	promotionRepo repository.PromotionRepository
	auditRepo     repository.AuditRepository
	trustRepo     repository.TrustQueueRepository

	moderationService *service.ModerationService
	appealService     *service.AppealService
	juryService       *service.JuryService
	promotionService  *service.PromotionService
	auditService      *service.AuditService
	trustService      *service.TrustService
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// The bootstrap package establishes DB/Redis and calls this.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	middleware.InitMiddleware(cfg)

	userRepo := repository.NewUserRepository(db)
	contentRepo := repository.NewContentRepository(db)
	appealRepo := repository.NewAppealRepository(db)
	trustRepo := repository.NewTrustQueueRepository(db)
	delibRepo := repository.NewDeliberationRepository(db, trustRepo)
	promotionRepo := repository.NewPromotionRepository(db, trustRepo)
	auditRepo := repository.NewAuditRepository(db)

	classifier := classify.NewGateway(
		cfg.ClassifyPrimaryURL,
		cfg.ClassifySecondaryURL,
		cfg.ClassifyAPIKey,
		cfg.ClassifyTimeout(),
	)
	embedder := originality.NewHTTPEmbedder(cfg.EmbedURL, cfg.EmbedModel, cfg.EmbedDim, cfg.EmbedTimeout())
	index := originality.NewIndex(db)
	confirmer := originality.NewHTTPConfirmer(cfg.ConfirmURL, cfg.ConfirmAPIKey, cfg.ConfirmModel, cfg.ConfirmTimeout())
	checker := originality.NewChecker(embedder, index, confirmer, contentRepo.PublishedText, middleware.Logger)

	prom := fiberprometheus.New("syriahub-governance")

	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: prom,
		userRepo:       userRepo,
		contentRepo:    contentRepo,
		appealRepo:     appealRepo,
		delibRepo:      delibRepo,
		promotionRepo:  promotionRepo,
		auditRepo:      auditRepo,
		trustRepo:      trustRepo,
	}
	server.moderationService = service.NewModerationService(contentRepo, classifier, checker, index, middleware.Logger)
	server.appealService = service.NewAppealService(appealRepo, userRepo, server.moderationService, cfg.JurySize, middleware.Logger)
	server.juryService = service.NewJuryService(delibRepo, appealRepo, contentRepo, userRepo, middleware.Logger)
	server.promotionService = service.NewPromotionService(promotionRepo, userRepo, cfg.Quorums(), middleware.Logger)
	server.auditService = service.NewAuditService(auditRepo)
	server.trustService = service.NewTrustService(trustRepo, userRepo, cfg.TrustSweepInterval(), cfg.TrustSweepBatch, middleware.Logger)

	return server, nil
}

// TrustService exposes the queue consumer so the bootstrap layer can run the
// background sweep.
func (s *Server) TrustService() *service.TrustService {
	return s.trustService
}

// Shutdown releases server-held resources.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			return err
		}
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Context Middleware to propagate Request ID and User ID
	app.Use(middleware.ContextMiddleware())

	// Distributed tracing spans per request
	app.Use(middleware.TracingMiddleware())

	// Prometheus metrics
	if s.promMiddleware != nil {
		app.Use(s.promMiddleware.Middleware)
	}

	// Security headers
	app.Use(helmet.New())

	// Structured logging (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS before middlewares that can short-circuit (e.g. limiter) so
	// browser clients still receive CORS headers on error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
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

	// Swagger documentation
	api.Get("/swagger/*", swagger.HandlerDefault)

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/signup", s.Signup)
	auth.Post("/login", s.Login)

	// Protected routes
	protected := api.Group("", middleware.AuthRequired)

	// Content + moderation routes
	content := protected.Group("/content")
	content.Post("/", s.CreateContent)
	content.Get("/mine", s.GetMyContent)
	content.Post("/:id/submit", s.SubmitForModeration)
	content.Post("/:id/appeals", s.OpenAppeal)
	content.Get("/:id/decision", s.GetDecision)
	content.Get("/:id", s.GetContent)

	// Appeal routes
	appeals := protected.Group("/appeals")
	appeals.Get("/mine", s.GetMyAppeals)
	appeals.Post("/:id/request-revision", s.RequestRevision)
	appeals.Post("/:id/resubmit", s.ResubmitAppeal)
	appeals.Get("/:id", s.GetAppeal)

	// Jury routes
	deliberations := protected.Group("/deliberations")
	deliberations.Post("/:id/votes", s.CastJurorVote)
	deliberations.Get("/:id", s.GetDeliberation)

	// Promotion routes
	promotions := protected.Group("/promotions")
	promotions.Post("/", s.RequestPromotion)
	promotions.Get("/pending", s.GetPendingPromotions)
	promotions.Post("/:id/endorsements", s.EndorsePromotion)
	promotions.Post("/:id/reject", s.RejectPromotion)
	promotions.Get("/:id", s.GetPromotion)

	// Admin routes
	admin := protected.Group("/admin", s.AdminRequired())
	admin.Get("/audit-log", s.GetAuditLog)
	admin.Get("/users/:id/audit-log", s.GetUserAuditLog)
	admin.Get("/trust-queue/depth", s.GetTrustQueueDepth)
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
		// The engine degrades gracefully without Redis; readiness only
		// reports it.
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" {
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

// AdminRequired returns middleware that rejects non-admin users with 403.
// Must be placed after AuthRequired so that userID is available in locals.
func (s *Server) AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Locals("userID").(uint)

		user, err := s.userRepo.GetByID(c.Context(), userID)
		if err != nil {
			return models.RespondWithAppError(c, err)
		}
		if !user.IsAdmin() {
			return models.RespondWithAppError(c,
				models.NewForbiddenError("Admin access required"))
		}
		return c.Next()
	}
}
