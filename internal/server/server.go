// Package server contains the HTTP handlers and routing of the job board API.
package server

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "jobboard/docs" // swagger docs
	"jobboard/internal/auth"
	"jobboard/internal/authz"
	"jobboard/internal/bootstrap"
	"jobboard/internal/cache"
	"jobboard/internal/config"
	"jobboard/internal/database"
	"jobboard/internal/featureflags"
	"jobboard/internal/jobs"
	"jobboard/internal/middleware"
	"jobboard/internal/models"
	"jobboard/internal/notifications"
	"jobboard/internal/repository"
	"jobboard/internal/service"

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

const (
	defaultOrigins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	bodyLimit      = 1 << 20
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus

	tokens       *auth.TokenManager
	revoker      auth.Revoker
	tickets      *auth.TicketStore
	featureFlags *featureflags.Manager
	notifier     *notifications.Notifier
	hub          *notifications.Hub
	events       *notifications.Dispatcher
	scheduler    *jobs.Scheduler

	stopRealtime context.CancelFunc

	accountRepo repository.AccountRepository

	authService        *service.AuthService
	studentService     *service.StudentService
	companyService     *service.CompanyService
	offerService       *service.JobOfferService
	applicationService *service.ApplicationService
}

// NewServer connects to the database and Redis, then wires the server.
func NewServer(cfg *config.Config) (*Server, error) {
	db, redisClient, err := bootstrap.InitRuntime(cfg)
	if err != nil {
		return nil, err
	}

	server, err := NewServerWithDeps(cfg, db, redisClient)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := bootstrap.EnsureDevRootAdmin(ctx, cfg, server.accountRepo, server.authService); err != nil {
		return nil, fmt.Errorf("failed to bootstrap development root admin: %w", err)
	}
	return server, nil
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// redisClient may be nil.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	flags, err := featureflags.Load(cfg.FeatureFlags, cfg.FeatureFlagsFile)
	if err != nil {
		return nil, fmt.Errorf("load feature flags: %w", err)
	}

	var revoker auth.Revoker
	if redisClient != nil {
		revoker = auth.NewRedisRevoker(redisClient)
	}

	store := cache.NewStore(redisClient)
	accounts := repository.NewAccountRepository(db)
	students := repository.NewStudentRepository(db)
	companies := repository.NewCompanyRepository(db, store)
	offers := repository.NewJobOfferRepository(db, store)
	applications := repository.NewApplicationRepository(db)
	guard := authz.NewGuard(repository.NewOwnershipRepository(db))

	notifier := notifications.NewNotifier(redisClient)
	events := notifications.NewDispatcher(notifier, notifications.NewMailer(cfg))
	tokens := auth.NewTokenManager(cfg)

	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("jobboard-api"),
		tokens:         tokens,
		revoker:        revoker,
		tickets:        auth.NewTicketStore(redisClient),
		featureFlags:   flags,
		notifier:       notifier,
		hub:            notifications.NewHub(),
		events:         events,
		scheduler:      jobs.NewScheduler(),
		accountRepo:    accounts,
	}

	s.authService = service.NewAuthService(accounts, students, companies, tokens, revoker, cfg.BcryptCost)
	s.studentService = service.NewStudentService(students, guard)
	s.companyService = service.NewCompanyService(companies, guard)
	s.offerService = service.NewJobOfferService(offers, companies, guard)
	s.applicationService = service.NewApplicationService(service.ApplicationDeps{
		Applications: applications,
		Students:     students,
		Companies:    companies,
		Offers:       offers,
		Accounts:     accounts,
		Guard:        guard,
		Flags:        flags,
		Events:       events,
	})

	return s, nil
}

// NewApp builds a Fiber app with the server's middleware and routes.
func (s *Server) NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "Job Board API",
		BodyLimit:    bodyLimit,
		ErrorHandler: s.errorHandler,
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// errorHandler catches errors that escape handlers, including Fiber's own 404/405.
func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		switch fe.Code {
		case fiber.StatusNotFound:
			return models.RespondWithError(c, fe.Code, &models.AppError{Code: models.CodeNotFound, Message: "Route not found"})
		case fiber.StatusRequestEntityTooLarge:
			return models.RespondWithError(c, fe.Code, models.NewValidationError("Request body too large"))
		}
		return models.RespondWithError(c, fe.Code, &models.AppError{Code: models.CodeInternal, Message: fe.Message})
	}
	return s.respondError(c, err)
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())

	if s.config.TracingEnabled {
		app.Use(middleware.TracingMiddleware())
	}

	// Context Middleware to propagate request and trace IDs
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so rejected requests still carry CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = defaultOrigins
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		ExposeHeaders:    "X-Total-Count",
		AllowCredentials: origins != "*",
		MaxAge:           86400,
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions ||
				strings.HasPrefix(c.Path(), "/health") ||
				c.Path() == "/metrics"
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return models.RespondWithError(c, fiber.StatusTooManyRequests,
				&models.AppError{Code: "RATE_LIMITED", Message: "Too many requests, please try again later."})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	app.Get("/swagger/*", swagger.HandlerDefault)

	api := app.Group("/api")
	authRequired := middleware.AuthRequired(s.tokens, s.revoker)
	student := middleware.RoleRequired(models.RoleStudent)
	company := middleware.RoleRequired(models.RoleCompany)
	admin := middleware.RoleRequired(models.RoleAdmin)

	authGroup := api.Group("/auth")
	authGroup.Post("/register", middleware.RateLimit(s.redis, 3, time.Minute, "register"), s.Register)
	authGroup.Post("/login", middleware.RateLimit(s.redis, 5, time.Minute, "login"), s.Login)
	authGroup.Post("/logout", authRequired, s.Logout)

	api.Get("/users/profile", authRequired, s.GetAccountProfile)

	students := api.Group("/students")
	students.Get("/profile", authRequired, student, s.GetStudentProfile)
	students.Put("/profile", authRequired, student, s.UpdateStudentProfile)
	students.Get("/:id", s.GetStudent)

	// Specific /profile routes before generic /:id
	companies := api.Group("/companies")
	companies.Get("/", s.ListCompanies)
	companies.Get("/profile", authRequired, company, s.GetCompanyProfile)
	companies.Put("/profile", authRequired, company, s.UpdateCompanyProfile)
	companies.Get("/:id", s.GetCompany)

	offers := api.Group("/job-offers")
	offers.Get("/", s.ListJobOffers)
	offers.Get("/type/:type", s.ListJobOffersByType)
	offers.Get("/company/:companyId", s.ListJobOffersByCompany)
	offers.Get("/mine", authRequired, company, s.ListMyJobOffers)
	offers.Get("/:id", s.GetJobOffer)
	offers.Post("/", authRequired, company, s.CreateJobOffer)
	offers.Put("/:id", authRequired, company, s.UpdateJobOffer)
	offers.Delete("/:id", authRequired, company, s.DeleteJobOffer)

	applications := api.Group("/applications", authRequired)
	applications.Post("/", student, s.Apply)
	applications.Get("/my-applications", student, s.ListMyApplications)
	applications.Get("/company", company, s.ListCompanyApplications)
	applications.Get("/offer/:offerId", company, s.ListOfferApplications)
	applications.Put("/:id/status", company, s.UpdateApplicationStatus)
	applications.Put("/:id/withdraw", student, s.WithdrawApplication)
	applications.Get("/:id", s.GetApplication)

	live := api.Group("/notifications")
	live.Post("/ticket", authRequired, s.IssueNotificationTicket)
	live.Get("/ws", middleware.WebSocketAuth(s.tickets, s.tokens, s.revoker), requireWebSocketUpgrade, s.NotificationsSocket())

	adminGroup := api.Group("/admin", authRequired, admin)
	adminGroup.Put("/companies/:id/verification", s.SetCompanyVerification)
	adminGroup.Get("/feature-flags", s.GetFeatureFlags)
}

// LivenessCheck handles liveness checks from the orchestrator
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck reports 503 when the database is unreachable. Redis is
// optional: its absence degrades the service but does not fail readiness.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if err := database.Ping(ctx, s.db); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "unavailable"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	switch {
	case dbStatus != "healthy":
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	case redisStatus != "healthy":
		overallStatus = "degraded"
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

// Start schedules background jobs and listens on the configured port.
func (s *Server) Start() error {
	s.app = s.NewApp()

	if err := s.scheduler.ScheduleOfferExpiry(s.config.OfferExpirySchedule, s.offerService); err != nil {
		return err
	}
	s.scheduler.Start()

	if err := s.StartRealtime(context.Background()); err != nil {
		return err
	}

	middleware.Logger.Info("server starting", "port", s.config.Port, "env", s.config.Env)
	return s.app.Listen(":" + s.config.Port)
}

// StartRealtime feeds account channel events into the websocket hub until ctx
// is cancelled or Shutdown runs. Without Redis there is nothing to relay.
func (s *Server) StartRealtime(ctx context.Context) error {
	if s.redis == nil {
		middleware.Logger.Warn("redis unavailable, live notifications disabled")
		return nil
	}
	ctx, cancel := context.WithCancel(ctx)
	if err := s.hub.StartWiring(ctx, s.notifier); err != nil {
		cancel()
		return fmt.Errorf("start notification hub: %w", err)
	}
	s.stopRealtime = cancel
	return nil
}

// Shutdown stops the HTTP server, the scheduler and pending emails, then
// closes the database and Redis.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.hub.Shutdown(ctx); err != nil {
		middleware.Logger.Error("error closing notification sockets", "error", err)
	}
	if s.stopRealtime != nil {
		s.stopRealtime()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", "error", err)
		}
	}

	s.scheduler.Stop(ctx)

	done := make(chan struct{})
	go func() {
		s.events.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		middleware.Logger.Warn("pending notification emails abandoned")
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
