package routes

import (
	"dormdesk-lendtrack/internal/adapters/http/handlers"
	"dormdesk-lendtrack/internal/adapters/http/middleware"
	"dormdesk-lendtrack/internal/adapters/persistence/repositories"
	"dormdesk-lendtrack/internal/config"
	"dormdesk-lendtrack/internal/core/services"
	"dormdesk-lendtrack/internal/pkg/metrics"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

// Services bundles the wired service layer so main can share instances
// (the sweeper in particular) with the HTTP layer.
type Services struct {
	Auth      *services.AuthService
	User      *services.UserService
	Student   *services.StudentService
	Item      *services.ItemService
	Loan      *services.LoanService
	Audit     *services.AuditService
	Dashboard *services.DashboardService
	Sweeper   *services.SweeperService
}

// Build wires repositories and services on top of the database handle.
func Build(db *gorm.DB, cfg *config.Config, m *metrics.Metrics) *Services {
	// Repositories
	userRepo := repositories.NewUserRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)
	studentRepo := repositories.NewStudentRepository(db)
	itemRepo := repositories.NewItemRepository(db)
	loanRepo := repositories.NewLoanRepository(db)
	auditRepo := repositories.NewAuditRepository(db)

	// Services
	auditService := services.NewAuditService(auditRepo, m)
	authService := services.NewAuthService(userRepo, refreshTokenRepo, auditService, cfg, m)
	userService := services.NewUserService(userRepo, auditService)
	studentService := services.NewStudentService(studentRepo, auditService)
	itemService := services.NewItemService(itemRepo, auditService)
	loanService := services.NewLoanService(loanRepo, studentRepo, itemRepo, auditService, m)
	dashboardService := services.NewDashboardService(loanRepo, itemRepo, studentRepo)
	sweeperService := services.NewSweeperService(
		loanRepo,
		refreshTokenRepo,
		auditService,
		cfg.Ledger.MaxLoanHours,
		cfg.Ledger.SweepInterval,
		m,
	)

	return &Services{
		Auth:      authService,
		User:      userService,
		Student:   studentService,
		Item:      itemService,
		Loan:      loanService,
		Audit:     auditService,
		Dashboard: dashboardService,
		Sweeper:   sweeperService,
	}
}

// Setup configures all routes for the application
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config, svc *Services) {
	// Handlers
	healthHandler := handlers.NewHealthHandler(cfg, db)
	authHandler := handlers.NewAuthHandler(svc.Auth, cfg)
	userHandler := handlers.NewUserHandler(svc.User)
	studentHandler := handlers.NewStudentHandler(svc.Student)
	itemHandler := handlers.NewItemHandler(svc.Item)
	loanHandler := handlers.NewLoanHandler(svc.Loan)
	auditHandler := handlers.NewAuditHandler(svc.Audit)
	dashboardHandler := handlers.NewDashboardHandler(svc.Dashboard)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Prometheus metrics
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API v1 group
	apiV1 := app.Group("/api/v1")
	setupAPIV1Routes(apiV1, healthHandler, authHandler, userHandler,
		studentHandler, itemHandler, loanHandler, auditHandler,
		dashboardHandler, svc.Auth)
}

// setupAPIV1Routes configures API v1 routes
func setupAPIV1Routes(
	router fiber.Router,
	healthHandler *handlers.HealthHandler,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	studentHandler *handlers.StudentHandler,
	itemHandler *handlers.ItemHandler,
	loanHandler *handlers.LoanHandler,
	auditHandler *handlers.AuditHandler,
	dashboardHandler *handlers.DashboardHandler,
	authService *services.AuthService,
) {
	// API Info
	router.Get("/", healthHandler.APIInfo)

	// Auth routes (public, with a stricter rate limit; never cached)
	authRoutes := router.Group("/auth")
	authRoutes.Use(middleware.NoCacheHeaders())
	setupAuthRoutes(authRoutes, authHandler, authService)

	// User management routes (Admin only)
	userRoutes := router.Group("/users")
	userRoutes.Use(middleware.AuthMiddleware(authService))
	setupUserRoutes(userRoutes, userHandler)

	// Student registry routes: reads for any authenticated role,
	// mutations for Clerk/Admin
	studentRoutes := router.Group("/students")
	studentRoutes.Use(middleware.AuthMiddleware(authService))
	setupStudentRoutes(studentRoutes, studentHandler)

	// Item catalogue routes: reads for any authenticated role,
	// catalogue mutations are Admin only
	itemRoutes := router.Group("/items")
	itemRoutes.Use(middleware.AuthMiddleware(authService))
	setupItemRoutes(itemRoutes, itemHandler, loanHandler)

	// Loan ledger routes: reads for any authenticated role, lending and
	// returning for Clerk/Admin
	loanRoutes := router.Group("/loans")
	loanRoutes.Use(middleware.AuthMiddleware(authService))
	setupLoanRoutes(loanRoutes, loanHandler)

	// Audit trail routes (Admin/Auditor)
	auditRoutes := router.Group("/audit")
	auditRoutes.Use(middleware.AuthMiddleware(authService))
	auditRoutes.Use(middleware.AuditReview())
	auditRoutes.Get("/", auditHandler.List)

	// Dashboard routes (any authenticated staff)
	dashboardRoutes := router.Group("/dashboard")
	dashboardRoutes.Use(middleware.AuthMiddleware(authService))
	dashboardRoutes.Get("/stats", dashboardHandler.GetStats)
}

// setupAuthRoutes configures authentication routes
func setupAuthRoutes(router fiber.Router, handler *handlers.AuthHandler, authService *services.AuthService) {
	// Public routes (5 req/min/IP against credential stuffing)
	router.Post("/login", middleware.AuthRateLimiter(), handler.Login)
	router.Post("/refresh", middleware.AuthRateLimiter(), handler.RefreshToken)
	router.Post("/logout", handler.Logout)

	// Protected routes
	router.Get("/me", middleware.AuthMiddleware(authService), handler.Me)
	router.Post("/logout-all", middleware.AuthMiddleware(authService), handler.LogoutAll)
}

// setupUserRoutes configures staff identity routes
func setupUserRoutes(router fiber.Router, handler *handlers.UserHandler) {
	// Own password change requires no admin role
	router.Put("/me/password", handler.ChangePassword)

	// Admin only
	adminRoutes := router.Group("")
	adminRoutes.Use(middleware.AdminOnly())
	adminRoutes.Post("/", handler.Create)
	adminRoutes.Get("/", handler.List)
	adminRoutes.Get("/:id", handler.GetByID)
	adminRoutes.Put("/:id", handler.Update)
}

// setupStudentRoutes configures student registry routes
func setupStudentRoutes(router fiber.Router, handler *handlers.StudentHandler) {
	router.Get("/", handler.List)
	router.Get("/:id", handler.GetByID)

	router.Post("/", middleware.ClerkOrAdmin(), handler.Create)
	router.Put("/:id", middleware.ClerkOrAdmin(), handler.Update)
}

// setupItemRoutes configures item catalogue routes. /available must be
// registered before /:id.
func setupItemRoutes(router fiber.Router, handler *handlers.ItemHandler, loanHandler *handlers.LoanHandler) {
	router.Get("/", handler.List)
	router.Get("/available", loanHandler.ListAvailableItems)
	router.Get("/:id", handler.GetByID)

	router.Post("/", middleware.AdminOnly(), handler.Create)
	router.Put("/:id", middleware.AdminOnly(), handler.Update)
}

// setupLoanRoutes configures loan ledger routes
func setupLoanRoutes(router fiber.Router, handler *handlers.LoanHandler) {
	router.Get("/", handler.List)
	router.Get("/:id", handler.GetByID)

	router.Post("/", middleware.ClerkOrAdmin(), handler.Create)
	router.Put("/:id/return", middleware.ClerkOrAdmin(), handler.Return)
}
