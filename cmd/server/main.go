package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"dormdesk-lendtrack/internal/adapters/http/middleware"
	"dormdesk-lendtrack/internal/adapters/http/routes"
	"dormdesk-lendtrack/internal/adapters/persistence/models"
	"dormdesk-lendtrack/internal/config"
	"dormdesk-lendtrack/internal/pkg/metrics"

	"github.com/gofiber/fiber/v2"

	_ "dormdesk-lendtrack/docs" // Swagger docs
)

// @title DormDesk LendTrack API
// @version 1.0
// @description Access-controlled equipment lending desk for student residences.
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@dormdesk.local

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:3000
// @BasePath /api/v1
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer config.CloseDatabase(db)

	// Auto migrate (creates tables if not exist)
	if err := models.AutoMigrate(db); err != nil {
		log.Fatalf("❌ Failed to auto migrate: %v", err)
	}
	log.Println("✅ Database migration completed")

	// Seed dev data
	if cfg.IsDev() {
		if err := config.NewSeeder(db).Run(); err != nil {
			log.Printf("⚠️ Warning: Failed to seed database: %v", err)
		}
	}

	// Prometheus metrics
	m := metrics.NewDefault()

	// Wire repositories and services
	svc := routes.Build(db, cfg, m)

	// Start the overdue sweeper
	svc.Sweeper.Start()
	defer svc.Sweeper.Stop()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "DormDesk LendTrack API v1.0",
		ErrorHandler: middleware.CustomErrorHandler,
	})

	// Setup middlewares
	middleware.Setup(app, cfg)

	// Setup routes
	routes.Setup(app, db, cfg, svc)

	// Graceful shutdown
	go gracefulShutdown(app)

	// Start server
	log.Printf("🚀 Server starting on port %s [MODE: %s]", cfg.Port, cfg.AppMode)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

// gracefulShutdown handles graceful shutdown
func gracefulShutdown(app *fiber.App) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("❌ Error during shutdown: %v", err)
	}
	log.Println("✅ Server stopped gracefully")
}
