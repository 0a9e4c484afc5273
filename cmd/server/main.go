// @title         jobassist API
// @version       1.0
// @description   Backend for the job search assistant: per-user job catalog with match highlighting, application status tracking with history, and spreadsheet-driven bulk status reconciliation against the job store.
// @BasePath      /api/v1
// @schemes       http
// @host          localhost:8080
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Authorization token. Accepted formats: "Bearer <JWT>" or "<JWT>".
package main

import (
	"log"
	"time"

	_ "github.com/jobassist/backend/docs"
	"github.com/gofiber/fiber/v2"
	swagger "github.com/gofiber/swagger"

	// internal imports
	"github.com/jobassist/backend/api/http"
	"github.com/jobassist/backend/api/http/handlers"
	"github.com/jobassist/backend/pkg/auth"
	"github.com/jobassist/backend/pkg/catalog"
	"github.com/jobassist/backend/pkg/config"
	"github.com/jobassist/backend/pkg/health"
	"github.com/jobassist/backend/pkg/health/checkers"
	"github.com/jobassist/backend/pkg/jobstore"
	"github.com/jobassist/backend/pkg/repository/memory"
	"github.com/jobassist/backend/pkg/security/jwt"
	"github.com/jobassist/backend/pkg/session"
	"github.com/jobassist/backend/pkg/status"
)

func main() {
	// Load configuration from env/.env
	cfg := config.Load()

	app := fiber.New(fiber.Config{
		BodyLimit: cfg.MaxUploadMB << 20,
	})

	// Job store client: the single source of truth for catalog and history
	store := jobstore.New(cfg.JobStoreURL)

	// Wire dependencies (Clean Architecture)
	userRepo := memory.NewUserRepository()
	jwtGen := jwt.NewGenerator(cfg.JWTSecret, cfg.JWTIssuer, time.Duration(cfg.JWTTTLMinutes)*time.Minute)

	authUC := auth.NewAuthService(userRepo, jwtGen)
	authHandler := handlers.NewAuthHandler(authUC)

	// Health service: compose checkers
	readiness := health.NewService(checkers.NewJobStoreChecker(store))
	healthHandler := handlers.NewHealthHandler(readiness)

	// Domain services over the job store
	catalogUC := catalog.NewService(store)
	engine := status.NewEngine(store)
	ledger := status.NewLedger(store)
	sessions := session.NewRegistry(store)

	jobsHandler := handlers.NewJobsHandler(catalogUC, sessions)
	statusHandler := handlers.NewStatusHandler(engine, ledger, catalogUC, sessions)
	uploadHandler := handlers.NewUploadHandler(catalogUC, sessions)

	// JWT auth middleware for protected routes
	authMW := jwt.NewAuthMiddleware(cfg.JWTSecret, cfg.JWTIssuer)

	// Register routes
	http.Register(app, authMW, authHandler, healthHandler, jobsHandler, statusHandler, uploadHandler)

	// Swagger UI
	app.Get("/swagger/*", swagger.HandlerDefault)

	// Start server
	port := cfg.Port
	log.Printf("HTTP server listening on :%s", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
