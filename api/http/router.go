package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jobassist/backend/api/http/handlers"
)

// Register wires all HTTP routes onto given Fiber app.
func Register(app *fiber.App, authMW fiber.Handler,
	auth *handlers.AuthHandler, health *handlers.HealthHandler,
	jobs *handlers.JobsHandler, status *handlers.StatusHandler, upload *handlers.UploadHandler) {
	api := app.Group("/api")
	v1 := api.Group("/v1")

	// Health and readiness endpoints for probes/monitoring
	v1.Get("/health", health.Health)
	v1.Get("/ready", health.Ready)

	a := v1.Group("/auth")
	a.Post("/register", auth.Register)
	a.Post("/login", auth.Login)

	// Job catalog
	jg := v1.Group("/jobs", authMW)
	jg.Get("/", jobs.List)
	jg.Get("/stats", jobs.Stats)
	jg.Put("/:id/status", status.Update)
	jg.Get("/:id/status/history", status.History)

	// Spreadsheet reconciliation pipeline
	ug := v1.Group("/upload", authMW)
	ug.Get("/", upload.State)
	ug.Delete("/", upload.Remove)
	ug.Post("/validate", upload.Validate)
	ug.Post("/parse", upload.Parse)
	ug.Post("/apply", upload.Apply)
}
