package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/campus-fixit/fixit/internal/api/http/handlers"
	"github.com/campus-fixit/fixit/internal/web"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health  *handlers.HealthHandler
	Widgets *handlers.WidgetsHandler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/", web.Index)

	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", cfg.Health.Metrics)

	api := app.Group("/api")
	api.Post("/classify", cfg.Widgets.Classify)

	widgets := api.Group("/widgets")
	widgets.Post("/", cfg.Widgets.Create)
	widgets.Get("/:id", cfg.Widgets.Get)
	widgets.Put("/:id/complaint", cfg.Widgets.UpdateComplaint)
	widgets.Post("/:id/submit", cfg.Widgets.Submit)
	widgets.Post("/:id/reset", cfg.Widgets.Reset)
	widgets.Delete("/:id", cfg.Widgets.Delete)

	app.Use(func(c *fiber.Ctx) error {
		return fiber.ErrNotFound
	})
}
