package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/campus-fixit/fixit/internal/observability"
	"github.com/campus-fixit/fixit/internal/service"
)

// HealthHandler responds to liveness and readiness probes.
type HealthHandler struct {
	serviceName string
	version     string
	widgets     *service.WidgetService
	metrics     *observability.Metrics
}

// NewHealthHandler returns a new handler instance.
func NewHealthHandler(serviceName, version string, widgets *service.WidgetService, metrics *observability.Metrics) *HealthHandler {
	return &HealthHandler{serviceName: serviceName, version: version, widgets: widgets, metrics: metrics}
}

// Live reports service liveness.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "alive",
		"service": h.serviceName,
		"version": h.version,
	})
}

// Ready reports readiness. The service has no external dependencies,
// so it is ready once the widget store exists.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	if h.widgets == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": fiber.Map{
				"code":    "DEPENDENCY_UNAVAILABLE",
				"message": "widget store not initialised",
			},
		})
	}
	return c.JSON(fiber.Map{
		"status":  "ready",
		"widgets": h.widgets.Count(),
	})
}

// Metrics reports the in-memory counters.
func (h *HealthHandler) Metrics(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": h.metrics.Snapshot()})
}
