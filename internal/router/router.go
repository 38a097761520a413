package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/shifa-care/shifa-api/internal/config"
	"github.com/shifa-care/shifa-api/internal/handler"
	"github.com/shifa-care/shifa-api/internal/middleware"
	"github.com/shifa-care/shifa-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	DashboardHandler    *handler.DashboardHandler
	ReportHandler       *handler.ReportHandler
	MedicineHandler     *handler.MedicineHandler
	ShipmentHandler     *handler.ShipmentHandler
	ActivityFeedHandler *handler.ActivityFeedHandler
	BadgeHandler        *handler.BadgeHandler
	JWTMiddleware       fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	app.Get("/metrics", observability.MetricsHandler())

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.DashboardHandler != nil {
		dashboard := api.Group("/dashboard", jwtMiddleware,
			middleware.RequireRole(middleware.RoleAdmin, middleware.RolePharmacy))
		deps.DashboardHandler.Register(dashboard)
	}

	if deps.ReportHandler != nil {
		reports := api.Group("/reports", jwtMiddleware,
			middleware.RequireRole(middleware.RoleAdmin, middleware.RolePharmacy),
			middleware.RateLimit("reports", 60, time.Minute))
		deps.ReportHandler.Register(reports)
	}

	if deps.MedicineHandler != nil {
		medicines := api.Group("/medicines", jwtMiddleware,
			middleware.RequireRole(middleware.RoleAdmin))
		deps.MedicineHandler.Register(medicines)
	}

	if deps.ShipmentHandler != nil {
		shipments := api.Group("/shipments", jwtMiddleware,
			middleware.RequireRole(middleware.RoleAdmin, middleware.RolePharmacy),
			middleware.RateLimit("shipments", 60, time.Minute))
		deps.ShipmentHandler.Register(shipments)
	}

	if deps.ActivityFeedHandler != nil {
		activities := api.Group("/activities", jwtMiddleware,
			middleware.RequireRole(middleware.RoleAdmin))
		deps.ActivityFeedHandler.Register(activities)
	}

	if deps.BadgeHandler != nil {
		badge := api.Group("/badge", jwtMiddleware)
		deps.BadgeHandler.Register(badge)
	}
}
