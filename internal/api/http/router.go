package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/studioops/support-mailroom/internal/api/http/handlers"
	"github.com/studioops/support-mailroom/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Mailroom       *handlers.MailroomHandler
	Notifications  *handlers.NotificationsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	protected := app.Group("", cfg.AuthMiddleware.Handle)

	protected.Post("/webhooks/email", cfg.Mailroom.InboundEmail)

	protected.Post("/notifications", cfg.Notifications.Send)
	protected.Post("/notifications/:id/read", cfg.Notifications.MarkRead)
	protected.Get("/users/:id/notifications", cfg.Notifications.List)
	protected.Get("/users/:id/notification-preferences", cfg.Notifications.GetPreferences)
	protected.Put("/users/:id/notification-preferences", cfg.Notifications.UpdatePreferences)
}
