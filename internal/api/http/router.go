package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/vibetickets/helpdesk/internal/api/http/handlers"
	"github.com/vibetickets/helpdesk/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Tickets        *handlers.TicketsHandler
	Stats          *handlers.StatsHandler
	Canned         *handlers.CannedResponsesHandler
	Directory      *handlers.DirectoryHandler
	Billing        *handlers.BillingHandler
	AuthMiddleware *auth.Middleware
}

// RegisterRoutes wires HTTP routes. The webhook stays outside the auth
// group; Stripe signs its own requests.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/auth/register", cfg.Users.Register)
	app.Post("/auth/login", cfg.Users.Login)
	app.Post("/billing/webhook", cfg.Billing.Webhook)

	protected := app.Group("", cfg.AuthMiddleware.Handle)
	protected.Get("/auth/me", cfg.Users.Me)

	protected.Post("/tickets", cfg.Tickets.Create)
	protected.Get("/tickets", cfg.Tickets.List)
	protected.Get("/tickets/:id", cfg.Tickets.Get)
	protected.Patch("/tickets/:id", cfg.Tickets.Update)
	protected.Post("/tickets/:id/comments", cfg.Tickets.AddComment)

	protected.Get("/stats", cfg.Stats.Snapshot)

	protected.Get("/canned-responses", cfg.Canned.List)
	protected.Post("/canned-responses", cfg.Canned.Create)

	protected.Get("/users/agents", cfg.Directory.ListAgents)

	protected.Post("/billing/checkout", cfg.Billing.CreateCheckout)
}
