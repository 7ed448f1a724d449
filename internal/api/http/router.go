package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spec-kit/identity-service/internal/api/http/handlers"
	"github.com/spec-kit/identity-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Users          *handlers.UsersHandler
	AuthMiddleware *auth.AuthMiddleware
	AdminRole      string
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	authGroup := app.Group("/auth")
	authGroup.Post("/token", cfg.Auth.ExchangeToken)
	authGroup.Get("/authorize", cfg.Auth.Authorize)
	authGroup.Get("/callback", cfg.Auth.Callback)
	authGroup.Post("/logout", cfg.AuthMiddleware.Handle, cfg.Auth.Logout)

	users := app.Group("/users", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	users.Get("/", cfg.Users.List)
	users.Get("/lookup", cfg.Users.Lookup)
	users.Get("/:id", cfg.Users.Get)
	users.Get("/:id/state", cfg.Users.GetState)

	admin := users.Group("", auth.RequireRole(cfg.AdminRole))
	admin.Post("/:id/detain", cfg.Users.Detain)
	admin.Post("/:id/release", cfg.Users.Release)
	admin.Post("/:id/ban", cfg.Users.Ban)
	admin.Delete("/:id", cfg.Users.Delete)
	admin.Post("/:id/undelete", cfg.Users.Undelete)
	admin.Delete("/:id/purge", cfg.Users.Purge)
}
