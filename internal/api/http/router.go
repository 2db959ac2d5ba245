package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/account-service/internal/api/http/handlers"
	"github.com/spec-kit/account-service/internal/auth"
	"github.com/spec-kit/account-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Accounts       *handlers.AccountsHandler
	Suites         *handlers.SuitesHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/metrics", cfg.Health.Metrics)
	app.Get("/metrics", cfg.Health.Prometheus)

	account := app.Group("/account")
	account.Post("/create", cfg.Accounts.Create)
	account.Post("/authenticate", cfg.Accounts.Authenticate)
	account.Post("/sign-out", cfg.Accounts.SignOut)
	account.Post("/type", cfg.Accounts.ChangeType)
	account.Get("/session", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated(), cfg.Accounts.Session)

	app.Post("/sso-suite/create", cfg.Suites.Create)
	app.Get("/sso-suites", cfg.AuthMiddleware.Handle, auth.RequireAccountType(domain.AccountTypeDeveloper), cfg.Suites.ListMine)
}
