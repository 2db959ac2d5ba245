package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/spec-kit/account-service/internal/observability"
	"github.com/spec-kit/account-service/internal/persistence"
)

// HealthHandler responds to liveness and readiness checks.
type HealthHandler struct {
	serviceName string
	version     string
	postgres    *persistence.Postgres
	redis       *persistence.Redis
	metrics     *observability.Metrics
	prometheus  fiber.Handler
}

// NewHealthHandler returns a new handler instance. A nil postgres or redis is
// reported as disabled rather than failing readiness.
func NewHealthHandler(serviceName, version string, postgres *persistence.Postgres, redis *persistence.Redis, metrics *observability.Metrics) *HealthHandler {
	return &HealthHandler{
		serviceName: serviceName,
		version:     version,
		postgres:    postgres,
		redis:       redis,
		metrics:     metrics,
		prometheus:  adaptor.HTTPHandler(metrics.Handler()),
	}
}

// Live reports service liveness.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "alive",
		"service": h.serviceName,
		"version": h.version,
	})
}

// Ready reports service readiness by checking dependencies.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	depStatus := fiber.Map{}
	ready := true

	switch {
	case h.postgres.PoolHandle() == nil:
		depStatus["postgres"] = "disabled"
	case h.postgres.Ping(ctx) != nil:
		depStatus["postgres"] = "unreachable"
		ready = false
	default:
		depStatus["postgres"] = "ok"
	}

	switch {
	case h.redis.Handle() == nil:
		depStatus["redis"] = "disabled"
	case h.redis.Ping(ctx) != nil:
		depStatus["redis"] = "unreachable"
		ready = false
	default:
		depStatus["redis"] = "ok"
	}

	if ready {
		return c.JSON(fiber.Map{
			"status":       "ready",
			"dependencies": depStatus,
		})
	}

	return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    "DEPENDENCY_UNAVAILABLE",
			"message": "one or more dependencies unavailable",
			"details": depStatus,
		},
	})
}

// Metrics exposes the in-memory request counters.
func (h *HealthHandler) Metrics(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": h.metrics.Snapshot()})
}

// Prometheus serves the metrics in Prometheus exposition format.
func (h *HealthHandler) Prometheus(c *fiber.Ctx) error {
	return h.prometheus(c)
}
