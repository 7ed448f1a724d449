package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/identity-service/internal/persistence"
	"github.com/spec-kit/identity-service/internal/session"
)

// HealthHandler responds to liveness and readiness probes. Readiness covers
// the user store and the restricted-set cache; the login-activity cache is
// in-process, so it is reported rather than checked.
type HealthHandler struct {
	serviceName string
	version     string
	postgres    *persistence.Postgres
	redis       *persistence.Redis
	sessions    *session.LoginCache
}

// NewHealthHandler returns a new handler instance.
func NewHealthHandler(serviceName, version string, postgres *persistence.Postgres, redis *persistence.Redis, sessions *session.LoginCache) *HealthHandler {
	return &HealthHandler{serviceName: serviceName, version: version, postgres: postgres, redis: redis, sessions: sessions}
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
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	depStatus := fiber.Map{}
	ready := true

	if err := h.postgres.Ping(ctx); err != nil {
		depStatus["user_store"] = err.Error()
		ready = false
	} else {
		depStatus["user_store"] = "ok"
	}

	if err := h.redis.Ping(ctx); err != nil {
		depStatus["restricted_set"] = err.Error()
		ready = false
	} else {
		depStatus["restricted_set"] = "ok"
	}

	activeSessions := 0
	if h.sessions != nil {
		activeSessions = h.sessions.ActiveCount()
	}

	if ready {
		return c.JSON(fiber.Map{
			"status":          "ready",
			"service":         h.serviceName,
			"active_sessions": activeSessions,
			"dependencies":    depStatus,
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
