package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

const healthTimeout = 2 * time.Second

// HealthCheck pings one dependency.
type HealthCheck func(ctx context.Context) error

// HealthHandler reports service liveness and dependency reachability.
type HealthHandler struct {
	checks map[string]HealthCheck
}

// NewHealthHandler creates a health handler running the named checks.
func NewHealthHandler(checks map[string]HealthCheck) *HealthHandler {
	return &HealthHandler{checks: checks}
}

// Register wires health routes onto the provided router.
func (h *HealthHandler) Register(router fiber.Router) {
	router.Get("/", h.Health)
	router.Get("/health", h.Health)
}

// Health answers 503 when any dependency check fails.
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), healthTimeout)
	defer cancel()

	status := "ok"
	results := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			status = "degraded"
			results[name] = err.Error()
			continue
		}
		results[name] = "ok"
	}

	code := fiber.StatusOK
	if status != "ok" {
		code = fiber.StatusServiceUnavailable
	}
	return c.Status(code).JSON(fiber.Map{
		"service": "blt",
		"status":  status,
		"checks":  results,
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}
