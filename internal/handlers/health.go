package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
)

// HealthChecker is the store self-test; it reports false instead of failing.
type HealthChecker func(ctx context.Context) bool

func (h *Handler) Health(c *fiber.Ctx) error {
	if h.health != nil && !h.health(c.UserContext()) {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "mongo": false})
	}
	return c.JSON(fiber.Map{"status": "ok", "mongo": true})
}
