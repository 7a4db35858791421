package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/wahegurunursing/classes-api/database"
)

// HandleCheckHealth reports liveness, including database reachability
func HandleCheckHealth(c *fiber.Ctx, store database.Storage) error {
	if err := store.HealthCheck(); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "degraded",
		})
	}
	return c.JSON(fiber.Map{"status": "ok"})
}
