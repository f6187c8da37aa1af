package routes

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
)

// RegisterHealthRoutes adds a liveness endpoint. The wallet has no local
// backing services to probe; reachability of the external capabilities is
// only ever known per request.
func RegisterHealthRoutes(app *fiber.App, d Deps) {
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":    "ok",
			"view":      string(d.Manager.View()),
			"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		})
	})
}
