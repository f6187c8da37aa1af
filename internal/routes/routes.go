package routes

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/passwallet/passwallet/internal/config"
	"github.com/passwallet/passwallet/internal/middleware"
	"github.com/passwallet/passwallet/internal/notification"
	"github.com/passwallet/passwallet/internal/session"
	"github.com/passwallet/passwallet/internal/transfer"
	"github.com/passwallet/passwallet/internal/wallet"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg        config.Config
	Logger     *slog.Logger
	Manager    *session.Manager
	Supervisor *wallet.Supervisor
	Transfers  *transfer.Submitter
	Toasts     *notification.Buffer
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	// Plain text access log: [HH:MM:SS] 200 -  145ms METHOD /path
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} -  ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))

	RegisterHealthRoutes(app, d)

	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals("X-Request-ID").(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	RegisterSessionRoutes(api, d)
	RegisterWalletRoutes(api, d)

	return nil
}
