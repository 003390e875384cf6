package gateway

import (
	"dungeon-layout/internal/gateway/handlers"
	"dungeon-layout/internal/gateway/proxy"

	"github.com/gofiber/fiber/v3"
)

// ============================================================
// Gateway Routes
// ============================================================

const apiPrefix = "/api/v1"

// Register вешает пробы, документацию и проксируемые маршруты сервисов.
func Register(app *fiber.App, layoutURL, archiveURL string) {
	app.Get("/health/live", handlers.LivenessProbe)
	app.Get("/health/ready", handlers.ReadinessProbe(map[string]string{
		"layout":  layoutURL,
		"archive": archiveURL,
	}))
	app.Get("/health/startup", handlers.StartupProbe)

	app.Get("/docs", handlers.SwaggerUI)
	app.Get("/docs/openapi.yaml", handlers.SwaggerSpec)

	api := app.Group(apiPrefix)

	api.Get("/", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Dungeon Layout API v1",
			"status":  "ok",
		})
	})

	// Layout Service
	toLayout := proxy.PassThrough(layoutURL, apiPrefix)
	api.Post("/layout", toLayout)
	api.Post("/render", toLayout)
	api.Post("/generate", toLayout)
	api.Post("/validate", toLayout)

	// Archive Service
	toArchive := proxy.PassThrough(archiveURL, apiPrefix)
	api.Post("/floors", toArchive)
	api.Get("/floors/:id", toArchive)
	api.Get("/floors/:id/svg", toArchive)
	api.Get("/dungeons/:id/floors", toArchive)
	api.Get("/dungeons/:id/floors/:floor/nodes", toArchive)
}
