package api

import (
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"

	"isanbot/internal/config"
)

func SetupRouter(app *fiber.App, handler *WebhookHandler, cfg *config.Config) {
	// Middleware
	app.Use(logger.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":  "healthy",
			"version": os.Getenv("APP_VERSION"),
			"env":     os.Getenv("ENV"),
		})
	})

	webhook := app.Group("/")
	if cfg.VerifySignature {
		webhook.Use("/webhook", VerifySignature(cfg.LineChannelSecret))
	}
	webhook.Post("/webhook", handler.HandleWebhook)

	apiGroup := app.Group("/api")
	apiGroup.Get("/recipes", handler.HandleRecipes)
	apiGroup.Get("/recipes/recommended", handler.HandleRecommended)
	apiGroup.Get("/popular-queries", handler.HandlePopularQueries)
}
