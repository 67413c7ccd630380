package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

type RouterConfig struct {
	Version string
	Env     string
	// Auth guards every /v1 route. Nil means NewAuthMiddleware("", "").
	Auth fiber.Handler
	// AccessLog enables Fiber's request logger.
	AccessLog bool
}

func SetupRouter(app *fiber.App, handler *CampaignHandler, cfg RouterConfig) {
	// Middleware
	if cfg.AccessLog {
		app.Use(logger.New())
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":  "healthy",
			"version": cfg.Version,
			"env":     cfg.Env,
		})
	})

	auth := cfg.Auth
	if auth == nil {
		auth = NewAuthMiddleware("", "")
	}

	// API Versioning
	v1 := app.Group("/v1", auth)
	v1.Get("/campaign-types", handler.CampaignTypes)
	v1.Post("/prompts/preview", handler.PreviewPrompt)
	v1.Post("/briefs/parse", handler.ParseBrief)

	campaigns := v1.Group("/campaigns")
	campaigns.Post("/generate", handler.GenerateCampaign)
	campaigns.Get("", handler.ListCampaigns)
	campaigns.Get("/:id", handler.GetCampaign)
	campaigns.Delete("/:id", handler.DeleteCampaign)
	campaigns.Get("/:id/similar", handler.SimilarCampaigns)
}
