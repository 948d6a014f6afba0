package api

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"isanbot/internal/domain/entity"
	"isanbot/internal/domain/repository"
	"isanbot/internal/usecase"
)

type WebhookHandler struct {
	resolver    *usecase.Resolver
	recommender *usecase.Recommender
	recipes     repository.RecipeStore
	queries     repository.QueryLog
	log         zerolog.Logger
}

func NewWebhookHandler(resolver *usecase.Resolver, recommender *usecase.Recommender, recipes repository.RecipeStore, queries repository.QueryLog, log zerolog.Logger) *WebhookHandler {
	return &WebhookHandler{
		resolver:    resolver,
		recommender: recommender,
		recipes:     recipes,
		queries:     queries,
		log:         log,
	}
}

// HandleWebhook accepts a LINE webhook delivery. Events are processed
// strictly in order; a delivery's events share conversation state and
// must not interleave.
func (h *WebhookHandler) HandleWebhook(c *fiber.Ctx) error {
	var req entity.WebhookRequest
	if err := c.BodyParser(&req); err != nil {
		h.log.Warn().Err(err).Msg("unparseable webhook body")
		return c.Status(fiber.StatusBadRequest).SendString("Bad Request")
	}

	if len(req.Events) == 0 {
		return c.Status(fiber.StatusOK).SendString("No events")
	}

	for _, event := range req.Events {
		h.resolver.HandleEvent(c.Context(), event)
	}
	return c.Status(fiber.StatusOK).SendString("OK")
}

// HandleRecipes returns the merged recipe corpus.
func (h *WebhookHandler) HandleRecipes(c *fiber.Ctx) error {
	recipes, err := h.recipes.All(c.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("recipe corpus read failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "cannot load recipes"})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"count": len(recipes), "recipes": recipes})
}

// HandleRecommended returns the personalized recommendation list for one
// user.
func (h *WebhookHandler) HandleRecommended(c *fiber.Ctx) error {
	userID := c.Query("userId")
	if userID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "userId is required"})
	}
	limit, _ := strconv.Atoi(c.Query("limit", "5"))

	recipes := h.recommender.Recommend(c.Context(), userID, limit)
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"count": len(recipes), "recipes": recipes})
}

// HandlePopularQueries returns the most asked questions.
func (h *WebhookHandler) HandlePopularQueries(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "10"))

	queries, err := h.queries.PopularQueries(c.Context(), limit)
	if err != nil {
		h.log.Error().Err(err).Msg("popular queries read failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "cannot load popular queries"})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"count": len(queries), "queries": queries})
}
