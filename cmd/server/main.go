package main

import (
	"context"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"
	"github.com/qdrant/go-client/qdrant"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"isanbot/internal/adapter/api"
	"isanbot/internal/adapter/client"
	"isanbot/internal/adapter/store"
	"isanbot/internal/config"
	"isanbot/internal/usecase"
)

func main() {
	log := zerolog.New(os.Stderr).With().Timestamp().Logger()

	if err := godotenv.Load(".env.dev"); err != nil {
		log.Warn().Msg(".env.dev file not found, using system environment variables")
	}
	cfg := config.Load()
	ctx := context.Background()

	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})

	sessions := store.NewRedisSessionStore(rdb)
	history := store.NewRedisHistoryStore(rdb)
	recipes := store.NewRedisRecipeStore(rdb)
	clicks := store.NewRedisClickStore(rdb)
	queries := store.NewRedisQueryLog(rdb)

	genaiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  cfg.GoogleCloudProject,
		Location: cfg.GoogleCloudLocation,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init genai client")
	}

	primaryModel := client.NewGeminiClientFromClient(genaiClient, cfg.GeminiModel)
	fallbackModel := client.NewGeminiClientFromClient(genaiClient, cfg.GeminiFallbackModel)
	gemini := usecase.NewResilientProvider(primaryModel, fallbackModel, cfg.ReplyTimeout, log)
	embedder := client.NewPhraseEmbedderFromClient(genaiClient, cfg.EmbeddingModel, log)

	// The intent tier is optional; without Qdrant everything demotes to the
	// generative tier.
	var intentIndex *store.QdrantIntentIndex
	if cfg.IntentConfigured() {
		qClient, err := qdrant.NewClient(&qdrant.Config{
			Host: cfg.QdrantHost,
			Port: cfg.QdrantPort,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to qdrant")
		}
		intentIndex = store.NewQdrantIntentIndex(qClient, cfg.QdrantIntentCollection, log)
		if err := intentIndex.InitCollection(ctx, uint64(cfg.EmbeddingDim)); err != nil {
			log.Fatal().Err(err).Msg("failed to init intent collection")
		}
	}
	intent := client.NewIntentClient(intentIndex, embedder, cfg.IntentCacheTTL, cfg.IntentConfidenceMin, cfg.IntentTimeout, cfg.IntentConfigured(), log)

	messenger, err := client.NewLineMessenger(cfg.LineChannelSecret, cfg.LineChannelToken, cfg.ReplyTimeout, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init line client")
	}

	finder := usecase.NewContextFinder(history, recipes, cfg.HistoryWindow, log)
	recommender := usecase.NewRecommender(clicks, recipes, log).
		WithTuning(cfg.RecencyWindow, cfg.RecencyFactor, cfg.RecommendMax, cfg.GlobalScoreLimit)
	resolver := usecase.NewResolver(sessions, history, recipes, clicks, queries, intent, gemini, messenger, finder, recommender, cfg, log)

	go func() {
		warmCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if _, err := embedder.CreateEmbedding(warmCtx, "warmup"); err != nil {
			log.Warn().Err(err).Msg("embedder warm-up failed")
		}
		if _, err := gemini.TextOnly(warmCtx, "."); err != nil {
			log.Warn().Err(err).Msg("gemini warm-up failed")
		}
		log.Info().Msg("pre-warm complete")
	}()

	app := fiber.New(fiber.Config{
		AppName: "Isan Food Assistant",
	})

	handler := api.NewWebhookHandler(resolver, recommender, recipes, queries, log)
	api.SetupRouter(app, handler, cfg)

	log.Info().Str("port", cfg.Port).Msg("isanbot running")
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
