// Package config resolves all runtime settings from the environment.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config carries every tunable the service reads at startup.
type Config struct {
	Port       string
	AppVersion string
	Env        string

	RedisAddr string

	QdrantHost             string
	QdrantPort             int
	QdrantIntentCollection string

	GoogleCloudProject  string
	GoogleCloudLocation string
	GeminiModel         string
	GeminiFallbackModel string
	EmbeddingModel      string
	EmbeddingDim        int

	LineChannelSecret string
	LineChannelToken  string
	VerifySignature   bool

	// Two overlapping confidence thresholds, kept separate on purpose: the
	// provider's own acceptance floor, and the external bias applied to
	// direct dish queries versus everything else.
	IntentConfidenceMin    float32
	DirectQueryConfidence  float32
	GenericQueryConfidence float32

	IntentTimeout  time.Duration
	ReplyTimeout   time.Duration
	EventMaxAge    time.Duration
	IntentCacheTTL time.Duration

	HistoryWindow    int
	RecencyWindow    time.Duration
	RecencyFactor    float64
	RecommendMax     int
	GlobalScoreLimit int

	RejectionPhrases []string
}

// Load reads the environment into a Config, applying defaults for
// everything optional.
func Load() *Config {
	return &Config{
		Port:       envOr("PORT", "3000"),
		AppVersion: os.Getenv("APP_VERSION"),
		Env:        envOr("ENV", "development"),

		RedisAddr: envOr("REDIS_ADDR", "localhost:6379"),

		QdrantHost:             os.Getenv("QDRANT_HOST"),
		QdrantPort:             envInt("QDRANT_PORT", 6334),
		QdrantIntentCollection: envOr("QDRANT_INTENT_COLLECTION", "intents"),

		GoogleCloudProject:  os.Getenv("GOOGLE_CLOUD_PROJECT"),
		GoogleCloudLocation: envOr("GOOGLE_CLOUD_LOCATION", "asia-southeast1"),
		GeminiModel:         envOr("GEMINI_MODEL", "gemini-2.5-flash"),
		GeminiFallbackModel: envOr("GEMINI_FALLBACK_MODEL", "gemini-1.5-flash"),
		EmbeddingModel:      envOr("EMBEDDING_MODEL", "text-embedding-004"),
		EmbeddingDim:        envInt("EMBEDDING_DIM", 768),

		LineChannelSecret: os.Getenv("LINE_CHANNEL_SECRET"),
		LineChannelToken:  os.Getenv("LINE_CHANNEL_TOKEN"),
		VerifySignature:   envBool("LINE_VERIFY_SIGNATURE", false),

		IntentConfidenceMin:    envFloat32("INTENT_CONFIDENCE_MIN", 0.1),
		DirectQueryConfidence:  envFloat32("DIRECT_QUERY_CONFIDENCE", 0.3),
		GenericQueryConfidence: envFloat32("GENERIC_QUERY_CONFIDENCE", 0.5),

		IntentTimeout:  envDuration("INTENT_TIMEOUT", 5*time.Second),
		ReplyTimeout:   envDuration("REPLY_TIMEOUT", 20*time.Second),
		EventMaxAge:    envDuration("EVENT_MAX_AGE", 25*time.Second),
		IntentCacheTTL: envDuration("INTENT_CACHE_TTL", time.Hour),

		HistoryWindow:    envInt("HISTORY_WINDOW", 5),
		RecencyWindow:    envDuration("RECENCY_WINDOW", 7*24*time.Hour),
		RecencyFactor:    1.5,
		RecommendMax:     envInt("RECOMMEND_MAX", 10),
		GlobalScoreLimit: envInt("GLOBAL_SCORE_LIMIT", 20),
	}
}

// IntentConfigured reports whether the structured-intent provider can be
// wired at all.
func (c *Config) IntentConfigured() bool {
	return c.QdrantHost != "" && c.GoogleCloudProject != ""
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloat32(key string, fallback float32) float32 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 32); err == nil {
			return float32(f)
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
