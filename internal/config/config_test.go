package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type ConfigSuite struct {
	suite.Suite
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigSuite))
}

func (s *ConfigSuite) TestDefaults() {
	cfg := Load()

	s.Equal("3000", cfg.Port)
	s.Equal("localhost:6379", cfg.RedisAddr)
	s.Equal(6334, cfg.QdrantPort)
	s.Equal("intents", cfg.QdrantIntentCollection)
	s.Equal("gemini-2.5-flash", cfg.GeminiModel)
	s.Equal("gemini-1.5-flash", cfg.GeminiFallbackModel)
	s.Equal("text-embedding-004", cfg.EmbeddingModel)
	s.Equal(768, cfg.EmbeddingDim)
	s.False(cfg.VerifySignature)

	s.InDelta(0.1, cfg.IntentConfidenceMin, 1e-6)
	s.InDelta(0.3, cfg.DirectQueryConfidence, 1e-6)
	s.InDelta(0.5, cfg.GenericQueryConfidence, 1e-6)

	s.Equal(5*time.Second, cfg.IntentTimeout)
	s.Equal(20*time.Second, cfg.ReplyTimeout)
	s.Equal(25*time.Second, cfg.EventMaxAge)
	s.Equal(time.Hour, cfg.IntentCacheTTL)

	s.Equal(5, cfg.HistoryWindow)
	s.Equal(7*24*time.Hour, cfg.RecencyWindow)
	s.InDelta(1.5, cfg.RecencyFactor, 1e-9)
	s.Equal(10, cfg.RecommendMax)
	s.Equal(20, cfg.GlobalScoreLimit)
}

func (s *ConfigSuite) TestEnvOverrides() {
	s.T().Setenv("PORT", "8080")
	s.T().Setenv("INTENT_TIMEOUT", "2s")
	s.T().Setenv("DIRECT_QUERY_CONFIDENCE", "0.45")
	s.T().Setenv("LINE_VERIFY_SIGNATURE", "true")
	s.T().Setenv("HISTORY_WINDOW", "8")

	cfg := Load()

	s.Equal("8080", cfg.Port)
	s.Equal(2*time.Second, cfg.IntentTimeout)
	s.InDelta(0.45, cfg.DirectQueryConfidence, 1e-6)
	s.True(cfg.VerifySignature)
	s.Equal(8, cfg.HistoryWindow)
}

func (s *ConfigSuite) TestInvalidValuesFallBack() {
	s.T().Setenv("QDRANT_PORT", "not-a-port")
	s.T().Setenv("INTENT_TIMEOUT", "soon")
	s.T().Setenv("LINE_VERIFY_SIGNATURE", "maybe")

	cfg := Load()

	s.Equal(6334, cfg.QdrantPort)
	s.Equal(5*time.Second, cfg.IntentTimeout)
	s.False(cfg.VerifySignature)
}

func (s *ConfigSuite) TestIntentConfigured() {
	cfg := &Config{}
	s.False(cfg.IntentConfigured())

	cfg.QdrantHost = "localhost"
	s.False(cfg.IntentConfigured())

	cfg.GoogleCloudProject = "my-project"
	s.True(cfg.IntentConfigured())
}
