package client

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"isanbot/internal/adapter/store"
	"isanbot/internal/domain/entity"
	"isanbot/internal/domain/repository"
)

// IntentClient resolves structured intents. It tries an exact match
// against the cached intent table first, then falls back to embedding
// similarity search over the intent index. Failures never surface as Go
// errors; they come back in the result envelope so the caller can demote
// to the generative tier.
type IntentClient struct {
	index         *store.QdrantIntentIndex
	embedder      repository.Embedder
	cache         *IntentCache
	minConfidence float32
	timeout       time.Duration
	configured    bool
	log           zerolog.Logger
}

func NewIntentClient(index *store.QdrantIntentIndex, embedder repository.Embedder, cacheTTL time.Duration, minConfidence float32, timeout time.Duration, configured bool, log zerolog.Logger) *IntentClient {
	c := &IntentClient{
		index:         index,
		embedder:      embedder,
		minConfidence: minConfidence,
		timeout:       timeout,
		configured:    configured,
		log:           log,
	}
	if index != nil {
		c.cache = NewIntentCache(index.List, cacheTTL)
	}
	return c
}

func (c *IntentClient) IsConfigured() bool {
	return c.configured
}

func (c *IntentClient) Cache() *IntentCache {
	return c.cache
}

func (c *IntentClient) DetectIntent(ctx context.Context, text, sessionID string) *entity.ProviderResult {
	if !c.configured {
		return &entity.ProviderResult{
			Success:   false,
			ErrorType: entity.ProviderErrUnavailable,
			Message:   "intent provider is not configured",
		}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if intent, err := c.cache.FindByText(ctx, text); err == nil && intent != nil && len(intent.Responses) > 0 {
		c.log.Debug().Str("session_id", sessionID).Str("intent", intent.DisplayName).Msg("direct intent match")
		return &entity.ProviderResult{
			Success:    true,
			Found:      true,
			Intent:     intent.DisplayName,
			Confidence: 1.0,
			Response:   intent.Responses[0],
		}
	}

	vector, err := c.embedder.CreateEmbedding(ctx, text)
	if err != nil {
		return c.failure(sessionID, err)
	}

	match, err := c.index.Search(ctx, vector)
	if err != nil {
		return c.failure(sessionID, err)
	}
	if match == nil {
		return &entity.ProviderResult{
			Success: true,
			Found:   false,
			Message: "no intent matched",
		}
	}
	if match.Score < c.minConfidence || match.Response == "" {
		return &entity.ProviderResult{
			Success:    true,
			Found:      false,
			Intent:     match.DisplayName,
			Confidence: match.Score,
			Message:    "no confident intent match",
		}
	}

	return &entity.ProviderResult{
		Success:    true,
		Found:      true,
		Intent:     match.DisplayName,
		Confidence: match.Score,
		Response:   match.Response,
		Parameters: map[string]string{"matched_phrase": match.Phrase},
	}
}

func (c *IntentClient) failure(sessionID string, err error) *entity.ProviderResult {
	errorType := entity.ProviderErrAPI
	if errors.Is(err, context.DeadlineExceeded) {
		errorType = entity.ProviderErrTimeout
	} else if st, ok := status.FromError(err); ok {
		switch st.Code() {
		case codes.DeadlineExceeded:
			errorType = entity.ProviderErrTimeout
		case codes.Unavailable:
			errorType = entity.ProviderErrUnavailable
		case codes.PermissionDenied:
			errorType = entity.ProviderErrPermission
		case codes.NotFound:
			errorType = entity.ProviderErrNotFound
		}
	}

	c.log.Warn().Str("session_id", sessionID).Str("error_type", errorType).Err(err).Msg("intent detection failed")
	return &entity.ProviderResult{
		Success:   false,
		ErrorType: errorType,
		Message:   err.Error(),
	}
}
