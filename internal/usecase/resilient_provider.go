package usecase

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"isanbot/internal/domain/entity"
	"isanbot/internal/domain/repository"
)

// ResilientProvider wraps a primary and a fallback generative provider.
// The primary gets retries with jittered backoff on transient errors; the
// fallback model gets one attempt. The whole chain runs under one timeout
// so a slow model cannot eat the reply window.
type ResilientProvider struct {
	primary    repository.GenerativeProvider
	fallback   repository.GenerativeProvider
	maxRetries int
	baseDelay  time.Duration
	timeout    time.Duration
	log        zerolog.Logger
}

func NewResilientProvider(primary, fallback repository.GenerativeProvider, timeout time.Duration, log zerolog.Logger) *ResilientProvider {
	return &ResilientProvider{
		primary:    primary,
		fallback:   fallback,
		maxRetries: 2,
		baseDelay:  500 * time.Millisecond,
		timeout:    timeout,
		log:        log,
	}
}

func (r *ResilientProvider) TextOnly(ctx context.Context, prompt string) (string, error) {
	return r.execute(ctx, func(ctx context.Context, p repository.GenerativeProvider) (string, error) {
		return p.TextOnly(ctx, prompt)
	})
}

func (r *ResilientProvider) FoodQuery(ctx context.Context, prompt string, recipes []entity.Recipe, foodCtx *entity.FoodContext) (string, error) {
	return r.execute(ctx, func(ctx context.Context, p repository.GenerativeProvider) (string, error) {
		return p.FoodQuery(ctx, prompt, recipes, foodCtx)
	})
}

func (r *ResilientProvider) ContinueConversation(ctx context.Context, prompt string, foodCtx *entity.FoodContext) (string, error) {
	return r.execute(ctx, func(ctx context.Context, p repository.GenerativeProvider) (string, error) {
		return p.ContinueConversation(ctx, prompt, foodCtx)
	})
}

func (r *ResilientProvider) Multimodal(ctx context.Context, image []byte) (string, error) {
	return r.execute(ctx, func(ctx context.Context, p repository.GenerativeProvider) (string, error) {
		return p.Multimodal(ctx, image)
	})
}

func (r *ResilientProvider) execute(ctx context.Context, call func(context.Context, repository.GenerativeProvider) (string, error)) (string, error) {
	resCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	resp, err := r.executeWithRetry(resCtx, r.primary, call)
	if err == nil {
		return resp, nil
	}

	r.log.Warn().Err(err).Msg("primary model exhausted, switching to fallback")

	resp, err = call(resCtx, r.fallback)
	if err != nil {
		return "", fmt.Errorf("both primary and fallback failed: %w", err)
	}
	return resp, nil
}

func (r *ResilientProvider) executeWithRetry(ctx context.Context, p repository.GenerativeProvider, call func(context.Context, repository.GenerativeProvider) (string, error)) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		resp, err := call(ctx, p)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if !r.isRetryable(err) || attempt == r.maxRetries {
			break
		}

		select {
		case <-time.After(r.calculateBackoff(attempt)):
			continue
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return "", lastErr
}

func (r *ResilientProvider) isRetryable(err error) bool {
	msg := strings.ToLower(err.Error())
	// Retry on rate limits (429) and server errors (5xx)
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "500") ||
		strings.Contains(msg, "503") ||
		strings.Contains(msg, "overloaded") ||
		strings.Contains(msg, "deadline")
}

func (r *ResilientProvider) calculateBackoff(attempt int) time.Duration {
	backoff := float64(r.baseDelay) * float64(int(1)<<attempt)
	jitter := (rand.Float64() * 0.2) * backoff // 20% jitter
	return time.Duration(backoff + jitter)
}
