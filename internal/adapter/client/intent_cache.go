package client

import (
	"context"
	"strings"
	"sync"
	"time"

	"isanbot/internal/domain/entity"
)

// IntentCache keeps the full intent table in memory with a TTL so direct
// text lookups do not hit the index on every message.
type IntentCache struct {
	list func(ctx context.Context) ([]entity.Intent, error)
	ttl  time.Duration
	now  func() time.Time

	mu      sync.Mutex
	intents []entity.Intent
	fetched time.Time
}

func NewIntentCache(list func(ctx context.Context) ([]entity.Intent, error), ttl time.Duration) *IntentCache {
	return &IntentCache{
		list: list,
		ttl:  ttl,
		now:  time.Now,
	}
}

// Get returns the cached intent table, refreshing it when stale or when
// forceRefresh is set.
func (c *IntentCache) Get(ctx context.Context, forceRefresh bool) ([]entity.Intent, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	fresh := !c.fetched.IsZero() && c.now().Sub(c.fetched) < c.ttl
	if fresh && !forceRefresh {
		return c.intents, nil
	}

	intents, err := c.list(ctx)
	if err != nil {
		// Serve stale data over nothing.
		if len(c.intents) > 0 {
			return c.intents, nil
		}
		return nil, err
	}
	c.intents = intents
	c.fetched = c.now()
	return c.intents, nil
}

// FindByText matches the query against the cached table without the
// vector index: exact display name, then exact training phrase, then
// partial name, then partial phrase.
func (c *IntentCache) FindByText(ctx context.Context, text string) (*entity.Intent, error) {
	intents, err := c.Get(ctx, false)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(strings.TrimSpace(text))
	for i := range intents {
		if strings.ToLower(intents[i].DisplayName) == needle {
			return &intents[i], nil
		}
	}
	for i := range intents {
		for _, phrase := range intents[i].TrainingPhrases {
			if strings.ToLower(phrase) == needle {
				return &intents[i], nil
			}
		}
	}
	for i := range intents {
		if strings.Contains(strings.ToLower(intents[i].DisplayName), needle) {
			return &intents[i], nil
		}
	}
	for i := range intents {
		for _, phrase := range intents[i].TrainingPhrases {
			if strings.Contains(strings.ToLower(phrase), needle) {
				return &intents[i], nil
			}
		}
	}
	return nil, nil
}
