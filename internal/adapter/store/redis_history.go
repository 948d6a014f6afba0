package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"isanbot/internal/domain/entity"
)

const (
	historyKeyPrefix = "history:"
	historyMaxLen    = 50
)

// RedisHistoryStore keeps a capped per-user query log, newest first.
type RedisHistoryStore struct {
	client *redis.Client
}

func NewRedisHistoryStore(client *redis.Client) *RedisHistoryStore {
	return &RedisHistoryStore{client: client}
}

func (s *RedisHistoryStore) Append(ctx context.Context, userID string, entry entity.QueryHistoryEntry) error {
	val, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	key := historyKeyPrefix + userID
	pipe := s.client.TxPipeline()
	pipe.LPush(ctx, key, val)
	pipe.LTrim(ctx, key, 0, historyMaxLen-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: %v", entity.ErrPersistenceFailure, err)
	}
	return nil
}

// Recent returns up to limit entries, most recent first.
func (s *RedisHistoryStore) Recent(ctx context.Context, userID string, limit int) ([]entity.QueryHistoryEntry, error) {
	if limit <= 0 {
		return nil, nil
	}

	vals, err := s.client.LRange(ctx, historyKeyPrefix+userID, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrPersistenceFailure, err)
	}

	entries := make([]entity.QueryHistoryEntry, 0, len(vals))
	for _, v := range vals {
		var e entity.QueryHistoryEntry
		if err := json.Unmarshal([]byte(v), &e); err != nil {
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}
