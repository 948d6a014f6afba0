package store

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"isanbot/internal/classify"
	"isanbot/internal/domain/entity"
)

const (
	popularQueriesKey     = "popular_queries"
	popularQueryKeyPrefix = "popular_query:"
	userQueryKeyPrefix    = "userquery:"
)

// RedisQueryLog persists answered queries and the popular-query counters.
// Both families key on the normalized (lowercased, trimmed) query text so
// repeats of the same question land on one record.
type RedisQueryLog struct {
	client *redis.Client
}

func NewRedisQueryLog(client *redis.Client) *RedisQueryLog {
	return &RedisQueryLog{client: client}
}

// SaveUserQuery upserts the query/answer record, bumping the repeat count
// when the same question has been answered before.
func (s *RedisQueryLog) SaveUserQuery(ctx context.Context, query, response, source string) error {
	key := userQueryKeyPrefix + classify.Normalize(query)
	nowMs := time.Now().UnixMilli()

	pipe := s.client.TxPipeline()
	pipe.HIncrBy(ctx, key, "count", 1)
	pipe.HSet(ctx, key, "query", query, "response", response, "source", source, "last_updated", nowMs)
	pipe.HSetNX(ctx, key, "timestamp", nowMs)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: %v", entity.ErrPersistenceFailure, err)
	}
	return nil
}

func (s *RedisQueryLog) TrackPopularQuery(ctx context.Context, query string) error {
	normalized := classify.Normalize(query)
	if normalized == "" {
		return nil
	}
	nowMs := time.Now().UnixMilli()

	pipe := s.client.TxPipeline()
	pipe.ZIncrBy(ctx, popularQueriesKey, 1, normalized)
	pipe.HSetNX(ctx, popularQueryKeyPrefix+normalized, "created", nowMs)
	pipe.HSet(ctx, popularQueryKeyPrefix+normalized, "last_updated", nowMs)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: %v", entity.ErrPersistenceFailure, err)
	}
	return nil
}

// PopularQueries returns the most asked questions, highest count first;
// equal counts order by most recent update.
func (s *RedisQueryLog) PopularQueries(ctx context.Context, limit int) ([]entity.PopularQuery, error) {
	if limit <= 0 {
		return nil, nil
	}

	members, err := s.client.ZRevRangeWithScores(ctx, popularQueriesKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrPersistenceFailure, err)
	}

	queries := make([]entity.PopularQuery, 0, len(members))
	for _, m := range members {
		text, ok := m.Member.(string)
		if !ok {
			continue
		}
		pq := entity.PopularQuery{Text: text, Count: int64(m.Score)}
		if meta, err := s.client.HGetAll(ctx, popularQueryKeyPrefix+text).Result(); err == nil {
			if ms, err := strconv.ParseInt(meta["created"], 10, 64); err == nil {
				pq.Created = time.UnixMilli(ms)
			}
			if ms, err := strconv.ParseInt(meta["last_updated"], 10, 64); err == nil {
				pq.LastUpdated = time.UnixMilli(ms)
			}
		}
		queries = append(queries, pq)
	}

	sort.SliceStable(queries, func(i, j int) bool {
		if queries[i].Count != queries[j].Count {
			return queries[i].Count > queries[j].Count
		}
		return queries[i].LastUpdated.After(queries[j].LastUpdated)
	})
	return queries, nil
}
