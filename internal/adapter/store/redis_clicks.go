package store

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"isanbot/internal/domain/entity"
)

const (
	userClicksKeyPrefix  = "userclicks:"
	recipeScoresKey      = "recipescores"
	recipeScoreKeyPrefix = "recipescore:"
	viewCountKeyPrefix   = "views:"
)

// RedisClickStore records recipe clicks twice: a per-user hash for the
// personal recommendation tier and a global sorted set for the popularity
// tier. Members in both encode "<source>|<recipe id>" so the recommender
// can resolve the document back from the right collection.
type RedisClickStore struct {
	client *redis.Client
}

func NewRedisClickStore(client *redis.Client) *RedisClickStore {
	return &RedisClickStore{client: client}
}

func clickMember(ref entity.RecipeRef) string {
	return ref.Source + "|" + ref.ID
}

func splitClickMember(member string) (source, id string) {
	for i := 0; i < len(member); i++ {
		if member[i] == '|' {
			return member[:i], member[i+1:]
		}
	}
	return "", member
}

func (s *RedisClickStore) TrackClick(ctx context.Context, userID string, ref entity.RecipeRef) error {
	member := clickMember(ref)
	nowMs := time.Now().UnixMilli()

	pipe := s.client.TxPipeline()
	pipe.HIncrBy(ctx, userClicksKeyPrefix+userID, member, 1)
	pipe.HSet(ctx, userClicksKeyPrefix+userID+":last", member, nowMs)
	pipe.ZIncrBy(ctx, recipeScoresKey, 1, member)
	pipe.HSet(ctx, recipeScoreKeyPrefix+member, "last_clicked", nowMs)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: %v", entity.ErrPersistenceFailure, err)
	}
	return nil
}

// TrackView bumps a plain per-recipe view counter, separate from the click
// scores that drive recommendations.
func (s *RedisClickStore) TrackView(ctx context.Context, ref entity.RecipeRef) error {
	if err := s.client.Incr(ctx, viewCountKeyPrefix+clickMember(ref)).Err(); err != nil {
		return fmt.Errorf("%w: %v", entity.ErrPersistenceFailure, err)
	}
	return nil
}

func (s *RedisClickStore) UserClicks(ctx context.Context, userID string) ([]entity.ClickRecord, error) {
	counts, err := s.client.HGetAll(ctx, userClicksKeyPrefix+userID).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrPersistenceFailure, err)
	}
	lastSeen, err := s.client.HGetAll(ctx, userClicksKeyPrefix+userID+":last").Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrPersistenceFailure, err)
	}

	records := make([]entity.ClickRecord, 0, len(counts))
	for member, raw := range counts {
		count, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			continue
		}
		source, id := splitClickMember(member)
		rec := entity.ClickRecord{
			UserID:   userID,
			RecipeID: id,
			Source:   source,
			Count:    count,
		}
		if ms, err := strconv.ParseInt(lastSeen[member], 10, 64); err == nil {
			rec.LastClicked = time.UnixMilli(ms)
		}
		records = append(records, rec)
	}
	return records, nil
}

// TopScores returns the globally most clicked recipes, highest first.
func (s *RedisClickStore) TopScores(ctx context.Context, limit int) ([]entity.RecipeScore, error) {
	if limit <= 0 {
		return nil, nil
	}

	members, err := s.client.ZRevRangeWithScores(ctx, recipeScoresKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrPersistenceFailure, err)
	}

	scores := make([]entity.RecipeScore, 0, len(members))
	for _, m := range members {
		member, ok := m.Member.(string)
		if !ok {
			continue
		}
		source, id := splitClickMember(member)
		score := entity.RecipeScore{
			RecipeID:    id,
			Source:      source,
			TotalClicks: int64(m.Score),
		}
		if raw, err := s.client.HGet(ctx, recipeScoreKeyPrefix+member, "last_clicked").Result(); err == nil {
			if ms, err := strconv.ParseInt(raw, 10, 64); err == nil {
				score.LastClicked = time.UnixMilli(ms)
			}
		}
		scores = append(scores, score)
	}
	return scores, nil
}
