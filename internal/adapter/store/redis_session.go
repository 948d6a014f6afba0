package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"isanbot/internal/domain/entity"
)

const sessionKeyPrefix = "user:"

// RedisSessionStore keeps one session document per user. Updates use
// WATCH/MULTI optimistic locking keyed on the session version; sessions
// are never deleted, only reset by the caller.
type RedisSessionStore struct {
	client *redis.Client
}

func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{client: client}
}

func (s *RedisSessionStore) key(userID string) string {
	return sessionKeyPrefix + userID
}

func (s *RedisSessionStore) Get(ctx context.Context, userID string) (*entity.UserSession, error) {
	val, err := s.client.Get(ctx, s.key(userID)).Result()
	if err == redis.Nil {
		return nil, entity.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrPersistenceFailure, err)
	}

	var session entity.UserSession
	if err := json.Unmarshal([]byte(val), &session); err != nil {
		return nil, fmt.Errorf("%w: corrupt session document: %v", entity.ErrPersistenceFailure, err)
	}
	return &session, nil
}

func (s *RedisSessionStore) Create(ctx context.Context, session *entity.UserSession) error {
	session.Version = 1
	now := time.Now()
	if session.Created.IsZero() {
		session.Created = now
	}
	session.LastUpdated = now

	val, err := json.Marshal(session)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key(session.UserID), val, 0).Err(); err != nil {
		return fmt.Errorf("%w: %v", entity.ErrPersistenceFailure, err)
	}
	return nil
}

// Update persists the session only if the stored version still matches;
// returns entity.ErrVersionConflict when another writer got there first.
func (s *RedisSessionStore) Update(ctx context.Context, session *entity.UserSession) error {
	key := s.key(session.UserID)

	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		val, err := tx.Get(ctx, key).Result()
		if err == redis.Nil {
			return entity.ErrSessionNotFound
		}
		if err != nil {
			return err
		}

		var stored entity.UserSession
		if err := json.Unmarshal([]byte(val), &stored); err != nil {
			return err
		}
		if stored.Version != session.Version {
			return entity.ErrVersionConflict
		}

		session.Version++
		session.LastUpdated = time.Now()

		newVal, err := json.Marshal(session)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, newVal, 0)
			return nil
		})
		return err
	}, key)

	if err == redis.TxFailedErr {
		return entity.ErrVersionConflict
	}
	return err
}
