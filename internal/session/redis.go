package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "vehicle-finance-bot/internal/common/errors"
	"vehicle-finance-bot/internal/models"
)

const keyPrefix = "session:"

// RedisStore serializes sessions to JSON under "session:<id>". Every Put
// refreshes the idle TTL; a TTL of zero disables expiry.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Get(ctx context.Context, id string) (*models.Session, error) {
	raw, err := s.client.Get(ctx, keyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperrors.NewSessionNotFound(id)
		}
		return nil, apperrors.NewSessionStoreError(fmt.Errorf("get session %s: %w", id, err))
	}

	var sess models.Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, apperrors.NewSessionStoreError(fmt.Errorf("decode session %s: %w", id, err))
	}
	return &sess, nil
}

func (s *RedisStore) Put(ctx context.Context, sess *models.Session) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return apperrors.NewSessionStoreError(fmt.Errorf("encode session %s: %w", sess.ID, err))
	}

	if err := s.client.Set(ctx, keyPrefix+sess.ID, raw, s.ttl).Err(); err != nil {
		return apperrors.NewSessionStoreError(fmt.Errorf("put session %s: %w", sess.ID, err))
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, keyPrefix+id).Err(); err != nil {
		return apperrors.NewSessionStoreError(fmt.Errorf("delete session %s: %w", id, err))
	}
	return nil
}
