package service

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenStore is the invalidation set consulted on every authenticated
// request. Logout and refresh rotation add token ids; entries expire with
// the token itself.
type TokenStore interface {
	Invalidate(ctx context.Context, jti string, ttl time.Duration) error
	IsInvalidated(ctx context.Context, jti string) (bool, error)
}

const invalidatedKeyPrefix = "invalidated_token:"

type redisTokenStore struct{ client *redis.Client }

func NewRedisTokenStore(client *redis.Client) TokenStore {
	return &redisTokenStore{client: client}
}

func (s *redisTokenStore) Invalidate(ctx context.Context, jti string, ttl time.Duration) error {
	if err := s.client.Set(ctx, invalidatedKeyPrefix+jti, "1", ttl).Err(); err != nil {
		return fmt.Errorf("invalidate token: %w", err)
	}
	return nil
}

func (s *redisTokenStore) IsInvalidated(ctx context.Context, jti string) (bool, error) {
	n, err := s.client.Exists(ctx, invalidatedKeyPrefix+jti).Result()
	if err != nil {
		return false, fmt.Errorf("check token: %w", err)
	}
	return n > 0, nil
}
