package revocation

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	tokenKeyPrefix  = "auth:revoked:jti:"
	familyKeyPrefix = "auth:revoked:family:"
)

// RedisStore is the shared networked store for multi-node deployments.
// Expiry rides on Redis key TTLs, so entries clean themselves up.
type RedisStore struct {
	client redis.UniversalClient
}

func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	return s.exists(ctx, tokenKeyPrefix+jti)
}

func (s *RedisStore) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	return s.set(ctx, tokenKeyPrefix+jti, ttl)
}

func (s *RedisStore) IsFamilyRevoked(ctx context.Context, family string) (bool, error) {
	return s.exists(ctx, familyKeyPrefix+family)
}

func (s *RedisStore) RevokeFamily(ctx context.Context, family string, ttl time.Duration) error {
	return s.set(ctx, familyKeyPrefix+family, ttl)
}

func (s *RedisStore) exists(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists: %w", err)
	}
	return n > 0, nil
}

func (s *RedisStore) set(ctx context.Context, key string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := s.client.Set(ctx, key, "1", ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}
