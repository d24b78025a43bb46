package revocation

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/webstack/webstack/internal/errors"
)

const redisKeyPrefix = "webstack:revoked:"

// RedisStore tracks revoked token IDs in Redis so revocations are shared
// across instances. Entries expire via Redis TTL, so Cleanup is a no-op.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a Redis-backed revocation store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		// Already expired, nothing to block.
		return nil
	}

	if err := s.client.Set(ctx, redisKeyPrefix+tokenID, "1", ttl).Err(); err != nil {
		return apperrors.Wrap(err, "failed to revoke token")
	}

	return nil
}

func (s *RedisStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	count, err := s.client.Exists(ctx, redisKeyPrefix+tokenID).Result()
	if err != nil {
		return false, apperrors.Wrap(err, "failed to check token revocation")
	}

	return count > 0, nil
}

// Cleanup is a no-op because Redis expires entries on its own.
func (s *RedisStore) Cleanup(_ context.Context, _ time.Time) (int, error) {
	return 0, nil
}
