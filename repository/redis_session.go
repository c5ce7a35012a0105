package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const sessionDenylistPrefix = "auth:revoked_session:"

// redisSessionDenylist keeps one key per revoked credential. The key TTL
// equals the credential's remaining lifetime, so entries vanish on their own
// once the credential could no longer verify anyway.
type redisSessionDenylist struct {
	client redis.Cmdable
}

// NewRedisSessionDenylist returns a SessionDenylist backed by Redis.
func NewRedisSessionDenylist(client redis.Cmdable) SessionDenylist {
	return &redisSessionDenylist{client: client}
}

func (r *redisSessionDenylist) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	if err := r.client.Set(ctx, sessionDenylistPrefix+jti, 1, ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

func (r *redisSessionDenylist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := r.client.Exists(ctx, sessionDenylistPrefix+jti).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check session denylist: %w", err)
	}
	return n > 0, nil
}
