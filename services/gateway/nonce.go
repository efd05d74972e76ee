package gateway

import (
	"context"
	"time"

	"licensegate/pkg/rediskey"

	"github.com/redis/go-redis/v9"
)

// NonceGuard remembers nonces for a while and reports whether one is new.
type NonceGuard interface {
	Claim(ctx context.Context, owner, nonce string) (bool, error)
	// Release forgets a claimed nonce.
	Release(ctx context.Context, owner, nonce string) error
}

type RedisNonceGuard struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisNonceGuard keeps nonces for twice the replay window, which covers
// every timestamp the freshness check can still accept.
func NewRedisNonceGuard(client *redis.Client, window time.Duration) *RedisNonceGuard {
	return &RedisNonceGuard{client: client, ttl: 2 * window}
}

func (g *RedisNonceGuard) Claim(ctx context.Context, owner, nonce string) (bool, error) {
	return g.client.SetNX(ctx, rediskey.BuildNonceKey(owner, nonce), 1, g.ttl).Result()
}

func (g *RedisNonceGuard) Release(ctx context.Context, owner, nonce string) error {
	return g.client.Del(ctx, rediskey.BuildNonceKey(owner, nonce)).Err()
}
