package gateway

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"licensegate/pkg/rediskey"
)

func TestRedisNonceGuard(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	guard := NewRedisNonceGuard(rdb, 300*time.Second)
	ctx := context.Background()

	fresh, err := guard.Claim(ctx, "acme", "n-1")
	require.NoError(t, err)
	require.True(t, fresh)
	require.Equal(t, 600*time.Second, mr.TTL(rediskey.BuildNonceKey("acme", "n-1")))

	fresh, err = guard.Claim(ctx, "acme", "n-1")
	require.NoError(t, err)
	require.False(t, fresh)

	fresh, err = guard.Claim(ctx, "other", "n-1")
	require.NoError(t, err)
	require.True(t, fresh, "nonces are scoped per owner")

	require.NoError(t, guard.Release(ctx, "acme", "n-1"))
	fresh, err = guard.Claim(ctx, "acme", "n-1")
	require.NoError(t, err)
	require.True(t, fresh)

	mr.FastForward(601 * time.Second)
	fresh, err = guard.Claim(ctx, "other", "n-1")
	require.NoError(t, err)
	require.True(t, fresh, "expired nonces may be reused")
}
