package middleware

import (
	"time"

	"licensegate/pkg/errutil"

	"github.com/gin-gonic/gin"
	"github.com/puzpuzpuz/xsync/v3"
	"golang.org/x/time/rate"
)

// RateLimiter is a per-client token bucket kept in process memory. It resets
// on restart and is not shared between instances, so it is a best-effort guard
// only; redemption invariants never depend on it.
type RateLimiter struct {
	limit    rate.Limit
	burst    int
	idle     time.Duration
	now      func() time.Time
	visitors *xsync.MapOf[string, *visitor]
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter allows `requests` per `window` per client, with the full
// window allowance available as burst.
func NewRateLimiter(requests int, window time.Duration) *RateLimiter {
	if requests <= 0 || window <= 0 {
		return nil
	}
	return &RateLimiter{
		limit:    rate.Limit(float64(requests) / window.Seconds()),
		burst:    requests,
		idle:     window,
		now:      time.Now,
		visitors: xsync.NewMapOf[string, *visitor](),
	}
}

func (rl *RateLimiter) Allow(client string) bool {
	now := rl.now()
	v, _ := rl.visitors.Compute(client, func(old *visitor, loaded bool) (*visitor, bool) {
		if !loaded {
			old = &visitor{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		}
		old.lastSeen = now
		return old, false
	})
	return v.limiter.AllowN(now, 1)
}

// Sweep drops clients idle for longer than one window.
func (rl *RateLimiter) Sweep() {
	cutoff := rl.now().Add(-rl.idle)
	rl.visitors.Range(func(key string, v *visitor) bool {
		if v.lastSeen.Before(cutoff) {
			rl.visitors.Delete(key)
		}
		return true
	})
}

// Handler aborts with 429 once a client exhausts its allowance. A nil
// limiter lets everything through.
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl == nil || rl.Allow(c.ClientIP()) {
			c.Next()
			return
		}

		c.Header("Retry-After", "60")
		_ = c.Error(errutil.TooManyRequest("rate limit exceeded", nil))
		c.Abort()
	}
}
