package httpapi

import (
	"context"
	"time"

	"licensegate/pkg/config"
	"licensegate/pkg/health"
	"licensegate/pkg/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
)

var Module = fx.Module("httpapi",
	fx.Provide(NewEngine),
	fx.Invoke(registerOperationalRoutes),
)

// NewEngine builds the gin engine shared by every HTTP route. Middleware order
// matters: the error renderer must wrap the rate limiter so 429s are rendered.
func NewEngine(lc fx.Lifecycle, cfg *config.Config) *gin.Engine {
	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	limiter := middleware.NewRateLimiter(cfg.Gateway.RateLimit.Requests, cfg.Gateway.RateLimit.Window)

	r := gin.New()
	r.Use(
		gin.Recovery(),
		middleware.RequestLogger(),
		middleware.Error(),
		limiter.Handler(),
	)
	if limiter != nil {
		done := make(chan struct{})
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				go sweep(limiter, cfg.Gateway.RateLimit.Window, done)
				return nil
			},
			OnStop: func(ctx context.Context) error {
				close(done)
				return nil
			},
		})
	}

	return r
}

func sweep(limiter *middleware.RateLimiter, every time.Duration, done <-chan struct{}) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			limiter.Sweep()
		case <-done:
			return
		}
	}
}

func registerOperationalRoutes(r *gin.Engine, h health.HealthService) {
	r.GET("/healthz", h.Liveness)
	r.GET("/readyz", h.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}
