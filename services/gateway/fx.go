package gateway

import (
	"licensegate/pkg/config"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

var Module = fx.Module("gateway.module",
	fx.Provide(
		NewService,
		NewHandler,
		ProvideNonceGuard,
	),
	fx.Invoke(registerRoutes),
)

type NonceGuardParams struct {
	fx.In
	Config *config.Config
	Redis  *redis.Client `optional:"true"`
}

// ProvideNonceGuard returns nil without redis; freshness checks still apply.
func ProvideNonceGuard(p NonceGuardParams) NonceGuard {
	if p.Redis == nil {
		return nil
	}
	return NewRedisNonceGuard(p.Redis, p.Config.Gateway.ReplayWindow)
}

func registerRoutes(r *gin.Engine, h *Handler) {
	h.Register(r)
}
