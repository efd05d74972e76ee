package main

import (
	"log"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"licensegate/pkg/config"
	"licensegate/pkg/db"
	"licensegate/pkg/envelope"
	"licensegate/pkg/featureflags"
	"licensegate/pkg/gen"
	"licensegate/pkg/hashistack/secretmanager"
	"licensegate/pkg/health"
	"licensegate/pkg/httpapi"
	"licensegate/pkg/logger"
	"licensegate/pkg/otelcol"
	"licensegate/pkg/profiling"
	"licensegate/pkg/redis"
	"licensegate/pkg/server"
	"licensegate/pkg/task"
	"licensegate/services/activity"
	"licensegate/services/gateway"
	"licensegate/services/license"
	"licensegate/services/tenant"
)

func main() {
	opts := []fx.Option{
		secrets(),
		config.Source(),
		logger.Module,
		otelcol.Module,
		profiling.Module,
		db.Module,
		redis.Module,
		featureflags.Module,
		envelope.Module,
		task.Client,
		health.Module,
		httpapi.Module,
		gen.Module,
		tenant.Module,
		license.Module,
		activity.Module,
		gateway.Module,
		server.ProvideHTTPServer,
		fxLogger,
	}

	if err := fx.ValidateApp(opts...); err != nil {
		log.Fatalf("fx validation failed: %v", err)
	}

	app := fx.New(opts...)

	app.Run()
}

// secrets enables the Vault overlay only when VAULT_ADDR is set.
func secrets() fx.Option {
	if secretmanager.Enabled() {
		return secretmanager.Module
	}
	return fx.Options()
}

var fxLogger = fx.WithLogger(func(cfg *config.Config, logger *zap.Logger) fxevent.Logger {
	return fxevent.NopLogger
})
