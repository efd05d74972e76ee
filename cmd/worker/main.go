package main

import (
	"log"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"licensegate/pkg/config"
	"licensegate/pkg/db"
	"licensegate/pkg/gen"
	"licensegate/pkg/hashistack/secretmanager"
	"licensegate/pkg/logger"
	"licensegate/pkg/otelcol"
	"licensegate/pkg/profiling"
	"licensegate/pkg/task"
	"licensegate/services/activity"
)

// worker drains the activity queue filled by gateways running with
// ACTIVITY.ASYNC enabled.
func main() {
	opts := []fx.Option{
		secrets(),
		config.Source(),
		logger.Module,
		otelcol.Module,
		profiling.Module,
		db.Module,
		gen.Module,
		task.Server,
		activity.WorkerModule,
		fxLogger,
	}

	if err := fx.ValidateApp(opts...); err != nil {
		log.Fatalf("fx validation failed: %v", err)
	}

	fx.New(opts...).Run()
}

func secrets() fx.Option {
	if secretmanager.Enabled() {
		return secretmanager.Module
	}
	return fx.Options()
}

var fxLogger = fx.WithLogger(func(cfg *config.Config, logger *zap.Logger) fxevent.Logger {
	return fxevent.NopLogger
})
