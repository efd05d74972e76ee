package activity

import (
	"licensegate/pkg/config"
	"licensegate/pkg/task"
	"licensegate/pkg/taskname"

	"github.com/hibiken/asynq"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("activity.module",
	fx.Provide(
		NewDBLog,
		ProvideLog,
	),
)

// WorkerModule registers the task handler that drains AsyncLog.
var WorkerModule = fx.Module("activity.worker",
	fx.Provide(NewDBLog),
	fx.Invoke(registerHandlers),
)

type LogParams struct {
	fx.In
	Config   *config.Config
	DB       *DBLog
	Enqueuer task.Enqueuer `optional:"true"`
}

// ProvideLog prefers the queue when asynchronous logging is enabled and a
// queue is reachable, and writes inline otherwise.
func ProvideLog(p LogParams) Log {
	if p.Config.Activity.Async && p.Enqueuer != nil {
		zap.L().Info("activity log is asynchronous", zap.String("queue", p.Config.Activity.Queue))
		return NewAsyncLog(p.Enqueuer, p.Config.Activity.Queue)
	}
	return p.DB
}

func registerHandlers(mux *asynq.ServeMux, log *DBLog) {
	mux.HandleFunc(taskname.ActivityAppend, HandleAppend(log))
}
