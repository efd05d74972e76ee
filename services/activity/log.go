package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"licensegate/pkg/config"
	"licensegate/pkg/repository"
	"licensegate/pkg/task"
	"licensegate/pkg/taskname"

	"github.com/bwmarrin/snowflake"
	"github.com/hibiken/asynq"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

type Log interface {
	Append(ctx context.Context, ev Event) error
}

// DBLog writes history rows directly.
type DBLog struct {
	repo    repository.Repository[History]
	node    *snowflake.Node
	timeout time.Duration
}

type DBLogParams struct {
	fx.In
	DB     *gorm.DB
	Node   *snowflake.Node
	Config *config.Config
}

func NewDBLog(p DBLogParams) *DBLog {
	return &DBLog{
		repo:    repository.ProvideStore[History](p.DB),
		node:    p.Node,
		timeout: p.Config.Gateway.StoreTimeout,
	}
}

func (l *DBLog) Append(ctx context.Context, ev Event) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), l.timeout)
	defer cancel()

	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}

	row := &History{
		ID:        l.node.Generate().Int64(),
		KeysID:    ev.LicenseID,
		UserDo:    ev.Actor,
		Info:      ev.Info,
		Owner:     ev.Owner,
		CreatedAt: at.UTC(),
	}
	if err := l.repo.Create(ctx, row); err != nil {
		return repository.Unavailable(err)
	}
	return nil
}

// AsyncLog hands events to the worker through asynq.
type AsyncLog struct {
	enqueuer task.Enqueuer
	queue    string
}

func NewAsyncLog(enqueuer task.Enqueuer, queue string) *AsyncLog {
	return &AsyncLog{enqueuer: enqueuer, queue: queue}
}

func (l *AsyncLog) Append(ctx context.Context, ev Event) error {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	t := asynq.NewTask(taskname.ActivityAppend, payload, asynq.MaxRetry(5), asynq.Timeout(30*time.Second))
	if _, err := l.enqueuer.Enqueue(context.WithoutCancel(ctx), t, asynq.Queue(l.queue)); err != nil {
		return fmt.Errorf("enqueue activity: %w", err)
	}
	return nil
}

// HandleAppend persists events enqueued by AsyncLog.
func HandleAppend(log *DBLog) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var ev Event
		if err := json.Unmarshal(t.Payload(), &ev); err != nil {
			return fmt.Errorf("invalid payload: %v: %w", err, asynq.SkipRetry)
		}
		return log.Append(ctx, ev)
	}
}
