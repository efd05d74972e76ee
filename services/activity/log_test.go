package activity

import (
	"context"
	"errors"
	"testing"
	"time"

	"licensegate/pkg/config"
	"licensegate/pkg/taskname"
	"licensegate/services/testutil"

	"github.com/bwmarrin/snowflake"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeEnqueuer struct {
	tasks []*asynq.Task
	err   error
}

func (f *fakeEnqueuer) Enqueue(_ context.Context, t *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.tasks = append(f.tasks, t)
	return &asynq.TaskInfo{Type: t.Type()}, nil
}

func newTestDBLog(t *testing.T) (*DBLog, *gorm.DB) {
	t.Helper()

	db := testutil.NewTestDB(t, &History{})
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.Gateway.StoreTimeout = time.Second

	return NewDBLog(DBLogParams{DB: db, Node: node, Config: cfg}), db
}

func TestDBLogAppend(t *testing.T) {
	l, db := newTestDBLog(t)
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, l.Append(context.Background(), Event{LicenseID: "1", Actor: "reseller", Info: "activate", Owner: "acme", At: at}))
	require.NoError(t, l.Append(context.Background(), Event{LicenseID: "1", Actor: "reseller", Info: "bind device-a", Owner: "acme"}))

	var rows []History
	require.NoError(t, db.Order("id_history").Find(&rows).Error)
	require.Len(t, rows, 2)
	require.NotEqual(t, rows[0].ID, rows[1].ID)
	require.Equal(t, "activate", rows[0].Info)
	require.Equal(t, "acme", rows[0].Owner)
	require.True(t, rows[0].CreatedAt.Equal(at))
	require.False(t, rows[1].CreatedAt.IsZero())
}

func TestAsyncLogRoundTrip(t *testing.T) {
	enq := &fakeEnqueuer{}
	async := NewAsyncLog(enq, "default")

	ev := Event{LicenseID: "7", Actor: "owner", Info: "bind device-b", Owner: "acme"}
	require.NoError(t, async.Append(context.Background(), ev))
	require.Len(t, enq.tasks, 1)
	require.Equal(t, taskname.ActivityAppend, enq.tasks[0].Type())

	l, db := newTestDBLog(t)
	require.NoError(t, HandleAppend(l)(context.Background(), enq.tasks[0]))

	var row History
	require.NoError(t, db.Take(&row).Error)
	require.Equal(t, "7", row.KeysID)
	require.Equal(t, "bind device-b", row.Info)
}

func TestAsyncLogEnqueueFailure(t *testing.T) {
	async := NewAsyncLog(&fakeEnqueuer{err: errors.New("redis down")}, "default")

	err := async.Append(context.Background(), Event{LicenseID: "1"})
	require.ErrorContains(t, err, "redis down")
}

func TestHandleAppendRejectsGarbage(t *testing.T) {
	l, _ := newTestDBLog(t)

	err := HandleAppend(l)(context.Background(), asynq.NewTask(taskname.ActivityAppend, []byte("{")))
	require.ErrorIs(t, err, asynq.SkipRetry)
}

func TestProvideLog(t *testing.T) {
	l, _ := newTestDBLog(t)

	cfg := &config.Config{}
	require.Same(t, l, ProvideLog(LogParams{Config: cfg, DB: l, Enqueuer: &fakeEnqueuer{}}))

	cfg.Activity.Async = true
	require.Same(t, l, ProvideLog(LogParams{Config: cfg, DB: l}))
	require.IsType(t, &AsyncLog{}, ProvideLog(LogParams{Config: cfg, DB: l, Enqueuer: &fakeEnqueuer{}}))
}
