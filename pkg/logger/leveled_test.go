package logger

import (
	"testing"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var _ retryablehttp.LeveledLogger = (*Leveled)(nil)

func TestLeveled(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewLeveled(zap.New(core))

	l.Debug("performing request", "method", "POST", "url", "http://gw/connect/acme")
	l.Warn("retrying", "attempt", 2)
	l.Error("giving up", "error", "connection refused")

	entries := logs.AllUntimed()
	require.Len(t, entries, 3)
	require.Equal(t, zapcore.DebugLevel, entries[0].Level)
	require.Equal(t, "POST", entries[0].ContextMap()["method"])
	require.Equal(t, zapcore.WarnLevel, entries[1].Level)
	require.EqualValues(t, 2, entries[1].ContextMap()["attempt"])
	require.Equal(t, zapcore.ErrorLevel, entries[2].Level)
	require.Equal(t, "giving up", entries[2].Message)
}
