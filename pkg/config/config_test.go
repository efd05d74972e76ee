package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaultsAndEnv(t *testing.T) {
	t.Setenv("GATEWAY_MAX_BIND_ATTEMPTS", "9")

	cfg := LoadConfig(Params{})

	require.Equal(t, 300*time.Second, cfg.Gateway.ReplayWindow)
	require.Equal(t, 3*time.Second, cfg.Gateway.StoreTimeout)
	require.Equal(t, 9, cfg.Gateway.MaxBindAttempts)
	require.Equal(t, "default", cfg.Activity.Queue)
	require.Equal(t, int64(1), cfg.NodeID)
}

func TestSource(t *testing.T) {
	require.Equal(t, Module, Source())

	t.Setenv("REMOTE_CONFIG_PROVIDER", "consul")
	require.Equal(t, RemoteModule, Source())
}
