package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadExpandsEnv(t *testing.T) {
	t.Setenv("GW_URL", "wss://gw.example.com/v1/stream")
	t.Setenv("DB_PASSWORD", "sekret")

	path := writeConfig(t, `
gateway:
  url: ${GW_URL}
  subprotocols: [delegate.v1]
database:
  host: localhost
  name: transcripts
  user: recorder
  password: ${DB_PASSWORD}
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "wss://gw.example.com/v1/stream", cfg.Gateway.URL)
	assert.Equal(t, []string{"delegate.v1"}, cfg.Gateway.Subprotocols)
	assert.Equal(t, "sekret", cfg.Database.Password)
}

func TestLoadWithDefaults(t *testing.T) {
	path := writeConfig(t, `
gateway:
  url: wss://gw.example.com/v1/stream
`)

	cfg, err := LoadWithDefaults(path)
	require.NoError(t, err)

	assert.Equal(t, DefaultMaxReconnectAttempts, cfg.Gateway.MaxReconnectAttempts)
	assert.Equal(t, time.Second, cfg.Gateway.BaseBackoff)
	assert.Equal(t, 30*time.Second, cfg.Gateway.MaxBackoff)
	assert.Equal(t, 30*time.Second, cfg.Gateway.HeartbeatInterval)
	assert.Equal(t, 10*time.Second, cfg.Gateway.RequestTimeout)
	assert.Equal(t, 100, cfg.Gateway.MaxQueueSize)
	assert.Equal(t, 60*time.Second, cfg.Gateway.MaxQueuedMessageAge)
	assert.Equal(t, DefaultDBPort, cfg.Database.Port)
	assert.Equal(t, "prefer", cfg.Database.SSLMode)
	assert.Equal(t, DefaultBatchSize, cfg.Recorder.BatchSize)
}

func TestLoadExplicitValuesWin(t *testing.T) {
	path := writeConfig(t, `
gateway:
  url: wss://gw.example.com/v1/stream
  max_reconnect_attempts: 8
  base_backoff: 2s
  heartbeat_interval: 15s
  max_queue_size: 250
`)

	cfg, err := LoadWithDefaults(path)
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Gateway.MaxReconnectAttempts)
	assert.Equal(t, 2*time.Second, cfg.Gateway.BaseBackoff)
	assert.Equal(t, 15*time.Second, cfg.Gateway.HeartbeatInterval)
	assert.Equal(t, 250, cfg.Gateway.MaxQueueSize)
}

func TestValidateRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "missing url",
			yaml: "gateway: {}\n",
			want: "gateway.url is required",
		},
		{
			name: "http url",
			yaml: "gateway:\n  url: https://gw.example.com\n",
			want: "ws:// or wss://",
		},
		{
			name: "backoff inversion",
			yaml: "gateway:\n  url: wss://gw.example.com\n  base_backoff: 1m\n  max_backoff: 1s\n",
			want: "max_backoff",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadAndValidate(writeConfig(t, tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
