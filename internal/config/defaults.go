package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultMaxReconnectAttempts = 5
	DefaultBaseBackoff          = 1 * time.Second
	DefaultMaxBackoff           = 30 * time.Second
	DefaultHeartbeatInterval    = 30 * time.Second
	DefaultRequestTimeout       = 10 * time.Second
	DefaultMaxQueueSize         = 100
	DefaultMaxQueuedMessageAge  = 60 * time.Second
	DefaultDBPort               = 5432
	DefaultDBSSLMode            = "prefer"
	DefaultMaxConns             = 10
	DefaultMinConns             = 2
	DefaultBatchSize            = 500
	DefaultFlushInterval        = 2 * time.Second
	DefaultBufferSize           = 4096
)

func (c *Config) applyDefaults() {
	// Gateway defaults
	if c.Gateway.MaxReconnectAttempts == 0 {
		c.Gateway.MaxReconnectAttempts = DefaultMaxReconnectAttempts
	}
	if c.Gateway.BaseBackoff == 0 {
		c.Gateway.BaseBackoff = DefaultBaseBackoff
	}
	if c.Gateway.MaxBackoff == 0 {
		c.Gateway.MaxBackoff = DefaultMaxBackoff
	}
	if c.Gateway.HeartbeatInterval == 0 {
		c.Gateway.HeartbeatInterval = DefaultHeartbeatInterval
	}
	if c.Gateway.RequestTimeout == 0 {
		c.Gateway.RequestTimeout = DefaultRequestTimeout
	}
	if c.Gateway.MaxQueueSize == 0 {
		c.Gateway.MaxQueueSize = DefaultMaxQueueSize
	}
	if c.Gateway.MaxQueuedMessageAge == 0 {
		c.Gateway.MaxQueuedMessageAge = DefaultMaxQueuedMessageAge
	}

	// Database defaults
	if c.Database.Port == 0 {
		c.Database.Port = DefaultDBPort
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = DefaultDBSSLMode
	}
	if c.Database.MaxConns == 0 {
		c.Database.MaxConns = DefaultMaxConns
	}
	if c.Database.MinConns == 0 {
		c.Database.MinConns = DefaultMinConns
	}

	// Recorder defaults
	if c.Recorder.BatchSize == 0 {
		c.Recorder.BatchSize = DefaultBatchSize
	}
	if c.Recorder.FlushInterval == 0 {
		c.Recorder.FlushInterval = DefaultFlushInterval
	}
	if c.Recorder.BufferSize == 0 {
		c.Recorder.BufferSize = DefaultBufferSize
	}
}
