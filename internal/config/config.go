package config

import "time"

// Config is the root configuration shared by the probe and recorder
// binaries.
type Config struct {
	Gateway  GatewayConfig  `yaml:"gateway"`
	Database DatabaseConfig `yaml:"database"`
	Recorder RecorderConfig `yaml:"recorder"`
}

// GatewayConfig holds realtime gateway client settings.
type GatewayConfig struct {
	URL          string   `yaml:"url"`
	Subprotocols []string `yaml:"subprotocols"`

	// Token is a literal credential; TokenEnv names an environment
	// variable to read instead. Token wins when both are set.
	Token    string `yaml:"token"`
	TokenEnv string `yaml:"token_env"`

	MaxReconnectAttempts int           `yaml:"max_reconnect_attempts"`
	BaseBackoff          time.Duration `yaml:"base_backoff"`
	MaxBackoff           time.Duration `yaml:"max_backoff"`
	HeartbeatInterval    time.Duration `yaml:"heartbeat_interval"`
	RequestTimeout       time.Duration `yaml:"request_timeout"`
	MaxQueueSize         int           `yaml:"max_queue_size"`
	MaxQueuedMessageAge  time.Duration `yaml:"max_queued_message_age"`

	// MessageTypes is the allow-list of inbound envelope types. Empty
	// accepts everything.
	MessageTypes []string `yaml:"message_types"`
}

// DatabaseConfig holds the Postgres connection for the recorder.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// RecorderConfig holds transcript batch writer settings.
type RecorderConfig struct {
	BatchSize     int           `yaml:"batch_size"`
	FlushInterval time.Duration `yaml:"flush_interval"`
	BufferSize    int           `yaml:"buffer_size"`
}
