package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks the configuration for values that would misbehave at
// runtime. Call after applyDefaults.
func (c *Config) Validate() error {
	var errs []error

	if c.Gateway.URL == "" {
		errs = append(errs, errors.New("gateway.url is required"))
	} else if !strings.HasPrefix(c.Gateway.URL, "ws://") && !strings.HasPrefix(c.Gateway.URL, "wss://") {
		errs = append(errs, fmt.Errorf("gateway.url must use ws:// or wss://, got %q", c.Gateway.URL))
	}

	if c.Gateway.MaxReconnectAttempts < 0 {
		errs = append(errs, errors.New("gateway.max_reconnect_attempts must not be negative"))
	}
	if c.Gateway.BaseBackoff <= 0 {
		errs = append(errs, errors.New("gateway.base_backoff must be positive"))
	}
	if c.Gateway.MaxBackoff < c.Gateway.BaseBackoff {
		errs = append(errs, errors.New("gateway.max_backoff must be at least gateway.base_backoff"))
	}
	if c.Gateway.HeartbeatInterval <= 0 {
		errs = append(errs, errors.New("gateway.heartbeat_interval must be positive"))
	}
	if c.Gateway.RequestTimeout <= 0 {
		errs = append(errs, errors.New("gateway.request_timeout must be positive"))
	}
	if c.Gateway.MaxQueueSize <= 0 {
		errs = append(errs, errors.New("gateway.max_queue_size must be positive"))
	}

	if c.Recorder.BatchSize <= 0 {
		errs = append(errs, errors.New("recorder.batch_size must be positive"))
	}
	if c.Recorder.FlushInterval <= 0 {
		errs = append(errs, errors.New("recorder.flush_interval must be positive"))
	}

	return errors.Join(errs...)
}
