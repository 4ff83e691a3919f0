// recorder connects to the realtime gateway and persists every received
// envelope to Postgres as a session transcript.
//
// Usage: go run ./cmd/recorder --config configs/gateway.example.yaml
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/IL0VERAT/DelegateAIRepo-sub002/internal/auth"
	"github.com/IL0VERAT/DelegateAIRepo-sub002/internal/backoff"
	"github.com/IL0VERAT/DelegateAIRepo-sub002/internal/client"
	"github.com/IL0VERAT/DelegateAIRepo-sub002/internal/config"
	"github.com/IL0VERAT/DelegateAIRepo-sub002/internal/storage"
	"github.com/IL0VERAT/DelegateAIRepo-sub002/internal/transport"
	"github.com/IL0VERAT/DelegateAIRepo-sub002/internal/version"
	"github.com/IL0VERAT/DelegateAIRepo-sub002/internal/wire"
)

func main() {
	configPath := flag.String("config", "configs/gateway.example.yaml", "path to config file")
	sessionID := flag.String("session", "", "session id for transcript rows (default: random)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("starting recorder", "version", version.String(), "config", *configPath)

	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	session := *sessionID
	if session == "" {
		session = uuid.NewString()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	logger.Info("connecting to database",
		"host", cfg.Database.Host,
		"port", cfg.Database.Port,
		"database", cfg.Database.Name,
	)

	pool, err := storage.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	writer := storage.NewEnvelopeWriter(pool, cfg.Recorder, logger)

	cli, err := buildClient(cfg.Gateway, logger)
	if err != nil {
		logger.Error("failed to build client", "error", err)
		os.Exit(1)
	}

	cli.Subscribe(client.EventMessage, func(e client.Event) {
		writer.Write(storage.RowFromEnvelope(session, e.Envelope, time.Now()))
	})
	cli.Subscribe(client.EventReconnecting, func(e client.Event) {
		logger.Warn("reconnecting", "attempt", e.Attempt)
	})
	cli.Subscribe(client.EventError, func(e client.Event) {
		logger.Error("client error", "error", e.Err)
	})

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return writer.Run(gctx)
	})

	g.Go(func() error {
		if err := cli.Connect(gctx); err != nil {
			logger.Warn("initial connect failed, retrying", "error", err)
		}
		<-gctx.Done()
		cli.Disconnect()
		return gctx.Err()
	})

	logger.Info("recorder running", "session_id", session)

	if err := g.Wait(); err != nil && err != context.Canceled {
		logger.Error("recorder stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("recorder stopped")
}

// buildClient assembles a gateway client from config.
func buildClient(cfg config.GatewayConfig, logger *slog.Logger) (*client.Client, error) {
	dialer := &transport.WebsocketDialer{
		Subprotocols: cfg.Subprotocols,
		Tokens:       tokenSource(cfg),
		Logger:       logger,
	}

	var types *wire.Registry
	if len(cfg.MessageTypes) > 0 {
		types = wire.NewRegistry(cfg.MessageTypes...)
	}

	return client.New(client.Options{
		Target: cfg.URL,
		Dialer: dialer,
		Logger: logger,
		Backoff: backoff.Policy{
			Base:        cfg.BaseBackoff,
			Max:         cfg.MaxBackoff,
			MaxAttempts: cfg.MaxReconnectAttempts,
		},
		HeartbeatInterval:   cfg.HeartbeatInterval,
		RequestTimeout:      cfg.RequestTimeout,
		MaxQueueSize:        cfg.MaxQueueSize,
		MaxQueuedMessageAge: cfg.MaxQueuedMessageAge,
		Types:               types,
	})
}

// tokenSource picks the credential source from config. A literal token wins
// over an environment variable name; neither means unauthenticated.
func tokenSource(cfg config.GatewayConfig) auth.TokenSource {
	if cfg.Token != "" {
		return auth.Static(cfg.Token)
	}
	if cfg.TokenEnv != "" {
		return auth.EnvSource{Name: cfg.TokenEnv}
	}
	return nil
}
