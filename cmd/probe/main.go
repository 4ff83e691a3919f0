// probe connects to the realtime gateway and streams received envelopes to
// the console. Lines typed on stdin are sent to the gateway:
//
//	send <type> [json payload]
//	req  <type> [json payload]   (waits for the correlated response)
//
// Usage: go run ./cmd/probe --config configs/gateway.example.yaml
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/IL0VERAT/DelegateAIRepo-sub002/internal/auth"
	"github.com/IL0VERAT/DelegateAIRepo-sub002/internal/backoff"
	"github.com/IL0VERAT/DelegateAIRepo-sub002/internal/client"
	"github.com/IL0VERAT/DelegateAIRepo-sub002/internal/config"
	"github.com/IL0VERAT/DelegateAIRepo-sub002/internal/transport"
	"github.com/IL0VERAT/DelegateAIRepo-sub002/internal/version"
	"github.com/IL0VERAT/DelegateAIRepo-sub002/internal/wire"
)

func main() {
	configPath := flag.String("config", "configs/gateway.example.yaml", "path to config file")
	verbose := flag.Bool("verbose", false, "print full envelope JSON")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	logger.Info("starting probe", "version", version.String(), "config", *configPath)

	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
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

	cli, err := buildClient(cfg.Gateway, logger)
	if err != nil {
		logger.Error("failed to build client", "error", err)
		os.Exit(1)
	}

	cli.Subscribe(client.EventMessage, func(e client.Event) {
		printEnvelope(e.Envelope, *verbose)
	})
	cli.Subscribe(client.EventStateChanged, func(e client.Event) {
		logger.Info("state changed", "state", e.State.String())
	})
	cli.Subscribe(client.EventReconnecting, func(e client.Event) {
		logger.Warn("reconnecting", "attempt", e.Attempt)
	})
	cli.Subscribe(client.EventError, func(e client.Event) {
		logger.Error("client error", "error", e.Err)
	})

	if err := cli.Connect(ctx); err != nil {
		// Non-fatal: a reconnect is already scheduled.
		logger.Warn("initial connect failed", "error", err)
	}

	go readStdin(ctx, cli, logger, *verbose)

	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s := cli.Stats()
				logger.Info("stats",
					"state", s.State.String(),
					"reconnect_attempts", s.ReconnectAttempts,
					"queued", s.QueuedMessages,
					"pending", s.PendingRequests,
				)
			}
		}
	}()

	logger.Info("probe running - press Ctrl+C to stop")
	<-ctx.Done()

	cli.Disconnect()
	logger.Info("probe stopped")
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

// readStdin turns console input into outbound envelopes.
func readStdin(ctx context.Context, cli *client.Client, logger *slog.Logger, verbose bool) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}

		fields := strings.SplitN(strings.TrimSpace(scanner.Text()), " ", 3)
		if len(fields) < 2 || (fields[0] != "send" && fields[0] != "req") {
			fmt.Println("usage: send <type> [json] | req <type> [json]")
			continue
		}

		payload := json.RawMessage(`{}`)
		if len(fields) == 3 {
			if !json.Valid([]byte(fields[2])) {
				fmt.Println("payload is not valid JSON")
				continue
			}
			payload = json.RawMessage(fields[2])
		}

		switch fields[0] {
		case "send":
			env, err := wire.New(fields[1], payload)
			if err != nil {
				logger.Error("build envelope failed", "error", err)
				continue
			}
			if err := cli.Send(env); err != nil {
				logger.Error("send failed", "error", err)
			}
		case "req":
			env, err := wire.NewRequest(fields[1], payload)
			if err != nil {
				logger.Error("build envelope failed", "error", err)
				continue
			}
			res, err := cli.Request(ctx, env)
			if err != nil {
				logger.Error("request failed", "error", err)
				continue
			}
			printEnvelope(res, verbose)
		}
	}
}

func printEnvelope(env wire.Envelope, verbose bool) {
	if verbose {
		data, _ := json.MarshalIndent(env, "", "  ")
		fmt.Printf("[ENVELOPE] %s\n", data)
		return
	}
	fmt.Printf("[%s] id=%s ts=%d payload=%s\n", env.Type, env.ID, env.Timestamp, env.Data)
}
