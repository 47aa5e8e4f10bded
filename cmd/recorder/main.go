// recorder subscribes to SelfDB realtime channels and persists every
// delivered event to Postgres in batches.
// Usage: go run ./cmd/recorder --config configs/selfdb.example.yaml
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	selfdb "github.com/Selfdb-io/selfdb-go"
	"github.com/Selfdb-io/selfdb-go/internal/config"
	"github.com/Selfdb-io/selfdb-go/internal/eventstore"
	"github.com/Selfdb-io/selfdb-go/internal/version"
	"github.com/Selfdb-io/selfdb-go/realtime"
)

func main() {
	configPath := flag.String("config", "configs/selfdb.example.yaml", "path to config file")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		os.Stdout.WriteString("recorder " + version.String() + "\n")
		return
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.ValidateRecorder(); err != nil {
		logger.Error("invalid recorder config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal")
		cancel()
	}()

	// Database
	pool, err := eventstore.Connect(ctx, cfg.Recorder.Database)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := eventstore.EnsureSchema(ctx, pool); err != nil {
		logger.Error("failed to ensure schema", "error", err)
		os.Exit(1)
	}

	writer := eventstore.NewWriter(eventstore.WriterConfig{
		BatchSize:     cfg.Recorder.BatchSize,
		FlushInterval: cfg.Recorder.FlushInterval,
	}, pool, logger)
	if err := writer.Start(ctx); err != nil {
		logger.Error("failed to start writer", "error", err)
		os.Exit(1)
	}

	// SelfDB client
	client, err := selfdb.New(selfdb.Config{
		BaseURL:     cfg.SelfDB.BaseURL,
		APIKey:      cfg.SelfDB.APIKey,
		RealtimeURL: cfg.SelfDB.RealtimeURL,
		Timeout:     cfg.SelfDB.Timeout,
		MaxRetries:  cfg.SelfDB.MaxRetries,
		Logger:      logger,
	})
	if err != nil {
		logger.Error("failed to create client", "error", err)
		os.Exit(1)
	}

	if cfg.SelfDB.Email != "" {
		if _, err := client.Auth.Login(ctx, cfg.SelfDB.Email, cfg.SelfDB.Password); err != nil {
			logger.Error("login failed", "error", err)
			os.Exit(1)
		}
	}

	if err := client.Realtime.Connect(ctx); err != nil {
		logger.Error("realtime connect failed", "error", err)
		os.Exit(1)
	}

	for _, ch := range cfg.Stream.Channels {
		ch := ch
		client.Realtime.Subscribe(ch.Channel, func(payload realtime.Value) {
			data, err := json.Marshal(payload)
			if err != nil {
				logger.Warn("failed to marshal payload", "channel", ch.Channel, "error", err)
				return
			}
			writer.Enqueue(eventstore.Event{
				Channel:    ch.Channel,
				Event:      ch.Event,
				Payload:    data,
				ReceivedAt: time.Now().UTC(),
			})
		}, realtime.WithEvent(ch.Event))
		logger.Info("recording channel", "channel", ch.Channel, "event", ch.Event)
	}

	// Stats printer
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				stats := writer.Stats()
				logger.Info("stats",
					"state", client.Realtime.State(),
					"inserts", stats.Inserts,
					"flushes", stats.Flushes,
					"errors", stats.Errors,
				)
			}
		}
	}()

	logger.Info("recorder started", "version", version.Version)

	<-ctx.Done()

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	logger.Info("shutting down...")
	client.Realtime.Disconnect()
	writer.Stop(shutdownCtx)

	logger.Info("shutdown complete")
}
