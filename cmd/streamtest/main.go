// streamtest connects to a SelfDB backend and prints realtime events to
// the console.
// Usage: go run ./cmd/streamtest --config configs/selfdb.example.yaml
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	selfdb "github.com/Selfdb-io/selfdb-go"
	"github.com/Selfdb-io/selfdb-go/internal/config"
	"github.com/Selfdb-io/selfdb-go/realtime"
)

func main() {
	configPath := flag.String("config", "configs/selfdb.example.yaml", "path to config file")
	verbose := flag.Bool("verbose", false, "print full event JSON")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

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
		<-sigCh
		logger.Info("received shutdown signal")
		cancel()
	}()

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
		logger.Info("logged in", "email", cfg.SelfDB.Email)
	}

	if err := client.Realtime.Connect(ctx); err != nil {
		logger.Error("realtime connect failed", "error", err)
		os.Exit(1)
	}
	logger.Info("realtime connected")

	channels := cfg.Stream.Channels
	if len(channels) == 0 {
		channels = []config.ChannelConfig{{Channel: "*"}}
	}
	for _, ch := range channels {
		ch := ch
		client.Realtime.Subscribe(ch.Channel, func(payload realtime.Value) {
			if *verbose {
				data, _ := json.MarshalIndent(payload, "", "  ")
				fmt.Printf("[%s] %s\n", ch.Channel, data)
			} else {
				data, _ := json.Marshal(payload)
				fmt.Printf("[%s] %s\n", ch.Channel, data)
			}
		}, realtime.WithEvent(ch.Event))
		logger.Info("subscribed", "channel", ch.Channel, "event", ch.Event)
	}

	// Stats printer
	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				logger.Info("stats",
					"state", client.Realtime.State(),
					"subscriptions", client.Realtime.Subscriptions(),
				)
			}
		}
	}()

	logger.Info("streaming started - press Ctrl+C to stop")

	<-ctx.Done()

	logger.Info("shutting down...")
	client.Realtime.Disconnect()
	logger.Info("shutdown complete")
}
