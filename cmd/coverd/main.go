// Command coverd serves the tile cover API backed by a Redis cover cache,
// optionally draining layer invalidation events from Kafka.
package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/mohammed-shakir/slippy-spatial-cache/internal/cache/coverstore"
	"github.com/mohammed-shakir/slippy-spatial-cache/internal/cache/redisstore"
	"github.com/mohammed-shakir/slippy-spatial-cache/internal/config"
	"github.com/mohammed-shakir/slippy-spatial-cache/internal/invalidation/kafkaconsumer"
	"github.com/mohammed-shakir/slippy-spatial-cache/internal/logger"
	"github.com/mohammed-shakir/slippy-spatial-cache/internal/observability"
	"github.com/mohammed-shakir/slippy-spatial-cache/internal/server"
)

var Version = "dev"

func main() {
	os.Exit(run())
}

func envInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func run() int {
	cfg := config.FromEnv()

	zl := logger.Build(logger.Config{
		Level:     cfg.LogLevel,
		Console:   strings.ToLower(os.Getenv("LOG_CONSOLE")) == "true",
		SampleN:   envInt("LOG_SAMPLE_N", 0),
		Component: "coverd",
	}, os.Stdout)
	appLog := logger.NewSlog(&zl)

	observability.ExposeBuildInfo(Version)
	appLog.Info("starting coverd",
		"addr", cfg.Addr,
		"version", Version,
		"redis", cfg.RedisAddr,
		"zoom_min", cfg.ZoomMin,
		"zoom_max", cfg.ZoomMax)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := redisstore.New(ctx, cfg.RedisAddr)
	if err != nil {
		appLog.Error("redis unavailable", "addr", cfg.RedisAddr, "err", err)
		return 1
	}
	defer func() { _ = client.Close() }()

	store, err := coverstore.New(client, cfg.CacheTTLDefault, cfg.CoverCacheSize, zl)
	if err != nil {
		appLog.Error("cover store setup failed", "err", err)
		return 1
	}

	if cfg.Invalidation.Enabled {
		consumer := kafkaconsumer.New(kafkaconsumer.Config{
			Brokers:             splitCSV(cfg.Invalidation.Brokers),
			Topic:               cfg.Invalidation.Topic,
			GroupID:             cfg.Invalidation.GroupID,
			InitialOffsetOldest: true,
		}, appLog, store)
		go func() {
			if err := consumer.Start(ctx); err != nil {
				appLog.Error("invalidation consumer exited", "err", err)
			}
		}()
	}

	deps := server.Deps{Store: store, Pinger: client}
	if err := server.Run(ctx, cfg, appLog, deps); err != nil {
		appLog.Error("server exited with error", "err", err)
		return 1
	}
	appLog.Info("server stopped")
	return 0
}

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
