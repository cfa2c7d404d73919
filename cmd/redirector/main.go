package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/joeychilson/redirector/api"
	"github.com/joeychilson/redirector/config"
	"github.com/joeychilson/redirector/engine"
	"github.com/joeychilson/redirector/history"
	"github.com/joeychilson/redirector/logger"
	"github.com/joeychilson/redirector/notify"
	"github.com/joeychilson/redirector/server"
	"github.com/joeychilson/redirector/settings"
	"github.com/joeychilson/redirector/store"
)

const defaultConfigFile = "./config.yaml"

func main() {
	configFile := getEnv("CONFIG_FILE", defaultConfigFile)

	cfg := config.New()
	if _, err := os.Stat(configFile); err == nil {
		loaded, err := config.Load(configFile)
		if err != nil {
			slog.Error("failed to load config", "file", configFile, "error", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if addr := os.Getenv("ADDR"); addr != "" {
		cfg.Addr = addr
	}

	handler := newLogHandler(cfg.Log)
	log := logger.New(handler)
	slogger := slog.New(handler)

	log.Info("starting redirector", "addr", cfg.Addr, "storage", cfg.Storage.Backend)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	kv, redisClient, err := openStorage(ctx, cfg.Storage)
	if err != nil {
		log.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer kv.Close()

	settingsStore := settings.NewStore(kv)
	historyStore := history.NewStore(kv, cfg.History.Cap)

	notifier := notify.NewThrottled(
		notify.NewLogNotifier(log),
		cfg.Notifications.PerMinute,
		cfg.Notifications.Burst,
	)

	eng := engine.New(settingsStore, historyStore,
		engine.NewLogTabController(log), notifier, log)

	h := api.NewHandler(settingsStore, historyStore, eng, log)
	srv := server.New(h, log, &server.Config{
		RequestLogger: slogger,
		RateLimit: server.RateLimitConfig{
			RequestLimit:   cfg.RateLimit.Requests,
			WindowDuration: cfg.RateLimit.Window(),
			RedisClient:    redisClient,
		},
	})

	if err := srv.StartWithShutdown(ctx, cfg.Addr); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
	log.Info("shutdown complete")
}

// openStorage opens the configured storage backend. The redis client is
// returned separately so the rate limiter can share it.
func openStorage(ctx context.Context, cfg config.StorageConfig) (store.KV, *redis.Client, error) {
	switch cfg.Backend {
	case config.BackendRedis:
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, err
		}
		return store.NewRedis(client, ""), client, nil
	case config.BackendMemory:
		return store.NewMemory(), nil, nil
	default:
		kv, err := store.OpenBolt(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return kv, nil, nil
	}
}

// newLogHandler builds the slog handler for the configured level/format.
func newLogHandler(cfg config.LogConfig) slog.Handler {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "text" {
		return slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.NewJSONHandler(os.Stderr, opts)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
