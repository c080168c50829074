// Package cache connects to the optional Redis instance shared by bot replicas.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"

	coreconfig "github.com/m3rciful/tradebot/core/config"
	"github.com/m3rciful/tradebot/core/logger"
)

const connectTimeout = 5 * time.Second

// Enabled reports whether a Redis address is configured.
func Enabled(cfg coreconfig.CacheConfig) bool {
	return cfg.RedisAddr != ""
}

// Connect opens a Redis client and verifies it with PING.
func Connect(cfg coreconfig.CacheConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        cfg.RedisAddr,
		Password:    cfg.RedisPassword,
		DB:          cfg.RedisDB,
		DialTimeout: connectTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	start := time.Now()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		logger.Error(ctx, "cache", "redis.connect",
			slog.String("status", "fail"),
			slog.String("addr", cfg.RedisAddr),
			slog.Int("db", cfg.RedisDB),
			slog.Duration("duration", logger.Took(start)),
			slog.String("err", err.Error()),
		)
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	logger.Info(ctx, "cache", "redis.connect",
		slog.String("status", "ok"),
		slog.String("addr", cfg.RedisAddr),
		slog.Int("db", cfg.RedisDB),
		slog.Duration("duration", logger.Took(start)),
	)
	return client, nil
}
