package config

import (
	"context"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// ConnectRedis returns nil when Redis is unreachable; callers run without
// the snapshot cache in that case.
func ConnectRedis(ctx context.Context, cfg *Config) *redis.Client {
	var opt *redis.Options
	if cfg.RedisURL != "" {
		parsed, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			slog.Warn("Failed to parse Redis URL, running without cache", "error", err)
			return nil
		}
		opt = parsed
	} else {
		opt = &redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       0,
		}
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		slog.Warn("Redis connection failed, running without cache", "error", err)
		_ = client.Close()
		return nil
	}

	slog.Info("Redis connected")
	return client
}
