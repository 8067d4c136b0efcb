package database

import (
	"context"
	"fmt"
	"log/slog"

	"libraryhub/internal/config"

	"github.com/redis/go-redis/v9"
)

// ConnectRedis returns nil without error when REDIS_URL is empty;
// the cache and revocation list treat a nil client as disabled.
func ConnectRedis(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*redis.Client, error) {
	if !cfg.RedisEnabled() {
		logger.Info("redis_disabled")
		return nil, nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse REDIS_URL: %w", err)
	}
	if cfg.RedisPassword != "" {
		opts.Password = cfg.RedisPassword
	}
	opts.ReadTimeout = cfg.StoreTimeout
	opts.WriteTimeout = cfg.StoreTimeout

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, cfg.StoreTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("redis_connected", "addr", opts.Addr, "db", opts.DB)
	return client, nil
}
