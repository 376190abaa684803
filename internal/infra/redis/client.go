package redis

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"

	"job-insight-chat/internal/config"
)

// Connect opens a client for cfg and verifies it with a PING. The returned
// client backs the job cache, the submit rate limiter and the task locks.
func Connect(ctx context.Context, cfg *config.RedisConfig) (*redis.Client, error) {
	c := redis.NewClient(&redis.Options{
		Addr:     cfg.URL,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("ping %s: %w", cfg.URL, err)
	}
	return c, nil
}
