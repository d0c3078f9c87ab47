package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/cassiomorais/invoice-ledger/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
)

// NewClient creates a Redis client and verifies connectivity. Callers
// that need startup resilience wrap this in pkg/retry.
func NewClient(ctx context.Context, cfg *config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
		MaxRetries:   3,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return client, nil
}
