package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Pesokrava/coffee_catalog/internal/config"
	"github.com/Pesokrava/coffee_catalog/internal/pkg/logger"
)

const pingTimeout = 5 * time.Second

// NewRedisClient creates a new Redis client and pings it
func NewRedisClient(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.GetRedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return client, nil
}

// WaitForRedis retries NewRedisClient until it succeeds, retries run out or ctx is done
func WaitForRedis(ctx context.Context, cfg *config.Config, maxRetries int, retryDelay time.Duration, log *logger.Logger) (*redis.Client, error) {
	var err error

	for i := 0; i < maxRetries; i++ {
		var client *redis.Client
		client, err = NewRedisClient(ctx, cfg)
		if err == nil {
			return client, nil
		}

		log.Warnf("Redis not ready (attempt %d/%d): %v", i+1, maxRetries, err)

		if i < maxRetries-1 {
			select {
			case <-time.After(retryDelay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}

	return nil, fmt.Errorf("failed to connect to Redis after %d retries: %w", maxRetries, err)
}
