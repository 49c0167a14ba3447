// Package infra constructs shared infrastructure clients.
package infra

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// NewOptionalRedis configures a Redis client when a URL is provided and
// verifies connectivity. An empty URL returns a nil client: Redis only backs
// the opt-in idempotency layer, so the service runs without it.
func NewOptionalRedis(ctx context.Context, url string) (*redis.Client, error) {
	if url == "" {
		return nil, nil
	}

	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opt)

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return client, nil
}
