package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Connect parses a Redis URL, opens a client and verifies it with a ping.
func Connect(redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return client, nil
}

const countKeyPrefix = "cartcount:"

// CountCache stores per-user cart item counts. Entries expire after the
// TTL so a missed refresh degrades to a live re-count instead of a
// permanently stale badge.
type CountCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCountCache(client *redis.Client, ttl time.Duration) *CountCache {
	return &CountCache{client: client, ttl: ttl}
}

func (c *CountCache) SetCount(ctx context.Context, userID string, count int) error {
	return c.client.Set(ctx, countKeyPrefix+userID, count, c.ttl).Err()
}

// GetCount returns (count, true) on a hit and (0, false) on a miss.
func (c *CountCache) GetCount(ctx context.Context, userID string) (int, bool, error) {
	val, err := c.client.Get(ctx, countKeyPrefix+userID).Result()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}

	count, err := strconv.Atoi(val)
	if err != nil {
		return 0, false, fmt.Errorf("corrupt count for %s: %w", userID, err)
	}
	return count, true, nil
}
