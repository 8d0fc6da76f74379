// Package cache wraps the Redis client used for profile caching and rate
// limiting. The application degrades gracefully when Redis is unreachable:
// cached reads fall through to the database and rate limits fail open.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

var client *redis.Client

// InitRedis connects the package-level client. A failed ping leaves the
// client nil and the application running without a cache.
func InitRedis(addr string) {
	c := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := c.Ping(ctx).Err(); err != nil {
		slog.Warn("redis unavailable, continuing without cache", "error", err)
		return
	}
	client = c
	slog.Info("redis connected", "addr", addr)
}

// GetClient returns the shared Redis client, or nil when Redis is down.
func GetClient() *redis.Client {
	return client
}

// Close closes the shared client if it was initialized.
func Close() {
	if client != nil {
		if err := client.Close(); err != nil {
			slog.Error("closing redis", "error", err)
		}
	}
}

// SuggestedUsersKey is the cache key for a user's suggested-users sample.
func SuggestedUsersKey(userID uint) string {
	return fmt.Sprintf("suggested:%d", userID)
}

// SuggestedUsersTTL keeps suggestions fresh enough while absorbing repeat
// loads of the sidebar.
const SuggestedUsersTTL = 30 * time.Second

// GetJSON attempts to get the key from Redis and unmarshal into dest.
// Returns (true, nil) if found and unmarshaled, (false, nil) if not found.
func GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	if client == nil {
		return false, nil
	}
	s, err := client.Get(ctx, key).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal([]byte(s), dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON marshals v and sets the key with TTL.
func SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	if client == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return client.Set(ctx, key, b, ttl).Err()
}

// Aside tries Redis first; on miss it calls fetch (which must write into
// dest), then stores the result with ttl, best effort.
func Aside(ctx context.Context, key string, dest any, ttl time.Duration, fetch func() error) error {
	found, err := GetJSON(ctx, key, dest)
	if err != nil {
		slog.Warn("cache read failed, falling through", "key", key, "error", err)
	}
	if found {
		return nil
	}

	if err := fetch(); err != nil {
		return err
	}

	_ = SetJSON(ctx, key, dest, ttl)
	return nil
}
