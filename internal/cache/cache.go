// Package cache keeps per-user unread notification counts in Redis so the
// badge endpoint does not hit the database on every poll.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/lexcase/caseflow/internal/config"
)

const keyPrefix = "notifications:unread:"

// UnreadCounter caches unread counts. Get reports ok=false on a miss.
type UnreadCounter interface {
	Get(ctx context.Context, userID string) (count int, ok bool, err error)
	Set(ctx context.Context, userID string, count int) error
	Invalidate(ctx context.Context, userID string) error
}

// RedisUnreadCounter stores counts under notifications:unread:<userID>
type RedisUnreadCounter struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisUnreadCounter creates a counter cache backed by client
func NewRedisUnreadCounter(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisUnreadCounter {
	return &RedisUnreadCounter{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

func key(userID string) string {
	return keyPrefix + userID
}

// Get returns the cached count for userID
func (c *RedisUnreadCounter) Get(ctx context.Context, userID string) (int, bool, error) {
	count, err := c.client.Get(ctx, key(userID)).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("get unread count: %w", err)
	}
	return count, true, nil
}

// Set stores count for userID with the configured TTL
func (c *RedisUnreadCounter) Set(ctx context.Context, userID string, count int) error {
	if err := c.client.Set(ctx, key(userID), count, c.ttl).Err(); err != nil {
		return fmt.Errorf("set unread count: %w", err)
	}
	return nil
}

// Invalidate drops the cached count for userID
func (c *RedisUnreadCounter) Invalidate(ctx context.Context, userID string) error {
	if err := c.client.Del(ctx, key(userID)).Err(); err != nil {
		return fmt.Errorf("invalidate unread count: %w", err)
	}
	c.logger.Debug("Invalidated unread count", zap.String("user_id", userID))
	return nil
}

// Noop never caches anything
type Noop struct{}

func (Noop) Get(context.Context, string) (int, bool, error) { return 0, false, nil }
func (Noop) Set(context.Context, string, int) error         { return nil }
func (Noop) Invalidate(context.Context, string) error       { return nil }

// Connect dials Redis and pings it. A failed ping returns an error so the
// caller can fall back to Noop.
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if _, err := client.Ping(ctx).Result(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return client, nil
}

// New returns a Redis-backed counter when Redis is enabled and reachable,
// and Noop otherwise. The returned close function releases the client.
func New(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) (UnreadCounter, func() error) {
	noop := func() error { return nil }
	if !cfg.Enabled {
		return Noop{}, noop
	}

	client, err := Connect(ctx, cfg.URL, cfg.Password, cfg.DB)
	if err != nil {
		logger.Warn("Failed to connect to Redis, running without cache", zap.Error(err))
		return Noop{}, noop
	}

	logger.Info("Connected to Redis", zap.String("address", cfg.URL))
	return NewRedisUnreadCounter(client, cfg.UnreadCountTTL, logger), client.Close
}
