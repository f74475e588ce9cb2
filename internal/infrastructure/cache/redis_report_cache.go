package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/sellstream/backend/internal/infrastructure/config"
)

const reportKeyPattern = "analytics:report:*"

// RedisReportCache stores serialized analytics reports in Redis. It is
// suitable for distributed deployments where multiple instances should
// share cached reports. Transport failures degrade to cache misses;
// the report is then recomputed, never failed.
type RedisReportCache struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisReportCache creates a Redis-backed report cache and verifies
// the connection.
func NewRedisReportCache(cfg config.RedisConfig, logger *zap.Logger) (*RedisReportCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisReportCache{client: client, logger: logger}, nil
}

// NewRedisReportCacheWithClient creates a cache with an existing Redis
// client. Useful for testing or when sharing a client across components.
func NewRedisReportCacheWithClient(client *redis.Client, logger *zap.Logger) *RedisReportCache {
	return &RedisReportCache{client: client, logger: logger}
}

// Get returns the cached report for key, or a miss when absent or
// unreadable.
func (c *RedisReportCache) Get(ctx context.Context, key string) (map[string]any, bool) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("report cache read failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}

	var report map[string]any
	if err := json.Unmarshal(raw, &report); err != nil {
		c.logger.Warn("report cache entry corrupt, dropping", zap.String("key", key), zap.Error(err))
		c.client.Del(ctx, key)
		return nil, false
	}
	return report, true
}

// Set stores the report under key for ttl.
func (c *RedisReportCache) Set(ctx context.Context, key string, report map[string]any, ttl time.Duration) {
	raw, err := json.Marshal(report)
	if err != nil {
		c.logger.Warn("report cache encode failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, key, raw, ttl).Err(); err != nil {
		c.logger.Warn("report cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// Invalidate drops every cached report.
func (c *RedisReportCache) Invalidate(ctx context.Context) {
	iter := c.client.Scan(ctx, 0, reportKeyPattern, 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			c.logger.Warn("report cache delete failed", zap.String("key", iter.Val()), zap.Error(err))
		}
	}
	if err := iter.Err(); err != nil {
		c.logger.Warn("report cache scan failed", zap.Error(err))
	}
}

// Close closes the Redis client.
func (c *RedisReportCache) Close() error {
	return c.client.Close()
}
