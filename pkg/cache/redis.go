package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"appointment-booking/pkg/utils"
)

// Cache is a small JSON cache over redis. A nil *Cache is a valid no-op
// cache, so callers never need to branch on whether redis is configured.
type Cache struct {
	client *redis.Client
	log    *zap.Logger
}

// New connects to redis; returns nil (cache disabled) when no address is set.
func New(config utils.RedisConfig, log *zap.Logger) (*Cache, error) {
	if config.Addr == "" {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})

	pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &Cache{
		client: client,
		log:    log.With(zap.String("component", "cache")),
	}, nil
}

// GetJSON loads key into dest, reporting whether it was a hit. Cache faults
// are logged and reported as misses; reads must never fail on a cold cache.
func (c *Cache) GetJSON(ctx context.Context, key string, dest any) bool {
	if c == nil {
		return false
	}

	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn("Cache read failed", zap.Error(err), zap.String("key", key))
		}
		return false
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		c.log.Warn("Cache entry corrupt", zap.Error(err), zap.String("key", key))
		return false
	}

	return true
}

// SetJSON stores v under key with the given TTL, best effort.
func (c *Cache) SetJSON(ctx context.Context, key string, v any, ttl time.Duration) {
	if c == nil {
		return
	}

	raw, err := json.Marshal(v)
	if err != nil {
		c.log.Warn("Cache marshal failed", zap.Error(err), zap.String("key", key))
		return
	}

	if err := c.client.Set(ctx, key, raw, ttl).Err(); err != nil {
		c.log.Warn("Cache write failed", zap.Error(err), zap.String("key", key))
	}
}

func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}
