//go:generate mockgen -source=cache.go -destination=mock_cache.go -package=sysconfig

package sysconfig

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/phillip/campus-services-go/models"
	"github.com/phillip/campus-services-go/utils"
)

const (
	CacheKeyPublic = "sysconfig:public"
	CacheTTLPublic = 5 * time.Minute
)

// Cache holds the anonymous view of the config store.
type Cache interface {
	// GetPublic reports ok=false on a miss.
	GetPublic(ctx context.Context) (cfgs []models.SystemConfig, ok bool, err error)
	SetPublic(ctx context.Context, cfgs []models.SystemConfig) error
	InvalidatePublic(ctx context.Context) error
}

type NoopCache struct{}

func (NoopCache) GetPublic(context.Context) ([]models.SystemConfig, bool, error) { return nil, false, nil }
func (NoopCache) SetPublic(context.Context, []models.SystemConfig) error        { return nil }
func (NoopCache) InvalidatePublic(context.Context) error                        { return nil }

// RedisCache stores the public config list as one JSON value.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCacheFromURL parses a redis:// URL and pings the server.
func NewRedisCacheFromURL(redisURL string) (*RedisCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	utils.Info("redis cache connected", map[string]any{"addr": opts.Addr})
	return &RedisCache{client: client}, nil
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) GetPublic(ctx context.Context) ([]models.SystemConfig, bool, error) {
	data, err := c.client.Get(ctx, CacheKeyPublic).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var cfgs []models.SystemConfig
	if err := json.Unmarshal(data, &cfgs); err != nil {
		return nil, false, fmt.Errorf("decode cached configs: %w", err)
	}
	return cfgs, true, nil
}

func (c *RedisCache) SetPublic(ctx context.Context, cfgs []models.SystemConfig) error {
	data, err := json.Marshal(cfgs)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, CacheKeyPublic, data, CacheTTLPublic).Err()
}

func (c *RedisCache) InvalidatePublic(ctx context.Context) error {
	return c.client.Del(ctx, CacheKeyPublic).Err()
}
