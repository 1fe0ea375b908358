// Package cache holds the redis-backed caches. Every cache has a noop
// fallback so the rest of the system never needs to know whether redis is
// configured.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/stocksmith/shopd/internal/config"
	"github.com/stocksmith/shopd/internal/domain"
)

const (
	overviewKey        = "stock:overview"
	defaultOverviewTTL = time.Minute
)

// OverviewCache caches the computed stock overview.
type OverviewCache interface {
	Get(ctx context.Context) (*domain.StockOverview, bool, error)
	Set(ctx context.Context, overview *domain.StockOverview) error
	Invalidate(ctx context.Context) error
}

type redisOverviewCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopOverviewCache struct{}

// NewOverviewCache returns a redis-backed cache, or a noop cache when
// caching is disabled.
func NewOverviewCache(cfg config.CacheConfig) (OverviewCache, error) {
	if !cfg.Enabled {
		return &noopOverviewCache{}, nil
	}

	opts, err := buildRedisOptions(cfg)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	ttl := time.Duration(cfg.OverviewTTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = defaultOverviewTTL
	}

	return &redisOverviewCache{client: client, ttl: ttl}, nil
}

func NewNoopOverviewCache() OverviewCache {
	return &noopOverviewCache{}
}

func buildRedisOptions(cfg config.CacheConfig) (*redis.Options, error) {
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		return opt, nil
	}

	host := cfg.RedisHost
	if host == "" {
		host = "127.0.0.1"
	}
	port := cfg.RedisPort
	if port == "" {
		port = "6379"
	}

	return &redis.Options{
		Addr:     net.JoinHostPort(host, port),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, nil
}

func (c *redisOverviewCache) Get(ctx context.Context) (*domain.StockOverview, bool, error) {
	payload, err := c.client.Get(ctx, overviewKey).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var overview domain.StockOverview
	if err := json.Unmarshal(payload, &overview); err != nil {
		return nil, false, fmt.Errorf("decode stock overview cache: %w", err)
	}
	return &overview, true, nil
}

func (c *redisOverviewCache) Set(ctx context.Context, overview *domain.StockOverview) error {
	payload, err := json.Marshal(overview)
	if err != nil {
		return fmt.Errorf("encode stock overview cache: %w", err)
	}
	if err := c.client.Set(ctx, overviewKey, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisOverviewCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, overviewKey).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func (c *noopOverviewCache) Get(ctx context.Context) (*domain.StockOverview, bool, error) {
	return nil, false, nil
}

func (c *noopOverviewCache) Set(ctx context.Context, overview *domain.StockOverview) error {
	return nil
}

func (c *noopOverviewCache) Invalidate(ctx context.Context) error {
	return nil
}
