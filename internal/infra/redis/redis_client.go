// File: internal/infra/redis/redis_client.go
package redis

import (
	"context"
	"time"

	goredis "github.com/go-redis/redis/v8"

	"github.com/razavioo/notimetolie.com/internal/config"
)

// Client narrows the go-redis surface to what this service touches, which
// keeps the quota limiter trivially fakeable in tests.
type Client interface {
	Incr(ctx context.Context, key string) (int64, error)
	Expire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Get(ctx context.Context, key string) (string, error)
	Close() error
}

type redisClient struct {
	rdb *goredis.Client
}

var _ Client = (*redisClient)(nil)

// NewClient parses the redis URL, connects, and verifies the connection with
// a short ping. Explicit password/db settings override the URL.
func NewClient(ctx context.Context, cfg *config.RedisConfig) (Client, error) {
	opt, err := goredis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}
	if cfg.Password != "" {
		opt.Password = cfg.Password
	}
	if cfg.DB != 0 {
		opt.DB = cfg.DB
	}
	rdb := goredis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		return nil, err
	}
	return &redisClient{rdb: rdb}, nil
}

func (c *redisClient) Incr(ctx context.Context, key string) (int64, error) {
	return c.rdb.Incr(ctx, key).Result()
}

func (c *redisClient) Expire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return c.rdb.Expire(ctx, key, ttl).Result()
}

func (c *redisClient) Get(ctx context.Context, key string) (string, error) {
	val, err := c.rdb.Get(ctx, key).Result()
	if err == goredis.Nil {
		return "", nil
	}
	return val, err
}

func (c *redisClient) Close() error {
	return c.rdb.Close()
}
