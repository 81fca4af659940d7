package redis

import (
	"context"
	"errors"
	"time"

	"company-quiz-service/internal/app"
	"github.com/redis/go-redis/v9"
)

// ResultCache stores result projections in Redis. Values are JSON strings;
// list and set writes are pipelined with an EXPIRE so each view keeps a
// rolling TTL.
type ResultCache struct {
	client redis.UniversalClient
}

func NewResultCache(client redis.UniversalClient) *ResultCache {
	return &ResultCache{client: client}
}

func (c *ResultCache) Get(ctx context.Context, key string) (string, error) {
	val, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", app.ErrCacheMiss
	}
	return val, err
}

func (c *ResultCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

func (c *ResultCache) ListAppend(ctx context.Context, key, value string, ttl time.Duration) error {
	pipe := c.client.TxPipeline()
	pipe.RPush(ctx, key, value)
	if ttl > 0 {
		pipe.Expire(ctx, key, ttl)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (c *ResultCache) ListRange(ctx context.Context, key string) ([]string, error) {
	return c.client.LRange(ctx, key, 0, -1).Result()
}

func (c *ResultCache) SetAdd(ctx context.Context, key, member string, ttl time.Duration) error {
	pipe := c.client.TxPipeline()
	pipe.SAdd(ctx, key, member)
	if ttl > 0 {
		pipe.Expire(ctx, key, ttl)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (c *ResultCache) SetMembers(ctx context.Context, key string) ([]string, error) {
	return c.client.SMembers(ctx, key).Result()
}

// Ping checks connectivity; used at startup.
func (c *ResultCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
