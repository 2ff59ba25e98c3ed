package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const defaultTTL = 10 * time.Minute

// Redis namespaces every key with a counter so Invalidate is a single INCR
// instead of a key scan.
type Redis struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	log    *zap.Logger
}

func NewRedis(client *redis.Client, prefix string, ttl time.Duration, log *zap.Logger) *Redis {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	if prefix == "" {
		prefix = "freightrate"
	}
	return &Redis{
		client: client,
		prefix: prefix,
		ttl:    ttl,
		log:    log.Named("reference.cache"),
	}
}

func (c *Redis) Get(ctx context.Context, key string, dest any) (bool, error) {
	full, err := c.key(ctx, key)
	if err != nil {
		return false, err
	}
	raw, err := c.client.Get(ctx, full).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		c.log.Warn("discarding undecodable cache entry", zap.String("key", full), zap.Error(err))
		return false, nil
	}
	return true, nil
}

func (c *Redis) Set(ctx context.Context, key string, value any) error {
	full, err := c.key(ctx, key)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, full, raw, c.ttl).Err()
}

func (c *Redis) Invalidate(ctx context.Context) error {
	ns, err := c.client.Incr(ctx, c.namespaceKey()).Result()
	if err != nil {
		return err
	}
	c.log.Info("reference cache invalidated", zap.Int64("namespace", ns))
	return nil
}

func (c *Redis) key(ctx context.Context, key string) (string, error) {
	ns, err := c.client.Get(ctx, c.namespaceKey()).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", err
	}
	return fmt.Sprintf("%s:ref:%d:%s", c.prefix, ns, key), nil
}

func (c *Redis) namespaceKey() string {
	return c.prefix + ":ref:ns"
}
