package cache

import (
	"context"
	"strings"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/freightrate/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("reference.cache",
	fx.Provide(New),
)

// ReferenceCache is a read-through cache for reference-data lookups. Values
// are JSON encoded. Invalidate discards every entry written before it.
type ReferenceCache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any) error
	Invalidate(ctx context.Context) error
}

// New returns a redis-backed cache when REDIS_ADDR is set, otherwise a no-op.
func New(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) ReferenceCache {
	addr := strings.TrimSpace(cfg.Redis.Addr)
	if addr == "" {
		log.Info("reference cache disabled")
		return Noop{}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})

	log.Info("reference cache enabled", zap.String("addr", addr))
	return NewRedis(client, cfg.AppName, cfg.Redis.TTL, log)
}

// Noop never hits.
type Noop struct{}

func (Noop) Get(context.Context, string, any) (bool, error) { return false, nil }
func (Noop) Set(context.Context, string, any) error         { return nil }
func (Noop) Invalidate(context.Context) error               { return nil }
