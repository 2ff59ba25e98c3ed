package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/freightrate/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	keyQuoteClient = "%s:quote:client:%s"
	keyCommitLock  = "%s:quote:commit:%s"
)

// The commit lock is released only by the holder of its token, so a commit
// that outlives the TTL cannot free a lock taken over by another instance.
const commitUnlockScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`

// QuoteLimiter throttles rating calls per client and serializes commits that
// share a request id across instances. A nil limiter allows everything.
type QuoteLimiter struct {
	prefix string
	client *redis.Client
	bucket *TokenBucket
	unlock *redis.Script

	rate    float64
	burst   int
	lockTTL time.Duration
}

func NewQuoteLimiter(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) (*QuoteLimiter, error) {
	limitCfg := cfg.RateLimit
	if !limitCfg.Enabled {
		return nil, nil
	}

	addr := strings.TrimSpace(cfg.Redis.Addr)
	if addr == "" {
		return nil, errors.New("rate limit requires REDIS_ADDR")
	}
	if limitCfg.QuoteRate <= 0 || limitCfg.QuoteBurst <= 0 {
		return nil, errors.New("quote rate limit must be positive")
	}
	if limitCfg.CommitLockTTL <= 0 {
		return nil, errors.New("commit lock ttl must be positive")
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

	log.Named("rate.limit").Info("quote rate limit enabled",
		zap.Float64("rate", limitCfg.QuoteRate),
		zap.Int("burst", limitCfg.QuoteBurst),
	)
	return &QuoteLimiter{
		prefix:  cfg.AppName,
		client:  client,
		bucket:  NewTokenBucket(client),
		unlock:  redis.NewScript(commitUnlockScript),
		rate:    limitCfg.QuoteRate,
		burst:   limitCfg.QuoteBurst,
		lockTTL: limitCfg.CommitLockTTL,
	}, nil
}

func (l *QuoteLimiter) Enabled() bool {
	return l != nil && l.bucket != nil
}

// AllowClient takes one token from the client's bucket.
func (l *QuoteLimiter) AllowClient(ctx context.Context, clientKey string) (Decision, error) {
	if !l.Enabled() {
		return Decision{Allowed: true}, nil
	}
	return l.bucket.Allow(ctx, fmt.Sprintf(keyQuoteClient, l.prefix, strings.TrimSpace(clientKey)), l.rate, l.burst)
}

// LockCommit claims requestID for one in-flight commit. The returned release
// func is safe to call when the lock was not acquired.
func (l *QuoteLimiter) LockCommit(ctx context.Context, requestID string) (bool, func(context.Context) error, error) {
	noop := func(context.Context) error { return nil }
	requestID = strings.TrimSpace(requestID)
	if !l.Enabled() || requestID == "" {
		return true, noop, nil
	}

	key := fmt.Sprintf(keyCommitLock, l.prefix, strings.ToLower(requestID))
	token := uuid.NewString()
	acquired, err := l.client.SetNX(ctx, key, token, l.lockTTL).Result()
	if err != nil || !acquired {
		return false, noop, err
	}
	return true, func(ctx context.Context) error {
		return l.unlock.Run(ctx, l.client, []string{key}, token).Err()
	}, nil
}
