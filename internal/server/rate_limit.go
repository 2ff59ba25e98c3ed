package server

import (
	"context"
	"math"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/freightrate/internal/ratelimit"
	"go.uber.org/zap"
)

type quoteLimiter interface {
	AllowClient(ctx context.Context, clientKey string) (ratelimit.Decision, error)
	LockCommit(ctx context.Context, requestID string) (bool, func(context.Context) error, error)
}

func (s *Server) rateLimitQuotes() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.limiter == nil {
			c.Next()
			return
		}

		decision, err := s.limiter.AllowClient(c.Request.Context(), c.ClientIP())
		if err != nil {
			s.log.Warn("quote rate limit check failed", zap.String("client_ip", c.ClientIP()), zap.Error(err))
			AbortWithError(c, ErrServiceUnavailable)
			return
		}
		if decision.Limit > 0 {
			c.Header("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
			c.Header("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
		}
		if !decision.Allowed {
			seconds := int(math.Ceil(decision.RetryAfter.Seconds()))
			if seconds < 1 {
				seconds = 1
			}
			c.Header("Retry-After", strconv.Itoa(seconds))
			AbortWithError(c, ErrRateLimited)
			return
		}
		c.Next()
	}
}

// lockCommit reports false after aborting the request.
func (s *Server) lockCommit(c *gin.Context, requestID string) (func(), bool) {
	if s.limiter == nil {
		return func() {}, true
	}

	acquired, release, err := s.limiter.LockCommit(c.Request.Context(), requestID)
	if err != nil {
		s.log.Warn("commit lock failed", zap.String("request_id", requestID), zap.Error(err))
		AbortWithError(c, ErrServiceUnavailable)
		return nil, false
	}
	if !acquired {
		AbortWithError(c, ErrCommitInProgress)
		return nil, false
	}
	return func() {
		if err := release(context.Background()); err != nil {
			s.log.Warn("commit lock release failed", zap.String("request_id", requestID), zap.Error(err))
		}
	}, true
}
