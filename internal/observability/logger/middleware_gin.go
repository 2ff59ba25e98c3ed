package logger

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/smallbiznis/freightrate/internal/observability/scope"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	headerRequestID     = "X-Request-Id"
	headerCorrelationID = "X-Correlation-Id"
)

// MiddlewareConfig controls request logging behavior.
type MiddlewareConfig struct {
	Debug bool
	// ErrorClassifier maps a handler error to the error type and code
	// written to the log line.
	ErrorClassifier func(err error) (string, string)
}

// GinMiddleware opens the request scope and writes one line per request once
// the handler chain has finished.
func GinMiddleware(cfg MiddlewareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := strings.TrimSpace(c.GetHeader(headerRequestID))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		ctx, s := scope.Begin(c.Request.Context(), requestID, c.GetHeader(headerCorrelationID))
		c.Header(headerRequestID, s.RequestID)
		c.Header(headerCorrelationID, s.CorrelationID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
			zap.Int64("bytes_in", max(c.Request.ContentLength, 0)),
			zap.Int("bytes_out", max(c.Writer.Size(), 0)),
		}

		var errorType string
		if lastErr := c.Errors.Last(); lastErr != nil && cfg.ErrorClassifier != nil {
			var errorCode string
			errorType, errorCode = cfg.ErrorClassifier(lastErr.Err)
			fields = append(fields, zap.String("error_type", errorType), zap.String("error_code", errorCode))
			if status >= http.StatusInternalServerError {
				fields = append(fields, zap.String("error", lastErr.Err.Error()))
			}
		}

		if ce := FromContext(c.Request.Context()).Check(requestLevel(route, status, errorType, cfg.Debug), "http_request"); ce != nil {
			ce.Write(fields...)
		}
	}
}

// requestLevel keeps routine traffic quiet: scrapes, probes and rejected
// payloads log at debug, server errors at error.
func requestLevel(route string, status int, errorType string, debug bool) zapcore.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return zapcore.ErrorLevel
	case route == "/metrics" || route == "/health":
		return zapcore.DebugLevel
	case errorType == "validation_error" && !debug:
		return zapcore.DebugLevel
	default:
		return zapcore.InfoLevel
	}
}
