package tracing

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/freightrate/internal/observability/scope"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "freightrate/http"

// GinMiddleware opens a server span per request. It must run after the
// logging middleware so the request scope is already on the context.
func GinMiddleware() gin.HandlerFunc {
	tracer := otel.Tracer(tracerName)
	return func(c *gin.Context) {
		ctx := ExtractContext(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))
		ctx, span := tracer.Start(ctx, "HTTP "+c.Request.Method, trace.WithSpanKind(trace.SpanKindServer))
		defer span.End()

		c.Request = c.Request.WithContext(ctx)
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		span.SetName("HTTP " + c.Request.Method + " " + route)
		span.SetAttributes(SafeAttributes(requestAttributes(ctx, c.Request.Method, route, status)...)...)

		if status >= http.StatusInternalServerError {
			if lastErr := c.Errors.Last(); lastErr != nil {
				span.RecordError(SafeError(lastErr.Err))
			}
			span.SetStatus(codes.Error, http.StatusText(status))
		}
	}
}

func requestAttributes(ctx context.Context, method, route string, status int) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String("http.request.method", strings.ToUpper(method)),
		attribute.String("http.route", route),
		attribute.Int("http.response.status_code", status),
	}
	if s := scope.From(ctx); s != nil {
		if s.RequestID != "" {
			attrs = append(attrs, attribute.String("request_id", s.RequestID))
		}
		if s.Mode != "" {
			attrs = append(attrs, attribute.String("rating.mode", s.Mode))
		}
		if s.QuoteRequestID != "" {
			attrs = append(attrs, attribute.String("rating.request_id", s.QuoteRequestID))
		}
	}
	return attrs
}
