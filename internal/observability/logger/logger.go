package logger

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/smallbiznis/freightrate/internal/observability/scope"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config configures the zap logger.
type Config struct {
	ServiceName string
	Environment string
	Version     string
	Level       string
	Format      string
	File        string
	Debug       bool

	// Sampling keeps the first Initial entries with the same message per
	// Window, then every Thereafter-th.
	SamplingInitial    int
	SamplingThereafter int
	SamplingWindow     time.Duration
}

// New builds the process logger, installs it as the zap global and flushes
// it on shutdown. File output, when set, is rotated by lumberjack and always
// JSON encoded.
func New(lc fx.Lifecycle, cfg Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(firstNonEmpty(cfg.Level, "info"))
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	atomic := zap.NewAtomicLevelAt(level)

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var stdout zapcore.Encoder
	if strings.EqualFold(strings.TrimSpace(cfg.Format), "console") {
		stdout = zapcore.NewConsoleEncoder(encCfg)
	} else {
		stdout = zapcore.NewJSONEncoder(encCfg)
	}
	cores := []zapcore.Core{zapcore.NewCore(stdout, zapcore.Lock(os.Stdout), atomic)}

	if file := strings.TrimSpace(cfg.File); file != "" {
		sink := &lumberjack.Logger{
			Filename:   file,
			MaxSize:    100,
			MaxBackups: 5,
			MaxAge:     14,
			Compress:   true,
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(sink), atomic))
		if lc != nil {
			lc.Append(fx.Hook{OnStop: func(context.Context) error { return sink.Close() }})
		}
	}

	core := zapcore.NewSamplerWithOptions(
		zapcore.NewTee(cores...),
		orDuration(cfg.SamplingWindow, time.Second),
		orInt(cfg.SamplingInitial, 100),
		orInt(cfg.SamplingThereafter, 100),
	)

	opts := []zap.Option{zap.AddCaller(), zap.ErrorOutput(zapcore.Lock(os.Stderr))}
	if cfg.Debug {
		opts = append(opts, zap.AddStacktrace(zapcore.ErrorLevel))
	}

	log := zap.New(core, opts...).With(
		zap.String("service", firstNonEmpty(cfg.ServiceName, "freightrate")),
		zap.String("env", strings.TrimSpace(cfg.Environment)),
		zap.String("version", strings.TrimSpace(cfg.Version)),
	)
	zap.ReplaceGlobals(log)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(context.Context) error {
				_ = log.Sync()
				return nil
			},
		})
	}
	return log, nil
}

// FromContext returns the global logger tagged with the request scope and
// trace on ctx.
func FromContext(ctx context.Context) *zap.Logger {
	return WithContext(ctx, zap.L())
}

// WithContext tags base with the identifiers present on ctx. Absent
// identifiers are omitted rather than logged empty.
func WithContext(ctx context.Context, base *zap.Logger) *zap.Logger {
	if ctx == nil || base == nil {
		return base
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return base
	}
	return base.With(fields...)
}

// ContextFields lists the request scope and trace identifiers on ctx.
func ContextFields(ctx context.Context) []zap.Field {
	var fields []zap.Field
	if s := scope.From(ctx); s != nil {
		fields = appendNonEmpty(fields, "request_id", s.RequestID)
		fields = appendNonEmpty(fields, "correlation_id", s.CorrelationID)
		fields = appendNonEmpty(fields, "quote_request_id", s.QuoteRequestID)
		fields = appendNonEmpty(fields, "mode", s.Mode)
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		fields = append(fields,
			zap.String("trace_id", sc.TraceID().String()),
			zap.String("span_id", sc.SpanID().String()),
		)
	}
	return fields
}

func appendNonEmpty(fields []zap.Field, key, value string) []zap.Field {
	if value == "" {
		return fields
	}
	return append(fields, zap.String(key, value))
}

func firstNonEmpty(value, def string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return def
}

func orInt(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

func orDuration(v, def time.Duration) time.Duration {
	if v <= 0 {
		return def
	}
	return v
}
