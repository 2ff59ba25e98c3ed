package logger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	gormlogger "gorm.io/gorm/logger"
)

// GormConfig configures SQL logging.
type GormConfig struct {
	// Level is one of silent, error, warn or info.
	Level         string
	SlowThreshold time.Duration
}

// GormLogger routes GORM output through the context logger so statements
// issued while rating carry the quote request id. Bound values are never
// logged. Lookups that find nothing are normal while resolving contracts and
// rates, so ErrRecordNotFound is not treated as an error.
type GormLogger struct {
	level gormlogger.LogLevel
	slow  time.Duration
}

func NewGormLogger(cfg GormConfig) *GormLogger {
	return &GormLogger{
		level: parseGormLevel(cfg.Level),
		slow:  cfg.SlowThreshold,
	}
}

func parseGormLevel(level string) gormlogger.LogLevel {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "info":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}

func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...any) {
	l.message(ctx, gormlogger.Info, zapcore.InfoLevel, msg, data)
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...any) {
	l.message(ctx, gormlogger.Warn, zapcore.WarnLevel, msg, data)
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...any) {
	l.message(ctx, gormlogger.Error, zapcore.ErrorLevel, msg, data)
}

func (l *GormLogger) message(ctx context.Context, min gormlogger.LogLevel, level zapcore.Level, msg string, data []any) {
	if l.level < min {
		return
	}
	if ce := FromContext(ctx).Check(level, "gorm"); ce != nil {
		ce.Write(zap.String("detail", fmt.Sprintf(msg, data...)))
	}
}

func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	var level zapcore.Level
	switch {
	case err != nil && !errors.Is(err, gormlogger.ErrRecordNotFound) && l.level >= gormlogger.Error:
		level = zapcore.ErrorLevel
	case l.slow > 0 && elapsed > l.slow && l.level >= gormlogger.Warn:
		level = zapcore.WarnLevel
	case l.level >= gormlogger.Info:
		level = zapcore.DebugLevel
	default:
		return
	}

	ce := FromContext(ctx).Check(level, "sql")
	if ce == nil {
		return
	}
	sql, rows := fc()
	op, table := describeSQL(sql)
	fields := []zap.Field{
		zap.String("operation", op),
		zap.String("table", table),
		zap.Int64("duration_ms", elapsed.Milliseconds()),
		zap.String("sql", strings.TrimSpace(sql)),
	}
	if rows >= 0 {
		fields = append(fields, zap.Int64("rows", rows))
	}
	if level == zapcore.WarnLevel {
		fields = append(fields, zap.Bool("slow", true))
	}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	ce.Write(fields...)
}

// ParamsFilter drops bound values from the statement GORM hands to Trace.
func (l *GormLogger) ParamsFilter(_ context.Context, sql string, _ ...any) (string, []any) {
	return sql, nil
}

// describeSQL returns the statement verb and the first table it touches.
func describeSQL(sql string) (string, string) {
	tokens := strings.Fields(sql)
	op, table := "UNKNOWN", ""
	for i, raw := range tokens {
		token := strings.ToUpper(strings.Trim(raw, "();"))
		switch token {
		case "SELECT", "INSERT", "UPDATE", "DELETE":
			if op == "UNKNOWN" {
				op = token
			}
			if token == "UPDATE" && table == "" && i+1 < len(tokens) {
				table = cleanIdent(tokens[i+1])
			}
		case "FROM", "INTO", "JOIN":
			if table == "" && i+1 < len(tokens) {
				table = cleanIdent(tokens[i+1])
			}
		}
	}
	return op, table
}

func cleanIdent(token string) string {
	return strings.Trim(token, "`\"();")
}

var _ gormlogger.Interface = (*GormLogger)(nil)
