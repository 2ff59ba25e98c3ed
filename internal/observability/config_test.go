package observability

import (
	"testing"
	"time"

	"github.com/smallbiznis/freightrate/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig(config.Config{AppName: "freightrate", AppVersion: "1.2.3", Environment: "production", OTLPEndpoint: "otel:4317"})

	assert.Equal(t, "freightrate", cfg.ServiceName)
	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, "1.2.3", cfg.Version)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "warn", cfg.DBLogLevel)
	assert.Equal(t, 200*time.Millisecond, cfg.DBSlowThreshold)
	assert.Equal(t, "otel:4317", cfg.OtelExporterEndpoint)
	assert.Equal(t, "grpc", cfg.OtelExporterProtocol)
	assert.InDelta(t, 0.1, cfg.OtelSamplingRatio, 1e-9)
	assert.False(t, cfg.Debug())
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("DB_SLOW_QUERY_MS", "50")
	t.Setenv("OTEL_EXPORTER_OTLP_PROTOCOL", "grpc")
	t.Setenv("OTEL_EXPORTER_OTLP_TRACES_PROTOCOL", "HTTP/protobuf")
	t.Setenv("OTEL_SAMPLING_RATIO", "3")
	t.Setenv("OTEL_ENABLED", "false")

	cfg := LoadConfig(config.Config{Environment: "production"})

	assert.Equal(t, "freightrate", cfg.ServiceName)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 50*time.Millisecond, cfg.DBSlowThreshold)
	assert.Equal(t, "http/protobuf", cfg.OtelExporterProtocol)
	assert.Equal(t, 1.0, cfg.OtelSamplingRatio)
	assert.False(t, cfg.OtelEnabled)
	assert.True(t, cfg.Debug())
}

func TestDebugInDevelopment(t *testing.T) {
	assert.True(t, Config{Environment: "Local"}.Debug())
	assert.False(t, Config{Environment: "staging", LogLevel: "info"}.Debug())
}
