package observability

import (
	"strings"
	"time"

	"github.com/smallbiznis/freightrate/internal/config"
	"github.com/spf13/viper"
)

// Config holds the logging, SQL logging and OpenTelemetry settings.
type Config struct {
	ServiceName string
	Environment string
	Version     string

	LogLevel  string
	LogFormat string
	LogFile   string

	DBLogLevel      string
	DBSlowThreshold time.Duration

	OtelEnabled          bool
	OtelExporterEndpoint string
	OtelExporterProtocol string
	OtelSamplingRatio    float64
}

// LoadConfig layers the observability environment variables over the
// application config. The standard OTEL_* names are honored so collectors
// can be pointed at the service without app-specific settings.
func LoadConfig(cfg config.Config) Config {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("DEPLOYMENT_ENV", cfg.Environment)
	v.SetDefault("SERVICE_VERSION", cfg.AppVersion)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("DB_LOG_LEVEL", "warn")
	v.SetDefault("DB_SLOW_QUERY_MS", 200)
	v.SetDefault("OTEL_ENABLED", true)
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.OTLPEndpoint)
	v.SetDefault("OTEL_EXPORTER_OTLP_PROTOCOL", "grpc")
	v.SetDefault("OTEL_SAMPLING_RATIO", 0.1)

	protocol := v.GetString("OTEL_EXPORTER_OTLP_TRACES_PROTOCOL")
	if strings.TrimSpace(protocol) == "" {
		protocol = v.GetString("OTEL_EXPORTER_OTLP_PROTOCOL")
	}

	serviceName := strings.TrimSpace(cfg.AppName)
	if serviceName == "" {
		serviceName = "freightrate"
	}

	return Config{
		ServiceName:          serviceName,
		Environment:          strings.TrimSpace(v.GetString("DEPLOYMENT_ENV")),
		Version:              strings.TrimSpace(v.GetString("SERVICE_VERSION")),
		LogLevel:             lower(v.GetString("LOG_LEVEL")),
		LogFormat:            lower(v.GetString("LOG_FORMAT")),
		LogFile:              cfg.LogFile,
		DBLogLevel:           lower(v.GetString("DB_LOG_LEVEL")),
		DBSlowThreshold:      time.Duration(v.GetInt("DB_SLOW_QUERY_MS")) * time.Millisecond,
		OtelEnabled:          v.GetBool("OTEL_ENABLED"),
		OtelExporterEndpoint: strings.TrimSpace(v.GetString("OTEL_EXPORTER_OTLP_ENDPOINT")),
		OtelExporterProtocol: lower(protocol),
		OtelSamplingRatio:    clampRatio(v.GetFloat64("OTEL_SAMPLING_RATIO")),
	}
}

// Debug reports whether verbose diagnostics are wanted: debug logging was
// asked for, or the service runs in a development environment.
func (c Config) Debug() bool {
	if c.LogLevel == "debug" {
		return true
	}
	switch lower(c.Environment) {
	case "dev", "development", "local", "test":
		return true
	default:
		return false
	}
}

func lower(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func clampRatio(r float64) float64 {
	switch {
	case r < 0:
		return 0
	case r > 1:
		return 1
	default:
		return r
	}
}
