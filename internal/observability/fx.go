package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/smallbiznis/freightrate/internal/observability/logger"
	"github.com/smallbiznis/freightrate/internal/observability/metrics"
	"github.com/smallbiznis/freightrate/internal/observability/tracing"
	"github.com/smallbiznis/freightrate/pkg/telemetry"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/fx"
)

// Module provides the process logger, the SQL logger settings, the OTel
// tracer and meter providers, the rating instruments and the Prometheus
// HTTP metrics.
var Module = fx.Module("observability",
	fx.Provide(
		LoadConfig,
		func(cfg Config) logger.Config {
			return logger.Config{
				ServiceName: cfg.ServiceName,
				Environment: cfg.Environment,
				Version:     cfg.Version,
				Level:       cfg.LogLevel,
				Format:      cfg.LogFormat,
				File:        cfg.LogFile,
				Debug:       cfg.Debug(),
			}
		},
		logger.New,
		func(cfg Config) logger.GormConfig {
			return logger.GormConfig{
				Level:         cfg.DBLogLevel,
				SlowThreshold: cfg.DBSlowThreshold,
			}
		},
		func(cfg Config) tracing.Config {
			return tracing.Config{
				Enabled:          cfg.OtelEnabled,
				ServiceName:      cfg.ServiceName,
				ServiceVersion:   cfg.Version,
				Environment:      cfg.Environment,
				ExporterEndpoint: cfg.OtelExporterEndpoint,
				ExporterProtocol: cfg.OtelExporterProtocol,
				SamplingRatio:    cfg.OtelSamplingRatio,
			}
		},
		tracing.NewProvider,
		func(cfg Config) metrics.Config {
			return metrics.Config{
				Enabled:          cfg.OtelEnabled,
				ExporterEndpoint: cfg.OtelExporterEndpoint,
				ExporterProtocol: cfg.OtelExporterProtocol,
				ServiceName:      cfg.ServiceName,
				Environment:      cfg.Environment,
			}
		},
		metrics.NewProvider,
		metrics.New,
		func() *telemetry.Metrics {
			return telemetry.NewMetrics(prometheus.DefaultRegisterer)
		},
	),
	// The tracer provider registers itself globally; force its construction.
	fx.Invoke(func(*sdktrace.TracerProvider) {}),
)
