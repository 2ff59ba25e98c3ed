package telemetry

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes the Prometheus series scraped from /metrics.
type Metrics struct {
	apiRequests *prometheus.CounterVec
	apiDuration *prometheus.HistogramVec
	quoteTotal  *prometheus.HistogramVec
}

// NewMetrics registers the HTTP and quote series on reg. A nil reg uses the
// default registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	apiRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "freightrate_api_requests_total",
		Help: "Counts API requests by method, route and status.",
	}, []string{"method", "route", "status"})

	apiDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "freightrate_api_duration_seconds",
		Help:    "API request latency per method and route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	quoteTotal := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "freightrate_quote_total_amount",
			Help:    "Quote total distribution by mode.",
			Buckets: []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000},
		},
		[]string{"mode"},
	)

	reg.MustRegister(apiRequests, apiDuration, quoteTotal)

	return &Metrics{
		apiRequests: apiRequests,
		apiDuration: apiDuration,
		quoteTotal:  quoteTotal,
	}
}

// ObserveAPIRequest records an API request and latency.
func (m *Metrics) ObserveAPIRequest(method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	methodLabel := sanitizeLabel(method)
	routeLabel := sanitizeLabel(route)
	m.apiRequests.WithLabelValues(methodLabel, routeLabel, strconv.Itoa(status)).Inc()
	m.apiDuration.WithLabelValues(methodLabel, routeLabel).Observe(duration.Seconds())
}

// ObserveQuoteTotal records a quote total for the mode.
func (m *Metrics) ObserveQuoteTotal(mode string, amount float64) {
	if m == nil {
		return
	}
	m.quoteTotal.WithLabelValues(sanitizeLabel(mode)).Observe(amount)
}

func sanitizeLabel(val string) string {
	if val == "" {
		return "unknown"
	}
	return val
}
