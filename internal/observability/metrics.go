package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "stockmetrics"

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	registry *prometheus.Registry

	// Ratio metrics
	RatioOutcomes *prometheus.CounterVec

	// Provider metrics
	ProviderRequests *prometheus.CounterVec
	ProviderDuration *prometheus.HistogramVec

	// Store metrics
	StoreErrors *prometheus.CounterVec
}

// providerBuckets cover a single cached page up to a rate-limited AlphaVantage run (in seconds)
var providerBuckets = []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60}

// NewMetrics creates and registers all metrics on reg. A nil reg gets a fresh registry.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		RatioOutcomes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "ratio",
				Name:      "outcomes_total",
				Help:      "Ratios computed or left absent, by metric and outcome",
			},
			[]string{"metric", "outcome"},
		),
		ProviderRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "provider",
				Name:      "requests_total",
				Help:      "Ticker fetches by provider and status",
			},
			[]string{"provider", "status"},
		),
		ProviderDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "provider",
				Name:      "duration_seconds",
				Help:      "Time spent fetching one ticker",
				Buckets:   providerBuckets,
			},
			[]string{"provider"},
		),
		StoreErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "store",
				Name:      "errors_total",
				Help:      "Failed saves by store",
			},
			[]string{"store"},
		),
	}
}

// RecordRatio counts one ratio outcome, e.g. "computed" or "label_mismatch"
func (m *Metrics) RecordRatio(metric, outcome string) {
	m.RatioOutcomes.WithLabelValues(metric, outcome).Inc()
}

// RecordFetch records one provider fetch
func (m *Metrics) RecordFetch(provider, status string, duration time.Duration) {
	m.ProviderRequests.WithLabelValues(provider, status).Inc()
	m.ProviderDuration.WithLabelValues(provider).Observe(duration.Seconds())
}

// RecordStoreError counts one failed save
func (m *Metrics) RecordStoreError(store string) {
	m.StoreErrors.WithLabelValues(store).Inc()
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
