package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Config configures the metrics collector.
type Config struct {
	// Enabled enables metric recording. A disabled collector still
	// registers its metrics so the endpoint stays scrapeable.
	Enabled bool

	// Namespace prefixes every metric name. Default: "rotor".
	Namespace string

	// RequestDurationBuckets are the histogram buckets in seconds.
	// Defaults cover LLM latencies from 100ms to 2 minutes.
	RequestDurationBuckets []float64
}

// DefaultConfig returns the default metrics configuration.
func DefaultConfig() Config {
	return Config{
		Enabled:   true,
		Namespace: "rotor",
	}
}

// Collector records dispatch metrics into a private Prometheus registry.
// It implements the dispatch Observer interface.
type Collector struct {
	config   Config
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	attemptsTotal   *prometheus.CounterVec
	selectionsTotal *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewCollector creates a collector. A nil registry gets a fresh one.
func NewCollector(cfg Config, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	if cfg.Namespace == "" {
		cfg.Namespace = "rotor"
	}
	if len(cfg.RequestDurationBuckets) == 0 {
		cfg.RequestDurationBuckets = []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60, 120}
	}

	c := &Collector{
		config:   cfg,
		registry: registry,

		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "requests_total",
			Help:      "Completed dispatch requests by provider and final status.",
		}, []string{"provider", "status"}),

		attemptsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "attempts_total",
			Help:      "Individual provider call attempts by provider and outcome.",
		}, []string{"provider", "outcome"}),

		selectionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "selections_total",
			Help:      "Credential selector decisions by outcome.",
		}, []string{"outcome"}),

		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Name:      "request_duration_seconds",
			Help:      "End-to-end dispatch duration including retry delays.",
			Buckets:   cfg.RequestDurationBuckets,
		}, []string{"provider"}),
	}

	registry.MustRegister(
		c.requestsTotal,
		c.attemptsTotal,
		c.selectionsTotal,
		c.requestDuration,
	)

	return c
}

// ObserveSelection records one selector outcome.
func (c *Collector) ObserveSelection(outcome string) {
	if !c.config.Enabled {
		return
	}
	c.selectionsTotal.WithLabelValues(outcome).Inc()
}

// ObserveAttempt records one provider call outcome.
func (c *Collector) ObserveAttempt(provider, outcome string) {
	if !c.config.Enabled {
		return
	}
	c.attemptsTotal.WithLabelValues(provider, outcome).Inc()
}

// ObserveRequest records a completed dispatch.
func (c *Collector) ObserveRequest(provider, status string, duration time.Duration) {
	if !c.config.Enabled {
		return
	}
	c.requestsTotal.WithLabelValues(provider, status).Inc()
	c.requestDuration.WithLabelValues(provider).Observe(duration.Seconds())
}

// Handler returns the Prometheus scrape handler for this collector's
// registry.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{
		ErrorHandling: promhttp.ContinueOnError,
	})
}
