package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "media_aggregator"

// Metrics holds Prometheus counters and gauges for the aggregator.
type Metrics struct {
	registry        *prometheus.Registry
	requestsTotal   prometheus.Counter
	errorsTotal     prometheus.Counter
	refreshesTotal  prometheus.Counter
	refreshDuration prometheus.Histogram
	sourceFailures  *prometheus.CounterVec
	videos          *prometheus.GaugeVec
	lastRefresh     prometheus.Gauge
}

// New creates and registers Prometheus metrics for the aggregator.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	requestsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests received",
	})
	errorsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_errors_total",
		Help:      "Total number of HTTP responses with error status (4xx or 5xx)",
	})
	refreshesTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "refreshes_total",
		Help:      "Total number of completed feed refreshes",
	})
	refreshDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "refresh_duration_seconds",
		Help:      "Wall time of a full feed refresh",
		Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 20, 30, 60},
	})
	sourceFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "source_failures_total",
		Help:      "Feed fetches that failed and left a media with no videos",
	}, []string{"media"})
	videos := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "videos",
		Help:      "Videos currently cached per media",
	}, []string{"media"})
	lastRefresh := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "last_refresh_timestamp_seconds",
		Help:      "Unix time of the last published refresh",
	})

	registry.MustRegister(
		requestsTotal,
		errorsTotal,
		refreshesTotal,
		refreshDuration,
		sourceFailures,
		videos,
		lastRefresh,
	)

	return &Metrics{
		registry:        registry,
		requestsTotal:   requestsTotal,
		errorsTotal:     errorsTotal,
		refreshesTotal:  refreshesTotal,
		refreshDuration: refreshDuration,
		sourceFailures:  sourceFailures,
		videos:          videos,
		lastRefresh:     lastRefresh,
	}
}

// IncRequests increments the total request counter.
func (m *Metrics) IncRequests() {
	m.requestsTotal.Inc()
}

// IncErrors increments the errors counter.
func (m *Metrics) IncErrors() {
	m.errorsTotal.Inc()
}

// ObserveRefresh records a completed refresh: its duration, completion time
// and the media whose fetch failed.
func (m *Metrics) ObserveRefresh(d time.Duration, at time.Time, failed []string) {
	m.refreshesTotal.Inc()
	m.refreshDuration.Observe(d.Seconds())
	m.lastRefresh.Set(float64(at.Unix()))
	for _, id := range failed {
		m.sourceFailures.WithLabelValues(id).Inc()
	}
}

// SetVideoCounts replaces the per-media video gauges.
func (m *Metrics) SetVideoCounts(counts map[string]int) {
	m.videos.Reset()
	for id, n := range counts {
		m.videos.WithLabelValues(id).Set(float64(n))
	}
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns an http.Handler that serves Prometheus metrics.
// updateGauges is called before each scrape to refresh gauge values (e.g. cached videos).
func (m *Metrics) Handler(updateGauges func()) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if updateGauges != nil {
			updateGauges()
		}
		promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}).ServeHTTP(w, r)
	})
}
