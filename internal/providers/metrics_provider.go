package providers

import (
	"context"
	"igmetrics/internal/structures"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncCacheHits()
	IncCacheMisses()
	ObservePersistenceDuration(duration time.Duration)
	IncExtractions(source, outcome string)
	IncReconcileChanges()
	IncLLMFailures()
	IncReportStoreFailures()
	SetAnalysesInFlight(n int64)
}

// ProfileCounter reports how many profiles are stored.
type ProfileCounter interface {
	Count(ctx context.Context) (int, error)
}

type MetricsProvider struct {
	requestsTotal       *prometheus.CounterVec
	requestDuration     *prometheus.HistogramVec
	cacheHits           prometheus.Counter
	cacheMisses         prometheus.Counter
	persistenceDuration prometheus.Histogram
	extractions         *prometheus.CounterVec
	reconcileChanges    prometheus.Counter
	llmFailures         prometheus.Counter
	reportStores        prometheus.Counter
	inFlight            prometheus.Gauge
}

func (m *MetricsProvider) IncRequestsTotal(endpoint string, status int) {
	m.requestsTotal.WithLabelValues(endpoint, httpStatusBucket(status)).Inc()
}

func (m *MetricsProvider) ObserveRequestDuration(endpoint string, duration time.Duration) {
	m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncCacheHits() {
	m.cacheHits.Inc()
}

func (m *MetricsProvider) IncCacheMisses() {
	m.cacheMisses.Inc()
}

func (m *MetricsProvider) ObservePersistenceDuration(duration time.Duration) {
	m.persistenceDuration.Observe(duration.Seconds())
}

func (m *MetricsProvider) IncExtractions(source, outcome string) {
	m.extractions.WithLabelValues(source, outcome).Inc()
}

func (m *MetricsProvider) IncReconcileChanges() {
	m.reconcileChanges.Inc()
}

func (m *MetricsProvider) IncLLMFailures() {
	m.llmFailures.Inc()
}

func (m *MetricsProvider) IncReportStoreFailures() {
	m.reportStores.Inc()
}

func (m *MetricsProvider) SetAnalysesInFlight(n int64) {
	m.inFlight.Set(float64(n))
}

func httpStatusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

func NewMetricsProvider(conf *structures.Config, profiles ProfileCounter) MetricsProviderInterface {
	if !conf.Metrics.Enabled {
		return &noopMetrics{}
	}

	m := &MetricsProvider{
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "igm_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "status"}),

		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "igm_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		cacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "igm_cache_hits_total",
			Help: "Total number of report cache hits",
		}),

		cacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "igm_cache_misses_total",
			Help: "Total number of report cache misses",
		}),

		persistenceDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "igm_persistence_duration_seconds",
			Help:    "Duration of persistence operations in seconds",
			Buckets: prometheus.DefBuckets,
		}),

		extractions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "igm_extractions_total",
			Help: "Extraction attempts by source and outcome",
		}, []string{"source", "outcome"}),

		reconcileChanges: promauto.NewCounter(prometheus.CounterOpts{
			Name: "igm_reconcile_changes_total",
			Help: "Reconciliation passes that changed at least one field",
		}),

		llmFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "igm_llm_failures_total",
			Help: "Failed LLM report requests",
		}),

		reportStores: promauto.NewCounter(prometheus.CounterOpts{
			Name: "igm_report_store_failures_total",
			Help: "Composed reports that could not be cached on the record",
		}),

		inFlight: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "igm_analyses_in_flight",
			Help: "Analyses currently running",
		}),
	}

	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "igm_profiles_total",
		Help: "Number of stored profiles",
	}, func() float64 {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		n, err := profiles.Count(ctx)
		if err != nil {
			return 0
		}
		return float64(n)
	})

	return m
}

// noopMetrics is a no-op implementation for when metrics are disabled.
type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) IncCacheHits()                                    {}
func (n *noopMetrics) IncCacheMisses()                                  {}
func (n *noopMetrics) ObservePersistenceDuration(_ time.Duration)       {}
func (n *noopMetrics) IncExtractions(_, _ string)                       {}
func (n *noopMetrics) IncReconcileChanges()                             {}
func (n *noopMetrics) IncLLMFailures()                                  {}
func (n *noopMetrics) IncReportStoreFailures()                          {}
func (n *noopMetrics) SetAnalysesInFlight(_ int64)                      {}
