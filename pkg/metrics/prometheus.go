// Package metrics provides Prometheus metrics for the feedrank service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager manages all Prometheus metrics for the feedrank service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	registry         prometheus.Registerer

	// Signal metrics - the write side of personalization
	signalsRecorded  prometheus.Counter
	signalsDuplicate prometheus.Counter
	signalsRemoved   prometheus.Counter

	// Taste model metrics
	centroidRecomputes       prometheus.Counter
	centroidRecomputeLatency prometheus.Histogram

	// Feed metrics - the read side of personalization
	feedBuilds        prometheus.Counter
	feedBuildLatency  prometheus.Histogram
	feedNoTasteSignal prometheus.Counter
	feedEntriesServed prometheus.Counter

	// Moderation metrics
	moderationUpdates *prometheus.CounterVec
	eventsUpserted    prometheus.Counter

	// Scale gauges
	totalEvents   prometheus.Gauge
	totalUsers    prometheus.Gauge
	activeSignals prometheus.Gauge

	// HTTP performance metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error tracking
	errorsByComponent *prometheus.CounterVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "feedrank",
		subsystem:        "engine",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) initializeMetrics() {
	// Ensure metrics are registered on the configured registry (custom by default)
	auto := promauto.With(m.registry)

	m.signalsRecorded = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "signals_recorded_total",
		Help:      "Total number of behavioral signals recorded",
	})

	m.signalsDuplicate = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "signals_duplicate_total",
		Help:      "Total number of duplicate signal submissions absorbed as no-ops",
	})

	m.signalsRemoved = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "signals_removed_total",
		Help:      "Total number of signals soft-deactivated by user retraction",
	})

	m.centroidRecomputes = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "centroid_recomputes_total",
		Help:      "Total number of lazy taste-centroid recomputations",
	})

	m.centroidRecomputeLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "centroid_recompute_latency_milliseconds",
		Help:      "Histogram of centroid recomputation latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.feedBuilds = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "feed_builds_total",
		Help:      "Total number of personalized feed builds",
	})

	m.feedBuildLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "feed_build_latency_milliseconds",
		Help:      "Histogram of feed build latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.feedNoTasteSignal = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "feed_no_taste_signal_total",
		Help:      "Total number of feed requests answered with the personalization-unavailable state",
	})

	m.feedEntriesServed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "feed_entries_served_total",
		Help:      "Total number of entries delivered across all personalized feeds",
	})

	m.moderationUpdates = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "moderation_updates_total",
			Help:      "Total number of moderation actions by kind",
		},
		[]string{"action"},
	)

	m.eventsUpserted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "events_upserted_total",
		Help:      "Total number of events received from the ingestion pipeline",
	})

	m.totalEvents = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "total_events",
		Help:      "Total number of events currently stored",
	})

	m.totalUsers = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "total_users",
		Help:      "Total number of users with at least one recorded signal",
	})

	m.activeSignals = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "active_signals",
		Help:      "Current number of active signals across all users",
	})

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint and method",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorsByComponent = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "errors_by_component_total",
			Help:      "Total errors by component and error type",
		},
		[]string{"component", "error_type"},
	)
}

// RecordSignalRecorded increments the signals recorded counter.
func RecordSignalRecorded() {
	globalManager.signalsRecorded.Inc()
}

// RecordSignalDuplicate increments the duplicate signals counter.
func RecordSignalDuplicate() {
	globalManager.signalsDuplicate.Inc()
}

// RecordSignalRemoved increments the removed signals counter.
func RecordSignalRemoved() {
	globalManager.signalsRemoved.Inc()
}

// RecordCentroidRecompute records one lazy centroid recomputation.
func RecordCentroidRecompute(latencyMs float64) {
	globalManager.centroidRecomputes.Inc()
	globalManager.centroidRecomputeLatency.Observe(latencyMs)
}

// RecordFeedBuild records one personalized feed build.
func RecordFeedBuild(latencyMs float64, entries int) {
	globalManager.feedBuilds.Inc()
	globalManager.feedBuildLatency.Observe(latencyMs)
	globalManager.feedEntriesServed.Add(float64(entries))
}

// RecordFeedNoTasteSignal increments the personalization-unavailable counter.
func RecordFeedNoTasteSignal() {
	globalManager.feedNoTasteSignal.Inc()
}

// RecordModerationUpdate records a moderation action: override_set,
// override_clear, or boost.
func RecordModerationUpdate(action string) {
	globalManager.moderationUpdates.WithLabelValues(action).Inc()
}

// RecordEventUpserted increments the ingestion counter.
func RecordEventUpserted() {
	globalManager.eventsUpserted.Inc()
}

// UpdateTotalEvents sets the stored event count.
func UpdateTotalEvents(count int) {
	globalManager.totalEvents.Set(float64(count))
}

// UpdateTotalUsers sets the known user count.
func UpdateTotalUsers(count int) {
	globalManager.totalUsers.Set(float64(count))
}

// UpdateActiveSignals sets the current active signal count.
func UpdateActiveSignals(count int) {
	globalManager.activeSignals.Set(float64(count))
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent records an error for a specific component.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// GetRegistry returns the custom Prometheus registry for the /metrics handler.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
