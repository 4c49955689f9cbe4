// Package metrics provides Prometheus metrics for the aimtune service.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// DefaultConfidenceBuckets cover the reachable confidence range.
var DefaultConfidenceBuckets = []float64{0.5, 0.6, 0.65, 0.7, 0.75, 0.8, 0.85, 0.9, 0.95, 1}

// Manager manages all Prometheus metrics for the aimtune service.
type Manager struct {
	namespace         string
	subsystem         string
	latencyBuckets    []float64
	confidenceBuckets []float64
	registry          prometheus.Registerer

	// Engine Metrics
	calculations       *prometheus.CounterVec
	calculationErrors  *prometheus.CounterVec
	calculationLatency prometheus.Histogram
	confidence         prometheus.Histogram
	sentimentSignals   *prometheus.CounterVec

	// Feedback Metrics
	feedback          *prometheus.CounterVec
	feedbackDuplicate prometheus.Counter

	// Storage Metrics
	storeWriteLatency prometheus.Histogram
	storeErrors       *prometheus.CounterVec

	// Writer Queue Metrics
	writerQueueSize        prometheus.Gauge
	writerQueueCapacity    prometheus.Gauge
	writerQueueUtilization prometheus.Gauge
	writerEnqueued         prometheus.Counter
	writerEnqueueErrors    *prometheus.CounterVec
	writerJobs             *prometheus.CounterVec

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// MCP Metrics
	mcpToolCalls *prometheus.CounterVec

	// Error Metrics
	errorRateByComponent *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec

	// System Performance Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithRegisterer(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:         "aimtune",
		subsystem:         "engine",
		latencyBuckets:    prometheus.DefBuckets,
		confidenceBuckets: DefaultConfidenceBuckets,
		registry:          prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every metric definition
	auto := promauto.With(m.registry)

	m.calculations = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "calculations_total",
		Help:      "Total number of sensitivity calculations by game",
	}, []string{"game"})

	m.calculationErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "calculation_errors_total",
		Help:      "Rejected calculations by error kind",
	}, []string{"kind"})

	m.calculationLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "calculation_latency_milliseconds",
		Help:      "End-to-end calculation latency in milliseconds",
		Buckets:   m.latencyBuckets,
	})

	m.confidence = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "confidence",
		Help:      "Distribution of reported result confidence",
		Buckets:   m.confidenceBuckets,
	})

	m.sentimentSignals = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sentiment_signals_total",
		Help:      "Sentiment signals seen, by whether they passed the sample threshold",
	}, []string{"applied"})

	m.feedback = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "feedback_total",
		Help:      "Accepted feedback records by game",
	}, []string{"game"})

	m.feedbackDuplicate = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "feedback_duplicate_total",
		Help:      "Feedback submissions ignored as duplicates",
	})

	m.storeWriteLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_write_latency_milliseconds",
		Help:      "Latency of store writes applied by the writer",
		Buckets:   m.latencyBuckets,
	})

	m.storeErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_errors_total",
		Help:      "Store failures by operation",
	}, []string{"op"})

	m.writerQueueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "writer_queue_size",
		Help:      "Jobs waiting for the store writer",
	})

	m.writerQueueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "writer_queue_capacity",
		Help:      "Maximum jobs the writer queue holds",
	})

	m.writerQueueUtilization = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "writer_queue_utilization_ratio",
		Help:      "Writer queue size divided by capacity",
	})

	m.writerEnqueued = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "writer_enqueued_total",
		Help:      "Jobs accepted by the writer queue",
	})

	m.writerEnqueueErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "writer_enqueue_errors_total",
		Help:      "Jobs rejected by the writer queue by reason",
	}, []string{"reason"})

	m.writerJobs = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "writer_jobs_total",
		Help:      "Jobs applied by the writer by operation and outcome",
	}, []string{"op", "outcome"})

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
			Buckets:   m.latencyBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.mcpToolCalls = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "mcp_tool_calls_total",
		Help:      "MCP tool invocations by tool and outcome",
	}, []string{"tool", "outcome"})

	m.errorRateByComponent = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "errors_by_component_total",
			Help:      "Total errors by component and error type",
		},
		[]string{"component", "error_type"},
	)

	m.errorRateByEndpoint = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "errors_by_endpoint_total",
			Help:      "Total errors by HTTP endpoint",
		},
		[]string{"endpoint", "method", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_usage_bytes",
		Help:      "System memory usage in bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutine_count",
		Help:      "Number of goroutines",
	})
}

// Engine Metrics Functions.

// RecordCalculation increments the calculations counter for a game.
func RecordCalculation(game string) {
	globalManager.calculations.WithLabelValues(game).Inc()
}

// RecordCalculationError counts a rejected calculation.
func RecordCalculationError(kind string) {
	globalManager.calculationErrors.WithLabelValues(kind).Inc()
}

// RecordCalculationLatency records calculation latency in milliseconds.
func RecordCalculationLatency(latencyMs float64) {
	globalManager.calculationLatency.Observe(latencyMs)
}

// ObserveConfidence records the confidence of a produced result.
func ObserveConfidence(confidence float64) {
	globalManager.confidence.Observe(confidence)
}

// RecordSentimentSignal counts a sentiment signal by whether it was applied.
func RecordSentimentSignal(applied bool) {
	globalManager.sentimentSignals.WithLabelValues(strconv.FormatBool(applied)).Inc()
}

// Feedback Metrics Functions.

// RecordFeedback increments the accepted feedback counter for a game.
func RecordFeedback(game string) {
	globalManager.feedback.WithLabelValues(game).Inc()
}

// RecordFeedbackDuplicate increments the duplicate feedback counter.
func RecordFeedbackDuplicate() {
	globalManager.feedbackDuplicate.Inc()
}

// Storage Metrics Functions.

// RecordStoreWriteLatency records the latency of one store write.
func RecordStoreWriteLatency(latencyMs float64) {
	globalManager.storeWriteLatency.Observe(latencyMs)
}

// RecordStoreError counts a store failure for an operation.
func RecordStoreError(op string) {
	globalManager.storeErrors.WithLabelValues(op).Inc()
}

// Writer Queue Metrics Functions.

// UpdateWriterQueueSize sets the current writer queue size.
func UpdateWriterQueueSize(size int) {
	globalManager.writerQueueSize.Set(float64(size))
}

// UpdateWriterQueueCapacity sets the writer queue capacity.
func UpdateWriterQueueCapacity(capacity int) {
	globalManager.writerQueueCapacity.Set(float64(capacity))
}

// UpdateWriterQueueUtilization sets the writer queue utilization ratio.
func UpdateWriterQueueUtilization(utilization float64) {
	globalManager.writerQueueUtilization.Set(utilization)
}

// RecordWriterEnqueue increments the accepted jobs counter.
func RecordWriterEnqueue() {
	globalManager.writerEnqueued.Inc()
}

// RecordWriterEnqueueError counts a rejected job.
func RecordWriterEnqueueError(reason string) {
	globalManager.writerEnqueueErrors.WithLabelValues(reason).Inc()
}

// RecordWriterJob counts an applied job.
func RecordWriterJob(op, outcome string) {
	globalManager.writerJobs.WithLabelValues(op, outcome).Inc()
}

// HTTP Metrics Functions.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordMCPToolCall counts an MCP tool invocation.
func RecordMCPToolCall(tool, outcome string) {
	globalManager.mcpToolCalls.WithLabelValues(tool, outcome).Inc()
}

// Error Metrics Functions.

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// System Performance Metrics Functions.

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
