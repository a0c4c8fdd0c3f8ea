// Package metrics provides Prometheus metrics for the sample API.
package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	apiKeyRequests      *prometheus.CounterVec

	// Errors
	errorRateByType     *prometheus.CounterVec
	errorRateByEndpoint *prometheus.CounterVec
	errorLatency        *prometheus.HistogramVec
	sampleErrors        prometheus.Counter

	// Lambda
	lambdaInvocations      *prometheus.CounterVec
	lambdaInvocationErrors *prometheus.CounterVec
	lambdaColdStarts       prometheus.Counter
}

var (
	mu sync.RWMutex //nolint:gochecknoglobals // guards the active manager and registry

	// Global metrics manager instance.
	globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

	// Custom registry to avoid default Go metrics.
	customRegistry *prometheus.Registry //nolint:gochecknoglobals // intentional global for metrics registry
)

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	Configure()
}

// Configure replaces the global manager with one built from opts on a fresh
// registry. Series recorded before the call are dropped.
func Configure(opts ...Option) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := NewManager(append(opts, WithPrometheusRegistry(registry))...)

	mu.Lock()
	globalManager = m
	customRegistry = registry
	mu.Unlock()
}

func current() *Manager {
	mu.RLock()
	defer mu.RUnlock()
	return globalManager
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "sampleapi",
		subsystem:        "http",
		histogramBuckets: []float64{0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000},
		constLabels:      prometheus.Labels{},
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "requests_total",
			Help:        "Total number of HTTP requests by endpoint, method and status",
			ConstLabels: m.constLabels,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "request_duration_milliseconds",
			Help:        "HTTP request duration in milliseconds",
			Buckets:     m.histogramBuckets,
			ConstLabels: m.constLabels,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.apiKeyRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "api_key_requests_total",
			Help:        "Requests by presence of the API key header",
			ConstLabels: m.constLabels,
		},
		[]string{"present"},
	)

	m.errorRateByType = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "errors_by_type_total",
			Help:        "Total number of errors by type",
			ConstLabels: m.constLabels,
		},
		[]string{"error_type", "severity"},
	)

	m.errorRateByEndpoint = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "errors_by_endpoint_total",
			Help:        "Total number of errors by endpoint",
			ConstLabels: m.constLabels,
		},
		[]string{"endpoint", "method", "error_type"},
	)

	m.errorLatency = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "error_latency_milliseconds",
			Help:        "Latency of requests that resulted in errors",
			Buckets:     m.histogramBuckets,
			ConstLabels: m.constLabels,
		},
		[]string{"component", "error_type"},
	)

	m.sampleErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "sample_errors_total",
		Help:        "Total number of sampler failures",
		ConstLabels: m.constLabels,
	})

	m.lambdaInvocations = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   "lambda",
			Name:        "invocations_total",
			Help:        "Lambda invocations by event format and API Gateway stage",
			ConstLabels: m.constLabels,
		},
		[]string{"event_format", "stage"},
	)

	m.lambdaInvocationErrors = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   "lambda",
			Name:        "invocation_errors_total",
			Help:        "Lambda invocations the adapter failed to translate",
			ConstLabels: m.constLabels,
		},
		[]string{"event_format"},
	)

	m.lambdaColdStarts = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   "lambda",
		Name:        "cold_starts_total",
		Help:        "Invocations served by a freshly started execution environment",
		ConstLabels: m.constLabels,
	})
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	current().httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	current().httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordAPIKeyPresence counts a request by whether it carried the API key header.
func RecordAPIKeyPresence(present bool) {
	current().apiKeyRequests.WithLabelValues(strconv.FormatBool(present)).Inc()
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	current().errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	current().errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorLatency records the latency of an operation that resulted in an error.
func RecordErrorLatency(component, errorType string, latencyMs float64) {
	current().errorLatency.WithLabelValues(component, errorType).Observe(latencyMs)
}

// RecordSampleError increments the sampler failure counter.
func RecordSampleError() {
	current().sampleErrors.Inc()
}

// RecordLambdaInvocation counts one adapted Lambda event.
func RecordLambdaInvocation(eventFormat, stage string) {
	current().lambdaInvocations.WithLabelValues(eventFormat, stage).Inc()
}

// RecordLambdaInvocationError counts an event the adapter could not translate.
func RecordLambdaInvocationError(eventFormat string) {
	current().lambdaInvocationErrors.WithLabelValues(eventFormat).Inc()
}

// RecordLambdaColdStart counts a cold start.
func RecordLambdaColdStart() {
	current().lambdaColdStarts.Inc()
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	mu.RLock()
	defer mu.RUnlock()
	return customRegistry
}

// Handler serves the active registry in the Prometheus exposition format.
func Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{}).ServeHTTP(w, r)
	})
}

// Namespace turns a service name into a valid metric namespace.
func Namespace(name string) string {
	var b strings.Builder
	for i, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r == '_':
			b.WriteRune(r)
		case r >= '0' && r <= '9':
			if i == 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
