// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Loading functions accept context.Context as the first parameter.
// - External errors are wrapped with this package's sentinel errors.
package config

// Event formats accepted by the Lambda adapter.
const (
	EventFormatV1 = "v1" // API Gateway REST API proxy integration
	EventFormatV2 = "v2" // API Gateway HTTP API payload 2.0
)

// Tracing exporters understood by the telemetry package.
const (
	TracingNone   = "none"
	TracingStdout = "stdout"
)

// Server describes one base URL the API is published under. Used for API
// documentation only; routing never depends on it.
type Server struct {
	URL         string `koanf:"url"`
	Description string `koanf:"description"`
}

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the slog handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address for the serve command, e.g. ":8080".
	Addr string `koanf:"addr"`

	// RootPath is the prefix the application is mounted under behind the gateway.
	RootPath string `koanf:"root_path"`

	// Servers lists the published base URLs (staging, production).
	Servers []Server `koanf:"servers"`

	// APIKeyHeader names the header carrying the API key.
	APIKeyHeader string `koanf:"api_key_header"`

	// SampleMessage is returned by the default sampler.
	SampleMessage string `koanf:"sample_message"`

	// CORSEnabled turns on CORS headers and preflight answers on declared routes.
	CORSEnabled bool `koanf:"cors_enabled"`

	// CORSAllowOrigins is the Access-Control-Allow-Origin value.
	CORSAllowOrigins string `koanf:"cors_allow_origins"`

	// DocsEnabled registers GET /docs and GET /openapi.json.
	DocsEnabled bool `koanf:"docs_enabled"`

	// MetricsPath exposes Prometheus metrics on this path when non-empty.
	MetricsPath string `koanf:"metrics_path"`

	// MetricsHistogramBuckets overrides the request duration buckets, in milliseconds.
	MetricsHistogramBuckets []float64 `koanf:"metrics_histogram_buckets"`

	// TracingExporter selects the span exporter: none or stdout.
	TracingExporter string `koanf:"tracing_exporter"`

	// ServiceName is reported in traces and the OpenAPI title.
	ServiceName string `koanf:"service_name"`

	// LambdaEventFormat selects the API Gateway payload format: v1 or v2.
	LambdaEventFormat string `koanf:"lambda_event_format"`
}

// DefaultServers returns the staging and production base URLs.
func DefaultServers() []Server {
	return []Server{
		{URL: "/dev", Description: "Staging environment"},
		{URL: "/prod", Description: "Production environment"},
	}
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		LogFormat:         "text",
		Addr:              ":8080",
		RootPath:          "/dev",
		Servers:           DefaultServers(),
		APIKeyHeader:      "X-API-Key",
		SampleMessage:     "This is a sample response",
		CORSEnabled:       true,
		CORSAllowOrigins:  "*",
		DocsEnabled:       false,
		MetricsPath:       "",
		TracingExporter:   TracingNone,
		ServiceName:       "sampleapi",
		LambdaEventFormat: EventFormatV1,
	}
}
