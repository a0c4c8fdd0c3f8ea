// Package service wires configuration, the sampler and the HTTP adapters
// into the handler served both by the standalone server and by Lambda.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/okian/sampleapi/internal/adapters/http/api"
	"github.com/okian/sampleapi/internal/adapters/http/swagger"
	"github.com/okian/sampleapi/internal/config"
	"github.com/okian/sampleapi/internal/domain/sample"
	"github.com/okian/sampleapi/internal/telemetry"
	"github.com/okian/sampleapi/pkg/logger"
	"github.com/okian/sampleapi/pkg/metrics"
)

const telemetryShutdownTimeout = 5 * time.Second

// Error constants.
var (
	ErrStart   = errors.New("service start failed")
	ErrHandler = errors.New("handler build failed")
)

// Service implements the API dependencies and builds the HTTP handler.
type Service struct {
	mu sync.RWMutex

	cfg     *config.Config
	sampler sample.Sampler
	version string

	traceWriter io.Writer

	started         bool
	shutdownTracing telemetry.ShutdownFunc
	logger          logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithConfig sets the configuration. Nil keeps the defaults.
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		if cfg != nil {
			s.cfg = cfg
		}
	}
}

// WithSampler replaces the default sampler.
func WithSampler(sampler sample.Sampler) Option {
	return func(s *Service) {
		if sampler != nil {
			s.sampler = sampler
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithVersion sets the version published in the OpenAPI document.
func WithVersion(version string) Option {
	return func(s *Service) {
		s.version = version
	}
}

// WithTraceWriter redirects the stdout span exporter.
func WithTraceWriter(w io.Writer) Option {
	return func(s *Service) {
		s.traceWriter = w
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		cfg: config.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.sampler == nil {
		s.sampler = sample.NewStatic(s.cfg.SampleMessage)
	}
	return s
}

// Config returns the configuration the service runs with.
func (s *Service) Config() *config.Config { return s.cfg }

// Start initializes tracing and the metrics registry. Calling Start twice
// is a no-op.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}

	shutdown, err := telemetry.Init(ctx, telemetry.Config{
		Exporter:    s.cfg.TracingExporter,
		ServiceName: s.cfg.ServiceName,
		Writer:      s.traceWriter,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStart, err)
	}
	s.shutdownTracing = shutdown

	metrics.Configure(
		metrics.WithNamespace(metrics.Namespace(s.cfg.ServiceName)),
		metrics.WithConstLabels(map[string]string{
			"service": s.cfg.ServiceName,
			"stage":   strings.Trim(s.cfg.RootPath, "/"),
		}),
		metrics.WithHistogramBuckets(s.cfg.MetricsHistogramBuckets),
	)

	s.started = true
	s.logger.Info(ctx, "sample api service started",
		logger.String("root_path", s.cfg.RootPath),
		logger.String("tracing_exporter", s.cfg.TracingExporter),
		logger.Bool("docs_enabled", s.cfg.DocsEnabled),
	)
	return nil
}

// Stop flushes tracing and marks the service stopped.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), telemetryShutdownTimeout)
	defer cancel()
	if s.shutdownTracing != nil {
		if err := s.shutdownTracing(ctx); err != nil {
			s.logger.Warn(ctx, "tracer shutdown failed", logger.Error(err))
		}
	}

	s.started = false
	s.logger.Info(ctx, "sample api service stopped")
}

// Started reports whether Start has completed.
func (s *Service) Started() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started
}

// Sample delegates to the configured sampler.
func (s *Service) Sample(ctx context.Context) (any, error) {
	return s.sampler.Sample(ctx)
}

// Handler builds the full HTTP handler: API routes, optional docs and
// metrics routes, the request middleware chain and tracing.
func (s *Service) Handler(ctx context.Context) (http.Handler, error) {
	cfg := s.cfg

	opts := []api.Option{
		api.WithRootPath(cfg.RootPath),
		api.WithAPIKeyHeader(cfg.APIKeyHeader),
		api.WithCORS(cfg.CORSEnabled, cfg.CORSAllowOrigins),
	}
	if s.logger != nil {
		opts = append(opts, api.WithLogger(s.logger.Named("http")))
	}
	server := api.NewServer(s, opts...)

	mux := http.NewServeMux()
	server.Register(ctx, mux)

	if cfg.DocsEnabled {
		if err := swagger.Register(ctx, mux, swagger.Document(s.docInfo())); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrHandler, err)
		}
	}
	if cfg.MetricsPath != "" {
		mux.Handle(cfg.MetricsPath, metrics.Handler())
	}

	return telemetry.WrapHandler(cfg.ServiceName, server.Wrap(mux)), nil
}

// Document returns the OpenAPI description of the service.
func (s *Service) Document() *openapi3.T {
	return swagger.Document(s.docInfo())
}

func (s *Service) docInfo() swagger.Info {
	servers := make([]swagger.Server, 0, len(s.cfg.Servers))
	for _, srv := range s.cfg.Servers {
		servers = append(servers, swagger.Server{URL: srv.URL, Description: srv.Description})
	}
	return swagger.Info{
		Title:        s.cfg.ServiceName,
		Version:      s.version,
		APIKeyHeader: s.cfg.APIKeyHeader,
		Servers:      servers,
	}
}
