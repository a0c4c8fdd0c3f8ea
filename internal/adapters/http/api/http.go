// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/okian/sampleapi/internal/domain/sample"
	"github.com/okian/sampleapi/pkg/logger"
)

// Route paths served by the API.
const (
	PathHello  = "/hello"
	PathSample = "/sample"
)

// corsDefaultHeaders mirrors the header list API Gateway answers preflights with.
var corsDefaultHeaders = []string{
	"Content-Type",
	"X-Amz-Date",
	"Authorization",
	"X-Api-Key",
	"X-Amz-Security-Token",
}

// Dependencies required by HTTP handlers.
type Dependencies interface {
	sample.Sampler
}

// Server wires HTTP routes for the business API.
type Server struct {
	helloHandler  *HelloHandler
	sampleHandler *SampleHandler

	rootPath     string
	apiKeyHeader string
	corsEnabled  bool
	corsOrigins  string
	logger       logger.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithRootPath sets the mount prefix stripped from incoming paths.
func WithRootPath(root string) Option {
	return func(s *Server) {
		s.rootPath = strings.TrimSuffix(root, "/")
	}
}

// WithAPIKeyHeader sets the header inspected by the API-key dependency.
func WithAPIKeyHeader(header string) Option {
	return func(s *Server) {
		if strings.TrimSpace(header) != "" {
			s.apiKeyHeader = header
		}
	}
}

// WithCORS enables CORS headers and preflight answers for the given origins.
func WithCORS(enabled bool, origins string) Option {
	return func(s *Server) {
		s.corsEnabled = enabled
		if origins != "" {
			s.corsOrigins = origins
		}
	}
}

// WithLogger enables the access log.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	s := &Server{
		helloHandler:  NewHelloHandler(),
		sampleHandler: NewSampleHandler(deps),
		apiKeyHeader:  DefaultAPIKeyHeader,
		corsOrigins:   "*",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register attaches the API routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.HandleFunc(PathHello, MetricsMiddleware(s.route(s.helloHandler.HandleHello), "hello"))
	mux.HandleFunc(PathSample, MetricsMiddleware(s.route(s.sampleHandler.HandleSample), "sample"))
}

// Wrap applies the request-scoped middleware chain around next. The chain
// runs outermost first: request id, root path, API key, access log.
func (s *Server) Wrap(next http.Handler) http.Handler {
	h := AccessLogMiddleware(s.logger, next)
	h = APIKeyMiddleware(s.apiKeyHeader, h)
	h = StripRootPath(s.rootPath, h)
	return RequestIDMiddleware(h)
}

// route restricts a GET handler to GET and HEAD, answers CORS preflights
// when enabled and rejects every other method with 405.
func (s *Server) route(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.corsEnabled {
			w.Header().Set("Access-Control-Allow-Origin", s.corsOrigins)
			if s.corsOrigins != "*" {
				w.Header().Add("Vary", "Origin")
			}
		}

		switch r.Method {
		case http.MethodGet, http.MethodHead:
			next(w, r)
		case http.MethodOptions:
			if !s.corsEnabled {
				s.methodNotAllowed(w)
				return
			}
			w.Header().Set("Access-Control-Allow-Methods", "GET, HEAD, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", strings.Join(s.corsHeaders(), ", "))
			w.WriteHeader(http.StatusOK)
		default:
			s.methodNotAllowed(w)
		}
	}
}

func (s *Server) methodNotAllowed(w http.ResponseWriter) {
	allow := "GET, HEAD"
	if s.corsEnabled {
		allow += ", OPTIONS"
	}
	w.Header().Set("Allow", allow)
	writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", ErrMethodNotAllowed)
}

func (s *Server) corsHeaders() []string {
	headers := append([]string(nil), corsDefaultHeaders...)
	for _, h := range headers {
		if strings.EqualFold(h, s.apiKeyHeader) {
			return headers
		}
	}
	return append(headers, s.apiKeyHeader)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if r != nil && r.Method == http.MethodHead {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

func writeText(w http.ResponseWriter, r *http.Request, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	if r.Method == http.MethodHead {
		return
	}
	_, _ = w.Write([]byte(body))
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, nil, status, errorResponse{Code: code, Message: msg})
}
