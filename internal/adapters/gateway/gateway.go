// Package gateway translates API Gateway proxy events into HTTP requests
// against the same handler the standalone server runs.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/aws/aws-lambda-go/events"
	"github.com/awslabs/aws-lambda-go-api-proxy/core"
	"github.com/awslabs/aws-lambda-go-api-proxy/httpadapter"

	"github.com/okian/sampleapi/internal/adapters/http/api"
	"github.com/okian/sampleapi/pkg/logger"
	"github.com/okian/sampleapi/pkg/metrics"
)

// Supported API Gateway payload formats.
const (
	FormatV1 = "v1"
	FormatV2 = "v2"
)

// defaultStage is the HTTP API stage served without a path prefix.
const defaultStage = "$default"

// Error constants.
var (
	ErrUnsupportedEventFormat = errors.New("unsupported event format")
	ErrInvocation             = errors.New("lambda invocation failed")
)

// Handler serves API Gateway events with an http.Handler.
type Handler struct {
	format string
	log    logger.Logger

	v1 *httpadapter.HandlerAdapter
	v2 *httpadapter.HandlerAdapterV2

	warm atomic.Bool
}

// Option configures a Handler.
type Option func(*Handler)

// WithEventFormat selects the payload format the function receives.
func WithEventFormat(format string) Option {
	return func(h *Handler) {
		h.format = format
	}
}

// WithLogger sets the logger used for invocation logs.
func WithLogger(l logger.Logger) Option {
	return func(h *Handler) {
		h.log = l
	}
}

// New wraps next for Lambda. The default payload format is FormatV1.
func New(next http.Handler, opts ...Option) (*Handler, error) {
	if next == nil {
		return nil, fmt.Errorf("%w: handler is nil", ErrInvocation)
	}
	h := &Handler{format: FormatV1}
	for _, opt := range opts {
		opt(h)
	}
	if h.log == nil {
		h.log = logger.Named("gateway")
	}

	switch h.format {
	case FormatV1:
		h.v1 = httpadapter.New(requestIDFromEvent(next))
	case FormatV2:
		h.v2 = httpadapter.NewV2(requestIDFromEvent(next))
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedEventFormat, h.format)
	}
	return h, nil
}

// Format reports the payload format the handler was built for.
func (h *Handler) Format() string { return h.format }

// Entrypoint returns the function to pass to lambda.Start.
func (h *Handler) Entrypoint() any {
	if h.format == FormatV2 {
		return h.HandleV2
	}
	return h.HandleV1
}

// HandleV1 serves a REST API (payload v1) proxy event.
func (h *Handler) HandleV1(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	if h.v1 == nil {
		return events.APIGatewayProxyResponse{StatusCode: http.StatusInternalServerError},
			fmt.Errorf("%w: %s handler received %s event", ErrUnsupportedEventFormat, h.format, FormatV1)
	}
	stage := req.RequestContext.Stage
	h.observe(ctx, FormatV1, stage, req.RequestContext.RequestID, req.HTTPMethod, req.Path)

	resp, err := h.v1.ProxyWithContext(ctx, req)
	if err != nil {
		h.fail(ctx, FormatV1, stage, err)
		return resp, fmt.Errorf("%w: %w", ErrInvocation, err)
	}
	return resp, nil
}

// HandleV2 serves an HTTP API (payload v2) proxy event.
func (h *Handler) HandleV2(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	if h.v2 == nil {
		return events.APIGatewayV2HTTPResponse{StatusCode: http.StatusInternalServerError},
			fmt.Errorf("%w: %s handler received %s event", ErrUnsupportedEventFormat, h.format, FormatV2)
	}
	stage := req.RequestContext.Stage
	h.observe(ctx, FormatV2, stage, req.RequestContext.RequestID, req.RequestContext.HTTP.Method, req.RawPath)

	resp, err := h.v2.ProxyWithContext(ctx, stripStage(req))
	if err != nil {
		h.fail(ctx, FormatV2, stage, err)
		return resp, fmt.Errorf("%w: %w", ErrInvocation, err)
	}
	return resp, nil
}

// stripStage removes a named stage from the front of a v2 path. HTTP APIs
// keep the stage in rawPath for every stage except $default.
func stripStage(req events.APIGatewayV2HTTPRequest) events.APIGatewayV2HTTPRequest {
	stage := req.RequestContext.Stage
	if stage == "" || stage == defaultStage {
		return req
	}
	prefix := "/" + stage
	trim := func(p string) string {
		switch {
		case p == prefix:
			return "/"
		case strings.HasPrefix(p, prefix+"/"):
			return p[len(prefix):]
		default:
			return p
		}
	}
	req.RawPath = trim(req.RawPath)
	req.RequestContext.HTTP.Path = trim(req.RequestContext.HTTP.Path)
	return req
}

func (h *Handler) observe(ctx context.Context, format, stage, requestID, method, path string) {
	cold := h.warm.CompareAndSwap(false, true)
	if cold {
		metrics.RecordLambdaColdStart()
	}
	metrics.RecordLambdaInvocation(format, stage)
	h.log.Debug(ctx, "lambda invocation",
		logger.String("event_format", format),
		logger.String("stage", stage),
		logger.String("request_id", requestID),
		logger.String("method", method),
		logger.String("path", path),
		logger.Bool("cold_start", cold),
	)
}

func (h *Handler) fail(ctx context.Context, format, stage string, err error) {
	metrics.RecordLambdaInvocationError(format)
	h.log.Error(ctx, "lambda invocation failed",
		logger.String("event_format", format),
		logger.String("stage", stage),
		logger.Error(err),
	)
}

// requestIDFromEvent copies the gateway request id into the X-Request-ID
// header unless the caller already sent one.
func requestIDFromEvent(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(api.RequestIDHeader) == "" {
			if id := gatewayRequestID(r.Context()); id != "" {
				r.Header.Set(api.RequestIDHeader, id)
			}
		}
		next.ServeHTTP(w, r)
	})
}

func gatewayRequestID(ctx context.Context) string {
	if rc, ok := core.GetAPIGatewayContextFromContext(ctx); ok && rc.RequestID != "" {
		return rc.RequestID
	}
	if rc, ok := core.GetAPIGatewayV2ContextFromContext(ctx); ok && rc.RequestID != "" {
		return rc.RequestID
	}
	return ""
}
