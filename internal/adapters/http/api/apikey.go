package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/okian/sampleapi/pkg/metrics"
)

// DefaultAPIKeyHeader is the header the gateway reads API keys from.
const DefaultAPIKeyHeader = "X-API-Key"

// APIKey is what the API-key dependency observed on a request. The value is
// never validated; enforcement happens at the gateway, if anywhere.
type APIKey struct {
	Present bool
	Value   string
}

type apiKeyCtxKey struct{}

// WithAPIKey stores k in ctx.
func WithAPIKey(ctx context.Context, k APIKey) context.Context {
	return context.WithValue(ctx, apiKeyCtxKey{}, k)
}

// APIKeyFromContext returns the API key recorded by APIKeyMiddleware.
func APIKeyFromContext(ctx context.Context) (APIKey, bool) {
	k, ok := ctx.Value(apiKeyCtxKey{}).(APIKey)
	return k, ok
}

// APIKeyMiddleware records the API key header on the request context.
// A missing header does not fail the request.
func APIKeyMiddleware(header string, next http.Handler) http.Handler {
	if strings.TrimSpace(header) == "" {
		header = DefaultAPIKeyHeader
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		v := strings.TrimSpace(r.Header.Get(header))
		k := APIKey{Present: v != "", Value: v}
		metrics.RecordAPIKeyPresence(k.Present)
		next.ServeHTTP(w, r.WithContext(WithAPIKey(r.Context(), k)))
	})
}
