package swagger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// Route paths served by the docs handler.
const (
	PathDocs    = "/docs"
	PathOpenAPI = "/openapi.json"
)

// Error constants.
var (
	ErrServe    = errors.New("swagger serve failed")
	ErrDocument = errors.New("openapi document invalid")
)

// Register attaches the docs page and the OpenAPI document routes to mux.
// Routes:
//
//	GET /docs          -> Swagger UI HTML
//	GET /openapi.json  -> OpenAPI document
//
// The document is validated and encoded once; an invalid document is
// reported as ErrDocument.
func Register(ctx context.Context, mux *http.ServeMux, doc *openapi3.T) error {
	if mux == nil {
		panic("mux is nil")
	}
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrDocument)
	}
	if err := doc.Validate(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrDocument, err)
	}
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrServe, err)
	}
	page := fmt.Sprintf(indexHTML, doc.Info.Title, strings.TrimPrefix(PathOpenAPI, "/"))

	mux.HandleFunc(PathDocs, func(w http.ResponseWriter, r *http.Request) {
		if !readOnly(w, r) {
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if r.Method == http.MethodHead {
			return
		}
		_, _ = w.Write([]byte(page))
	})

	mux.HandleFunc(PathOpenAPI, func(w http.ResponseWriter, r *http.Request) {
		if !readOnly(w, r) {
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if r.Method == http.MethodHead {
			return
		}
		_, _ = w.Write(body)
	})
	return nil
}

func readOnly(w http.ResponseWriter, r *http.Request) bool {
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		return true
	}
	w.Header().Set("Allow", "GET, HEAD")
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	return false
}

// Minimal HTML that loads Swagger UI. The document URL is relative so the
// page keeps working behind a root path.
const indexHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8">
    <title>%s - Swagger UI</title>
    <link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/swagger-ui-dist@5/swagger-ui.css">
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://cdn.jsdelivr.net/npm/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
    <script>SwaggerUIBundle({ url: '%s', dom_id: '#swagger-ui' });</script>
  </body>
</html>`
