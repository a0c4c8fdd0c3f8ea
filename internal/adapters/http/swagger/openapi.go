package swagger

import (
	"net/http"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

const (
	openAPIVersion    = "3.0.3"
	apiKeySchemeName  = "api_key"
	defaultAPIVersion = "0.1.0"
)

// Server is an entry of the document's servers list.
type Server struct {
	URL         string
	Description string
}

// Info describes the API the document is generated for.
type Info struct {
	Title        string
	Version      string
	APIKeyHeader string
	Servers      []Server
}

// Document builds the OpenAPI description of the two GET routes.
func Document(info Info) *openapi3.T {
	version := info.Version
	if version == "" {
		version = defaultAPIVersion
	}
	header := strings.TrimSpace(info.APIKeyHeader)
	if header == "" {
		header = "X-API-Key"
	}

	doc := &openapi3.T{
		OpenAPI: openAPIVersion,
		Info: &openapi3.Info{
			Title:   info.Title,
			Version: version,
		},
		Components: &openapi3.Components{
			SecuritySchemes: openapi3.SecuritySchemes{
				apiKeySchemeName: &openapi3.SecuritySchemeRef{
					Value: &openapi3.SecurityScheme{
						Type:        "apiKey",
						In:          "header",
						Name:        header,
						Description: "Optional API key. Requests without it are served as well.",
					},
				},
			},
		},
		Paths: openapi3.NewPaths(
			openapi3.WithPath("/hello", &openapi3.PathItem{
				Get: getOperation("hello_hello_get", "Hello", "Static greeting", openapi3.NewStringSchema()),
			}),
			openapi3.WithPath("/sample", &openapi3.PathItem{
				Get: getOperation("sample_sample_get", "Sample", "Result of the sample function", openapi3.NewSchema()),
			}),
		),
	}

	for _, s := range info.Servers {
		doc.Servers = append(doc.Servers, &openapi3.Server{URL: s.URL, Description: s.Description})
	}
	return doc
}

func getOperation(id, summary, description string, schema *openapi3.Schema) *openapi3.Operation {
	op := openapi3.NewOperation()
	op.OperationID = id
	op.Summary = summary
	op.Security = &openapi3.SecurityRequirements{
		{apiKeySchemeName: []string{}},
		{},
	}
	op.Responses = openapi3.NewResponses(
		openapi3.WithStatus(http.StatusOK, &openapi3.ResponseRef{
			Value: openapi3.NewResponse().
				WithDescription(description).
				WithContent(openapi3.NewContentWithSchema(schema, []string{"text/plain", "application/json"})),
		}),
	)
	return op
}
