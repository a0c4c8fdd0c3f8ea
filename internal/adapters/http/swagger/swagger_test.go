package swagger

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/smartystreets/goconvey/convey"
)

func testInfo() Info {
	return Info{
		Title:        "sampleapi",
		Version:      "1.0.0",
		APIKeyHeader: "X-API-Key",
		Servers: []Server{
			{URL: "/dev", Description: "Staging environment"},
			{URL: "/prod", Description: "Production environment"},
		},
	}
}

func TestDocument(t *testing.T) {
	convey.Convey("Given API info", t, func() {
		doc := Document(testInfo())

		convey.Convey("Then the document should validate", func() {
			convey.So(doc.Validate(context.Background()), convey.ShouldBeNil)
		})

		convey.Convey("And it should declare exactly the two GET routes", func() {
			convey.So(doc.Paths.Len(), convey.ShouldEqual, 2)
			convey.So(doc.Paths.Value("/hello"), convey.ShouldNotBeNil)
			convey.So(doc.Paths.Value("/hello").Get, convey.ShouldNotBeNil)
			convey.So(doc.Paths.Value("/hello").Post, convey.ShouldBeNil)
			convey.So(doc.Paths.Value("/sample").Get, convey.ShouldNotBeNil)
		})

		convey.Convey("And it should list the servers in order", func() {
			convey.So(len(doc.Servers), convey.ShouldEqual, 2)
			convey.So(doc.Servers[0].URL, convey.ShouldEqual, "/dev")
			convey.So(doc.Servers[1].URL, convey.ShouldEqual, "/prod")
		})

		convey.Convey("And it should describe the API key header", func() {
			scheme := doc.Components.SecuritySchemes[apiKeySchemeName].Value
			convey.So(scheme.In, convey.ShouldEqual, "header")
			convey.So(scheme.Name, convey.ShouldEqual, "X-API-Key")
		})
	})

	convey.Convey("Given empty info", t, func() {
		doc := Document(Info{Title: "x"})

		convey.Convey("Then defaults should be filled in", func() {
			convey.So(doc.Info.Version, convey.ShouldEqual, defaultAPIVersion)
			convey.So(doc.Components.SecuritySchemes[apiKeySchemeName].Value.Name, convey.ShouldEqual, "X-API-Key")
			convey.So(doc.Servers, convey.ShouldBeEmpty)
		})
	})
}

func TestSwaggerHandler(t *testing.T) {
	convey.Convey("Given a swagger handler", t, func() {
		ctx := context.Background()
		mux := http.NewServeMux()

		convey.Convey("When registering the swagger handler", func() {
			err := Register(ctx, mux, Document(testInfo()))
			convey.So(err, convey.ShouldBeNil)

			convey.Convey("Then it should handle /openapi.json route", func() {
				req := httptest.NewRequest("GET", "/openapi.json", http.NoBody)
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, req)

				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
				convey.So(w.Header().Get("Content-Type"), convey.ShouldEqual, "application/json")

				var body map[string]any
				convey.So(json.Unmarshal(w.Body.Bytes(), &body), convey.ShouldBeNil)
				convey.So(body["openapi"], convey.ShouldEqual, openAPIVersion)
				paths, ok := body["paths"].(map[string]any)
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(paths, convey.ShouldContainKey, "/hello")
				convey.So(paths, convey.ShouldContainKey, "/sample")
			})

			convey.Convey("And it should handle /docs route", func() {
				req := httptest.NewRequest("GET", "/docs", http.NoBody)
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, req)

				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
				convey.So(w.Header().Get("Content-Type"), convey.ShouldEqual, "text/html; charset=utf-8")
				convey.So(w.Body.String(), convey.ShouldContainSubstring, "sampleapi - Swagger UI")
				convey.So(w.Body.String(), convey.ShouldContainSubstring, "url: 'openapi.json'")
			})

			convey.Convey("And it should reject writes", func() {
				req := httptest.NewRequest("POST", "/openapi.json", http.NoBody)
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, req)

				convey.So(w.Code, convey.ShouldEqual, http.StatusMethodNotAllowed)
				convey.So(w.Header().Get("Allow"), convey.ShouldEqual, "GET, HEAD")
			})
		})
	})
}

func TestSwaggerErrors(t *testing.T) {
	convey.Convey("Given swagger error constants", t, func() {
		convey.Convey("Then ErrServe should be defined", func() {
			convey.So(ErrServe, convey.ShouldNotBeNil)
			convey.So(ErrServe.Error(), convey.ShouldEqual, "swagger serve failed")
		})
	})

	convey.Convey("Given a nil document", t, func() {
		err := Register(context.Background(), http.NewServeMux(), nil)

		convey.Convey("Then registration should fail", func() {
			convey.So(errors.Is(err, ErrDocument), convey.ShouldBeTrue)
		})
	})

	convey.Convey("Given a document without a version", t, func() {
		doc := Document(testInfo())
		doc.Info = &openapi3.Info{Title: "broken"}
		err := Register(context.Background(), http.NewServeMux(), doc)

		convey.Convey("Then registration should fail validation", func() {
			convey.So(errors.Is(err, ErrDocument), convey.ShouldBeTrue)
		})
	})
}

func TestSwaggerHandlerWithNilMux(t *testing.T) {
	convey.Convey("Given a nil mux", t, func() {
		ctx := context.Background()

		convey.Convey("When registering the swagger handler", func() {
			convey.Convey("Then it should panic", func() {
				convey.So(func() {
					_ = Register(ctx, nil, Document(testInfo()))
				}, convey.ShouldPanic)
			})
		})
	})
}
