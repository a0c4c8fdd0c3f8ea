package gateway

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/sampleapi/internal/adapters/http/api"
	"github.com/okian/sampleapi/internal/domain/sample"
	"github.com/okian/sampleapi/pkg/logger"
)

const domain = "abc123.execute-api.eu-west-1.amazonaws.com"

func newAPI() http.Handler {
	server := api.NewServer(sample.NewStatic("This is a sample response"),
		api.WithRootPath("/dev"), api.WithCORS(true, "*"))
	mux := http.NewServeMux()
	server.Register(context.Background(), mux)
	return server.Wrap(mux)
}

func header(multi map[string][]string, single map[string]string, key string) string {
	if v := http.Header(multi).Get(key); v != "" {
		return v
	}
	for k, v := range single {
		if http.CanonicalHeaderKey(k) == http.CanonicalHeaderKey(key) {
			return v
		}
	}
	return ""
}

func v1Event(method, path string) events.APIGatewayProxyRequest {
	return events.APIGatewayProxyRequest{
		HTTPMethod: method,
		Path:       path,
		Headers:    map[string]string{},
		RequestContext: events.APIGatewayProxyRequestContext{
			Stage:      "dev",
			RequestID:  "gw-req-1",
			DomainName: domain,
			HTTPMethod: method,
		},
	}
}

func v2Event(method, path string) events.APIGatewayV2HTTPRequest {
	return events.APIGatewayV2HTTPRequest{
		Version:  "2.0",
		RawPath:  path,
		Headers:  map[string]string{},
		RouteKey: "$default",
		RequestContext: events.APIGatewayV2HTTPRequestContext{
			Stage:      "dev",
			RequestID:  "gw-req-2",
			DomainName: domain,
			HTTP: events.APIGatewayV2HTTPRequestContextHTTPDescription{
				Method: method,
				Path:   path,
			},
		},
	}
}

func TestStripStage(t *testing.T) {
	Convey("Given v2 events on a named stage", t, func() {
		cases := []struct {
			stage string
			in    string
			out   string
		}{
			{"prod", "/prod/hello", "/hello"},
			{"prod", "/prod", "/"},
			{"prod", "/production/hello", "/production/hello"},
			{"prod", "/hello", "/hello"},
			{"$default", "/prod/hello", "/prod/hello"},
			{"", "/prod/hello", "/prod/hello"},
		}

		Convey("Then only a whole leading stage segment should be removed", func() {
			for _, c := range cases {
				ev := v2Event(http.MethodGet, c.in)
				ev.RequestContext.Stage = c.stage
				got := stripStage(ev)
				So(got.RawPath, ShouldEqual, c.out)
				So(got.RequestContext.HTTP.Path, ShouldEqual, c.out)
			}
		})
	})
}

func TestNew(t *testing.T) {
	Convey("Given gateway options", t, func() {
		So(logger.Init(), ShouldBeNil)

		Convey("When no format is given", func() {
			h, err := New(newAPI())

			Convey("Then the v1 format should be used", func() {
				So(err, ShouldBeNil)
				So(h.Format(), ShouldEqual, FormatV1)
			})
		})

		Convey("When the format is unknown", func() {
			_, err := New(newAPI(), WithEventFormat("v3"))

			Convey("Then construction should fail", func() {
				So(errors.Is(err, ErrUnsupportedEventFormat), ShouldBeTrue)
			})
		})

		Convey("When the handler is nil", func() {
			_, err := New(nil)

			Convey("Then construction should fail", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}

func TestHandleV1(t *testing.T) {
	Convey("Given a v1 gateway handler", t, func() {
		So(logger.Init(), ShouldBeNil)
		h, err := New(newAPI(), WithEventFormat(FormatV1))
		So(err, ShouldBeNil)
		ctx := context.Background()

		Convey("When invoking GET /hello", func() {
			resp, err := h.HandleV1(ctx, v1Event(http.MethodGet, "/hello"))

			Convey("Then the greeting should be returned", func() {
				So(err, ShouldBeNil)
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(resp.Body, ShouldEqual, "Hello World")
			})

			Convey("And the gateway request id should be propagated", func() {
				So(header(resp.MultiValueHeaders, resp.Headers, api.RequestIDHeader), ShouldEqual, "gw-req-1")
			})

			Convey("And the first invocation should mark the function warm", func() {
				So(h.warm.Load(), ShouldBeTrue)
			})
		})

		Convey("When the path still carries the stage prefix", func() {
			resp, err := h.HandleV1(ctx, v1Event(http.MethodGet, "/dev/sample"))

			Convey("Then the prefix should be stripped", func() {
				So(err, ShouldBeNil)
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(resp.Body, ShouldEqual, "This is a sample response")
			})
		})

		Convey("When invoking an unknown route", func() {
			resp, err := h.HandleV1(ctx, v1Event(http.MethodGet, "/nope"))

			Convey("Then 404 should be returned", func() {
				So(err, ShouldBeNil)
				So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("When invoking with POST", func() {
			resp, err := h.HandleV1(ctx, v1Event(http.MethodPost, "/hello"))

			Convey("Then 405 should be returned", func() {
				So(err, ShouldBeNil)
				So(resp.StatusCode, ShouldEqual, http.StatusMethodNotAllowed)
			})
		})

		Convey("When invoked with a v2 event", func() {
			_, err := h.HandleV2(ctx, v2Event(http.MethodGet, "/hello"))

			Convey("Then it should be rejected", func() {
				So(errors.Is(err, ErrUnsupportedEventFormat), ShouldBeTrue)
			})
		})
	})
}

func TestHandleV2(t *testing.T) {
	Convey("Given a v2 gateway handler", t, func() {
		So(logger.Init(), ShouldBeNil)
		h, err := New(newAPI(), WithEventFormat(FormatV2))
		So(err, ShouldBeNil)
		ctx := context.Background()

		Convey("When invoking GET /dev/hello", func() {
			resp, err := h.HandleV2(ctx, v2Event(http.MethodGet, "/dev/hello"))

			Convey("Then the greeting should be returned", func() {
				So(err, ShouldBeNil)
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(resp.Body, ShouldEqual, "Hello World")
				So(header(resp.MultiValueHeaders, resp.Headers, api.RequestIDHeader), ShouldEqual, "gw-req-2")
			})
		})

		Convey("When invoking GET /sample with an API key", func() {
			ev := v2Event(http.MethodGet, "/sample")
			ev.Headers["x-api-key"] = "secret"
			resp, err := h.HandleV2(ctx, ev)

			Convey("Then the sample should be returned", func() {
				So(err, ShouldBeNil)
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(resp.Body, ShouldEqual, "This is a sample response")
			})
		})

		Convey("When a named stage keeps its prefix in the raw path", func() {
			ev := v2Event(http.MethodGet, "/prod/hello")
			ev.RequestContext.Stage = "prod"
			resp, err := h.HandleV2(ctx, ev)

			Convey("Then the stage prefix should be stripped", func() {
				So(err, ShouldBeNil)
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(resp.Body, ShouldEqual, "Hello World")
			})
		})

		Convey("When the default stage serves an unprefixed path", func() {
			ev := v2Event(http.MethodGet, "/sample")
			ev.RequestContext.Stage = "$default"
			resp, err := h.HandleV2(ctx, ev)

			Convey("Then the path should be served as is", func() {
				So(err, ShouldBeNil)
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(resp.Body, ShouldEqual, "This is a sample response")
			})
		})

		Convey("When invoked with a v1 event", func() {
			_, err := h.HandleV1(ctx, v1Event(http.MethodGet, "/hello"))

			Convey("Then it should be rejected", func() {
				So(errors.Is(err, ErrUnsupportedEventFormat), ShouldBeTrue)
			})
		})

		Convey("When asking for the entrypoint", func() {
			_, ok := h.Entrypoint().(func(context.Context, events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error))

			Convey("Then the v2 handler should be returned", func() {
				So(ok, ShouldBeTrue)
			})
		})
	})
}
