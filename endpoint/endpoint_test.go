package endpoint_test

import (
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/adamwoolhether/httpkit/codec"
	"github.com/adamwoolhether/httpkit/endpoint"
	"github.com/adamwoolhether/httpkit/httperr"
	"github.com/adamwoolhether/httpkit/server"
	"github.com/google/go-cmp/cmp"
)

type exampleServer struct{}

func (exampleServer) Description() server.Description {
	return server.MustDescription("example.com", "example.com")
}

type result struct {
	Results []string `json:"results"`
}

func TestEndpoint_URL(t *testing.T) {
	testCases := []struct {
		name string
		ep   endpoint.Endpoint[result, exampleServer]
		exp  string
	}{
		{
			name: "plain path",
			ep:   endpoint.New[result, exampleServer](endpoint.MethodGet, "search"),
			exp:  "https://example.com/search",
		},
		{
			name: "leading slash",
			ep:   endpoint.New[result, exampleServer](endpoint.MethodGet, "/v1/search"),
			exp:  "https://example.com/v1/search",
		},
		{
			name: "ordered query items",
			ep: endpoint.New[result, exampleServer](endpoint.MethodGet, "search",
				endpoint.WithQueryItems(
					endpoint.QueryItem{Name: "q", Value: "foo bar"},
					endpoint.QueryItem{Name: "a", Value: "1"},
				),
			),
			exp: "https://example.com/search?q=foo+bar&a=1",
		},
		{
			name: "path query merged",
			ep: endpoint.New[result, exampleServer](endpoint.MethodGet, "ac/?type=list",
				endpoint.WithQueryItems(endpoint.QueryItem{Name: "q", Value: "foo"}),
			),
			exp: "https://example.com/ac/?type=list&q=foo",
		},
		{
			name: "escaped slash kept",
			ep:   endpoint.New[result, exampleServer](endpoint.MethodGet, "files/a%2Fb"),
			exp:  "https://example.com/files/a%2Fb",
		},
		{
			name: "escaped space kept",
			ep:   endpoint.New[result, exampleServer](endpoint.MethodGet, "/v1/a%20b"),
			exp:  "https://example.com/v1/a%20b",
		},
	}

	desc := exampleServer{}.Description()

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			u1, err := tc.ep.URL(desc)
			if err != nil {
				t.Fatalf("exp nil err, got: %v", err)
			}
			u2, err := tc.ep.URL(desc)
			if err != nil {
				t.Fatalf("exp nil err, got: %v", err)
			}

			if u1.String() != tc.exp {
				t.Errorf("exp url %q, got %q", tc.exp, u1.String())
			}
			if u1.String() != u2.String() {
				t.Errorf("exp identical urls, got %q and %q", u1, u2)
			}
		})
	}
}

func TestEndpoint_URLFailure(t *testing.T) {
	testCases := []struct {
		name string
		ep   endpoint.Endpoint[result, exampleServer]
		desc server.Description
	}{
		{
			name: "absolute path",
			ep:   endpoint.New[result, exampleServer](endpoint.MethodGet, "https://other.com/x"),
			desc: exampleServer{}.Description(),
		},
		{
			name: "control character",
			ep:   endpoint.New[result, exampleServer](endpoint.MethodGet, "bad\x7fpath"),
			desc: exampleServer{}.Description(),
		},
		{
			name: "empty server",
			ep:   endpoint.New[result, exampleServer](endpoint.MethodGet, "search"),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			u, err := tc.ep.URL(tc.desc)
			if !errors.Is(err, httperr.ErrFailedConstructURL) {
				t.Fatalf("exp failed construct url, got: %v", err)
			}
			if u != nil {
				t.Errorf("exp nil url, got %v", u)
			}
		})
	}
}

func TestEndpoint_Request(t *testing.T) {
	ep := endpoint.New[result, exampleServer](endpoint.MethodPost, "items",
		endpoint.WithHeaders(map[string][]string{"X-Custom": {"one"}}),
		endpoint.WithEncoding(endpoint.JSONParameters(map[string]any{"name": "gopher"})),
		endpoint.WithAuthentication(),
	)

	u, err := ep.URL(exampleServer{}.Description())
	if err != nil {
		t.Fatalf("building url: %v", err)
	}

	req, err := ep.Request(u, 30*time.Second, codec.Std(), "secret")
	if err != nil {
		t.Fatalf("exp nil err, got: %v", err)
	}

	if req.Method != http.MethodPost {
		t.Errorf("exp POST, got %s", req.Method)
	}
	if req.Timeout != 30*time.Second {
		t.Errorf("exp timeout 30s, got %v", req.Timeout)
	}

	expHeader := http.Header{
		"X-Custom":      {"one"},
		"Content-Type":  {"application/json"},
		"Accept":        {"application/json"},
		"Authorization": {"Bearer secret"},
	}
	if diff := cmp.Diff(expHeader, req.Header); diff != "" {
		t.Errorf("header mismatch (-exp +got):\n%s", diff)
	}

	if string(req.Body) != `{"name":"gopher"}` {
		t.Errorf("unexpected body %s", req.Body)
	}

	again, err := ep.Request(u, 30*time.Second, codec.Std(), "secret")
	if err != nil {
		t.Fatalf("exp nil err, got: %v", err)
	}
	if diff := cmp.Diff(req.Header, again.Header); diff != "" {
		t.Errorf("exp identical requests (-first +second):\n%s", diff)
	}
	if string(req.Body) != string(again.Body) || req.URL.String() != again.URL.String() {
		t.Error("exp identical requests for identical inputs")
	}
}

func TestEndpoint_RequestEncodings(t *testing.T) {
	type body struct {
		Name string `json:"name"`
	}

	testCases := []struct {
		name    string
		enc     endpoint.Encoding
		expBody string
		expURL  string
		expErr  error
	}{
		{
			name:   "no body",
			enc:    endpoint.NoBody(),
			expURL: "https://example.com/items",
		},
		{
			name:   "query string",
			enc:    endpoint.QueryString(endpoint.QueryItem{Name: "page", Value: "2"}),
			expURL: "https://example.com/items?page=2",
		},
		{
			name:    "encodable",
			enc:     endpoint.JSONEncodable(body{Name: "x"}),
			expBody: `{"name":"x"}`,
			expURL:  "https://example.com/items",
		},
		{
			name:    "raw",
			enc:     endpoint.RawBody([]byte("raw bytes")),
			expBody: "raw bytes",
			expURL:  "https://example.com/items",
		},
		{
			name:   "nil parameters",
			enc:    endpoint.JSONParameters(nil),
			expErr: httperr.ErrMissingRequestParameters,
		},
		{
			name:   "unencodable parameters",
			enc:    endpoint.JSONParameters(map[string]any{"ch": make(chan int)}),
			expErr: httperr.ErrFailedEncodeJSONRequestParameters,
		},
		{
			name:   "unencodable value",
			enc:    endpoint.JSONEncodable(func() {}),
			expErr: httperr.ErrFailedEncodeEncodable,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ep := endpoint.New[result, exampleServer](endpoint.MethodPut, "items", endpoint.WithEncoding(tc.enc))

			u, err := ep.URL(exampleServer{}.Description())
			if err != nil {
				t.Fatalf("building url: %v", err)
			}

			req, err := ep.Request(u, time.Second, nil, "")
			if tc.expErr != nil {
				if !errors.Is(err, tc.expErr) {
					t.Fatalf("exp err %v; got: %v", tc.expErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("exp nil err, got: %v", err)
			}

			if string(req.Body) != tc.expBody {
				t.Errorf("exp body %q, got %q", tc.expBody, req.Body)
			}
			if req.URL.String() != tc.expURL {
				t.Errorf("exp url %q, got %q", tc.expURL, req.URL)
			}
			if u.String() != "https://example.com/items" {
				t.Errorf("input url must not be modified, got %q", u)
			}
		})
	}
}

// recordingCodec counts Marshal calls and delegates to the embedded codec.
type recordingCodec struct {
	codec.Codec
	marshals int
}

func (c *recordingCodec) Marshal(v any) ([]byte, error) {
	c.marshals++
	return c.Codec.Marshal(v)
}

func TestEndpoint_RequestUsesCodec(t *testing.T) {
	encodings := map[string]endpoint.Encoding{
		"parameters": endpoint.JSONParameters(map[string]any{"q": "go"}),
		"encodable":  endpoint.JSONEncodable(map[string]string{"q": "go"}),
	}

	for name, enc := range encodings {
		t.Run(name, func(t *testing.T) {
			ep := endpoint.New[result, exampleServer](endpoint.MethodPost, "items", endpoint.WithEncoding(enc))

			u, err := ep.URL(exampleServer{}.Description())
			if err != nil {
				t.Fatalf("building url: %v", err)
			}

			c := recordingCodec{Codec: codec.Std()}
			req, err := ep.Request(u, time.Second, &c, "")
			if err != nil {
				t.Fatalf("exp nil err, got: %v", err)
			}

			if c.marshals != 1 {
				t.Errorf("exp body encoded with the given codec once, got %d calls", c.marshals)
			}
			if string(req.Body) != `{"q":"go"}` {
				t.Errorf("exp body %q, got %q", `{"q":"go"}`, req.Body)
			}
		})
	}
}

func TestEndpoint_RequestMissingToken(t *testing.T) {
	ep := endpoint.New[result, exampleServer](endpoint.MethodGet, "me", endpoint.WithAuthentication())

	u, err := ep.URL(exampleServer{}.Description())
	if err != nil {
		t.Fatalf("building url: %v", err)
	}

	_, err = ep.Request(u, time.Second, codec.Std(), "")
	if !errors.Is(err, httperr.ErrNoAuthenticationToken) {
		t.Fatalf("exp no authentication token, got: %v", err)
	}
}

func TestEndpoint_PublicWithToken(t *testing.T) {
	ep := endpoint.New[result, exampleServer](endpoint.MethodGet, "search")

	u, _ := ep.URL(exampleServer{}.Description())
	req, err := ep.Request(u, time.Second, codec.Std(), "tok")
	if err != nil {
		t.Fatalf("exp nil err, got: %v", err)
	}

	if got := req.Header.Get("Authorization"); got != "Bearer tok" {
		t.Errorf("exp bearer header, got %q", got)
	}
}

func TestEndpoint_Identity(t *testing.T) {
	build := func() endpoint.Endpoint[result, exampleServer] {
		return endpoint.New[result, exampleServer](endpoint.MethodGet, "search",
			endpoint.WithQueryItems(endpoint.QueryItem{Name: "q", Value: "foo"}),
			endpoint.WithHeaders(map[string][]string{"B": {"2"}, "A": {"1"}}),
		)
	}

	if build().Identity() != build().Identity() {
		t.Error("exp equal identities for equal endpoints")
	}

	other := endpoint.New[result, exampleServer](endpoint.MethodGet, "search",
		endpoint.WithQueryItems(endpoint.QueryItem{Name: "q", Value: "bar"}),
	)
	if build().Identity() == other.Identity() {
		t.Error("exp different identities for different queries")
	}

	if !strings.HasPrefix(build().Identity(), "GET search?q=foo") {
		t.Errorf("unexpected identity %q", build().Identity())
	}
}

func TestRequest_HTTPRequest(t *testing.T) {
	ep := endpoint.New[result, exampleServer](endpoint.MethodPost, "items",
		endpoint.WithEncoding(endpoint.RawBody([]byte("abc"))),
	)

	u, _ := ep.URL(exampleServer{}.Description())
	req, err := ep.Request(u, time.Second, codec.Std(), "")
	if err != nil {
		t.Fatalf("building request: %v", err)
	}

	hr, err := req.HTTPRequest(t.Context())
	if err != nil {
		t.Fatalf("exp nil err, got: %v", err)
	}

	if hr.ContentLength != 3 {
		t.Errorf("exp content length 3, got %d", hr.ContentLength)
	}
	if hr.Header.Get("Content-Type") != "application/json" {
		t.Errorf("unexpected content type %q", hr.Header.Get("Content-Type"))
	}

	hr.Header.Set("X-Mutated", "1")
	if req.Header.Get("X-Mutated") != "" {
		t.Error("exp http request headers to be a copy")
	}
}
