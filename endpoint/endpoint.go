// Package endpoint describes single API calls and translates them into
// concrete requests.
//
// An [Endpoint] is bound to the payload type it decodes into and to the
// [server.Server] type it is sent to. Both are type parameters that only
// exist to stop an endpoint from being used with the wrong client:
//
//	var search = endpoint.New[[]string, DuckDuckGo](endpoint.MethodGet, "ac",
//		endpoint.WithQueryItems(endpoint.QueryItem{Name: "q", Value: "golang"}),
//	)
//
// Endpoints are stateless values and safe to share.
package endpoint

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/adamwoolhether/httpkit/httperr"
	"github.com/adamwoolhether/httpkit/server"
)

// Method is an HTTP request method.
type Method string

const (
	MethodGet     Method = http.MethodGet
	MethodHead    Method = http.MethodHead
	MethodPost    Method = http.MethodPost
	MethodPut     Method = http.MethodPut
	MethodPatch   Method = http.MethodPatch
	MethodDelete  Method = http.MethodDelete
	MethodOptions Method = http.MethodOptions
)

// ContentType is sent as both the Content-Type and Accept header.
type ContentType string

const (
	ContentTypeJSON ContentType = "application/json"
	ContentTypeForm ContentType = "application/x-www-form-urlencoded"
	ContentTypeText ContentType = "text/plain; charset=utf-8"
)

// QueryItem is a single name/value pair of a URL query. Items keep
// the order they were declared in.
type QueryItem struct {
	Name  string
	Value string
}

// Endpoint is an immutable descriptor of one API call returning T from
// a server of type S.
type Endpoint[T any, S server.Server] struct {
	def definition
}

type definition struct {
	method       Method
	path         string
	queryItems   []QueryItem
	headers      http.Header
	encoding     Encoding
	contentType  ContentType
	requiresAuth bool
	successCodes []int
}

// New declares an endpoint. Without options the endpoint has no body,
// sends and accepts JSON, needs no token and accepts any 2xx status.
func New[T any, S server.Server](method Method, path string, optFns ...Option) Endpoint[T, S] {
	def := definition{
		method:      method,
		path:        path,
		encoding:    NoBody(),
		contentType: ContentTypeJSON,
	}

	for _, opt := range optFns {
		opt(&def)
	}

	if len(def.successCodes) == 0 {
		def.successCodes = defaultSuccessCodes()
	}

	return Endpoint[T, S]{def: def}
}

func (e Endpoint[T, S]) Method() Method {
	return e.def.method
}

func (e Endpoint[T, S]) Path() string {
	return e.def.path
}

// QueryItems returns a copy of the declared query items.
func (e Endpoint[T, S]) QueryItems() []QueryItem {
	return slices.Clone(e.def.queryItems)
}

// Headers returns a copy of the declared headers.
func (e Endpoint[T, S]) Headers() http.Header {
	return e.def.headers.Clone()
}

func (e Endpoint[T, S]) Encoding() Encoding {
	return e.def.encoding
}

func (e Endpoint[T, S]) ContentType() ContentType {
	return e.def.contentType
}

// RequiresAuthentication reports whether a bearer token must be supplied.
func (e Endpoint[T, S]) RequiresAuthentication() bool {
	return e.def.requiresAuth
}

// SuccessCodes returns the status codes treated as success.
func (e Endpoint[T, S]) SuccessCodes() []int {
	return slices.Clone(e.def.successCodes)
}

// URL builds the request URL from the server's scheme and host and the
// endpoint's path and query items. A failure is terminal for the request.
func (e Endpoint[T, S]) URL(desc server.Description) (*url.URL, error) {
	if desc.Scheme == "" || desc.Hostname == "" {
		return nil, httperr.New(httperr.KindFailedConstructURL, errors.New("server description has no scheme or host"))
	}

	p, err := url.Parse(e.def.path)
	if err != nil {
		return nil, httperr.New(httperr.KindFailedConstructURL, fmt.Errorf("parsing path: %w", err))
	}
	if p.IsAbs() || p.Host != "" {
		return nil, httperr.New(httperr.KindFailedConstructURL, fmt.Errorf("path[%s] must be relative", e.def.path))
	}

	// RawPath keeps escaped reserved characters such as %2F intact.
	u := url.URL{
		Scheme:  string(desc.Scheme),
		Host:    desc.Host(),
		Path:    "/" + strings.TrimPrefix(p.Path, "/"),
		RawPath: "/" + strings.TrimPrefix(p.EscapedPath(), "/"),
	}

	u.RawQuery = joinQuery(p.RawQuery, encodeQuery(e.def.queryItems))

	return &u, nil
}

// Identity returns a canonical description of the endpoint. Two
// endpoints with equal identities describe the same call.
func (e Endpoint[T, S]) Identity() string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s %s", e.def.method, e.def.path)
	if q := encodeQuery(e.def.queryItems); q != "" {
		fmt.Fprintf(&b, "?%s", q)
	}

	keys := make([]string, 0, len(e.def.headers))
	for k := range e.def.headers {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, "|%s=%s", k, strings.Join(e.def.headers[k], ","))
	}

	fmt.Fprintf(&b, "|ct=%s|auth=%t|codes=%v|%s", e.def.contentType, e.def.requiresAuth, e.def.successCodes, e.def.encoding.identity())

	return b.String()
}

func (e Endpoint[T, S]) String() string {
	return fmt.Sprintf("%s %s", e.def.method, e.def.path)
}

func defaultSuccessCodes() []int {
	codes := make([]int, 0, 100)
	for c := 200; c < 300; c++ {
		codes = append(codes, c)
	}

	return codes
}

func encodeQuery(items []QueryItem) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		parts = append(parts, url.QueryEscape(item.Name)+"="+url.QueryEscape(item.Value))
	}

	return strings.Join(parts, "&")
}

func joinQuery(parts ...string) string {
	nonEmpty := slices.DeleteFunc(slices.Clone(parts), func(s string) bool { return s == "" })
	return strings.Join(nonEmpty, "&")
}

func hashBytes(b []byte) string {
	return fmt.Sprintf("%x", sha256.Sum256(b))
}
