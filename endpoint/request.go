package endpoint

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"time"

	"github.com/adamwoolhether/httpkit/codec"
	"github.com/adamwoolhether/httpkit/httperr"
)

// Request is a fully built, transport agnostic request.
type Request struct {
	Method  string
	URL     *url.URL
	Header  http.Header
	Body    []byte
	Timeout time.Duration
}

// Request builds the concrete request for u. The endpoint's headers are
// merged with Content-Type, Accept and, when token is not empty, a bearer
// Authorization header. A nil codec falls back to [codec.Std].
//
// Request has no side effects: identical inputs give identical requests.
func (e Endpoint[T, S]) Request(u *url.URL, timeout time.Duration, c codec.Codec, token string) (*Request, error) {
	if u == nil {
		return nil, httperr.New(httperr.KindFailedConstructURL, errors.New("nil url"))
	}

	if e.def.requiresAuth && token == "" {
		return nil, httperr.New(httperr.KindNoAuthenticationToken, nil)
	}

	if c == nil {
		c = codec.Std()
	}

	reqURL := *u
	header := e.def.headers.Clone()
	if header == nil {
		header = make(http.Header)
	}

	header.Set("Content-Type", string(e.def.contentType))
	header.Set("Accept", string(e.def.contentType))
	if token != "" {
		header.Set("Authorization", "Bearer "+token)
	}

	var body []byte
	switch enc := e.def.encoding; enc.kind {
	case encodingQuery:
		reqURL.RawQuery = joinQuery(reqURL.RawQuery, encodeQuery(enc.query))

	case encodingJSONParameters:
		if enc.params == nil {
			return nil, httperr.New(httperr.KindMissingRequestParameters, nil)
		}

		b, err := c.Marshal(enc.params)
		if err != nil {
			return nil, httperr.New(httperr.KindFailedEncodeJSONRequestParameters, err)
		}
		body = b

	case encodingJSONEncodable:
		if enc.value == nil {
			return nil, httperr.New(httperr.KindMissingRequestParameters, nil)
		}

		b, err := c.Marshal(enc.value)
		if err != nil {
			return nil, httperr.New(httperr.KindFailedEncodeEncodable, err)
		}
		body = b

	case encodingRaw:
		body = slices.Clone(enc.raw)
	}

	return &Request{
		Method:  string(e.def.method),
		URL:     &reqURL,
		Header:  header,
		Body:    body,
		Timeout: timeout,
	}, nil
}

// HTTPRequest converts r into an *http.Request bound to ctx.
func (r *Request) HTTPRequest(ctx context.Context) (*http.Request, error) {
	var body io.Reader = http.NoBody
	if len(r.Body) > 0 {
		body = bytes.NewReader(r.Body)
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, r.URL.String(), body)
	if err != nil {
		return nil, httperr.New(httperr.KindFailedConstructURL, fmt.Errorf("instantiating request: %w", err))
	}

	req.Header = r.Header.Clone()
	if req.Header == nil {
		req.Header = make(http.Header)
	}

	return req, nil
}
