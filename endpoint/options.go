package endpoint

import (
	"net/http"
	"slices"
)

// Option is a functional option for [New].
type Option func(*definition)

// WithQueryItems appends query items to the URL, in order.
func WithQueryItems(items ...QueryItem) Option {
	return func(d *definition) {
		d.queryItems = append(d.queryItems, items...)
	}
}

// WithHeaders adds custom headers to every request built from the endpoint.
func WithHeaders(headers map[string][]string) Option {
	return func(d *definition) {
		if d.headers == nil {
			d.headers = make(http.Header, len(headers))
		}
		for k, v := range headers {
			for _, element := range v {
				d.headers.Add(k, element)
			}
		}
	}
}

// WithEncoding sets how the request body is produced.
func WithEncoding(enc Encoding) Option {
	return func(d *definition) {
		d.encoding = enc
	}
}

// WithContentType overrides the default "application/json".
func WithContentType(ct ContentType) Option {
	return func(d *definition) {
		if ct != "" {
			d.contentType = ct
		}
	}
}

// WithAuthentication marks the endpoint as requiring a bearer token.
func WithAuthentication() Option {
	return func(d *definition) {
		d.requiresAuth = true
	}
}

// WithSuccessCodes replaces the accepted 2xx range with codes.
func WithSuccessCodes(codes ...int) Option {
	return func(d *definition) {
		d.successCodes = slices.Clone(codes)
	}
}
