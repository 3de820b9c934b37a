// Package httperr defines the single error surface of the kit. Every
// failure, whatever layer it comes from, is normalized into an [*Error]
// carrying one [Kind] before it reaches a caller.
package httperr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// MaxBodySize caps the amount of response body kept on an
// [KindNotGoodStatusCode] error.
const MaxBodySize = 4 << 10 // 4KB

// Kind enumerates the failure kinds. The set is closed and flat.
type Kind uint8

const (
	KindZombieSelf Kind = iota + 1
	KindFailedConstructURL
	KindHTTPFailure
	KindJSONSerialization
	KindMissingRequestParameters
	KindNoAuthenticationToken
	KindFailedEncodeJSONRequestParameters
	KindFailedEncodeEncodable
	KindNoInternetConnection
	KindNotHTTPResponse
	KindNotGoodStatusCode
)

var (
	ErrZombieSelf                        = errors.New("owner released before the response arrived")
	ErrFailedConstructURL                = errors.New("failed to construct url")
	ErrHTTPFailure                       = errors.New("http failure")
	ErrJSONSerialization                 = errors.New("json serialization")
	ErrMissingRequestParameters          = errors.New("missing request parameters")
	ErrNoAuthenticationToken             = errors.New("no authentication token")
	ErrFailedEncodeJSONRequestParameters = errors.New("failed to encode json request parameters")
	ErrFailedEncodeEncodable             = errors.New("failed to encode encodable")
	ErrNoInternetConnection              = errors.New("no internet connection")
	ErrNotHTTPResponse                   = errors.New("not an http response")
	ErrNotGoodStatusCode                 = errors.New("not good status code")
)

var sentinels = map[Kind]error{
	KindZombieSelf:                        ErrZombieSelf,
	KindFailedConstructURL:                ErrFailedConstructURL,
	KindHTTPFailure:                       ErrHTTPFailure,
	KindJSONSerialization:                 ErrJSONSerialization,
	KindMissingRequestParameters:          ErrMissingRequestParameters,
	KindNoAuthenticationToken:             ErrNoAuthenticationToken,
	KindFailedEncodeJSONRequestParameters: ErrFailedEncodeJSONRequestParameters,
	KindFailedEncodeEncodable:             ErrFailedEncodeEncodable,
	KindNoInternetConnection:              ErrNoInternetConnection,
	KindNotHTTPResponse:                   ErrNotHTTPResponse,
	KindNotGoodStatusCode:                 ErrNotGoodStatusCode,
}

var names = map[Kind]string{
	KindZombieSelf:                        "zombie_self",
	KindFailedConstructURL:                "failed_construct_url",
	KindHTTPFailure:                       "http_failure",
	KindJSONSerialization:                 "json_serialization",
	KindMissingRequestParameters:          "missing_request_parameters",
	KindNoAuthenticationToken:             "no_authentication_token",
	KindFailedEncodeJSONRequestParameters: "failed_encode_json_request_parameters",
	KindFailedEncodeEncodable:             "failed_encode_encodable",
	KindNoInternetConnection:              "no_internet_connection",
	KindNotHTTPResponse:                   "not_http_response",
	KindNotGoodStatusCode:                 "not_good_status_code",
}

// Name returns a short snake_case name of k, suitable for metric labels.
func (k Kind) Name() string {
	if n, ok := names[k]; ok {
		return n
	}

	return "unknown"
}

// Sentinel returns the sentinel error matching k.
func (k Kind) Sentinel() error {
	return sentinels[k]
}

func (k Kind) String() string {
	if err, ok := sentinels[k]; ok {
		return err.Error()
	}

	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Error is the normalized failure delivered to callers.
type Error struct {
	Kind       Kind
	StatusCode int
	Body       string
	Err        error
}

// New returns an *Error of kind k wrapping the optional cause err.
func New(k Kind, err error) *Error {
	return &Error{Kind: k, Err: err}
}

// StatusCode returns a [KindNotGoodStatusCode] error for code. The body
// is truncated to [MaxBodySize].
func StatusCode(code int, body []byte) *Error {
	if len(body) > MaxBodySize {
		body = body[:MaxBodySize]
	}

	return &Error{
		Kind:       KindNotGoodStatusCode,
		StatusCode: code,
		Body:       string(body),
	}
}

func (e *Error) Error() string {
	switch {
	case e.Kind == KindNotGoodStatusCode:
		return fmt.Sprintf("%v: %d, body: %s", e.Kind, e.StatusCode, e.Body)
	case e.Err != nil:
		return fmt.Sprintf("%v: %v", e.Kind, e.Err)
	default:
		return e.Kind.String()
	}
}

// Unwrap exposes both the kind sentinel and the underlying cause,
// so errors.Is matches either.
func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if s := e.Kind.Sentinel(); s != nil {
		errs = append(errs, s)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}

	return errs
}

// IsAuthFailure reports whether the server rejected the request's credentials.
func (e *Error) IsAuthFailure() bool {
	return e.Kind == KindNotGoodStatusCode &&
		(e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden)
}

// From normalizes err into an *Error. Errors that already carry a kind
// are returned as is; anything else is treated as a transport failure.
func From(err error) *Error {
	if err == nil {
		return nil
	}

	var e *Error
	if errors.As(err, &e) {
		return e
	}

	return New(KindHTTPFailure, err)
}

// KindOf returns the kind of err, or zero if err is nil.
func KindOf(err error) Kind {
	if err == nil {
		return 0
	}

	return From(err).Kind
}

// IsCanceled reports whether err was caused by a cancelled or expired context.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
