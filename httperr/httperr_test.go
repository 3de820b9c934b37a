package httperr_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/adamwoolhether/httpkit/httperr"
)

func TestError_Is(t *testing.T) {
	cause := errors.New("connection refused")
	err := fmt.Errorf("performing request: %w", httperr.New(httperr.KindHTTPFailure, cause))

	if !errors.Is(err, httperr.ErrHTTPFailure) {
		t.Error("exp errors.Is to match kind sentinel")
	}
	if !errors.Is(err, cause) {
		t.Error("exp errors.Is to match cause")
	}
	if errors.Is(err, httperr.ErrNotGoodStatusCode) {
		t.Error("exp no match for other kinds")
	}

	var e *httperr.Error
	if !errors.As(err, &e) {
		t.Fatal("exp errors.As to find *httperr.Error")
	}
	if e.Kind != httperr.KindHTTPFailure {
		t.Errorf("exp kind %v, got %v", httperr.KindHTTPFailure, e.Kind)
	}
}

func TestStatusCode(t *testing.T) {
	body := []byte(strings.Repeat("x", httperr.MaxBodySize+100))
	err := httperr.StatusCode(http.StatusInternalServerError, body)

	if !errors.Is(err, httperr.ErrNotGoodStatusCode) {
		t.Error("exp not good status code sentinel")
	}
	if err.StatusCode != http.StatusInternalServerError {
		t.Errorf("exp status 500, got %d", err.StatusCode)
	}
	if len(err.Body) != httperr.MaxBodySize {
		t.Errorf("exp body capped at %d, got %d", httperr.MaxBodySize, len(err.Body))
	}
	if !strings.Contains(err.Error(), "500") {
		t.Errorf("exp status code in message, got %q", err.Error())
	}
}

func TestError_IsAuthFailure(t *testing.T) {
	testCases := []struct {
		name string
		err  *httperr.Error
		exp  bool
	}{
		{name: "401", err: httperr.StatusCode(http.StatusUnauthorized, nil), exp: true},
		{name: "403", err: httperr.StatusCode(http.StatusForbidden, nil), exp: true},
		{name: "404", err: httperr.StatusCode(http.StatusNotFound, nil)},
		{name: "transport", err: httperr.New(httperr.KindHTTPFailure, nil)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.err.IsAuthFailure(); got != tc.exp {
				t.Errorf("exp %t, got %t", tc.exp, got)
			}
		})
	}
}

func TestFrom(t *testing.T) {
	if httperr.From(nil) != nil {
		t.Error("exp nil for nil error")
	}

	orig := httperr.New(httperr.KindNoAuthenticationToken, nil)
	if got := httperr.From(fmt.Errorf("wrapped: %w", orig)); got != orig {
		t.Errorf("exp the original *Error, got %v", got)
	}

	got := httperr.From(context.Canceled)
	if got.Kind != httperr.KindHTTPFailure {
		t.Errorf("exp http failure, got %v", got.Kind)
	}
	if !httperr.IsCanceled(got) {
		t.Error("exp canceled to be detected through the wrapper")
	}

	if k := httperr.KindOf(nil); k != 0 {
		t.Errorf("exp zero kind for nil, got %v", k)
	}
}

func TestKind_Name(t *testing.T) {
	if got := httperr.KindNotGoodStatusCode.Name(); got != "not_good_status_code" {
		t.Errorf("unexpected name %q", got)
	}
	if got := httperr.Kind(200).Name(); got != "unknown" {
		t.Errorf("exp unknown for out of range kind, got %q", got)
	}
	if got := httperr.Kind(200).String(); got != "kind(200)" {
		t.Errorf("unexpected string %q", got)
	}
}
