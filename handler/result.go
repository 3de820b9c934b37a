package handler

import (
	"errors"

	"github.com/adamwoolhether/httpkit/httperr"
)

var errNilFailure = errors.New("failure without an error")

// NoContent is the response type of endpoints whose success responses
// carry no body. Empty bodies are not decoded for it.
type NoContent struct{}

// Result is the outcome of one request: a value or an [*httperr.Error].
type Result[T any] struct {
	Value T
	Err   *httperr.Error
}

// Success wraps value.
func Success[T any](value T) Result[T] {
	return Result[T]{Value: value}
}

// Failure normalizes err into an [*httperr.Error].
func Failure[T any](err error) Result[T] {
	if err == nil {
		err = httperr.New(httperr.KindHTTPFailure, errNilFailure)
	}

	return Result[T]{Err: httperr.From(err)}
}

// IsSuccess reports whether the result holds a value.
func (r Result[T]) IsSuccess() bool {
	return r.Err == nil
}

// Get returns the value, or the zero value and the error.
func (r Result[T]) Get() (T, error) {
	if r.Err != nil {
		var zero T
		return zero, r.Err
	}

	return r.Value, nil
}
