// Package handler implements the per-request response handling state:
// how the caller of one in-flight request wants to receive its result.
//
// A [State] is created for every request attempt. Closure, stream and
// promise consumers each get their own variant; the stream and promise
// variants start out awaiting their consumer and are bound once it
// exists. [State.Deliver] routes the single result of the request to
// whichever consumer is bound.
package handler

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/adamwoolhether/httpkit/endpoint"
	"github.com/adamwoolhether/httpkit/server"
	"github.com/adamwoolhether/httpkit/stream"
)

// ErrIllegalTransition is returned when a consumer is bound to a state
// that does not await one.
var ErrIllegalTransition = errors.New("illegal handler state transition")

// Kind is the variant of a [State].
type Kind uint8

const (
	KindClosure Kind = iota + 1
	KindAwaitingStreamObserver
	KindStreamObserver
	KindAwaitingPromise
	KindPromise
	KindNativeAsync
)

func (k Kind) String() string {
	switch k {
	case KindClosure:
		return "closure"
	case KindAwaitingStreamObserver:
		return "awaiting-stream-observer"
	case KindStreamObserver:
		return "stream-observer"
	case KindAwaitingPromise:
		return "awaiting-promise"
	case KindPromise:
		return "promise"
	case KindNativeAsync:
		return "native-async"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// State is the response handling state of one request for endpoint
// Endpoint[T, S].
type State[T any, S server.Server] struct {
	mu        sync.Mutex
	kind      Kind
	endpoint  endpoint.Endpoint[T, S]
	callback  func(Result[T])
	observer  stream.Observer[T]
	lifetime  stream.Lifetime
	promise   func(Result[T])
	delivered bool
}

// Closure returns a state delivering to callback.
func Closure[T any, S server.Server](ep endpoint.Endpoint[T, S], callback func(Result[T])) *State[T, S] {
	if callback == nil {
		callback = func(Result[T]) {}
	}

	return &State[T, S]{kind: KindClosure, endpoint: ep, callback: callback}
}

// AwaitingStreamObserver returns a state waiting for [State.BindObserver].
func AwaitingStreamObserver[T any, S server.Server](ep endpoint.Endpoint[T, S]) *State[T, S] {
	return &State[T, S]{kind: KindAwaitingStreamObserver, endpoint: ep}
}

// AwaitingPromise returns a state waiting for [State.BindPromise].
func AwaitingPromise[T any, S server.Server](ep endpoint.Endpoint[T, S]) *State[T, S] {
	return &State[T, S]{kind: KindAwaitingPromise, endpoint: ep}
}

// NativeAsync marks a request whose result is returned directly to an
// awaiting caller. Delivering through it does nothing.
func NativeAsync[T any, S server.Server](ep endpoint.Endpoint[T, S]) *State[T, S] {
	return &State[T, S]{kind: KindNativeAsync, endpoint: ep}
}

// Kind returns the current variant.
func (s *State[T, S]) Kind() Kind {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.kind
}

// Endpoint returns the endpoint the state was created for.
func (s *State[T, S]) Endpoint() endpoint.Endpoint[T, S] {
	return s.endpoint
}

// BindObserver moves an awaiting stream state to the bound stream
// observer state. It may succeed only once.
func (s *State[T, S]) BindObserver(observer stream.Observer[T], lifetime stream.Lifetime) error {
	if observer == nil {
		return errors.New("observer must not be nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.kind != KindAwaitingStreamObserver {
		return fmt.Errorf("%w: bind observer in state %v", ErrIllegalTransition, s.kind)
	}

	s.kind = KindStreamObserver
	s.observer = observer
	s.lifetime = lifetime

	return nil
}

// BindPromise moves an awaiting promise state to the bound promise
// state. It may succeed only once.
func (s *State[T, S]) BindPromise(fn func(Result[T])) error {
	if fn == nil {
		return errors.New("promise func must not be nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.kind != KindAwaitingPromise {
		return fmt.Errorf("%w: bind promise in state %v", ErrIllegalTransition, s.kind)
	}

	s.kind = KindPromise
	s.promise = fn

	return nil
}

// Deliver routes r to the bound consumer and reports whether it did.
//
// Nothing is delivered while the state still awaits its consumer, for
// the native async variant, after the stream lifetime ended, or when a
// result was already delivered: a state delivers at most once.
func (s *State[T, S]) Deliver(r Result[T]) bool {
	s.mu.Lock()

	if s.delivered {
		s.mu.Unlock()
		return false
	}

	var fn func()
	switch s.kind {
	case KindClosure:
		cb := s.callback
		fn = func() { cb(r) }

	case KindStreamObserver:
		if s.lifetime.HasEnded() {
			s.delivered = true
			s.mu.Unlock()
			return false
		}

		obs := s.observer
		fn = func() {
			if r.Err != nil {
				obs.SendError(r.Err)
				return
			}
			obs.SendValue(r.Value)
			obs.SendCompleted()
		}

	case KindPromise:
		p := s.promise
		fn = func() { p(r) }

	default:
		s.mu.Unlock()
		return false
	}

	s.delivered = true
	s.mu.Unlock()

	fn()

	return true
}

// Key identifies a state for equality and hashing: the response type,
// the server type and the endpoint. The bound consumer is not part of
// the key since funcs are not comparable; two states for the same
// endpoint are equal whatever callbacks they hold.
type Key struct {
	Response reflect.Type
	Server   reflect.Type
	Endpoint string
}

// Key returns the state's key. It is comparable and usable as a map key.
func (s *State[T, S]) Key() Key {
	return Key{
		Response: reflect.TypeFor[T](),
		Server:   reflect.TypeFor[S](),
		Endpoint: s.endpoint.Identity(),
	}
}

// Equal reports whether s and other have equal keys.
func (s *State[T, S]) Equal(other *State[T, S]) bool {
	if s == nil || other == nil {
		return s == other
	}

	return s.Key() == other.Key()
}
