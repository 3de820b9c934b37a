package restclient

import (
	"context"

	"github.com/adamwoolhether/httpkit/endpoint"
	"github.com/adamwoolhether/httpkit/handler"
	"github.com/adamwoolhether/httpkit/httperr"
	"github.com/adamwoolhether/httpkit/promise"
	"github.com/adamwoolhether/httpkit/reachability"
	"github.com/adamwoolhether/httpkit/server"
	"github.com/adamwoolhether/httpkit/stream"
	"github.com/adamwoolhether/httpkit/transport"
)

// MakeCleanRequest builds the request for ep and hands it to backend.
//
// A closed client fails with zombieSelf and an unreachable server with
// noInternetConnection. Those failures, and any failure building the
// URL or request, are delivered through backend.Deliver without
// backend.PerformRequest ever being called.
func MakeCleanRequest[T any, S server.Server, R reachability.Adapter](c *Client[S, R], ep endpoint.Endpoint[T, S], token string, backend transport.Backend[T]) {
	req, err := prepare(c, ep, token)
	if err != nil {
		backend.Deliver(handler.Result[T]{Err: err})
		return
	}

	backend.PerformRequest(req, ep.SuccessCodes())
}

// MakePublicRequest sends ep without credentials and calls callback
// with its result. Ending ctx cancels the request.
func MakePublicRequest[T any, S server.Server, R reachability.Adapter](ctx context.Context, c *Client[S, R], ep endpoint.Endpoint[T, S], callback func(handler.Result[T])) {
	MakeAuthorizedRequest(ctx, c, ep, "", callback)
}

// MakeAuthorizedRequest sends ep with token as bearer credentials and
// calls callback with its result. Ending ctx cancels the request.
func MakeAuthorizedRequest[T any, S server.Server, R reachability.Adapter](ctx context.Context, c *Client[S, R], ep endpoint.Endpoint[T, S], token string, callback func(handler.Result[T])) {
	state := handler.Closure(ep, callback)
	MakeCleanRequest(c, ep, token, newBackend(ctx, c, state))
}

// StreamRequest returns a cold producer: each start sends ep once and
// emits its value then completes, or fails. Ending the subscription's
// lifetime cancels the request.
func StreamRequest[T any, S server.Server, R reachability.Adapter](c *Client[S, R], ep endpoint.Endpoint[T, S], token string) stream.Producer[T] {
	return stream.NewProducer(func(observer stream.Observer[T], lifetime stream.Lifetime) {
		state := handler.AwaitingStreamObserver(ep)
		if err := state.BindObserver(observer, lifetime); err != nil {
			observer.SendError(err)
			return
		}

		MakeCleanRequest(c, ep, token, newBackend(lifetime.Context(), c, state))
	})
}

// PromiseRequest sends ep and returns a promise settled with its result.
// Ending ctx cancels the request.
func PromiseRequest[T any, S server.Server, R reachability.Adapter](ctx context.Context, c *Client[S, R], ep endpoint.Endpoint[T, S], token string) *promise.Promise[T] {
	p, resolve := promise.New[T]()

	state := handler.AwaitingPromise(ep)
	if err := state.BindPromise(func(r handler.Result[T]) { resolve(r.Get()) }); err != nil {
		var zero T
		resolve(zero, err)
		return p
	}

	MakeCleanRequest(c, ep, token, newBackend(ctx, c, state))

	return p
}

// Await sends ep through the native session and blocks until its
// result. It does not go through the configured backend.
func Await[T any, S server.Server, R reachability.Adapter](ctx context.Context, c *Client[S, R], ep endpoint.Endpoint[T, S], token string) (T, error) {
	var zero T

	req, err := prepare(c, ep, token)
	if err != nil {
		return zero, err
	}

	native := transport.NewNative(ctx, c.session, handler.NativeAsync(ep), c.deps())

	return native.Await(ctx, req, ep.SuccessCodes())
}

// prepare runs the checks every request goes through and builds it.
func prepare[T any, S server.Server, R reachability.Adapter](c *Client[S, R], ep endpoint.Endpoint[T, S], token string) (*endpoint.Request, *httperr.Error) {
	if c.owner.Err() != nil {
		return nil, httperr.New(httperr.KindZombieSelf, context.Cause(c.owner))
	}

	if c.reach.Status() == reachability.NotReachable {
		return nil, httperr.New(httperr.KindNoInternetConnection, nil)
	}

	u, err := ep.URL(c.desc)
	if err != nil {
		return nil, httperr.From(err)
	}

	req, err := ep.Request(u, c.timeout, c.codec, token)
	if err != nil {
		return nil, httperr.From(err)
	}

	return req, nil
}

func newBackend[T any, S server.Server, R reachability.Adapter](ctx context.Context, c *Client[S, R], state *handler.State[T, S]) transport.Backend[T] {
	if c.backend == BackendNative {
		return transport.NewNative(ctx, c.session, state, c.deps())
	}

	return transport.NewResty(ctx, c.resty, state, c.deps())
}
