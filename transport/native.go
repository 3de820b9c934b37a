package transport

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/adamwoolhether/httpkit/endpoint"
	"github.com/adamwoolhether/httpkit/handler"
	"github.com/adamwoolhether/httpkit/server"
)

// BackendNative names the net/http backend in logs, spans and metrics.
const BackendNative = "native"

// Native performs requests with the client's *http.Client session.
type Native[T any, S server.Server] struct {
	adapter[T, S]
	session *http.Client
}

// NewNative returns an adapter sending one request through session and
// delivering its result to state. Ending ctx cancels the request.
func NewNative[T any, S server.Server](ctx context.Context, session *http.Client, state *handler.State[T, S], deps Deps) *Native[T, S] {
	n := Native[T, S]{session: session}
	n.setup(ctx, BackendNative, state, deps)

	return &n
}

// PerformRequest implements [Backend].
func (n *Native[T, S]) PerformRequest(req *endpoint.Request, successCodes []int) {
	n.perform(req, successCodes, n.roundTrip)
}

// Await sends req and blocks until its result, without going through
// the adapter's state. The returned error is always an *httperr.Error.
func (n *Native[T, S]) Await(ctx context.Context, req *endpoint.Request, successCodes []int) (T, error) {
	if set, state := n.deps.InFlight, n.state; set != nil && state != nil {
		set.Add(state)
		defer set.Remove(state)
	}

	v, err := execute[T](ctx, n.deps, n.backend, req, successCodes, n.roundTrip)
	if err != nil {
		return v, err
	}

	return v, nil
}

func (n *Native[T, S]) roundTrip(ctx context.Context, req *endpoint.Request, header http.Header) (*response, error) {
	hr, err := req.HTTPRequest(ctx)
	if err != nil {
		return nil, err
	}
	hr.Header = header

	resp, err := n.session.Do(hr)
	if err != nil {
		return nil, fmt.Errorf("exec http do: %w", err)
	}
	if resp == nil {
		return nil, nil
	}

	defer func() {
		if err := resp.Body.Close(); err != nil {
			n.deps.Logger.Error("failed to close response body", "error", err)
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}

	return &response{status: resp.StatusCode, body: body}, nil
}
