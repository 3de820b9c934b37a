package transport

import (
	"context"
	"net/http"

	"github.com/go-resty/resty/v2"

	"github.com/adamwoolhether/httpkit/endpoint"
	"github.com/adamwoolhether/httpkit/handler"
	"github.com/adamwoolhether/httpkit/server"
)

// BackendResty names the resty backend in logs, spans and metrics.
const BackendResty = "resty"

// Resty performs requests with a *resty.Client.
type Resty[T any, S server.Server] struct {
	adapter[T, S]
	client *resty.Client
}

// NewResty returns an adapter sending one request through client and
// delivering its result to state. Ending ctx cancels the request.
func NewResty[T any, S server.Server](ctx context.Context, client *resty.Client, state *handler.State[T, S], deps Deps) *Resty[T, S] {
	r := Resty[T, S]{client: client}
	r.setup(ctx, BackendResty, state, deps)

	return &r
}

// PerformRequest implements [Backend].
func (r *Resty[T, S]) PerformRequest(req *endpoint.Request, successCodes []int) {
	r.perform(req, successCodes, r.roundTrip)
}

func (r *Resty[T, S]) roundTrip(ctx context.Context, req *endpoint.Request, header http.Header) (*response, error) {
	rr := r.client.R().
		SetContext(ctx).
		SetHeaderMultiValues(header)

	if len(req.Body) > 0 {
		rr.SetBody(req.Body)
	}

	resp, err := rr.Execute(req.Method, req.URL.String())
	if err != nil {
		return nil, err
	}

	if resp == nil || resp.RawResponse == nil {
		return nil, nil
	}

	return &response{status: resp.StatusCode(), body: resp.Body()}, nil
}
