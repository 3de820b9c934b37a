// Package transport performs requests against a pluggable backend and
// funnels each outcome through the request's [handler.State].
//
// Two backends exist: [Resty], built on github.com/go-resty/resty/v2,
// and [Native], built on the standard library's *http.Client. An
// adapter serves exactly one request: it delivers exactly one result
// and then drops its reference to the state.
package transport

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/adamwoolhether/httpkit/codec"
	"github.com/adamwoolhether/httpkit/dispatch"
	"github.com/adamwoolhether/httpkit/endpoint"
	"github.com/adamwoolhether/httpkit/handler"
	"github.com/adamwoolhether/httpkit/httperr"
	"github.com/adamwoolhether/httpkit/metrics"
	"github.com/adamwoolhether/httpkit/server"
)

// RequestIDHeader carries the id generated for every request sent.
const RequestIDHeader = "X-Request-Id"

const spanName = "httpkit.request"

var errReused = errors.New("adapter already performed a request")

// Backend performs one request and delivers its result.
type Backend[T any] interface {
	// PerformRequest issues req and returns immediately. The decoded
	// result is later delivered once through the adapter's state.
	PerformRequest(req *endpoint.Request, successCodes []int)
	// Deliver hands r to the state. Only the first call has an effect.
	Deliver(r handler.Result[T])
}

// Deps are the collaborators shared by the adapters of one client.
type Deps struct {
	Codec   codec.Codec
	Queue   dispatch.Queue
	Logger  *slog.Logger
	Tracer  trace.Tracer
	Metrics *metrics.Recorder
	// Owner ends when the owning client is closed. Requests in flight
	// at that point are cancelled and fail with a zombie self error.
	Owner context.Context
	// InFlight, when set, holds the states of requests awaiting delivery.
	InFlight *handler.Set
}

func (d Deps) withDefaults() Deps {
	if d.Codec == nil {
		d.Codec = codec.Std()
	}
	if d.Queue == nil {
		d.Queue = dispatch.Inline
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Tracer == nil {
		d.Tracer = noop.NewTracerProvider().Tracer("httpkit")
	}
	if d.Owner == nil {
		d.Owner = context.Background()
	}

	return d
}

// response is what a backend hands back: the status and full body.
// A nil response without error means the backend got no HTTP response.
type response struct {
	status int
	body   []byte
}

type roundTripFn func(ctx context.Context, req *endpoint.Request, header http.Header) (*response, error)

// adapter holds the delivery logic both backends share.
type adapter[T any, S server.Server] struct {
	backend   string
	ctx       context.Context
	deps      Deps
	state     *handler.State[T, S]
	once      sync.Once
	performed atomic.Bool
	tracked   bool
}

func (a *adapter[T, S]) setup(ctx context.Context, backend string, state *handler.State[T, S], deps Deps) {
	if ctx == nil {
		ctx = context.Background()
	}

	a.backend = backend
	a.ctx = ctx
	a.deps = deps.withDefaults()
	a.state = state

	// The native async state never reaches Deliver; Await tracks it itself.
	if a.deps.InFlight != nil && state != nil && state.Kind() != handler.KindNativeAsync {
		a.deps.InFlight.Add(state)
		a.tracked = true
	}
}

// Deliver dispatches r to the state on the configured queue. Only the
// first call has an effect.
func (a *adapter[T, S]) Deliver(r handler.Result[T]) {
	a.once.Do(func() {
		state := a.state
		a.state = nil

		if state == nil {
			return
		}
		if a.tracked {
			a.deps.InFlight.Remove(state)
		}

		a.deps.Queue.Dispatch(func() {
			if !state.Deliver(r) {
				a.deps.Logger.Debug("result not delivered", "backend", a.backend, "state", state.Kind().String(), "endpoint", state.Endpoint().String())
			}
		})
	})
}

func (a *adapter[T, S]) perform(req *endpoint.Request, successCodes []int, rt roundTripFn) {
	if !a.performed.CompareAndSwap(false, true) {
		a.deps.Logger.Error("perform request", "backend", a.backend, "error", errReused)
		return
	}

	go func() {
		v, err := execute[T](a.ctx, a.deps, a.backend, req, successCodes, rt)
		if err != nil {
			a.Deliver(handler.Result[T]{Err: err})
			return
		}

		a.Deliver(handler.Success(v))
	}()
}

// execute runs one request and turns its outcome into a value or an
// *httperr.Error. It blocks until the request finished.
func execute[T any](ctx context.Context, deps Deps, backend string, req *endpoint.Request, successCodes []int, rt roundTripFn) (T, *httperr.Error) {
	var zero T

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(deps.Owner, cancel)
	defer stop()

	if req.Timeout > 0 {
		var cancelTimeout context.CancelFunc
		ctx, cancelTimeout = context.WithTimeout(ctx, req.Timeout)
		defer cancelTimeout()
	}

	ctx, span := deps.Tracer.Start(ctx, spanName,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", req.Method),
			attribute.String("url.full", req.URL.String()),
			attribute.String("httpkit.backend", backend),
		),
	)
	defer span.End()

	requestID := uuid.NewString()
	header := req.Header.Clone()
	if header == nil {
		header = make(http.Header)
	}
	header.Set(RequestIDHeader, requestID)
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(header))

	log := deps.Logger.With("backend", backend, "method", req.Method, "url", req.URL.Redacted(), "request_id", requestID)
	record := deps.Metrics.Start(backend, req.Method)

	start := time.Now()
	v, err := func() (T, *httperr.Error) {
		resp, err := rt(ctx, req, header)

		if deps.Owner.Err() != nil {
			return zero, httperr.New(httperr.KindZombieSelf, context.Cause(deps.Owner))
		}

		switch {
		case err != nil:
			return zero, httperr.From(err)
		case resp == nil:
			return zero, httperr.New(httperr.KindNotHTTPResponse, nil)
		}

		span.SetAttributes(attribute.Int("http.response.status_code", resp.status))

		if !slices.Contains(successCodes, resp.status) {
			return zero, httperr.StatusCode(resp.status, resp.body)
		}

		return decode[T](deps.Codec, resp.body)
	}()

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Kind.Name())
		record(err.Kind.Name())
		log.Warn("request failed", "since", time.Since(start).String(), "kind", err.Kind.Name(), "error", err)

		return zero, err
	}

	record(metrics.OutcomeSuccess)
	log.Debug("request completed", "since", time.Since(start).String())

	return v, nil
}

func decode[T any](c codec.Codec, body []byte) (T, *httperr.Error) {
	var v T

	if _, ok := any(&v).(*handler.NoContent); ok && len(body) == 0 {
		return v, nil
	}

	if err := c.Unmarshal(body, &v); err != nil {
		return v, httperr.New(httperr.KindJSONSerialization, err)
	}

	return v, nil
}
