// Package restclient is the REST client façade: it owns the transport
// session, codec and reachability adapter for one server, and exposes
// the closure, stream, promise and blocking request families.
//
// Every family funnels into [MakeCleanRequest], which builds the request
// from an endpoint and hands it to a transport backend. Request funcs
// are package level since Go methods cannot take type parameters.
package restclient

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/adamwoolhether/httpkit/codec"
	"github.com/adamwoolhether/httpkit/dispatch"
	"github.com/adamwoolhether/httpkit/handler"
	"github.com/adamwoolhether/httpkit/metrics"
	"github.com/adamwoolhether/httpkit/reachability"
	"github.com/adamwoolhether/httpkit/server"
	"github.com/adamwoolhether/httpkit/throttle"
	"github.com/adamwoolhether/httpkit/transport"
)

// DefaultTimeout bounds every request unless overridden.
const DefaultTimeout = 60 * time.Second

// ErrClosed is the cause of requests cut short by [Client.Close].
var ErrClosed = errors.New("client closed")

// Backend selects the transport used by the closure, stream and
// promise families. The blocking family always uses the native session.
type Backend string

const (
	BackendResty  Backend = transport.BackendResty
	BackendNative Backend = transport.BackendNative
)

// Client sends requests to the server S. Its reachability is observed
// by R.
type Client[S server.Server, R reachability.Adapter] struct {
	server  S
	desc    server.Description
	reach   R
	session *http.Client
	resty   *resty.Client
	backend Backend
	codec   codec.Codec
	queue   dispatch.Queue
	timeout time.Duration
	logger  *slog.Logger
	tracer  trace.Tracer
	metrics *metrics.Recorder

	inFlight  *handler.Set
	owner     context.Context
	closeOnce sync.Once
	close     context.CancelCauseFunc
}

// New builds a client for srv. It starts reach listening; a failure to
// do so is logged and leaves the status Unknown, it is not an error.
func New[S server.Server, R reachability.Adapter](srv S, reach R, optFns ...Option) (*Client[S, R], error) {
	desc := srv.Description()
	if err := desc.Validate(); err != nil {
		return nil, err
	}

	opts := options{
		backend: BackendResty,
		timeout: DefaultTimeout,
	}
	for _, opt := range optFns {
		if err := opt(&opts); err != nil {
			return nil, fmt.Errorf("applying client option: %w", err)
		}
	}

	c := Client[S, R]{
		server:   srv,
		desc:     desc,
		reach:    reach,
		backend:  opts.backend,
		codec:    opts.codec,
		queue:    opts.queue,
		timeout:  opts.timeout,
		logger:   opts.logger,
		tracer:   opts.tracer,
		metrics:  opts.metrics,
		inFlight: handler.NewSet(),
	}

	if c.codec == nil {
		c.codec = codec.Std()
	}
	if c.queue == nil {
		c.queue = dispatch.Inline
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.tracer == nil {
		c.tracer = noop.NewTracerProvider().Tracer("httpkit")
	}

	// The session is a copy so the caller's client, http.DefaultClient
	// included, is never rewired.
	session := &http.Client{}
	if opts.client != nil {
		cp := *opts.client
		session = &cp
	}
	session.Timeout = c.timeout

	var rt http.RoundTripper
	switch {
	case opts.rt != nil:
		rt = opts.rt
	case session.Transport != nil:
		rt = session.Transport
	default:
		rt = http.DefaultTransport
	}
	if opts.userAgent != "" {
		rt = userAgent{value: opts.userAgent, base: rt}
	}
	if opts.throttle != nil {
		throttled, err := throttle.NewRoundTripper(*opts.throttle, func() *slog.Logger { return c.logger }, rt)
		if err != nil {
			return nil, fmt.Errorf("configuring throttle: %w", err)
		}
		rt = throttled
	}
	session.Transport = rt

	c.session = session
	c.resty = resty.NewWithClient(session).SetLogger(restyLogger{log: c.logger})
	c.owner, c.close = context.WithCancelCause(context.Background())

	listening := reach.StartListening(c.queue, func(s reachability.Status) {
		c.logger.Debug("reachability update", "host", desc.Host(), "status", s.String())
	})
	if !listening {
		c.logger.Warn("reachability listening did not start", "host", desc.Host())
	}

	return &c, nil
}

// Server returns the server the client talks to.
func (c *Client[S, R]) Server() S {
	return c.server
}

// Reachability returns the client's reachability adapter.
func (c *Client[S, R]) Reachability() R {
	return c.reach
}

// Close stops reachability and cancels requests in flight, which then
// fail with a zombie self error, as do requests made afterwards.
// Close is idempotent.
func (c *Client[S, R]) Close() {
	c.closeOnce.Do(func() {
		if n := c.inFlight.Count(); n > 0 {
			c.logger.Info("closing client with requests in flight", "host", c.desc.Host(), "in_flight", n)
		}

		c.close(ErrClosed)
		c.reach.StopListening()
	})
}

// InFlight returns the number of requests awaiting delivery.
func (c *Client[S, R]) InFlight() int {
	return c.inFlight.Count()
}

func (c *Client[S, R]) deps() transport.Deps {
	return transport.Deps{
		Codec:    c.codec,
		Queue:    c.queue,
		Logger:   c.logger,
		Tracer:   c.tracer,
		Metrics:  c.metrics,
		Owner:    c.owner,
		InFlight: c.inFlight,
	}
}

// userAgent is an http.RoundTripper, enabling the persistent User-Agent header.
type userAgent struct {
	value string
	base  http.RoundTripper
}

func (ua userAgent) RoundTrip(r *http.Request) (*http.Response, error) {
	cpy := r.Clone(r.Context())
	cpy.Header.Set("User-Agent", ua.value)
	return ua.base.RoundTrip(cpy)
}

// restyLogger routes resty's own log lines through slog.
type restyLogger struct {
	log *slog.Logger
}

func (l restyLogger) Errorf(format string, v ...any) { l.log.Error(fmt.Sprintf(format, v...)) }
func (l restyLogger) Warnf(format string, v ...any)  { l.log.Warn(fmt.Sprintf(format, v...)) }
func (l restyLogger) Debugf(format string, v ...any) { l.log.Debug(fmt.Sprintf(format, v...)) }
