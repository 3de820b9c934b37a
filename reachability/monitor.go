package reachability

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/adamwoolhether/httpkit/dispatch"
	"github.com/adamwoolhether/httpkit/server"
)

const (
	defaultInterval     = 30 * time.Second
	defaultProbeTimeout = 5 * time.Second
)

type options struct {
	httpClient   *http.Client
	logger       *slog.Logger
	interval     time.Duration
	probeTimeout time.Duration
	retries      int
}

// Option configures a [Monitor].
type Option func(*options) error

// WithInterval sets the time between probes.
func WithInterval(d time.Duration) Option {
	return func(o *options) error {
		if d <= 0 {
			return errors.New("interval must be positive")
		}
		o.interval = d

		return nil
	}
}

// WithProbeTimeout bounds a single probe, retries included.
func WithProbeTimeout(d time.Duration) Option {
	return func(o *options) error {
		if d <= 0 {
			return errors.New("probe timeout must be positive")
		}
		o.probeTimeout = d

		return nil
	}
}

// WithRetries sets how often a failed probe is retried before the host
// is reported unreachable.
func WithRetries(n int) Option {
	return func(o *options) error {
		if n < 0 {
			return errors.New("retries must not be negative")
		}
		o.retries = n

		return nil
	}
}

// WithHTTPClient sets the client probes are sent with.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) error {
		if c == nil {
			return errors.New("http client must not be nil")
		}
		o.httpClient = c

		return nil
	}
}

// WithLogger sets the monitor's logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) error {
		if l == nil {
			return errors.New("logger must not be nil")
		}
		o.logger = l

		return nil
	}
}

// Monitor observes a host by periodically sending it a HEAD request.
// Any HTTP response, whatever its status, counts as reachable.
//
// Link types cannot be told apart by probing, so a reachable host is
// always reported as [ReachableEthernetOrWiFi].
type Monitor struct {
	client       *retryablehttp.Client
	target       string
	interval     time.Duration
	probeTimeout time.Duration
	logger       *slog.Logger

	mu     sync.Mutex
	status Status
	cancel context.CancelFunc
	done   chan struct{}
}

// NewMonitor returns a monitor probing the scheme and host of desc.
func NewMonitor(desc server.Description, optFns ...Option) (*Monitor, error) {
	o := options{
		httpClient:   &http.Client{},
		logger:       slog.Default(),
		interval:     defaultInterval,
		probeTimeout: defaultProbeTimeout,
		retries:      1,
	}

	for _, fn := range optFns {
		if err := fn(&o); err != nil {
			return nil, fmt.Errorf("applying option: %w", err)
		}
	}

	rc := retryablehttp.NewClient()
	rc.HTTPClient = o.httpClient
	rc.Logger = o.logger
	rc.RetryMax = o.retries
	rc.RetryWaitMin = 50 * time.Millisecond
	rc.RetryWaitMax = time.Second
	rc.CheckRetry = retryOnError
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler

	var target string
	if desc.Hostname != "" {
		target = desc.BaseURL()
	}

	m := Monitor{
		client:       rc,
		target:       target,
		interval:     o.interval,
		probeTimeout: o.probeTimeout,
		logger:       o.logger,
	}

	return &m, nil
}

// StartListening implements [Adapter]. It reports false when the
// monitor has no host to probe or is already listening.
func (m *Monitor) StartListening(q dispatch.Queue, onUpdate func(Status)) bool {
	if m.target == "" {
		return false
	}

	if q == nil {
		q = dispatch.Inline
	}
	if onUpdate == nil {
		onUpdate = func(Status) {}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cancel != nil {
		return false
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.done = make(chan struct{})

	go m.run(ctx, m.done, q, onUpdate)

	return true
}

// StopListening implements [Adapter]. The status goes back to Unknown.
func (m *Monitor) StopListening() {
	m.mu.Lock()
	cancel, done := m.cancel, m.done
	m.cancel, m.done = nil, nil
	m.mu.Unlock()

	if cancel == nil {
		return
	}

	cancel()
	<-done

	m.mu.Lock()
	m.status = Unknown
	m.mu.Unlock()
}

// Status implements [Adapter].
func (m *Monitor) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.status
}

func (m *Monitor) run(ctx context.Context, done chan struct{}, q dispatch.Queue, onUpdate func(Status)) {
	defer close(done)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		status := m.probe(ctx)
		if ctx.Err() != nil {
			return
		}

		m.mu.Lock()
		changed := status != m.status
		m.status = status
		m.mu.Unlock()

		if changed {
			m.logger.Info("reachability changed", "target", m.target, "status", status.String())
			q.Dispatch(func() { onUpdate(status) })
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (m *Monitor) probe(ctx context.Context) Status {
	ctx, cancel := context.WithTimeout(ctx, m.probeTimeout)
	defer cancel()

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodHead, m.target, nil)
	if err != nil {
		m.logger.Error("building probe", "target", m.target, "error", err)
		return NotReachable
	}

	resp, err := m.client.Do(req)
	if err != nil {
		m.logger.Debug("probe failed", "target", m.target, "error", err)
		return NotReachable
	}

	if err := resp.Body.Close(); err != nil {
		m.logger.Error("failed to close response body", "error", err)
	}

	return ReachableEthernetOrWiFi
}

// retryOnError retries transport errors only: any response proves the
// host reachable.
func retryOnError(ctx context.Context, _ *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}

	return err != nil, nil
}
