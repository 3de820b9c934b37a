package restclient

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/adamwoolhether/httpkit/codec"
	"github.com/adamwoolhether/httpkit/dispatch"
	"github.com/adamwoolhether/httpkit/metrics"
	"github.com/adamwoolhether/httpkit/throttle"
)

// Option is a functional option for configuring a [Client] via [New].
type Option func(*options) error
type options struct {
	client    *http.Client
	rt        http.RoundTripper
	timeout   time.Duration
	userAgent string
	throttle  *throttle.Config
	logger    *slog.Logger
	codec     codec.Codec
	backend   Backend
	queue     dispatch.Queue
	tracer    trace.Tracer
	metrics   *metrics.Recorder
}

// WithHTTPClient bases the client's session on a copy of hc. Its
// transport is wrapped and its timeout replaced on the copy only.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) error {
		if hc == nil {
			return errors.New("client must not be nil")
		}
		o.client = hc
		return nil
	}
}

// WithTransport sets a custom [http.RoundTripper] as the base transport.
func WithTransport(rt http.RoundTripper) Option {
	return func(o *options) error {
		if rt == nil {
			return errors.New("transport must not be nil")
		}
		o.rt = rt
		return nil
	}
}

// WithTimeout sets the timeout applied to every request.
func WithTimeout(d time.Duration) Option {
	return func(o *options) error {
		if d <= 0 {
			return errors.New("timeout must be positive")
		}
		o.timeout = d
		return nil
	}
}

// WithUserAgent adds a persistent User-Agent header to all outgoing requests.
func WithUserAgent(header string) Option {
	return func(o *options) error {
		o.userAgent = header
		return nil
	}
}

// WithThrottle enables token-bucket rate limiting with the given requests per second and burst capacity.
func WithThrottle(rps, burst int) Option {
	return func(o *options) error {
		cfg := throttle.Config{RPS: rps, Burst: burst}
		if err := cfg.Validate(); err != nil {
			return err
		}
		o.throttle = &cfg
		return nil
	}
}

// WithLogger injects a custom [slog.Logger] into the [Client].
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) error {
		if logger == nil {
			return errors.New("logger must not be nil")
		}
		o.logger = logger
		return nil
	}
}

// WithCodec sets the codec encoding request bodies and decoding responses.
func WithCodec(c codec.Codec) Option {
	return func(o *options) error {
		if c == nil {
			return errors.New("codec must not be nil")
		}
		o.codec = c
		return nil
	}
}

// WithBackend selects the transport of the non-blocking request families.
func WithBackend(b Backend) Option {
	return func(o *options) error {
		switch b {
		case BackendResty, BackendNative:
			o.backend = b
			return nil
		default:
			return fmt.Errorf("unknown backend %q", b)
		}
	}
}

// WithCallbackQueue sets the queue results and reachability updates are
// delivered on. Results are delivered inline by default.
func WithCallbackQueue(q dispatch.Queue) Option {
	return func(o *options) error {
		if q == nil {
			return errors.New("queue must not be nil")
		}
		o.queue = q
		return nil
	}
}

// WithTracer sets the tracer spans are started with.
func WithTracer(t trace.Tracer) Option {
	return func(o *options) error {
		if t == nil {
			return errors.New("tracer must not be nil")
		}
		o.tracer = t
		return nil
	}
}

// WithMetrics records request outcomes on r.
func WithMetrics(r *metrics.Recorder) Option {
	return func(o *options) error {
		if r == nil {
			return errors.New("metrics recorder must not be nil")
		}
		o.metrics = r
		return nil
	}
}

// WithConfig applies cfg. Options given after it override its values.
func WithConfig(cfg Config) Option {
	return func(o *options) error {
		if err := cfg.Validate(); err != nil {
			return err
		}

		o.timeout = cfg.Timeout
		o.backend = cfg.Backend
		if cfg.UserAgent != "" {
			o.userAgent = cfg.UserAgent
		}
		if cfg.ThrottleRPS > 0 {
			o.throttle = &throttle.Config{RPS: cfg.ThrottleRPS, Burst: cfg.ThrottleBurst}
		}

		return nil
	}
}
