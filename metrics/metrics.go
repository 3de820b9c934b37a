// Package metrics records request outcomes as Prometheus metrics.
package metrics

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "httpkit"

// OutcomeSuccess labels requests that delivered a value.
const OutcomeSuccess = "success"

// Recorder holds the request metrics. A nil *Recorder records nothing.
type Recorder struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	inFlight *prometheus.GaugeVec
}

// New creates the request metrics and registers them on reg.
func New(reg prometheus.Registerer) (*Recorder, error) {
	if reg == nil {
		return nil, errors.New("registerer must not be nil")
	}

	r := &Recorder{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Requests completed, by backend, method and outcome.",
		}, []string{"backend", "method", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Time from issuing a request to its result.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"backend", "method"}),
		inFlight: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "requests_in_flight",
			Help:      "Requests currently awaiting a response.",
		}, []string{"backend"}),
	}

	for _, c := range []prometheus.Collector{r.requests, r.duration, r.inFlight} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("registering collector: %w", err)
		}
	}

	return r, nil
}

// Start records the start of a request and returns the func recording
// its outcome. The returned func must be called exactly once.
func (r *Recorder) Start(backend, method string) func(outcome string) {
	if r == nil {
		return func(string) {}
	}

	start := time.Now()
	r.inFlight.WithLabelValues(backend).Inc()

	return func(outcome string) {
		r.inFlight.WithLabelValues(backend).Dec()
		r.duration.WithLabelValues(backend, method).Observe(time.Since(start).Seconds())
		r.requests.WithLabelValues(backend, method, outcome).Inc()
	}
}
