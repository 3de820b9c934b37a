// Package httpkit exposes the client builders.
package httpkit

import (
	"fmt"
	"time"

	"github.com/adamwoolhether/httpkit/reachability"
	"github.com/adamwoolhether/httpkit/restclient"
	"github.com/adamwoolhether/httpkit/server"
)

// NewClient instantiates a new client for srv, observing its
// reachability with reach.
func NewClient[S server.Server, R reachability.Adapter](srv S, reach R, opts ...restclient.Option) (*restclient.Client[S, R], error) {
	return restclient.New(srv, reach, opts...)
}

// NewMonitoredClient instantiates a new client for srv whose
// reachability is probed every interval.
func NewMonitoredClient[S server.Server](srv S, interval time.Duration, opts ...restclient.Option) (*restclient.Client[S, *reachability.Monitor], error) {
	m, err := reachability.NewMonitor(srv.Description(), reachability.WithInterval(interval))
	if err != nil {
		return nil, fmt.Errorf("creating monitor: %w", err)
	}

	return restclient.New(srv, m, opts...)
}
