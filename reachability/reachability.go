// Package reachability reports whether the network path to a server is
// usable, and how.
package reachability

import (
	"github.com/adamwoolhether/httpkit/dispatch"
)

// Status is the reachability of a host.
type Status uint8

const (
	// Unknown is reported until a first observation was made.
	Unknown Status = iota
	NotReachable
	ReachableEthernetOrWiFi
	ReachableCellular
)

func (s Status) String() string {
	switch s {
	case NotReachable:
		return "not-reachable"
	case ReachableEthernetOrWiFi:
		return "reachable-ethernet-or-wifi"
	case ReachableCellular:
		return "reachable-cellular"
	default:
		return "unknown"
	}
}

// IsReachable reports whether the host can be reached over any link.
func (s Status) IsReachable() bool {
	return s == ReachableEthernetOrWiFi || s == ReachableCellular
}

// Adapter observes the reachability of one host.
type Adapter interface {
	// StartListening begins observing and calls onUpdate on q whenever
	// the status changes. It reports false when listening could not start.
	StartListening(q dispatch.Queue, onUpdate func(Status)) bool
	// StopListening ends observation. Calling it when not listening is a no-op.
	StopListening()
	// Status returns the last observed status.
	Status() Status
}

// Noop never observes anything: it cannot start listening and always
// reports Unknown.
type Noop struct{}

func (Noop) StartListening(dispatch.Queue, func(Status)) bool { return false }
func (Noop) StopListening()                                   {}
func (Noop) Status() Status                                   { return Unknown }
