// Package dispatch provides the queues completion handlers run on.
package dispatch

import (
	"sync"
)

// Queue runs submitted funcs.
type Queue interface {
	Dispatch(fn func())
}

// Inline runs funcs immediately on the calling goroutine.
var Inline Queue = inline{}

type inline struct{}

func (inline) Dispatch(fn func()) { fn() }

// Serial runs funcs one at a time, in submission order, on a single
// goroutine. It plays the role of an application's main queue.
type Serial struct {
	mu     sync.Mutex
	cond   *sync.Cond
	queue  []func()
	closed bool
	done   chan struct{}
}

// NewSerial starts a serial queue. Call Close to stop it.
func NewSerial() *Serial {
	s := &Serial{done: make(chan struct{})}
	s.cond = sync.NewCond(&s.mu)

	go s.run()

	return s
}

// Dispatch enqueues fn. Once the queue is closed fn runs inline, so
// submitted work is never lost.
func (s *Serial) Dispatch(fn func()) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		fn()
		return
	}

	s.queue = append(s.queue, fn)
	s.mu.Unlock()
	s.cond.Signal()
}

// Close drains pending funcs and stops the queue's goroutine.
func (s *Serial) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		<-s.done
		return
	}
	s.closed = true
	s.mu.Unlock()
	s.cond.Signal()

	<-s.done
}

func (s *Serial) run() {
	defer close(s.done)

	for {
		s.mu.Lock()
		for len(s.queue) == 0 && !s.closed {
			s.cond.Wait()
		}
		if len(s.queue) == 0 && s.closed {
			s.mu.Unlock()
			return
		}

		fn := s.queue[0]
		s.queue[0] = nil
		s.queue = s.queue[1:]
		s.mu.Unlock()

		fn()
	}
}
