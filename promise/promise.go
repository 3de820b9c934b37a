// Package promise provides a single-shot promise: a value or an error
// that is settled exactly once and can be awaited any number of times.
package promise

import (
	"context"
	"sync"
)

// Promise is settled by the resolver returned from [New].
type Promise[T any] struct {
	once  sync.Once
	done  chan struct{}
	value T
	err   error
}

// Resolver settles a promise. Only the first call has an effect; it
// reports whether the call settled the promise.
type Resolver[T any] func(value T, err error) bool

// New returns an unsettled promise and its resolver.
func New[T any]() (*Promise[T], Resolver[T]) {
	p := &Promise[T]{done: make(chan struct{})}

	resolve := func(value T, err error) bool {
		settled := false
		p.once.Do(func() {
			p.value, p.err = value, err
			settled = true
			close(p.done)
		})

		return settled
	}

	return p, resolve
}

// Done returns a channel closed once the promise is settled.
func (p *Promise[T]) Done() <-chan struct{} {
	return p.done
}

// Await blocks until the promise is settled or ctx ends.
func (p *Promise[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-p.done:
		return p.value, p.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Then runs fn in its own goroutine once the promise is settled.
func (p *Promise[T]) Then(fn func(value T, err error)) {
	go func() {
		<-p.done
		fn(p.value, p.err)
	}()
}
