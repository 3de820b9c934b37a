// Package stream is a minimal cold reactive stream: a [Producer] does no
// work until it is started with an [Observer], and the work is tied to
// the [Lifetime] of that subscription.
package stream

import (
	"context"
	"errors"
	"sync"
)

// ErrCompletedEmpty is returned by [Producer.First] when the stream
// completes without sending a value.
var ErrCompletedEmpty = errors.New("stream completed without a value")

// Observer receives the events of one subscription.
type Observer[T any] interface {
	SendValue(value T)
	SendError(err error)
	SendCompleted()
}

// ObserverFuncs adapts plain functions to an [Observer]. Nil funcs are skipped.
type ObserverFuncs[T any] struct {
	Value     func(T)
	Error     func(error)
	Completed func()
}

func (o ObserverFuncs[T]) SendValue(value T) {
	if o.Value != nil {
		o.Value(value)
	}
}

func (o ObserverFuncs[T]) SendError(err error) {
	if o.Error != nil {
		o.Error(err)
	}
}

func (o ObserverFuncs[T]) SendCompleted() {
	if o.Completed != nil {
		o.Completed()
	}
}

// Lifetime is the span of one subscription. It ends when the context
// given to [Producer.Start] is done or the stream terminates.
type Lifetime struct {
	ctx context.Context
}

// NewLifetime returns a lifetime ending with ctx. A zero Lifetime never ends.
func NewLifetime(ctx context.Context) Lifetime {
	return Lifetime{ctx: ctx}
}

// Context returns a context that is cancelled when the lifetime ends.
func (l Lifetime) Context() context.Context {
	if l.ctx == nil {
		return context.Background()
	}

	return l.ctx
}

// Ended returns a channel closed when the lifetime ends.
func (l Lifetime) Ended() <-chan struct{} {
	return l.Context().Done()
}

// HasEnded reports whether the lifetime is over.
func (l Lifetime) HasEnded() bool {
	return l.ctx != nil && l.ctx.Err() != nil
}

// ObserveEnded runs fn once the lifetime ends. The returned func
// unregisters fn and reports whether it did so before fn ran.
func (l Lifetime) ObserveEnded(fn func()) (stop func() bool) {
	return context.AfterFunc(l.Context(), fn)
}

// Producer is a cold stream of T.
type Producer[T any] struct {
	start func(Observer[T], Lifetime)
}

// NewProducer returns a producer running start for every subscription.
func NewProducer[T any](start func(observer Observer[T], lifetime Lifetime)) Producer[T] {
	return Producer[T]{start: start}
}

// Start subscribes observer. The subscription's lifetime ends when ctx
// is done, or once a terminal event (error or completed) was sent. After
// that no further events reach observer.
func (p Producer[T]) Start(ctx context.Context, observer Observer[T]) Lifetime {
	ctx, cancel := context.WithCancel(ctx)
	lifetime := Lifetime{ctx: ctx}

	p.start(&terminating[T]{next: observer, lifetime: lifetime, end: cancel}, lifetime)

	return lifetime
}

// First starts the producer and blocks until its first value, an error,
// or the end of ctx.
func (p Producer[T]) First(ctx context.Context) (T, error) {
	type event struct {
		value T
		err   error
	}

	ch := make(chan event, 1)
	var once sync.Once
	send := func(ev event) {
		once.Do(func() { ch <- ev })
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p.Start(ctx, ObserverFuncs[T]{
		Value:     func(v T) { send(event{value: v}) },
		Error:     func(err error) { send(event{err: err}) },
		Completed: func() { send(event{err: ErrCompletedEmpty}) },
	})

	select {
	case ev := <-ch:
		return ev.value, ev.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// terminating drops events after a terminal one or after the lifetime
// ended, and ends the lifetime on termination.
type terminating[T any] struct {
	mu       sync.Mutex
	next     Observer[T]
	lifetime Lifetime
	end      context.CancelFunc
	done     bool
}

func (o *terminating[T]) SendValue(value T) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.done || o.lifetime.HasEnded() {
		return
	}
	o.next.SendValue(value)
}

func (o *terminating[T]) SendError(err error) {
	o.terminate(func() { o.next.SendError(err) })
}

func (o *terminating[T]) SendCompleted() {
	o.terminate(o.next.SendCompleted)
}

func (o *terminating[T]) terminate(fn func()) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.done || o.lifetime.HasEnded() {
		return
	}
	o.done = true
	fn()
	o.end()
}
