package gocollect

import (
	"context"
	"sync"
	"time"
)

// Deferred is a value that is not available yet.
// Await blocks until the value is available or ctx is done.
type Deferred interface {
	Await(ctx context.Context) (any, error)
}

// Thunk is a zero-argument callable. Resolve replaces a Thunk by the value it returns.
type Thunk func() (any, error)

// Future is a Deferred that settles exactly once.
// Awaiting a settled Future returns the same value or error every time.
type Future struct {
	done  chan struct{}
	once  sync.Once
	value any
	err   error
}

// NewFuture returns an unsettled Future, and functions to fulfill or reject it.
// Only the first call to either function has an effect.
func NewFuture() (*Future, func(any), func(error)) {
	f := &Future{
		done: make(chan struct{}),
	}

	return f, func(v any) { f.settle(v, nil) }, func(err error) { f.settle(nil, err) }
}

// Go returns a Future settled with the result of calling fn in a new goroutine.
func Go(ctx context.Context, fn func(ctx context.Context) (any, error)) *Future {
	f, resolve, reject := NewFuture()

	go func() {
		v, err := fn(ctx)
		if err != nil {
			reject(err)
			return
		}

		resolve(v)
	}()

	return f
}

// Resolved returns a Future fulfilled with v.
func Resolved(v any) *Future {
	f, resolve, _ := NewFuture()
	resolve(v)

	return f
}

// Rejected returns a Future rejected with err.
func Rejected(err error) *Future {
	f, _, reject := NewFuture()
	reject(err)

	return f
}

// Sleep returns a Future fulfilled with v once d has elapsed.
// If v is nil, the Future is fulfilled with Record{"sleep": d}.
func Sleep(d time.Duration, v any) *Future {
	if v == nil {
		v = Record{"sleep": d}
	}

	f, resolve, _ := NewFuture()

	time.AfterFunc(d, func() {
		resolve(v)
	})

	return f
}

// Await implements Deferred.
func (f *Future) Await(ctx context.Context) (any, error) {
	select {
	case <-f.done:
		return f.value, f.err

	case <-ctx.Done():
		return nil, context.Cause(ctx)
	}
}

// Settled reports whether f has been fulfilled or rejected.
func (f *Future) Settled() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

func (f *Future) settle(v any, err error) {
	f.once.Do(func() {
		f.value = v
		f.err = err
		close(f.done)
	})
}
