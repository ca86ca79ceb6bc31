package gocollect

import (
	"context"
)

// ProducerFunc returns a channel of elements for a stream.
// Errors are reported by canceling the stream's context with the failure as its cause.
//
// The producers and operators of this package are demand-driven: a stage only asks its
// upstream producer for an element once its own consumer has asked for one.
type ProducerFunc[T any] func(ctx context.Context, cancel context.CancelCauseFunc) <-chan T

// demandKey is the context key of the channel a consumer asks for elements through.
type demandKey struct{}

// withDemand returns ctx carrying a new demand channel, for the upstream producer of a stage.
func withDemand(ctx context.Context) (context.Context, chan struct{}) {
	demand := make(chan struct{}, 1)
	return context.WithValue(ctx, demandKey{}, demand), demand
}

// awaitDemand blocks until the consumer of ctx asks for an element.
// A consumer that does not take part in the protocol is always asking.
// It returns false once ctx is done.
func awaitDemand(ctx context.Context) bool {
	demand, _ := ctx.Value(demandKey{}).(chan struct{})
	if demand == nil {
		return !contextDone(ctx)
	}

	select {
	case <-demand:
		return true

	case <-ctx.Done():
		return false
	}
}

// pull asks for one element on demand, then receives it from ch.
// An outstanding request is not repeated.
func pull[T any](demand chan struct{}, ch <-chan T) (T, bool) {
	select {
	case demand <- struct{}{}:
	default:
	}

	elem, ok := <-ch

	return elem, ok
}

// ProduceSlice returns a producer that produces the elements of the given slices, in order.
func ProduceSlice[T any](slices ...[]T) ProducerFunc[T] {
	return func(ctx context.Context, _ context.CancelCauseFunc) <-chan T {
		outCh := make(chan T)

		go func() {
			defer close(outCh)

			for _, slice := range slices {
				for _, elem := range slice {
					if !awaitDemand(ctx) {
						return
					}

					select {
					case outCh <- elem:

					case <-ctx.Done():
						return
					}
				}
			}
		}()

		return outCh
	}
}

// Stream returns a producer of the emissions of w that have not been resolved yet.
// The walk is stepped once per element asked for, exactly like a pull of Walk.Iter, and
// never ahead of demand when consumed through the operators of this package. A consumer
// ranging over the channel directly causes one emission to be stepped ahead.
// If the walk fails, the stream's context is canceled with the failure.
func (w *Walk) Stream() ProducerFunc[any] {
	return func(ctx context.Context, cancel context.CancelCauseFunc) <-chan any {
		outCh := make(chan any)

		go func() {
			defer close(outCh)

			if !awaitDemand(ctx) {
				return
			}

			for v, err := range w.Iter(ctx) {
				if err != nil {
					if !contextDone(ctx) {
						cancel(err)
					}

					return
				}

				select {
				case outCh <- v:

				case <-ctx.Done():
					return
				}

				if !awaitDemand(ctx) {
					return
				}
			}
		}()

		return outCh
	}
}
