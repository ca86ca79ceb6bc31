package gocollect

import (
	"context"
	"errors"
)

// Function returns the result of applying an operation to elem.
type Function[T any, U any] func(elem T) U

// MapperFunc maps element elem to type U.
// The index is the 0-based index of elem, in the order produced by the upstream producer.
type MapperFunc[T any, U any] func(ctx context.Context, cancel context.CancelCauseFunc, elem T, index uint64) U

// PredicateFunc returns true if elem matches a predicate.
// The index is the 0-based index of elem, in the order produced by the upstream producer.
type PredicateFunc[T any] func(ctx context.Context, cancel context.CancelCauseFunc, elem T, index uint64) bool

// ErrLimitReached is the error used to short-circuit a stream by canceling its context to indicate that
// the maximum number of elements given to Limit has been reached.
var ErrLimitReached = errors.New("limit reached")

// FuncMapper returns a mapper that calls mapp for each element.
func FuncMapper[T any, U any](mapp Function[T, U]) MapperFunc[T, U] {
	return func(_ context.Context, _ context.CancelCauseFunc, elem T, _ uint64) U {
		return mapp(elem)
	}
}

// SelectorPredicate returns a predicate that matches the elements sel matches.
func SelectorPredicate(sel Selector) PredicateFunc[any] {
	match := Matcher(sel)

	return func(_ context.Context, _ context.CancelCauseFunc, elem any, _ uint64) bool {
		return match(elem)
	}
}

// Identity returns a mapper that returns the same element it receives.
func Identity[T any]() MapperFunc[T, T] {
	return func(_ context.Context, _ context.CancelCauseFunc, elem T, _ uint64) T {
		return elem
	}
}

// Map returns a producer that calls mapp for each element produced by prod, mapping it to type U.
func Map[T any, U any](prod ProducerFunc[T], mapp MapperFunc[T, U]) ProducerFunc[U] {
	return func(ctx context.Context, cancel context.CancelCauseFunc) <-chan U {
		prodCtx, demand := withDemand(ctx)

		ch := prod(prodCtx, cancel)

		outCh := make(chan U)

		go func() {
			defer close(outCh)

			index := uint64(0)

			for awaitDemand(ctx) {
				elem, ok := pull(demand, ch)
				if !ok {
					return
				}

				outElem := mapp(ctx, cancel, elem, index)

				if contextDone(ctx) {
					return
				}

				select {
				case outCh <- outElem:
					index++

				case <-ctx.Done():
					return
				}
			}
		}()

		return outCh
	}
}

// Filter returns a producer that only produces the elements of prod for which filter returns true.
func Filter[T any](prod ProducerFunc[T], filter PredicateFunc[T]) ProducerFunc[T] {
	return func(ctx context.Context, cancel context.CancelCauseFunc) <-chan T {
		prodCtx, demand := withDemand(ctx)

		ch := prod(prodCtx, cancel)

		outCh := make(chan T)

		go func() {
			defer close(outCh)

			index := uint64(0)

			for awaitDemand(ctx) {
				// pull until an element passes, to meet one demand
				var elem T

				for keep := false; !keep; {
					var ok bool

					elem, ok = pull(demand, ch)
					if !ok {
						return
					}

					keep = filter(ctx, cancel, elem, index)

					if contextDone(ctx) {
						return
					}

					index++
				}

				select {
				case outCh <- elem:

				case <-ctx.Done():
					return
				}
			}
		}()

		return outCh
	}
}

// FilterMatching returns a producer that only produces the elements of prod matching sel.
func FilterMatching(prod ProducerFunc[any], sel Selector) ProducerFunc[any] {
	return Filter(prod, SelectorPredicate(sel))
}

// Peek returns a producer that calls peek for each element produced by prod, in order, and produces the same elements.
func Peek[T any](prod ProducerFunc[T], peek ConsumerFunc[T]) ProducerFunc[T] {
	return Map(prod, func(ctx context.Context, cancel context.CancelCauseFunc, elem T, index uint64) T {
		peek(ctx, cancel, elem, index)
		return elem
	})
}

// Limit returns a producer that produces the same elements as prod, in order, up to max elements.
// Once max elements have been produced, prod's context is canceled with ErrLimitReached.
// prod is never asked for more than max elements, so a walk's stream is stepped at most max times.
func Limit[T any](prod ProducerFunc[T], max uint64) ProducerFunc[T] {
	return func(ctx context.Context, cancel context.CancelCauseFunc) <-chan T {
		prodCtx, cancelProd := context.WithCancelCause(ctx)
		prodCtx, demand := withDemand(prodCtx)

		ch := prod(prodCtx, cancel)

		outCh := make(chan T)

		go func() {
			defer cancelProd(nil)

			defer close(outCh)

			if max == 0 {
				cancelProd(ErrLimitReached)
				return
			}

			done := uint64(0)

			for awaitDemand(ctx) {
				elem, ok := pull(demand, ch)
				if !ok {
					return
				}

				select {
				case outCh <- elem:
					done++
					if done == max {
						cancelProd(ErrLimitReached)
						return
					}

				case <-ctx.Done():
					return
				}
			}
		}()

		return outCh
	}
}
