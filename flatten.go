package gocollect

import (
	"context"
	"iter"
)

// Sequence is implemented by values that Flatten descends into:
// List, *Walk, GeneratorFunc and *Generator.
type Sequence interface {
	Elements(ctx context.Context) iter.Seq2[any, error]
}

// List is a plain sequence of values. Flatten treats a []any as a List.
type List []any

// Elements implements Sequence.
func (l List) Elements(_ context.Context) iter.Seq2[any, error] {
	return func(yield func(any, error) bool) {
		for _, v := range l {
			if !yield(v, nil) {
				return
			}
		}
	}
}

// Flatten returns an iterator over the leaves of source, each resolved using r.
//
// A source that is not a Sequence is a single leaf, unless it resolves to one. The
// elements of a Sequence are flattened in turn, so nested sequences are descended into. When source is a List and
// r is a producer, each element is instead resolved through r as a one-shot producer,
// without descending into it.
//
// Iteration stops after the first failure, which is yielded with a nil value.
func Flatten(ctx context.Context, source any, r Resolver) iter.Seq2[any, error] {
	return func(yield func(any, error) bool) {
		flatten(ctx, source, r, yield)
	}
}

// flatten returns false once the consumer has stopped or a failure was yielded.
func flatten(ctx context.Context, source any, r Resolver, yield func(any, error) bool) bool {
	if items, ok := source.([]any); ok {
		source = List(items)
	}

	switch src := source.(type) {
	case List:
		if isProducer(r) {
			for _, item := range src {
				if !resolveLeaf(ctx, item, r, yield) {
					return false
				}
			}

			return true
		}

		for _, item := range src {
			if !flatten(ctx, item, r, yield) {
				return false
			}
		}

		return true

	case Sequence:
		for item, err := range src.Elements(ctx) {
			if err != nil {
				yield(nil, err)
				return false
			}

			if !flatten(ctx, item, r, yield) {
				return false
			}
		}

		return true
	}

	// a leaf that resolves to a sequence is flattened in turn
	v, err := Resolve(ctx, source, nil)
	if err != nil {
		yield(nil, err)
		return false
	}

	switch v.(type) {
	case []any, Sequence:
		return flatten(ctx, v, r, yield)
	}

	return resolveLeaf(ctx, v, r, yield)
}

func resolveLeaf(ctx context.Context, leaf any, r Resolver, yield func(any, error) bool) bool {
	v, err := Resolve(ctx, leaf, r)
	if err != nil {
		yield(nil, err)
		return false
	}

	return yield(v, nil)
}

// isProducer reports whether r resolves values by running a producer.
func isProducer(r Resolver) bool {
	switch r.(type) {
	case GeneratorFunc, AsyncGeneratorFunc, *Generator:
		return true
	}

	return false
}
