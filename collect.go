package gocollect

import "context"

// CollectSlice returns an accumulator that collects elements into a slice.
func CollectSlice[T any]() AccumulatorFunc[T, []T] {
	return func(_ context.Context, _ context.CancelCauseFunc, elem T, _ uint64, acc []T) []T {
		return append(acc, elem)
	}
}

// CollectGroup returns an accumulator that collects elements into a group map.
// Elements are grouped into slices according to key, keeping their order within a group.
func CollectGroup[T any, K comparable, V any](key MapperFunc[T, K], value MapperFunc[T, V]) AccumulatorFunc[T, map[K][]V] {
	return func(ctx context.Context, cancel context.CancelCauseFunc, elem T, index uint64, acc map[K][]V) map[K][]V {
		key := key(ctx, cancel, elem, index)
		acc[key] = append(acc[key], value(ctx, cancel, elem, index))

		return acc
	}
}

// CollectPartition returns an accumulator that collects elements into a partition map.
// Elements are grouped into slices according to whether they match sel.
func CollectPartition(sel Selector) AccumulatorFunc[any, map[bool][]any] {
	return CollectGroup(MapperFunc[any, bool](SelectorPredicate(sel)), Identity[any]())
}
