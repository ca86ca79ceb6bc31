package gocollect

import (
	"context"
)

// Resolver transforms a value once it is concrete.
// It is one of Key, Transform, DeferredTransform, or a producer: GeneratorFunc,
// AsyncGeneratorFunc or *Generator. A nil Resolver leaves values unchanged.
type Resolver interface {
	resolver()
}

// Transform maps a resolved value. Its result is returned as is and is not resolved again.
type Transform func(value any) (any, error)

// DeferredTransform is a resolver that is not available yet.
// Once awaited, a Resolver is used as such, a string as a Key, a func(any) (any, error)
// as a Transform, and anything else leaves the value unchanged.
type DeferredTransform struct {
	Deferred
}

func (Key) resolver()                {}
func (Transform) resolver()          {}
func (DeferredTransform) resolver()  {}
func (GeneratorFunc) resolver()      {}
func (AsyncGeneratorFunc) resolver() {}
func (*Generator) resolver()         {}

// Resolve normalizes value into a concrete value, then applies r.
//
// Thunks are called, deferred values awaited, producer values (functions or started
// generators) drained to their final value and walks collected, repeatedly, until value
// is concrete. A walk must not resolve itself.
// A Key resolver wraps the value into a Record. A producer resolver is started with the
// value if needed, drained, and its final value resolved again without a resolver.
// A DeferredTransform is awaited and used in its place. A Transform is applied last.
//
// Any failure is returned unchanged.
func Resolve(ctx context.Context, value any, r Resolver) (any, error) {
	for {
		var err error

		switch v := value.(type) {
		case Thunk:
			value, err = v()

		case Deferred:
			value, err = v.Await(ctx)

		case GeneratorFunc:
			value, err = drain(ctx, v.Start())

		case AsyncGeneratorFunc:
			value, err = drain(ctx, v.Start())

		case *Generator:
			value, err = drain(ctx, v)

		case *Walk:
			value, err = v.Collect(ctx)

		default:
			switch res := r.(type) {
			case nil:
				return value, nil

			case Key:
				return Record{string(res): value}, nil

			case GeneratorFunc:
				value, err = drain(ctx, res.Start(value))
				r = nil

			case AsyncGeneratorFunc:
				value, err = drain(ctx, res.Start(value))
				r = nil

			case *Generator:
				value, err = drain(ctx, res)
				r = nil

			case DeferredTransform:
				r, err = awaitResolver(ctx, res)

			case Transform:
				if res == nil {
					return value, nil
				}

				return res(value)

			default:
				return value, nil
			}
		}

		if err != nil {
			return nil, err
		}
	}
}

// ResolveAll resolves every element of items using r, in order.
func ResolveAll(ctx context.Context, items []any, r Resolver) ([]any, error) {
	values := make([]any, 0, len(items))

	for _, item := range items {
		v, err := Resolve(ctx, item, r)
		if err != nil {
			return values, err
		}

		values = append(values, v)
	}

	return values, nil
}

func awaitResolver(ctx context.Context, d DeferredTransform) (Resolver, error) {
	if d.Deferred == nil {
		return nil, nil
	}

	v, err := d.Await(ctx)
	if err != nil {
		return nil, err
	}

	switch res := v.(type) {
	case Resolver:
		return res, nil
	case string:
		return Key(res), nil
	case func(any) (any, error):
		return Transform(res), nil
	}

	return nil, nil
}

// Unwrap is a Transform that replaces a Record by its payload, as UnwrapKey("") does.
var Unwrap = UnwrapKey("")

// UnwrapKey returns a Transform that replaces a Record by its first non-nil entry among
// "data", "value" and key. Other values, and records without such an entry, are kept.
func UnwrapKey(key string) Transform {
	return func(value any) (any, error) {
		rec, ok := value.(Record)
		if !ok {
			return value, nil
		}

		for _, k := range []string{"data", "value", key} {
			if v := rec[k]; v != nil {
				return v, nil
			}
		}

		return value, nil
	}
}
