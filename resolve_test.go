package gocollect

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/matryer/is"
)

func TestResolve_Values(t *testing.T) {
	tests := []struct {
		name  string
		value any
	}{
		{"concrete", "works"},
		{"deferred", Resolved("works")},
		{"delayed", Sleep(time.Millisecond, "works")},
		{"thunk", Thunk(func() (any, error) { return "works", nil })},
		{"thunk returning deferred", Thunk(func() (any, error) { return Resolved("works"), nil })},
		{"deferred thunk", Resolved(Thunk(func() (any, error) { return "works", nil }))},
		{"producer function", GeneratorFunc(func(_ *Yielder, _ ...any) (any, error) {
			return "works", nil
		})},
		{"producer threading input", GeneratorFunc(func(y *Yielder, _ ...any) (any, error) {
			return y.Yield("works"), nil
		})},
		{"async producer", AsyncGeneratorFunc(func(y *Yielder, _ ...any) (any, error) {
			return y.Yield(Resolved("works")), nil
		})},
		{"started producer", GeneratorFunc(func(_ *Yielder, args ...any) (any, error) {
			return args[0], nil
		}).Start("works")},
		{"producer returning thunk", GeneratorFunc(func(_ *Yielder, _ ...any) (any, error) {
			return Thunk(func() (any, error) { return "works", nil }), nil
		})},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			is := is.New(t)

			v, err := Resolve(context.Background(), test.value, Key("test"))
			is.NoErr(err)
			is.Equal(v, Record{"test": "works"})
		})
	}
}

func TestResolve_Resolvers(t *testing.T) {
	double := func(v any) (any, error) {
		return v.(int) * 2, nil
	}

	tests := []struct {
		name     string
		value    any
		resolver Resolver
		want     any
	}{
		{"none", 1, nil, 1},
		{"key", 1, Key("n"), Record{"n": 1}},
		{"transform", 1, Transform(double), 2},
		{"nil transform", 1, Transform(nil), 1},
		{"transform after await", Resolved(3), Transform(double), 6},
		{"producer", 3, GeneratorFunc(func(y *Yielder, args ...any) (any, error) {
			return y.Yield(args[0].(int) + 5), nil
		}), 8},
		{"async producer", 4, AsyncGeneratorFunc(func(y *Yielder, args ...any) (any, error) {
			return y.Yield(Resolved(args[0].(int) + 6)), nil
		}), 10},
		{"producer result resolved again", 2, GeneratorFunc(func(_ *Yielder, args ...any) (any, error) {
			return Resolved(args[0].(int) * 10), nil
		}), 20},
		{"started producer", "ignored", GeneratorFunc(func(_ *Yielder, _ ...any) (any, error) {
			return 7, nil
		}).Start(), 7},
		{"deferred transform", 1, DeferredTransform{Resolved(Transform(double))}, 2},
		{"deferred func", 1, DeferredTransform{Resolved(double)}, 2},
		{"deferred key", 1, DeferredTransform{Resolved(Key("n"))}, Record{"n": 1}},
		{"deferred label", 1, DeferredTransform{Resolved("n")}, Record{"n": 1}},
		{"deferred non-resolver", 1, DeferredTransform{Resolved(42)}, 1},
		{"unwrap", Resolved(Record{"data": "works"}), Unwrap, "works"},
		{"nil deferred transform", 1, DeferredTransform{}, 1},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			is := is.New(t)

			v, err := Resolve(context.Background(), test.value, test.resolver)
			is.NoErr(err)
			is.Equal(v, test.want)
		})
	}
}

func TestResolve_TransformIsTerminal(t *testing.T) {
	is := is.New(t)

	f := Resolved(2)

	v, err := Resolve(context.Background(), 1, Transform(func(_ any) (any, error) {
		return f, nil
	}))

	is.NoErr(err)
	is.Equal(v, f)
}

func TestResolve_Errors(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name     string
		value    any
		resolver Resolver
	}{
		{"thunk", Thunk(func() (any, error) { return nil, boom }), nil},
		{"rejected", Rejected(boom), nil},
		{"producer", GeneratorFunc(func(_ *Yielder, _ ...any) (any, error) {
			return nil, boom
		}), nil},
		{"async producer", AsyncGeneratorFunc(func(y *Yielder, _ ...any) (any, error) {
			y.Yield(Rejected(boom))
			return nil, nil
		}), nil},
		{"transform", 1, Transform(func(_ any) (any, error) { return nil, boom })},
		{"deferred transform", 1, DeferredTransform{Rejected(boom)}},
		{"producer resolver", 1, GeneratorFunc(func(_ *Yielder, _ ...any) (any, error) {
			return nil, boom
		})},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			is := is.New(t)

			_, err := Resolve(context.Background(), test.value, test.resolver)
			is.True(errors.Is(err, boom))
		})
	}
}

func TestResolve_Canceled(t *testing.T) {
	is := is.New(t)

	pending, _, _ := NewFuture()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Resolve(ctx, pending, nil)
	is.True(errors.Is(err, context.Canceled))
}

func TestResolveAll(t *testing.T) {
	is := is.New(t)

	values, err := ResolveAll(context.Background(), []any{1, Resolved(2), Thunk(func() (any, error) { return 3, nil })}, Key("n"))
	is.NoErr(err)
	is.Equal(values, []any{Record{"n": 1}, Record{"n": 2}, Record{"n": 3}})
}

func TestResolveAll_StopsAtFailure(t *testing.T) {
	is := is.New(t)

	boom := errors.New("boom")

	values, err := ResolveAll(context.Background(), []any{1, Rejected(boom), 3}, nil)
	is.True(errors.Is(err, boom))
	is.Equal(values, []any{1})
}

func TestResolve_Walk(t *testing.T) {
	is := is.New(t)

	c := MustNew(GeneratorFunc(func(y *Yielder, args ...any) (any, error) {
		for _, arg := range args {
			y.Yield(Resolved(arg))
		}

		return nil, nil
	}))

	v, err := Resolve(context.Background(), c.Walk(1, 2), Key("all"))
	is.NoErr(err)
	is.Equal(v, Record{"all": []any{1, 2}})

	v, err = Resolve(context.Background(), Thunk(func() (any, error) { return c.Walk(3), nil }), nil)
	is.NoErr(err)
	is.Equal(v, []any{3})
}

func TestUnwrap(t *testing.T) {
	tests := []struct {
		name      string
		transform Transform
		value     any
		want      any
	}{
		{"data", Unwrap, Record{"data": 1, "value": 2}, 1},
		{"value", Unwrap, Record{"value": 2}, 2},
		{"nil data", Unwrap, Record{"data": nil, "value": 2}, 2},
		{"key", UnwrapKey("n"), Record{"n": 3}, 3},
		{"data before key", UnwrapKey("n"), Record{"n": 3, "data": 4}, 4},
		{"no payload", Unwrap, Record{"n": 3}, Record{"n": 3}},
		{"not a record", Unwrap, 4, 4},
		{"nil", Unwrap, nil, nil},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			is := is.New(t)

			v, err := test.transform(test.value)
			is.NoErr(err)
			is.Equal(v, test.want)
		})
	}
}
