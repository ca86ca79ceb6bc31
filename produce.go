package gocollect

import (
	"context"
	"iter"
)

// Producer is a steppable producer.
//
// Step resumes the producer with input, which becomes the result of the emission the
// producer is suspended on, and runs it until its next emission. When the producer
// finishes, Step returns its final value and done set to true.
// Terminate stops the producer early; later steps report done.
//
// A Producer must not be stepped concurrently.
type Producer interface {
	Step(ctx context.Context, input any) (value any, done bool, err error)
	Terminate(final any)
}

// GeneratorFunc is the body of a producer. It emits values using y, and returns its final value.
type GeneratorFunc func(y *Yielder, args ...any) (any, error)

// AsyncGeneratorFunc is the body of a producer whose steps await deferred emissions before
// handing them out. It can be resolved like any producer, but it cannot be wrapped by New.
type AsyncGeneratorFunc func(y *Yielder, args ...any) (any, error)

// Yielder is the handle a producer body emits values through.
type Yielder struct {
	ctx   context.Context
	input any
	yield func(any) bool
}

// Generator is a started producer, driven one emission at a time.
type Generator struct {
	y     *Yielder
	next  func() (any, bool)
	stop  func()
	async bool
	done  bool
	final any
	err   error
}

// stopped unwinds a producer body after its generator was terminated.
type stopped struct{}

// Start starts the producer with args. The body does not run until the first step.
func (fn GeneratorFunc) Start(args ...any) *Generator {
	return start(fn, false, args)
}

// Elements implements Sequence by starting the producer without arguments.
func (fn GeneratorFunc) Elements(ctx context.Context) iter.Seq2[any, error] {
	return fn.Start().Elements(ctx)
}

// Start starts the producer with args. The body does not run until the first step.
func (fn AsyncGeneratorFunc) Start(args ...any) *Generator {
	return start(GeneratorFunc(fn), true, args)
}

func start(fn GeneratorFunc, async bool, args []any) *Generator {
	g := &Generator{
		y: &Yielder{
			ctx: context.Background(),
		},
		async: async,
	}

	g.next, g.stop = iter.Pull[any](func(yield func(any) bool) {
		defer func() {
			if r := recover(); r != nil {
				if _, ok := r.(stopped); ok {
					return
				}

				panic(r)
			}
		}()

		g.y.yield = yield
		g.final, g.err = fn(g.y, args...)
	})

	return g
}

// Yield emits v and suspends the producer until its next step.
// It returns the input the producer was resumed with.
// If the producer is terminated while suspended, Yield does not return.
func (y *Yielder) Yield(v any) any {
	if !y.yield(v) {
		panic(stopped{})
	}

	return y.input
}

// Context returns a context that follows the step currently driving the producer.
// It stays valid across emissions.
func (y *Yielder) Context() context.Context {
	return stepContext{y: y}
}

// From emits every leaf of source, resolved using r, as Flatten does.
// It stops at the first failure and returns it.
func (y *Yielder) From(source any, r Resolver) error {
	for v, err := range Flatten(y.Context(), source, r) {
		if err != nil {
			return err
		}

		y.Yield(v)
	}

	return nil
}

// Step implements Producer.
func (g *Generator) Step(ctx context.Context, input any) (any, bool, error) {
	if g.done {
		return nil, true, nil
	}

	g.y.ctx = ctx
	g.y.input = input

	v, ok := g.next()
	if !ok {
		g.done = true
		return g.final, true, g.err
	}

	if d, isDeferred := v.(Deferred); g.async && isDeferred {
		awaited, err := d.Await(ctx)
		if err != nil {
			g.Terminate(nil)
			return nil, true, err
		}

		v = awaited
	}

	return v, false, nil
}

// Terminate implements Producer.
func (g *Generator) Terminate(final any) {
	if !g.done {
		g.done = true
		g.final = final
	}

	g.stop()
}

// Done reports whether the producer has finished or was terminated.
func (g *Generator) Done() bool {
	return g.done
}

// Elements implements Sequence. Each emission is fed back as the input of the next step.
// Stopping the iteration early terminates g.
func (g *Generator) Elements(ctx context.Context) iter.Seq2[any, error] {
	return func(yield func(any, error) bool) {
		defer g.Terminate(nil)

		var input any

		for {
			v, done, err := g.Step(ctx, input)
			if err != nil {
				yield(nil, err)
				return
			}

			if done {
				return
			}

			if !yield(v, nil) {
				return
			}

			input = v
		}
	}
}

// drain steps p until it finishes, threading each emission back in as the next input,
// and returns p's final value.
func drain(ctx context.Context, p Producer) (any, error) {
	var input any

	for {
		if contextDone(ctx) {
			p.Terminate(nil)
			return nil, context.Cause(ctx)
		}

		v, done, err := p.Step(ctx, input)
		if err != nil {
			p.Terminate(nil)
			return nil, err
		}

		if done {
			return v, nil
		}

		input = v
	}
}
