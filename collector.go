package gocollect

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
)

// Collector wraps a producer function. Each call to Walk starts an independent,
// queryable drive of the producer.
type Collector struct {
	fn     GeneratorFunc
	config Config
}

// New returns a Collector wrapping fn, which must be a GeneratorFunc or a function
// with the same signature.
// It fails with ErrAsyncProducer for an AsyncGeneratorFunc, and with ErrInvalidProducer
// for anything else that is not a producer function.
func New(fn any, opts ...Option) (*Collector, error) {
	var gen GeneratorFunc

	switch fn := fn.(type) {
	case AsyncGeneratorFunc:
		return nil, ErrAsyncProducer

	case GeneratorFunc:
		gen = fn

	case func(*Yielder, ...any) (any, error):
		gen = fn

	default:
		return nil, fmt.Errorf("%w: %T", ErrInvalidProducer, fn)
	}

	if gen == nil {
		return nil, fmt.Errorf("%w: nil function", ErrInvalidProducer)
	}

	config := DefaultConfig()
	for _, opt := range opts {
		opt(&config)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &Collector{
		fn:     gen,
		config: config,
	}, nil
}

// MustNew is like New but panics if fn cannot be wrapped.
func MustNew(fn any, opts ...Option) *Collector {
	c, err := New(fn, opts...)
	if err != nil {
		panic(err)
	}

	return c
}

// Walk returns a new walk of the producer, bound to args.
// The producer is not started until the walk is first queried.
func (c *Collector) Walk(args ...any) *Walk {
	id := uuid.NewString()

	w := &Walk{
		id:        id,
		collector: c,
		args:      args,
		sem:       semaphore.NewWeighted(1),
		limiter:   c.config.limiter(),
		log:       c.config.Logger.With(slog.String("walk", id)),
	}

	w.state = w.newState()

	return w
}
