package gocollect

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidProducer is returned by New when the wrapped value is not a producer function.
	ErrInvalidProducer = errors.New("collector must wrap a generator function")

	// ErrAsyncProducer is returned by New when the wrapped value is an AsyncGeneratorFunc.
	// Nested producers are drained synchronously by the walk, which an asynchronously
	// suspending top-level producer cannot support.
	ErrAsyncProducer = errors.New("collector cannot wrap an async generator function")

	// ErrCleared is the cause used to cancel a walk's in-flight step when the walk is cleared.
	// Queries interrupted by Walk.Clear return it, and their resolved value is discarded.
	ErrCleared = errors.New("walk cleared")

	// ErrInvalidConfig is returned by New when an option carries an invalid value.
	ErrInvalidConfig = errors.New("invalid collector config")
)

// A StepError records a failure while stepping or resolving a walk's emission.
// Once a walk has failed, every query returns the same StepError until the walk is cleared.
type StepError struct {
	// Walk is the ID of the failed walk.
	Walk string

	// Depth is the number of emissions observed when the failure occurred.
	Depth int

	// Err is the underlying failure.
	Err error
}

// Error implements error.
func (e *StepError) Error() string {
	return fmt.Sprintf("walk %s: step %d: %v", e.Walk, e.Depth, e.Err)
}

// Unwrap returns the underlying failure.
func (e *StepError) Unwrap() error {
	return e.Err
}
