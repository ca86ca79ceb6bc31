package gocollect

import (
	"context"
	"time"
)

// contextDone returns true if ctx.Err() != nil.
func contextDone(ctx context.Context) bool {
	return ctx.Err() != nil
}

// joinContext returns a context that is canceled when either ctx or other is done.
// The cause of other is carried over, so callers can tell the two apart.
func joinContext(ctx context.Context, other context.Context) (context.Context, context.CancelFunc) {
	joined, cancel := context.WithCancelCause(ctx)

	stop := context.AfterFunc(other, func() {
		cancel(context.Cause(other))
	})

	return joined, func() {
		stop()
		cancel(nil)
	}
}

// stepContext follows the context of whichever step is currently driving a producer.
// A producer body that outlives one step keeps a live context through it.
type stepContext struct {
	y *Yielder
}

func (c stepContext) Deadline() (time.Time, bool) {
	return c.y.ctx.Deadline()
}

func (c stepContext) Done() <-chan struct{} {
	return c.y.ctx.Done()
}

func (c stepContext) Err() error {
	return c.y.ctx.Err()
}

func (c stepContext) Value(key any) any {
	return c.y.ctx.Value(key)
}
