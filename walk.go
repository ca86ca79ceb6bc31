package gocollect

import (
	"context"
	"iter"
	"log/slog"
	"sync"

	"golang.org/x/exp/slices"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Phase is the lifecycle position of a walk.
type Phase int

const (
	// NotStarted walks have not stepped their producer yet.
	NotStarted Phase = iota

	// Stepping walks have a step in flight.
	Stepping

	// Suspended walks are waiting for a query to ask for more.
	Suspended

	// Done walks have drained their producer.
	Done

	// Errored walks have failed. Only Clear recovers them.
	Errored
)

// String implements fmt.Stringer.
func (p Phase) String() string {
	switch p {
	case NotStarted:
		return "not started"
	case Stepping:
		return "stepping"
	case Suspended:
		return "suspended"
	case Done:
		return "done"
	case Errored:
		return "errored"
	default:
		return "unknown"
	}
}

// State is a snapshot of a walk.
type State struct {
	// Current is the last raw emission observed, nil before the first step.
	Current any

	// Depth is the number of emissions observed.
	Depth int

	// Done is true once the producer has finished.
	Done bool

	// Results are the resolved emissions, in emission order.
	Results []any
}

// Walk is one live drive of a producer. It memoizes every resolved emission and
// answers queries from them, stepping the producer only as far as a query needs.
//
// Walk is safe for concurrent use. Queries are served one at a time, in the order
// they were issued.
type Walk struct {
	id        string
	collector *Collector
	args      []any
	sem       *semaphore.Weighted
	limiter   *rate.Limiter
	log       *slog.Logger

	mu      sync.Mutex
	state   *walkState
	orphans []*walkState
}

// walkState is the state of one drive of the producer. Clear replaces it as a whole.
// Fields guarded by Walk.mu are read by snapshots; the producer fields are only
// touched by the holder of Walk.sem.
type walkState struct {
	ctx    context.Context
	cancel context.CancelCauseFunc

	// guarded by Walk.mu
	results []any
	current any
	depth   int
	done    bool
	err     error
	phase   Phase
	cleared bool

	// owned by the holder of Walk.sem
	gen        Producer
	input      any
	pending    any
	hasPending bool
	terminated bool
}

func (w *Walk) newState() *walkState {
	ctx, cancel := context.WithCancelCause(context.Background())

	return &walkState{
		ctx:     ctx,
		cancel:  cancel,
		results: []any{},
	}
}

// ID returns the unique ID of w.
func (w *Walk) ID() string {
	return w.id
}

// Args returns the arguments w's producer is started with.
func (w *Walk) Args() []any {
	return slices.Clone(w.args)
}

// Find returns the first resolved emission matching sel.
//
// Unless next is true, a match among the memoized results is returned without stepping
// the producer. Otherwise, or if nothing memoized matches, the producer is stepped from
// where it left off until an emission matches. Calling Find repeatedly with next set
// walks through successive matches.
//
// If the producer finishes without a match, Find returns false.
func (w *Walk) Find(ctx context.Context, sel Selector, next bool) (any, bool, error) {
	st, err := w.acquire(ctx)
	if err != nil {
		return nil, false, err
	}

	defer w.release()

	match := Matcher(sel)

	if !next {
		// results are only appended to by the holder of sem
		for _, v := range st.results {
			if match(v) {
				return v, true, nil
			}
		}
	}

	for {
		v, ok, err := w.advance(ctx, st)
		if err != nil {
			return nil, false, err
		}

		if !ok {
			return nil, false, nil
		}

		if match(v) {
			return v, true, nil
		}
	}
}

// First is an alias of Find.
func (w *Walk) First(ctx context.Context, sel Selector, next bool) (any, bool, error) {
	return w.Find(ctx, sel, next)
}

// All returns the resolved emissions matching sel, in emission order.
// Unless lazy is true, the producer is drained first. A lazy query only considers
// the memoized results.
func (w *Walk) All(ctx context.Context, sel Selector, lazy bool) ([]any, error) {
	st, err := w.acquire(ctx)
	if err != nil {
		return nil, err
	}

	defer w.release()

	if !lazy {
		if err := w.drain(ctx, st); err != nil {
			return nil, err
		}
	}

	return filter(st.results, sel), nil
}

// Last returns the last resolved emission matching sel, as All would find it.
func (w *Walk) Last(ctx context.Context, sel Selector, lazy bool) (any, bool, error) {
	matches, err := w.All(ctx, sel, lazy)
	if err != nil {
		return nil, false, err
	}

	if len(matches) == 0 {
		return nil, false, nil
	}

	return matches[len(matches)-1], true, nil
}

// Take returns up to count emissions matching sel, in order.
//
// A lazy Take on a walk that is done takes from the memoized results. Otherwise the
// producer is stepped forward, as successive calls to Find with next set would, until
// count matches are found or the producer finishes.
func (w *Walk) Take(ctx context.Context, count int, sel Selector, lazy bool) ([]any, error) {
	st, err := w.acquire(ctx)
	if err != nil {
		return nil, err
	}

	defer w.release()

	if count <= 0 {
		return []any{}, nil
	}

	w.mu.Lock()
	done := st.done
	w.mu.Unlock()

	if lazy && done {
		matches := filter(st.results, sel)
		return matches[:min(count, len(matches))], nil
	}

	match := Matcher(sel)

	taken := []any{}

	for len(taken) < count {
		v, ok, err := w.advance(ctx, st)
		if err != nil {
			return taken, err
		}

		if !ok {
			break
		}

		if match(v) {
			taken = append(taken, v)
		}
	}

	return taken, nil
}

// Group returns the emissions matching sel, as All would find them, grouped by key.
// Order is preserved within each group. Keys must be comparable.
func (w *Walk) Group(ctx context.Context, sel Selector, key func(any) any, lazy bool) (map[any][]any, error) {
	return GroupBy(ctx, w, sel, key, lazy)
}

// GroupBy is like Walk.Group, with typed keys.
func GroupBy[K comparable](ctx context.Context, w *Walk, sel Selector, key func(any) K, lazy bool) (map[K][]any, error) {
	matches, err := w.All(ctx, sel, lazy)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	group := CollectGroup(FuncMapper(key), Identity[any]())

	groups := map[K][]any{}
	for i, v := range matches {
		groups = group(ctx, cancel, v, uint64(i), groups)
	}

	return groups, nil
}

// Collect drains the producer and returns every resolved emission.
// Unless the collector was configured WithAutoClear(false), w is cleared afterwards.
func (w *Walk) Collect(ctx context.Context) ([]any, error) {
	results, err := w.All(ctx, Always, false)
	if err != nil {
		return nil, err
	}

	if w.collector.config.AutoClear {
		w.Clear()
	}

	return results, nil
}

// Clear terminates the producer, discards the state of w and restarts it with the
// same arguments. A step in flight is abandoned: its query returns ErrCleared and its
// value is not memoized.
func (w *Walk) Clear() *Walk {
	w.mu.Lock()
	old := w.state
	old.cleared = true
	w.orphans = append(w.orphans, old)
	w.state = w.newState()
	w.mu.Unlock()

	old.cancel(ErrCleared)

	// a query in flight terminates the old producer itself when it lets go of sem
	if w.sem.TryAcquire(1) {
		w.release()
	}

	w.log.Debug("walk cleared")

	return w
}

// Results returns a copy of the resolved emissions so far.
func (w *Walk) Results() []any {
	w.mu.Lock()
	defer w.mu.Unlock()

	return slices.Clone(w.state.results)
}

// State returns a snapshot of w.
func (w *Walk) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()

	return State{
		Current: w.state.current,
		Depth:   w.state.depth,
		Done:    w.state.done,
		Results: slices.Clone(w.state.results),
	}
}

// Phase returns the lifecycle position of w.
func (w *Walk) Phase() Phase {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.state.phase
}

// Err returns the failure of w, if it has failed.
func (w *Walk) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.state.err
}

// Next steps the producer once, and returns the resolved emission.
// It returns false once the producer is done.
func (w *Walk) Next(ctx context.Context) (any, bool, error) {
	var st *walkState

	return w.step(ctx, &st)
}

// Iter returns an iterator over the emissions of w that have not been resolved yet.
// Each pull steps the producer once and memoizes the resolved emission.
// Other queries may run between pulls. Iteration stops with ErrCleared if w is cleared.
func (w *Walk) Iter(ctx context.Context) iter.Seq2[any, error] {
	return func(yield func(any, error) bool) {
		var first *walkState

		for {
			v, ok, err := w.step(ctx, &first)
			if err != nil {
				yield(nil, err)
				return
			}

			if !ok || !yield(v, nil) {
				return
			}
		}
	}
}

// Elements implements Sequence.
func (w *Walk) Elements(ctx context.Context) iter.Seq2[any, error] {
	return w.Iter(ctx)
}

// step advances *st once while holding sem. A nil *st is set to the current state.
func (w *Walk) step(ctx context.Context, st **walkState) (any, bool, error) {
	cur, err := w.acquire(ctx)
	if err != nil {
		return nil, false, err
	}

	defer w.release()

	if *st == nil {
		*st = cur
	}

	return w.advance(ctx, *st)
}

func (w *Walk) acquire(ctx context.Context) (*walkState, error) {
	if err := w.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	return w.state, nil
}

// release terminates the producers of cleared states, then lets go of sem.
// sem is released under mu, so a concurrent Clear either leaves its state to this
// release or finds sem free.
func (w *Walk) release() {
	for {
		w.mu.Lock()

		orphans := w.orphans
		w.orphans = nil

		if len(orphans) == 0 {
			w.sem.Release(1)
			w.mu.Unlock()

			return
		}

		w.mu.Unlock()

		for _, st := range orphans {
			w.terminate(st)
		}
	}
}

// terminate stops the producer of st. The caller must hold sem.
func (w *Walk) terminate(st *walkState) {
	if st.gen == nil || st.terminated {
		return
	}

	st.terminated = true
	st.gen.Terminate(nil)
}

// drain steps st until its producer is done.
func (w *Walk) drain(ctx context.Context, st *walkState) error {
	for {
		_, ok, err := w.advance(ctx, st)
		if err != nil {
			return err
		}

		if !ok {
			return nil
		}
	}
}

// advance steps the producer of st once, resolves the emission and memoizes it.
// It returns false once the producer is done. The caller must hold sem.
//
// An emission whose resolution is interrupted by ctx stays pending, and is resolved
// again by the next call instead of stepping the producer.
func (w *Walk) advance(ctx context.Context, st *walkState) (any, bool, error) {
	w.mu.Lock()

	switch {
	case st.cleared:
		w.mu.Unlock()
		return nil, false, ErrCleared

	case st.err != nil:
		err := st.err
		w.mu.Unlock()

		return nil, false, err

	case st.done:
		w.mu.Unlock()
		return nil, false, nil
	}

	w.mu.Unlock()

	stepCtx, cancel := joinContext(ctx, st.ctx)
	defer cancel()

	if !st.hasPending {
		if err := w.throttle(stepCtx, st); err != nil {
			return nil, false, err
		}

		if st.gen == nil {
			st.gen = w.collector.fn.Start(w.args...)
			w.log.Debug("walk started", slog.Int("args", len(w.args)))
		}

		w.setPhase(st, Stepping)

		raw, done, err := st.gen.Step(stepCtx, st.input)
		if err != nil {
			return nil, false, w.fail(st, err)
		}

		w.mu.Lock()

		if st.cleared {
			w.mu.Unlock()
			return nil, false, ErrCleared
		}

		if done {
			st.done = true
			st.phase = Done
			w.mu.Unlock()

			w.log.Debug("walk done", slog.Int("depth", st.depth))

			return nil, false, nil
		}

		st.current = raw
		st.depth++
		w.mu.Unlock()

		st.pending = raw
		st.hasPending = true
	} else {
		w.setPhase(st, Stepping)
	}

	value, err := Resolve(stepCtx, st.pending, nil)
	if err != nil {
		return nil, false, w.interrupted(ctx, st, err)
	}

	w.mu.Lock()

	if st.cleared {
		w.mu.Unlock()
		return nil, false, ErrCleared
	}

	st.results = append(st.results, value)
	st.phase = Suspended
	depth := st.depth
	w.mu.Unlock()

	st.input = value
	st.pending = nil
	st.hasPending = false

	w.log.Debug("walk step", slog.Int("depth", depth))

	return value, true, nil
}

// throttle waits until the step limiter allows another step.
// Nothing has been stepped yet, so a failed wait leaves st untouched.
func (w *Walk) throttle(ctx context.Context, st *walkState) error {
	if w.limiter == nil {
		return nil
	}

	err := w.limiter.Wait(ctx)
	if err == nil {
		return nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if st.cleared {
		return ErrCleared
	}

	return err
}

// interrupted classifies a failure during advance. Clearing and the caller giving up
// leave the walk usable; anything else fails it.
func (w *Walk) interrupted(ctx context.Context, st *walkState, err error) error {
	w.mu.Lock()
	cleared := st.cleared
	w.mu.Unlock()

	if cleared {
		return ErrCleared
	}

	if contextDone(ctx) {
		w.setPhase(st, Suspended)
		return context.Cause(ctx)
	}

	return w.fail(st, err)
}

// fail moves st to Errored and terminates its producer.
func (w *Walk) fail(st *walkState, err error) error {
	w.mu.Lock()

	if st.cleared {
		w.mu.Unlock()
		return ErrCleared
	}

	failure := &StepError{
		Walk:  w.id,
		Depth: st.depth,
		Err:   err,
	}
	st.err = failure
	st.phase = Errored
	w.mu.Unlock()

	w.terminate(st)

	w.log.Debug("walk failed", slog.Int("depth", failure.Depth), slog.Any("error", err))

	return failure
}

func (w *Walk) setPhase(st *walkState, phase Phase) {
	w.mu.Lock()
	defer w.mu.Unlock()

	st.phase = phase
}
