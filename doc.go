// Package gocollect turns step-by-step producers into stateful, queryable streams.
//
// A producer is a Go function that emits values one at a time through a Yielder,
// suspending after each emission. Wrapping it with New returns a Collector; calling
// Collector.Walk with arguments starts one Walk, a live drive of a single producer
// instance.
//
// A Walk is queried rather than iterated. Find returns the first emission matching
// a Selector, All returns every match, Last the final one, Take a bounded batch and
// Group a partition of matches. Queries only step the producer as far as they need
// to, and every resolved emission is memoized, so later queries may be answered
// without stepping at all.
//
// Emissions need not be concrete. A producer may emit a Deferred value, a Thunk,
// a producer function or an already started Generator; each emission is normalized
// by Resolve before it is memoized, strictly in emission order.
//
// Queries against one Walk are serialized: only one step is ever in flight.
// Queries against different Walks are independent. Clear discards the state of a
// Walk and restarts it with its original arguments.
//
// A Walk can also be consumed as a stream: Stream returns a ProducerFunc whose
// elements flow through the usual mapping, filtering and reducing operations.
package gocollect
