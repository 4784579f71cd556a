// Package ringqueue provides a generic fixed-capacity circular buffer.
//
// Ring is the storage layer used by the blockingqueue package: a slice
// allocated once at construction, a read cursor (head), a write cursor (tail)
// and an occupancy count. Both cursors wrap modulo the capacity, and the count
// is the single source of truth for how many slots are occupied.
//
// Ring is not safe for concurrent use. Callers that share a Ring between
// goroutines must hold their own lock around every method, which is exactly
// what blockingqueue.Queue does. Construct a ring with NewRing.
//
// Blocking and Timeout Patterns
//
// For producer/consumer handoff with backpressure use blockingqueue.Queue,
// which layers one mutex and two sync.Cond values (not full, not empty) over a
// Ring. For end-of-stream propagation across several consumers see the stream
// package.
package ringqueue
