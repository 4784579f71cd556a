package stream

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/xyhelper/ringqueue/blockingqueue"
)

// ErrInvalidProducers is returned by New when the producer count is below one.
var ErrInvalidProducers = errors.New("stream: producer count must be at least 1")

// ErrEndOfStream is returned by RecvContext after the end marker is seen.
var ErrEndOfStream = errors.New("stream: end of stream")

// Channel is a bounded queue of Messages with daisy-chained shutdown.
//
// Send and Recv may be called from any number of goroutines. The end marker
// occupies one slot while it is passed between consumers.
type Channel[T any] struct {
	q       *blockingqueue.Queue[Message[T]]
	pending atomic.Int64 // producers that have not called Done
}

// New creates a channel of the given capacity shared by producers senders.
func New[T any](capacity, producers int, opts ...blockingqueue.Option) (*Channel[T], error) {
	if producers < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidProducers, producers)
	}
	q, err := blockingqueue.New[Message[T]](capacity, opts...)
	if err != nil {
		return nil, err
	}
	c := &Channel[T]{q: q}
	c.pending.Store(int64(producers))
	return c, nil
}

// Send enqueues v, blocking while the channel is full. Like Queue.Put it
// panics if the underlying queue has been closed.
func (c *Channel[T]) Send(v T) {
	c.q.Put(Item(v))
}

// SendContext enqueues v unless ctx ends first.
func (c *Channel[T]) SendContext(ctx context.Context, v T) error {
	return c.q.PutContext(ctx, Item(v))
}

// Done records that one producer has finished. The call that brings the
// count to zero enqueues the end marker; it blocks like Send if the channel
// is full. Calls beyond the producer count are ignored, and so is a closed
// queue, which already ends the stream.
func (c *Channel[T]) Done() {
	_ = c.DoneContext(context.Background())
}

// DoneContext is Done bounded by ctx for the final producer's marker put.
func (c *Channel[T]) DoneContext(ctx context.Context) error {
	if c.pending.Add(-1) != 0 {
		return nil
	}
	if err := c.q.PutContext(ctx, EndOfStream[T]()); err != nil && !errors.Is(err, blockingqueue.ErrClosed) {
		return err
	}
	return nil
}

// Recv takes the next value. ok is false once the stream has ended, either
// through the end marker or because the queue was closed and drained. The
// end marker is put back so the next consumer also observes it.
func (c *Channel[T]) Recv() (v T, ok bool) {
	v, err := c.RecvContext(context.Background())
	return v, err == nil
}

// RecvContext is Recv bounded by ctx. It returns ErrEndOfStream once the
// stream has ended, or ctx.Err() if ctx ends before anything arrives.
func (c *Channel[T]) RecvContext(ctx context.Context) (T, error) {
	var zero T
	m, err := c.q.TakeContext(ctx)
	if errors.Is(err, blockingqueue.ErrClosed) {
		return zero, ErrEndOfStream
	}
	if err != nil {
		return zero, err
	}
	if m.IsEnd() {
		// Producers are finished once the marker exists, so the slot just
		// freed is still free. The put fails only on a closed queue, whose
		// later receivers get ErrClosed from the queue instead.
		_ = c.q.PutContext(context.Background(), m)
		return zero, ErrEndOfStream
	}
	return m.Value(), nil
}

// Len returns the number of queued messages, including a pending end marker.
func (c *Channel[T]) Len() int { return c.q.Len() }

// Cap returns the channel capacity.
func (c *Channel[T]) Cap() int { return c.q.Cap() }

// Pending returns how many producers have not yet called Done.
func (c *Channel[T]) Pending() int {
	return int(max(c.pending.Load(), 0))
}

// Queue exposes the underlying queue, e.g. for Waiters in tests and metrics.
func (c *Channel[T]) Queue() *blockingqueue.Queue[Message[T]] { return c.q }
