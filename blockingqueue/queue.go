package blockingqueue

import (
	"context"
	"sync"
	"time"

	"github.com/xyhelper/ringqueue"
	"github.com/xyhelper/ringqueue/internal/logger"
)

// Queue is a bounded, blocking, concurrency-safe FIFO over a fixed-capacity
// ring buffer.
//
// Ownership of a value passes to the queue on a successful Put and to the
// caller on a successful Take. All methods are safe for concurrent use by
// multiple goroutines. The zero value is not ready for use; construct via New.
type Queue[T any] struct {
	mu       sync.Mutex
	notFull  *sync.Cond
	notEmpty *sync.Cond
	ring     *ringqueue.Ring[T]
	closed   bool

	// goroutines parked in notFull.Wait / notEmpty.Wait
	waitingPuts  int
	waitingTakes int

	observer Observer
	log      logger.Logger
}

// New creates a queue holding at most capacity values.
//
// The error is a *CapacityError matching ErrInvalidCapacity when
// capacity <= 0.
func New[T any](capacity int, opts ...Option) (*Queue[T], error) {
	if capacity <= 0 {
		return nil, &CapacityError{Capacity: capacity}
	}
	ring, err := ringqueue.NewRing[T](capacity)
	if err != nil {
		return nil, err
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	q := &Queue[T]{
		ring:     ring,
		observer: o.observer,
		log:      o.log,
	}
	q.notFull = sync.NewCond(&q.mu)
	q.notEmpty = sync.NewCond(&q.mu)
	return q, nil
}

// Put appends v, blocking while the queue is full.
//
// Put panics if the queue is closed, including when Close happens while Put
// is blocked, mirroring a send on a closed channel. Use PutContext to get
// ErrClosed instead.
func (q *Queue[T]) Put(v T) {
	if err := q.PutContext(context.Background(), v); err != nil {
		panic(err)
	}
}

// PutContext appends v, blocking while the queue is full until ctx is done.
//
// Returns ctx.Err() when the context ends before a slot frees up, or
// ErrClosed when the queue is closed. In both cases v is not enqueued.
func (q *Queue[T]) PutContext(ctx context.Context, v T) error {
	if ctx == nil {
		ctx = context.Background()
	}
	start := time.Now()
	depth, err := q.put(ctx, v)
	if err != nil {
		q.observeFailure(OpPut, err)
		return err
	}
	q.notEmpty.Signal()
	if q.observer != nil {
		q.observer.ObservePut(depth, time.Since(start))
	}
	return nil
}

func (q *Queue[T]) put(ctx context.Context, v T) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if err := q.waitLocked(ctx, q.notFull, &q.waitingPuts, q.canPutLocked); err != nil {
		return 0, err
	}
	if q.closed {
		return 0, ErrClosed
	}
	q.ring.Push(v)
	return q.ring.Len(), nil
}

// TryPut appends v without blocking.
//
// Returns false when the queue is full or closed.
func (q *Queue[T]) TryPut(v T) bool {
	start := time.Now()
	depth, ok := q.tryPut(v)
	if !ok {
		return false
	}
	q.notEmpty.Signal()
	if q.observer != nil {
		q.observer.ObservePut(depth, time.Since(start))
	}
	return true
}

func (q *Queue[T]) tryPut(v T) (int, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed || !q.ring.Push(v) {
		return 0, false
	}
	return q.ring.Len(), true
}

// PutTimeout is PutContext bounded by a relative timeout. It reports whether v
// was enqueued.
func (q *Queue[T]) PutTimeout(v T, timeout time.Duration) bool {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return q.PutContext(ctx, v) == nil
}

// Take removes and returns the head value, blocking while the queue is empty.
//
// Once the queue is closed and drained Take returns the zero value, like a
// receive from a closed channel. Use TakeContext to tell the cases apart.
func (q *Queue[T]) Take() T {
	v, _ := q.TakeContext(context.Background())
	return v
}

// TakeContext removes and returns the head value, blocking while the queue is
// empty until ctx is done.
//
// On success returns (value, nil). Returns the zero value and ctx.Err() when
// the context ends first, or ErrClosed when the queue is closed and empty.
func (q *Queue[T]) TakeContext(ctx context.Context) (T, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	start := time.Now()
	v, depth, err := q.take(ctx)
	if err != nil {
		q.observeFailure(OpTake, err)
		return v, err
	}
	q.notFull.Signal()
	if q.observer != nil {
		q.observer.ObserveTake(depth, time.Since(start))
	}
	return v, nil
}

func (q *Queue[T]) take(ctx context.Context) (T, int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if err := q.waitLocked(ctx, q.notEmpty, &q.waitingTakes, q.canTakeLocked); err != nil {
		var zero T
		return zero, 0, err
	}
	v, ok := q.ring.Pop()
	if !ok {
		// woken by Close with nothing left
		return v, 0, ErrClosed
	}
	return v, q.ring.Len(), nil
}

// TryTake removes and returns the head value without blocking.
// ok is false if the queue is empty.
func (q *Queue[T]) TryTake() (v T, ok bool) {
	start := time.Now()
	v, depth, ok := q.tryTake()
	if !ok {
		return v, false
	}
	q.notFull.Signal()
	if q.observer != nil {
		q.observer.ObserveTake(depth, time.Since(start))
	}
	return v, true
}

func (q *Queue[T]) tryTake() (T, int, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	v, ok := q.ring.Pop()
	return v, q.ring.Len(), ok
}

// TakeTimeout is TakeContext bounded by a relative timeout. ok is false when
// nothing arrived in time or the queue is closed and drained.
func (q *Queue[T]) TakeTimeout(timeout time.Duration) (v T, ok bool) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	v, err := q.TakeContext(ctx)
	return v, err == nil
}

// Close marks the queue closed and wakes every blocked Put and Take.
//
// Blocked and later Puts fail with ErrClosed; Takes keep returning queued
// values until the queue is empty. Close is idempotent.
func (q *Queue[T]) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	remaining := q.ring.Len()
	puts, takes := q.waitingPuts, q.waitingTakes
	q.mu.Unlock()

	q.notFull.Broadcast()
	q.notEmpty.Broadcast()
	q.log.Debug("queue closed",
		logger.Int("remaining", remaining),
		logger.Int("blocked_puts", puts),
		logger.Int("blocked_takes", takes))
}

// Closed reports whether Close has been called.
func (q *Queue[T]) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

// Len returns the number of values currently queued.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.ring.Len()
}

// Cap returns the fixed capacity.
func (q *Queue[T]) Cap() int {
	// immutable after New
	return q.ring.Cap()
}

// Waiters returns how many goroutines are currently blocked in Put and in
// Take respectively.
func (q *Queue[T]) Waiters() (puts, takes int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.waitingPuts, q.waitingTakes
}

// Peek returns the head value without removing it. ok is false when empty.
func (q *Queue[T]) Peek() (v T, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.ring.Peek()
}

// ToSlice returns a copy of the queued values in FIFO order.
func (q *Queue[T]) ToSlice() []T {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.ring.ToSlice()
}

func (q *Queue[T]) canPutLocked() bool  { return q.closed || !q.ring.IsFull() }
func (q *Queue[T]) canTakeLocked() bool { return q.closed || !q.ring.IsEmpty() }

// waitLocked parks on c until ready holds or ctx is done. q.mu must be held;
// it is released while parked and held again on return.
//
// ready is tested before the context on every pass, so a waiter that was
// signaled always consumes its wakeup instead of dropping it.
func (q *Queue[T]) waitLocked(ctx context.Context, c *sync.Cond, waiting *int, ready func() bool) error {
	if ready() {
		return nil
	}
	if done := ctx.Done(); done != nil {
		// The callback cannot target one waiter; the rest re-test and park.
		stop := context.AfterFunc(ctx, func() {
			q.mu.Lock()
			c.Broadcast()
			q.mu.Unlock()
		})
		defer stop()
	}
	*waiting++
	defer func() { *waiting-- }()
	for !ready() {
		if err := ctx.Err(); err != nil {
			return err
		}
		c.Wait()
	}
	return nil
}

func (q *Queue[T]) observeFailure(op Op, err error) {
	if q.observer != nil && IsContextError(err) {
		q.observer.ObserveTimeout(op)
	}
}
