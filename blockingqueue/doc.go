// Package blockingqueue provides a bounded, blocking FIFO for handing values
// from producer goroutines to consumer goroutines.
//
// A Queue has a fixed capacity chosen at construction. Put blocks while the
// queue is full and Take blocks while it is empty, which gives producers
// backpressure instead of unbounded growth. All state (the ring storage, both
// cursors and the occupancy count) is guarded by a single mutex, and the two
// sides park on separate conditions, not full and not empty, bound to that
// mutex.
//
// Design notes:
//   - Every wait is a loop that re-tests its predicate after waking, so
//     spurious wakeups and several waiters racing for one slot are harmless.
//   - A successful mutation signals exactly one waiter on the opposite
//     condition, always after the mutex has been released.
//   - PutContext and TakeContext give up when the context ends. Giving up
//     never mutates the queue. A waiter whose predicate is already true
//     completes rather than reporting the context error.
//   - Close is the broadcast alternative to an in-band end-of-stream value:
//     it wakes every waiter, refuses further Puts and lets Takes drain what is
//     left. For the in-band variant see package stream.
//
// Minimal outline:
//
//	q, err := blockingqueue.New[int](2)
//	if err != nil {
//	    return err
//	}
//	go func() {
//	    for i := range 10 {
//	        q.Put(i)
//	    }
//	    q.Close()
//	}()
//	for {
//	    v, err := q.TakeContext(ctx)
//	    if err != nil {
//	        break // ErrClosed once drained, or ctx.Err()
//	    }
//	    use(v)
//	}
//
// Calling Take on an empty queue that no producer will ever Put to again
// blocks forever. The queue must outlive every goroutine calling into it.
package blockingqueue
