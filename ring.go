package ringqueue

import (
	"errors"
	"fmt"
)

// ErrInvalidCapacity is returned by NewRing when capacity is zero or negative.
var ErrInvalidCapacity = errors.New("ringqueue: capacity must be positive")

// Ring is a generic FIFO circular buffer with a fixed capacity.
//
// The occupied slots are data[(head+i)%len(data)] for i in [0, count). Slots
// outside that window hold the zero value of T. The zero value is not ready
// for use; construct via NewRing.
type Ring[T any] struct {
	data  []T
	head  int // next slot to read
	tail  int // next slot to write
	count int
}

// NewRing allocates a ring with room for exactly capacity values.
//
// The returned error wraps ErrInvalidCapacity when capacity <= 0.
func NewRing[T any](capacity int) (*Ring[T], error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidCapacity, capacity)
	}
	return &Ring[T]{data: make([]T, capacity)}, nil
}

// Push writes v at the tail.
//
// Returns false without modifying the ring when it is full. Complexity: O(1).
func (r *Ring[T]) Push(v T) bool {
	if r.count == len(r.data) {
		return false
	}
	r.data[r.tail] = v
	r.tail = r.next(r.tail)
	r.count++
	return true
}

// Pop removes and returns the head value.
//
// The second result is false when the ring is empty. The vacated slot is
// reset so the ring keeps no reference to the returned value. Complexity: O(1).
func (r *Ring[T]) Pop() (T, bool) {
	var zero T
	if r.count == 0 {
		return zero, false
	}
	v := r.data[r.head]
	r.data[r.head] = zero
	r.head = r.next(r.head)
	r.count--
	return v, true
}

// Peek returns the head value without removing it.
// The second result is false when the ring is empty. Complexity: O(1).
func (r *Ring[T]) Peek() (T, bool) {
	if r.count == 0 {
		var zero T
		return zero, false
	}
	return r.data[r.head], true
}

// Len returns the number of occupied slots.
func (r *Ring[T]) Len() int { return r.count }

// Cap returns the fixed capacity chosen at construction.
func (r *Ring[T]) Cap() int { return len(r.data) }

// IsEmpty reports whether the ring holds no values.
func (r *Ring[T]) IsEmpty() bool { return r.count == 0 }

// IsFull reports whether every slot is occupied.
func (r *Ring[T]) IsFull() bool { return r.count == len(r.data) }

// Clear drops all values and rewinds both cursors.
// Complexity: O(capacity), since every slot is zeroed.
func (r *Ring[T]) Clear() {
	clear(r.data)
	r.head = 0
	r.tail = 0
	r.count = 0
}

// ToSlice returns a copy of the ring's contents in FIFO order.
// Complexity: O(n). The returned slice is independent of the ring.
func (r *Ring[T]) ToSlice() []T {
	out := make([]T, r.count)
	// The window is at most two contiguous runs: head..end, then 0..tail.
	n := copy(out, r.data[r.head:min(r.head+r.count, len(r.data))])
	copy(out[n:], r.data[:r.count-n])
	return out
}

func (r *Ring[T]) next(i int) int {
	i++
	if i == len(r.data) {
		return 0
	}
	return i
}
