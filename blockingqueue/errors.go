package blockingqueue

import (
	"context"
	"errors"
	"fmt"

	"github.com/xyhelper/ringqueue"
)

// ErrInvalidCapacity is matched by the error New returns for a capacity <= 0.
var ErrInvalidCapacity = ringqueue.ErrInvalidCapacity

// ErrClosed is returned by PutContext after Close, and by TakeContext once the
// queue is closed and drained.
var ErrClosed = errors.New("blockingqueue: queue closed")

// ErrCanceled is returned by the context variants when the context is canceled.
var ErrCanceled = context.Canceled

// ErrDeadlineExceeded is returned by the context variants when the context
// deadline expires.
var ErrDeadlineExceeded = context.DeadlineExceeded

// CapacityError reports a rejected construction capacity.
type CapacityError struct {
	Capacity int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("blockingqueue: invalid capacity %d, must be positive", e.Capacity)
}

// Unwrap lets errors.Is match ErrInvalidCapacity.
func (e *CapacityError) Unwrap() error { return ErrInvalidCapacity }

// IsContextError reports whether err equals context.Canceled or context.DeadlineExceeded.
func IsContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
