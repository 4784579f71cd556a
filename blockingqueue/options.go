package blockingqueue

import (
	"time"

	"github.com/xyhelper/ringqueue/internal/logger"
)

// Op names a queue operation for observers.
type Op string

const (
	OpPut  Op = "put"
	OpTake Op = "take"
)

// Observer is notified after each completed operation. Calls are made after
// the queue lock is released; depth is the occupancy right after the
// mutation and waited covers lock acquisition plus any blocking.
type Observer interface {
	ObservePut(depth int, waited time.Duration)
	ObserveTake(depth int, waited time.Duration)
	// ObserveTimeout is called when a context variant gives up.
	ObserveTimeout(op Op)
}

type options struct {
	observer Observer
	log      logger.Logger
}

// Option configures a Queue.
type Option func(*options)

// WithObserver attaches an Observer, typically a metrics recorder.
func WithObserver(o Observer) Option {
	return func(opts *options) {
		opts.observer = o
	}
}

// WithLogger sets the logger used for lifecycle events.
func WithLogger(l logger.Logger) Option {
	return func(opts *options) {
		if l != nil {
			opts.log = l
		}
	}
}

func defaultOptions() options {
	return options{log: logger.Discard()}
}
