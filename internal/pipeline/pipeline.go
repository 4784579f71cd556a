// Package pipeline runs producer and consumer goroutines over a stream.Channel.
//
// It is the worker-pool collaborator of the queue: it starts the goroutines,
// joins them, and owns their lifetime. The queue itself never spawns or
// waits for goroutines.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/xyhelper/ringqueue/internal/logger"
	"github.com/xyhelper/ringqueue/stream"
)

// ErrInvalidConfig is wrapped by Config.Validate failures.
var ErrInvalidConfig = errors.New("pipeline: invalid config")

// Config describes a session.
type Config struct {
	Producers int
	Consumers int
	// Items is split across producers; the first Items%Producers producers
	// send one extra value.
	Items int
	// Rate limits each producer to Rate values per second. Zero disables pacing.
	Rate float64
	// LogEvery logs every LogEvery-th value each producer sends and each
	// consumer receives, at info level. Zero disables sampling.
	LogEvery int
}

// Validate checks c against a channel expecting the given producer count.
func (c Config) Validate() error {
	switch {
	case c.Producers < 1:
		return fmt.Errorf("%w: producers must be at least 1, got %d", ErrInvalidConfig, c.Producers)
	case c.Consumers < 1:
		return fmt.Errorf("%w: consumers must be at least 1, got %d", ErrInvalidConfig, c.Consumers)
	case c.Items < 0:
		return fmt.Errorf("%w: items must not be negative, got %d", ErrInvalidConfig, c.Items)
	case c.Rate < 0:
		return fmt.Errorf("%w: rate must not be negative, got %g", ErrInvalidConfig, c.Rate)
	}
	return nil
}

// ProduceFunc returns the i-th value of producer id.
type ProduceFunc[T any] func(id, i int) (T, error)

// ConsumeFunc handles one value received by consumer id.
type ConsumeFunc[T any] func(id int, v T) error

// Stats counts values per worker.
type Stats struct {
	Produced []int64
	Consumed []int64
	Elapsed  time.Duration
}

// TotalProduced sums Produced.
func (s Stats) TotalProduced() int64 { return sum(s.Produced) }

// TotalConsumed sums Consumed.
func (s Stats) TotalConsumed() int64 { return sum(s.Consumed) }

func sum(xs []int64) int64 {
	var n int64
	for _, x := range xs {
		n += x
	}
	return n
}

// Runner runs sessions over a channel created with cfg.Producers producers.
type Runner[T any] struct {
	ch      *stream.Channel[T]
	cfg     Config
	produce ProduceFunc[T]
	consume ConsumeFunc[T]
	log     logger.Logger
}

// New validates cfg and binds the worker functions.
func New[T any](ch *stream.Channel[T], cfg Config, produce ProduceFunc[T], consume ConsumeFunc[T], log logger.Logger) (*Runner[T], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if ch == nil || produce == nil || consume == nil {
		return nil, fmt.Errorf("%w: channel, produce and consume are required", ErrInvalidConfig)
	}
	if ch.Pending() != cfg.Producers {
		return nil, fmt.Errorf("%w: channel expects %d producers, config has %d",
			ErrInvalidConfig, ch.Pending(), cfg.Producers)
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Runner[T]{ch: ch, cfg: cfg, produce: produce, consume: consume, log: log}, nil
}

// Run starts all workers and waits for them.
//
// Consumers stop at end of stream, which the last producer to finish sends.
// The first worker error, or ctx ending, stops every worker; Run then returns
// that error. A Runner runs at most once, because the channel's end marker
// stays queued.
func (r *Runner[T]) Run(ctx context.Context) (Stats, error) {
	stats := Stats{
		Produced: make([]int64, r.cfg.Producers),
		Consumed: make([]int64, r.cfg.Consumers),
	}
	produced := make([]atomic.Int64, r.cfg.Producers)
	consumed := make([]atomic.Int64, r.cfg.Consumers)

	r.log.Info("session starting",
		logger.Int("producers", r.cfg.Producers),
		logger.Int("consumers", r.cfg.Consumers),
		logger.Int("items", r.cfg.Items),
		logger.Int("capacity", r.ch.Cap()))
	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	for id := range r.cfg.Producers {
		g.Go(func() error {
			return r.runProducer(gctx, id, &produced[id])
		})
	}
	for id := range r.cfg.Consumers {
		g.Go(func() error {
			return r.runConsumer(gctx, id, &consumed[id])
		})
	}
	err := g.Wait()

	for i := range produced {
		stats.Produced[i] = produced[i].Load()
	}
	for i := range consumed {
		stats.Consumed[i] = consumed[i].Load()
	}
	stats.Elapsed = time.Since(start)

	if err != nil {
		r.log.Warn("session stopped", logger.Error(err),
			logger.Int64("produced", stats.TotalProduced()),
			logger.Int64("consumed", stats.TotalConsumed()))
		return stats, err
	}
	r.log.Info("session finished",
		logger.Int64("produced", stats.TotalProduced()),
		logger.Int64("consumed", stats.TotalConsumed()),
		logger.Duration("elapsed", stats.Elapsed))
	return stats, nil
}

// share returns how many of Items producer id sends.
func (r *Runner[T]) share(id int) int {
	n := r.cfg.Items / r.cfg.Producers
	if id < r.cfg.Items%r.cfg.Producers {
		n++
	}
	return n
}

func (r *Runner[T]) runProducer(ctx context.Context, id int, count *atomic.Int64) error {
	log := r.log.Module("producer").With(logger.Int("producer", id))
	var limiter *rate.Limiter
	if r.cfg.Rate > 0 {
		limiter = rate.NewLimiter(rate.Limit(r.cfg.Rate), 1)
	}

	for i := range r.share(id) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if limiter != nil {
			if err := pace(ctx, limiter); err != nil {
				return err
			}
		}
		v, err := r.produce(id, i)
		if err != nil {
			return fmt.Errorf("producer %d: %w", id, err)
		}
		if err := r.ch.SendContext(ctx, v); err != nil {
			return err
		}
		count.Add(1)
		if r.sampled(i) {
			log.Info("produced", logger.Int("index", i), logger.Any("value", v))
		}
	}
	// Only a producer that sent its whole share counts down; on error the
	// group context stops the consumers instead.
	if err := r.ch.DoneContext(ctx); err != nil {
		return err
	}
	log.Debug("producer done", logger.Int64("sent", count.Load()))
	return nil
}

// pace waits for the limiter's next token. Unlike rate.Limiter.Wait it
// reports ctx.Err() rather than failing early when the delay would outlast
// the deadline.
func pace(ctx context.Context, l *rate.Limiter) error {
	res := l.Reserve()
	d := res.Delay()
	if d == 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		res.Cancel()
		return ctx.Err()
	}
}

func (r *Runner[T]) runConsumer(ctx context.Context, id int, count *atomic.Int64) error {
	log := r.log.Module("consumer").With(logger.Int("consumer", id))
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		v, err := r.ch.RecvContext(ctx)
		if errors.Is(err, stream.ErrEndOfStream) {
			log.Debug("consumer done", logger.Int64("received", count.Load()))
			return nil
		}
		if err != nil {
			return err
		}
		n := count.Add(1)
		if err := r.consume(id, v); err != nil {
			return fmt.Errorf("consumer %d: %w", id, err)
		}
		if r.sampled(int(n - 1)) {
			log.Info("consumed", logger.Int64("index", n-1), logger.Any("value", v))
		}
	}
}

func (r *Runner[T]) sampled(i int) bool {
	return r.cfg.LogEvery > 0 && i%r.cfg.LogEvery == 0
}
