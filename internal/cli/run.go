package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/xyhelper/ringqueue/blockingqueue"
	"github.com/xyhelper/ringqueue/internal/config"
	"github.com/xyhelper/ringqueue/internal/logger"
	"github.com/xyhelper/ringqueue/internal/metrics"
	"github.com/xyhelper/ringqueue/internal/pipeline"
	"github.com/xyhelper/ringqueue/stream"
)

const shutdownTimeout = 5 * time.Second

func runCommand(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run a producer/consumer session over one bounded queue",
		Long: `Run starts the configured producers and consumers over a single bounded
queue. Producers send the integers 0..items-1; the last producer to finish
sends end of stream, which every consumer passes on before exiting.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := load()
			if err != nil {
				return err
			}
			return runSession(cmd.Context(), settings, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
}

// runSession runs one session, logging to logw and printing a summary to out.
func runSession(ctx context.Context, s *config.Settings, out, logw io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	log := logger.NewSlogLogger(logw, logger.ParseLevel(s.Log.Level), logger.Format(s.Log.Format)).
		With(logger.String("session", uuid.NewString()))

	registry := prometheus.NewRegistry()
	qm, err := metrics.NewQueueMetrics(registry, "session", s.Queue.Capacity)
	if err != nil {
		return fmt.Errorf("registering metrics: %w", err)
	}

	if s.Metrics.Listen != "" {
		_, stop, err := serveMetrics(s.Metrics.Listen, registry, log.Module("metrics"))
		if err != nil {
			return err
		}
		defer stop()
	}

	ch, err := stream.New[int](s.Queue.Capacity, s.Producers,
		blockingqueue.WithObserver(qm),
		blockingqueue.WithLogger(log.Module("queue")))
	if err != nil {
		return err
	}

	qm.TrackDepth(ch.Len)

	producers := s.Producers
	produce := func(id, i int) (int, error) {
		// interleave so producer values cover 0..items-1 exactly once
		return i*producers + id, nil
	}
	consume := func(int, int) error { return nil }

	runner, err := pipeline.New(ch, pipeline.Config{
		Producers: s.Producers,
		Consumers: s.Consumers,
		Items:     s.Items,
		Rate:      s.Rate,
		LogEvery:  s.LogEvery,
	}, produce, consume, log.Module("pipeline"))
	if err != nil {
		return err
	}

	stats, err := runner.Run(ctx)
	fmt.Fprintf(out, "produced=%d consumed=%d elapsed=%s\n",
		stats.TotalProduced(), stats.TotalConsumed(), stats.Elapsed.Round(time.Millisecond))
	for id, n := range stats.Consumed {
		fmt.Fprintf(out, "consumer %d: %d\n", id, n)
	}
	return err
}

// serveMetrics exposes registry on addr. It returns the bound address and a
// function that shuts the server down.
func serveMetrics(addr string, registry *prometheus.Registry, log logger.Logger) (string, func(), error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return "", nil, fmt.Errorf("metrics listener: %w", err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server failed", logger.Error(err))
		}
	}()
	bound := ln.Addr().String()
	log.Info("serving metrics", logger.String("addr", bound))

	return bound, func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Warn("metrics server shutdown", logger.Error(err))
		}
		<-done
	}, nil
}
