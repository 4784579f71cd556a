// Package metrics provides Prometheus metrics for bounded queues
package metrics

import (
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/xyhelper/ringqueue/blockingqueue"
)

// QueueMetrics contains Prometheus metrics for one named queue and implements
// blockingqueue.Observer.
type QueueMetrics struct {
	name string

	operationsTotal   *prometheus.CounterVec
	waitDuration      *prometheus.HistogramVec
	timeoutsTotal     *prometheus.CounterVec
	depthGauge        *prometheus.GaugeVec
	capacityGauge     *prometheus.GaugeVec
	boundReachedTotal *prometheus.CounterVec

	capacity int
	depthFn  atomic.Pointer[func() int]
}

var _ blockingqueue.Observer = (*QueueMetrics)(nil)

// NewQueueMetrics creates and registers metrics for the queue called name.
func NewQueueMetrics(registry prometheus.Registerer, name string, capacity int) (*QueueMetrics, error) {
	m := &QueueMetrics{name: name, capacity: capacity}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	m.capacityGauge.WithLabelValues(name).Set(float64(capacity))
	return m, nil
}

// initMetrics initializes all Prometheus metrics
func (m *QueueMetrics) initMetrics() {
	m.operationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ringqueue_operations_total",
			Help: "Total number of completed queue operations",
		},
		[]string{"queue", "operation"}, // operation: put, take
	)

	m.waitDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ringqueue_wait_duration_seconds",
			Help:    "Time spent acquiring the queue and waiting for its predicate",
			Buckets: prometheus.ExponentialBuckets(0.000001, 4, 12), // 1us to ~4s
		},
		[]string{"queue", "operation"},
	)

	m.timeoutsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ringqueue_timeouts_total",
			Help: "Total number of bounded waits that gave up",
		},
		[]string{"queue", "operation"},
	)

	m.depthGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ringqueue_depth",
			Help: "Occupied slots, read at scrape time when tracked",
		},
		[]string{"queue"},
	)

	m.capacityGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ringqueue_capacity",
			Help: "Fixed queue capacity",
		},
		[]string{"queue"},
	)

	m.boundReachedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ringqueue_full_total",
			Help: "Number of puts that left the queue full",
		},
		[]string{"queue"},
	)
}

// Describe implements prometheus.Collector
func (m *QueueMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.operationsTotal.Describe(ch)
	m.waitDuration.Describe(ch)
	m.timeoutsTotal.Describe(ch)
	m.depthGauge.Describe(ch)
	m.capacityGauge.Describe(ch)
	m.boundReachedTotal.Describe(ch)
}

// TrackDepth makes the depth gauge read fn at scrape time instead of taking
// the depth reported by each operation. Observers run after the queue lock is
// released, so reported depths can arrive out of order; fn, typically the
// queue's Len, cannot.
func (m *QueueMetrics) TrackDepth(fn func() int) {
	m.depthFn.Store(&fn)
}

// Collect implements prometheus.Collector
func (m *QueueMetrics) Collect(ch chan<- prometheus.Metric) {
	if fn := m.depthFn.Load(); fn != nil {
		m.depthGauge.WithLabelValues(m.name).Set(float64((*fn)()))
	}
	m.operationsTotal.Collect(ch)
	m.waitDuration.Collect(ch)
	m.timeoutsTotal.Collect(ch)
	m.depthGauge.Collect(ch)
	m.capacityGauge.Collect(ch)
	m.boundReachedTotal.Collect(ch)
}

// ObservePut records a completed put.
func (m *QueueMetrics) ObservePut(depth int, waited time.Duration) {
	m.observe(blockingqueue.OpPut, depth, waited)
	if depth >= m.capacity {
		m.boundReachedTotal.WithLabelValues(m.name).Inc()
	}
}

// ObserveTake records a completed take.
func (m *QueueMetrics) ObserveTake(depth int, waited time.Duration) {
	m.observe(blockingqueue.OpTake, depth, waited)
}

// ObserveTimeout records a bounded wait that gave up.
func (m *QueueMetrics) ObserveTimeout(op blockingqueue.Op) {
	m.timeoutsTotal.WithLabelValues(m.name, string(op)).Inc()
}

func (m *QueueMetrics) observe(op blockingqueue.Op, depth int, waited time.Duration) {
	m.operationsTotal.WithLabelValues(m.name, string(op)).Inc()
	m.waitDuration.WithLabelValues(m.name, string(op)).Observe(waited.Seconds())
	if m.depthFn.Load() == nil {
		// last writer wins; approximate under contention
		m.depthGauge.WithLabelValues(m.name).Set(float64(depth))
	}
}
