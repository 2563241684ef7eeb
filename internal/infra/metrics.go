package infra

import (
	"sync/atomic"
	"time"
)

// Metrics provides lightweight replay observability without external dependencies.
// Uses atomic operations so a monitor goroutine may read while a replay runs.
type Metrics struct {
	// Counters
	ticksProcessed atomic.Uint64
	ordersPlaced   atomic.Uint64
	ordersFilled   atomic.Uint64
	ordersCanceled atomic.Uint64
	rejections     atomic.Uint64

	// Latency tracking (per tick pass)
	latencySumNs atomic.Int64
	latencyCount atomic.Uint64
}

// GlobalMetrics is the singleton metrics instance.
var GlobalMetrics = &Metrics{}

// RecordTick records one tick pass with its latency.
func (m *Metrics) RecordTick(latencyNs int64) {
	m.ticksProcessed.Add(1)
	m.latencySumNs.Add(latencyNs)
	m.latencyCount.Add(1)
}

// RecordOrderPlaced records an accepted order.
func (m *Metrics) RecordOrderPlaced() {
	m.ordersPlaced.Add(1)
}

// RecordOrderFilled records a filled order.
func (m *Metrics) RecordOrderFilled() {
	m.ordersFilled.Add(1)
}

// RecordOrderCanceled records a successful cancel.
func (m *Metrics) RecordOrderCanceled() {
	m.ordersCanceled.Add(1)
}

// RecordRejection records an event the engine refused.
func (m *Metrics) RecordRejection() {
	m.rejections.Add(1)
}

// MetricsSnapshot is a point-in-time view of all metrics.
type MetricsSnapshot struct {
	TicksProcessed uint64    `json:"ticks_processed"`
	OrdersPlaced   uint64    `json:"orders_placed"`
	OrdersFilled   uint64    `json:"orders_filled"`
	OrdersCanceled uint64    `json:"orders_canceled"`
	Rejections     uint64    `json:"rejections"`
	AvgLatencyNs   int64     `json:"avg_latency_ns"`
	Timestamp      time.Time `json:"timestamp"`
}

// Snapshot returns current metrics as a snapshot.
func (m *Metrics) Snapshot() MetricsSnapshot {
	var avgLatency int64
	count := m.latencyCount.Load()
	if count > 0 {
		avgLatency = m.latencySumNs.Load() / int64(count)
	}

	return MetricsSnapshot{
		TicksProcessed: m.ticksProcessed.Load(),
		OrdersPlaced:   m.ordersPlaced.Load(),
		OrdersFilled:   m.ordersFilled.Load(),
		OrdersCanceled: m.ordersCanceled.Load(),
		Rejections:     m.rejections.Load(),
		AvgLatencyNs:   avgLatency,
		Timestamp:      time.Now(),
	}
}

// Reset clears all metrics (for testing).
func (m *Metrics) Reset() {
	m.ticksProcessed.Store(0)
	m.ordersPlaced.Store(0)
	m.ordersFilled.Store(0)
	m.ordersCanceled.Store(0)
	m.rejections.Store(0)
	m.latencySumNs.Store(0)
	m.latencyCount.Store(0)
}
