package telemetry

import (
	"sync"
	"sync/atomic"
	"time"
)

// EventStats aggregates execution timings for one event kind.
type EventStats struct {
	Count   int64         `json:"count"`
	Total   time.Duration `json:"total_ns"`
	Max     time.Duration `json:"max_ns"`
	Skipped int64         `json:"-"`
}

// Metrics is the process-wide telemetry registry. Observations come from
// the orchestrator's consuming goroutine; gauges are sampled by the world
// clock; readers are HTTP handlers on their own goroutines.
type Metrics struct {
	mu      sync.Mutex
	byKind  map[string]*EventStats
	queue   atomic.Int64 // scheduler queue size, last sample
	players atomic.Int64 // online player count, last sample
}

func NewMetrics() *Metrics {
	return &Metrics{byKind: make(map[string]*EventStats)}
}

// ObserveEvent records one event execution duration under its kind.
func (m *Metrics) ObserveEvent(kind string, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st := m.byKind[kind]
	if st == nil {
		st = &EventStats{}
		m.byKind[kind] = st
	}
	st.Count++
	st.Total += d
	if d > st.Max {
		st.Max = d
	}
}

// SampleQueueSize stores the latest scheduler queue size.
func (m *Metrics) SampleQueueSize(n int) {
	m.queue.Store(int64(n))
}

// SamplePlayersOnline stores the latest online player count.
func (m *Metrics) SamplePlayersOnline(n int) {
	m.players.Store(int64(n))
}

// QueueSize returns the last sampled scheduler queue size.
func (m *Metrics) QueueSize() int64 { return m.queue.Load() }

// PlayersOnline returns the last sampled online player count.
func (m *Metrics) PlayersOnline() int64 { return m.players.Load() }

// EventSnapshot returns a copy of all per-kind stats.
func (m *Metrics) EventSnapshot() map[string]EventStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]EventStats, len(m.byKind))
	for k, st := range m.byKind {
		out[k] = *st
	}
	return out
}
