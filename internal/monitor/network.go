package monitor

import (
	"context"
	"sync"
	"time"
)

// NetworkMonitor turns cumulative interface counters into throughput.
type NetworkMonitor struct {
	source CounterSource
	logger Logger

	mu       sync.Mutex
	snapshot NetworkSnapshot
	prevRx   uint64
	prevTx   uint64
	prevTime time.Time
}

// NewNetworkMonitor creates a monitor over source.
func NewNetworkMonitor(source CounterSource, logger Logger) *NetworkMonitor {
	return &NetworkMonitor{
		source: source,
		logger: orNop(logger),
	}
}

// Update samples the counters. The first sample only primes the baseline,
// so rates start at zero. now is the sample time.
func (m *NetworkMonitor) Update(ctx context.Context, now time.Time) error {
	rx, tx, err := m.source.NetCounters(ctx)
	if err != nil {
		m.logger.Debug("network counters unavailable", "error", err)
		return NewComponentError(ErrorSourceNetwork, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := NetworkSnapshot{RxTotal: rx, TxTotal: tx}
	if !m.prevTime.IsZero() {
		elapsed := now.Sub(m.prevTime).Seconds()
		snap.RxBytesPerSec = counterRate(m.prevRx, rx, elapsed)
		snap.TxBytesPerSec = counterRate(m.prevTx, tx, elapsed)
	}
	m.snapshot = snap
	m.prevRx, m.prevTx, m.prevTime = rx, tx, now
	return nil
}

// Snapshot returns the latest throughput.
func (m *NetworkMonitor) Snapshot() NetworkSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot
}

// counterRate returns the per-second change of a cumulative counter.
// A counter that went backwards (wrap or reset) yields 0.
func counterRate(prev, curr uint64, elapsed float64) float64 {
	if curr < prev || elapsed <= 0 {
		return 0
	}
	return float64(curr-prev) / elapsed
}
