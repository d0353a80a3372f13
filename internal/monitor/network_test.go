package monitor

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestCounterRate(t *testing.T) {
	tests := []struct {
		name     string
		prev     uint64
		curr     uint64
		elapsed  float64
		expected float64
	}{
		{"normal increase", 1000, 2000, 1.0, 1000.0},
		{"no change", 1000, 1000, 1.0, 0.0},
		{"counter wrap-around", 2000, 1000, 1.0, 0.0},
		{"zero elapsed time", 1000, 2000, 0.0, 0.0},
		{"negative elapsed time", 1000, 2000, -1.0, 0.0},
		{"half second elapsed", 1000, 2000, 0.5, 2000.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := counterRate(tt.prev, tt.curr, tt.elapsed)
			if got != tt.expected {
				t.Errorf("counterRate() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestNetworkMonitorRates(t *testing.T) {
	sampler := &fakeSampler{rx: 10_000, tx: 4_000}
	m := NewNetworkMonitor(sampler, nil)
	now := time.Unix(1000, 0)
	ctx := context.Background()

	if err := m.Update(ctx, now); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	first := m.Snapshot()
	if first.RxBytesPerSec != 0 || first.TxBytesPerSec != 0 {
		t.Errorf("first sample rates = %v/%v, want 0/0", first.RxBytesPerSec, first.TxBytesPerSec)
	}
	if first.RxTotal != 10_000 || first.TxTotal != 4_000 {
		t.Errorf("totals = %d/%d, want 10000/4000", first.RxTotal, first.TxTotal)
	}

	sampler.rx, sampler.tx = 14_000, 5_000
	now = now.Add(2 * time.Second)
	if err := m.Update(ctx, now); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	snap := m.Snapshot()
	if snap.RxBytesPerSec != 2000 {
		t.Errorf("RxBytesPerSec = %v, want 2000", snap.RxBytesPerSec)
	}
	if snap.TxBytesPerSec != 500 {
		t.Errorf("TxBytesPerSec = %v, want 500", snap.TxBytesPerSec)
	}

	// Interface reset: counters drop.
	sampler.rx, sampler.tx = 100, 100
	now = now.Add(time.Second)
	_ = m.Update(ctx, now)
	if snap := m.Snapshot(); snap.RxBytesPerSec != 0 || snap.TxBytesPerSec != 0 {
		t.Errorf("rates after reset = %v/%v, want 0/0", snap.RxBytesPerSec, snap.TxBytesPerSec)
	}
}

func TestNetworkMonitorErrorKeepsSnapshot(t *testing.T) {
	sampler := &fakeSampler{rx: 500, tx: 500}
	m := NewNetworkMonitor(sampler, nil)
	ctx := context.Background()
	now := time.Unix(1000, 0)
	_ = m.Update(ctx, now)

	sampler.netErr = errors.New("proc unavailable")
	err := m.Update(ctx, now.Add(time.Second))
	if !IsComponentError(err, ErrorSourceNetwork) {
		t.Errorf("Update() error = %v, want network component error", err)
	}
	if m.Snapshot().RxTotal != 500 {
		t.Errorf("RxTotal = %d, want previous 500", m.Snapshot().RxTotal)
	}
}
