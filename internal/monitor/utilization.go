package monitor

import (
	"context"
	"errors"
	"sync"
)

// UtilizationMonitor samples CPU, memory and GPU usage.
type UtilizationMonitor struct {
	sampler SystemSampler
	gpu     GPUUsageSource
	logger  Logger

	mu   sync.RWMutex
	snap UtilizationSnapshot
}

// NewUtilizationMonitor creates a monitor. gpu may be nil when no vendor
// tool is wanted; otherwise it is detected here, once.
func NewUtilizationMonitor(sampler SystemSampler, gpu GPUUsageSource, logger Logger) *UtilizationMonitor {
	m := &UtilizationMonitor{
		sampler: sampler,
		gpu:     gpu,
		logger:  orNop(logger),
	}
	m.snap.GPUAvailable = gpu != nil && gpu.Available()
	return m
}

// Update takes a fresh sample. Any failing reading becomes 0; the returned
// error is informational only.
func (m *UtilizationMonitor) Update(ctx context.Context) error {
	var errs []error

	cpuUsage, err := m.sampler.CPUPercent(ctx)
	if err != nil {
		errs = append(errs, err)
		cpuUsage = 0
	}

	used, total, err := m.sampler.Memory(ctx)
	if err != nil {
		errs = append(errs, err)
		used, total = 0, 0
	}

	m.mu.RLock()
	gpuAvailable := m.snap.GPUAvailable
	m.mu.RUnlock()

	var gpuUsage float64
	if gpuAvailable {
		gpuUsage, err = m.gpu.Usage(ctx)
		if err != nil {
			errs = append(errs, err)
			gpuUsage = 0
		}
	}

	snap := UtilizationSnapshot{
		CPUUsage:     clampPercent(cpuUsage),
		MemoryUsage:  percentOf(used, total),
		MemoryUsed:   used,
		MemoryTotal:  total,
		GPUUsage:     clampPercent(gpuUsage),
		GPUAvailable: gpuAvailable,
	}

	m.mu.Lock()
	m.snap = snap
	m.mu.Unlock()

	if err := errors.Join(errs...); err != nil {
		m.logger.Debug("utilization sample incomplete", "error", err)
		return NewComponentError(ErrorSourceUtilization, err)
	}
	return nil
}

// Snapshot returns the latest sample.
func (m *UtilizationMonitor) Snapshot() UtilizationSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snap
}

// percentOf returns part/whole*100 in [0,100], or 0 when whole is 0.
func percentOf(part, whole uint64) float64 {
	if whole == 0 {
		return 0
	}
	return clampPercent(float64(part) / float64(whole) * 100)
}

func clampPercent(v float64) float64 {
	switch {
	case v != v, v < 0:
		return 0
	case v > 100:
		return 100
	default:
		return v
	}
}
