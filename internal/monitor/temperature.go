package monitor

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
)

// MinTemperatureInterval throttles sensor reads; sensors update slowly
// and nvidia-smi is comparatively expensive.
const MinTemperatureInterval = 2 * time.Second

// cpuSensorPreference orders substrings of sensor keys from most to least
// representative of the whole CPU package.
var cpuSensorPreference = []string{
	"package", "tctl", "tdie", "cpu", "core", "k10temp", "coretemp",
}

type gpuTemperatureReader interface {
	GPUTemperature() (float64, error)
}

// TemperatureMonitor tracks CPU and GPU temperatures.
type TemperatureMonitor struct {
	sensors SensorSource
	gpu     GPUUsageSource
	hwmon   gpuTemperatureReader
	logger  Logger

	mu         sync.RWMutex
	snap       TemperatureSnapshot
	lastUpdate time.Time
}

// NewTemperatureMonitor creates a monitor. gpu may be nil; the hwmon GPU
// drivers are consulted when it is nil or unavailable.
func NewTemperatureMonitor(sensors SensorSource, gpu GPUUsageSource, logger Logger) *TemperatureMonitor {
	return &TemperatureMonitor{
		sensors: sensors,
		gpu:     gpu,
		hwmon:   newHwmonReader(),
		logger:  orNop(logger),
	}
}

// Update refreshes both readings unless the previous refresh was less than
// MinTemperatureInterval before now. Unavailable sensors read as 0.
func (m *TemperatureMonitor) Update(ctx context.Context, now time.Time) error {
	m.mu.RLock()
	due := m.lastUpdate.IsZero() || now.Sub(m.lastUpdate) >= MinTemperatureInterval
	m.mu.RUnlock()
	if !due {
		return nil
	}

	var errs []error

	var cpuTemp float64
	readings, err := m.sensors.Temperatures(ctx)
	if err != nil {
		errs = append(errs, err)
	} else {
		cpuTemp = pickCPUTemperature(readings)
	}

	gpuTemp, err := m.readGPU(ctx)
	if err != nil && !errors.Is(err, ErrNoData) {
		errs = append(errs, err)
	}

	m.mu.Lock()
	m.snap = TemperatureSnapshot{CPUTemp: cpuTemp, GPUTemp: gpuTemp}
	m.lastUpdate = now
	m.mu.Unlock()

	if err := errors.Join(errs...); err != nil {
		m.logger.Debug("temperature read incomplete", "error", err)
		return NewComponentError(ErrorSourceTemperature, err)
	}
	return nil
}

// Snapshot returns the latest readings.
func (m *TemperatureMonitor) Snapshot() TemperatureSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snap
}

func (m *TemperatureMonitor) readGPU(ctx context.Context) (float64, error) {
	if m.gpu != nil && m.gpu.Available() {
		if t, err := m.gpu.Temperature(ctx); err == nil && t > 0 {
			return t, nil
		}
	}
	if m.hwmon == nil {
		return 0, ErrNoData
	}
	return m.hwmon.GPUTemperature()
}

// pickCPUTemperature returns the first positive reading whose key matches
// the earliest entry of cpuSensorPreference, or 0.
func pickCPUTemperature(readings []SensorReading) float64 {
	for _, pref := range cpuSensorPreference {
		for _, r := range readings {
			if r.Celsius > 0 && strings.Contains(strings.ToLower(r.Key), pref) {
				return r.Celsius
			}
		}
	}
	return 0
}
