package monitor

import (
	"context"
	"fmt"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/net"
)

// SystemSampler reads CPU and memory usage from the OS.
type SystemSampler interface {
	// CPUPercent returns global CPU usage since the previous call.
	CPUPercent(ctx context.Context) (float64, error)
	// Memory returns used and total physical memory in bytes.
	Memory(ctx context.Context) (used, total uint64, err error)
}

// SensorReading is one temperature sensor value.
type SensorReading struct {
	// Key is the sensor identifier (e.g., "coretemp_package_id_0").
	Key string
	// Celsius is the temperature in degrees Celsius.
	Celsius float64
}

// SensorSource reads temperature sensors.
type SensorSource interface {
	Temperatures(ctx context.Context) ([]SensorReading, error)
}

// Partition is one mounted filesystem.
type Partition struct {
	Device     string
	MountPoint string
	FSType     string
}

// MountSource enumerates mounts and measures their usage.
type MountSource interface {
	Partitions(ctx context.Context) ([]Partition, error)
	// Usage returns total and available bytes for a mount point.
	Usage(ctx context.Context, mountPoint string) (total, available uint64, err error)
}

// CounterSource reads cumulative network and block device counters.
type CounterSource interface {
	// NetCounters returns total bytes received and sent on all interfaces.
	NetCounters(ctx context.Context) (rx, tx uint64, err error)
	// DiskCounters returns cumulative bytes read and written per device.
	DiskCounters(ctx context.Context) (map[string]DiskCounter, error)
}

// DiskCounter holds cumulative byte counters for one block device.
type DiskCounter struct {
	ReadBytes  uint64
	WriteBytes uint64
}

// GopsutilSampler implements every sampling interface with gopsutil.
type GopsutilSampler struct{}

// NewGopsutilSampler returns the production sampler.
func NewGopsutilSampler() *GopsutilSampler {
	return &GopsutilSampler{}
}

// CPUPercent implements SystemSampler.
func (GopsutilSampler) CPUPercent(ctx context.Context) (float64, error) {
	percents, err := cpu.PercentWithContext(ctx, 0, false)
	if err != nil {
		return 0, fmt.Errorf("cpu percent: %w", err)
	}
	if len(percents) == 0 {
		return 0, fmt.Errorf("cpu percent: %w", ErrNoData)
	}
	return percents[0], nil
}

// Memory implements SystemSampler.
func (GopsutilSampler) Memory(ctx context.Context) (used, total uint64, err error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("virtual memory: %w", err)
	}
	return vm.Used, vm.Total, nil
}

// Temperatures implements SensorSource. gopsutil reports partial results
// alongside a warning error, so readings win over the error when present.
func (GopsutilSampler) Temperatures(ctx context.Context) ([]SensorReading, error) {
	stats, err := host.SensorsTemperaturesWithContext(ctx)
	if len(stats) == 0 {
		if err != nil {
			return nil, fmt.Errorf("sensors: %w", err)
		}
		return nil, nil
	}
	readings := make([]SensorReading, 0, len(stats))
	for _, s := range stats {
		readings = append(readings, SensorReading{Key: s.SensorKey, Celsius: s.Temperature})
	}
	return readings, nil
}

// Partitions implements MountSource.
func (GopsutilSampler) Partitions(ctx context.Context) ([]Partition, error) {
	parts, err := disk.PartitionsWithContext(ctx, false)
	if err != nil && len(parts) == 0 {
		return nil, fmt.Errorf("partitions: %w", err)
	}
	result := make([]Partition, 0, len(parts))
	for _, p := range parts {
		result = append(result, Partition{Device: p.Device, MountPoint: p.Mountpoint, FSType: p.Fstype})
	}
	return result, nil
}

// Usage implements MountSource. Available space is what an unprivileged
// user can still write.
func (GopsutilSampler) Usage(ctx context.Context, mountPoint string) (total, available uint64, err error) {
	u, err := disk.UsageWithContext(ctx, mountPoint)
	if err != nil {
		return 0, 0, fmt.Errorf("usage %s: %w", mountPoint, err)
	}
	return u.Total, u.Free, nil
}

// NetCounters implements CounterSource.
func (GopsutilSampler) NetCounters(ctx context.Context) (rx, tx uint64, err error) {
	counters, err := net.IOCountersWithContext(ctx, false)
	if err != nil {
		return 0, 0, fmt.Errorf("net counters: %w", err)
	}
	if len(counters) == 0 {
		return 0, 0, fmt.Errorf("net counters: %w", ErrNoData)
	}
	return counters[0].BytesRecv, counters[0].BytesSent, nil
}

// DiskCounters implements CounterSource.
func (GopsutilSampler) DiskCounters(ctx context.Context) (map[string]DiskCounter, error) {
	counters, err := disk.IOCountersWithContext(ctx)
	if err != nil && len(counters) == 0 {
		return nil, fmt.Errorf("disk counters: %w", err)
	}
	result := make(map[string]DiskCounter, len(counters))
	for name, c := range counters {
		result[name] = DiskCounter{ReadBytes: c.ReadBytes, WriteBytes: c.WriteBytes}
	}
	return result, nil
}
