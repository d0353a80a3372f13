package monitor

import (
	"context"
	"strings"
	"sync"
	"time"
)

// DiskIOMonitor reports aggregate read and write throughput across
// whole physical disks. Partitions are skipped so bytes are not counted twice.
type DiskIOMonitor struct {
	source CounterSource
	logger Logger

	mu       sync.Mutex
	snapshot DiskIOSnapshot
	prev     map[string]DiskCounter
	prevTime time.Time
}

// NewDiskIOMonitor creates a monitor over source.
func NewDiskIOMonitor(source CounterSource, logger Logger) *DiskIOMonitor {
	return &DiskIOMonitor{
		source: source,
		logger: orNop(logger),
	}
}

// Update samples the block device counters taken at now.
func (m *DiskIOMonitor) Update(ctx context.Context, now time.Time) error {
	counters, err := m.source.DiskCounters(ctx)
	if err != nil {
		m.logger.Debug("disk counters unavailable", "error", err)
		return NewComponentError(ErrorSourceDiskIO, err)
	}
	current := make(map[string]DiskCounter, len(counters))
	for name, c := range counters {
		if isPhysicalDisk(name) {
			current[name] = c
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var snap DiskIOSnapshot
	if !m.prevTime.IsZero() {
		elapsed := now.Sub(m.prevTime).Seconds()
		for name, curr := range current {
			prev, ok := m.prev[name]
			if !ok {
				continue
			}
			snap.ReadBytesPerSec += counterRate(prev.ReadBytes, curr.ReadBytes, elapsed)
			snap.WriteBytesPerSec += counterRate(prev.WriteBytes, curr.WriteBytes, elapsed)
		}
	}
	m.snapshot = snap
	m.prev = current
	m.prevTime = now
	return nil
}

// Snapshot returns the latest throughput.
func (m *DiskIOMonitor) Snapshot() DiskIOSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot
}

// isPhysicalDisk reports whether name is a whole disk rather than a
// partition or a virtual device.
//
//	sd[a-z], hd[a-z], vd[a-z], xvd[a-z]   SCSI/SATA, IDE, VirtIO, Xen
//	nvme<N>n<M>                           NVMe namespaces (no pN suffix)
//	mmcblk<N>                             MMC/SD cards (no pN suffix)
func isPhysicalDisk(name string) bool {
	if len(name) >= 3 {
		switch name[:2] {
		case "sd", "hd", "vd":
			return len(name) == 3
		case "xv":
			if len(name) >= 4 && name[2] == 'd' {
				return len(name) == 4
			}
		}
	}

	if rest, ok := strings.CutPrefix(name, "nvme"); ok {
		return strings.Contains(rest, "n") && !strings.Contains(rest, "p")
	}
	if rest, ok := strings.CutPrefix(name, "mmcblk"); ok {
		return rest != "" && !strings.Contains(rest, "p")
	}
	return false
}
