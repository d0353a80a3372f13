package monitor

import (
	"context"
	"strings"
	"sync"

	"github.com/opd-ai/monwidget/internal/cache"
)

// storageRescanEvery is the number of updates between full mount rescans.
// Other updates only re-measure the known mounts.
const storageRescanEvery = 30

// excludedMountPrefixes are system and virtual mounts that are never shown.
var excludedMountPrefixes = []string{
	"/boot", "/snap", "/run", "/sys", "/proc", "/dev", "/tmp", "/var/snap",
}

// DiskCache persists the disk list shown before the first refresh.
type DiskCache interface {
	Load() cache.WidgetCache
	UpdateDisks(disks []cache.CachedDisk) error
}

// StorageMonitor tracks space on the root, home and removable mounts.
type StorageMonitor struct {
	mounts      MountSource
	modelSource DiskModelSource
	store       DiskCache
	logger      Logger

	models *Cell[map[string]string]

	// Owned by Update.
	updateMu   sync.Mutex
	partitions []Partition
	counter    int
	saved      bool

	mu    sync.RWMutex
	disks []DiskInfo
}

// NewStorageMonitor creates a monitor and shows the cached disk list,
// marked as loading, until the first update. store may be nil.
func NewStorageMonitor(mounts MountSource, models DiskModelSource, store DiskCache, logger Logger) *StorageMonitor {
	m := &StorageMonitor{
		mounts:      mounts,
		modelSource: models,
		store:       store,
		logger:      orNop(logger),
		models:      NewCell(map[string]string{}),
	}
	if store != nil {
		for _, d := range store.Load().Disks {
			m.disks = append(m.disks, DiskInfo{
				Name:       d.Name,
				MountPoint: d.MountPoint,
				IsLoading:  true,
			})
		}
	}
	return m
}

// Update re-measures the mounts. Every storageRescanEvery calls the mount
// table itself is re-read to pick up newly attached drives.
func (m *StorageMonitor) Update(ctx context.Context) error {
	m.updateMu.Lock()
	defer m.updateMu.Unlock()

	m.counter++
	rescan := m.counter >= storageRescanEvery
	if rescan {
		m.counter = 0
	}
	if m.partitions == nil || rescan {
		parts, err := m.mounts.Partitions(ctx)
		if err != nil {
			m.logger.Debug("mount scan failed", "error", err)
			return NewComponentError(ErrorSourceStorage, err)
		}
		m.partitions = filterPartitions(parts)
	}

	models := m.models.Load()
	disks := make([]DiskInfo, 0, len(m.partitions))
	for _, p := range m.partitions {
		total, available, err := m.mounts.Usage(ctx, p.MountPoint)
		if err != nil {
			m.logger.Debug("disk usage failed", "mount", p.MountPoint, "error", err)
			continue
		}
		var used uint64
		if total > available {
			used = total - available
		}
		disks = append(disks, DiskInfo{
			Name:           ResolveLabel(p.MountPoint, BaseDevice(p.Device), models),
			MountPoint:     p.MountPoint,
			Device:         p.Device,
			UsedPercentage: percentOf(used, total),
			TotalSpace:     total,
			AvailableSpace: available,
			UsedSpace:      used,
		})
	}

	m.mu.Lock()
	m.disks = disks
	m.mu.Unlock()

	if !m.saved && len(disks) > 0 && m.store != nil {
		m.saved = true
		if err := m.store.UpdateDisks(cachedDisks(disks)); err != nil {
			m.logger.Warn("failed to cache disk list", "error", err)
			return NewComponentError(ErrorSourceCache, err)
		}
	}
	return nil
}

// Disks returns the latest disk list.
func (m *StorageMonitor) Disks() []DiskInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]DiskInfo(nil), m.disks...)
}

// RefreshModels refreshes the device model table once. A failed refresh keeps
// the previous table.
func (m *StorageMonitor) RefreshModels(ctx context.Context) {
	if m.modelSource == nil {
		return
	}
	models, err := m.modelSource.Models(ctx)
	if err != nil {
		m.logger.Debug("disk model refresh failed", "error", err)
		return
	}
	m.models.Store(models)
}

// ModelPoller returns a poller that runs RefreshModels every DiskModelInterval.
func (m *StorageMonitor) ModelPoller() *Poller {
	return NewPoller("disk-model", DiskModelInterval, true, m.RefreshModels)
}

// IncludeMount reports whether a mount point is shown: the root, /home, and
// anything under /mnt or /media, minus system mounts.
func IncludeMount(mountPoint string) bool {
	for _, prefix := range excludedMountPrefixes {
		if strings.HasPrefix(mountPoint, prefix) {
			return false
		}
	}
	return mountPoint == "/" ||
		mountPoint == "/home" ||
		strings.HasPrefix(mountPoint, "/mnt/") ||
		strings.HasPrefix(mountPoint, "/media/")
}

// filterPartitions keeps shown mounts, first occurrence per mount point.
func filterPartitions(parts []Partition) []Partition {
	seen := make(map[string]bool, len(parts))
	kept := make([]Partition, 0, len(parts))
	for _, p := range parts {
		if !IncludeMount(p.MountPoint) || seen[p.MountPoint] {
			continue
		}
		seen[p.MountPoint] = true
		kept = append(kept, p)
	}
	return kept
}

func cachedDisks(disks []DiskInfo) []cache.CachedDisk {
	out := make([]cache.CachedDisk, 0, len(disks))
	for _, d := range disks {
		out = append(out, cache.CachedDisk{Name: d.Name, MountPoint: d.MountPoint})
	}
	return out
}
