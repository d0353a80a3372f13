package monitor

import (
	"context"
	"strings"
	"time"
)

// DiskModelInterval is how often the block device model table is rebuilt.
const DiskModelInterval = 10 * time.Second

// DiskModelSource maps base block device names (e.g., "nvme0n1") to a
// "vendor model" display string.
type DiskModelSource interface {
	Models(ctx context.Context) (map[string]string, error)
}

// Lsblk reads device models with lsblk.
type Lsblk struct {
	runner CommandRunner
}

// NewLsblk creates a DiskModelSource backed by lsblk.
func NewLsblk(runner CommandRunner) *Lsblk {
	return &Lsblk{runner: runner}
}

// Models implements DiskModelSource.
func (l *Lsblk) Models(ctx context.Context) (map[string]string, error) {
	out, err := l.runner.Run(ctx, "lsblk", "-ndo", "NAME,VENDOR,MODEL")
	if err != nil {
		return nil, err
	}
	return ParseLsblk(string(out)), nil
}

// ParseLsblk parses `lsblk -ndo NAME,VENDOR,MODEL` output. Lines with
// fewer than two columns (no vendor or model) are ignored.
func ParseLsblk(output string) map[string]string {
	models := make(map[string]string)
	for _, line := range strings.Split(output, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		models[fields[0]] = strings.Join(fields[1:], " ")
	}
	return models
}

// BaseDevice strips the /dev/ prefix and the partition suffix:
// /dev/sda1 is "sda", /dev/nvme0n1p1 is "nvme0n1", /dev/mmcblk0p2 is
// "mmcblk0". Names without the /dev/ prefix are returned unchanged.
func BaseDevice(device string) string {
	dev, ok := strings.CutPrefix(device, "/dev/")
	if !ok {
		return device
	}
	if strings.Contains(dev, "nvme") || strings.Contains(dev, "mmcblk") {
		base, _, _ := strings.Cut(dev, "p")
		return base
	}
	return strings.TrimRight(dev, "0123456789")
}

// ResolveLabel picks the display name for a mount. "/home" is always
// "Home"; "/" falls back to "System"; other mounts fall back to the last
// path segment.
func ResolveLabel(mountPoint, baseDevice string, models map[string]string) string {
	if mountPoint == "/home" {
		return "Home"
	}
	if model, ok := models[baseDevice]; ok && model != "" {
		return model
	}
	if mountPoint == "/" {
		return "System"
	}
	if i := strings.LastIndex(mountPoint, "/"); i >= 0 && i < len(mountPoint)-1 {
		return mountPoint[i+1:]
	}
	return mountPoint
}
