package monitor

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
)

// gpuChips are hwmon driver names that belong to a discrete or integrated GPU.
var gpuChips = []string{"amdgpu", "radeon", "nouveau"}

// hwmonSensor is one temperature input under /sys/class/hwmon.
type hwmonSensor struct {
	// Chip is the driver name (e.g., "amdgpu", "coretemp").
	Chip string
	// Label is the sensor label, or its file prefix when unlabeled.
	Label string
	// Celsius is the current reading.
	Celsius float64
}

// hwmonReader reads temperature inputs from sysfs. It backs the GPU
// reading on machines without nvidia-smi.
type hwmonReader struct {
	hwmonPath string
}

// newHwmonReader creates a new hwmonReader with default paths.
func newHwmonReader() *hwmonReader {
	return &hwmonReader{
		hwmonPath: "/sys/class/hwmon",
	}
}

// Sensors lists every readable temperature input. A missing hwmon tree
// yields no sensors and no error.
func (r *hwmonReader) Sensors() ([]hwmonSensor, error) {
	entries, err := os.ReadDir(r.hwmonPath)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", r.hwmonPath, err)
	}

	var sensors []hwmonSensor
	for _, entry := range entries {
		if !strings.HasPrefix(entry.Name(), "hwmon") {
			continue
		}
		sensors = append(sensors, r.readChip(filepath.Join(r.hwmonPath, entry.Name()))...)
	}
	return sensors, nil
}

// GPUTemperature returns the first GPU chip reading, preferring the
// "edge" sensor that amdgpu exposes alongside junction and memory.
func (r *hwmonReader) GPUTemperature() (float64, error) {
	sensors, err := r.Sensors()
	if err != nil {
		return 0, err
	}

	var fallback float64
	for _, s := range sensors {
		if !slices.Contains(gpuChips, s.Chip) || s.Celsius <= 0 {
			continue
		}
		if strings.EqualFold(s.Label, "edge") {
			return s.Celsius, nil
		}
		if fallback == 0 {
			fallback = s.Celsius
		}
	}
	if fallback == 0 {
		return 0, fmt.Errorf("hwmon gpu sensor: %w", ErrNoData)
	}
	return fallback, nil
}

// readChip reads all temperature inputs of one hwmon device. Unreadable
// inputs are skipped.
func (r *hwmonReader) readChip(devicePath string) []hwmonSensor {
	chip := filepath.Base(devicePath)
	if b, err := os.ReadFile(filepath.Join(devicePath, "name")); err == nil {
		chip = strings.TrimSpace(string(b))
	} else if link, err := os.Readlink(filepath.Join(devicePath, "device")); err == nil {
		chip = filepath.Base(link)
	}

	entries, err := os.ReadDir(devicePath)
	if err != nil {
		return nil
	}

	var sensors []hwmonSensor
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, "temp") || !strings.HasSuffix(name, "_input") {
			continue
		}
		prefix := strings.TrimSuffix(name, "_input")

		raw, err := os.ReadFile(filepath.Join(devicePath, name))
		if err != nil {
			continue
		}
		milli, err := strconv.ParseInt(strings.TrimSpace(string(raw)), 10, 64)
		if err != nil {
			continue
		}

		label := prefix
		if b, err := os.ReadFile(filepath.Join(devicePath, prefix+"_label")); err == nil {
			label = strings.TrimSpace(string(b))
		}

		sensors = append(sensors, hwmonSensor{
			Chip:    chip,
			Label:   label,
			Celsius: float64(milli) / 1000.0,
		})
	}
	slices.SortFunc(sensors, func(a, b hwmonSensor) int { return strings.Compare(a.Label, b.Label) })
	return sensors
}
