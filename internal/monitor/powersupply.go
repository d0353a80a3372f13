package monitor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// PowerSupplySource reports system batteries (laptops, UPS units) from
// /sys/class/power_supply. Peripheral batteries with scope "Device" are
// skipped; Solaar and headsetcontrol report those with better names.
type PowerSupplySource struct {
	powerSupplyPath string
}

// NewPowerSupplySource creates a source reading the default sysfs path.
func NewPowerSupplySource() *PowerSupplySource {
	return &PowerSupplySource{
		powerSupplyPath: "/sys/class/power_supply",
	}
}

// Name implements BatterySource.
func (s *PowerSupplySource) Name() string { return "power_supply" }

// Devices implements BatterySource. A missing sysfs tree yields no
// devices and no error.
func (s *PowerSupplySource) Devices(_ context.Context) ([]BatteryDevice, error) {
	entries, err := os.ReadDir(s.powerSupplyPath)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.powerSupplyPath, err)
	}

	var devices []BatteryDevice
	for _, entry := range entries {
		devicePath := filepath.Join(s.powerSupplyPath, entry.Name())
		supplyType, err := readSysfsString(filepath.Join(devicePath, "type"))
		if err != nil {
			continue
		}
		kind := strings.ToLower(supplyType)
		if kind != "battery" && kind != "ups" {
			continue
		}
		if scope, err := readSysfsString(filepath.Join(devicePath, "scope")); err == nil && strings.EqualFold(scope, "Device") {
			continue
		}
		if dev, ok := readPowerSupply(devicePath, entry.Name(), kind); ok {
			devices = append(devices, dev)
		}
	}
	return devices, nil
}

// readPowerSupply reads one battery. Batteries reporting present=0 are
// listed as disconnected.
func readPowerSupply(devicePath, name, kind string) (BatteryDevice, bool) {
	dev := BatteryDevice{
		Name:        name,
		Kind:        kind,
		IsConnected: true,
	}

	if model, err := readSysfsString(filepath.Join(devicePath, "model_name")); err == nil && model != "" {
		dev.Name = model
	}
	if present, err := readSysfsInt(filepath.Join(devicePath, "present")); err == nil && present != 1 {
		dev.IsConnected = false
		return dev, true
	}

	if capacity, err := readSysfsInt(filepath.Join(devicePath, "capacity")); err == nil && capacity >= 0 && capacity <= 100 {
		dev.Level = int(capacity)
		dev.HasLevel = true
	} else if level, ok := chargeLevel(devicePath); ok {
		dev.Level = level
		dev.HasLevel = true
	}

	if status, err := readSysfsString(filepath.Join(devicePath, "status")); err == nil && status != "" && status != "Unknown" {
		dev.Status = strings.ToLower(status)
	} else if level, err := readSysfsString(filepath.Join(devicePath, "capacity_level")); err == nil && level != "" && level != "Unknown" {
		dev.Status = strings.ToLower(level)
	}

	if !dev.HasLevel && dev.Status == "" {
		return dev, false
	}
	return dev, true
}

// chargeLevel derives a percentage from energy_* or charge_* counters for
// firmware that does not expose capacity.
func chargeLevel(devicePath string) (int, bool) {
	for _, prefix := range []string{"energy", "charge"} {
		now, errNow := readSysfsUint(filepath.Join(devicePath, prefix+"_now"))
		full, errFull := readSysfsUint(filepath.Join(devicePath, prefix+"_full"))
		if errNow != nil || errFull != nil || full == 0 {
			continue
		}
		return int(percentOf(now, full) + 0.5), true
	}
	return 0, false
}

// readSysfsString reads a string value from a sysfs file.
func readSysfsString(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// readSysfsInt reads an integer value from a sysfs file.
func readSysfsInt(path string) (int64, error) {
	str, err := readSysfsString(path)
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(str, 10, 64)
}

// readSysfsUint reads an unsigned integer value from a sysfs file.
func readSysfsUint(path string) (uint64, error) {
	str, err := readSysfsString(path)
	if err != nil {
		return 0, err
	}
	return strconv.ParseUint(str, 10, 64)
}
