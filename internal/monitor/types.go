// Package monitor provides the data sources behind the widget.
// Each monitor owns one source's refresh logic and its last-known snapshot;
// failures stay inside the monitor and never reach the scheduler.
package monitor

import (
	"math"
	"time"
)

// UtilizationSnapshot contains CPU, memory and GPU usage.
type UtilizationSnapshot struct {
	// CPUUsage is the global CPU usage as a percentage (0-100).
	CPUUsage float64
	// MemoryUsage is the used memory as a percentage (0-100).
	MemoryUsage float64
	// MemoryUsed is the used memory in bytes.
	MemoryUsed uint64
	// MemoryTotal is the total physical memory in bytes.
	MemoryTotal uint64
	// GPUUsage is the GPU utilization as a percentage (0-100).
	GPUUsage float64
	// GPUAvailable reports whether a GPU tool was found at startup.
	GPUAvailable bool
}

// TemperatureSnapshot contains CPU and GPU temperatures in degrees Celsius.
// A value <= 0 means the sensor is unavailable.
type TemperatureSnapshot struct {
	CPUTemp float64
	GPUTemp float64
}

// CPUAvailable reports whether a CPU reading exists.
func (t TemperatureSnapshot) CPUAvailable() bool { return t.CPUTemp > 0 }

// GPUAvailable reports whether a GPU reading exists.
func (t TemperatureSnapshot) GPUAvailable() bool { return t.GPUTemp > 0 }

// DiskInfo describes one mounted filesystem.
type DiskInfo struct {
	// Name is the display label (model name, "System", "Home" or mount name).
	Name string
	// MountPoint is the mount path (e.g., "/", "/home", "/mnt/usb").
	MountPoint string
	// Device is the block device path (e.g., "/dev/sda1").
	Device string
	// UsedPercentage is the used space as a percentage (0-100).
	UsedPercentage float64
	// TotalSpace is the capacity in bytes.
	TotalSpace uint64
	// AvailableSpace is the free space in bytes.
	AvailableSpace uint64
	// UsedSpace is TotalSpace minus AvailableSpace.
	UsedSpace uint64
	// IsLoading is true while the entry comes from the cache.
	IsLoading bool
}

// BatteryDevice describes one battery-powered device.
type BatteryDevice struct {
	// Name is the device name (e.g., "MX Master 3").
	Name string
	// Level is the charge percentage. Only meaningful when HasLevel is true.
	Level int
	// HasLevel reports whether the tool reported a level.
	HasLevel bool
	// Status is free-form text such as "discharging" or "good".
	Status string
	// Kind is the device type (e.g., "mouse", "keyboard", "headset").
	Kind string
	// Codename is the receiver-reported codename, used for de-duplication.
	Codename string
	// IsConnected is false for paired devices that are currently offline.
	IsConnected bool
	// IsLoading is true while the entry comes from the cache.
	IsLoading bool
}

// WeatherData contains the current conditions for one location.
type WeatherData struct {
	// Temperature is in degrees Celsius. NaN when no data is available.
	Temperature float64
	FeelsLike   float64
	TempMin     float64
	TempMax     float64
	// Humidity is relative humidity in percent.
	Humidity int
	// Description is human-readable, first letter capitalized.
	Description string
	// Icon is the provider's icon code (e.g., "01d").
	Icon string
	// Location is the name resolved by the provider.
	Location string
}

// NoWeatherData is shown before the first successful fetch.
func NoWeatherData() WeatherData {
	return WeatherData{
		Temperature: math.NaN(),
		FeelsLike:   math.NaN(),
		TempMin:     math.NaN(),
		TempMax:     math.NaN(),
		Description: "No data",
		Location:    "Unknown",
		Icon:        "01d",
	}
}

// HasData reports whether w came from a successful fetch.
func (w WeatherData) HasData() bool {
	return !math.IsNaN(w.Temperature)
}

// Notification is one desktop notification captured from the session bus.
type Notification struct {
	AppName string
	Summary string
	Body    string
	// Timestamp is unix seconds at capture time.
	Timestamp int64
}

// Time returns the capture time.
func (n Notification) Time() time.Time {
	return time.Unix(n.Timestamp, 0)
}

// NetworkSnapshot contains aggregate interface throughput.
type NetworkSnapshot struct {
	// RxBytesPerSec is the receive rate over the last interval.
	RxBytesPerSec float64
	// TxBytesPerSec is the transmit rate over the last interval.
	TxBytesPerSec float64
	// RxTotal is the cumulative bytes received.
	RxTotal uint64
	// TxTotal is the cumulative bytes sent.
	TxTotal uint64
}

// DiskIOSnapshot contains aggregate block device throughput.
type DiskIOSnapshot struct {
	ReadBytesPerSec  float64
	WriteBytesPerSec float64
}
