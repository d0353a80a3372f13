package monwidget

import (
	"time"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Status describes a widget and its latest sample.
type Status struct {
	Running      bool          `json:"running"`
	StartTime    time.Time     `json:"start_time"`
	Uptime       time.Duration `json:"uptime_ns"`
	ConfigSource string        `json:"config_source"`
	// Frames and SkippedFrames count window uploads; both stay zero
	// in headless mode.
	Frames         int             `json:"frames"`
	SkippedFrames  int             `json:"skipped_frames"`
	LastError      string          `json:"last_error,omitempty"`
	FailingSources []string        `json:"failing_sources,omitempty"`
	Metrics        MetricsSnapshot `json:"metrics"`
	Sample         Sample          `json:"sample"`
}

// JSON encodes s with indentation.
func (s Status) JSON() ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

// Sample is a serializable view of one snapshot. Readings that are
// unavailable are omitted.
type Sample struct {
	Time          time.Time       `json:"time"`
	CPU           float64         `json:"cpu_percent"`
	Memory        float64         `json:"memory_percent"`
	MemoryUsed    uint64          `json:"memory_used_bytes"`
	MemoryTotal   uint64          `json:"memory_total_bytes"`
	GPU           *float64        `json:"gpu_percent,omitempty"`
	CPUTemp       *float64        `json:"cpu_temp_celsius,omitempty"`
	GPUTemp       *float64        `json:"gpu_temp_celsius,omitempty"`
	NetRx         float64         `json:"net_rx_bytes_per_sec"`
	NetTx         float64         `json:"net_tx_bytes_per_sec"`
	DiskRead      float64         `json:"disk_read_bytes_per_sec"`
	DiskWrite     float64         `json:"disk_write_bytes_per_sec"`
	Disks         []DiskSample    `json:"disks"`
	Batteries     []BatterySample `json:"batteries"`
	Weather       *WeatherSample  `json:"weather,omitempty"`
	Notifications int             `json:"notifications"`
	Media         *MediaSample    `json:"media,omitempty"`
}

type DiskSample struct {
	Name        string  `json:"name"`
	MountPoint  string  `json:"mount_point"`
	UsedPercent float64 `json:"used_percent"`
	UsedBytes   uint64  `json:"used_bytes"`
	TotalBytes  uint64  `json:"total_bytes"`
}

type BatterySample struct {
	Name      string `json:"name"`
	Kind      string `json:"kind,omitempty"`
	Level     *int   `json:"level,omitempty"`
	Status    string `json:"status,omitempty"`
	Connected bool   `json:"connected"`
}

type WeatherSample struct {
	Temperature float64 `json:"temperature_celsius"`
	Humidity    int     `json:"humidity_percent"`
	Description string  `json:"description"`
	Location    string  `json:"location"`
}

type MediaSample struct {
	Player   string  `json:"player"`
	Title    string  `json:"title"`
	Artist   string  `json:"artist,omitempty"`
	Album    string  `json:"album,omitempty"`
	Status   string  `json:"status"`
	Position float64 `json:"position_seconds"`
	Length   float64 `json:"length_seconds,omitempty"`
	Players  int     `json:"players"`
}

// NewSample converts a snapshot for serialization.
func NewSample(p Snapshot) Sample {
	s := Sample{
		Time:          p.Now,
		CPU:           p.Utilization.CPUUsage,
		Memory:        p.Utilization.MemoryUsage,
		MemoryUsed:    p.Utilization.MemoryUsed,
		MemoryTotal:   p.Utilization.MemoryTotal,
		NetRx:         p.Network.RxBytesPerSec,
		NetTx:         p.Network.TxBytesPerSec,
		DiskRead:      p.DiskIO.ReadBytesPerSec,
		DiskWrite:     p.DiskIO.WriteBytesPerSec,
		Disks:         make([]DiskSample, 0, len(p.Disks)),
		Batteries:     make([]BatterySample, 0, len(p.Batteries)),
		Notifications: len(p.Notifications),
	}
	if p.Utilization.GPUAvailable {
		s.GPU = ptr(p.Utilization.GPUUsage)
	}
	if p.Temperature.CPUAvailable() {
		s.CPUTemp = ptr(p.Temperature.CPUTemp)
	}
	if p.Temperature.GPUAvailable() {
		s.GPUTemp = ptr(p.Temperature.GPUTemp)
	}
	for _, d := range p.Disks {
		s.Disks = append(s.Disks, DiskSample{
			Name:        d.Name,
			MountPoint:  d.MountPoint,
			UsedPercent: d.UsedPercentage,
			UsedBytes:   d.UsedSpace,
			TotalBytes:  d.TotalSpace,
		})
	}
	for _, b := range p.Batteries {
		bs := BatterySample{Name: b.Name, Kind: b.Kind, Status: b.Status, Connected: b.IsConnected}
		if b.HasLevel {
			bs.Level = ptr(b.Level)
		}
		s.Batteries = append(s.Batteries, bs)
	}
	if p.WeatherFetched && p.Weather.HasData() {
		s.Weather = &WeatherSample{
			Temperature: p.Weather.Temperature,
			Humidity:    p.Weather.Humidity,
			Description: p.Weather.Description,
			Location:    p.Weather.Location,
		}
	}
	if cur, ok := p.CurrentMedia(); ok {
		s.Media = &MediaSample{
			Player:   cur.Player,
			Title:    cur.Title,
			Artist:   cur.Artist,
			Album:    cur.Album,
			Status:   string(cur.Status),
			Position: cur.Position.Seconds(),
			Length:   cur.Length.Seconds(),
			Players:  len(p.Media),
		}
	}
	return s
}

func ptr[T any](v T) *T { return &v }

// ErrorHandler receives runtime errors. It is called on its own goroutine.
type ErrorHandler func(err error)

// EventHandler receives lifecycle events. It is called on its own goroutine.
type EventHandler func(event Event)

// Event is one lifecycle event.
type Event struct {
	Type      EventType
	Timestamp time.Time
	Message   string
}

// EventType enumerates lifecycle events.
type EventType int

const (
	EventStarted EventType = iota
	EventStopped
	EventConfigReloaded
	EventError
)

func (e EventType) String() string {
	switch e {
	case EventStarted:
		return "started"
	case EventStopped:
		return "stopped"
	case EventConfigReloaded:
		return "config_reloaded"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}
