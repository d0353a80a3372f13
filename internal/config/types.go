// Package config provides configuration data structures for monwidget.
// It defines the widget settings shared by the overlay window, the terminal
// dashboard and the status command, and parses them from YAML, TOML or Lua.
package config

import (
	"fmt"
	"reflect"
	"slices"
	"strings"
	"time"
)

// Section identifies one reorderable block of the widget.
type Section string

const (
	// SectionUtilization shows CPU, memory and GPU usage bars.
	SectionUtilization Section = "Utilization"
	// SectionTemperatures shows CPU and GPU temperatures.
	SectionTemperatures Section = "Temperatures"
	// SectionStorage shows disk space for mounted filesystems.
	SectionStorage Section = "Storage"
	// SectionBattery shows peripheral battery levels.
	SectionBattery Section = "Battery"
	// SectionWeather shows current weather conditions.
	SectionWeather Section = "Weather"
	// SectionNotifications shows recent desktop notifications.
	SectionNotifications Section = "Notifications"
	// SectionMedia shows the track of the selected media player.
	SectionMedia Section = "Media"
)

// AllSections lists every section in default display order.
var AllSections = []Section{
	SectionUtilization,
	SectionTemperatures,
	SectionStorage,
	SectionBattery,
	SectionWeather,
	SectionNotifications,
	SectionMedia,
}

// Label returns the human-readable header for the section.
func (s Section) Label() string {
	if s == SectionMedia {
		return "Media Player"
	}
	return string(s)
}

// UnmarshalText canonicalizes known section names. Unknown names are kept
// verbatim so that validation can report them.
func (s *Section) UnmarshalText(text []byte) error {
	if sec, err := ParseSection(string(text)); err == nil {
		*s = sec
		return nil
	}
	*s = Section(strings.TrimSpace(string(text)))
	return nil
}

// ParseSection parses a section name case-insensitively.
func ParseSection(s string) (Section, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	for _, sec := range AllSections {
		if strings.ToLower(string(sec)) == normalized {
			return sec, nil
		}
	}
	return "", fmt.Errorf("unknown section: %q", s)
}

// Config represents the complete widget configuration.
type Config struct {
	// ShowCPU shows the CPU usage bar.
	ShowCPU bool `yaml:"show_cpu" toml:"show_cpu" json:"show_cpu"`
	// ShowMemory shows the memory usage bar.
	ShowMemory bool `yaml:"show_memory" toml:"show_memory" json:"show_memory"`
	// ShowGPU shows the GPU usage bar (NVIDIA only).
	ShowGPU bool `yaml:"show_gpu" toml:"show_gpu" json:"show_gpu"`
	// ShowNetwork shows receive and transmit rates.
	ShowNetwork bool `yaml:"show_network" toml:"show_network" json:"show_network"`
	// ShowDisk shows disk read and write rates.
	ShowDisk bool `yaml:"show_disk" toml:"show_disk" json:"show_disk"`

	// ShowCPUTemp shows the CPU temperature.
	ShowCPUTemp bool `yaml:"show_cpu_temp" toml:"show_cpu_temp" json:"show_cpu_temp"`
	// ShowGPUTemp shows the GPU temperature.
	ShowGPUTemp bool `yaml:"show_gpu_temp" toml:"show_gpu_temp" json:"show_gpu_temp"`
	// UseCircularTempDisplay draws arc gauges instead of text rows.
	UseCircularTempDisplay bool `yaml:"use_circular_temp_display" toml:"use_circular_temp_display" json:"use_circular_temp_display"`

	// ShowStorage shows disk space usage.
	ShowStorage bool `yaml:"show_storage" toml:"show_storage" json:"show_storage"`

	// ShowBattery shows the battery section.
	ShowBattery bool `yaml:"show_battery" toml:"show_battery" json:"show_battery"`
	// EnableSolaarIntegration allows querying Solaar and headsetcontrol.
	EnableSolaarIntegration bool `yaml:"enable_solaar_integration" toml:"enable_solaar_integration" json:"enable_solaar_integration"`

	// ShowWeather shows the weather section.
	ShowWeather bool `yaml:"show_weather" toml:"show_weather" json:"show_weather"`
	// WeatherProvider selects the weather service: "openweathermap" or "open-meteo".
	WeatherProvider string `yaml:"weather_provider" toml:"weather_provider" json:"weather_provider"`
	// WeatherAPIKey is the OpenWeatherMap API key.
	WeatherAPIKey string `yaml:"weather_api_key" toml:"weather_api_key" json:"-"`
	// WeatherLocation is a city name such as "London,UK".
	WeatherLocation string `yaml:"weather_location" toml:"weather_location" json:"weather_location"`

	// ShowNotifications shows recent desktop notifications.
	ShowNotifications bool `yaml:"show_notifications" toml:"show_notifications" json:"show_notifications"`
	// MaxNotifications bounds the retained notification list.
	MaxNotifications int `yaml:"max_notifications" toml:"max_notifications" json:"max_notifications"`

	// ShowMedia shows the now-playing section for MPRIS players.
	ShowMedia bool `yaml:"show_media" toml:"show_media" json:"show_media"`

	// ShowClock shows the large clock at the top.
	ShowClock bool `yaml:"show_clock" toml:"show_clock" json:"show_clock"`
	// ShowDate shows the date below the clock.
	ShowDate bool `yaml:"show_date" toml:"show_date" json:"show_date"`
	// Use24HourTime selects a 24-hour clock.
	Use24HourTime bool `yaml:"use_24hour_time" toml:"use_24hour_time" json:"use_24hour_time"`

	// ShowPercentages prints numeric percentages next to bars.
	ShowPercentages bool `yaml:"show_percentages" toml:"show_percentages" json:"show_percentages"`
	// UpdateIntervalMS is the refresh cadence in milliseconds.
	UpdateIntervalMS int `yaml:"update_interval_ms" toml:"update_interval_ms" json:"update_interval_ms"`

	// WidgetX is the horizontal window position.
	WidgetX int `yaml:"widget_x" toml:"widget_x" json:"widget_x"`
	// WidgetY is the vertical window position.
	WidgetY int `yaml:"widget_y" toml:"widget_y" json:"widget_y"`
	// WidgetMovable allows dragging the window.
	WidgetMovable bool `yaml:"widget_movable" toml:"widget_movable" json:"widget_movable"`
	// SectionOrder is the display order of the reorderable sections.
	SectionOrder []Section `yaml:"section_order" toml:"section_order" json:"section_order"`
	// WidgetAutostart starts the widget with the desktop session.
	WidgetAutostart bool `yaml:"widget_autostart" toml:"widget_autostart" json:"widget_autostart"`

	// EnableLogging turns on debug logging.
	EnableLogging bool `yaml:"enable_logging" toml:"enable_logging" json:"enable_logging"`
}

// UpdateInterval returns the clamped refresh cadence as a duration.
func (c *Config) UpdateInterval() time.Duration {
	return time.Duration(clampInterval(c.UpdateIntervalMS)) * time.Millisecond
}

// UtilizationEnabled reports whether any utilization bar is visible.
func (c *Config) UtilizationEnabled() bool {
	return c.ShowCPU || c.ShowMemory || c.ShowGPU
}

// TemperaturesEnabled reports whether any temperature is visible.
func (c *Config) TemperaturesEnabled() bool {
	return c.ShowCPUTemp || c.ShowGPUTemp
}

// BatteryPolling reports whether peripheral batteries should be queried.
func (c *Config) BatteryPolling() bool {
	return c.ShowBattery && c.EnableSolaarIntegration
}

// KeyedWeather reports whether the selected weather provider needs an API key.
func (c *Config) KeyedWeather() bool {
	return !strings.EqualFold(strings.TrimSpace(c.WeatherProvider), ProviderOpenMeteo)
}

// Normalize clamps out-of-range values and fills in missing ones. The
// section order becomes a permutation of AllSections. It is applied after
// every successful parse.
func (c *Config) Normalize() {
	c.UpdateIntervalMS = clampInterval(c.UpdateIntervalMS)
	c.SectionOrder = repairOrder(c.SectionOrder)
	c.WeatherProvider = strings.ToLower(strings.TrimSpace(c.WeatherProvider))
	if c.WeatherProvider == "" {
		c.WeatherProvider = ProviderOpenWeatherMap
	}
	c.WeatherAPIKey = TrimQuotes(c.WeatherAPIKey)
	c.WeatherLocation = TrimQuotes(c.WeatherLocation)
}

// Clone returns a deep copy of the configuration.
func (c Config) Clone() Config {
	c.SectionOrder = append([]Section(nil), c.SectionOrder...)
	return c
}

// Equal reports whether two configurations hold the same values.
func (c Config) Equal(other Config) bool {
	if !slices.Equal(c.SectionOrder, other.SectionOrder) {
		return false
	}
	c.SectionOrder, other.SectionOrder = nil, nil
	return reflect.DeepEqual(c, other)
}

// repairOrder keeps the first occurrence of each known section and appends
// the missing ones in default order.
func repairOrder(order []Section) []Section {
	out := make([]Section, 0, len(AllSections))
	for _, sec := range order {
		parsed, err := ParseSection(string(sec))
		if err != nil || slices.Contains(out, parsed) {
			continue
		}
		out = append(out, parsed)
	}
	for _, sec := range AllSections {
		if !slices.Contains(out, sec) {
			out = append(out, sec)
		}
	}
	return out
}

func clampInterval(ms int) int {
	switch {
	case ms < MinUpdateIntervalMS:
		return MinUpdateIntervalMS
	case ms > MaxUpdateIntervalMS:
		return MaxUpdateIntervalMS
	default:
		return ms
	}
}
