package config

import (
	"os"
	"path/filepath"
)

// Default values for configuration options.
const (
	// DefaultUpdateIntervalMS is the default refresh cadence (1 second).
	DefaultUpdateIntervalMS = 1000
	// MinUpdateIntervalMS is the fastest accepted refresh cadence.
	MinUpdateIntervalMS = 100
	// MaxUpdateIntervalMS is the slowest accepted refresh cadence.
	MaxUpdateIntervalMS = 10000
	// DefaultMaxNotifications is the default notification list bound.
	DefaultMaxNotifications = 5
	// DefaultWeatherLocation is used until the user picks a city.
	DefaultWeatherLocation = "London,UK"
	// ProviderOpenWeatherMap selects api.openweathermap.org (API key required).
	ProviderOpenWeatherMap = "openweathermap"
	// ProviderOpenMeteo selects open-meteo.com (no key).
	ProviderOpenMeteo = "open-meteo"
	// DefaultWidgetX is the default horizontal window position.
	DefaultWidgetX = 50
	// DefaultWidgetY is the default vertical window position.
	DefaultWidgetY = 50
)

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		ShowCPU:                true,
		ShowMemory:             true,
		ShowGPU:                false,
		ShowNetwork:            false,
		ShowDisk:               false,
		ShowCPUTemp:            false,
		ShowGPUTemp:            false,
		UseCircularTempDisplay: true,
		ShowStorage:            true,
		ShowBattery:            false,
		ShowWeather:            false,
		WeatherProvider:        ProviderOpenWeatherMap,
		WeatherLocation:        DefaultWeatherLocation,
		ShowNotifications:      false,
		MaxNotifications:       DefaultMaxNotifications,
		ShowMedia:              false,
		ShowClock:              true,
		ShowDate:               true,
		Use24HourTime:          false,
		ShowPercentages:        true,
		UpdateIntervalMS:       DefaultUpdateIntervalMS,
		WidgetX:                DefaultWidgetX,
		WidgetY:                DefaultWidgetY,
		WidgetMovable:          false,
		SectionOrder:           append([]Section(nil), AllSections...),
		WidgetAutostart:        true,
		EnableLogging:          false,
	}
}

// DefaultPath returns the per-user configuration file location,
// honouring XDG_CONFIG_HOME.
func DefaultPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "monwidget", "config.yaml")
}
