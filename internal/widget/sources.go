package widget

import (
	"github.com/opd-ai/monwidget/internal/cache"
	"github.com/opd-ai/monwidget/internal/config"
	"github.com/opd-ai/monwidget/internal/monitor"
)

// Sampler combines every OS sampling seam the monitors read.
type Sampler interface {
	monitor.SystemSampler
	monitor.SensorSource
	monitor.MountSource
	monitor.CounterSource
}

// Cache persists the disk and battery lists shown at startup.
type Cache interface {
	monitor.DiskCache
	monitor.BatteryCache
}

// Sources are the external collaborators behind the monitors. Nil fields
// are replaced by inert defaults, except Sampler, which is required.
type Sources struct {
	Sampler Sampler
	// GPU may be nil on machines without a vendor tool.
	GPU           monitor.GPUUsageSource
	DiskModels    monitor.DiskModelSource
	Batteries     monitor.BatterySource
	Weather       monitor.WeatherSource
	Notifications monitor.NotificationBusSource
	// Media may be nil to leave the media section empty.
	Media monitor.MediaSource
	// Cache may be nil to disable persistence.
	Cache *cache.Store
}

// DefaultSources wires the production sources for cfg.
func DefaultSources(cfg config.Config, store *cache.Store) Sources {
	runner := monitor.NewExecRunner()
	return Sources{
		Sampler:       monitor.NewGopsutilSampler(),
		GPU:           monitor.NewNvidiaSMI(runner),
		DiskModels:    monitor.NewLsblk(runner),
		Batteries:     monitor.NewDefaultBatterySource(runner),
		Weather:       WeatherSourceFor(cfg.WeatherProvider),
		Notifications: monitor.NewDefaultNotificationSource(runner),
		Media:         monitor.NewMPRISSource(),
		Cache:         store,
	}
}

// WeatherSourceFor returns the provider named in the configuration.
func WeatherSourceFor(provider string) monitor.WeatherSource {
	if provider == config.ProviderOpenMeteo {
		return monitor.NewOpenMeteo()
	}
	return monitor.NewOpenWeatherMap()
}

func (s Sources) withDefaults() Sources {
	if s.Batteries == nil {
		s.Batteries = monitor.MultiSource{}
	}
	if s.Weather == nil {
		s.Weather = monitor.NewOpenWeatherMap()
	}
	return s
}

// cacheOf avoids wrapping a nil *cache.Store in a non-nil interface.
func (s Sources) cacheOf() Cache {
	if s.Cache == nil {
		return nil
	}
	return s.Cache
}
