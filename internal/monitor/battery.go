package monitor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/opd-ai/monwidget/internal/cache"
)

// BatteryRefreshInterval is the minimum time between battery queries.
const BatteryRefreshInterval = 30 * time.Second

// BatterySource reports battery-powered devices.
type BatterySource interface {
	// Name identifies the source in logs.
	Name() string
	Devices(ctx context.Context) ([]BatteryDevice, error)
}

// MultiSource concatenates the devices of several sources in order.
type MultiSource []BatterySource

// NewDefaultBatterySource queries Solaar, then headsetcontrol, then the
// kernel's power_supply class.
func NewDefaultBatterySource(runner CommandRunner) MultiSource {
	return MultiSource{
		NewSolaarSource(runner),
		NewHeadsetControlSource(runner),
		NewPowerSupplySource(),
	}
}

// Name implements BatterySource.
func (m MultiSource) Name() string { return "multi" }

// Devices implements BatterySource. It fails only when every source
// fails; a source that answers with no devices counts as success.
func (m MultiSource) Devices(ctx context.Context) ([]BatteryDevice, error) {
	var (
		devices []BatteryDevice
		errs    []error
		ok      bool
	)
	for _, src := range m {
		d, err := src.Devices(ctx)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", src.Name(), err))
			continue
		}
		ok = true
		devices = append(devices, d...)
	}
	if !ok && len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return devices, nil
}

// BatteryCache persists the device list shown before the first query.
type BatteryCache interface {
	Load() cache.WidgetCache
	UpdateBatteryDevices(devices []cache.CachedBatteryDevice) error
}

// BatteryMonitor polls peripheral batteries on a slow, self-throttled
// cadence. A failed query keeps the previous device list.
type BatteryMonitor struct {
	source BatterySource
	store  BatteryCache
	logger Logger

	updateMu   sync.Mutex
	lastUpdate time.Time
	saved      bool

	devices *Cell[[]BatteryDevice]
}

// NewBatteryMonitor creates a monitor showing cached devices, marked as
// loading, until the first query. store may be nil.
func NewBatteryMonitor(source BatterySource, store BatteryCache, logger Logger) *BatteryMonitor {
	var initial []BatteryDevice
	if store != nil {
		for _, d := range store.Load().BatteryDevices {
			initial = append(initial, BatteryDevice{
				Name:      d.Name,
				Kind:      d.Kind,
				IsLoading: true,
			})
		}
	}
	return &BatteryMonitor{
		source:  source,
		store:   store,
		logger:  orNop(logger),
		devices: NewCell(initial),
	}
}

// Update queries the source if BatteryRefreshInterval has passed since the
// query made at now. The first call always queries.
func (m *BatteryMonitor) Update(ctx context.Context, now time.Time) error {
	m.updateMu.Lock()
	defer m.updateMu.Unlock()

	if !m.lastUpdate.IsZero() && now.Sub(m.lastUpdate) < BatteryRefreshInterval {
		return nil
	}
	m.lastUpdate = now

	devices, err := m.source.Devices(ctx)
	if err != nil {
		m.logger.Debug("battery query failed", "error", err)
		return NewComponentError(ErrorSourceBattery, err)
	}
	m.devices.Store(devices)

	if !m.saved && len(devices) > 0 && m.store != nil {
		m.saved = true
		if err := m.store.UpdateBatteryDevices(cachedBatteries(devices)); err != nil {
			m.logger.Warn("failed to cache battery devices", "error", err)
			return NewComponentError(ErrorSourceCache, err)
		}
	}
	return nil
}

// Devices returns the latest device list.
func (m *BatteryMonitor) Devices() []BatteryDevice {
	return append([]BatteryDevice(nil), m.devices.Load()...)
}

func cachedBatteries(devices []BatteryDevice) []cache.CachedBatteryDevice {
	out := make([]cache.CachedBatteryDevice, 0, len(devices))
	for _, d := range devices {
		out = append(out, cache.CachedBatteryDevice{Name: d.Name, Kind: d.Kind})
	}
	return out
}
