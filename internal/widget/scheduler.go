// Package widget owns the monitors and turns their snapshots into the
// render-ready parameters of one frame.
//
// The Scheduler is driven from a single loop. Each Tick updates the
// monitors that are due and enabled, reads every snapshot without blocking,
// and computes the frame height. Slow sources (disk models, weather, media
// players, the notification bus) run on background pollers that only publish into
// their monitor's cells.
package widget

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/opd-ai/monwidget/internal/config"
	"github.com/opd-ai/monwidget/internal/layout"
	"github.com/opd-ai/monwidget/internal/monitor"
)

// Logger is the logging surface the scheduler uses.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Warn(string, ...any)  {}

// NotificationGroup holds the notifications of one application, newest first.
type NotificationGroup struct {
	AppName       string
	Notifications []monitor.Notification
}

// Latest returns the timestamp of the group's newest notification.
func (g NotificationGroup) Latest() int64 {
	if len(g.Notifications) == 0 {
		return 0
	}
	return g.Notifications[0].Timestamp
}

// RenderParams is everything one frame needs.
type RenderParams struct {
	Config config.Config
	Now    time.Time

	Utilization monitor.UtilizationSnapshot
	Temperature monitor.TemperatureSnapshot
	Network     monitor.NetworkSnapshot
	DiskIO      monitor.DiskIOSnapshot
	Disks       []monitor.DiskInfo
	Batteries   []monitor.BatteryDevice

	Weather        monitor.WeatherData
	WeatherFetched bool

	Notifications      []monitor.Notification
	NotificationGroups []NotificationGroup

	// Media lists the active players, playing first. MediaIndex selects
	// the one shown.
	Media      []monitor.MediaInfo
	MediaIndex int

	// Height is the computed frame height in pixels.
	Height int
}

// Counts returns the item counts the layout depends on.
func (p RenderParams) Counts() layout.Counts {
	return layout.Counts{
		Disks:         len(p.Disks),
		Batteries:     len(p.Batteries),
		Notifications: len(p.Notifications),
		MediaPlayers:  len(p.Media),
	}
}

// CurrentMedia returns the selected player, if any.
func (p RenderParams) CurrentMedia() (monitor.MediaInfo, bool) {
	if p.MediaIndex < 0 || p.MediaIndex >= len(p.Media) {
		return monitor.MediaInfo{}, false
	}
	return p.Media[p.MediaIndex], true
}

// Scheduler owns every monitor and the active configuration.
type Scheduler struct {
	logger Logger

	utilization   *monitor.UtilizationMonitor
	temperature   *monitor.TemperatureMonitor
	network       *monitor.NetworkMonitor
	diskIO        *monitor.DiskIOMonitor
	storage       *monitor.StorageMonitor
	battery       *monitor.BatteryMonitor
	weather       *monitor.WeatherMonitor
	notifications *monitor.NotificationMonitor
	media         *monitor.MediaMonitor
	hasBus        bool

	mu          sync.Mutex
	cfg         config.Config
	lastUpdate  time.Time
	needsRedraw bool
	lastErrors  *monitor.UpdateError

	// Owned by Tick.
	tickMu        sync.Mutex
	groupsVersion uint64
	groupsValid   bool
	groups        []NotificationGroup

	runMu   sync.Mutex
	pollers []*monitor.Poller
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
}

// New builds the monitors over src. Cached disks and batteries are shown,
// marked as loading, until their first refresh.
func New(cfg config.Config, src Sources, logger Logger) *Scheduler {
	if logger == nil {
		logger = nopLogger{}
	}
	cfg = cfg.Clone()
	cfg.Normalize()
	src = src.withDefaults()

	store := src.cacheOf()

	return &Scheduler{
		logger:        logger,
		utilization:   monitor.NewUtilizationMonitor(src.Sampler, src.GPU, logger),
		temperature:   monitor.NewTemperatureMonitor(src.Sampler, src.GPU, logger),
		network:       monitor.NewNetworkMonitor(src.Sampler, logger),
		diskIO:        monitor.NewDiskIOMonitor(src.Sampler, logger),
		storage:       monitor.NewStorageMonitor(src.Sampler, src.DiskModels, store, logger),
		battery:       monitor.NewBatteryMonitor(src.Batteries, store, logger),
		weather:       monitor.NewWeatherMonitor(src.Weather, cfg.WeatherAPIKey, cfg.WeatherLocation, logger),
		notifications: monitor.NewNotificationMonitor(src.Notifications, cfg.MaxNotifications, logger),
		media:         monitor.NewMediaMonitor(src.Media, logger),
		hasBus:        src.Notifications != nil,
		cfg:           cfg,
		needsRedraw:   true,
	}
}

// Config returns a copy of the active configuration.
func (s *Scheduler) Config() config.Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg.Clone()
}

// ApplyConfig swaps in a new configuration. Weather credentials and the
// notification bound take effect immediately, and the next Tick refreshes
// every enabled monitor regardless of the interval.
func (s *Scheduler) ApplyConfig(cfg config.Config) {
	cfg = cfg.Clone()
	cfg.Normalize()

	s.mu.Lock()
	if cfg.WeatherProvider != s.cfg.WeatherProvider {
		s.logger.Warn("weather provider change takes effect after restart",
			"from", s.cfg.WeatherProvider, "to", cfg.WeatherProvider)
	}
	s.cfg = cfg
	s.lastUpdate = time.Time{}
	s.needsRedraw = true
	s.mu.Unlock()

	s.weather.SetAPIKey(cfg.WeatherAPIKey)
	s.weather.SetLocation(cfg.WeatherLocation)
	s.notifications.SetMax(cfg.MaxNotifications)
	s.logger.Debug("configuration applied", "interval", cfg.UpdateInterval())
}

// NeedsRedraw reports whether something other than the clock changed the
// picture since the last call, and clears the flag.
func (s *Scheduler) NeedsRedraw() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	redraw := s.needsRedraw
	s.needsRedraw = false
	return redraw
}

// LastErrors returns the component errors of the most recent refresh, or
// nil if it was clean.
func (s *Scheduler) LastErrors() *monitor.UpdateError {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErrors
}

// Tick refreshes the monitors that are due and returns the frame
// parameters. It never fails: errors are kept for LastErrors.
func (s *Scheduler) Tick(ctx context.Context, now time.Time) RenderParams {
	s.tickMu.Lock()
	defer s.tickMu.Unlock()

	s.mu.Lock()
	cfg := s.cfg.Clone()
	due := s.lastUpdate.IsZero() || now.Sub(s.lastUpdate) >= cfg.UpdateInterval()
	if due {
		s.lastUpdate = now
	}
	s.mu.Unlock()

	if due {
		errs := s.update(ctx, &cfg, now)
		s.mu.Lock()
		s.lastErrors = nil
		if len(errs.Errors) > 0 {
			s.lastErrors = errs
		}
		s.mu.Unlock()
	}

	return s.snapshot(cfg, now)
}

// update runs the enabled monitors in display-independent order. Monitors
// with their own interval measure it against now.
func (s *Scheduler) update(ctx context.Context, cfg *config.Config, now time.Time) *monitor.UpdateError {
	errs := &monitor.UpdateError{}
	if cfg.UtilizationEnabled() {
		errs.Add(monitor.ErrorSourceUtilization, s.utilization.Update(ctx))
	}
	if cfg.TemperaturesEnabled() {
		errs.Add(monitor.ErrorSourceTemperature, s.temperature.Update(ctx, now))
	}
	if cfg.ShowNetwork {
		errs.Add(monitor.ErrorSourceNetwork, s.network.Update(ctx, now))
	}
	if cfg.ShowDisk {
		errs.Add(monitor.ErrorSourceDiskIO, s.diskIO.Update(ctx, now))
	}
	if cfg.ShowStorage {
		errs.Add(monitor.ErrorSourceStorage, s.storage.Update(ctx))
	}
	if cfg.BatteryPolling() {
		errs.Add(monitor.ErrorSourceBattery, s.battery.Update(ctx, now))
	}
	if cfg.ShowWeather {
		s.weather.Update(now)
	}
	if cfg.ShowMedia {
		s.media.Update()
	}
	for _, ce := range errs.Errors {
		s.logger.Debug("monitor update failed", "source", ce.Source, "error", ce.Err)
	}
	return errs
}

func (s *Scheduler) snapshot(cfg config.Config, now time.Time) RenderParams {
	weather, fetched := s.weather.Data()
	p := RenderParams{
		Config:         cfg,
		Now:            now,
		Utilization:    s.utilization.Snapshot(),
		Temperature:    s.temperature.Snapshot(),
		Network:        s.network.Snapshot(),
		DiskIO:         s.diskIO.Snapshot(),
		Disks:          s.storage.Disks(),
		Batteries:      s.battery.Devices(),
		Weather:        weather,
		WeatherFetched: fetched,
		Notifications:  s.notifications.Get(),
	}
	if cfg.ShowMedia {
		p.Media, p.MediaIndex = s.media.Current()
	}
	p.NotificationGroups = s.notificationGroups(p.Notifications)
	p.Height = layout.CalculateHeight(&p.Config, p.Counts())
	return p
}

// notificationGroups regroups only when the list changed since the last
// tick.
func (s *Scheduler) notificationGroups(list []monitor.Notification) []NotificationGroup {
	version := s.notifications.Version()
	if !s.groupsValid || version != s.groupsVersion {
		s.groups = GroupNotifications(list)
		s.groupsVersion = version
		s.groupsValid = true
	}
	return s.groups
}

// GroupNotifications groups by application. Groups are ordered by their
// newest notification, and each group lists newest first.
func GroupNotifications(list []monitor.Notification) []NotificationGroup {
	index := make(map[string]int)
	var groups []NotificationGroup
	for _, n := range list {
		i, ok := index[n.AppName]
		if !ok {
			i = len(groups)
			index[n.AppName] = i
			groups = append(groups, NotificationGroup{AppName: n.AppName})
		}
		groups[i].Notifications = append(groups[i].Notifications, n)
	}
	for i := range groups {
		ns := groups[i].Notifications
		sort.SliceStable(ns, func(a, b int) bool { return ns[a].Timestamp > ns[b].Timestamp })
	}
	sort.SliceStable(groups, func(a, b int) bool { return groups[a].Latest() > groups[b].Latest() })
	return groups
}

// NextPlayer shows the following media player.
func (s *Scheduler) NextPlayer() {
	s.media.Next()
	s.markDirty()
}

// PrevPlayer shows the preceding media player.
func (s *Scheduler) PrevPlayer() {
	s.media.Prev()
	s.markDirty()
}

// ClearNotifications drops every notification.
func (s *Scheduler) ClearNotifications() {
	s.notifications.Clear()
	s.markDirty()
}

// ClearApp drops the notifications of one application.
func (s *Scheduler) ClearApp(app string) {
	s.notifications.ClearApp(app)
	s.markDirty()
}

// RemoveNotification drops one notification.
func (s *Scheduler) RemoveNotification(app string, timestamp int64) {
	s.notifications.Remove(app, timestamp)
	s.markDirty()
}

func (s *Scheduler) markDirty() {
	s.mu.Lock()
	s.needsRedraw = true
	s.mu.Unlock()
}

// Start launches the background pollers for disk models, weather and media
// players, plus the notification listener. It returns an error if already running.
func (s *Scheduler) Start(ctx context.Context) error {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	if s.running {
		return fmt.Errorf("scheduler already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	pollers := []*monitor.Poller{s.storage.ModelPoller(), s.weather.Poller(), s.media.Poller()}
	for i, p := range pollers {
		if err := p.Start(runCtx); err != nil {
			for _, started := range pollers[:i] {
				started.Stop()
			}
			cancel()
			return fmt.Errorf("start pollers: %w", err)
		}
	}

	if s.hasBus {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.notifications.Run(runCtx)
		}()
	}

	s.pollers = pollers
	s.cancel = cancel
	s.running = true
	return nil
}

// Stop cancels the background pollers and waits for them to return.
func (s *Scheduler) Stop() {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	if !s.running {
		return
	}
	s.cancel()
	for _, p := range s.pollers {
		p.Stop()
	}
	s.wg.Wait()
	s.pollers = nil
	s.running = false
}

// IsRunning reports whether the background pollers are active.
func (s *Scheduler) IsRunning() bool {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	return s.running
}
