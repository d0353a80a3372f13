package monwidget

import (
	"context"
	"fmt"
	"time"

	"github.com/opd-ai/monwidget/internal/cache"
	"github.com/opd-ai/monwidget/internal/config"
	"github.com/opd-ai/monwidget/internal/monitor"
	"github.com/opd-ai/monwidget/internal/widget"
)

type (
	// Config is the widget configuration.
	Config = config.Config
	// Snapshot is everything one frame shows.
	Snapshot = widget.RenderParams
	// Sources are the data sources behind the monitors.
	Sources = widget.Sources
	// UpdateError lists the sources that failed during one refresh.
	UpdateError = monitor.UpdateError
)

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config { return config.DefaultConfig() }

// DefaultConfigPath returns the per-user configuration file location.
func DefaultConfigPath() string { return config.DefaultPath() }

// Widget is a running or stoppable metrics widget. It is safe for
// concurrent use.
type Widget interface {
	// Start launches the background pollers and, unless headless, opens
	// the window. It returns immediately.
	Start() error

	// Stop closes the window and waits for background work to finish.
	// Calling it on a stopped widget is a no-op.
	Stop() error

	IsRunning() bool

	// Tick refreshes the monitors that are due and returns the result.
	Tick(ctx context.Context, now time.Time) Snapshot

	// Snapshot returns the most recent Tick result without refreshing.
	Snapshot() Snapshot

	// ReloadConfig re-reads the configuration file and applies it in
	// place. On error the previous configuration stays active.
	ReloadConfig() error

	// ApplyConfig replaces the active configuration.
	ApplyConfig(cfg Config)

	// Config returns a copy of the active configuration.
	Config() Config

	// ClearNotifications empties the notification list.
	ClearNotifications()

	// NextPlayer and PrevPlayer cycle the media player shown.
	NextPlayer()
	PrevPlayer()

	// Errors returns the failures of the latest refresh, or nil.
	Errors() *UpdateError

	Status() Status
	Health() HealthCheck
	Metrics() *Metrics

	// SetErrorHandler registers a callback for runtime errors. Panics in
	// the handler are recovered.
	SetErrorHandler(handler ErrorHandler)

	// SetEventHandler registers a callback for lifecycle events.
	SetEventHandler(handler EventHandler)
}

// New creates a widget for cfg. It is not started. ReloadConfig and
// Options.WatchConfig read Options.ConfigPath when it is set.
func New(cfg Config, opts *Options) (Widget, error) {
	path := ""
	if opts != nil {
		path = opts.ConfigPath
	}
	return newWidget(cfg, path, opts)
}

// NewFromFile creates a widget from a YAML, TOML or Lua file. A missing
// file yields the default configuration. The widget is not started.
func NewFromFile(path string, opts *Options) (Widget, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return newWidget(cfg, path, opts)
}

func newWidget(cfg Config, path string, opts *Options) (*widgetImpl, error) {
	if opts == nil {
		defaults := DefaultOptions()
		opts = &defaults
	}
	w := &widgetImpl{
		opts:       *opts,
		configPath: path,
		logger:     opts.Logger,
		metrics:    opts.Metrics,
	}
	if w.logger == nil {
		w.logger = NopLogger()
	}
	if w.metrics == nil {
		w.metrics = DefaultMetrics()
	}

	var store *cache.Store
	if !opts.DisableCache {
		cachePath := opts.CachePath
		if cachePath == "" {
			cachePath = cache.DefaultPath()
		}
		store = cache.NewStore(cachePath, w.logger)
	}

	var src Sources
	if opts.Sources != nil {
		src = *opts.Sources
		if src.Cache == nil {
			src.Cache = store
		}
	} else {
		src = widget.DefaultSources(cfg, store)
	}
	if src.Sampler == nil {
		return nil, fmt.Errorf("sources: sampler is required")
	}

	w.sched = widget.New(cfg, src, w.logger)
	return w, nil
}
