package monwidget

import "time"

// DefaultShutdownTimeout bounds how long Stop waits for background work.
const DefaultShutdownTimeout = 5 * time.Second

// Options configures a Widget.
type Options struct {
	// ConfigPath is the file ReloadConfig reads. NewFromFile sets it.
	ConfigPath string

	// Logger receives diagnostics. Nil discards them.
	Logger Logger

	// Headless refreshes the monitors without opening a window.
	Headless bool

	// Scale multiplies the window size for HiDPI screens. Zero means 1.
	Scale float64

	// WatchConfig reloads the configuration whenever its file changes.
	// It has no effect without a config path.
	WatchConfig bool

	// WatchDebounce coalesces bursts of file events. Zero means
	// DefaultWatchDebounce.
	WatchDebounce time.Duration

	// CachePath overrides the location of the startup cache. Empty means
	// the per-user default.
	CachePath string

	// DisableCache runs without reading or writing the startup cache.
	DisableCache bool

	// Sources replaces the production data sources. Tests use it to run
	// the widget against fakes.
	Sources *Sources

	// ShutdownTimeout bounds Stop. Zero means DefaultShutdownTimeout.
	ShutdownTimeout time.Duration

	// Metrics receives operational counters. Nil means DefaultMetrics.
	Metrics *Metrics
}

// DefaultOptions returns Options for a windowed widget.
func DefaultOptions() Options {
	return Options{Scale: 1}
}

// Logger is the structured logger used throughout the widget. It has the
// shape of log/slog's methods.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}
