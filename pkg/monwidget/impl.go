package monwidget

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/opd-ai/monwidget/internal/config"
	"github.com/opd-ai/monwidget/internal/widget"
)

// headlessTickInterval matches the window's refresh cadence.
const headlessTickInterval = time.Second

// frameCounter is implemented by the window host.
type frameCounter interface {
	Stats() (frames, skipped int)
}

type widgetImpl struct {
	opts       Options
	configPath string
	logger     Logger
	metrics    *Metrics
	sched      *widget.Scheduler

	last    atomic.Pointer[Snapshot]
	running atomic.Bool

	mu           sync.RWMutex
	startTime    time.Time
	cancel       context.CancelFunc
	watcher      *configWatcher
	host         frameCounter
	lastError    error
	errorHandler ErrorHandler
	eventHandler EventHandler

	wg sync.WaitGroup
}

var _ Widget = (*widgetImpl)(nil)

func (w *widgetImpl) Start() error {
	w.mu.Lock()
	if w.running.Load() {
		w.mu.Unlock()
		return ErrAlreadyRunning
	}

	ctx, cancel := context.WithCancel(context.Background())
	if err := w.sched.Start(ctx); err != nil {
		cancel()
		w.mu.Unlock()
		return fmt.Errorf("start monitors: %w", err)
	}

	var watcher *configWatcher
	if w.opts.WatchConfig && w.configPath != "" {
		var err error
		watcher, err = newConfigWatcher(w.configPath, w.opts.WatchDebounce, w.ReloadConfig, w.notifyError)
		if err != nil {
			w.logger.Warn("config watch disabled", "path", w.configPath, "error", err)
		} else {
			watcher.Start()
		}
	}

	w.cancel = cancel
	w.watcher = watcher
	w.startTime = time.Now()
	w.running.Store(true)
	w.metrics.IncrementStarts()
	w.metrics.SetRunning(true)

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		if w.opts.Headless {
			w.runHeadless(ctx)
		} else {
			w.runRenderLoop(ctx)
		}
		// The window may close on its own; release everything either way.
		cancel()
		w.shutdown(watcher)
		w.emitEvent(EventStopped, "widget stopped")
	}()

	w.mu.Unlock()
	w.logger.Info("widget started", "headless", w.opts.Headless, "config", w.configSource())
	w.emitEvent(EventStarted, "widget started")
	return nil
}

func (w *widgetImpl) shutdown(watcher *configWatcher) {
	if watcher != nil {
		watcher.Stop()
	}
	w.sched.Stop()
	w.running.Store(false)
	w.metrics.SetRunning(false)
}

func (w *widgetImpl) Stop() error {
	w.mu.Lock()
	cancel := w.cancel
	w.mu.Unlock()
	if cancel == nil || !w.running.Load() {
		return nil
	}
	cancel()

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	timeout := w.opts.ShutdownTimeout
	if timeout <= 0 {
		timeout = DefaultShutdownTimeout
	}
	select {
	case <-done:
		w.metrics.IncrementStops()
		return nil
	case <-time.After(timeout):
		err := fmt.Errorf("shutdown timeout after %v", timeout)
		w.notifyError(err)
		return err
	}
}

func (w *widgetImpl) IsRunning() bool {
	return w.running.Load()
}

func (w *widgetImpl) runHeadless(ctx context.Context) {
	w.Tick(ctx, time.Now())
	ticker := time.NewTicker(headlessTickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			w.Tick(ctx, now)
		}
	}
}

func (w *widgetImpl) Tick(ctx context.Context, now time.Time) Snapshot {
	start := time.Now()
	p := w.sched.Tick(ctx, now)
	failed := 0
	if errs := w.sched.LastErrors(); errs != nil {
		failed = len(errs.Errors)
	}
	w.metrics.RecordTick(time.Since(start), failed)
	w.last.Store(&p)
	return p
}

// NeedsRedraw lets the window host redraw between ticks.
func (w *widgetImpl) NeedsRedraw() bool {
	return w.sched.NeedsRedraw()
}

func (w *widgetImpl) Snapshot() Snapshot {
	if p := w.last.Load(); p != nil {
		return *p
	}
	return Snapshot{Config: w.sched.Config()}
}

func (w *widgetImpl) ReloadConfig() error {
	if !w.running.Load() {
		return ErrNotRunning
	}
	if w.configPath == "" {
		return ErrNoConfigFile
	}
	cfg, err := config.Load(w.configPath)
	if err != nil {
		err = fmt.Errorf("config reload failed: %w", err)
		w.notifyError(err)
		return err
	}
	w.sched.ApplyConfig(cfg)
	w.metrics.IncrementConfigReloads()
	w.logger.Info("configuration reloaded", "path", w.configPath)
	w.emitEvent(EventConfigReloaded, "configuration reloaded")
	return nil
}

func (w *widgetImpl) ApplyConfig(cfg Config) {
	w.sched.ApplyConfig(cfg)
}

func (w *widgetImpl) Config() Config {
	return w.sched.Config()
}

func (w *widgetImpl) NextPlayer() {
	w.sched.NextPlayer()
}

func (w *widgetImpl) PrevPlayer() {
	w.sched.PrevPlayer()
}

func (w *widgetImpl) ClearNotifications() {
	w.sched.ClearNotifications()
}

func (w *widgetImpl) Errors() *UpdateError {
	return w.sched.LastErrors()
}

func (w *widgetImpl) Metrics() *Metrics {
	return w.metrics
}

func (w *widgetImpl) configSource() string {
	if w.configPath == "" {
		return "memory"
	}
	return w.configPath
}

func (w *widgetImpl) uptime(now time.Time) time.Duration {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if !w.running.Load() || w.startTime.IsZero() {
		return 0
	}
	return now.Sub(w.startTime)
}

func (w *widgetImpl) Status() Status {
	now := time.Now()
	w.mu.RLock()
	s := Status{
		Running:      w.running.Load(),
		StartTime:    w.startTime,
		ConfigSource: w.configSource(),
	}
	if w.lastError != nil {
		s.LastError = w.lastError.Error()
	}
	host := w.host
	w.mu.RUnlock()

	s.Uptime = w.uptime(now)
	if host != nil {
		s.Frames, s.SkippedFrames = host.Stats()
	}
	if errs := w.sched.LastErrors(); errs != nil {
		seen := make(map[string]bool)
		for _, ce := range errs.Errors {
			if name := string(ce.Source); !seen[name] {
				seen[name] = true
				s.FailingSources = append(s.FailingSources, name)
			}
		}
	}
	s.Metrics = w.metrics.Snapshot()
	s.Sample = NewSample(w.Snapshot())
	return s
}

func (w *widgetImpl) Health() HealthCheck {
	now := time.Now()
	return buildHealth(w.running.Load(), w.uptime(now), w.sched.LastErrors(), now)
}

func (w *widgetImpl) SetErrorHandler(handler ErrorHandler) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.errorHandler = handler
}

func (w *widgetImpl) SetEventHandler(handler EventHandler) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.eventHandler = handler
}

// notifyError records err and hands it to the error handler.
func (w *widgetImpl) notifyError(err error) {
	w.metrics.IncrementErrors()
	w.logger.Error("widget error", "error", err)

	w.mu.Lock()
	w.lastError = err
	handler := w.errorHandler
	w.mu.Unlock()

	if handler != nil {
		go func() {
			defer func() {
				if r := recover(); r != nil {
					w.logger.Error("error handler panicked", "panic", r, "original_error", err)
				}
			}()
			handler(err)
		}()
	}
	w.emitEvent(EventError, err.Error())
}

func (w *widgetImpl) emitEvent(typ EventType, message string) {
	w.metrics.IncrementEventsEmitted()

	w.mu.RLock()
	handler := w.eventHandler
	w.mu.RUnlock()
	if handler == nil {
		return
	}
	go func() {
		defer func() {
			if r := recover(); r != nil {
				w.logger.Error("event handler panicked", "panic", r, "event", typ.String())
			}
		}()
		handler(Event{Type: typ, Timestamp: time.Now(), Message: message})
	}()
}
