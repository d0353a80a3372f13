package monwidget

import (
	"expvar"
	"sync/atomic"
	"time"
)

// Metrics counts widget activity. Call RegisterExpvar to publish the
// counters under /debug/vars. Safe for concurrent use.
type Metrics struct {
	starts        atomic.Int64
	stops         atomic.Int64
	configReloads atomic.Int64
	ticks         atomic.Int64
	sourceErrors  atomic.Int64
	errorsTotal   atomic.Int64
	eventsEmitted atomic.Int64

	tickLatencyNs    atomic.Int64
	tickLatencyCount atomic.Int64

	currentlyRunning atomic.Int32

	registered atomic.Bool
}

// NewMetrics returns zeroed metrics.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// RegisterExpvar publishes the metrics with the expvar package. Calls
// after the first are no-ops.
func (m *Metrics) RegisterExpvar() {
	if m.registered.Swap(true) {
		return
	}
	publish := func(name string, f func() any) { expvar.Publish("monwidget_"+name, expvar.Func(f)) }
	publish("starts_total", func() any { return m.starts.Load() })
	publish("stops_total", func() any { return m.stops.Load() })
	publish("config_reloads_total", func() any { return m.configReloads.Load() })
	publish("ticks_total", func() any { return m.ticks.Load() })
	publish("source_errors_total", func() any { return m.sourceErrors.Load() })
	publish("errors_total", func() any { return m.errorsTotal.Load() })
	publish("events_emitted_total", func() any { return m.eventsEmitted.Load() })
	publish("running", func() any { return m.currentlyRunning.Load() })
	publish("tick_latency_avg_ms", func() any {
		return float64(safeDivide(m.tickLatencyNs.Load(), m.tickLatencyCount.Load())) / 1e6
	})
}

// MetricsSnapshot is a point-in-time copy of Metrics.
type MetricsSnapshot struct {
	Starts        int64         `json:"starts"`
	Stops         int64         `json:"stops"`
	ConfigReloads int64         `json:"config_reloads"`
	Ticks         int64         `json:"ticks"`
	SourceErrors  int64         `json:"source_errors"`
	ErrorsTotal   int64         `json:"errors_total"`
	EventsEmitted int64         `json:"events_emitted"`
	Running       bool          `json:"running"`
	TickLatency   time.Duration `json:"tick_latency_ns"`
}

// Snapshot copies the current values.
func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		Starts:        m.starts.Load(),
		Stops:         m.stops.Load(),
		ConfigReloads: m.configReloads.Load(),
		Ticks:         m.ticks.Load(),
		SourceErrors:  m.sourceErrors.Load(),
		ErrorsTotal:   m.errorsTotal.Load(),
		EventsEmitted: m.eventsEmitted.Load(),
		Running:       m.currentlyRunning.Load() > 0,
		TickLatency:   safeDivide(m.tickLatencyNs.Load(), m.tickLatencyCount.Load()),
	}
}

func (m *Metrics) IncrementStarts()        { m.starts.Add(1) }
func (m *Metrics) IncrementStops()         { m.stops.Add(1) }
func (m *Metrics) IncrementConfigReloads() { m.configReloads.Add(1) }
func (m *Metrics) IncrementErrors()        { m.errorsTotal.Add(1) }
func (m *Metrics) IncrementEventsEmitted() { m.eventsEmitted.Add(1) }

// RecordTick counts one scheduler tick, its duration and the number of
// monitors that failed during it.
func (m *Metrics) RecordTick(d time.Duration, failed int) {
	m.ticks.Add(1)
	m.tickLatencyNs.Add(d.Nanoseconds())
	m.tickLatencyCount.Add(1)
	m.sourceErrors.Add(int64(failed))
}

// SetRunning updates the running gauge.
func (m *Metrics) SetRunning(running bool) {
	if running {
		m.currentlyRunning.Store(1)
	} else {
		m.currentlyRunning.Store(0)
	}
}

// Reset zeroes every value.
func (m *Metrics) Reset() {
	for _, c := range []*atomic.Int64{
		&m.starts, &m.stops, &m.configReloads, &m.ticks, &m.sourceErrors,
		&m.errorsTotal, &m.eventsEmitted, &m.tickLatencyNs, &m.tickLatencyCount,
	} {
		c.Store(0)
	}
	m.currentlyRunning.Store(0)
}

func safeDivide(total, count int64) time.Duration {
	if count == 0 {
		return 0
	}
	return time.Duration(total / count)
}

var defaultMetrics = NewMetrics()

// DefaultMetrics returns the process-wide collector.
func DefaultMetrics() *Metrics {
	return defaultMetrics
}
