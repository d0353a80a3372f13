package monwidget

import (
	"fmt"
	"time"

	"github.com/opd-ai/monwidget/internal/monitor"
)

// HealthStatus is the state of the widget or one of its sources.
type HealthStatus string

const (
	HealthOK        HealthStatus = "ok"
	HealthDegraded  HealthStatus = "degraded"
	HealthUnhealthy HealthStatus = "unhealthy"
)

// HealthCheck summarizes the widget and each data source.
type HealthCheck struct {
	Status     HealthStatus               `json:"status"`
	Timestamp  time.Time                  `json:"timestamp"`
	Uptime     time.Duration              `json:"uptime_ns"`
	Components map[string]ComponentHealth `json:"components"`
	Message    string                     `json:"message"`
}

// ComponentHealth is the state of one source.
type ComponentHealth struct {
	Status  HealthStatus `json:"status"`
	Message string       `json:"message"`
}

func (h HealthCheck) IsHealthy() bool   { return h.Status == HealthOK }
func (h HealthCheck) IsDegraded() bool  { return h.Status == HealthDegraded }
func (h HealthCheck) IsUnhealthy() bool { return h.Status == HealthUnhealthy }

// healthSources are the sources reported individually.
var healthSources = []monitor.ErrorSource{
	monitor.ErrorSourceUtilization,
	monitor.ErrorSourceTemperature,
	monitor.ErrorSourceStorage,
	monitor.ErrorSourceBattery,
	monitor.ErrorSourceNetwork,
	monitor.ErrorSourceDiskIO,
}

// buildHealth derives a HealthCheck from the running state and the errors
// of the latest refresh. A failing source degrades the widget; a stopped
// widget is unhealthy.
func buildHealth(running bool, uptime time.Duration, errs *monitor.UpdateError, now time.Time) HealthCheck {
	components := make(map[string]ComponentHealth, len(healthSources))
	failing := 0
	for _, src := range healthSources {
		ch := ComponentHealth{Status: HealthOK, Message: "ok"}
		if errs != nil {
			if found := errs.BySource(src); len(found) > 0 {
				ch = ComponentHealth{Status: HealthDegraded, Message: found[0].Err.Error()}
				failing++
			}
		}
		components[string(src)] = ch
	}

	h := HealthCheck{
		Status:     HealthOK,
		Timestamp:  now,
		Uptime:     uptime,
		Components: components,
		Message:    "All sources healthy",
	}
	switch {
	case !running:
		h.Status = HealthUnhealthy
		h.Uptime = 0
		h.Message = "Widget is not running"
	case failing > 0:
		h.Status = HealthDegraded
		h.Message = fmt.Sprintf("%d source(s) failing", failing)
	}
	return h
}
