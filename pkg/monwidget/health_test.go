package monwidget

import (
	"errors"
	"testing"
	"time"

	"github.com/opd-ai/monwidget/internal/monitor"
)

func TestBuildHealth(t *testing.T) {
	failing := &monitor.UpdateError{}
	failing.Add(monitor.ErrorSourceTemperature, errors.New("no sensors"))
	now := time.Unix(1700000000, 0)

	tests := []struct {
		name     string
		running  bool
		errs     *monitor.UpdateError
		want     HealthStatus
		degraded string
	}{
		{"stopped", false, nil, HealthUnhealthy, ""},
		{"healthy", true, nil, HealthOK, ""},
		{"empty errors", true, &monitor.UpdateError{}, HealthOK, ""},
		{"failing source", true, failing, HealthDegraded, "temperature"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := buildHealth(tt.running, time.Minute, tt.errs, now)
			if h.Status != tt.want {
				t.Errorf("Status = %v, want %v", h.Status, tt.want)
			}
			if !tt.running && h.Uptime != 0 {
				t.Errorf("Uptime = %v for a stopped widget", h.Uptime)
			}
			if len(h.Components) != len(healthSources) {
				t.Errorf("Components = %d, want %d", len(h.Components), len(healthSources))
			}
			for name, c := range h.Components {
				want := HealthOK
				if name == tt.degraded {
					want = HealthDegraded
				}
				if c.Status != want {
					t.Errorf("component %s = %v, want %v", name, c.Status, want)
				}
			}
		})
	}
}

func TestHealthCheckPredicates(t *testing.T) {
	tests := []struct {
		status                       HealthStatus
		healthy, degraded, unhealthy bool
	}{
		{HealthOK, true, false, false},
		{HealthDegraded, false, true, false},
		{HealthUnhealthy, false, false, true},
	}
	for _, tt := range tests {
		h := HealthCheck{Status: tt.status}
		if h.IsHealthy() != tt.healthy || h.IsDegraded() != tt.degraded || h.IsUnhealthy() != tt.unhealthy {
			t.Errorf("%s: predicates = %v %v %v", tt.status, h.IsHealthy(), h.IsDegraded(), h.IsUnhealthy())
		}
	}
}
