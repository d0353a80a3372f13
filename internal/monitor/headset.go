package monitor

import (
	"context"
	"fmt"
	"math"
)

// HeadsetControlSource reads wireless headset batteries from headsetcontrol.
type HeadsetControlSource struct {
	runner CommandRunner
}

// NewHeadsetControlSource creates a source that runs headsetcontrol through runner.
func NewHeadsetControlSource(runner CommandRunner) *HeadsetControlSource {
	return &HeadsetControlSource{runner: runner}
}

// Name implements BatterySource.
func (s *HeadsetControlSource) Name() string { return "headsetcontrol" }

// Devices implements BatterySource.
func (s *HeadsetControlSource) Devices(ctx context.Context) ([]BatteryDevice, error) {
	out, err := s.runner.Run(ctx, "headsetcontrol", "-b", "-o", "json")
	if err != nil {
		return nil, err
	}
	return ParseHeadsetControlJSON(out)
}

type headsetControlOutput struct {
	Devices []struct {
		Status  *string `json:"status"`
		Device  *string `json:"device"`
		Battery *struct {
			Status string   `json:"status"`
			Level  *float64 `json:"level"`
		} `json:"battery"`
	} `json:"devices"`
}

// ParseHeadsetControlJSON parses `headsetcontrol -b -o json`. Devices whose
// query did not succeed are skipped; a level of -1 means the read failed.
func ParseHeadsetControlJSON(data []byte) ([]BatteryDevice, error) {
	var out headsetControlOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("headsetcontrol json: %w", err)
	}

	devices := make([]BatteryDevice, 0, len(out.Devices))
	for _, d := range out.Devices {
		if d.Status != nil && *d.Status != "success" {
			continue
		}

		dev := BatteryDevice{
			Name:        "Unknown Headset",
			Kind:        "headset",
			IsConnected: true,
		}
		if d.Device != nil {
			dev.Name = *d.Device
		}

		if b := d.Battery; b != nil {
			if b.Level != nil && *b.Level >= 0 && *b.Level <= 100 && *b.Level == math.Trunc(*b.Level) {
				dev.Level = int(*b.Level)
				dev.HasLevel = true
			}
			if b.Status == "BATTERY_AVAILABLE" && dev.HasLevel {
				dev.Status = "discharging"
			}
		}
		devices = append(devices, dev)
	}
	return devices, nil
}
