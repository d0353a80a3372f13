// Package layout computes the widget's pixel height from the visible
// sections and their item counts. The renderer draws with the same
// constants, so the two must change together.
package layout

import "github.com/opd-ai/monwidget/internal/config"

// Height constants in pixels.
const (
	BasePadding    = 10
	BottomPadding  = 20
	SectionSpacing = 10
	HeaderHeight   = 35
	MinimumHeight  = 100

	ClockHeight  = 70
	DateHeight   = 35
	ClockDateGap = 20

	UtilizationRowHeight = 30
	CircularTempHeight   = 60
	TextTempRowHeight    = 25
	NetworkHeight        = 50
	DiskRowHeight        = 45
	DiskIOHeight         = 50
	WeatherHeight        = 70
	BatteryRowHeight     = 66
	EmptyStateHeight     = 25

	NotificationRowHeight = 63
	MaxNotificationRows   = 5

	MediaHeaderHeight = 28
	MediaPanelHeight  = 145
	MediaBottomGap    = 15
	// MediaPagerHeight holds the player dots shown when more than one
	// player is active.
	MediaPagerHeight = 36

	// Width is the fixed widget width.
	Width = 350
)

// Counts holds the variable item counts of the dynamic sections.
type Counts struct {
	Disks         int
	Batteries     int
	Notifications int
	MediaPlayers  int
}

// CalculateHeight returns the height needed to draw cfg with the given
// item counts, never less than MinimumHeight.
func CalculateHeight(cfg *config.Config, counts Counts) int {
	h := BasePadding + ClockBlockHeight(cfg)
	for _, sec := range cfg.SectionOrder {
		h += SectionHeight(cfg, sec, counts)
	}
	h += BottomPadding
	return max(h, MinimumHeight)
}

// ClockBlockHeight returns the height of the clock and date header.
func ClockBlockHeight(cfg *config.Config) int {
	h := 0
	if cfg.ShowClock {
		h += ClockHeight
	}
	if cfg.ShowDate {
		h += DateHeight
	}
	if cfg.ShowClock || cfg.ShowDate {
		h += ClockDateGap
	}
	return h
}

// SectionHeight returns the height one section contributes, or 0 when it
// is hidden. Network and disk I/O rows belong to the utilization section.
func SectionHeight(cfg *config.Config, sec config.Section, counts Counts) int {
	switch sec {
	case config.SectionUtilization:
		h := 0
		if cfg.UtilizationEnabled() {
			h += HeaderHeight
			for _, on := range []bool{cfg.ShowCPU, cfg.ShowMemory, cfg.ShowGPU} {
				if on {
					h += UtilizationRowHeight
				}
			}
		}
		if cfg.ShowNetwork {
			h += NetworkHeight
		}
		if cfg.ShowDisk {
			h += DiskIOHeight
		}
		return h

	case config.SectionTemperatures:
		if !cfg.TemperaturesEnabled() {
			return 0
		}
		h := SectionSpacing + HeaderHeight
		if cfg.UseCircularTempDisplay {
			return h + CircularTempHeight
		}
		if cfg.ShowCPUTemp {
			h += TextTempRowHeight
		}
		if cfg.ShowGPUTemp {
			h += TextTempRowHeight
		}
		return h

	case config.SectionStorage:
		if !cfg.ShowStorage || counts.Disks <= 0 {
			return 0
		}
		return SectionSpacing + HeaderHeight + counts.Disks*DiskRowHeight

	case config.SectionWeather:
		if !cfg.ShowWeather {
			return 0
		}
		return SectionSpacing + HeaderHeight + WeatherHeight

	case config.SectionBattery:
		if !cfg.ShowBattery {
			return 0
		}
		h := SectionSpacing + HeaderHeight
		if counts.Batteries > 0 {
			return h + counts.Batteries*BatteryRowHeight
		}
		return h + EmptyStateHeight

	case config.SectionNotifications:
		if !cfg.ShowNotifications {
			return 0
		}
		h := SectionSpacing + HeaderHeight
		if counts.Notifications > 0 {
			return h + min(counts.Notifications, MaxNotificationRows)*NotificationRowHeight
		}
		return h + EmptyStateHeight

	case config.SectionMedia:
		if !cfg.ShowMedia {
			return 0
		}
		h := SectionSpacing + MediaHeaderHeight + MediaPanelHeight + MediaBottomGap
		if counts.MediaPlayers > 1 {
			h += MediaPagerHeight
		}
		return h
	}
	return 0
}
