package render

import (
	"bytes"
	"testing"
	"time"

	"github.com/opd-ai/monwidget/internal/config"
	"github.com/opd-ai/monwidget/internal/layout"
	"github.com/opd-ai/monwidget/internal/monitor"
	"github.com/opd-ai/monwidget/internal/widget"
)

func newTestRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer() error = %v", err)
	}
	t.Cleanup(r.Close)
	return r
}

func fullParams() widget.RenderParams {
	cfg := config.DefaultConfig()
	cfg.ShowGPU = true
	cfg.ShowNetwork = true
	cfg.ShowDisk = true
	cfg.ShowCPUTemp = true
	cfg.ShowGPUTemp = true
	cfg.ShowBattery = true
	cfg.EnableSolaarIntegration = true
	cfg.ShowWeather = true
	cfg.ShowNotifications = true
	cfg.ShowMedia = true

	now := time.Date(2025, 1, 15, 14, 30, 5, 0, time.Local)
	notes := []monitor.Notification{
		{AppName: "Mail", Summary: "Inbox", Body: "3 new messages", Timestamp: now.Add(-2 * time.Minute).Unix()},
		{AppName: "Chat", Summary: "Ping", Timestamp: now.Add(-time.Hour).Unix()},
	}
	p := widget.RenderParams{
		Config:      cfg,
		Now:         now,
		Utilization: monitor.UtilizationSnapshot{CPUUsage: 42, MemoryUsage: 65, GPUUsage: 90, GPUAvailable: true},
		Temperature: monitor.TemperatureSnapshot{CPUTemp: 55, GPUTemp: 0},
		Network:     monitor.NetworkSnapshot{RxBytesPerSec: 2048, TxBytesPerSec: 512},
		DiskIO:      monitor.DiskIOSnapshot{ReadBytesPerSec: 1 << 20},
		Disks: []monitor.DiskInfo{
			{Name: "System", MountPoint: "/", UsedPercentage: 40, TotalSpace: 500e9, UsedSpace: 200e9, AvailableSpace: 300e9},
			{Name: "Home", MountPoint: "/home", IsLoading: true},
		},
		Batteries: []monitor.BatteryDevice{
			{Name: "MX Master 3", Level: 80, HasLevel: true, Status: "recharging", IsConnected: true},
			{Name: "K380", IsConnected: false},
		},
		Weather:            monitor.WeatherData{Temperature: 12.5, FeelsLike: 10, Humidity: 70, Description: "Light rain", Icon: "10d", Location: "London"},
		WeatherFetched:     true,
		Notifications:      notes,
		NotificationGroups: widget.GroupNotifications(notes),
		Media: []monitor.MediaInfo{
			{BusName: "org.mpris.MediaPlayer2.spotify", Player: "Spotify", Title: "Teardrop", Artist: "Massive Attack",
				Album: "Mezzanine", Status: monitor.StatusPlaying, Position: 83 * time.Second, Length: 330 * time.Second},
			{BusName: "org.mpris.MediaPlayer2.firefox", Player: "Firefox", Title: "Video", Status: monitor.StatusPaused},
		},
	}
	p.Height = layout.CalculateHeight(&p.Config, p.Counts())
	return p
}

func TestRenderFrameSize(t *testing.T) {
	r := newTestRenderer(t)
	p := fullParams()
	img := r.RenderFrame(p)
	if img.Rect.Dx() != layout.Width || img.Rect.Dy() != p.Height {
		t.Errorf("frame = %v, want %dx%d", img.Rect, layout.Width, p.Height)
	}

	p.Height = 0
	img = r.RenderFrame(p)
	if want := layout.CalculateHeight(&p.Config, p.Counts()); img.Rect.Dy() != want {
		t.Errorf("computed height = %d, want %d", img.Rect.Dy(), want)
	}
}

func TestRenderFrameDeterministic(t *testing.T) {
	r := newTestRenderer(t)
	p := fullParams()
	a := r.RenderFrame(p)
	b := r.RenderFrame(p)
	if !bytes.Equal(a.Pix, b.Pix) {
		t.Error("identical params produced different frames")
	}

	p.Utilization.CPUUsage = 95
	c := r.RenderFrame(p)
	if bytes.Equal(a.Pix, c.Pix) {
		t.Error("changed CPU usage did not change the frame")
	}
}

func TestRenderFrameAllHidden(t *testing.T) {
	r := newTestRenderer(t)
	p := fullParams()
	cfg := &p.Config
	cfg.ShowClock, cfg.ShowDate = false, false
	cfg.ShowCPU, cfg.ShowMemory, cfg.ShowGPU = false, false, false
	cfg.ShowNetwork, cfg.ShowDisk = false, false
	cfg.ShowCPUTemp, cfg.ShowGPUTemp = false, false
	cfg.ShowStorage, cfg.ShowBattery, cfg.ShowWeather, cfg.ShowNotifications = false, false, false, false
	cfg.ShowMedia = false
	p.Height = 0

	img := r.RenderFrame(p)
	if img.Rect.Dy() != layout.MinimumHeight {
		t.Errorf("height = %d, want %d", img.Rect.Dy(), layout.MinimumHeight)
	}
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] != 0 {
			t.Fatal("hidden widget drew pixels")
		}
	}
}

func TestRenderFrameEmptyStates(t *testing.T) {
	r := newTestRenderer(t)
	p := fullParams()
	p.Batteries = nil
	p.Notifications = nil
	p.NotificationGroups = nil
	p.Media = nil
	p.Height = layout.CalculateHeight(&p.Config, p.Counts())

	img := r.RenderFrame(p)
	if img.Rect.Dy() != p.Height {
		t.Errorf("height = %d, want %d", img.Rect.Dy(), p.Height)
	}
}

func TestRenderFrameMediaSelection(t *testing.T) {
	r := newTestRenderer(t)
	p := fullParams()
	first := r.RenderFrame(p)

	p.MediaIndex = 1
	second := r.RenderFrame(p)
	if bytes.Equal(first.Pix, second.Pix) {
		t.Error("selecting another player did not change the frame")
	}

	p.Media = p.Media[:1]
	p.MediaIndex = 0
	p.Height = layout.CalculateHeight(&p.Config, p.Counts())
	if img := r.RenderFrame(p); img.Rect.Dy() != first.Rect.Dy()-layout.MediaPagerHeight {
		t.Errorf("single player height = %d, want %d", img.Rect.Dy(), first.Rect.Dy()-layout.MediaPagerHeight)
	}
}

func TestPackageRenderFrame(t *testing.T) {
	p := fullParams()
	if img := RenderFrame(p); img.Rect.Dy() != p.Height {
		t.Errorf("RenderFrame() height = %d, want %d", img.Rect.Dy(), p.Height)
	}
}

func TestNotificationRows(t *testing.T) {
	var list []monitor.Notification
	for i := int64(1); i <= 8; i++ {
		app := "a"
		if i%2 == 0 {
			app = "b"
		}
		list = append(list, monitor.Notification{AppName: app, Summary: "s", Timestamp: i})
	}
	groups := widget.GroupNotifications(list)

	rows := NotificationRows(groups, layout.MaxNotificationRows)
	if len(rows) != layout.MaxNotificationRows {
		t.Fatalf("len = %d, want %d", len(rows), layout.MaxNotificationRows)
	}
	// Group "b" holds the newest entry, so it comes first.
	if rows[0].AppName != "b" || rows[0].Timestamp != 8 {
		t.Errorf("rows[0] = %+v, want newest of group b", rows[0])
	}
	if got := NotificationRows(nil, 5); len(got) != 0 {
		t.Errorf("NotificationRows(nil) = %v", got)
	}
}

func TestFormatRate(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0 B/s"},
		{-5, "0 B/s"},
		{512, "512 B/s"},
		{1500, "1.5 kB/s"},
	}
	for _, tt := range tests {
		if got := FormatRate(tt.in); got != tt.want {
			t.Errorf("FormatRate(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsCharging(t *testing.T) {
	tests := map[string]bool{
		"charging":    true,
		"Recharging":  true,
		" charging ":  true,
		"discharging": false,
		"full":        false,
		"":            false,
	}
	for in, want := range tests {
		if got := IsCharging(in); got != want {
			t.Errorf("IsCharging(%q) = %v, want %v", in, got, want)
		}
	}
}
