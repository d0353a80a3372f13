package monitor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/godbus/dbus/v5"
)

type fakeMediaSource struct {
	players []MediaInfo
	err     error
	calls   int
}

func (f *fakeMediaSource) Players(context.Context) ([]MediaInfo, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return append([]MediaInfo(nil), f.players...), nil
}

func TestPlayerDisplayName(t *testing.T) {
	tests := []struct {
		bus  string
		want string
	}{
		{"org.mpris.MediaPlayer2.firefox.instance_1_278", "Firefox"},
		{"org.mpris.MediaPlayer2.spotify", "Spotify"},
		{"org.mpris.MediaPlayer2.vlc", "Vlc"},
		{"org.mpris", "org.mpris"},
	}
	for _, tt := range tests {
		if got := PlayerDisplayName(tt.bus); got != tt.want {
			t.Errorf("PlayerDisplayName(%q) = %q, want %q", tt.bus, got, tt.want)
		}
	}
}

func TestParsePlaybackStatus(t *testing.T) {
	tests := []struct {
		in   string
		want PlaybackStatus
	}{
		{"Playing", StatusPlaying},
		{"Paused", StatusPaused},
		{"Stopped", StatusStopped},
		{"", StatusStopped},
		{"playing", StatusStopped},
	}
	for _, tt := range tests {
		if got := ParsePlaybackStatus(tt.in); got != tt.want {
			t.Errorf("ParsePlaybackStatus(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMediaFromProperties(t *testing.T) {
	props := map[string]dbus.Variant{
		"PlaybackStatus": dbus.MakeVariant("Playing"),
		"Position":       dbus.MakeVariant(int64(83_000_000)),
		"Metadata": dbus.MakeVariant(map[string]dbus.Variant{
			"xesam:title":  dbus.MakeVariant("Teardrop"),
			"xesam:artist": dbus.MakeVariant([]string{"Massive Attack", "Liz Fraser"}),
			"xesam:album":  dbus.MakeVariant("Mezzanine"),
			"mpris:length": dbus.MakeVariant(uint64(330_000_000)),
		}),
	}
	info, ok := MediaFromProperties("org.mpris.MediaPlayer2.spotify", props)
	if !ok {
		t.Fatal("MediaFromProperties() ok = false")
	}
	want := MediaInfo{
		BusName:  "org.mpris.MediaPlayer2.spotify",
		Player:   "Spotify",
		Title:    "Teardrop",
		Artist:   "Massive Attack",
		Album:    "Mezzanine",
		Status:   StatusPlaying,
		Position: 83 * time.Second,
		Length:   330 * time.Second,
	}
	if info != want {
		t.Errorf("MediaFromProperties() = %+v, want %+v", info, want)
	}
}

func TestMediaFromPropertiesWithoutTitle(t *testing.T) {
	props := map[string]dbus.Variant{
		"PlaybackStatus": dbus.MakeVariant("Stopped"),
		"Metadata":       dbus.MakeVariant(map[string]dbus.Variant{}),
	}
	if _, ok := MediaFromProperties("org.mpris.MediaPlayer2.vlc", props); ok {
		t.Error("MediaFromProperties() ok = true for a player without a track")
	}
	if _, ok := MediaFromProperties("org.mpris.MediaPlayer2.vlc", nil); ok {
		t.Error("MediaFromProperties(nil) ok = true")
	}
}

func TestMediaInfoProgress(t *testing.T) {
	tests := []struct {
		name string
		info MediaInfo
		want float64
	}{
		{"half", MediaInfo{Position: time.Minute, Length: 2 * time.Minute}, 0.5},
		{"unknown length", MediaInfo{Position: time.Minute}, 0},
		{"past end", MediaInfo{Position: 3 * time.Minute, Length: 2 * time.Minute}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.info.Progress(); got != tt.want {
				t.Errorf("Progress() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFormatTrackTime(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0:00"},
		{65 * time.Second, "1:05"},
		{61*time.Minute + 9*time.Second, "61:09"},
		{-time.Second, "0:00"},
	}
	for _, tt := range tests {
		if got := FormatTrackTime(tt.d); got != tt.want {
			t.Errorf("FormatTrackTime(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestMediaMonitorPollOnlyWhenRequested(t *testing.T) {
	src := &fakeMediaSource{players: []MediaInfo{{BusName: "a", Player: "A", Title: "x"}}}
	m := NewMediaMonitor(src, nil)

	m.Poll(context.Background())
	if src.calls != 0 {
		t.Fatalf("Poll() without request queried %d times", src.calls)
	}

	m.Update()
	m.Update()
	m.Poll(context.Background())
	m.Poll(context.Background())
	if src.calls != 1 {
		t.Errorf("queries = %d, want 1", src.calls)
	}
	if got := m.Players(); len(got) != 1 || got[0].Title != "x" {
		t.Errorf("Players() = %+v", got)
	}
}

func TestMediaMonitorKeepsListOnError(t *testing.T) {
	src := &fakeMediaSource{players: []MediaInfo{{BusName: "a", Player: "A", Title: "x"}}}
	m := NewMediaMonitor(src, nil)
	m.Update()
	m.Poll(context.Background())
	version := m.Version()

	src.err = errors.New("bus gone")
	m.Update()
	m.Poll(context.Background())
	if got := m.Players(); len(got) != 1 {
		t.Errorf("Players() after failure = %+v, want previous list", got)
	}
	if m.Version() != version {
		t.Error("Version() changed after a failed query")
	}
}

func TestMediaMonitorSortsPlayingFirst(t *testing.T) {
	src := &fakeMediaSource{players: []MediaInfo{
		{BusName: "c", Player: "Vlc", Title: "3", Status: StatusPaused},
		{BusName: "b", Player: "Spotify", Title: "2", Status: StatusPlaying},
		{BusName: "a", Player: "Firefox", Title: "1", Status: StatusStopped},
	}}
	m := NewMediaMonitor(src, nil)
	m.Update()
	m.Poll(context.Background())

	got := m.Players()
	order := []string{got[0].Player, got[1].Player, got[2].Player}
	want := []string{"Spotify", "Firefox", "Vlc"}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

func TestMediaMonitorFreezesPausedPosition(t *testing.T) {
	src := &fakeMediaSource{}
	m := NewMediaMonitor(src, nil)
	poll := func(status PlaybackStatus, pos time.Duration) time.Duration {
		src.players = []MediaInfo{{BusName: "ff", Player: "Firefox", Title: "t", Status: status, Position: pos}}
		m.Update()
		m.Poll(context.Background())
		return m.Players()[0].Position
	}

	steps := []struct {
		status PlaybackStatus
		pos    time.Duration
		want   time.Duration
	}{
		{StatusPlaying, 10 * time.Second, 10 * time.Second},
		{StatusPaused, 11 * time.Second, 11 * time.Second},
		{StatusPaused, 15 * time.Second, 11 * time.Second},
		{StatusPaused, 20 * time.Second, 11 * time.Second},
		{StatusPlaying, 12 * time.Second, 12 * time.Second},
	}
	for i, s := range steps {
		if got := poll(s.status, s.pos); got != s.want {
			t.Errorf("step %d: Position = %v, want %v", i, got, s.want)
		}
	}
}

func TestMediaMonitorSelection(t *testing.T) {
	src := &fakeMediaSource{players: []MediaInfo{
		{BusName: "a", Player: "A", Title: "1"},
		{BusName: "b", Player: "B", Title: "2"},
		{BusName: "c", Player: "C", Title: "3"},
	}}
	m := NewMediaMonitor(src, nil)

	m.Next()
	if _, i := m.Current(); i != 0 {
		t.Fatalf("Next() with no players moved to %d", i)
	}

	m.Update()
	m.Poll(context.Background())
	m.Next()
	if _, i := m.Current(); i != 1 {
		t.Errorf("after Next() index = %d, want 1", i)
	}
	m.Prev()
	m.Prev()
	if players, i := m.Current(); players[i].BusName != "c" {
		t.Errorf("after wrapping Prev() selected %q, want c", players[i].BusName)
	}

	// A selected player that disappears falls back to the first one.
	src.players = src.players[:2]
	m.Update()
	m.Poll(context.Background())
	if _, i := m.Current(); i != 0 {
		t.Errorf("vanished selection index = %d, want 0", i)
	}
}
