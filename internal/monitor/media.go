package monitor

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/godbus/dbus/v5"
)

const (
	// MediaPollInterval is how often the background poller checks for a request.
	MediaPollInterval = time.Second
	// MediaQueryTimeout bounds one enumeration of the session bus players.
	MediaQueryTimeout = 2 * time.Second
)

const (
	mprisPrefix      = "org.mpris.MediaPlayer2."
	mprisPath        = "/org/mpris/MediaPlayer2"
	mprisPlayerIface = "org.mpris.MediaPlayer2.Player"
)

// PlaybackStatus is the MPRIS playback state.
type PlaybackStatus string

const (
	StatusPlaying PlaybackStatus = "Playing"
	StatusPaused  PlaybackStatus = "Paused"
	StatusStopped PlaybackStatus = "Stopped"
)

// ParsePlaybackStatus maps an MPRIS PlaybackStatus value. Anything
// unrecognised is Stopped.
func ParsePlaybackStatus(s string) PlaybackStatus {
	switch PlaybackStatus(s) {
	case StatusPlaying, StatusPaused:
		return PlaybackStatus(s)
	}
	return StatusStopped
}

// MediaInfo is the current track of one player.
type MediaInfo struct {
	// BusName identifies the player on the session bus.
	BusName string
	// Player is the display name derived from BusName.
	Player   string
	Title    string
	Artist   string
	Album    string
	Status   PlaybackStatus
	Position time.Duration
	Length   time.Duration
}

// Progress returns the playback position as a fraction in [0, 1].
func (m MediaInfo) Progress() float64 {
	if m.Length <= 0 {
		return 0
	}
	return min(max(float64(m.Position)/float64(m.Length), 0), 1)
}

// FormatTrackTime renders d as m:ss.
func FormatTrackTime(d time.Duration) string {
	secs := max(int64(d/time.Second), 0)
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

// PlayerDisplayName turns "org.mpris.MediaPlayer2.firefox.instance_1" into
// "Firefox". Names outside the MPRIS namespace are returned unchanged.
func PlayerDisplayName(busName string) string {
	parts := strings.Split(busName, ".")
	if len(parts) < 4 || parts[3] == "" {
		return busName
	}
	r, size := utf8.DecodeRuneInString(parts[3])
	return string(unicode.ToUpper(r)) + parts[3][size:]
}

// MediaSource lists the players that currently have a track loaded.
type MediaSource interface {
	Players(ctx context.Context) ([]MediaInfo, error)
}

// MPRISSource reads players from the session bus. The connection is opened
// on first use and reopened after a failure.
type MPRISSource struct {
	mu   sync.Mutex
	conn *dbus.Conn
}

// NewMPRISSource creates a godbus-backed source.
func NewMPRISSource() *MPRISSource {
	return &MPRISSource{}
}

// Players implements MediaSource. A player that does not answer is skipped.
func (s *MPRISSource) Players(ctx context.Context) ([]MediaInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		conn, err := dbus.ConnectSessionBus()
		if err != nil {
			return nil, fmt.Errorf("session bus: %w", err)
		}
		s.conn = conn
	}

	var names []string
	if err := s.conn.BusObject().CallWithContext(ctx, "org.freedesktop.DBus.ListNames", 0).Store(&names); err != nil {
		s.conn.Close()
		s.conn = nil
		return nil, fmt.Errorf("list names: %w", err)
	}

	var players []MediaInfo
	for _, name := range names {
		if !strings.HasPrefix(name, mprisPrefix) {
			continue
		}
		var props map[string]dbus.Variant
		err := s.conn.Object(name, mprisPath).
			CallWithContext(ctx, "org.freedesktop.DBus.Properties.GetAll", 0, mprisPlayerIface).
			Store(&props)
		if err != nil {
			continue
		}
		if info, ok := MediaFromProperties(name, props); ok {
			players = append(players, info)
		}
	}
	return players, nil
}

// Close releases the bus connection.
func (s *MPRISSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	return err
}

// MediaFromProperties decodes the org.mpris.MediaPlayer2.Player properties
// of one player. It reports false when no track title is set.
func MediaFromProperties(busName string, props map[string]dbus.Variant) (MediaInfo, bool) {
	info := MediaInfo{
		BusName: busName,
		Player:  PlayerDisplayName(busName),
		Status:  StatusStopped,
	}
	if v, ok := props["PlaybackStatus"]; ok {
		if s, ok := v.Value().(string); ok {
			info.Status = ParsePlaybackStatus(s)
		}
	}
	if v, ok := props["Position"]; ok {
		info.Position = microseconds(v.Value())
	}

	var meta map[string]dbus.Variant
	if v, ok := props["Metadata"]; ok {
		meta, _ = v.Value().(map[string]dbus.Variant)
	}
	info.Title = variantString(meta["xesam:title"])
	info.Album = variantString(meta["xesam:album"])
	if v, ok := meta["xesam:artist"]; ok {
		switch a := v.Value().(type) {
		case []string:
			if len(a) > 0 {
				info.Artist = a[0]
			}
		case string:
			info.Artist = a
		}
	}
	if v, ok := meta["mpris:length"]; ok {
		info.Length = microseconds(v.Value())
	}
	return info, info.Title != ""
}

func variantString(v dbus.Variant) string {
	s, _ := v.Value().(string)
	return s
}

// microseconds converts an MPRIS time value. Players disagree on the
// integer type.
func microseconds(v any) time.Duration {
	switch n := v.(type) {
	case int64:
		return time.Duration(n) * time.Microsecond
	case uint64:
		return time.Duration(n) * time.Microsecond
	case int32:
		return time.Duration(n) * time.Microsecond
	case uint32:
		return time.Duration(n) * time.Microsecond
	case float64:
		return time.Duration(n) * time.Microsecond
	}
	return 0
}

// MediaMonitor keeps the sorted list of active players and the user's
// selection. Like weather, Update only raises a request and a background
// poller queries the bus.
type MediaMonitor struct {
	source MediaSource
	logger Logger

	request *Signal
	players *Cell[[]MediaInfo]

	mu       sync.Mutex
	selected string
	// Some players keep advancing Position while paused, so the position
	// seen at the pause is held until playback resumes.
	lastStatus map[string]PlaybackStatus
	frozen     map[string]time.Duration
}

// NewMediaMonitor creates a monitor over source.
func NewMediaMonitor(source MediaSource, logger Logger) *MediaMonitor {
	return &MediaMonitor{
		source:     source,
		logger:     orNop(logger),
		request:    NewSignal(),
		players:    NewCell[[]MediaInfo](nil),
		lastStatus: make(map[string]PlaybackStatus),
		frozen:     make(map[string]time.Duration),
	}
}

// Update requests a refresh of the player list.
func (m *MediaMonitor) Update() {
	m.request.Raise()
}

// Poll performs a pending request, if any. On failure the previous list is
// kept.
func (m *MediaMonitor) Poll(ctx context.Context) {
	if !m.request.Take() || m.source == nil {
		return
	}

	queryCtx, cancel := context.WithTimeout(ctx, MediaQueryTimeout)
	defer cancel()

	players, err := m.source.Players(queryCtx)
	if err != nil {
		m.logger.Debug("media players unavailable", "error", NewComponentError(ErrorSourceMedia, err))
		return
	}
	m.players.Store(m.reconcile(players))
}

// reconcile applies the pause freeze and sorts playing players first, then
// by name.
func (m *MediaMonitor) reconcile(players []MediaInfo) []MediaInfo {
	m.mu.Lock()
	defer m.mu.Unlock()

	seen := make(map[string]bool, len(players))
	for i := range players {
		p := &players[i]
		seen[p.BusName] = true
		switch p.Status {
		case StatusPaused:
			if m.lastStatus[p.BusName] == StatusPlaying {
				m.frozen[p.BusName] = p.Position
			}
			if pos, ok := m.frozen[p.BusName]; ok {
				p.Position = pos
			}
		default:
			delete(m.frozen, p.BusName)
		}
		m.lastStatus[p.BusName] = p.Status
	}
	for name := range m.lastStatus {
		if !seen[name] {
			delete(m.lastStatus, name)
			delete(m.frozen, name)
		}
	}

	slices.SortStableFunc(players, func(a, b MediaInfo) int {
		ap, bp := a.Status == StatusPlaying, b.Status == StatusPlaying
		switch {
		case ap && !bp:
			return -1
		case bp && !ap:
			return 1
		}
		return strings.Compare(a.Player, b.Player)
	})
	return players
}

// Players returns a copy of the current list.
func (m *MediaMonitor) Players() []MediaInfo {
	return slices.Clone(m.players.Load())
}

// Current returns the players and the index of the selected one. A
// selection that disappeared falls back to the first player.
func (m *MediaMonitor) Current() ([]MediaInfo, int) {
	players := m.Players()
	m.mu.Lock()
	defer m.mu.Unlock()
	return players, indexOfPlayer(players, m.selected)
}

// Next selects the following player, wrapping around.
func (m *MediaMonitor) Next() { m.step(1) }

// Prev selects the preceding player, wrapping around.
func (m *MediaMonitor) Prev() { m.step(-1) }

func (m *MediaMonitor) step(delta int) {
	players := m.Players()
	if len(players) == 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	i := indexOfPlayer(players, m.selected)
	i = (i + delta + len(players)) % len(players)
	m.selected = players[i].BusName
}

// Version increases whenever the list is republished.
func (m *MediaMonitor) Version() uint64 {
	return m.players.Version()
}

// Poller returns the background poller that drives Poll.
func (m *MediaMonitor) Poller() *Poller {
	return NewPoller("media", MediaPollInterval, true, m.Poll)
}

func indexOfPlayer(players []MediaInfo, busName string) int {
	if busName == "" {
		return 0
	}
	if i := slices.IndexFunc(players, func(p MediaInfo) bool { return p.BusName == busName }); i >= 0 {
		return i
	}
	return 0
}
