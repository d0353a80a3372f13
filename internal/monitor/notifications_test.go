package monitor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/godbus/dbus/v5"
)

const busctlNotify = `‣ Type=method_call  Endian=l  Flags=0  Version=1 Cookie=7  Timestamp="Mon 2024-05-06 10:00:00.000000 UTC"
  Sender=:1.88  Destination=org.freedesktop.Notifications  Path=/org/freedesktop/Notifications  Interface=org.freedesktop.Notifications  Member=Notify
  UniqueName=:1.88
  MESSAGE "susssasa{sv}i" {
          STRING "Firefox";
          UINT32 0;
          STRING "";
          STRING "Download complete";
          STRING "report.pdf";
          ARRAY "s" {
                  STRING "default";
                  STRING "Open";
          };
          ARRAY "{sv}" {
          };
          INT32 -1;
  };
`

func TestNotifyParser(t *testing.T) {
	fixed := time.Unix(1700000000, 0)
	tests := []struct {
		name  string
		lines []string
		want  []Notification
	}{
		{
			name: "complete call",
			lines: []string{
				"Member=Notify",
				`STRING "Slack";`,
				`STRING "";`,
				`STRING "New message";`,
				`STRING "hello";`,
			},
			want: []Notification{{AppName: "Slack", Summary: "New message", Body: "hello", Timestamp: fixed.Unix()}},
		},
		{
			name: "empty app becomes System",
			lines: []string{
				"Member=Notify",
				`STRING "";`,
				`STRING "";`,
				`STRING "Updates";`,
				`STRING "";`,
			},
			want: []Notification{{AppName: "System", Summary: "Updates", Body: "", Timestamp: fixed.Unix()}},
		},
		{
			name: "empty summary dropped",
			lines: []string{
				"Member=Notify",
				`STRING "app";`,
				`STRING "";`,
				`STRING "";`,
				`STRING "body";`,
			},
		},
		{
			name:  "strings outside a call ignored",
			lines: []string{`STRING "a";`, `STRING "b";`, `STRING "c";`, `STRING "d";`},
		},
		{
			name: "new call resets state",
			lines: []string{
				"Member=Notify",
				`STRING "stale";`,
				"Member=Notify",
				`STRING "fresh";`,
				`STRING "";`,
				`STRING "sum";`,
				`STRING "body";`,
			},
			want: []Notification{{AppName: "fresh", Summary: "sum", Body: "body", Timestamp: fixed.Unix()}},
		},
		{
			name: "trailing action strings ignored",
			lines: []string{
				"Member=Notify",
				`STRING "app";`,
				`STRING "";`,
				`STRING "sum";`,
				`STRING "body";`,
				`STRING "default";`,
				`STRING "Open";`,
			},
			want: []Notification{{AppName: "app", Summary: "sum", Body: "body", Timestamp: fixed.Unix()}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewNotifyParser()
			p.now = func() time.Time { return fixed }
			var got []Notification
			for _, line := range tt.lines {
				if n, ok := p.Feed(line); ok {
					got = append(got, n)
				}
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d notifications, want %d: %+v", len(got), len(tt.want), got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("notification[%d] = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestBusctlSourceListen(t *testing.T) {
	runner := newFakeRunner().setStream("busctl", busctlNotify)
	src := NewBusctlSource(runner)
	src.now = func() time.Time { return time.Unix(42, 0) }

	var got []Notification
	if err := src.Listen(context.Background(), func(n Notification) { got = append(got, n) }); err != nil {
		t.Fatalf("Listen() error = %v", err)
	}

	want := Notification{AppName: "Firefox", Summary: "Download complete", Body: "report.pdf", Timestamp: 42}
	if len(got) != 1 || got[0] != want {
		t.Errorf("Listen() emitted %+v, want [%+v]", got, want)
	}
	if runner.count("busctl monitor --user --match "+notifyMatchRule) != 1 {
		t.Errorf("busctl calls = %v", runner.calls)
	}
}

func TestBusctlSourceMissing(t *testing.T) {
	src := NewBusctlSource(newFakeRunner().setMissing("busctl"))
	err := src.Listen(context.Background(), func(Notification) {})
	if !errors.Is(err, ErrToolUnavailable) {
		t.Errorf("Listen() error = %v, want ErrToolUnavailable", err)
	}
}

func TestNotificationFromMessage(t *testing.T) {
	at := time.Unix(99, 0)
	call := func(member string, body ...interface{}) *dbus.Message {
		return &dbus.Message{
			Type: dbus.TypeMethodCall,
			Headers: map[dbus.HeaderField]dbus.Variant{
				dbus.FieldMember: dbus.MakeVariant(member),
			},
			Body: body,
		}
	}

	n, ok := notificationFromMessage(call("Notify", "Mail", uint32(0), "icon", "Inbox", "3 new", []string{}, map[string]dbus.Variant{}, int32(-1)), at)
	want := Notification{AppName: "Mail", Summary: "Inbox", Body: "3 new", Timestamp: 99}
	if !ok || n != want {
		t.Errorf("notificationFromMessage() = %+v, %v, want %+v", n, ok, want)
	}

	if _, ok := notificationFromMessage(call("CloseNotification", uint32(3)), at); ok {
		t.Error("non-Notify member accepted")
	}
	if _, ok := notificationFromMessage(call("Notify", "x", uint32(0), "", "", "body"), at); ok {
		t.Error("empty summary accepted")
	}
	if _, ok := notificationFromMessage(call("Notify", "x"), at); ok {
		t.Error("short body accepted")
	}
}

func TestNotificationMonitorList(t *testing.T) {
	m := NewNotificationMonitor(nil, 3, nil)
	for i := int64(1); i <= 5; i++ {
		m.Add(Notification{AppName: "app", Summary: "s", Timestamp: i})
	}

	got := m.Get()
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	for i, ts := range []int64{5, 4, 3} {
		if got[i].Timestamp != ts {
			t.Errorf("got[%d].Timestamp = %d, want %d", i, got[i].Timestamp, ts)
		}
	}

	v := m.Version()
	m.Add(Notification{AppName: "other", Summary: "s", Timestamp: 6})
	if m.Version() == v {
		t.Error("Version() unchanged after insert with truncation")
	}
	if m.Len() != 3 {
		t.Errorf("Len() = %d, want 3", m.Len())
	}

	m.Remove("app", 5)
	if m.Len() != 2 {
		t.Errorf("Len() after Remove = %d, want 2", m.Len())
	}
	m.ClearApp("app")
	if got := m.Get(); len(got) != 1 || got[0].AppName != "other" {
		t.Errorf("Get() after ClearApp = %+v", got)
	}
	m.Clear()
	if m.Len() != 0 {
		t.Errorf("Len() after Clear = %d, want 0", m.Len())
	}
}

func TestNotificationMonitorSetMax(t *testing.T) {
	m := NewNotificationMonitor(nil, 5, nil)
	for i := int64(1); i <= 5; i++ {
		m.Add(Notification{AppName: "a", Summary: "s", Timestamp: i})
	}
	m.SetMax(2)
	got := m.Get()
	if len(got) != 2 || got[0].Timestamp != 5 || got[1].Timestamp != 4 {
		t.Errorf("Get() after SetMax(2) = %+v", got)
	}
	m.SetMax(0)
	if m.Len() != 1 {
		t.Errorf("Len() after SetMax(0) = %d, want 1", m.Len())
	}
}

func TestNotificationMonitorGetIsCopy(t *testing.T) {
	m := NewNotificationMonitor(nil, 5, nil)
	m.Add(Notification{AppName: "a", Summary: "s"})
	got := m.Get()
	got[0].AppName = "mutated"
	if m.Get()[0].AppName != "a" {
		t.Error("Get() exposes internal storage")
	}
}

// scriptedBus emits one notification per Listen call and then ends the stream.
type scriptedBus struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (s *scriptedBus) Listen(_ context.Context, emit func(Notification)) error {
	s.mu.Lock()
	s.calls++
	n := s.calls
	s.mu.Unlock()
	emit(Notification{AppName: "bus", Summary: "s", Timestamp: int64(n)})
	return s.err
}

func (s *scriptedBus) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func TestNotificationMonitorRunReconnects(t *testing.T) {
	bus := &scriptedBus{err: errors.New("stream closed")}
	logger := &recordingLogger{}
	m := NewNotificationMonitor(bus, 10, logger)
	m.backoffMin = time.Millisecond
	m.backoffMax = 4 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for bus.count() < 3 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	cancel()
	<-done

	if bus.count() < 3 {
		t.Fatalf("Listen calls = %d, want at least 3", bus.count())
	}
	if m.Len() < 3 {
		t.Errorf("Len() = %d, want at least 3", m.Len())
	}
	if len(logger.warnings()) == 0 {
		t.Error("expected a warning for the failed stream")
	}
}

type listenFunc func(ctx context.Context, emit func(Notification)) error

func (f listenFunc) Listen(ctx context.Context, emit func(Notification)) error { return f(ctx, emit) }

func TestFallbackBusSource(t *testing.T) {
	var used []string
	failing := listenFunc(func(context.Context, func(Notification)) error {
		used = append(used, "dbus")
		return errors.New("access denied")
	})
	working := listenFunc(func(_ context.Context, emit func(Notification)) error {
		used = append(used, "busctl")
		emit(Notification{AppName: "a", Summary: "s"})
		return nil
	})

	var got []Notification
	err := FallbackBusSource{failing, working}.Listen(context.Background(), func(n Notification) { got = append(got, n) })
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	if len(used) != 2 || used[0] != "dbus" || used[1] != "busctl" {
		t.Errorf("sources used = %v, want [dbus busctl]", used)
	}
	if len(got) != 1 {
		t.Errorf("emitted %d notifications, want 1", len(got))
	}

	err = FallbackBusSource{failing, failing}.Listen(context.Background(), func(Notification) {})
	if err == nil {
		t.Error("Listen() error = nil when every source fails")
	}
}
