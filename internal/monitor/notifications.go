package monitor

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/godbus/dbus/v5"
)

// Reconnect backoff for the notification listener.
const (
	NotificationBackoffMin = time.Second
	NotificationBackoffMax = 30 * time.Second
)

// notifyMatchRule selects org.freedesktop.Notifications.Notify calls.
const notifyMatchRule = "type=method_call,interface=org.freedesktop.Notifications,member=Notify"

// NotificationBusSource delivers desktop notifications as they are sent.
// Listen blocks until the stream ends or ctx is cancelled.
type NotificationBusSource interface {
	Listen(ctx context.Context, emit func(Notification)) error
}

// FallbackBusSource tries each source in order until one listens
// successfully. A source that fails to attach hands over to the next.
type FallbackBusSource []NotificationBusSource

// Listen implements NotificationBusSource.
func (f FallbackBusSource) Listen(ctx context.Context, emit func(Notification)) error {
	var errs []error
	for _, src := range f {
		err := src.Listen(ctx, emit)
		if err == nil || ctx.Err() != nil {
			return nil
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return fmt.Errorf("notifications: %w", ErrNoData)
	}
	return errors.Join(errs...)
}

// NewDefaultNotificationSource prefers a native session bus monitor and
// falls back to busctl where BecomeMonitor is refused.
func NewDefaultNotificationSource(runner CommandRunner) FallbackBusSource {
	return FallbackBusSource{NewDBusNotificationSource(), NewBusctlSource(runner)}
}

// NotifyParser rebuilds Notify calls from `busctl monitor` text output.
// Feed it one line at a time.
//
// A line containing "Member=Notify" starts a call. The STRING arguments
// that follow are positional: app name, icon, summary, body.
type NotifyParser struct {
	inCall  bool
	index   int
	app     string
	summary string

	now func() time.Time
}

// NewNotifyParser returns a parser stamping notifications with wall time.
func NewNotifyParser() *NotifyParser {
	return &NotifyParser{now: time.Now}
}

// Feed consumes one line and returns a notification when the body
// argument completes a call with a non-empty summary.
func (p *NotifyParser) Feed(line string) (Notification, bool) {
	trimmed := strings.TrimSpace(line)
	if strings.Contains(trimmed, "Member=Notify") {
		p.inCall = true
		p.index = 0
		p.app = ""
		p.summary = ""
		return Notification{}, false
	}
	if !p.inCall || !strings.HasPrefix(trimmed, `STRING "`) {
		return Notification{}, false
	}

	start := strings.IndexByte(trimmed, '"')
	end := strings.LastIndexByte(trimmed, '"')
	if start >= end {
		return Notification{}, false
	}
	value := trimmed[start+1 : end]

	idx := p.index
	p.index++
	switch idx {
	case 0:
		p.app = value
	case 2:
		p.summary = value
	case 3:
		p.inCall = false
		if p.summary == "" {
			return Notification{}, false
		}
		return newNotification(p.app, p.summary, value, p.clock()), true
	}
	return Notification{}, false
}

func (p *NotifyParser) clock() time.Time {
	if p.now == nil {
		return time.Now()
	}
	return p.now()
}

func newNotification(app, summary, body string, at time.Time) Notification {
	if app == "" {
		app = "System"
	}
	return Notification{AppName: app, Summary: summary, Body: body, Timestamp: at.Unix()}
}

// BusctlSource tails `busctl monitor --user` for Notify calls.
type BusctlSource struct {
	runner CommandRunner
	now    func() time.Time
}

// NewBusctlSource creates a busctl-backed source.
func NewBusctlSource(runner CommandRunner) *BusctlSource {
	return &BusctlSource{runner: runner, now: time.Now}
}

// Listen implements NotificationBusSource.
func (s *BusctlSource) Listen(ctx context.Context, emit func(Notification)) error {
	stdout, wait, err := s.runner.Stream(ctx, "busctl", "monitor", "--user", "--match", notifyMatchRule)
	if err != nil {
		return err
	}
	defer func() {
		stdout.Close()
		_ = wait()
	}()

	parser := NewNotifyParser()
	parser.now = s.now
	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if n, ok := parser.Feed(scanner.Text()); ok {
			emit(n)
		}
	}
	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("busctl: read: %w", err)
	}
	return nil
}

// DBusNotificationSource eavesdrops on the session bus directly. It needs
// a bus that permits BecomeMonitor for the calling user.
type DBusNotificationSource struct {
	now func() time.Time
}

// NewDBusNotificationSource creates a godbus-backed source.
func NewDBusNotificationSource() *DBusNotificationSource {
	return &DBusNotificationSource{now: time.Now}
}

// Listen implements NotificationBusSource.
func (s *DBusNotificationSource) Listen(ctx context.Context, emit func(Notification)) error {
	conn, err := dbus.ConnectSessionBus(dbus.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("session bus: %w", err)
	}
	defer conn.Close()

	call := conn.BusObject().CallWithContext(ctx,
		"org.freedesktop.DBus.Monitoring.BecomeMonitor", 0, []string{notifyMatchRule}, uint32(0))
	if call.Err != nil {
		return fmt.Errorf("become monitor: %w", call.Err)
	}

	messages := make(chan *dbus.Message, 16)
	conn.Eavesdrop(messages)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-conn.Context().Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			if n, ok := notificationFromMessage(msg, s.now()); ok {
				emit(n)
			}
		}
	}
}

// notificationFromMessage decodes a Notify call with signature
// (s app_name, u replaces_id, s app_icon, s summary, s body, ...).
func notificationFromMessage(msg *dbus.Message, at time.Time) (Notification, bool) {
	if msg == nil || msg.Type != dbus.TypeMethodCall {
		return Notification{}, false
	}
	if member, ok := msg.Headers[dbus.FieldMember]; !ok || member.Value() != "Notify" {
		return Notification{}, false
	}
	if len(msg.Body) < 5 {
		return Notification{}, false
	}
	app, _ := msg.Body[0].(string)
	summary, _ := msg.Body[3].(string)
	body, _ := msg.Body[4].(string)
	if summary == "" {
		return Notification{}, false
	}
	return newNotification(app, summary, body, at), true
}

// NotificationMonitor keeps the most recent notifications, newest first.
type NotificationMonitor struct {
	source NotificationBusSource
	logger Logger

	mu      sync.Mutex
	list    []Notification
	max     int
	version uint64

	backoffMin time.Duration
	backoffMax time.Duration
}

// NewNotificationMonitor creates a monitor retaining at most max entries.
func NewNotificationMonitor(source NotificationBusSource, max int, logger Logger) *NotificationMonitor {
	if max < 1 {
		max = 1
	}
	return &NotificationMonitor{
		source:     source,
		logger:     orNop(logger),
		max:        max,
		backoffMin: NotificationBackoffMin,
		backoffMax: NotificationBackoffMax,
	}
}

// Add inserts n at the front and drops the oldest entries beyond max.
func (m *NotificationMonitor) Add(n Notification) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.list = append([]Notification{n}, m.list...)
	if len(m.list) > m.max {
		m.list = m.list[:m.max]
	}
	m.version++
}

// Get returns a copy of the current list.
func (m *NotificationMonitor) Get() []Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Notification(nil), m.list...)
}

// Len returns the number of retained notifications.
func (m *NotificationMonitor) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.list)
}

// Version increases on every mutation.
func (m *NotificationMonitor) Version() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.version
}

// Clear drops every notification.
func (m *NotificationMonitor) Clear() {
	m.mutate(func(n Notification) bool { return false })
}

// ClearApp drops the notifications of one application.
func (m *NotificationMonitor) ClearApp(app string) {
	m.mutate(func(n Notification) bool { return n.AppName != app })
}

// Remove drops the notifications matching app and timestamp.
func (m *NotificationMonitor) Remove(app string, timestamp int64) {
	m.mutate(func(n Notification) bool { return n.AppName != app || n.Timestamp != timestamp })
}

// SetMax changes the bound, truncating the list if needed.
func (m *NotificationMonitor) SetMax(max int) {
	if max < 1 {
		max = 1
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if max == m.max {
		return
	}
	m.max = max
	if len(m.list) > max {
		m.list = m.list[:max]
		m.version++
	}
}

func (m *NotificationMonitor) mutate(keep func(Notification) bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.list[:0]
	for _, n := range m.list {
		if keep(n) {
			kept = append(kept, n)
		}
	}
	clear(m.list[len(kept):])
	m.list = kept
	m.version++
}

// Run listens until ctx is cancelled, reconnecting with exponential
// backoff whenever the stream ends.
func (m *NotificationMonitor) Run(ctx context.Context) {
	backoff := m.backoffMin
	for {
		started := time.Now()
		err := m.source.Listen(ctx, m.Add)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			m.logger.Warn("notification listener stopped", "error", NewComponentError(ErrorSourceNotifications, err))
			if errors.Is(err, ErrToolUnavailable) {
				backoff = m.backoffMax
			}
		} else {
			m.logger.Debug("notification stream ended, reconnecting")
		}

		// A stream that stayed up for a while resets the backoff.
		if time.Since(started) > m.backoffMax {
			backoff = m.backoffMin
		}

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
		backoff *= 2
		if backoff > m.backoffMax {
			backoff = m.backoffMax
		}
	}
}
