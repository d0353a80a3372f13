package monwidget

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestSlogAdapter(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewSlogAdapter(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	tests := []struct {
		log  func(string, ...any)
		msg  string
		want string
	}{
		{adapter.Debug, "debug message", "level=DEBUG"},
		{adapter.Info, "info message", "level=INFO"},
		{adapter.Warn, "warn message", "level=WARN"},
		{adapter.Error, "error message", "level=ERROR"},
	}
	for _, tt := range tests {
		buf.Reset()
		tt.log(tt.msg, "key", "value")
		out := buf.String()
		if !strings.Contains(out, tt.msg) || !strings.Contains(out, tt.want) || !strings.Contains(out, "key=value") {
			t.Errorf("log output = %q, want %q with %s", out, tt.msg, tt.want)
		}
	}

	buf.Reset()
	adapter.With("source", "weather").Info("fetched")
	if !strings.Contains(buf.String(), "source=weather") {
		t.Errorf("With() output = %q", buf.String())
	}
}

func TestNewSlogAdapterNil(t *testing.T) {
	if a := NewSlogAdapter(nil); a.logger == nil {
		t.Error("NewSlogAdapter(nil) has no logger")
	}
}

func TestJSONLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := JSONLogger(&buf)
	logger.Debug("hidden")
	logger.Info("shown", "n", 1)
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("JSONLogger logged below Info")
	}
	if !strings.Contains(out, `"msg":"shown"`) {
		t.Errorf("JSONLogger output = %q", out)
	}
}

func TestNopLogger(t *testing.T) {
	l := NopLogger()
	l.Debug("x")
	l.Info("x")
	l.Warn("x")
	l.Error("x")
}
