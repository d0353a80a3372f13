package monwidget

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestConfigWatcherDebouncesWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, "show_cpu: true\n")

	var reloads atomic.Int32
	cw, err := newConfigWatcher(path, 50*time.Millisecond, func() error {
		reloads.Add(1)
		return nil
	}, nil)
	if err != nil {
		t.Fatalf("newConfigWatcher() error = %v", err)
	}
	cw.Start()
	defer cw.Stop()

	for i := 0; i < 5; i++ {
		writeFile(t, path, "show_cpu: false\n")
		time.Sleep(10 * time.Millisecond)
	}
	time.Sleep(250 * time.Millisecond)

	if got := reloads.Load(); got != 1 {
		t.Errorf("reloads = %d, want 1", got)
	}
}

func TestConfigWatcherIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, "show_cpu: true\n")

	var reloads atomic.Int32
	cw, err := newConfigWatcher(path, 20*time.Millisecond, func() error {
		reloads.Add(1)
		return nil
	}, nil)
	if err != nil {
		t.Fatalf("newConfigWatcher() error = %v", err)
	}
	cw.Start()
	defer cw.Stop()

	writeFile(t, filepath.Join(dir, "other.yaml"), "x: 1\n")
	time.Sleep(150 * time.Millisecond)

	if got := reloads.Load(); got != 0 {
		t.Errorf("reloads = %d, want 0", got)
	}
}

func TestConfigWatcherStopPreventsReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, "show_cpu: true\n")

	var reloads atomic.Int32
	cw, err := newConfigWatcher(path, 50*time.Millisecond, func() error {
		reloads.Add(1)
		return nil
	}, nil)
	if err != nil {
		t.Fatalf("newConfigWatcher() error = %v", err)
	}
	cw.Start()
	cw.Stop()
	cw.Stop()

	writeFile(t, path, "show_cpu: false\n")
	time.Sleep(150 * time.Millisecond)

	if got := reloads.Load(); got != 0 {
		t.Errorf("reloads after Stop = %d, want 0", got)
	}
}

func TestConfigWatcherMissingDirectory(t *testing.T) {
	_, err := newConfigWatcher(filepath.Join(t.TempDir(), "missing", "config.yaml"), 0, func() error { return nil }, nil)
	if err == nil {
		t.Error("newConfigWatcher() on a missing directory succeeded")
	}
}

func TestWatchConfigAppliesChanges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "max_notifications: 3\n")

	opts := testOptions(&fakeSampler{})
	opts.WatchConfig = true
	opts.WatchDebounce = 20 * time.Millisecond
	w, err := NewFromFile(path, opts)
	if err != nil {
		t.Fatalf("NewFromFile() error = %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer w.Stop()

	time.Sleep(50 * time.Millisecond)
	writeFile(t, path, "max_notifications: 9\n")

	deadline := time.Now().Add(2 * time.Second)
	for w.Config().MaxNotifications != 9 && time.Now().Before(deadline) {
		time.Sleep(20 * time.Millisecond)
	}
	if got := w.Config().MaxNotifications; got != 9 {
		t.Errorf("MaxNotifications = %d, want 9", got)
	}
}
