// Package cache persists placeholder data shown before the first live
// refresh of the storage and battery monitors completes.
package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// FileName is the cache file name inside the cache directory.
const FileName = "widget_cache.json"

// CachedDisk is the durable part of a storage entry.
type CachedDisk struct {
	Name       string `json:"name"`
	MountPoint string `json:"mount_point"`
}

// CachedBatteryDevice is the durable part of a battery entry.
type CachedBatteryDevice struct {
	Name string `json:"name"`
	Kind string `json:"kind,omitempty"`
}

// WidgetCache is the whole persisted snapshot.
type WidgetCache struct {
	Disks          []CachedDisk          `json:"disks"`
	BatteryDevices []CachedBatteryDevice `json:"battery_devices"`
}

// IsEmpty reports whether the cache holds nothing worth showing.
func (c WidgetCache) IsEmpty() bool {
	return len(c.Disks) == 0 && len(c.BatteryDevices) == 0
}

// Logger receives cache diagnostics. *slog.Logger satisfies it.
type Logger interface {
	Warn(msg string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Warn(string, ...any) {}

// Store reads and writes the cache file. Writes go through a temp file and a
// rename so a crash never leaves a half-written cache behind.
type Store struct {
	mu     sync.Mutex
	path   string
	logger Logger
}

// NewStore creates a store backed by the file at path.
func NewStore(path string, logger Logger) *Store {
	if logger == nil {
		logger = nopLogger{}
	}
	return &Store{path: path, logger: logger}
}

// DefaultPath returns $XDG_CACHE_HOME/monwidget/widget_cache.json, falling
// back to ~/.cache and finally the system temp directory.
func DefaultPath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "monwidget", FileName)
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the cache. A missing, unreadable or corrupt file yields an empty
// cache; this never fails.
func (s *Store) Load() WidgetCache {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *Store) load() WidgetCache {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("cache: read failed", "path", s.path, "error", err)
		}
		return WidgetCache{}
	}

	var c WidgetCache
	if err := json.Unmarshal(data, &c); err != nil {
		s.logger.Warn("cache: ignoring corrupt file", "path", s.path, "error", err)
		return WidgetCache{}
	}
	return c
}

// Save overwrites the cache file with c.
func (s *Store) Save(c WidgetCache) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(c)
}

func (s *Store) save(c WidgetCache) error {
	if c.Disks == nil {
		c.Disks = []CachedDisk{}
	}
	if c.BatteryDevices == nil {
		c.BatteryDevices = []CachedBatteryDevice{}
	}

	encoded, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("cache: marshal: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("cache: create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-widget-cache-*.json")
	if err != nil {
		return fmt.Errorf("cache: create temp: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(encoded); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("cache: write temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("cache: close temp: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("cache: rename temp: %w", err)
	}

	success = true
	return nil
}

// UpdateDisks replaces the disk list and keeps the battery list.
func (s *Store) UpdateDisks(disks []CachedDisk) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.load()
	c.Disks = append([]CachedDisk(nil), disks...)
	return s.save(c)
}

// UpdateBatteryDevices replaces the battery list and keeps the disk list.
func (s *Store) UpdateBatteryDevices(devices []CachedBatteryDevice) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.load()
	c.BatteryDevices = append([]CachedBatteryDevice(nil), devices...)
	return s.save(c)
}

// Clear removes the cache file. A missing file is not an error.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("cache: remove %s: %w", s.path, err)
	}
	return nil
}
