package monitor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
)

// fakeRunner scripts command output keyed by the full command line.
type fakeRunner struct {
	mu      sync.Mutex
	results map[string]fakeResult
	streams map[string]string
	missing map[string]bool
	calls   []string
}

type fakeResult struct {
	out string
	err error
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{
		results: make(map[string]fakeResult),
		streams: make(map[string]string),
		missing: make(map[string]bool),
	}
}

func (f *fakeRunner) set(cmdline, out string, err error) *fakeRunner {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results[cmdline] = fakeResult{out: out, err: err}
	return f
}

func (f *fakeRunner) setMissing(name string) *fakeRunner {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.missing[name] = true
	return f
}

func (f *fakeRunner) setStream(name, out string) *fakeRunner {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.streams[name] = out
	return f
}

func (f *fakeRunner) count(prefix string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

func (f *fakeRunner) LookPath(name string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.missing[name] {
		return "", fmt.Errorf("%s: %w", name, ErrToolUnavailable)
	}
	return "/usr/bin/" + name, nil
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	cmdline := strings.Join(append([]string{name}, args...), " ")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, cmdline)
	if f.missing[name] {
		return nil, fmt.Errorf("%s: %w", name, ErrToolUnavailable)
	}
	res, ok := f.results[cmdline]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, errors.New("exit status 1"))
	}
	return []byte(res.out), res.err
}

func (f *fakeRunner) Stream(_ context.Context, name string, args ...string) (io.ReadCloser, func() error, error) {
	cmdline := strings.Join(append([]string{name}, args...), " ")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, cmdline)
	if f.missing[name] {
		return nil, nil, fmt.Errorf("%s: %w", name, ErrToolUnavailable)
	}
	out, ok := f.streams[name]
	if !ok {
		return nil, nil, fmt.Errorf("%s: start failed", name)
	}
	return io.NopCloser(strings.NewReader(out)), func() error { return nil }, nil
}

// fakeSampler implements every sampling interface with fixed values.
type fakeSampler struct {
	mu         sync.Mutex
	cpu        float64
	cpuErr     error
	memUsed    uint64
	memTotal   uint64
	memErr     error
	sensors    []SensorReading
	sensorErr  error
	partitions []Partition
	partCalls  int
	usage      map[string][2]uint64
	usageCalls int
	rx, tx     uint64
	netErr     error
	disks      map[string]DiskCounter
	diskErr    error
}

func (f *fakeSampler) CPUPercent(context.Context) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cpu, f.cpuErr
}

func (f *fakeSampler) Memory(context.Context) (uint64, uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.memUsed, f.memTotal, f.memErr
}

func (f *fakeSampler) Temperatures(context.Context) ([]SensorReading, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sensors, f.sensorErr
}

func (f *fakeSampler) Partitions(context.Context) ([]Partition, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.partCalls++
	return append([]Partition(nil), f.partitions...), nil
}

func (f *fakeSampler) Usage(_ context.Context, mountPoint string) (uint64, uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.usageCalls++
	u, ok := f.usage[mountPoint]
	if !ok {
		return 0, 0, fmt.Errorf("usage %s: not mounted", mountPoint)
	}
	return u[0], u[1], nil
}

func (f *fakeSampler) NetCounters(context.Context) (uint64, uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rx, f.tx, f.netErr
}

func (f *fakeSampler) DiskCounters(context.Context) (map[string]DiskCounter, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.diskErr != nil {
		return nil, f.diskErr
	}
	out := make(map[string]DiskCounter, len(f.disks))
	for k, v := range f.disks {
		out[k] = v
	}
	return out, nil
}

// recordingLogger captures warnings for assertions.
type recordingLogger struct {
	mu    sync.Mutex
	warns []string
}

func (l *recordingLogger) Debug(string, ...any) {}

func (l *recordingLogger) Warn(msg string, _ ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warns = append(l.warns, msg)
}

func (l *recordingLogger) warnings() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.warns...)
}
