package monitor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"time"
)

// DefaultCommandTimeout bounds every one-shot external tool invocation.
const DefaultCommandTimeout = 5 * time.Second

// CommandRunner runs external tools. Every shelled-out source goes through
// it so tests can script the output without real binaries.
type CommandRunner interface {
	// LookPath reports the resolved path of name, or ErrToolUnavailable.
	LookPath(name string) (string, error)
	// Run executes name and returns its stdout.
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
	// Stream starts a long-running command and returns its stdout. The
	// returned wait function reaps the process after stdout is drained.
	Stream(ctx context.Context, name string, args ...string) (io.ReadCloser, func() error, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct {
	// Timeout applies to Run. Zero means DefaultCommandTimeout.
	Timeout time.Duration
}

// NewExecRunner returns the production CommandRunner.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{Timeout: DefaultCommandTimeout}
}

// LookPath implements CommandRunner.
func (r *ExecRunner) LookPath(name string) (string, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("%s: %w", name, ErrToolUnavailable)
	}
	return path, nil
}

// Run implements CommandRunner.
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultCommandTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", name, ErrToolUnavailable)
		}
		if msg := bytes.TrimSpace(stderr.Bytes()); len(msg) > 0 {
			return stdout.Bytes(), fmt.Errorf("%s: %w: %s", name, err, msg)
		}
		return stdout.Bytes(), fmt.Errorf("%s: %w", name, err)
	}
	return stdout.Bytes(), nil
}

// Stream implements CommandRunner.
func (r *ExecRunner) Stream(ctx context.Context, name string, args ...string) (io.ReadCloser, func() error, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, nil, fmt.Errorf("%s: stdout pipe: %w", name, err)
	}
	if err := cmd.Start(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return nil, nil, fmt.Errorf("%s: %w", name, ErrToolUnavailable)
		}
		return nil, nil, fmt.Errorf("%s: start: %w", name, err)
	}
	return stdout, cmd.Wait, nil
}

// Logger is the logging surface monitors use. *slog.Logger satisfies it.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Warn(string, ...any)  {}

func orNop(l Logger) Logger {
	if l == nil {
		return nopLogger{}
	}
	return l
}
