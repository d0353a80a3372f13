package monitor

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// GPUUsageSource reports GPU metrics from a vendor tool.
type GPUUsageSource interface {
	// Available reports whether the tool was found when the source was built.
	Available() bool
	// Usage returns GPU utilization in percent.
	Usage(ctx context.Context) (float64, error)
	// Temperature returns the GPU core temperature in degrees Celsius.
	Temperature(ctx context.Context) (float64, error)
}

// nvidiaSMIFormat selects bare CSV values, one GPU per line.
const nvidiaSMIFormat = "--format=csv,noheader,nounits"

// NvidiaSMI queries NVIDIA GPUs through nvidia-smi.
// The tool is detected once; a GPU driver loaded later is not picked up.
type NvidiaSMI struct {
	runner     CommandRunner
	detectOnce sync.Once
	available  bool
}

// NewNvidiaSMI creates a source that runs nvidia-smi through runner.
func NewNvidiaSMI(runner CommandRunner) *NvidiaSMI {
	return &NvidiaSMI{runner: runner}
}

// Detect runs nvidia-smi once. Any run that gets as far as executing the
// binary counts, even if it exits non-zero.
func (n *NvidiaSMI) Detect(ctx context.Context) bool {
	n.detectOnce.Do(func() {
		_, err := n.runner.Run(ctx, "nvidia-smi", "--query-gpu=utilization.gpu", nvidiaSMIFormat)
		n.available = !errors.Is(err, ErrToolUnavailable)
	})
	return n.available
}

// Available implements GPUUsageSource.
func (n *NvidiaSMI) Available() bool {
	return n.Detect(context.Background())
}

// Usage implements GPUUsageSource.
func (n *NvidiaSMI) Usage(ctx context.Context) (float64, error) {
	return n.query(ctx, "utilization.gpu")
}

// Temperature implements GPUUsageSource.
func (n *NvidiaSMI) Temperature(ctx context.Context) (float64, error) {
	return n.query(ctx, "temperature.gpu")
}

func (n *NvidiaSMI) query(ctx context.Context, field string) (float64, error) {
	if !n.Available() {
		return 0, fmt.Errorf("nvidia-smi: %w", ErrToolUnavailable)
	}
	out, err := n.runner.Run(ctx, "nvidia-smi", "--query-gpu="+field, nvidiaSMIFormat)
	if err != nil {
		return 0, err
	}
	return parseNvidiaSMIValue(string(out))
}

// parseNvidiaSMIValue reads the first GPU's value from nvidia-smi CSV output.
func parseNvidiaSMIValue(output string) (float64, error) {
	line, _, _ := strings.Cut(strings.TrimSpace(output), "\n")
	line = strings.TrimSpace(line)
	if line == "" {
		return 0, fmt.Errorf("nvidia-smi: %w", ErrNoData)
	}
	v, err := strconv.ParseFloat(line, 64)
	if err != nil {
		return 0, fmt.Errorf("nvidia-smi: parse %q: %w", line, err)
	}
	return v, nil
}
