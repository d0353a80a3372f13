package monitor

import (
	"context"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// SolaarSource reads Logitech peripheral batteries from the solaar CLI.
// Structured output is tried first; older releases only print text.
type SolaarSource struct {
	runner CommandRunner
}

// NewSolaarSource creates a source that runs solaar through runner.
func NewSolaarSource(runner CommandRunner) *SolaarSource {
	return &SolaarSource{runner: runner}
}

// Name implements BatterySource.
func (s *SolaarSource) Name() string { return "solaar" }

// Devices implements BatterySource.
func (s *SolaarSource) Devices(ctx context.Context) ([]BatteryDevice, error) {
	out, err := s.runner.Run(ctx, "solaar", "show", "--json")
	if err == nil {
		if devices, perr := ParseSolaarJSON(out); perr == nil && len(devices) > 0 {
			return devices, nil
		}
	}

	// The text form is used even when solaar exits non-zero, as long as it
	// printed something.
	out, err = s.runner.Run(ctx, "solaar", "show")
	if len(out) == 0 {
		if err != nil {
			return nil, err
		}
		return nil, nil
	}
	return ParseSolaarText(string(out)), nil
}

// ParseSolaarJSON parses `solaar show --json`. The root is either an array
// of device records or an object whose values are records.
func ParseSolaarJSON(data []byte) ([]BatteryDevice, error) {
	var root any
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("solaar json: %w", err)
	}

	var records []any
	switch v := root.(type) {
	case []any:
		records = v
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			records = append(records, v[k])
		}
	}

	devices := make([]BatteryDevice, 0, len(records))
	for _, rec := range records {
		obj, ok := rec.(map[string]any)
		if !ok {
			continue
		}
		devices = append(devices, solaarDevice(obj))
	}
	return devices, nil
}

func solaarDevice(obj map[string]any) BatteryDevice {
	dev := BatteryDevice{
		Name:        "Unknown device",
		IsConnected: true,
	}
	if name, ok := obj["name"].(string); ok {
		dev.Name = name
	}
	if kind, ok := obj["kind"].(string); ok {
		dev.Kind = kind
	}

	var battery map[string]any
	if b, ok := obj["battery"]; ok {
		battery, _ = b.(map[string]any)
	} else if list, ok := obj["batteries"].([]any); ok && len(list) > 0 {
		battery, _ = list[0].(map[string]any)
	}
	if battery == nil {
		return dev
	}

	if level, ok := battery["level"].(float64); ok && isByte(level) {
		dev.Level = int(level)
		dev.HasLevel = true
	}
	if status, ok := battery["status"].(string); ok {
		dev.Status = status
	} else if state, ok := battery["state"].(string); ok {
		dev.Status = state
	}
	return dev
}

// isByte reports whether a JSON number is an integer in [0, 255].
func isByte(v float64) bool {
	return v >= 0 && v <= math.MaxUint8 && v == math.Trunc(v)
}

// ParseSolaarText parses the human-readable `solaar show` output. This is
// a best-effort heuristic over an unversioned format:
//
//   - "  N: Name" at two-space indentation starts a device block
//   - Kind, Codename and Battery lines attach to the current block
//   - an unindented line, or a two-space Receiver line, ends the block
//
// A device listed twice (e.g., paired to two receivers) is kept once,
// preferring the connected entry.
func ParseSolaarText(text string) []BatteryDevice {
	var (
		devices  []BatteryDevice
		name     string
		kind     string
		codename string
		inDevice bool
	)

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		shallow := strings.HasPrefix(line, "  ") && !strings.HasPrefix(line, "    ")
		if shallow {
			if idx := strings.IndexByte(line, ':'); idx >= 0 && allDigits(strings.TrimSpace(line[:idx])) {
				name = strings.TrimSpace(line[idx+1:])
				kind, codename = "", ""
				inDevice = true
				continue
			}
		}

		if !inDevice {
			continue
		}

		if v, ok := solaarField(trimmed, "Kind"); ok {
			kind = v
		}
		if strings.HasPrefix(trimmed, "Codename") {
			if parts := strings.Split(trimmed, ":"); len(parts) > 1 {
				codename = strings.TrimSpace(parts[1])
			}
		}
		if v, ok := solaarField(trimmed, "Battery"); ok {
			level, hasLevel, status := ParseBatteryLine(v)
			devices = mergeSolaarDevice(devices, BatteryDevice{
				Name:        name,
				Level:       level,
				HasLevel:    hasLevel,
				Status:      status,
				Kind:        kind,
				Codename:    codename,
				IsConnected: hasLevel,
			})
		}

		leaving := !strings.HasPrefix(line, "  ") || (shallow && strings.Contains(line, "Receiver"))
		if leaving && !strings.HasPrefix(trimmed, "Has") && !strings.HasPrefix(trimmed, "Notifications") {
			inDevice = false
		}
	}
	return devices
}

// mergeSolaarDevice appends dev unless a device with the same name or
// codename exists; an existing disconnected entry is replaced by a
// connected one.
func mergeSolaarDevice(devices []BatteryDevice, dev BatteryDevice) []BatteryDevice {
	idx := slices.IndexFunc(devices, func(d BatteryDevice) bool {
		return d.Name == dev.Name || (dev.Codename != "" && d.Codename == dev.Codename)
	})
	if idx < 0 {
		return append(devices, dev)
	}
	if !devices[idx].IsConnected && dev.IsConnected {
		devices[idx] = dev
	}
	return devices
}

// solaarField matches "Key: value" and "Key   : value" lines.
func solaarField(line, key string) (string, bool) {
	k, v, ok := strings.Cut(line, ":")
	if !ok || strings.TrimSpace(k) != key {
		return "", false
	}
	return strings.TrimSpace(v), true
}

// ParseBatteryLine splits a battery description into level and status:
// "90% (discharging)" is 90 and "discharging"; "good" has no level and
// status "good".
func ParseBatteryLine(text string) (level int, hasLevel bool, status string) {
	num, rest, found := strings.Cut(text, "%")
	if !found {
		return 0, false, text
	}
	if v, err := strconv.ParseUint(strings.TrimSpace(num), 10, 8); err == nil {
		level, hasLevel = int(v), true
	}
	rest = strings.TrimSpace(strings.TrimLeft(rest, "%"))
	if rest != "" {
		status = strings.TrimSpace(strings.Trim(rest, ",()."))
	}
	return level, hasLevel, status
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
