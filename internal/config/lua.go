// Package config provides configuration parsing for monwidget.
// This file implements the Lua configuration parser.

package config

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/arnodel/golua/lib"
	rt "github.com/arnodel/golua/runtime"
)

// LuaConfigParser parses Lua configuration files of the form
//
//	widget.config = { show_cpu = true, section_order = { "Storage", ... } }
//
// It uses the Golua runtime to execute the chunk and reads the resulting table.
type LuaConfigParser struct {
	runtime *rt.Runtime
	cleanup func()
	mu      sync.Mutex
}

// NewLuaConfigParser creates a new LuaConfigParser with a fresh Lua runtime.
func NewLuaConfigParser() (*LuaConfigParser, error) {
	return NewLuaConfigParserWithOutput(io.Discard)
}

// NewLuaConfigParserWithOutput creates a LuaConfigParser with custom output.
func NewLuaConfigParserWithOutput(stdout io.Writer) (*LuaConfigParser, error) {
	if stdout == nil {
		stdout = os.Stdout
	}

	runtime := rt.New(stdout)
	cleanup := lib.LoadAll(runtime)

	return &LuaConfigParser{
		runtime: runtime,
		cleanup: cleanup,
	}, nil
}

// Parse executes the Lua chunk and extracts widget.config.
func (p *LuaConfigParser) Parse(content []byte) (*Config, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.initWidgetGlobal()

	closure, err := p.runtime.CompileAndLoadLuaChunk(
		"config",
		content,
		rt.TableValue(p.runtime.GlobalEnv()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to compile Lua configuration: %w", err)
	}

	ctx := rt.RuntimeContextDef{
		HardLimits: rt.RuntimeResources{
			Cpu:    10_000_000,
			Memory: 50 * 1024 * 1024, // 50 MB
		},
	}
	p.runtime.PushContext(ctx)
	defer p.runtime.PopContext()

	thread := p.runtime.MainThread()
	if _, err := rt.Call1(thread, rt.FunctionValue(closure)); err != nil {
		return nil, fmt.Errorf("failed to execute Lua configuration: %w", err)
	}

	return p.extractConfig()
}

// initWidgetGlobal resets the widget global table before each parse.
func (p *LuaConfigParser) initWidgetGlobal() {
	widgetTable := rt.NewTable()
	widgetTable.Set(rt.StringValue("config"), rt.TableValue(rt.NewTable()))
	p.runtime.GlobalEnv().Set(rt.StringValue("widget"), rt.TableValue(widgetTable))
}

func (p *LuaConfigParser) extractConfig() (*Config, error) {
	cfg := DefaultConfig()

	widgetVal := p.runtime.GlobalEnv().Get(rt.StringValue("widget"))
	if widgetVal == rt.NilValue {
		return &cfg, nil
	}

	widgetTable, ok := widgetVal.TryTable()
	if !ok {
		return nil, fmt.Errorf("widget is not a table")
	}

	configVal := widgetTable.Get(rt.StringValue("config"))
	configTable, ok := configVal.TryTable()
	if !ok {
		return nil, fmt.Errorf("widget.config is not a table")
	}

	if err := p.extractConfigTable(&cfg, configTable); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// extractConfigTable copies recognized keys from widget.config into cfg.
func (p *LuaConfigParser) extractConfigTable(cfg *Config, table *rt.Table) error {
	boolFields := []struct {
		key    string
		target *bool
	}{
		{"show_cpu", &cfg.ShowCPU},
		{"show_memory", &cfg.ShowMemory},
		{"show_gpu", &cfg.ShowGPU},
		{"show_network", &cfg.ShowNetwork},
		{"show_disk", &cfg.ShowDisk},
		{"show_cpu_temp", &cfg.ShowCPUTemp},
		{"show_gpu_temp", &cfg.ShowGPUTemp},
		{"use_circular_temp_display", &cfg.UseCircularTempDisplay},
		{"show_storage", &cfg.ShowStorage},
		{"show_battery", &cfg.ShowBattery},
		{"enable_solaar_integration", &cfg.EnableSolaarIntegration},
		{"show_weather", &cfg.ShowWeather},
		{"show_notifications", &cfg.ShowNotifications},
		{"show_media", &cfg.ShowMedia},
		{"show_clock", &cfg.ShowClock},
		{"show_date", &cfg.ShowDate},
		{"use_24hour_time", &cfg.Use24HourTime},
		{"show_percentages", &cfg.ShowPercentages},
		{"widget_movable", &cfg.WidgetMovable},
		{"widget_autostart", &cfg.WidgetAutostart},
		{"enable_logging", &cfg.EnableLogging},
	}
	for _, f := range boolFields {
		if val := getTableBool(table, f.key); val != nil {
			*f.target = *val
		}
	}

	intFields := []struct {
		key    string
		target *int
	}{
		{"max_notifications", &cfg.MaxNotifications},
		{"update_interval_ms", &cfg.UpdateIntervalMS},
		{"widget_x", &cfg.WidgetX},
		{"widget_y", &cfg.WidgetY},
	}
	for _, f := range intFields {
		if val := getTableInt(table, f.key); val != nil {
			*f.target = *val
		}
	}

	if val := getTableString(table, "weather_provider"); val != nil {
		cfg.WeatherProvider = *val
	}
	if val := getTableString(table, "weather_api_key"); val != nil {
		cfg.WeatherAPIKey = *val
	}
	if val := getTableString(table, "weather_location"); val != nil {
		cfg.WeatherLocation = *val
	}

	orderVal := table.Get(rt.StringValue("section_order"))
	if orderVal == rt.NilValue {
		return nil
	}
	orderTable, ok := orderVal.TryTable()
	if !ok {
		return fmt.Errorf("invalid section_order: expected a list of names")
	}
	order, err := sectionList(orderTable)
	if err != nil {
		return fmt.Errorf("invalid section_order: %w", err)
	}
	if len(order) > 0 {
		cfg.SectionOrder = order
	}
	return nil
}

// sectionList reads a Lua sequence of section names.
func sectionList(table *rt.Table) ([]Section, error) {
	var order []Section
	for i := int64(1); ; i++ {
		val := table.Get(rt.IntValue(i))
		if val == rt.NilValue {
			break
		}
		name, ok := val.TryString()
		if !ok {
			return nil, fmt.Errorf("entry %d is not a string", i)
		}
		var sec Section
		_ = sec.UnmarshalText([]byte(name))
		order = append(order, sec)
	}
	return order, nil
}

// Close releases resources associated with the parser's Lua runtime.
func (p *LuaConfigParser) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cleanup != nil {
		p.cleanup()
		p.cleanup = nil
	}
	return nil
}

// getTableBool retrieves a boolean value from a Lua table.
// Returns nil if the key doesn't exist or is not a boolean.
func getTableBool(table *rt.Table, key string) *bool {
	val := table.Get(rt.StringValue(key))
	if val == rt.NilValue {
		return nil
	}

	if b, ok := val.TryBool(); ok {
		return &b
	}

	// Handle string "true"/"false" for compatibility
	if s, ok := val.TryString(); ok {
		b := parseBool(s)
		return &b
	}

	return nil
}

// getTableString retrieves a string value from a Lua table.
func getTableString(table *rt.Table, key string) *string {
	val := table.Get(rt.StringValue(key))
	if val == rt.NilValue {
		return nil
	}

	if s, ok := val.TryString(); ok {
		return &s
	}

	return nil
}

// getTableInt retrieves an int value from a Lua table, truncating floats.
func getTableInt(table *rt.Table, key string) *int {
	val := table.Get(rt.StringValue(key))
	if val == rt.NilValue {
		return nil
	}

	if n, ok := val.TryInt(); ok {
		i := int(n)
		return &i
	}

	if f, ok := val.TryFloat(); ok {
		i := int(f)
		return &i
	}

	return nil
}

// parseBool accepts the usual spellings of a boolean flag.
func parseBool(s string) bool {
	switch s {
	case "yes", "true", "1", "on", "Yes", "True", "YES", "TRUE", "On", "ON":
		return true
	default:
		return false
	}
}
