package config

import (
	"slices"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.UpdateIntervalMS != DefaultUpdateIntervalMS {
		t.Errorf("UpdateIntervalMS = %d, want %d", cfg.UpdateIntervalMS, DefaultUpdateIntervalMS)
	}
	if cfg.MaxNotifications != DefaultMaxNotifications {
		t.Errorf("MaxNotifications = %d, want %d", cfg.MaxNotifications, DefaultMaxNotifications)
	}
	if cfg.WeatherLocation != DefaultWeatherLocation {
		t.Errorf("WeatherLocation = %q, want %q", cfg.WeatherLocation, DefaultWeatherLocation)
	}
	if !cfg.ShowCPU || !cfg.ShowMemory || !cfg.ShowStorage {
		t.Error("expected CPU, memory and storage to be shown by default")
	}
	if cfg.ShowBattery || cfg.ShowWeather || cfg.ShowNotifications {
		t.Error("expected battery, weather and notifications to be hidden by default")
	}
	if len(cfg.SectionOrder) != len(AllSections) {
		t.Fatalf("SectionOrder has %d entries, want %d", len(cfg.SectionOrder), len(AllSections))
	}
	for i, sec := range AllSections {
		if cfg.SectionOrder[i] != sec {
			t.Errorf("SectionOrder[%d] = %q, want %q", i, cfg.SectionOrder[i], sec)
		}
	}
}

func TestDefaultConfigIndependentOrder(t *testing.T) {
	a := DefaultConfig()
	a.SectionOrder[0] = SectionWeather
	b := DefaultConfig()
	if b.SectionOrder[0] != SectionUtilization {
		t.Error("DefaultConfig shares its section order slice")
	}
}

func TestParseSection(t *testing.T) {
	tests := []struct {
		in      string
		want    Section
		wantErr bool
	}{
		{"Utilization", SectionUtilization, false},
		{"temperatures", SectionTemperatures, false},
		{"  STORAGE ", SectionStorage, false},
		{"notifications", SectionNotifications, false},
		{"media", SectionMedia, false},
		{"Clock", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSection(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseSection(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseSection(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestUpdateInterval(t *testing.T) {
	tests := []struct {
		ms   int
		want time.Duration
	}{
		{1000, time.Second},
		{0, 100 * time.Millisecond},
		{99, 100 * time.Millisecond},
		{10000, 10 * time.Second},
		{20000, 10 * time.Second},
	}
	for _, tt := range tests {
		cfg := Config{UpdateIntervalMS: tt.ms}
		if got := cfg.UpdateInterval(); got != tt.want {
			t.Errorf("UpdateInterval(%d) = %v, want %v", tt.ms, got, tt.want)
		}
	}
}

func TestNormalize(t *testing.T) {
	cfg := Config{
		UpdateIntervalMS: 50000,
		WeatherAPIKey:    ` "abc" `,
		WeatherLocation:  `'Rome,IT'`,
	}
	cfg.Normalize()

	if cfg.UpdateIntervalMS != MaxUpdateIntervalMS {
		t.Errorf("UpdateIntervalMS = %d, want %d", cfg.UpdateIntervalMS, MaxUpdateIntervalMS)
	}
	if cfg.WeatherAPIKey != "abc" {
		t.Errorf("WeatherAPIKey = %q, want %q", cfg.WeatherAPIKey, "abc")
	}
	if cfg.WeatherLocation != "Rome,IT" {
		t.Errorf("WeatherLocation = %q, want %q", cfg.WeatherLocation, "Rome,IT")
	}
	if cfg.WeatherProvider != ProviderOpenWeatherMap {
		t.Errorf("WeatherProvider = %q, want %q", cfg.WeatherProvider, ProviderOpenWeatherMap)
	}
	if len(cfg.SectionOrder) != len(AllSections) {
		t.Errorf("expected default section order to be filled in, got %v", cfg.SectionOrder)
	}
}

func TestNormalizeRepairsSectionOrder(t *testing.T) {
	tests := []struct {
		name  string
		order []Section
		want  []Section
	}{
		{
			name:  "complete order kept",
			order: []Section{SectionMedia, SectionNotifications, SectionWeather, SectionBattery, SectionStorage, SectionTemperatures, SectionUtilization},
			want:  []Section{SectionMedia, SectionNotifications, SectionWeather, SectionBattery, SectionStorage, SectionTemperatures, SectionUtilization},
		},
		{
			name:  "missing sections appended in default order",
			order: []Section{SectionWeather, SectionStorage},
			want:  []Section{SectionWeather, SectionStorage, SectionUtilization, SectionTemperatures, SectionBattery, SectionNotifications, SectionMedia},
		},
		{
			name:  "duplicates keep the first occurrence",
			order: []Section{SectionBattery, SectionUtilization, SectionBattery, SectionUtilization},
			want:  []Section{SectionBattery, SectionUtilization, SectionTemperatures, SectionStorage, SectionWeather, SectionNotifications, SectionMedia},
		},
		{
			name:  "unknown names dropped",
			order: []Section{"Clock", SectionNotifications, "", "Visualizer"},
			want:  []Section{SectionNotifications, SectionUtilization, SectionTemperatures, SectionStorage, SectionBattery, SectionWeather, SectionMedia},
		},
		{
			name:  "names canonicalized",
			order: []Section{" media ", "STORAGE", "storage"},
			want:  []Section{SectionMedia, SectionStorage, SectionUtilization, SectionTemperatures, SectionBattery, SectionWeather, SectionNotifications},
		},
		{
			name: "empty order gets the default",
			want: AllSections,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.SectionOrder = tt.order
			cfg.Normalize()
			if !slices.Equal(cfg.SectionOrder, tt.want) {
				t.Errorf("SectionOrder = %v, want %v", cfg.SectionOrder, tt.want)
			}
			if res := Validate(&cfg); !res.IsValid() {
				t.Errorf("normalized config invalid: %v", res.Error())
			}
		})
	}
}

func TestSectionLabel(t *testing.T) {
	if got := SectionMedia.Label(); got != "Media Player" {
		t.Errorf("SectionMedia.Label() = %q", got)
	}
	if got := SectionStorage.Label(); got != "Storage" {
		t.Errorf("SectionStorage.Label() = %q", got)
	}
}

func TestConfigEqualAndClone(t *testing.T) {
	a := DefaultConfig()
	b := a.Clone()
	if !a.Equal(b) {
		t.Fatal("clone should equal original")
	}

	b.SectionOrder[0], b.SectionOrder[1] = b.SectionOrder[1], b.SectionOrder[0]
	if a.Equal(b) {
		t.Error("reordered sections should not be equal")
	}
	if a.SectionOrder[0] != SectionUtilization {
		t.Error("Clone shares the section order slice")
	}

	c := a.Clone()
	c.ShowGPU = !c.ShowGPU
	if a.Equal(c) {
		t.Error("differing toggles should not be equal")
	}
}

func TestEnabledHelpers(t *testing.T) {
	cfg := Config{}
	if cfg.UtilizationEnabled() || cfg.TemperaturesEnabled() || cfg.BatteryPolling() {
		t.Error("zero config should have nothing enabled")
	}
	cfg.ShowGPU = true
	cfg.ShowGPUTemp = true
	cfg.ShowBattery = true
	if !cfg.UtilizationEnabled() || !cfg.TemperaturesEnabled() {
		t.Error("expected utilization and temperatures enabled")
	}
	if cfg.BatteryPolling() {
		t.Error("battery polling requires device integration")
	}
	cfg.EnableSolaarIntegration = true
	if !cfg.BatteryPolling() {
		t.Error("expected battery polling")
	}
}
