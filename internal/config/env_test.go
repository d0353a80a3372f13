package config

import (
	"testing"
)

func TestExpandEnv(t *testing.T) {
	t.Setenv("TEST_WIDGET_VAR", "test_value")
	t.Setenv("TEST_WIDGET_CITY", "Oslo,NO")

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "no variables",
			input:    "plain text without variables",
			expected: "plain text without variables",
		},
		{
			name:     "simple ${VAR} format",
			input:    "prefix ${TEST_WIDGET_VAR} suffix",
			expected: "prefix test_value suffix",
		},
		{
			name:     "simple $VAR format",
			input:    "prefix $TEST_WIDGET_VAR suffix",
			expected: "prefix test_value suffix",
		},
		{
			name:     "unset variable becomes empty",
			input:    "prefix ${UNSET_VAR_12345} suffix",
			expected: "prefix  suffix",
		},
		{
			name:     "unset variable with default",
			input:    "${UNSET_VAR_12345:-London,UK}",
			expected: "London,UK",
		},
		{
			name:     "set variable ignores default",
			input:    "${TEST_WIDGET_CITY:-London,UK}",
			expected: "Oslo,NO",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExpandEnv(tt.input); got != tt.expected {
				t.Errorf("ExpandEnv(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestExpandEnvConfig(t *testing.T) {
	t.Setenv("TEST_OWM_KEY", "k-123")

	cfg := DefaultConfig()
	cfg.WeatherAPIKey = "${TEST_OWM_KEY}"
	cfg.WeatherLocation = "${TEST_OWM_CITY_UNSET:-Madrid,ES}"

	ExpandEnvConfig(&cfg)

	if cfg.WeatherAPIKey != "k-123" {
		t.Errorf("WeatherAPIKey = %q, want %q", cfg.WeatherAPIKey, "k-123")
	}
	if cfg.WeatherLocation != "Madrid,ES" {
		t.Errorf("WeatherLocation = %q, want %q", cfg.WeatherLocation, "Madrid,ES")
	}
}

func TestExpandEnvConfigNil(t *testing.T) {
	// Should not panic
	ExpandEnvConfig(nil)
}

func TestTrimQuotes(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`abc`, "abc"},
		{`"abc"`, "abc"},
		{`'abc'`, "abc"},
		{"  \"abc\"  ", "abc"},
		{`"abc`, `"abc`},
		{`""`, ""},
		{`"`, `"`},
		{`"London,UK"`, "London,UK"},
	}
	for _, tt := range tests {
		if got := TrimQuotes(tt.in); got != tt.want {
			t.Errorf("TrimQuotes(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
