// Package config provides configuration parsing and validation for monwidget.
// This file implements validation for configuration values.
package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error.
// It contains the field name and a description of the issue.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (ve ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ve.Field, ve.Message)
}

// ValidationResult holds the results of a configuration validation.
type ValidationResult struct {
	// Errors contains all validation errors found.
	Errors []ValidationError
	// Warnings contains non-fatal issues (e.g., values that will be clamped).
	Warnings []ValidationError
}

// IsValid returns true if there are no validation errors.
func (vr *ValidationResult) IsValid() bool {
	return len(vr.Errors) == 0
}

// Error returns a combined error message if there are errors, nil otherwise.
func (vr *ValidationResult) Error() error {
	if len(vr.Errors) == 0 {
		return nil
	}

	messages := make([]string, 0, len(vr.Errors))
	for _, e := range vr.Errors {
		messages = append(messages, e.Error())
	}
	return fmt.Errorf("validation failed: %s", strings.Join(messages, "; "))
}

// AddError adds a validation error.
func (vr *ValidationResult) AddError(field, message string) {
	vr.Errors = append(vr.Errors, ValidationError{Field: field, Message: message})
}

// AddWarning adds a validation warning.
func (vr *ValidationResult) AddWarning(field, message string) {
	vr.Warnings = append(vr.Warnings, ValidationError{Field: field, Message: message})
}

// Validate checks cfg without modifying it.
func Validate(cfg *Config) *ValidationResult {
	result := &ValidationResult{}

	if cfg.UpdateIntervalMS < MinUpdateIntervalMS || cfg.UpdateIntervalMS > MaxUpdateIntervalMS {
		result.AddWarning("update_interval_ms",
			fmt.Sprintf("%d is outside [%d, %d] and will be clamped",
				cfg.UpdateIntervalMS, MinUpdateIntervalMS, MaxUpdateIntervalMS))
	}

	if cfg.MaxNotifications < 1 {
		result.AddError("max_notifications",
			fmt.Sprintf("must be at least 1, got %d", cfg.MaxNotifications))
	}

	validateSectionOrder(cfg.SectionOrder, result)

	switch strings.ToLower(strings.TrimSpace(cfg.WeatherProvider)) {
	case "", ProviderOpenWeatherMap, ProviderOpenMeteo:
	default:
		result.AddError("weather_provider", fmt.Sprintf("unknown provider %q", cfg.WeatherProvider))
	}

	if cfg.ShowWeather {
		if cfg.KeyedWeather() && TrimQuotes(cfg.WeatherAPIKey) == "" {
			result.AddWarning("weather_api_key", "weather is enabled but no API key is set")
		}
		if TrimQuotes(cfg.WeatherLocation) == "" {
			result.AddWarning("weather_location", "weather is enabled but no location is set")
		}
	}

	if cfg.ShowBattery && !cfg.EnableSolaarIntegration {
		result.AddWarning("enable_solaar_integration",
			"battery section is shown but device polling is disabled")
	}

	return result
}

// validateSectionOrder requires a permutation of AllSections.
func validateSectionOrder(order []Section, result *ValidationResult) {
	seen := make(map[Section]bool, len(order))
	for i, sec := range order {
		if _, err := ParseSection(string(sec)); err != nil {
			result.AddError("section_order", fmt.Sprintf("unknown section at index %d: %q", i, sec))
			continue
		}
		if seen[sec] {
			result.AddError("section_order", fmt.Sprintf("duplicate section %q", sec))
		}
		seen[sec] = true
	}
	for _, sec := range AllSections {
		if !seen[sec] {
			result.AddError("section_order", fmt.Sprintf("missing section %q", sec))
		}
	}
}

// ValidateConfig validates a configuration and returns an error if invalid.
func ValidateConfig(cfg *Config) error {
	return Validate(cfg).Error()
}
