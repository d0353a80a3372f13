package monitor

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorSource identifies which monitor produced an error.
type ErrorSource string

const (
	ErrorSourceUtilization   ErrorSource = "utilization"
	ErrorSourceTemperature   ErrorSource = "temperature"
	ErrorSourceStorage       ErrorSource = "storage"
	ErrorSourceDiskModel     ErrorSource = "diskmodel"
	ErrorSourceBattery       ErrorSource = "battery"
	ErrorSourceWeather       ErrorSource = "weather"
	ErrorSourceNotifications ErrorSource = "notifications"
	ErrorSourceMedia         ErrorSource = "media"
	ErrorSourceNetwork       ErrorSource = "network"
	ErrorSourceDiskIO        ErrorSource = "diskio"
	ErrorSourceCache         ErrorSource = "cache"
)

var (
	// ErrToolUnavailable means an external binary is not installed.
	ErrToolUnavailable = errors.New("tool unavailable")
	// ErrNoData means a source answered but returned nothing usable.
	ErrNoData = errors.New("no data")
)

// ComponentError wraps an error with source information.
// It preserves the original error for inspection via errors.Is/errors.As.
type ComponentError struct {
	Source ErrorSource
	Err    error
}

// Error implements the error interface.
func (e *ComponentError) Error() string {
	return fmt.Sprintf("%s: %v", e.Source, e.Err)
}

// Unwrap returns the underlying error for errors.Is/errors.As support.
func (e *ComponentError) Unwrap() error {
	return e.Err
}

// NewComponentError creates a new ComponentError.
func NewComponentError(source ErrorSource, err error) *ComponentError {
	return &ComponentError{
		Source: source,
		Err:    err,
	}
}

// UpdateError aggregates the component errors seen during one refresh pass.
// It is reported for diagnostics and never aborts a refresh.
type UpdateError struct {
	Errors []*ComponentError
}

// Error implements the error interface.
func (e *UpdateError) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("update error: %v", e.Errors[0])
	}
	msgs := make([]string, len(e.Errors))
	for i, ce := range e.Errors {
		msgs[i] = ce.Error()
	}
	return fmt.Sprintf("update errors (%d): %s", len(e.Errors), strings.Join(msgs, "; "))
}

// Unwrap returns the underlying errors slice for multi-error support.
func (e *UpdateError) Unwrap() []error {
	errs := make([]error, len(e.Errors))
	for i, ce := range e.Errors {
		errs[i] = ce
	}
	return errs
}

// Add records err under source. Nil errors are ignored.
func (e *UpdateError) Add(source ErrorSource, err error) {
	if err == nil {
		return
	}
	var ce *ComponentError
	if errors.As(err, &ce) && ce.Source == source {
		e.Errors = append(e.Errors, ce)
		return
	}
	e.Errors = append(e.Errors, NewComponentError(source, err))
}

// ErrOrNil returns e if it holds any errors, nil otherwise.
func (e *UpdateError) ErrOrNil() error {
	if e == nil || len(e.Errors) == 0 {
		return nil
	}
	return e
}

// HasSource returns true if any error originated from the given source.
func (e *UpdateError) HasSource(source ErrorSource) bool {
	for _, ce := range e.Errors {
		if ce.Source == source {
			return true
		}
	}
	return false
}

// BySource returns all errors from the specified source.
func (e *UpdateError) BySource(source ErrorSource) []*ComponentError {
	var result []*ComponentError
	for _, ce := range e.Errors {
		if ce.Source == source {
			result = append(result, ce)
		}
	}
	return result
}

// AsUpdateError attempts to extract an UpdateError from an error.
// Returns nil if the error is not an UpdateError.
func AsUpdateError(err error) *UpdateError {
	var ue *UpdateError
	if errors.As(err, &ue) {
		return ue
	}
	return nil
}

// IsComponentError returns true if err wraps or is a ComponentError with the given source.
func IsComponentError(err error, source ErrorSource) bool {
	var ce *ComponentError
	for errors.As(err, &ce) {
		if ce.Source == source {
			return true
		}
		err = ce.Err
	}
	return false
}
