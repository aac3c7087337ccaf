package forecast

import (
	"fmt"

	"JSEInsight/internal/model"
)

// ErrInvalidSeries is returned by Estimate when a series is unordered or holds non-positive prices.
var ErrInvalidSeries = model.ErrInvalidSeries

// InsufficientDataError reports a series too short to estimate from.
type InsufficientDataError struct {
	Ticker   string
	Points   int
	Required int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data for %s: have %d points, need at least %d", e.Ticker, e.Points, e.Required)
}

// ConfigError reports an invalid portfolio, projection, or confidence input.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func configErrorf(field, format string, args ...any) *ConfigError {
	return &ConfigError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// DataUnavailableError reports that a price history could not be obtained.
type DataUnavailableError struct {
	Ticker string
	Err    error
}

func (e *DataUnavailableError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("data unavailable for %s", e.Ticker)
	}
	return fmt.Sprintf("data unavailable for %s: %v", e.Ticker, e.Err)
}

func (e *DataUnavailableError) Unwrap() error { return e.Err }
