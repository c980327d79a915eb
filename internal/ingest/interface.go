// Package ingest merges raw climate datasets from multiple sources into the
// cleaned observation table the training pipeline consumes.
package ingest

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Source defines the interface for fetching daily climate observations from
// an external provider.
type Source interface {
	// FetchObservations retrieves daily observations within the date range
	FetchObservations(ctx context.Context, startDate, endDate time.Time) ([]Observation, error)

	// Name returns the name of the source
	Name() string

	// IsEnabled returns whether this source is currently enabled
	IsEnabled() bool
}

// Observation is one day of normalized climate data from any source. Nil
// fields were not reported by the provider. Precipitation is kept as a
// decimal because daily values are tiny and get summed over long ranges.
type Observation struct {
	Date time.Time        `json:"date"`
	Prcp *decimal.Decimal `json:"prcp"` // precipitation, inches
	Tavg *float64         `json:"tavg"` // average temperature, F
	Tmax *float64         `json:"tmax"` // maximum temperature, F
	Tmin *float64         `json:"tmin"` // minimum temperature, F
	Awnd *float64         `json:"awnd"` // average wind speed, mph
	Rhum *float64         `json:"rhum"` // relative humidity, percent
}

// SourceError represents errors from source operations
type SourceError struct {
	Source  string // source name
	Code    string // error code (e.g. "rate_limit_exceeded")
	Message string // error message
	Err     error  // underlying error
}

func (e SourceError) Error() string {
	if e.Err != nil {
		return e.Source + ": " + e.Code + ": " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Source + ": " + e.Code + ": " + e.Message
}

func (e SourceError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrCodeRateLimitExceeded = "rate_limit_exceeded"
	ErrCodeNotFound          = "not_found"
	ErrCodeInvalidData       = "invalid_data"
	ErrCodeNetworkError      = "network_error"
	ErrCodeServerError       = "server_error"
)

var (
	ErrInvalidData  = errors.New("invalid data format")
	ErrNetworkError = errors.New("network error")
)

// NewSourceError creates a new source error
func NewSourceError(source, code, message string, err error) SourceError {
	return SourceError{
		Source:  source,
		Code:    code,
		Message: message,
		Err:     err,
	}
}
