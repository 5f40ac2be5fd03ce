package models

import (
	"errors"
	"strings"
	"time"
)

// Reading represents a single environmental sensor reading for a zone.
type Reading struct {
	// Monitored zone identifier
	Zone string `json:"zone"`

	// Timestamp when the reading was taken
	Timestamp time.Time `json:"timestamp"`

	// Soil moisture percentage, 0-100
	Moisture float64 `json:"moisture"`

	// Erosion index, 0 and up
	Erosion float64 `json:"erosion"`

	// Vegetation index, 0-1
	Vegetation float64 `json:"vegetation"`
}

// Validation errors
var (
	ErrEmptyZone        = errors.New("zone cannot be empty")
	ErrZeroTimestamp    = errors.New("timestamp cannot be zero")
	ErrFutureTimestamp  = errors.New("timestamp cannot be in the future")
	ErrInvalidTimestamp = errors.New("invalid timestamp format")
	ErrMoistureRange    = errors.New("moisture must be between 0 and 100")
	ErrErosionNegative  = errors.New("erosion cannot be negative")
	ErrVegetationRange  = errors.New("vegetation must be between 0 and 1")
	ErrMissingAlertKind = errors.New("alert kind cannot be empty")
	ErrUnknownAlertKind = errors.New("unknown alert kind")
)

// Validate checks if the Reading has all required fields and valid values
func (r *Reading) Validate() error {
	if r.Zone == "" {
		return ErrEmptyZone
	}

	if r.Timestamp.IsZero() {
		return ErrZeroTimestamp
	}

	if r.Timestamp.After(time.Now().Add(time.Minute)) {
		return ErrFutureTimestamp
	}

	if r.Moisture < 0 || r.Moisture > 100 {
		return ErrMoistureRange
	}

	if r.Erosion < 0 {
		return ErrErosionNegative
	}

	if r.Vegetation < 0 || r.Vegetation > 1 {
		return ErrVegetationRange
	}

	return nil
}

// Normalize applies field normalization to a Reading
func (r *Reading) Normalize() {
	r.Zone = strings.TrimSpace(r.Zone)
	if !r.Timestamp.IsZero() {
		r.Timestamp = r.Timestamp.UTC()
	}
}

// SupportedTimestampFormats lists formats we attempt to parse
var SupportedTimestampFormats = []string{
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.RFC1123,
	time.UnixDate,
}

// ParseTimestamp attempts to parse a timestamp string into time.Time
func ParseTimestamp(ts string) (time.Time, error) {
	ts = strings.TrimSpace(ts)

	for _, format := range SupportedTimestampFormats {
		if t, err := time.Parse(format, ts); err == nil {
			return t.UTC(), nil
		}
	}

	return time.Time{}, ErrInvalidTimestamp
}
