// Package availability scores the health of a zone's data feed: did readings
// arrive at the expected cadence over the trailing day, independent of what
// the readings themselves contained.
package availability

import (
	"time"

	"terramon/internal/models"
)

// Window is the trailing period availability is computed over.
const Window = 24 * time.Hour

// Status boundaries on availability percentage.
const (
	offlineBelowPct  = 50
	degradedBelowPct = 80
)

// Compute derives feed-health metrics for a zone from the supplied batch.
// Availability counts only readings inside the trailing window, but
// LastReadingAt surfaces the most recent reading in the whole input: a feed
// that died a week ago must still report when it was last heard from.
// Never fails; an empty batch yields 0% availability and offline status.
func Compute(readings []models.Reading, zone string, expectedInterval time.Duration, now time.Time) models.ServiceMetrics {
	if expectedInterval <= 0 {
		expectedInterval = 60 * time.Minute
	}

	expected := int(Window / expectedInterval)

	metrics := models.ServiceMetrics{
		Zone:           zone,
		Status:         models.StatusOffline,
		MissedReadings: expected,
	}

	if len(readings) == 0 {
		return metrics
	}

	windowStart := now.Add(-Window)
	actual := 0
	var last time.Time
	for i := range readings {
		ts := readings[i].Timestamp
		if !ts.Before(windowStart) {
			actual++
		}
		if ts.After(last) {
			last = ts
		}
	}

	pct := float64(actual) / float64(expected) * 100
	if pct > 100 {
		pct = 100
	}

	metrics.AvailabilityPct = pct
	metrics.MissedReadings = max(0, expected-actual)
	metrics.LastReadingAt = &last

	switch {
	case pct < offlineBelowPct:
		metrics.Status = models.StatusOffline
	case pct < degradedBelowPct:
		metrics.Status = models.StatusDegraded
	default:
		metrics.Status = models.StatusOnline
	}

	return metrics
}
