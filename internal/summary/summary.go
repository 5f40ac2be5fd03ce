// Package summary builds a per-zone digest of the latest batch: metric deltas,
// headline alerts, recommendations, and a spoken-text rendering for voice
// consumers.
package summary

import (
	"fmt"
	"math"
	"time"

	"terramon/internal/models"
	"terramon/internal/recommend"
	"terramon/internal/rules"
)

// MetricDelta holds a current value and its percent change against the
// previous reading.
type MetricDelta struct {
	Current   float64 `json:"current"`
	ChangePct float64 `json:"change_pct"`
}

// Summary is the digest for one zone.
type Summary struct {
	Zone            string           `json:"zone"`
	Timestamp       time.Time        `json:"timestamp"`
	Vegetation      MetricDelta      `json:"vegetation"`
	Erosion         MetricDelta      `json:"erosion"`
	Moisture        MetricDelta      `json:"moisture"`
	Headlines       []string         `json:"headlines"`
	AnomalyRatio    float64          `json:"anomaly_ratio"`
	Recommendations recommend.Result `json:"recommendations"`
	Spoken          string           `json:"spoken"`
	OverallStatus   string           `json:"overall_status"` // healthy or warning
}

// Generate builds a summary from a batch ordered newest first. An empty batch
// yields nil rather than an error.
func Generate(readings []models.Reading, zone string, thresholds models.ThresholdSet) *Summary {
	if len(readings) == 0 {
		return nil
	}

	latest := readings[0]
	previous := latest
	if len(readings) > 1 {
		previous = readings[1]
	}

	var headlines []string
	if latest.Erosion > thresholds.ErosionCritical {
		headlines = append(headlines, "Critical erosion levels detected")
	}
	if latest.Vegetation < thresholds.VegetationLow {
		headlines = append(headlines, "Vegetation stress identified")
	}
	if latest.Moisture < thresholds.MoistureLow {
		headlines = append(headlines, "Low moisture content")
	}

	ratio := rules.AnomalyRatio(readings, thresholds)
	recs := recommend.Prioritize(&latest, ratio)

	status := "healthy"
	if len(headlines) > 0 {
		status = "warning"
	}

	s := &Summary{
		Zone:            zone,
		Timestamp:       latest.Timestamp.UTC(),
		Vegetation:      MetricDelta{Current: latest.Vegetation, ChangePct: changePct(latest.Vegetation, previous.Vegetation)},
		Erosion:         MetricDelta{Current: latest.Erosion, ChangePct: changePct(latest.Erosion, previous.Erosion)},
		Moisture:        MetricDelta{Current: latest.Moisture, ChangePct: changePct(latest.Moisture, previous.Moisture)},
		Headlines:       headlines,
		AnomalyRatio:    ratio,
		Recommendations: recs,
		OverallStatus:   status,
	}
	s.Spoken = spoken(zone, s)
	return s
}

// changePct is the percent change from previous to current. A zero previous
// value would divide by zero, so it reports no change.
func changePct(current, previous float64) float64 {
	if previous == 0 {
		return 0
	}
	return (current - previous) / previous * 100
}

// spoken renders the digest as one plain-text passage for speech synthesis.
func spoken(zone string, s *Summary) string {
	vegWord := "declined"
	if s.Vegetation.ChangePct > 0 {
		vegWord = "improved"
	}
	eroWord := "decreased"
	if s.Erosion.ChangePct > 0 {
		eroWord = "increased"
	}

	alertText := "No critical alerts."
	if len(s.Headlines) > 0 {
		alertText = fmt.Sprintf("%d alerts active.", len(s.Headlines))
	}

	return fmt.Sprintf("%s soil health update: Vegetation %s by %.1f%%. Erosion levels %s by %.1f%%. %s %s",
		zone,
		vegWord, math.Abs(s.Vegetation.ChangePct),
		eroWord, math.Abs(s.Erosion.ChangePct),
		alertText,
		s.Recommendations.Summary,
	)
}
