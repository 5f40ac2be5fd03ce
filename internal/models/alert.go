package models

import "time"

// AlertKind identifies which metric breached its threshold.
type AlertKind string

const (
	KindErosionCritical AlertKind = "erosion_critical"
	KindVegetationLow   AlertKind = "vegetation_low"
	KindMoistureLow     AlertKind = "moisture_low"
)

// IsValid checks if the alert kind is known
func (k AlertKind) IsValid() bool {
	switch k {
	case KindErosionCritical, KindVegetationLow, KindMoistureLow:
		return true
	default:
		return false
	}
}

// Severity represents alert severity levels
type Severity string

const (
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Finding is a single anomaly produced by threshold evaluation.
// Findings are ephemeral: produced fresh on every evaluation, never stored.
type Finding struct {
	Kind       AlertKind `json:"kind"`
	Zone       string    `json:"zone"`
	Value      float64   `json:"value"`
	ObservedAt time.Time `json:"observed_at"`
	Severity   Severity  `json:"severity"`
}

// Validate checks the Finding shape before it may enter the alert store
func (f *Finding) Validate() error {
	if f.Zone == "" {
		return ErrEmptyZone
	}
	if f.Kind == "" {
		return ErrMissingAlertKind
	}
	if !f.Kind.IsValid() {
		return ErrUnknownAlertKind
	}
	return nil
}

// Alert is an active anomaly owned by the alert store. At most one alert is
// active per (zone, kind) pair; a repeat finding refreshes value and timestamp
// under the same identity instead of creating a duplicate.
type Alert struct {
	ID        string    `json:"id"`
	Zone      string    `json:"zone"`
	Kind      AlertKind `json:"kind"`
	Severity  Severity  `json:"severity"`
	Value     float64   `json:"value"`
	CreatedAt time.Time `json:"created_at"`
}

// ThresholdSet is the complete process-wide anomaly threshold configuration.
// All three fields are always present; partial updates merge into it.
type ThresholdSet struct {
	ErosionCritical float64 `json:"erosion_critical" yaml:"erosion_critical"`
	VegetationLow   float64 `json:"vegetation_low" yaml:"vegetation_low"`
	MoistureLow     float64 `json:"moisture_low" yaml:"moisture_low"`
}

// ThresholdPatch is a partial threshold update. Nil fields are left unchanged,
// so a merge can never produce an incomplete set.
type ThresholdPatch struct {
	ErosionCritical *float64 `json:"erosion_critical,omitempty"`
	VegetationLow   *float64 `json:"vegetation_low,omitempty"`
	MoistureLow     *float64 `json:"moisture_low,omitempty"`
}

// Merge returns the threshold set with the patch applied.
func (t ThresholdSet) Merge(p ThresholdPatch) ThresholdSet {
	if p.ErosionCritical != nil {
		t.ErosionCritical = *p.ErosionCritical
	}
	if p.VegetationLow != nil {
		t.VegetationLow = *p.VegetationLow
	}
	if p.MoistureLow != nil {
		t.MoistureLow = *p.MoistureLow
	}
	return t
}

// ServiceStatus classifies the health of a zone's data feed.
type ServiceStatus string

const (
	StatusOnline   ServiceStatus = "online"
	StatusDegraded ServiceStatus = "degraded"
	StatusOffline  ServiceStatus = "offline"
)

// ServiceMetrics describes feed health for a zone over the trailing window.
// Recomputed fresh from the supplied batch on every call.
type ServiceMetrics struct {
	Zone            string        `json:"zone"`
	AvailabilityPct float64       `json:"availability_pct"`
	MissedReadings  int           `json:"missed_readings"`
	LastReadingAt   *time.Time    `json:"last_reading_at"`
	Status          ServiceStatus `json:"status"`
}

// Urgency ranks remediation recommendations.
type Urgency string

const (
	UrgencyLow      Urgency = "low"
	UrgencyMedium   Urgency = "medium"
	UrgencyHigh     Urgency = "high"
	UrgencyCritical Urgency = "critical"
)

// Rank returns a comparable ordering, higher is more urgent.
func (u Urgency) Rank() int {
	switch u {
	case UrgencyCritical:
		return 3
	case UrgencyHigh:
		return 2
	case UrgencyMedium:
		return 1
	default:
		return 0
	}
}

// Recommendation is a single remediation action derived from a reading.
type Recommendation struct {
	Category string  `json:"category"`
	Practice string  `json:"practice"`
	Urgency  Urgency `json:"urgency"`
	Timeline string  `json:"timeline"`
}
