// Package rules is the single definition of the anomaly threshold domain.
// Both the threshold evaluator and the recommendation prioritizer consume it,
// so "what counts as an anomaly" cannot drift between alerting and advice.
package rules

import "terramon/internal/models"

// Metric identifies one dimension of a reading.
type Metric string

const (
	MetricMoisture   Metric = "moisture"
	MetricErosion    Metric = "erosion"
	MetricVegetation Metric = "vegetation"
)

// Comparator is the breach direction for a metric.
type Comparator int

const (
	// Above breaches when value > boundary
	Above Comparator = iota
	// Below breaches when value < boundary
	Below
)

// Breached reports whether value breaches boundary. Comparisons are strict:
// equality never triggers.
func (c Comparator) Breached(value, boundary float64) bool {
	if c == Above {
		return value > boundary
	}
	return value < boundary
}

// Value extracts the metric's value from a reading.
func (m Metric) Value(r *models.Reading) float64 {
	switch m {
	case MetricErosion:
		return r.Erosion
	case MetricVegetation:
		return r.Vegetation
	default:
		return r.Moisture
	}
}

// Rule binds a metric and comparator to an alert kind.
type Rule struct {
	Metric   Metric
	Cmp      Comparator
	Kind     models.AlertKind
	Severity models.Severity
}

// Table lists every alerting rule. Erosion is the irreversible-damage signal,
// so it alone carries critical severity.
var Table = []Rule{
	{Metric: MetricErosion, Cmp: Above, Kind: models.KindErosionCritical, Severity: models.SeverityCritical},
	{Metric: MetricVegetation, Cmp: Below, Kind: models.KindVegetationLow, Severity: models.SeverityWarning},
	{Metric: MetricMoisture, Cmp: Below, Kind: models.KindMoistureLow, Severity: models.SeverityWarning},
}

// Boundary returns the rule's threshold from the given set.
func (r Rule) Boundary(t models.ThresholdSet) float64 {
	switch r.Metric {
	case MetricErosion:
		return t.ErosionCritical
	case MetricVegetation:
		return t.VegetationLow
	default:
		return t.MoistureLow
	}
}

// Breached reports whether the reading breaches this rule under the given set.
func (r Rule) Breached(reading *models.Reading, t models.ThresholdSet) bool {
	return r.Cmp.Breached(r.Metric.Value(reading), r.Boundary(t))
}

// DefaultThresholds is the deployment default threshold set.
var DefaultThresholds = models.ThresholdSet{
	ErosionCritical: 0.75,
	VegetationLow:   0.4,
	MoistureLow:     25,
}

// Escalation boundaries used by the recommendation prioritizer on top of the
// base threshold domain.
const (
	ErosionSevere      = 0.8
	VegetationModerate = 0.6
	MoistureModerate   = 35
	AnomalyRatioHigh   = 0.5
)

// IsAnomalous reports whether any rule fires for the reading.
func IsAnomalous(reading *models.Reading, t models.ThresholdSet) bool {
	for _, rule := range Table {
		if rule.Breached(reading, t) {
			return true
		}
	}
	return false
}

// AnomalyRatio returns the fraction of readings in the batch breaching any
// threshold, in [0, 1]. An empty batch has ratio 0.
func AnomalyRatio(readings []models.Reading, t models.ThresholdSet) float64 {
	if len(readings) == 0 {
		return 0
	}
	anomalous := 0
	for i := range readings {
		if IsAnomalous(&readings[i], t) {
			anomalous++
		}
	}
	return float64(anomalous) / float64(len(readings))
}
