// Package evaluator checks the latest reading of a zone against the current
// threshold set and emits anomaly findings.
package evaluator

import (
	"terramon/internal/models"
	"terramon/internal/rules"
)

// Evaluate checks each threshold dimension independently, so a single reading
// can produce multiple findings. Comparisons are strict; a value exactly on
// its boundary does not trigger. A nil reading yields no findings.
func Evaluate(latest *models.Reading, thresholds models.ThresholdSet) []models.Finding {
	if latest == nil {
		return nil
	}

	var findings []models.Finding
	for _, rule := range rules.Table {
		if !rule.Breached(latest, thresholds) {
			continue
		}
		findings = append(findings, models.Finding{
			Kind:       rule.Kind,
			Zone:       latest.Zone,
			Value:      rule.Metric.Value(latest),
			ObservedAt: latest.Timestamp,
			Severity:   rule.Severity,
		})
	}
	return findings
}
