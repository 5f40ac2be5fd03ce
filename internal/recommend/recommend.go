// Package recommend maps a zone's latest reading to ranked regenerative
// remediation practices.
package recommend

import (
	"fmt"
	"strings"

	"terramon/internal/models"
	"terramon/internal/rules"
)

// Result is the full prioritizer output for one zone.
type Result struct {
	Recommendations []models.Recommendation `json:"recommendations"`
	OverallUrgency  models.Urgency          `json:"overall_urgency"`
	Summary         string                  `json:"summary"`
}

// Prioritize evaluates every recommendation rule against the latest reading
// and the batch-wide anomaly ratio. Rules are not mutually exclusive: all
// applicable ones fire. If none fire, a single low-urgency Maintenance
// recommendation is returned, so the list is never empty. The summary string
// is plain text safe to hand directly to a speech synthesizer.
func Prioritize(latest *models.Reading, anomalyRatio float64) Result {
	var recs []models.Recommendation

	if latest != nil {
		if latest.Vegetation < rules.DefaultThresholds.VegetationLow {
			recs = append(recs, models.Recommendation{
				Category: "Vegetation Recovery",
				Practice: "Emergency reforestation with native species",
				Urgency:  models.UrgencyCritical,
				Timeline: "1-2 weeks",
			})
		} else if latest.Vegetation < rules.VegetationModerate {
			recs = append(recs, models.Recommendation{
				Category: "Vegetation Enhancement",
				Practice: "Apply cover crops and compost application",
				Urgency:  models.UrgencyHigh,
				Timeline: "2-4 weeks",
			})
		}

		if latest.Erosion > rules.ErosionSevere {
			recs = append(recs, models.Recommendation{
				Category: "Erosion Control",
				Practice: "Install check dams and emergency terracing",
				Urgency:  models.UrgencyCritical,
				Timeline: "1 week",
			})
		} else if latest.Erosion > rules.DefaultThresholds.ErosionCritical {
			recs = append(recs, models.Recommendation{
				Category: "Erosion Prevention",
				Practice: "Initiate terracing and grass strip installation",
				Urgency:  models.UrgencyHigh,
				Timeline: "2-3 weeks",
			})
		}

		if latest.Moisture < rules.DefaultThresholds.MoistureLow {
			recs = append(recs, models.Recommendation{
				Category: "Water Conservation",
				Practice: "Emergency irrigation and mulch application",
				Urgency:  models.UrgencyCritical,
				Timeline: "3-5 days",
			})
		} else if latest.Moisture < rules.MoistureModerate {
			recs = append(recs, models.Recommendation{
				Category: "Moisture Retention",
				Practice: "Install drip irrigation and organic mulching",
				Urgency:  models.UrgencyMedium,
				Timeline: "1-2 weeks",
			})
		}
	}

	if anomalyRatio > rules.AnomalyRatioHigh {
		recs = append(recs, models.Recommendation{
			Category: "System Monitoring",
			Practice: "Conduct zone-wide audit and community mobilization",
			Urgency:  models.UrgencyHigh,
			Timeline: "1 week",
		})
	}

	overall := models.UrgencyLow
	for _, rec := range recs {
		if rec.Urgency.Rank() > overall.Rank() {
			overall = rec.Urgency
		}
	}

	if len(recs) == 0 {
		recs = append(recs, models.Recommendation{
			Category: "Maintenance",
			Practice: "Continue current soil management practices",
			Urgency:  models.UrgencyLow,
			Timeline: "Ongoing",
		})
	}

	return Result{
		Recommendations: recs,
		OverallUrgency:  overall,
		Summary:         summarize(recs, overall),
	}
}

// summarize joins the recommended practices into one deterministic sentence.
func summarize(recs []models.Recommendation, overall models.Urgency) string {
	practices := make([]string, len(recs))
	for i, rec := range recs {
		practices[i] = strings.ToLower(rec.Practice)
	}

	var urgencyText string
	switch overall {
	case models.UrgencyCritical:
		urgencyText = "immediate action required"
	case models.UrgencyHigh:
		urgencyText = "action needed within 2 weeks"
	case models.UrgencyMedium:
		urgencyText = "action recommended within a month"
	default:
		urgencyText = "monitoring and maintenance"
	}

	plural := ""
	if len(recs) > 1 {
		plural = "s"
	}

	return fmt.Sprintf("%d regenerative practice%s recommended: %s. Priority level: %s.",
		len(recs), plural, strings.Join(practices, ", "), urgencyText)
}
