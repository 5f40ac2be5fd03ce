package evaluator

import (
	"testing"
	"time"

	"terramon/internal/models"
	"terramon/internal/rules"
)

var thresholds = models.ThresholdSet{
	ErosionCritical: 0.75,
	VegetationLow:   0.4,
	MoistureLow:     25,
}

func reading(moisture, erosion, vegetation float64) *models.Reading {
	return &models.Reading{
		Zone:       "ridge-a",
		Timestamp:  time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC),
		Moisture:   moisture,
		Erosion:    erosion,
		Vegetation: vegetation,
	}
}

func TestEvaluate_NilReading(t *testing.T) {
	if got := Evaluate(nil, thresholds); len(got) != 0 {
		t.Errorf("expected no findings for nil reading, got %d", len(got))
	}
}

func TestEvaluate_Healthy(t *testing.T) {
	if got := Evaluate(reading(60, 0.2, 0.8), thresholds); len(got) != 0 {
		t.Errorf("expected no findings, got %v", got)
	}
}

func TestEvaluate_EqualityNeverTriggers(t *testing.T) {
	// Values exactly on their boundary must not fire
	if got := Evaluate(reading(25, 0.75, 0.4), thresholds); len(got) != 0 {
		t.Errorf("expected no findings at exact boundaries, got %v", got)
	}
}

func TestEvaluate_ErosionCritical(t *testing.T) {
	got := Evaluate(reading(60, 0.76, 0.8), thresholds)
	if len(got) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(got))
	}
	f := got[0]
	if f.Kind != models.KindErosionCritical {
		t.Errorf("expected erosion kind, got %q", f.Kind)
	}
	if f.Severity != models.SeverityCritical {
		t.Errorf("erosion breach must be critical, got %q", f.Severity)
	}
	if f.Value != 0.76 {
		t.Errorf("expected finding value 0.76, got %v", f.Value)
	}
	if f.Zone != "ridge-a" {
		t.Errorf("expected zone ridge-a, got %q", f.Zone)
	}
}

func TestEvaluate_WarningSeverities(t *testing.T) {
	got := Evaluate(reading(20, 0.2, 0.3), thresholds)
	if len(got) != 2 {
		t.Fatalf("expected 2 findings, got %d", len(got))
	}
	for _, f := range got {
		if f.Severity != models.SeverityWarning {
			t.Errorf("%s breach should be warning, got %q", f.Kind, f.Severity)
		}
	}
}

func TestEvaluate_AllThreeFire(t *testing.T) {
	got := Evaluate(reading(10, 0.9, 0.1), thresholds)
	if len(got) != 3 {
		t.Fatalf("expected 3 findings, got %d", len(got))
	}

	kinds := map[models.AlertKind]bool{}
	for _, f := range got {
		kinds[f.Kind] = true
	}
	for _, want := range []models.AlertKind{models.KindErosionCritical, models.KindVegetationLow, models.KindMoistureLow} {
		if !kinds[want] {
			t.Errorf("missing finding kind %q", want)
		}
	}
}

func TestEvaluate_RespectsUpdatedThresholds(t *testing.T) {
	strict := models.ThresholdSet{ErosionCritical: 0.1, VegetationLow: 0.9, MoistureLow: 90}
	got := Evaluate(reading(60, 0.2, 0.8), strict)
	if len(got) != 3 {
		t.Errorf("expected 3 findings under strict thresholds, got %d", len(got))
	}
}

func TestEvaluate_ObservedAtFromReading(t *testing.T) {
	r := reading(10, 0.9, 0.1)
	for _, f := range Evaluate(r, thresholds) {
		if !f.ObservedAt.Equal(r.Timestamp) {
			t.Errorf("finding %s: expected observedAt %v, got %v", f.Kind, r.Timestamp, f.ObservedAt)
		}
	}
}

func TestEvaluate_MatchesSharedRuleTable(t *testing.T) {
	r := reading(10, 0.9, 0.1)
	if !rules.IsAnomalous(r, thresholds) {
		t.Error("rules.IsAnomalous disagrees with evaluator on an anomalous reading")
	}
	healthy := reading(60, 0.2, 0.8)
	if rules.IsAnomalous(healthy, thresholds) {
		t.Error("rules.IsAnomalous disagrees with evaluator on a healthy reading")
	}
}
