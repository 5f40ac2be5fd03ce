package freshness

import (
	"testing"
	"time"
)

func TestClassify_Buckets(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name       string
		age        time.Duration
		wantBucket Bucket
	}{
		{"zero age", 0, Fresh},
		{"four minutes", 4 * time.Minute, Fresh},
		{"five minutes", 5 * time.Minute, Recent},
		{"fifty-nine minutes", 59 * time.Minute, Recent},
		{"one hour", 60 * time.Minute, Stale},
		{"under a day", 1439 * time.Minute, Stale},
		{"one day", 1440 * time.Minute, Old},
		{"1500 minutes", 1500 * time.Minute, Old},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Classify(now.Add(-tc.age), now)
			if got.Bucket != tc.wantBucket {
				t.Errorf("age %v: expected bucket %q, got %q", tc.age, tc.wantBucket, got.Bucket)
			}
			if got.AgeMinutes != int(tc.age.Minutes()) {
				t.Errorf("age %v: expected %d minutes, got %d", tc.age, int(tc.age.Minutes()), got.AgeMinutes)
			}
		})
	}
}

func TestClassify_ZeroTimestamp(t *testing.T) {
	got := Classify(time.Time{}, time.Now())
	if got.Bucket != Unknown {
		t.Errorf("expected unknown bucket for zero timestamp, got %q", got.Bucket)
	}
}

func TestClassify_FutureTimestamp(t *testing.T) {
	now := time.Now()
	got := Classify(now.Add(10*time.Minute), now)
	if got.Bucket != Fresh {
		t.Errorf("expected fresh for future timestamp, got %q", got.Bucket)
	}
	if got.AgeMinutes != 0 {
		t.Errorf("expected clamped age 0, got %d", got.AgeMinutes)
	}
}

func TestClassify_Labels(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	if got := Classify(now.Add(-2*time.Minute), now); got.Label != "just now" {
		t.Errorf("expected 'just now', got %q", got.Label)
	}
	if got := Classify(now.Add(-30*time.Minute), now); got.Label != "30m ago" {
		t.Errorf("expected '30m ago', got %q", got.Label)
	}
	if got := Classify(now.Add(-3*time.Hour), now); got.Label != "3h ago" {
		t.Errorf("expected '3h ago', got %q", got.Label)
	}
	if got := Classify(now.Add(-49*time.Hour), now); got.Label != "2d ago" {
		t.Errorf("expected '2d ago', got %q", got.Label)
	}
}
