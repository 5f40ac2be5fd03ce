// Package freshness labels timestamps with a human-relative age bucket.
package freshness

import (
	"fmt"
	"time"
)

// Bucket classifies how stale a timestamp is.
type Bucket string

const (
	Fresh   Bucket = "fresh"   // under 5 minutes
	Recent  Bucket = "recent"  // under an hour
	Stale   Bucket = "stale"   // under a day
	Old     Bucket = "old"     // a day or more
	Unknown Bucket = "unknown" // no timestamp
)

// Classification is the result of classifying a timestamp.
type Classification struct {
	Bucket     Bucket `json:"bucket"`
	AgeMinutes int    `json:"age_minutes"`
	Label      string `json:"label"`
}

// Classify buckets ts relative to now. A zero timestamp maps to Unknown.
func Classify(ts time.Time, now time.Time) Classification {
	if ts.IsZero() {
		return Classification{Bucket: Unknown, Label: "unknown"}
	}

	minutes := int(now.Sub(ts).Minutes())
	if minutes < 0 {
		minutes = 0
	}

	switch {
	case minutes < 5:
		return Classification{Bucket: Fresh, AgeMinutes: minutes, Label: "just now"}
	case minutes < 60:
		return Classification{Bucket: Recent, AgeMinutes: minutes, Label: fmt.Sprintf("%dm ago", minutes)}
	case minutes < 1440:
		return Classification{Bucket: Stale, AgeMinutes: minutes, Label: fmt.Sprintf("%dh ago", minutes/60)}
	default:
		return Classification{Bucket: Old, AgeMinutes: minutes, Label: fmt.Sprintf("%dd ago", minutes/1440)}
	}
}
