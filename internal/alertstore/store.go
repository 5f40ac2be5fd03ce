// Package alertstore owns the active-alert set and the process-wide threshold
// configuration. It is an explicitly constructed instance rather than a
// package-level singleton so tests can run isolated stores side by side.
package alertstore

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"terramon/internal/metrics"
	"terramon/internal/models"
)

// Retention is how long an alert stays active before it ages out.
const Retention = 24 * time.Hour

// alertKey is the composite identity of an active alert. At most one alert
// exists per key; repeat findings refresh it in place.
type alertKey struct {
	zone string
	kind models.AlertKind
}

// Store holds per-zone alert state behind a single lock. Ingest performs a
// read-modify-write, so the lock also covers threshold reads to keep the
// at-most-one-alert-per-(zone,kind) invariant under concurrent callers.
type Store struct {
	mu         sync.Mutex
	thresholds models.ThresholdSet
	alerts     map[alertKey]*models.Alert
	byID       map[string]alertKey
	now        func() time.Time
}

// IngestResult pairs an alert with whether it refreshed an existing one.
type IngestResult struct {
	Alert     models.Alert
	Refreshed bool
}

// New creates a store with the given initial threshold set.
func New(initial models.ThresholdSet) *Store {
	return &Store{
		thresholds: initial,
		alerts:     make(map[alertKey]*models.Alert),
		byID:       make(map[string]alertKey),
		now:        time.Now,
	}
}

// Thresholds returns the current complete threshold set.
func (s *Store) Thresholds() models.ThresholdSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.thresholds
}

// UpdateThresholds merges the patch into the current set atomically with
// respect to concurrent ingestion. Last writer wins; there is no versioning.
// Returns the resulting complete set.
func (s *Store) UpdateThresholds(patch models.ThresholdPatch) models.ThresholdSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.thresholds = s.thresholds.Merge(patch)
	return s.thresholds
}

// Ingest merges findings into the zone's alert state and returns the alerts
// that were created or refreshed. An existing alert for the same (zone, kind)
// is refreshed under the same identity, never duplicated. Findings absent
// from the batch do not clear their alerts: an alert leaves the active set
// only via expiry or dismissal, which damps flapping when a metric hovers
// around its threshold.
func (s *Store) Ingest(zone string, findings []models.Finding) ([]IngestResult, error) {
	if zone == "" {
		return nil, fmt.Errorf("ingest: %w", models.ErrEmptyZone)
	}
	for i := range findings {
		if err := findings[i].Validate(); err != nil {
			return nil, fmt.Errorf("ingest finding %d: %w", i, err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.expireLocked(now)

	results := make([]IngestResult, 0, len(findings))
	for i := range findings {
		f := &findings[i]
		key := alertKey{zone: zone, kind: f.Kind}

		if existing, ok := s.alerts[key]; ok {
			existing.Value = f.Value
			existing.Severity = f.Severity
			existing.CreatedAt = now
			results = append(results, IngestResult{Alert: *existing, Refreshed: true})
			metrics.AlertsIngestedTotal.WithLabelValues(string(f.Kind), "refreshed").Inc()
			continue
		}

		alert := &models.Alert{
			ID:        uuid.New().String(),
			Zone:      zone,
			Kind:      f.Kind,
			Severity:  f.Severity,
			Value:     f.Value,
			CreatedAt: now,
		}
		s.alerts[key] = alert
		s.byID[alert.ID] = key
		results = append(results, IngestResult{Alert: *alert})
		metrics.AlertsIngestedTotal.WithLabelValues(string(f.Kind), "created").Inc()
	}

	metrics.AlertsActive.Set(float64(len(s.alerts)))
	return results, nil
}

// ActiveAlerts returns all alerts younger than the retention window across
// all zones, most recent first.
func (s *Store) ActiveAlerts(now time.Time) []models.Alert {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.expireLocked(now)

	active := make([]models.Alert, 0, len(s.alerts))
	for _, alert := range s.alerts {
		active = append(active, *alert)
	}
	sort.Slice(active, func(i, j int) bool {
		return active[i].CreatedAt.After(active[j].CreatedAt)
	})

	metrics.AlertsActive.Set(float64(len(s.alerts)))
	return active
}

// Dismiss removes the alert immediately regardless of age. Dismissing an
// unknown id is a no-op.
func (s *Store) Dismiss(alertID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key, ok := s.byID[alertID]
	if !ok {
		return
	}
	delete(s.alerts, key)
	delete(s.byID, alertID)

	metrics.AlertsDismissedTotal.Inc()
	metrics.AlertsActive.Set(float64(len(s.alerts)))
}

// expireLocked drops alerts past the retention window. Caller holds the lock.
func (s *Store) expireLocked(now time.Time) {
	cutoff := now.Add(-Retention)
	for key, alert := range s.alerts {
		if alert.CreatedAt.Before(cutoff) {
			delete(s.alerts, key)
			delete(s.byID, alert.ID)
			metrics.AlertsExpiredTotal.Inc()
		}
	}
}
