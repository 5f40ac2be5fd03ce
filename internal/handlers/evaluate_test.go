package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"terramon/internal/alertstore"
	"terramon/internal/models"
)

var testThresholds = models.ThresholdSet{
	ErosionCritical: 0.75,
	VegetationLow:   0.4,
	MoistureLow:     25,
}

func newTestEvaluateHandler(t *testing.T) (*EvaluateHandler, *alertstore.Store, chan *models.AlertEnvelope) {
	t.Helper()

	store := alertstore.New(testThresholds)
	dispatch := make(chan *models.AlertEnvelope, 10)

	h := NewEvaluateHandler(EvaluateConfig{
		Store:        store,
		DispatchChan: dispatch,
		NodeID:       "test-node",
	})
	h.now = func() time.Time { return time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC) }

	return h, store, dispatch
}

type evaluateResponse struct {
	Success bool            `json:"success"`
	Data    *EvaluationData `json:"data"`
	Error   string          `json:"error"`
}

func postReadings(t *testing.T, h *EvaluateHandler, zone, body string) (*httptest.ResponseRecorder, evaluateResponse) {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/evaluate?zone="+zone, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var resp evaluateResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return rec, resp
}

func TestEvaluate_AnomalousBatch(t *testing.T) {
	h, _, dispatch := newTestEvaluateHandler(t)

	body := `[
		{"timestamp": "2026-03-14T11:30:00Z", "moisture": 20, "erosion": 0.9, "vegetation": 0.3},
		{"timestamp": "2026-03-14T10:30:00Z", "moisture": 60, "erosion": 0.2, "vegetation": 0.8}
	]`

	rec, resp := postReadings(t, h, "ridge-a", body)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !resp.Success {
		t.Fatalf("expected success envelope, got error %q", resp.Error)
	}

	data := resp.Data
	if data.Accepted != 2 || data.Rejected != 0 {
		t.Errorf("expected 2 accepted, got %+v", data)
	}
	if len(data.Findings) != 3 {
		t.Errorf("expected 3 findings from the latest reading, got %d", len(data.Findings))
	}
	if len(data.Alerts) != 3 {
		t.Errorf("expected 3 new alerts, got %d", len(data.Alerts))
	}
	for _, change := range data.Alerts {
		if change.Refreshed {
			t.Errorf("first evaluation should create alerts, got refresh for %s", change.Alert.Kind)
		}
	}
	if data.AnomalyRatio != 0.5 {
		t.Errorf("expected anomaly ratio 0.5, got %v", data.AnomalyRatio)
	}
	if data.Service.Zone != "ridge-a" {
		t.Errorf("expected service metrics for ridge-a, got %q", data.Service.Zone)
	}
	if data.Freshness.Bucket != "recent" {
		t.Errorf("expected recent freshness for a 30m-old reading, got %q", data.Freshness.Bucket)
	}
	if data.Summary == nil {
		t.Error("expected a zone summary")
	}

	// All new alerts must reach the dispatch channel
	if got := len(dispatch); got != 3 {
		t.Errorf("expected 3 envelopes queued for dispatch, got %d", got)
	}
	env := <-dispatch
	if env.PartitionKey != "ridge-a" || env.MonitorNode != "test-node" {
		t.Errorf("unexpected envelope metadata: %+v", env)
	}
}

func TestEvaluate_RepeatBatchRefreshes(t *testing.T) {
	h, store, _ := newTestEvaluateHandler(t)

	body := `{"timestamp": "2026-03-14T11:30:00Z", "moisture": 20, "erosion": 0.2, "vegetation": 0.8}`
	if rec, _ := postReadings(t, h, "ridge-a", body); rec.Code != http.StatusOK {
		t.Fatalf("first evaluate failed: %d", rec.Code)
	}

	body = `{"timestamp": "2026-03-14T11:45:00Z", "moisture": 15, "erosion": 0.2, "vegetation": 0.8}`
	_, resp := postReadings(t, h, "ridge-a", body)

	if len(resp.Data.Alerts) != 1 || !resp.Data.Alerts[0].Refreshed {
		t.Errorf("expected one refreshed alert, got %+v", resp.Data.Alerts)
	}
	if resp.Data.Alerts[0].Alert.Value != 15 {
		t.Errorf("refreshed alert should carry the latest value, got %v", resp.Data.Alerts[0].Alert.Value)
	}

	if got := len(store.ActiveAlerts(time.Now())); got != 1 {
		t.Errorf("expected one active alert after repeat ingestion, got %d", got)
	}
}

func TestEvaluate_HealthyBatch(t *testing.T) {
	h, _, dispatch := newTestEvaluateHandler(t)

	body := `{"readings": [{"timestamp": "2026-03-14T11:58:00Z", "moisture": 60, "erosion": 0.2, "vegetation": 0.8}]}`
	rec, resp := postReadings(t, h, "ridge-a", body)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(resp.Data.Findings) != 0 || len(resp.Data.Alerts) != 0 {
		t.Errorf("expected no findings or alerts, got %+v", resp.Data)
	}
	if resp.Data.Freshness.Bucket != "fresh" {
		t.Errorf("expected fresh reading, got %q", resp.Data.Freshness.Bucket)
	}
	if got := resp.Data.Recommendations.OverallUrgency; got != models.UrgencyLow {
		t.Errorf("expected low urgency for healthy zone, got %q", got)
	}
	if len(dispatch) != 0 {
		t.Errorf("healthy batch must not dispatch alerts, got %d", len(dispatch))
	}
}

func TestEvaluate_PartialRejection(t *testing.T) {
	h, _, _ := newTestEvaluateHandler(t)

	body := `[
		{"timestamp": "2026-03-14T11:30:00Z", "moisture": 60, "erosion": 0.2, "vegetation": 0.8},
		{"timestamp": "garbage", "moisture": 60, "erosion": 0.2, "vegetation": 0.8},
		{"timestamp": "2026-03-14T10:30:00Z", "moisture": 200, "erosion": 0.2, "vegetation": 0.8}
	]`

	rec, resp := postReadings(t, h, "ridge-a", body)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for partial acceptance, got %d", rec.Code)
	}
	if resp.Data.Accepted != 1 || resp.Data.Rejected != 2 {
		t.Errorf("expected 1 accepted / 2 rejected, got %+v", resp.Data)
	}
	if len(resp.Data.Errors) != 2 {
		t.Fatalf("expected 2 reading errors, got %v", resp.Data.Errors)
	}
	if resp.Data.Errors[0].Index != 1 || resp.Data.Errors[1].Index != 2 {
		t.Errorf("error indexes should point at the rejected readings, got %+v", resp.Data.Errors)
	}
}

func TestEvaluate_AllRejected(t *testing.T) {
	h, _, _ := newTestEvaluateHandler(t)

	body := `[{"timestamp": "garbage", "moisture": 60, "erosion": 0.2, "vegetation": 0.8}]`
	rec, resp := postReadings(t, h, "ridge-a", body)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 when every reading is rejected, got %d", rec.Code)
	}
	if resp.Success {
		t.Error("expected error envelope")
	}
}

func TestEvaluate_BadRequests(t *testing.T) {
	h, _, _ := newTestEvaluateHandler(t)

	// Missing zone
	req := httptest.NewRequest(http.MethodPost, "/evaluate", strings.NewReader(`[]`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for missing zone, got %d", rec.Code)
	}

	// Wrong method
	req = httptest.NewRequest(http.MethodGet, "/evaluate?zone=ridge-a", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", rec.Code)
	}

	// Empty body
	_, resp := postReadings(t, h, "ridge-a", `{}`)
	if resp.Success {
		t.Error("expected error envelope for empty payload")
	}

	// Zone mismatch inside a reading
	_, resp = postReadings(t, h, "ridge-a", `{"zone": "ridge-b", "timestamp": "2026-03-14T11:30:00Z", "moisture": 60, "erosion": 0.2, "vegetation": 0.8}`)
	if resp.Success {
		t.Error("expected error envelope for zone mismatch")
	}
}

func TestEvaluate_QueueFullDropsDispatchOnly(t *testing.T) {
	store := alertstore.New(testThresholds)
	dispatch := make(chan *models.AlertEnvelope) // unbuffered, nothing draining

	h := NewEvaluateHandler(EvaluateConfig{
		Store:        store,
		DispatchChan: dispatch,
		NodeID:       "test-node",
	})
	h.now = func() time.Time { return time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC) }

	body := `{"timestamp": "2026-03-14T11:30:00Z", "moisture": 20, "erosion": 0.2, "vegetation": 0.8}`
	rec, resp := postReadings(t, h, "ridge-a", body)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if resp.Data.DispatchDropped != 1 {
		t.Errorf("expected 1 dropped dispatch, got %d", resp.Data.DispatchDropped)
	}
	// The alert itself must still be active
	if got := len(store.ActiveAlerts(time.Now())); got != 1 {
		t.Errorf("expected alert to stay active despite dropped dispatch, got %d", got)
	}
}

func TestEvaluate_OfflineFeed(t *testing.T) {
	h, _, _ := newTestEvaluateHandler(t)

	// Only reading is a week old: availability 0, but last reading surfaces
	weekAgo := h.now().Add(-7 * 24 * time.Hour)
	body := fmt.Sprintf(`{"timestamp": %q, "moisture": 60, "erosion": 0.2, "vegetation": 0.8}`, weekAgo.Format(time.RFC3339))

	_, resp := postReadings(t, h, "ridge-a", body)

	if resp.Data.Service.Status != models.StatusOffline {
		t.Errorf("expected offline feed, got %q", resp.Data.Service.Status)
	}
	if resp.Data.Service.LastReadingAt == nil {
		t.Error("expected last reading timestamp to surface for a stale feed")
	}
	if resp.Data.Freshness.Bucket != "old" {
		t.Errorf("expected old freshness bucket, got %q", resp.Data.Freshness.Bucket)
	}
}
