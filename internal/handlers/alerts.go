package handlers

import (
	"net/http"
	"time"

	"terramon/internal/alertstore"
	"terramon/internal/freshness"
	"terramon/internal/models"
)

// AlertsHandler serves the active alert set and operator dismissal.
type AlertsHandler struct {
	store *alertstore.Store
	now   func() time.Time
}

// NewAlertsHandler creates a new alerts handler
func NewAlertsHandler(store *alertstore.Store) *AlertsHandler {
	return &AlertsHandler{store: store, now: time.Now}
}

// AlertView is an alert with its freshness label for display
type AlertView struct {
	models.Alert
	Freshness freshness.Classification `json:"freshness"`
}

// AlertListData is the payload for the alert list endpoint
type AlertListData struct {
	Alerts []AlertView `json:"alerts"`
	Count  int         `json:"count"`
}

// List returns active alerts across all zones, newest first
func (h *AlertsHandler) List(w http.ResponseWriter, r *http.Request) {
	now := h.now()
	active := h.store.ActiveAlerts(now)

	views := make([]AlertView, 0, len(active))
	for _, alert := range active {
		views = append(views, AlertView{
			Alert:     alert,
			Freshness: freshness.Classify(alert.CreatedAt, now),
		})
	}

	writeSuccess(w, http.StatusOK, AlertListData{Alerts: views, Count: len(views)})
}

// Dismiss removes an alert by id. Unknown ids are a no-op, not an error.
func (h *AlertsHandler) Dismiss(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "alert id is required")
		return
	}

	h.store.Dismiss(id)
	writeSuccess(w, http.StatusOK, map[string]string{"id": id, "status": "dismissed"})
}
