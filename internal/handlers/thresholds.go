package handlers

import (
	"encoding/json"
	"net/http"

	"terramon/internal/alertstore"
	"terramon/internal/models"
)

// ThresholdsHandler exposes the process-wide threshold configuration.
type ThresholdsHandler struct {
	store *alertstore.Store
}

// NewThresholdsHandler creates a new thresholds handler
func NewThresholdsHandler(store *alertstore.Store) *ThresholdsHandler {
	return &ThresholdsHandler{store: store}
}

// Get returns the current complete threshold set
func (h *ThresholdsHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, http.StatusOK, h.store.Thresholds())
}

// Update merges a partial threshold set. Only shape is validated here;
// numeric-domain sanity belongs to the settings store feeding this endpoint.
func (h *ThresholdsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch models.ThresholdPatch

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid threshold payload: "+err.Error())
		return
	}

	updated := h.store.UpdateThresholds(patch)
	writeSuccess(w, http.StatusOK, updated)
}
