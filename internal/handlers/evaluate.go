package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"time"

	"terramon/internal/alertstore"
	"terramon/internal/availability"
	"terramon/internal/evaluator"
	"terramon/internal/freshness"
	"terramon/internal/metrics"
	"terramon/internal/models"
	"terramon/internal/recommend"
	"terramon/internal/rules"
	"terramon/internal/summary"
)

// EvaluateHandler runs the full evaluation pipeline for a zone's reading
// batch: validate, evaluate thresholds, merge alerts, score feed health, and
// produce recommendations and a summary.
type EvaluateHandler struct {
	store *alertstore.Store

	// Channel to push new alert envelopes to the dispatch pool
	dispatchChan chan<- *models.AlertEnvelope

	// Node identifier for envelope metadata
	nodeID string

	// Expected cadence of the sensor feed
	expectedInterval time.Duration

	// Max body size (default 10MB)
	maxBodySize int64

	// Clock, overridable in tests
	now func() time.Time
}

// EvaluateConfig holds configuration for the evaluate handler
type EvaluateConfig struct {
	Store            *alertstore.Store
	DispatchChan     chan<- *models.AlertEnvelope
	NodeID           string
	ExpectedInterval time.Duration
	MaxBodySize      int64
}

// NewEvaluateHandler creates a new evaluate handler
func NewEvaluateHandler(cfg EvaluateConfig) *EvaluateHandler {
	nodeID := cfg.NodeID
	if nodeID == "" {
		nodeID, _ = os.Hostname()
		if nodeID == "" {
			nodeID = "unknown"
		}
	}

	maxBodySize := cfg.MaxBodySize
	if maxBodySize == 0 {
		maxBodySize = 10 * 1024 * 1024 // 10MB default
	}

	interval := cfg.ExpectedInterval
	if interval <= 0 {
		interval = 60 * time.Minute
	}

	return &EvaluateHandler{
		store:            cfg.Store,
		dispatchChan:     cfg.DispatchChan,
		nodeID:           nodeID,
		expectedInterval: interval,
		maxBodySize:      maxBodySize,
		now:              time.Now,
	}
}

// EvaluateRequest represents the incoming JSON payload (single or batch)
type EvaluateRequest struct {
	// Single reading (if Readings is empty)
	Reading *ReadingInput `json:"reading,omitempty"`

	// Batch of readings
	Readings []ReadingInput `json:"readings,omitempty"`
}

// ReadingInput is the input format for readings (with string timestamp)
type ReadingInput struct {
	Zone       string  `json:"zone,omitempty"`
	Timestamp  string  `json:"timestamp"`
	Moisture   float64 `json:"moisture"`
	Erosion    float64 `json:"erosion"`
	Vegetation float64 `json:"vegetation"`
}

// ReadingError describes a validation error for a specific reading
type ReadingError struct {
	Index int    `json:"index"`
	Error string `json:"error"`
}

// AlertChange reports an alert created or refreshed by this evaluation
type AlertChange struct {
	Alert     models.Alert `json:"alert"`
	Refreshed bool         `json:"refreshed"`
}

// EvaluationData is the response payload for a successful evaluation
type EvaluationData struct {
	Zone            string                   `json:"zone"`
	Accepted        int                      `json:"accepted"`
	Rejected        int                      `json:"rejected"`
	Errors          []ReadingError           `json:"errors,omitempty"`
	Findings        []models.Finding         `json:"findings"`
	Alerts          []AlertChange            `json:"alerts"`
	Service         models.ServiceMetrics    `json:"service"`
	Freshness       freshness.Classification `json:"freshness"`
	AnomalyRatio    float64                  `json:"anomaly_ratio"`
	Recommendations recommend.Result         `json:"recommendations"`
	Summary         *summary.Summary         `json:"summary,omitempty"`
	DispatchDropped int                      `json:"dispatch_dropped,omitempty"`
}

// ServeHTTP handles the evaluate HTTP request
func (h *EvaluateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	zone := r.URL.Query().Get("zone")
	if zone == "" {
		writeError(w, http.StatusBadRequest, "zone query parameter is required")
		return
	}

	contentType := r.Header.Get("Content-Type")
	if contentType != "application/json" && contentType != "" {
		writeError(w, http.StatusUnsupportedMediaType, "content-type must be application/json")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
		return
	}

	inputs, err := h.parseBody(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if len(inputs) == 0 {
		writeError(w, http.StatusBadRequest, "no readings provided")
		return
	}

	metrics.ReadingBatchSize.Observe(float64(len(inputs)))

	readings, readingErrors := h.convertInputs(zone, inputs)

	data, err := h.evaluate(zone, readings)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	data.Rejected = len(readingErrors)
	data.Errors = readingErrors

	if data.Rejected > 0 && data.Accepted == 0 {
		writeError(w, http.StatusBadRequest, "all readings rejected")
		return
	}

	writeSuccess(w, http.StatusOK, data)
}

// parseBody parses the JSON body into a slice of ReadingInput
func (h *EvaluateHandler) parseBody(body []byte) ([]ReadingInput, error) {
	// Try parsing as EvaluateRequest first
	var req EvaluateRequest
	if err := json.Unmarshal(body, &req); err == nil {
		if len(req.Readings) > 0 {
			return req.Readings, nil
		}
		if req.Reading != nil {
			return []ReadingInput{*req.Reading}, nil
		}
	}

	// Try parsing as array of readings
	var readings []ReadingInput
	if err := json.Unmarshal(body, &readings); err == nil && len(readings) > 0 {
		return readings, nil
	}

	// Try parsing as single reading
	var single ReadingInput
	if err := json.Unmarshal(body, &single); err == nil && single.Timestamp != "" {
		return []ReadingInput{single}, nil
	}

	return nil, fmt.Errorf("invalid JSON format: expected reading object or array of readings")
}

// convertInputs validates and normalizes the inputs, collecting per-item errors
func (h *EvaluateHandler) convertInputs(zone string, inputs []ReadingInput) ([]models.Reading, []ReadingError) {
	readings := make([]models.Reading, 0, len(inputs))
	var errs []ReadingError

	for i, input := range inputs {
		reading, err := h.convertInput(zone, input)
		if err != nil {
			errs = append(errs, ReadingError{Index: i, Error: err.Error()})
			metrics.ReadingsTotal.WithLabelValues(zone, "rejected").Inc()
			metrics.ReadingValidationErrors.WithLabelValues(err.Error()).Inc()
			continue
		}

		reading.Normalize()

		if err := reading.Validate(); err != nil {
			errs = append(errs, ReadingError{Index: i, Error: err.Error()})
			metrics.ReadingsTotal.WithLabelValues(zone, "rejected").Inc()
			metrics.ReadingValidationErrors.WithLabelValues(err.Error()).Inc()
			continue
		}

		metrics.ReadingsTotal.WithLabelValues(zone, "accepted").Inc()
		readings = append(readings, *reading)
	}

	// Newest first; the head of the batch is the reading under evaluation
	sort.Slice(readings, func(i, j int) bool {
		return readings[i].Timestamp.After(readings[j].Timestamp)
	})

	return readings, errs
}

// convertInput converts ReadingInput to a Reading
func (h *EvaluateHandler) convertInput(zone string, input ReadingInput) (*models.Reading, error) {
	ts, err := models.ParseTimestamp(input.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("timestamp: %w", err)
	}

	if input.Zone != "" && input.Zone != zone {
		return nil, fmt.Errorf("reading zone %q does not match request zone %q", input.Zone, zone)
	}

	return &models.Reading{
		Zone:       zone,
		Timestamp:  ts,
		Moisture:   input.Moisture,
		Erosion:    input.Erosion,
		Vegetation: input.Vegetation,
	}, nil
}

// evaluate runs the pipeline over the accepted readings
func (h *EvaluateHandler) evaluate(zone string, readings []models.Reading) (*EvaluationData, error) {
	now := h.now()
	thresholds := h.store.Thresholds()

	var latest *models.Reading
	if len(readings) > 0 {
		latest = &readings[0]
	}

	findings := evaluator.Evaluate(latest, thresholds)
	for _, f := range findings {
		metrics.FindingsTotal.WithLabelValues(string(f.Kind), string(f.Severity)).Inc()
	}

	changes, err := h.store.Ingest(zone, findings)
	if err != nil {
		return nil, fmt.Errorf("ingest findings: %w", err)
	}

	dropped := 0
	alerts := make([]AlertChange, 0, len(changes))
	for _, change := range changes {
		alerts = append(alerts, AlertChange{Alert: change.Alert, Refreshed: change.Refreshed})

		env := models.NewAlertEnvelope(&change.Alert, h.nodeID, change.Refreshed)
		select {
		case h.dispatchChan <- env:
		default:
			// Queue full: the alert stays active in the store, only this
			// dispatch is dropped
			dropped++
			metrics.DispatchDroppedTotal.Inc()
		}
	}

	service := availability.Compute(readings, zone, h.expectedInterval, now)
	metrics.ZoneAvailability.WithLabelValues(zone).Set(service.AvailabilityPct)
	metrics.ZoneMissedReadings.WithLabelValues(zone).Set(float64(service.MissedReadings))

	var lastTS time.Time
	if latest != nil {
		lastTS = latest.Timestamp
	}
	fresh := freshness.Classify(lastTS, now)

	ratio := rules.AnomalyRatio(readings, thresholds)

	return &EvaluationData{
		Zone:            zone,
		Accepted:        len(readings),
		Findings:        findings,
		Alerts:          alerts,
		Service:         service,
		Freshness:       fresh,
		AnomalyRatio:    ratio,
		Recommendations: recommend.Prioritize(latest, ratio),
		Summary:         summary.Generate(readings, zone, thresholds),
		DispatchDropped: dropped,
	}, nil
}
