package models

import (
	"time"
)

// AlertEnvelope wraps an Alert with internal metadata for dispatch to the
// outbound feed consumed by notification services.
type AlertEnvelope struct {
	// The alert being dispatched
	Alert *Alert `json:"alert"`

	// Internal dispatch metadata
	EmittedAt    time.Time `json:"emitted_at"`
	MonitorNode  string    `json:"monitor_node"`
	Refreshed    bool      `json:"refreshed"`
	PartitionKey string    `json:"partition_key"`
}

// NewAlertEnvelope creates a new envelope wrapping an alert
func NewAlertEnvelope(alert *Alert, monitorNode string, refreshed bool) *AlertEnvelope {
	return &AlertEnvelope{
		Alert:        alert,
		EmittedAt:    time.Now().UTC(),
		MonitorNode:  monitorNode,
		Refreshed:    refreshed,
		PartitionKey: alert.Zone, // partition by zone for ordering
	}
}
