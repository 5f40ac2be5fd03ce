package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "terramon_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "terramon_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint", "status"},
	)

	// Reading ingestion metrics
	ReadingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "terramon_readings_total",
			Help: "Total number of sensor readings received",
		},
		[]string{"zone", "status"}, // status: accepted, rejected
	)

	ReadingBatchSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "terramon_reading_batch_size",
			Help:    "Size of reading batches received per evaluation",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500},
		},
	)

	ReadingValidationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "terramon_reading_validation_errors_total",
			Help: "Total number of reading validation errors",
		},
		[]string{"error_type"},
	)

	// Evaluation and alert lifecycle metrics
	FindingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "terramon_findings_total",
			Help: "Total number of anomaly findings produced by evaluation",
		},
		[]string{"kind", "severity"},
	)

	AlertsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "terramon_alerts_active",
			Help: "Number of alerts currently in the active set",
		},
	)

	AlertsIngestedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "terramon_alerts_ingested_total",
			Help: "Alerts created or refreshed by finding ingestion",
		},
		[]string{"kind", "action"}, // action: created, refreshed
	)

	AlertsDismissedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "terramon_alerts_dismissed_total",
			Help: "Total number of alerts dismissed by operators",
		},
	)

	AlertsExpiredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "terramon_alerts_expired_total",
			Help: "Total number of alerts dropped by retention expiry",
		},
	)

	// Feed health metrics
	ZoneAvailability = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "terramon_zone_availability_pct",
			Help: "Last computed feed availability percentage per zone",
		},
		[]string{"zone"},
	)

	ZoneMissedReadings = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "terramon_zone_missed_readings",
			Help: "Last computed missed reading count per zone",
		},
		[]string{"zone"},
	)

	// Dispatch pool metrics
	DispatchQueueSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "terramon_dispatch_queue_size",
			Help: "Current size of the alert dispatch queue",
		},
	)

	DispatchQueueCapacity = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "terramon_dispatch_queue_capacity",
			Help: "Capacity of the alert dispatch queue",
		},
	)

	DispatchPublishedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "terramon_dispatch_published_total",
			Help: "Total number of alert envelopes dispatched",
		},
	)

	DispatchFailedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "terramon_dispatch_failed_total",
			Help: "Total number of alert envelopes that failed dispatch",
		},
	)

	DispatchDroppedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "terramon_dispatch_dropped_total",
			Help: "Alert envelopes dropped because the dispatch queue was full",
		},
	)

	DispatchBatchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "terramon_dispatch_batch_duration_seconds",
			Help:    "Time taken to publish a batch of alert envelopes",
			Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
	)

	// Kafka producer metrics
	KafkaPublishTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "terramon_kafka_publish_total",
			Help: "Total number of messages published to Kafka",
		},
		[]string{"status"}, // status: success, failed
	)

	KafkaPublishDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "terramon_kafka_publish_duration_seconds",
			Help:    "Time taken to publish to Kafka",
			Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
	)

	KafkaPublishRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "terramon_kafka_publish_retries_total",
			Help: "Total number of Kafka publish retries",
		},
	)

	KafkaBytesWritten = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "terramon_kafka_bytes_written_total",
			Help: "Total bytes written to Kafka",
		},
	)

	// Panic recovery
	PanicsRecovered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "terramon_panics_recovered_total",
			Help: "Total number of panics recovered",
		},
		[]string{"component"},
	)
)
