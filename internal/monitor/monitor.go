// Package monitor wires the alert store, dispatch pool, Kafka producer, and
// HTTP surface into one runnable service.
package monitor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"terramon/internal/alertstore"
	"terramon/internal/config"
	"terramon/internal/handlers"
	"terramon/internal/kafka"
	"terramon/internal/logger"
	"terramon/internal/metrics"
	"terramon/internal/middleware"
	"terramon/internal/models"
	"terramon/internal/notifier"
)

// Monitor is the high-level coordinator for evaluation, alerting, and dispatch.
type Monitor struct {
	cfg          *config.Config
	store        *alertstore.Store
	producer     *kafka.Producer
	dispatchPool *notifier.Pool
	httpServer   *http.Server
	dispatchChan chan *models.AlertEnvelope
	wg           sync.WaitGroup
}

// New constructs a Monitor with given config.
func New(cfg *config.Config) *Monitor {
	initial := models.ThresholdSet{
		ErosionCritical: cfg.Thresholds.ErosionCritical,
		VegetationLow:   cfg.Thresholds.VegetationLow,
		MoistureLow:     cfg.Thresholds.MoistureLow,
	}

	return &Monitor{
		cfg:          cfg,
		store:        alertstore.New(initial),
		dispatchChan: make(chan *models.AlertEnvelope, cfg.Dispatch.QueueSize),
	}
}

// Store exposes the alert store for embedding callers.
func (m *Monitor) Store() *alertstore.Store {
	return m.store
}

// Run starts background goroutines and blocks until context cancelled.
func (m *Monitor) Run(ctx context.Context) error {
	log := logger.WithComponent("monitor")
	log.Info().Msg("monitor starting")

	if err := m.initProducer(); err != nil {
		log.Error().Err(err).Msg("failed to initialize producer")
		return fmt.Errorf("failed to initialize producer: %w", err)
	}

	m.initDispatchPool()
	m.dispatchPool.Start()

	m.initHTTPServer()

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		log.Info().Str("addr", m.cfg.HTTPAddr).Msg("starting HTTP server")
		if err := m.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("HTTP server error")
		}
	}()

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.reportStats(ctx)
	}()

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")

	return m.shutdown()
}

// initProducer initializes the Kafka producer
func (m *Monitor) initProducer() error {
	log := logger.WithComponent("monitor")
	producer, err := kafka.NewProducer(
		m.cfg.Kafka.Brokers,
		m.cfg.Kafka.Topic,
		m.cfg.Kafka.Producer,
	)
	if err != nil {
		return err
	}

	m.producer = producer
	log.Info().
		Strs("brokers", m.cfg.Kafka.Brokers).
		Str("topic", m.cfg.Kafka.Topic).
		Msg("kafka producer initialized")
	return nil
}

// initDispatchPool initializes the alert dispatch pool
func (m *Monitor) initDispatchPool() {
	log := logger.WithComponent("monitor")
	m.dispatchPool = notifier.NewPool(notifier.Config{
		Publisher:    m.producer,
		EnvelopeChan: m.dispatchChan,
		Workers:      m.cfg.Dispatch.Workers,
		BatchSize:    m.cfg.Dispatch.BatchSize,
		BatchTimeout: m.cfg.Dispatch.BatchTimeout.Std(),
	})
	log.Info().Int("workers", m.cfg.Dispatch.Workers).Msg("dispatch pool initialized")
}

// initHTTPServer initializes the HTTP server with handlers
func (m *Monitor) initHTTPServer() {
	mux := http.NewServeMux()

	evaluateHandler := handlers.NewEvaluateHandler(handlers.EvaluateConfig{
		Store:            m.store,
		DispatchChan:     m.dispatchChan,
		ExpectedInterval: m.cfg.ExpectedInterval.Std(),
	})
	alertsHandler := handlers.NewAlertsHandler(m.store)
	thresholdsHandler := handlers.NewThresholdsHandler(m.store)

	wrap := func(h http.Handler) http.Handler {
		return middleware.Chain(h, middleware.Recovery, middleware.Logging)
	}

	mux.Handle("POST /evaluate", wrap(evaluateHandler))
	mux.Handle("GET /alerts", wrap(http.HandlerFunc(alertsHandler.List)))
	mux.Handle("DELETE /alerts/{id}", wrap(http.HandlerFunc(alertsHandler.Dismiss)))
	mux.Handle("GET /thresholds", wrap(http.HandlerFunc(thresholdsHandler.Get)))
	mux.Handle("PUT /thresholds", wrap(http.HandlerFunc(thresholdsHandler.Update)))

	mux.HandleFunc("GET /health", m.healthHandler)
	mux.HandleFunc("GET /stats", m.statsHandler)
	mux.Handle("GET /metrics", promhttp.Handler())

	metrics.DispatchQueueCapacity.Set(float64(cap(m.dispatchChan)))

	m.httpServer = &http.Server{
		Addr:         m.cfg.HTTPAddr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// shutdown performs graceful shutdown
func (m *Monitor) shutdown() error {
	log := logger.WithComponent("monitor")
	log.Info().Msg("initiating graceful shutdown")

	// 1. Stop accepting new HTTP requests
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	log.Info().Msg("stopping HTTP server")
	if err := m.httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Close dispatch channel to signal no more alerts
	log.Info().Msg("closing dispatch channel")
	close(m.dispatchChan)

	// 3. Wait for dispatch workers to flush (with timeout)
	done := make(chan struct{})
	go func() {
		m.dispatchPool.Stop()
		close(done)
	}()

	select {
	case <-done:
		log.Info().Msg("dispatch pool stopped gracefully")
	case <-time.After(15 * time.Second):
		log.Warn().Msg("dispatch shutdown timeout - forcing exit")
	}

	// 4. Close producer
	log.Info().Msg("closing kafka producer")
	if err := m.producer.Close(); err != nil {
		log.Error().Err(err).Msg("producer close error")
	}

	// 5. Wait for all goroutines
	m.wg.Wait()

	log.Info().Msg("monitor stopped gracefully")
	return nil
}

// reportStats periodically logs statistics
func (m *Monitor) reportStats(ctx context.Context) {
	log := logger.WithComponent("monitor")
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			dispatchStats := m.dispatchPool.Stats()
			producerStats := m.producer.Stats()
			active := len(m.store.ActiveAlerts(time.Now()))

			metrics.DispatchQueueSize.Set(float64(len(m.dispatchChan)))

			log.Info().
				Int("active_alerts", active).
				Uint64("dispatch_published", dispatchStats.Published).
				Uint64("dispatch_failed", dispatchStats.Failed).
				Uint64("producer_sent", producerStats.MessagesSent).
				Uint64("producer_failed", producerStats.MessagesFailed).
				Uint64("producer_bytes", producerStats.BytesWritten).
				Int("queue_size", len(m.dispatchChan)).
				Msg("stats")
		}
	}
}

// healthHandler handles health check requests
func (m *Monitor) healthHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	// Check Kafka connectivity
	if err := m.producer.HealthCheck(ctx); err != nil {
		http.Error(w, fmt.Sprintf("unhealthy: %v", err), http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"status":"healthy","timestamp":"%s"}`, time.Now().Format(time.RFC3339))
}

// statsHandler returns current statistics
func (m *Monitor) statsHandler(w http.ResponseWriter, r *http.Request) {
	dispatchStats := m.dispatchPool.Stats()
	producerStats := m.producer.Stats()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"alerts": map[string]interface{}{
			"active": len(m.store.ActiveAlerts(time.Now())),
		},
		"dispatch": map[string]uint64{
			"published": dispatchStats.Published,
			"failed":    dispatchStats.Failed,
		},
		"producer": map[string]uint64{
			"messages_sent":   producerStats.MessagesSent,
			"messages_failed": producerStats.MessagesFailed,
			"bytes_written":   producerStats.BytesWritten,
		},
		"queue": map[string]int{
			"buffered": len(m.dispatchChan),
			"capacity": cap(m.dispatchChan),
		},
	})
}
