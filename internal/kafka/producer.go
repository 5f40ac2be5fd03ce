package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/compress"

	"terramon/internal/config"
	"terramon/internal/logger"
	"terramon/internal/metrics"
	"terramon/internal/models"
)

// Producer errors
var (
	ErrProducerClosed  = errors.New("producer is closed")
	ErrSerializeFailed = errors.New("failed to serialize alert envelope")
)

// Producer publishes alert envelopes to the outbound feed topic. It keeps a
// pool of writers and retries transient failures with exponential backoff.
type Producer struct {
	cfg     config.ProducerConfig
	topic   string
	writers []*kafka.Writer
	pool    chan *kafka.Writer
	closed  atomic.Bool

	// Metrics
	messagesSent   atomic.Uint64
	messagesFailed atomic.Uint64
	bytesWritten   atomic.Uint64
}

// NewProducer creates a producer for the given brokers and topic.
func NewProducer(brokers []string, topic string, cfg config.ProducerConfig) (*Producer, error) {
	if len(brokers) == 0 {
		return nil, errors.New("at least one broker is required")
	}

	if topic == "" {
		return nil, errors.New("topic is required")
	}

	if cfg.PoolSize <= 0 {
		cfg.PoolSize = 4
	}

	p := &Producer{
		cfg:     cfg,
		topic:   topic,
		writers: make([]*kafka.Writer, cfg.PoolSize),
		pool:    make(chan *kafka.Writer, cfg.PoolSize),
	}

	compression := getCompression(cfg.Compression)

	for i := 0; i < cfg.PoolSize; i++ {
		writer := &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{}, // Partition by zone key
			BatchSize:    cfg.BatchSize,
			BatchTimeout: cfg.BatchTimeout.Std(),
			WriteTimeout: cfg.WriteTimeout.Std(),
			RequiredAcks: kafka.RequiredAcks(cfg.RequiredAcks),
			Compression:  compression,
			MaxAttempts:  cfg.MaxRetries + 1,
			Async:        false, // Sync for reliability
		}
		p.writers[i] = writer
		p.pool <- writer
	}

	return p, nil
}

// getCompression returns the kafka compression codec
func getCompression(name string) compress.Compression {
	switch name {
	case "gzip":
		return compress.Gzip
	case "snappy":
		return compress.Snappy
	case "lz4":
		return compress.Lz4
	case "zstd":
		return compress.Zstd
	default:
		return compress.None
	}
}

// message converts an envelope into a kafka message keyed by zone.
func message(envelope *models.AlertEnvelope) (kafka.Message, error) {
	data, err := json.Marshal(envelope)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("%w: %v", ErrSerializeFailed, err)
	}

	return kafka.Message{
		Key:   []byte(envelope.PartitionKey),
		Value: data,
		Headers: []kafka.Header{
			{Key: "zone", Value: []byte(envelope.Alert.Zone)},
			{Key: "alert_id", Value: []byte(envelope.Alert.ID)},
			{Key: "kind", Value: []byte(envelope.Alert.Kind)},
			{Key: "monitor_node", Value: []byte(envelope.MonitorNode)},
		},
		Time: envelope.EmittedAt,
	}, nil
}

// Publish sends one alert envelope to the feed.
func (p *Producer) Publish(ctx context.Context, envelope *models.AlertEnvelope) error {
	if p.closed.Load() {
		return ErrProducerClosed
	}

	msg, err := message(envelope)
	if err != nil {
		p.messagesFailed.Add(1)
		return err
	}

	var writer *kafka.Writer
	select {
	case writer = <-p.pool:
		defer func() { p.pool <- writer }()
	case <-ctx.Done():
		p.messagesFailed.Add(1)
		return ctx.Err()
	}

	if err := p.publishWithRetry(ctx, writer, msg); err != nil {
		p.messagesFailed.Add(1)
		return err
	}

	p.messagesSent.Add(1)
	p.bytesWritten.Add(uint64(len(msg.Value)))
	return nil
}

// PublishBatch sends multiple alert envelopes in a single batch.
func (p *Producer) PublishBatch(ctx context.Context, envelopes []*models.AlertEnvelope) error {
	if p.closed.Load() {
		return ErrProducerClosed
	}

	if len(envelopes) == 0 {
		return nil
	}

	log := logger.WithComponent("kafka_producer")
	start := time.Now()

	messages := make([]kafka.Message, 0, len(envelopes))
	for _, envelope := range envelopes {
		msg, err := message(envelope)
		if err != nil {
			log.Error().
				Err(err).
				Str("alert_id", envelope.Alert.ID).
				Str("zone", envelope.Alert.Zone).
				Msg("failed to serialize alert envelope")
			p.messagesFailed.Add(1)
			metrics.KafkaPublishTotal.WithLabelValues("failed").Inc()
			continue
		}
		messages = append(messages, msg)
	}

	if len(messages) == 0 {
		return nil
	}

	var writer *kafka.Writer
	select {
	case writer = <-p.pool:
		defer func() { p.pool <- writer }()
	case <-ctx.Done():
		p.messagesFailed.Add(uint64(len(messages)))
		return ctx.Err()
	}

	err := p.publishBatchWithRetry(ctx, writer, messages)
	duration := time.Since(start)

	metrics.KafkaPublishDuration.Observe(duration.Seconds())

	if err != nil {
		log.Error().
			Err(err).
			Int("batch_size", len(messages)).
			Dur("duration", duration).
			Msg("failed to publish alert batch to kafka")
		p.messagesFailed.Add(uint64(len(messages)))
		metrics.KafkaPublishTotal.WithLabelValues("failed").Add(float64(len(messages)))
		return err
	}

	log.Debug().
		Int("batch_size", len(messages)).
		Dur("duration", duration).
		Msg("alert batch published to kafka")

	p.messagesSent.Add(uint64(len(messages)))
	metrics.KafkaPublishTotal.WithLabelValues("success").Add(float64(len(messages)))

	bytesTotal := uint64(0)
	for _, msg := range messages {
		bytesTotal += uint64(len(msg.Value))
	}
	p.bytesWritten.Add(bytesTotal)
	metrics.KafkaBytesWritten.Add(float64(bytesTotal))

	return nil
}

// publishWithRetry publishes a single message with exponential backoff retry
func (p *Producer) publishWithRetry(ctx context.Context, writer *kafka.Writer, msg kafka.Message) error {
	log := logger.WithComponent("kafka_producer")
	var lastErr error
	backoff := p.cfg.RetryBackoff.Std()

	for attempt := 0; attempt <= p.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			log.Warn().
				Int("attempt", attempt).
				Dur("backoff", backoff).
				Msg("retrying kafka publish")

			metrics.KafkaPublishRetries.Inc()

			select {
			case <-time.After(backoff):
				backoff *= 2
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		err := writer.WriteMessages(ctx, msg)
		if err == nil {
			return nil
		}

		lastErr = err
		log.Warn().
			Err(err).
			Int("attempt", attempt+1).
			Msg("kafka publish attempt failed")

		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
	}

	log.Error().
		Err(lastErr).
		Int("max_retries", p.cfg.MaxRetries+1).
		Msg("kafka publish failed after all retries")

	return fmt.Errorf("failed after %d attempts: %w", p.cfg.MaxRetries+1, lastErr)
}

// publishBatchWithRetry publishes a batch of messages with exponential backoff retry
func (p *Producer) publishBatchWithRetry(ctx context.Context, writer *kafka.Writer, messages []kafka.Message) error {
	log := logger.WithComponent("kafka_producer")
	var lastErr error
	backoff := p.cfg.RetryBackoff.Std()

	for attempt := 0; attempt <= p.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			log.Warn().
				Int("attempt", attempt).
				Int("batch_size", len(messages)).
				Dur("backoff", backoff).
				Msg("retrying kafka batch publish")

			metrics.KafkaPublishRetries.Inc()

			select {
			case <-time.After(backoff):
				backoff *= 2
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		err := writer.WriteMessages(ctx, messages...)
		if err == nil {
			return nil
		}

		lastErr = err
		log.Warn().
			Err(err).
			Int("attempt", attempt+1).
			Int("batch_size", len(messages)).
			Msg("kafka batch publish attempt failed")

		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
	}

	log.Error().
		Err(lastErr).
		Int("max_retries", p.cfg.MaxRetries+1).
		Int("batch_size", len(messages)).
		Msg("kafka batch publish failed after all retries")

	return fmt.Errorf("batch failed after %d attempts: %w", p.cfg.MaxRetries+1, lastErr)
}

// Close closes all writers in the pool
func (p *Producer) Close() error {
	if p.closed.Swap(true) {
		return nil // Already closed
	}

	var errs []error
	for _, writer := range p.writers {
		if err := writer.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors closing writers: %v", errs)
	}
	return nil
}

// Stats returns producer statistics
func (p *Producer) Stats() ProducerStats {
	return ProducerStats{
		MessagesSent:   p.messagesSent.Load(),
		MessagesFailed: p.messagesFailed.Load(),
		BytesWritten:   p.bytesWritten.Load(),
	}
}

// ProducerStats holds producer metrics
type ProducerStats struct {
	MessagesSent   uint64
	MessagesFailed uint64
	BytesWritten   uint64
}

// HealthCheck verifies the producer can reach Kafka
func (p *Producer) HealthCheck(ctx context.Context) error {
	if p.closed.Load() {
		return ErrProducerClosed
	}

	var writer *kafka.Writer
	select {
	case writer = <-p.pool:
		defer func() { p.pool <- writer }()
	case <-ctx.Done():
		return ctx.Err()
	}

	_ = writer.Stats()
	return nil
}
