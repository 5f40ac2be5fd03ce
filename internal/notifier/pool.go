// Package notifier drains newly created or refreshed alerts and publishes
// them to the outbound feed in batches. Delivery to operators (email, voice)
// happens downstream of the feed.
package notifier

import (
	"context"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"terramon/internal/logger"
	"terramon/internal/metrics"
	"terramon/internal/models"
)

// Publisher defines the interface for publishing alert envelopes
type Publisher interface {
	Publish(ctx context.Context, envelope *models.AlertEnvelope) error
	PublishBatch(ctx context.Context, envelopes []*models.AlertEnvelope) error
}

// Pool manages workers that consume alert envelopes and publish them
type Pool struct {
	publisher    Publisher
	envelopeChan chan *models.AlertEnvelope
	workers      int
	batchSize    int
	batchTimeout time.Duration

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc

	// Metrics
	published atomic.Uint64
	failed    atomic.Uint64
}

// Config holds dispatch pool configuration
type Config struct {
	Publisher    Publisher
	EnvelopeChan chan *models.AlertEnvelope
	Workers      int
	BatchSize    int
	BatchTimeout time.Duration
}

// NewPool creates a new dispatch pool
func NewPool(cfg Config) *Pool {
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.BatchTimeout <= 0 {
		cfg.BatchTimeout = 250 * time.Millisecond
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Pool{
		publisher:    cfg.Publisher,
		envelopeChan: cfg.EnvelopeChan,
		workers:      cfg.Workers,
		batchSize:    cfg.BatchSize,
		batchTimeout: cfg.BatchTimeout,
		ctx:          ctx,
		cancel:       cancel,
	}
}

// Start begins dispatching envelopes
func (p *Pool) Start() {
	log := logger.WithComponent("notifier")
	log.Info().
		Int("workers", p.workers).
		Int("batch_size", p.batchSize).
		Dur("batch_timeout", p.batchTimeout).
		Msg("starting dispatch pool")

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

// Stop gracefully stops all workers
func (p *Pool) Stop() {
	log := logger.WithComponent("notifier")
	log.Info().Msg("stopping dispatch pool")
	p.cancel()
	p.wg.Wait()
	log.Info().Msg("dispatch pool stopped")
}

// worker drains envelopes from the channel
func (p *Pool) worker(id int) {
	defer p.wg.Done()

	log := logger.WithComponent("notifier").With().Int("worker_id", id).Logger()

	// Panic recovery
	defer func() {
		if r := recover(); r != nil {
			stack := debug.Stack()
			log.Error().
				Interface("panic", r).
				Bytes("stack", stack).
				Msg("dispatch worker panic recovered")
			metrics.PanicsRecovered.WithLabelValues("notifier").Inc()
		}
	}()

	log.Info().Msg("dispatch worker started")
	defer log.Info().Msg("dispatch worker stopped")

	batch := make([]*models.AlertEnvelope, 0, p.batchSize)
	timer := time.NewTimer(p.batchTimeout)
	defer timer.Stop()

	for {
		select {
		case <-p.ctx.Done():
			// Flush remaining batch before exiting
			if len(batch) > 0 {
				p.publishBatch(batch)
			}
			return

		case envelope, ok := <-p.envelopeChan:
			if !ok {
				// Channel closed, flush and exit
				if len(batch) > 0 {
					p.publishBatch(batch)
				}
				return
			}

			batch = append(batch, envelope)

			if len(batch) >= p.batchSize {
				p.publishBatch(batch)
				batch = batch[:0]
				timer.Reset(p.batchTimeout)
			}

		case <-timer.C:
			if len(batch) > 0 {
				p.publishBatch(batch)
				batch = batch[:0]
			}
			timer.Reset(p.batchTimeout)
		}
	}
}

// publishBatch publishes a batch of envelopes
func (p *Pool) publishBatch(batch []*models.AlertEnvelope) {
	if len(batch) == 0 {
		return
	}

	log := logger.WithComponent("notifier")
	start := time.Now()

	ctx, cancel := context.WithTimeout(p.ctx, 10*time.Second)
	defer cancel()

	log.Debug().Int("batch_size", len(batch)).Msg("publishing alert batch")

	err := p.publisher.PublishBatch(ctx, batch)
	duration := time.Since(start)

	metrics.DispatchBatchDuration.Observe(duration.Seconds())

	if err != nil {
		log.Error().
			Err(err).
			Int("batch_size", len(batch)).
			Dur("duration", duration).
			Msg("failed to publish alert batch")

		p.failed.Add(uint64(len(batch)))
		metrics.DispatchFailedTotal.Add(float64(len(batch)))

		// Fallback: try publishing individually
		p.publishIndividually(batch)
	} else {
		log.Info().
			Int("batch_size", len(batch)).
			Dur("duration", duration).
			Msg("alert batch published")

		p.published.Add(uint64(len(batch)))
		metrics.DispatchPublishedTotal.Add(float64(len(batch)))
	}
}

// publishIndividually tries to publish each envelope separately (fallback)
func (p *Pool) publishIndividually(batch []*models.AlertEnvelope) {
	log := logger.WithComponent("notifier")
	log.Warn().Int("count", len(batch)).Msg("attempting individual publish for failed batch")

	for _, envelope := range batch {
		ctx, cancel := context.WithTimeout(p.ctx, 5*time.Second)
		err := p.publisher.Publish(ctx, envelope)
		cancel()

		if err != nil {
			log.Error().
				Err(err).
				Str("alert_id", envelope.Alert.ID).
				Str("zone", envelope.Alert.Zone).
				Msg("failed to publish alert individually")
		} else {
			log.Debug().
				Str("alert_id", envelope.Alert.ID).
				Msg("alert published individually")

			// Don't count twice - subtract from failed, add to published
			p.failed.Add(^uint64(0)) // Subtract 1
			p.published.Add(1)
		}
	}
}

// Stats returns dispatch pool statistics
func (p *Pool) Stats() Stats {
	return Stats{
		Published: p.published.Load(),
		Failed:    p.failed.Load(),
	}
}

// Stats holds dispatch pool metrics
type Stats struct {
	Published uint64
	Failed    uint64
}
