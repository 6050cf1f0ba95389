package processor

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"rentwatch/server/config"
	"rentwatch/server/internal/database"
	"rentwatch/server/internal/models"
	"rentwatch/server/internal/queue"
)

// BatchProcessor drains the listing queue and writes each batch to the
// store inside one transaction, retrying transient storage failures with a
// fixed delay.
type BatchProcessor struct {
	db     *gorm.DB
	logger *logrus.Logger
	config *config.Config
	queue  *queue.ListingQueue
	ctx    context.Context
	cancel context.CancelFunc
}

func NewBatchProcessor(db *gorm.DB, queue *queue.ListingQueue, config *config.Config, logger *logrus.Logger) *BatchProcessor {
	ctx, cancel := context.WithCancel(context.Background())
	return &BatchProcessor{
		db:     db,
		queue:  queue,
		config: config,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start subscribes to the queue and begins processing.
func (p *BatchProcessor) Start() {
	p.queue.Subscribe(func(batch []models.Listing) error {
		return p.processBatch(batch)
	})
	p.queue.Start()
}

// Stop lets queued batches drain, then shuts the queue down.
func (p *BatchProcessor) Stop() {
	for p.queue.Len() > 0 {
		select {
		case <-p.ctx.Done():
			return
		case <-time.After(50 * time.Millisecond):
		}
	}
	p.queue.Close()
	p.cancel()
}

func (p *BatchProcessor) processBatch(batch []models.Listing) error {
	var err error
	for attempt := 0; attempt <= p.config.BatchProcessing.MaxRetries; attempt++ {
		if attempt > 0 {
			p.logger.Infof("Retrying batch persist, attempt %d of %d", attempt, p.config.BatchProcessing.MaxRetries)
			select {
			case <-p.ctx.Done():
				return p.ctx.Err()
			case <-time.After(time.Duration(p.config.BatchProcessing.RetryDelay) * time.Second):
			}
		}

		err = p.db.Transaction(func(tx *gorm.DB) error {
			if err := database.UpsertListings(tx, batch); err != nil {
				return fmt.Errorf("failed to upsert listings batch: %w", err)
			}
			return nil
		})

		if err == nil {
			p.logger.WithField("batch_size", len(batch)).Debug("Persisted listing batch")
			return nil
		}

		p.logger.Errorf("Batch persist failed: %v", err)
	}

	return fmt.Errorf("failed to persist batch after %d attempts: %w", p.config.BatchProcessing.MaxRetries, err)
}
