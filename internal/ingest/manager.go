package ingest

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"rentwatch/server/internal/database"
	"rentwatch/server/internal/models"
	"rentwatch/server/internal/queue"
	"rentwatch/server/internal/scraper"
)

// Manager owns one capture run end to end: it establishes the shared
// capture timestamp, walks every configured neighborhood in order and hands
// each page batch to persistence. With a queue the batches are persisted
// asynchronously by the batch processor; without one (or when the queue is
// full) they go straight to the store.
type Manager struct {
	scraper *scraper.Scraper
	store   *database.Database
	queue   *queue.ListingQueue
	logger  *logrus.Logger
	mu      sync.Mutex
}

// NewManager creates an ingest manager. The queue may be nil, in which case
// every batch is persisted synchronously.
func NewManager(s *scraper.Scraper, store *database.Database, q *queue.ListingQueue, logger *logrus.Logger) *Manager {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}
	return &Manager{
		scraper: s,
		store:   store,
		queue:   q,
		logger:  logger,
	}
}

// RunOnce executes a full capture run and returns the number of listings
// handed to persistence. Runs are serialized: a manual trigger arriving
// while a scheduled run is in flight waits its turn. Batches are persisted
// as pages complete, so a failure mid-run never discards listings already
// fetched for earlier neighborhoods.
func (m *Manager) RunOnce() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	runID := uuid.New().String()
	capturedAt := time.Now().UTC()
	log := m.logger.WithFields(logrus.Fields{
		"run_id":      runID,
		"captured_at": capturedAt.Format(time.RFC3339),
	})
	log.Info("Starting capture run")

	total := 0
	var failedIDs []string
	err := m.scraper.Scrape(capturedAt, func(batch []models.Listing) error {
		failed := m.persistBatch(batch)
		failedIDs = append(failedIDs, failed...)
		total += len(batch) - len(failed)
		return nil
	})
	if err != nil {
		log.WithError(err).WithField("listings", total).Error("Capture run aborted")
		return total, err
	}
	if len(failedIDs) > 0 {
		log.WithFields(logrus.Fields{
			"listings":   total,
			"failed_ids": failedIDs,
		}).Error("Capture run completed with storage failures")
		return total, fmt.Errorf("persisted %d listings, %d failed", total, len(failedIDs))
	}

	log.WithField("listings", total).Info("Capture run completed")
	return total, nil
}

// persistBatch hands one page batch to the queue, falling back to the
// synchronous store path when the queue is full or absent. It returns the
// identifiers that could not be persisted.
func (m *Manager) persistBatch(batch []models.Listing) []string {
	if m.queue != nil {
		err := m.queue.Push(batch)
		if err == nil {
			return nil
		}
		m.logger.WithError(err).WithField("batch_size", len(batch)).Warn("Listing queue unavailable, persisting synchronously")
	}

	result, err := m.store.PersistMany(batch)
	if err != nil {
		m.logger.WithError(err).WithField("failed_ids", result.FailedIDs).Error("Failed to persist listings")
		return result.FailedIDs
	}
	return nil
}
