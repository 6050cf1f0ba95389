package queue

import (
	"errors"
	"os"
	"sync"

	"github.com/sirupsen/logrus"

	"rentwatch/server/internal/models"
)

var (
	ErrQueueFull   = errors.New("queue is full")
	ErrQueueClosed = errors.New("queue is closed")
)

// ListingQueue buffers page batches between the scraper and the batch
// processor so persistence never stalls a pagination walk.
type ListingQueue struct {
	items    chan []models.Listing
	done     chan struct{}
	closed   bool
	mu       sync.RWMutex
	logger   *logrus.Logger
	handlers []func([]models.Listing) error
}

// NewListingQueue creates a queue buffering up to bufferSize page batches.
func NewListingQueue(bufferSize int, logger *logrus.Logger) *ListingQueue {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}
	return &ListingQueue{
		items:  make(chan []models.Listing, bufferSize),
		done:   make(chan struct{}),
		logger: logger,
	}
}

// Push adds a batch without blocking. A full buffer returns ErrQueueFull so
// the caller can fall back to persisting synchronously instead of dropping
// the batch.
func (q *ListingQueue) Push(batch []models.Listing) error {
	q.mu.RLock()
	if q.closed {
		q.mu.RUnlock()
		return ErrQueueClosed
	}
	q.mu.RUnlock()

	select {
	case q.items <- batch:
		q.logger.WithField("batch_size", len(batch)).Debug("Pushed batch to queue")
		return nil
	default:
		return ErrQueueFull
	}
}

// Subscribe registers a handler called for each batch.
func (q *ListingQueue) Subscribe(handler func([]models.Listing) error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.handlers = append(q.handlers, handler)
}

// Start begins dispatching queued batches to the subscribed handlers.
func (q *ListingQueue) Start() {
	go q.process()
}

func (q *ListingQueue) process() {
	for {
		select {
		case <-q.done:
			return
		case batch := <-q.items:
			q.dispatch(batch)
		}
	}
}

func (q *ListingQueue) dispatch(batch []models.Listing) {
	q.mu.RLock()
	handlers := q.handlers
	q.mu.RUnlock()

	for _, handler := range handlers {
		if err := handler(batch); err != nil {
			q.logger.WithError(err).Error("Handler failed to process batch")
		}
	}
}

// Close stops dispatching and rejects further pushes.
func (q *ListingQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	q.closed = true
	close(q.done)
	return nil
}

// Len returns the number of batches waiting in the queue.
func (q *ListingQueue) Len() int {
	return len(q.items)
}

func (q *ListingQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
