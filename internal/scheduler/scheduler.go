package scheduler

import (
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"rentwatch/server/internal/ingest"
)

// Scheduler re-runs the capture pipeline at a fixed interval. A failed run
// is logged and swallowed so the next scheduled run still happens.
type Scheduler struct {
	manager  *ingest.Manager
	logger   *logrus.Logger
	interval time.Duration
	stopChan chan struct{}
	wg       sync.WaitGroup
	jobMutex sync.Mutex // Ensures sequential job execution
}

// NewScheduler creates a scheduler that triggers a capture run every
// interval, starting with one run at startup.
func NewScheduler(manager *ingest.Manager, interval time.Duration, logger *logrus.Logger) *Scheduler {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
		logger.SetLevel(logrus.InfoLevel)
	}
	return &Scheduler{
		manager:  manager,
		logger:   logger,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

// Start begins the scheduled runs.
func (s *Scheduler) Start() {
	s.wg.Add(1)
	go s.run()
}

func (s *Scheduler) run() {
	defer s.wg.Done()

	s.runJob()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.runJob()
		}
	}
}

func (s *Scheduler) runJob() {
	s.jobMutex.Lock()
	defer s.jobMutex.Unlock()

	s.logger.Info("Starting scheduled capture run")
	if _, err := s.manager.RunOnce(); err != nil {
		s.logger.WithError(err).Error("Capture run failed")
		return
	}
	s.logger.Info("Scheduled capture run completed")
}

// Stop gracefully stops the scheduler. A run already in flight finishes.
func (s *Scheduler) Stop() {
	close(s.stopChan)
	s.wg.Wait()
}
