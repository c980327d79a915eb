// Package scheduler runs periodic recalibration so thresholds track the
// dataset as new observations arrive.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/skycast/internal/service"
)

// recalibrateTimeout bounds a single scheduled run.
const recalibrateTimeout = 1 * time.Hour

// Scheduler manages scheduled recalibration jobs
type Scheduler struct {
	cron      *cron.Cron
	service   *service.CalibrationService
	logger    *logrus.Logger
	mu        sync.RWMutex
	isRunning bool
	jobIDs    []cron.EntryID

	// afterRun, when set, is invoked after every successful recalibration.
	// The API server uses it to flush the prediction cache.
	afterRun func(*service.ModelSet)
}

// NewScheduler creates a new scheduler
func NewScheduler(svc *service.CalibrationService, log *logrus.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithLocation(time.UTC)),
		service: svc,
		logger:  log,
		jobIDs:  make([]cron.EntryID, 0),
	}
}

// OnRecalibrated registers a callback invoked after each successful run.
func (s *Scheduler) OnRecalibrated(fn func(*service.ModelSet)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.afterRun = fn
}

// ScheduleRecalibration schedules periodic model retraining and threshold
// recalibration.
func (s *Scheduler) ScheduleRecalibration(cronExpression string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}

	entryID, err := s.cron.AddFunc(cronExpression, s.runRecalibration)
	if err != nil {
		return fmt.Errorf("failed to add recalibration job: %w", err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.WithField("cron", cronExpression).Info("Scheduled recalibration job")

	return nil
}

func (s *Scheduler) runRecalibration() {
	ctx, cancel := context.WithTimeout(context.Background(), recalibrateTimeout)
	defer cancel()

	s.logger.Info("Starting scheduled recalibration")

	set, err := s.service.Train(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Scheduled recalibration failed")
		return
	}

	s.logger.WithFields(logrus.Fields{
		"run_id": set.RunID,
		"models": len(set.Models),
	}).Info("Scheduled recalibration completed")

	s.mu.RLock()
	afterRun := s.afterRun
	s.mu.RUnlock()
	if afterRun != nil {
		afterRun(set)
	}
}

// Start begins executing scheduled jobs
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}
	if len(s.jobIDs) == 0 {
		return fmt.Errorf("no jobs scheduled")
	}

	s.cron.Start()
	s.isRunning = true
	s.logger.WithField("jobs", len(s.jobIDs)).Info("Scheduler started")

	return nil
}

// Stop halts the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()
	s.isRunning = false
	s.logger.Info("Scheduler stopped")
}

// IsRunning reports whether the scheduler has been started.
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}
