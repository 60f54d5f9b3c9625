// Package scheduler runs the periodic ingestion and prediction jobs.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/keiba-ai/internal/service"
)

// Scheduler manages the cron-driven ingestion and prediction jobs
type Scheduler struct {
	cron         *cron.Cron
	ingestionSvc *service.IngestionService
	predictor    *service.PredictionService
	logger       *logrus.Logger
	mu           sync.RWMutex
	isRunning    bool
	jobIDs       []cron.EntryID
}

// NewScheduler creates a new scheduler. All jobs run in JST, which is the
// provider's race calendar timezone.
func NewScheduler(ingestionSvc *service.IngestionService, predictor *service.PredictionService, logger *logrus.Logger) *Scheduler {
	location, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		location = time.UTC
	}

	return &Scheduler{
		cron:         cron.New(cron.WithLocation(location)),
		ingestionSvc: ingestionSvc,
		predictor:    predictor,
		logger:       logger,
		jobIDs:       make([]cron.EntryID, 0),
	}
}

// ScheduleIngestion schedules the race-card ingestion job
func (s *Scheduler) ScheduleIngestion(cronExpression string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}

	jobFunc := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
		defer cancel()

		s.logger.Info("Starting scheduled race card ingestion")
		stats, err := s.ingestionSvc.IngestUpcoming(ctx)
		if err != nil {
			s.logger.WithError(err).Error("Scheduled ingestion failed")
			return
		}
		s.logger.WithFields(logrus.Fields{
			"stored": stats.RacesStored,
			"errors": stats.Errors,
		}).Info("Scheduled ingestion complete")
	}

	entryID, err := s.cron.AddFunc(cronExpression, jobFunc)
	if err != nil {
		return fmt.Errorf("failed to add ingestion job: %w", err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.WithField("schedule", cronExpression).Info("Scheduled race card ingestion")

	return nil
}

// SchedulePredictions schedules a job that predicts every stored upcoming race
func (s *Scheduler) SchedulePredictions(cronExpression string, limit int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}
	if limit <= 0 {
		limit = 50
	}

	jobFunc := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Hour)
		defer cancel()

		s.logger.Info("Starting scheduled predictions")
		reports, err := s.predictor.PredictUpcoming(ctx, limit)
		if err != nil {
			s.logger.WithError(err).Error("Scheduled predictions failed")
			return
		}
		s.logger.WithField("races", len(reports)).Info("Scheduled predictions complete")
	}

	entryID, err := s.cron.AddFunc(cronExpression, jobFunc)
	if err != nil {
		return fmt.Errorf("failed to add prediction job: %w", err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.WithField("schedule", cronExpression).Info("Scheduled upcoming-race predictions")

	return nil
}

// Start starts the scheduler
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

// Stop gracefully stops the scheduler, waiting for running jobs
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}

	<-s.cron.Stop().Done()
	s.isRunning = false
	s.logger.Info("Scheduler stopped")

	return nil
}

// IsRunning returns whether the scheduler is currently running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRun returns the time of the next scheduled job run
func (s *Scheduler) NextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return time.Time{}
	}

	nextRun := time.Time{}
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if entry.Valid() && (nextRun.IsZero() || entry.Next.Before(nextRun)) {
			nextRun = entry.Next
		}
	}

	return nextRun
}
