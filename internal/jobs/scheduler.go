// Package jobs runs the periodic maintenance tasks.
package jobs

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/studyloop/studyloop/internal/models"
	"go.uber.org/zap"
)

const jobTimeout = time.Minute

// Scheduler owns the gocron instance. The only task today is the nightly
// goal-period rollover; streaks and achievements need no background work
// because they are recomputed lazily.
type Scheduler struct {
	scheduler *gocron.Scheduler
	svc       models.Service
}

func New(svc models.Service) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		svc:       svc,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.scheduler.Every(1).Day().At("00:00").Do(s.rollGoalPeriods); err != nil {
		return err
	}

	s.scheduler.StartAsync()
	zap.S().Info("job scheduler started")
	return nil
}

func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

func (s *Scheduler) rollGoalPeriods() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if err := s.svc.RollGoalPeriods(ctx); err != nil {
		zap.S().Error("roll goal periods", zap.Error(err))
	}
}
