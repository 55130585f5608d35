package service

import (
	"context"
	"fmt"
	"time"

	"github.com/studyloop/studyloop/internal/models"
	"github.com/studyloop/studyloop/pkg/utils"
	"go.uber.org/zap"
)

var goalTypes = map[string]bool{
	models.GoalDailyMinutes:     true,
	models.GoalWeeklyQuizzes:    true,
	models.GoalCardsReviewed:    true,
	models.GoalPomodoroSessions: true,
}

func (s *Service) CreateGoal(ctx context.Context, userID int64, goalType string, targetValue int) (*models.Goal, error) {
	if !goalTypes[goalType] {
		return nil, fmt.Errorf("%w: unknown goal type %q", ErrInvalidInput, goalType)
	}
	if targetValue <= 0 {
		return nil, fmt.Errorf("%w: goal target must be positive, got %d", ErrInvalidInput, targetValue)
	}

	goal := &models.Goal{
		UserID:      userID,
		Type:        goalType,
		TargetValue: targetValue,
		PeriodStart: utils.Today(),
	}
	if err := s.repo.CreateGoal(ctx, goal); err != nil {
		return nil, err
	}
	return goal, nil
}

// ListGoalProgress recomputes every goal's progress from the activity log.
// Progress is never stored; the log is the source of truth.
func (s *Service) ListGoalProgress(ctx context.Context, userID int64) ([]*models.GoalProgress, error) {
	goals, err := s.repo.ListGoals(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := utils.NowUTC()
	progress := make([]*models.GoalProgress, 0, len(goals))
	for _, goal := range goals {
		current, err := s.goalCurrent(ctx, userID, goal.Type, now)
		if err != nil {
			return nil, err
		}
		progress = append(progress, &models.GoalProgress{
			Goal:    *goal,
			Current: current,
			Percent: goalPercent(current, goal.TargetValue),
		})
	}
	return progress, nil
}

func (s *Service) goalCurrent(ctx context.Context, userID int64, goalType string, now time.Time) (int, error) {
	today := utils.StartOfDay(now)
	tomorrow := today.AddDate(0, 0, 1)

	switch goalType {
	case models.GoalDailyMinutes:
		return s.repo.SumSessionMinutes(ctx, userID, today, tomorrow)
	case models.GoalWeeklyQuizzes:
		return s.repo.CountQuizAttempts(ctx, userID, now.AddDate(0, 0, -7), time.Time{})
	case models.GoalCardsReviewed:
		return s.repo.CountSessionsByType(ctx, userID, models.ActivityFlashcards, today, tomorrow)
	case models.GoalPomodoroSessions:
		return s.repo.CountCompletedPomodoros(ctx, userID, today, tomorrow)
	default:
		return 0, fmt.Errorf("%w: unknown goal type %q", ErrInvalidInput, goalType)
	}
}

// goalPercent is min(100, floor(current/target*100)); a non-positive target
// reads as zero progress rather than dividing by zero.
func goalPercent(current, target int) int {
	if target <= 0 {
		return 0
	}
	percent := current * 100 / target
	if percent > 100 {
		return 100
	}
	return percent
}

func (s *Service) DeleteGoal(ctx context.Context, userID, goalID int64) error {
	goals, err := s.repo.ListGoals(ctx, userID)
	if err != nil {
		return err
	}
	for _, goal := range goals {
		if goal.ID == goalID {
			return s.repo.DeleteGoal(ctx, goalID, userID)
		}
	}
	return fmt.Errorf("%w: goal %d", ErrNotFound, goalID)
}

// RollGoalPeriods advances expired goal periods; invoked by the daily job.
func (s *Service) RollGoalPeriods(ctx context.Context) error {
	moved, err := s.repo.AdvanceGoalPeriods(ctx, utils.Today())
	if err != nil {
		return err
	}
	if moved > 0 {
		zap.S().Info("goal periods advanced", zap.Int64("goals", moved))
	}
	return nil
}
