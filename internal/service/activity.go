package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/studyloop/studyloop/internal/models"
	"github.com/studyloop/studyloop/pkg/utils"
	"go.uber.org/zap"
)

var activityTypes = map[string]bool{
	models.ActivityFlashcards: true,
	models.ActivityPomodoro:   true,
	models.ActivityReading:    true,
	models.ActivityOther:      true,
}

var pomodoroTypes = map[string]bool{
	models.PomodoroWork:       true,
	models.PomodoroShortBreak: true,
	models.PomodoroLongBreak:  true,
}

// RecordStudySession appends one activity row and applies the engagement
// side effects (streak, achievements) in the same transaction.
func (s *Service) RecordStudySession(ctx context.Context, userID int64, classID *int64, activityType string, duration int) error {
	if !activityTypes[activityType] {
		return fmt.Errorf("%w: unknown activity type %q", ErrInvalidInput, activityType)
	}
	if duration < 0 {
		return fmt.Errorf("%w: duration must not be negative, got %d", ErrInvalidInput, duration)
	}

	return s.repo.RunInTx(ctx, func(tx models.Repository) error {
		now := utils.NowUTC()
		session := &models.StudySession{
			UserID:       userID,
			ClassID:      classID,
			ActivityType: activityType,
			Duration:     duration,
			CreatedAt:    now,
		}
		if err := tx.CreateStudySession(ctx, session); err != nil {
			return err
		}
		return s.afterActivity(ctx, tx, userID, now)
	})
}

func (s *Service) StartPomodoro(ctx context.Context, userID int64, classID *int64, sessionType string, duration int) (*models.PomodoroSession, error) {
	if !pomodoroTypes[sessionType] {
		return nil, fmt.Errorf("%w: unknown pomodoro type %q", ErrInvalidInput, sessionType)
	}
	if duration <= 0 || duration > 120 {
		return nil, fmt.Errorf("%w: pomodoro duration %d outside (0, 120] minutes", ErrInvalidInput, duration)
	}

	session := &models.PomodoroSession{
		UserID:      userID,
		ClassID:     classID,
		SessionType: sessionType,
		Duration:    duration,
		StartedAt:   utils.NowUTC(),
	}
	if err := s.repo.CreatePomodoro(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// CompletePomodoro marks the session done. Work sessions also land in the
// activity log and feed the streak; breaks do not. Completing an already
// completed session is a no-op.
func (s *Service) CompletePomodoro(ctx context.Context, userID, sessionID int64) error {
	return s.repo.RunInTx(ctx, func(tx models.Repository) error {
		session, err := tx.GetPomodoro(ctx, sessionID, userID)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: pomodoro session %d", ErrNotFound, sessionID)
		}
		if err != nil {
			return err
		}
		if session.Completed {
			return nil
		}

		now := utils.NowUTC()
		if err := tx.MarkPomodoroCompleted(ctx, sessionID, now); err != nil {
			return err
		}

		if session.SessionType != models.PomodoroWork {
			return nil
		}

		logged := &models.StudySession{
			UserID:       userID,
			ClassID:      session.ClassID,
			ActivityType: models.ActivityPomodoro,
			Duration:     session.Duration,
			CreatedAt:    now,
		}
		if err := tx.CreateStudySession(ctx, logged); err != nil {
			return err
		}
		return s.afterActivity(ctx, tx, userID, now)
	})
}

func (s *Service) CancelPomodoro(ctx context.Context, userID, sessionID int64) error {
	deleted, err := s.repo.DeletePomodoroIfIncomplete(ctx, sessionID, userID)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("%w: incomplete pomodoro session %d", ErrNotFound, sessionID)
	}
	return nil
}

func (s *Service) PomodoroStats(ctx context.Context, userID int64) (*models.PomodoroStats, error) {
	now := utils.NowUTC()
	today := utils.StartOfDay(now)
	tomorrow := today.AddDate(0, 0, 1)
	weekAgo := today.AddDate(0, 0, -7)
	var unbounded time.Time

	stats := &models.PomodoroStats{}
	ranges := []struct {
		totals   *models.PomodoroTotals
		from, to time.Time
	}{
		{&stats.Today, today, tomorrow},
		{&stats.Week, weekAgo, tomorrow},
		{&stats.AllTime, unbounded, unbounded},
	}
	for _, r := range ranges {
		sessions, err := s.repo.CountCompletedPomodoros(ctx, userID, r.from, r.to)
		if err != nil {
			return nil, err
		}
		minutes, err := s.repo.SumCompletedPomodoroMinutes(ctx, userID, r.from, r.to)
		if err != nil {
			return nil, err
		}
		r.totals.Sessions = sessions
		r.totals.Minutes = minutes
	}

	return stats, nil
}

// RecordQuizAttempt stores a graded attempt. Quiz content and grading live
// upstream; only the outcome reaches the engagement log.
func (s *Service) RecordQuizAttempt(ctx context.Context, userID, quizID int64, score, total, timeTaken int) (*models.QuizAttempt, error) {
	if total <= 0 {
		return nil, fmt.Errorf("%w: quiz total must be positive, got %d", ErrInvalidInput, total)
	}
	if score < 0 || score > total {
		return nil, fmt.Errorf("%w: score %d outside [0, %d]", ErrInvalidInput, score, total)
	}
	if timeTaken < 0 {
		timeTaken = 0
	}

	attempt := &models.QuizAttempt{
		UserID:      userID,
		QuizID:      quizID,
		Score:       score,
		Total:       total,
		TimeTaken:   timeTaken,
		CompletedAt: utils.NowUTC(),
	}
	err := s.repo.RunInTx(ctx, func(tx models.Repository) error {
		if err := tx.CreateQuizAttempt(ctx, attempt); err != nil {
			return err
		}
		return s.afterActivity(ctx, tx, userID, attempt.CompletedAt)
	})
	if err != nil {
		return nil, err
	}
	return attempt, nil
}

func (s *Service) TodayStats(ctx context.Context, userID int64) (*models.TodayStats, error) {
	today := utils.Today()
	tomorrow := today.AddDate(0, 0, 1)

	totalMinutes, err := s.repo.SumSessionMinutes(ctx, userID, today, tomorrow)
	if err != nil {
		return nil, err
	}
	cards, err := s.repo.CountSessionsByType(ctx, userID, models.ActivityFlashcards, today, tomorrow)
	if err != nil {
		return nil, err
	}
	quizzes, err := s.repo.CountQuizAttempts(ctx, userID, today, tomorrow)
	if err != nil {
		return nil, err
	}
	pomodoros, err := s.repo.CountCompletedPomodoros(ctx, userID, today, tomorrow)
	if err != nil {
		return nil, err
	}
	pomodoroMinutes, err := s.repo.SumCompletedPomodoroMinutes(ctx, userID, today, tomorrow)
	if err != nil {
		return nil, err
	}

	return &models.TodayStats{
		TotalMinutes:     totalMinutes,
		CardsReviewed:    cards,
		QuizzesTaken:     quizzes,
		PomodoroSessions: pomodoros,
		PomodoroMinutes:  pomodoroMinutes,
	}, nil
}

// WeeklyActivity returns the trailing seven days, oldest first, for the
// streak strip on the dashboard.
func (s *Service) WeeklyActivity(ctx context.Context, userID int64) ([]models.DayActivity, error) {
	today := utils.Today()
	counts, err := s.repo.DailyActivityCounts(ctx, userID, today.AddDate(0, 0, -6))
	if err != nil {
		return nil, err
	}

	days := make([]models.DayActivity, 0, 7)
	for i := 6; i >= 0; i-- {
		day := today.AddDate(0, 0, -i)
		key := day.Format(time.DateOnly)
		count := counts[key]
		days = append(days, models.DayActivity{
			Date:        key,
			DayName:     day.Format("Mon"),
			HasActivity: count > 0,
			Count:       count,
			Level:       activityLevel(count),
		})
	}
	return days, nil
}

// StudyActivity returns a trailing activity heatmap of the given length
// (capped at 90 days), oldest first.
func (s *Service) StudyActivity(ctx context.Context, userID int64, days int) ([]models.DayActivity, error) {
	if days <= 0 {
		days = 30
	}
	if days > 90 {
		days = 90
	}

	today := utils.Today()
	counts, err := s.repo.DailyActivityCounts(ctx, userID, today.AddDate(0, 0, -(days-1)))
	if err != nil {
		return nil, err
	}

	activity := make([]models.DayActivity, 0, days)
	for i := days - 1; i >= 0; i-- {
		day := today.AddDate(0, 0, -i)
		key := day.Format(time.DateOnly)
		count := counts[key]
		activity = append(activity, models.DayActivity{
			Date:        key,
			HasActivity: count > 0,
			Count:       count,
			Level:       activityLevel(count),
		})
	}
	return activity, nil
}

func activityLevel(count int) int {
	if count > 4 {
		return 4
	}
	return count
}

// afterActivity applies the engagement bookkeeping that follows any
// qualifying activity: the daily streak transition and an achievement sweep.
func (s *Service) afterActivity(ctx context.Context, repo models.Repository, userID int64, now time.Time) error {
	if _, err := s.updateStreak(ctx, repo, userID, utils.StartOfDay(now)); err != nil {
		return err
	}

	newly, err := s.checkAchievements(ctx, repo, userID)
	if err != nil {
		return err
	}
	if len(newly) > 0 {
		zap.S().Info("achievements earned", zap.Int64("user_id", userID), zap.Strings("types", newly))
	}
	return nil
}
