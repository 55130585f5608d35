package service

import (
	"context"
	"time"

	"github.com/studyloop/studyloop/internal/models"
)

// Counter kinds an achievement threshold can be measured against.
const (
	counterStreak    = "streak"
	counterCards     = "cards"
	counterQuizzes   = "quizzes"
	counterPerfect   = "perfect_quiz"
	counterNotes     = "notes"
	counterClasses   = "classes"
	counterPomodoros = "pomodoros"
)

type achievementRule struct {
	Type      string
	Counter   string
	Threshold int
}

// achievementRules is the fixed threshold table. Append-only: removing or
// renaming a type would orphan already-earned rows.
var achievementRules = []achievementRule{
	{"streak_3", counterStreak, 3},
	{"streak_7", counterStreak, 7},
	{"streak_30", counterStreak, 30},
	{"cards_50", counterCards, 50},
	{"cards_100", counterCards, 100},
	{"cards_500", counterCards, 500},
	{"quizzes_10", counterQuizzes, 10},
	{"perfect_quiz", counterPerfect, 1},
	{"notes_10", counterNotes, 10},
	{"first_class", counterClasses, 1},
	{"pomodoro_10", counterPomodoros, 10},
	{"pomodoro_50", counterPomodoros, 50},
	{"pomodoro_100", counterPomodoros, 100},
	{"pomodoro_500", counterPomodoros, 500},
}

func (s *Service) Achievements(ctx context.Context, userID int64) ([]*models.Achievement, error) {
	return s.repo.ListAchievements(ctx, userID)
}

// CheckAchievements evaluates every threshold and awards the ones newly
// crossed, returning exactly the set earned by this call. Already-earned
// types are skipped, so repeated calls with no new activity return nothing.
func (s *Service) CheckAchievements(ctx context.Context, userID int64) ([]string, error) {
	return s.checkAchievements(ctx, s.repo, userID)
}

func (s *Service) checkAchievements(ctx context.Context, repo models.Repository, userID int64) ([]string, error) {
	earnedTypes, err := repo.ListAchievementTypes(ctx, userID)
	if err != nil {
		return nil, err
	}
	earned := make(map[string]bool, len(earnedTypes))
	for _, t := range earnedTypes {
		earned[t] = true
	}

	// Counters are computed at most once per kind and only when some rule of
	// that kind is still unearned.
	counters := make(map[string]int)
	counterValue := func(kind string) (int, error) {
		if v, ok := counters[kind]; ok {
			return v, nil
		}
		v, err := s.achievementCounter(ctx, repo, userID, kind)
		if err != nil {
			return 0, err
		}
		counters[kind] = v
		return v, nil
	}

	var newly []string
	for _, rule := range achievementRules {
		if earned[rule.Type] {
			continue
		}
		value, err := counterValue(rule.Counter)
		if err != nil {
			return nil, err
		}
		if value < rule.Threshold {
			continue
		}
		if err := repo.CreateAchievement(ctx, userID, rule.Type); err != nil {
			return nil, err
		}
		newly = append(newly, rule.Type)
	}

	return newly, nil
}

func (s *Service) achievementCounter(ctx context.Context, repo models.Repository, userID int64, kind string) (int, error) {
	var unbounded time.Time

	switch kind {
	case counterStreak:
		record, err := repo.GetStreak(ctx, userID)
		if err != nil || record == nil {
			return 0, err
		}
		return record.CurrentStreak, nil
	case counterCards:
		return repo.CountSessionsByType(ctx, userID, models.ActivityFlashcards, unbounded, unbounded)
	case counterQuizzes:
		return repo.CountQuizAttempts(ctx, userID, unbounded, unbounded)
	case counterPerfect:
		perfect, err := repo.HasPerfectQuiz(ctx, userID)
		if err != nil {
			return 0, err
		}
		if perfect {
			return 1, nil
		}
		return 0, nil
	case counterNotes:
		return repo.CountNotes(ctx, userID)
	case counterClasses:
		return repo.CountClasses(ctx, userID)
	case counterPomodoros:
		return repo.CountCompletedPomodoros(ctx, userID, unbounded, unbounded)
	}
	return 0, nil
}
