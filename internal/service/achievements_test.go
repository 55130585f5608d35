package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studyloop/studyloop/internal/models"
)

func seedFlashcardSessions(repo *fakeRepo, userID int64, count int) {
	at := day(2026, 3, 1)
	for i := 0; i < count; i++ {
		repo.sessions = append(repo.sessions, &models.StudySession{
			ID:           repo.id(),
			UserID:       userID,
			ActivityType: models.ActivityFlashcards,
			Duration:     1,
			CreatedAt:    at,
		})
	}
}

func TestCheckAchievementsAwardsAtExactThreshold(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	seedFlashcardSessions(repo, 1, 49)
	newly, err := svc.CheckAchievements(context.Background(), 1)
	require.NoError(t, err)
	assert.NotContains(t, newly, "cards_50")

	seedFlashcardSessions(repo, 1, 1)
	newly, err = svc.CheckAchievements(context.Background(), 1)
	require.NoError(t, err)
	assert.Contains(t, newly, "cards_50")
}

func TestCheckAchievementsNeverDuplicates(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	seedFlashcardSessions(repo, 1, 120)

	newly, err := svc.CheckAchievements(context.Background(), 1)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"cards_50", "cards_100"}, newly)

	newly, err = svc.CheckAchievements(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, newly, "second sweep with no new activity earns nothing")

	all, err := svc.Achievements(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestCheckAchievementsStreakThresholds(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	start := day(2026, 3, 1)

	for i := 0; i < 3; i++ {
		_, err := svc.updateStreak(context.Background(), repo, 1, start.AddDate(0, 0, i))
		require.NoError(t, err)
	}

	newly, err := svc.CheckAchievements(context.Background(), 1)
	require.NoError(t, err)
	assert.Contains(t, newly, "streak_3")
	assert.NotContains(t, newly, "streak_7")
}

func TestCheckAchievementsPerfectQuiz(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	repo.quizzes = append(repo.quizzes, &models.QuizAttempt{
		ID: repo.id(), UserID: 1, QuizID: 9, Score: 7, Total: 10,
		CompletedAt: time.Now().UTC(),
	})
	newly, err := svc.CheckAchievements(context.Background(), 1)
	require.NoError(t, err)
	assert.NotContains(t, newly, "perfect_quiz")

	repo.quizzes = append(repo.quizzes, &models.QuizAttempt{
		ID: repo.id(), UserID: 1, QuizID: 9, Score: 10, Total: 10,
		CompletedAt: time.Now().UTC(),
	})
	newly, err = svc.CheckAchievements(context.Background(), 1)
	require.NoError(t, err)
	assert.Contains(t, newly, "perfect_quiz")
}

func TestCheckAchievementsFirstClass(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	_, err := svc.CreateClass(context.Background(), 1, "Biology", "")
	require.NoError(t, err)

	newly, err := svc.CheckAchievements(context.Background(), 1)
	require.NoError(t, err)
	assert.Contains(t, newly, "first_class")
}

func TestCheckAchievementsScopedToUser(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	seedFlashcardSessions(repo, 1, 60)

	newly, err := svc.CheckAchievements(context.Background(), 2)
	require.NoError(t, err)
	assert.Empty(t, newly, "another user's activity earns nothing")
}
