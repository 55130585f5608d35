package models

import (
	"context"
	"time"
)

// Repository is the persistence surface. Implementations must be usable both
// on the pooled connection and inside a transaction handed out by RunInTx.
type Repository interface {
	RunInTx(ctx context.Context, fn func(Repository) error) error

	CreateClass(ctx context.Context, class *Class) error
	ListClasses(ctx context.Context, userID int64) ([]*Class, error)
	CountClasses(ctx context.Context, userID int64) (int, error)
	CreateNote(ctx context.Context, note *Note) error
	CountNotes(ctx context.Context, userID int64) (int, error)

	CreateDeck(ctx context.Context, deck *Deck) error
	GetDeck(ctx context.Context, deckID, userID int64) (*Deck, error)
	ListDecks(ctx context.Context, userID int64) ([]*Deck, error)
	DeleteDeck(ctx context.Context, deckID, userID int64) error

	CreateCard(ctx context.Context, card *Flashcard) error
	GetCardForUser(ctx context.Context, cardID, userID int64) (*Flashcard, error)
	ListDeckCards(ctx context.Context, deckID int64) ([]*Flashcard, error)
	ListStudyCards(ctx context.Context, deckID int64) ([]*Flashcard, error)
	CountDueCards(ctx context.Context, deckID int64, asOf time.Time) (int, error)
	UpdateCardReview(ctx context.Context, cardID int64, easeFactor float64, intervalDays, repetitions, timesReviewed, timesCorrect int, lastReviewed, nextReview time.Time) error
	DeleteCard(ctx context.Context, cardID, userID int64) error

	CreateStudySession(ctx context.Context, session *StudySession) error
	SumSessionMinutes(ctx context.Context, userID int64, from, to time.Time) (int, error)
	CountSessionsByType(ctx context.Context, userID int64, activityType string, from, to time.Time) (int, error)
	DailyActivityCounts(ctx context.Context, userID int64, from time.Time) (map[string]int, error)

	CreateQuizAttempt(ctx context.Context, attempt *QuizAttempt) error
	CountQuizAttempts(ctx context.Context, userID int64, from, to time.Time) (int, error)
	HasPerfectQuiz(ctx context.Context, userID int64) (bool, error)

	CreatePomodoro(ctx context.Context, session *PomodoroSession) error
	GetPomodoro(ctx context.Context, sessionID, userID int64) (*PomodoroSession, error)
	MarkPomodoroCompleted(ctx context.Context, sessionID int64, completedAt time.Time) error
	DeletePomodoroIfIncomplete(ctx context.Context, sessionID, userID int64) (bool, error)
	CountCompletedPomodoros(ctx context.Context, userID int64, from, to time.Time) (int, error)
	SumCompletedPomodoroMinutes(ctx context.Context, userID int64, from, to time.Time) (int, error)

	GetStreak(ctx context.Context, userID int64) (*StreakRecord, error)
	CreateStreak(ctx context.Context, record *StreakRecord) error
	UpdateStreakIfStale(ctx context.Context, userID int64, current, longest int, today time.Time) (bool, error)

	CreateGoal(ctx context.Context, goal *Goal) error
	ListGoals(ctx context.Context, userID int64) ([]*Goal, error)
	DeleteGoal(ctx context.Context, goalID, userID int64) error
	AdvanceGoalPeriods(ctx context.Context, today time.Time) (int64, error)

	ListAchievements(ctx context.Context, userID int64) ([]*Achievement, error)
	ListAchievementTypes(ctx context.Context, userID int64) ([]string, error)
	CreateAchievement(ctx context.Context, userID int64, achievementType string) error
}

// Service is the application surface consumed by the HTTP layer and the
// background jobs.
type Service interface {
	CreateClass(ctx context.Context, userID int64, name, color string) (*Class, error)
	ListClasses(ctx context.Context, userID int64) ([]*Class, error)
	CreateNote(ctx context.Context, userID, classID int64, title, content string) (*Note, error)

	CreateDeck(ctx context.Context, userID, classID int64, title, description string) (*Deck, error)
	ListDecks(ctx context.Context, userID int64) ([]*Deck, error)
	GetDeck(ctx context.Context, userID, deckID int64) (*Deck, error)
	DeleteDeck(ctx context.Context, userID, deckID int64) error
	AddCard(ctx context.Context, userID, deckID int64, front, back string) (*Flashcard, error)
	ListCards(ctx context.Context, userID, deckID int64) ([]*Flashcard, error)
	DeleteCard(ctx context.Context, userID, cardID int64) error

	ReviewCard(ctx context.Context, userID, cardID int64, quality int) (*ReviewResult, error)
	StudyDeck(ctx context.Context, userID, deckID int64) (*Deck, []*Flashcard, error)
	DueCount(ctx context.Context, userID, deckID int64) (int, error)

	RecordStudySession(ctx context.Context, userID int64, classID *int64, activityType string, duration int) error
	StartPomodoro(ctx context.Context, userID int64, classID *int64, sessionType string, duration int) (*PomodoroSession, error)
	CompletePomodoro(ctx context.Context, userID, sessionID int64) error
	CancelPomodoro(ctx context.Context, userID, sessionID int64) error
	PomodoroStats(ctx context.Context, userID int64) (*PomodoroStats, error)
	RecordQuizAttempt(ctx context.Context, userID, quizID int64, score, total, timeTaken int) (*QuizAttempt, error)

	Streak(ctx context.Context, userID int64) (*StreakRecord, error)
	TodayStats(ctx context.Context, userID int64) (*TodayStats, error)
	WeeklyActivity(ctx context.Context, userID int64) ([]DayActivity, error)
	StudyActivity(ctx context.Context, userID int64, days int) ([]DayActivity, error)

	CreateGoal(ctx context.Context, userID int64, goalType string, targetValue int) (*Goal, error)
	ListGoalProgress(ctx context.Context, userID int64) ([]*GoalProgress, error)
	DeleteGoal(ctx context.Context, userID, goalID int64) error
	RollGoalPeriods(ctx context.Context) error

	Achievements(ctx context.Context, userID int64) ([]*Achievement, error)
	CheckAchievements(ctx context.Context, userID int64) ([]string, error)
}
