package models

import "time"

// Activity types recorded in the append-only study_sessions log.
const (
	ActivityFlashcards = "flashcards"
	ActivityPomodoro   = "pomodoro"
	ActivityReading    = "reading"
	ActivityOther      = "other"
)

// Pomodoro session types.
const (
	PomodoroWork       = "work"
	PomodoroShortBreak = "short_break"
	PomodoroLongBreak  = "long_break"
)

// Goal types. Progress is never stored; it is recomputed from the activity
// log for the goal's period on every read.
const (
	GoalDailyMinutes     = "daily_minutes"
	GoalWeeklyQuizzes    = "weekly_quizzes"
	GoalCardsReviewed    = "cards_reviewed"
	GoalPomodoroSessions = "pomodoro_sessions"
)

type Class struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	Name      string    `db:"name" json:"name"`
	Color     string    `db:"color" json:"color"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type Note struct {
	ID        int64     `db:"id" json:"id"`
	ClassID   int64     `db:"class_id" json:"class_id"`
	Title     string    `db:"title" json:"title"`
	Content   string    `db:"content" json:"content"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type Deck struct {
	ID          int64     `db:"id" json:"id"`
	UserID      int64     `db:"user_id" json:"user_id"`
	ClassID     int64     `db:"class_id" json:"class_id"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Flashcard carries the SM-2 scheduling state alongside the card content.
// The scheduling columns are mutated only by the review flow.
type Flashcard struct {
	ID            int64      `db:"id" json:"id"`
	DeckID        int64      `db:"deck_id" json:"deck_id"`
	Front         string     `db:"front" json:"front"`
	Back          string     `db:"back" json:"back"`
	TimesReviewed int        `db:"times_reviewed" json:"times_reviewed"`
	TimesCorrect  int        `db:"times_correct" json:"times_correct"`
	EaseFactor    float64    `db:"ease_factor" json:"ease_factor"`
	IntervalDays  int        `db:"interval_days" json:"interval_days"`
	Repetitions   int        `db:"repetitions" json:"repetitions"`
	LastReviewed  *time.Time `db:"last_reviewed" json:"last_reviewed"`
	NextReview    *time.Time `db:"next_review" json:"next_review"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
}

// ReviewResult is the scheduler output returned to the client after one
// review submission. EaseFactor is rounded to two decimals for transport;
// full precision stays in the database.
type ReviewResult struct {
	EaseFactor    float64   `json:"ease_factor"`
	IntervalDays  int       `json:"interval"`
	NextReview    time.Time `json:"next_review"`
	TimesReviewed int       `json:"times_reviewed"`
	TimesCorrect  int       `json:"times_correct"`
}

// StreakRecord is the one-per-user daily streak state. LongestStreak is
// never less than CurrentStreak after any update.
type StreakRecord struct {
	UserID        int64      `db:"user_id" json:"user_id"`
	CurrentStreak int        `db:"current_streak" json:"current_streak"`
	LongestStreak int        `db:"longest_streak" json:"longest_streak"`
	LastStudyDate *time.Time `db:"last_study_date" json:"last_study_date"`
}

type Achievement struct {
	ID       int64     `db:"id" json:"id"`
	UserID   int64     `db:"user_id" json:"user_id"`
	Type     string    `db:"achievement_type" json:"achievement_type"`
	EarnedAt time.Time `db:"earned_at" json:"earned_at"`
}

type Goal struct {
	ID          int64     `db:"id" json:"id"`
	UserID      int64     `db:"user_id" json:"user_id"`
	Type        string    `db:"goal_type" json:"goal_type"`
	TargetValue int       `db:"target_value" json:"target_value"`
	PeriodStart time.Time `db:"period_start" json:"period_start"`
}

// GoalProgress pairs a stored goal with its recomputed progress.
type GoalProgress struct {
	Goal
	Current int `json:"current"`
	Percent int `json:"percent"`
}

// StudySession is one row of the append-only activity log.
type StudySession struct {
	ID           int64     `db:"id" json:"id"`
	UserID       int64     `db:"user_id" json:"user_id"`
	ClassID      *int64    `db:"class_id" json:"class_id"`
	ActivityType string    `db:"activity_type" json:"activity_type"`
	Duration     int       `db:"duration" json:"duration"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

type PomodoroSession struct {
	ID          int64      `db:"id" json:"id"`
	UserID      int64      `db:"user_id" json:"user_id"`
	ClassID     *int64     `db:"class_id" json:"class_id"`
	SessionType string     `db:"session_type" json:"session_type"`
	Duration    int        `db:"duration" json:"duration"`
	Completed   bool       `db:"completed" json:"completed"`
	StartedAt   time.Time  `db:"started_at" json:"started_at"`
	CompletedAt *time.Time `db:"completed_at" json:"completed_at"`
}

type QuizAttempt struct {
	ID          int64     `db:"id" json:"id"`
	UserID      int64     `db:"user_id" json:"user_id"`
	QuizID      int64     `db:"quiz_id" json:"quiz_id"`
	Score       int       `db:"score" json:"score"`
	Total       int       `db:"total" json:"total"`
	TimeTaken   int       `db:"time_taken" json:"time_taken"`
	CompletedAt time.Time `db:"completed_at" json:"completed_at"`
}

// TodayStats aggregates the current UTC day's activity for the dashboard.
type TodayStats struct {
	TotalMinutes     int `json:"total_minutes"`
	CardsReviewed    int `json:"cards_reviewed"`
	QuizzesTaken     int `json:"quizzes_taken"`
	PomodoroSessions int `json:"pomodoro_sessions"`
	PomodoroMinutes  int `json:"pomodoro_minutes"`
}

// DayActivity is one day of the activity heat strip. Level compresses the
// raw count into 0-4 intensity buckets.
type DayActivity struct {
	Date        string `json:"date"`
	DayName     string `json:"day_name,omitempty"`
	HasActivity bool   `json:"has_activity"`
	Count       int    `json:"count"`
	Level       int    `json:"level"`
}

type PomodoroTotals struct {
	Sessions int `json:"sessions"`
	Minutes  int `json:"minutes"`
}

type PomodoroStats struct {
	Today   PomodoroTotals `json:"today"`
	Week    PomodoroTotals `json:"week"`
	AllTime PomodoroTotals `json:"all_time"`
}
