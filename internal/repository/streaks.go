package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/studyloop/studyloop/internal/models"
)

// GetStreak returns the user's streak record, or (nil, nil) when none exists
// yet. Records are created lazily on first activity.
func (r *Postgres) GetStreak(ctx context.Context, userID int64) (*models.StreakRecord, error) {
	query := `
		SELECT user_id, current_streak, longest_streak, last_study_date
		FROM user_streaks
		WHERE user_id = $1
	`

	var record models.StreakRecord
	err := r.GetContext(ctx, &record, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get streak (user_id: %d): %w", userID, err)
	}
	return &record, nil
}

func (r *Postgres) CreateStreak(ctx context.Context, record *models.StreakRecord) error {
	query := r.psql.Insert("user_streaks").
		Columns("user_id", "current_streak", "longest_streak", "last_study_date").
		Values(record.UserID, record.CurrentStreak, record.LongestStreak, record.LastStudyDate).
		Suffix("ON CONFLICT (user_id) DO NOTHING")

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build SQL query (user_id: %d): %w", record.UserID, err)
	}

	if _, err := r.ExecContext(ctx, sql, args...); err != nil {
		return fmt.Errorf("create streak (user_id: %d): %w", record.UserID, err)
	}
	return nil
}

// UpdateStreakIfStale writes the new streak values only when the stored
// last_study_date is not already today. The conditional WHERE makes the
// once-per-day update safe under concurrent requests: the loser of the race
// matches zero rows and reports false.
func (r *Postgres) UpdateStreakIfStale(ctx context.Context, userID int64, current, longest int, today time.Time) (bool, error) {
	query := `
		UPDATE user_streaks
		SET current_streak = $1, longest_streak = $2, last_study_date = $3
		WHERE user_id = $4 AND (last_study_date IS NULL OR last_study_date <> $3)
	`

	res, err := r.ExecContext(ctx, query, current, longest, today, userID)
	if err != nil {
		return false, fmt.Errorf("update streak (user_id: %d, current: %d): %w", userID, current, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update streak rows affected (user_id: %d): %w", userID, err)
	}
	return affected > 0, nil
}
