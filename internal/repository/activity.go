package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/studyloop/studyloop/internal/models"
)

func (r *Postgres) CreateStudySession(ctx context.Context, session *models.StudySession) error {
	query := r.psql.Insert("study_sessions").
		Columns("user_id", "class_id", "activity_type", "duration", "created_at").
		Values(session.UserID, session.ClassID, session.ActivityType, session.Duration, session.CreatedAt).
		Suffix("RETURNING id")

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build SQL query (user_id: %d): %w", session.UserID, err)
	}

	if err := r.QueryRowxContext(ctx, sql, args...).Scan(&session.ID); err != nil {
		return fmt.Errorf("create study session (user_id: %d, activity_type: %s): %w", session.UserID, session.ActivityType, err)
	}
	return nil
}

// timeRange appends created-at bounds to b. Zero from/to mean unbounded, so
// the same counters serve both "today" windows and all-time totals.
func timeRange(b squirrel.SelectBuilder, column string, from, to time.Time) squirrel.SelectBuilder {
	if !from.IsZero() {
		b = b.Where(column+" >= ?", from)
	}
	if !to.IsZero() {
		b = b.Where(column+" < ?", to)
	}
	return b
}

func (r *Postgres) SumSessionMinutes(ctx context.Context, userID int64, from, to time.Time) (int, error) {
	query := timeRange(
		r.psql.Select("COALESCE(SUM(duration), 0)").
			From("study_sessions").
			Where("user_id = ?", userID),
		"created_at", from, to)

	sql, args, err := query.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build SQL query (user_id: %d): %w", userID, err)
	}

	var minutes int
	if err := r.QueryRowxContext(ctx, sql, args...).Scan(&minutes); err != nil {
		return 0, fmt.Errorf("sum session minutes (user_id: %d): %w", userID, err)
	}
	return minutes, nil
}

func (r *Postgres) CountSessionsByType(ctx context.Context, userID int64, activityType string, from, to time.Time) (int, error) {
	query := timeRange(
		r.psql.Select("COUNT(*)").
			From("study_sessions").
			Where("user_id = ? AND activity_type = ?", userID, activityType),
		"created_at", from, to)

	sql, args, err := query.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build SQL query (user_id: %d): %w", userID, err)
	}

	var count int
	if err := r.QueryRowxContext(ctx, sql, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count sessions (user_id: %d, activity_type: %s): %w", userID, activityType, err)
	}
	return count, nil
}

// DailyActivityCounts returns per-day activity counts from the given date on,
// keyed by ISO date. Study sessions and quiz attempts both count as activity.
func (r *Postgres) DailyActivityCounts(ctx context.Context, userID int64, from time.Time) (map[string]int, error) {
	query := `
		SELECT day, SUM(cnt) AS cnt FROM (
			SELECT DATE(created_at) AS day, COUNT(*) AS cnt
			FROM study_sessions
			WHERE user_id = $1 AND created_at >= $2
			GROUP BY DATE(created_at)
			UNION ALL
			SELECT DATE(completed_at) AS day, COUNT(*) AS cnt
			FROM quiz_attempts
			WHERE user_id = $1 AND completed_at >= $2
			GROUP BY DATE(completed_at)
		) activity
		GROUP BY day
	`

	rows, err := r.executor().QueryContext(ctx, query, userID, from)
	if err != nil {
		return nil, fmt.Errorf("query daily activity (user_id: %d): %w", userID, err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var day time.Time
		var cnt int
		if err := rows.Scan(&day, &cnt); err != nil {
			return nil, fmt.Errorf("scan daily activity (user_id: %d): %w", userID, err)
		}
		counts[day.Format(time.DateOnly)] = cnt
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate daily activity (user_id: %d): %w", userID, err)
	}

	return counts, nil
}

func (r *Postgres) CreateQuizAttempt(ctx context.Context, attempt *models.QuizAttempt) error {
	query := r.psql.Insert("quiz_attempts").
		Columns("user_id", "quiz_id", "score", "total", "time_taken", "completed_at").
		Values(attempt.UserID, attempt.QuizID, attempt.Score, attempt.Total, attempt.TimeTaken, attempt.CompletedAt).
		Suffix("RETURNING id")

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build SQL query (user_id: %d): %w", attempt.UserID, err)
	}

	if err := r.QueryRowxContext(ctx, sql, args...).Scan(&attempt.ID); err != nil {
		return fmt.Errorf("create quiz attempt (user_id: %d, quiz_id: %d): %w", attempt.UserID, attempt.QuizID, err)
	}
	return nil
}

func (r *Postgres) CountQuizAttempts(ctx context.Context, userID int64, from, to time.Time) (int, error) {
	query := timeRange(
		r.psql.Select("COUNT(*)").
			From("quiz_attempts").
			Where("user_id = ?", userID),
		"completed_at", from, to)

	sql, args, err := query.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build SQL query (user_id: %d): %w", userID, err)
	}

	var count int
	if err := r.QueryRowxContext(ctx, sql, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count quiz attempts (user_id: %d): %w", userID, err)
	}
	return count, nil
}

func (r *Postgres) HasPerfectQuiz(ctx context.Context, userID int64) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM quiz_attempts
			WHERE user_id = $1 AND total > 0 AND score = total
		)
	`

	var exists bool
	if err := r.QueryRowxContext(ctx, query, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check perfect quiz (user_id: %d): %w", userID, err)
	}
	return exists, nil
}

func (r *Postgres) CreatePomodoro(ctx context.Context, session *models.PomodoroSession) error {
	query := r.psql.Insert("pomodoro_sessions").
		Columns("user_id", "class_id", "session_type", "duration", "completed", "started_at").
		Values(session.UserID, session.ClassID, session.SessionType, session.Duration, session.Completed, session.StartedAt).
		Suffix("RETURNING id")

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build SQL query (user_id: %d): %w", session.UserID, err)
	}

	if err := r.QueryRowxContext(ctx, sql, args...).Scan(&session.ID); err != nil {
		return fmt.Errorf("create pomodoro session (user_id: %d, session_type: %s): %w", session.UserID, session.SessionType, err)
	}
	return nil
}

func (r *Postgres) GetPomodoro(ctx context.Context, sessionID, userID int64) (*models.PomodoroSession, error) {
	query := `
		SELECT id, user_id, class_id, session_type, duration, completed, started_at, completed_at
		FROM pomodoro_sessions
		WHERE id = $1 AND user_id = $2
	`

	var session models.PomodoroSession
	if err := r.GetContext(ctx, &session, query, sessionID, userID); err != nil {
		return nil, fmt.Errorf("get pomodoro session (session_id: %d, user_id: %d): %w", sessionID, userID, err)
	}
	return &session, nil
}

func (r *Postgres) MarkPomodoroCompleted(ctx context.Context, sessionID int64, completedAt time.Time) error {
	query := r.psql.Update("pomodoro_sessions").
		Set("completed", true).
		Set("completed_at", completedAt).
		Where("id = ?", sessionID)

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build SQL query (session_id: %d): %w", sessionID, err)
	}

	if _, err := r.ExecContext(ctx, sql, args...); err != nil {
		return fmt.Errorf("complete pomodoro session (session_id: %d): %w", sessionID, err)
	}
	return nil
}

func (r *Postgres) DeletePomodoroIfIncomplete(ctx context.Context, sessionID, userID int64) (bool, error) {
	query := r.psql.Delete("pomodoro_sessions").
		Where("id = ? AND user_id = ? AND completed = FALSE", sessionID, userID)

	sql, args, err := query.ToSql()
	if err != nil {
		return false, fmt.Errorf("build SQL query (session_id: %d): %w", sessionID, err)
	}

	res, err := r.ExecContext(ctx, sql, args...)
	if err != nil {
		return false, fmt.Errorf("cancel pomodoro session (session_id: %d, user_id: %d): %w", sessionID, userID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("cancel pomodoro session rows affected (session_id: %d): %w", sessionID, err)
	}
	return affected > 0, nil
}

func (r *Postgres) CountCompletedPomodoros(ctx context.Context, userID int64, from, to time.Time) (int, error) {
	query := timeRange(
		r.psql.Select("COUNT(*)").
			From("pomodoro_sessions").
			Where("user_id = ? AND completed = TRUE AND session_type = ?", userID, models.PomodoroWork),
		"completed_at", from, to)

	sql, args, err := query.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build SQL query (user_id: %d): %w", userID, err)
	}

	var count int
	if err := r.QueryRowxContext(ctx, sql, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count completed pomodoros (user_id: %d): %w", userID, err)
	}
	return count, nil
}

func (r *Postgres) SumCompletedPomodoroMinutes(ctx context.Context, userID int64, from, to time.Time) (int, error) {
	query := timeRange(
		r.psql.Select("COALESCE(SUM(duration), 0)").
			From("pomodoro_sessions").
			Where("user_id = ? AND completed = TRUE AND session_type = ?", userID, models.PomodoroWork),
		"completed_at", from, to)

	sql, args, err := query.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build SQL query (user_id: %d): %w", userID, err)
	}

	var minutes int
	if err := r.QueryRowxContext(ctx, sql, args...).Scan(&minutes); err != nil {
		return 0, fmt.Errorf("sum pomodoro minutes (user_id: %d): %w", userID, err)
	}
	return minutes, nil
}
