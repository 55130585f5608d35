package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/studyloop/studyloop/internal/models"
)

func (r *Postgres) CreateGoal(ctx context.Context, goal *models.Goal) error {
	query := r.psql.Insert("study_goals").
		Columns("user_id", "goal_type", "target_value", "period_start").
		Values(goal.UserID, goal.Type, goal.TargetValue, goal.PeriodStart).
		Suffix("RETURNING id")

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build SQL query (user_id: %d): %w", goal.UserID, err)
	}

	if err := r.QueryRowxContext(ctx, sql, args...).Scan(&goal.ID); err != nil {
		return fmt.Errorf("create goal (user_id: %d, goal_type: %s): %w", goal.UserID, goal.Type, err)
	}
	return nil
}

func (r *Postgres) ListGoals(ctx context.Context, userID int64) ([]*models.Goal, error) {
	query := `
		SELECT id, user_id, goal_type, target_value, period_start
		FROM study_goals
		WHERE user_id = $1
		ORDER BY id ASC
	`

	var goals []*models.Goal
	if err := r.SelectContext(ctx, &goals, query, userID); err != nil {
		return nil, fmt.Errorf("list goals (user_id: %d): %w", userID, err)
	}
	return goals, nil
}

func (r *Postgres) DeleteGoal(ctx context.Context, goalID, userID int64) error {
	query := r.psql.Delete("study_goals").
		Where("id = ? AND user_id = ?", goalID, userID)

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build SQL query (goal_id: %d): %w", goalID, err)
	}

	if _, err := r.ExecContext(ctx, sql, args...); err != nil {
		return fmt.Errorf("delete goal (goal_id: %d, user_id: %d): %w", goalID, userID, err)
	}
	return nil
}

// AdvanceGoalPeriods moves expired goal periods forward to today: daily goals
// roll every day, weekly goals after seven days. Progress is recomputed from
// the activity log on read, so rolling the period never touches counters.
func (r *Postgres) AdvanceGoalPeriods(ctx context.Context, today time.Time) (int64, error) {
	weekAgo := today.AddDate(0, 0, -7)

	query := `
		UPDATE study_goals
		SET period_start = $1
		WHERE (goal_type IN ($2, $3, $4) AND period_start < $1)
		   OR (goal_type = $5 AND period_start <= $6)
	`

	res, err := r.ExecContext(ctx, query, today,
		models.GoalDailyMinutes, models.GoalCardsReviewed, models.GoalPomodoroSessions,
		models.GoalWeeklyQuizzes, weekAgo)
	if err != nil {
		return 0, fmt.Errorf("advance goal periods (today: %s): %w", today.Format(time.DateOnly), err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("advance goal periods rows affected: %w", err)
	}
	return affected, nil
}
