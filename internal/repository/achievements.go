package repository

import (
	"context"
	"fmt"

	"github.com/studyloop/studyloop/internal/models"
)

func (r *Postgres) ListAchievements(ctx context.Context, userID int64) ([]*models.Achievement, error) {
	query := `
		SELECT id, user_id, achievement_type, earned_at
		FROM achievements
		WHERE user_id = $1
		ORDER BY earned_at ASC
	`

	var achievements []*models.Achievement
	if err := r.SelectContext(ctx, &achievements, query, userID); err != nil {
		return nil, fmt.Errorf("list achievements (user_id: %d): %w", userID, err)
	}
	return achievements, nil
}

func (r *Postgres) ListAchievementTypes(ctx context.Context, userID int64) ([]string, error) {
	query := `SELECT achievement_type FROM achievements WHERE user_id = $1`

	var types []string
	if err := r.SelectContext(ctx, &types, query, userID); err != nil {
		return nil, fmt.Errorf("list achievement types (user_id: %d): %w", userID, err)
	}
	return types, nil
}

// CreateAchievement inserts an earned achievement. The unique index on
// (user_id, achievement_type) plus ON CONFLICT DO NOTHING makes repeated
// awards harmless even if two checks race.
func (r *Postgres) CreateAchievement(ctx context.Context, userID int64, achievementType string) error {
	query := r.psql.Insert("achievements").
		Columns("user_id", "achievement_type").
		Values(userID, achievementType).
		Suffix("ON CONFLICT (user_id, achievement_type) DO NOTHING")

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build SQL query (user_id: %d): %w", userID, err)
	}

	if _, err := r.ExecContext(ctx, sql, args...); err != nil {
		return fmt.Errorf("create achievement (user_id: %d, achievement_type: %s): %w", userID, achievementType, err)
	}
	return nil
}
