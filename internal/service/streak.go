package service

import (
	"context"
	"time"

	"github.com/studyloop/studyloop/internal/models"
	"github.com/studyloop/studyloop/pkg/utils"
)

// Streak returns the user's streak record, creating an empty one on first
// read so dashboards never see a missing row.
func (s *Service) Streak(ctx context.Context, userID int64) (*models.StreakRecord, error) {
	record, err := s.repo.GetStreak(ctx, userID)
	if err != nil {
		return nil, err
	}
	if record != nil {
		return record, nil
	}

	record = &models.StreakRecord{UserID: userID}
	if err := s.repo.CreateStreak(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// updateStreak applies the once-per-day streak transition for today:
//
//	no record        -> {current: 1, longest: 1}
//	studied today    -> no-op (idempotent)
//	studied yesterday-> current + 1
//	gap of >= 2 days -> reset to 1
//
// longest never decreases and is always >= current. The write is conditional
// on last_study_date, so concurrent same-day calls produce one increment.
func (s *Service) updateStreak(ctx context.Context, repo models.Repository, userID int64, today time.Time) (*models.StreakRecord, error) {
	record, err := repo.GetStreak(ctx, userID)
	if err != nil {
		return nil, err
	}

	if record == nil {
		record = &models.StreakRecord{
			UserID:        userID,
			CurrentStreak: 1,
			LongestStreak: 1,
			LastStudyDate: &today,
		}
		if err := repo.CreateStreak(ctx, record); err != nil {
			return nil, err
		}
		return record, nil
	}

	if record.LastStudyDate != nil && utils.DatesEqual(*record.LastStudyDate, today) {
		return record, nil
	}

	current := 1
	if record.LastStudyDate != nil && utils.DaysBetween(*record.LastStudyDate, today) == 1 {
		current = record.CurrentStreak + 1
	}
	longest := record.LongestStreak
	if current > longest {
		longest = current
	}

	updated, err := repo.UpdateStreakIfStale(ctx, userID, current, longest, today)
	if err != nil {
		return nil, err
	}
	if !updated {
		// Lost a same-day race; the winner already recorded today.
		return repo.GetStreak(ctx, userID)
	}

	return &models.StreakRecord{
		UserID:        userID,
		CurrentStreak: current,
		LongestStreak: longest,
		LastStudyDate: &today,
	}, nil
}
