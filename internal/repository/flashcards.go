package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/studyloop/studyloop/internal/models"
)

const cardColumns = `id, deck_id, front, back, times_reviewed, times_correct,
	ease_factor, interval_days, repetitions, last_reviewed, next_review, created_at`

func (r *Postgres) CreateCard(ctx context.Context, card *models.Flashcard) error {
	query := r.psql.Insert("flashcards").
		Columns("deck_id", "front", "back", "ease_factor", "interval_days", "repetitions", "created_at").
		Values(card.DeckID, card.Front, card.Back, card.EaseFactor, card.IntervalDays, card.Repetitions, card.CreatedAt).
		Suffix("RETURNING id")

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build SQL query (deck_id: %d): %w", card.DeckID, err)
	}

	if err := r.QueryRowxContext(ctx, sql, args...).Scan(&card.ID); err != nil {
		return fmt.Errorf("create card (deck_id: %d): %w", card.DeckID, err)
	}
	return nil
}

// GetCardForUser fetches a card through the deck ownership join, so a card
// id belonging to another user behaves exactly like a missing card.
func (r *Postgres) GetCardForUser(ctx context.Context, cardID, userID int64) (*models.Flashcard, error) {
	query := `
		SELECT f.id, f.deck_id, f.front, f.back, f.times_reviewed, f.times_correct,
		       f.ease_factor, f.interval_days, f.repetitions, f.last_reviewed, f.next_review, f.created_at
		FROM flashcards f
		JOIN flashcard_decks d ON f.deck_id = d.id
		WHERE f.id = $1 AND d.user_id = $2
	`

	var card models.Flashcard
	if err := r.GetContext(ctx, &card, query, cardID, userID); err != nil {
		return nil, fmt.Errorf("get card (card_id: %d, user_id: %d): %w", cardID, userID, err)
	}
	return &card, nil
}

func (r *Postgres) ListDeckCards(ctx context.Context, deckID int64) ([]*models.Flashcard, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM flashcards
		WHERE deck_id = $1
		ORDER BY created_at DESC
	`, cardColumns)

	var cards []*models.Flashcard
	if err := r.SelectContext(ctx, &cards, query, deckID); err != nil {
		return nil, fmt.Errorf("list deck cards (deck_id: %d): %w", deckID, err)
	}
	return cards, nil
}

// ListStudyCards returns the deck in study order: never-reviewed cards first,
// then most overdue, then least practiced as the tiebreak.
func (r *Postgres) ListStudyCards(ctx context.Context, deckID int64) ([]*models.Flashcard, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM flashcards
		WHERE deck_id = $1
		ORDER BY
			CASE WHEN next_review IS NULL THEN 0 ELSE 1 END,
			next_review ASC,
			times_reviewed ASC
	`, cardColumns)

	var cards []*models.Flashcard
	if err := r.SelectContext(ctx, &cards, query, deckID); err != nil {
		return nil, fmt.Errorf("list study cards (deck_id: %d): %w", deckID, err)
	}
	return cards, nil
}

func (r *Postgres) CountDueCards(ctx context.Context, deckID int64, asOf time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM flashcards
		WHERE deck_id = $1 AND (next_review IS NULL OR next_review <= $2)
	`

	var count int
	if err := r.QueryRowxContext(ctx, query, deckID, asOf).Scan(&count); err != nil {
		return 0, fmt.Errorf("count due cards (deck_id: %d): %w", deckID, err)
	}
	return count, nil
}

func (r *Postgres) UpdateCardReview(ctx context.Context, cardID int64, easeFactor float64, intervalDays, repetitions, timesReviewed, timesCorrect int, lastReviewed, nextReview time.Time) error {
	query := r.psql.Update("flashcards").
		Set("ease_factor", easeFactor).
		Set("interval_days", intervalDays).
		Set("repetitions", repetitions).
		Set("times_reviewed", timesReviewed).
		Set("times_correct", timesCorrect).
		Set("last_reviewed", lastReviewed).
		Set("next_review", nextReview).
		Where("id = ?", cardID)

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build SQL query (card_id: %d): %w", cardID, err)
	}

	if _, err := r.ExecContext(ctx, sql, args...); err != nil {
		return fmt.Errorf("update card review (card_id: %d, repetitions: %d): %w", cardID, repetitions, err)
	}
	return nil
}

func (r *Postgres) DeleteCard(ctx context.Context, cardID, userID int64) error {
	query := `
		DELETE FROM flashcards f
		USING flashcard_decks d
		WHERE f.deck_id = d.id AND f.id = $1 AND d.user_id = $2
	`

	if _, err := r.ExecContext(ctx, query, cardID, userID); err != nil {
		return fmt.Errorf("delete card (card_id: %d, user_id: %d): %w", cardID, userID, err)
	}
	return nil
}
