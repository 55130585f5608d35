// Package export renders decks as spreadsheets for download.
package export

import (
	"fmt"
	"time"

	"github.com/studyloop/studyloop/internal/models"
	"github.com/xuri/excelize/v2"
)

const sheet = "Cards"

// Deck builds an .xlsx workbook with one row per card: content first, then
// the review statistics.
func Deck(deck *models.Deck, cards []*models.Flashcard) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("rename sheet (deck_id: %d): %w", deck.ID, err)
	}

	headers := []string{"Front", "Back", "Times Reviewed", "Times Correct", "Ease Factor", "Interval (days)", "Next Review"}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, fmt.Errorf("header cell (deck_id: %d): %w", deck.ID, err)
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, fmt.Errorf("write header (deck_id: %d): %w", deck.ID, err)
		}
	}

	for row, card := range cards {
		values := []any{
			card.Front,
			card.Back,
			card.TimesReviewed,
			card.TimesCorrect,
			card.EaseFactor,
			card.IntervalDays,
			formatNextReview(card.NextReview),
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return nil, fmt.Errorf("card cell (deck_id: %d, card_id: %d): %w", deck.ID, card.ID, err)
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, fmt.Errorf("write card (deck_id: %d, card_id: %d): %w", deck.ID, card.ID, err)
			}
		}
	}

	return f, nil
}

// Filename returns a download name like flashcards_biology_20260115.xlsx.
func Filename(deck *models.Deck, now time.Time) string {
	return fmt.Sprintf("flashcards_%d_%s.xlsx", deck.ID, now.Format("20060102"))
}

func formatNextReview(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
