// Package service implements the study engagement core: SM-2 review
// scheduling and the streak/goal/achievement tracker derived from the
// append-only activity log.
package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/studyloop/studyloop/internal/models"
	"github.com/studyloop/studyloop/internal/srs"
	"github.com/studyloop/studyloop/pkg/utils"
	"go.uber.org/zap"
)

type Service struct {
	repo models.Repository
}

func NewService(repo models.Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) CreateClass(ctx context.Context, userID int64, name, color string) (*models.Class, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: class name is empty", ErrInvalidInput)
	}
	if color == "" {
		color = "#6366f1"
	}

	class := &models.Class{
		UserID:    userID,
		Name:      name,
		Color:     color,
		CreatedAt: utils.NowUTC(),
	}
	if err := s.repo.CreateClass(ctx, class); err != nil {
		return nil, err
	}
	return class, nil
}

func (s *Service) ListClasses(ctx context.Context, userID int64) ([]*models.Class, error) {
	return s.repo.ListClasses(ctx, userID)
}

func (s *Service) CreateNote(ctx context.Context, userID, classID int64, title, content string) (*models.Note, error) {
	if strings.TrimSpace(title) == "" {
		return nil, fmt.Errorf("%w: note title is empty", ErrInvalidInput)
	}
	if err := s.ownsClass(ctx, userID, classID); err != nil {
		return nil, err
	}

	note := &models.Note{
		ClassID:   classID,
		Title:     title,
		Content:   content,
		CreatedAt: utils.NowUTC(),
	}
	if err := s.repo.CreateNote(ctx, note); err != nil {
		return nil, err
	}

	newly, err := s.checkAchievements(ctx, s.repo, userID)
	if err != nil {
		zap.S().Warn("check achievements after note", zap.Error(err), zap.Int64("user_id", userID))
	} else if len(newly) > 0 {
		zap.S().Info("achievements earned", zap.Int64("user_id", userID), zap.Strings("types", newly))
	}

	return note, nil
}

func (s *Service) CreateDeck(ctx context.Context, userID, classID int64, title, description string) (*models.Deck, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: deck title is empty", ErrInvalidInput)
	}
	if err := s.ownsClass(ctx, userID, classID); err != nil {
		return nil, err
	}

	now := utils.NowUTC()
	deck := &models.Deck{
		UserID:      userID,
		ClassID:     classID,
		Title:       title,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.CreateDeck(ctx, deck); err != nil {
		return nil, err
	}
	return deck, nil
}

func (s *Service) ListDecks(ctx context.Context, userID int64) ([]*models.Deck, error) {
	return s.repo.ListDecks(ctx, userID)
}

func (s *Service) GetDeck(ctx context.Context, userID, deckID int64) (*models.Deck, error) {
	deck, err := s.repo.GetDeck(ctx, deckID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: deck %d", ErrNotFound, deckID)
	}
	return deck, err
}

func (s *Service) DeleteDeck(ctx context.Context, userID, deckID int64) error {
	if _, err := s.GetDeck(ctx, userID, deckID); err != nil {
		return err
	}
	return s.repo.DeleteDeck(ctx, deckID, userID)
}

func (s *Service) AddCard(ctx context.Context, userID, deckID int64, front, back string) (*models.Flashcard, error) {
	if strings.TrimSpace(front) == "" || strings.TrimSpace(back) == "" {
		return nil, fmt.Errorf("%w: card front and back are required", ErrInvalidInput)
	}
	if _, err := s.GetDeck(ctx, userID, deckID); err != nil {
		return nil, err
	}

	state := srs.DefaultState()
	card := &models.Flashcard{
		DeckID:       deckID,
		Front:        front,
		Back:         back,
		EaseFactor:   state.EaseFactor,
		IntervalDays: state.IntervalDays,
		Repetitions:  state.Repetitions,
		CreatedAt:    utils.NowUTC(),
	}
	if err := s.repo.CreateCard(ctx, card); err != nil {
		return nil, err
	}
	return card, nil
}

func (s *Service) ListCards(ctx context.Context, userID, deckID int64) ([]*models.Flashcard, error) {
	if _, err := s.GetDeck(ctx, userID, deckID); err != nil {
		return nil, err
	}
	return s.repo.ListDeckCards(ctx, deckID)
}

func (s *Service) DeleteCard(ctx context.Context, userID, cardID int64) error {
	if _, err := s.getCard(ctx, userID, cardID); err != nil {
		return err
	}
	return s.repo.DeleteCard(ctx, cardID, userID)
}

// ReviewCard applies one SM-2 review to a card and records the engagement
// side effects: the review counters, one flashcards activity row, the daily
// streak update and an achievement check. Everything runs in one transaction
// so a failure leaves no partial state.
func (s *Service) ReviewCard(ctx context.Context, userID, cardID int64, quality int) (*models.ReviewResult, error) {
	if !srs.ValidQuality(quality) {
		return nil, fmt.Errorf("%w: quality %d outside [%d, %d]", ErrInvalidInput, quality, srs.MinQuality, srs.MaxQuality)
	}

	var result *models.ReviewResult
	err := s.repo.RunInTx(ctx, func(tx models.Repository) error {
		card, err := tx.GetCardForUser(ctx, cardID, userID)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: card %d", ErrNotFound, cardID)
		}
		if err != nil {
			return err
		}

		now := utils.NowUTC()
		state := srs.State{
			EaseFactor:   card.EaseFactor,
			IntervalDays: card.IntervalDays,
			Repetitions:  card.Repetitions,
		}
		next, nextReview := srs.Schedule(state, quality, now)

		timesReviewed := card.TimesReviewed + 1
		timesCorrect := card.TimesCorrect
		if quality >= srs.PassThreshold {
			timesCorrect++
		}

		if err := tx.UpdateCardReview(ctx, card.ID, next.EaseFactor, next.IntervalDays, next.Repetitions,
			timesReviewed, timesCorrect, now, nextReview); err != nil {
			return err
		}

		deck, err := tx.GetDeck(ctx, card.DeckID, userID)
		if err != nil {
			return err
		}

		session := &models.StudySession{
			UserID:       userID,
			ClassID:      &deck.ClassID,
			ActivityType: models.ActivityFlashcards,
			Duration:     1,
			CreatedAt:    now,
		}
		if err := tx.CreateStudySession(ctx, session); err != nil {
			return err
		}

		if _, err := s.updateStreak(ctx, tx, userID, utils.StartOfDay(now)); err != nil {
			return err
		}

		newly, err := s.checkAchievements(ctx, tx, userID)
		if err != nil {
			return err
		}
		if len(newly) > 0 {
			zap.S().Info("achievements earned", zap.Int64("user_id", userID), zap.Strings("types", newly))
		}

		result = &models.ReviewResult{
			EaseFactor:    math.Round(next.EaseFactor*100) / 100,
			IntervalDays:  next.IntervalDays,
			NextReview:    nextReview,
			TimesReviewed: timesReviewed,
			TimesCorrect:  timesCorrect,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// StudyDeck returns the deck's cards in study order: never-seen first, then
// most overdue, then least practiced.
func (s *Service) StudyDeck(ctx context.Context, userID, deckID int64) (*models.Deck, []*models.Flashcard, error) {
	deck, err := s.GetDeck(ctx, userID, deckID)
	if err != nil {
		return nil, nil, err
	}

	cards, err := s.repo.ListStudyCards(ctx, deckID)
	if err != nil {
		return nil, nil, err
	}
	return deck, cards, nil
}

func (s *Service) DueCount(ctx context.Context, userID, deckID int64) (int, error) {
	if _, err := s.GetDeck(ctx, userID, deckID); err != nil {
		return 0, err
	}
	return s.repo.CountDueCards(ctx, deckID, utils.NowUTC())
}

func (s *Service) getCard(ctx context.Context, userID, cardID int64) (*models.Flashcard, error) {
	card, err := s.repo.GetCardForUser(ctx, cardID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: card %d", ErrNotFound, cardID)
	}
	return card, err
}

func (s *Service) ownsClass(ctx context.Context, userID, classID int64) error {
	classes, err := s.repo.ListClasses(ctx, userID)
	if err != nil {
		return err
	}
	for _, class := range classes {
		if class.ID == classID {
			return nil
		}
	}
	return fmt.Errorf("%w: class %d", ErrNotFound, classID)
}
