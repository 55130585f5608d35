package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/studyloop/studyloop/internal/models"
)

// fakeRepo is an in-memory models.Repository with the same observable
// semantics as the Postgres implementation: half-open time ranges with zero
// meaning unbounded, sql.ErrNoRows on misses, conditional streak updates.
type fakeRepo struct {
	nextID int64

	classes      []*models.Class
	notes        []*models.Note
	decks        []*models.Deck
	cards        []*models.Flashcard
	sessions     []*models.StudySession
	quizzes      []*models.QuizAttempt
	pomodoros    []*models.PomodoroSession
	goals        []*models.Goal
	streaks      map[int64]*models.StreakRecord
	achievements map[int64][]*models.Achievement
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		streaks:      make(map[int64]*models.StreakRecord),
		achievements: make(map[int64][]*models.Achievement),
	}
}

func (f *fakeRepo) id() int64 {
	f.nextID++
	return f.nextID
}

func within(t, from, to time.Time) bool {
	if !from.IsZero() && t.Before(from) {
		return false
	}
	if !to.IsZero() && !t.Before(to) {
		return false
	}
	return true
}

func (f *fakeRepo) RunInTx(ctx context.Context, fn func(models.Repository) error) error {
	return fn(f)
}

func (f *fakeRepo) CreateClass(ctx context.Context, class *models.Class) error {
	class.ID = f.id()
	f.classes = append(f.classes, class)
	return nil
}

func (f *fakeRepo) ListClasses(ctx context.Context, userID int64) ([]*models.Class, error) {
	var out []*models.Class
	for _, c := range f.classes {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeRepo) CountClasses(ctx context.Context, userID int64) (int, error) {
	classes, _ := f.ListClasses(ctx, userID)
	return len(classes), nil
}

func (f *fakeRepo) CreateNote(ctx context.Context, note *models.Note) error {
	note.ID = f.id()
	f.notes = append(f.notes, note)
	return nil
}

func (f *fakeRepo) CountNotes(ctx context.Context, userID int64) (int, error) {
	count := 0
	for _, n := range f.notes {
		for _, c := range f.classes {
			if c.ID == n.ClassID && c.UserID == userID {
				count++
			}
		}
	}
	return count, nil
}

func (f *fakeRepo) CreateDeck(ctx context.Context, deck *models.Deck) error {
	deck.ID = f.id()
	f.decks = append(f.decks, deck)
	return nil
}

func (f *fakeRepo) GetDeck(ctx context.Context, deckID, userID int64) (*models.Deck, error) {
	for _, d := range f.decks {
		if d.ID == deckID && d.UserID == userID {
			return d, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeRepo) ListDecks(ctx context.Context, userID int64) ([]*models.Deck, error) {
	var out []*models.Deck
	for _, d := range f.decks {
		if d.UserID == userID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeRepo) DeleteDeck(ctx context.Context, deckID, userID int64) error {
	kept := f.decks[:0]
	for _, d := range f.decks {
		if !(d.ID == deckID && d.UserID == userID) {
			kept = append(kept, d)
		}
	}
	f.decks = kept
	return nil
}

func (f *fakeRepo) CreateCard(ctx context.Context, card *models.Flashcard) error {
	card.ID = f.id()
	f.cards = append(f.cards, card)
	return nil
}

func (f *fakeRepo) GetCardForUser(ctx context.Context, cardID, userID int64) (*models.Flashcard, error) {
	for _, c := range f.cards {
		if c.ID != cardID {
			continue
		}
		if _, err := f.GetDeck(ctx, c.DeckID, userID); err != nil {
			return nil, sql.ErrNoRows
		}
		return c, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeRepo) ListDeckCards(ctx context.Context, deckID int64) ([]*models.Flashcard, error) {
	var out []*models.Flashcard
	for _, c := range f.cards {
		if c.DeckID == deckID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListStudyCards(ctx context.Context, deckID int64) ([]*models.Flashcard, error) {
	return f.ListDeckCards(ctx, deckID)
}

func (f *fakeRepo) CountDueCards(ctx context.Context, deckID int64, asOf time.Time) (int, error) {
	count := 0
	for _, c := range f.cards {
		if c.DeckID != deckID {
			continue
		}
		if c.NextReview == nil || !c.NextReview.After(asOf) {
			count++
		}
	}
	return count, nil
}

func (f *fakeRepo) UpdateCardReview(ctx context.Context, cardID int64, easeFactor float64, intervalDays, repetitions, timesReviewed, timesCorrect int, lastReviewed, nextReview time.Time) error {
	for _, c := range f.cards {
		if c.ID == cardID {
			c.EaseFactor = easeFactor
			c.IntervalDays = intervalDays
			c.Repetitions = repetitions
			c.TimesReviewed = timesReviewed
			c.TimesCorrect = timesCorrect
			lr, nr := lastReviewed, nextReview
			c.LastReviewed = &lr
			c.NextReview = &nr
			return nil
		}
	}
	return sql.ErrNoRows
}

func (f *fakeRepo) DeleteCard(ctx context.Context, cardID, userID int64) error {
	kept := f.cards[:0]
	for _, c := range f.cards {
		if c.ID != cardID {
			kept = append(kept, c)
		}
	}
	f.cards = kept
	return nil
}

func (f *fakeRepo) CreateStudySession(ctx context.Context, session *models.StudySession) error {
	session.ID = f.id()
	f.sessions = append(f.sessions, session)
	return nil
}

func (f *fakeRepo) SumSessionMinutes(ctx context.Context, userID int64, from, to time.Time) (int, error) {
	sum := 0
	for _, s := range f.sessions {
		if s.UserID == userID && within(s.CreatedAt, from, to) {
			sum += s.Duration
		}
	}
	return sum, nil
}

func (f *fakeRepo) CountSessionsByType(ctx context.Context, userID int64, activityType string, from, to time.Time) (int, error) {
	count := 0
	for _, s := range f.sessions {
		if s.UserID == userID && s.ActivityType == activityType && within(s.CreatedAt, from, to) {
			count++
		}
	}
	return count, nil
}

func (f *fakeRepo) DailyActivityCounts(ctx context.Context, userID int64, from time.Time) (map[string]int, error) {
	counts := make(map[string]int)
	for _, s := range f.sessions {
		if s.UserID == userID && !s.CreatedAt.Before(from) {
			counts[s.CreatedAt.Format(time.DateOnly)]++
		}
	}
	for _, q := range f.quizzes {
		if q.UserID == userID && !q.CompletedAt.Before(from) {
			counts[q.CompletedAt.Format(time.DateOnly)]++
		}
	}
	return counts, nil
}

func (f *fakeRepo) CreateQuizAttempt(ctx context.Context, attempt *models.QuizAttempt) error {
	attempt.ID = f.id()
	f.quizzes = append(f.quizzes, attempt)
	return nil
}

func (f *fakeRepo) CountQuizAttempts(ctx context.Context, userID int64, from, to time.Time) (int, error) {
	count := 0
	for _, q := range f.quizzes {
		if q.UserID == userID && within(q.CompletedAt, from, to) {
			count++
		}
	}
	return count, nil
}

func (f *fakeRepo) HasPerfectQuiz(ctx context.Context, userID int64) (bool, error) {
	for _, q := range f.quizzes {
		if q.UserID == userID && q.Total > 0 && q.Score == q.Total {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRepo) CreatePomodoro(ctx context.Context, session *models.PomodoroSession) error {
	session.ID = f.id()
	f.pomodoros = append(f.pomodoros, session)
	return nil
}

func (f *fakeRepo) GetPomodoro(ctx context.Context, sessionID, userID int64) (*models.PomodoroSession, error) {
	for _, p := range f.pomodoros {
		if p.ID == sessionID && p.UserID == userID {
			return p, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeRepo) MarkPomodoroCompleted(ctx context.Context, sessionID int64, completedAt time.Time) error {
	for _, p := range f.pomodoros {
		if p.ID == sessionID {
			p.Completed = true
			at := completedAt
			p.CompletedAt = &at
			return nil
		}
	}
	return sql.ErrNoRows
}

func (f *fakeRepo) DeletePomodoroIfIncomplete(ctx context.Context, sessionID, userID int64) (bool, error) {
	kept := f.pomodoros[:0]
	deleted := false
	for _, p := range f.pomodoros {
		if p.ID == sessionID && p.UserID == userID && !p.Completed {
			deleted = true
			continue
		}
		kept = append(kept, p)
	}
	f.pomodoros = kept
	return deleted, nil
}

func (f *fakeRepo) CountCompletedPomodoros(ctx context.Context, userID int64, from, to time.Time) (int, error) {
	count := 0
	for _, p := range f.pomodoros {
		if p.UserID == userID && p.Completed && p.SessionType == models.PomodoroWork &&
			p.CompletedAt != nil && within(*p.CompletedAt, from, to) {
			count++
		}
	}
	return count, nil
}

func (f *fakeRepo) SumCompletedPomodoroMinutes(ctx context.Context, userID int64, from, to time.Time) (int, error) {
	sum := 0
	for _, p := range f.pomodoros {
		if p.UserID == userID && p.Completed && p.SessionType == models.PomodoroWork &&
			p.CompletedAt != nil && within(*p.CompletedAt, from, to) {
			sum += p.Duration
		}
	}
	return sum, nil
}

func (f *fakeRepo) GetStreak(ctx context.Context, userID int64) (*models.StreakRecord, error) {
	record, ok := f.streaks[userID]
	if !ok {
		return nil, nil
	}
	cp := *record
	return &cp, nil
}

func (f *fakeRepo) CreateStreak(ctx context.Context, record *models.StreakRecord) error {
	if _, ok := f.streaks[record.UserID]; ok {
		return nil
	}
	cp := *record
	f.streaks[record.UserID] = &cp
	return nil
}

func (f *fakeRepo) UpdateStreakIfStale(ctx context.Context, userID int64, current, longest int, today time.Time) (bool, error) {
	record, ok := f.streaks[userID]
	if !ok {
		return false, nil
	}
	if record.LastStudyDate != nil && record.LastStudyDate.Equal(today) {
		return false, nil
	}
	day := today
	record.CurrentStreak = current
	record.LongestStreak = longest
	record.LastStudyDate = &day
	return true, nil
}

func (f *fakeRepo) CreateGoal(ctx context.Context, goal *models.Goal) error {
	goal.ID = f.id()
	f.goals = append(f.goals, goal)
	return nil
}

func (f *fakeRepo) ListGoals(ctx context.Context, userID int64) ([]*models.Goal, error) {
	var out []*models.Goal
	for _, g := range f.goals {
		if g.UserID == userID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (f *fakeRepo) DeleteGoal(ctx context.Context, goalID, userID int64) error {
	kept := f.goals[:0]
	for _, g := range f.goals {
		if !(g.ID == goalID && g.UserID == userID) {
			kept = append(kept, g)
		}
	}
	f.goals = kept
	return nil
}

func (f *fakeRepo) AdvanceGoalPeriods(ctx context.Context, today time.Time) (int64, error) {
	var moved int64
	for _, g := range f.goals {
		switch g.Type {
		case models.GoalWeeklyQuizzes:
			if !g.PeriodStart.After(today.AddDate(0, 0, -7)) {
				g.PeriodStart = today
				moved++
			}
		default:
			if g.PeriodStart.Before(today) {
				g.PeriodStart = today
				moved++
			}
		}
	}
	return moved, nil
}

func (f *fakeRepo) ListAchievements(ctx context.Context, userID int64) ([]*models.Achievement, error) {
	return f.achievements[userID], nil
}

func (f *fakeRepo) ListAchievementTypes(ctx context.Context, userID int64) ([]string, error) {
	var types []string
	for _, a := range f.achievements[userID] {
		types = append(types, a.Type)
	}
	return types, nil
}

func (f *fakeRepo) CreateAchievement(ctx context.Context, userID int64, achievementType string) error {
	for _, a := range f.achievements[userID] {
		if a.Type == achievementType {
			return nil
		}
	}
	f.achievements[userID] = append(f.achievements[userID], &models.Achievement{
		ID:       f.id(),
		UserID:   userID,
		Type:     achievementType,
		EarnedAt: time.Now().UTC(),
	})
	return nil
}
