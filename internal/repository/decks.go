package repository

import (
	"context"
	"fmt"

	"github.com/studyloop/studyloop/internal/models"
)

func (r *Postgres) CreateClass(ctx context.Context, class *models.Class) error {
	query := r.psql.Insert("classes").
		Columns("user_id", "name", "color", "created_at").
		Values(class.UserID, class.Name, class.Color, class.CreatedAt).
		Suffix("RETURNING id")

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build SQL query (user_id: %d): %w", class.UserID, err)
	}

	if err := r.QueryRowxContext(ctx, sql, args...).Scan(&class.ID); err != nil {
		return fmt.Errorf("create class (user_id: %d, name: %s): %w", class.UserID, class.Name, err)
	}
	return nil
}

func (r *Postgres) ListClasses(ctx context.Context, userID int64) ([]*models.Class, error) {
	query := `
		SELECT id, user_id, name, color, created_at
		FROM classes
		WHERE user_id = $1
		ORDER BY name ASC
	`

	var classes []*models.Class
	if err := r.SelectContext(ctx, &classes, query, userID); err != nil {
		return nil, fmt.Errorf("list classes (user_id: %d): %w", userID, err)
	}
	return classes, nil
}

func (r *Postgres) CountClasses(ctx context.Context, userID int64) (int, error) {
	query := r.psql.Select("COUNT(*)").From("classes").Where("user_id = ?", userID)

	sql, args, err := query.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build SQL query (user_id: %d): %w", userID, err)
	}

	var count int
	if err := r.QueryRowxContext(ctx, sql, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count classes (user_id: %d): %w", userID, err)
	}
	return count, nil
}

func (r *Postgres) CreateNote(ctx context.Context, note *models.Note) error {
	query := r.psql.Insert("notes").
		Columns("class_id", "title", "content", "created_at").
		Values(note.ClassID, note.Title, note.Content, note.CreatedAt).
		Suffix("RETURNING id")

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build SQL query (class_id: %d): %w", note.ClassID, err)
	}

	if err := r.QueryRowxContext(ctx, sql, args...).Scan(&note.ID); err != nil {
		return fmt.Errorf("create note (class_id: %d, title: %s): %w", note.ClassID, note.Title, err)
	}
	return nil
}

func (r *Postgres) CountNotes(ctx context.Context, userID int64) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM notes n
		JOIN classes c ON n.class_id = c.id
		WHERE c.user_id = $1
	`

	var count int
	if err := r.QueryRowxContext(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count notes (user_id: %d): %w", userID, err)
	}
	return count, nil
}

func (r *Postgres) CreateDeck(ctx context.Context, deck *models.Deck) error {
	query := r.psql.Insert("flashcard_decks").
		Columns("user_id", "class_id", "title", "description", "created_at", "updated_at").
		Values(deck.UserID, deck.ClassID, deck.Title, deck.Description, deck.CreatedAt, deck.UpdatedAt).
		Suffix("RETURNING id")

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build SQL query (user_id: %d): %w", deck.UserID, err)
	}

	if err := r.QueryRowxContext(ctx, sql, args...).Scan(&deck.ID); err != nil {
		return fmt.Errorf("create deck (user_id: %d, title: %s): %w", deck.UserID, deck.Title, err)
	}
	return nil
}

func (r *Postgres) GetDeck(ctx context.Context, deckID, userID int64) (*models.Deck, error) {
	query := `
		SELECT id, user_id, class_id, title, description, created_at, updated_at
		FROM flashcard_decks
		WHERE id = $1 AND user_id = $2
	`

	var deck models.Deck
	if err := r.GetContext(ctx, &deck, query, deckID, userID); err != nil {
		return nil, fmt.Errorf("get deck (deck_id: %d, user_id: %d): %w", deckID, userID, err)
	}
	return &deck, nil
}

func (r *Postgres) ListDecks(ctx context.Context, userID int64) ([]*models.Deck, error) {
	query := `
		SELECT id, user_id, class_id, title, description, created_at, updated_at
		FROM flashcard_decks
		WHERE user_id = $1
		ORDER BY updated_at DESC
	`

	var decks []*models.Deck
	if err := r.SelectContext(ctx, &decks, query, userID); err != nil {
		return nil, fmt.Errorf("list decks (user_id: %d): %w", userID, err)
	}
	return decks, nil
}

func (r *Postgres) DeleteDeck(ctx context.Context, deckID, userID int64) error {
	query := r.psql.Delete("flashcard_decks").
		Where("id = ? AND user_id = ?", deckID, userID)

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build SQL query (deck_id: %d): %w", deckID, err)
	}

	if _, err := r.ExecContext(ctx, sql, args...); err != nil {
		return fmt.Errorf("delete deck (deck_id: %d, user_id: %d): %w", deckID, userID, err)
	}
	return nil
}
