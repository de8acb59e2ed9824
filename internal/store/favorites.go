package store

import (
	"context"
	"fmt"
)

// FavoriteShow records a user's favorite. Favoriting twice is a no-op.
func (s *Store) FavoriteShow(ctx context.Context, userID, showID int64) error {
	var exists bool
	if err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM shows WHERE id = $1)
	`, showID).Scan(&exists); err != nil {
		return fmt.Errorf("check show: %w", err)
	}
	if !exists {
		return ErrShowNotFound
	}

	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO show_favorites (user_id, show_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, show_id) DO NOTHING
	`, userID, showID); err != nil {
		return fmt.Errorf("insert favorite: %w", err)
	}
	return nil
}

// UnfavoriteShow removes a user's favorite if present.
func (s *Store) UnfavoriteShow(ctx context.Context, userID, showID int64) error {
	if _, err := s.db.ExecContext(ctx, `
		DELETE FROM show_favorites
		WHERE user_id = $1 AND show_id = $2
	`, userID, showID); err != nil {
		return fmt.Errorf("delete favorite: %w", err)
	}
	return nil
}
