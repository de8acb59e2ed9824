package store

import (
	"context"
	"database/sql"
	"fmt"

	"showfinder/internal/geo"
	"showfinder/internal/models"
)

// logCoordinateIssue appends to the coordinate audit log inside the
// caller's transaction. Entries are never deleted, only resolved.
func logCoordinateIssue(ctx context.Context, tx *sql.Tx, showID int64, lat, lon *float64, issue string) error {
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO coordinate_issues (show_id, latitude, longitude, issue)
		VALUES ($1, $2, $3, $4)
	`, showID, lat, lon, issue); err != nil {
		return fmt.Errorf("insert coordinate issue: %w", err)
	}
	return nil
}

// FixShowCoordinates applies an admin coordinate correction: validates the
// point, updates the show, and resolves any open coordinate issues for it,
// all in one transaction.
func (s *Store) FixShowCoordinates(ctx context.Context, showID, adminID int64, lat, lon float64) error {
	if !geo.ValidCoordinates(lat, lon) {
		return fmt.Errorf("%w: coordinates out of range: (%v, %v)", ErrValidation, lat, lon)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if tx != nil {
			_ = tx.Rollback()
		}
	}()

	result, err := tx.ExecContext(ctx, `
		UPDATE shows
		SET latitude = $1, longitude = $2, updated_at = NOW()
		WHERE id = $3
	`, lat, lon, showID)
	if err != nil {
		return fmt.Errorf("update show coordinates: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return ErrShowNotFound
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE coordinate_issues
		SET resolved_at = NOW(), resolved_by = $1
		WHERE show_id = $2 AND resolved_at IS NULL
	`, adminID, showID); err != nil {
		return fmt.Errorf("resolve coordinate issues: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	tx = nil

	return nil
}

// ListCoordinateIssues returns open (unresolved) coordinate issues, oldest
// first, for the admin review queue.
func (s *Store) ListCoordinateIssues(ctx context.Context) ([]models.CoordinateIssue, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, show_id, latitude, longitude, issue, created_at, resolved_at, resolved_by
		FROM coordinate_issues
		WHERE resolved_at IS NULL
		ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("select coordinate issues: %w", err)
	}
	defer rows.Close()

	var issues []models.CoordinateIssue
	for rows.Next() {
		var issue models.CoordinateIssue
		if err := rows.Scan(&issue.ID, &issue.ShowID, &issue.Latitude, &issue.Longitude,
			&issue.Issue, &issue.CreatedAt, &issue.ResolvedAt, &issue.ResolvedBy); err != nil {
			return nil, fmt.Errorf("scan coordinate issue: %w", err)
		}
		issues = append(issues, issue)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate coordinate issues: %w", err)
	}
	return issues, nil
}
