package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"showfinder/internal/models"
)

// Priority score bounds and the reinforcement deltas applied by approval
// outcomes.
const (
	minPriorityScore = 0
	maxPriorityScore = 100

	approvalPriorityDelta  = 2
	rejectionPriorityDelta = -3
)

// clampScore bounds a priority score to [0, 100].
func clampScore(score int) int {
	if score < minPriorityScore {
		return minPriorityScore
	}
	if score > maxPriorityScore {
		return maxPriorityScore
	}
	return score
}

// ListSources returns all registered scraping sources, highest priority
// first.
func (s *Store) ListSources(ctx context.Context) ([]models.ScrapingSource, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT url, priority_score, last_success_at, last_error_at, error_streak, enabled, created_at
		FROM scraping_sources
		ORDER BY priority_score DESC, url ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("select sources: %w", err)
	}
	defer rows.Close()

	var sources []models.ScrapingSource
	for rows.Next() {
		var src models.ScrapingSource
		if err := rows.Scan(&src.URL, &src.PriorityScore, &src.LastSuccessAt, &src.LastErrorAt,
			&src.ErrorStreak, &src.Enabled, &src.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan source: %w", err)
		}
		sources = append(sources, src)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sources: %w", err)
	}
	return sources, nil
}

// touchSourceSuccess registers the source if new and records a successful
// scrape delivery.
func touchSourceSuccess(ctx context.Context, tx *sql.Tx, url string) error {
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO scraping_sources (url)
		VALUES ($1)
		ON CONFLICT (url)
		DO UPDATE SET last_success_at = NOW(), error_streak = 0
	`, url); err != nil {
		return fmt.Errorf("touch source: %w", err)
	}
	return nil
}

// touchSourceError records a failed scrape extraction.
func touchSourceError(ctx context.Context, tx *sql.Tx, url string) error {
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO scraping_sources (url)
		VALUES ($1)
		ON CONFLICT (url)
		DO UPDATE SET last_error_at = NOW(), error_streak = scraping_sources.error_streak + 1
	`, url); err != nil {
		return fmt.Errorf("touch source error: %w", err)
	}
	return nil
}

// adjustSourcePriority applies a bounded reinforcement delta to a source's
// priority score inside the caller's transaction. Unknown sources (web-form
// submissions never register one) are a no-op.
func adjustSourcePriority(ctx context.Context, tx *sql.Tx, url string, delta int) error {
	var score int
	err := tx.QueryRowContext(ctx, `
		SELECT priority_score
		FROM scraping_sources
		WHERE url = $1
		FOR UPDATE
	`, url).Scan(&score)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return fmt.Errorf("lock source: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE scraping_sources
		SET priority_score = $1
		WHERE url = $2
	`, clampScore(score+delta), url); err != nil {
		return fmt.Errorf("update source priority: %w", err)
	}
	return nil
}
