package store

import (
	"context"
	"fmt"
	"time"

	"showfinder/internal/models"
)

// SearchCandidates returns ACTIVE shows whose date range overlaps the query
// window, optionally capped by entry fee, ordered soonest-first. The
// overlap rule (end >= windowStart AND start <= windowEnd) deliberately
// matches shows already in progress, not just shows starting inside the
// window. Distance, category, and feature filtering happen in the service
// layer on these candidates.
func (s *Store) SearchCandidates(ctx context.Context, windowStart, windowEnd time.Time, maxEntryFee *float64) ([]models.Show, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+showColumns+`
		FROM shows
		WHERE status = 'ACTIVE'
		  AND end_date >= $1
		  AND start_date <= $2
		  AND ($3::numeric IS NULL OR entry_fee IS NULL OR entry_fee <= $3)
		ORDER BY start_date ASC, id ASC
	`, windowStart, windowEnd, maxEntryFee)
	if err != nil {
		return nil, fmt.Errorf("search shows: %w", err)
	}
	defer rows.Close()

	var shows []models.Show
	for rows.Next() {
		show, err := scanShow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan show: %w", err)
		}
		shows = append(shows, *show)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate shows: %w", err)
	}
	return shows, nil
}
