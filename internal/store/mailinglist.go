package store

import (
	"context"
	"fmt"

	"showfinder/internal/models"
)

// GetMailingList returns a page of organizer contact records, optionally
// filtered by status, newest first.
func (s *Store) GetMailingList(ctx context.Context, filter models.MailingListFilter) ([]models.OrganizerSubmission, int, error) {
	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 20
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM organizer_submissions
		WHERE ($1 = '' OR status = $1)
	`, filter.Status).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count mailing list: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, pending_id, organizer_name, organizer_email, show_id, status, created_at
		FROM organizer_submissions
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`, filter.Status, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("select mailing list: %w", err)
	}
	defer rows.Close()

	var records []models.OrganizerSubmission
	for rows.Next() {
		var rec models.OrganizerSubmission
		if err := rows.Scan(&rec.ID, &rec.PendingID, &rec.OrganizerName,
			&rec.OrganizerEmail, &rec.ShowID, &rec.Status, &rec.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan mailing list record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate mailing list: %w", err)
	}
	return records, total, nil
}
