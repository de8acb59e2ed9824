package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"showfinder/internal/models"
	"showfinder/internal/normalize"
)

// upsertShow publishes a normalized show. The natural key is (title,
// start_date, location): re-approving the same logical show updates the
// existing row's mutable fields instead of creating a duplicate. The
// find-then-branch shape keeps the logic portable across databases.
func upsertShow(ctx context.Context, tx *sql.Tx, norm *normalize.Normalized) (int64, error) {
	schedule, err := json.Marshal(norm.DailySchedule)
	if err != nil {
		return 0, fmt.Errorf("marshal schedule: %w", err)
	}
	features, err := json.Marshal(norm.Features)
	if err != nil {
		return 0, fmt.Errorf("marshal features: %w", err)
	}
	categories, err := json.Marshal(norm.Categories)
	if err != nil {
		return 0, fmt.Errorf("marshal categories: %w", err)
	}

	var showID int64
	err = tx.QueryRowContext(ctx, `
		SELECT id
		FROM shows
		WHERE title = $1 AND start_date = $2 AND location = $3
		FOR UPDATE
	`, norm.Title, norm.StartDate, norm.Location).Scan(&showID)

	switch {
	case err == nil:
		if _, err := tx.ExecContext(ctx, `
			UPDATE shows
			SET description = $1, address = $2, image_url = $3, website_url = $4,
			    end_date = $5, daily_schedule = $6::jsonb, entry_fee = $7,
			    latitude = $8, longitude = $9, features = $10::jsonb,
			    categories = $11::jsonb, updated_at = NOW()
			WHERE id = $12
		`, norm.Description, norm.Address, norm.ImageURL, norm.WebsiteURL,
			norm.EndDate, string(schedule), norm.EntryFee,
			norm.Latitude, norm.Longitude, string(features),
			string(categories), showID); err != nil {
			return 0, fmt.Errorf("update show: %w", err)
		}
		return showID, nil

	case errors.Is(err, sql.ErrNoRows):
		err = tx.QueryRowContext(ctx, `
			INSERT INTO shows (title, description, location, address, image_url, website_url,
			                   start_date, end_date, daily_schedule, entry_fee,
			                   latitude, longitude, status, features, categories)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9::jsonb, $10, $11, $12, 'ACTIVE', $13::jsonb, $14::jsonb)
			RETURNING id
		`, norm.Title, norm.Description, norm.Location, norm.Address, norm.ImageURL, norm.WebsiteURL,
			norm.StartDate, norm.EndDate, string(schedule), norm.EntryFee,
			norm.Latitude, norm.Longitude, string(features), string(categories)).Scan(&showID)
		if err != nil {
			return 0, fmt.Errorf("insert show: %w", err)
		}
		return showID, nil

	default:
		return 0, fmt.Errorf("find show by natural key: %w", err)
	}
}

const showColumns = `
	id, title, description, location, address, image_url, website_url,
	start_date, end_date, daily_schedule, entry_fee, latitude, longitude,
	status, features, categories, organizer_id, created_at, updated_at
`

// GetShow returns one published show by id.
func (s *Store) GetShow(ctx context.Context, id int64) (*models.Show, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+showColumns+`
		FROM shows
		WHERE id = $1
	`, id)
	show, err := scanShow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrShowNotFound
		}
		return nil, fmt.Errorf("select show: %w", err)
	}
	return show, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanShow(row rowScanner) (*models.Show, error) {
	var (
		show       models.Show
		desc       sql.NullString
		schedule   sql.NullString
		features   sql.NullString
		categories sql.NullString
	)
	err := row.Scan(&show.ID, &show.Title, &desc, &show.Location, &show.Address,
		&show.ImageURL, &show.WebsiteURL, &show.StartDate, &show.EndDate,
		&schedule, &show.EntryFee, &show.Latitude, &show.Longitude,
		&show.Status, &features, &categories, &show.OrganizerID,
		&show.CreatedAt, &show.UpdatedAt)
	if err != nil {
		return nil, err
	}
	show.Description = desc.String
	if schedule.Valid && schedule.String != "" {
		_ = json.Unmarshal([]byte(schedule.String), &show.DailySchedule)
	}
	show.Features = map[string]bool{}
	if features.Valid && features.String != "" {
		_ = json.Unmarshal([]byte(features.String), &show.Features)
	}
	show.Categories = []string{}
	if categories.Valid && categories.String != "" {
		_ = json.Unmarshal([]byte(categories.String), &show.Categories)
	}
	return &show, nil
}
