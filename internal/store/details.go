package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"showfinder/internal/models"
)

// GetShowDetails assembles the denormalized detail document: the show row,
// the organizer's profile when linked, the participating dealers with booth
// metadata, and the favorite count.
func (s *Store) GetShowDetails(ctx context.Context, id int64) (*models.ShowDetails, error) {
	show, err := s.GetShow(ctx, id)
	if err != nil {
		return nil, err
	}

	details := &models.ShowDetails{Show: *show, Dealers: []models.ShowParticipant{}}

	if show.OrganizerID != nil {
		organizer, err := s.getProfile(ctx, *show.OrganizerID)
		if err != nil {
			return nil, err
		}
		details.Organizer = organizer
	}

	dealers, err := s.listDealers(ctx, id)
	if err != nil {
		return nil, err
	}
	if dealers != nil {
		details.Dealers = dealers
	}

	if err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM show_favorites
		WHERE show_id = $1
	`, id).Scan(&details.FavoriteCount); err != nil {
		return nil, fmt.Errorf("count favorites: %w", err)
	}

	return details, nil
}

func (s *Store) getProfile(ctx context.Context, userID int64) (*models.UserProfile, error) {
	var p models.UserProfile
	var displayName sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT user_id, first_name, last_name, display_name, role,
		       facebook_url, instagram_url, website_url
		FROM user_profiles
		WHERE user_id = $1
	`, userID).Scan(&p.UserID, &p.FirstName, &p.LastName, &displayName, &p.Role,
		&p.FacebookURL, &p.InstagramURL, &p.WebsiteURL)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select profile: %w", err)
	}
	p.DisplayName = displayName.String
	return &p, nil
}

// listDealers returns participants eligible for the public dealer list:
// dealer-type roles with a registered or confirmed booth. Final ordering
// (organizer first, then MVP dealers, then dealers, then name) is applied
// by the service layer because display-name resolution lives in Go.
func (s *Store) listDealers(ctx context.Context, showID int64) ([]models.ShowParticipant, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT sp.show_id, sp.status, sp.booth_location, sp.card_types, sp.specialty,
		       sp.price_range, sp.notable_items, sp.payment_methods, sp.registered_at,
		       up.user_id, up.first_name, up.last_name, up.display_name, up.role,
		       up.facebook_url, up.instagram_url, up.website_url
		FROM show_participants sp
		JOIN user_profiles up ON up.user_id = sp.user_id
		WHERE sp.show_id = $1
		  AND sp.status IN ('registered', 'confirmed')
		  AND up.role IN ('dealer', 'mvp_dealer', 'show_organizer')
	`, showID)
	if err != nil {
		return nil, fmt.Errorf("select participants: %w", err)
	}
	defer rows.Close()

	var dealers []models.ShowParticipant
	for rows.Next() {
		var (
			d           models.ShowParticipant
			displayName sql.NullString
			booth       sql.NullString
			cardTypes   sql.NullString
			specialty   sql.NullString
			priceRange  sql.NullString
			notable     sql.NullString
			payments    sql.NullString
		)
		if err := rows.Scan(&d.ShowID, &d.Status, &booth, &cardTypes, &specialty,
			&priceRange, &notable, &payments, &d.RegisteredAt,
			&d.UserID, &d.FirstName, &d.LastName, &displayName, &d.Role,
			&d.FacebookURL, &d.InstagramURL, &d.WebsiteURL); err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		d.DisplayName = displayName.String
		d.BoothLocation = booth.String
		d.Specialty = specialty.String
		d.PriceRange = priceRange.String
		d.NotableItems = notable.String
		if cardTypes.Valid && cardTypes.String != "" {
			_ = json.Unmarshal([]byte(cardTypes.String), &d.CardTypes)
		}
		if payments.Valid && payments.String != "" {
			_ = json.Unmarshal([]byte(payments.String), &d.PaymentMethods)
		}
		dealers = append(dealers, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate participants: %w", err)
	}
	return dealers, nil
}
