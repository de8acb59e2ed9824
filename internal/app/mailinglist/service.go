// Package mailinglist serves the admin mailing-list view of organizer
// contact records.
package mailinglist

import (
	"context"

	"showfinder/internal/models"
)

// Store defines persistence operations for organizer contact records.
type Store interface {
	GetMailingList(ctx context.Context, filter models.MailingListFilter) ([]models.OrganizerSubmission, int, error)
}

// Service coordinates mailing-list queries.
type Service interface {
	List(ctx context.Context, filter models.MailingListFilter) (*models.MailingListResult, error)
}

type service struct {
	store Store
}

// New constructs a mailinglist Service backed by the provided Store.
func New(store Store) Service {
	return &service{store: store}
}

func (s *service) List(ctx context.Context, filter models.MailingListFilter) (*models.MailingListResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	records, total, err := s.store.GetMailingList(ctx, filter)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []models.OrganizerSubmission{}
	}
	return &models.MailingListResult{
		Data:       records,
		Pagination: models.NewPagination(total, filter.Page, filter.PageSize),
	}, nil
}
