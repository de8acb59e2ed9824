// Package sources exposes the scraping-source registry to admins.
package sources

import (
	"context"

	"showfinder/internal/models"
)

// Store defines persistence operations for scraping sources.
type Store interface {
	ListSources(ctx context.Context) ([]models.ScrapingSource, error)
}

// Service coordinates source registry reads.
type Service interface {
	List(ctx context.Context) ([]models.ScrapingSource, error)
}

type service struct {
	store Store
}

// New constructs a sources Service backed by the provided Store.
func New(store Store) Service {
	return &service{store: store}
}

func (s *service) List(ctx context.Context) ([]models.ScrapingSource, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	srcs, err := s.store.ListSources(ctx)
	if err != nil {
		return nil, err
	}
	if srcs == nil {
		srcs = []models.ScrapingSource{}
	}
	return srcs, nil
}
