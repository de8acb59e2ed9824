// Package shows serves the public read path: paginated search and detail
// aggregation. The spatial and attribute filtering runs here, on candidates
// the store pre-filtered by status and date window.
package shows

import (
	"context"
	"sort"
	"strings"
	"time"

	"showfinder/internal/geo"
	"showfinder/internal/models"
)

// Search defaults applied to zero-value parameters.
const (
	DefaultRadiusMiles = 25.0
	DefaultWindowDays  = 30
	DefaultPageSize    = 20
)

// Store defines persistence operations for published shows.
type Store interface {
	SearchCandidates(ctx context.Context, windowStart, windowEnd time.Time, maxEntryFee *float64) ([]models.Show, error)
	GetShowDetails(ctx context.Context, id int64) (*models.ShowDetails, error)
	FixShowCoordinates(ctx context.Context, showID, adminID int64, lat, lon float64) error
	FavoriteShow(ctx context.Context, userID, showID int64) error
	UnfavoriteShow(ctx context.Context, userID, showID int64) error
}

// Service coordinates show read operations and admin coordinate fixes.
type Service interface {
	Search(ctx context.Context, params models.ShowSearchParams) (*models.ShowSearchResult, error)
	Details(ctx context.Context, id int64) (*models.ShowDetails, error)
	FixCoordinates(ctx context.Context, showID, adminID int64, lat, lon float64) error
	Favorite(ctx context.Context, userID, showID int64) error
	Unfavorite(ctx context.Context, userID, showID int64) error
}

type service struct {
	store Store
}

// New constructs a shows Service backed by the provided Store.
func New(store Store) Service {
	return &service{store: store}
}

func (s *service) Search(ctx context.Context, params models.ShowSearchParams) (*models.ShowSearchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	applyDefaults(&params)

	candidates, err := s.store.SearchCandidates(ctx, params.StartDate, params.EndDate, params.MaxEntryFee)
	if err != nil {
		return nil, err
	}

	hits := filterShows(candidates, params)
	sortHits(hits)

	total := len(hits)
	page := pageSlice(hits, params.Page, params.PageSize)

	return &models.ShowSearchResult{
		Data:       page,
		Pagination: models.NewPagination(total, params.Page, params.PageSize),
	}, nil
}

func (s *service) Details(ctx context.Context, id int64) (*models.ShowDetails, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	details, err := s.store.GetShowDetails(ctx, id)
	if err != nil {
		return nil, err
	}
	sortDealers(details.Dealers)
	return details, nil
}

func (s *service) FixCoordinates(ctx context.Context, showID, adminID int64, lat, lon float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.store.FixShowCoordinates(ctx, showID, adminID, lat, lon)
}

func (s *service) Favorite(ctx context.Context, userID, showID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.store.FavoriteShow(ctx, userID, showID)
}

func (s *service) Unfavorite(ctx context.Context, userID, showID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.store.UnfavoriteShow(ctx, userID, showID)
}

func applyDefaults(p *models.ShowSearchParams) {
	if p.RadiusMiles <= 0 {
		p.RadiusMiles = DefaultRadiusMiles
	}
	if p.StartDate.IsZero() {
		p.StartDate = time.Now().Truncate(24 * time.Hour)
	}
	if p.EndDate.IsZero() || p.EndDate.Before(p.StartDate) {
		p.EndDate = p.StartDate.AddDate(0, 0, DefaultWindowDays)
	}
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
}

// filterShows applies the attribute and spatial filters. A sentinel query
// origin (both components under 0.1 absolute) disables distance filtering
// entirely; otherwise shows without stored coordinates, or beyond the
// radius, are dropped.
func filterShows(candidates []models.Show, p models.ShowSearchParams) []models.ShowWithDistance {
	useDistance := !geo.IsSentinel(p.Latitude, p.Longitude)

	hits := make([]models.ShowWithDistance, 0, len(candidates))
	for _, show := range candidates {
		if !matchCategories(show.Categories, p.Categories) {
			continue
		}
		if !matchFeatures(show.Features, p.Features) {
			continue
		}

		hit := models.ShowWithDistance{Show: show}
		if useDistance {
			if show.Latitude == nil || show.Longitude == nil {
				continue
			}
			d := geo.DistanceMiles(p.Latitude, p.Longitude, *show.Latitude, *show.Longitude)
			if d > p.RadiusMiles {
				continue
			}
			hit.DistanceMiles = &d
		}
		hits = append(hits, hit)
	}
	return hits
}

// matchCategories is any-match: at least one requested category appears on
// the show. No requested categories matches everything.
func matchCategories(have, want []string) bool {
	if len(want) == 0 {
		return true
	}
	for _, w := range want {
		for _, h := range have {
			if strings.EqualFold(h, w) {
				return true
			}
		}
	}
	return false
}

// matchFeatures is subset-match: every requested feature key must be
// present and truthy on the show.
func matchFeatures(have map[string]bool, want []string) bool {
	for _, w := range want {
		if !have[w] {
			return false
		}
	}
	return true
}

// sortHits orders soonest shows first, nearest second among equal dates.
func sortHits(hits []models.ShowWithDistance) {
	sort.SliceStable(hits, func(i, j int) bool {
		if !hits[i].StartDate.Equal(hits[j].StartDate) {
			return hits[i].StartDate.Before(hits[j].StartDate)
		}
		di, dj := hits[i].DistanceMiles, hits[j].DistanceMiles
		switch {
		case di != nil && dj != nil:
			return *di < *dj
		case di != nil:
			return true
		default:
			return false
		}
	})
}

func pageSlice(hits []models.ShowWithDistance, page, pageSize int) []models.ShowWithDistance {
	start := (page - 1) * pageSize
	if start >= len(hits) {
		return []models.ShowWithDistance{}
	}
	end := start + pageSize
	if end > len(hits) {
		end = len(hits)
	}
	return hits[start:end]
}

// roleRank orders the dealer list: organizer first, MVP dealers next,
// regular dealers last.
func roleRank(role string) int {
	switch role {
	case models.RoleShowOrganizer:
		return 0
	case models.RoleMVPDealer:
		return 1
	default:
		return 2
	}
}

func sortDealers(dealers []models.ShowParticipant) {
	sort.SliceStable(dealers, func(i, j int) bool {
		ri, rj := roleRank(dealers[i].Role), roleRank(dealers[j].Role)
		if ri != rj {
			return ri < rj
		}
		return strings.ToLower(dealers[i].ResolvedName()) < strings.ToLower(dealers[j].ResolvedName())
	})
}
