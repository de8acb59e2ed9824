package models

import "time"

// Show lifecycle states. Only ACTIVE shows are surfaced by search.
const (
	ShowStatusActive    = "ACTIVE"
	ShowStatusCancelled = "CANCELLED"
	ShowStatusCompleted = "COMPLETED"
)

// ScheduleEntry is a single day of a multi-day show with its own hours.
// Times are wall-clock strings ("08:00") interpreted in Timezone.
type ScheduleEntry struct {
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Timezone  string `json:"timezone,omitempty"`
	Notes     string `json:"notes,omitempty"`
}

// Show is the canonical published entity, created exactly once per approval.
type Show struct {
	ID            int64           `json:"id"`
	Title         string          `json:"title"`
	Description   string          `json:"description,omitempty"`
	Location      string          `json:"location"` // venue / location name
	Address       string          `json:"address"`
	ImageURL      *string         `json:"image_url,omitempty"`
	WebsiteURL    *string         `json:"website_url,omitempty"`
	StartDate     time.Time       `json:"start_date"`
	EndDate       time.Time       `json:"end_date"`
	DailySchedule []ScheduleEntry `json:"daily_schedule,omitempty"`
	EntryFee      *float64        `json:"entry_fee,omitempty"`
	Latitude      *float64        `json:"latitude,omitempty"`
	Longitude     *float64        `json:"longitude,omitempty"`
	Status        string          `json:"status"`
	Features      map[string]bool `json:"features"`
	Categories    []string        `json:"categories"`
	OrganizerID   *int64          `json:"organizer_id,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// ShowWithDistance decorates a search hit with the computed distance from
// the query point. DistanceMiles is nil when distance filtering is disabled
// or the show has no stored coordinates.
type ShowWithDistance struct {
	Show
	DistanceMiles *float64 `json:"distance_miles,omitempty"`
}

// Pagination carries the page metadata returned by list endpoints.
type Pagination struct {
	TotalCount  int `json:"total_count"`
	PageSize    int `json:"page_size"`
	CurrentPage int `json:"current_page"`
	TotalPages  int `json:"total_pages"`
}

// NewPagination computes page metadata. An empty result still reports one
// total page so clients never divide by zero.
func NewPagination(totalCount, page, pageSize int) Pagination {
	if pageSize <= 0 {
		pageSize = 20
	}
	if page <= 0 {
		page = 1
	}
	guarded := totalCount
	if guarded < 1 {
		guarded = 1
	}
	return Pagination{
		TotalCount:  totalCount,
		PageSize:    pageSize,
		CurrentPage: page,
		TotalPages:  (guarded + pageSize - 1) / pageSize,
	}
}

// ShowSearchParams captures the spatial + temporal + attribute filter for
// paginated show search. Zero-value fields fall back to defaults at the
// service layer.
type ShowSearchParams struct {
	Latitude    float64
	Longitude   float64
	RadiusMiles float64
	StartDate   time.Time
	EndDate     time.Time
	MaxEntryFee *float64
	Categories  []string // any-match
	Features    []string // subset-match: every key must be present and truthy
	Page        int
	PageSize    int
}

// ShowSearchResult is the search response payload.
type ShowSearchResult struct {
	Data       []ShowWithDistance `json:"data"`
	Pagination Pagination         `json:"pagination"`
}
