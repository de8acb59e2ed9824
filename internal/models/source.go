package models

import "time"

// ScrapingSource is a registered scrape origin. PriorityScore is a bounded
// reinforcement signal (0-100): approvals nudge it up, rejections down.
type ScrapingSource struct {
	URL           string     `json:"url"`
	PriorityScore int        `json:"priority_score"`
	LastSuccessAt *time.Time `json:"last_success_at,omitempty"`
	LastErrorAt   *time.Time `json:"last_error_at,omitempty"`
	ErrorStreak   int        `json:"error_streak"`
	Enabled       bool       `json:"enabled"`
	CreatedAt     time.Time  `json:"created_at"`
}
