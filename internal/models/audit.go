package models

import "time"

// Admin feedback actions recorded against a pending submission.
const (
	FeedbackActionApprove = "APPROVE"
	FeedbackActionReject  = "REJECT"
	FeedbackActionEdit    = "EDIT"
)

// FeedbackRecord is one append-only audit entry for an admin action.
type FeedbackRecord struct {
	ID        int64     `json:"id"`
	PendingID int64     `json:"pending_id"`
	AdminID   int64     `json:"admin_id"`
	Action    string    `json:"action"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// CoordinateIssue logs a show whose coordinates were missing or out of
// range at write time. Never deleted, only resolved.
type CoordinateIssue struct {
	ID         int64      `json:"id"`
	ShowID     int64      `json:"show_id"`
	Latitude   *float64   `json:"latitude,omitempty"`
	Longitude  *float64   `json:"longitude,omitempty"`
	Issue      string     `json:"issue"`
	CreatedAt  time.Time  `json:"created_at"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
	ResolvedBy *int64     `json:"resolved_by,omitempty"`
}
