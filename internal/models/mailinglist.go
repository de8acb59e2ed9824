package models

import "time"

// OrganizerSubmission links a pending submission to the organizer contact
// that sent it, and once approved, to the resulting show. At most one record
// exists per pending submission.
type OrganizerSubmission struct {
	ID             int64     `json:"id"`
	PendingID      int64     `json:"pending_id"`
	OrganizerName  string    `json:"organizer_name"`
	OrganizerEmail string    `json:"organizer_email"`
	ShowID         *int64    `json:"show_id,omitempty"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
}

// MailingListFilter narrows admin mailing-list queries.
type MailingListFilter struct {
	Status   string
	Page     int
	PageSize int
}

// MailingListResult is a page of organizer contact records.
type MailingListResult struct {
	Data       []OrganizerSubmission `json:"data"`
	Pagination Pagination            `json:"pagination"`
}
