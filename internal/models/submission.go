package models

import (
	"encoding/json"
	"time"
)

// Pending submission states. PENDING is the only state that accepts
// transitions; everything else is terminal apart from note annotation.
const (
	SubmissionStatusPending      = "PENDING"
	SubmissionStatusApproved     = "APPROVED"
	SubmissionStatusRejected     = "REJECTED"
	SubmissionStatusExtractError = "EXTRACT_ERROR"
	SubmissionStatusGeocodeError = "GEOCODE_ERROR"
	SubmissionStatusDuplicate    = "DUPLICATE"
)

// SourceWebForm marks submissions arriving via the public web form rather
// than a registered scraper.
const SourceWebForm = "web-form"

// PendingSubmission is an unreviewed candidate show awaiting an admin
// decision. NormalizedPayload, when present, takes precedence over
// RawPayload; GeocodedPayload carries resolved coordinates.
type PendingSubmission struct {
	ID                int64           `json:"id"`
	SourceURL         string          `json:"source_url"`
	RawPayload        json.RawMessage `json:"raw_payload"`
	NormalizedPayload json.RawMessage `json:"normalized_payload,omitempty"`
	GeocodedPayload   json.RawMessage `json:"geocoded_payload,omitempty"`
	Status            string          `json:"status"`
	AdminNotes        *string         `json:"admin_notes,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	ReviewedAt        *time.Time      `json:"reviewed_at,omitempty"`
}

// EffectivePayload resolves the payload the approval pipeline should
// normalize: the admin-edited version when present, otherwise the raw one.
func (p *PendingSubmission) EffectivePayload() json.RawMessage {
	if len(p.NormalizedPayload) > 0 {
		return p.NormalizedPayload
	}
	return p.RawPayload
}

// SubmissionFilter narrows admin review-queue listings.
type SubmissionFilter struct {
	Status   string
	Page     int
	PageSize int
}
