package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"showfinder/internal/models"
	"showfinder/internal/normalize"
	"showfinder/internal/payload"
)

// ApprovalResult carries what the service layer needs after a successful
// approval: the published show and the mailing-list record to notify.
type ApprovalResult struct {
	ShowID    int64
	ShowTitle string
	Organizer *models.OrganizerSubmission
}

// CreateSubmission stores an intake record as PENDING, or as DUPLICATE when
// another still-pending submission already carries the same dedupe key.
// When organizer contact details are present a mailing-list record is
// created alongside (at most one per submission). Scraper-origin
// submissions also register/refresh their scraping source.
func (s *Store) CreateSubmission(ctx context.Context, sourceURL string, raw json.RawMessage, organizerName, organizerEmail string) (*models.PendingSubmission, error) {
	p, err := payload.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	status := models.SubmissionStatusPending
	dedupeKey := submissionDedupeKey(p)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if tx != nil {
			_ = tx.Rollback()
		}
	}()

	if dedupeKey != "" {
		var existing int64
		err := tx.QueryRowContext(ctx, `
			SELECT id
			FROM pending_show_submissions
			WHERE dedupe_key = $1 AND status = 'PENDING'
			LIMIT 1
		`, dedupeKey).Scan(&existing)
		switch {
		case err == nil:
			status = models.SubmissionStatusDuplicate
		case errors.Is(err, sql.ErrNoRows):
			// first sighting
		default:
			return nil, fmt.Errorf("check duplicate: %w", err)
		}
	}

	sub := &models.PendingSubmission{
		SourceURL:  sourceURL,
		RawPayload: raw,
		Status:     status,
	}
	err = tx.QueryRowContext(ctx, `
		INSERT INTO pending_show_submissions (source_url, raw_payload, status, dedupe_key)
		VALUES ($1, $2, $3, NULLIF($4, ''))
		RETURNING id, created_at
	`, sourceURL, string(raw), status, dedupeKey).Scan(&sub.ID, &sub.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert submission: %w", err)
	}

	if organizerEmail != "" {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO organizer_submissions (pending_id, organizer_name, organizer_email, status)
			VALUES ($1, $2, $3, 'PENDING')
		`, sub.ID, organizerName, organizerEmail); err != nil {
			if isUniqueViolation(err) {
				return nil, fmt.Errorf("organizer record already exists for submission %d", sub.ID)
			}
			return nil, fmt.Errorf("insert organizer record: %w", err)
		}
	}

	if sourceURL != models.SourceWebForm {
		if err := touchSourceSuccess(ctx, tx, sourceURL); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	tx = nil

	return sub, nil
}

// CreateExtractError records a scraper delivery whose extraction failed and
// bumps the source's error streak.
func (s *Store) CreateExtractError(ctx context.Context, sourceURL string, raw json.RawMessage, extractErr string) (*models.PendingSubmission, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if tx != nil {
			_ = tx.Rollback()
		}
	}()

	if len(raw) == 0 {
		raw = json.RawMessage(`{}`)
	}
	sub := &models.PendingSubmission{
		SourceURL:  sourceURL,
		RawPayload: raw,
		Status:     models.SubmissionStatusExtractError,
		AdminNotes: &extractErr,
	}
	err = tx.QueryRowContext(ctx, `
		INSERT INTO pending_show_submissions (source_url, raw_payload, status, admin_notes)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, sourceURL, string(raw), sub.Status, extractErr).Scan(&sub.ID, &sub.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert extract-error submission: %w", err)
	}

	if sourceURL != models.SourceWebForm {
		if err := touchSourceError(ctx, tx, sourceURL); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	tx = nil

	return sub, nil
}

// GetSubmission returns one pending submission by id.
func (s *Store) GetSubmission(ctx context.Context, id int64) (*models.PendingSubmission, error) {
	var (
		sub        models.PendingSubmission
		raw        string
		normalized sql.NullString
		geocoded   sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, source_url, raw_payload, normalized_payload, geocoded_payload,
		       status, admin_notes, created_at, reviewed_at
		FROM pending_show_submissions
		WHERE id = $1
	`, id).Scan(&sub.ID, &sub.SourceURL, &raw, &normalized, &geocoded,
		&sub.Status, &sub.AdminNotes, &sub.CreatedAt, &sub.ReviewedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSubmissionNotFound
		}
		return nil, fmt.Errorf("select submission: %w", err)
	}
	sub.RawPayload = json.RawMessage(raw)
	if normalized.Valid {
		sub.NormalizedPayload = json.RawMessage(normalized.String)
	}
	if geocoded.Valid {
		sub.GeocodedPayload = json.RawMessage(geocoded.String)
	}
	return &sub, nil
}

// ListSubmissions returns a page of submissions, newest first, optionally
// filtered by status, plus the unpaged match count.
func (s *Store) ListSubmissions(ctx context.Context, filter models.SubmissionFilter) ([]models.PendingSubmission, int, error) {
	status := filter.Status
	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 20
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM pending_show_submissions
		WHERE ($1 = '' OR status = $1)
	`, status).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count submissions: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source_url, raw_payload, normalized_payload, geocoded_payload,
		       status, admin_notes, created_at, reviewed_at
		FROM pending_show_submissions
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`, status, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("select submissions: %w", err)
	}
	defer rows.Close()

	var subs []models.PendingSubmission
	for rows.Next() {
		var (
			sub        models.PendingSubmission
			raw        string
			normalized sql.NullString
			geocoded   sql.NullString
		)
		if err := rows.Scan(&sub.ID, &sub.SourceURL, &raw, &normalized, &geocoded,
			&sub.Status, &sub.AdminNotes, &sub.CreatedAt, &sub.ReviewedAt); err != nil {
			return nil, 0, fmt.Errorf("scan submission: %w", err)
		}
		sub.RawPayload = json.RawMessage(raw)
		if normalized.Valid {
			sub.NormalizedPayload = json.RawMessage(normalized.String)
		}
		if geocoded.Valid {
			sub.GeocodedPayload = json.RawMessage(geocoded.String)
		}
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate submissions: %w", err)
	}
	return subs, total, nil
}

// EditSubmission overwrites the normalized payload of a still-pending
// submission without advancing its status, and records an EDIT audit entry.
func (s *Store) EditSubmission(ctx context.Context, id, adminID int64, normalized json.RawMessage, adminNotes string) error {
	if _, err := payload.Parse(normalized); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if tx != nil {
			_ = tx.Rollback()
		}
	}()

	sub, err := lockSubmission(ctx, tx, id)
	if err != nil {
		return err
	}
	if sub.Status != models.SubmissionStatusPending {
		return &StateError{Status: sub.Status}
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE pending_show_submissions
		SET normalized_payload = $1,
		    admin_notes = $2
		WHERE id = $3
	`, string(normalized), mergeNotes(sub.AdminNotes, adminNotes), id); err != nil {
		return fmt.Errorf("update submission: %w", err)
	}

	if err := insertFeedback(ctx, tx, id, adminID, models.FeedbackActionEdit, adminNotes); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	tx = nil

	return nil
}

// ApproveSubmission runs the full approval transition in one transaction:
// lock and status-guard the submission, normalize its effective payload,
// upsert the canonical show by natural key, mark the submission APPROVED,
// link the mailing-list record, append the audit entry, and nudge the
// originating source's priority up. Notification enqueue is the caller's
// job and deliberately sits outside this transaction.
func (s *Store) ApproveSubmission(ctx context.Context, id, adminID int64, adminNotes string) (*ApprovalResult, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if tx != nil {
			_ = tx.Rollback()
		}
	}()

	sub, err := lockSubmission(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if sub.Status != models.SubmissionStatusPending {
		return nil, &StateError{Status: sub.Status}
	}

	p, err := payload.Parse(sub.EffectivePayload())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	norm, err := normalize.Show(p)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	normalize.ApplyGeocoded(&norm, sub.GeocodedPayload)

	showID, err := upsertShow(ctx, tx, &norm)
	if err != nil {
		return nil, err
	}

	if norm.CoordinateIssue != "" {
		if err := logCoordinateIssue(ctx, tx, showID, norm.Latitude, norm.Longitude, norm.CoordinateIssue); err != nil {
			return nil, err
		}
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE pending_show_submissions
		SET status = 'APPROVED',
		    reviewed_at = NOW(),
		    admin_notes = $1
		WHERE id = $2
	`, mergeNotes(sub.AdminNotes, adminNotes), id); err != nil {
		return nil, fmt.Errorf("update submission: %w", err)
	}

	organizer, err := linkOrganizer(ctx, tx, id, showID, models.SubmissionStatusApproved)
	if err != nil {
		return nil, err
	}

	if err := insertFeedback(ctx, tx, id, adminID, models.FeedbackActionApprove, adminNotes); err != nil {
		return nil, err
	}

	if sub.SourceURL != models.SourceWebForm {
		if err := adjustSourcePriority(ctx, tx, sub.SourceURL, approvalPriorityDelta); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	tx = nil

	return &ApprovalResult{ShowID: showID, ShowTitle: norm.Title, Organizer: organizer}, nil
}

// RejectSubmission marks a pending submission REJECTED with the given
// reason, audits the action, downgrades the source priority, and updates
// the mailing-list record. No show is created.
func (s *Store) RejectSubmission(ctx context.Context, id, adminID int64, reason string) (*models.OrganizerSubmission, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if tx != nil {
			_ = tx.Rollback()
		}
	}()

	sub, err := lockSubmission(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if sub.Status != models.SubmissionStatusPending {
		return nil, &StateError{Status: sub.Status}
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE pending_show_submissions
		SET status = 'REJECTED',
		    reviewed_at = NOW(),
		    admin_notes = $1
		WHERE id = $2
	`, mergeNotes(sub.AdminNotes, reason), id); err != nil {
		return nil, fmt.Errorf("update submission: %w", err)
	}

	organizer, err := linkOrganizer(ctx, tx, id, 0, models.SubmissionStatusRejected)
	if err != nil {
		return nil, err
	}

	if err := insertFeedback(ctx, tx, id, adminID, models.FeedbackActionReject, reason); err != nil {
		return nil, err
	}

	if sub.SourceURL != models.SourceWebForm {
		if err := adjustSourcePriority(ctx, tx, sub.SourceURL, rejectionPriorityDelta); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	tx = nil

	return organizer, nil
}

// SetGeocodeResult records the outcome of the external geocoding step: a
// payload stores the enriched record, an empty one marks GEOCODE_ERROR for
// manual intervention.
func (s *Store) SetGeocodeResult(ctx context.Context, id int64, geocoded json.RawMessage) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if tx != nil {
			_ = tx.Rollback()
		}
	}()

	sub, err := lockSubmission(ctx, tx, id)
	if err != nil {
		return err
	}
	if sub.Status != models.SubmissionStatusPending {
		return &StateError{Status: sub.Status}
	}

	if len(geocoded) > 0 {
		if _, err := payload.Parse(geocoded); err != nil {
			return fmt.Errorf("%w: %v", ErrValidation, err)
		}
		if _, err := tx.ExecContext(ctx, `
			UPDATE pending_show_submissions
			SET geocoded_payload = $1
			WHERE id = $2
		`, string(geocoded), id); err != nil {
			return fmt.Errorf("update geocoded payload: %w", err)
		}
	} else {
		if _, err := tx.ExecContext(ctx, `
			UPDATE pending_show_submissions
			SET status = 'GEOCODE_ERROR'
			WHERE id = $1
		`, id); err != nil {
			return fmt.Errorf("mark geocode error: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	tx = nil

	return nil
}

// lockSubmission loads a submission row with FOR UPDATE so the caller's
// status guard serializes concurrent transitions.
func lockSubmission(ctx context.Context, tx *sql.Tx, id int64) (*models.PendingSubmission, error) {
	var (
		sub        models.PendingSubmission
		raw        string
		normalized sql.NullString
		geocoded   sql.NullString
	)
	err := tx.QueryRowContext(ctx, `
		SELECT id, source_url, raw_payload, normalized_payload, geocoded_payload, status, admin_notes
		FROM pending_show_submissions
		WHERE id = $1
		FOR UPDATE
	`, id).Scan(&sub.ID, &sub.SourceURL, &raw, &normalized, &geocoded, &sub.Status, &sub.AdminNotes)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSubmissionNotFound
		}
		return nil, fmt.Errorf("lock submission: %w", err)
	}
	sub.RawPayload = json.RawMessage(raw)
	if normalized.Valid {
		sub.NormalizedPayload = json.RawMessage(normalized.String)
	}
	if geocoded.Valid {
		sub.GeocodedPayload = json.RawMessage(geocoded.String)
	}
	return &sub, nil
}

// linkOrganizer updates the mailing-list record for a decided submission.
// Returns nil when no organizer record exists.
func linkOrganizer(ctx context.Context, tx *sql.Tx, pendingID, showID int64, status string) (*models.OrganizerSubmission, error) {
	var showArg any
	if showID > 0 {
		showArg = showID
	}
	var rec models.OrganizerSubmission
	err := tx.QueryRowContext(ctx, `
		UPDATE organizer_submissions
		SET show_id = $1, status = $2
		WHERE pending_id = $3
		RETURNING id, pending_id, organizer_name, organizer_email, show_id, status, created_at
	`, showArg, status, pendingID).Scan(&rec.ID, &rec.PendingID, &rec.OrganizerName,
		&rec.OrganizerEmail, &rec.ShowID, &rec.Status, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("link organizer record: %w", err)
	}
	return &rec, nil
}

func insertFeedback(ctx context.Context, tx *sql.Tx, pendingID, adminID int64, action, notes string) error {
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO admin_feedback (pending_id, admin_id, action, notes)
		VALUES ($1, $2, $3, $4)
	`, pendingID, adminID, action, notes); err != nil {
		return fmt.Errorf("insert audit record: %w", err)
	}
	return nil
}

// mergeNotes appends new admin notes to any existing ones.
func mergeNotes(existing *string, notes string) string {
	notes = strings.TrimSpace(notes)
	if existing == nil || strings.TrimSpace(*existing) == "" {
		return notes
	}
	if notes == "" {
		return *existing
	}
	return *existing + "\n" + notes
}

// submissionDedupeKey derives the natural key used to flag duplicate
// pending submissions: normalized title plus start date. Payloads too
// malformed to yield a key are never flagged as duplicates.
func submissionDedupeKey(p payload.Untrusted) string {
	norm, err := normalize.Show(p)
	if err != nil {
		return ""
	}
	return strings.ToLower(norm.Title) + "|" + norm.StartDate.Format(time.DateOnly)
}
