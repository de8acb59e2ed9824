// Package submissions coordinates intake and the admin approval workflow.
package submissions

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rs/zerolog/log"

	"showfinder/internal/models"
	"showfinder/internal/notify"
	"showfinder/internal/store"
)

// ErrReasonRequired signals a rejection without a reason string.
var ErrReasonRequired = errors.New("rejection reason is required")

// Store defines persistence operations for pending submissions.
type Store interface {
	CreateSubmission(ctx context.Context, sourceURL string, raw json.RawMessage, organizerName, organizerEmail string) (*models.PendingSubmission, error)
	CreateExtractError(ctx context.Context, sourceURL string, raw json.RawMessage, extractErr string) (*models.PendingSubmission, error)
	GetSubmission(ctx context.Context, id int64) (*models.PendingSubmission, error)
	ListSubmissions(ctx context.Context, filter models.SubmissionFilter) ([]models.PendingSubmission, int, error)
	EditSubmission(ctx context.Context, id, adminID int64, normalized json.RawMessage, adminNotes string) error
	ApproveSubmission(ctx context.Context, id, adminID int64, adminNotes string) (*store.ApprovalResult, error)
	RejectSubmission(ctx context.Context, id, adminID int64, reason string) (*models.OrganizerSubmission, error)
	SetGeocodeResult(ctx context.Context, id int64, geocoded json.RawMessage) error
}

// Notifier enqueues organizer notifications. Failures never propagate to
// the admin transition that triggered them.
type Notifier interface {
	Publish(ctx context.Context, queue string, event notify.OrganizerEvent) error
}

// Service coordinates submission intake and review.
type Service interface {
	Submit(ctx context.Context, sourceURL string, raw json.RawMessage, organizerName, organizerEmail string) (*models.PendingSubmission, error)
	SubmitExtractError(ctx context.Context, sourceURL string, raw json.RawMessage, extractErr string) (*models.PendingSubmission, error)
	Get(ctx context.Context, id int64) (*models.PendingSubmission, error)
	List(ctx context.Context, filter models.SubmissionFilter) ([]models.PendingSubmission, models.Pagination, error)
	Edit(ctx context.Context, id, adminID int64, normalized json.RawMessage, adminNotes string) error
	Approve(ctx context.Context, id, adminID int64, adminNotes string) (int64, error)
	Reject(ctx context.Context, id, adminID int64, reason string) error
	RecordGeocodeResult(ctx context.Context, id int64, geocoded json.RawMessage) error
}

type service struct {
	store    Store
	notifier Notifier
}

// New constructs a submissions Service. The notifier may be nil.
func New(store Store, notifier Notifier) Service {
	return &service{store: store, notifier: notifier}
}

func (s *service) Submit(ctx context.Context, sourceURL string, raw json.RawMessage, organizerName, organizerEmail string) (*models.PendingSubmission, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if sourceURL == "" {
		sourceURL = models.SourceWebForm
	}
	return s.store.CreateSubmission(ctx, sourceURL, raw, organizerName, organizerEmail)
}

func (s *service) SubmitExtractError(ctx context.Context, sourceURL string, raw json.RawMessage, extractErr string) (*models.PendingSubmission, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.CreateExtractError(ctx, sourceURL, raw, extractErr)
}

func (s *service) Get(ctx context.Context, id int64) (*models.PendingSubmission, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.GetSubmission(ctx, id)
}

func (s *service) List(ctx context.Context, filter models.SubmissionFilter) ([]models.PendingSubmission, models.Pagination, error) {
	if err := ctx.Err(); err != nil {
		return nil, models.Pagination{}, err
	}
	subs, total, err := s.store.ListSubmissions(ctx, filter)
	if err != nil {
		return nil, models.Pagination{}, err
	}
	return subs, models.NewPagination(total, filter.Page, filter.PageSize), nil
}

func (s *service) Edit(ctx context.Context, id, adminID int64, normalized json.RawMessage, adminNotes string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.store.EditSubmission(ctx, id, adminID, normalized, adminNotes)
}

func (s *service) Approve(ctx context.Context, id, adminID int64, adminNotes string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	result, err := s.store.ApproveSubmission(ctx, id, adminID, adminNotes)
	if err != nil {
		return 0, err
	}

	// Best effort, after commit: a broker outage must not undo an approval.
	if s.notifier != nil && result.Organizer != nil {
		event := notify.OrganizerEvent{
			PendingID:      id,
			ShowID:         result.ShowID,
			ShowTitle:      result.ShowTitle,
			OrganizerName:  result.Organizer.OrganizerName,
			OrganizerEmail: result.Organizer.OrganizerEmail,
		}
		if err := s.notifier.Publish(ctx, notify.QueueSubmissionApproved, event); err != nil {
			log.Warn().Err(err).Int64("pending_id", id).Msg("approval notification enqueue failed")
		}
	}

	return result.ShowID, nil
}

func (s *service) Reject(ctx context.Context, id, adminID int64, reason string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if reason == "" {
		return ErrReasonRequired
	}

	organizer, err := s.store.RejectSubmission(ctx, id, adminID, reason)
	if err != nil {
		return err
	}

	if s.notifier != nil && organizer != nil {
		event := notify.OrganizerEvent{
			PendingID:      id,
			OrganizerName:  organizer.OrganizerName,
			OrganizerEmail: organizer.OrganizerEmail,
			Reason:         reason,
		}
		if err := s.notifier.Publish(ctx, notify.QueueSubmissionRejected, event); err != nil {
			log.Warn().Err(err).Int64("pending_id", id).Msg("rejection notification enqueue failed")
		}
	}

	return nil
}

func (s *service) RecordGeocodeResult(ctx context.Context, id int64, geocoded json.RawMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.store.SetGeocodeResult(ctx, id, geocoded)
}
