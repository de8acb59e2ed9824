package store

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"showfinder/internal/models"
)

const lockColumns = "id, source_url, raw_payload, normalized_payload, geocoded_payload, status, admin_notes"

func lockRow(id int64, sourceURL, raw, status string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "source_url", "raw_payload", "normalized_payload", "geocoded_payload", "status", "admin_notes"}).
		AddRow(id, sourceURL, raw, nil, nil, status, nil)
}

func TestApproveSubmission_AlreadyDecided(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(lockColumns)).
		WithArgs(int64(7)).
		WillReturnRows(lockRow(7, "https://scraper.example.com", `{"title":"x"}`, models.SubmissionStatusApproved))
	mock.ExpectRollback()

	s := New(db)
	_, err = s.ApproveSubmission(context.Background(), 7, 9, "")

	var stateErr *StateError
	if !errors.As(err, &stateErr) {
		t.Fatalf("err = %v, want StateError", err)
	}
	if stateErr.Error() != "show already APPROVED" {
		t.Errorf("message = %q, want %q", stateErr.Error(), "show already APPROVED")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestApproveSubmission_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(lockColumns)).
		WithArgs(int64(404)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	s := New(db)
	if _, err := s.ApproveSubmission(context.Background(), 404, 9, ""); !errors.Is(err, ErrSubmissionNotFound) {
		t.Fatalf("err = %v, want ErrSubmissionNotFound", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestApproveSubmission_ValidationFailureAborts(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	// Payload with no parseable start date: normalization must fail and the
	// transaction must roll back without touching the shows table.
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(lockColumns)).
		WithArgs(int64(7)).
		WillReturnRows(lockRow(7, "https://scraper.example.com", `{"title":"Undated"}`, models.SubmissionStatusPending))
	mock.ExpectRollback()

	s := New(db)
	if _, err := s.ApproveSubmission(context.Background(), 7, 9, ""); !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestApproveSubmission_CreatesShowAndReinforcesSource(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	const sourceURL = "https://cardshows.example.com"
	raw := `{"title": "Tri-State Card Expo", "startDate": "2025-10-04", "venueName": "Expo Hall"}`

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(lockColumns)).
		WithArgs(int64(7)).
		WillReturnRows(lockRow(7, sourceURL, raw, models.SubmissionStatusPending))

	// No existing show under the natural key, so a fresh row is inserted.
	mock.ExpectQuery(`SELECT id\s+FROM shows`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO shows")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(42)))

	// The payload carried no coordinates, so the audit log gets an entry.
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO coordinate_issues")).
		WithArgs(int64(42), nil, nil, "missing coordinates").
		WillReturnResult(sqlmock.NewResult(1, 1))

	mock.ExpectExec(regexp.QuoteMeta("UPDATE pending_show_submissions")).
		WithArgs("looks good", int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE organizer_submissions")).
		WillReturnError(sql.ErrNoRows)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO admin_feedback")).
		WithArgs(int64(7), int64(9), models.FeedbackActionApprove, "looks good").
		WillReturnResult(sqlmock.NewResult(1, 1))

	mock.ExpectQuery(regexp.QuoteMeta("SELECT priority_score")).
		WithArgs(sourceURL).
		WillReturnRows(sqlmock.NewRows([]string{"priority_score"}).AddRow(50))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE scraping_sources")).
		WithArgs(52, sourceURL).
		WillReturnResult(sqlmock.NewResult(0, 1))

	mock.ExpectCommit()

	s := New(db)
	result, err := s.ApproveSubmission(context.Background(), 7, 9, "looks good")
	if err != nil {
		t.Fatalf("ApproveSubmission: %v", err)
	}
	if result.ShowID != 42 {
		t.Errorf("ShowID = %d, want 42", result.ShowID)
	}
	if result.ShowTitle != "Tri-State Card Expo" {
		t.Errorf("ShowTitle = %q", result.ShowTitle)
	}
	if result.Organizer != nil {
		t.Errorf("Organizer = %+v, want nil without mailing-list record", result.Organizer)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestRejectSubmission_DowngradesSource(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	const sourceURL = "https://cardshows.example.com"

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(lockColumns)).
		WithArgs(int64(7)).
		WillReturnRows(lockRow(7, sourceURL, `{"title":"x"}`, models.SubmissionStatusPending))

	mock.ExpectExec(regexp.QuoteMeta("UPDATE pending_show_submissions")).
		WithArgs("duplicate listing", int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE organizer_submissions")).
		WillReturnError(sql.ErrNoRows)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO admin_feedback")).
		WithArgs(int64(7), int64(9), models.FeedbackActionReject, "duplicate listing").
		WillReturnResult(sqlmock.NewResult(1, 1))

	// Score 1 with a -3 delta clamps at the floor.
	mock.ExpectQuery(regexp.QuoteMeta("SELECT priority_score")).
		WithArgs(sourceURL).
		WillReturnRows(sqlmock.NewRows([]string{"priority_score"}).AddRow(1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE scraping_sources")).
		WithArgs(0, sourceURL).
		WillReturnResult(sqlmock.NewResult(0, 1))

	mock.ExpectCommit()

	s := New(db)
	organizer, err := s.RejectSubmission(context.Background(), 7, 9, "duplicate listing")
	if err != nil {
		t.Fatalf("RejectSubmission: %v", err)
	}
	if organizer != nil {
		t.Errorf("organizer = %+v, want nil", organizer)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestRejectSubmission_WebFormSkipsPriority(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(lockColumns)).
		WithArgs(int64(7)).
		WillReturnRows(lockRow(7, models.SourceWebForm, `{"title":"x"}`, models.SubmissionStatusPending))

	mock.ExpectExec(regexp.QuoteMeta("UPDATE pending_show_submissions")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE organizer_submissions")).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO admin_feedback")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	s := New(db)
	if _, err := s.RejectSubmission(context.Background(), 7, 9, "spam"); err != nil {
		t.Fatalf("RejectSubmission: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestSetGeocodeResult_EmptyPayloadMarksError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(lockColumns)).
		WithArgs(int64(7)).
		WillReturnRows(lockRow(7, models.SourceWebForm, `{"title":"x"}`, models.SubmissionStatusPending))
	mock.ExpectExec(regexp.QuoteMeta("SET status = 'GEOCODE_ERROR'")).
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	s := New(db)
	if err := s.SetGeocodeResult(context.Background(), 7, nil); err != nil {
		t.Fatalf("SetGeocodeResult: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestMergeNotes(t *testing.T) {
	existing := "first pass"
	tests := []struct {
		name     string
		existing *string
		notes    string
		want     string
	}{
		{name: "no existing", existing: nil, notes: "new", want: "new"},
		{name: "appends", existing: &existing, notes: "second pass", want: "first pass\nsecond pass"},
		{name: "keeps existing on empty", existing: &existing, notes: "  ", want: "first pass"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := mergeNotes(tc.existing, tc.notes); got != tc.want {
				t.Errorf("mergeNotes = %q, want %q", got, tc.want)
			}
		})
	}
}
