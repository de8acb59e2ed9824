// Package store provides persistence backed by Postgres. Store methods own
// their transactions; multi-step admin transitions lock the submission row
// with SELECT ... FOR UPDATE so concurrent decisions serialize on the
// status guard.
package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrSubmissionNotFound signals the referenced pending submission does not exist.
	ErrSubmissionNotFound = errors.New("submission not found")
	// ErrShowNotFound signals the referenced show does not exist.
	ErrShowNotFound = errors.New("show not found")
	// ErrUserExists signals the username is already taken.
	ErrUserExists = errors.New("user already exists")
	// ErrInvalidCredentials indicates a login failure.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrValidation wraps normalization failures that must abort an approval.
	ErrValidation = errors.New("validation failed")
)

// StateError reports a transition attempted on a submission that has
// already been decided. Re-approving or re-rejecting is an error, not a
// no-op, and the message names the current status.
type StateError struct {
	Status string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("show already %s", e.Status)
}

// Store provides persistence backed by Postgres.
type Store struct {
	db *sql.DB
}

// New sets up a Store using the provided database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
