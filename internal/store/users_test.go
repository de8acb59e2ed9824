package store

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"showfinder/internal/auth"
)

func TestCreateUser_Validation(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()
	s := New(db)

	tests := []struct {
		name     string
		username string
		password string
	}{
		{name: "empty username", username: "", password: "secret"},
		{name: "whitespace username", username: "   ", password: "secret"},
		{name: "empty password", username: "collector", password: ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := s.CreateUser(context.Background(), tc.username, tc.password, ""); err == nil {
				t.Error("CreateUser succeeded, want error")
			}
		})
	}
}

func TestAuthenticate(t *testing.T) {
	hash, err := auth.HashPassword("correct horse")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}

	userRows := func() *sqlmock.Rows {
		return sqlmock.NewRows([]string{"id", "username", "role", "password_hash", "created_at"}).
			AddRow(int64(3), "collector", "user", hash, time.Now())
	}

	t.Run("valid credentials", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		if err != nil {
			t.Fatalf("sqlmock.New: %v", err)
		}
		defer db.Close()

		mock.ExpectQuery(regexp.QuoteMeta("FROM users")).
			WithArgs("collector").
			WillReturnRows(userRows())

		user, err := New(db).Authenticate(context.Background(), "collector", "correct horse")
		if err != nil {
			t.Fatalf("Authenticate: %v", err)
		}
		if user.ID != 3 || user.Role != "user" {
			t.Errorf("user = %+v", user)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		if err != nil {
			t.Fatalf("sqlmock.New: %v", err)
		}
		defer db.Close()

		mock.ExpectQuery(regexp.QuoteMeta("FROM users")).
			WithArgs("collector").
			WillReturnRows(userRows())

		if _, err := New(db).Authenticate(context.Background(), "collector", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("err = %v, want ErrInvalidCredentials", err)
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		if err != nil {
			t.Fatalf("sqlmock.New: %v", err)
		}
		defer db.Close()

		mock.ExpectQuery(regexp.QuoteMeta("FROM users")).
			WithArgs("ghost").
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		if _, err := New(db).Authenticate(context.Background(), "ghost", "whatever"); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("err = %v, want ErrInvalidCredentials", err)
		}
	})
}
