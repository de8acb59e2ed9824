package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"showfinder/internal/auth"
	"showfinder/internal/models"
)

// Constant-cost comparison target for unknown usernames.
var dummyPasswordHash = []byte("$2a$10$CwTycUXWue0Thq9StjUM0uJ8n4VWeNseyX2fA9DE.D7su7J6iYGTC")

// CreateUser registers a new account with the given role.
func (s *Store) CreateUser(ctx context.Context, username, password, role string) (int64, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return 0, fmt.Errorf("username and password are required")
	}
	if role == "" {
		role = models.AccountRoleUser
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return 0, err
	}

	var userID int64
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO users (username, password_hash, role)
		VALUES ($1, $2, $3)
		RETURNING id
	`, username, hash, role).Scan(&userID)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrUserExists
		}
		return 0, fmt.Errorf("insert user: %w", err)
	}
	return userID, nil
}

// Authenticate validates credentials and returns the account for token
// issuance.
func (s *Store) Authenticate(ctx context.Context, username, password string) (models.User, error) {
	var (
		user models.User
		hash []byte
	)

	err := s.db.QueryRowContext(ctx, `
		SELECT id, username, role, password_hash, created_at
		FROM users
		WHERE username = $1
	`, username).Scan(&user.ID, &user.Username, &user.Role, &hash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			_ = auth.VerifyPassword(password, dummyPasswordHash)
			return models.User{}, ErrInvalidCredentials
		}
		return models.User{}, fmt.Errorf("lookup user: %w", err)
	}

	if err := auth.VerifyPassword(password, hash); err != nil {
		return models.User{}, ErrInvalidCredentials
	}
	return user, nil
}
