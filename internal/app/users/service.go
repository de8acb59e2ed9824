// Package users handles account signup and token issuance.
package users

import (
	"context"

	"showfinder/internal/auth"
	"showfinder/internal/models"
)

// Store defines persistence operations for accounts.
type Store interface {
	CreateUser(ctx context.Context, username, password, role string) (int64, error)
	Authenticate(ctx context.Context, username, password string) (models.User, error)
}

// Service coordinates account workflows.
type Service interface {
	Signup(ctx context.Context, username, password string) error
	Login(ctx context.Context, username, password string) (string, error)
}

type service struct {
	store  Store
	tokens *auth.TokenManager
}

// New constructs a users Service issuing tokens with the given manager.
func New(store Store, tokens *auth.TokenManager) Service {
	return &service{store: store, tokens: tokens}
}

func (s *service) Signup(ctx context.Context, username, password string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := s.store.CreateUser(ctx, username, password, models.AccountRoleUser)
	return err
}

func (s *service) Login(ctx context.Context, username, password string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	user, err := s.store.Authenticate(ctx, username, password)
	if err != nil {
		return "", err
	}
	return s.tokens.Generate(user.ID, user.Role)
}
