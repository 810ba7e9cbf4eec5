package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/minimarket/minimarket/internal/platform/httpx"
	"github.com/minimarket/minimarket/internal/rbac"
	"github.com/minimarket/minimarket/internal/users"
)

// UserFinder looks up accounts for authentication.
type UserFinder interface {
	FindByEmail(ctx context.Context, email string) (users.User, error)
}

// Service wraps authentication business rules.
type Service struct {
	users  UserFinder
	tokens *TokenManager
}

// NewService constructs a new Service.
func NewService(users UserFinder, tokens *TokenManager) *Service {
	return &Service{users: users, tokens: tokens}
}

// Login validates email/password credentials and issues a token.
func (s *Service) Login(ctx context.Context, req LoginRequest) (LoginResponse, error) {
	if err := httpx.ValidateStruct(req); err != nil {
		return LoginResponse{}, err
	}
	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, httpx.ErrNotFound) {
			return LoginResponse{}, ErrInvalidCredentials
		}
		return LoginResponse{}, fmt.Errorf("auth: find user: %w", err)
	}
	if !user.IsActive {
		return LoginResponse{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return LoginResponse{}, ErrInvalidCredentials
	}
	token, expires, err := s.tokens.Issue(user)
	if err != nil {
		return LoginResponse{}, err
	}
	caps := rbac.NormalizeRoles(user.Roles)
	return LoginResponse{
		Token:     token,
		ExpiresAt: expires,
		User: Profile{
			ID:      user.ID,
			Name:    user.Name,
			Email:   user.Email,
			Roles:   caps.Roles,
			IsAdmin: caps.IsAdmin,
		},
	}, nil
}
