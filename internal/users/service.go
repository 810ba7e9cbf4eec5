package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/minimarket/minimarket/internal/platform/db"
	"github.com/minimarket/minimarket/internal/platform/httpx"
	"github.com/minimarket/minimarket/internal/rbac"
)

const defaultRole = "staff"

// Service handles user business logic.
type Service struct {
	repo Repository
	cost int
}

// NewService builds Service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, cost: bcrypt.DefaultCost}
}

// List returns all users.
func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.repo.List(ctx)
}

// Get returns a single user.
func (s *Service) Get(ctx context.Context, id int64) (User, error) {
	return s.repo.Get(ctx, id)
}

// FindByEmail is used by the login flow.
func (s *Service) FindByEmail(ctx context.Context, email string) (User, error) {
	return s.repo.FindByEmail(ctx, strings.TrimSpace(email))
}

// Create validates the request, hashes the password and stores the account.
func (s *Service) Create(ctx context.Context, req CreateRequest) (User, error) {
	if err := httpx.ValidateStruct(req); err != nil {
		return User{}, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return User{}, fmt.Errorf("users: hash password: %w", err)
	}
	u, err := s.repo.Create(ctx, User{
		Name:         strings.TrimSpace(req.Name),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: string(hash),
		Roles:        normalizeRoles(req.Roles),
		IsActive:     true,
	})
	return u, mapWriteErr(err)
}

// Update applies profile changes.
func (s *Service) Update(ctx context.Context, id int64, req UpdateRequest) (User, error) {
	if err := httpx.ValidateStruct(req); err != nil {
		return User{}, err
	}
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return User{}, err
	}
	current.Name = strings.TrimSpace(req.Name)
	current.Email = strings.ToLower(strings.TrimSpace(req.Email))
	current.Roles = normalizeRoles(req.Roles)
	if req.IsActive != nil {
		current.IsActive = *req.IsActive
	}
	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
		if err != nil {
			return User{}, fmt.Errorf("users: hash password: %w", err)
		}
		current.PasswordHash = string(hash)
	}
	u, err := s.repo.Update(ctx, current)
	return u, mapWriteErr(err)
}

// Delete removes an account; admins cannot delete themselves.
func (s *Service) Delete(ctx context.Context, actorID, id int64) error {
	if actorID == id {
		return httpx.FieldErrors{"id": "cannot delete your own account"}
	}
	return s.repo.Delete(ctx, id)
}

func normalizeRoles(roles []string) []string {
	caps := rbac.NormalizeRoles(roles)
	if len(caps.Roles) == 0 {
		return []string{defaultRole}
	}
	return caps.Roles
}

func mapWriteErr(err error) error {
	switch {
	case err == nil:
		return nil
	case db.IsUniqueViolation(err, ""):
		return httpx.FieldErrors{"email": "is already registered"}
	case errors.Is(err, ErrNotFound):
		return err
	default:
		return fmt.Errorf("users: write: %w", err)
	}
}
