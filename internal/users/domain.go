package users

import (
	"fmt"
	"time"

	"github.com/minimarket/minimarket/internal/platform/httpx"
)

// ErrNotFound is returned when a user does not exist.
var ErrNotFound = fmt.Errorf("user %w", httpx.ErrNotFound)

// User represents a staff account for management.
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Roles        []string  `json:"roles"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CreateRequest is the payload for a new account.
type CreateRequest struct {
	Name     string   `json:"name" validate:"required,max=120"`
	Email    string   `json:"email" validate:"required,email"`
	Password string   `json:"password" validate:"required,min=8"`
	Roles    []string `json:"roles" validate:"omitempty,dive,oneof=admin staff"`
}

// UpdateRequest changes profile fields; an empty password keeps the old one.
type UpdateRequest struct {
	Name     string   `json:"name" validate:"required,max=120"`
	Email    string   `json:"email" validate:"required,email"`
	Password string   `json:"password" validate:"omitempty,min=8"`
	Roles    []string `json:"roles" validate:"omitempty,dive,oneof=admin staff"`
	IsActive *bool    `json:"is_active"`
}
