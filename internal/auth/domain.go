package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/minimarket/minimarket/internal/platform/httpx"
)

// ErrInvalidCredentials is returned for unknown emails, wrong passwords and inactive accounts alike.
var ErrInvalidCredentials = fmt.Errorf("invalid credentials: %w", httpx.ErrUnauthorized)

// ErrInvalidToken is returned when a bearer token cannot be verified.
var ErrInvalidToken = fmt.Errorf("invalid token: %w", httpx.ErrUnauthorized)

// Claims is the JWT payload. Roles is left untyped because issuers differ in
// how they encode it; rbac.NormalizeRoles interprets it.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	Roles any    `json:"roles"`
}

// LoginRequest is the credential payload for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Profile is the caller's identity as exposed to clients.
type Profile struct {
	ID      int64    `json:"id"`
	Name    string   `json:"name,omitempty"`
	Email   string   `json:"email"`
	Roles   []string `json:"roles"`
	IsAdmin bool     `json:"is_admin"`
}

// LoginResponse carries the issued token.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      Profile   `json:"user"`
}
