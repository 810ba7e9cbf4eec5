package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/minimarket/minimarket/internal/auth"
	"github.com/minimarket/minimarket/internal/rbac"
	"github.com/minimarket/minimarket/internal/users"
	_ "github.com/minimarket/minimarket/testing"
)

const secret = "test-secret"

type stubUsers struct {
	user *users.User
}

func (s stubUsers) FindByEmail(_ context.Context, email string) (users.User, error) {
	if s.user == nil || s.user.Email != email {
		return users.User{}, users.ErrNotFound
	}
	return *s.user, nil
}

func newUser(t *testing.T, roles ...string) *users.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	return &users.User{ID: 7, Name: "Budi", Email: "budi@shop.id", PasswordHash: string(hash), Roles: roles, IsActive: true}
}

func newRouter(t *testing.T, finder auth.UserFinder) (http.Handler, *auth.TokenManager) {
	t.Helper()
	tokens, err := auth.NewTokenManager(secret, time.Hour)
	require.NoError(t, err)
	r := chi.NewRouter()
	r.Route("/auth", auth.NewHandler(nil, auth.NewService(finder, tokens), tokens, nil).MountRoutes)
	return r, tokens
}

func TestLoginIssuesTokenWithRoles(t *testing.T) {
	router, tokens := newRouter(t, stubUsers{user: newUser(t, "admin")})

	body := strings.NewReader(`{"email":"budi@shop.id","password":"password123"}`)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodPost, "/auth/login", body))
	require.Equal(t, http.StatusOK, res.Code)

	var resp auth.LoginResponse
	require.NoError(t, json.NewDecoder(res.Body).Decode(&resp))
	assert.True(t, resp.User.IsAdmin)

	p, err := tokens.Parse(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), p.UserID)
	assert.Equal(t, []string{"admin"}, p.Capabilities.Roles)
	assert.True(t, p.Capabilities.IsAdmin)
}

func TestLoginWrongPassword(t *testing.T) {
	router, _ := newRouter(t, stubUsers{user: newUser(t)})

	body := strings.NewReader(`{"email":"budi@shop.id","password":"nope"}`)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodPost, "/auth/login", body))
	assert.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestLoginUnknownEmail(t *testing.T) {
	router, _ := newRouter(t, stubUsers{})

	body := strings.NewReader(`{"email":"who@shop.id","password":"password123"}`)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodPost, "/auth/login", body))
	assert.Equal(t, http.StatusUnauthorized, res.Code)
}

func signForeign(t *testing.T, roles any) string {
	t.Helper()
	claims := jwt.MapClaims{
		"iss":   "minimarket",
		"sub":   "11",
		"exp":   time.Now().Add(time.Hour).Unix(),
		"email": "x@shop.id",
		"roles": roles,
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return raw
}

func TestParseAcceptsAllRoleShapes(t *testing.T) {
	tokens, err := auth.NewTokenManager(secret, time.Hour)
	require.NoError(t, err)

	cases := map[string]any{
		"strings": []string{"staff", "Admin"},
		"objects": []map[string]string{{"name": "staff"}, {"name": "admin"}},
		"bare":    "admin",
	}
	for name, roles := range cases {
		t.Run(name, func(t *testing.T) {
			p, err := tokens.Parse(signForeign(t, roles))
			require.NoError(t, err)
			assert.True(t, p.Capabilities.IsAdmin)
		})
	}

	p, err := tokens.Parse(signForeign(t, []string{"staff"}))
	require.NoError(t, err)
	assert.False(t, p.Capabilities.IsAdmin)
}

func TestMeRequiresToken(t *testing.T) {
	router, tokens := newRouter(t, stubUsers{})

	res := httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/auth/me", nil))
	assert.Equal(t, http.StatusUnauthorized, res.Code)

	token, _, err := tokens.Issue(users.User{ID: 3, Email: "s@shop.id", Roles: []string{"staff"}})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	res = httptest.NewRecorder()
	router.ServeHTTP(res, req)
	require.Equal(t, http.StatusOK, res.Code)

	var profile auth.Profile
	require.NoError(t, json.NewDecoder(res.Body).Decode(&profile))
	assert.Equal(t, int64(3), profile.ID)
	assert.False(t, profile.IsAdmin)
}

func TestAdminGateWithToken(t *testing.T) {
	tokens, err := auth.NewTokenManager(secret, time.Hour)
	require.NoError(t, err)
	r := chi.NewRouter()
	r.With(auth.Authenticate(tokens, nil), rbac.Middleware{}.RequireAdmin()).Get("/admin", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	staff, _, err := tokens.Issue(users.User{ID: 1, Roles: []string{"staff"}})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+staff)
	res := httptest.NewRecorder()
	r.ServeHTTP(res, req)
	assert.Equal(t, http.StatusForbidden, res.Code)

	admin, _, err := tokens.Issue(users.User{ID: 2, Roles: []string{"admin"}})
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+admin)
	res = httptest.NewRecorder()
	r.ServeHTTP(res, req)
	assert.Equal(t, http.StatusNoContent, res.Code)
}
