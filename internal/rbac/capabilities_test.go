package rbac

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeRolesShapes(t *testing.T) {
	cases := []struct {
		name  string
		claim any
		admin bool
		roles []string
	}{
		{"string slice", []string{"cashier", "Admin"}, true, []string{"cashier", "admin"}},
		{"named objects", []NamedRole{{Name: "admin"}}, true, []string{"admin"}},
		{"bare string", "admin", true, []string{"admin"}},
		{"bare non admin", "cashier", false, []string{"cashier"}},
		{"nil", nil, false, []string{}},
		{"unsupported", 42, false, []string{}},
		{"duplicates and blanks", []string{"admin", " ADMIN ", ""}, true, []string{"admin"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			caps := NormalizeRoles(tc.claim)
			assert.Equal(t, tc.admin, caps.IsAdmin)
			assert.Equal(t, tc.roles, caps.Roles)
		})
	}
}

func TestNormalizeRolesDecodedJSON(t *testing.T) {
	for raw, admin := range map[string]bool{
		`["admin","cashier"]`:              true,
		`[{"name":"admin"}]`:               true,
		`"admin"`:                          true,
		`[{"name":"cashier"},"warehouse"]`: false,
	} {
		var decoded any
		require.NoError(t, json.Unmarshal([]byte(raw), &decoded))
		assert.Equal(t, admin, NormalizeRoles(decoded).IsAdmin, raw)
		assert.Equal(t, admin, NormalizeRoles(json.RawMessage(raw)).IsAdmin, raw)
	}
}

func TestRequireAdmin(t *testing.T) {
	mw := Middleware{}
	handler := mw.RequireAdmin()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/users/1", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodDelete, "/users/1", nil)
	req = req.WithContext(ContextWithPrincipal(req.Context(), Principal{UserID: 2, Capabilities: NormalizeRoles("cashier")}))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodDelete, "/users/1", nil)
	req = req.WithContext(ContextWithPrincipal(req.Context(), Principal{UserID: 1, Capabilities: NormalizeRoles([]string{"admin"})}))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
