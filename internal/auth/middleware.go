package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/minimarket/minimarket/internal/platform/httpx"
	"github.com/minimarket/minimarket/internal/rbac"
)

// Authenticate resolves the bearer token into an rbac.Principal on the request context.
func Authenticate(tokens *TokenManager, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			scheme, raw, ok := strings.Cut(header, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(raw) == "" {
				httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "missing bearer token")
				return
			}
			principal, err := tokens.Parse(strings.TrimSpace(raw))
			if err != nil {
				if logger != nil {
					logger.Debug("reject token", slog.Any("error", err))
				}
				httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "invalid or expired token")
				return
			}
			next.ServeHTTP(w, r.WithContext(rbac.ContextWithPrincipal(r.Context(), principal)))
		})
	}
}
