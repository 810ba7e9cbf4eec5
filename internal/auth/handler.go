package auth

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/minimarket/minimarket/internal/platform/httpx"
	"github.com/minimarket/minimarket/internal/rbac"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger  *slog.Logger
	service *Service
	tokens  *TokenManager
	limiter func(http.Handler) http.Handler
}

// NewHandler constructs a Handler instance. limiter wraps the login route and may be nil.
func NewHandler(logger *slog.Logger, service *Service, tokens *TokenManager, limiter func(http.Handler) http.Handler) *Handler {
	return &Handler{logger: logger, service: service, tokens: tokens, limiter: limiter}
}

// MountRoutes registers auth routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		if h.limiter != nil {
			r.Use(h.limiter)
		}
		r.Post("/login", h.handleLogin)
	})
	r.With(Authenticate(h.tokens, h.logger)).Get("/me", h.handleMe)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	resp, err := h.service.Login(r.Context(), req)
	if err != nil {
		if !httpx.IsClientError(err) && h.logger != nil {
			h.logger.Error("login", slog.Any("error", err))
		}
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, resp)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	p, _ := rbac.PrincipalFromContext(r.Context())
	httpx.JSON(w, http.StatusOK, Profile{
		ID:      p.UserID,
		Email:   p.Email,
		Roles:   p.Capabilities.Roles,
		IsAdmin: p.Capabilities.IsAdmin,
	})
}
