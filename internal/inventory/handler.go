package inventory

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/minimarket/minimarket/internal/platform/httpx"
	"github.com/minimarket/minimarket/internal/rbac"
)

// Handler wires HTTP endpoints for the alert widgets.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs inventory handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers alert routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/stock", h.handleStock)
	r.Get("/expiry", h.handleExpiry)
	r.Post("/{kind}/dismiss", h.handleDismiss)
}

func (h *Handler) handleStock(w http.ResponseWriter, r *http.Request) {
	p, _ := rbac.PrincipalFromContext(r.Context())
	widget, err := h.service.StockAlerts(r.Context(), p.UserID)
	if err != nil {
		h.logger.Error("stock alerts", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, widget)
}

func (h *Handler) handleExpiry(w http.ResponseWriter, r *http.Request) {
	p, _ := rbac.PrincipalFromContext(r.Context())
	widget, err := h.service.ExpiryAlerts(r.Context(), p.UserID)
	if err != nil {
		h.logger.Error("expiry alerts", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, widget)
}

func (h *Handler) handleDismiss(w http.ResponseWriter, r *http.Request) {
	p, _ := rbac.PrincipalFromContext(r.Context())
	kind := AlertKind(chi.URLParam(r, "kind"))
	if err := h.service.Dismiss(r.Context(), p.UserID, kind); err != nil {
		if errors.Is(err, ErrUnknownAlertKind) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
			return
		}
		h.logger.Error("dismiss alert", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"kind": kind, "dismissed": true})
}
