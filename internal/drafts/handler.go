package drafts

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/minimarket/minimarket/internal/platform/httpx"
	"github.com/minimarket/minimarket/internal/rbac"
	"github.com/minimarket/minimarket/internal/routes"
)

// Handler exposes draft sessions over HTTP.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds a draft handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers draft routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/", h.handleCreate)
	r.Get("/{id}", h.handleShow)
	r.Patch("/{id}", h.handleHeader)
	r.Delete("/{id}", h.handleCancel)
	r.Post("/{id}/items", h.handleAddItem)
	r.Patch("/{id}/items/{index}", h.handleUpdateItem)
	r.Delete("/{id}/items/{index}", h.handleRemoveItem)
	r.Post("/{id}/submit", h.handleSubmit)
}

func owner(r *http.Request) int64 {
	p, _ := rbac.PrincipalFromContext(r.Context())
	return p.UserID
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	view, err := h.service.Create(r.Context(), owner(r), req)
	if err != nil {
		h.fail(w, "create draft", err)
		return
	}
	if loc, err := routes.Resolve("drafts.show", view.ID); err == nil {
		w.Header().Set("Location", loc)
	}
	httpx.JSON(w, http.StatusCreated, view)
}

func (h *Handler) handleShow(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Get(r.Context(), owner(r), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, "get draft", err)
		return
	}
	httpx.JSON(w, http.StatusOK, view)
}

func (h *Handler) handleHeader(w http.ResponseWriter, r *http.Request) {
	var req HeaderRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	view, err := h.service.UpdateHeader(r.Context(), owner(r), chi.URLParam(r, "id"), req)
	if err != nil {
		h.fail(w, "update draft header", err)
		return
	}
	httpx.JSON(w, http.StatusOK, view)
}

func (h *Handler) handleCancel(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Cancel(r.Context(), owner(r), chi.URLParam(r, "id")); err != nil {
		h.fail(w, "cancel draft", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleAddItem(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.AddItem(r.Context(), owner(r), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, "add draft item", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, view)
}

func (h *Handler) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	index, err := httpx.URLParamInt(r, "index")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req UpdateItemRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	view, err := h.service.UpdateItem(r.Context(), owner(r), chi.URLParam(r, "id"), index, req)
	if err != nil {
		h.fail(w, "update draft item", err)
		return
	}
	httpx.JSON(w, http.StatusOK, view)
}

func (h *Handler) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	index, err := httpx.URLParamInt(r, "index")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	view, err := h.service.RemoveItem(r.Context(), owner(r), chi.URLParam(r, "id"), index)
	if err != nil {
		h.fail(w, "remove draft item", err)
		return
	}
	httpx.JSON(w, http.StatusOK, view)
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Submit(r.Context(), owner(r), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, "submit draft", err)
		return
	}
	w.Header().Set("Location", result.Location)
	httpx.JSON(w, http.StatusCreated, result)
}

func (h *Handler) fail(w http.ResponseWriter, msg string, err error) {
	if !httpx.IsClientError(err) {
		h.logger.Error(msg, slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
