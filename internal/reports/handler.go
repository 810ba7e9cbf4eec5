package reports

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/minimarket/minimarket/internal/platform/httpx"
	"github.com/minimarket/minimarket/internal/reports/export"
)

// Handler serves report data and exports.
type Handler struct {
	logger  *slog.Logger
	service *Service
	sinks   *export.Sinks
}

// NewHandler builds a report handler.
func NewHandler(logger *slog.Logger, service *Service, sinks *export.Sinks) *Handler {
	return &Handler{logger: logger, service: service, sinks: sinks}
}

// MountRoutes registers report routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/dashboard", h.handleDashboard)
	r.Get("/{report}", h.handleShow)
	r.Get("/{report}/export", h.handleExport)
}

func parseRange(r *http.Request) (Range, error) {
	from, err := httpx.QueryDate(r, "from")
	if err != nil {
		return Range{}, err
	}
	to, err := httpx.QueryDate(r, "to")
	if err != nil {
		return Range{}, err
	}
	if from != nil && to != nil && to.Before(*from) {
		return Range{}, httpx.FieldErrors{"to": "must not be before from"}
	}
	return Range{From: from, To: to}, nil
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	rng, err := parseRange(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	dashboard, err := h.service.Dashboard(r.Context(), rng)
	if err != nil {
		h.fail(w, "load dashboard", err)
		return
	}
	httpx.JSON(w, http.StatusOK, dashboard)
}

func (h *Handler) handleShow(w http.ResponseWriter, r *http.Request) {
	name, err := ParseName(chi.URLParam(r, "report"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	rng, err := parseRange(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	data, err := h.service.Load(r.Context(), name, rng)
	if err != nil {
		h.fail(w, "load report", err)
		return
	}
	httpx.JSON(w, http.StatusOK, data)
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	name, err := ParseName(chi.URLParam(r, "report"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	rng, err := parseRange(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "pdf"
	}
	writer, err := h.sinks.For(format)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	doc, err := h.service.Document(r.Context(), name, rng)
	if err != nil {
		h.fail(w, "load report", err)
		return
	}
	buf := &bytes.Buffer{}
	if err := writer.Write(r.Context(), buf, doc); err != nil {
		h.logger.Error("export report", slog.String("report", string(name)), slog.String("format", format), slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "Export Failed", "the document could not be generated")
		return
	}
	w.Header().Set("Content-Type", writer.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename(doc.Title, writer.Extension())))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (h *Handler) fail(w http.ResponseWriter, msg string, err error) {
	if !httpx.IsClientError(err) {
		h.logger.Error(msg, slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
