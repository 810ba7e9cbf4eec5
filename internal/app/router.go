package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/minimarket/minimarket/internal/auth"
	"github.com/minimarket/minimarket/internal/drafts"
	"github.com/minimarket/minimarket/internal/inventory"
	"github.com/minimarket/minimarket/internal/masterdata"
	"github.com/minimarket/minimarket/internal/observability"
	"github.com/minimarket/minimarket/internal/platform/httpx"
	"github.com/minimarket/minimarket/internal/procurement"
	"github.com/minimarket/minimarket/internal/rbac"
	"github.com/minimarket/minimarket/internal/reports"
	"github.com/minimarket/minimarket/internal/sales"
	"github.com/minimarket/minimarket/internal/users"
	"github.com/minimarket/minimarket/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger  *slog.Logger
	Config  *Config
	Tokens  *auth.TokenManager
	RBAC    rbac.Middleware
	Metrics *observability.Metrics
	Health  http.Handler

	AuthHandler        *auth.Handler
	UsersHandler       *users.Handler
	MasterData         masterdata.Handlers
	ProcurementHandler *procurement.Handler
	SalesHandler       *sales.Handler
	DraftsHandler      *drafts.Handler
	AlertsHandler      *inventory.Handler
	ReportsHandler     *reports.Handler
	JobHandler         *jobs.Handler
}

// NewRouter constructs the chi.Router with the minimarket defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}
	r.Use(chimw.Logger)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		httpx.Problem(w, http.StatusMethodNotAllowed, "Method Not Allowed", "method not allowed")
	})

	if params.Health != nil {
		r.Method(http.MethodGet, "/healthz", params.Health)
	} else {
		r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
			httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	if params.AuthHandler != nil {
		r.Route("/auth", params.AuthHandler.MountRoutes)
	}

	r.Group(func(r chi.Router) {
		r.Use(auth.Authenticate(params.Tokens, params.Logger))
		r.Use(params.RBAC.RequireAuthenticated())

		params.MasterData.MountRoutes(r)
		if params.ProcurementHandler != nil {
			r.Route("/purchases", params.ProcurementHandler.MountRoutes)
		}
		if params.SalesHandler != nil {
			r.Route("/sales", params.SalesHandler.MountRoutes)
		}
		if params.DraftsHandler != nil {
			r.Route("/drafts", params.DraftsHandler.MountRoutes)
		}
		if params.AlertsHandler != nil {
			r.Route("/alerts", params.AlertsHandler.MountRoutes)
		}
		if params.ReportsHandler != nil {
			r.Route("/reports", params.ReportsHandler.MountRoutes)
		}
		if params.UsersHandler != nil {
			r.Route("/users", params.UsersHandler.MountRoutes)
		}
		if params.JobHandler != nil {
			r.Route("/jobs", func(r chi.Router) {
				r.Use(params.RBAC.RequireAdmin())
				params.JobHandler.MountRoutes(r)
			})
		}
	})

	return r
}
