package app

import (
	"context"
	"net/http"
	"time"

	"github.com/minimarket/minimarket/internal/platform/httpx"
)

// Pinger is a dependency the health check probes.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

// Ping calls f.
func (f PingFunc) Ping(ctx context.Context) error {
	return f(ctx)
}

// HealthCheck reports the status of each named dependency. Dependencies listed
// in optional only degrade the status; the others make the endpoint return 503.
type HealthCheck struct {
	Checks   map[string]Pinger
	Optional map[string]bool
	Timeout  time.Duration
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// ServeHTTP implements http.Handler.
func (h HealthCheck) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	timeout := h.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeout)
	defer cancel()

	resp := healthResponse{Status: "ok", Checks: make(map[string]string, len(h.Checks))}
	status := http.StatusOK
	for name, check := range h.Checks {
		if err := check.Ping(ctx); err != nil {
			resp.Checks[name] = "down: " + err.Error()
			if h.Optional[name] {
				if resp.Status == "ok" {
					resp.Status = "degraded"
				}
				continue
			}
			resp.Status = "down"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[name] = "ok"
	}
	httpx.JSON(w, status, resp)
}
