package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"riskprofile/pkg/platform/httputil"
)

// HealthChecker is implemented by optional dependencies such as the Redis
// client.
type HealthChecker interface {
	Health(ctx context.Context) error
}

const healthCheckTimeout = 2 * time.Second

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

type HealthHandler struct {
	checks map[string]HealthChecker
	logger *slog.Logger
}

func NewHealthHandler(checks map[string]HealthChecker, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{checks: checks, logger: logger}
}

// ServeHTTP reports 200 when every dependency is healthy and 503 otherwise.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	resp := healthResponse{Status: "ok"}
	status := http.StatusOK
	if len(h.checks) > 0 {
		resp.Checks = make(map[string]string, len(h.checks))
	}
	for name, checker := range h.checks {
		if err := checker.Health(ctx); err != nil {
			h.logger.WarnContext(ctx, "health check failed", "dependency", name, "error", err)
			resp.Checks[name] = "unavailable"
			resp.Status = "degraded"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[name] = "ok"
	}

	httputil.WriteJSON(w, status, resp)
}
