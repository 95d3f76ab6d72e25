package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	platformmetrics "riskprofile/internal/platform/metrics"
	ratelimitmw "riskprofile/internal/ratelimit/middleware"
	riskhandler "riskprofile/internal/risk/handler"
	dErrors "riskprofile/pkg/domain-errors"
	"riskprofile/pkg/platform/httputil"
	"riskprofile/pkg/platform/middleware/metadata"
	"riskprofile/pkg/platform/middleware/requesttime"
)

// RiskRoute is the rate limit bucket name for POST /risk_profile.
const RiskRoute = "risk_profile"

// RouterDeps carries everything NewRouter mounts. Only Risk is required.
type RouterDeps struct {
	Logger       *slog.Logger
	Risk         *riskhandler.Handler
	RateLimit    *ratelimitmw.Middleware
	Metrics      *platformmetrics.Metrics
	Gatherer     prometheus.Gatherer
	HealthChecks map[string]HealthChecker
	// Clock pins the evaluation time of each request; nil means time.Now.
	Clock func() time.Time
}

// NewRouter wires all public endpoints and the shared middleware chain.
func NewRouter(deps RouterDeps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(metadata.ClientMetadata)
	r.Use(chimw.Recoverer)
	r.Use(requesttime.MiddlewareWithClock(clock))
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Middleware)
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "route not found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteError(w, dErrors.New(dErrors.CodeMethodNotAllowed, "method not allowed"))
	})

	var riskMiddlewares []func(http.Handler) http.Handler
	if deps.RateLimit != nil {
		riskMiddlewares = append(riskMiddlewares, deps.RateLimit.RateLimit(RiskRoute))
	}
	deps.Risk.Register(r, riskMiddlewares...)

	r.Get("/health", NewHealthHandler(deps.HealthChecks, logger).ServeHTTP)
	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	return r
}
