package handler

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"riskprofile/internal/risk"
	"riskprofile/pkg/platform/httputil"
	"riskprofile/pkg/requestcontext"
)

// Service defines the interface for risk profile operations.
type Service interface {
	Evaluate(ctx context.Context, profile risk.UserProfile) (*risk.RiskProfile, error)
}

// Handler wires risk endpoints to the risk service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a risk handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts risk endpoints on the router behind the given route
// middlewares (rate limiting).
func (h *Handler) Register(r chi.Router, middlewares ...func(http.Handler) http.Handler) {
	r.With(middlewares...).Post("/risk_profile", h.HandleRiskProfile)
}

// HandleRiskProfile handles POST /risk_profile requests.
func (h *Handler) HandleRiskProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[RiskProfileRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, err := h.service.Evaluate(ctx, req.ToProfile())
	if err != nil {
		h.logger.WarnContext(ctx, "risk profile evaluation failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "risk profile evaluated",
		"request_id", requestID,
		"umbrella", result.Umbrella.String(),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	httputil.WriteJSON(w, http.StatusOK, result)
}
