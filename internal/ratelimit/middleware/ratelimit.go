package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"riskprofile/internal/ratelimit/metrics"
	"riskprofile/internal/ratelimit/models"
	dErrors "riskprofile/pkg/domain-errors"
	"riskprofile/pkg/platform/audit"
	"riskprofile/pkg/platform/circuit"
	"riskprofile/pkg/platform/httputil"
	"riskprofile/pkg/requestcontext"
)

// BucketStore is a sliding-window counter keyed by client and route.
type BucketStore interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.RateLimitResult, error)
}

const (
	headerLimit     = "X-RateLimit-Limit"
	headerRemaining = "X-RateLimit-Remaining"
	headerReset     = "X-RateLimit-Reset"
	headerStatus    = "X-RateLimit-Status"
	statusDegraded  = "degraded"
)

type Middleware struct {
	primary  BucketStore
	fallback BucketStore
	breaker  *circuit.Breaker
	limit    int
	window   time.Duration
	logger   *slog.Logger
	metrics  *metrics.Metrics
	auditor  audit.Emitter
	disabled bool
}

type Option func(*Middleware)

// WithDisabled disables rate limiting entirely (for testing/demo mode).
func WithDisabled(disabled bool) Option {
	return func(m *Middleware) {
		m.disabled = disabled
	}
}

// WithFallback sets the store used while the primary's circuit is open.
func WithFallback(store BucketStore) Option {
	return func(m *Middleware) {
		m.fallback = store
	}
}

func WithBreaker(b *circuit.Breaker) Option {
	return func(m *Middleware) {
		m.breaker = b
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(mw *Middleware) {
		mw.metrics = m
	}
}

// WithAuditor emits a security audit event for every rejected request.
func WithAuditor(e audit.Emitter) Option {
	return func(m *Middleware) {
		m.auditor = e
	}
}

// New builds the middleware. A nil primary makes the fallback the only store.
func New(primary BucketStore, limit int, window time.Duration, logger *slog.Logger, opts ...Option) *Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Middleware{
		primary: primary,
		limit:   limit,
		window:  window,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.breaker == nil {
		m.breaker = circuit.New("ratelimit", circuit.WithCooldown(5*time.Second))
	}
	if m.disabled {
		logger.Info("rate limiting disabled")
	}
	return m
}

// RateLimit limits each client IP to limit requests per window on route.
// Store failures never reject a request.
func (m *Middleware) RateLimit(route string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if m.disabled {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			ip := requestcontext.ClientIP(ctx)
			if ip == "" {
				ip = "unknown"
			}
			key := models.NewIPRateLimitKey(ip, route)

			result, degraded, err := m.check(ctx, key)
			if degraded {
				w.Header().Set(headerStatus, statusDegraded)
			}
			if err != nil {
				m.logger.ErrorContext(ctx, "failed to check IP rate limit", "error", err, "route", route)
				m.metrics.IncrementDecision(route, "error")
				next.ServeHTTP(w, r)
				return
			}

			addRateLimitHeaders(w, result)

			if !result.Allowed {
				m.metrics.IncrementDecision(route, "denied")
				m.emitExceeded(ctx, ip, route, result)
				writeRateLimitExceeded(w, result)
				return
			}

			m.metrics.IncrementDecision(route, "allowed")
			next.ServeHTTP(w, r)
		})
	}
}

// check consults the primary store unless its circuit is open, falling back
// to the in-memory store on error. degraded reports that the answer did not
// come from a healthy primary.
func (m *Middleware) check(ctx context.Context, key string) (result *models.RateLimitResult, degraded bool, err error) {
	if m.primary != nil && m.breaker.AllowPrimary() {
		result, err = m.primary.Allow(ctx, key, m.limit, m.window)
		if err == nil {
			usePrimary, change := m.breaker.RecordSuccess()
			if change.Closed {
				m.logger.InfoContext(ctx, "rate limit store recovered, circuit closed")
				m.metrics.SetDegraded(false)
			}
			return result, !usePrimary, nil
		}

		m.metrics.IncrementPrimaryFailures()
		_, change := m.breaker.RecordFailure()
		if change.Opened {
			m.logger.WarnContext(ctx, "rate limit store failing, circuit opened", "error", err)
			m.metrics.SetDegraded(true)
		}
		if m.fallback == nil {
			return nil, true, err
		}
	}

	if m.fallback == nil {
		return nil, false, fmt.Errorf("no rate limit store available")
	}
	result, err = m.fallback.Allow(ctx, key, m.limit, m.window)
	return result, m.primary != nil, err
}

func (m *Middleware) emitExceeded(ctx context.Context, ip, route string, result *models.RateLimitResult) {
	if m.auditor == nil {
		return
	}
	err := m.auditor.Emit(ctx, audit.Event{
		Action:    string(audit.EventRateLimitExceeded),
		RequestID: requestcontext.RequestID(ctx),
		ClientIP:  ip,
		Decision:  "denied",
		Attributes: map[string]string{
			"route":       route,
			"limit":       strconv.Itoa(result.Limit),
			"retry_after": strconv.Itoa(result.RetryAfter),
		},
	})
	if err != nil {
		m.logger.WarnContext(ctx, "failed to emit rate limit audit event", "error", err)
	}
}

func addRateLimitHeaders(w http.ResponseWriter, result *models.RateLimitResult) {
	if result == nil {
		return
	}
	w.Header().Set(headerLimit, strconv.Itoa(result.Limit))
	w.Header().Set(headerRemaining, strconv.Itoa(result.Remaining))
	w.Header().Set(headerReset, strconv.FormatInt(result.ResetAt.Unix(), 10))
}

func writeRateLimitExceeded(w http.ResponseWriter, result *models.RateLimitResult) {
	w.Header().Set("Retry-After", strconv.Itoa(result.RetryAfter))
	httputil.WriteError(w, dErrors.New(dErrors.CodeRateLimited,
		fmt.Sprintf("too many requests, retry after %d seconds", result.RetryAfter)))
}
