package risk

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"riskprofile/internal/risk/metrics"
	"riskprofile/internal/risk/ports"
	dErrors "riskprofile/pkg/domain-errors"
	"riskprofile/pkg/platform/audit"
	"riskprofile/pkg/requestcontext"
)

const tracerName = "riskprofile/internal/risk"

// Service runs evaluations for the HTTP layer and reports on them.
// The rule pipeline itself stays pure; the service adds time, tracing,
// metrics and audit.
type Service struct {
	rules   Rules
	logger  *slog.Logger
	metrics *metrics.Metrics
	auditor ports.AuditPort
	tracer  trace.Tracer
}

type Option func(*Service)

func WithRules(rules Rules) Option {
	return func(s *Service) {
		s.rules = rules
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithAuditor(auditor ports.AuditPort) Option {
	return func(s *Service) {
		s.auditor = auditor
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tracer
	}
}

func NewService(opts ...Option) *Service {
	s := &Service{
		rules:  DefaultRules(),
		logger: slog.Default(),
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Evaluate computes the risk profile for p. The evaluation time comes from
// the request context so every rule sees the same "now".
func (s *Service) Evaluate(ctx context.Context, p UserProfile) (*RiskProfile, error) {
	start := time.Now()
	asOf := requestcontext.Now(ctx)

	ctx, span := s.tracer.Start(ctx, "risk.Evaluate", trace.WithAttributes(
		attribute.Int("risk.vehicles", len(p.Vehicles)),
		attribute.Int("risk.houses", len(p.Houses)),
		attribute.Int("risk.as_of_year", asOf.Year()),
	))
	defer span.End()

	eval, err := EvaluateStages(p, s.rules, asOf, s.tracedStage(ctx))
	s.metrics.ObserveEvaluateLatency(time.Since(start))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "evaluation failed")
		s.recordFailure(ctx, err)
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("risk.base_risk", eval.BaseRisk),
		attribute.StringSlice("risk.rules_applied", eval.Applied),
		attribute.String("risk.umbrella", eval.Profile.Umbrella.String()),
	)
	s.recordSuccess(ctx, eval)
	return eval.Profile, nil
}

// tracedStage runs each pipeline stage in its own child span.
func (s *Service) tracedStage(ctx context.Context) StageFunc {
	return func(stage Stage, run func() error) error {
		_, span := s.tracer.Start(ctx, "risk.stage."+string(stage))
		defer span.End()
		if err := run(); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, string(stage)+" failed")
			return err
		}
		return nil
	}
}

func (s *Service) recordSuccess(ctx context.Context, eval *Evaluation) {
	s.metrics.IncrementEvaluation("ok")
	profile := eval.Profile
	for _, line := range profile.Lines() {
		outcome, _ := profile.Line(line)
		s.recordOutcome(line, outcome)
	}
	s.recordOutcome(LineUmbrella, profile.Umbrella)

	summary := profile.Summary()
	s.logger.DebugContext(ctx, "risk profile evaluated",
		"request_id", requestcontext.RequestID(ctx),
		"base_risk", eval.BaseRisk,
		"rules_applied", eval.Applied,
		"umbrella", summary[LineUmbrella.String()],
	)
	s.emitAudit(ctx, audit.Event{
		Action:     string(audit.EventRiskProfileEvaluated),
		RequestID:  requestcontext.RequestID(ctx),
		ClientIP:   requestcontext.ClientIP(ctx),
		Decision:   profile.Umbrella.String(),
		Attributes: summary,
	})
}

func (s *Service) recordOutcome(line Line, outcome LineOutcome) {
	switch {
	case outcome.Ineligible():
		s.metrics.IncrementLineOutcome(line.String(), ineligibleLiteral)
	case outcome.kind == kindItems:
		for _, item := range outcome.items {
			s.metrics.IncrementLineOutcome(line.String(), item.Value.String())
		}
	default:
		s.metrics.IncrementLineOutcome(line.String(), outcome.category.String())
	}
}

func (s *Service) recordFailure(ctx context.Context, err error) {
	if errors.Is(err, ErrInvalidProfile) {
		s.metrics.IncrementEvaluation("invalid_profile")
		s.logger.InfoContext(ctx, "risk profile rejected",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		s.emitAudit(ctx, audit.Event{
			Action:     string(audit.EventRiskProfileRejected),
			RequestID:  requestcontext.RequestID(ctx),
			ClientIP:   requestcontext.ClientIP(ctx),
			Decision:   string(dErrors.CodeInvalidProfile),
			Attributes: map[string]string{"reason": err.Error()},
		})
		return
	}
	s.metrics.IncrementEvaluation("error")
	s.logger.ErrorContext(ctx, "risk evaluation failed",
		"request_id", requestcontext.RequestID(ctx),
		"error", err,
	)
}

// emitAudit never fails the evaluation; a lost audit event is logged and
// counted.
func (s *Service) emitAudit(ctx context.Context, event audit.Event) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.Emit(ctx, event); err != nil {
		s.metrics.IncrementAuditFailure()
		s.logger.WarnContext(ctx, "failed to emit audit event",
			"action", event.Action,
			"request_id", event.RequestID,
			"error", err,
		)
	}
}
