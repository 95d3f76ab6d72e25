package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EventCategory classifies audit events by their primary purpose.
// This enables different retention policies and routing per sink.
type EventCategory string

const (
	// CategoryCompliance covers events with regulatory significance, such as
	// the risk profile an applicant was quoted against.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers events relevant to abuse monitoring.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers routine events useful for debugging.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	ID        uuid.UUID
	Category  EventCategory
	Timestamp time.Time
	Action    string
	// RequestID is the correlation ID from the HTTP request context.
	RequestID string
	ClientIP  string
	// Decision is the headline result, e.g. the umbrella outcome.
	Decision string
	// Attributes carry action-specific detail such as per-line outcomes.
	Attributes map[string]string
}

type AuditEvent string

const (
	EventRiskProfileEvaluated AuditEvent = "risk_profile_evaluated"
	EventRiskProfileRejected  AuditEvent = "risk_profile_rejected"
	EventRateLimitExceeded    AuditEvent = "rate_limit_exceeded"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventRiskProfileEvaluated: CategoryCompliance,
	EventRiskProfileRejected:  CategoryOperations,
	EventRateLimitExceeded:    CategorySecurity,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
}

// Emitter is the write side used by domain services.
type Emitter interface {
	Emit(ctx context.Context, event Event) error
}
