package ports

//go:generate mockgen -source=audit.go -destination=mocks/mocks.go -package=mocks AuditPort

import (
	"context"

	"riskprofile/pkg/platform/audit"
)

// AuditPort emits audit events for completed evaluations.
// It matches audit.Emitter but is declared here to keep the risk module
// independent of the publisher wiring.
type AuditPort interface {
	Emit(ctx context.Context, event audit.Event) error
}
