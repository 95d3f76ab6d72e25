// Package logstore writes audit events to a structured logger. It is the
// fallback sink when no broker is configured.
package logstore

import (
	"context"
	"log/slog"

	audit "riskprofile/pkg/platform/audit"
)

type Store struct {
	logger *slog.Logger
}

func New(logger *slog.Logger) *Store {
	return &Store{logger: logger}
}

func (s *Store) Append(ctx context.Context, event audit.Event) error {
	attrs := []any{
		"event_id", event.ID.String(),
		"category", string(event.Category),
		"action", event.Action,
		"request_id", event.RequestID,
		"decision", event.Decision,
		"timestamp", event.Timestamp,
	}
	if len(event.Attributes) > 0 {
		group := make([]any, 0, len(event.Attributes)*2)
		for k, v := range event.Attributes {
			group = append(group, k, v)
		}
		attrs = append(attrs, slog.Group("attributes", group...))
	}
	s.logger.InfoContext(ctx, "audit event", attrs...)
	return nil
}
