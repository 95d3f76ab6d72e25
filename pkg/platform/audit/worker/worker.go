package worker

import (
	"context"
	"log/slog"

	audit "riskprofile/pkg/platform/audit"
)

// Worker consumes audit events from a channel and persists them. A failing
// store does not stop the worker; the failure is logged and reported.
type Worker struct {
	store     audit.Store
	inbox     <-chan audit.Event
	logger    *slog.Logger
	onFailure func(audit.Event, error)
}

type Option func(*Worker)

func WithLogger(logger *slog.Logger) Option {
	return func(w *Worker) {
		w.logger = logger
	}
}

// WithFailureHook is called after every failed Append.
func WithFailureHook(fn func(audit.Event, error)) Option {
	return func(w *Worker) {
		w.onFailure = fn
	}
}

func NewWorker(store audit.Store, inbox <-chan audit.Event, opts ...Option) *Worker {
	w := &Worker{store: store, inbox: inbox, logger: slog.Default()}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run persists events until the inbox is closed or ctx is done.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.inbox:
			if !ok {
				return nil
			}
			w.persist(ctx, event)
		}
	}
}

func (w *Worker) persist(ctx context.Context, event audit.Event) {
	if err := w.store.Append(ctx, event); err != nil {
		w.logger.ErrorContext(ctx, "failed to persist audit event",
			"action", event.Action,
			"request_id", event.RequestID,
			"error", err,
		)
		if w.onFailure != nil {
			w.onFailure(event, err)
		}
	}
}
