// Package publisher fronts an audit store with optional async buffering and
// sampling of operations events.
package publisher

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	audit "riskprofile/pkg/platform/audit"
	"riskprofile/pkg/platform/audit/worker"
)

var (
	ErrBufferFull = errors.New("audit buffer full")
	ErrClosed     = errors.New("audit publisher closed")
)

// Publisher stamps and forwards audit events. In sync mode Emit writes
// through to the store; with an async buffer a background worker persists
// events and Close drains what is left.
type Publisher struct {
	store   audit.Store
	logger  *slog.Logger
	metrics *Metrics
	sampler *Sampler
	now     func() time.Time

	bufferSize int
	mu         sync.RWMutex
	queue      chan audit.Event
	closed     bool
	done       chan struct{}
}

type Option func(*Publisher)

// WithAsyncBuffer enables async mode with a buffer of size events.
func WithAsyncBuffer(size int) Option {
	return func(p *Publisher) {
		p.bufferSize = size
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func WithMetrics(m *Metrics) Option {
	return func(p *Publisher) {
		p.metrics = m
	}
}

// WithSampler samples operations-category events. Compliance and security
// events are always kept.
func WithSampler(s *Sampler) Option {
	return func(p *Publisher) {
		p.sampler = s
	}
}

func WithClock(now func() time.Time) Option {
	return func(p *Publisher) {
		p.now = now
	}
}

func NewPublisher(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{
		store:  store,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.bufferSize > 0 {
		p.queue = make(chan audit.Event, p.bufferSize)
		p.done = make(chan struct{})
		w := worker.NewWorker(store, p.queue,
			worker.WithLogger(p.logger),
			worker.WithFailureHook(func(audit.Event, error) { p.metrics.incPersistFailures() }),
		)
		go func() {
			defer close(p.done)
			_ = w.Run(context.Background())
		}()
	}
	return p
}

// Emit stamps the event and hands it to the store. Missing ID, timestamp and
// category are filled in.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = p.now()
	}
	if event.Category == "" {
		event.Category = audit.AuditEvent(event.Action).Category()
	}
	if p.sampler != nil && event.Category == audit.CategoryOperations && !p.sampler.ShouldSample(event.Action) {
		p.metrics.incSampled()
		return nil
	}

	if p.queue == nil {
		if err := p.store.Append(ctx, event); err != nil {
			p.metrics.incPersistFailures()
			return err
		}
		p.metrics.incEmitted()
		return nil
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}
	select {
	case p.queue <- event:
		p.metrics.incEmitted()
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		p.metrics.incDropped()
		p.logger.WarnContext(ctx, "audit buffer full, dropping event",
			"action", event.Action,
			"request_id", event.RequestID,
		)
		return ErrBufferFull
	}
}

// Close stops accepting events and waits for buffered ones to be persisted.
// It is safe to call more than once.
func (p *Publisher) Close() {
	if p.queue == nil {
		return
	}
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()
	<-p.done
}
