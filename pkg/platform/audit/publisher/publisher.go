package publisher

import (
	"context"
	"log/slog"
	"sync"

	id "campus/pkg/domain"
	dErrors "campus/pkg/domain-errors"
	audit "campus/pkg/platform/audit"
	"campus/pkg/platform/circuit"
	"campus/pkg/requestcontext"
)

// Publisher captures structured audit events. It is append-only and uses the
// storage layer for persistence so tests can swap sinks easily.
type Publisher struct {
	store   audit.Store
	events  chan audit.Event
	wg      sync.WaitGroup
	logger  *slog.Logger
	async   bool
	breaker *circuit.Breaker
}

type PublisherOption func(*Publisher)

// WithAsyncBuffer enables async processing with the specified buffer size.
// Events are queued and persisted in a background goroutine.
func WithAsyncBuffer(size int) PublisherOption {
	return func(p *Publisher) {
		if size > 0 {
			p.events = make(chan audit.Event, size)
			p.async = true
		}
	}
}

func WithPublisherLogger(logger *slog.Logger) PublisherOption {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// WithBreaker overrides the async worker's circuit breaker.
func WithBreaker(b *circuit.Breaker) PublisherOption {
	return func(p *Publisher) {
		p.breaker = b
	}
}

func NewPublisher(store audit.Store, opts ...PublisherOption) *Publisher {
	p := &Publisher{store: store}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	if p.breaker == nil {
		p.breaker = circuit.New()
	}
	if p.async {
		p.wg.Add(1)
		go p.processEvents()
	}
	return p
}

func (p *Publisher) processEvents() {
	defer p.wg.Done()
	for event := range p.events {
		p.persist(event)
	}
}

// persist stores one queued event. While the store keeps failing the circuit
// is open and events are written to the log so the trail survives the outage.
func (p *Publisher) persist(event audit.Event) {
	err := p.store.Append(context.Background(), event)
	if err == nil {
		if _, t := p.breaker.RecordSuccess(); t == circuit.Closed {
			p.logger.Info("audit store recovered, circuit closed")
		}
		return
	}

	open, t := p.breaker.RecordFailure()
	if t == circuit.Opened {
		p.logger.Error("audit store failing, circuit opened", "error", err)
	}
	if !open {
		p.logger.Error("failed to persist audit event",
			"error", err,
			"action", event.Action,
			"request_id", event.RequestID,
		)
		return
	}
	p.logger.Warn("audit event (store unavailable)",
		"action", event.Action,
		"category", event.Category,
		"occurred_at", event.Timestamp,
		"user_id", event.UserID.String(),
		"decision", event.Decision,
		"reason", event.Reason,
		"email", event.Email,
		"request_id", event.RequestID,
		"client_ip", event.ClientIP,
	)
}

// Close drains pending events. Emit must not be called afterwards.
func (p *Publisher) Close() {
	if p.async && p.events != nil {
		close(p.events)
		p.wg.Wait()
	}
}

// Emit fills in timestamp, category and request metadata, then stores the
// event. In async mode a full buffer drops the event rather than block a login.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.Category == "" {
		event.Category = audit.AuditEvent(event.Action).Category()
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	if !p.async {
		return p.store.Append(ctx, event)
	}
	select {
	case p.events <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		p.logger.WarnContext(ctx, "audit buffer full, event dropped",
			"action", event.Action,
		)
		return dErrors.New(dErrors.CodeInternal, "audit buffer full")
	}
}

func (p *Publisher) List(ctx context.Context, userID id.UserID) ([]audit.Event, error) {
	return p.store.ListByUser(ctx, userID)
}
