// Package publisher emits telemetry events. Emission is best-effort: a
// failed write is logged and never fails the business operation.
package publisher

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"keyworker/pkg/domain"
	audit "keyworker/pkg/platform/audit"
)

// ErrBufferFull is returned by Emit in async mode when the buffer is full.
var ErrBufferFull = errors.New("audit buffer full")

type Publisher struct {
	store  audit.Store
	logger *slog.Logger

	buffer chan audit.Event
	wg     sync.WaitGroup
	once   sync.Once
}

type Option func(*Publisher)

// WithAsyncBuffer makes Emit non-blocking; a background goroutine drains
// events into the store.
func WithAsyncBuffer(size int) Option {
	return func(p *Publisher) {
		if size > 0 {
			p.buffer = make(chan audit.Event, size)
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func NewPublisher(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{store: store, logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(p)
	}
	if p.buffer != nil {
		p.wg.Add(1)
		go p.drain()
	}
	return p
}

// Emit records the event, stamping the current time when unset.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if p.buffer == nil {
		if err := p.store.Append(ctx, event); err != nil {
			p.logger.WarnContext(ctx, "telemetry event not recorded",
				"action", event.Action,
				"error", err,
			)
			return err
		}
		return nil
	}
	select {
	case p.buffer <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		p.logger.WarnContext(ctx, "telemetry buffer full, dropping event", "action", event.Action)
		return ErrBufferFull
	}
}

// List returns events recorded for a prisoner.
func (p *Publisher) List(ctx context.Context, person domain.PersonIdentifier) ([]audit.Event, error) {
	return p.store.ListByPerson(ctx, person)
}

// DeletePerson erases a prisoner's audit trail.
func (p *Publisher) DeletePerson(ctx context.Context, person domain.PersonIdentifier) (int64, error) {
	return p.store.DeletePerson(ctx, person)
}

// Close drains any buffered events and stops the background writer.
func (p *Publisher) Close() {
	p.once.Do(func() {
		if p.buffer != nil {
			close(p.buffer)
			p.wg.Wait()
		}
	})
}

func (p *Publisher) drain() {
	defer p.wg.Done()
	for event := range p.buffer {
		if err := p.store.Append(context.Background(), event); err != nil {
			p.logger.Warn("telemetry event not recorded",
				"action", event.Action,
				"error", err,
			)
		}
	}
}
