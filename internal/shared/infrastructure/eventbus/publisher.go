package eventbus

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/felixgeelhaar/gestaches/internal/shared/domain"
)

// Publisher defines the interface for publishing events to a message broker.
type Publisher interface {
	// Publish sends a message to the event bus.
	Publish(ctx context.Context, routingKey string, payload []byte) error

	// Close closes the publisher connection.
	Close() error
}

// Encode wraps a domain event in the wire envelope. The event's exported
// fields become the payload.
func Encode(event domain.DomainEvent) ([]byte, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}
	return json.Marshal(&ConsumedEvent{
		EventID:       event.EventID(),
		AggregateID:   event.AggregateID(),
		AggregateType: event.AggregateType(),
		RoutingKey:    event.RoutingKey(),
		OccurredAt:    event.OccurredAt(),
		Payload:       payload,
	})
}

// PublishDomainEvents encodes and publishes each event in order. Every event
// is attempted; the joined errors are returned.
func PublishDomainEvents(ctx context.Context, p Publisher, events []domain.DomainEvent) error {
	var errs []error
	for _, event := range events {
		body, err := Encode(event)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := p.Publish(ctx, event.RoutingKey(), body); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// MultiPublisher fans a message out to several publishers. A failing
// publisher is logged and does not stop delivery to the others.
type MultiPublisher struct {
	publishers []Publisher
	logger     *slog.Logger
}

// NewMultiPublisher creates a fan-out publisher. Nil entries are skipped.
func NewMultiPublisher(logger *slog.Logger, publishers ...Publisher) *MultiPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	m := &MultiPublisher{logger: logger}
	for _, p := range publishers {
		if p != nil {
			m.publishers = append(m.publishers, p)
		}
	}
	return m
}

// Publish delivers to every publisher and never returns an error.
func (m *MultiPublisher) Publish(ctx context.Context, routingKey string, payload []byte) error {
	for _, p := range m.publishers {
		if err := p.Publish(ctx, routingKey, payload); err != nil {
			m.logger.Warn("event publish failed",
				"routing_key", routingKey,
				"error", err,
			)
		}
	}
	return nil
}

// Close closes every publisher and joins their errors.
func (m *MultiPublisher) Close() error {
	var errs []error
	for _, p := range m.publishers {
		if err := p.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NoopPublisher drops every message.
type NoopPublisher struct{}

func (NoopPublisher) Publish(ctx context.Context, routingKey string, payload []byte) error {
	return nil
}

func (NoopPublisher) Close() error { return nil }
