package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/danielavelez12/goupromo/internal/cart"
	"github.com/danielavelez12/goupromo/internal/middleware"
)

// CheckoutPublisher announces a completed checkout to the rest of the
// system. The cart is cleared only after the publish succeeds.
type CheckoutPublisher interface {
	PublishCartCheckedOut(ctx context.Context, sessionKey string, snap cart.Snapshot) error
}

// Sequencer hands out per-partition monotonic sequence numbers.
type Sequencer interface {
	NextSequence(ctx context.Context, partitionKey string) (int64, error)
}

// MemorySequencer is the broker-only fallback when no database backs the
// service: sequences restart at 1 with the process.
type MemorySequencer struct {
	mu   sync.Mutex
	last map[string]int64
}

func NewMemorySequencer() *MemorySequencer {
	return &MemorySequencer{last: make(map[string]int64)}
}

func (s *MemorySequencer) NextSequence(ctx context.Context, partitionKey string) (int64, error) {
	if partitionKey == "" {
		return 0, fmt.Errorf("partition key is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last[partitionKey]++
	return s.last[partitionKey], nil
}

// RabbitPublisher publishes enveloped CartCheckedOut events to the shared
// topic exchange.
type RabbitPublisher struct {
	ch        *amqp.Channel
	sequencer Sequencer
}

func NewRabbitPublisher(conn *amqp.Connection, sequencer Sequencer) (*RabbitPublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}

	// Declare the exchange so publish never fails due to missing infra.
	if err := declareEventsExchange(ch); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", EventsExchange, err)
	}

	return &RabbitPublisher{ch: ch, sequencer: sequencer}, nil
}

func (p *RabbitPublisher) Close() error {
	return p.ch.Close()
}

func (p *RabbitPublisher) PublishCartCheckedOut(ctx context.Context, sessionKey string, snap cart.Snapshot) error {
	seq, err := p.sequencer.NextSequence(ctx, sessionKey)
	if err != nil {
		return fmt.Errorf("next sequence for %q: %w", sessionKey, err)
	}

	ev := BuildCartCheckedOutEvent(sessionKey, snap, EnvelopeOptions{
		Sequence:      seq,
		CorrelationID: middleware.GetCorrelationID(ctx),
	})

	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", CartCheckedOutEventName, err)
	}

	return p.ch.PublishWithContext(ctx,
		EventsExchange,
		CartCheckedOutRoutingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    ev.EventID,
			Body:         body,
		},
	)
}

// LogPublisher stands in when no broker is configured; checkout still
// completes and clears the cart.
type LogPublisher struct {
	Logger *log.Logger
}

func (p *LogPublisher) PublishCartCheckedOut(ctx context.Context, sessionKey string, snap cart.Snapshot) error {
	p.Logger.Printf("checkout for %q: %d items, total %.2f (no broker configured)", sessionKey, len(snap.Items), snap.Total)
	return nil
}
