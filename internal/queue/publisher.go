package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher sends reservation events to RabbitMQ.  Each publish opens its own
// connection so a broker outage never leaves a stale channel behind.
type Publisher struct {
	url string
}

// NewPublisher returns a publisher for the broker at url.  An empty url
// returns nil; a nil *Publisher discards events.
func NewPublisher(url string) *Publisher {
	if url == "" {
		return nil
	}
	return &Publisher{url: url}
}

// PublishReservationConfirmed publishes ev to the reservation queue as a
// persistent message.
func (p *Publisher) PublishReservationConfirmed(ctx context.Context, ev ReservationConfirmedEvent) error {
	if p == nil {
		return nil
	}
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return fmt.Errorf("rabbitmq: dial: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("rabbitmq: open channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	// Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(ReservationQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("rabbitmq: declare queue: %w", err)
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("rabbitmq: marshal event: %w", err)
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", ReservationQueue, false, false, pub); err != nil {
		return fmt.Errorf("rabbitmq: publish: %w", err)
	}
	return nil
}
