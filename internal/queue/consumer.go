package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Consumer appends every reservation event to <dir>/reservations.log.
type Consumer struct {
	url    string
	dir    string
	logger *slog.Logger
}

// NewConsumer returns a consumer for the broker at url writing into dir.
func NewConsumer(url, dir string, logger *slog.Logger) *Consumer {
	if dir == "" {
		dir = "logs"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Consumer{url: url, dir: dir, logger: logger.With("component", "reservation-consumer")}
}

// Run connects to the broker and consumes until ctx is cancelled, redialing
// with exponential backoff (capped at 30s) whenever the connection drops.
// Malformed messages are rejected without requeue.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.url)
		if err != nil {
			c.logger.Warn("failed to dial broker", "err", err, "retry_in", backoff)
			if err := sleep(ctx, backoff); err != nil {
				return nil
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = c.consume(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return nil
		}
		c.logger.Warn("consume loop ended, reconnecting", "err", err)
		if err := sleep(ctx, 2*time.Second); err != nil {
			return nil
		}
	}
}

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		c.logger.Warn("set QoS failed", "err", err)
	}
	if _, err := ch.QueueDeclare(ReservationQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.ConsumeWithContext(ctx, ReservationQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := c.Handle(d.Body); err != nil {
			c.logger.Error("handle message failed", "err", err)
			_ = d.Nack(false, false)
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

// Handle decodes one event and appends a line for it to the log file.
func (c *Consumer) Handle(body []byte) error {
	var ev ReservationConfirmedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.ReservationID == "" {
		return errors.New("event without reservation id")
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(c.dir, "reservations.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	line := fmt.Sprintf("[%s] Reservation confirmed | reservation_id=%s | user=%s | datetime=%s | court=%q | location=%q\n",
		ev.ConfirmedAt, ev.ReservationID, ev.UserUID, ev.Datetime, ev.CourtType, ev.Location)
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
