package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v5"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// LogFile is the file, under Consumer.Dir, that receives one line per event.
const LogFile = "rentals.log"

// Consumer listens to both rental queues and appends every event to
// Dir/rentals.log in a single-line, human-friendly format.
type Consumer struct {
	URL string
	Dir string
	Log zerolog.Logger
}

func NewConsumer(url, dir string, log zerolog.Logger) *Consumer {
	return &Consumer{URL: url, Dir: dir, Log: log}
}

// Run keeps a connection to the broker open until ctx is cancelled,
// reconnecting with exponential backoff.  It only returns ctx.Err().
func (c *Consumer) Run(ctx context.Context) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = time.Second
	b.MaxInterval = 30 * time.Second

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		conn, err := amqp.DialConfig(c.URL, amqp.Config{Dial: amqp.DefaultDial(5 * time.Second)})
		if err != nil {
			wait := b.NextBackOff()
			c.Log.Warn().Err(err).Dur("retry_in", wait).Msg("rental consumer: dial failed")
			if !sleep(ctx, wait) {
				return ctx.Err()
			}
			continue
		}
		b.Reset()

		err = c.consume(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.Log.Warn().Err(err).Msg("rental consumer: consume loop ended, reconnecting")
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
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
		c.Log.Warn().Err(err).Msg("rental consumer: set QoS failed")
	}

	var feeds []<-chan amqp.Delivery
	for _, q := range []string{RentalCreatedQueue, RentalReturnedQueue} {
		if _, err := ch.QueueDeclare(q, true, false, false, false, nil); err != nil {
			return fmt.Errorf("queue declare %s: %w", q, err)
		}
		msgs, err := ch.Consume(q, "", false, false, false, false, nil)
		if err != nil {
			return fmt.Errorf("queue consume %s: %w", q, err)
		}
		feeds = append(feeds, msgs)
	}
	c.Log.Info().Msg("rental consumer: listening")

	created, returned := feeds[0], feeds[1]
	for {
		var (
			d  amqp.Delivery
			ok bool
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok = <-created:
		case d, ok = <-returned:
		}
		if !ok {
			return errors.New("deliveries channel closed")
		}
		if err := c.Handle(d.Body); err != nil {
			c.Log.Error().Err(err).Str("queue", d.RoutingKey).Msg("rental consumer: handle message failed")
			_ = d.Nack(false, false) // drop it; requeueing a bad message would spin
			continue
		}
		_ = d.Ack(false)
	}
}

// Handle decodes one event body and appends its log line.
func (c *Consumer) Handle(body []byte) error {
	var ev RentalEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	line, err := FormatLine(ev)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(c.Dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", c.Dir, err)
	}
	f, err := os.OpenFile(filepath.Join(c.Dir, LogFile), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(line + "\n"); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

// FormatLine renders ev without a trailing newline.
func FormatLine(ev RentalEvent) (string, error) {
	switch ev.Type {
	case RentalCreatedQueue:
		return fmt.Sprintf("[%s] Rental created | rental_id=%s | customer_id=%s | customer=%q | movie_id=%s | movie=%q | rate=%.2f",
			ev.DateOut, ev.RentalID, ev.CustomerID, ev.CustomerName, ev.MovieID, ev.MovieTitle, ev.DailyRentalRate), nil
	case RentalReturnedQueue:
		fee := 0.0
		if ev.RentalFee != nil {
			fee = *ev.RentalFee
		}
		return fmt.Sprintf("[%s] Rental returned | rental_id=%s | customer_id=%s | customer=%q | movie_id=%s | movie=%q | out=%s | fee=%.2f",
			ev.DateReturned, ev.RentalID, ev.CustomerID, ev.CustomerName, ev.MovieID, ev.MovieTitle, ev.DateOut, fee), nil
	}
	return "", fmt.Errorf("unknown event type %q", ev.Type)
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
