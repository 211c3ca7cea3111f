package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/iliyamo/video-rental/internal/queue"
)

// EventPublisher delivers rental events.  Delivery is best effort: the
// rental is already committed when Publish runs.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, ev queue.RentalEvent) error
}

// AMQPPublisher publishes to RabbitMQ, dialing per call so a broker outage
// never leaves the server holding a dead connection.
type AMQPPublisher struct {
	URL         string
	DialTimeout time.Duration
	Log         zerolog.Logger
}

func NewAMQPPublisher(url string, log zerolog.Logger) *AMQPPublisher {
	return &AMQPPublisher{URL: url, DialTimeout: 2 * time.Second, Log: log}
}

// Publish declares the durable queue named routingKey and sends ev to it as
// a persistent JSON message on the default exchange.
func (p *AMQPPublisher) Publish(ctx context.Context, routingKey string, ev queue.RentalEvent) error {
	conn, err := amqp.DialConfig(p.URL, amqp.Config{Dial: amqp.DefaultDial(p.DialTimeout)})
	if err != nil {
		return fmt.Errorf("rabbitmq dial: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("rabbitmq channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(routingKey, true, false, false, false, nil); err != nil {
		return fmt.Errorf("rabbitmq queue declare: %w", err)
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Type:         ev.Type,
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", routingKey, false, false, pub); err != nil {
		return fmt.Errorf("rabbitmq publish: %w", err)
	}
	p.Log.Debug().Str("queue", routingKey).Str("rental_id", ev.RentalID).Msg("event published")
	return nil
}
