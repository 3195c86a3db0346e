package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// InvalidationEvent names the exact cache keys a write wants deleted.
// Delivery is best-effort; a lost event only widens the staleness window
// up to the key's TTL.
type InvalidationEvent struct {
	Keys []string `json:"keys"`
}

type InvalidationPublisher struct {
	conn      *amqp.Connection
	queueName string
}

func NewInvalidationPublisher(conn *amqp.Connection, queueName string) *InvalidationPublisher {
	return &InvalidationPublisher{
		conn:      conn,
		queueName: queueName,
	}
}

func (p *InvalidationPublisher) Publish(ctx context.Context, event InvalidationEvent) error {
	if len(event.Keys) == 0 {
		return nil
	}

	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("open rabbitmq channel failed: %w", err)
	}
	defer ch.Close()

	_, err = ch.QueueDeclare(
		p.queueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare queue failed: %w", err)
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal invalidation event failed: %w", err)
	}

	if err := ch.PublishWithContext(
		ctx,
		"",
		p.queueName,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         payload,
			DeliveryMode: amqp.Persistent,
		},
	); err != nil {
		return fmt.Errorf("publish invalidation event failed: %w", err)
	}
	return nil
}
