// Package kafka publishes storefront domain events.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/jcmexdev/storefront/internal/core/ports"
)

// Publisher writes order.placed events, keyed by order ID so all events
// for one order land in the same partition.
type Publisher struct {
	writer *kafka.Writer
}

func NewPublisher(brokers []string, topic string) *Publisher {
	return &Publisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			WriteTimeout: 5 * time.Second,
		},
	}
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// PublishOrderPlaced implements ports.OrderEventPublisher. Callers treat
// a failed publish as non-fatal; the order is already durable.
func (p *Publisher) PublishOrderPlaced(ctx context.Context, evt ports.OrderPlaced) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("kafka: marshal order.placed: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(evt.OrderID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event", Value: []byte("order.placed")},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka: publish order.placed for %s: %w", evt.OrderID, err)
	}
	return nil
}
