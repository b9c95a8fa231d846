package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"marketplace/internal/core/ports"

	"github.com/IBM/sarama"
)

// OrderEventPublisher sends each event keyed by order id, so all changes of one order
// land on one partition in commit order.
type OrderEventPublisher struct {
	producer sarama.SyncProducer
	topic    string
}

// NewOrderEventPublisher requires a producer and a topic name.
func NewOrderEventPublisher(producer sarama.SyncProducer, topic string) (*OrderEventPublisher, error) {
	if producer == nil {
		return nil, errors.New("kafka producer is required")
	}
	if topic == "" {
		return nil, errors.New("kafka topic is required")
	}
	return &OrderEventPublisher{producer: producer, topic: topic}, nil
}

// Publish sends the batch in one SendMessages call. Each message carries the JSON event
// and an event-type header.
func (p *OrderEventPublisher) Publish(_ context.Context, events []ports.OrderChangedEvent) error {
	if len(events) == 0 {
		return nil
	}

	msgs := make([]*sarama.ProducerMessage, 0, len(events))
	for _, e := range events {
		payload, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("encode order event %s: %w", e.OrderID, err)
		}
		msgs = append(msgs, &sarama.ProducerMessage{
			Topic: p.topic,
			Key:   sarama.StringEncoder(e.OrderID),
			Value: sarama.ByteEncoder(payload),
			Headers: []sarama.RecordHeader{
				{Key: []byte("event-type"), Value: []byte("OrderStatusChanged")},
			},
		})
	}

	if err := p.producer.SendMessages(msgs); err != nil {
		return fmt.Errorf("send %d order events: %w", len(msgs), err)
	}
	return nil
}

// Close closes the underlying producer.
func (p *OrderEventPublisher) Close() error {
	return p.producer.Close()
}
