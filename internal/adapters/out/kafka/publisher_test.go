package kafka_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"marketplace/internal/adapters/out/kafka"
	"marketplace/internal/core/ports"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

const topic = "order-changed"

func sampleEvent(id, status string) ports.OrderChangedEvent {
	return ports.OrderChangedEvent{
		OrderID:    id,
		CustomerID: "c-1",
		ShopID:     "s-1",
		Status:     status,
		Total:      "200.00",
		Version:    3,
		OccurredAt: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestNewOrderEventPublisher_RequiresProducerAndTopic(t *testing.T) {
	_, err := kafka.NewOrderEventPublisher(nil, topic)
	require.Error(t, err)

	producer := mocks.NewSyncProducer(t, kafka.NewProducerConfig())
	defer func() { _ = producer.Close() }()
	_, err = kafka.NewOrderEventPublisher(producer, "")
	require.Error(t, err)
}

func TestOrderEventPublisher_SendsKeyedJSON(t *testing.T) {
	producer := mocks.NewSyncProducer(t, kafka.NewProducerConfig())
	checkFirst := func(msg *sarama.ProducerMessage) error {
		if msg.Topic != topic {
			return errors.New("wrong topic " + msg.Topic)
		}
		key, err := msg.Key.Encode()
		if err != nil {
			return err
		}
		if string(key) != "o-1" {
			return errors.New("wrong key " + string(key))
		}
		value, err := msg.Value.Encode()
		if err != nil {
			return err
		}
		var decoded ports.OrderChangedEvent
		if err := json.Unmarshal(value, &decoded); err != nil {
			return err
		}
		if decoded.Status != "PROCESSING" || decoded.Version != 3 {
			return errors.New("unexpected payload " + string(value))
		}
		return nil
	}
	producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(checkFirst)
	producer.ExpectSendMessageAndSucceed()

	publisher, err := kafka.NewOrderEventPublisher(producer, topic)
	require.NoError(t, err)

	err = publisher.Publish(context.Background(), []ports.OrderChangedEvent{
		sampleEvent("o-1", "PROCESSING"),
		sampleEvent("o-2", "REJECTED"),
	})
	require.NoError(t, err)
	require.NoError(t, publisher.Close())
}

func TestOrderEventPublisher_ReportsSendFailure(t *testing.T) {
	producer := mocks.NewSyncProducer(t, kafka.NewProducerConfig())
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	publisher, err := kafka.NewOrderEventPublisher(producer, topic)
	require.NoError(t, err)

	err = publisher.Publish(context.Background(), []ports.OrderChangedEvent{sampleEvent("o-1", "DELIVERED")})
	require.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	require.NoError(t, publisher.Close())
}

func TestOrderEventPublisher_EmptyBatchSendsNothing(t *testing.T) {
	producer := mocks.NewSyncProducer(t, kafka.NewProducerConfig())
	publisher, err := kafka.NewOrderEventPublisher(producer, topic)
	require.NoError(t, err)

	require.NoError(t, publisher.Publish(context.Background(), nil))
	require.NoError(t, publisher.Close())
}

type failingPublisher struct{}

func (failingPublisher) Publish(context.Context, []ports.OrderChangedEvent) error {
	return errors.New("broker down")
}

func TestInstrumentedPublisher_CountsByStatus(t *testing.T) {
	reg := prometheus.NewRegistry()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	publisher := kafka.NewInstrumentedPublisher(kafka.NewLogPublisher(logger), reg)

	require.NoError(t, publisher.Publish(context.Background(), []ports.OrderChangedEvent{
		sampleEvent("o-1", "PROCESSING"),
		sampleEvent("o-2", "PROCESSING"),
		sampleEvent("o-3", "DELIVERED"),
	}))

	expected := `
# HELP marketplace_order_changes_total Committed order changes by resulting status
# TYPE marketplace_order_changes_total counter
marketplace_order_changes_total{status="DELIVERED"} 1
marketplace_order_changes_total{status="PROCESSING"} 2
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "marketplace_order_changes_total"))
}

func TestInstrumentedPublisher_CountsFailures(t *testing.T) {
	reg := prometheus.NewRegistry()
	publisher := kafka.NewInstrumentedPublisher(failingPublisher{}, reg)

	err := publisher.Publish(context.Background(), []ports.OrderChangedEvent{sampleEvent("o-1", "REJECTED")})
	require.Error(t, err)

	expected := `
# HELP marketplace_order_event_publish_failures_total Batches of order events that could not be published
# TYPE marketplace_order_event_publish_failures_total counter
marketplace_order_event_publish_failures_total 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"marketplace_order_event_publish_failures_total"))
}
