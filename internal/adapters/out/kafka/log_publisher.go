package kafka

import (
	"context"
	"log/slog"

	"marketplace/internal/core/ports"
)

// LogPublisher writes order events to the log. Used when no broker is configured.
type LogPublisher struct {
	logger *slog.Logger
}

// NewLogPublisher logs under the order_events component.
func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger.With("component", "order_events")}
}

// Publish logs one line per event and never fails.
func (p *LogPublisher) Publish(ctx context.Context, events []ports.OrderChangedEvent) error {
	for _, e := range events {
		p.logger.InfoContext(ctx, "order changed",
			"order_id", e.OrderID,
			"status", e.Status,
			"is_paid", e.IsPaid,
			"version", e.Version,
		)
	}
	return nil
}
