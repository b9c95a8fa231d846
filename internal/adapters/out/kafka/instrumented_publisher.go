package kafka

import (
	"context"

	"marketplace/internal/core/ports"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// InstrumentedPublisher counts order changes by the status they reached and publish
// failures, then delegates.
type InstrumentedPublisher struct {
	next     ports.OrderEventPublisher
	changes  *prometheus.CounterVec
	failures prometheus.Counter
}

// NewInstrumentedPublisher registers its counters on reg. Registering twice on one registry panics.
func NewInstrumentedPublisher(next ports.OrderEventPublisher, reg prometheus.Registerer) *InstrumentedPublisher {
	factory := promauto.With(reg)
	return &InstrumentedPublisher{
		next: next,
		changes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marketplace_order_changes_total",
				Help: "Committed order changes by resulting status",
			},
			[]string{"status"},
		),
		failures: factory.NewCounter(prometheus.CounterOpts{
			Name: "marketplace_order_event_publish_failures_total",
			Help: "Batches of order events that could not be published",
		}),
	}
}

// Publish counts every event before delegating, so changes are counted even when publishing fails.
func (p *InstrumentedPublisher) Publish(ctx context.Context, events []ports.OrderChangedEvent) error {
	for _, e := range events {
		p.changes.WithLabelValues(e.Status).Inc()
	}
	if err := p.next.Publish(ctx, events); err != nil {
		p.failures.Inc()
		return err
	}
	return nil
}
