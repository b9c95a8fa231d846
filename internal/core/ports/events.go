package ports

import (
	"context"
	"time"

	"marketplace/internal/core/domain/model/order"
)

// OrderChangedEvent is published after a transaction that added or updated an order commits.
type OrderChangedEvent struct {
	OrderID         string    `json:"orderId"`
	CustomerID      string    `json:"customerId"`
	ShopID          string    `json:"shopId"`
	DeliveryAgentID *string   `json:"deliveryAgentId,omitempty"`
	Status          string    `json:"status"`
	IsPaid          bool      `json:"isPaid"`
	Total           string    `json:"total"`
	Version         int       `json:"version"`
	OccurredAt      time.Time `json:"occurredAt"`
}

// NewOrderChangedEvent captures the current state of o.
func NewOrderChangedEvent(o *order.Order, occurredAt time.Time) OrderChangedEvent {
	e := OrderChangedEvent{
		OrderID:    o.ID().String(),
		CustomerID: o.CustomerID().String(),
		ShopID:     o.ShopID().String(),
		Status:     o.Status().String(),
		IsPaid:     o.IsPaid(),
		Total:      o.Total().String(),
		Version:    o.Version(),
		OccurredAt: occurredAt,
	}
	if id := o.DeliveryAgentID(); id != nil {
		s := id.String()
		e.DeliveryAgentID = &s
	}
	return e
}

// OrderEventPublisher carries order changes to other services.
type OrderEventPublisher interface {
	Publish(ctx context.Context, events []OrderChangedEvent) error
}

// Clock abstracts time for handlers and jobs.
type Clock interface {
	Now() time.Time
}

// SystemClock is the wall clock in UTC.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}
