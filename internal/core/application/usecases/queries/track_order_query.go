package queries

import (
	"errors"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/pkg/errs"
	"marketplace/internal/pkg/guard"
)

var ErrTrackOrderQueryIsNotConstructed = errors.New(
	"TrackOrderQuery must be created via NewTrackOrderQuery constructor")

// TrackOrderQuery returns one order with its shop and agent. Only the order's customer,
// its assigned agent and admins may track it.
type TrackOrderQuery struct {
	actor   kernel.Actor
	orderID kernel.UUID
	guard   guard.ConstructorGuard
}

// NewTrackOrderQuery accepts any valid actor. Whether the actor may see the order is
// decided by the handler once the order is loaded.
func NewTrackOrderQuery(actor kernel.Actor, orderID kernel.UUID) (TrackOrderQuery, error) {
	if err := actor.Validate(); err != nil {
		return TrackOrderQuery{}, err
	}
	if err := orderID.Validate(); err != nil {
		return TrackOrderQuery{}, errs.NewValueIsRequiredErrorWithCause("order id", err)
	}
	return TrackOrderQuery{actor: actor, orderID: orderID, guard: guard.NewConstructorGuard()}, nil
}

// Validate returns ErrTrackOrderQueryIsNotConstructed for a zero value.
func (q TrackOrderQuery) Validate() error {
	return q.guard.Validate(ErrTrackOrderQueryIsNotConstructed)
}

// Actor returns the caller.
func (q TrackOrderQuery) Actor() kernel.Actor {
	return q.actor
}

// OrderID returns the order to track.
func (q TrackOrderQuery) OrderID() kernel.UUID {
	return q.orderID
}
