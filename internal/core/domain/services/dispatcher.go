package services

import (
	"marketplace/internal/core/domain/model/agent"
	"marketplace/internal/core/domain/model/order"
)

// Dispatcher hands a ready order to a delivery agent. Agent claims and admin
// assignments both go through Assign.
//
// Business rules:
//   - the order must be Processing and unclaimed
//   - the agent must be online and available
//   - on success the order records the agent and the agent becomes unavailable
type Dispatcher struct{}

func NewDispatcher() Dispatcher {
	return Dispatcher{}
}

// Assign checks both aggregates first and mutates them only if both checks pass.
// The order is checked first, so a losing claimant learns the order was taken.
func (Dispatcher) Assign(o *order.Order, a *agent.Agent) error {
	if err := o.ValidateClaimable(); err != nil {
		return err
	}
	if err := a.ValidateCanTakeOrder(); err != nil {
		return err
	}

	if err := o.AssignAgent(a.ID()); err != nil {
		return err
	}
	return a.TakeOrder()
}
