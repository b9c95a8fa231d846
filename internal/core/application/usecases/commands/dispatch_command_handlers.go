package commands

import (
	"context"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/order"
	"marketplace/internal/core/domain/services"
)

// DispatchCommandHandler pairs orders with agents. Both writes are version-conditional,
// so of two concurrent claims on one order exactly one commits and the other gets a conflict.
type DispatchCommandHandler struct {
	uowFactory DispatchUoWFactory
	dispatcher services.Dispatcher
}

// NewDispatchCommandHandler creates a handler with the default dispatcher.
func NewDispatchCommandHandler(uowFactory DispatchUoWFactory) *DispatchCommandHandler {
	return &DispatchCommandHandler{
		uowFactory: uowFactory,
		dispatcher: services.NewDispatcher(),
	}
}

// HandleClaim assigns the order to the claiming agent.
func (h *DispatchCommandHandler) HandleClaim(ctx context.Context, command ClaimOrderCommand) (*order.Order, error) {
	if err := command.Validate(); err != nil {
		return nil, err
	}
	return h.assign(ctx, command.OrderID(), command.Actor().ID())
}

// HandleAssign assigns the order to the agent chosen by an admin.
func (h *DispatchCommandHandler) HandleAssign(ctx context.Context, command AssignAgentCommand) (*order.Order, error) {
	if err := command.Validate(); err != nil {
		return nil, err
	}
	return h.assign(ctx, command.OrderID(), command.AgentID())
}

func (h *DispatchCommandHandler) assign(ctx context.Context, orderID, agentID kernel.UUID) (*order.Order, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()
	agentRepo := uow.AgentRepository()

	o, err := orderRepo.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}

	a, err := agentRepo.Get(ctx, agentID)
	if err != nil {
		return nil, err
	}

	if err = h.dispatcher.Assign(o, a); err != nil {
		return nil, err
	}

	if err = orderRepo.Update(ctx, o); err != nil {
		return nil, err
	}
	if err = agentRepo.Update(ctx, a); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	return o, nil
}
