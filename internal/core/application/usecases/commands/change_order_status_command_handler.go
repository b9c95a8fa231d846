package commands

import (
	"context"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/order"
)

// ChangeOrderStatusCommandHandler applies a status change requested by a shopkeeper,
// a delivery agent or an admin. The transition table decides what each role may do;
// the handler only resolves the facts the table needs and persists the outcome.
type ChangeOrderStatusCommandHandler struct {
	uowFactory OrderStatusUoWFactory
}

// NewChangeOrderStatusCommandHandler creates a handler over uowFactory.
func NewChangeOrderStatusCommandHandler(uowFactory OrderStatusUoWFactory) *ChangeOrderStatusCommandHandler {
	return &ChangeOrderStatusCommandHandler{uowFactory: uowFactory}
}

// Handle loads the order, resolves ownership facts for the actor and applies the
// transition. When the transition releases a delivery agent, the agent is freed in the
// same transaction.
//
// Example:
//
//	o, err := handler.Handle(ctx, cmd)
//	switch {
//	case errors.Is(err, errs.ErrAccessDenied):
//		// role may not request this status, or does not own the order
//	case errs.IsConflict(err):
//		// order is not in a state that allows the transition
//	}
func (h *ChangeOrderStatusCommandHandler) Handle(
	ctx context.Context,
	command ChangeOrderStatusCommand,
) (*order.Order, error) {
	if err := command.Validate(); err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()
	o, err := orderRepo.Get(ctx, command.OrderID())
	if err != nil {
		return nil, err
	}

	facts, err := h.resolveFacts(ctx, uow, command.Actor(), o)
	if err != nil {
		return nil, err
	}

	outcome, err := o.ApplyTransition(command.Actor(), command.Input(), facts)
	if err != nil {
		return nil, err
	}

	if err = orderRepo.Update(ctx, o); err != nil {
		return nil, err
	}

	if outcome.ReleasedAgent != nil {
		agentRepo := uow.AgentRepository()
		a, getErr := agentRepo.Get(ctx, *outcome.ReleasedAgent)
		if getErr != nil {
			return nil, getErr
		}
		a.CompleteDelivery()
		if err = agentRepo.Update(ctx, a); err != nil {
			return nil, err
		}
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	return o, nil
}

func (h *ChangeOrderStatusCommandHandler) resolveFacts(
	ctx context.Context,
	uow OrderStatusUoW,
	actor kernel.Actor,
	o *order.Order,
) (order.Facts, error) {
	if !actor.Is(kernel.RoleShopkeeper) {
		return order.Facts{}, nil
	}

	shop, err := uow.ShopRepository().Get(ctx, o.ShopID())
	if err != nil {
		return order.Facts{}, err
	}
	return order.Facts{ActorOwnsShop: shop.IsOwnedBy(actor.ID())}, nil
}
