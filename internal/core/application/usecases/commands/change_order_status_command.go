package commands

import (
	"errors"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/order"
	"marketplace/internal/pkg/errs"
	"marketplace/internal/pkg/guard"
)

var ErrChangeOrderStatusCommandIsNotConstructed = errors.New(
	"ChangeOrderStatusCommand must be created via NewChangeOrderStatusCommand constructor")

// ChangeOrderStatusCommand requests one transition of an order's status machine.
//
// Example:
//
//	cmd, err := NewChangeOrderStatusCommand(actor, orderID, "ACCEPTED")
//	if err != nil {
//		return err
//	}
//	o, err := handler.Handle(ctx, cmd)
//nolint:recvcheck //using for validation
type ChangeOrderStatusCommand struct {
	actor   kernel.Actor
	orderID kernel.UUID
	input   order.Input

	guard guard.ConstructorGuard
}

// NewChangeOrderStatusCommand parses the requested status. Whether the actor may request it
// is decided against the order itself by the handler.
func NewChangeOrderStatusCommand(actor kernel.Actor, orderID kernel.UUID, status string) (ChangeOrderStatusCommand, error) {
	var command ChangeOrderStatusCommand

	if err := errors.Join(
		command.setActor(actor),
		command.setOrderID(orderID),
		command.setInput(status),
	); err != nil {
		return ChangeOrderStatusCommand{}, err
	}

	command.guard = guard.NewConstructorGuard()
	return command, nil
}

// Validate returns ErrChangeOrderStatusCommandIsNotConstructed for a zero value.
func (c ChangeOrderStatusCommand) Validate() error {
	return c.guard.Validate(ErrChangeOrderStatusCommandIsNotConstructed)
}

// Actor returns the shopkeeper, agent or admin requesting the change.
func (c ChangeOrderStatusCommand) Actor() kernel.Actor {
	return c.actor
}

// OrderID returns the order to transition.
func (c ChangeOrderStatusCommand) OrderID() kernel.UUID {
	return c.orderID
}

// Input is the parsed request. It is either a target status or order.InputAccepted,
// which the transition table maps to PendingPayment.
func (c ChangeOrderStatusCommand) Input() order.Input {
	return c.input
}

func (c *ChangeOrderStatusCommand) setActor(actor kernel.Actor) error {
	if err := requireRole(actor, "change order status",
		kernel.RoleShopkeeper, kernel.RoleDeliveryAgent, kernel.RoleAdmin); err != nil {
		return err
	}
	c.actor = actor
	return nil
}

func (c *ChangeOrderStatusCommand) setOrderID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("order id", err)
	}
	c.orderID = id
	return nil
}

func (c *ChangeOrderStatusCommand) setInput(status string) error {
	input, err := order.ParseInput(status)
	if err != nil {
		return err
	}
	c.input = input
	return nil
}
