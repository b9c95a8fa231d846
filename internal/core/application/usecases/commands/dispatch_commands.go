package commands

import (
	"errors"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/pkg/errs"
	"marketplace/internal/pkg/guard"
)

var (
	ErrClaimOrderCommandIsNotConstructed = errors.New(
		"ClaimOrderCommand must be created via NewClaimOrderCommand constructor")
	ErrAssignAgentCommandIsNotConstructed = errors.New(
		"AssignAgentCommand must be created via NewAssignAgentCommand constructor")
)

// ClaimOrderCommand is an agent taking an order from the available pool for themselves.
type ClaimOrderCommand struct {
	actor   kernel.Actor
	orderID kernel.UUID

	guard guard.ConstructorGuard
}

// NewClaimOrderCommand returns an AccessDeniedError unless actor is a delivery agent.
//
// Example:
//
//	cmd, err := NewClaimOrderCommand(actor, orderID)
//	if err != nil {
//		return err
//	}
//	o, err := dispatchHandler.HandleClaim(ctx, cmd)
func NewClaimOrderCommand(actor kernel.Actor, orderID kernel.UUID) (ClaimOrderCommand, error) {
	if err := requireRole(actor, "claim order", kernel.RoleDeliveryAgent); err != nil {
		return ClaimOrderCommand{}, err
	}
	if err := orderID.Validate(); err != nil {
		return ClaimOrderCommand{}, errs.NewValueIsRequiredErrorWithCause("order id", err)
	}

	return ClaimOrderCommand{
		actor:   actor,
		orderID: orderID,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

// Validate returns ErrClaimOrderCommandIsNotConstructed for a zero value.
func (c ClaimOrderCommand) Validate() error {
	return c.guard.Validate(ErrClaimOrderCommandIsNotConstructed)
}

// Actor returns the claiming agent.
func (c ClaimOrderCommand) Actor() kernel.Actor {
	return c.actor
}

// OrderID returns the order taken from the pool.
func (c ClaimOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

// AssignAgentCommand is an admin handing an order to a chosen agent.
//
//nolint:recvcheck //using for validation
type AssignAgentCommand struct {
	actor   kernel.Actor
	orderID kernel.UUID
	agentID kernel.UUID

	guard guard.ConstructorGuard
}

// NewAssignAgentCommand requires an admin and joins failures for both ids.
func NewAssignAgentCommand(actor kernel.Actor, orderID, agentID kernel.UUID) (AssignAgentCommand, error) {
	var command AssignAgentCommand

	if err := errors.Join(
		command.setActor(actor),
		command.setOrderID(orderID),
		command.setAgentID(agentID),
	); err != nil {
		return AssignAgentCommand{}, err
	}

	command.guard = guard.NewConstructorGuard()
	return command, nil
}

// Validate returns ErrAssignAgentCommandIsNotConstructed for a zero value.
func (c AssignAgentCommand) Validate() error {
	return c.guard.Validate(ErrAssignAgentCommandIsNotConstructed)
}

// Actor returns the admin making the assignment.
func (c AssignAgentCommand) Actor() kernel.Actor {
	return c.actor
}

// OrderID returns the order to assign.
func (c AssignAgentCommand) OrderID() kernel.UUID {
	return c.orderID
}

// AgentID returns the agent receiving the order.
func (c AssignAgentCommand) AgentID() kernel.UUID {
	return c.agentID
}

func (c *AssignAgentCommand) setActor(actor kernel.Actor) error {
	if err := requireRole(actor, "assign delivery agent", kernel.RoleAdmin); err != nil {
		return err
	}
	c.actor = actor
	return nil
}

func (c *AssignAgentCommand) setOrderID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("order id", err)
	}
	c.orderID = id
	return nil
}

func (c *AssignAgentCommand) setAgentID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("agent id", err)
	}
	c.agentID = id
	return nil
}
