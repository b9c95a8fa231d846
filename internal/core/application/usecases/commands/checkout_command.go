package commands

import (
	"errors"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/pkg/guard"
)

var ErrCheckoutCommandIsNotConstructed = errors.New(
	"CheckoutCommand must be created via NewCheckoutCommand constructor")

// CheckoutCommand converts the acting customer's cart into orders.
//
// Example:
//
//	cmd, err := NewCheckoutCommand(actor)
//	if err != nil {
//		return err
//	}
//	orders, err := checkoutHandler.Handle(ctx, cmd)
//nolint:recvcheck //using for validation
type CheckoutCommand struct {
	actor kernel.Actor

	guard guard.ConstructorGuard
}

// NewCheckoutCommand returns an AccessDeniedError unless actor is a customer.
func NewCheckoutCommand(actor kernel.Actor) (CheckoutCommand, error) {
	var command CheckoutCommand

	if err := command.setActor(actor); err != nil {
		return CheckoutCommand{}, err
	}

	command.guard = guard.NewConstructorGuard()
	return command, nil
}

// Validate returns ErrCheckoutCommandIsNotConstructed for a zero value.
func (c CheckoutCommand) Validate() error {
	return c.guard.Validate(ErrCheckoutCommandIsNotConstructed)
}

// Actor returns the customer checking out.
func (c CheckoutCommand) Actor() kernel.Actor {
	return c.actor
}

func (c *CheckoutCommand) setActor(actor kernel.Actor) error {
	if err := requireRole(actor, "checkout", kernel.RoleCustomer); err != nil {
		return err
	}
	c.actor = actor
	return nil
}
