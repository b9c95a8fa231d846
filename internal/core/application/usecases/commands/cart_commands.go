package commands

import (
	"errors"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/pkg/errs"
	"marketplace/internal/pkg/guard"
)

var (
	ErrAddCartItemCommandIsNotConstructed = errors.New(
		"AddCartItemCommand must be created via NewAddCartItemCommand constructor")
	ErrRemoveCartItemCommandIsNotConstructed = errors.New(
		"RemoveCartItemCommand must be created via NewRemoveCartItemCommand constructor")
	ErrClearCartCommandIsNotConstructed = errors.New(
		"ClearCartCommand must be created via NewClearCartCommand constructor")
)

// AddCartItemCommand puts quantity units of a product into the acting customer's cart.
//
// Example:
//
//	cmd, err := NewAddCartItemCommand(actor, productID, 2)
//	if err != nil {
//		return err
//	}
//	err = cartHandler.HandleAdd(ctx, cmd)
//nolint:recvcheck //using for validation
type AddCartItemCommand struct {
	actor     kernel.Actor
	productID kernel.UUID
	quantity  int

	guard guard.ConstructorGuard
}

// NewAddCartItemCommand validates every argument and joins the failures, so a request with
// a missing product and a zero quantity reports both.
func NewAddCartItemCommand(actor kernel.Actor, productID kernel.UUID, quantity int) (AddCartItemCommand, error) {
	var command AddCartItemCommand

	if err := errors.Join(
		command.setActor(actor),
		command.setProductID(productID),
		command.setQuantity(quantity),
	); err != nil {
		return AddCartItemCommand{}, err
	}

	command.guard = guard.NewConstructorGuard()
	return command, nil
}

// Validate returns ErrAddCartItemCommandIsNotConstructed for a zero value.
func (c AddCartItemCommand) Validate() error {
	return c.guard.Validate(ErrAddCartItemCommandIsNotConstructed)
}

// Actor returns the customer whose cart is edited.
func (c AddCartItemCommand) Actor() kernel.Actor {
	return c.actor
}

// ProductID returns the product being added.
func (c AddCartItemCommand) ProductID() kernel.UUID {
	return c.productID
}

// Quantity is the number of units to add, always at least one.
func (c AddCartItemCommand) Quantity() int {
	return c.quantity
}

func (c *AddCartItemCommand) setActor(actor kernel.Actor) error {
	if err := requireRole(actor, "edit cart", kernel.RoleCustomer); err != nil {
		return err
	}
	c.actor = actor
	return nil
}

func (c *AddCartItemCommand) setProductID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("product id", err)
	}
	c.productID = id
	return nil
}

func (c *AddCartItemCommand) setQuantity(quantity int) error {
	if quantity <= 0 {
		return errs.NewValueIsOutOfRangeError("quantity", quantity, 1, "unbounded")
	}
	c.quantity = quantity
	return nil
}

// RemoveCartItemCommand drops one product line from the acting customer's cart.
//nolint:recvcheck //using for validation
type RemoveCartItemCommand struct {
	actor     kernel.Actor
	productID kernel.UUID

	guard guard.ConstructorGuard
}

// NewRemoveCartItemCommand accepts any product id; removing a product that is not in the cart is a no-op.
func NewRemoveCartItemCommand(actor kernel.Actor, productID kernel.UUID) (RemoveCartItemCommand, error) {
	if err := requireRole(actor, "edit cart", kernel.RoleCustomer); err != nil {
		return RemoveCartItemCommand{}, err
	}
	if err := productID.Validate(); err != nil {
		return RemoveCartItemCommand{}, errs.NewValueIsRequiredErrorWithCause("product id", err)
	}

	return RemoveCartItemCommand{
		actor:     actor,
		productID: productID,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

// Validate returns ErrRemoveCartItemCommandIsNotConstructed for a zero value.
func (c RemoveCartItemCommand) Validate() error {
	return c.guard.Validate(ErrRemoveCartItemCommandIsNotConstructed)
}

// Actor returns the customer whose cart is edited.
func (c RemoveCartItemCommand) Actor() kernel.Actor {
	return c.actor
}

// ProductID returns the product whose line is removed.
func (c RemoveCartItemCommand) ProductID() kernel.UUID {
	return c.productID
}

// ClearCartCommand empties the acting customer's cart.
//
// Example:
//
//	cmd, _ := NewClearCartCommand(actor)
//	err := cartHandler.HandleClear(ctx, cmd)
type ClearCartCommand struct {
	actor kernel.Actor

	guard guard.ConstructorGuard
}

// NewClearCartCommand returns an AccessDeniedError unless actor is a customer.
func NewClearCartCommand(actor kernel.Actor) (ClearCartCommand, error) {
	if err := requireRole(actor, "edit cart", kernel.RoleCustomer); err != nil {
		return ClearCartCommand{}, err
	}
	return ClearCartCommand{actor: actor, guard: guard.NewConstructorGuard()}, nil
}

// Validate returns ErrClearCartCommandIsNotConstructed for a zero value.
func (c ClearCartCommand) Validate() error {
	return c.guard.Validate(ErrClearCartCommandIsNotConstructed)
}

// Actor returns the customer whose cart is cleared.
func (c ClearCartCommand) Actor() kernel.Actor {
	return c.actor
}
