package commands

import (
	"errors"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/pkg/errs"
	"marketplace/internal/pkg/guard"
)

var ErrRequestPaymentCommandIsNotConstructed = errors.New(
	"RequestPaymentCommand must be created via NewRequestPaymentCommand constructor")

// RequestPaymentCommand asks for settlement of an order awaiting payment.
//
// Example:
//
//	cmd, err := NewRequestPaymentCommand(actor, orderID)
//	if err != nil {
//		return err
//	}
//	ack, err := paymentHandler.Handle(ctx, cmd)
//	fmt.Println(ack.Message)
type RequestPaymentCommand struct {
	actor   kernel.Actor
	orderID kernel.UUID

	guard guard.ConstructorGuard
}

// NewRequestPaymentCommand returns an AccessDeniedError unless actor is a customer.
func NewRequestPaymentCommand(actor kernel.Actor, orderID kernel.UUID) (RequestPaymentCommand, error) {
	if err := requireRole(actor, "request payment", kernel.RoleCustomer); err != nil {
		return RequestPaymentCommand{}, err
	}
	if err := orderID.Validate(); err != nil {
		return RequestPaymentCommand{}, errs.NewValueIsRequiredErrorWithCause("order id", err)
	}

	return RequestPaymentCommand{
		actor:   actor,
		orderID: orderID,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

// Validate returns ErrRequestPaymentCommandIsNotConstructed for a zero value.
func (c RequestPaymentCommand) Validate() error {
	return c.guard.Validate(ErrRequestPaymentCommandIsNotConstructed)
}

// Actor returns the paying customer. The handler checks they own the order.
func (c RequestPaymentCommand) Actor() kernel.Actor {
	return c.actor
}

// OrderID returns the order to pay for.
func (c RequestPaymentCommand) OrderID() kernel.UUID {
	return c.orderID
}
