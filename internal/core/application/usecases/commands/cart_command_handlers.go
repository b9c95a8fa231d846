package commands

import (
	"context"

	"marketplace/internal/core/domain/model/customer"
	"marketplace/internal/core/domain/model/kernel"
)

// CartCommandHandler edits the acting customer's cart. Stock is checked but never reserved here.
type CartCommandHandler struct {
	uowFactory CartUoWFactory
}

// NewCartCommandHandler creates a cart handler over uowFactory.
func NewCartCommandHandler(uowFactory CartUoWFactory) *CartCommandHandler {
	return &CartCommandHandler{uowFactory: uowFactory}
}

// HandleAdd merges the quantity into the cart. The accumulated quantity may not exceed
// the product's current stock.
func (h *CartCommandHandler) HandleAdd(ctx context.Context, command AddCartItemCommand) error {
	if err := command.Validate(); err != nil {
		return err
	}

	return h.edit(ctx, command.Actor(), func(uow CartUoW, c *customer.Customer) error {
		product, err := uow.ProductRepository().Get(ctx, command.ProductID())
		if err != nil {
			return err
		}

		wanted := c.CartQuantity(command.ProductID()) + command.Quantity()
		if err = product.ValidateAvailable(wanted); err != nil {
			return err
		}

		return c.AddToCart(command.ProductID(), command.Quantity())
	})
}

// HandleRemove drops the product line, if any, and persists the cart.
func (h *CartCommandHandler) HandleRemove(ctx context.Context, command RemoveCartItemCommand) error {
	if err := command.Validate(); err != nil {
		return err
	}

	return h.edit(ctx, command.Actor(), func(_ CartUoW, c *customer.Customer) error {
		c.RemoveFromCart(command.ProductID())
		return nil
	})
}

// HandleClear empties the cart. Checkout clears it through CartAggregator instead.
func (h *CartCommandHandler) HandleClear(ctx context.Context, command ClearCartCommand) error {
	if err := command.Validate(); err != nil {
		return err
	}

	return h.edit(ctx, command.Actor(), func(_ CartUoW, c *customer.Customer) error {
		c.ClearCart()
		return nil
	})
}

func (h *CartCommandHandler) edit(
	ctx context.Context,
	actor kernel.Actor,
	change func(uow CartUoW, c *customer.Customer) error,
) error {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	customerRepo := uow.CustomerRepository()
	c, err := customerRepo.Get(ctx, actor.ID())
	if err != nil {
		return err
	}

	if err = change(uow, c); err != nil {
		return err
	}

	if err = customerRepo.Update(ctx, c); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
