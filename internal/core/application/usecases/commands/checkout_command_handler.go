package commands

import (
	"context"

	"marketplace/internal/core/domain/model/customer"
	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/order"
	"marketplace/internal/core/domain/services"
	"marketplace/internal/core/ports"
)

// CheckoutCommandHandler turns the customer's cart into one order per shop.
// Orders, stock reservations and the cleared cart are committed together or not at all.
type CheckoutCommandHandler struct {
	uowFactory CheckoutUoWFactory
	aggregator services.CartAggregator
	clock      ports.Clock
}

// NewCheckoutCommandHandler stamps new orders with clock.Now().
func NewCheckoutCommandHandler(uowFactory CheckoutUoWFactory, clock ports.Clock) *CheckoutCommandHandler {
	return &CheckoutCommandHandler{
		uowFactory: uowFactory,
		aggregator: services.NewCartAggregator(),
		clock:      clock,
	}
}

// Handle fails with customer.ErrCartIsEmpty for an empty cart and with an
// InsufficientStockError when any line exceeds current stock, in which case nothing is
// written. On success it returns the created orders, one per shop in the cart.
func (h *CheckoutCommandHandler) Handle(ctx context.Context, command CheckoutCommand) ([]*order.Order, error) {
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

	customerRepo := uow.CustomerRepository()
	productRepo := uow.ProductRepository()
	orderRepo := uow.OrderRepository()

	c, err := customerRepo.Get(ctx, command.Actor().ID())
	if err != nil {
		return nil, err
	}

	cart := c.Cart()
	if len(cart) == 0 {
		return nil, customer.ErrCartIsEmpty
	}

	ids := make([]kernel.UUID, 0, len(cart))
	for _, line := range cart {
		ids = append(ids, line.ProductID())
	}

	found, err := productRepo.GetMany(ctx, ids)
	if err != nil {
		return nil, err
	}

	result, err := h.aggregator.Checkout(c, found, h.clock.Now())
	if err != nil {
		return nil, err
	}

	for _, o := range result.Orders {
		if err = orderRepo.Add(ctx, o); err != nil {
			return nil, err
		}
	}
	for _, p := range result.Products {
		if err = productRepo.Update(ctx, p); err != nil {
			return nil, err
		}
	}
	if err = customerRepo.Update(ctx, c); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	return result.Orders, nil
}
