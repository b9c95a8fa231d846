package services

import (
	"errors"
	"sort"
	"time"

	"marketplace/internal/core/domain/model/catalog"
	"marketplace/internal/core/domain/model/customer"
	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/order"
	"marketplace/internal/pkg/errs"
)

// OrderIntent is the share of a cart that one shop will fulfil.
type OrderIntent struct {
	ShopID kernel.UUID
	Lines  []IntentLine
}

// IntentLine pairs a cart quantity with the product it refers to.
type IntentLine struct {
	Product  *catalog.Product
	Quantity int
}

// CheckoutResult lists every aggregate a successful checkout changed.
type CheckoutResult struct {
	Orders   []*order.Order
	Products []*catalog.Product
}

// CartAggregator converts carts into per-shop orders.
//
// Example usage:
//
//	result, err := services.NewCartAggregator().Checkout(customer, products, time.Now())
//	if err != nil {
//	    // nothing was changed: no orders, stock untouched, cart untouched
//	}
//	// persist result.Orders, result.Products and the customer together
type CartAggregator struct{}

func NewCartAggregator() CartAggregator {
	return CartAggregator{}
}

// Group partitions cart lines by owning shop. Intents are ordered by shop id and lines
// keep their cart order, so the same cart always yields the same intents.
// Every line's product must be present in products.
func (CartAggregator) Group(lines []customer.CartLine, products map[kernel.UUID]*catalog.Product) ([]OrderIntent, error) {
	if len(lines) == 0 {
		return nil, customer.ErrCartIsEmpty
	}

	byShop := make(map[kernel.UUID]*OrderIntent)
	for _, line := range lines {
		p, ok := products[line.ProductID()]
		if !ok || p == nil {
			return nil, errs.NewObjectNotFoundError("product", line.ProductID().String())
		}
		if err := p.Validate(); err != nil {
			return nil, err
		}

		intent, ok := byShop[p.ShopID()]
		if !ok {
			intent = &OrderIntent{ShopID: p.ShopID()}
			byShop[p.ShopID()] = intent
		}
		intent.Lines = append(intent.Lines, IntentLine{Product: p, Quantity: line.Quantity()})
	}

	intents := make([]OrderIntent, 0, len(byShop))
	for _, intent := range byShop {
		intents = append(intents, *intent)
	}
	sort.Slice(intents, func(i, j int) bool {
		return intents[i].ShopID.Less(intents[j].ShopID)
	})

	return intents, nil
}

// Checkout groups the customer's cart, reserves stock for every line, creates one
// PendingApproval order per shop and clears the cart.
//
// Stock is verified for the whole cart before anything is reserved: on error neither
// the products nor the customer have been modified.
func (a CartAggregator) Checkout(
	c *customer.Customer,
	products map[kernel.UUID]*catalog.Product,
	now time.Time,
) (CheckoutResult, error) {
	if err := c.Validate(); err != nil {
		return CheckoutResult{}, err
	}

	intents, err := a.Group(c.Cart(), products)
	if err != nil {
		return CheckoutResult{}, err
	}

	var stockErrs []error
	for _, intent := range intents {
		for _, line := range intent.Lines {
			if err = line.Product.ValidateAvailable(line.Quantity); err != nil {
				stockErrs = append(stockErrs, err)
			}
		}
	}
	if len(stockErrs) > 0 {
		return CheckoutResult{}, errors.Join(stockErrs...)
	}

	result := CheckoutResult{}
	for _, intent := range intents {
		items := make([]order.Item, 0, len(intent.Lines))
		for _, line := range intent.Lines {
			p := line.Product
			item, itemErr := order.NewItem(p.ID(), p.Name(), line.Quantity, p.Price())
			if itemErr != nil {
				return CheckoutResult{}, itemErr
			}
			items = append(items, item)
		}

		o, orderErr := order.NewOrder(kernel.NewUUID(), c.ID(), intent.ShopID, c.Address(), items, now)
		if orderErr != nil {
			return CheckoutResult{}, orderErr
		}
		result.Orders = append(result.Orders, o)
	}

	for _, intent := range intents {
		for _, line := range intent.Lines {
			if err = line.Product.Reserve(line.Quantity); err != nil {
				return CheckoutResult{}, err
			}
			result.Products = append(result.Products, line.Product)
		}
	}

	c.ClearCart()
	return result, nil
}
