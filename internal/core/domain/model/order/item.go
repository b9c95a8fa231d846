package order

import (
	"errors"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/pkg/errs"
)

// Item is a line of an order: the product as it was priced when the order was placed.
// Later edits to the product do not affect it.
type Item struct {
	productID kernel.UUID
	name      string
	quantity  int
	unitPrice kernel.Money
}

// NewItem snapshots a product into an order line.
//
// Parameters:
//   - productID: the product bought
//   - name: the product name at checkout
//   - quantity: units bought, at least one
//   - unitPrice: the product price at checkout
//
// Example:
//
//	item, err := order.NewItem(rice.ID(), rice.Name(), 2, rice.Price())
//	if err != nil {
//	    return err
//	}
//	item.Subtotal().String() // "200.00" for a price of 100
func NewItem(productID kernel.UUID, name string, quantity int, unitPrice kernel.Money) (Item, error) {
	var errName, errQty error
	if name == "" {
		errName = errs.NewValueIsRequiredError("item name")
	}
	if quantity <= 0 {
		errQty = errs.NewValueIsOutOfRangeError("item quantity", quantity, 1, "unbounded")
	}
	if err := errors.Join(productID.Validate(), errName, errQty, unitPrice.Validate()); err != nil {
		return Item{}, err
	}

	return Item{productID: productID, name: name, quantity: quantity, unitPrice: unitPrice}, nil
}

// ProductID returns the product bought. The product may no longer exist.
func (i Item) ProductID() kernel.UUID {
	return i.productID
}

// Name returns the product name as it was at checkout.
func (i Item) Name() string {
	return i.name
}

// Quantity returns the units bought.
func (i Item) Quantity() int {
	return i.quantity
}

// UnitPrice returns the price per unit as it was at checkout.
func (i Item) UnitPrice() kernel.Money {
	return i.unitPrice
}

// Subtotal is unit price times quantity.
func (i Item) Subtotal() kernel.Money {
	return i.unitPrice.Multiply(i.quantity)
}
