// Package customer holds the Customer aggregate and the cart it owns.
package customer

import (
	"errors"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/pkg/errs"
	"marketplace/internal/pkg/guard"
)

var (
	ErrCustomerIsNotConstructed = errors.New("Customer must be created via NewCustomer or RestoreCustomer constructor")
	ErrCartIsEmpty              = errs.NewValueIsRequiredError("cart is empty")
)

// CartLine is a product the customer intends to buy and how many units.
type CartLine struct {
	productID kernel.UUID
	quantity  int
}

// NewCartLine validates a cart line. The quantity must be at least one.
//
// Example:
//
//	line, err := NewCartLine(rice.ID(), 2)
//	if err != nil {
//	    return err
//	}
//	line.Quantity() // 2
func NewCartLine(productID kernel.UUID, quantity int) (CartLine, error) {
	if err := productID.Validate(); err != nil {
		return CartLine{}, errs.NewValueIsRequiredErrorWithCause("product id", err)
	}
	if quantity <= 0 {
		return CartLine{}, errs.NewValueIsOutOfRangeError("quantity", quantity, 1, "unbounded")
	}
	return CartLine{productID: productID, quantity: quantity}, nil
}

// ProductID returns the product the line refers to. The product may have been deleted
// since it was added, which checkout reports as not found.
func (l CartLine) ProductID() kernel.UUID {
	return l.productID
}

// Quantity returns the requested units, always at least one.
func (l CartLine) Quantity() int {
	return l.quantity
}

// Customer is the buyer. The delivery address is copied onto every order at checkout.
type Customer struct {
	id      kernel.UUID
	name    string
	address string
	cart    []CartLine
	version int
	guard   guard.ConstructorGuard
}

// NewCustomer creates a customer with an empty cart.
//
// Example:
//
//	c, err := NewCustomer(actor.ID(), "Ada", "12 Main St")
//	if err != nil {
//	    return err
//	}
//	_ = c.AddToCart(rice.ID(), 2)
func NewCustomer(id kernel.UUID, name, address string) (*Customer, error) {
	return RestoreCustomer(id, name, address, nil, 0)
}

// RestoreCustomer rebuilds a customer and their cart from storage. Duplicate products in
// cart are rejected.
func RestoreCustomer(id kernel.UUID, name, address string, cart []CartLine, version int) (*Customer, error) {
	c := &Customer{
		address: address,
		version: version,
		guard:   guard.NewConstructorGuard(),
	}

	var errName error
	if name == "" {
		errName = errs.NewValueIsRequiredError("customer name")
	}
	if err := errors.Join(id.Validate(), errName, c.setCart(cart)); err != nil {
		return nil, err
	}

	c.id = id
	c.name = name
	return c, nil
}

// Validate checks that the customer was built by NewCustomer or RestoreCustomer.
func (c *Customer) Validate() error {
	if c == nil {
		return ErrCustomerIsNotConstructed
	}
	return c.guard.Validate(ErrCustomerIsNotConstructed)
}

// ID returns the customer identifier, equal to the customer's user ID.
func (c *Customer) ID() kernel.UUID {
	return c.id
}

// Name returns the name shown to the agent delivering the customer's orders.
func (c *Customer) Name() string {
	return c.name
}

// Address returns the delivery address copied onto each order at checkout. Changing it
// later does not move orders already placed.
func (c *Customer) Address() string {
	return c.address
}

// Version returns the optimistic concurrency token. Cart edits and checkout both write it.
func (c *Customer) Version() int {
	return c.version
}

// IncrementVersion is called by the repository after a successful conditional write.
func (c *Customer) IncrementVersion() {
	c.version++
}

// Cart returns a copy of the cart lines in insertion order.
func (c *Customer) Cart() []CartLine {
	out := make([]CartLine, len(c.cart))
	copy(out, c.cart)
	return out
}

// CartQuantity returns how many units of productID are in the cart.
func (c *Customer) CartQuantity(productID kernel.UUID) int {
	for _, l := range c.cart {
		if l.productID.IsEqual(productID) {
			return l.quantity
		}
	}
	return 0
}

// AddToCart adds qty units of productID, merging with an existing line.
// Stock is checked by the caller against the resulting CartQuantity.
func (c *Customer) AddToCart(productID kernel.UUID, qty int) error {
	line, err := NewCartLine(productID, qty)
	if err != nil {
		return err
	}

	for i := range c.cart {
		if c.cart[i].productID.IsEqual(productID) {
			c.cart[i].quantity += qty
			return nil
		}
	}

	c.cart = append(c.cart, line)
	return nil
}

// RemoveFromCart drops the line for productID. Removing an absent product is not an error.
func (c *Customer) RemoveFromCart(productID kernel.UUID) {
	kept := c.cart[:0]
	for _, l := range c.cart {
		if !l.productID.IsEqual(productID) {
			kept = append(kept, l)
		}
	}
	c.cart = kept
}

// ClearCart empties the cart. Checkout calls it in the same unit of work that creates
// the orders.
func (c *Customer) ClearCart() {
	c.cart = nil
}

func (c *Customer) setCart(lines []CartLine) error {
	seen := make(map[kernel.UUID]struct{}, len(lines))
	for _, l := range lines {
		if _, dup := seen[l.productID]; dup {
			return errs.NewValueIsInvalidError("cart contains duplicate product " + l.productID.String())
		}
		if _, err := NewCartLine(l.productID, l.quantity); err != nil {
			return err
		}
		seen[l.productID] = struct{}{}
	}
	c.cart = make([]CartLine, len(lines))
	copy(c.cart, lines)
	return nil
}
