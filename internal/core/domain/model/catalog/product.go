package catalog

import (
	"errors"
	"strings"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/pkg/errs"
	"marketplace/internal/pkg/guard"
)

// ErrProductIsNotConstructed is returned when using a zero Product.
var ErrProductIsNotConstructed = errors.New("Product must be created via NewProduct or RestoreProduct constructor")

// Product is a sellable item of one shop together with its available quantity.
type Product struct {
	id                kernel.UUID
	shopID            kernel.UUID
	name              string
	price             kernel.Money
	quantityAvailable int
	version           int
	guard             guard.ConstructorGuard
}

// NewProduct creates a product of shopID with its initial stock. Stock can only go down
// afterwards, through Reserve at checkout.
//
// Parameters:
//   - id: identifier of the product
//   - shopID: the shop selling it
//   - name: non-blank display name
//   - price: unit price, must be constructed and non-negative
//   - quantityAvailable: initial stock, zero or more
//
// Example:
//
//	rice, err := NewProduct(kernel.NewUUID(), shop.ID(), "Rice 5kg", kernel.MustMoney("100"), 50)
//	if err != nil {
//	    return err
//	}
//	rice.QuantityAvailable() // 50
func NewProduct(id, shopID kernel.UUID, name string, price kernel.Money, quantityAvailable int) (*Product, error) {
	return RestoreProduct(id, shopID, name, price, quantityAvailable, 0)
}

// RestoreProduct rebuilds a product from storage with the version it was read at.
// It applies the same validation as NewProduct.
func RestoreProduct(
	id, shopID kernel.UUID,
	name string,
	price kernel.Money,
	quantityAvailable int,
	version int,
) (*Product, error) {
	p := &Product{
		version: version,
		guard:   guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		p.setID(id),
		p.setShopID(shopID),
		p.setName(name),
		p.setPrice(price),
		p.setQuantityAvailable(quantityAvailable),
	); err != nil {
		return nil, err
	}

	return p, nil
}

// Validate checks that the product was built by NewProduct or RestoreProduct.
func (p *Product) Validate() error {
	if p == nil {
		return ErrProductIsNotConstructed
	}
	return p.guard.Validate(ErrProductIsNotConstructed)
}

// ID returns the product identifier, which is also the key of cart lines and order items.
func (p *Product) ID() kernel.UUID {
	return p.id
}

// ShopID returns the shop selling the product. Checkout groups cart lines by it, one
// order per shop.
//
// Example:
//
//	p, _ := NewProduct(kernel.NewUUID(), shopID, "Milk", kernel.MustMoney("1.25"), 3)
//	p.ShopID().IsEqual(shopID) // true
func (p *Product) ShopID() kernel.UUID {
	return p.shopID
}

// Name returns the display name. Order items copy it at checkout so later renames do
// not change past orders.
func (p *Product) Name() string {
	return p.name
}

// Price returns the current unit price.
//
// Example:
//
//	p, _ := NewProduct(id, shopID, "Milk", kernel.MustMoney("1.25"), 3)
//	p.Price().String() // "1.25"
func (p *Product) Price() kernel.Money {
	return p.price
}

// QuantityAvailable returns the units still for sale. It never goes below zero.
func (p *Product) QuantityAvailable() int {
	return p.quantityAvailable
}

// Version returns the optimistic concurrency token. Two checkouts reserving the same
// product race on it, and the later commit fails with ErrConcurrentModification.
func (p *Product) Version() int {
	return p.version
}

// IncrementVersion is called by the repository after a successful conditional write.
func (p *Product) IncrementVersion() {
	p.version++
}

// ValidateAvailable checks that qty units could be reserved right now.
func (p *Product) ValidateAvailable(qty int) error {
	if qty <= 0 {
		return errs.NewValueIsOutOfRangeError("quantity", qty, 1, "unbounded")
	}
	if qty > p.quantityAvailable {
		return errs.NewInsufficientStockError(p.id.String(), p.name, qty, p.quantityAvailable)
	}
	return nil
}

// Reserve takes qty units out of the available quantity.
func (p *Product) Reserve(qty int) error {
	if err := p.ValidateAvailable(qty); err != nil {
		return err
	}
	p.quantityAvailable -= qty
	return nil
}

// UpdateDetails changes what the shop sells the product as. The quantity is only set at
// creation and afterwards moves by reservations alone.
//
// Example:
//
//	err := product.UpdateDetails("Basmati Rice", kernel.MustMoney("120"))
func (p *Product) UpdateDetails(name string, price kernel.Money) error {
	if err := errors.Join(validateProductName(name), price.Validate()); err != nil {
		return err
	}
	p.name = name
	p.price = price
	return nil
}

func (p *Product) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	p.id = id
	return nil
}

func (p *Product) setShopID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("shop id", err)
	}
	p.shopID = id
	return nil
}

func (p *Product) setName(name string) error {
	if err := validateProductName(name); err != nil {
		return err
	}
	p.name = name
	return nil
}

func validateProductName(name string) error {
	if strings.TrimSpace(name) == "" {
		return errs.NewValueIsRequiredError("product name")
	}
	return nil
}

func (p *Product) setPrice(price kernel.Money) error {
	if err := price.Validate(); err != nil {
		return err
	}
	p.price = price
	return nil
}

func (p *Product) setQuantityAvailable(qty int) error {
	if qty < 0 {
		return errs.NewValueIsOutOfRangeError("quantity available", qty, 0, "unbounded")
	}
	p.quantityAvailable = qty
	return nil
}
