package commands

import (
	"errors"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/pkg/errs"
	"marketplace/internal/pkg/guard"
)

var (
	ErrCreateShopCommandIsNotConstructed = errors.New(
		"CreateShopCommand must be created via NewCreateShopCommand constructor")
	ErrUpdateShopCommandIsNotConstructed = errors.New(
		"UpdateShopCommand must be created via NewUpdateShopCommand constructor")
	ErrCreateProductCommandIsNotConstructed = errors.New(
		"CreateProductCommand must be created via NewCreateProductCommand constructor")
	ErrUpdateProductCommandIsNotConstructed = errors.New(
		"UpdateProductCommand must be created via NewUpdateProductCommand constructor")
	ErrDeleteProductCommandIsNotConstructed = errors.New(
		"DeleteProductCommand must be created via NewDeleteProductCommand constructor")
	ErrDeleteShopCommandIsNotConstructed = errors.New(
		"DeleteShopCommand must be created via NewDeleteShopCommand constructor")
)

// CreateShopCommand opens the calling shopkeeper's shop.
type CreateShopCommand struct {
	actor    kernel.Actor
	name     string
	position *kernel.GeoPoint

	guard guard.ConstructorGuard
}

// NewCreateShopCommand requires a shopkeeper and a non-empty name. position may be nil
// for a shop without a pickup point.
//
// Example:
//
//	pos, _ := kernel.NewGeoPoint(52.52, 13.405)
//	cmd, err := NewCreateShopCommand(actor, "Corner Shop", &pos)
func NewCreateShopCommand(actor kernel.Actor, name string, position *kernel.GeoPoint) (CreateShopCommand, error) {
	if err := requireRole(actor, "create shop", kernel.RoleShopkeeper); err != nil {
		return CreateShopCommand{}, err
	}
	if name == "" {
		return CreateShopCommand{}, errs.NewValueIsRequiredError("shop name")
	}
	return CreateShopCommand{actor: actor, name: name, position: position, guard: guard.NewConstructorGuard()}, nil
}

// Validate returns ErrCreateShopCommandIsNotConstructed for a zero value.
func (c CreateShopCommand) Validate() error {
	return c.guard.Validate(ErrCreateShopCommandIsNotConstructed)
}

// Actor returns the shopkeeper who will own the shop.
func (c CreateShopCommand) Actor() kernel.Actor {
	return c.actor
}

// Name returns the shop name.
func (c CreateShopCommand) Name() string {
	return c.name
}

// Position returns the pickup point, or nil.
func (c CreateShopCommand) Position() *kernel.GeoPoint {
	return c.position
}

// UpdateShopCommand renames or moves a shop. Shopkeepers may only update the shop they
// own; admins may update any shop.
type UpdateShopCommand struct {
	actor    kernel.Actor
	shopID   *kernel.UUID
	name     string
	position *kernel.GeoPoint

	guard guard.ConstructorGuard
}

// NewUpdateShopCommand builds the command. shopID is optional for shopkeepers, whose
// own shop is used when it is nil, and required for admins. A nil position keeps the
// current one.
func NewUpdateShopCommand(
	actor kernel.Actor,
	shopID *kernel.UUID,
	name string,
	position *kernel.GeoPoint,
) (UpdateShopCommand, error) {
	if err := requireRole(actor, "update shop", kernel.RoleShopkeeper, kernel.RoleAdmin); err != nil {
		return UpdateShopCommand{}, err
	}
	if name == "" {
		return UpdateShopCommand{}, errs.NewValueIsRequiredError("shop name")
	}

	c := UpdateShopCommand{actor: actor, name: name, position: position, guard: guard.NewConstructorGuard()}
	if shopID == nil {
		if actor.Is(kernel.RoleShopkeeper) {
			return c, nil
		}
		return UpdateShopCommand{}, errs.NewValueIsRequiredError("shop id")
	}
	if err := shopID.Validate(); err != nil {
		return UpdateShopCommand{}, errs.NewValueIsInvalidErrorWithCause("shop id", err)
	}
	id := *shopID
	c.shopID = &id
	return c, nil
}

// Validate returns ErrUpdateShopCommandIsNotConstructed for a zero value.
func (c UpdateShopCommand) Validate() error {
	return c.guard.Validate(ErrUpdateShopCommandIsNotConstructed)
}

// Actor returns the shopkeeper or admin making the change.
func (c UpdateShopCommand) Actor() kernel.Actor {
	return c.actor
}

// ShopID is nil when a shopkeeper did not name their shop.
func (c UpdateShopCommand) ShopID() *kernel.UUID {
	return c.shopID
}

// Name returns the new shop name.
func (c UpdateShopCommand) Name() string {
	return c.name
}

// Position returns the new pickup point. Nil keeps the stored one.
func (c UpdateShopCommand) Position() *kernel.GeoPoint {
	return c.position
}

// CreateProductCommand adds a product to the calling shopkeeper's shop. The quantity
// given here is the only way stock enters the system.
type CreateProductCommand struct {
	actor    kernel.Actor
	name     string
	price    kernel.Money
	quantity int

	guard guard.ConstructorGuard
}

// NewCreateProductCommand checks the role, then joins name, price and quantity failures.
//
// Example:
//
//	cmd, err := NewCreateProductCommand(actor, "Rice", kernel.MustMoney("2.50"), 40)
//	if errors.Is(err, errs.ErrAccessDenied) {
//		// only shopkeepers add products
//	}
func NewCreateProductCommand(
	actor kernel.Actor,
	name string,
	price kernel.Money,
	quantity int,
) (CreateProductCommand, error) {
	if err := requireRole(actor, "create product", kernel.RoleShopkeeper); err != nil {
		return CreateProductCommand{}, err
	}

	var errName, errQty error
	if name == "" {
		errName = errs.NewValueIsRequiredError("product name")
	}
	if quantity < 0 {
		errQty = errs.NewValueIsOutOfRangeError("quantity available", quantity, 0, "unbounded")
	}
	if err := errors.Join(errName, price.Validate(), errQty); err != nil {
		return CreateProductCommand{}, err
	}

	return CreateProductCommand{
		actor:    actor,
		name:     name,
		price:    price,
		quantity: quantity,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

// Validate returns ErrCreateProductCommandIsNotConstructed for a zero value.
func (c CreateProductCommand) Validate() error {
	return c.guard.Validate(ErrCreateProductCommandIsNotConstructed)
}

// Actor returns the shopkeeper whose shop receives the product.
func (c CreateProductCommand) Actor() kernel.Actor {
	return c.actor
}

// Name returns the product name.
func (c CreateProductCommand) Name() string {
	return c.name
}

// Price returns the unit price.
func (c CreateProductCommand) Price() kernel.Money {
	return c.price
}

// Quantity returns the initial stock, zero or more.
func (c CreateProductCommand) Quantity() int {
	return c.quantity
}

// UpdateProductCommand replaces the name and price of a product.
type UpdateProductCommand struct {
	actor     kernel.Actor
	productID kernel.UUID
	name      string
	price     kernel.Money

	guard guard.ConstructorGuard
}

// NewUpdateProductCommand accepts shopkeepers and admins. Ownership is checked by the
// handler, which has to load the product first.
func NewUpdateProductCommand(
	actor kernel.Actor,
	productID kernel.UUID,
	name string,
	price kernel.Money,
) (UpdateProductCommand, error) {
	if err := requireRole(actor, "update product", kernel.RoleShopkeeper, kernel.RoleAdmin); err != nil {
		return UpdateProductCommand{}, err
	}
	if err := productID.Validate(); err != nil {
		return UpdateProductCommand{}, errs.NewValueIsRequiredErrorWithCause("product id", err)
	}

	var errName error
	if name == "" {
		errName = errs.NewValueIsRequiredError("product name")
	}
	if err := errors.Join(errName, price.Validate()); err != nil {
		return UpdateProductCommand{}, err
	}

	return UpdateProductCommand{
		actor:     actor,
		productID: productID,
		name:      name,
		price:     price,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

// Validate returns ErrUpdateProductCommandIsNotConstructed for a zero value.
func (c UpdateProductCommand) Validate() error {
	return c.guard.Validate(ErrUpdateProductCommandIsNotConstructed)
}

// Actor returns the shopkeeper or admin making the change.
func (c UpdateProductCommand) Actor() kernel.Actor {
	return c.actor
}

// ProductID returns the product being changed.
func (c UpdateProductCommand) ProductID() kernel.UUID {
	return c.productID
}

// Name returns the new product name.
func (c UpdateProductCommand) Name() string {
	return c.name
}

// Price returns the new unit price. Orders already placed keep their item price.
func (c UpdateProductCommand) Price() kernel.Money {
	return c.price
}

// DeleteProductCommand removes a product from its shop.
//
// Example:
//
//	cmd, _ := NewDeleteProductCommand(actor, productID)
//	if err := handler.HandleDeleteProduct(ctx, cmd); errors.Is(err, errs.ErrAccessDenied) {
//		// product belongs to another shop
//	}
type DeleteProductCommand struct {
	actor     kernel.Actor
	productID kernel.UUID

	guard guard.ConstructorGuard
}

// NewDeleteProductCommand accepts shopkeepers and admins.
func NewDeleteProductCommand(actor kernel.Actor, productID kernel.UUID) (DeleteProductCommand, error) {
	if err := requireRole(actor, "delete product", kernel.RoleShopkeeper, kernel.RoleAdmin); err != nil {
		return DeleteProductCommand{}, err
	}
	if err := productID.Validate(); err != nil {
		return DeleteProductCommand{}, errs.NewValueIsRequiredErrorWithCause("product id", err)
	}
	return DeleteProductCommand{actor: actor, productID: productID, guard: guard.NewConstructorGuard()}, nil
}

// Validate returns ErrDeleteProductCommandIsNotConstructed for a zero value.
func (c DeleteProductCommand) Validate() error {
	return c.guard.Validate(ErrDeleteProductCommandIsNotConstructed)
}

// Actor returns the shopkeeper or admin deleting the product.
func (c DeleteProductCommand) Actor() kernel.Actor {
	return c.actor
}

// ProductID returns the product to remove.
func (c DeleteProductCommand) ProductID() kernel.UUID {
	return c.productID
}

// DeleteShopCommand closes a shop that never took an order, together with its catalog.
type DeleteShopCommand struct {
	actor  kernel.Actor
	shopID kernel.UUID

	guard guard.ConstructorGuard
}

// NewDeleteShopCommand accepts admins only.
func NewDeleteShopCommand(actor kernel.Actor, shopID kernel.UUID) (DeleteShopCommand, error) {
	if err := requireRole(actor, "delete shop", kernel.RoleAdmin); err != nil {
		return DeleteShopCommand{}, err
	}
	if err := shopID.Validate(); err != nil {
		return DeleteShopCommand{}, errs.NewValueIsRequiredErrorWithCause("shop id", err)
	}
	return DeleteShopCommand{actor: actor, shopID: shopID, guard: guard.NewConstructorGuard()}, nil
}

// Validate returns ErrDeleteShopCommandIsNotConstructed for a zero value.
func (c DeleteShopCommand) Validate() error {
	return c.guard.Validate(ErrDeleteShopCommandIsNotConstructed)
}

func (c DeleteShopCommand) Actor() kernel.Actor {
	return c.actor
}

// ShopID returns the shop to remove.
func (c DeleteShopCommand) ShopID() kernel.UUID {
	return c.shopID
}
