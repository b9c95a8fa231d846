package commands

import (
	"context"
	"errors"

	"marketplace/internal/core/domain/model/catalog"
	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/ports"
	"marketplace/internal/pkg/errs"
)

// CatalogCommandHandler lets shopkeepers manage their shop and its products. Admins may
// edit any shop or product but never create one on someone's behalf.
//
// Example:
//
//	handler := NewCatalogCommandHandler(uowFactory)
//	cmd, err := NewCreateProductCommand(actor, "Rice", kernel.MustMoney("100"), 50)
//	if err != nil {
//	    return err
//	}
//	product, err := handler.HandleCreateProduct(ctx, cmd)
type CatalogCommandHandler struct {
	uowFactory CatalogUoWFactory
}

// NewCatalogCommandHandler creates a handler that opens one unit of work per command.
func NewCatalogCommandHandler(uowFactory CatalogUoWFactory) *CatalogCommandHandler {
	return &CatalogCommandHandler{uowFactory: uowFactory}
}

// HandleCreateShop fails with StateConflictError when the shopkeeper already has a shop.
func (h *CatalogCommandHandler) HandleCreateShop(ctx context.Context, command CreateShopCommand) (*catalog.Shop, error) {
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

	shopRepo := uow.ShopRepository()
	ownerID := command.Actor().ID()
	_, err := shopRepo.GetByOwner(ctx, ownerID)
	switch {
	case err == nil:
		return nil, errs.NewStateConflictErrorWithCause("shop", errors.New("you already own a shop"))
	case !errors.Is(err, errs.ErrObjectNotFound):
		return nil, err
	}

	shop, err := catalog.NewShop(kernel.NewUUID(), ownerID, command.Name(), command.Position())
	if err != nil {
		return nil, err
	}
	if err = shopRepo.Add(ctx, shop); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}
	return shop, nil
}

// HandleUpdateShop renames or moves a shop. An admin updates the shop named by the
// command. A shopkeeper always updates their own shop, and naming any other shop is an
// AccessDeniedError.
func (h *CatalogCommandHandler) HandleUpdateShop(ctx context.Context, command UpdateShopCommand) (*catalog.Shop, error) {
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

	shopRepo := uow.ShopRepository()
	var (
		shop *catalog.Shop
		err  error
	)
	if command.Actor().Is(kernel.RoleAdmin) {
		shop, err = shopRepo.Get(ctx, *command.ShopID())
	} else {
		shop, err = ownShop(ctx, shopRepo, command.Actor(), "update shop")
	}
	if err != nil {
		return nil, err
	}
	if id := command.ShopID(); id != nil && !shop.ID().IsEqual(*id) {
		return nil, errs.NewAccessDeniedErrorWithCause("update shop", errors.New("shop belongs to another shopkeeper"))
	}

	if err = shop.Update(command.Name(), command.Position()); err != nil {
		return nil, err
	}
	if err = shopRepo.Update(ctx, shop); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}
	return shop, nil
}

// HandleCreateProduct adds the product to the shop the caller owns.
func (h *CatalogCommandHandler) HandleCreateProduct(
	ctx context.Context,
	command CreateProductCommand,
) (*catalog.Product, error) {
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

	shop, err := ownShop(ctx, uow.ShopRepository(), command.Actor(), "create product")
	if err != nil {
		return nil, err
	}

	product, err := catalog.NewProduct(kernel.NewUUID(), shop.ID(), command.Name(), command.Price(), command.Quantity())
	if err != nil {
		return nil, err
	}
	if err = uow.ProductRepository().Add(ctx, product); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}
	return product, nil
}

// HandleUpdateProduct changes name and price. Stock is left as it is.
func (h *CatalogCommandHandler) HandleUpdateProduct(
	ctx context.Context,
	command UpdateProductCommand,
) (*catalog.Product, error) {
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

	productRepo := uow.ProductRepository()
	product, err := manageableProduct(ctx, productRepo, uow.ShopRepository(), command.Actor(), command.ProductID(),
		"update product")
	if err != nil {
		return nil, err
	}

	if err = product.UpdateDetails(command.Name(), command.Price()); err != nil {
		return nil, err
	}
	if err = productRepo.Update(ctx, product); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}
	return product, nil
}

// HandleDeleteProduct removes a product. Carts still holding it fail at checkout with
// ObjectNotFoundError for the product.
func (h *CatalogCommandHandler) HandleDeleteProduct(ctx context.Context, command DeleteProductCommand) error {
	if err := command.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	productRepo := uow.ProductRepository()
	product, err := manageableProduct(ctx, productRepo, uow.ShopRepository(), command.Actor(), command.ProductID(),
		"delete product")
	if err != nil {
		return err
	}
	if err = productRepo.Delete(ctx, product); err != nil {
		return err
	}

	return uow.Commit(ctx)
}

// HandleDeleteShop removes a shop and its products. A shop that any order references is
// kept, and the call fails with StateConflictError.
//
// Example:
//
//	cmd, _ := NewDeleteShopCommand(admin, shopID)
//	if err := handler.HandleDeleteShop(ctx, cmd); errors.Is(err, errs.ErrStateConflict) {
//		// the shop has order history
//	}
func (h *CatalogCommandHandler) HandleDeleteShop(ctx context.Context, command DeleteShopCommand) error {
	if err := command.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	shopRepo := uow.ShopRepository()
	shop, err := shopRepo.Get(ctx, command.ShopID())
	if err != nil {
		return err
	}
	if err = shopRepo.Delete(ctx, shop); err != nil {
		return err
	}

	return uow.Commit(ctx)
}

// manageableProduct loads the product and checks that a shopkeeper caller owns its shop.
func manageableProduct(
	ctx context.Context,
	productRepo ports.ProductRepository,
	shopRepo ports.ShopRepository,
	actor kernel.Actor,
	productID kernel.UUID,
	action string,
) (*catalog.Product, error) {
	product, err := productRepo.Get(ctx, productID)
	if err != nil {
		return nil, err
	}
	if actor.Is(kernel.RoleAdmin) {
		return product, nil
	}

	shop, err := shopRepo.Get(ctx, product.ShopID())
	if err != nil {
		return nil, err
	}
	if !shop.IsOwnedBy(actor.ID()) {
		return nil, errs.NewAccessDeniedErrorWithCause(action, errors.New("product belongs to another shop"))
	}
	return product, nil
}

// ownShop resolves the shop of a shopkeeper. Owning none is reported as access denied
// since there is nothing the caller may manage.
func ownShop(ctx context.Context, repo ports.ShopRepository, actor kernel.Actor, action string) (*catalog.Shop, error) {
	shop, err := repo.GetByOwner(ctx, actor.ID())
	if errors.Is(err, errs.ErrObjectNotFound) {
		return nil, errs.NewAccessDeniedErrorWithCause(action, errors.New("you do not own a shop"))
	}
	return shop, err
}
