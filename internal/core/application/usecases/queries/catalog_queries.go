package queries

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/pkg/errs"
	"marketplace/internal/pkg/guard"
)

var (
	ErrListProductsQueryIsNotConstructed = errors.New(
		"ListProductsQuery must be created via NewListProductsQuery constructor")
	ErrGetProductQueryIsNotConstructed = errors.New(
		"GetProductQuery must be created via NewGetProductQuery constructor")
	ErrListShopsQueryIsNotConstructed = errors.New(
		"ListShopsQuery must be created via NewListShopsQuery constructor")
	ErrGetShopQueryIsNotConstructed = errors.New(
		"GetShopQuery must be created via NewGetShopQuery constructor")
)

// Every authenticated role may browse the catalog.
var catalogReaders = []kernel.Role{
	kernel.RoleCustomer,
	kernel.RoleShopkeeper,
	kernel.RoleDeliveryAgent,
	kernel.RoleAdmin,
}

// Filter keys accepted by ParseProductFilter.
const (
	ProductFilterShopID   = "shop_id"
	ProductFilterName     = "name"
	ProductFilterMinPrice = "min_price"
	ProductFilterMaxPrice = "max_price"
	ProductFilterPage     = "page"
	ProductFilterLimit    = "limit"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// ProductFilter narrows ListProductsQuery. Nil or empty fields do not filter.
type ProductFilter struct {
	ShopID   *kernel.UUID
	Name     string
	MinPrice *kernel.Money
	MaxPrice *kernel.Money
	// Page counts from 1.
	Page  int
	Limit int
}

// ParseProductFilter reads filter values keyed by the ProductFilter* names. Any other
// key is rejected.
//
// Example:
//
//	f, err := ParseProductFilter(map[string]string{"name": "rice", "max_price": "120"})
func ParseProductFilter(raw map[string]string) (ProductFilter, error) {
	f := ProductFilter{Page: 1, Limit: defaultPageSize}
	for key, value := range raw {
		switch key {
		case ProductFilterShopID:
			id, err := kernel.ParseOptionalUUID(value)
			if err != nil {
				return ProductFilter{}, errs.NewValueIsInvalidErrorWithCause(key, err)
			}
			f.ShopID = id
		case ProductFilterName:
			f.Name = strings.TrimSpace(value)
		case ProductFilterMinPrice, ProductFilterMaxPrice:
			price, err := kernel.MoneyFromString(value)
			if err != nil {
				return ProductFilter{}, errs.NewValueIsInvalidErrorWithCause(key, err)
			}
			if key == ProductFilterMinPrice {
				f.MinPrice = &price
			} else {
				f.MaxPrice = &price
			}
		case ProductFilterPage, ProductFilterLimit:
			n, err := strconv.Atoi(value)
			if err != nil {
				return ProductFilter{}, errs.NewValueIsInvalidErrorWithCause(key, err)
			}
			if key == ProductFilterPage {
				f.Page = n
			} else {
				f.Limit = n
			}
		default:
			return ProductFilter{}, errs.NewValueIsInvalidErrorWithCause("filter",
				fmt.Errorf("unknown filter %q", key))
		}
	}
	return f, nil
}

// ListProductsQuery pages through products that are in stock, ordered by name.
type ListProductsQuery struct {
	filter ProductFilter
	guard  guard.ConstructorGuard
}

// NewListProductsQuery fills in page 1 and the default page size for zero values and
// rejects an inverted price range. Any authenticated role may browse.
//
// Example:
//
//	filter, err := ParseProductFilter(map[string]string{"name": "rice", "limit": "20"})
//	if err != nil {
//		return err
//	}
//	query, err := NewListProductsQuery(actor, filter)
func NewListProductsQuery(actor kernel.Actor, filter ProductFilter) (ListProductsQuery, error) {
	if err := requireRole(actor, "browse products", catalogReaders...); err != nil {
		return ListProductsQuery{}, err
	}
	if filter.Page == 0 {
		filter.Page = 1
	}
	if filter.Limit == 0 {
		filter.Limit = defaultPageSize
	}
	if filter.Page < 1 {
		return ListProductsQuery{}, errs.NewValueIsOutOfRangeError("page", filter.Page, 1, "unbounded")
	}
	if filter.Limit < 1 || filter.Limit > maxPageSize {
		return ListProductsQuery{}, errs.NewValueIsOutOfRangeError("limit", filter.Limit, 1, maxPageSize)
	}
	if filter.MinPrice != nil && filter.MaxPrice != nil &&
		filter.MinPrice.Decimal().GreaterThan(filter.MaxPrice.Decimal()) {
		return ListProductsQuery{}, errs.NewValueIsInvalidErrorWithCause("price range",
			errors.New("min_price is greater than max_price"))
	}
	return ListProductsQuery{filter: filter, guard: guard.NewConstructorGuard()}, nil
}

// Validate returns ErrListProductsQueryIsNotConstructed for a zero value.
func (q ListProductsQuery) Validate() error {
	return q.guard.Validate(ErrListProductsQueryIsNotConstructed)
}

// Filter returns the normalized filter, with Page and Limit always set.
func (q ListProductsQuery) Filter() ProductFilter {
	return q.filter
}

// GetProductQuery reads one product with the name of its shop.
type GetProductQuery struct {
	productID kernel.UUID
	guard     guard.ConstructorGuard
}

// NewGetProductQuery accepts any authenticated role.
func NewGetProductQuery(actor kernel.Actor, productID kernel.UUID) (GetProductQuery, error) {
	if err := requireRole(actor, "view product", catalogReaders...); err != nil {
		return GetProductQuery{}, err
	}
	if err := productID.Validate(); err != nil {
		return GetProductQuery{}, errs.NewValueIsRequiredErrorWithCause("product id", err)
	}
	return GetProductQuery{productID: productID, guard: guard.NewConstructorGuard()}, nil
}

// Validate returns ErrGetProductQueryIsNotConstructed for a zero value.
func (q GetProductQuery) Validate() error {
	return q.guard.Validate(ErrGetProductQueryIsNotConstructed)
}

// ProductID returns the product to read.
func (q GetProductQuery) ProductID() kernel.UUID {
	return q.productID
}

// ListShopsQuery lists every shop by name.
type ListShopsQuery struct {
	guard guard.ConstructorGuard
}

// NewListShopsQuery accepts any authenticated role.
func NewListShopsQuery(actor kernel.Actor) (ListShopsQuery, error) {
	if err := requireRole(actor, "browse shops", catalogReaders...); err != nil {
		return ListShopsQuery{}, err
	}
	return ListShopsQuery{guard: guard.NewConstructorGuard()}, nil
}

// Validate returns ErrListShopsQueryIsNotConstructed for a zero value.
func (q ListShopsQuery) Validate() error {
	return q.guard.Validate(ErrListShopsQueryIsNotConstructed)
}

// GetShopQuery reads one shop.
//
// Example:
//
//	query, err := NewGetShopQuery(actor, shopID)
//	if err != nil {
//		return err
//	}
//	shop, err := handler.HandleShop(ctx, query)
type GetShopQuery struct {
	shopID kernel.UUID
	guard  guard.ConstructorGuard
}

// NewGetShopQuery accepts any authenticated role.
func NewGetShopQuery(actor kernel.Actor, shopID kernel.UUID) (GetShopQuery, error) {
	if err := requireRole(actor, "view shop", catalogReaders...); err != nil {
		return GetShopQuery{}, err
	}
	if err := shopID.Validate(); err != nil {
		return GetShopQuery{}, errs.NewValueIsRequiredErrorWithCause("shop id", err)
	}
	return GetShopQuery{shopID: shopID, guard: guard.NewConstructorGuard()}, nil
}

// Validate returns ErrGetShopQueryIsNotConstructed for a zero value.
func (q GetShopQuery) Validate() error {
	return q.guard.Validate(ErrGetShopQueryIsNotConstructed)
}

// ShopID returns the shop to read.
func (q GetShopQuery) ShopID() kernel.UUID {
	return q.shopID
}
