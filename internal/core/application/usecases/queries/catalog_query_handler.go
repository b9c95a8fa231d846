package queries

import (
	"context"
	"strings"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CatalogQueryHandler serves product and shop browsing.
//
// Example:
//
//	handler := NewCatalogQueryHandler(db)
//	query, err := NewListProductsQuery(actor, ProductFilter{Name: "rice"})
//	if err != nil {
//	    return err
//	}
//	page, err := handler.HandleProducts(ctx, query)
type CatalogQueryHandler struct {
	db *gorm.DB
}

// NewCatalogQueryHandler reads the catalog with raw SQL through db.
func NewCatalogQueryHandler(db *gorm.DB) CatalogQueryHandler {
	return CatalogQueryHandler{db: db}
}

const productColumns = `
	p.id,
	p.shop_id,
	s.name AS shop_name,
	p.name,
	p.price,
	p.quantity_available`

type productRow struct {
	ID                uuid.UUID
	ShopID            uuid.UUID
	ShopName          string
	Name              string
	Price             decimal.Decimal
	QuantityAvailable int
}

// HandleProducts returns the requested page. Products out of stock are not listed.
func (h CatalogQueryHandler) HandleProducts(ctx context.Context, query ListProductsQuery) (ProductPage, error) {
	if err := query.Validate(); err != nil {
		return ProductPage{}, err
	}

	f := query.filter
	conditions := []string{"p.quantity_available > 0"}
	var args []any
	if f.ShopID != nil {
		conditions = append(conditions, "p.shop_id = ?")
		args = append(args, f.ShopID.Bytes())
	}
	if f.Name != "" {
		conditions = append(conditions, "p.name ILIKE ?")
		args = append(args, "%"+escapeLike(f.Name)+"%")
	}
	if f.MinPrice != nil {
		conditions = append(conditions, "p.price >= ?")
		args = append(args, f.MinPrice.Decimal())
	}
	if f.MaxPrice != nil {
		conditions = append(conditions, "p.price <= ?")
		args = append(args, f.MaxPrice.Decimal())
	}
	from := " FROM products p JOIN shops s ON s.id = p.shop_id WHERE " + strings.Join(conditions, " AND ")

	var total int64
	if err := h.db.WithContext(ctx).Raw("SELECT COUNT(*)"+from, args...).Scan(&total).Error; err != nil {
		return ProductPage{}, err
	}

	page := ProductPage{
		Items: make([]ProductView, 0),
		Total: int(total),
		Page:  f.Page,
		Pages: (int(total) + f.Limit - 1) / f.Limit,
	}
	if total == 0 {
		return page, nil
	}

	var rows []productRow
	err := h.db.WithContext(ctx).
		Raw("SELECT "+productColumns+from+" ORDER BY p.name, p.id LIMIT ? OFFSET ?",
			append(args, f.Limit, (f.Page-1)*f.Limit)...).
		Scan(&rows).Error
	if err != nil {
		return ProductPage{}, err
	}

	for _, r := range rows {
		view, viewErr := r.toView()
		if viewErr != nil {
			return ProductPage{}, viewErr
		}
		page.Items = append(page.Items, view)
	}
	return page, nil
}

// HandleProduct returns ObjectNotFoundError for an unknown product. Unlike the listing it
// also finds products that are out of stock.
func (h CatalogQueryHandler) HandleProduct(ctx context.Context, query GetProductQuery) (ProductView, error) {
	if err := query.Validate(); err != nil {
		return ProductView{}, err
	}

	var rows []productRow
	err := h.db.WithContext(ctx).
		Raw("SELECT "+productColumns+" FROM products p JOIN shops s ON s.id = p.shop_id WHERE p.id = ?",
			query.productID.Bytes()).
		Scan(&rows).Error
	if err != nil {
		return ProductView{}, err
	}
	if len(rows) == 0 {
		return ProductView{}, errs.NewObjectNotFoundError("product", query.productID.String())
	}
	return rows[0].toView()
}

// HandleShops returns every shop ordered by name.
func (h CatalogQueryHandler) HandleShops(ctx context.Context, query ListShopsQuery) ([]ShopView, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}
	return selectShops(ctx, h.db, "ORDER BY name, id")
}

// HandleShop returns ObjectNotFoundError for an unknown shop.
func (h CatalogQueryHandler) HandleShop(ctx context.Context, query GetShopQuery) (ShopView, error) {
	if err := query.Validate(); err != nil {
		return ShopView{}, err
	}

	shops, err := selectShops(ctx, h.db, "WHERE id = ?", query.shopID.Bytes())
	if err != nil {
		return ShopView{}, err
	}
	if len(shops) == 0 {
		return ShopView{}, errs.NewObjectNotFoundError("shop", query.shopID.String())
	}
	return shops[0], nil
}

func (r productRow) toView() (ProductView, error) {
	id, err := kernel.UUIDFromBytes(r.ID[:])
	if err != nil {
		return ProductView{}, err
	}
	shopID, err := kernel.UUIDFromBytes(r.ShopID[:])
	if err != nil {
		return ProductView{}, err
	}
	price, err := kernel.NewMoney(r.Price)
	if err != nil {
		return ProductView{}, err
	}
	return ProductView{
		ID:                id,
		ShopID:            shopID,
		ShopName:          r.ShopName,
		Name:              r.Name,
		Price:             price,
		QuantityAvailable: r.QuantityAvailable,
	}, nil
}

type shopRow struct {
	ID      uuid.UUID
	OwnerID uuid.UUID
	Name    string
	Lat     *float64
	Lng     *float64
}

// selectShops runs "SELECT <shop columns> FROM shops <tail>".
func selectShops(ctx context.Context, db *gorm.DB, tail string, args ...any) ([]ShopView, error) {
	var rows []shopRow
	err := db.WithContext(ctx).
		Raw("SELECT id, owner_id, name, lat, lng FROM shops "+tail, args...).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	views := make([]ShopView, 0, len(rows))
	for _, r := range rows {
		id, idErr := kernel.UUIDFromBytes(r.ID[:])
		if idErr != nil {
			return nil, idErr
		}
		ownerID, idErr := kernel.UUIDFromBytes(r.OwnerID[:])
		if idErr != nil {
			return nil, idErr
		}
		position, posErr := optionalGeoPoint(r.Lat, r.Lng)
		if posErr != nil {
			return nil, posErr
		}
		views = append(views, ShopView{ID: id, OwnerID: ownerID, Name: r.Name, Position: position})
	}
	return views, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
