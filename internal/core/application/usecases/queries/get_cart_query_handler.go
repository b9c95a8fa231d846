package queries

import (
	"context"

	"marketplace/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GetCartQueryHandler reads a cart joined with the current product rows, so prices and
// stock shown are live rather than captured when the line was added.
type GetCartQueryHandler struct {
	db *gorm.DB
}

// NewGetCartQueryHandler creates a handler reading through db.
func NewGetCartQueryHandler(db *gorm.DB) GetCartQueryHandler {
	return GetCartQueryHandler{db: db}
}

type cartLineRow struct {
	ProductID         uuid.UUID
	ShopID            uuid.UUID
	Name              string
	Price             decimal.Decimal
	QuantityAvailable int
	Quantity          int
}

// Handle prices the cart at current product prices. An unknown customer gets an empty cart.
func (h GetCartQueryHandler) Handle(ctx context.Context, query GetCartQuery) (CartView, error) {
	if err := query.Validate(); err != nil {
		return CartView{}, err
	}

	var rows []cartLineRow
	err := h.db.WithContext(ctx).Raw(`
		SELECT
			p.id AS product_id,
			p.shop_id,
			p.name,
			p.price,
			p.quantity_available,
			cl.quantity
		FROM cart_lines cl
		JOIN products p ON p.id = cl.product_id
		WHERE cl.customer_id = ?
		ORDER BY cl.position
	`, query.customerID.Bytes()).Scan(&rows).Error
	if err != nil {
		return CartView{}, err
	}

	view := CartView{Lines: make([]CartLineView, 0, len(rows)), Total: kernel.ZeroMoney()}
	for _, r := range rows {
		line, lineErr := r.toView()
		if lineErr != nil {
			return CartView{}, lineErr
		}
		view.Lines = append(view.Lines, line)
		view.Total = view.Total.Add(line.Subtotal)
	}
	return view, nil
}

func (r cartLineRow) toView() (CartLineView, error) {
	productID, err := kernel.UUIDFromBytes(r.ProductID[:])
	if err != nil {
		return CartLineView{}, err
	}
	shopID, err := kernel.UUIDFromBytes(r.ShopID[:])
	if err != nil {
		return CartLineView{}, err
	}
	price, err := kernel.NewMoney(r.Price)
	if err != nil {
		return CartLineView{}, err
	}
	return CartLineView{
		ProductID: productID,
		ShopID:    shopID,
		Name:      r.Name,
		UnitPrice: price,
		Quantity:  r.Quantity,
		Subtotal:  price.Multiply(r.Quantity),
		Available: r.QuantityAvailable,
	}, nil
}
