package queries

import (
	"context"
	"time"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/order"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const orderColumns = `
	id,
	customer_id,
	shop_id,
	delivery_agent_id,
	total,
	delivery_address,
	status,
	is_paid,
	paid_at,
	payment_transaction_id,
	payment_status,
	payment_settled_at,
	created_at`

type orderRow struct {
	ID                   uuid.UUID
	CustomerID           uuid.UUID
	ShopID               uuid.UUID
	DeliveryAgentID      *uuid.UUID
	Total                decimal.Decimal
	DeliveryAddress      string
	Status               string
	IsPaid               bool
	PaidAt               *time.Time
	PaymentTransactionID *string
	PaymentStatus        *string
	PaymentSettledAt     *time.Time
	CreatedAt            time.Time
}

type itemRow struct {
	OrderID   uuid.UUID
	ProductID uuid.UUID
	Name      string
	Quantity  int
	UnitPrice decimal.Decimal
}

// selectOrders runs "SELECT <order columns> FROM orders <tail>" and attaches the items of
// every returned order. tail carries the WHERE and ORDER BY clauses.
func selectOrders(ctx context.Context, db *gorm.DB, tail string, args ...any) ([]OrderView, error) {
	var rows []orderRow
	if err := db.WithContext(ctx).Raw("SELECT "+orderColumns+" FROM orders "+tail, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}

	views := make([]OrderView, 0, len(rows))
	if len(rows) == 0 {
		return views, nil
	}

	ids := make([]uuid.UUID, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}

	var items []itemRow
	err := db.WithContext(ctx).Raw(`
		SELECT
			order_id,
			product_id,
			name,
			quantity,
			unit_price
		FROM order_items
		WHERE order_id IN ?
		ORDER BY order_id, position
	`, ids).Scan(&items).Error
	if err != nil {
		return nil, err
	}

	itemsByOrder := make(map[uuid.UUID][]ItemView, len(rows))
	for _, ir := range items {
		item, itemErr := ir.toView()
		if itemErr != nil {
			return nil, itemErr
		}
		itemsByOrder[ir.OrderID] = append(itemsByOrder[ir.OrderID], item)
	}

	for _, r := range rows {
		view, viewErr := r.toView(itemsByOrder[r.ID])
		if viewErr != nil {
			return nil, viewErr
		}
		views = append(views, view)
	}
	return views, nil
}

func (r orderRow) toView(items []ItemView) (OrderView, error) {
	id, err := kernel.UUIDFromBytes(r.ID[:])
	if err != nil {
		return OrderView{}, err
	}
	customerID, err := kernel.UUIDFromBytes(r.CustomerID[:])
	if err != nil {
		return OrderView{}, err
	}
	shopID, err := kernel.UUIDFromBytes(r.ShopID[:])
	if err != nil {
		return OrderView{}, err
	}
	agentID, err := optionalUUID(r.DeliveryAgentID)
	if err != nil {
		return OrderView{}, err
	}
	status, err := order.ParseStatus(r.Status)
	if err != nil {
		return OrderView{}, err
	}
	total, err := kernel.NewMoney(r.Total)
	if err != nil {
		return OrderView{}, err
	}

	var payment *PaymentView
	if r.PaymentTransactionID != nil && r.PaymentStatus != nil && r.PaymentSettledAt != nil {
		payment = &PaymentView{
			TransactionID: *r.PaymentTransactionID,
			Status:        *r.PaymentStatus,
			SettledAt:     r.PaymentSettledAt.UTC(),
		}
	}

	var paidAt *time.Time
	if r.PaidAt != nil {
		t := r.PaidAt.UTC()
		paidAt = &t
	}

	if items == nil {
		items = make([]ItemView, 0)
	}

	return OrderView{
		ID:              id,
		CustomerID:      customerID,
		ShopID:          shopID,
		DeliveryAgentID: agentID,
		Items:           items,
		Total:           total,
		DeliveryAddress: r.DeliveryAddress,
		Status:          status,
		IsPaid:          r.IsPaid,
		PaidAt:          paidAt,
		Payment:         payment,
		CreatedAt:       r.CreatedAt.UTC(),
	}, nil
}

func (r itemRow) toView() (ItemView, error) {
	productID, err := kernel.UUIDFromBytes(r.ProductID[:])
	if err != nil {
		return ItemView{}, err
	}
	price, err := kernel.NewMoney(r.UnitPrice)
	if err != nil {
		return ItemView{}, err
	}
	return ItemView{
		ProductID: productID,
		Name:      r.Name,
		Quantity:  r.Quantity,
		UnitPrice: price,
		Subtotal:  price.Multiply(r.Quantity),
	}, nil
}

func optionalUUID(raw *uuid.UUID) (*kernel.UUID, error) {
	if raw == nil {
		return nil, nil
	}
	id, err := kernel.UUIDFromBytes(raw[:])
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func optionalGeoPoint(lat, lng *float64) (*kernel.GeoPoint, error) {
	if lat == nil || lng == nil {
		return nil, nil
	}
	p, err := kernel.NewGeoPoint(*lat, *lng)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
