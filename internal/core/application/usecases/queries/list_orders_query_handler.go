package queries

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/order"
	"marketplace/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ListOrdersQueryHandler serves every per-role order listing.
//
// Example:
//
//	handler := NewListOrdersQueryHandler(db)
//	query, err := NewListAvailableOrdersQuery(actor)
//	if err != nil {
//	    return err
//	}
//	orders, err := handler.HandleAvailable(ctx, query)
type ListOrdersQueryHandler struct {
	db *gorm.DB
}

// NewListOrdersQueryHandler creates a handler reading through db.
func NewListOrdersQueryHandler(db *gorm.DB) ListOrdersQueryHandler {
	return ListOrdersQueryHandler{db: db}
}

// HandleMine lists the customer's orders, newest first, with their items.
func (h ListOrdersQueryHandler) HandleMine(ctx context.Context, query ListMyOrdersQuery) ([]OrderView, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}
	return selectOrders(ctx, h.db,
		"WHERE customer_id = ? ORDER BY created_at DESC, id",
		query.customerID.Bytes())
}

// HandleShop returns ObjectNotFoundError when the shopkeeper owns no shop or the admin
// named an unknown one.
func (h ListOrdersQueryHandler) HandleShop(ctx context.Context, query ListShopOrdersQuery) ([]OrderView, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	shopID, err := h.resolveShop(ctx, query)
	if err != nil {
		return nil, err
	}

	return selectOrders(ctx, h.db,
		"WHERE shop_id = ? ORDER BY created_at DESC, id",
		shopID)
}

// HandleAvailable lists unclaimed PROCESSING orders, oldest first, each with the shop
// it is picked up from.
func (h ListOrdersQueryHandler) HandleAvailable(
	ctx context.Context,
	query ListAvailableOrdersQuery,
) ([]OrderView, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}
	views, err := selectOrders(ctx, h.db,
		"WHERE status = ? AND delivery_agent_id IS NULL ORDER BY created_at, id",
		order.Processing.String())
	if err != nil {
		return nil, err
	}
	if err = attachShops(ctx, h.db, views); err != nil {
		return nil, err
	}
	return views, nil
}

// HandleDeliveries lists the agent's active orders with their shop and recipient.
func (h ListOrdersQueryHandler) HandleDeliveries(
	ctx context.Context,
	query ListMyDeliveriesQuery,
) ([]OrderView, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}
	views, err := selectOrders(ctx, h.db,
		"WHERE delivery_agent_id = ? AND status IN ? ORDER BY created_at, id",
		query.agentID.Bytes(),
		[]string{order.Processing.String(), order.OutForDelivery.String()})
	if err != nil {
		return nil, err
	}
	if err = attachShops(ctx, h.db, views); err != nil {
		return nil, err
	}
	if err = attachCustomers(ctx, h.db, views); err != nil {
		return nil, err
	}
	return views, nil
}

// HandleAll lists orders matching every set filter field, newest first.
func (h ListOrdersQueryHandler) HandleAll(ctx context.Context, query ListAllOrdersQuery) ([]OrderView, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	var (
		conditions []string
		args       []any
	)
	f := query.filter
	if f.Status != nil {
		conditions = append(conditions, "status = ?")
		args = append(args, f.Status.String())
	}
	if f.CustomerID != nil {
		conditions = append(conditions, "customer_id = ?")
		args = append(args, f.CustomerID.Bytes())
	}
	if f.ShopID != nil {
		conditions = append(conditions, "shop_id = ?")
		args = append(args, f.ShopID.Bytes())
	}
	if f.DeliveryAgentID != nil {
		conditions = append(conditions, "delivery_agent_id = ?")
		args = append(args, f.DeliveryAgentID.Bytes())
	}
	if f.IsPaid != nil {
		conditions = append(conditions, "is_paid = ?")
		args = append(args, *f.IsPaid)
	}

	tail := "ORDER BY created_at DESC, id"
	if len(conditions) > 0 {
		tail = "WHERE " + strings.Join(conditions, " AND ") + " " + tail
	}
	return selectOrders(ctx, h.db, tail, args...)
}

func (h ListOrdersQueryHandler) resolveShop(ctx context.Context, query ListShopOrdersQuery) (uuid.UUID, error) {
	var (
		column string
		key    kernel.UUID
		param  string
	)
	if query.ownerID != nil {
		column, key, param = "owner_id", *query.ownerID, "shop of owner"
	} else {
		column, key, param = "id", *query.shopID, "shop"
	}

	var id uuid.UUID
	err := h.db.WithContext(ctx).
		Raw("SELECT id FROM shops WHERE "+column+" = ?", key.Bytes()).
		Row().
		Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return uuid.Nil, errs.NewObjectNotFoundError(param, key.String())
		}
		return uuid.Nil, err
	}
	return id, nil
}
