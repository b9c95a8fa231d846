package queries

import (
	"context"

	"marketplace/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// attachShops sets OrderView.Shop on every view from one batched read.
func attachShops(ctx context.Context, db *gorm.DB, views []OrderView) error {
	if len(views) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, 0, len(views))
	for _, v := range views {
		ids = append(ids, v.ShopID.Bytes())
	}

	shops, err := selectShops(ctx, db, "WHERE id IN ?", ids)
	if err != nil {
		return err
	}
	byID := make(map[kernel.UUID]ShopView, len(shops))
	for _, s := range shops {
		byID[s.ID] = s
	}

	for i := range views {
		if s, ok := byID[views[i].ShopID]; ok {
			views[i].Shop = &s
		}
	}
	return nil
}

type customerRow struct {
	ID      uuid.UUID
	Name    string
	Address string
}

// attachCustomers sets OrderView.Customer on every view from one batched read.
func attachCustomers(ctx context.Context, db *gorm.DB, views []OrderView) error {
	if len(views) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, 0, len(views))
	for _, v := range views {
		ids = append(ids, v.CustomerID.Bytes())
	}

	var rows []customerRow
	err := db.WithContext(ctx).
		Raw("SELECT id, name, address FROM customers WHERE id IN ?", ids).
		Scan(&rows).Error
	if err != nil {
		return err
	}

	byID := make(map[kernel.UUID]CustomerView, len(rows))
	for _, r := range rows {
		id, idErr := kernel.UUIDFromBytes(r.ID[:])
		if idErr != nil {
			return idErr
		}
		byID[id] = CustomerView{ID: id, Name: r.Name, Address: r.Address}
	}

	for i := range views {
		if c, ok := byID[views[i].CustomerID]; ok {
			views[i].Customer = &c
		}
	}
	return nil
}
