// Package shoprepo persists shops. Each shopkeeper owns at most one, which the unique
// owner index enforces.
package shoprepo

import (
	"context"
	"errors"
	"fmt"

	"marketplace/internal/adapters/out/postgres/versioned"
	"marketplace/internal/core/domain/model/catalog"
	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ShopDTO is the shops row. The unique owner index enforces one shop per shopkeeper.
type ShopDTO struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey"`
	OwnerID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	Name    string    `gorm:"type:varchar(255);not null"`
	Lat     *float64
	Lng     *float64
	Version int `gorm:"not null;default:0"`
}

func (ShopDTO) TableName() string {
	return "shops"
}

// GormShopRepository implements ports.ShopRepository using GORM.
type GormShopRepository struct {
	db *gorm.DB
}

// NewGormShopRepository creates a repository bound to db.
func NewGormShopRepository(db *gorm.DB) *GormShopRepository {
	return &GormShopRepository{db: db}
}

// Add inserts a shop. A second shop for the same owner is a state conflict.
func (r *GormShopRepository) Add(ctx context.Context, shop *catalog.Shop) error {
	if err := shop.Validate(); err != nil {
		return err
	}

	dto := fromDomain(shop)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return errs.NewStateConflictErrorWithCause("shop",
				fmt.Errorf("owner %s already has a shop", shop.OwnerID()))
		}
		return err
	}
	return nil
}

// Update writes name and position if nobody changed the shop since it was loaded.
func (r *GormShopRepository) Update(ctx context.Context, shop *catalog.Shop) error {
	if err := shop.Validate(); err != nil {
		return err
	}

	dto := fromDomain(shop)
	dto.Version = shop.Version() + 1
	if err := versioned.Update(ctx, r.db, &dto, dto.ID, shop.Version(), "shop"); err != nil {
		return err
	}

	shop.IncrementVersion()
	return nil
}

// Get loads a shop by ID. It returns errs.ObjectNotFoundError when the shop does not exist.
func (r *GormShopRepository) Get(ctx context.Context, id kernel.UUID) (*catalog.Shop, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	return r.first(ctx, "shop", id.String(), "id = ?", id.Bytes())
}

// GetByOwner loads the shop of a shopkeeper. ObjectNotFoundError means the shopkeeper has
// not opened a shop yet.
//
// Example:
//
//	_, err := repo.GetByOwner(ctx, actor.ID())
//	if errors.Is(err, errs.ErrObjectNotFound) {
//		// free to create one
//	}
func (r *GormShopRepository) GetByOwner(ctx context.Context, ownerID kernel.UUID) (*catalog.Shop, error) {
	if err := ownerID.Validate(); err != nil {
		return nil, err
	}
	return r.first(ctx, "shop of owner", ownerID.String(), "owner_id = ?", ownerID.Bytes())
}

// Delete locks the shop at its loaded version, then its products, before counting its
// orders. A checkout racing the delete either commits first, and the delete fails with a
// conflict, or blocks until the products are gone and fails its own conditional update.
func (r *GormShopRepository) Delete(ctx context.Context, shop *catalog.Shop) error {
	if err := shop.Validate(); err != nil {
		return err
	}
	db := r.db.WithContext(ctx)
	shopID := shop.ID().Bytes()

	var held []uuid.UUID
	if err := db.Table("shops").
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND version = ?", shopID, shop.Version()).
		Pluck("id", &held).Error; err != nil {
		return err
	}
	if len(held) == 0 {
		dto := ShopDTO{ID: shopID}
		return versioned.Delete(ctx, r.db, &dto, dto.ID, shop.Version(), "shop")
	}

	var locked []uuid.UUID
	if err := db.Table("products").
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("shop_id = ?", shopID).
		Pluck("id", &locked).Error; err != nil {
		return err
	}

	var orders int64
	if err := db.Table("orders").Where("shop_id = ?", shopID).Count(&orders).Error; err != nil {
		return err
	}
	if orders > 0 {
		return errs.NewStateConflictErrorWithCause("shop",
			fmt.Errorf("shop %s has %d orders", shop.ID(), orders))
	}

	if err := db.Exec("DELETE FROM products WHERE shop_id = ?", shopID).Error; err != nil {
		return err
	}
	dto := ShopDTO{ID: shopID}
	return versioned.Delete(ctx, r.db, &dto, dto.ID, shop.Version(), "shop")
}

func (r *GormShopRepository) first(ctx context.Context, param, key string, query string, args ...any) (*catalog.Shop, error) {
	var dto ShopDTO
	if err := r.db.WithContext(ctx).Where(query, args...).First(&dto).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError(param, key)
		}
		return nil, err
	}
	return toDomain(dto)
}

func fromDomain(shop *catalog.Shop) ShopDTO {
	dto := ShopDTO{
		ID:      shop.ID().Bytes(),
		OwnerID: shop.OwnerID().Bytes(),
		Name:    shop.Name(),
		Version: shop.Version(),
	}
	if p := shop.Position(); p != nil {
		lat, lng := p.Lat(), p.Lng()
		dto.Lat, dto.Lng = &lat, &lng
	}
	return dto
}

func toDomain(dto ShopDTO) (*catalog.Shop, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	ownerID, err := kernel.UUIDFromBytes(dto.OwnerID[:])
	if err != nil {
		return nil, err
	}

	var position *kernel.GeoPoint
	if dto.Lat != nil && dto.Lng != nil {
		p, posErr := kernel.NewGeoPoint(*dto.Lat, *dto.Lng)
		if posErr != nil {
			return nil, posErr
		}
		position = &p
	}

	return catalog.RestoreShop(id, ownerID, dto.Name, position, dto.Version)
}
