// Package productrepo persists products and their inventory counters.
package productrepo

import (
	"marketplace/internal/core/domain/model/catalog"
	"marketplace/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductDTO is the products row. The table rejects a negative quantity_available.
type ProductDTO struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ShopID            uuid.UUID       `gorm:"type:uuid;not null;index"`
	Name              string          `gorm:"type:varchar(255);not null"`
	Price             decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	QuantityAvailable int             `gorm:"not null;check:quantity_available >= 0"`
	Version           int             `gorm:"not null;default:0"`
}

func (ProductDTO) TableName() string {
	return "products"
}

func fromDomain(p *catalog.Product) ProductDTO {
	return ProductDTO{
		ID:                p.ID().Bytes(),
		ShopID:            p.ShopID().Bytes(),
		Name:              p.Name(),
		Price:             p.Price().Decimal(),
		QuantityAvailable: p.QuantityAvailable(),
		Version:           p.Version(),
	}
}

func toDomain(dto ProductDTO) (*catalog.Product, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	shopID, err := kernel.UUIDFromBytes(dto.ShopID[:])
	if err != nil {
		return nil, err
	}
	price, err := kernel.NewMoney(dto.Price)
	if err != nil {
		return nil, err
	}
	return catalog.RestoreProduct(id, shopID, dto.Name, price, dto.QuantityAvailable, dto.Version)
}
