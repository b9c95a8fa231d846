// Package customerrepo persists customers and the cart lines they own.
package customerrepo

import (
	"marketplace/internal/core/domain/model/customer"
	"marketplace/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

// CustomerDTO is the customers row with its cart lines, which are replaced as a whole on update.
type CustomerDTO struct {
	ID        uuid.UUID     `gorm:"type:uuid;primaryKey"`
	Name      string        `gorm:"type:varchar(255);not null"`
	Address   string        `gorm:"type:text;not null;default:''"`
	Version   int           `gorm:"not null;default:0"`
	CartLines []CartLineDTO `gorm:"foreignKey:CustomerID;constraint:OnDelete:CASCADE"`
}

func (CustomerDTO) TableName() string {
	return "customers"
}

// CartLineDTO is one product in a customer's cart. Position keeps the order lines were added in.
type CartLineDTO struct {
	CustomerID uuid.UUID `gorm:"type:uuid;primaryKey"`
	ProductID  uuid.UUID `gorm:"type:uuid;primaryKey"`
	Position   int       `gorm:"not null"`
	Quantity   int       `gorm:"not null;check:quantity > 0"`
}

func (CartLineDTO) TableName() string {
	return "cart_lines"
}

func fromDomain(c *customer.Customer) CustomerDTO {
	id := c.ID().Bytes()
	cart := c.Cart()
	lines := make([]CartLineDTO, 0, len(cart))
	for i, l := range cart {
		lines = append(lines, CartLineDTO{
			CustomerID: id,
			ProductID:  l.ProductID().Bytes(),
			Position:   i,
			Quantity:   l.Quantity(),
		})
	}

	return CustomerDTO{
		ID:        id,
		Name:      c.Name(),
		Address:   c.Address(),
		Version:   c.Version(),
		CartLines: lines,
	}
}

func toDomain(dto CustomerDTO) (*customer.Customer, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	cart := make([]customer.CartLine, 0, len(dto.CartLines))
	for _, l := range dto.CartLines {
		productID, idErr := kernel.UUIDFromBytes(l.ProductID[:])
		if idErr != nil {
			return nil, idErr
		}
		line, lineErr := customer.NewCartLine(productID, l.Quantity)
		if lineErr != nil {
			return nil, lineErr
		}
		cart = append(cart, line)
	}

	return customer.RestoreCustomer(id, dto.Name, dto.Address, cart, dto.Version)
}
