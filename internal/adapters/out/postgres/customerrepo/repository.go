package customerrepo

import (
	"context"
	"errors"

	"marketplace/internal/adapters/out/postgres/versioned"
	"marketplace/internal/core/domain/model/customer"
	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/pkg/errs"

	"gorm.io/gorm"
)

// GormCustomerRepository implements ports.CustomerRepository using GORM.
type GormCustomerRepository struct {
	db *gorm.DB
}

// NewGormCustomerRepository creates a repository bound to db.
func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

// Add inserts a customer with their cart. Used for seeding and tests.
func (r *GormCustomerRepository) Add(ctx context.Context, aggregate *customer.Customer) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	dto := fromDomain(aggregate)
	return r.db.WithContext(ctx).Create(&dto).Error
}

// Get loads a customer with the cart lines in the order they were added.
func (r *GormCustomerRepository) Get(ctx context.Context, id kernel.UUID) (*customer.Customer, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto CustomerDTO
	err := r.db.WithContext(ctx).
		Preload("CartLines", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		First(&dto, "id = ?", id.Bytes()).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("customer", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// Update bumps the customer's version and replaces the stored cart with the aggregate's.
// Callers run it inside a unit of work so the delete and insert are atomic.
func (r *GormCustomerRepository) Update(ctx context.Context, aggregate *customer.Customer) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	dto.Version = aggregate.Version() + 1
	if err := versioned.Update(ctx, r.db, &dto, dto.ID, aggregate.Version(), "customer"); err != nil {
		return err
	}

	db := r.db.WithContext(ctx)
	if err := db.Where("customer_id = ?", dto.ID).Delete(&CartLineDTO{}).Error; err != nil {
		return err
	}
	if len(dto.CartLines) > 0 {
		if err := db.Create(&dto.CartLines).Error; err != nil {
			return err
		}
	}

	aggregate.IncrementVersion()
	return nil
}
