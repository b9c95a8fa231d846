package productrepo

import (
	"context"
	"errors"

	"marketplace/internal/adapters/out/postgres/versioned"
	"marketplace/internal/core/domain/model/catalog"
	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormProductRepository implements ports.ProductRepository using GORM.
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a repository bound to db, usually the transaction of a unit of work.
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// Add inserts a product created by its shopkeeper.
func (r *GormProductRepository) Add(ctx context.Context, aggregate *catalog.Product) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	dto := fromDomain(aggregate)
	return r.db.WithContext(ctx).Create(&dto).Error
}

// Get loads a product by ID. It returns errs.ObjectNotFoundError when the product does
// not exist.
//
// Example:
//
//	product, err := repo.Get(ctx, productID)
//	if errors.Is(err, errs.ErrObjectNotFound) {
//		return err // 404 at the HTTP boundary
//	}
func (r *GormProductRepository) Get(ctx context.Context, id kernel.UUID) (*catalog.Product, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto ProductDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("product", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// GetMany loads the products among ids that still exist.
func (r *GormProductRepository) GetMany(ctx context.Context, ids []kernel.UUID) (map[kernel.UUID]*catalog.Product, error) {
	result := make(map[kernel.UUID]*catalog.Product, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	raw := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		raw = append(raw, id.Bytes())
	}

	var dtos []ProductDTO
	if err := r.db.WithContext(ctx).Where("id IN ?", raw).Find(&dtos).Error; err != nil {
		return nil, err
	}

	for _, dto := range dtos {
		p, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		result[p.ID()] = p
	}
	return result, nil
}

// Update writes the inventory counter if nobody changed the product since it was loaded.
func (r *GormProductRepository) Update(ctx context.Context, aggregate *catalog.Product) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	dto.Version = aggregate.Version() + 1
	if err := versioned.Update(ctx, r.db, &dto, dto.ID, aggregate.Version(), "product"); err != nil {
		return err
	}

	aggregate.IncrementVersion()
	return nil
}

// Delete removes the product row. Cart lines and order items referencing it are left
// untouched.
func (r *GormProductRepository) Delete(ctx context.Context, aggregate *catalog.Product) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	dto := ProductDTO{ID: aggregate.ID().Bytes()}
	return versioned.Delete(ctx, r.db, &dto, dto.ID, aggregate.Version(), "product")
}
