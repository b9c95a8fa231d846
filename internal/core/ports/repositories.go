// Package ports defines the contracts between the marketplace core and its adapters.
// Repositories persist aggregates, the unit of work scopes them to one transaction,
// and the publisher carries order changes out of the process.
package ports

import (
	"context"
	"time"

	"marketplace/internal/core/domain/model/agent"
	"marketplace/internal/core/domain/model/catalog"
	"marketplace/internal/core/domain/model/customer"
	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/order"
	"marketplace/internal/core/domain/model/payment"
)

// OrderRepository persists order aggregates.
//
// Update is a conditional write: it succeeds only if the stored version still equals
// aggregate.Version() and returns errs.ConcurrentModificationError otherwise. On success
// the aggregate's version is incremented.
type OrderRepository interface {
	Add(ctx context.Context, aggregate *order.Order) error
	Update(ctx context.Context, aggregate *order.Order) error
	// Get returns errs.ObjectNotFoundError for an unknown id.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)
}

// ProductRepository persists products and their inventory counters.
type ProductRepository interface {
	Add(ctx context.Context, aggregate *catalog.Product) error
	Get(ctx context.Context, id kernel.UUID) (*catalog.Product, error)
	// GetMany returns the products found among ids. Missing ids are simply absent.
	GetMany(ctx context.Context, ids []kernel.UUID) (map[kernel.UUID]*catalog.Product, error)
	// Update is version-conditional like OrderRepository.Update.
	Update(ctx context.Context, aggregate *catalog.Product) error
	// Delete removes the product if it still has the loaded version. Carts and orders
	// keep their references; checkout reports such lines as not found.
	Delete(ctx context.Context, aggregate *catalog.Product) error
}

// ShopRepository persists shops.
type ShopRepository interface {
	// Add fails with errs.StateConflictError if the owner already has a shop.
	Add(ctx context.Context, aggregate *catalog.Shop) error
	// Update is version-conditional like OrderRepository.Update.
	Update(ctx context.Context, aggregate *catalog.Shop) error
	Get(ctx context.Context, id kernel.UUID) (*catalog.Shop, error)
	// GetByOwner returns errs.ObjectNotFoundError when ownerID owns no shop.
	GetByOwner(ctx context.Context, ownerID kernel.UUID) (*catalog.Shop, error)
	// Delete removes the shop and its products if the shop still has the loaded version.
	// It fails with errs.StateConflictError while any order references the shop.
	Delete(ctx context.Context, aggregate *catalog.Shop) error
}

// CustomerRepository reads customers and writes their carts.
type CustomerRepository interface {
	Get(ctx context.Context, id kernel.UUID) (*customer.Customer, error)
	// Update replaces the stored cart. It is version-conditional.
	Update(ctx context.Context, aggregate *customer.Customer) error
}

// AgentRepository reads agents and writes their presence and availability.
type AgentRepository interface {
	Get(ctx context.Context, id kernel.UUID) (*agent.Agent, error)
	// Update is version-conditional like OrderRepository.Update.
	Update(ctx context.Context, aggregate *agent.Agent) error
}

// SettlementTaskRepository stores deferred payment settlements.
type SettlementTaskRepository interface {
	// Add fails with errs.StateConflictError if a task already exists for the order.
	Add(ctx context.Context, task *payment.SettlementTask) error
	Update(ctx context.Context, task *payment.SettlementTask) error
	// GetByOrder returns errs.ObjectNotFoundError when the order has no task.
	GetByOrder(ctx context.Context, orderID kernel.UUID) (*payment.SettlementTask, error)
	// ClaimDue locks up to limit pending tasks due at or before now. Rows locked by
	// another transaction are skipped, so concurrent workers never share a task.
	ClaimDue(ctx context.Context, now time.Time, limit int) ([]*payment.SettlementTask, error)
}
