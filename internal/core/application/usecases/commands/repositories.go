// Package commands contains business operations that modify system state.
// Every handler follows the same pattern: validate the command, open a unit of work,
// load aggregates, let the domain decide, persist every touched aggregate, commit.
// The deferred Rollback undoes all writes on any early return.
package commands

import (
	"context"

	"marketplace/internal/core/ports"
)

// Unit of Work interfaces give each handler exactly the repositories it needs.
type (
	// TxManager handles the transaction lifecycle.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	OrderRepoFactory interface {
		OrderRepository() ports.OrderRepository
	}

	ProductRepoFactory interface {
		ProductRepository() ports.ProductRepository
	}

	ShopRepoFactory interface {
		ShopRepository() ports.ShopRepository
	}

	CustomerRepoFactory interface {
		CustomerRepository() ports.CustomerRepository
	}

	AgentRepoFactory interface {
		AgentRepository() ports.AgentRepository
	}

	SettlementRepoFactory interface {
		SettlementTaskRepository() ports.SettlementTaskRepository
	}

	// CheckoutUoW spans the customer's cart, the inventory counters and the new orders.
	CheckoutUoW interface {
		TxManager
		CustomerRepoFactory
		ProductRepoFactory
		OrderRepoFactory
	}

	CheckoutUoWFactory interface {
		Create() CheckoutUoW
	}

	// CartUoW is used by cart edits, which check stock but never change it.
	CartUoW interface {
		TxManager
		CustomerRepoFactory
		ProductRepoFactory
	}

	CartUoWFactory interface {
		Create() CartUoW
	}

	// OrderStatusUoW covers role-polymorphic status changes: the order, the shop for
	// ownership checks and the agent released on delivery.
	OrderStatusUoW interface {
		TxManager
		OrderRepoFactory
		ShopRepoFactory
		AgentRepoFactory
	}

	OrderStatusUoWFactory interface {
		Create() OrderStatusUoW
	}

	// DispatchUoW covers claims and admin assignments.
	DispatchUoW interface {
		TxManager
		OrderRepoFactory
		AgentRepoFactory
	}

	DispatchUoWFactory interface {
		Create() DispatchUoW
	}

	// PaymentUoW covers payment requests and their settlement.
	PaymentUoW interface {
		TxManager
		OrderRepoFactory
		SettlementRepoFactory
	}

	PaymentUoWFactory interface {
		Create() PaymentUoW
	}

	// CatalogUoW covers shopkeepers managing their shop and its products.
	CatalogUoW interface {
		TxManager
		ShopRepoFactory
		ProductRepoFactory
	}

	CatalogUoWFactory interface {
		Create() CatalogUoW
	}

	// AgentUoW covers agent presence updates.
	AgentUoW interface {
		TxManager
		AgentRepoFactory
	}

	AgentUoWFactory interface {
		Create() AgentUoW
	}
)
