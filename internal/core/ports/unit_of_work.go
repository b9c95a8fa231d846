package ports

import (
	"context"
)

// UnitOfWorkFactory creates a new UnitOfWork for each command.
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// UnitOfWork is a business transaction boundary. Repositories obtained after Begin
// share its transaction; Rollback after Commit is a no-op error the caller ignores.
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error

	OrderRepository() OrderRepository
	ProductRepository() ProductRepository
	ShopRepository() ShopRepository
	CustomerRepository() CustomerRepository
	AgentRepository() AgentRepository
	SettlementTaskRepository() SettlementTaskRepository
}
