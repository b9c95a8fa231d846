package postgres

import (
	"marketplace/internal/adapters/out/postgres/agentrepo"
	"marketplace/internal/adapters/out/postgres/customerrepo"
	"marketplace/internal/adapters/out/postgres/orderrepo"
	"marketplace/internal/adapters/out/postgres/productrepo"
	"marketplace/internal/adapters/out/postgres/settlementrepo"
	"marketplace/internal/adapters/out/postgres/shoprepo"

	"gorm.io/gorm"
)

// Migrate creates or updates every table the marketplace writes to.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&shoprepo.ShopDTO{},
		&productrepo.ProductDTO{},
		&customerrepo.CustomerDTO{},
		&customerrepo.CartLineDTO{},
		&agentrepo.AgentDTO{},
		&orderrepo.OrderDTO{},
		&orderrepo.OrderItemDTO{},
		&settlementrepo.SettlementTaskDTO{},
	)
}

// TableNames lists the tables created by Migrate, children first.
func TableNames() []string {
	return []string{
		"settlement_tasks",
		"order_items",
		"orders",
		"cart_lines",
		"customers",
		"delivery_agents",
		"products",
		"shops",
	}
}
