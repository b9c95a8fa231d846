// Package queries contains read-only operations. Handlers read straight from the
// database with SQL and never load aggregates, so they run outside any unit of work.
package queries

import (
	"time"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/order"
)

// OrderView is an order as the listing and tracking operations return it.
type OrderView struct {
	ID              kernel.UUID
	CustomerID      kernel.UUID
	ShopID          kernel.UUID
	DeliveryAgentID *kernel.UUID
	Items           []ItemView
	Total           kernel.Money
	DeliveryAddress string
	Status          order.Status
	IsPaid          bool
	PaidAt          *time.Time
	Payment         *PaymentView
	CreatedAt       time.Time
	// Shop and Customer are attached only by the delivery agent listings, where the
	// agent needs the pickup point and the recipient without tracking each order.
	Shop     *ShopView
	Customer *CustomerView
}

// ItemView is one order line. Subtotal is UnitPrice times Quantity.
type ItemView struct {
	ProductID kernel.UUID
	Name      string
	Quantity  int
	UnitPrice kernel.Money
	Subtotal  kernel.Money
}

// PaymentView is the simulated settlement record. Nil until the order is paid.
type PaymentView struct {
	TransactionID string
	Status        string
	SettledAt     time.Time
}

// TrackingView adds where the order comes from and who carries it.
type TrackingView struct {
	Order OrderView
	Shop  *ShopView
	// Agent is nil until the order is claimed.
	Agent *AgentView
}

// ShopView is a shop as listed and tracked. Position is nil when the shop has none.
type ShopView struct {
	ID       kernel.UUID
	OwnerID  kernel.UUID
	Name     string
	Position *kernel.GeoPoint
}

// ProductView is a catalog entry with the name of the shop selling it.
type ProductView struct {
	ID                kernel.UUID
	ShopID            kernel.UUID
	ShopName          string
	Name              string
	Price             kernel.Money
	QuantityAvailable int
}

// ProductPage is one page of a product listing. Pages is zero when nothing matched.
type ProductPage struct {
	Items []ProductView
	Total int
	Page  int
	Pages int
}

// CustomerView is the recipient of a delivery.
type CustomerView struct {
	ID      kernel.UUID
	Name    string
	Address string
}

// AgentView is the delivery agent shown when tracking an order.
type AgentView struct {
	ID       kernel.UUID
	Name     string
	Phone    string
	Position *kernel.GeoPoint
}

// CartView is the customer's cart priced at current product prices.
type CartView struct {
	Lines []CartLineView
	Total kernel.Money
}

// CartLineView is one cart line priced at the current product price.
type CartLineView struct {
	ProductID kernel.UUID
	ShopID    kernel.UUID
	Name      string
	UnitPrice kernel.Money
	Quantity  int
	Subtotal  kernel.Money
	// Available is the current stock, so clients can warn before checkout fails.
	Available int
}
