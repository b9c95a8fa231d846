// Package orderrepo persists order aggregates in the orders and order_items tables.
package orderrepo

import (
	"time"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/order"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderDTO is the orders row. Items are written once, with the order, and never updated.
type OrderDTO struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey"`
	CustomerID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	ShopID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	DeliveryAgentID *uuid.UUID      `gorm:"type:uuid;index"`
	Total           decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	DeliveryAddress string          `gorm:"type:text;not null"`
	Status          string          `gorm:"type:varchar(32);not null;index"`
	IsPaid          bool            `gorm:"not null;default:false"`
	PaidAt          *time.Time
	Payment         PaymentDTO     `gorm:"embedded;embeddedPrefix:payment_"`
	CreatedAt       time.Time      `gorm:"not null;index"`
	Version         int            `gorm:"not null;default:0"`
	Items           []OrderItemDTO `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

func (OrderDTO) TableName() string {
	return "orders"
}

// PaymentDTO holds the settlement record. All columns are null until the order is paid.
type PaymentDTO struct {
	TransactionID *string `gorm:"type:varchar(64)"`
	Status        *string `gorm:"type:varchar(32)"`
	SettledAt     *time.Time
}

// OrderItemDTO is one line of the order's item snapshot.
type OrderItemDTO struct {
	OrderID   uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Position  int             `gorm:"primaryKey;autoIncrement:false"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Name      string          `gorm:"type:varchar(255);not null"`
	Quantity  int             `gorm:"not null"`
	UnitPrice decimal.Decimal `gorm:"type:numeric(14,2);not null"`
}

func (OrderItemDTO) TableName() string {
	return "order_items"
}

func fromDomain(o *order.Order) OrderDTO {
	s := o.Snapshot()
	orderID := s.ID.Bytes()

	var agentID *uuid.UUID
	if s.DeliveryAgentID != nil {
		raw := s.DeliveryAgentID.Bytes()
		agentID = &raw
	}

	var payment PaymentDTO
	if r := s.PaymentResult; r != nil {
		txn, status, settledAt := r.TransactionID(), r.Status(), r.SettledAt()
		payment = PaymentDTO{TransactionID: &txn, Status: &status, SettledAt: &settledAt}
	}

	items := make([]OrderItemDTO, 0, len(s.Items))
	for i, item := range s.Items {
		items = append(items, OrderItemDTO{
			OrderID:   orderID,
			Position:  i,
			ProductID: item.ProductID().Bytes(),
			Name:      item.Name(),
			Quantity:  item.Quantity(),
			UnitPrice: item.UnitPrice().Decimal(),
		})
	}

	return OrderDTO{
		ID:              orderID,
		CustomerID:      s.CustomerID.Bytes(),
		ShopID:          s.ShopID.Bytes(),
		DeliveryAgentID: agentID,
		Total:           s.Total.Decimal(),
		DeliveryAddress: s.DeliveryAddress,
		Status:          s.Status.String(),
		IsPaid:          s.IsPaid,
		PaidAt:          s.PaidAt,
		Payment:         payment,
		CreatedAt:       s.CreatedAt,
		Version:         s.Version,
		Items:           items,
	}
}

func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	customerID, err := kernel.UUIDFromBytes(dto.CustomerID[:])
	if err != nil {
		return nil, err
	}
	shopID, err := kernel.UUIDFromBytes(dto.ShopID[:])
	if err != nil {
		return nil, err
	}

	var agentID *kernel.UUID
	if dto.DeliveryAgentID != nil {
		aID, agentErr := kernel.UUIDFromBytes((*dto.DeliveryAgentID)[:])
		if agentErr != nil {
			return nil, agentErr
		}
		agentID = &aID
	}

	status, err := order.ParseStatus(dto.Status)
	if err != nil {
		return nil, err
	}

	total, err := kernel.NewMoney(dto.Total)
	if err != nil {
		return nil, err
	}

	items := make([]order.Item, 0, len(dto.Items))
	for _, itemDTO := range dto.Items {
		item, itemErr := itemToDomain(itemDTO)
		if itemErr != nil {
			return nil, itemErr
		}
		items = append(items, item)
	}

	var result *order.PaymentResult
	if p := dto.Payment; p.TransactionID != nil && p.Status != nil && p.SettledAt != nil {
		r, paymentErr := order.NewPaymentResult(*p.TransactionID, *p.Status, p.SettledAt.UTC())
		if paymentErr != nil {
			return nil, paymentErr
		}
		result = &r
	}

	var paidAt *time.Time
	if dto.PaidAt != nil {
		t := dto.PaidAt.UTC()
		paidAt = &t
	}

	return order.RestoreOrder(order.Snapshot{
		ID:              id,
		CustomerID:      customerID,
		ShopID:          shopID,
		DeliveryAgentID: agentID,
		Items:           items,
		Total:           total,
		DeliveryAddress: dto.DeliveryAddress,
		Status:          status,
		IsPaid:          dto.IsPaid,
		PaidAt:          paidAt,
		PaymentResult:   result,
		CreatedAt:       dto.CreatedAt.UTC(),
		Version:         dto.Version,
	})
}

func itemToDomain(dto OrderItemDTO) (order.Item, error) {
	productID, err := kernel.UUIDFromBytes(dto.ProductID[:])
	if err != nil {
		return order.Item{}, err
	}
	price, err := kernel.NewMoney(dto.UnitPrice)
	if err != nil {
		return order.Item{}, err
	}
	return order.NewItem(productID, dto.Name, dto.Quantity, price)
}
